package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/ALT-F4-LLC/nggmigrate/internal/model"
	"github.com/ALT-F4-LLC/nggmigrate/internal/output"
	"github.com/ALT-F4-LLC/nggmigrate/internal/render"
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert legacy gallery directives into native galleries",
	Long: `Convert legacy gallery directives into native galleries.

Every picture a post references is imported as an attachment owned by that
post, then the directive is replaced in the post body. Posts are processed
in ID order until the time budget runs out; run convert again to continue.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		ctx := cmd.Context()

		limit, _ := cmd.Flags().GetInt("limit")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		yes, _ := cmd.Flags().GetBool("yes")
		postArg, _ := cmd.Flags().GetString("post")
		mode, _ := cmd.Flags().GetString("mode")
		workers, _ := cmd.Flags().GetInt("workers")

		var postID int64
		if postArg != "" {
			id, err := model.ParseID(postArg)
			if err != nil {
				return cmdErr(err, output.ErrValidation)
			}
			postID = id
		}

		m, closeLegacy, err := buildMigrator(ctx, getCfg(cmd), getDB(cmd), getLogger(cmd), runOptions{
			DryRun:      dryRun,
			GalleryMode: mode,
			Workers:     workers,
		})
		if err != nil {
			return cmdErr(err, output.ErrValidation)
		}
		defer closeLegacy()

		if !dryRun && !yes {
			if w.JSONMode {
				return cmdErr(fmt.Errorf("cannot convert without --yes in JSON mode"), output.ErrValidation)
			}

			target := "1 post"
			if postID == 0 {
				n, err := m.Count(ctx)
				if err != nil {
					return cmdErr(fmt.Errorf("counting posts: %w", err), output.ErrGeneral)
				}
				if limit > 0 && limit < n {
					n = limit
				}
				if n == 0 {
					w.Success(model.NewReport(time.Now()), "Nothing to convert.")
					return nil
				}
				target = fmt.Sprintf("%d posts", n)
			}

			var confirm bool
			form := huh.NewForm(
				huh.NewGroup(
					huh.NewConfirm().
						Title(fmt.Sprintf("Convert %s?", target)).
						Description("Pictures are downloaded as attachments and post bodies are rewritten.").
						Value(&confirm),
				),
			)

			if err := form.Run(); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					w.Info("Cancelled.")
					return nil
				}
				return cmdErr(fmt.Errorf("interactive form failed: %w", err), output.ErrGeneral)
			}
			if !confirm {
				w.Info("Cancelled.")
				return nil
			}
		}

		var report *model.Report
		var runErr error
		if postID != 0 {
			report = model.NewReport(time.Now())
			report.DryRun = dryRun
			m.Process(ctx, report, postID)
			report.Info("%s", report.Summary())
			report.FinishedAt = time.Now()
		} else {
			report, runErr = m.Execute(ctx, limit)
			if report == nil {
				return cmdErr(fmt.Errorf("running migration: %w", runErr), output.ErrGeneral)
			}
		}

		msg := render.RenderReport(report)

		if runErr != nil {
			w.Partial(report, msg, fmt.Errorf("migration interrupted: %w", runErr))
			return &CmdError{Err: runErr, Code: output.ErrPartial, Reported: true}
		}
		if failed := report.CountOutcome(model.OutcomeFailed); len(report.Errors) > 0 {
			err := fmt.Errorf("%d posts failed, %d errors reported", failed, len(report.Errors))
			w.Partial(report, msg, err)
			return &CmdError{Err: err, Code: output.ErrPartial, Reported: true}
		}

		w.Success(report, msg)
		return nil
	},
}

func init() {
	convertCmd.Flags().IntP("limit", "n", 0, "Maximum number of posts to convert (0 = all)")
	convertCmd.Flags().Bool("dry-run", false, "Report what would change without fetching or saving")
	convertCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	convertCmd.Flags().String("post", "", "Convert a single post by ID")
	convertCmd.Flags().String("mode", "", "Gallery rewrite mode (exclude, ids); overrides migrate.gallery_mode")
	convertCmd.Flags().Int("workers", 0, "Concurrent picture fetches per gallery; overrides migrate.workers")
	rootCmd.AddCommand(convertCmd)
}
