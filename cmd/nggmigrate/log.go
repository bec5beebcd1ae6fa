package main

import (
	"errors"
	"fmt"

	"github.com/ALT-F4-LLC/nggmigrate/internal/db"
	"github.com/ALT-F4-LLC/nggmigrate/internal/model"
	"github.com/ALT-F4-LLC/nggmigrate/internal/output"
	"github.com/ALT-F4-LLC/nggmigrate/internal/render"
	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:   "log <id>",
	Short: "Show the rewrite history of a post",
	Long: `Show the rewrite history of a post. Every body rewrite keeps the previous
body, so --original prints the body as it was before the first conversion.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		conn := getDB(cmd)
		ctx := cmd.Context()
		limit, _ := cmd.Flags().GetInt("limit")
		original, _ := cmd.Flags().GetBool("original")

		id, err := model.ParseID(args[0])
		if err != nil {
			return cmdErr(err, output.ErrValidation)
		}

		if _, err := db.GetPost(ctx, conn, id); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return cmdErr(fmt.Errorf("post %s not found", model.FormatID(id)), output.ErrNotFound)
			}
			return cmdErr(fmt.Errorf("fetching post: %w", err), output.ErrGeneral)
		}

		if original {
			limit = 0
		}
		activity, err := db.GetActivity(ctx, conn, id, limit)
		if err != nil {
			return cmdErr(fmt.Errorf("fetching activity: %w", err), output.ErrGeneral)
		}

		if original {
			if len(activity) == 0 {
				return cmdErr(fmt.Errorf("post %s has never been rewritten", model.FormatID(id)), output.ErrNotFound)
			}
			first := activity[len(activity)-1]
			if !w.JSONMode {
				fmt.Fprintln(w.Stdout, first.OldValue)
				return nil
			}
			w.Success(struct {
				ID   string `json:"id"`
				Body string `json:"body"`
			}{ID: model.FormatID(id), Body: first.OldValue}, "")
			return nil
		}

		if len(activity) == 0 {
			w.Success([]model.Activity{}, render.EmptyState("No rewrites recorded.", "", false))
			return nil
		}
		w.Success(activity, render.RenderActivity(activity))
		return nil
	},
}

func init() {
	logCmd.Flags().IntP("limit", "n", 20, "Maximum number of entries to show (0 = all)")
	logCmd.Flags().Bool("original", false, "Print the body as it was before the first rewrite")
	rootCmd.AddCommand(logCmd)
}
