package main

import (
	"errors"
	"fmt"

	"github.com/ALT-F4-LLC/nggmigrate/internal/db"
	"github.com/ALT-F4-LLC/nggmigrate/internal/directive"
	"github.com/ALT-F4-LLC/nggmigrate/internal/model"
	"github.com/ALT-F4-LLC/nggmigrate/internal/output"
	"github.com/ALT-F4-LLC/nggmigrate/internal/render"
	"github.com/spf13/cobra"
)

type directiveView struct {
	Kind string `json:"kind"`
	ID   *int64 `json:"id"`
	Text string `json:"text"`
}

type showResult struct {
	Record      *model.ContentRecord `json:"record"`
	Directives  []directiveView      `json:"directives"`
	Attachments []model.Asset        `json:"attachments"`
	Activity    []model.Activity     `json:"activity"`
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a post with its legacy directives and attachments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		conn := getDB(cmd)
		ctx := cmd.Context()

		id, err := model.ParseID(args[0])
		if err != nil {
			return cmdErr(err, output.ErrValidation)
		}

		rec, err := db.GetPost(ctx, conn, id)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return cmdErr(fmt.Errorf("post %s not found", model.FormatID(id)), output.ErrNotFound)
			}
			return cmdErr(fmt.Errorf("fetching post: %w", err), output.ErrGeneral)
		}

		assets, err := db.ListOwnedAssets(ctx, conn, id, false)
		if err != nil {
			return cmdErr(fmt.Errorf("fetching attachments: %w", err), output.ErrGeneral)
		}

		activity, err := db.GetActivity(ctx, conn, id, 10)
		if err != nil {
			return cmdErr(fmt.Errorf("fetching activity: %w", err), output.ErrGeneral)
		}

		matches := directive.Scan(rec.Body)
		views := make([]directiveView, 0, len(matches))
		for _, m := range matches {
			v := directiveView{Kind: m.Kind.String(), Text: m.Text}
			if n, ok := m.ID(); ok {
				v.ID = &n
			}
			views = append(views, v)
		}

		if assets == nil {
			assets = []model.Asset{}
		}
		if activity == nil {
			activity = []model.Activity{}
		}

		w.Success(showResult{
			Record:      rec,
			Directives:  views,
			Attachments: assets,
			Activity:    activity,
		}, render.RenderDetail(rec, matches, assets, activity))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
