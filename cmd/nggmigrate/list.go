package main

import (
	"fmt"

	"github.com/ALT-F4-LLC/nggmigrate/internal/db"
	"github.com/ALT-F4-LLC/nggmigrate/internal/directive"
	"github.com/ALT-F4-LLC/nggmigrate/internal/output"
	"github.com/ALT-F4-LLC/nggmigrate/internal/render"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List posts that still reference legacy galleries",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		conn := getDB(cmd)
		limit, _ := cmd.Flags().GetInt("limit")

		m, closeLegacy, err := buildMigrator(cmd.Context(), getCfg(cmd), conn, getLogger(cmd), runOptions{DryRun: true})
		if err != nil {
			return cmdErr(err, output.ErrValidation)
		}
		defer closeLegacy()

		ids, err := m.Enumerate(cmd.Context(), limit)
		if err != nil {
			return cmdErr(fmt.Errorf("listing posts: %w", err), output.ErrGeneral)
		}

		records, err := db.GetPostsByIDs(cmd.Context(), conn, ids)
		if err != nil {
			return cmdErr(fmt.Errorf("loading posts: %w", err), output.ErrGeneral)
		}

		rows := make([]render.Candidate, 0, len(ids))
		for _, id := range ids {
			rec, ok := records[id]
			if !ok {
				continue
			}
			rows = append(rows, render.Candidate{
				Record:    rec,
				Galleries: directive.Count(rec.Body, directive.KindGallery, directive.KindDisplayedGallery),
				Pictures:  directive.Count(rec.Body, directive.KindSinglePicture),
			})
		}

		w.Success(rows, render.RenderTable(rows))
		return nil
	},
}

func init() {
	listCmd.Flags().IntP("limit", "n", 0, "Maximum number of posts to list (0 = all)")
	rootCmd.AddCommand(listCmd)
}
