package main

import (
	"fmt"

	humanize "github.com/dustin/go-humanize"

	"github.com/ALT-F4-LLC/nggmigrate/internal/output"
	"github.com/spf13/cobra"
)

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Count posts that still reference legacy galleries",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)

		m, closeLegacy, err := buildMigrator(cmd.Context(), getCfg(cmd), getDB(cmd), getLogger(cmd), runOptions{DryRun: true})
		if err != nil {
			return cmdErr(err, output.ErrValidation)
		}
		defer closeLegacy()

		n, err := m.Count(cmd.Context())
		if err != nil {
			return cmdErr(fmt.Errorf("counting posts: %w", err), output.ErrGeneral)
		}

		w.Success(struct {
			Count int `json:"count"`
		}{Count: n}, fmt.Sprintf("%s posts to convert", humanize.Comma(int64(n))))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(countCmd)
}
