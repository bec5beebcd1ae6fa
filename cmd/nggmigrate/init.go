package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/ALT-F4-LLC/nggmigrate/internal/db"
	"github.com/ALT-F4-LLC/nggmigrate/internal/model"
	"github.com/ALT-F4-LLC/nggmigrate/internal/output"
	"github.com/spf13/cobra"
)

type initResult struct {
	Path          string `json:"path"`
	DBPath        string `json:"db_path"`
	SchemaVersion int    `json:"schema_version"`
	Created       bool   `json:"created"`
	Demo          bool   `json:"demo"`
}

var initCmd = &cobra.Command{
	Use:         "init",
	Short:       "Initialize a new content database",
	Annotations: map[string]string{"skipDB": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		cfg := getCfg(cmd)
		demo, _ := cmd.Flags().GetBool("demo")

		exists, err := cfg.Exists()
		if err != nil {
			return cmdErr(fmt.Errorf("checking database: %w", err), output.ErrGeneral)
		}

		if exists {
			w.Warn("Database already exists at %s", cfg.DBPath)

			conn, err := db.Open(cfg.DBPath)
			if err != nil {
				return cmdErr(fmt.Errorf("opening database: %w", err), output.ErrGeneral)
			}
			defer conn.Close()

			schemaVersion, err := db.SchemaVersion(conn)
			if err != nil {
				return cmdErr(fmt.Errorf("reading schema version: %w", err), output.ErrGeneral)
			}

			w.Success(initResult{
				Path:          cfg.Dir,
				DBPath:        cfg.DBPath,
				SchemaVersion: schemaVersion,
			}, "Database already initialized")

			return nil
		}

		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return cmdErr(fmt.Errorf("creating directory: %w", err), output.ErrGeneral)
		}

		conn, err := db.Open(cfg.DBPath)
		if err != nil {
			return cmdErr(fmt.Errorf("opening database: %w", err), output.ErrGeneral)
		}
		defer conn.Close()

		if err := db.Initialize(conn); err != nil {
			return cmdErr(fmt.Errorf("initializing schema: %w", err), output.ErrGeneral)
		}

		if err := db.Migrate(conn); err != nil {
			return cmdErr(fmt.Errorf("migrating schema: %w", err), output.ErrGeneral)
		}

		if demo {
			if err := seedDemo(cmd.Context(), conn); err != nil {
				return cmdErr(fmt.Errorf("seeding demo data: %w", err), output.ErrGeneral)
			}
		}

		schemaVersion, err := db.SchemaVersion(conn)
		if err != nil {
			return cmdErr(fmt.Errorf("reading schema version: %w", err), output.ErrGeneral)
		}

		w.Success(initResult{
			Path:          cfg.Dir,
			DBPath:        cfg.DBPath,
			SchemaVersion: schemaVersion,
			Created:       true,
			Demo:          demo,
		}, "Initialized content database")

		w.Info("Initialized content database at %s", cfg.DBPath)
		if demo {
			w.Info("Seeded a demo gallery and 3 posts; try 'nggmigrate convert --dry-run'")
		}
		w.Info("Consider adding .nggmigrate/ to your .gitignore")

		return nil
	},
}

// seedDemo adds one legacy gallery and a few posts that reference it.
func seedDemo(ctx context.Context, conn *sql.DB) error {
	gallery := &model.Gallery{ID: 5, Path: "wp-content/gallery/holiday", Title: "Holiday"}
	if err := db.CreateGallery(ctx, conn, gallery); err != nil {
		return err
	}

	pictures := []model.Picture{
		{ID: 10, Filename: "b.jpg", AltText: "Bee", SortOrder: 2},
		{ID: 11, Filename: "a.jpg", SortOrder: 1, Description: "The first morning"},
		{ID: 12, Filename: "c.jpg", AltText: "Coast", SortOrder: 3},
	}
	for i := range pictures {
		pictures[i].GalleryID = gallery.ID
		if err := db.CreatePicture(ctx, conn, &pictures[i]); err != nil {
			return err
		}
	}

	posts := []model.ContentRecord{
		{Title: "Holiday", Body: "Look: [nggallery id=5]"},
		{Title: "Favourite shot", Body: "Best one: [singlepic id=10 h=240 float=right]", Type: model.PostTypePage},
		{Title: "Broken", Body: "Gone: [nggallery id=999]", Status: model.PostStatusDraft},
	}
	for i := range posts {
		if _, err := db.CreatePost(ctx, conn, &posts[i]); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	initCmd.Flags().Bool("demo", false, "Seed a demo legacy gallery and posts")
	rootCmd.AddCommand(initCmd)
}
