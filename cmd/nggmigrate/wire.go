package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/ALT-F4-LLC/nggmigrate/internal/config"
	"github.com/ALT-F4-LLC/nggmigrate/internal/db"
	"github.com/ALT-F4-LLC/nggmigrate/internal/ingest"
	"github.com/ALT-F4-LLC/nggmigrate/internal/legacy"
	"github.com/ALT-F4-LLC/nggmigrate/internal/migrate"
	"github.com/ALT-F4-LLC/nggmigrate/internal/model"
)

// runOptions are per-invocation overrides of the migrate.* settings.
type runOptions struct {
	DryRun      bool
	GalleryMode string
	Workers     int
}

// buildMigrator wires the content store, the legacy reader, the blob store
// and the ingester into a Migrator. The returned close func releases the
// legacy connection when it is separate from the host database.
func buildMigrator(ctx context.Context, cfg *config.Config, conn *sql.DB, logger *slog.Logger, ro runOptions) (*migrate.Migrator, func(), error) {
	store := db.NewStore(conn, config.DefaultAuthor())

	reader, closeLegacy, err := openLegacy(cfg, conn)
	if err != nil {
		return nil, nil, err
	}

	mode := cfg.Migrate.GalleryMode
	if ro.GalleryMode != "" {
		mode = ro.GalleryMode
	}
	galleryMode, err := model.ParseGalleryMode(mode)
	if err != nil {
		closeLegacy()
		return nil, nil, err
	}
	workers := cfg.Migrate.Workers
	if ro.Workers > 0 {
		workers = ro.Workers
	}

	deps := migrate.Deps{
		Content: store,
		Assets:  store,
		Legacy:  reader,
	}
	if !ro.DryRun {
		blobs, err := openBlobStore(ctx, cfg)
		if err != nil {
			closeLegacy()
			return nil, nil, err
		}
		deps.Ingester = ingest.New(blobs, store, ingest.Options{
			Timeout:       cfg.Ingest.Timeout,
			RatePerSecond: cfg.Ingest.RatePerSecond,
			MaxBytes:      cfg.Ingest.MaxBytes,
			UserAgent:     cfg.Ingest.UserAgent,
			Logger:        logger,
		})
	}

	m, err := migrate.New(deps, migrate.Options{
		SiteURL:     cfg.Site.URL,
		GalleryMode: galleryMode,
		TimeBudget:  cfg.Migrate.TimeBudget,
		Workers:     workers,
		DryRun:      ro.DryRun,
		Logger:      logger,
	})
	if err != nil {
		closeLegacy()
		return nil, nil, err
	}
	return m, closeLegacy, nil
}

// openLegacy returns a reader over the legacy tables. Without legacy.dsn the
// tables are read from the host database.
func openLegacy(cfg *config.Config, host *sql.DB) (*legacy.Reader, func(), error) {
	if cfg.Legacy.DSN == "" {
		return legacy.NewReader(host, db.DialectSQLite, cfg.Legacy.TablePrefix), func() {}, nil
	}

	conn, err := db.OpenDriver(cfg.Legacy.Driver, cfg.Legacy.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("opening legacy database: %w", err)
	}
	reader := legacy.NewReader(conn, db.DialectFor(cfg.Legacy.Driver), cfg.Legacy.TablePrefix)
	return reader, func() { conn.Close() }, nil
}

func openBlobStore(ctx context.Context, cfg *config.Config) (ingest.BlobStore, error) {
	if cfg.Uploads.Backend == "s3" {
		store, err := ingest.NewS3Store(ctx, ingest.S3Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			UsePathStyle:    cfg.S3.PathStyle,
			PublicURL:       cfg.S3.PublicURL,
		})
		if err != nil {
			return nil, fmt.Errorf("configuring s3 uploads: %w", err)
		}
		return store, nil
	}
	return ingest.NewFSStore(cfg.Uploads.Dir, cfg.Uploads.BaseURL), nil
}
