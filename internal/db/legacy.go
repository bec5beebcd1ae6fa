package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ALT-F4-LLC/nggmigrate/internal/model"
)

// CreateGallery inserts a legacy gallery row. Used to seed demo data and
// fixtures; the migration itself never writes to the legacy tables.
func CreateGallery(ctx context.Context, db *sql.DB, g *model.Gallery) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO ngg_gallery (gid, path, title) VALUES (?, ?, ?)`,
		g.ID, g.Path, g.Title,
	)
	if err != nil {
		return fmt.Errorf("inserting gallery %d: %w", g.ID, err)
	}
	return nil
}

// CreatePicture inserts a legacy picture row.
func CreatePicture(ctx context.Context, db *sql.DB, p *model.Picture) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO ngg_pictures (pid, galleryid, filename, description, alttext, sortorder)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.GalleryID, p.Filename, p.Description, p.AltText, p.SortOrder,
	)
	if err != nil {
		return fmt.Errorf("inserting picture %d: %w", p.ID, err)
	}
	return nil
}

// CountLegacy returns the number of legacy galleries and pictures.
func CountLegacy(ctx context.Context, db *sql.DB) (galleries, pictures int, err error) {
	if err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ngg_gallery`).Scan(&galleries); err != nil {
		return 0, 0, fmt.Errorf("counting galleries: %w", err)
	}
	if err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ngg_pictures`).Scan(&pictures); err != nil {
		return 0, 0, fmt.Errorf("counting pictures: %w", err)
	}
	return galleries, pictures, nil
}
