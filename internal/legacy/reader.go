// Package legacy reads galleries and pictures from the legacy gallery
// plugin's tables. It never writes to them.
package legacy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ALT-F4-LLC/nggmigrate/internal/db"
	"github.com/ALT-F4-LLC/nggmigrate/internal/model"
)

var (
	// ErrNotFound is returned when a gallery, picture or container row does
	// not exist.
	ErrNotFound = errors.New("legacy row not found")

	// ErrUndecodable is returned when a displayed-gallery container payload
	// cannot be decoded by any known encoding.
	ErrUndecodable = errors.New("undecodable container payload")
)

// Reader resolves legacy rows. Table names are prefixed with prefix so the
// reader can point at a WordPress-style schema such as "wp_ngg_gallery".
type Reader struct {
	db      *sql.DB
	dialect db.Dialect
	prefix  string
}

// NewReader returns a Reader over conn.
func NewReader(conn *sql.DB, dialect db.Dialect, prefix string) *Reader {
	return &Reader{db: conn, dialect: dialect, prefix: prefix}
}

func (r *Reader) table(name string) string {
	return r.prefix + name
}

// ResolveGallery returns the gallery with the given ID.
func (r *Reader) ResolveGallery(ctx context.Context, galleryID int64) (*model.Gallery, error) {
	query := r.dialect.Rebind(fmt.Sprintf(
		`SELECT gid, path, title FROM %s WHERE gid = ?`, r.table("ngg_gallery"),
	))

	var g model.Gallery
	var title sql.NullString
	err := r.db.QueryRowContext(ctx, query, galleryID).Scan(&g.ID, &g.Path, &title)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("gallery %d: %w", galleryID, ErrNotFound)
		}
		return nil, fmt.Errorf("querying gallery %d: %w", galleryID, err)
	}
	g.Title = title.String
	return &g, nil
}

// ResolvePictures returns the pictures of a gallery ordered by sort order,
// then by ID. A gallery without pictures yields an empty slice.
func (r *Reader) ResolvePictures(ctx context.Context, galleryID int64) ([]model.Picture, error) {
	query := r.dialect.Rebind(fmt.Sprintf(
		`SELECT %s FROM %s WHERE galleryid = ? ORDER BY sortorder ASC, pid ASC`,
		pictureColumns, r.table("ngg_pictures"),
	))

	rows, err := r.db.QueryContext(ctx, query, galleryID)
	if err != nil {
		return nil, fmt.Errorf("querying pictures of gallery %d: %w", galleryID, err)
	}
	defer rows.Close()

	pics := make([]model.Picture, 0)
	for rows.Next() {
		p, err := scanPicture(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning picture: %w", err)
		}
		pics = append(pics, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating picture rows: %w", err)
	}

	model.SortPictures(pics)
	return pics, nil
}

// ResolvePicture returns a single picture.
func (r *Reader) ResolvePicture(ctx context.Context, pictureID int64) (*model.Picture, error) {
	query := r.dialect.Rebind(fmt.Sprintf(
		`SELECT %s FROM %s WHERE pid = ?`, pictureColumns, r.table("ngg_pictures"),
	))

	p, err := scanPicture(r.db.QueryRowContext(ctx, query, pictureID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("picture %d: %w", pictureID, ErrNotFound)
		}
		return nil, fmt.Errorf("querying picture %d: %w", pictureID, err)
	}
	return p, nil
}

// ResolveContainer loads a displayed-gallery container row and returns the
// first gallery ID it references.
func (r *Reader) ResolveContainer(ctx context.Context, containerID int64) (int64, error) {
	query := r.dialect.Rebind(fmt.Sprintf(
		`SELECT content FROM %s WHERE id = ?`, r.table("posts"),
	))

	var payload string
	if err := r.db.QueryRowContext(ctx, query, containerID).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("container %d: %w", containerID, ErrNotFound)
		}
		return 0, fmt.Errorf("querying container %d: %w", containerID, err)
	}

	id, err := DecodeContainer(payload)
	if err != nil {
		return 0, fmt.Errorf("container %d: %w", containerID, err)
	}
	return id, nil
}

const pictureColumns = `pid, galleryid, filename, description, alttext, sortorder`

type scanner interface {
	Scan(dest ...any) error
}

func scanPicture(s scanner) (*model.Picture, error) {
	var (
		p                model.Picture
		description, alt sql.NullString
		sortOrder        sql.NullInt64
	)
	if err := s.Scan(&p.ID, &p.GalleryID, &p.Filename, &description, &alt, &sortOrder); err != nil {
		return nil, err
	}
	p.Description = description.String
	p.AltText = alt.String
	p.SortOrder = int(sortOrder.Int64)
	return &p, nil
}
