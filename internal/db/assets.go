package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ALT-F4-LLC/nggmigrate/internal/model"
)

// Meta keys stored for attachment rows.
const (
	MetaAltText = "_wp_attachment_image_alt"
	MetaSizes   = "_nggmigrate_sizes"
)

const assetColumns = `id, parent_id, title, content, excerpt, menu_order, mime_type, guid, ingest_token, created_at`

// InsertAttachment inserts an attachment row owned by a.ParentID together
// with its alt text and size metadata, and returns the new ID.
func InsertAttachment(ctx context.Context, db *sql.DB, a *model.Asset) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	res, err := tx.ExecContext(ctx,
		`INSERT INTO posts (parent_id, post_type, status, title, content, excerpt, menu_order, mime_type, guid, ingest_token, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ParentID,
		string(model.PostTypeAttachment),
		string(model.PostStatusInherit),
		a.Title,
		a.Content,
		a.Excerpt,
		a.MenuOrder,
		a.MimeType,
		a.URL,
		nilIfEmpty(a.Token),
		now,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting attachment: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	if a.AltText != "" {
		if err := setMeta(ctx, tx, id, MetaAltText, a.AltText); err != nil {
			return 0, err
		}
	}
	if len(a.Sizes) > 0 {
		raw, err := json.Marshal(a.Sizes)
		if err != nil {
			return 0, fmt.Errorf("encoding sizes: %w", err)
		}
		if err := setMeta(ctx, tx, id, MetaSizes, string(raw)); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return id, nil
}

// GetAsset retrieves an attachment by ID with its metadata.
func GetAsset(ctx context.Context, db *sql.DB, id int64) (*model.Asset, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+assetColumns+` FROM posts WHERE id = ? AND post_type = 'attachment'`, id,
	)
	a, err := scanAsset(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning attachment: %w", err)
	}

	assets := []model.Asset{*a}
	if err := HydrateAssetMeta(ctx, db, assets); err != nil {
		return nil, err
	}
	return &assets[0], nil
}

// ListOwnedAssets returns the attachments owned by a post ordered by menu
// order, then ID. With imagesOnly set, non-image attachments are skipped.
func ListOwnedAssets(ctx context.Context, db *sql.DB, parentID int64, imagesOnly bool) ([]model.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM posts
	          WHERE parent_id = ? AND post_type = 'attachment'`
	if imagesOnly {
		query += ` AND mime_type LIKE 'image/%'`
	}
	query += ` ORDER BY menu_order ASC, id ASC`

	return queryAssets(ctx, db, query, parentID)
}

// FindAssetsByToken returns the attachments owned by parentID that were
// ingested with the given correlation token.
func FindAssetsByToken(ctx context.Context, db *sql.DB, parentID int64, token string) ([]model.Asset, error) {
	return queryAssets(ctx, db,
		`SELECT `+assetColumns+` FROM posts
		 WHERE parent_id = ? AND post_type = 'attachment' AND ingest_token = ?
		 ORDER BY id ASC`,
		parentID, token,
	)
}

// UpdateAsset persists the title, description, excerpt, menu order and alt
// text of an attachment.
func UpdateAsset(ctx context.Context, db *sql.DB, a *model.Asset) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	res, err := tx.ExecContext(ctx,
		`UPDATE posts SET title = ?, content = ?, excerpt = ?, menu_order = ?, updated_at = ?
		 WHERE id = ? AND post_type = 'attachment'`,
		a.Title, a.Content, a.Excerpt, a.MenuOrder, now, a.ID,
	)
	if err != nil {
		return fmt.Errorf("updating attachment: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	if err := setMeta(ctx, tx, a.ID, MetaAltText, a.AltText); err != nil {
		return err
	}

	return tx.Commit()
}

// HydrateAssetMeta bulk-loads alt text and sizes for a set of assets. This
// avoids N+1 queries when listing a post's attachments.
func HydrateAssetMeta(ctx context.Context, db *sql.DB, assets []model.Asset) error {
	if len(assets) == 0 {
		return nil
	}

	ids := make([]any, len(assets))
	index := make(map[int64]int, len(assets))
	for i, a := range assets {
		ids[i] = a.ID
		index[a.ID] = i
	}

	query := fmt.Sprintf(
		`SELECT post_id, meta_key, meta_value FROM postmeta
		 WHERE post_id IN (%s) AND meta_key IN ('%s', '%s')`,
		makePlaceholders(len(ids)), MetaAltText, MetaSizes,
	)

	rows, err := db.QueryContext(ctx, query, ids...)
	if err != nil {
		return fmt.Errorf("querying attachment meta: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			postID int64
			key    string
			value  sql.NullString
		)
		if err := rows.Scan(&postID, &key, &value); err != nil {
			return fmt.Errorf("scanning attachment meta: %w", err)
		}
		i, ok := index[postID]
		if !ok {
			continue
		}
		switch key {
		case MetaAltText:
			assets[i].AltText = value.String
		case MetaSizes:
			var sizes map[string]model.ImageSize
			if err := json.Unmarshal([]byte(value.String), &sizes); err != nil {
				return fmt.Errorf("decoding sizes for attachment %d: %w", postID, err)
			}
			assets[i].Sizes = sizes
		}
	}
	return rows.Err()
}

func queryAssets(ctx context.Context, db *sql.DB, query string, args ...any) ([]model.Asset, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying attachments: %w", err)
	}
	defer rows.Close()

	assets := make([]model.Asset, 0)
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning attachment: %w", err)
		}
		assets = append(assets, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating attachment rows: %w", err)
	}

	if err := HydrateAssetMeta(ctx, db, assets); err != nil {
		return nil, err
	}
	return assets, nil
}

func scanAsset(s scanner) (*model.Asset, error) {
	var (
		a         model.Asset
		parentID  sql.NullInt64
		token     sql.NullString
		createdAt string
	)
	if err := s.Scan(&a.ID, &parentID, &a.Title, &a.Content, &a.Excerpt, &a.MenuOrder,
		&a.MimeType, &a.URL, &token, &createdAt); err != nil {
		return nil, err
	}
	a.ParentID = parentID.Int64
	a.Token = token.String

	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	a.CreatedAt = t
	return &a, nil
}

func setMeta(ctx context.Context, ex execer, postID int64, key, value string) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO postmeta (post_id, meta_key, meta_value) VALUES (?, ?, ?)
		 ON CONFLICT (post_id, meta_key) DO UPDATE SET meta_value = excluded.meta_value`,
		postID, key, value,
	)
	if err != nil {
		return fmt.Errorf("setting meta %q on post %d: %w", key, postID, err)
	}
	return nil
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
