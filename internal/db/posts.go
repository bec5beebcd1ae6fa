package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ALT-F4-LLC/nggmigrate/internal/model"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// scanner abstracts *sql.Row and *sql.Rows for scanning a single row.
type scanner interface {
	Scan(dest ...any) error
}

const postColumns = `id, post_type, status, title, content, created_at, updated_at`

// FindOptions filters the posts considered by FindPostIDs.
type FindOptions struct {
	Search   string             // substring the content must contain
	Types    []model.PostType   // post types (multiple = OR)
	Statuses []model.PostStatus // statuses (multiple = OR)
	Limit    int                // max results; <= 0 means unbounded
}

// likeEscaper escapes LIKE wildcards so Search matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// FindPostIDs returns the IDs of posts matching opts in ascending ID order.
func FindPostIDs(ctx context.Context, db *sql.DB, opts FindOptions) ([]int64, error) {
	var (
		whereClauses []string
		args         []any
	)

	if opts.Search != "" {
		whereClauses = append(whereClauses, `content LIKE ? ESCAPE '\'`)
		args = append(args, "%"+likeEscaper.Replace(opts.Search)+"%")
	}

	if len(opts.Types) > 0 {
		whereClauses = append(whereClauses, fmt.Sprintf("post_type IN (%s)", makePlaceholders(len(opts.Types))))
		for _, t := range opts.Types {
			args = append(args, string(t))
		}
	}

	if len(opts.Statuses) > 0 {
		whereClauses = append(whereClauses, fmt.Sprintf("status IN (%s)", makePlaceholders(len(opts.Statuses))))
		for _, s := range opts.Statuses {
			args = append(args, string(s))
		}
	}

	query := "SELECT id FROM posts"
	if len(whereClauses) > 0 {
		query += " WHERE " + strings.Join(whereClauses, " AND ")
	}
	query += " ORDER BY id ASC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying posts: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning post id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating post rows: %w", err)
	}

	return ids, nil
}

// CreatePost inserts a content row and returns its ID.
func CreatePost(ctx context.Context, db *sql.DB, rec *model.ContentRecord) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	postType := rec.Type
	if postType == "" {
		postType = model.PostTypePost
	}
	status := rec.Status
	if status == "" {
		status = model.PostStatusPublish
	}

	res, err := db.ExecContext(ctx,
		`INSERT INTO posts (post_type, status, title, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		string(postType), string(status), rec.Title, rec.Body, now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting post: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}
	return id, nil
}

// GetPost retrieves a content row by ID.
func GetPost(ctx context.Context, db *sql.DB, id int64) (*model.ContentRecord, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = ?`, id,
	)
	rec, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning post: %w", err)
	}
	return rec, nil
}

// GetPostsByIDs retrieves multiple posts in a single query, keyed by ID.
// IDs that don't exist are silently skipped.
func GetPostsByIDs(ctx context.Context, db *sql.DB, ids []int64) (map[int64]*model.ContentRecord, error) {
	if len(ids) == 0 {
		return make(map[int64]*model.ContentRecord), nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	query := fmt.Sprintf(
		`SELECT `+postColumns+` FROM posts WHERE id IN (%s)`, makePlaceholders(len(ids)),
	)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying posts by IDs: %w", err)
	}
	defer rows.Close()

	result := make(map[int64]*model.ContentRecord, len(ids))
	for rows.Next() {
		rec, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning post: %w", err)
		}
		result[rec.ID] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating post rows: %w", err)
	}

	return result, nil
}

// UpdatePostContent replaces a post's body and logs the previous body to the
// activity log in the same transaction.
func UpdatePostContent(ctx context.Context, db *sql.DB, id int64, oldBody, newBody, changedBy string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	res, err := tx.ExecContext(ctx,
		`UPDATE posts SET content = ?, updated_at = ? WHERE id = ?`,
		newBody, now, id,
	)
	if err != nil {
		return fmt.Errorf("updating post: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	if err := RecordActivity(ctx, tx, id, "content", oldBody, newBody, changedBy); err != nil {
		return err
	}

	return tx.Commit()
}

func scanPost(s scanner) (*model.ContentRecord, error) {
	var (
		rec                  model.ContentRecord
		postType, status     string
		createdAt, updatedAt string
	)
	if err := s.Scan(&rec.ID, &postType, &status, &rec.Title, &rec.Body, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	rec.Type = model.PostType(postType)
	rec.Status = model.PostStatus(status)

	var err error
	if rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if rec.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &rec, nil
}

// makePlaceholders returns n comma-separated "?" placeholders.
func makePlaceholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}
