package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ALT-F4-LLC/nggmigrate/internal/model"
)

// execer abstracts *sql.DB and *sql.Tx for executing statements.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// RecordActivity logs a field change on a post.
func RecordActivity(ctx context.Context, ex execer, postID int64, field, oldVal, newVal, changedBy string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := ex.ExecContext(ctx,
		`INSERT INTO activity_log (post_id, field_changed, old_value, new_value, changed_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		postID, field, oldVal, newVal, changedBy, now,
	)
	if err != nil {
		return fmt.Errorf("recording activity: %w", err)
	}
	return nil
}

// GetActivity retrieves activity log entries for a post, most recent first.
func GetActivity(ctx context.Context, db *sql.DB, postID int64, limit int) ([]model.Activity, error) {
	query := `SELECT id, post_id, field_changed, old_value, new_value, changed_by, created_at
	          FROM activity_log
	          WHERE post_id = ?
	          ORDER BY created_at DESC, id DESC`
	args := []any{postID}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying activity: %w", err)
	}
	defer rows.Close()

	var activities []model.Activity
	for rows.Next() {
		var a model.Activity
		var oldVal, newVal, changedBy sql.NullString
		var createdAt string
		if err := rows.Scan(&a.ID, &a.PostID, &a.FieldChanged, &oldVal, &newVal, &changedBy, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning activity row: %w", err)
		}
		a.OldValue = oldVal.String
		a.NewValue = newVal.String
		a.ChangedBy = changedBy.String

		t, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing activity created_at: %w", err)
		}
		a.CreatedAt = t

		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activity rows: %w", err)
	}

	return activities, nil
}
