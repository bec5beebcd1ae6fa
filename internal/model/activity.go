package model

import "time"

// Activity records a change made to a content record by a migration run.
// For body rewrites OldValue holds the pristine body so it can be restored
// by hand.
type Activity struct {
	ID           int64     `json:"id"`
	PostID       int64     `json:"post_id"`
	FieldChanged string    `json:"field_changed"`
	OldValue     string    `json:"old_value"`
	NewValue     string    `json:"new_value"`
	ChangedBy    string    `json:"changed_by"`
	CreatedAt    time.Time `json:"created_at"`
}
