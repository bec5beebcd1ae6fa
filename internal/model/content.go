package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// IDPrefix is the prefix used for post IDs in display output.
const IDPrefix = "#"

// PostType is the kind of a row in the content table.
type PostType string

const (
	PostTypePost             PostType = "post"
	PostTypePage             PostType = "page"
	PostTypeAttachment       PostType = "attachment"
	PostTypeDisplayedGallery PostType = "ngg_displayed_gallery"
)

var validPostTypes = []PostType{
	PostTypePost,
	PostTypePage,
	PostTypeAttachment,
	PostTypeDisplayedGallery,
}

// ValidatePostType returns an error if t is not a recognized post type.
func ValidatePostType(t PostType) error {
	for _, v := range validPostTypes {
		if t == v {
			return nil
		}
	}
	return fmt.Errorf("invalid post type %q: must be one of %v", t, validPostTypes)
}

// Color returns a color name string suitable for terminal rendering.
func (t PostType) Color() string {
	switch t {
	case PostTypePost:
		return "blue"
	case PostTypePage:
		return "magenta"
	case PostTypeAttachment:
		return "green"
	default:
		return "gray"
	}
}

// PostStatus is the publication state of a content row.
type PostStatus string

const (
	PostStatusPublish PostStatus = "publish"
	PostStatusDraft   PostStatus = "draft"
	PostStatusPending PostStatus = "pending"
	PostStatusPrivate PostStatus = "private"
	PostStatusFuture  PostStatus = "future"
	PostStatusInherit PostStatus = "inherit"
	PostStatusTrash   PostStatus = "trash"
)

var validPostStatuses = []PostStatus{
	PostStatusPublish,
	PostStatusDraft,
	PostStatusPending,
	PostStatusPrivate,
	PostStatusFuture,
	PostStatusInherit,
	PostStatusTrash,
}

// AnyStatus lists the statuses a migration scans when no explicit status
// filter is given. Trashed and inherited rows are never candidates.
var AnyStatus = []PostStatus{
	PostStatusPublish,
	PostStatusDraft,
	PostStatusPending,
	PostStatusPrivate,
	PostStatusFuture,
}

// ValidatePostStatus returns an error if s is not a recognized status.
func ValidatePostStatus(s PostStatus) error {
	for _, v := range validPostStatuses {
		if s == v {
			return nil
		}
	}
	return fmt.Errorf("invalid post status %q: must be one of %v", s, validPostStatuses)
}

// Color returns a color name string suitable for terminal rendering.
func (s PostStatus) Color() string {
	switch s {
	case PostStatusPublish:
		return "green"
	case PostStatusDraft, PostStatusPending:
		return "yellow"
	case PostStatusPrivate:
		return "magenta"
	case PostStatusTrash:
		return "red"
	default:
		return "gray"
	}
}

// FormatID returns the display form of a post ID, e.g. "#5".
func FormatID(id int64) string {
	return IDPrefix + strconv.FormatInt(id, 10)
}

// ParseID accepts both "#5" and "5" and returns the numeric ID.
func ParseID(input string) (int64, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, fmt.Errorf("empty post ID")
	}
	s = strings.TrimPrefix(s, IDPrefix)

	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid post ID %q: %w", input, err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid post ID %q: must be positive", input)
	}

	return id, nil
}

// ContentRecord is a post or page whose body may carry legacy gallery
// directives. It is the unit of migration.
type ContentRecord struct {
	ID        int64
	Type      PostType
	Status    PostStatus
	Title     string
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type contentRecordJSON struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// MarshalJSON renders the record with a display ID and RFC3339 timestamps.
func (r *ContentRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(contentRecordJSON{
		ID:        FormatID(r.ID),
		Type:      string(r.Type),
		Status:    string(r.Status),
		Title:     r.Title,
		Body:      r.Body,
		CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: r.UpdatedAt.UTC().Format(time.RFC3339),
	})
}
