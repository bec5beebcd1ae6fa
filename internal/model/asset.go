package model

import (
	"strings"
	"time"
)

// Image size names recorded for an attachment.
const (
	SizeFull   = "full"
	SizeMedium = "medium"
)

// ImageSize is one rendition of an attachment.
type ImageSize struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Asset is an attachment row owned by exactly one content record.
type Asset struct {
	ID        int64                `json:"id"`
	ParentID  int64                `json:"parent_id"`
	Title     string               `json:"title"`
	Content   string               `json:"content"`
	Excerpt   string               `json:"excerpt"`
	AltText   string               `json:"alt_text"`
	URL       string               `json:"url"`
	MimeType  string               `json:"mime_type"`
	Token     string               `json:"-"`
	MenuOrder int                  `json:"menu_order"`
	Sizes     map[string]ImageSize `json:"sizes,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
}

// IsImage reports whether the asset carries an image mime type.
func (a *Asset) IsImage() bool {
	return strings.HasPrefix(a.MimeType, "image/")
}

// SizeURL returns the URL of the named rendition, falling back to the
// original upload when the rendition was never generated.
func (a *Asset) SizeURL(size string) string {
	if s, ok := a.Sizes[size]; ok && s.URL != "" {
		return s.URL
	}
	return a.URL
}

// Caption returns the excerpt, or the description when no excerpt is set.
func (a *Asset) Caption() string {
	if strings.TrimSpace(a.Excerpt) != "" {
		return a.Excerpt
	}
	return a.Content
}

// AssetIDs returns the IDs of assets in order.
func AssetIDs(assets []Asset) []int64 {
	ids := make([]int64, len(assets))
	for i, a := range assets {
		ids[i] = a.ID
	}
	return ids
}
