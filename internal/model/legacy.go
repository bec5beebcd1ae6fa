package model

import (
	"sort"
	"strings"
)

// Gallery is a row of the legacy gallery table.
type Gallery struct {
	ID    int64  `json:"id"`
	Path  string `json:"path"`
	Title string `json:"title,omitempty"`
}

// Picture is a row of the legacy picture table.
type Picture struct {
	ID          int64  `json:"id"`
	GalleryID   int64  `json:"gallery_id"`
	Filename    string `json:"filename"`
	Description string `json:"description"`
	AltText     string `json:"alt_text"`
	SortOrder   int    `json:"sort_order"`
}

// Title returns the alt text, or the filename when the alt text is blank.
func (p Picture) Title() string {
	if alt := strings.TrimSpace(p.AltText); alt != "" {
		return p.AltText
	}
	return p.Filename
}

// SortPictures orders pictures by sort order, then by ID.
func SortPictures(pics []Picture) {
	sort.SliceStable(pics, func(i, j int) bool {
		if pics[i].SortOrder != pics[j].SortOrder {
			return pics[i].SortOrder < pics[j].SortOrder
		}
		return pics[i].ID < pics[j].ID
	})
}
