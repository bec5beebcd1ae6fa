package model

import (
	"fmt"
	"strings"
)

// GalleryMode selects how a whole-gallery directive is rewritten.
type GalleryMode string

const (
	// GalleryModeExclude emits [gallery], excluding images the record
	// owned before the migration.
	GalleryModeExclude GalleryMode = "exclude"
	// GalleryModeIDs emits [gallery link="file" ids="..."] listing the new
	// assets explicitly.
	GalleryModeIDs GalleryMode = "ids"
)

// ParseGalleryMode accepts "exclude" or "ids"; the empty string means exclude.
func ParseGalleryMode(s string) (GalleryMode, error) {
	switch GalleryMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", GalleryModeExclude:
		return GalleryModeExclude, nil
	case GalleryModeIDs:
		return GalleryModeIDs, nil
	default:
		return "", fmt.Errorf("invalid gallery mode %q: must be one of [exclude ids]", s)
	}
}

// Float is the alignment of a single-picture directive.
type Float string

const (
	FloatLeft   Float = "left"
	FloatRight  Float = "right"
	FloatCenter Float = "center"
	FloatNone   Float = "none"
)

// ParseFloat maps a directive's float attribute to a Float. Unknown and
// empty values fall back to left.
func ParseFloat(s string) Float {
	switch f := Float(strings.ToLower(strings.TrimSpace(s))); f {
	case FloatRight, FloatCenter, FloatNone:
		return f
	default:
		return FloatLeft
	}
}

// AlignClass returns the CSS alignment class for the float.
func (f Float) AlignClass() string {
	switch f {
	case FloatCenter:
		return "aligncenter"
	case FloatRight:
		return "alignright"
	default:
		return "alignleft"
	}
}
