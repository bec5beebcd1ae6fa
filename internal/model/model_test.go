package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestFormatID(t *testing.T) {
	if got := FormatID(5); got != "#5" {
		t.Errorf("FormatID(5) = %q, want %q", got, "#5")
	}
	if got := FormatID(42); got != "#42" {
		t.Errorf("FormatID(42) = %q, want %q", got, "#42")
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"#5", 5, false},
		{"5", 5, false},
		{" 42 ", 42, false},
		{"", 0, true},
		{"#", 0, true},
		{"abc", 0, true},
		{"#0", 0, true},
		{"#-1", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseID(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseID(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestValidatePostTypeAndStatus(t *testing.T) {
	for _, pt := range validPostTypes {
		if err := ValidatePostType(pt); err != nil {
			t.Errorf("ValidatePostType(%q) unexpected error: %v", pt, err)
		}
	}
	if err := ValidatePostType("invalid"); err == nil {
		t.Error("ValidatePostType('invalid') expected error, got nil")
	}

	for _, s := range validPostStatuses {
		if err := ValidatePostStatus(s); err != nil {
			t.Errorf("ValidatePostStatus(%q) unexpected error: %v", s, err)
		}
	}
	if err := ValidatePostStatus("gone"); err == nil {
		t.Error("ValidatePostStatus('gone') expected error, got nil")
	}
}

func TestAnyStatusExcludesTrashAndInherit(t *testing.T) {
	for _, s := range AnyStatus {
		if s == PostStatusTrash || s == PostStatusInherit {
			t.Errorf("AnyStatus contains %q", s)
		}
	}
}

func TestContentRecordMarshalJSON(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := &ContentRecord{ID: 7, Type: PostTypePage, Status: PostStatusDraft, Title: "t", Body: "b", CreatedAt: ts, UpdatedAt: ts}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got["id"] != "#7" {
		t.Errorf("id = %v, want #7", got["id"])
	}
	if got["created_at"] != "2026-01-02T03:04:05Z" {
		t.Errorf("created_at = %v", got["created_at"])
	}
}

func TestPictureTitleFallsBackToFilename(t *testing.T) {
	tests := []struct {
		alt, want string
	}{
		{"", "a.jpg"},
		{"   ", "a.jpg"},
		{"Bee", "Bee"},
	}
	for _, tt := range tests {
		p := Picture{Filename: "a.jpg", AltText: tt.alt}
		if got := p.Title(); got != tt.want {
			t.Errorf("Title() with alt %q = %q, want %q", tt.alt, got, tt.want)
		}
	}
}

func TestSortPictures(t *testing.T) {
	pics := []Picture{
		{ID: 10, SortOrder: 3},
		{ID: 12, SortOrder: 1},
		{ID: 11, SortOrder: 1},
		{ID: 13, SortOrder: 2},
	}
	SortPictures(pics)

	want := []int64{11, 12, 13, 10}
	for i, id := range want {
		if pics[i].ID != id {
			t.Errorf("pics[%d].ID = %d, want %d", i, pics[i].ID, id)
		}
	}
}

func TestAssetSizeURLAndCaption(t *testing.T) {
	a := Asset{URL: "https://x/full.jpg", Content: "desc"}
	if got := a.SizeURL(SizeMedium); got != "https://x/full.jpg" {
		t.Errorf("SizeURL without sizes = %q", got)
	}
	a.Sizes = map[string]ImageSize{SizeMedium: {URL: "https://x/m.jpg"}}
	if got := a.SizeURL(SizeMedium); got != "https://x/m.jpg" {
		t.Errorf("SizeURL(medium) = %q", got)
	}

	if got := a.Caption(); got != "desc" {
		t.Errorf("Caption() = %q, want desc", got)
	}
	a.Excerpt = "short"
	if got := a.Caption(); got != "short" {
		t.Errorf("Caption() = %q, want short", got)
	}
}

func TestCorrelationTokenUnique(t *testing.T) {
	now := time.Now()
	a, err := NewCorrelationToken("https://x/a.jpg", "d", now)
	if err != nil {
		t.Fatalf("NewCorrelationToken: %v", err)
	}
	b, err := NewCorrelationToken("https://x/a.jpg", "d", now)
	if err != nil {
		t.Fatalf("NewCorrelationToken: %v", err)
	}
	if a == b {
		t.Error("tokens for identical inputs should differ")
	}
	if !strings.HasPrefix(a.String(), "engg-") {
		t.Errorf("String() = %q, want engg- prefix", a.String())
	}
	if len(a.Short()) != 8 {
		t.Errorf("Short() = %q, want 8 chars", a.Short())
	}

	parsed, err := ParseCorrelationToken(a.String())
	if err != nil {
		t.Fatalf("ParseCorrelationToken: %v", err)
	}
	if parsed != a {
		t.Errorf("ParseCorrelationToken(%q) = %v", a.String(), parsed)
	}
	if _, err := ParseCorrelationToken("nope"); err == nil {
		t.Error("ParseCorrelationToken('nope') expected error")
	}
	if (CorrelationToken{}).IsZero() != true {
		t.Error("zero token should report IsZero")
	}
}

func TestReportSummary(t *testing.T) {
	r := NewReport(time.Now())
	r.PostsMigrated = 3
	r.ImagesMigrated = 9
	if got := r.Summary(); got != "Updated 3 posts and 9 images." {
		t.Errorf("Summary() = %q", got)
	}
	r.DryRun = true
	if got := r.Summary(); got != "Would update 3 posts and 9 images." {
		t.Errorf("dry-run Summary() = %q", got)
	}
}

func TestReportCountOutcome(t *testing.T) {
	r := NewReport(time.Now())
	r.AddRecord(RecordResult{ID: 1, Outcome: OutcomeConverted})
	r.AddRecord(RecordResult{ID: 2, Outcome: OutcomeFailed})
	r.AddRecord(RecordResult{ID: 3, Outcome: OutcomeConverted})

	if got := r.CountOutcome(OutcomeConverted); got != 2 {
		t.Errorf("CountOutcome(converted) = %d, want 2", got)
	}
	if got := r.CountOutcome(OutcomeUnchanged); got != 0 {
		t.Errorf("CountOutcome(unchanged) = %d, want 0", got)
	}
}

func TestParseGalleryMode(t *testing.T) {
	tests := []struct {
		in      string
		want    GalleryMode
		wantErr bool
	}{
		{"", GalleryModeExclude, false},
		{"exclude", GalleryModeExclude, false},
		{"IDS", GalleryModeIDs, false},
		{"all", "", true},
	}
	for _, tt := range tests {
		got, err := ParseGalleryMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseGalleryMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseGalleryMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFloatAlignClass(t *testing.T) {
	tests := map[string]string{
		"center":   "aligncenter",
		"RIGHT":    "alignright",
		"left":     "alignleft",
		"none":     "alignleft",
		"":         "alignleft",
		"diagonal": "alignleft",
	}
	for in, want := range tests {
		if got := ParseFloat(in).AlignClass(); got != want {
			t.Errorf("ParseFloat(%q).AlignClass() = %q, want %q", in, got, want)
		}
	}
}
