package render

import (
	"strings"
	"testing"
	"time"

	"github.com/ALT-F4-LLC/nggmigrate/internal/directive"
	"github.com/ALT-F4-LLC/nggmigrate/internal/model"
)

func makeTestRecord(id int64, title string) *model.ContentRecord {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return &model.ContentRecord{
		ID:        id,
		Type:      model.PostTypePost,
		Status:    model.PostStatusPublish,
		Title:     title,
		Body:      "Look: [nggallery id=5]",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestRenderTablePlain(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	got := RenderTable([]Candidate{
		{Record: makeTestRecord(3, "Holiday"), Galleries: 2, Pictures: 1},
		{Record: makeTestRecord(7, "Garden"), Galleries: 0, Pictures: 4},
	})

	for _, want := range []string{"#3", "#7", "Holiday", "Garden", "Galleries", "Pictures"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in output, got:\n%s", want, got)
		}
	}
	if lines := strings.Count(got, "\n"); lines != 4 {
		t.Errorf("got %d lines, want 4 (header, rule, two rows):\n%s", lines, got)
	}
}

func TestRenderTableEmpty(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	got := RenderTable(nil)
	if !strings.Contains(got, "No posts with legacy galleries found.") {
		t.Errorf("unexpected empty state: %q", got)
	}
}

func TestRenderTableTruncatesTitle(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	long := strings.Repeat("x", 60)
	got := RenderTable([]Candidate{{Record: makeTestRecord(1, long)}})
	if strings.Contains(got, long) {
		t.Error("expected long title to be truncated")
	}
	if !strings.Contains(got, strings.Repeat("x", 37)+"...") {
		t.Errorf("expected ellipsis, got:\n%s", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"abcdef", 3, "abc"},
		{"ünïcödé stuff", 8, "ünïcö..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestRenderReportPlain(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	start := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	r := model.NewReport(start)
	r.PostsMigrated = 1
	r.ImagesMigrated = 1200
	r.Info("Updated post %d", 3)
	r.Warn("Could not find images for nggallery %d in post %d", 999, 4)
	r.Error("Could not update post %d: %s", 5, "disk full")
	r.AddRecord(model.RecordResult{ID: 3, Outcome: model.OutcomeConverted})
	r.AddRecord(model.RecordResult{ID: 4, Outcome: model.OutcomeUnchanged})
	r.AddRecord(model.RecordResult{ID: 5, Outcome: model.OutcomeFailed})
	r.FinishedAt = start.Add(1500 * time.Millisecond)

	got := RenderReport(r)

	for _, want := range []string{
		"Updated post 3\n",
		"Warning: Could not find images for nggallery 999 in post 4\n",
		"Error: Could not update post 5: disk full\n",
		"Posts updated:    1\n",
		"Images imported:  1,200\n",
		"Unchanged:        1\n",
		"Failed:           1\n",
		"Duration:         1.5s",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in output, got:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Stopped early") {
		t.Error("did not expect truncation row")
	}
}

func TestRenderSummaryDryRunAndTruncated(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	r := model.NewReport(time.Now())
	r.DryRun = true
	r.Truncated = true

	got := RenderSummary(r)
	for _, want := range []string{"Posts to update:", "Images to import:", "Stopped early:    yes"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in output, got:\n%s", want, got)
		}
	}
}

func TestRenderDetailPlain(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	rec := makeTestRecord(3, "Holiday")
	rec.Body = "Look: [nggallery id=5] and [singlepic]"
	assets := []model.Asset{{ID: 41, Title: "a", URL: "https://example.com/a.jpg"}}
	activity := []model.Activity{{FieldChanged: "content", OldValue: "abc", NewValue: "abcdef", ChangedBy: "ana", CreatedAt: rec.CreatedAt}}

	got := RenderDetail(rec, directive.Scan(rec.Body), assets, activity)

	for _, want := range []string{
		"#3  Holiday",
		"post  publish",
		"Legacy directives (2)",
		"nggallery 5  [nggallery id=5]",
		"singlepic (no id)",
		"Attachments (1)",
		"41  a  https://example.com/a.jpg",
		"Body\nLook: [nggallery id=5] and [singlepic]",
		"ana changed content (3 B -> 6 B)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in output, got:\n%s", want, got)
		}
	}
}

func TestRenderActivityPlainDefaultsActor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	got := RenderActivity([]model.Activity{{FieldChanged: "content", CreatedAt: time.Now()}})
	if !strings.HasPrefix(got, "Activity\n  system changed content") {
		t.Errorf("unexpected output:\n%s", got)
	}
}

func TestRenderBodyPassthroughWithoutColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	body := "Look:\n[nggallery id=5]"
	got, err := RenderBody(body, 20)
	if err != nil {
		t.Fatalf("RenderBody: %v", err)
	}
	if got != body {
		t.Errorf("got %q, want passthrough", got)
	}
}

func TestColorsEnabledHonorsDumbTerminal(t *testing.T) {
	t.Setenv("TERM", "dumb")
	if ColorsEnabled() {
		t.Error("ColorsEnabled() = true with TERM=dumb")
	}
}
