package model

import (
	"fmt"
	"time"
)

// Outcome is the terminal state of one content record in a run.
type Outcome string

const (
	OutcomeConverted Outcome = "converted"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeFailed    Outcome = "failed"
)

// Color returns a color name string suitable for terminal rendering.
func (o Outcome) Color() string {
	switch o {
	case OutcomeConverted:
		return "green"
	case OutcomeFailed:
		return "red"
	default:
		return "yellow"
	}
}

// RecordResult summarizes what happened to one content record.
type RecordResult struct {
	ID         int64   `json:"id"`
	Outcome    Outcome `json:"outcome"`
	Directives int     `json:"directives"`
	Rewritten  int     `json:"rewritten"`
	Assets     int     `json:"assets"`
}

// Report accumulates counters and messages for a single migration run.
// It is not safe for concurrent use.
type Report struct {
	PostsMigrated  int            `json:"posts_migrated"`
	ImagesMigrated int            `json:"images_migrated"`
	Infos          []string       `json:"infos"`
	Warnings       []string       `json:"warnings"`
	Errors         []string       `json:"errors"`
	Records        []RecordResult `json:"records"`
	DryRun         bool           `json:"dry_run"`
	Truncated      bool           `json:"truncated"`
	StartedAt      time.Time      `json:"started_at"`
	FinishedAt     time.Time      `json:"finished_at"`
}

// NewReport returns an empty report stamped with the run start time.
func NewReport(startedAt time.Time) *Report {
	return &Report{
		Infos:     []string{},
		Warnings:  []string{},
		Errors:    []string{},
		Records:   []RecordResult{},
		StartedAt: startedAt,
	}
}

// Info appends an informational message.
func (r *Report) Info(format string, args ...any) {
	r.Infos = append(r.Infos, fmt.Sprintf(format, args...))
}

// Warn appends a warning. Warnings never stop a run.
func (r *Report) Warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Error appends a record-level failure message.
func (r *Report) Error(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// AddRecord stores the outcome of a processed record.
func (r *Report) AddRecord(res RecordResult) {
	r.Records = append(r.Records, res)
}

// Summary returns the terminal summary line.
func (r *Report) Summary() string {
	if r.DryRun {
		return fmt.Sprintf("Would update %d posts and %d images.", r.PostsMigrated, r.ImagesMigrated)
	}
	return fmt.Sprintf("Updated %d posts and %d images.", r.PostsMigrated, r.ImagesMigrated)
}

// Duration returns the wall-clock time the run took.
func (r *Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// CountOutcome returns how many records ended in the given outcome.
func (r *Report) CountOutcome(o Outcome) int {
	n := 0
	for _, rec := range r.Records {
		if rec.Outcome == o {
			n++
		}
	}
	return n
}
