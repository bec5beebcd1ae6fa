package render

import (
	"fmt"
	"strings"
	"time"

	humanize "github.com/dustin/go-humanize"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/ALT-F4-LLC/nggmigrate/internal/model"
)

// RenderReport renders the messages of a run followed by a summary table.
// Infos are green, warnings yellow and errors red.
func RenderReport(r *model.Report) string {
	var sections []string

	if msgs := renderMessages(r); msgs != "" {
		sections = append(sections, msgs)
	}
	sections = append(sections, RenderSummary(r))

	return strings.Join(sections, "\n\n")
}

func renderMessages(r *model.Report) string {
	var lines []string
	add := func(color, prefix string, msgs []string) {
		style := lipgloss.NewStyle().Foreground(ColorFromName(color))
		for _, m := range msgs {
			if ColorsEnabled() {
				lines = append(lines, style.Render(m))
			} else {
				lines = append(lines, prefix+m)
			}
		}
	}
	add("green", "", r.Infos)
	add("yellow", "Warning: ", r.Warnings)
	add("red", "Error: ", r.Errors)
	return strings.Join(lines, "\n")
}

func summaryRows(r *model.Report) [][]string {
	posts := "Posts updated"
	images := "Images imported"
	if r.DryRun {
		posts = "Posts to update"
		images = "Images to import"
	}
	rows := [][]string{
		{posts, humanize.Comma(int64(r.PostsMigrated))},
		{images, humanize.Comma(int64(r.ImagesMigrated))},
		{"Unchanged", humanize.Comma(int64(r.CountOutcome(model.OutcomeUnchanged)))},
		{"Failed", humanize.Comma(int64(r.CountOutcome(model.OutcomeFailed)))},
		{"Warnings", humanize.Comma(int64(len(r.Warnings)))},
		{"Errors", humanize.Comma(int64(len(r.Errors)))},
		{"Duration", r.Duration().Round(time.Millisecond).String()},
	}
	if r.Truncated {
		rows = append(rows, []string{"Stopped early", "yes"})
	}
	return rows
}

// RenderSummary renders the run counters as a two-column table.
func RenderSummary(r *model.Report) string {
	rows := summaryRows(r)

	if !ColorsEnabled() {
		var b strings.Builder
		for _, row := range rows {
			fmt.Fprintf(&b, "%-17s %s\n", row[0]+":", row[1])
		}
		return strings.TrimRight(b.String(), "\n")
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)
			if col == 0 {
				return s.Foreground(lipgloss.Color("8"))
			}
			if row < 0 || row >= len(rows) {
				return s.Align(lipgloss.Right)
			}
			switch rows[row][0] {
			case "Failed", "Errors":
				if rows[row][1] != "0" {
					return s.Align(lipgloss.Right).Foreground(ColorFromName("red")).Bold(true)
				}
			case "Warnings":
				if rows[row][1] != "0" {
					return s.Align(lipgloss.Right).Foreground(ColorFromName("yellow"))
				}
			}
			return s.Align(lipgloss.Right).Bold(true)
		})

	return t.Render()
}
