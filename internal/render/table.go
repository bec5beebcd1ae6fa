package render

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	humanize "github.com/dustin/go-humanize"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/ALT-F4-LLC/nggmigrate/internal/model"
)

const maxTitleWidth = 40

// StyledText applies a lipgloss style to text when colors are enabled.
// When colors are disabled, it returns the plain text unchanged.
func StyledText(text string, style lipgloss.Style) string {
	if ColorsEnabled() {
		return style.Render(text)
	}
	return text
}

// ColorFromName maps model color name strings to lipgloss colors.
func ColorFromName(name string) lipgloss.Color {
	switch name {
	case "red":
		return lipgloss.Color("9")
	case "yellow":
		return lipgloss.Color("11")
	case "blue":
		return lipgloss.Color("12")
	case "green":
		return lipgloss.Color("10")
	case "magenta":
		return lipgloss.Color("13")
	case "gray":
		return lipgloss.Color("8")
	default:
		return lipgloss.Color("15")
	}
}

// truncate shortens a string to maxLen runes, appending an ellipsis if truncated.
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// EmptyState renders a styled empty-state message with an optional contextual hint.
// When quiet is true the hint is suppressed.
func EmptyState(message, hint string, quiet bool) string {
	if !ColorsEnabled() {
		if quiet || hint == "" {
			return message
		}
		return message + "\n" + hint
	}

	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	hintStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)

	result := dimStyle.Render(message)
	if !quiet && hint != "" {
		result += "\n" + hintStyle.Render(hint)
	}
	return result
}

// Candidate is a content record that still carries legacy directives.
type Candidate struct {
	Record    *model.ContentRecord `json:"record"`
	Galleries int                  `json:"galleries"`
	Pictures  int                  `json:"pictures"`
}

// RenderTable renders candidate records as a table.
func RenderTable(rows []Candidate) string {
	if len(rows) == 0 {
		return EmptyState("No posts with legacy galleries found.", "Nothing to convert.", false)
	}

	if !ColorsEnabled() {
		return renderPlainTable(rows)
	}

	headers := []string{"ID", "Type", "Status", "Title", "Galleries", "Pictures", "Updated"}

	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells = append(cells, candidateToRow(r))
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		Headers(headers...).
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)

			if row == table.HeaderRow {
				return s.Bold(true).Foreground(lipgloss.Color("15"))
			}
			if row < 0 || row >= len(rows) {
				return s
			}

			rec := rows[row].Record
			switch col {
			case 1:
				return s.Foreground(ColorFromName(rec.Type.Color()))
			case 2:
				return s.Foreground(ColorFromName(rec.Status.Color()))
			case 3:
				return s.Bold(true)
			case 4, 5:
				return s.Align(lipgloss.Right)
			default:
				return s
			}
		})

	return t.Render()
}

func candidateToRow(r Candidate) []string {
	return []string{
		model.FormatID(r.Record.ID),
		string(r.Record.Type),
		string(r.Record.Status),
		truncate(r.Record.Title, maxTitleWidth),
		strconv.Itoa(r.Galleries),
		strconv.Itoa(r.Pictures),
		humanize.Time(r.Record.UpdatedAt),
	}
}

func renderPlainTable(rows []Candidate) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%-8s %-6s %-9s %-40s %-9s %-8s %s\n",
		"ID", "Type", "Status", "Title", "Galleries", "Pictures", "Updated")
	fmt.Fprintf(&b, "%s\n", strings.Repeat("-", 100))

	for _, r := range rows {
		fmt.Fprintf(&b, "%-8s %-6s %-9s %-40s %9d %8d %s\n",
			model.FormatID(r.Record.ID),
			r.Record.Type,
			r.Record.Status,
			truncate(r.Record.Title, maxTitleWidth),
			r.Galleries,
			r.Pictures,
			humanize.Time(r.Record.UpdatedAt),
		)
	}

	return b.String()
}
