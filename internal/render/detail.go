package render

import (
	"fmt"
	"strings"

	humanize "github.com/dustin/go-humanize"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/ALT-F4-LLC/nggmigrate/internal/directive"
	"github.com/ALT-F4-LLC/nggmigrate/internal/model"
)

// RenderDetail renders a content record with its legacy directives, the
// image attachments it owns and its rewrite history.
func RenderDetail(rec *model.ContentRecord, matches []directive.Match, assets []model.Asset, activity []model.Activity) string {
	if !ColorsEnabled() {
		return renderPlainDetail(rec, matches, assets, activity)
	}

	sections := []string{renderHeader(rec)}

	if len(matches) > 0 {
		sections = append(sections, renderDirectives(matches))
	}
	if len(assets) > 0 {
		sections = append(sections, renderAssets(assets))
	}
	if rec.Body != "" {
		sections = append(sections, renderBody(rec.Body))
	}
	if len(activity) > 0 {
		sections = append(sections, RenderActivity(activity))
	}

	return strings.Join(sections, "\n\n")
}

func renderHeader(rec *model.ContentRecord) string {
	idStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	titleStyle := lipgloss.NewStyle().Bold(true)
	typeStyle := lipgloss.NewStyle().Foreground(ColorFromName(rec.Type.Color())).Bold(true)
	statusStyle := lipgloss.NewStyle().Foreground(ColorFromName(rec.Status.Color()))
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	return fmt.Sprintf("%s  %s\n%s  %s\n%s %s\n%s %s",
		idStyle.Render(model.FormatID(rec.ID)),
		titleStyle.Render(rec.Title),
		typeStyle.Render(string(rec.Type)),
		statusStyle.Render(string(rec.Status)),
		labelStyle.Render("Created:"), humanize.Time(rec.CreatedAt),
		labelStyle.Render("Updated:"), humanize.Time(rec.UpdatedAt),
	)
}

func directiveLabel(m directive.Match) string {
	if id, ok := m.ID(); ok {
		return fmt.Sprintf("%s %d", m.Kind, id)
	}
	return fmt.Sprintf("%s (no id)", m.Kind)
}

func renderDirectives(matches []directive.Match) string {
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	t := tree.New().Root(sectionStyle.Render(fmt.Sprintf("Legacy directives (%d)", len(matches))))
	for _, m := range matches {
		t.Child(fmt.Sprintf("%s  %s", directiveLabel(m), dimStyle.Render(truncate(m.Text, 60))))
	}
	return t.String()
}

func renderAssets(assets []model.Asset) string {
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	t := tree.New().Root(sectionStyle.Render(fmt.Sprintf("Attachments (%d)", len(assets))))
	for _, a := range assets {
		t.Child(fmt.Sprintf("%d  %s  %s", a.ID, a.Title, dimStyle.Render(a.URL)))
	}
	return t.String()
}

func renderBody(body string) string {
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))

	rendered, err := RenderBody(body, 0)
	if err != nil {
		rendered = body
	}
	return sectionStyle.Render("Body") + "\n" + rendered
}

// RenderActivity renders the rewrite history of a record, newest first.
func RenderActivity(activity []model.Activity) string {
	if !ColorsEnabled() {
		var b strings.Builder
		b.WriteString("Activity\n")
		writePlainActivity(&b, activity)
		return strings.TrimRight(b.String(), "\n")
	}

	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	fieldStyle := lipgloss.NewStyle().Bold(true)
	timeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	var lines []string
	for _, a := range activity {
		lines = append(lines, fmt.Sprintf("  ✎ %s changed %s (%s)  %s",
			actorOrSystem(a.ChangedBy),
			fieldStyle.Render(a.FieldChanged),
			sizeDelta(a),
			timeStyle.Render(humanize.Time(a.CreatedAt)),
		))
	}
	return sectionStyle.Render("Activity") + "\n" + strings.Join(lines, "\n")
}

func actorOrSystem(s string) string {
	if s == "" {
		return "system"
	}
	return s
}

func sizeDelta(a model.Activity) string {
	return fmt.Sprintf("%s -> %s",
		humanize.Bytes(uint64(len(a.OldValue))),
		humanize.Bytes(uint64(len(a.NewValue))),
	)
}

func writePlainActivity(b *strings.Builder, activity []model.Activity) {
	for _, a := range activity {
		fmt.Fprintf(b, "  %s changed %s (%s)  %s\n",
			actorOrSystem(a.ChangedBy),
			a.FieldChanged,
			sizeDelta(a),
			humanize.Time(a.CreatedAt),
		)
	}
}

// renderPlainDetail renders a detail view without any color or styling.
func renderPlainDetail(rec *model.ContentRecord, matches []directive.Match, assets []model.Asset, activity []model.Activity) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s\n", model.FormatID(rec.ID), rec.Title)
	fmt.Fprintf(&b, "%s  %s\n", rec.Type, rec.Status)
	fmt.Fprintf(&b, "Created: %s\n", humanize.Time(rec.CreatedAt))
	fmt.Fprintf(&b, "Updated: %s\n", humanize.Time(rec.UpdatedAt))

	if len(matches) > 0 {
		fmt.Fprintf(&b, "\nLegacy directives (%d)\n", len(matches))
		for _, m := range matches {
			fmt.Fprintf(&b, "  > %s  %s\n", directiveLabel(m), truncate(m.Text, 60))
		}
	}

	if len(assets) > 0 {
		fmt.Fprintf(&b, "\nAttachments (%d)\n", len(assets))
		for _, a := range assets {
			fmt.Fprintf(&b, "  > %d  %s  %s\n", a.ID, a.Title, a.URL)
		}
	}

	if rec.Body != "" {
		fmt.Fprintf(&b, "\nBody\n%s\n", rec.Body)
	}

	if len(activity) > 0 {
		b.WriteString("\nActivity\n")
		writePlainActivity(&b, activity)
	}

	return strings.TrimRight(b.String(), "\n")
}
