// Package styles contains Lip Gloss style definitions.
package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var panelBorder = lipgloss.RoundedBorder()

// Panel is a rounded box with a title set into the top edge and an optional
// footnote set into the bottom edge, right aligned:
//
//	╭─ Title ───────╮
//	│ content       │
//	╰──── 3 items ──╯
type Panel struct {
	Title    string
	Footnote string
	Width    int
	Height   int
	Focused  bool
}

// Render draws content inside the panel. Content is clipped and padded to
// the inner area.
func (p Panel) Render(content string) string {
	inner := max(p.Width-2, 1)
	rows := max(p.Height-2, 1)

	edge := BorderDefaultColor
	if p.Focused {
		edge = BorderFocusColor
	}
	edgeStyle := lipgloss.NewStyle().Foreground(edge)

	body := lipgloss.NewStyle().Width(inner).Height(rows).MaxHeight(rows).Render(content)
	lines := strings.Split(body, "\n")

	var b strings.Builder
	b.WriteString(p.top(inner, edgeStyle))
	for _, line := range lines {
		if pad := inner - lipgloss.Width(line); pad > 0 {
			line += strings.Repeat(" ", pad)
		}
		b.WriteString("\n")
		b.WriteString(edgeStyle.Render(panelBorder.Left) + line + edgeStyle.Render(panelBorder.Right))
	}
	b.WriteString("\n")
	b.WriteString(p.bottom(inner, edgeStyle))
	return b.String()
}

// top renders ╭─ Title ───╮. Titles that do not fit are truncated; below
// four cells the title is dropped.
func (p Panel) top(inner int, edgeStyle lipgloss.Style) string {
	if p.Title == "" || inner < 4 {
		return edgeStyle.Render(panelBorder.TopLeft + strings.Repeat(panelBorder.Top, inner) + panelBorder.TopRight)
	}
	title := TruncateString(p.Title, inner-4)
	fill := max(inner-3-lipgloss.Width(title), 0)
	return edgeStyle.Render(panelBorder.TopLeft+panelBorder.Top+" ") +
		TitleStyle.Render(title) +
		edgeStyle.Render(" "+strings.Repeat(panelBorder.Top, fill)+panelBorder.TopRight)
}

// bottom renders ╰──── note ─╯, or a plain edge when the note does not fit.
func (p Panel) bottom(inner int, edgeStyle lipgloss.Style) string {
	noteWidth := lipgloss.Width(p.Footnote)
	if p.Footnote == "" || noteWidth+4 > inner {
		return edgeStyle.Render(panelBorder.BottomLeft + strings.Repeat(panelBorder.Bottom, inner) + panelBorder.BottomRight)
	}
	lead := inner - noteWidth - 3
	return edgeStyle.Render(panelBorder.BottomLeft+strings.Repeat(panelBorder.Bottom, lead)+" ") +
		HintStyle.Render(p.Footnote) +
		edgeStyle.Render(" "+panelBorder.Bottom+panelBorder.BottomRight)
}
