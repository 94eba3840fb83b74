// Package report renders timesheet views as aligned terminal tables.
package report

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorHeader = lipgloss.Color("#fe8019")
	colorDim    = lipgloss.Color("#928374")
	colorFg     = lipgloss.Color("#ebdbb2")
	colorRed    = lipgloss.Color("#fb4934")
	colorGreen  = lipgloss.Color("#8ec07c")
)

var (
	styleHeader = lipgloss.NewStyle().Foreground(colorHeader).Bold(true)
	styleDim    = lipgloss.NewStyle().Foreground(colorDim)
	styleBold   = lipgloss.NewStyle().Foreground(colorFg).Bold(true)
	styleRed    = lipgloss.NewStyle().Foreground(colorRed)
	styleGreen  = lipgloss.NewStyle().Foreground(colorGreen)
)

const colGap = 2

// RenderTable renders headers, a separator line and rows with every column
// padded to its widest visible cell. Styled cells are measured without their
// escape sequences.
func RenderTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}
	cols := len(headers)

	widths := make([]int, cols)
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < cols && i < len(row); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	for i, h := range headers {
		b.WriteString(styleHeader.Render(h))
		if i < cols-1 {
			b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(h)+colGap))
		}
	}
	b.WriteString("\n")

	for i, w := range widths {
		b.WriteString(styleDim.Render(strings.Repeat("─", w)))
		if i < cols-1 {
			b.WriteString(strings.Repeat(" ", colGap))
		}
	}
	b.WriteString("\n")

	for _, row := range rows {
		var line strings.Builder
		for i := 0; i < cols; i++ {
			c := ""
			if i < len(row) {
				c = row[i]
			}
			line.WriteString(c)
			if i < cols-1 {
				line.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(c)+colGap))
			}
		}
		b.WriteString(strings.TrimRight(line.String(), " "))
		b.WriteString("\n")
	}
	return b.String()
}
