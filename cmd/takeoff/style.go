package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorHeader = lipgloss.Color("#fe8019")
	colorDim    = lipgloss.Color("#928374")
	colorGreen  = lipgloss.Color("#8ec07c")
	colorRed    = lipgloss.Color("#fb4934")

	styleTitle  = lipgloss.NewStyle().Bold(true).Underline(true)
	styleHeader = lipgloss.NewStyle().Foreground(colorHeader).Bold(true)
	styleDim    = lipgloss.NewStyle().Foreground(colorDim)
	styleTotal  = lipgloss.NewStyle().Bold(true)
	styleGood   = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	styleBad    = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
)

// render applies st when output is styled.
func (a *App) render(st lipgloss.Style, text string) string {
	if !a.Styled {
		return text
	}
	return st.Render(text)
}

// table renders aligned columns with a header separator. Columns listed in
// right are right-aligned.
func (a *App) table(headers []string, rows [][]string, right map[int]bool) string {
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

	const colGap = 2
	var b strings.Builder
	line := func(cells []string, st *lipgloss.Style) {
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			pad := strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
			if st != nil {
				cell = a.render(*st, cell)
			}
			if right[i] {
				b.WriteString(pad + cell)
			} else {
				b.WriteString(cell + pad)
			}
			if i < cols-1 {
				b.WriteString(strings.Repeat(" ", colGap))
			}
		}
		b.WriteString("\n")
	}

	line(headers, &styleHeader)
	seps := make([]string, cols)
	for i, w := range widths {
		seps[i] = strings.Repeat("─", w)
	}
	line(seps, &styleDim)
	for _, row := range rows {
		line(row, nil)
	}
	return b.String()
}
