package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"
)

func wrapText(s string, width int) string {
	if width <= 0 {
		return s
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}

func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

func truncate(s string, width int) string {
	if width <= 1 || lipgloss.Width(s) <= width {
		return s
	}
	if strings.Contains(s, "\x1b") {
		return lipgloss.NewStyle().MaxWidth(width).Render(s)
	}
	r := []rune(s)
	if len(r) > width-1 {
		r = r[:width-1]
	}
	return string(r) + "…"
}

// renderCard draws one headline metric.
func renderCard(title, value, change string, positive bool, width int) string {
	lines := []string{
		mutedStyle().Render(truncate(title, width-4)),
		lipgloss.NewStyle().Bold(true).Foreground(ColorWhite).Render(value),
	}
	if change != "" {
		fg := ColorRed
		if positive {
			fg = ColorGreen
		}
		lines = append(lines, lipgloss.NewStyle().Foreground(fg).Render(change))
	} else {
		lines = append(lines, "")
	}
	return panelStyle(width - 2).Render(strings.Join(lines, "\n"))
}

// renderCardRow lays cards out side by side across width.
func renderCardRow(width int, cards ...func(w int) string) string {
	if len(cards) == 0 {
		return ""
	}
	w := width / len(cards)
	parts := make([]string, 0, len(cards))
	for _, c := range cards {
		parts = append(parts, c(w))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// renderTable draws a plain column table. Row cursor < 0 disables
// highlighting.
func renderTable(headers []string, rows [][]string, widths []int, cursor int) string {
	var b strings.Builder
	head := make([]string, len(headers))
	for i, h := range headers {
		head[i] = padRight(truncate(h, widths[i]), widths[i])
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(ColorBlue).Render(strings.Join(head, " ")))
	for r, row := range rows {
		cells := make([]string, len(row))
		for i, c := range row {
			if i < len(widths) {
				cells[i] = padRight(truncate(c, widths[i]), widths[i])
			}
		}
		line := strings.Join(cells, " ")
		if r == cursor {
			line = lipgloss.NewStyle().Foreground(ColorWhite).Background(ColorBlue).Render(line)
		}
		b.WriteString("\n" + line)
	}
	return b.String()
}

// chartBar is one bar of a single-series chart.
type chartBar struct {
	Label string
	Value float64
	Color lipgloss.Color
}

// renderBarChart draws bars with the value legend to the right.
func renderBarChart(bars []chartBar, width, height int, unit string) string {
	if len(bars) == 0 {
		return mutedStyle().Render("No data available")
	}

	legendWidth := 0
	for _, bar := range bars {
		if w := lipgloss.Width(bar.Label) + 10; w > legendWidth {
			legendWidth = w
		}
	}
	chartWidth := width - legendWidth - 2
	if chartWidth < 10 {
		chartWidth = 10
	}
	barWidth := chartWidth/len(bars) - 1
	if barWidth < 1 {
		barWidth = 1
	}

	bc := barchart.New(chartWidth, height,
		barchart.WithBarGap(1),
		barchart.WithBarWidth(barWidth),
		barchart.WithNoAxis(),
	)
	for _, bar := range bars {
		style := lipgloss.NewStyle().Foreground(bar.Color).Background(bar.Color)
		bc.Push(barchart.BarData{
			Label:  "",
			Values: []barchart.BarValue{{Name: bar.Label, Value: bar.Value, Style: style}},
		})
	}
	bc.Draw()

	legend := make([]string, 0, len(bars))
	for _, bar := range bars {
		legend = append(legend, lipgloss.NewStyle().Foreground(bar.Color).
			Render(fmt.Sprintf("■ %s %.1f%s", bar.Label, bar.Value, unit)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, bc.View(), "  ", strings.Join(legend, "\n"))
}

func renderError(err error) string {
	return lipgloss.NewStyle().Foreground(ColorRed).Render("Error: " + err.Error())
}

func renderLoading() string {
	return mutedStyle().Render("Loading...")
}
