package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	barHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	barMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	barLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#5fafff"))
)

var spinner = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner returns the glyph for animation frame n.
func Spinner(n int) string {
	return spinner[n%len(spinner)]
}

// ProgressBar renders fraction (0..1) of width cells, coloured by how far
// along the cooldown is.
func ProgressBar(fraction float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := min(width, max(0, int(fraction*float64(width))))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	switch {
	case fraction > 0.8:
		return barHigh.Render(bar)
	case fraction > 0.4:
		return barMid.Render(bar)
	}
	return barLow.Render(bar)
}

func sparkline(data []float64, width int) string {
	if len(data) == 0 {
		return ""
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	minVal, maxVal := data[0], data[0]
	for _, v := range data {
		minVal = min(minVal, v)
		maxVal = max(maxVal, v)
	}
	rang := maxVal - minVal
	if rang == 0 {
		rang = 1
	}
	step := max(1, len(data)/width)
	var sb strings.Builder
	for i := 0; i < width && i*step < len(data); i++ {
		idx := int((data[i*step] - minVal) / rang * 7)
		sb.WriteRune(chars[max(0, min(7, idx))])
	}
	return sb.String()
}
