// Package chart draws a cooldown curve as an ASCII line chart and maps
// clicks on it back to sample indices.
package chart

import (
	"fmt"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/cooldown/internal/samplelog"
)

const (
	DefaultWidth  = 72
	DefaultHeight = 14
)

// Chart implements playback.Renderer. Each plotted column stands for one
// logged sample; long logs are thinned evenly.
type Chart struct {
	width   int
	height  int
	caption string

	plot    string
	indices []int
	axis    int
	cursor  int
	samples []samplelog.Sample
}

func New(width, height int) *Chart {
	if width < 2 {
		width = DefaultWidth
	}
	if height < 2 {
		height = DefaultHeight
	}
	return &Chart{width: width, height: height, caption: "pipe temperature (°C) vs time"}
}

// Resize changes the plot area. The next Render uses it.
func (c *Chart) Resize(width, height int) {
	if width >= 2 {
		c.width = width
	}
	if height >= 2 {
		c.height = height
	}
}

func (c *Chart) Render(log *samplelog.Log, cursor int) {
	c.samples = log.Samples()
	c.cursor = cursor
	c.indices = columns(len(c.samples), c.width)

	data := make([]float64, len(c.indices))
	for j, i := range c.indices {
		data[j] = c.samples[i].Celsius()
	}
	if len(data) == 1 {
		data = append(data, data[0])
		c.indices = append(c.indices, c.indices[0])
	}

	c.plot = asciigraph.Plot(data,
		asciigraph.Height(c.height),
		asciigraph.Precision(1),
		asciigraph.Caption(c.captionText()),
	)
	c.axis = axisColumn(c.plot)
}

func (c *Chart) captionText() string {
	if c.cursor < 0 || c.cursor >= len(c.samples) {
		return c.caption
	}
	s := c.samples[c.cursor]
	return fmt.Sprintf("%s  [%d] %.2f h  %.1f °C", c.caption, c.cursor, s.Hours(), s.Celsius())
}

// String returns the last rendered chart with a marker under the cursor.
func (c *Chart) String() string {
	if c.plot == "" {
		return ""
	}
	col, ok := c.ColumnOf(c.cursor)
	if !ok {
		return c.plot
	}
	lines := strings.Split(c.plot, "\n")
	marker := strings.Repeat(" ", c.axis+1+col) + "^"
	// the marker goes between the x axis and the caption
	at := c.height + 1
	if at > len(lines) {
		at = len(lines)
	}
	out := append([]string{}, lines[:at]...)
	out = append(out, marker)
	out = append(out, lines[at:]...)
	return strings.Join(out, "\n")
}

// Lines is the height of String() in rows.
func (c *Chart) Lines() int {
	if c.plot == "" {
		return 0
	}
	return strings.Count(c.String(), "\n") + 1
}

// IndexAt maps a column, counted from the chart's left edge, to the sample
// drawn there.
func (c *Chart) IndexAt(col int) (int, bool) {
	j := col - c.axis - 1
	if j < 0 || j >= len(c.indices) {
		return 0, false
	}
	return c.indices[j], true
}

// ColumnOf returns the plot column nearest to sample i.
func (c *Chart) ColumnOf(i int) (int, bool) {
	if len(c.indices) == 0 || i < 0 || i > c.indices[len(c.indices)-1] {
		return 0, false
	}
	best, dist := 0, math.MaxInt
	for j, idx := range c.indices {
		if d := abs(idx - i); d < dist {
			best, dist = j, d
		}
	}
	return best, true
}

// Origin is the column of the y axis, where sample columns begin at +1.
func (c *Chart) Origin() int { return c.axis }

// columns picks up to width sample indices spread evenly over n samples.
func columns(n, width int) []int {
	w := min(n, width)
	out := make([]int, w)
	if w == 1 {
		return out
	}
	for j := range out {
		out[j] = int(math.Round(float64(j) * float64(n-1) / float64(w-1)))
	}
	return out
}

func axisColumn(plot string) int {
	line, _, _ := strings.Cut(plot, "\n")
	for i, r := range []rune(line) {
		if r == '┤' || r == '┼' {
			return i
		}
	}
	return 0
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
