package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/cooldown/internal/samplelog"
)

const margin = 50

// SVG writes the cooldown curve as a standalone SVG line chart, hours on x
// and °C on y.
func SVG(w io.Writer, log *samplelog.Log, width, height int, strokeColor string) error {
	if width <= 2*margin || height <= 2*margin {
		return fmt.Errorf("export: %dx%d leaves no room to plot inside a %d px margin", width, height, margin)
	}
	if log.Len() < 2 {
		return fmt.Errorf("export: need at least two samples to draw, have %d", log.Len())
	}
	xs, ys := log.Times(), log.Temperatures()

	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for i := range xs {
		minX, maxX = min(minX, xs[i]), max(maxX, xs[i])
		minY, maxY = min(minY, ys[i]), max(maxY, ys[i])
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.05
	maxY += rangeY * 0.05
	rangeY = maxY - minY

	pw := float64(width - 2*margin)
	ph := float64(height - 2*margin)

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#ffffff"/>
<g stroke="#888888" stroke-width="1">
<line x1="%d" y1="%d" x2="%d" y2="%d"/>
<line x1="%d" y1="%d" x2="%d" y2="%d"/>
</g>
<g font-family="sans-serif" font-size="11" fill="#333333">
<text x="%d" y="%d" text-anchor="middle">Time (h)</text>
<text x="12" y="%d" transform="rotate(-90 12 %d)" text-anchor="middle">Temperature (°C)</text>
<text x="%d" y="%d" text-anchor="start">%.2f</text>
<text x="%d" y="%d" text-anchor="end">%.2f</text>
<text x="%d" y="%d" text-anchor="end">%.1f</text>
<text x="%d" y="%d" text-anchor="end">%.1f</text>
</g>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height,
		margin, height-margin, width-margin, height-margin,
		margin, margin, margin, height-margin,
		width/2, height-12,
		height/2, height/2,
		margin, height-margin+14, minX,
		width-margin, height-margin+14, maxX,
		margin-4, height-margin, minY,
		margin-4, margin+4, maxY,
		strokeColor))

	for i := range xs {
		x := margin + (xs[i]-minX)/rangeX*pw
		y := float64(height-margin) - (ys[i]-minY)/rangeY*ph

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>
`)
	_, err := io.WriteString(w, sb.String())
	return err
}
