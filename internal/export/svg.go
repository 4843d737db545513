package export

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// DefaultStroke is the curve color used when none is given.
const DefaultStroke = "#00ff00"

// CurveToSVG renders ys against xs as a single SVG path, padded by 10% on
// each axis. The caption is drawn in the top left corner when non-empty.
func CurveToSVG(xs, ys []float64, width, height int, stroke, caption string) (string, error) {
	if len(xs) != len(ys) {
		return "", fmt.Errorf("curve has %d x values and %d y values", len(xs), len(ys))
	}
	if len(xs) < 2 {
		return "", errors.New("curve needs at least two points")
	}
	if width <= 0 || height <= 0 {
		return "", fmt.Errorf("invalid canvas %dx%d", width, height)
	}
	if stroke == "" {
		stroke = DefaultStroke
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsInf(xs[i], 0) || math.IsNaN(ys[i]) || math.IsInf(ys[i], 0) {
			return "", fmt.Errorf("non-finite point %d: (%g, %g)", i, xs[i], ys[i])
		}
		minX, maxX = math.Min(minX, xs[i]), math.Max(maxX, xs[i])
		minY, maxY = math.Min(minY, ys[i]), math.Max(maxY, ys[i])
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	if caption != "" {
		sb.WriteString(fmt.Sprintf(`<text x="8" y="16" fill="#888888" font-family="monospace" font-size="12">%s</text>
`, escape(caption)))
	}

	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, stroke))
	for i := range xs {
		x := (xs[i] - minX) / rangeX * float64(width)
		y := float64(height) - (ys[i]-minY)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String(), nil
}

var svgEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escape(s string) string { return svgEscaper.Replace(s) }
