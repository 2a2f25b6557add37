package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/massspring/internal/dynamo"
	"github.com/san-kum/massspring/internal/viz"
)

const (
	background  = "#0a0a0a"
	springColor = "#00ccff"
	pointColor  = "#ffffff"
	fixedColor  = "#ff4444"
	floorColor  = "#444466"
)

// FrameOptions controls FrameToSVG. A nil Camera fits a default camera to
// the frame.
type FrameOptions struct {
	Width, Height int
	Camera        *viz.Camera
	Floor         *float64
}

// FrameToSVG draws springs as lines, points as dots and fixed points in red.
func FrameToSVG(points []dynamo.Point, springs []dynamo.Spring, opts FrameOptions) string {
	w, h := opts.Width, opts.Height
	if w <= 0 {
		w = 800
	}
	if h <= 0 {
		h = 600
	}
	cam := opts.Camera
	if cam == nil {
		cam = viz.NewCamera()
		cam.Fit(points)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, w, h, w, h, background))

	if opts.Floor != nil {
		y := *opts.Floor
		r := cam.Radius * 1.5
		a := cam.Center
		a.X, a.Y = a.X-r, y
		b := cam.Center
		b.X, b.Y = b.X+r, y
		x1, y1, ok1 := cam.Project(a, w, h)
		x2, y2, ok2 := cam.Project(b, w, h)
		if ok1 && ok2 {
			sb.WriteString(fmt.Sprintf(`<line class="floor" x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-dasharray="4 4"/>
`, x1, y1, x2, y2, floorColor))
		}
	}

	sb.WriteString(fmt.Sprintf(`<g class="springs" stroke="%s" stroke-width="1">
`, springColor))
	for _, s := range springs {
		x1, y1, ok1 := cam.Project(points[s.P1].Position, w, h)
		x2, y2, ok2 := cam.Project(points[s.P2].Position, w, h)
		if !ok1 || !ok2 {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d"/>
`, x1, y1, x2, y2))
	}
	sb.WriteString("</g>\n<g class=\"points\">\n")

	for _, p := range points {
		x, y, ok := cam.Project(p.Position, w, h)
		if !ok {
			continue
		}
		fill, r := pointColor, 2.5
		if p.Fixed {
			fill, r = fixedColor, 5
		}
		sb.WriteString(fmt.Sprintf(`<circle cx="%d" cy="%d" r="%.1f" fill="%s"/>
`, x, y, r, fill))
	}

	sb.WriteString("</g>\n</svg>\n")
	return sb.String()
}

// TrajectoryToSVG plots y against x, typically a coordinate against time.
func TrajectoryToSVG(xs, ys []float64, width, height int, strokeColor string) string {
	if len(xs) < 2 || len(xs) != len(ys) {
		return ""
	}

	// Find bounds
	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for i := range xs {
		minX, maxX = min(minX, xs[i]), max(maxX, xs[i])
		minY, maxY = min(minY, ys[i]), max(maxY, ys[i])
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
<rect width="100%%" height="100%%" fill="%s"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, background, strokeColor))

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
</svg>
`)
	return sb.String()
}
