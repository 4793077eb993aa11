package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/phasesim/internal/dynamo"
	"github.com/san-kum/phasesim/internal/sim"
	"github.com/san-kum/phasesim/internal/thermal"
	"github.com/san-kum/phasesim/internal/viz"
)

// PhaseColors are the particle fills per phase.
var PhaseColors = map[thermal.Phase]string{
	thermal.Solid:  "#a8e6ff",
	thermal.Liquid: "#3a8dde",
	thermal.Gas:    "#ff7a5c",
}

// SVGOptions selects the overlays drawn by SnapshotToSVG.
type SVGOptions struct {
	Scale   float64
	Anchors bool
	Bonds   bool
}

// CanvasToSVG converts a Braille canvas to SVG format
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	pw, ph := canvas.Pixels()
	width := float64(pw) * scale
	height := float64(ph) * scale

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ff00">
`, width, height, width, height))

	dotRadius := scale * 0.4
	for y := 0; y < ph; y++ {
		for x := 0; x < pw; x++ {
			if !canvas.Lit(x, y) {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, cx, cy, dotRadius))
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// SnapshotToSVG draws the container and every molecule of a snapshot at
// simulation scale: an oxygen disc of the given radius with two hydrogens
// placed by its orientation.
func SnapshotToSVG(s *sim.Snapshot, radius float64, opts SVGOptions) string {
	if s == nil {
		return ""
	}
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}
	box := s.Container
	width := box.Width() * scale
	height := box.Height() * scale
	tx := func(x float64) float64 { return (x - box.MinX) * scale }
	ty := func(y float64) float64 { return (y - box.MinY) * scale }

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<rect x="0" y="0" width="%.1f" height="%.1f" fill="none" stroke="#444466" stroke-width="2"/>
`, width, height, width, height, width, height))

	if opts.Anchors && len(s.Anchors) > 0 {
		sb.WriteString(`<g fill="#444466">` + "\n")
		for _, a := range s.Anchors {
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, tx(a.X), ty(a.Y), 2*scale))
		}
		sb.WriteString("</g>\n")
	}

	if opts.Bonds && len(s.Bonds) > 0 {
		sb.WriteString(`<g stroke="#ffcc00" stroke-width="1" stroke-opacity="0.6">` + "\n")
		for _, k := range s.Bonds {
			if k.I >= len(s.Particles) || k.J >= len(s.Particles) {
				continue
			}
			a, b := s.Particles[k.I], s.Particles[k.J]
			sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
`, tx(a.X), ty(a.Y), tx(b.X), ty(b.Y)))
		}
		sb.WriteString("</g>\n")
	}

	fill, ok := PhaseColors[s.Phase]
	if !ok {
		fill = "#ffffff"
	}
	sb.WriteString(fmt.Sprintf(`<g fill="%s" stroke="#0a0a0a" stroke-width="1">`+"\n", fill))
	r := radius * scale
	for _, p := range s.Particles {
		cx, cy := tx(p.X), ty(p.Y)
		dx1, dy1, dx2, dy2 := dynamo.HydrogenOffsets(p.Angle, r)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"/><circle cx="%.1f" cy="%.1f" r="%.1f" fill="#ffffff"/><circle cx="%.1f" cy="%.1f" r="%.1f" fill="#ffffff"/>
`, cx, cy, r, cx+dx1, cy+dy1, r*0.45, cx+dx2, cy+dy2, r*0.45))
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// Point is one vertex of a polyline.
type Point struct {
	X, Y float64
}

// SeriesToSVG draws points as a polyline scaled to fill the image with 10%
// padding. y grows upward.
func SeriesToSVG(points []Point, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

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
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i, p := range points {
		x := (p.X - minX) / rangeX * float64(width)
		y := float64(height) - (p.Y-minY)/rangeY*float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
