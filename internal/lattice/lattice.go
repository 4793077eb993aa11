// Package lattice builds the hexagonal anchor grid of the solid phase and
// matches particles to anchors.
package lattice

import (
	"math"
)

// Spacing constants. Solid spacing is larger: ice is less dense than water.
const (
	LiquidSpacing = 38.0
	SolidSpacing  = 44.0

	margin = 2
)

// Rect is an axis-aligned region in simulation space, y growing downward.
type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

func (r Rect) Width() float64  { return r.MaxX - r.MinX }
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

func (r Rect) Contains(x, y float64) bool {
	return x >= r.MinX && x <= r.MaxX && y >= r.MinY && y <= r.MaxY
}

// Anchor is a target position and orientation in the crystal.
type Anchor struct {
	X, Y     float64
	Row, Col int
	Angle    float64
}

// RowHeight is the vertical distance between hexagonal rows.
func RowHeight(spacing float64) float64 {
	return spacing * math.Sqrt(3) / 2
}

// Build lays out hexagonal rows from the floor of bounds upward. Odd rows are
// shifted by half a spacing and point the opposite way, giving the O-H-O row
// motif. The grid covers bounds plus two extra rows and columns. Identical
// inputs always produce identical anchors.
func Build(bounds Rect, spacing float64) []Anchor {
	w, h := bounds.Width(), bounds.Height()
	if spacing <= 0 || w <= 0 || h <= 0 {
		return nil
	}

	rowH := RowHeight(spacing)
	cols := int(math.Ceil(w/spacing)) + margin
	rows := int(math.Ceil(h/rowH)) + margin

	anchors := make([]Anchor, 0, rows*cols)
	for r := 0; r < rows; r++ {
		y := bounds.MaxY - spacing/2 - float64(r)*rowH
		offset, angle := 0.0, 0.0
		if r%2 == 1 {
			offset, angle = spacing/2, math.Pi
		}
		for c := 0; c < cols; c++ {
			anchors = append(anchors, Anchor{
				X:     bounds.MinX + spacing/2 + offset + float64(c)*spacing,
				Y:     y,
				Row:   r,
				Col:   c,
				Angle: angle,
			})
		}
	}
	return anchors
}

// Within keeps the anchors that fall inside r, preserving order.
func Within(anchors []Anchor, r Rect) []Anchor {
	out := make([]Anchor, 0, len(anchors))
	for _, a := range anchors {
		if r.Contains(a.X, a.Y) {
			out = append(out, a)
		}
	}
	return out
}

// Nearest returns the index of the anchor closest to (x, y), or -1 when
// anchors is empty. The first anchor wins ties.
func Nearest(x, y float64, anchors []Anchor) int {
	best, bestD := -1, math.Inf(1)
	for i, a := range anchors {
		dx, dy := a.X-x, a.Y-y
		if d := dx*dx + dy*dy; d < bestD {
			best, bestD = i, d
		}
	}
	return best
}
