package lattice

import (
	"math"

	"github.com/san-kum/phasesim/internal/dynamo"
)

// Assignment maps each particle index to an anchor index (-1 when there are
// no anchors). Exclusive is false for particles that got a shared fallback
// anchor after the free anchors ran out.
type Assignment struct {
	Anchor    []int
	Exclusive []bool
	Taken     int
}

// Unassigned returns an assignment of n particles with no anchors.
func Unassigned(n int) Assignment {
	a := Assignment{Anchor: make([]int, n), Exclusive: make([]bool, n)}
	for i := range a.Anchor {
		a.Anchor[i] = -1
	}
	return a
}

// Assign greedily matches particles in index order to the nearest free
// anchor by squared distance; the first anchor wins ties. Once every anchor
// is taken the remaining particles fall back to the nearest anchor overall.
// This is O(particles × anchors).
func Assign(particles dynamo.Ensemble, anchors []Anchor) Assignment {
	out := Unassigned(len(particles))
	if len(anchors) == 0 {
		return out
	}

	taken := make([]bool, len(anchors))
	for i, p := range particles {
		best, bestD := -1, math.Inf(1)
		for j, a := range anchors {
			if taken[j] {
				continue
			}
			dx, dy := a.X-p.X, a.Y-p.Y
			if d := dx*dx + dy*dy; d < bestD {
				best, bestD = j, d
			}
		}

		if best >= 0 {
			taken[best] = true
			out.Anchor[i] = best
			out.Exclusive[i] = true
			out.Taken++
			continue
		}
		out.Anchor[i] = Nearest(p.X, p.Y, anchors)
	}
	return out
}
