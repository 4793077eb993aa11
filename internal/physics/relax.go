package physics

import (
	"math"

	"github.com/san-kum/phasesim/internal/dynamo"
	"github.com/san-kum/phasesim/internal/lattice"
	"github.com/san-kum/phasesim/internal/thermal"
)

// referenceFPS is the frame rate DampingFloor is expressed at.
const referenceFPS = 60

// Relax holds the solid-state relaxation parameters.
type Relax struct {
	SpringK        float64 `yaml:"spring_k"`
	OrientK        float64 `yaml:"orient_k"`
	DampingFloor   float64 `yaml:"damping_floor"`
	GravityCounter float64 `yaml:"gravity_counter"`
	RampSpan       float64 `yaml:"ramp_span"`
	MinSeparation  float64 `yaml:"min_separation"`
	Passes         int     `yaml:"passes"`
	OverlapDamping float64 `yaml:"overlap_damping"`

	// Rematch is the interval in seconds between anchor re-assignments
	// while the crystal settles. Head-on pairs that would each have to pass
	// through the other to reach their anchors deadlock under the overlap
	// passes; a fresh greedy match swaps them. 0 re-matches every step, a
	// negative value only matches on entering the solid regime.
	Rematch float64 `yaml:"rematch"`
}

func DefaultRelax() Relax {
	return Relax{
		SpringK:        60,
		OrientK:        20,
		DampingFloor:   0.85,
		GravityCounter: 0.85,
		RampSpan:       20,
		MinSeparation:  32,
		Passes:         3,
		OverlapDamping: 0.9,
		Rematch:        0.5,
	}
}

// Ramp is the relaxation strength: how far below melting the temperature is,
// over RampSpan, plus the freeze boost. Capped at 1.
func (r Relax) Ramp(tempC, boost float64) float64 {
	cold := 0.0
	if r.RampSpan > 0 {
		cold = (thermal.MeltPoint - tempC) / r.RampSpan
	} else if tempC <= thermal.MeltPoint {
		cold = 1
	}
	cold = math.Max(0, math.Min(1, cold))
	return math.Min(1, cold+math.Max(0, boost))
}

// GravityScale is the fraction of gravity left after the solid counteracts it.
func (r Relax) GravityScale(ramp float64) float64 {
	return math.Max(0, 1-r.GravityCounter*ramp)
}

// Damping returns the multiplicative velocity factor for one step of dt.
func (r Relax) Damping(ramp, dt float64) float64 {
	return 1 - ramp*(1-math.Pow(r.DampingFloor, dt*referenceFPS))
}

// Pull springs every particle toward its anchor (nearest anchor when
// unassigned), aligns its orientation with the anchor and damps velocity,
// fall rate and spin.
func (r Relax) Pull(ps dynamo.Ensemble, anchors []lattice.Anchor, asg lattice.Assignment, ramp, dt float64) {
	if ramp <= 0 {
		return
	}
	damp := r.Damping(ramp, dt)
	k := r.SpringK * ramp * dt
	kAngle := r.OrientK * ramp * dt

	for i := range ps {
		p := &ps[i]
		idx := -1
		if i < len(asg.Anchor) {
			idx = asg.Anchor[i]
		}
		if idx < 0 || idx >= len(anchors) {
			idx = lattice.Nearest(p.X, p.Y, anchors)
		}
		if idx >= 0 {
			a := anchors[idx]
			p.VX += (a.X - p.X) * k
			p.VY += (a.Y - p.Y) * k
			p.Spin += dynamo.AngleDiff(p.Angle, a.Angle) * kAngle
		}
		p.VX *= damp
		p.VY *= damp
		p.Fall *= damp
		p.Spin *= damp
	}
}

// Overlap runs positional projection passes: each pair closer than minSep is
// pushed apart to exactly minSep, half each along the normal, and both
// velocities are damped. Coincident pairs are split along x with the lower
// index moving to -x. Returns the number of corrections made.
func (r Relax) Overlap(ps dynamo.Ensemble) int {
	minSep := r.MinSeparation
	min2 := minSep * minSep
	n := 0
	for pass := 0; pass < r.Passes; pass++ {
		for i := 0; i < len(ps); i++ {
			for j := i + 1; j < len(ps); j++ {
				dx, dy := ps[j].X-ps[i].X, ps[j].Y-ps[i].Y
				d2 := dx*dx + dy*dy
				if d2 >= min2 {
					continue
				}
				d := math.Sqrt(d2)
				nx, ny := 1.0, 0.0
				if d > 0 {
					nx, ny = dx/d, dy/d
				}
				corr := (minSep - d) / 2
				ps[i].X -= nx * corr
				ps[i].Y -= ny * corr
				ps[j].X += nx * corr
				ps[j].Y += ny * corr

				ps[i].VX *= r.OverlapDamping
				ps[i].VY *= r.OverlapDamping
				ps[j].VX *= r.OverlapDamping
				ps[j].VY *= r.OverlapDamping
				n++
			}
		}
	}
	return n
}
