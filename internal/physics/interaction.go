package physics

import (
	"math"

	"github.com/san-kum/phasesim/internal/bonds"
	"github.com/san-kum/phasesim/internal/dynamo"
)

// Interaction holds the short-range repulsion and mid-range attraction
// parameters.
type Interaction struct {
	Cutoff          float64 `yaml:"cutoff"`
	RepelLiquid     float64 `yaml:"repel_liquid"`
	RepelSolid      float64 `yaml:"repel_solid"`
	RepelStiffness  float64 `yaml:"repel_stiffness"`
	AttractStrength float64 `yaml:"attract_strength"`
}

func DefaultInteraction() Interaction {
	return Interaction{
		Cutoff:          60,
		RepelLiquid:     26,
		RepelSolid:      36,
		RepelStiffness:  0.5,
		AttractStrength: 90,
	}
}

// PairStats summarizes one interaction pass.
type PairStats struct {
	Within     int
	Repelled   int
	Degenerate int
}

// Apply visits every unordered pair once. Repulsion is a positional
// correction split equally between the pair; attraction is an equal and
// opposite velocity increment that fades linearly to zero at the cutoff.
// Every pair is reported to the ledger with the pre-correction distance.
//
// Pairs at exactly zero distance have no defined normal: they get no force
// this frame but still count as within the cutoff.
func (in Interaction) Apply(ps dynamo.Ensemble, ledger *bonds.Ledger, now, dt, coolness float64, solid bool) PairStats {
	var st PairStats

	repel := in.RepelLiquid
	if solid {
		repel = in.RepelSolid
	}
	reach := math.Max(repel, in.Cutoff)
	reach2 := reach * reach

	for i := 0; i < len(ps); i++ {
		for j := i + 1; j < len(ps); j++ {
			key := bonds.Pair(i, j)
			dx, dy := ps[j].X-ps[i].X, ps[j].Y-ps[i].Y
			d2 := dx*dx + dy*dy
			if d2 >= reach2 {
				ledger.Observe(key, false, now)
				continue
			}

			d := math.Sqrt(d2)
			within := d < in.Cutoff
			if ledger.Observe(key, within, now) {
				st.Within++
			}
			if d == 0 {
				st.Degenerate++
				continue
			}
			nx, ny := dx/d, dy/d

			if d < repel {
				corr := (repel - d) * in.RepelStiffness / 2
				ps[i].X -= nx * corr
				ps[i].Y -= ny * corr
				ps[j].X += nx * corr
				ps[j].Y += ny * corr
				st.Repelled++
			}

			if within {
				a := in.AttractStrength * coolness * (1 - d/in.Cutoff) * dt
				ps[i].VX += nx * a
				ps[i].VY += ny * a
				ps[j].VX -= nx * a
				ps[j].VY -= ny * a
			}
		}
	}
	return st
}
