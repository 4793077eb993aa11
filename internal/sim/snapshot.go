package sim

import (
	"github.com/san-kum/phasesim/internal/bonds"
	"github.com/san-kum/phasesim/internal/dynamo"
	"github.com/san-kum/phasesim/internal/lattice"
	"github.com/san-kum/phasesim/internal/thermal"
)

// Snapshot is a deep copy of the post-step state. It shares nothing with
// the engine and stays valid after further steps.
type Snapshot struct {
	Time                float64
	Step                int
	Temperature         float64
	Phase               thermal.Phase
	Solid               bool
	Particles           dynamo.Ensemble
	Anchors             []lattice.Anchor
	Bonds               []bonds.PairKey
	ActiveBonds         int
	OpenBonds           int
	AverageBondDuration float64
	Boost               float64
	Assigned            int
	Container           lattice.Rect
}

func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Time:                e.time,
		Step:                e.steps,
		Temperature:         e.temp,
		Phase:               e.Phase(),
		Solid:               e.solid,
		Particles:           e.Particles(),
		Anchors:             e.Anchors(),
		Bonds:               e.BondKeys(),
		ActiveBonds:         e.ActiveBonds(),
		OpenBonds:           e.ledger.Open(),
		AverageBondDuration: e.ledger.AverageDuration(),
		Boost:               e.freeze.Boost(),
		Assigned:            e.assign.Taken,
		Container:           e.box,
	}
}
