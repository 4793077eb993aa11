package metrics

import "github.com/san-kum/phasesim/internal/sim"

// BondDuration reports the engine's rolling average bond duration as of the
// last snapshot.
type BondDuration struct {
	last float64
}

func NewBondDuration() *BondDuration { return &BondDuration{} }

func (b *BondDuration) Name() string { return "avg_bond_duration" }

func (b *BondDuration) Observe(s *sim.Snapshot) { b.last = s.AverageBondDuration }

func (b *BondDuration) Value() float64 { return b.last }

func (b *BondDuration) Reset() { b.last = 0 }

// ActiveBonds averages the active bond count over every observed frame.
type ActiveBonds struct {
	sum     float64
	samples int
}

func NewActiveBonds() *ActiveBonds { return &ActiveBonds{} }

func (a *ActiveBonds) Name() string { return "active_bonds" }

func (a *ActiveBonds) Observe(s *sim.Snapshot) {
	a.sum += float64(s.ActiveBonds)
	a.samples++
}

func (a *ActiveBonds) Value() float64 {
	if a.samples == 0 {
		return 0
	}
	return a.sum / float64(a.samples)
}

func (a *ActiveBonds) Reset() {
	a.sum = 0
	a.samples = 0
}

// PeakBonds is the largest raw open bond count seen.
type PeakBonds struct {
	peak int
}

func NewPeakBonds() *PeakBonds { return &PeakBonds{} }

func (p *PeakBonds) Name() string { return "peak_bonds" }

func (p *PeakBonds) Observe(s *sim.Snapshot) {
	if s.OpenBonds > p.peak {
		p.peak = s.OpenBonds
	}
}

func (p *PeakBonds) Value() float64 { return float64(p.peak) }

func (p *PeakBonds) Reset() { p.peak = 0 }
