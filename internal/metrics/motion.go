package metrics

import (
	"github.com/san-kum/phasesim/internal/dynamo"
	"github.com/san-kum/phasesim/internal/sim"
)

// DefaultSettleThreshold is the per-frame displacement, in units, below
// which a frame counts as settled.
const DefaultSettleThreshold = 0.01

// MeanSpeed averages the ensemble's mean lateral speed over all frames.
type MeanSpeed struct {
	sum     float64
	samples int
}

func NewMeanSpeed() *MeanSpeed { return &MeanSpeed{} }

func (m *MeanSpeed) Name() string { return "mean_speed" }

func (m *MeanSpeed) Observe(s *sim.Snapshot) {
	m.sum += s.Particles.MeanSpeed()
	m.samples++
}

func (m *MeanSpeed) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanSpeed) Reset() {
	m.sum = 0
	m.samples = 0
}

// Crystallinity is the fraction of particles holding an exclusive anchor in
// the last snapshot.
type Crystallinity struct {
	last float64
}

func NewCrystallinity() *Crystallinity { return &Crystallinity{} }

func (c *Crystallinity) Name() string { return "crystallinity" }

func (c *Crystallinity) Observe(s *sim.Snapshot) {
	if len(s.Particles) == 0 {
		c.last = 0
		return
	}
	c.last = float64(s.Assigned) / float64(len(s.Particles))
}

func (c *Crystallinity) Value() float64 { return c.last }

func (c *Crystallinity) Reset() { c.last = 0 }

// Settled is the fraction of frames whose largest particle displacement
// since the previous frame stayed below threshold. The first frame only
// primes the comparison.
type Settled struct {
	threshold float64
	prev      dynamo.Ensemble
	settled   int
	samples   int
}

func NewSettled(threshold float64) *Settled {
	return &Settled{threshold: threshold}
}

func (s *Settled) Name() string { return "settled" }

func (s *Settled) Observe(snap *sim.Snapshot) {
	if s.prev != nil {
		s.samples++
		if snap.Particles.MaxDisplacement(s.prev) < s.threshold {
			s.settled++
		}
	}
	s.prev = append(s.prev[:0], snap.Particles...)
}

func (s *Settled) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.settled) / float64(s.samples)
}

func (s *Settled) Reset() {
	s.prev = nil
	s.settled = 0
	s.samples = 0
}
