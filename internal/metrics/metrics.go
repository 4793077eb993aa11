// Package metrics reduces a run's snapshots to scalar summaries.
package metrics

import (
	"github.com/san-kum/phasesim/internal/sim"
)

// Metric observes one snapshot per frame and reports a single value.
type Metric interface {
	Name() string
	Observe(s *sim.Snapshot)
	Value() float64
	Reset()
}

// Standard returns the metrics recorded for every run.
func Standard() []Metric {
	return []Metric{
		NewBondDuration(),
		NewActiveBonds(),
		NewPeakBonds(),
		NewMeanSpeed(),
		NewCrystallinity(),
		NewSettled(DefaultSettleThreshold),
	}
}

// Collect maps each metric's name to its value.
func Collect(ms []Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
