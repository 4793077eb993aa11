package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/phasesim/internal/dynamo"
	"github.com/san-kum/phasesim/internal/sim"
)

func snap(bonds, open, assigned int, ps dynamo.Ensemble) *sim.Snapshot {
	return &sim.Snapshot{
		ActiveBonds: bonds,
		OpenBonds:   open,
		Assigned:    assigned,
		Particles:   ps,
	}
}

func TestActiveBonds_Average(t *testing.T) {
	m := NewActiveBonds()
	if m.Value() != 0 {
		t.Errorf("expected 0 before observing, got %v", m.Value())
	}
	for _, n := range []int{2, 4, 9} {
		m.Observe(snap(n, 0, 0, nil))
	}
	if got := m.Value(); got != 5 {
		t.Errorf("expected 5, got %v", got)
	}
	m.Reset()
	if m.Value() != 0 {
		t.Errorf("expected 0 after reset, got %v", m.Value())
	}
}

func TestPeakBonds(t *testing.T) {
	m := NewPeakBonds()
	for _, n := range []int{3, 11, 7} {
		m.Observe(snap(0, n, 0, nil))
	}
	if got := m.Value(); got != 11 {
		t.Errorf("expected 11, got %v", got)
	}
}

func TestBondDuration_Last(t *testing.T) {
	m := NewBondDuration()
	m.Observe(&sim.Snapshot{AverageBondDuration: 0.4})
	m.Observe(&sim.Snapshot{AverageBondDuration: 1.2})
	if got := m.Value(); got != 1.2 {
		t.Errorf("expected 1.2, got %v", got)
	}
}

func TestMeanSpeed(t *testing.T) {
	m := NewMeanSpeed()
	m.Observe(snap(0, 0, 0, dynamo.Ensemble{{VX: 3, VY: 4}, {VX: 0, VY: 0}}))
	m.Observe(snap(0, 0, 0, dynamo.Ensemble{{VX: 6, VY: 8}}))
	if got := m.Value(); math.Abs(got-6.25) > 1e-12 {
		t.Errorf("expected 6.25, got %v", got)
	}
}

func TestCrystallinity(t *testing.T) {
	m := NewCrystallinity()
	m.Observe(snap(0, 0, 3, make(dynamo.Ensemble, 4)))
	if got := m.Value(); got != 0.75 {
		t.Errorf("expected 0.75, got %v", got)
	}
	m.Observe(snap(0, 0, 0, nil))
	if got := m.Value(); got != 0 {
		t.Errorf("expected 0 for empty ensemble, got %v", got)
	}
}

func TestSettled(t *testing.T) {
	m := NewSettled(0.5)
	frames := []dynamo.Ensemble{
		{{X: 0}},
		{{X: 0.1}},
		{{X: 2}},
		{{X: 2.2}},
		{{X: 2.3}},
	}
	for _, f := range frames {
		m.Observe(snap(0, 0, 0, f))
	}
	if got := m.Value(); got != 0.75 {
		t.Errorf("expected 0.75, got %v", got)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Errorf("expected 0 after reset, got %v", m.Value())
	}
}

func TestSettled_DoesNotAliasSnapshot(t *testing.T) {
	m := NewSettled(0.5)
	ps := dynamo.Ensemble{{X: 0}}
	m.Observe(snap(0, 0, 0, ps))
	ps[0].X = 10
	m.Observe(snap(0, 0, 0, dynamo.Ensemble{{X: 0.1}}))
	if got := m.Value(); got != 1 {
		t.Errorf("expected settled frame, got %v", got)
	}
}

func TestCollect(t *testing.T) {
	ms := Standard()
	got := Collect(ms)
	if len(got) != len(ms) {
		t.Fatalf("expected %d values, got %d", len(ms), len(got))
	}
	for _, name := range []string{"avg_bond_duration", "active_bonds", "peak_bonds", "mean_speed", "crystallinity", "settled"} {
		if _, ok := got[name]; !ok {
			t.Errorf("missing metric %q", name)
		}
	}
}
