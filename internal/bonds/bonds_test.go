package bonds

import (
	"math"
	"math/rand"
	"testing"
)

func TestPair_Canonical(t *testing.T) {
	if Pair(5, 2) != Pair(2, 5) {
		t.Error("expected Pair to be order independent")
	}
	k := Pair(9, 3)
	if k.I != 3 || k.J != 9 {
		t.Errorf("expected {3 9}, got %v", k)
	}
}

func TestSamples_FIFOEviction(t *testing.T) {
	s := NewSamples(3)
	for _, v := range []float64{1, 2, 3, 4, 5} {
		s.Push(v)
	}
	if s.Len() != 3 {
		t.Fatalf("expected 3 samples, got %d", s.Len())
	}
	got := s.Values()
	want := []float64{3, 4, 5}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Values()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if m := s.Mean(); m != 4 {
		t.Errorf("expected mean 4, got %v", m)
	}
}

func TestSamples_EmptyMean(t *testing.T) {
	if m := NewSamples(4).Mean(); m != 0 {
		t.Errorf("expected 0 for empty buffer, got %v", m)
	}
}

func TestLedger_Lifecycle(t *testing.T) {
	l := NewLedger(10)
	k := Pair(0, 1)

	l.Observe(k, true, 1.0)
	l.Observe(k, true, 1.5)
	if start, ok := l.Started(k); !ok || start != 1.0 {
		t.Errorf("expected open record started at 1.0, got %v %v", start, ok)
	}
	if l.Open() != 1 {
		t.Errorf("expected 1 open bond, got %d", l.Open())
	}

	l.Observe(k, false, 3.0)
	if l.IsOpen(k) {
		t.Error("expected record to close when pair leaves cutoff")
	}
	if d := l.AverageDuration(); math.Abs(d-2.0) > 1e-12 {
		t.Errorf("expected duration 2.0, got %v", d)
	}

	l.Observe(k, false, 4.0)
	if l.Samples().Len() != 1 {
		t.Errorf("expected no sample for pair that was never reopened, got %d", l.Samples().Len())
	}
}

func TestLedger_NegativeDurationClamped(t *testing.T) {
	l := NewLedger(4)
	k := Pair(2, 7)
	l.Observe(k, true, 5)
	l.Observe(k, false, 4)
	if got := l.Samples().Values()[0]; got != 0 {
		t.Errorf("expected clamped duration 0, got %v", got)
	}
}

func TestLedger_AtMostOneOpenRecordPerPair(t *testing.T) {
	l := NewLedger(50)
	rng := rand.New(rand.NewSource(7))
	const n = 6

	for frame := 0; frame < 500; frame++ {
		now := float64(frame) / 60
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				// observe both orientations; the canonical key must collapse them
				within := rng.Float64() < 0.5
				l.Observe(Pair(i, j), within, now)
				l.Observe(Pair(j, i), within, now)
			}
		}

		seen := make(map[PairKey]int)
		for _, k := range l.Keys() {
			if k.I >= k.J {
				t.Fatalf("non-canonical key %v", k)
			}
			seen[k]++
			if seen[k] > 1 {
				t.Fatalf("pair %v has more than one open record", k)
			}
		}
		if l.Open() > n*(n-1)/2 {
			t.Fatalf("open count %d exceeds pair count", l.Open())
		}
	}
}

func TestWindow(t *testing.T) {
	w := NewWindow(3)
	w.Add(0, 10)
	w.Add(1, 20)
	w.Add(2, 30)
	if got := w.Average(); got != 20 {
		t.Errorf("expected 20, got %v", got)
	}

	w.Add(4, 40)
	if w.Len() != 3 {
		t.Errorf("expected sample at t=0 evicted, have %d", w.Len())
	}
	if got := w.Average(); got != 30 {
		t.Errorf("expected 30, got %v", got)
	}

	w.Clear()
	if got := w.Average(); got != 0 {
		t.Errorf("expected 0 after clear, got %v", got)
	}
}
