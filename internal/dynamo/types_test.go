package dynamo

import (
	"errors"
	"math"
	"testing"
)

func TestParticle_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		p     Particle
		valid bool
	}{
		{"zero", Particle{}, true},
		{"normal", Particle{X: 1, Y: 2, VX: 3, Spin: 0.5}, true},
		{"with NaN", Particle{X: math.NaN()}, false},
		{"with +Inf", Particle{Fall: math.Inf(1)}, false},
		{"with -Inf", Particle{Angle: math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestEnsemble_CloneIsIndependent(t *testing.T) {
	e := Ensemble{{X: 1}, {X: 2}}
	c := e.Clone()
	c[0].X = 99
	if e[0].X != 1 {
		t.Error("Clone did not create independent copy")
	}
}

func TestEnsemble_MeanSpeed(t *testing.T) {
	e := Ensemble{{VX: 3, VY: 4}, {VX: 0, VY: 1}}
	if got := e.MeanSpeed(); math.Abs(got-3) > 1e-12 {
		t.Errorf("expected mean speed 3, got %f", got)
	}
	if got := (Ensemble{}).MeanSpeed(); got != 0 {
		t.Errorf("expected 0 for empty ensemble, got %f", got)
	}
}

func TestEnsemble_MaxDisplacement(t *testing.T) {
	prev := Ensemble{{X: 0, Y: 0}, {X: 10, Y: 10}}
	cur := Ensemble{{X: 3, Y: 4}, {X: 10, Y: 11}}
	if got := cur.MaxDisplacement(prev); math.Abs(got-5) > 1e-12 {
		t.Errorf("expected 5, got %f", got)
	}
}

func TestAngleDiff(t *testing.T) {
	tests := []struct {
		a, b, want float64
	}{
		{0, 1, 1},
		{1, 0, -1},
		{0.1, 2*math.Pi - 0.1, -0.2},
		{-3, 3, 6 - 2*math.Pi},
	}

	for _, tt := range tests {
		if got := AngleDiff(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("AngleDiff(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestFastSinCos(t *testing.T) {
	for _, x := range []float64{0, 0.5, 1.7, -2.2, 9.1} {
		s, c := FastSinCos(x)
		if math.Abs(s-math.Sin(x)) > 1e-5 || math.Abs(c-math.Cos(x)) > 1e-5 {
			t.Errorf("FastSinCos(%v) = (%v, %v), want (%v, %v)", x, s, c, math.Sin(x), math.Cos(x))
		}
	}
}

func TestHydrogenOffsets_Symmetric(t *testing.T) {
	x1, y1, x2, y2 := HydrogenOffsets(0, 10)
	if math.Abs(x1-x2) > 1e-4 || math.Abs(y1+y2) > 1e-4 {
		t.Errorf("expected mirror-symmetric hydrogens, got (%v,%v) (%v,%v)", x1, y1, x2, y2)
	}
	if math.Abs(math.Hypot(x1, y1)-10) > 1e-3 {
		t.Errorf("expected arm length 10, got %v", math.Hypot(x1, y1))
	}
}

func TestBoundsError(t *testing.T) {
	err := BoundsError("dt", -1, "must be positive")
	if !errors.Is(err, ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
}

func TestSimulationError(t *testing.T) {
	err := &SimulationError{Step: 150, Time: 1.5, Wrapped: ErrContextCanceled}
	expected := "step 150 (t=1.5000): dynamo: simulation canceled by context"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, ErrContextCanceled) {
		t.Error("expected SimulationError to unwrap")
	}
}
