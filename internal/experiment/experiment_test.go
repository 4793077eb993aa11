package experiment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/san-kum/phasesim/internal/dynamo"
	"github.com/san-kum/phasesim/internal/sim"
)

var quiet = WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

func smallConfig(s Schedule) Config {
	eng := sim.DefaultConfig()
	eng.Particles = 12
	return Config{Schedule: s, Engine: eng}
}

type counter struct{ n int }

func (c *counter) OnStep(*sim.Snapshot) { c.n++ }

func TestExperiment_Run(t *testing.T) {
	s := Schedule{
		Name:  "test",
		Start: 120,
		Segments: []Segment{
			{Kind: Hold, To: 120, Duration: 0.5},
			{Kind: Freeze, To: -20, Duration: 1},
		},
	}
	obs := &counter{}
	exp, err := New(smallConfig(s), quiet, WithObserver(obs))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if res.StepsTaken != 90 {
		t.Errorf("expected 90 steps, got %d", res.StepsTaken)
	}
	if obs.n != res.StepsTaken {
		t.Errorf("expected observer on every step, got %d", obs.n)
	}
	if res.Freezes != 1 {
		t.Errorf("expected one freeze, got %d", res.Freezes)
	}
	if want := 1 + 90/DefaultRecordEvery; len(res.Samples) != want {
		t.Errorf("expected %d samples, got %d", want, len(res.Samples))
	}
	if res.Samples[0].Time != 0 || res.Samples[0].Temperature != 120 {
		t.Errorf("expected initial sample at 120 °C, got %+v", res.Samples[0])
	}
	last := res.Samples[len(res.Samples)-1]
	if last.Temperature != -20 || !last.Solid {
		t.Errorf("expected solid at -20 °C at the end, got %+v", last)
	}
	if res.Final.Assigned != 12 {
		t.Errorf("expected every particle assigned, got %d", res.Final.Assigned)
	}
	if _, ok := res.Metrics["active_bonds"]; !ok {
		t.Errorf("expected standard metrics, got %v", res.Metrics)
	}
}

func TestExperiment_Canceled(t *testing.T) {
	exp, err := New(smallConfig(Builtin()[0]), quiet)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := exp.Run(ctx)
	if !errors.Is(err, dynamo.ErrContextCanceled) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	var simErr *dynamo.SimulationError
	if !errors.As(err, &simErr) || simErr.Step != 0 {
		t.Errorf("expected SimulationError at step 0, got %v", err)
	}
	if res == nil || res.StepsTaken != 0 {
		t.Errorf("expected empty partial result, got %+v", res)
	}
}

func TestExperiment_RejectsBadConfig(t *testing.T) {
	cfg := smallConfig(Schedule{Name: "empty"})
	if _, err := New(cfg); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected schedule error, got %v", err)
	}

	cfg = smallConfig(Builtin()[0])
	cfg.Engine.MaxDt = 0
	if _, err := New(cfg); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected engine error, got %v", err)
	}
}

func TestSweep_Seeds(t *testing.T) {
	base := smallConfig(Schedule{
		Name:     "short",
		Start:    40,
		Segments: []Segment{{Kind: Hold, To: 40, Duration: 0.25}},
	})
	seeds := []int64{7, 8, 9, 10}

	results, err := Sweep(context.Background(), Seeds(base, seeds...), quiet)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	for i, r := range results {
		if r.Seed != seeds[i] {
			t.Errorf("result %d: expected seed %d, got %d", i, seeds[i], r.Seed)
		}
	}
	if results[0].Final.Particles[0] == results[1].Final.Particles[0] {
		t.Error("expected different seeds to give different ensembles")
	}
}

func TestSweep_HoldsMatchSequential(t *testing.T) {
	base := smallConfig(Schedule{})
	cfgs := Holds(base, 0.25, -10, 50, 150)

	results, err := Sweep(context.Background(), cfgs, quiet)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}

	for i, cfg := range cfgs {
		exp, err := New(cfg, quiet)
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		seq, err := exp.Run(context.Background())
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		got, want := results[i].Final.Particles, seq.Final.Particles
		for j := range want {
			if got[j] != want[j] {
				t.Fatalf("hold %v: particle %d differs between sweep and sequential run", cfg.Schedule.Start, j)
			}
		}
	}
}

func TestSweep_PropagatesError(t *testing.T) {
	bad := smallConfig(Schedule{Name: "empty"})
	good := smallConfig(Builtin()[0])
	if _, err := Sweep(context.Background(), []Config{good, bad}, quiet); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected validation error, got %v", err)
	}
}
