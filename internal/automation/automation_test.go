package automation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/phasesim/internal/config"
	"github.com/san-kum/phasesim/internal/dynamo"
	"github.com/san-kum/phasesim/internal/experiment"
	"github.com/san-kum/phasesim/internal/sim"
)

var quiet = experiment.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

func smallBase() *config.Config {
	c := config.DefaultConfig()
	c.Engine.Particles = 8
	c.Dt = 0.05
	return c
}

const scenarioYAML = `
name: cool-down
description: freeze then hold
steps:
  - schedule: flash-freeze
    seed: 3
    save_as: flash
  - inline:
      name: chill
      start: -30
      segments:
        - kind: hold
          to: -30
          duration: 0.5
    particles: 6
    params:
      spring_k: 80
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if sc.Name != "cool-down" {
		t.Errorf("expected name cool-down, got %s", sc.Name)
	}
	if len(sc.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(sc.Steps))
	}
	if sc.Steps[0].Seed != 3 || sc.Steps[0].SaveAs != "flash" {
		t.Errorf("unexpected first step: %+v", sc.Steps[0])
	}
	if sc.Steps[1].Inline == nil || sc.Steps[1].Inline.Name != "chill" {
		t.Fatalf("expected inline schedule chill, got %+v", sc.Steps[1].Inline)
	}
	if sc.Steps[1].Params["spring_k"] != 80 {
		t.Errorf("expected spring_k 80, got %v", sc.Steps[1].Params["spring_k"])
	}
}

func TestLoadScenario_Errors(t *testing.T) {
	if _, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := LoadScenario(writeScenario(t, "name: empty\n")); err == nil {
		t.Error("expected error for scenario without steps")
	}
	if _, err := LoadScenario(writeScenario(t, "steps: [\n")); err == nil {
		t.Error("expected parse error")
	}
}

func TestApplyParams(t *testing.T) {
	c := sim.DefaultConfig()
	if err := ApplyParams(&c, map[string]float64{"spring_k": 45, "cutoff": 90}); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if c.Relax.SpringK != 45 || c.Interaction.Cutoff != 90 {
		t.Errorf("expected overrides applied, got spring_k=%v cutoff=%v", c.Relax.SpringK, c.Interaction.Cutoff)
	}

	if err := ApplyParams(&c, map[string]float64{"warp": 1}); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds for unknown key, got %v", err)
	}
	if err := ApplyParams(&c, map[string]float64{"radius": -1}); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds for negative radius, got %v", err)
	}
	if len(Params()) != len(paramSetters) {
		t.Errorf("expected %d params, got %d", len(paramSetters), len(Params()))
	}
}

func TestResolve(t *testing.T) {
	base := smallBase()
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}

	first, err := Resolve(sc.Steps[0], base)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if first.Schedule.Name != "flash-freeze" || first.Engine.Seed != 3 {
		t.Errorf("unexpected first config: schedule=%s seed=%d", first.Schedule.Name, first.Engine.Seed)
	}

	second, err := Resolve(sc.Steps[1], base)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if second.Schedule.Name != "chill" || second.Engine.Particles != 6 || second.Engine.Relax.SpringK != 80 {
		t.Errorf("unexpected second config: %+v", second.Schedule)
	}
	if len(base.Schedules) != 0 {
		t.Error("expected base config untouched")
	}

	if _, err := Resolve(ScenarioStep{Schedule: "nope"}, base); !errors.Is(err, dynamo.ErrUnknownSchedule) {
		t.Errorf("expected ErrUnknownSchedule, got %v", err)
	}
}

func TestRunScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}

	results, err := RunScenario(context.Background(), sc, smallBase(), quiet)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Name != "flash" || results[1].Name != "chill" {
		t.Errorf("unexpected names %s, %s", results[0].Name, results[1].Name)
	}
	if results[0].Result.Freezes != 1 {
		t.Errorf("expected one freeze in flash step, got %d", results[0].Result.Freezes)
	}
	if n := len(results[1].Result.Final.Particles); n != 6 {
		t.Errorf("expected 6 particles in chill step, got %d", n)
	}
}

func TestRunScenario_StopsOnError(t *testing.T) {
	sc := &Scenario{Steps: []ScenarioStep{{Schedule: "ice", Dt: 0.1}, {Schedule: "nope"}}}
	base := smallBase()
	base.Engine.Particles = 4

	results, err := RunScenario(context.Background(), sc, base, quiet)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(results) != 1 {
		t.Errorf("expected 1 completed step, got %d", len(results))
	}
}

func TestRunSweep(t *testing.T) {
	base, err := smallBase().Experiment()
	if err != nil {
		t.Fatal(err)
	}

	sw := &TemperatureSweep{Min: -40, Max: 120, NumSteps: 3, Duration: 1}
	results, err := RunSweep(context.Background(), sw, base, quiet)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	wantTemps := []float64{-40, 40, 120}
	wantPhases := []string{"solid", "liquid", "gas"}
	for i, r := range results {
		if r.Temperature != wantTemps[i] {
			t.Errorf("row %d: expected temperature %v, got %v", i, wantTemps[i], r.Temperature)
		}
		if r.Phase != wantPhases[i] {
			t.Errorf("row %d: expected phase %s, got %s", i, wantPhases[i], r.Phase)
		}
	}
	if results[0].Crystallinity != 1 {
		t.Errorf("expected full crystallinity when frozen, got %v", results[0].Crystallinity)
	}
	if results[2].Crystallinity != 0 {
		t.Errorf("expected no crystallinity as gas, got %v", results[2].Crystallinity)
	}

	if _, err := RunSweep(context.Background(), &TemperatureSweep{NumSteps: 0, Duration: 1}, base); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
}

func TestTemperatures(t *testing.T) {
	single := (&TemperatureSweep{Min: 5, Max: 50, NumSteps: 1}).Temperatures()
	if len(single) != 1 || single[0] != 5 {
		t.Errorf("expected [5], got %v", single)
	}
	temps := (&TemperatureSweep{Min: 0, Max: 100, NumSteps: 5}).Temperatures()
	if temps[4] != 100 || temps[2] != 50 {
		t.Errorf("unexpected spacing %v", temps)
	}
}

func TestRunMonteCarlo(t *testing.T) {
	base, err := smallBase().Experiment()
	if err != nil {
		t.Fatal(err)
	}
	base.Schedule = experiment.Schedule{
		Name:     "cold",
		Start:    -20,
		Segments: []experiment.Segment{{Kind: experiment.Hold, To: -20, Duration: 0.5}},
	}

	cfg := &MonteCarloConfig{NumTrials: 3, Seed: 7}
	results, err := RunMonteCarlo(context.Background(), cfg, base, quiet)
	if err != nil {
		t.Fatalf("monte carlo failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 trials, got %d", len(results))
	}

	again, err := RunMonteCarlo(context.Background(), cfg, base, quiet)
	if err != nil {
		t.Fatal(err)
	}
	for i := range results {
		if results[i].Seed != again[i].Seed {
			t.Errorf("trial %d: expected seed %d, got %d", i, results[i].Seed, again[i].Seed)
		}
	}

	crystallized, other := MonteCarloStats(results)
	if crystallized != 3 || other != 0 {
		t.Errorf("expected 3 crystallized, got %d (other %d)", crystallized, other)
	}

	if _, err := RunMonteCarlo(context.Background(), &MonteCarloConfig{}, base); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
}
