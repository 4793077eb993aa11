package automation

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/phasesim/internal/config"
	"github.com/san-kum/phasesim/internal/dynamo"
	"github.com/san-kum/phasesim/internal/experiment"
	"github.com/san-kum/phasesim/internal/sim"
)

// Scenario defines a scripted sequence of runs
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single run in a scenario. Schedule names a registered
// schedule; Inline replaces it with one defined in place. Zero values keep
// the base config.
type ScenarioStep struct {
	Schedule  string               `yaml:"schedule"`
	Inline    *experiment.Schedule `yaml:"inline,omitempty"`
	Seed      int64                `yaml:"seed"`
	Particles int                  `yaml:"particles"`
	Dt        float64              `yaml:"dt"`
	Params    map[string]float64   `yaml:"params"`
	SaveAs    string               `yaml:"save_as"`
}

// StepResult pairs a finished run with the config it ran under.
type StepResult struct {
	Name   string
	Config experiment.Config
	Result *experiment.Result
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q: no steps", scenario.Name)
	}
	return &scenario, nil
}

// paramSetters maps the tunable engine parameters a scenario may override.
var paramSetters = map[string]func(c *sim.Config, v float64){
	"radius":          func(c *sim.Config, v float64) { c.Radius = v },
	"width":           func(c *sim.Config, v float64) { c.Width = v },
	"height":          func(c *sim.Config, v float64) { c.Height = v },
	"liquid_spacing":  func(c *sim.Config, v float64) { c.LiquidSpacing = v },
	"solid_spacing":   func(c *sim.Config, v float64) { c.SolidSpacing = v },
	"freeze_duration": func(c *sim.Config, v float64) { c.FreezeDuration = v },
	"freeze_impulse":  func(c *sim.Config, v float64) { c.FreezeImpulse = v },
	"bond_window":     func(c *sim.Config, v float64) { c.BondWindow = v },
	"base_speed":      func(c *sim.Config, v float64) { c.Motion.BaseSpeed = v },
	"jitter":          func(c *sim.Config, v float64) { c.Motion.Jitter = v },
	"cutoff":          func(c *sim.Config, v float64) { c.Interaction.Cutoff = v },
	"repel_liquid":    func(c *sim.Config, v float64) { c.Interaction.RepelLiquid = v },
	"repel_solid":     func(c *sim.Config, v float64) { c.Interaction.RepelSolid = v },
	"attract":         func(c *sim.Config, v float64) { c.Interaction.AttractStrength = v },
	"spring_k":        func(c *sim.Config, v float64) { c.Relax.SpringK = v },
	"orient_k":        func(c *sim.Config, v float64) { c.Relax.OrientK = v },
	"min_separation":  func(c *sim.Config, v float64) { c.Relax.MinSeparation = v },
	"rematch":         func(c *sim.Config, v float64) { c.Relax.Rematch = v },
}

// Params lists the parameter names ApplyParams accepts.
func Params() []string {
	names := make([]string, 0, len(paramSetters))
	for k := range paramSetters {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// ApplyParams overrides engine parameters by name.
func ApplyParams(c *sim.Config, params map[string]float64) error {
	for k, v := range params {
		set, ok := paramSetters[k]
		if !ok {
			return fmt.Errorf("%w: unknown parameter %q", dynamo.ErrParameterBounds, k)
		}
		set(c, v)
	}
	return c.Validate()
}

// Resolve builds the run config for one step on top of base.
func Resolve(step ScenarioStep, base *config.Config) (experiment.Config, error) {
	cfg := *base
	if step.Schedule != "" {
		cfg.Schedule = step.Schedule
	}
	if step.Seed != 0 {
		cfg.Engine.Seed = step.Seed
	}
	if step.Particles > 0 {
		cfg.Engine.Particles = step.Particles
	}
	if step.Dt > 0 {
		cfg.Dt = step.Dt
	}
	if err := ApplyParams(&cfg.Engine, step.Params); err != nil {
		return experiment.Config{}, err
	}
	if step.Inline != nil {
		cfg.Schedules = append(append([]experiment.Schedule(nil), cfg.Schedules...), *step.Inline)
		cfg.Schedule = step.Inline.Name
	}
	return cfg.Experiment()
}

// RunScenario executes all steps in a scenario in order
func RunScenario(ctx context.Context, scenario *Scenario, base *config.Config, opts ...experiment.Option) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := Resolve(step, base)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		name := step.SaveAs
		if name == "" {
			name = cfg.Schedule.Name
		}
		slog.Info("scenario step", "scenario", scenario.Name, "step", i+1, "of", len(scenario.Steps), "schedule", cfg.Schedule.Name)

		exp, err := experiment.New(cfg, opts...)
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}
		results = append(results, StepResult{Name: name, Config: cfg, Result: result})
	}
	return results, nil
}

// TemperatureSweep holds the engine at evenly spaced temperatures.
type TemperatureSweep struct {
	Min      float64
	Max      float64
	NumSteps int
	Duration float64
}

// SweepResult summarizes the end state of one held temperature.
type SweepResult struct {
	Temperature   float64
	Phase         string
	Crystallinity float64
	ActiveBonds   float64
	BondDuration  float64
	MeanSpeed     float64
}

func (s *TemperatureSweep) Temperatures() []float64 {
	if s.NumSteps == 1 {
		return []float64{s.Min}
	}
	step := (s.Max - s.Min) / float64(s.NumSteps-1)
	temps := make([]float64, s.NumSteps)
	for i := range temps {
		temps[i] = s.Min + float64(i)*step
	}
	return temps
}

// RunSweep executes the sweep concurrently and returns one row per
// temperature in ascending order.
func RunSweep(ctx context.Context, sweep *TemperatureSweep, base experiment.Config, opts ...experiment.Option) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, dynamo.BoundsError("steps", float64(sweep.NumSteps), "must be at least 1")
	}
	if sweep.Duration <= 0 {
		return nil, dynamo.BoundsError("duration", sweep.Duration, "must be positive")
	}

	temps := sweep.Temperatures()
	runs, err := experiment.Sweep(ctx, experiment.Holds(base, sweep.Duration, temps...), opts...)
	if err != nil {
		return nil, err
	}

	results := make([]SweepResult, len(runs))
	for i, r := range runs {
		results[i] = SweepResult{
			Temperature:   temps[i],
			Phase:         r.Final.Phase.String(),
			Crystallinity: r.Metrics["crystallinity"],
			ActiveBonds:   r.Metrics["active_bonds"],
			BondDuration:  r.Metrics["avg_bond_duration"],
			MeanSpeed:     r.Metrics["mean_speed"],
		}
	}
	return results, nil
}

// MonteCarloConfig repeats one schedule over random seeds
type MonteCarloConfig struct {
	NumTrials int
	Seed      int64
}

// MonteCarloResult holds the outcome of one trial
type MonteCarloResult struct {
	TrialID       int
	Seed          int64
	FinalPhase    string
	Crystallinity float64
	Crystallized  bool // every particle owns a lattice anchor at the end
}

// RunMonteCarlo executes trials with seeds drawn from cfg.Seed, or from the
// clock when it is 0.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, base experiment.Config, opts ...experiment.Option) ([]MonteCarloResult, error) {
	if cfg.NumTrials < 1 {
		return nil, dynamo.BoundsError("trials", float64(cfg.NumTrials), "must be at least 1")
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	seeds := make([]int64, cfg.NumTrials)
	for i := range seeds {
		seeds[i] = rng.Int63()
	}

	runs, err := experiment.Sweep(ctx, experiment.Seeds(base, seeds...), opts...)
	if err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, len(runs))
	for i, r := range runs {
		n := len(r.Final.Particles)
		results[i] = MonteCarloResult{
			TrialID:       i,
			Seed:          seeds[i],
			FinalPhase:    r.Final.Phase.String(),
			Crystallinity: r.Metrics["crystallinity"],
			Crystallized:  r.Final.Solid && n > 0 && r.Final.Assigned == n,
		}
	}
	slog.Info("monte carlo complete", "trials", len(results), "schedule", base.Schedule.Name)
	return results, nil
}

// MonteCarloStats counts crystallized and uncrystallized trials
func MonteCarloStats(results []MonteCarloResult) (crystallized int, other int) {
	for _, r := range results {
		if r.Crystallized {
			crystallized++
		} else {
			other++
		}
	}
	return
}
