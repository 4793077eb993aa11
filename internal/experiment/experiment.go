package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/phasesim/internal/dynamo"
	"github.com/san-kum/phasesim/internal/heat"
	"github.com/san-kum/phasesim/internal/metrics"
	"github.com/san-kum/phasesim/internal/sim"
)

const (
	DefaultDt          = 1.0 / 60
	DefaultRecordEvery = 6
)

type Config struct {
	Schedule    Schedule
	Engine      sim.Config
	Heat        heat.Model
	Dt          float64
	RecordEvery int
}

// Sample is one recorded row of a run.
type Sample struct {
	Time            float64
	Temperature     float64
	Heat            float64
	Phase           string
	Solid           bool
	ActiveBonds     int
	OpenBonds       int
	AvgBondDuration float64
	Boost           float64
	Assigned        int
	MeanSpeed       float64
}

type Result struct {
	Schedule   string
	Seed       int64
	Samples    []Sample
	Metrics    map[string]float64
	StepsTaken int
	Freezes    int
	Final      sim.Snapshot
}

// Observer sees every post-step snapshot.
type Observer interface {
	OnStep(s *sim.Snapshot)
}

type Experiment struct {
	cfg       Config
	log       *slog.Logger
	metrics   []metrics.Metric
	observers []Observer
}

type Option func(*Experiment)

func WithLogger(l *slog.Logger) Option {
	return func(e *Experiment) {
		if l != nil {
			e.log = l
		}
	}
}

// WithMetrics replaces the standard metric set.
func WithMetrics(ms ...metrics.Metric) Option {
	return func(e *Experiment) { e.metrics = ms }
}

func WithObserver(o Observer) Option {
	return func(e *Experiment) { e.observers = append(e.observers, o) }
}

func New(cfg Config, opts ...Option) (*Experiment, error) {
	if cfg.Dt <= 0 {
		cfg.Dt = DefaultDt
	}
	if cfg.RecordEvery <= 0 {
		cfg.RecordEvery = DefaultRecordEvery
	}
	if cfg.Heat == (heat.Model{}) {
		cfg.Heat = heat.Water()
	}
	if err := cfg.Schedule.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Heat.Validate(); err != nil {
		return nil, fmt.Errorf("heat model: %w", err)
	}
	if err := cfg.Engine.Validate(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	e := &Experiment{
		cfg:     cfg,
		log:     slog.Default(),
		metrics: metrics.Standard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Experiment) Config() Config { return e.cfg }

// Run drives a fresh engine through the schedule. On cancellation or an
// invalid ensemble it returns the partial result together with a
// *dynamo.SimulationError.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	engCfg := e.cfg.Engine
	engCfg.InitialTemperature = e.cfg.Schedule.Start

	engine, err := sim.New(engCfg, sim.WithLogger(e.log))
	if err != nil {
		return nil, err
	}
	driver := NewDriver(e.cfg.Schedule, e.cfg.Heat)

	for _, m := range e.metrics {
		m.Reset()
	}

	steps := int(e.cfg.Schedule.Duration()/e.cfg.Dt + 0.5)
	result := &Result{
		Schedule: e.cfg.Schedule.Name,
		Seed:     engCfg.Seed,
		Samples:  make([]Sample, 0, steps/e.cfg.RecordEvery+2),
	}

	e.log.Info("run started",
		"schedule", e.cfg.Schedule.Name,
		"seed", engCfg.Seed,
		"particles", engCfg.Particles,
		"duration", e.cfg.Schedule.Duration(),
	)

	snap := engine.Snapshot()
	result.Samples = append(result.Samples, sampleOf(&snap, driver.Heat()))

	for i := 0; !driver.Done(); i++ {
		select {
		case <-ctx.Done():
			result.Final = engine.Snapshot()
			e.finish(result)
			return result, &dynamo.SimulationError{
				Step:    i,
				Time:    engine.Time(),
				Wrapped: fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err()),
			}
		default:
		}

		temp, freeze := driver.Next(e.cfg.Dt)
		if freeze {
			if engine.Freeze() {
				result.Freezes++
			} else {
				e.log.Warn("freeze refused below boiling", "temperature", engine.Temperature(), "t", engine.Time())
			}
		}
		engine.Step(e.cfg.Dt, temp)
		result.StepsTaken++

		snap = engine.Snapshot()
		if !snap.Particles.IsValid() {
			result.Final = snap
			e.finish(result)
			return result, &dynamo.SimulationError{Step: i, Time: snap.Time, Wrapped: dynamo.ErrInvalidState}
		}

		for _, m := range e.metrics {
			m.Observe(&snap)
		}
		for _, o := range e.observers {
			o.OnStep(&snap)
		}
		if (i+1)%e.cfg.RecordEvery == 0 || driver.Done() {
			result.Samples = append(result.Samples, sampleOf(&snap, driver.Heat()))
		}
	}

	result.Final = snap
	e.finish(result)
	e.log.Info("run finished",
		"schedule", e.cfg.Schedule.Name,
		"steps", result.StepsTaken,
		"samples", len(result.Samples),
		"final_phase", snap.Phase,
	)
	return result, nil
}

func (e *Experiment) finish(r *Result) {
	r.Metrics = metrics.Collect(e.metrics)
}

func sampleOf(s *sim.Snapshot, q float64) Sample {
	return Sample{
		Time:            s.Time,
		Temperature:     s.Temperature,
		Heat:            q,
		Phase:           s.Phase.String(),
		Solid:           s.Solid,
		ActiveBonds:     s.ActiveBonds,
		OpenBonds:       s.OpenBonds,
		AvgBondDuration: s.AverageBondDuration,
		Boost:           s.Boost,
		Assigned:        s.Assigned,
		MeanSpeed:       s.Particles.MeanSpeed(),
	}
}
