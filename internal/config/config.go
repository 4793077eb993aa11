package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/phasesim/internal/experiment"
	"github.com/san-kum/phasesim/internal/heat"
	"github.com/san-kum/phasesim/internal/sim"
)

const (
	DefaultSchedule = "melt"
	DefaultDt       = experiment.DefaultDt
)

// Config is the on-disk run description: which schedule to drive, the
// engine parameters and any custom schedules.
type Config struct {
	Schedule    string                `yaml:"schedule"`
	Dt          float64               `yaml:"dt"`
	RecordEvery int                   `yaml:"record_every"`
	Engine      sim.Config            `yaml:"engine"`
	Heat        heat.Model            `yaml:"heat"`
	Schedules   []experiment.Schedule `yaml:"schedules,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Schedule:    DefaultSchedule,
		Dt:          DefaultDt,
		RecordEvery: experiment.DefaultRecordEvery,
		Engine:      sim.DefaultConfig(),
		Heat:        heat.Water(),
	}
}

// Load reads a YAML file over the defaults, so a file only needs the keys
// it changes.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if err := c.Heat.Validate(); err != nil {
		return fmt.Errorf("heat: %w", err)
	}
	for _, s := range c.Schedules {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Registry returns the built-in schedules plus the file's custom ones.
func (c *Config) Registry() (*experiment.Registry, error) {
	reg := experiment.NewRegistry()
	for _, s := range c.Schedules {
		if err := reg.Register(s); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Experiment resolves the named schedule and builds the run config.
func (c *Config) Experiment() (experiment.Config, error) {
	if err := c.Validate(); err != nil {
		return experiment.Config{}, err
	}
	reg, err := c.Registry()
	if err != nil {
		return experiment.Config{}, err
	}
	sched, err := reg.Get(c.Schedule)
	if err != nil {
		return experiment.Config{}, err
	}
	return experiment.Config{
		Schedule:    sched,
		Engine:      c.Engine,
		Heat:        c.Heat,
		Dt:          c.Dt,
		RecordEvery: c.RecordEvery,
	}, nil
}
