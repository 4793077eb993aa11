package sim

import (
	"github.com/san-kum/phasesim/internal/dynamo"
	"github.com/san-kum/phasesim/internal/freeze"
	"github.com/san-kum/phasesim/internal/lattice"
	"github.com/san-kum/phasesim/internal/physics"
)

const (
	DefaultWidth     = 800.0
	DefaultHeight    = 500.0
	DefaultParticles = 80
	DefaultRadius    = 14.0
	DefaultMaxDt     = 0.05

	DefaultFreezeImpulse = 180.0
	DefaultFreezeDamping = 0.3
	DefaultSampleCap     = 200
	DefaultBondWindow    = 3.0
)

// Config is the full engine parameter set. The zero value is not usable;
// start from DefaultConfig.
type Config struct {
	Width              float64 `yaml:"width"`
	Height             float64 `yaml:"height"`
	Particles          int     `yaml:"particles"`
	Radius             float64 `yaml:"radius"`
	Seed               int64   `yaml:"seed"`
	MaxDt              float64 `yaml:"max_dt"`
	InitialTemperature float64 `yaml:"initial_temperature"`

	LiquidSpacing float64 `yaml:"liquid_spacing"`
	SolidSpacing  float64 `yaml:"solid_spacing"`

	FreezeDuration float64 `yaml:"freeze_duration"`
	FreezeImpulse  float64 `yaml:"freeze_impulse"`
	FreezeDamping  float64 `yaml:"freeze_damping"`

	SampleCapacity int     `yaml:"sample_capacity"`
	BondWindow     float64 `yaml:"bond_window"`

	Motion      physics.Motion      `yaml:"motion"`
	Interaction physics.Interaction `yaml:"interaction"`
	Relax       physics.Relax       `yaml:"relax"`
}

func DefaultConfig() Config {
	return Config{
		Width:              DefaultWidth,
		Height:             DefaultHeight,
		Particles:          DefaultParticles,
		Radius:             DefaultRadius,
		Seed:               1,
		MaxDt:              DefaultMaxDt,
		InitialTemperature: 20,
		LiquidSpacing:      lattice.LiquidSpacing,
		SolidSpacing:       lattice.SolidSpacing,
		FreezeDuration:     freeze.DefaultDuration,
		FreezeImpulse:      DefaultFreezeImpulse,
		FreezeDamping:      DefaultFreezeDamping,
		SampleCapacity:     DefaultSampleCap,
		BondWindow:         DefaultBondWindow,
		Motion:             physics.DefaultMotion(),
		Interaction:        physics.DefaultInteraction(),
		Relax:              physics.DefaultRelax(),
	}
}

// Validate checks the parameters the engine cannot clamp on its own.
func (c Config) Validate() error {
	switch {
	case c.Width <= 2*c.Radius:
		return dynamo.BoundsError("width", c.Width, "must exceed twice the radius")
	case c.Height <= 2*c.Radius:
		return dynamo.BoundsError("height", c.Height, "must exceed twice the radius")
	case c.Particles < 0:
		return dynamo.BoundsError("particles", float64(c.Particles), "must be non-negative")
	case c.Radius < 0:
		return dynamo.BoundsError("radius", c.Radius, "must be non-negative")
	case c.MaxDt <= 0:
		return dynamo.BoundsError("max_dt", c.MaxDt, "must be positive")
	case c.LiquidSpacing <= 0:
		return dynamo.BoundsError("liquid_spacing", c.LiquidSpacing, "must be positive")
	case c.SolidSpacing <= c.LiquidSpacing:
		return dynamo.BoundsError("solid_spacing", c.SolidSpacing, "must exceed liquid spacing")
	case c.FreezeDuration <= 0:
		return dynamo.BoundsError("freeze_duration", c.FreezeDuration, "must be positive")
	case c.FreezeDamping < 0 || c.FreezeDamping > 1:
		return dynamo.BoundsError("freeze_damping", c.FreezeDamping, "must be in [0, 1]")
	case c.SampleCapacity <= 0:
		return dynamo.BoundsError("sample_capacity", float64(c.SampleCapacity), "must be positive")
	case c.BondWindow <= 0:
		return dynamo.BoundsError("bond_window", c.BondWindow, "must be positive")
	case c.Interaction.Cutoff <= 0:
		return dynamo.BoundsError("interaction.cutoff", c.Interaction.Cutoff, "must be positive")
	case c.Interaction.RepelSolid < c.Interaction.RepelLiquid:
		return dynamo.BoundsError("interaction.repel_solid", c.Interaction.RepelSolid, "must not be below repel_liquid")
	case c.Relax.Passes < 0:
		return dynamo.BoundsError("relax.passes", float64(c.Relax.Passes), "must be non-negative")
	case c.Relax.DampingFloor < 0 || c.Relax.DampingFloor > 1:
		return dynamo.BoundsError("relax.damping_floor", c.Relax.DampingFloor, "must be in [0, 1]")
	}
	return nil
}
