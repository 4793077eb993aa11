package experiment

import (
	"fmt"
	"math"

	"github.com/san-kum/phasesim/internal/dynamo"
	"github.com/san-kum/phasesim/internal/heat"
	"github.com/san-kum/phasesim/internal/thermal"
)

// Kind selects how a segment drives the temperature.
type Kind string

const (
	// Hold keeps the temperature at To.
	Hold Kind = "hold"
	// Ramp interpolates linearly from From (or the current temperature) to To.
	Ramp Kind = "ramp"
	// Heat adds Power J/g per second to a heat meter and follows T(Q), so
	// the temperature stalls on the latent plateaus.
	Heat Kind = "heat"
	// Freeze issues one freeze command on entry, then holds at To.
	Freeze Kind = "freeze"
)

// Segment is one timed piece of a schedule.
type Segment struct {
	Kind     Kind     `yaml:"kind"`
	From     *float64 `yaml:"from,omitempty"`
	To       float64  `yaml:"to"`
	Power    float64  `yaml:"power,omitempty"`
	Duration float64  `yaml:"duration"`
}

// Schedule drives the engine's temperature over time, the way a user
// dragging a slider or pressing phase buttons would.
type Schedule struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description,omitempty"`
	Start       float64   `yaml:"start"`
	Segments    []Segment `yaml:"segments"`
}

// Duration is the total simulated time of the schedule.
func (s Schedule) Duration() float64 {
	total := 0.0
	for _, seg := range s.Segments {
		total += seg.Duration
	}
	return total
}

func (s Schedule) Validate() error {
	if len(s.Segments) == 0 {
		return fmt.Errorf("schedule %q: %w: no segments", s.Name, dynamo.ErrParameterBounds)
	}
	for i, seg := range s.Segments {
		if seg.Duration <= 0 || math.IsNaN(seg.Duration) {
			return fmt.Errorf("schedule %q segment %d: %w", s.Name, i, dynamo.BoundsError("duration", seg.Duration, "must be positive"))
		}
		switch seg.Kind {
		case Hold, Ramp, Freeze:
		case Heat:
			if seg.Power == 0 {
				return fmt.Errorf("schedule %q segment %d: %w", s.Name, i, dynamo.BoundsError("power", seg.Power, "must be non-zero"))
			}
		default:
			return fmt.Errorf("schedule %q segment %d: %w: unknown kind %q", s.Name, i, dynamo.ErrParameterBounds, seg.Kind)
		}
	}
	return nil
}

// Driver walks a schedule frame by frame.
type Driver struct {
	sched Schedule
	meter *heat.Meter

	seg     int
	segT    float64
	entered bool
	from    float64
	temp    float64
}

func NewDriver(s Schedule, model heat.Model) *Driver {
	start := thermal.Clamp(s.Start)
	return &Driver{
		sched: s,
		meter: heat.NewMeter(model, start),
		temp:  start,
	}
}

// Temperature is the most recent target temperature.
func (d *Driver) Temperature() float64 { return d.temp }

// Heat is Q at the current temperature. During heat segments this is the
// meter's accumulated heat.
func (d *Driver) Heat() float64 { return d.meter.Heat() }

// Segment is the index of the active segment.
func (d *Driver) Segment() int { return d.seg }

func (d *Driver) Done() bool { return d.seg >= len(d.sched.Segments) }

// Next advances the schedule by dt and returns the temperature to step the
// engine with, and whether a freeze command should be issued first.
func (d *Driver) Next(dt float64) (tempC float64, freeze bool) {
	if d.Done() {
		return d.temp, false
	}
	seg := d.sched.Segments[d.seg]

	if !d.entered {
		d.entered = true
		d.from = d.temp
		if seg.From != nil {
			d.from = thermal.Clamp(*seg.From)
		}
		freeze = seg.Kind == Freeze
	}

	d.segT += dt
	frac := math.Min(1, d.segT/seg.Duration)

	switch seg.Kind {
	case Hold, Freeze:
		d.temp = thermal.Clamp(seg.To)
		d.meter.Set(d.temp)
	case Ramp:
		d.temp = thermal.Clamp(d.from + (seg.To-d.from)*frac)
		d.meter.Set(d.temp)
	case Heat:
		d.meter.Add(seg.Power * dt)
		d.temp = d.meter.Temperature()
	}

	if d.segT >= seg.Duration-1e-9 {
		d.seg++
		d.segT = 0
		d.entered = false
	}
	return d.temp, freeze
}
