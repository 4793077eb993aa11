package physics

import (
	"math"

	"github.com/san-kum/phasesim/internal/dynamo"
	"github.com/san-kum/phasesim/internal/lattice"
	"github.com/san-kum/phasesim/internal/thermal"
)

// Motion holds the free (non-crystal) motion parameters.
type Motion struct {
	BaseSpeed      float64 `yaml:"base_speed"`
	BaseSpin       float64 `yaml:"base_spin"`
	Jitter         float64 `yaml:"jitter"`
	SpinJitter     float64 `yaml:"spin_jitter"`
	ThermostatRate float64 `yaml:"thermostat_rate"`
	Restitution    float64 `yaml:"restitution"`
}

func DefaultMotion() Motion {
	return Motion{
		BaseSpeed:      60,
		BaseSpin:       2.5,
		Jitter:         120,
		SpinJitter:     4,
		ThermostatRate: 3,
		Restitution:    0.8,
	}
}

// Thermalize nudges lateral speed and spin toward their temperature targets
// and adds random jitter. weight is the free-motion fraction (1 - ramp); at 0
// nothing happens and rng is not consumed.
func (m Motion) Thermalize(p *dynamo.Particle, rng dynamo.Rand, tempC, weight, dt float64) {
	if weight <= 0 {
		return
	}
	speedMul := thermal.SpeedMultiplier(tempC)
	target := m.BaseSpeed * speedMul
	spinTarget := m.BaseSpin * thermal.RotationMultiplier(tempC)
	k := math.Min(1, m.ThermostatRate*dt) * weight

	if s := p.Speed(); s > 1e-9 {
		scale := 1 + (target/s-1)*k
		p.VX *= scale
		p.VY *= scale
	}
	if s := math.Abs(p.Spin); s > 1e-9 {
		p.Spin *= 1 + (spinTarget/s-1)*k
	}

	amp := m.Jitter * speedMul * weight * dt
	p.VX += dynamo.Uniform(rng, -1, 1) * amp
	p.VY += dynamo.Uniform(rng, -1, 1) * amp
	p.Spin += dynamo.Uniform(rng, -1, 1) * m.SpinJitter * weight * dt
}

// Fall accumulates gravity into the fall rate, capped at terminal speed.
func Fall(p *dynamo.Particle, g thermal.Gravity, scale, dt float64) {
	p.Fall += g.Accel * scale * dt
	if p.Fall > g.Terminal {
		p.Fall = g.Terminal
	}
}

// Integrate advances position by lateral velocity plus fall rate and
// orientation by spin.
func Integrate(p *dynamo.Particle, dt float64) {
	p.X += p.VX * dt
	p.Y += (p.VY + p.Fall) * dt
	p.Angle = dynamo.WrapAngle(p.Angle + p.Spin*dt)
}

// Contain keeps a particle of the given radius inside box. Side and ceiling
// hits reflect with restitution; the floor stops the fall, bounces VY and
// applies floor friction to VX.
func (m Motion) Contain(p *dynamo.Particle, box lattice.Rect, radius, friction, dt float64) {
	if p.X < box.MinX+radius {
		p.X = box.MinX + radius
		p.VX = math.Abs(p.VX) * m.Restitution
	} else if p.X > box.MaxX-radius {
		p.X = box.MaxX - radius
		p.VX = -math.Abs(p.VX) * m.Restitution
	}

	if p.Y < box.MinY+radius {
		p.Y = box.MinY + radius
		p.VY = math.Abs(p.VY) * m.Restitution
	} else if p.Y >= box.MaxY-radius {
		p.Y = box.MaxY - radius
		p.Fall = 0
		if p.VY > 0 {
			p.VY = -p.VY * m.Restitution
		}
		p.VX *= math.Max(0, 1-friction*dt)
	}
}
