// Package heat relates cumulative heat added to temperature with latent-heat
// plateaus at the melting and boiling boundaries.
//
// Heat is measured in J/g from an absolute-zero reference, temperature in
// Celsius.
package heat

import (
	"math"

	"github.com/san-kum/phasesim/internal/dynamo"
	"github.com/san-kum/phasesim/internal/thermal"
)

const (
	maxIterations = 200
	tolerance     = 1e-9
	minWidth      = 1e-10
)

// Model holds specific heats per phase and the two latent constants.
type Model struct {
	SolidC       float64 `yaml:"solid_c"`
	LiquidC      float64 `yaml:"liquid_c"`
	GasC         float64 `yaml:"gas_c"`
	Fusion       float64 `yaml:"fusion"`
	Vaporization float64 `yaml:"vaporization"`
	Melt         float64 `yaml:"melt"`
	Boil         float64 `yaml:"boil"`
	Min          float64 `yaml:"min"`
	Max          float64 `yaml:"max"`
}

// Water returns the water-like defaults.
func Water() Model {
	return Model{
		SolidC:       2.09,
		LiquidC:      4.18,
		GasC:         2.01,
		Fusion:       334,
		Vaporization: 2257,
		Melt:         thermal.MeltPoint,
		Boil:         thermal.BoilPoint,
		Min:          thermal.AbsoluteZero,
		Max:          thermal.MaxCelsius,
	}
}

func (m Model) Validate() error {
	for name, v := range map[string]float64{"solid_c": m.SolidC, "liquid_c": m.LiquidC, "gas_c": m.GasC} {
		if v <= 0 {
			return dynamo.BoundsError(name, v, "must be positive")
		}
	}
	if m.Fusion < 0 {
		return dynamo.BoundsError("fusion", m.Fusion, "must be non-negative")
	}
	if m.Vaporization < 0 {
		return dynamo.BoundsError("vaporization", m.Vaporization, "must be non-negative")
	}
	if !(m.Min < m.Melt && m.Melt < m.Boil && m.Boil < m.Max) {
		return dynamo.BoundsError("melt", m.Melt, "require min < melt < boil < max")
	}
	return nil
}

func (m Model) clamp(t float64) float64 {
	if math.IsNaN(t) || t < m.Min {
		return m.Min
	}
	if t > m.Max {
		return m.Max
	}
	return t
}

// Heat returns Q(T). The fusion and vaporization latents are included only
// strictly above their boundary, so Q(Melt) is the start of the plateau.
func (m Model) Heat(t float64) float64 {
	t = m.clamp(t)

	q := m.SolidC * (math.Min(t, m.Melt) - m.Min)
	if t > m.Melt {
		q += m.Fusion + m.LiquidC*(math.Min(t, m.Boil)-m.Melt)
	}
	if t > m.Boil {
		q += m.Vaporization + m.GasC*(t-m.Boil)
	}
	return q
}

// MaxHeat is Q at the top of the temperature range.
func (m Model) MaxHeat() float64 {
	return m.Heat(m.Max)
}

// Temperature inverts Heat by bisection. Queries outside [0, MaxHeat] clamp
// to the range endpoints; queries inside a latent plateau resolve to the
// boundary temperature.
func (m Model) Temperature(q float64) float64 {
	if math.IsNaN(q) || q <= 0 {
		return m.Min
	}
	if q >= m.MaxHeat() {
		return m.Max
	}

	lo, hi := m.Min, m.Max
	for i := 0; i < maxIterations; i++ {
		mid := (lo + hi) / 2
		qm := m.Heat(mid)
		if math.Abs(qm-q) < tolerance {
			return mid
		}
		if qm < q {
			lo = mid
		} else {
			hi = mid
		}
		if hi-lo < minWidth {
			break
		}
	}
	return (lo + hi) / 2
}

// Point is one sample of the heating curve.
type Point struct {
	Q float64
	T float64
}

// Curve samples n points evenly spaced in heat from 0 to MaxHeat.
func (m Model) Curve(n int) []Point {
	if n < 2 {
		n = 2
	}
	top := m.MaxHeat()
	pts := make([]Point, n)
	for i := range pts {
		q := top * float64(i) / float64(n-1)
		pts[i] = Point{Q: q, T: m.Temperature(q)}
	}
	return pts
}
