package thermal

import "math"

const (
	AbsoluteZero = -273.15
	MaxCelsius   = 500.0

	// MeltPoint and BoilPoint are the fixed phase boundaries in Celsius.
	MeltPoint = 0.0
	BoilPoint = 100.0

	referenceKelvin = 273.15

	hotBoostStart = 40.0
	hotBoostEnd   = 140.0
	hotBoostMax   = 1.35

	gravityHotStart = 0.0
	gravityHotEnd   = 90.0
	hotReduction    = 0.95

	baseGravity  = 400.0
	baseTerminal = 220.0
	baseFriction = 4.0
	minFriction  = 0.05

	freezeGravity  = 900.0
	freezeTerminal = 400.0
	freezeFriction = 6.0

	// CoolnessCeiling is the Kelvin temperature at which attraction vanishes.
	CoolnessCeiling = 473.15
)

// Clamp limits a Celsius temperature to [AbsoluteZero, MaxCelsius]. NaN maps
// to absolute zero.
func Clamp(tempC float64) float64 {
	if math.IsNaN(tempC) || tempC < AbsoluteZero {
		return AbsoluteZero
	}
	if tempC > MaxCelsius {
		return MaxCelsius
	}
	return tempC
}

// Kelvin converts Celsius to Kelvin, never below zero.
func Kelvin(tempC float64) float64 {
	return math.Max(0, tempC-AbsoluteZero)
}

// ramp maps x linearly from [lo, hi] onto [0, 1], saturating outside.
func ramp(x, lo, hi float64) float64 {
	if x <= lo {
		return 0
	}
	if x >= hi {
		return 1
	}
	return (x - lo) / (hi - lo)
}

// SpeedMultiplier scales translational speed: sqrt(T/273.15 K) times a hot
// boost that ramps from 1 to 1.35 between 40 and 140 °C.
func SpeedMultiplier(tempC float64) float64 {
	base := math.Sqrt(Kelvin(tempC) / referenceKelvin)
	boost := 1 + (hotBoostMax-1)*ramp(tempC, hotBoostStart, hotBoostEnd)
	return base * boost
}

// RotationMultiplier scales spin rate. Same baseline as SpeedMultiplier, no hot boost.
func RotationMultiplier(tempC float64) float64 {
	return math.Sqrt(Kelvin(tempC) / referenceKelvin)
}

// Gravity holds the per-frame gravity parameters.
type Gravity struct {
	Accel    float64 // units/s²
	Terminal float64 // units/s
	Friction float64 // 1/s, applied on the floor
}

// HotFactor ramps 0→1 between 0 and 90 °C.
func HotFactor(tempC float64) float64 {
	return ramp(tempC, gravityHotStart, gravityHotEnd)
}

// GravityProfile weakens gravity, terminal speed and floor friction by up to
// 95% as the temperature approaches boiling, then adds the freeze boost on top.
func GravityProfile(tempC, freezeBoost float64) Gravity {
	scale := 1 - hotReduction*HotFactor(tempC)
	boost := math.Max(0, freezeBoost)
	return Gravity{
		Accel:    baseGravity*scale + freezeGravity*boost,
		Terminal: baseTerminal*scale + freezeTerminal*boost,
		Friction: math.Max(minFriction, baseFriction*scale) + freezeFriction*boost,
	}
}

// Coolness is 1 at absolute zero and falls linearly to 0 at CoolnessCeiling.
func Coolness(tempC float64) float64 {
	return 1 - ramp(Kelvin(tempC), 0, CoolnessCeiling)
}
