package thermal

// Phase is the coarse state of matter for a temperature.
type Phase int

const (
	Solid Phase = iota
	Liquid
	Gas
)

func (p Phase) String() string {
	switch p {
	case Solid:
		return "solid"
	case Liquid:
		return "liquid"
	case Gas:
		return "gas"
	default:
		return "unknown"
	}
}

// PhaseOf classifies a Celsius temperature using the static boundaries:
// solid at or below MeltPoint, gas at or above BoilPoint.
func PhaseOf(tempC float64) Phase {
	switch {
	case tempC <= MeltPoint:
		return Solid
	case tempC >= BoilPoint:
		return Gas
	default:
		return Liquid
	}
}
