// Package freeze implements the flash-freeze transition: a countdown whose
// remaining fraction boosts gravity and damping right after a freeze command.
package freeze

// DefaultDuration is the total freeze time in seconds.
const DefaultDuration = 2.5

// Machine is Idle when Remaining is 0 and Freezing otherwise.
type Machine struct {
	Total     float64
	Remaining float64
}

func New(total float64) *Machine {
	if total <= 0 {
		total = DefaultDuration
	}
	return &Machine{Total: total}
}

// Trigger enters (or restarts) the Freezing state.
func (m *Machine) Trigger() {
	m.Remaining = m.Total
}

// Advance decays the timer by dt seconds. Returns true on the step that
// returns the machine to Idle.
func (m *Machine) Advance(dt float64) bool {
	if m.Remaining <= 0 || dt <= 0 {
		return false
	}
	m.Remaining -= dt
	if m.Remaining <= 0 {
		m.Remaining = 0
		return true
	}
	return false
}

func (m *Machine) Active() bool { return m.Remaining > 0 }

// Boost is the remaining fraction in [0, 1].
func (m *Machine) Boost() float64 {
	if m.Remaining <= 0 {
		return 0
	}
	return m.Remaining / m.Total
}

func (m *Machine) Reset() { m.Remaining = 0 }
