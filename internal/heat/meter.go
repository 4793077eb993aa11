package heat

// Meter tracks heat added. Temperature is always derived, never stored.
type Meter struct {
	model Model
	q     float64
}

// NewMeter starts the meter at the heat content of tempC.
func NewMeter(model Model, tempC float64) *Meter {
	return &Meter{model: model, q: model.Heat(tempC)}
}

// Add applies dq J/g (negative to cool), clamped to the model range.
func (m *Meter) Add(dq float64) {
	m.q += dq
	if m.q < 0 {
		m.q = 0
	}
	if top := m.model.MaxHeat(); m.q > top {
		m.q = top
	}
}

func (m *Meter) Set(tempC float64) { m.q = m.model.Heat(tempC) }

func (m *Meter) Heat() float64 { return m.q }

func (m *Meter) Temperature() float64 { return m.model.Temperature(m.q) }
