package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/phasesim/internal/dynamo"
)

// Registry maps names to schedules.
type Registry struct {
	schedules map[string]Schedule
}

// NewRegistry returns a registry preloaded with the built-in schedules.
func NewRegistry() *Registry {
	r := &Registry{schedules: make(map[string]Schedule)}
	for _, s := range Builtin() {
		r.schedules[s.Name] = s
	}
	return r
}

// Register adds or replaces a schedule after validating it.
func (r *Registry) Register(s Schedule) error {
	if s.Name == "" {
		return fmt.Errorf("%w: schedule has no name", dynamo.ErrParameterBounds)
	}
	if err := s.Validate(); err != nil {
		return err
	}
	r.schedules[s.Name] = s
	return nil
}

func (r *Registry) Get(name string) (Schedule, error) {
	s, ok := r.schedules[name]
	if !ok {
		return Schedule{}, fmt.Errorf("%w: %s", dynamo.ErrUnknownSchedule, name)
	}
	return s, nil
}

// List returns the schedule names in sorted order.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.schedules))
	for name := range r.schedules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ptr(v float64) *float64 { return &v }

// Builtin returns the stock schedules. Each call returns fresh values.
func Builtin() []Schedule {
	return []Schedule{
		{
			Name:        "ice",
			Description: "hold well below melting and let the crystal settle",
			Start:       -20,
			Segments:    []Segment{{Kind: Hold, To: -50, Duration: 8}},
		},
		{
			Name:        "melt",
			Description: "warm a settled crystal through the melting point",
			Start:       -30,
			Segments: []Segment{
				{Kind: Hold, To: -30, Duration: 4},
				{Kind: Ramp, To: 25, Duration: 6},
				{Kind: Hold, To: 25, Duration: 4},
			},
		},
		{
			Name:        "boil",
			Description: "warm liquid through the boiling point",
			Start:       60,
			Segments: []Segment{
				{Kind: Ramp, From: ptr(60), To: 130, Duration: 8},
				{Kind: Hold, To: 130, Duration: 4},
			},
		},
		{
			Name:        "steam",
			Description: "hot gas at constant temperature",
			Start:       150,
			Segments:    []Segment{{Kind: Hold, To: 150, Duration: 8}},
		},
		{
			Name:        "flash-freeze",
			Description: "freeze command from the gas phase",
			Start:       120,
			Segments: []Segment{
				{Kind: Hold, To: 120, Duration: 2},
				{Kind: Freeze, To: -20, Duration: 6},
			},
		},
		{
			Name:        "heat-ramp",
			Description: "constant heating power from ice to steam, stalling on the latent plateaus",
			Start:       -40,
			Segments:    []Segment{{Kind: Heat, Power: 250, Duration: 16}},
		},
	}
}
