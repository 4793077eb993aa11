package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a particle with NaN or Inf components.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrContextCanceled indicates the run was interrupted.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")

	// ErrUnknownSchedule indicates a schedule or preset name that is not registered.
	ErrUnknownSchedule = errors.New("dynamo: unknown schedule")
)

// SimulationError wraps an error with run context.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

// BoundsError reports which parameter failed validation. It unwraps to
// ErrParameterBounds.
func BoundsError(name string, value float64, rule string) error {
	return fmt.Errorf("%w: %s=%g (%s)", ErrParameterBounds, name, value, rule)
}
