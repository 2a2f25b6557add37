package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidIndex indicates a point or spring index outside the scene.
	ErrInvalidIndex = errors.New("dynamo: index out of range")

	// ErrDegenerateSpring indicates a spring whose endpoints coincide.
	ErrDegenerateSpring = errors.New("dynamo: degenerate spring (coincident endpoints)")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrInvalidState indicates a step produced NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrStepInProgress indicates a call made while a step is being integrated.
	ErrStepInProgress = errors.New("dynamo: step in progress")

	// ErrContextCanceled indicates the simulation was interrupted.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")

	// ErrUnknownScenario indicates a scenario name with no registered builder.
	ErrUnknownScenario = errors.New("dynamo: unknown scenario")

	// ErrUnknownIntegrator indicates an integrator name or kind that is not defined.
	ErrUnknownIntegrator = errors.New("dynamo: unknown integrator")
)

// SimulationError wraps an error with simulation context.
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

// IndexError reports which index was rejected. It unwraps to ErrInvalidIndex.
func IndexError(kind string, index, count int) error {
	return fmt.Errorf("%w: %s %d (have %d)", ErrInvalidIndex, kind, index, count)
}

// BoundsError reports which parameter was rejected. It unwraps to ErrParameterBounds.
func BoundsError(name string, value float64) error {
	return fmt.Errorf("%w: %s = %g", ErrParameterBounds, name, value)
}
