package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for world construction and configuration.
var (
	// ErrInvalidAxis indicates a plane axis outside {x, y}.
	ErrInvalidAxis = errors.New("dynamo: invalid axis")

	// ErrInvalidDirection indicates a plane direction other than +1 or -1.
	ErrInvalidDirection = errors.New("dynamo: invalid plane direction")

	// ErrUnsupportedShape indicates a body without a known shape variant.
	ErrUnsupportedShape = errors.New("dynamo: unsupported body shape")

	// ErrInvalidConfig indicates a run or scenario configuration that cannot be simulated.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")
)

// SimulationError wraps an error with the step it happened on.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.2fms): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
