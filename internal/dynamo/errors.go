package dynamo

import (
	"errors"
	"fmt"
	"math"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a body with a NaN or Inf position or velocity.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrNonPositiveMass indicates an attempt to give a body mass <= 0.
	ErrNonPositiveMass = errors.New("dynamo: body mass must be positive")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrContextCanceled indicates the simulation was interrupted.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")

	// ErrUnknownPreset indicates a preset name that is not registered.
	ErrUnknownPreset = errors.New("dynamo: unknown preset")
)

// SimError wraps a failure with the tick it happened on.
type SimError struct {
	Tick    int
	Message string
	Wrapped error
}

func (e SimError) Error() string {
	return fmt.Sprintf("tick %d: %s", e.Tick, e.Message)
}

func (e SimError) Unwrap() error {
	return e.Wrapped
}

// CheckMass returns ErrNonPositiveMass unless m is a positive finite value.
func CheckMass(m float64) error {
	if !(m > 0) || math.IsInf(m, 1) {
		return fmt.Errorf("%w: got %v", ErrNonPositiveMass, m)
	}
	return nil
}
