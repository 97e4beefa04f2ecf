package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for lab operations.
var (
	// ErrInvalidConfiguration indicates a parameter outside its physically meaningful range.
	ErrInvalidConfiguration = errors.New("dynamo: invalid configuration")

	// ErrInsufficientData indicates a fit was requested with fewer than two samples.
	ErrInsufficientData = errors.New("dynamo: insufficient data")

	// ErrInsufficientVariance indicates a fit over a constant independent variable.
	ErrInsufficientVariance = errors.New("dynamo: insufficient variance in independent variable")

	// ErrPreconditionViolation indicates an operation out of sequence or while running.
	ErrPreconditionViolation = errors.New("dynamo: precondition violation")

	// ErrInvalidState indicates a state vector with NaN or Inf values.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")
)

// ConfigError names the parameter that was rejected.
type ConfigError struct {
	Param  string
	Value  float64
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %s=%g", ErrInvalidConfiguration, e.Param, e.Value)
	}
	return fmt.Sprintf("%s: %s=%g: %s", ErrInvalidConfiguration, e.Param, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfiguration
}

// InvalidParam builds a ConfigError.
func InvalidParam(param string, value float64, reason string) error {
	return &ConfigError{Param: param, Value: value, Reason: reason}
}

// Busy reports a mutation attempted while a run is in progress.
func Busy(op string) error {
	return fmt.Errorf("%w: %s while running", ErrPreconditionViolation, op)
}

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("t=%.4f: %v", e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
