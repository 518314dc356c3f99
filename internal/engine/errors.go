package engine

import "errors"

// Failure taxonomy for the engine.
var (
	// ErrInvalidParameter indicates a malformed configuration. Raised before
	// any run starts; fatal to a whole sweep.
	ErrInvalidParameter = errors.New("resonance: invalid parameter")

	// ErrNotFound indicates an unresolvable material name. Fatal to a whole
	// sweep.
	ErrNotFound = errors.New("resonance: material not found")

	// ErrOutOfRange indicates a physically impossible drive level. Fatal to
	// the run that requested it; a sweep records it and continues.
	ErrOutOfRange = errors.New("resonance: drive level out of physical range")

	// ErrUnstable indicates a timestep too large for the resonance decay
	// constant (dt > 0.1·tauQ). Detected at construction, never mid-run.
	ErrUnstable = errors.New("resonance: timestep too large for decay constant")
)

// RunError tags a run-level failure with the parameter tuple that produced
// it, so sweep consumers can attribute errors without string parsing.
type RunError struct {
	Key     string
	Wrapped error
}

func (e *RunError) Error() string {
	return e.Key + ": " + e.Wrapped.Error()
}

func (e *RunError) Unwrap() error {
	return e.Wrapped
}
