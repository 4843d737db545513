package cosmo

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration indicates parameters that cannot describe a supported
	// cosmology or an unusable extend configuration.
	ErrConfiguration = errors.New("cosmo: invalid configuration")

	// ErrNumeric indicates a non-finite value was produced during integration.
	ErrNumeric = errors.New("cosmo: non-finite value during integration")

	// ErrBoundsUnreachable indicates the step ceiling was hit before every
	// requested bound was met.
	ErrBoundsUnreachable = errors.New("cosmo: extend bounds unreachable")

	// ErrInvalidTable indicates restored samples that violate the table
	// invariants.
	ErrInvalidTable = errors.New("cosmo: invalid table samples")
)

// ExtendError wraps an error with the position the integration stopped at.
type ExtendError struct {
	Step    int
	Z       float64
	Wrapped error
}

func (e *ExtendError) Error() string {
	return fmt.Sprintf("step %d (z=%.6f): %v", e.Step, e.Z, e.Wrapped)
}

func (e *ExtendError) Unwrap() error {
	return e.Wrapped
}
