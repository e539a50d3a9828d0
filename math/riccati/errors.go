package riccati

import (
	"errors"
	"fmt"
)

var (
	// ErrZeroArgument is returned for z = 0, where every logarithmic
	// derivative is singular.
	ErrZeroArgument = errors.New("riccati: zero argument")
	// ErrNonFinite is returned when a recursion produces an Inf or a NaN.
	ErrNonFinite = errors.New("riccati: recursion produced a non-finite value")
	// ErrSeed is returned when the continued fraction which seeds the
	// downward D1 recursion does not converge.
	ErrSeed = errors.New("riccati: D1 seed did not converge")
)

// OrderError identifies the first order at which a sequence left the finite
// numbers.
type OrderError struct {
	Seq   string
	Order int
	Z     complex128
}

func (e *OrderError) Error() string {
	return fmt.Sprintf(
		"riccati: %s[%d] is not finite for z = %g", e.Seq, e.Order, e.Z,
	)
}

func (e *OrderError) Unwrap() error { return ErrNonFinite }

// SeedError reports a continued fraction which did not settle.
type SeedError struct {
	Order      int
	Z          complex128
	Iterations int
}

func (e *SeedError) Error() string {
	return fmt.Sprintf(
		"riccati: D1[%d] continued fraction for z = %g did not converge "+
			"in %d iterations", e.Order, e.Z, e.Iterations,
	)
}

func (e *SeedError) Unwrap() error { return ErrSeed }
