package nmie

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration marks layer, angle, PEC or term-count settings
	// that cannot be computed. It is reported before any recursion runs.
	ErrInvalidConfiguration = errors.New("nmie: invalid configuration")
	// ErrState is returned when results are requested from something that
	// was never computed.
	ErrState = errors.New("nmie: results are not available")
	// ErrNumericDivergence is returned when a recursion leaves the finite
	// numbers or the efficiencies break energy conservation.
	ErrNumericDivergence = errors.New("nmie: numeric divergence")
)

// DivergenceError describes where a computation diverged. Layer and Order
// are -1 when they do not apply.
type DivergenceError struct {
	Quantity      string
	Layer, Order  int
	SizeParameter float64
	Err           error
}

func (e *DivergenceError) Error() string {
	msg := fmt.Sprintf("nmie: %s diverged", e.Quantity)
	if e.Layer >= 0 {
		msg += fmt.Sprintf(" in layer %d", e.Layer)
	}
	if e.Order >= 0 {
		msg += fmt.Sprintf(" at order %d", e.Order)
	}
	msg += fmt.Sprintf(" (x = %g)", e.SizeParameter)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DivergenceError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrNumericDivergence}
	}
	return []error{ErrNumericDivergence, e.Err}
}

func configErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalidConfiguration}, args...)...)
}
