// Package interpolate turns tabulated samples into continuous functions. It
// is used to evaluate measured refractive-index tables at wavelengths that
// fall between rows.
package interpolate

import (
	"errors"
	"fmt"
)

// Interpolator is a one dimensional interpolated function.
type Interpolator interface {
	Eval(x float64) float64
	EvalAll(xs []float64, out ...[]float64) []float64
	// Range returns the smallest and largest x the interpolator accepts.
	Range() (lo, hi float64)
}

var (
	_ Interpolator = &Spline{}
	_ Interpolator = &Linear{}
)

// ErrTable is returned when a table cannot be interpolated.
var ErrTable = errors.New("interpolate: invalid table")

func tableErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrTable}, args...)...)
}

// checkTable makes sure xs and vals can be interpolated: equal lengths, at
// least two points and strictly monotonic xs. It reports whether xs is
// increasing.
func checkTable(xs, vals []float64) (incr bool, err error) {
	if len(xs) != len(vals) {
		return false, tableErrorf(
			"len(xs) = %d but len(vals) = %d", len(xs), len(vals),
		)
	} else if len(xs) < 2 {
		return false, tableErrorf("table has length %d", len(xs))
	}

	incr = xs[0] < xs[1]
	for i := 0; i < len(xs)-1; i++ {
		if (xs[i+1] > xs[i]) != incr || xs[i+1] == xs[i] {
			return false, tableErrorf("xs not strictly monotonic at %d", i+1)
		}
	}
	return incr, nil
}

func evalAll(f func(float64) float64, xs []float64, out [][]float64) []float64 {
	if len(out) == 0 {
		out = [][]float64{make([]float64, len(xs))}
	}
	for i, x := range xs {
		out[0][i] = f(x)
	}
	return out[0]
}
