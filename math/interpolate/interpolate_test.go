package interpolate

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linspace(lo, hi float64, n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return xs
}

func TestLinear(t *testing.T) {
	line := func(x float64) float64 { return 3*x - 2 }
	xs := []float64{0, 0.5, 2, 2.1, 5}
	vals := make([]float64, len(xs))
	for i := range xs {
		vals[i] = line(xs[i])
	}

	lin, err := NewLinear(xs, vals)
	require.NoError(t, err)
	for _, x := range []float64{0, 0.25, 0.5, 1.7, 2.05, 4.999, 5} {
		assert.InDelta(t, line(x), lin.Eval(x), 1e-12, "x = %g", x)
	}

	lo, hi := lin.Range()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 5.0, hi)
	assert.Panics(t, func() { lin.Eval(5.1) })
	assert.Panics(t, func() { lin.Eval(math.NaN()) })

	out := make([]float64, 2)
	got := lin.EvalAll([]float64{1, 3}, out)
	assert.Equal(t, out, got)
	assert.InDeltaSlice(t, []float64{1, 7}, out, 1e-12)
}

func TestLinearDecreasing(t *testing.T) {
	lin, err := NewLinear([]float64{3, 2, 1}, []float64{30, 20, 10})
	require.NoError(t, err)
	assert.InDelta(t, 25, lin.Eval(2.5), 1e-12)
	assert.InDelta(t, 30, lin.Eval(3), 1e-12)
	assert.InDelta(t, 10, lin.Eval(1), 1e-12)

	lo, hi := lin.Range()
	assert.Equal(t, 1.0, lo)
	assert.Equal(t, 3.0, hi)
}

func TestUniformLinear(t *testing.T) {
	lin, err := NewUniformLinear(1, 0.5, []float64{0, 1, 4, 9})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, lin.Eval(1.25), 1e-12)
	assert.InDelta(t, 9, lin.Eval(2.5), 1e-12)
	assert.InDelta(t, 6.5, lin.Eval(2.25), 1e-12)

	_, err = NewUniformLinear(0, 0, []float64{1, 2})
	assert.True(t, errors.Is(err, ErrTable))
}

func TestBadTables(t *testing.T) {
	tables := []struct {
		name     string
		xs, vals []float64
	}{
		{"mismatched", []float64{1, 2, 3}, []float64{1, 2}},
		{"short", []float64{1}, []float64{1}},
		{"unsorted", []float64{1, 3, 2}, []float64{1, 2, 3}},
		{"repeated", []float64{1, 2, 2}, []float64{1, 2, 3}},
	}
	for _, tt := range tables {
		_, err := NewLinear(tt.xs, tt.vals)
		assert.True(t, errors.Is(err, ErrTable), "linear %s", tt.name)
		_, err = NewSpline(tt.xs, tt.vals)
		assert.True(t, errors.Is(err, ErrTable), "spline %s", tt.name)
	}
}

func TestSplineReproducesLines(t *testing.T) {
	xs := []float64{0, 0.5, 1, 1.5, 2}
	ys := []float64{2, 2.5, 3, 3.5, 4}
	sp, err := NewSpline(xs, ys)
	require.NoError(t, err)

	for _, x := range linspace(0, 2, 17) {
		assert.InDelta(t, 2+x, sp.Eval(x), 1e-12, "x = %g", x)
		assert.InDelta(t, 1, sp.Diff(x, 1), 1e-12, "x = %g", x)
	}
}

func TestSplineSmooth(t *testing.T) {
	xs := linspace(0, math.Pi, 40)
	ys := make([]float64, len(xs))
	for i := range xs {
		ys[i] = math.Sin(xs[i])
	}
	sp, err := NewSpline(xs, ys)
	require.NoError(t, err)

	for _, x := range linspace(0.1, 3, 13) {
		assert.InDelta(t, math.Sin(x), sp.Eval(x), 1e-4, "x = %g", x)
		assert.InDelta(t, math.Cos(x), sp.Diff(x, 1), 1e-2, "x = %g", x)
	}
	// Knots are hit exactly.
	for i := range xs {
		assert.InDelta(t, ys[i], sp.Eval(xs[i]), 1e-12)
	}
}

func TestSplineDecreasing(t *testing.T) {
	xs := []float64{2, 1.5, 1, 0.5, 0}
	ys := []float64{4, 2.25, 1, 0.25, 0}
	sp, err := NewSpline(xs, ys)
	require.NoError(t, err)
	for i := range xs {
		assert.InDelta(t, ys[i], sp.Eval(xs[i]), 1e-12)
	}
	assert.InDelta(t, 0.5625, sp.Eval(0.75), 5e-2)
}

func TestTriDiagAt(t *testing.T) {
	// | 2 1 0 |   | 1 |   |  4 |
	// | 1 2 1 | * | 2 | = |  8 |
	// | 0 1 2 |   | 3 |   |  8 |
	out := make([]float64, 3)
	err := TriDiagAt(
		[]float64{0, 1, 1}, []float64{2, 2, 2}, []float64{1, 1, 0},
		[]float64{4, 8, 8}, out,
	)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 2, 3}, out, 1e-12)

	err = TriDiagAt([]float64{0}, []float64{0}, []float64{0}, []float64{1}, make([]float64, 1))
	assert.True(t, errors.Is(err, ErrTable))
	assert.Panics(t, func() {
		TriDiagAt([]float64{0}, []float64{1, 2}, []float64{0}, []float64{1}, make([]float64, 1))
	})
}
