package interpolate

// Linear is a linear interpolator.
type Linear struct {
	xs   searcher
	vals []float64
}

// NewLinear creates a linear interpolator for a sequence of strictly
// increasing or strictly decreasing points, xs, which take on the values
// given by vals. Both slices are copied.
//
// Lookups are O(log |xs|).
func NewLinear(xs, vals []float64) (*Linear, error) {
	incr, err := checkTable(xs, vals)
	if err != nil {
		return nil, err
	}
	lin := &Linear{vals: append([]float64(nil), vals...)}
	lin.xs.init(xs, incr)
	return lin, nil
}

// NewUniformLinear creates a linear interpolator over the uniformly spaced
// points x0, x0 + dx, ... whose values are given by vals.
//
// Lookups are O(1).
func NewUniformLinear(x0, dx float64, vals []float64) (*Linear, error) {
	if len(vals) < 2 {
		return nil, tableErrorf("table has length %d", len(vals))
	} else if dx == 0 {
		return nil, tableErrorf("zero spacing")
	}
	lin := &Linear{vals: append([]float64(nil), vals...)}
	lin.xs.unifInit(x0, dx, len(vals))
	return lin, nil
}

// Eval returns the interpolated value at x.
//
// Eval panics if x is outside Range.
func (lin *Linear) Eval(x float64) float64 {
	i1 := lin.xs.search(x)
	i2 := i1 + 1
	x1, x2 := lin.xs.val(i1), lin.xs.val(i2)
	v1, v2 := lin.vals[i1], lin.vals[i2]

	return ((v2-v1)/(x2-x1))*(x-x1) + v1
}

// EvalAll evaluates the interpolator at all the given x values. If an output
// array is given, the output is written to that array (the array is still
// returned as a convenience).
//
// If more than one output array is provided, only the first is used.
func (lin *Linear) EvalAll(xs []float64, out ...[]float64) []float64 {
	return evalAll(lin.Eval, xs, out)
}

func (lin *Linear) Range() (lo, hi float64) { return lin.xs.bounds() }
