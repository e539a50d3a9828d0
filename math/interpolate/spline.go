package interpolate

type splineCoeff struct {
	a, b, c, d float64
}

// Spline represents a 1D natural cubic spline which can be used to
// interpolate between points.
type Spline struct {
	xs     searcher
	ys     []float64
	y2s    []float64
	coeffs []splineCoeff
}

// NewSpline creates a spline based off a table of x and y values. The values
// must be strictly sorted in increasing or decreasing order in x. Both
// slices are copied.
func NewSpline(xs, ys []float64) (*Spline, error) {
	incr, err := checkTable(xs, ys)
	if err != nil {
		return nil, err
	}

	sp := &Spline{
		ys:     append([]float64(nil), ys...),
		y2s:    make([]float64, len(xs)),
		coeffs: make([]splineCoeff, len(xs)-1),
	}
	sp.xs.init(xs, incr)

	if err := sp.calcY2s(); err != nil {
		return nil, err
	}
	sp.calcCoeffs()
	return sp, nil
}

// Eval computes the value of the spline at the given point.
//
// Eval panics if x is outside Range.
func (sp *Spline) Eval(x float64) float64 {
	return sp.Diff(x, 0)
}

// EvalAll is Eval over a slice, with the same output conventions as
// Linear.EvalAll.
func (sp *Spline) EvalAll(xs []float64, out ...[]float64) []float64 {
	return evalAll(sp.Eval, xs, out)
}

// Diff computes the derivative of spline at the given point to the
// specified order.
func (sp *Spline) Diff(x float64, order int) float64 {
	i := sp.xs.search(x)
	dx := x - sp.xs.val(i)
	a, b, c, d := sp.coeffs[i].a, sp.coeffs[i].b, sp.coeffs[i].c, sp.coeffs[i].d
	switch order {
	case 0:
		return a*dx*dx*dx + b*dx*dx + c*dx + d
	case 1:
		return 3*a*dx*dx + 2*b*dx + c
	case 2:
		return 6*a*dx + 2*b
	case 3:
		return 6 * a
	default:
		return 0
	}
}

func (sp *Spline) Range() (lo, hi float64) { return sp.xs.bounds() }

// calcY2s computes the second derivative at every point in the table. The
// boundaries are set to zero.
func (sp *Spline) calcY2s() error {
	n := len(sp.ys)
	if n == 2 {
		return nil
	}
	as, bs := make([]float64, n-2), make([]float64, n-2)
	cs, rs := make([]float64, n-2), make([]float64, n-2)

	xs, ys := sp.xs.xs, sp.ys
	for i := range rs {
		// j indexes into xs and ys.
		j := i + 1

		as[i] = (xs[j] - xs[j-1]) / 6
		bs[i] = (xs[j+1] - xs[j-1]) / 3
		cs[i] = (xs[j+1] - xs[j]) / 6
		rs[i] = ((ys[j+1] - ys[j]) / (xs[j+1] - xs[j])) -
			((ys[j] - ys[j-1]) / (xs[j] - xs[j-1]))
	}

	return TriDiagAt(as, bs, cs, rs, sp.y2s[1:n-1])
}

func (sp *Spline) calcCoeffs() {
	coeffs, xs, ys, y2s := sp.coeffs, sp.xs.xs, sp.ys, sp.y2s
	for i := range sp.coeffs {
		h := xs[i+1] - xs[i]
		coeffs[i].a = (y2s[i+1] - y2s[i]) / (6 * h)
		coeffs[i].b = y2s[i] / 2
		coeffs[i].c = (ys[i+1]-ys[i])/h - h*(2*y2s[i]+y2s[i+1])/6
		coeffs[i].d = ys[i]
	}
}

// TriDiagAt solves the system of equations
//
//	| b0 c0 ..    |   | out0 |   | r0 |
//	| a1 b1 c1 .. |   | out1 |   | r1 |
//	| ..          | * | ..   | = | .. |
//	| ..    an bn |   | outn |   | rn |
//
// for out0 .. outn in place in the given slice.
func TriDiagAt(as, bs, cs, rs, out []float64) error {
	if len(as) != len(bs) || len(as) != len(cs) ||
		len(as) != len(out) || len(as) != len(rs) {
		panic("Length of arguments to TriDiagAt are unequal.")
	}
	if len(out) == 0 {
		return nil
	}

	tmp := make([]float64, len(as))

	beta := bs[0]
	if beta == 0 {
		return tableErrorf("singular tridiagonal system")
	}
	out[0] = rs[0] / beta

	for i := 1; i < len(out); i++ {
		tmp[i] = cs[i-1] / beta
		beta = bs[i] - as[i]*tmp[i]
		if beta == 0 {
			return tableErrorf("singular tridiagonal system")
		}
		out[i] = (rs[i] - as[i]*out[i-1]) / beta
	}

	for i := len(out) - 2; i >= 0; i-- {
		out[i] -= tmp[i+1] * out[i+1]
	}
	return nil
}
