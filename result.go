package nmie

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/phil-mansfield/nmie/math/angular"
)

// conservationTolerance is how far below zero Qabs may fall, relative to
// max(1, Qext), before a result is rejected.
const conservationTolerance = 1e-9

// Result holds everything derived from one Config: the multipole
// coefficients, the efficiency factors and the amplitude functions at the
// configured angles. A Result is only produced by Compute and never changes.
type Result struct {
	cfg  *Config
	x    float64
	nmax int

	an, bn []complex128

	qext, qsca, qabs, qbk, qpr, g, albedo float64
	s1, s2                                []complex128
}

// Compute runs the full pipeline for cfg. Configuration errors are reported
// before any recursion starts.
func Compute(cfg *Config) (*Result, error) {
	if cfg == nil {
		return nil, configErrorf("nil configuration")
	}
	if err := cfg.checkComputable(); err != nil {
		return nil, err
	}

	xs, ms := cfg.SizeParameters(), cfg.Indices()
	nmax := cfg.nmax
	if nmax == 0 {
		if required := nmaxRequired(xs, ms, cfg.pec); required > MaxTermsLimit {
			return nil, configErrorf(
				"the sphere needs %d terms, above the limit of %d",
				required, MaxTermsLimit,
			)
		}
		nmax = Nmax(xs, ms, cfg.pec)
	}

	an, bn, err := scatteringCoefficients(xs, ms, cfg.pec, nmax)
	if err != nil {
		return nil, err
	}

	r := &Result{cfg: cfg, x: xs[len(xs)-1], nmax: nmax, an: an, bn: bn}
	if err := r.efficiencies(); err != nil {
		return nil, err
	}
	r.amplitudes()
	return r, nil
}

// Compute is shorthand for Compute(c).
func (c *Config) Compute() (*Result, error) { return Compute(c) }

func (r *Result) efficiencies() error {
	var ext, sca, gSum float64
	var bk complex128
	an, bn := r.an, r.bn

	for n := 1; n <= r.nmax; n++ {
		fn := float64(n)
		w := 2*fn + 1
		ext += w * real(an[n]+bn[n])
		sca += w * (sqAbs(an[n]) + sqAbs(bn[n]))

		sign := 1.0
		if n%2 == 1 {
			sign = -1
		}
		bk += complex(w*sign, 0) * (an[n] - bn[n])

		if n < r.nmax {
			gSum += fn * (fn + 2) / (fn + 1) * real(
				an[n]*cmplx.Conj(an[n+1])+bn[n]*cmplx.Conj(bn[n+1]),
			)
		}
		gSum += w / (fn * (fn + 1)) * real(an[n]*cmplx.Conj(bn[n]))
	}

	x2 := r.x * r.x
	r.qext = 2 * ext / x2
	r.qsca = 2 * sca / x2
	r.qabs = r.qext - r.qsca
	r.qbk = sqAbs(bk) / x2
	if r.qsca > 0 {
		r.g = 4 * gSum / (x2 * r.qsca)
	}
	r.qpr = r.qext - r.g*r.qsca
	r.albedo = albedo(r.qext, r.qsca, r.qabs)

	for _, q := range []float64{r.qext, r.qsca, r.qbk, r.g} {
		if math.IsNaN(q) || math.IsInf(q, 0) {
			return diverged("efficiency sums", -1, r.nmax, r.x, nil)
		}
	}
	if r.qabs < -conservationTolerance*math.Max(1, math.Abs(r.qext)) {
		return &DivergenceError{
			Quantity: "Qabs", Layer: -1, Order: r.nmax, SizeParameter: r.x,
			Err: fmt.Errorf(
				"Qext = %g is smaller than Qsca = %g", r.qext, r.qsca,
			),
		}
	}
	return nil
}

// albedo is Qsca/(Qsca+Qabs). Qabs within conservationTolerance of zero
// is rounding noise from Qext - Qsca and counts as zero, which keeps small
// lossless spheres, where Qext itself is below rounding, at exactly 1.
func albedo(qext, qsca, qabs float64) float64 {
	if math.Abs(qabs) <= conservationTolerance*math.Max(1, math.Abs(qext)) {
		qabs = 0
	}
	den := qsca + math.Max(qabs, 0)
	if den <= 0 {
		return 0
	}
	return qsca / den
}

func (r *Result) amplitudes() {
	thetas := r.cfg.angles
	r.s1 = make([]complex128, len(thetas))
	r.s2 = make([]complex128, len(thetas))
	if len(thetas) == 0 {
		return
	}

	tab := angular.NewTable(thetas, r.nmax)
	for i := range thetas {
		pi, tau := tab.Pi[i], tab.Tau[i]
		for n := 1; n <= r.nmax; n++ {
			fn := float64(n)
			c := complex((2*fn+1)/(fn*(fn+1)), 0)
			p, t := complex(pi[n], 0), complex(tau[n], 0)
			r.s1[i] += c * (r.an[n]*p + r.bn[n]*t)
			r.s2[i] += c * (r.an[n]*t + r.bn[n]*p)
		}
	}
}

func sqAbs(z complex128) float64 { return real(z)*real(z) + imag(z)*imag(z) }

///////////////
// Accessors //
///////////////

// Config returns the configuration this result was computed from.
func (r *Result) Config() *Config { return r.cfg }

// Terms is the number of multipole orders used.
func (r *Result) Terms() int { return r.nmax }

// SizeParameter is the outer size parameter of the sphere.
func (r *Result) SizeParameter() float64 { return r.x }

// Coefficients returns copies of the multipole coefficients. Element i holds
// order i+1.
func (r *Result) Coefficients() (an, bn []complex128) {
	return append([]complex128(nil), r.an[1:]...),
		append([]complex128(nil), r.bn[1:]...)
}

func (r *Result) Qext() float64            { return r.qext }
func (r *Result) Qsca() float64            { return r.qsca }
func (r *Result) Qabs() float64            { return r.qabs }
func (r *Result) Qbk() float64             { return r.qbk }
func (r *Result) Qpr() float64             { return r.qpr }
func (r *Result) AsymmetryFactor() float64 { return r.g }
func (r *Result) Albedo() float64          { return r.albedo }

// geometric is the geometric cross-section pi R^2 in applied units.
func (r *Result) geometric() float64 {
	R := r.cfg.TotalRadius()
	return math.Pi * R * R
}

// RCSext and friends are the efficiencies multiplied by the geometric
// cross-section, in applied units squared.
func (r *Result) RCSext() float64 { return r.qext * r.geometric() }
func (r *Result) RCSsca() float64 { return r.qsca * r.geometric() }
func (r *Result) RCSabs() float64 { return r.qabs * r.geometric() }
func (r *Result) RCSbk() float64  { return r.qbk * r.geometric() }

func (r *Result) Angles() []float64 { return r.cfg.Angles() }

func (r *Result) S1() []complex128 { return append([]complex128(nil), r.s1...) }
func (r *Result) S2() []complex128 { return append([]complex128(nil), r.s2...) }

// PatternEkSP is the differential cross-section in the plane of E and k,
// |S2|^2, in size-parameter units (k = 1).
func (r *Result) PatternEkSP() []float64 { return pattern(r.s2, nil, 1) }

// PatternHkSP is the differential cross-section in the plane of H and k,
// |S1|^2, in size-parameter units.
func (r *Result) PatternHkSP() []float64 { return pattern(r.s1, nil, 1) }

// PatternUnpolarizedSP is (|S1|^2 + |S2|^2) / 2 in size-parameter units.
func (r *Result) PatternUnpolarizedSP() []float64 { return pattern(r.s1, r.s2, 1) }

// PatternEk is PatternEkSP divided by k^2, giving applied units squared per
// steradian.
func (r *Result) PatternEk() []float64 { return pattern(r.s2, nil, r.k2()) }

func (r *Result) PatternHk() []float64 { return pattern(r.s1, nil, r.k2()) }

func (r *Result) PatternUnpolarized() []float64 { return pattern(r.s1, r.s2, r.k2()) }

func (r *Result) k2() float64 {
	k := 2 * math.Pi / r.cfg.wavelength
	return k * k
}

// pattern returns |a|^2 / k2, or (|a|^2 + |b|^2) / (2 k2) if b is non-nil.
func pattern(a, b []complex128, k2 float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		if b == nil {
			out[i] = sqAbs(a[i]) / k2
		} else {
			out[i] = (sqAbs(a[i]) + sqAbs(b[i])) / (2 * k2)
		}
	}
	return out
}
