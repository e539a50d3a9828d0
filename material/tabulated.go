package material

import (
	"fmt"
	"math"

	"github.com/phil-mansfield/table"
	"gonum.org/v1/gonum/floats"

	"github.com/phil-mansfield/nmie/math/interpolate"
)

// Tabulated is a material measured at a list of wavelengths. Between rows
// the real and imaginary parts are interpolated separately.
type Tabulated struct {
	re, im interpolate.Interpolator
	lo, hi float64
}

// NewTabulated builds a tabulated material from wavelengths and the real
// and imaginary index at each. If spline is true a natural cubic spline is
// used, otherwise linear interpolation.
func NewTabulated(wavelengths, re, im []float64, spline bool) (*Tabulated, error) {
	tab := &Tabulated{}
	var err error
	if spline {
		tab.re, err = newSpline(wavelengths, re)
		if err == nil {
			tab.im, err = newSpline(wavelengths, im)
		}
	} else {
		tab.re, err = newLinear(wavelengths, re)
		if err == nil {
			tab.im, err = newLinear(wavelengths, im)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMaterial, err)
	}
	tab.lo, tab.hi = floats.Min(wavelengths), floats.Max(wavelengths)
	return tab, nil
}

// uniformTolerance is how far, relative to the spacing, a wavelength may sit
// from a uniform grid and still be looked up as one.
const uniformTolerance = 1e-9

func newLinear(xs, ys []float64) (interpolate.Interpolator, error) {
	if dx, ok := uniformSpacing(xs); ok && len(xs) == len(ys) {
		return interpolate.NewUniformLinear(xs[0], dx, ys)
	}
	return interpolate.NewLinear(xs, ys)
}

// uniformSpacing returns the spacing of xs if its points are evenly spaced.
func uniformSpacing(xs []float64) (dx float64, ok bool) {
	n := len(xs)
	if n < 2 {
		return 0, false
	}
	dx = (xs[n-1] - xs[0]) / float64(n-1)
	if dx == 0 || math.IsNaN(dx) || math.IsInf(dx, 0) {
		return 0, false
	}
	for i, x := range xs {
		if !(math.Abs(x-(xs[0]+float64(i)*dx)) <= uniformTolerance*math.Abs(dx)) {
			return 0, false
		}
	}
	return dx, true
}

func newSpline(xs, ys []float64) (interpolate.Interpolator, error) {
	return interpolate.NewSpline(xs, ys)
}

// ReadTable reads a whitespace separated text file whose first three
// columns are wavelength, n and k.
func ReadTable(file string, spline bool) (*Tabulated, error) {
	cols, err := table.ReadTable(file, []int{0, 1, 2}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrMaterial, file, err)
	}
	tab, err := NewTabulated(cols[0], cols[1], cols[2], spline)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return tab, nil
}

func (t *Tabulated) Index(wavelength float64) (complex128, error) {
	if !(wavelength >= t.lo && wavelength <= t.hi) {
		return 0, fmt.Errorf(
			"%w: %g is outside [%g, %g]", ErrOutOfRange, wavelength, t.lo, t.hi,
		)
	}
	// A uniform grid's end can be an ulp away from the last table row.
	lo, hi := t.re.Range()
	wavelength = math.Min(math.Max(wavelength, lo), hi)
	return complex(t.re.Eval(wavelength), t.im.Eval(wavelength)), nil
}

// Range is the wavelength interval covered by the table.
func (t *Tabulated) Range() (lo, hi float64) { return t.lo, t.hi }
