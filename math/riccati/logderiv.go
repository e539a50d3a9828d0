package riccati

import (
	"math"
	"math/cmplx"
)

const (
	// DownwardMargin is the number of orders above max(nmax, |z|) at which
	// the downward D1 recursion is started.
	DownwardMargin = 16

	seedTolerance  = 1e-15
	seedIterations = 100000
	tiny           = 1e-300
)

// LogDerivatives fills d1 and d3 with the logarithmic derivatives of
// psi_n(z) and zeta_n(z) for n = 0..len(d1)-1. The two slices must have the
// same, non-zero, length.
//
// The two sequences are produced together: D3 is seeded from D1[0] and every
// later D3[n] needs D1[n], so splitting them would risk seeding them at
// different arguments.
func LogDerivatives(z complex128, d1, d3 []complex128) error {
	if len(d1) == 0 || len(d1) != len(d3) {
		panic("len(d1) must equal len(d3) and be positive.")
	}
	if z == 0 {
		return ErrZeroArgument
	}

	nmax := len(d1) - 1
	top := int(math.Round(math.Max(float64(nmax), cmplx.Abs(z)))) +
		DownwardMargin

	d, err := seedD1(top, z)
	if err != nil {
		return err
	}
	// Only orders <= nmax are stored.
	for n := top; n > 0; n-- {
		nz := complex(float64(n), 0) / z
		d = nz - 1/(d+nz)
		if n-1 <= nmax {
			d1[n-1] = d
		}
	}
	for n := range d1 {
		if !finite(d1[n]) {
			return &OrderError{"D1", n, z}
		}
	}

	// psi_0 * zeta_0 = (1 - exp(2iz)) / 2, written so that a large positive
	// imaginary part underflows instead of overflowing.
	a, b := real(z), imag(z)
	pz := 0.5 * (1 - complex(math.Cos(2*a), math.Sin(2*a))*
		complex(math.Exp(-2*b), 0))
	d3[0] = complex(0, 1)
	for n := 1; n <= nmax; n++ {
		nz := complex(float64(n), 0) / z
		pz *= (nz - d1[n-1]) * (nz - d3[n-1])
		d3[n] = d1[n] + complex(0, 1)/pz
		if !finite(d3[n]) {
			return &OrderError{"D3", n, z}
		}
	}

	return nil
}

func finite(z complex128) bool {
	return !cmplx.IsNaN(z) && !cmplx.IsInf(z)
}

// seedD1 evaluates D1[n](z) from the continued fraction
//
//	D_n = (n+1)/z - 1/((2n+3)/z - 1/((2n+5)/z - ...))
//
// with the modified Lentz algorithm.
func seedD1(n int, z complex128) (complex128, error) {
	f := complex(float64(n+1), 0) / z
	if f == 0 {
		f = tiny
	}
	c, d := f, complex(0, 0)

	for k := 1; k <= seedIterations; k++ {
		b := complex(float64(2*n+2*k+1), 0) / z
		d = b - d
		if d == 0 {
			d = tiny
		}
		d = 1 / d
		c = b - 1/c
		if c == 0 {
			c = tiny
		}
		delta := c * d
		f *= delta
		if cmplx.Abs(delta-1) < seedTolerance {
			if !finite(f) {
				return 0, &OrderError{"D1", n, z}
			}
			return f, nil
		}
	}

	return 0, &SeedError{n, z, seedIterations}
}
