package riccati

import (
	"math"
)

// PsiZeta fills psi and zeta with the Riccati-Bessel functions of the first
// and third kind at the real argument x, given the logarithmic derivatives
// d1 and d3 at the same x. All four slices must have the same length.
//
// The recurrences run upward from psi_0 = sin x and zeta_0 = sin x - i cos x:
//
//	psi_n  = psi_{n-1}  (n/x - D1[n-1])
//	zeta_n = zeta_{n-1} (n/x - D3[n-1])
func PsiZeta(x float64, d1, d3, psi, zeta []complex128) error {
	n := len(d1)
	if n == 0 || len(d3) != n || len(psi) != n || len(zeta) != n {
		panic("d1, d3, psi, and zeta must have the same non-zero length.")
	}
	if x == 0 {
		return ErrZeroArgument
	}

	sin, cos := math.Sincos(x)
	psi[0] = complex(sin, 0)
	zeta[0] = complex(sin, -cos)
	for i := 1; i < n; i++ {
		nx := complex(float64(i)/x, 0)
		psi[i] = psi[i-1] * (nx - d1[i-1])
		zeta[i] = zeta[i-1] * (nx - d3[i-1])
		if !finite(zeta[i]) {
			return &OrderError{"Zeta", i, complex(x, 0)}
		}
	}

	return nil
}

// Evaluate is a convenience wrapper which allocates and fills all four
// sequences at real x for orders 0..nmax.
func Evaluate(x float64, nmax int) (d1, d3, psi, zeta []complex128, err error) {
	d1, d3 = make([]complex128, nmax+1), make([]complex128, nmax+1)
	psi, zeta = make([]complex128, nmax+1), make([]complex128, nmax+1)

	if err = LogDerivatives(complex(x, 0), d1, d3); err != nil {
		return nil, nil, nil, nil, err
	}
	if err = PsiZeta(x, d1, d3, psi, zeta); err != nil {
		return nil, nil, nil, nil, err
	}
	return d1, d3, psi, zeta, nil
}

// PsiZetaRatio fills ratio with psi_n(x) / zeta_n(x) for n = 0..len(d1)-1.
// Unlike the two sequences themselves, the ratio only decays with order, so
// it stays representable for orders far above x where zeta_n overflows.
func PsiZetaRatio(x float64, d1, d3, ratio []complex128) error {
	n := len(d1)
	if n == 0 || len(d3) != n || len(ratio) != n {
		panic("d1, d3, and ratio must have the same non-zero length.")
	}
	if x == 0 {
		return ErrZeroArgument
	}

	sin, cos := math.Sincos(x)
	ratio[0] = complex(sin, 0) / complex(sin, -cos)
	for i := 1; i < n; i++ {
		nx := complex(float64(i)/x, 0)
		ratio[i] = ratio[i-1] * (nx - d1[i-1]) / (nx - d3[i-1])
		if !finite(ratio[i]) {
			return &OrderError{"Psi/Zeta", i, complex(x, 0)}
		}
	}

	return nil
}

// Zeta fills zeta with the Riccati-Bessel function of the third kind at the
// real argument x by the three-term recurrence
//
//	zeta_n = (2n-1)/x zeta_{n-1} - zeta_{n-2}
//
// from zeta_{-1} = cos x + i sin x and zeta_0 = sin x - i cos x. The
// recurrence is stable upward because zeta_n grows with order, and its cost
// does not depend on x, unlike Evaluate.
func Zeta(x float64, zeta []complex128) error {
	n := len(zeta)
	if n == 0 {
		panic("zeta must have a non-zero length.")
	}
	if x == 0 {
		return ErrZeroArgument
	}

	sin, cos := math.Sincos(x)
	prev := complex(cos, sin)
	zeta[0] = complex(sin, -cos)
	for i := 1; i < n; i++ {
		if i == 1 {
			zeta[i] = zeta[0]/complex(x, 0) - prev
		} else {
			zeta[i] = complex(float64(2*i-1)/x, 0)*zeta[i-1] - zeta[i-2]
		}
		if !finite(zeta[i]) {
			return &OrderError{"Zeta", i, complex(x, 0)}
		}
	}

	return nil
}
