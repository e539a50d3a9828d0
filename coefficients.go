package nmie

import (
	"math"
	"math/cmplx"

	"github.com/phil-mansfield/nmie/math/riccati"
)

// scatteringCoefficients computes an[n] and bn[n] for n = 1..nmax (element 0
// is unused) following Pena & Pal (2009). xs are the cumulative size
// parameters, ms the layer indices and pec the PEC layer position or -1.
//
// Layers inside the PEC layer are skipped: the recursion starts at the PEC
// layer itself.
func scatteringCoefficients(
	xs []float64, ms []complex128, pec, nmax int,
) (an, bn []complex128, err error) {
	L := len(xs)
	first := pec
	if first < 0 {
		first = 0
	}
	ws := newWorkspace(nmax)

	if first == pec {
		for n := range ws.d1 {
			ws.d1[n], ws.d3[n] = complex(0, -1), complex(0, 1)
		}
	} else {
		z := complex(xs[first], 0) * ms[first]
		if err := riccati.LogDerivatives(z, ws.d1, ws.d3); err != nil {
			return nil, nil, diverged("D1/D3", first, -1, xs[first], err)
		}
	}
	for n := 1; n <= nmax; n++ {
		ws.ha[n], ws.hb[n] = ws.d1[n], ws.d1[n]
	}

	for l := first + 1; l < L; l++ {
		if err := ws.layer(l, xs, ms, pec); err != nil {
			return nil, nil, err
		}
	}

	xL := xs[L-1]
	if err := riccati.LogDerivatives(complex(xL, 0), ws.d1, ws.d3); err != nil {
		return nil, nil, diverged("D1/D3", L-1, -1, xL, err)
	}
	if err := riccati.PsiZetaRatio(xL, ws.d1, ws.d3, ws.ratio); err != nil {
		return nil, nil, diverged("Psi/Zeta", L-1, -1, xL, err)
	}

	an, bn = make([]complex128, nmax+1), make([]complex128, nmax+1)
	for n := 1; n <= nmax; n++ {
		d1, d3, ratio := ws.d1[n], ws.d3[n], ws.ratio[n]
		if pec < L-1 {
			an[n] = calcAn(ws.ha[n], ms[L-1], d1, d3, ratio)
			bn[n] = calcBn(ws.hb[n], ms[L-1], d1, d3, ratio)
		} else {
			// The outermost layer is the PEC: a_n = psi'_n / zeta'_n and
			// b_n = psi_n / zeta_n.
			an[n] = calcAn(0, 1, d1, d3, ratio)
			bn[n] = ratio
		}

		if !finite(an[n]) {
			return nil, nil, diverged("an", L-1, n, xL, nil)
		} else if !finite(bn[n]) {
			return nil, nil, diverged("bn", L-1, n, xL, nil)
		}
	}

	return an, bn, nil
}

// layer advances Ha and Hb from layer l-1 to layer l by matching tangential
// fields at the surface between them.
func (ws *workspace) layer(l int, xs []float64, ms []complex128, pec int) error {
	z1 := complex(xs[l], 0) * ms[l]
	z2 := complex(xs[l-1], 0) * ms[l]
	if err := riccati.LogDerivatives(z1, ws.d1, ws.d3); err != nil {
		return diverged("D1/D3", l, -1, xs[l], err)
	}
	if err := riccati.LogDerivatives(z2, ws.d1Inner, ws.d3Inner); err != nil {
		return diverged("D1/D3", l, -1, xs[l-1], err)
	}

	// Q_n = [psi_n(z2) zeta_n(z1)] / [zeta_n(z2) psi_n(z1)], built upward
	// from Q_0 = (1 - exp(-2i z2)) / (1 - exp(-2i z1)).
	a1, b1 := real(z1), imag(z1)
	a2, b2 := real(z2), imag(z2)
	num := complex(math.Exp(-2*(b1-b2)), 0) *
		complex(math.Cos(-2*a2)-math.Exp(-2*b2), math.Sin(-2*a2))
	den := complex(math.Cos(-2*a1)-math.Exp(-2*b1), math.Sin(-2*a1))
	q := num / den
	ratio := complex((xs[l-1]*xs[l-1])/(xs[l]*xs[l]), 0)

	mIn, mOut := ms[l-1], ms[l]
	for n := 1; n <= ws.nmax; n++ {
		fn := complex(float64(n), 0)
		num = (z1*ws.d1[n] + fn) * (fn - z1*ws.d3[n-1])
		den = (z2*ws.d1Inner[n] + fn) * (fn - z2*ws.d3Inner[n-1])
		q = ratio * q * num / den

		var g1, g2 complex128
		if l-1 == pec {
			g1, g2 = -ws.d1Inner[n], -ws.d3Inner[n]
		} else {
			g1 = mOut*ws.ha[n] - mIn*ws.d1Inner[n]
			g2 = mOut*ws.ha[n] - mIn*ws.d3Inner[n]
		}
		t := q * g1
		ws.ha[n] = (g2*ws.d1[n] - t*ws.d3[n]) / (g2 - t)

		if l-1 == pec {
			g1, g2 = ws.hb[n], ws.hb[n]
		} else {
			g1 = mIn*ws.hb[n] - mOut*ws.d1Inner[n]
			g2 = mIn*ws.hb[n] - mOut*ws.d3Inner[n]
		}
		t = q * g1
		ws.hb[n] = (g2*ws.d1[n] - t*ws.d3[n]) / (g2 - t)

		if !finite(ws.ha[n]) {
			return diverged("Ha", l, n, xs[l], nil)
		} else if !finite(ws.hb[n]) {
			return diverged("Hb", l, n, xs[l], nil)
		}
	}

	return nil
}

// calcAn and calcBn are the outer-surface matching conditions
//
//	a_n = [(Ha/m + n/x) psi_n - psi_{n-1}] / [(Ha/m + n/x) zeta_n - zeta_{n-1}]
//	b_n = [(m Hb + n/x) psi_n - psi_{n-1}] / [(m Hb + n/x) zeta_n - zeta_{n-1}]
//
// rewritten with psi_{n-1} = psi_n (D1_n + n/x), and the same for zeta, so
// that only psi_n / zeta_n and the logarithmic derivatives at x appear.
func calcAn(ha, mL, d1, d3, ratio complex128) complex128 {
	h := ha / mL
	return ratio * (h - d1) / (h - d3)
}

func calcBn(hb, mL, d1, d3, ratio complex128) complex128 {
	h := mL * hb
	return ratio * (h - d1) / (h - d3)
}

func diverged(quantity string, layer, order int, x float64, err error) error {
	return &DivergenceError{
		Quantity: quantity, Layer: layer, Order: order,
		SizeParameter: x, Err: err,
	}
}

func finite(z complex128) bool {
	return !cmplx.IsNaN(z) && !cmplx.IsInf(z)
}
