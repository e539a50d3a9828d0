package nmie

import (
	"math"
	"math/cmplx"
)

// bhmie is the Bohren & Huffman homogeneous-sphere algorithm (upward psi/chi
// recurrences, downward D), kept independent of the multilayer recursion so
// the two can be checked against each other. Slices are indexed by order.
func bhmie(x float64, m complex128) (an, bn []complex128, qext, qsca float64) {
	nstop := int(x + 4*math.Cbrt(x) + 2)
	y := complex(x, 0) * m
	nmx := int(math.Max(float64(nstop), cmplx.Abs(y))) + 15

	d := make([]complex128, nmx+1)
	for n := nmx; n >= 1; n-- {
		rn := complex(float64(n), 0)
		d[n-1] = rn/y - 1/(d[n]+rn/y)
	}

	psi0, psi1 := math.Cos(x), math.Sin(x)
	chi0, chi1 := -math.Sin(x), math.Cos(x)
	xi1 := complex(psi1, -chi1)

	an, bn = make([]complex128, nstop+1), make([]complex128, nstop+1)
	for n := 1; n <= nstop; n++ {
		fn := float64(n)
		psi := (2*fn-1)*psi1/x - psi0
		chi := (2*fn-1)*chi1/x - chi0
		xi := complex(psi, -chi)

		c := d[n]/m + complex(fn/x, 0)
		an[n] = (c*complex(psi, 0) - complex(psi1, 0)) / (c*xi - xi1)
		c = m*d[n] + complex(fn/x, 0)
		bn[n] = (c*complex(psi, 0) - complex(psi1, 0)) / (c*xi - xi1)

		qext += (2*fn + 1) * real(an[n]+bn[n])
		qsca += (2*fn + 1) * (sqAbs(an[n]) + sqAbs(bn[n]))

		psi0, psi1 = psi1, psi
		chi0, chi1 = chi1, chi
		xi1 = complex(psi1, -chi1)
	}

	return an, bn, 2 * qext / (x * x), 2 * qsca / (x * x)
}
