package nmie

import (
	"math"
	"math/cmplx"
)

const (
	// MaxTermsLimit bounds the number of multipole orders any computation
	// may use.
	MaxTermsLimit = 100000
	// termsMargin is added by Nmax on top of the largest layer estimate.
	termsMargin = 15
)

// Nstop is the classic estimate of the number of terms needed for a
// homogeneous sphere with outer size parameter x, clamped to
// [1, MaxTermsLimit].
func Nstop(x float64) int {
	return clampTerms(nstop(x))
}

func nstop(x float64) int {
	cbrt := math.Cbrt(x)
	var n float64
	switch {
	case x <= 8:
		n = x + 4*cbrt + 1
	case x <= 4200:
		n = x + 4.05*cbrt + 2
	default:
		n = x + 4*cbrt + 2
	}
	return int(math.Round(n))
}

// Nmax extends Nstop to a multilayer sphere. xs are the cumulative size
// parameters, ms the layer indices and pec the PEC layer position (-1 for
// none). A high-index inner layer can need more terms than the outer size
// parameter suggests, so |m x| is checked at both surfaces of every layer
// outside the PEC layer.
func Nmax(xs []float64, ms []complex128, pec int) int {
	return clampTerms(nmaxRequired(xs, ms, pec))
}

func nmaxRequired(xs []float64, ms []complex128, pec int) int {
	if len(xs) == 0 {
		return 1
	}
	first := pec
	if first < 0 {
		first = 0
	}

	n := nstop(xs[len(xs)-1])
	for i := first; i < len(xs); i++ {
		if i > pec {
			n = max(n, int(math.Round(cmplx.Abs(complex(xs[i], 0)*ms[i]))))
		}
		if i > first && i-1 > pec {
			n = max(n, int(math.Round(cmplx.Abs(complex(xs[i-1], 0)*ms[i]))))
		}
	}
	return n + termsMargin
}

func clampTerms(n int) int {
	if n < 1 {
		return 1
	} else if n > MaxTermsLimit {
		return MaxTermsLimit
	}
	return n
}
