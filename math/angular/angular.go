// Package angular evaluates the Mie angular functions
//
//	Pi_n(theta)  = P_n^1(cos theta) / sin theta
//	Tau_n(theta) = d P_n^1(cos theta) / d theta
//
// for multipole orders n = 1..nmax. Slices are indexed by order and element 0
// is always zero.
package angular

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ErrSamples is returned by Sweep for a non-positive sample count.
var ErrSamples = errors.New("angular: sample count must be positive")

// PiTau fills pi and tau for orders 1..len(pi)-1 at the angle theta
// (radians) using the forward recurrences
//
//	Pi_n  = ((2n-1) mu Pi_{n-1} - n Pi_{n-2}) / (n-1)
//	Tau_n = n mu Pi_n - (n+1) Pi_{n-1}
//
// with mu = cos theta, Pi_0 = 0, Pi_1 = 1.
func PiTau(theta float64, pi, tau []float64) {
	if len(pi) != len(tau) {
		panic("len(pi) must equal len(tau).")
	}
	if len(pi) < 2 {
		return
	}

	mu := math.Cos(theta)
	pi[0], tau[0] = 0, 0
	pi[1], tau[1] = 1, mu
	for n := 2; n < len(pi); n++ {
		fn := float64(n)
		pi[n] = ((2*fn-1)*mu*pi[n-1] - fn*pi[n-2]) / (fn - 1)
		tau[n] = fn*mu*pi[n] - (fn+1)*pi[n-1]
	}
}

// Table holds Pi and Tau for every angle of a batch.
type Table struct {
	Thetas   []float64
	Pi, Tau  [][]float64
	MaxOrder int
}

// NewTable evaluates Pi and Tau up to order nmax at every angle in thetas.
func NewTable(thetas []float64, nmax int) *Table {
	t := &Table{
		Thetas:   append([]float64(nil), thetas...),
		Pi:       make([][]float64, len(thetas)),
		Tau:      make([][]float64, len(thetas)),
		MaxOrder: nmax,
	}

	// One backing array per sequence keeps the rows contiguous.
	piBuf := make([]float64, len(thetas)*(nmax+1))
	tauBuf := make([]float64, len(thetas)*(nmax+1))
	for i, theta := range thetas {
		lo, hi := i*(nmax+1), (i+1)*(nmax+1)
		t.Pi[i], t.Tau[i] = piBuf[lo:hi], tauBuf[lo:hi]
		PiTau(theta, t.Pi[i], t.Tau[i])
	}

	return t
}

// Sweep returns samples evenly spaced angles from from to to, inclusive. A
// single sample is placed at from.
func Sweep(from, to float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("%w, got %d", ErrSamples, samples)
	}
	if samples == 1 {
		return []float64{from}, nil
	}
	return floats.Span(make([]float64, samples), from, to), nil
}
