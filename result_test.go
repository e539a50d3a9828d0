package nmie

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/nmie/math/riccati"
)

// sp is the wavelength at which applied units equal size-parameter units.
const sp = 2 * math.Pi

func mustCompute(t testing.TB, wavelength float64, opts ...Option) *Result {
	t.Helper()
	cfg, err := New(wavelength, opts...)
	require.NoError(t, err)
	res, err := Compute(cfg)
	require.NoError(t, err)
	return res
}

func TestHomogeneousMatchesBHMIE(t *testing.T) {
	tests := []struct {
		x float64
		m complex128
	}{
		{1, 1.5},
		{5, 1.33 + 0.1i},
		{10, 1.5 + 0.01i},
		{0.3, 2 + 1i},
		{20, 1.1},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("x=%g m=%g", tt.x, tt.m), func(t *testing.T) {
			res := mustCompute(t, sp, TargetLayer(tt.x, tt.m))
			wantA, wantB, qext, qsca := bhmie(tt.x, tt.m)
			an, bn := res.Coefficients()

			require.GreaterOrEqual(t, len(an), len(wantA)-1)
			for n := 1; n < len(wantA); n++ {
				assert.InDelta(t, real(wantA[n]), real(an[n-1]), 1e-9, "Re a_%d", n)
				assert.InDelta(t, imag(wantA[n]), imag(an[n-1]), 1e-9, "Im a_%d", n)
				assert.InDelta(t, real(wantB[n]), real(bn[n-1]), 1e-9, "Re b_%d", n)
				assert.InDelta(t, imag(wantB[n]), imag(bn[n-1]), 1e-9, "Im b_%d", n)
			}
			assert.InEpsilon(t, qext, res.Qext(), 1e-6)
			assert.InEpsilon(t, qsca, res.Qsca(), 1e-6)
		})
	}
}

func TestRayleighLimit(t *testing.T) {
	x := 0.01
	for _, m := range []complex128{1.5, 1.5 + 0.1i} {
		res := mustCompute(t, sp, TargetLayer(x, m))
		m2 := m * m
		K := (m2 - 1) / (m2 + 2)

		qsca := 8.0 / 3 * math.Pow(x, 4) * sqAbs(K)
		assert.InEpsilon(t, qsca, res.Qsca(), 1e-3, "m = %g", m)
		assert.InEpsilon(t, 4*math.Pow(x, 4)*sqAbs(K), res.Qbk(), 1e-3, "m = %g", m)
		assert.InDelta(t, 0, res.AsymmetryFactor(), 1e-3, "m = %g", m)
		if imag(m) > 0 {
			assert.InEpsilon(t, 4*x*imag(K), res.Qabs(), 1e-2, "m = %g", m)
		} else {
			assert.InDelta(t, 0, res.Qabs(), 1e-12, "m = %g", m)
		}
	}
}

func TestSplitLayerIsTransparent(t *testing.T) {
	m := 1.5 + 0.01i
	whole := mustCompute(t, sp, TargetLayer(3, m))
	split := mustCompute(t, sp,
		TargetLayer(1, m), TargetLayer(0.5, m), CoatingLayer(1.5, m),
	)

	require.Equal(t, whole.Terms(), split.Terms())
	wa, wb := whole.Coefficients()
	sa, sb := split.Coefficients()
	for n := range wa {
		assert.InDelta(t, 0, cmplx.Abs(wa[n]-sa[n]), 1e-10, "a_%d", n+1)
		assert.InDelta(t, 0, cmplx.Abs(wb[n]-sb[n]), 1e-10, "b_%d", n+1)
	}
	assert.InEpsilon(t, whole.Qext(), split.Qext(), 1e-10)
	assert.InEpsilon(t, whole.Qsca(), split.Qsca(), 1e-10)
}

func TestVacuumCoating(t *testing.T) {
	core := mustCompute(t, sp, TargetLayer(1, 1.5+0.2i))
	coated := mustCompute(t, sp, TargetLayer(1, 1.5+0.2i), CoatingLayer(1, 1))

	assert.InEpsilon(t, core.RCSext(), coated.RCSext(), 1e-8)
	assert.InEpsilon(t, core.RCSsca(), coated.RCSsca(), 1e-8)
	assert.InEpsilon(t, core.RCSabs(), coated.RCSabs(), 1e-8)
	// Efficiencies are normalized by the outer radius, so they differ.
	assert.InEpsilon(t, core.Qext()/4, coated.Qext(), 1e-8)
}

func TestZeroWidthLayer(t *testing.T) {
	with := mustCompute(t, sp,
		TargetLayer(1, 1.5), TargetLayer(0, 3+1i), CoatingLayer(1, 1.2),
	)
	without := mustCompute(t, sp, TargetLayer(1, 1.5), CoatingLayer(1, 1.2))

	assert.InEpsilon(t, without.Qext(), with.Qext(), 1e-10)
	assert.InEpsilon(t, without.Qsca(), with.Qsca(), 1e-10)
	assert.InDelta(t, without.AsymmetryFactor(), with.AsymmetryFactor(), 1e-10)
}

func TestPECSphere(t *testing.T) {
	x := 2.0
	res := mustCompute(t, sp, TargetLayer(x, 1), PEC(0))
	_, _, psi, zeta, err := riccati.Evaluate(x, res.Terms())
	require.NoError(t, err)

	an, bn := res.Coefficients()
	for n := 1; n <= 6; n++ {
		fn := complex(float64(n)/x, 0)
		dpsi := psi[n-1] - fn*psi[n]
		dzeta := zeta[n-1] - fn*zeta[n]
		assert.InDelta(t, 0, cmplx.Abs(dpsi/dzeta-an[n-1]), 1e-12, "a_%d", n)
		assert.InDelta(t, 0, cmplx.Abs(psi[n]/zeta[n]-bn[n-1]), 1e-12, "b_%d", n)
	}
	assert.InDelta(t, 0, res.Qabs(), 1e-12)
	assert.InDelta(t, 1, res.Albedo(), 1e-12)

	// The PEC layer's own index does not matter.
	other := mustCompute(t, sp, TargetLayer(x, 7+3i), PEC(0))
	assert.Equal(t, res.Qext(), other.Qext())
}

func TestPECHidesInnerLayers(t *testing.T) {
	inner := mustCompute(t, sp,
		TargetLayer(0.5, 4+2i), TargetLayer(0.7, 1.3), CoatingLayer(0.8, 1.6),
		PEC(1),
	)
	solid := mustCompute(t, sp,
		TargetLayer(1.2, 1), CoatingLayer(0.8, 1.6), PEC(0),
	)

	assert.InEpsilon(t, solid.Qext(), inner.Qext(), 1e-12)
	assert.InEpsilon(t, solid.Qsca(), inner.Qsca(), 1e-12)
	assert.InDelta(t, 0, inner.Qabs(), 1e-10)
}

func TestPECLimit(t *testing.T) {
	pec := mustCompute(t, sp, TargetLayer(1, 1), CoatingLayer(0.5, 1.3), PEC(0))

	dist := map[float64]float64{}
	for _, k := range []float64{10, 100, 1000} {
		res := mustCompute(t, sp,
			TargetLayer(1, complex(1.5, k)), CoatingLayer(0.5, 1.3),
		)
		dist[k] = math.Abs(res.Qsca() - pec.Qsca())
	}

	assert.Less(t, dist[100], dist[10])
	assert.Less(t, dist[1000], dist[100])
	assert.Less(t, dist[1000], 1e-2*pec.Qsca())
}

func TestEfficiencyProperties(t *testing.T) {
	configs := [][]Option{
		{TargetLayer(1, 1.5)},
		{TargetLayer(5, 1.33+0.1i)},
		{TargetLayer(0.4, 3+4i), CoatingLayer(0.6, 1.4)},
		{TargetLayer(2, 1.2), TargetLayer(1, 2+0.5i), CoatingLayer(1, 1.05)},
		{TargetLayer(1, 1), CoatingLayer(2, 1.7+0.01i), PEC(0)},
		{TargetLayer(30, 1.2+0.001i)},
	}

	for i, opts := range configs {
		res := mustCompute(t, sp, opts...)
		assert.Greater(t, res.Qsca(), 0.0, "case %d", i)
		assert.GreaterOrEqual(t, res.Qabs(), -1e-9*math.Max(1, res.Qext()), "case %d", i)
		assert.InDelta(t, res.Qext()-res.Qsca(), res.Qabs(), 1e-15, "case %d", i)
		assert.InDelta(t, res.Qext()-res.AsymmetryFactor()*res.Qsca(), res.Qpr(), 1e-12, "case %d", i)
		assert.True(t, res.Albedo() >= 0 && res.Albedo() <= 1+1e-9, "case %d albedo %g", i, res.Albedo())
		assert.True(t, math.Abs(res.AsymmetryFactor()) <= 1, "case %d g %g", i, res.AsymmetryFactor())
		assert.GreaterOrEqual(t, res.Qbk(), 0.0, "case %d", i)
	}
}

func TestAlbedoSmallLosslessSpheres(t *testing.T) {
	for _, x := range []float64{1e-6, 1e-5, 1e-4, 3e-4, 1e-3, 3e-3, 1e-2} {
		for _, m := range []complex128{1.05, 1.5, 2} {
			res := mustCompute(t, sp, TargetLayer(x, m))
			a := res.Albedo()
			assert.True(t, a >= 0 && a <= 1+1e-9, "x = %g, m = %g: albedo %g", x, m, a)
			assert.InDelta(t, 1, a, 1e-9, "x = %g, m = %g", x, m)
		}
	}

	// Absorbing spheres of the same sizes keep albedo below one.
	res := mustCompute(t, sp, TargetLayer(1e-3, 1.5+0.1i))
	assert.Less(t, res.Albedo(), 1e-3)
	assert.GreaterOrEqual(t, res.Albedo(), 0.0)
}

func TestTermCountConvergence(t *testing.T) {
	opts := []Option{TargetLayer(3, 1.5+0.05i), CoatingLayer(2, 1.2)}
	x := 5.0
	low := mustCompute(t, sp, append(opts, MaxTerms(Nstop(x)))...)
	high := mustCompute(t, sp, append(opts, MaxTerms(Nstop(x)+10))...)

	assert.Equal(t, Nstop(x), low.Terms())
	assert.InEpsilon(t, high.Qext(), low.Qext(), 1e-6)
	assert.InEpsilon(t, high.Qsca(), low.Qsca(), 1e-6)
}

func TestTooManyTerms(t *testing.T) {
	cfg, err := New(sp, TargetLayer(2e5, 1.1))
	require.NoError(t, err)
	_, err = Compute(cfg)
	assert.True(t, errors.Is(err, ErrInvalidConfiguration), "%v", err)
}

func TestAmplitudes(t *testing.T) {
	x := 3.0
	res := mustCompute(t, sp,
		TargetLayer(2, 1.5+0.02i), CoatingLayer(1, 1.3),
		Angles([]float64{0, 0.7, math.Pi}),
	)
	s1, s2 := res.S1(), res.S2()
	require.Len(t, s1, 3)

	// Forward: S1 = S2 and the optical theorem.
	assert.InDelta(t, 0, cmplx.Abs(s1[0]-s2[0]), 1e-10)
	assert.InEpsilon(t, res.Qext(), 4*real(s1[0])/(x*x), 1e-10)
	// Backward: S1 = -S2 and Qbk = 4 |S1(pi)|^2 / x^2.
	assert.InDelta(t, 0, cmplx.Abs(s1[2]+s2[2]), 1e-10)
	assert.InEpsilon(t, res.Qbk(), 4*sqAbs(s1[2])/(x*x), 1e-10)

	ek, hk, un := res.PatternEkSP(), res.PatternHkSP(), res.PatternUnpolarizedSP()
	for i := range s1 {
		assert.InDelta(t, sqAbs(s2[i]), ek[i], 1e-14)
		assert.InDelta(t, sqAbs(s1[i]), hk[i], 1e-14)
		assert.InDelta(t, (ek[i]+hk[i])/2, un[i], 1e-14)
	}
}

func TestPatternUnits(t *testing.T) {
	wl := 0.5
	res := mustCompute(t, wl, TargetLayer(0.2, 1.5), AngleSweep(0, math.Pi, 5))
	k := 2 * math.Pi / wl

	reduced, applied := res.PatternUnpolarizedSP(), res.PatternUnpolarized()
	for i := range reduced {
		assert.InEpsilon(t, reduced[i]/(k*k), applied[i], 1e-12)
	}
	ek := res.PatternEk()
	for i, v := range res.PatternEkSP() {
		assert.InEpsilon(t, v/(k*k), ek[i], 1e-12)
	}
	assert.InEpsilon(t, res.Qsca()*math.Pi*0.04, res.RCSsca(), 1e-12)
}

func TestResultCopies(t *testing.T) {
	res := mustCompute(t, sp, TargetLayer(1, 1.5), Angles([]float64{1}))
	an, _ := res.Coefficients()
	an[0] = 42
	again, _ := res.Coefficients()
	assert.NotEqual(t, complex128(42), again[0])

	s1 := res.S1()
	s1[0] = 42
	assert.NotEqual(t, complex128(42), res.S1()[0])
}

func TestManualTerms(t *testing.T) {
	res := mustCompute(t, sp, TargetLayer(1, 1.5), MaxTerms(7))
	assert.Equal(t, 7, res.Terms())
	an, bn := res.Coefficients()
	assert.Len(t, an, 7)
	assert.Len(t, bn, 7)
}

func TestDivergenceError(t *testing.T) {
	cause := errors.New("boom")
	err := error(&DivergenceError{
		Quantity: "Ha", Layer: 2, Order: 17, SizeParameter: 3.5, Err: cause,
	})

	assert.True(t, errors.Is(err, ErrNumericDivergence))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrInvalidConfiguration))
	assert.Equal(t, "nmie: Ha diverged in layer 2 at order 17 (x = 3.5): boom", err.Error())

	var de *DivergenceError
	require.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &de))
	assert.Equal(t, 17, de.Order)

	bare := &DivergenceError{Quantity: "Qabs", Layer: -1, Order: -1, SizeParameter: 1}
	assert.Equal(t, "nmie: Qabs diverged (x = 1)", bare.Error())
	assert.True(t, errors.Is(bare, ErrNumericDivergence))
}
