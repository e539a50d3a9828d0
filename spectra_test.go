package nmie

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func coated(t testing.TB) *Config {
	t.Helper()
	cfg, err := New(0.5, TargetLayer(0.1, 1.5+0.01i), CoatingLayer(0.05, 2))
	require.NoError(t, err)
	return cfg
}

func TestSpectra(t *testing.T) {
	defer goleak.VerifyNone(t)
	cfg := coated(t)

	serial, err := Spectra(context.Background(), cfg, 0.4, 0.8, 9)
	require.NoError(t, err)
	parallel, err := Spectra(context.Background(), cfg, 0.4, 0.8, 9, Workers(4))
	require.NoError(t, err)

	require.Len(t, serial, 9)
	assert.Equal(t, serial, parallel)
	assert.InDelta(t, 0.4, serial[0][0], 1e-15)
	assert.InDelta(t, 0.8, serial[8][0], 1e-15)

	for _, row := range serial {
		res, err := cfg.With(Wavelength(row[0]))
		require.NoError(t, err)
		want, err := res.Compute()
		require.NoError(t, err)
		assert.Equal(t, SpectrumRow{
			row[0], want.Qext(), want.Qsca(), want.Qabs(), want.Qbk(),
		}, row)
	}
	assert.Equal(t, 0.5, cfg.Wavelength(), "the sweep must not change cfg")
}

func TestSpectraSP(t *testing.T) {
	defer goleak.VerifyNone(t)
	cfg := coated(t)

	rows, err := SpectraSP(context.Background(), cfg, 0.5, 4, 8, Workers(3))
	require.NoError(t, err)
	require.Len(t, rows, 8)

	R := cfg.TotalRadius()
	for _, row := range rows {
		wl := 2 * math.Pi * R / row[0]
		next, err := cfg.With(Wavelength(wl))
		require.NoError(t, err)
		assert.InEpsilon(t, row[0], next.SizeParameters()[1], 1e-12)

		res, err := next.Compute()
		require.NoError(t, err)
		assert.Equal(t, res.Qext(), row[1])
	}
}

func TestSweepErrors(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx := context.Background()

	_, err := Spectra(ctx, coated(t), 0.4, 0.8, 0)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	empty, err := New(1)
	require.NoError(t, err)
	_, err = Spectra(ctx, empty, 0.4, 0.8, 4, Workers(2))
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
	_, err = SpectraSP(ctx, empty, 1, 2, 4)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
	_, err = SpectraSP(ctx, coated(t), 0, 2, 4)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	boom := errors.New("boom")
	_, err = Sweep(ctx, []float64{1, 2, 3}, func(wl float64) (*Config, error) {
		if wl == 2 {
			return nil, boom
		}
		return New(wl, TargetLayer(0.1, 1.5))
	}, Workers(3))
	assert.ErrorIs(t, err, boom)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = Spectra(cancelled, coated(t), 0.4, 0.8, 16, Workers(4))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSweepLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	_, err := Spectra(context.Background(), coated(t), 0.4, 0.8, 5,
		Workers(2), Logger(zap.New(core)))
	require.NoError(t, err)

	assert.Equal(t, 5, logs.FilterMessage("computed sample").Len())
	finished := logs.FilterMessage("sweep finished").All()
	require.Len(t, finished, 1)
	assert.Equal(t, int64(5), finished[0].ContextMap()["samples"])
}

func TestSpan(t *testing.T) {
	xs, err := Span(1, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, xs)

	xs, err = Span(1, 2, 3)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 1.5, 2}, xs, 1e-15)
}
