package nmie

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// SpectrumRow is one sample of a spectral sweep: the swept variable
// (wavelength or size parameter) followed by Qext, Qsca, Qabs and Qbk.
type SpectrumRow [5]float64

// SweepOption configures Sweep, Spectra and SpectraSP.
type SweepOption func(*sweepOptions)

type sweepOptions struct {
	workers int
	log     *zap.Logger
}

// Workers sets how many samples are computed concurrently. Every sample
// builds and computes its own Config, so nothing is shared between workers.
func Workers(n int) SweepOption {
	return func(o *sweepOptions) {
		if n > 0 {
			o.workers = n
		}
	}
}

// Logger sets the logger used to report per-sample progress.
func Logger(log *zap.Logger) SweepOption {
	return func(o *sweepOptions) {
		if log != nil {
			o.log = log
		}
	}
}

// Builder returns the configuration to compute at one wavelength.
type Builder func(wavelength float64) (*Config, error)

// Sweep computes one Result per wavelength. The results are in the same
// order as wavelengths. The first failing sample cancels the rest and its
// error is returned.
func Sweep(
	ctx context.Context, wavelengths []float64, build Builder,
	opts ...SweepOption,
) ([]*Result, error) {
	o := sweepOptions{workers: 1, log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	results := make([]*Result, len(wavelengths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

	for i, wl := range wavelengths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			cfg, err := build(wl)
			if err != nil {
				return fmt.Errorf("sample %d (wavelength %g): %w", i, wl, err)
			}
			r, err := Compute(cfg)
			if err != nil {
				return fmt.Errorf("sample %d (wavelength %g): %w", i, wl, err)
			}
			results[i] = r
			o.log.Debug("computed sample",
				zap.Int("sample", i),
				zap.Float64("wavelength", wl),
				zap.Float64("x", r.SizeParameter()),
				zap.Int("terms", r.Terms()))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	o.log.Info("sweep finished",
		zap.Int("samples", len(wavelengths)), zap.Int("workers", o.workers))
	return results, nil
}

// Spectra sweeps the wavelength of cfg from fromWL to toWL, keeping the
// geometry and indices fixed. Rows start with the wavelength.
func Spectra(
	ctx context.Context, cfg *Config, fromWL, toWL float64, samples int,
	opts ...SweepOption,
) ([]SpectrumRow, error) {
	wls, err := Span(fromWL, toWL, samples)
	if err != nil {
		return nil, err
	}
	results, err := Sweep(ctx, wls, func(wl float64) (*Config, error) {
		return cfg.With(Wavelength(wl))
	}, opts...)
	if err != nil {
		return nil, err
	}
	return rows(wls, results), nil
}

// SpectraSP sweeps the outer size parameter of cfg from fromX to toX by
// changing the wavelength, so every layer keeps its share of the radius.
// Rows start with the outer size parameter.
func SpectraSP(
	ctx context.Context, cfg *Config, fromX, toX float64, samples int,
	opts ...SweepOption,
) ([]SpectrumRow, error) {
	R := cfg.TotalRadius()
	if R == 0 {
		return nil, configErrorf("the sphere has zero radius")
	}
	xs, err := Span(fromX, toX, samples)
	if err != nil {
		return nil, err
	}
	wls := make([]float64, len(xs))
	for i, x := range xs {
		if !(x > 0) {
			return nil, configErrorf("size parameter %g is not positive", x)
		}
		wls[i] = 2 * math.Pi * R / x
	}

	results, err := Sweep(ctx, wls, func(wl float64) (*Config, error) {
		return cfg.With(Wavelength(wl))
	}, opts...)
	if err != nil {
		return nil, err
	}
	return rows(xs, results), nil
}

// rows turns sweep results into spectrum rows keyed by axis.
func rows(axis []float64, results []*Result) []SpectrumRow {
	out := make([]SpectrumRow, len(results))
	for i, r := range results {
		out[i] = SpectrumRow{axis[i], r.Qext(), r.Qsca(), r.Qabs(), r.Qbk()}
	}
	return out
}

// Span is an inclusive linear grid. A single sample sits at from.
func Span(from, to float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, configErrorf("sample count must be positive, got %d", samples)
	}
	if samples == 1 {
		return []float64{from}, nil
	}
	return floats.Span(make([]float64, samples), from, to), nil
}
