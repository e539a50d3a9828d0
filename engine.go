package nmie

import (
	"context"
)

// Engine is a stateful wrapper for callers that prefer setters and a run
// step over building Configs. It moves between three states:
//
//	configured -> Run -> computed -> RunField -> field computed
//
// Every setter goes back to configured and drops cached results, so a
// getter can never return numbers which disagree with the current settings.
//
// Bulk width and index setters keep each half separately until the other
// half arrives with a matching length, so a stack can be built or resized
// in two calls. Halves which are still unpaired make Run fail.
type Engine struct {
	cfg   *Config
	res   *Result
	field *FieldResult

	target, coating pending
}

// pending is a bulk assignment to one sub-stack which has not been turned
// into layers yet.
type pending struct {
	widths     []float64
	indices    []complex128
	hasW, hasI bool
}

func (p *pending) setWidths(part string, widths []float64) error {
	for i, w := range widths {
		if err := checkLayer(part, i, w, 1); err != nil {
			return err
		}
	}
	p.widths, p.hasW = append([]float64(nil), widths...), true
	return nil
}

func (p *pending) setIndices(part string, indices []complex128) error {
	for i, m := range indices {
		if err := checkLayer(part, i, 0, m); err != nil {
			return err
		}
	}
	p.indices, p.hasI = append([]complex128(nil), indices...), true
	return nil
}

// option returns the option which applies p, or nil if p is empty or its
// two halves disagree in length.
func (p *pending) option(
	layers func([]float64, []complex128) Option,
	widths func([]float64) Option, indices func([]complex128) Option,
) Option {
	switch {
	case p.hasW && p.hasI:
		if len(p.widths) != len(p.indices) {
			return nil
		}
		return layers(p.widths, p.indices)
	case p.hasW:
		return widths(p.widths)
	case p.hasI:
		return indices(p.indices)
	}
	return nil
}

// settle drops cached results and applies every pending assignment which
// can be paired, either half with half or one half with the existing
// layers.
func (e *Engine) settle() {
	e.res, e.field = nil, nil
	e.settlePart(&e.target, TargetLayers, TargetWidths, TargetIndices)
	e.settlePart(&e.coating, CoatingLayers, CoatingWidths, CoatingIndices)
}

func (e *Engine) settlePart(
	p *pending, layers func([]float64, []complex128) Option,
	widths func([]float64) Option, indices func([]complex128) Option,
) {
	opt := p.option(layers, widths, indices)
	if opt == nil {
		return
	}
	if cfg, err := e.cfg.With(opt); err == nil {
		e.cfg = cfg
		*p = pending{}
	}
}

// checkPending reports the first sub-stack with unpaired widths or indices.
func (e *Engine) checkPending() error {
	parts := []struct {
		name   string
		p      *pending
		layers int
	}{
		{"target", &e.target, len(e.cfg.stack.target)},
		{"coating", &e.coating, len(e.cfg.stack.coating)},
	}
	for _, part := range parts {
		p := part.p
		if !p.hasW && !p.hasI {
			continue
		}
		nw, ni := part.layers, part.layers
		if p.hasW {
			nw = len(p.widths)
		}
		if p.hasI {
			ni = len(p.indices)
		}
		return configErrorf("%s has %d widths but %d indices", part.name, nw, ni)
	}
	return nil
}

// NewEngine returns an engine at wavelength 1 with no layers.
func NewEngine() *Engine {
	cfg, err := New(1)
	if err != nil {
		panic(err)
	}
	return &Engine{cfg: cfg}
}

func (e *Engine) apply(opts ...Option) error {
	cfg, err := e.cfg.With(opts...)
	if err != nil {
		return err
	}
	e.cfg = cfg
	e.settle()
	return nil
}

func (e *Engine) SetWavelength(wl float64) error { return e.apply(Wavelength(wl)) }

func (e *Engine) AddTargetLayer(width float64, index complex128) error {
	return e.apply(TargetLayer(width, index))
}

func (e *Engine) AddCoatingLayer(width float64, index complex128) error {
	return e.apply(CoatingLayer(width, index))
}

// SetTargetWidth sets the target widths. They replace the target once
// indices of the same length are known, either from SetTargetIndex or from
// the existing target layers.
func (e *Engine) SetTargetWidth(widths []float64) error {
	if err := e.target.setWidths("target", widths); err != nil {
		return err
	}
	e.settle()
	return nil
}

// SetTargetIndex is the index counterpart of SetTargetWidth.
func (e *Engine) SetTargetIndex(indices []complex128) error {
	if err := e.target.setIndices("target", indices); err != nil {
		return err
	}
	e.settle()
	return nil
}

func (e *Engine) SetCoatingWidth(widths []float64) error {
	if err := e.coating.setWidths("coating", widths); err != nil {
		return err
	}
	e.settle()
	return nil
}

func (e *Engine) SetCoatingIndex(indices []complex128) error {
	if err := e.coating.setIndices("coating", indices); err != nil {
		return err
	}
	e.settle()
	return nil
}

// SetLayersSP replaces the whole stack with widths in size-parameter units.
func (e *Engine) SetLayersSP(widths []float64, indices []complex128) error {
	target, coating := e.target, e.coating
	e.target, e.coating = pending{}, pending{}
	if err := e.apply(SizeParameterLayers(widths, indices)); err != nil {
		e.target, e.coating = target, coating
		return err
	}
	return nil
}

func (e *Engine) SetFieldPoints(points [][3]float64) error { return e.apply(FieldPoints(points)) }

func (e *Engine) SetFieldPointsSP(points [][3]float64) error {
	return e.apply(FieldPointsSP(points))
}

func (e *Engine) SetAngles(thetas []float64) error { return e.apply(Angles(thetas)) }

func (e *Engine) SetAnglesForPattern(from, to float64, samples int) error {
	return e.apply(AngleSweep(from, to, samples))
}

func (e *Engine) SetPEC(position int) error { return e.apply(PEC(position)) }

func (e *Engine) SetMaxTermsNumber(nmax int) error { return e.apply(MaxTerms(nmax)) }

func (e *Engine) ClearTarget() error {
	e.target = pending{}
	return e.apply(ClearTarget())
}

func (e *Engine) ClearCoating() error {
	e.coating = pending{}
	return e.apply(ClearCoating())
}

func (e *Engine) ClearLayers() error {
	e.target, e.coating = pending{}, pending{}
	return e.apply(ClearLayers())
}

// Config returns the current configuration. Unpaired bulk widths or
// indices are not part of it.
func (e *Engine) Config() *Config { return e.cfg }

// Run computes coefficients, efficiencies and amplitudes. Unpaired bulk
// widths or indices fail with ErrInvalidConfiguration. On failure the engine
// stays in the configured state.
func (e *Engine) Run() error {
	if err := e.checkPending(); err != nil {
		return err
	}
	r, err := Compute(e.cfg)
	if err != nil {
		return err
	}
	e.res, e.field = r, nil
	return nil
}

// RunField evaluates fields at the configured points. It needs a prior Run.
func (e *Engine) RunField() error {
	if e.res == nil {
		return ErrState
	}
	fr, err := e.res.Field()
	if err != nil {
		return err
	}
	e.field = fr
	return nil
}

// Result returns the computed result, or ErrState before Run.
func (e *Engine) Result() (*Result, error) {
	if e.res == nil {
		return nil, ErrState
	}
	return e.res, nil
}

// Field returns the computed fields, or ErrState before RunField.
func (e *Engine) Field() (*FieldResult, error) {
	if e.field == nil {
		return nil, ErrState
	}
	return e.field, nil
}

// Spectra sweeps wavelength with the current settings. It does not change
// the engine's state.
func (e *Engine) Spectra(
	ctx context.Context, fromWL, toWL float64, samples int, opts ...SweepOption,
) ([]SpectrumRow, error) {
	return Spectra(ctx, e.cfg, fromWL, toWL, samples, opts...)
}

// SpectraSP sweeps the outer size parameter with the current settings.
func (e *Engine) SpectraSP(
	ctx context.Context, fromX, toX float64, samples int, opts ...SweepOption,
) ([]SpectrumRow, error) {
	return SpectraSP(ctx, e.cfg, fromX, toX, samples, opts...)
}
