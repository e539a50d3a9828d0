package nmie

import (
	"math"

	"github.com/phil-mansfield/nmie/math/angular"
)

// Config is an immutable description of one scattering problem: the layer
// stack, the wavelength, the scattering angles, an optional PEC layer, an
// optional term count and the points at which fields will be evaluated.
//
// A Config is never modified after New or With returns it, so a Result is
// always tied to exactly the configuration it was computed from.
type Config struct {
	wavelength float64
	stack      stack
	angles     []float64
	pec        int
	nmax       int
	points     [][3]float64
}

// Option changes one aspect of a configuration under construction.
type Option func(*builder) error

// builder collects options. Bulk width and index setters and size-parameter
// geometry are resolved only after every option has run, so their relative
// order does not matter.
type builder struct {
	Config

	targetWidths, coatingWidths   []float64
	targetIndices, coatingIndices []complex128
	hasTargetW, hasTargetI        bool
	hasCoatingW, hasCoatingI      bool

	spWidths  []float64
	spIndices []complex128
	hasSP     bool
	spPoints  [][3]float64
	hasSPPts  bool
}

// New returns a configuration at the given wavelength (applied units) with
// no layers, no angles, no PEC layer and an automatic term count.
func New(wavelength float64, opts ...Option) (*Config, error) {
	c := &Config{wavelength: wavelength, pec: -1}
	return c.With(opts...)
}

// With returns a copy of c with opts applied. c itself is unchanged.
func (c *Config) With(opts ...Option) (*Config, error) {
	b := &builder{Config: c.clone()}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	if err := b.resolve(); err != nil {
		return nil, err
	}
	out := b.Config
	return &out, nil
}

func (c *Config) clone() Config {
	out := *c
	out.stack = c.stack.clone()
	out.angles = append([]float64(nil), c.angles...)
	out.points = append([][3]float64(nil), c.points...)
	return out
}

func (b *builder) resolve() error {
	if !(b.wavelength > 0) || math.IsInf(b.wavelength, 0) {
		return configErrorf("wavelength must be positive, got %g", b.wavelength)
	}

	if b.hasSP {
		layers, err := zipLayers("size parameter", b.spWidths, b.spIndices)
		if err != nil {
			return err
		}
		scale := b.wavelength / (2 * math.Pi)
		for i := range layers {
			layers[i].Width *= scale
		}
		b.stack = stack{target: layers}
	}

	var err error
	b.stack.target, err = pair(
		"target", b.stack.target, b.targetWidths, b.targetIndices,
		b.hasTargetW, b.hasTargetI,
	)
	if err != nil {
		return err
	}
	b.stack.coating, err = pair(
		"coating", b.stack.coating, b.coatingWidths, b.coatingIndices,
		b.hasCoatingW, b.hasCoatingI,
	)
	if err != nil {
		return err
	}

	if b.hasSPPts {
		scale := b.wavelength / (2 * math.Pi)
		b.points = make([][3]float64, len(b.spPoints))
		for i, p := range b.spPoints {
			b.points[i] = [3]float64{p[0] * scale, p[1] * scale, p[2] * scale}
		}
	}

	return nil
}

// pair merges separately supplied widths and indices with the layers that
// already exist. A missing half is taken from the existing layers.
func pair(
	part string, layers []Layer, widths []float64, indices []complex128,
	hasW, hasI bool,
) ([]Layer, error) {
	if !hasW && !hasI {
		return layers, nil
	}
	if !hasW {
		widths = make([]float64, len(layers))
		for i := range layers {
			widths[i] = layers[i].Width
		}
	}
	if !hasI {
		indices = make([]complex128, len(layers))
		for i := range layers {
			indices[i] = layers[i].Index
		}
	}
	return zipLayers(part, widths, indices)
}

/////////////
// Options //
/////////////

// Wavelength sets the incident wavelength in applied units.
func Wavelength(wavelength float64) Option {
	return func(b *builder) error {
		b.wavelength = wavelength
		return nil
	}
}

// TargetLayer appends one layer to the outside of the target.
func TargetLayer(width float64, index complex128) Option {
	return func(b *builder) error {
		if err := checkLayer("target", len(b.stack.target), width, index); err != nil {
			return err
		}
		b.stack.target = append(b.stack.target, Layer{width, index})
		return nil
	}
}

// CoatingLayer appends one layer to the outside of the coating.
func CoatingLayer(width float64, index complex128) Option {
	return func(b *builder) error {
		if err := checkLayer("coating", len(b.stack.coating), width, index); err != nil {
			return err
		}
		b.stack.coating = append(b.stack.coating, Layer{width, index})
		return nil
	}
}

// TargetLayers replaces the target with the given widths and indices, which
// must have equal lengths.
func TargetLayers(widths []float64, indices []complex128) Option {
	return func(b *builder) error {
		layers, err := zipLayers("target", widths, indices)
		if err != nil {
			return err
		}
		b.stack.target = layers
		return nil
	}
}

// CoatingLayers replaces the coating with the given widths and indices,
// which must have equal lengths.
func CoatingLayers(widths []float64, indices []complex128) Option {
	return func(b *builder) error {
		layers, err := zipLayers("coating", widths, indices)
		if err != nil {
			return err
		}
		b.stack.coating = layers
		return nil
	}
}

// TargetWidths sets the target layer widths. Unless TargetIndices is also
// given, the target must already have exactly len(widths) layers.
func TargetWidths(widths []float64) Option {
	return func(b *builder) error {
		b.targetWidths = append([]float64(nil), widths...)
		b.hasTargetW = true
		return nil
	}
}

// TargetIndices sets the target layer indices. Unless TargetWidths is also
// given, the target must already have exactly len(indices) layers.
func TargetIndices(indices []complex128) Option {
	return func(b *builder) error {
		b.targetIndices = append([]complex128(nil), indices...)
		b.hasTargetI = true
		return nil
	}
}

// CoatingWidths is the coating counterpart of TargetWidths.
func CoatingWidths(widths []float64) Option {
	return func(b *builder) error {
		b.coatingWidths = append([]float64(nil), widths...)
		b.hasCoatingW = true
		return nil
	}
}

// CoatingIndices is the coating counterpart of TargetIndices.
func CoatingIndices(indices []complex128) Option {
	return func(b *builder) error {
		b.coatingIndices = append([]complex128(nil), indices...)
		b.hasCoatingI = true
		return nil
	}
}

// SizeParameterLayers sets the whole stack from layer widths given in
// size-parameter units (2 pi width / wavelength). The result is stored as a
// target with no coating.
func SizeParameterLayers(widths []float64, indices []complex128) Option {
	return func(b *builder) error {
		b.spWidths = append([]float64(nil), widths...)
		b.spIndices = append([]complex128(nil), indices...)
		b.hasSP = true
		return nil
	}
}

// ClearTarget removes every target layer.
func ClearTarget() Option {
	return func(b *builder) error {
		b.stack.target = nil
		b.targetWidths, b.targetIndices = nil, nil
		b.hasTargetW, b.hasTargetI = false, false
		return nil
	}
}

// ClearCoating removes every coating layer.
func ClearCoating() Option {
	return func(b *builder) error {
		b.stack.coating = nil
		b.coatingWidths, b.coatingIndices = nil, nil
		b.hasCoatingW, b.hasCoatingI = false, false
		return nil
	}
}

// ClearLayers removes every layer.
func ClearLayers() Option {
	return func(b *builder) error {
		ClearTarget()(b)
		ClearCoating()(b)
		b.spWidths, b.spIndices, b.hasSP = nil, nil, false
		return nil
	}
}

// Angles sets the scattering angles, in radians, at which S1, S2 and the
// patterns are evaluated.
func Angles(thetas []float64) Option {
	return func(b *builder) error {
		for i, theta := range thetas {
			if math.IsNaN(theta) || math.IsInf(theta, 0) {
				return configErrorf("angle %d is %g", i, theta)
			}
		}
		b.angles = append([]float64(nil), thetas...)
		return nil
	}
}

// AngleSweep sets samples evenly spaced angles from from to to, inclusive.
func AngleSweep(from, to float64, samples int) Option {
	return func(b *builder) error {
		thetas, err := angular.Sweep(from, to, samples)
		if err != nil {
			return configErrorf("%w", err)
		}
		return Angles(thetas)(b)
	}
}

// PEC marks the layer at position (0 is innermost) as a perfect electric
// conductor. Layers inside it no longer affect the result. The position is
// checked against the layer count when the configuration is computed.
func PEC(position int) Option {
	return func(b *builder) error {
		if position < 0 {
			return configErrorf("PEC layer position %d is negative", position)
		}
		b.pec = position
		return nil
	}
}

// NoPEC removes the PEC marker.
func NoPEC() Option {
	return func(b *builder) error {
		b.pec = -1
		return nil
	}
}

// MaxTerms overrides the term-count heuristic.
func MaxTerms(nmax int) Option {
	return func(b *builder) error {
		if nmax <= 0 {
			return configErrorf("term count must be positive, got %d", nmax)
		} else if nmax > MaxTermsLimit {
			return configErrorf(
				"term count %d is above the limit of %d", nmax, MaxTermsLimit,
			)
		}
		b.nmax = nmax
		return nil
	}
}

// AutoTerms restores the term-count heuristic.
func AutoTerms() Option {
	return func(b *builder) error {
		b.nmax = 0
		return nil
	}
}

// FieldPoints sets the Cartesian points, in applied units with the sphere
// at the origin, at which Result.Field evaluates E and H.
func FieldPoints(points [][3]float64) Option {
	return func(b *builder) error {
		if err := checkPoints(points); err != nil {
			return err
		}
		b.points = append([][3]float64(nil), points...)
		b.spPoints, b.hasSPPts = nil, false
		return nil
	}
}

// FieldPointsSP is FieldPoints with coordinates in size-parameter units.
func FieldPointsSP(points [][3]float64) Option {
	return func(b *builder) error {
		if err := checkPoints(points); err != nil {
			return err
		}
		b.spPoints = append([][3]float64(nil), points...)
		b.hasSPPts = true
		return nil
	}
}

func checkPoints(points [][3]float64) error {
	for i, p := range points {
		for _, v := range p {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return configErrorf("field point %d is %g", i, p)
			}
		}
	}
	return nil
}

/////////////
// Getters //
/////////////

func (c *Config) Wavelength() float64 { return c.wavelength }

// TotalRadius is the outer radius of the full stack in applied units.
func (c *Config) TotalRadius() float64 { return radius(c.stack.layers()) }

func (c *Config) TargetRadius() float64 { return radius(c.stack.target) }

func (c *Config) CoatingWidth() float64 { return radius(c.stack.coating) }

func (c *Config) TargetLayers() []Layer {
	return append([]Layer(nil), c.stack.target...)
}

func (c *Config) CoatingLayers() []Layer {
	return append([]Layer(nil), c.stack.coating...)
}

// Layers returns target then coating layers, innermost first.
func (c *Config) Layers() []Layer { return c.stack.layers() }

// LayerCount is the number of layers in the full stack.
func (c *Config) LayerCount() int { return c.stack.len() }

// SizeParameters returns the cumulative size parameter at the outside of
// every layer.
func (c *Config) SizeParameters() []float64 {
	return sizeParameters(c.stack.layers(), c.wavelength)
}

// LayerWidthsSP returns every layer width in size-parameter units.
func (c *Config) LayerWidthsSP() []float64 {
	layers := c.stack.layers()
	ws := make([]float64, len(layers))
	for i := range layers {
		ws[i] = 2 * math.Pi * layers[i].Width / c.wavelength
	}
	return ws
}

// Indices returns the refractive index of every layer, innermost first.
func (c *Config) Indices() []complex128 {
	layers := c.stack.layers()
	ms := make([]complex128, len(layers))
	for i := range layers {
		ms[i] = layers[i].Index
	}
	return ms
}

func (c *Config) Angles() []float64 { return append([]float64(nil), c.angles...) }

// PECPosition returns the PEC layer and whether one is set.
func (c *Config) PECPosition() (int, bool) { return c.pec, c.pec >= 0 }

// MaxTerms returns the manual term count, or 0 if the heuristic is used.
func (c *Config) MaxTerms() int { return c.nmax }

func (c *Config) FieldPoints() [][3]float64 {
	return append([][3]float64(nil), c.points...)
}

func (c *Config) FieldPointsSP() [][3]float64 {
	k := 2 * math.Pi / c.wavelength
	out := make([][3]float64, len(c.points))
	for i, p := range c.points {
		out[i] = [3]float64{p[0] * k, p[1] * k, p[2] * k}
	}
	return out
}

// checkComputable runs the validation which depends on the whole stack.
func (c *Config) checkComputable() error {
	layers := c.stack.layers()
	if len(layers) == 0 {
		return configErrorf("no layers")
	}
	if c.pec >= len(layers) {
		return configErrorf(
			"PEC layer position %d is outside [0, %d)", c.pec, len(layers),
		)
	}

	xs := sizeParameters(layers, c.wavelength)
	if xs[len(xs)-1] == 0 {
		return configErrorf("the sphere has zero radius")
	}
	first := c.pec
	if first < 0 {
		first = 0
	}
	for l := first; l < len(layers); l++ {
		if l == c.pec {
			continue
		}
		if complex(xs[l], 0)*layers[l].Index == 0 {
			return configErrorf(
				"layer %d is degenerate (x = %g, m = %g)",
				l, xs[l], layers[l].Index,
			)
		}
		if l > first && complex(xs[l-1], 0)*layers[l].Index == 0 {
			return configErrorf(
				"layer %d has a degenerate inner surface (x = %g)", l, xs[l-1],
			)
		}
	}
	return nil
}
