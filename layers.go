package nmie

import (
	"math"
	"math/cmplx"
)

// Layer is one homogeneous spherical shell. Width is radial thickness in
// applied units, Index the complex refractive index relative to the host
// medium (absorption has a positive imaginary part).
type Layer struct {
	Width float64
	Index complex128
}

// stack is the ordered target (core) and coating (shell) layers. The full
// sphere is target followed by coating, innermost first.
type stack struct {
	target, coating []Layer
}

func (s stack) clone() stack {
	return stack{
		target:  append([]Layer(nil), s.target...),
		coating: append([]Layer(nil), s.coating...),
	}
}

func (s stack) layers() []Layer {
	out := make([]Layer, 0, len(s.target)+len(s.coating))
	out = append(out, s.target...)
	return append(out, s.coating...)
}

func (s stack) len() int { return len(s.target) + len(s.coating) }

func radius(layers []Layer) float64 {
	r := 0.0
	for _, l := range layers {
		r += l.Width
	}
	return r
}

// zipLayers pairs widths with indices. Mismatched lengths and negative or
// non-finite widths are configuration errors.
func zipLayers(part string, widths []float64, indices []complex128) ([]Layer, error) {
	if len(widths) != len(indices) {
		return nil, configErrorf(
			"%s has %d widths but %d indices", part, len(widths), len(indices),
		)
	}
	layers := make([]Layer, len(widths))
	for i := range widths {
		if err := checkLayer(part, i, widths[i], indices[i]); err != nil {
			return nil, err
		}
		layers[i] = Layer{widths[i], indices[i]}
	}
	return layers, nil
}

func checkLayer(part string, i int, width float64, index complex128) error {
	if width < 0 || math.IsNaN(width) || math.IsInf(width, 0) {
		return configErrorf("%s layer %d has width %g", part, i, width)
	}
	if cmplx.IsNaN(index) || cmplx.IsInf(index) {
		return configErrorf("%s layer %d has index %g", part, i, index)
	}
	return nil
}

// sizeParameters returns the cumulative size parameter 2 pi r_l / wavelength
// at the outer surface of every layer.
func sizeParameters(layers []Layer, wavelength float64) []float64 {
	xs := make([]float64, len(layers))
	r := 0.0
	for i, l := range layers {
		r += l.Width
		xs[i] = 2 * math.Pi * r / wavelength
	}
	return xs
}
