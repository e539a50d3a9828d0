// Package material supplies wavelength-dependent refractive indices for
// layers: constants, closed-form dispersion formulas and measured tables.
package material

import (
	"errors"
	"fmt"
)

var (
	// ErrMaterial is returned for a material definition which cannot be
	// evaluated.
	ErrMaterial = errors.New("material: invalid material")
	// ErrOutOfRange is returned when a tabulated material is asked for a
	// wavelength outside its table.
	ErrOutOfRange = errors.New("material: wavelength outside table")
)

// Material is a refractive index as a function of wavelength (applied units).
// Absorption is a positive imaginary part.
type Material interface {
	Index(wavelength float64) (complex128, error)
}

var (
	_ Material = Constant(0)
	_ Material = &Expr{}
	_ Material = &Tabulated{}
)

// Constant is a non-dispersive material.
type Constant complex128

func (c Constant) Index(float64) (complex128, error) { return complex128(c), nil }

// Indices evaluates every material at one wavelength.
func Indices(ms []Material, wavelength float64) ([]complex128, error) {
	out := make([]complex128, len(ms))
	for i, m := range ms {
		idx, err := m.Index(wavelength)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		out[i] = idx
	}
	return out, nil
}
