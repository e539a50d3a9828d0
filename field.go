package nmie

import (
	"math"

	"github.com/phil-mansfield/nmie/math/angular"
	"github.com/phil-mansfield/nmie/math/riccati"
)

// surfaceTolerance lets points sitting on the outer surface through despite
// rounding in the coordinate transform.
const surfaceTolerance = 1e-12

// FieldResult pairs each evaluation point with the complex E and H vectors
// there. Vectors are Cartesian, the incident wave is E = x exp(ikz) and H is
// scaled by the wave impedance so that the incident H is y exp(ikz).
type FieldResult struct {
	wavelength float64
	points     [][3]float64
	e, h       [][3]complex128
}

// Field evaluates the total field outside the sphere at the configuration's
// field points.
func (r *Result) Field() (*FieldResult, error) {
	if r == nil || r.an == nil {
		return nil, ErrState
	}
	return r.FieldAt(r.cfg.points)
}

// FieldAt evaluates the total field at points given in applied units.
func (r *Result) FieldAt(points [][3]float64) (*FieldResult, error) {
	if r == nil || r.an == nil {
		return nil, ErrState
	}
	k := 2 * math.Pi / r.cfg.wavelength
	sp := make([][3]float64, len(points))
	for i, p := range points {
		sp[i] = [3]float64{p[0] * k, p[1] * k, p[2] * k}
	}
	return r.FieldAtSP(sp)
}

// FieldAtSP evaluates the total field at points given in size-parameter
// units. Every point must lie on or outside the outer surface.
func (r *Result) FieldAtSP(points [][3]float64) (*FieldResult, error) {
	if r == nil || r.an == nil {
		return nil, ErrState
	}

	fr := &FieldResult{
		wavelength: r.cfg.wavelength,
		points:     make([][3]float64, len(points)),
		e:          make([][3]complex128, len(points)),
		h:          make([][3]complex128, len(points)),
	}
	nmax := r.fieldTerms()
	pi, tau := make([]float64, nmax+1), make([]float64, nmax+1)
	scale := r.cfg.wavelength / (2 * math.Pi)

	for i, p := range points {
		rho := math.Sqrt(p[0]*p[0] + p[1]*p[1] + p[2]*p[2])
		if rho < r.x*(1-surfaceTolerance) {
			return nil, configErrorf(
				"field point %d (rho = %g) is inside the sphere (x = %g)",
				i, rho, r.x,
			)
		}
		theta := math.Acos(math.Max(-1, math.Min(1, p[2]/rho)))
		phi := math.Atan2(p[1], p[0])

		angular.PiTau(theta, pi, tau)
		es, hs, err := r.scattered(rho, theta, phi, pi, tau)
		if err != nil {
			return nil, err
		}

		inc := cexp(p[2])
		fr.e[i] = toCartesian(es, theta, phi)
		fr.h[i] = toCartesian(hs, theta, phi)
		fr.e[i][0] += inc
		fr.h[i][1] += inc
		fr.points[i] = [3]float64{p[0] * scale, p[1] * scale, p[2] * scale}
	}

	return fr, nil
}

// scattered sums the outgoing vector spherical harmonic series (Bohren &
// Huffman 4.45) and returns E and H in (r, theta, phi) components.
func (r *Result) scattered(
	rho, theta, phi float64, pi, tau []float64,
) (e, h [3]complex128, err error) {
	nmax := len(pi) - 1
	zeta := make([]complex128, nmax+1)
	if err := riccati.Zeta(rho, zeta); err != nil {
		return e, h, diverged("outgoing Zeta", -1, -1, rho, err)
	}

	sinT, _ := math.Sincos(theta)
	sinP, cosP := math.Sincos(phi)
	for n := 1; n <= nmax; n++ {
		fn := float64(n)
		// z_n = h_n(rho) and [rho z_n]' / rho.
		zn := zeta[n] / complex(rho, 0)
		dn := (zeta[n-1] - complex(fn/rho, 0)*zeta[n]) / complex(rho, 0)
		p, t := complex(pi[n], 0), complex(tau[n], 0)
		radial := complex(fn*(fn+1)*sinT/rho, 0) * p * zn

		mo1n := [3]complex128{0, complex(cosP, 0) * p * zn, complex(-sinP, 0) * t * zn}
		me1n := [3]complex128{0, complex(-sinP, 0) * p * zn, complex(-cosP, 0) * t * zn}
		no1n := [3]complex128{
			complex(sinP, 0) * radial, complex(sinP, 0) * t * dn, complex(cosP, 0) * p * dn,
		}
		ne1n := [3]complex128{
			complex(cosP, 0) * radial, complex(cosP, 0) * t * dn, complex(-sinP, 0) * p * dn,
		}

		en := iPow(n) * complex((2*fn+1)/(fn*(fn+1)), 0)
		for j := 0; j < 3; j++ {
			e[j] += en * (1i*r.an[n]*ne1n[j] - r.bn[n]*mo1n[j])
			h[j] += en * (1i*r.bn[n]*no1n[j] + r.an[n]*me1n[j])
		}
	}

	for j := 0; j < 3; j++ {
		if !finite(e[j]) || !finite(h[j]) {
			return e, h, diverged("field series", -1, nmax, rho, nil)
		}
	}
	return e, h, nil
}

// fieldTerms is the number of orders summed in the field series. Orders far
// above the outer size parameter have vanishing an and bn but overflowing
// h_n, so they are left out.
func (r *Result) fieldTerms() int {
	return min(r.nmax, Nstop(r.x)+termsMargin)
}

// toCartesian rotates (r, theta, phi) components to (x, y, z).
func toCartesian(v [3]complex128, theta, phi float64) [3]complex128 {
	sinT, cosT := math.Sincos(theta)
	sinP, cosP := math.Sincos(phi)
	c := func(f float64) complex128 { return complex(f, 0) }
	return [3]complex128{
		c(sinT*cosP)*v[0] + c(cosT*cosP)*v[1] - c(sinP)*v[2],
		c(sinT*sinP)*v[0] + c(cosT*sinP)*v[1] + c(cosP)*v[2],
		c(cosT)*v[0] - c(sinT)*v[1],
	}
}

func iPow(n int) complex128 {
	switch n % 4 {
	case 0:
		return 1
	case 1:
		return 1i
	case 2:
		return -1
	default:
		return -1i
	}
}

func cexp(phase float64) complex128 {
	sin, cos := math.Sincos(phase)
	return complex(cos, sin)
}

// Points returns the evaluation points in applied units.
func (fr *FieldResult) Points() [][3]float64 {
	return append([][3]float64(nil), fr.points...)
}

// PointsSP returns the evaluation points in size-parameter units.
func (fr *FieldResult) PointsSP() [][3]float64 {
	k := 2 * math.Pi / fr.wavelength
	out := make([][3]float64, len(fr.points))
	for i, p := range fr.points {
		out[i] = [3]float64{p[0] * k, p[1] * k, p[2] * k}
	}
	return out
}

func (fr *FieldResult) E() [][3]complex128 { return append([][3]complex128(nil), fr.e...) }
func (fr *FieldResult) H() [][3]complex128 { return append([][3]complex128(nil), fr.h...) }
