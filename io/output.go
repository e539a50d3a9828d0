package io

import (
	"fmt"
	"io"
	"math"
	"math/cmplx"

	"gopkg.in/yaml.v3"

	"github.com/phil-mansfield/nmie"
)

// WriteSpectrum writes one whitespace separated row per sample. The first
// column is the wavelength, or the outer size parameter if sp is true.
func WriteSpectrum(w io.Writer, rows []nmie.SpectrumRow, sp bool) error {
	axis := "wavelength"
	if sp {
		axis = "x"
	}
	if _, err := fmt.Fprintf(w, "# %s Qext Qsca Qabs Qbk\n", axis); err != nil {
		return err
	}
	for _, r := range rows {
		_, err := fmt.Fprintf(w, "%.10g %.10g %.10g %.10g %.10g\n",
			r[0], r[1], r[2], r[3], r[4])
		if err != nil {
			return err
		}
	}
	return nil
}

// WritePattern writes the amplitude functions and the three scattering
// patterns (size-parameter units) at every angle of res.
func WritePattern(w io.Writer, res *nmie.Result) error {
	_, err := fmt.Fprintln(w,
		"# theta(deg) Re(S1) Im(S1) Re(S2) Im(S2) Ek Hk unpolarized")
	if err != nil {
		return err
	}

	s1, s2 := res.S1(), res.S2()
	ek, hk, un := res.PatternEkSP(), res.PatternHkSP(), res.PatternUnpolarizedSP()
	for i, theta := range res.Angles() {
		_, err := fmt.Fprintf(w, "%.6g %.10g %.10g %.10g %.10g %.10g %.10g %.10g\n",
			theta*180/math.Pi, real(s1[i]), imag(s1[i]), real(s2[i]), imag(s2[i]),
			ek[i], hk[i], un[i])
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteField writes every point followed by the real and imaginary parts of
// the Cartesian E and H components and |E|^2.
func WriteField(w io.Writer, fr *nmie.FieldResult) error {
	_, err := fmt.Fprintln(w, "# x y z"+
		" Re(Ex) Im(Ex) Re(Ey) Im(Ey) Re(Ez) Im(Ez)"+
		" Re(Hx) Im(Hx) Re(Hy) Im(Hy) Re(Hz) Im(Hz) |E|^2")
	if err != nil {
		return err
	}

	es, hs := fr.E(), fr.H()
	for i, p := range fr.Points() {
		e, h := es[i], hs[i]
		intensity := 0.0
		for _, c := range e {
			a := cmplx.Abs(c)
			intensity += a * a
		}
		_, err := fmt.Fprintf(w,
			"%.8g %.8g %.8g"+
				" %.8g %.8g %.8g %.8g %.8g %.8g"+
				" %.8g %.8g %.8g %.8g %.8g %.8g %.8g\n",
			p[0], p[1], p[2],
			real(e[0]), imag(e[0]), real(e[1]), imag(e[1]), real(e[2]), imag(e[2]),
			real(h[0]), imag(h[0]), real(h[1]), imag(h[1]), real(h[2]), imag(h[2]),
			intensity)
		if err != nil {
			return err
		}
	}
	return nil
}

// Summary is the yaml form of a single computation.
type Summary struct {
	Wavelength    float64        `yaml:"wavelength"`
	Radius        float64        `yaml:"radius"`
	SizeParameter float64        `yaml:"size_parameter"`
	Terms         int            `yaml:"terms"`
	PEC           *int           `yaml:"pec,omitempty"`
	Layers        []LayerSummary `yaml:"layers"`
	Qext          float64        `yaml:"qext"`
	Qsca          float64        `yaml:"qsca"`
	Qabs          float64        `yaml:"qabs"`
	Qbk           float64        `yaml:"qbk"`
	Qpr           float64        `yaml:"qpr"`
	G             float64        `yaml:"g"`
	Albedo        float64        `yaml:"albedo"`
	RCSext        float64        `yaml:"rcs_ext"`
	RCSsca        float64        `yaml:"rcs_sca"`
}

type LayerSummary struct {
	Width float64 `yaml:"width"`
	N     float64 `yaml:"n"`
	K     float64 `yaml:"k"`
}

// NewSummary collects the scalar results of res.
func NewSummary(res *nmie.Result) *Summary {
	cfg := res.Config()
	s := &Summary{
		Wavelength:    cfg.Wavelength(),
		Radius:        cfg.TotalRadius(),
		SizeParameter: res.SizeParameter(),
		Terms:         res.Terms(),
		Qext:          res.Qext(),
		Qsca:          res.Qsca(),
		Qabs:          res.Qabs(),
		Qbk:           res.Qbk(),
		Qpr:           res.Qpr(),
		G:             res.AsymmetryFactor(),
		Albedo:        res.Albedo(),
		RCSext:        res.RCSext(),
		RCSsca:        res.RCSsca(),
	}
	if pec, ok := cfg.PECPosition(); ok {
		s.PEC = &pec
	}
	for _, l := range cfg.Layers() {
		s.Layers = append(s.Layers, LayerSummary{l.Width, real(l.Index), imag(l.Index)})
	}
	return s
}

// WriteSummary writes the yaml summary of res.
func WriteSummary(w io.Writer, res *nmie.Result) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewSummary(res)); err != nil {
		return err
	}
	return enc.Close()
}

// ReadSummary parses a summary written by WriteSummary.
func ReadSummary(r io.Reader) (*Summary, error) {
	s := &Summary{}
	if err := yaml.NewDecoder(r).Decode(s); err != nil {
		return nil, err
	}
	return s, nil
}
