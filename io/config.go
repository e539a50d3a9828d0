package io

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gopkg.in/gcfg.v1"

	"github.com/phil-mansfield/nmie"
	"github.com/phil-mansfield/nmie/geom"
	"github.com/phil-mansfield/nmie/material"
)

const (
	ExampleMieFile = `[Mie]

#######################
# Required Parameters #
#######################

# Wavelength of the incident plane wave. Any length unit can be used as long
# as layer widths, field points and tabulated materials use the same one.
Wavelength = 0.532

#######################
# Optional Parameters #
#######################

# Scattering angles, in degrees, at which S1, S2 and the scattering patterns
# are evaluated. ThetaSamples = 0 (the default) skips the angular output.
# ThetaMin = 0
# ThetaMax = 180
# ThetaSamples = 181

# Name of the layer which is a perfect electric conductor. Every layer
# inside it is ignored.
# PEC = core

# Overrides the term-count heuristic. Rarely needed.
# MaxTerms = 50

# Spectrum range for the 'spectra' command. If SizeParameterAxis is true,
# SpectrumMin and SpectrumMax are outer size parameters instead of
# wavelengths.
# SpectrumMin = 0.4
# SpectrumMax = 0.8
# SpectrumSamples = 101
# SizeParameterAxis = false

# Number of wavelengths computed at the same time during a spectrum.
# Workers = 4

# Files which results are written to. Output defaults to stdout, Database
# and Plot are only written when set.
# Output = result.txt
# Database = runs.db
# Plot = figure.png

# A label stored with every database record.
# Label = my_particle

##########
# Layers #
##########

# Every layer has its own [Layer "name"] section. Layers are sorted by Part
# (target first, then coating) and then by Order, innermost first.
#
# The refractive index is given by exactly one of:
#   IndexRe/IndexIm  a constant index
#   IndexExpr        an expression of the wavelength wl, with an optional
#                    IndexImExpr for the imaginary part
#   IndexFile        a text file with columns wavelength, n, k. Set
#                    Spline = true for cubic instead of linear interpolation.

[Layer "core"]
Part = target
Order = 0
Width = 0.1
IndexRe = 1.59
IndexIm = 0.01

[Layer "shell"]
Part = coating
Order = 0
Width = 0.02
IndexExpr = 1.324 + 0.00309/wl^2

##########
# Points #
##########

# Points at which the 'field' command evaluates E and H. Coordinates are in
# the same unit as Wavelength and must be outside the sphere.
[Point "forward"]
X = 0
Y = 0
Z = 0.5

# A square grid of field points on a plane through the center. Grid points
# inside the sphere are skipped. Cells = 0 (the default) disables the grid.
[Grid]
# Plane = xz
# Extent = 0.3
# Cells = 0`
)

// MieConfig is the [Mie] section of a configuration file.
type MieConfig struct {
	// Required
	Wavelength float64

	// Optional
	ThetaMin, ThetaMax float64
	ThetaSamples       int
	PEC                string
	MaxTerms           int

	SpectrumMin, SpectrumMax float64
	SpectrumSamples          int
	SizeParameterAxis        bool
	Workers                  int

	Output, Database, Plot, Label string
}

func (con *MieConfig) ValidWavelength() bool {
	return con.Wavelength > 0 && !math.IsInf(con.Wavelength, 0)
}
func (con *MieConfig) ValidTheta() bool {
	return con.ThetaSamples >= 0 && con.ThetaMin >= 0 &&
		con.ThetaMax <= 180 && con.ThetaMin <= con.ThetaMax
}
func (con *MieConfig) ValidMaxTerms() bool {
	return con.MaxTerms >= 0 && con.MaxTerms <= nmie.MaxTermsLimit
}
func (con *MieConfig) ValidSpectrum() bool {
	return con.SpectrumSamples > 0 && con.SpectrumMin > 0 &&
		con.SpectrumMax > 0
}
func (con *MieConfig) ValidWorkers() bool {
	return con.Workers > 0
}
func (con *MieConfig) ValidDatabase() bool {
	return con.Database != ""
}
func (con *MieConfig) ValidPlot() bool {
	return con.Plot != ""
}

// LayerConfig is one [Layer "name"] section.
type LayerConfig struct {
	// Required
	Width float64

	// Optional
	Part             string
	Order            int
	IndexRe, IndexIm float64
	IndexExpr        string
	IndexImExpr      string
	IndexFile        string
	Spline           bool

	Name string
	mat  material.Material
}

const (
	targetPart  = "target"
	coatingPart = "coating"
)

// CheckInit validates the layer and builds its material.
func (layer *LayerConfig) CheckInit(name string) error {
	layer.Name = name
	layer.Part = strings.ToLower(layer.Part)
	if layer.Part == "" {
		layer.Part = targetPart
	}

	if layer.Part != targetPart && layer.Part != coatingPart {
		return fmt.Errorf(
			"Part of Layer '%s' must be '%s' or '%s', but is '%s'.",
			name, targetPart, coatingPart, layer.Part,
		)
	} else if layer.Width < 0 || math.IsNaN(layer.Width) {
		return fmt.Errorf(
			"Layer '%s' given a negative width, %g.", name, layer.Width,
		)
	}

	sources := 0
	if layer.IndexRe != 0 || layer.IndexIm != 0 {
		sources++
	}
	if layer.IndexExpr != "" {
		sources++
	}
	if layer.IndexFile != "" {
		sources++
	}
	if sources != 1 {
		return fmt.Errorf(
			"Layer '%s' must set exactly one of IndexRe/IndexIm, "+
				"IndexExpr and IndexFile.", name,
		)
	} else if layer.IndexImExpr != "" && layer.IndexExpr == "" {
		return fmt.Errorf(
			"Layer '%s' sets IndexImExpr without IndexExpr.", name,
		)
	}

	var err error
	switch {
	case layer.IndexExpr != "":
		layer.mat, err = material.NewExpr(layer.IndexExpr, layer.IndexImExpr)
	case layer.IndexFile != "":
		layer.mat, err = material.ReadTable(layer.IndexFile, layer.Spline)
	default:
		layer.mat = material.Constant(complex(layer.IndexRe, layer.IndexIm))
	}
	if err != nil {
		return fmt.Errorf("Layer '%s': %w", name, err)
	}
	return nil
}

// Material returns the layer's material. It is only set after CheckInit.
func (layer *LayerConfig) Material() material.Material { return layer.mat }

// PointConfig is one [Point "name"] section.
type PointConfig struct {
	X, Y, Z float64

	Name string
}

func (pt *PointConfig) CheckInit(name string) error {
	pt.Name = name
	for _, v := range []float64{pt.X, pt.Y, pt.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("Point '%s' has a non-finite coordinate.", name)
		}
	}
	return nil
}

// GridConfig is the optional [Grid] section.
type GridConfig struct {
	Plane  string
	Extent float64
	Cells  int

	grid *geom.Grid
}

func (con *GridConfig) CheckInit() error {
	if con.Cells == 0 {
		return nil
	}
	var err error
	con.grid, err = geom.NewGrid(con.Plane, con.Extent, con.Cells)
	return err
}

// MieWrapper is a whole configuration file.
type MieWrapper struct {
	Mie   MieConfig
	Grid  GridConfig
	Layer map[string]*LayerConfig
	Point map[string]*PointConfig
}

func DefaultMieWrapper() *MieWrapper {
	con := MieConfig{}
	con.ThetaMax = 180
	con.SpectrumSamples = 101
	con.Workers = 1
	return &MieWrapper{Mie: con, Grid: GridConfig{Plane: "xz"}}
}

// ReadConfig reads and validates a configuration file.
func ReadConfig(fname string) (*MieWrapper, error) {
	wrap := DefaultMieWrapper()
	if err := gcfg.ReadFileInto(wrap, fname); err != nil {
		return nil, err
	}
	return wrap, wrap.CheckInit()
}

// ReadConfigString is ReadConfig for configuration text.
func ReadConfigString(text string) (*MieWrapper, error) {
	wrap := DefaultMieWrapper()
	if err := gcfg.ReadStringInto(wrap, text); err != nil {
		return nil, err
	}
	return wrap, wrap.CheckInit()
}

// CheckInit validates every section.
func (wrap *MieWrapper) CheckInit() error {
	con := &wrap.Mie
	if !con.ValidWavelength() {
		return fmt.Errorf("Invalid/non-existent 'Wavelength' value.")
	} else if !con.ValidTheta() {
		return fmt.Errorf(
			"Invalid theta range [%g, %g] with %d samples.",
			con.ThetaMin, con.ThetaMax, con.ThetaSamples,
		)
	} else if !con.ValidMaxTerms() {
		return fmt.Errorf("Invalid 'MaxTerms' value, %d.", con.MaxTerms)
	} else if !con.ValidWorkers() {
		return fmt.Errorf("Invalid 'Workers' value, %d.", con.Workers)
	}

	if len(wrap.Layer) == 0 {
		return fmt.Errorf("Need to specify at least one Layer.")
	}
	for name, layer := range wrap.Layer {
		if err := layer.CheckInit(name); err != nil {
			return err
		}
	}
	for name, pt := range wrap.Point {
		if err := pt.CheckInit(name); err != nil {
			return err
		}
	}
	if err := wrap.Grid.CheckInit(); err != nil {
		return fmt.Errorf("Invalid [Grid] section: %w", err)
	}

	if con.PEC != "" {
		if _, ok := wrap.Layer[con.PEC]; !ok {
			return fmt.Errorf("PEC layer '%s' does not exist.", con.PEC)
		}
	}
	return nil
}

// Layers returns the layers innermost first: target before coating, then
// by Order, then by name.
func (wrap *MieWrapper) Layers() []*LayerConfig {
	layers := make([]*LayerConfig, 0, len(wrap.Layer))
	for _, layer := range wrap.Layer {
		layers = append(layers, layer)
	}
	sort.Slice(layers, func(i, j int) bool {
		a, b := layers[i], layers[j]
		if a.Part != b.Part {
			return a.Part == targetPart
		} else if a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.Name < b.Name
	})
	return layers
}

// Points returns the named field points sorted by name, followed by the
// grid points outside radius.
func (wrap *MieWrapper) Points(radius float64) [][3]float64 {
	names := make([]string, 0, len(wrap.Point))
	for name := range wrap.Point {
		names = append(names, name)
	}
	sort.Strings(names)

	pts := make([][3]float64, len(names))
	for i, name := range names {
		pt := wrap.Point[name]
		pts[i] = [3]float64{pt.X, pt.Y, pt.Z}
	}
	if wrap.Grid.grid != nil {
		gridPts := wrap.Grid.grid.Points(radius)
		pts = append(pts, gridPts...)
	}
	return pts
}

// Config builds the configuration at the file's wavelength.
func (wrap *MieWrapper) Config() (*nmie.Config, error) {
	return wrap.ConfigAt(wrap.Mie.Wavelength)
}

// ConfigAt builds the configuration at another wavelength, evaluating every
// layer's material there.
func (wrap *MieWrapper) ConfigAt(wavelength float64) (*nmie.Config, error) {
	con := &wrap.Mie
	opts := []nmie.Option{}

	radius := 0.0
	for i, layer := range wrap.Layers() {
		radius += layer.Width
		idx, err := layer.Material().Index(wavelength)
		if err != nil {
			return nil, fmt.Errorf("Layer '%s': %w", layer.Name, err)
		}
		if layer.Part == targetPart {
			opts = append(opts, nmie.TargetLayer(layer.Width, idx))
		} else {
			opts = append(opts, nmie.CoatingLayer(layer.Width, idx))
		}
		if layer.Name == con.PEC {
			opts = append(opts, nmie.PEC(i))
		}
	}

	opts = append(opts, nmie.FieldPoints(wrap.Points(radius)))

	if con.ThetaSamples > 0 {
		opts = append(opts, nmie.AngleSweep(
			con.ThetaMin*math.Pi/180, con.ThetaMax*math.Pi/180,
			con.ThetaSamples,
		))
	}
	if con.MaxTerms > 0 {
		opts = append(opts, nmie.MaxTerms(con.MaxTerms))
	}

	return nmie.New(wavelength, opts...)
}

// Builder returns an nmie.Builder which re-evaluates dispersive materials at
// every wavelength of a sweep.
func (wrap *MieWrapper) Builder() nmie.Builder {
	return wrap.ConfigAt
}
