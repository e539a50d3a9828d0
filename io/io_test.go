package io

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/nmie"
)

func TestExampleMieFile(t *testing.T) {
	wrap, err := ReadConfigString(ExampleMieFile)
	require.NoError(t, err)

	layers := wrap.Layers()
	require.Len(t, layers, 2)
	assert.Equal(t, "core", layers[0].Name)
	assert.Equal(t, "shell", layers[1].Name)
	assert.Equal(t, 1, wrap.Mie.Workers)

	cfg, err := wrap.Config()
	require.NoError(t, err)
	assert.Equal(t, 0.532, cfg.Wavelength())
	assert.Len(t, cfg.TargetLayers(), 1)
	assert.Len(t, cfg.CoatingLayers(), 1)

	ms := cfg.Indices()
	assert.Equal(t, 1.59+0.01i, ms[0])
	assert.InDelta(t, 1.324+0.00309/(0.532*0.532), real(ms[1]), 1e-12)
	assert.Equal(t, [][3]float64{{0, 0, 0.5}}, cfg.FieldPoints())

	// Dispersion is re-evaluated away from the file's wavelength.
	other, err := wrap.Builder()(0.4)
	require.NoError(t, err)
	assert.InDelta(t, 1.324+0.00309/0.16, real(other.Indices()[1]), 1e-12)
	assert.Equal(t, 1.59+0.01i, other.Indices()[0])
}

func TestConfigOptions(t *testing.T) {
	text := `[Mie]
Wavelength = 1
ThetaMin = 0
ThetaMax = 90
ThetaSamples = 3
PEC = b
MaxTerms = 30

[Layer "c"]
Part = coating
Width = 0.3
IndexRe = 1.2

[Layer "b"]
Order = 1
Width = 0.2
IndexRe = 2

[Layer "a"]
Width = 0.1
IndexRe = 1.5
IndexIm = 0.1
`
	wrap, err := ReadConfigString(text)
	require.NoError(t, err)
	cfg, err := wrap.Config()
	require.NoError(t, err)

	assert.Equal(t, []nmie.Layer{{0.1, 1.5 + 0.1i}, {0.2, 2}, {0.3, 1.2}}, cfg.Layers())
	pec, ok := cfg.PECPosition()
	assert.True(t, ok)
	assert.Equal(t, 1, pec)
	assert.Equal(t, 30, cfg.MaxTerms())
	assert.InDeltaSlice(t, []float64{0, math.Pi / 4, math.Pi / 2}, cfg.Angles(), 1e-15)
}

func TestConfigErrors(t *testing.T) {
	layer := "\n[Layer \"a\"]\nWidth = 1\nIndexRe = 1.5\n"
	tests := []struct {
		name, text string
	}{
		{"no wavelength", "[Mie]\n" + layer},
		{"no layers", "[Mie]\nWavelength = 1\n"},
		{"bad part", "[Mie]\nWavelength = 1\n[Layer \"a\"]\nPart = shell\nWidth = 1\nIndexRe = 1\n"},
		{"two sources", "[Mie]\nWavelength = 1\n[Layer \"a\"]\nWidth = 1\nIndexRe = 1\nIndexExpr = 2\n"},
		{"no source", "[Mie]\nWavelength = 1\n[Layer \"a\"]\nWidth = 1\n"},
		{"bad expression", "[Mie]\nWavelength = 1\n[Layer \"a\"]\nWidth = 1\nIndexExpr = 1 +\n"},
		{"unknown PEC", "[Mie]\nWavelength = 1\nPEC = z\n" + layer},
		{"bad theta", "[Mie]\nWavelength = 1\nThetaMin = 90\nThetaMax = 10\n" + layer},
		{"bad workers", "[Mie]\nWavelength = 1\nWorkers = 0\n" + layer},
		{"unknown variable", "[Mie]\nWavelength = 1\nColour = red\n" + layer},
	}
	for _, tt := range tests {
		_, err := ReadConfigString(tt.text)
		assert.Error(t, err, tt.name)
	}
}

func TestWriteSpectrum(t *testing.T) {
	cfg, err := nmie.New(0.5, nmie.TargetLayer(0.1, 1.5))
	require.NoError(t, err)
	rows, err := nmie.Spectra(context.Background(), cfg, 0.4, 0.6, 3)
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	require.NoError(t, WriteSpectrum(buf, rows, false))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "# wavelength Qext Qsca Qabs Qbk", lines[0])

	file := filepath.Join(t.TempDir(), "spectrum.txt")
	require.NoError(t, os.WriteFile(file, buf.Bytes(), 0o644))
	got, err := ReadSpectrum(file)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i := range rows {
		for j := range rows[i] {
			assert.InEpsilon(t, rows[i][j], got[i][j], 1e-9)
		}
	}
}

func TestWritePatternAndField(t *testing.T) {
	cfg, err := nmie.New(0.5,
		nmie.TargetLayer(0.1, 1.5),
		nmie.AngleSweep(0, math.Pi, 5),
		nmie.FieldPoints([][3]float64{{0, 0, 0.2}, {0.3, 0, 0}}),
	)
	require.NoError(t, err)
	res, err := cfg.Compute()
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	require.NoError(t, WritePattern(buf, res))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[5], "180 "))
	assert.Len(t, strings.Fields(lines[1]), 8)

	fr, err := res.Field()
	require.NoError(t, err)
	buf.Reset()
	require.NoError(t, WriteField(buf, fr))
	lines = strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Len(t, strings.Fields(lines[2]), 16)
}

func TestSummary(t *testing.T) {
	cfg, err := nmie.New(0.5,
		nmie.TargetLayer(0.1, 1.5+0.01i), nmie.CoatingLayer(0.02, 2), nmie.PEC(0),
	)
	require.NoError(t, err)
	res, err := cfg.Compute()
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	require.NoError(t, WriteSummary(buf, res))
	assert.Contains(t, buf.String(), "qext:")

	s, err := ReadSummary(buf)
	require.NoError(t, err)
	assert.Equal(t, NewSummary(res), s)
	require.NotNil(t, s.PEC)
	assert.Equal(t, 0, *s.PEC)
	assert.Equal(t, []LayerSummary{{0.1, 1.5, 0.01}, {0.02, 2, 0}}, s.Layers)
}

func TestReadLayerTable(t *testing.T) {
	file := filepath.Join(t.TempDir(), "layers.txt")
	require.NoError(t, os.WriteFile(file, []byte("0.1 1.5 0.01\n0.2 2 0\n"), 0o644))

	widths, indices, err := ReadLayerTable(file)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2}, widths)
	assert.Equal(t, []complex128{1.5 + 0.01i, 2}, indices)

	cfg, err := nmie.New(1, nmie.TargetLayers(widths, indices))
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.LayerCount())
}

func TestGridPoints(t *testing.T) {
	text := `[Mie]
Wavelength = 1

[Layer "core"]
Width = 0.5
IndexRe = 1.5

[Point "far"]
Z = 10

[Grid]
Plane = xy
Extent = 1
Cells = 3`
	wrap, err := ReadConfigString(text)
	require.NoError(t, err)

	cfg, err := wrap.Config()
	require.NoError(t, err)
	pts := cfg.FieldPoints()
	// The center of the 3x3 grid is inside the sphere.
	require.Len(t, pts, 9)
	assert.Equal(t, [3]float64{0, 0, 10}, pts[0])
	assert.Equal(t, [3]float64{-1, -1, 0}, pts[1])

	res, err := cfg.Compute()
	require.NoError(t, err)
	_, err = res.Field()
	assert.NoError(t, err)

	_, err = ReadConfigString(strings.Replace(text, "Plane = xy", "Plane = xw", 1))
	assert.Error(t, err)
}
