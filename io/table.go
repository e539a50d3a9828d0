package io

import (
	"fmt"

	"github.com/phil-mansfield/table"

	"github.com/phil-mansfield/nmie"
)

// ReadLayerTable reads a whitespace separated file whose first three columns
// are width, n and k, one layer per row, innermost first. The result can be
// passed to nmie.TargetLayers or nmie.CoatingLayers.
func ReadLayerTable(file string) (widths []float64, indices []complex128, err error) {
	cols, err := table.ReadTable(file, []int{0, 1, 2}, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", file, err)
	}

	widths = cols[0]
	indices = make([]complex128, len(widths))
	for i := range widths {
		indices[i] = complex(cols[1][i], cols[2][i])
	}
	return widths, indices, nil
}

// ReadSpectrum reads a file written by WriteSpectrum.
func ReadSpectrum(file string) ([]nmie.SpectrumRow, error) {
	cols, err := table.ReadTable(file, []int{0, 1, 2, 3, 4}, nil)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}

	rows := make([]nmie.SpectrumRow, len(cols[0]))
	for i := range rows {
		for j := range rows[i] {
			rows[i][j] = cols[j][i]
		}
	}
	return rows, nil
}
