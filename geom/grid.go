// Package geom lays out near-field sample points on planes through the
// center of a sphere.
package geom

import (
	"fmt"
	"strings"
)

// Grid provides an interface for reasoning over a 1D slice as if it were a
// square 2D grid of Cells x Cells points centered on the origin. Point
// (0, 0) sits at (-Extent, -Extent) in the plane's coordinates.
type Grid struct {
	Cells  int
	Extent float64
	Area   int

	// axes are the Cartesian axes spanned by the grid's first and second
	// coordinates.
	axes [2]int
}

var planes = map[string][2]int{
	"xy": {0, 1}, "xz": {0, 2}, "yz": {1, 2},
}

// NewGrid returns a grid on plane "xy", "xz" or "yz" covering
// [-extent, +extent] along both axes.
func NewGrid(plane string, extent float64, cells int) (*Grid, error) {
	g := &Grid{}
	if err := g.Init(plane, extent, cells); err != nil {
		return nil, err
	}
	return g, nil
}

// Init initializes a Grid instance.
func (g *Grid) Init(plane string, extent float64, cells int) error {
	axes, ok := planes[strings.ToLower(plane)]
	if !ok {
		return fmt.Errorf("geom: unknown plane '%s'", plane)
	} else if cells < 2 {
		return fmt.Errorf("geom: need at least 2 cells per side, got %d", cells)
	} else if !(extent > 0) {
		return fmt.Errorf("geom: extent must be positive, got %g", extent)
	}

	g.axes = axes
	g.Cells = cells
	g.Extent = extent
	g.Area = cells * cells
	return nil
}

// Coords returns the coordinates of a point from its grid index.
func (g *Grid) Coords(idx int) (i, j int) {
	return idx % g.Cells, idx / g.Cells
}

// Point returns the Cartesian position of a grid index.
func (g *Grid) Point(idx int) [3]float64 {
	i, j := g.Coords(idx)
	dx := 2 * g.Extent / float64(g.Cells-1)

	var p [3]float64
	p[g.axes[0]] = -g.Extent + float64(i)*dx
	p[g.axes[1]] = -g.Extent + float64(j)*dx
	return p
}

// Points returns every grid point farther than r from the origin. Points at
// or inside r are skipped.
func (g *Grid) Points(r float64) [][3]float64 {
	r2 := r * r
	var pts [][3]float64
	for idx := 0; idx < g.Area; idx++ {
		p := g.Point(idx)
		if p[0]*p[0]+p[1]*p[1]+p[2]*p[2] <= r2 {
			continue
		}
		pts = append(pts, p)
	}
	return pts
}
