package interpolate

import (
	"fmt"
	"sort"
)

// searcher finds the interval containing a point in either an explicit
// sorted table or a uniform grid.
type searcher struct {
	xs   []float64
	incr bool

	uniform bool
	x0, dx  float64
	n       int
}

func (s *searcher) init(xs []float64, incr bool) {
	s.xs = append([]float64(nil), xs...)
	s.incr = incr
	s.n = len(xs)
}

func (s *searcher) unifInit(x0, dx float64, n int) {
	s.uniform = true
	s.x0, s.dx, s.n = x0, dx, n
	s.incr = dx > 0
}

func (s *searcher) val(i int) float64 {
	if s.uniform {
		return s.x0 + float64(i)*s.dx
	}
	return s.xs[i]
}

func (s *searcher) bounds() (lo, hi float64) {
	a, b := s.val(0), s.val(s.n-1)
	if a > b {
		return b, a
	}
	return a, b
}

// search returns the index i of the interval [x_i, x_{i+1}] containing x.
// It panics if x is outside the table.
func (s *searcher) search(x float64) int {
	lo, hi := s.bounds()
	if !(x >= lo && x <= hi) {
		panic(fmt.Sprintf("point %g is outside the table range [%g, %g]", x, lo, hi))
	}

	var i int
	if s.uniform {
		i = int((x - s.x0) / s.dx)
	} else if s.incr {
		i = sort.SearchFloat64s(s.xs, x) - 1
	} else {
		i = sort.Search(s.n, func(j int) bool { return s.xs[j] <= x }) - 1
	}

	if i < 0 {
		i = 0
	} else if i > s.n-2 {
		i = s.n - 2
	}
	return i
}
