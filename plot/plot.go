// Package plot draws spectra, scattering patterns and field profiles with
// matplotlib. Figures are queued as a python script; nothing runs until
// Execute is called, so a single python process renders every figure.
package plot

import (
	"fmt"
	"math"
	"math/cmplx"

	plt "github.com/phil-mansfield/pyplot"

	"github.com/phil-mansfield/nmie"
)

var (
	extColor = "k"
	scaColor = "b"
	absColor = "r"
	bkColor  = "g"
)

// Reset discards every queued figure.
func Reset() { plt.Reset() }

// Execute renders every queued figure.
func Execute() { plt.Execute() }

// Spectrum queues a plot of Qext (black), Qsca (blue), Qabs (red) and Qbk
// (green) against the swept variable and saves it to fname.
func Spectrum(rows []nmie.SpectrumRow, sp bool, fname string) {
	cols := spectrumColumns(rows)

	plt.Figure()
	plt.Plot(cols[0], cols[1], extColor, plt.LW(2))
	plt.Plot(cols[0], cols[2], scaColor, plt.LW(2))
	plt.Plot(cols[0], cols[3], absColor, plt.LW(2))
	plt.Plot(cols[0], cols[4], bkColor, plt.LW(2))

	if sp {
		plt.XLabel(`$x = 2\pi R/\lambda$`, plt.FontSize(16))
	} else {
		plt.XLabel(`$\lambda$`, plt.FontSize(16))
	}
	plt.YLabel(`$Q$`, plt.FontSize(16))
	plt.Title(`$Q_{\rm ext}$ (k), $Q_{\rm sca}$ (b), $Q_{\rm abs}$ (r), $Q_{\rm bk}$ (g)`)
	plt.Grid(plt.Axis("y"))
	plt.Grid(plt.Axis("x"), plt.Which("both"))
	plt.SaveFig(fname)
}

// Pattern queues a log plot of the E-plane (blue), H-plane (red) and
// unpolarized (black) scattering patterns in size-parameter units.
func Pattern(res *nmie.Result, fname string) error {
	thetas, ek, hk, un, err := patternColumns(res)
	if err != nil {
		return err
	}

	plt.Figure()
	plt.Plot(thetas, ek, scaColor, plt.LW(2))
	plt.Plot(thetas, hk, absColor, plt.LW(2))
	plt.Plot(thetas, un, extColor, plt.LW(2))

	plt.XLabel(`$\theta$ [deg]`, plt.FontSize(16))
	plt.YLabel(`$d\sigma/d\Omega$ $[k^{-2}]$`, plt.FontSize(16))
	plt.Title(fmt.Sprintf(`$x$ = %.4g: $E$-plane (b), $H$-plane (r)`, res.SizeParameter()))
	plt.YScale("log")
	plt.XLim(thetas[0], thetas[len(thetas)-1])
	plt.Grid(plt.Axis("y"), plt.Which("both"))
	plt.SaveFig(fname)
	return nil
}

// Field queues a plot of |E|^2 against the distance of each point from the
// origin.
func Field(fr *nmie.FieldResult, fname string) error {
	rs, intensity := fieldColumns(fr)
	if len(rs) == 0 {
		return fmt.Errorf("plot: no field points")
	}

	plt.Figure()
	plt.Plot(rs, intensity, "ok")
	plt.XLabel(`$|r|$`, plt.FontSize(16))
	plt.YLabel(`$|E|^2$`, plt.FontSize(16))
	plt.Grid(plt.Axis("y"))
	plt.SaveFig(fname)
	return nil
}

func spectrumColumns(rows []nmie.SpectrumRow) [5][]float64 {
	var cols [5][]float64
	for j := range cols {
		cols[j] = make([]float64, len(rows))
		for i := range rows {
			cols[j][i] = rows[i][j]
		}
	}
	return cols
}

func patternColumns(res *nmie.Result) (thetas, ek, hk, un []float64, err error) {
	thetas = res.Angles()
	if len(thetas) == 0 {
		return nil, nil, nil, nil, fmt.Errorf("plot: result has no angles")
	}
	for i := range thetas {
		thetas[i] *= 180 / math.Pi
	}
	return thetas, res.PatternEkSP(), res.PatternHkSP(), res.PatternUnpolarizedSP(), nil
}

func fieldColumns(fr *nmie.FieldResult) (rs, intensity []float64) {
	pts, es := fr.Points(), fr.E()
	rs, intensity = make([]float64, len(pts)), make([]float64, len(pts))
	for i, p := range pts {
		rs[i] = math.Sqrt(p[0]*p[0] + p[1]*p[1] + p[2]*p[2])
		for _, c := range es[i] {
			a := cmplx.Abs(c)
			intensity[i] += a * a
		}
	}
	return rs, intensity
}
