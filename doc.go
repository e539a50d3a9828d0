/*
Package nmie computes electromagnetic scattering by a sphere made of any
number of concentric, homogeneous layers illuminated by a plane wave.

A computation starts from an immutable Config:

	cfg, err := nmie.New(wavelength,
		nmie.TargetLayer(0.1, 1.5+0.01i),
		nmie.CoatingLayer(0.02, 2.0),
		nmie.AngleSweep(0, math.Pi, 181),
	)
	res, err := cfg.Compute()
	fmt.Println(res.Qext(), res.Qsca(), res.AsymmetryFactor())

Compute turns per-layer size parameters and indices into the multipole
coefficients an and bn with the Pena & Pal (2009) recursion, then derives
the efficiency factors, the amplitude functions S1 and S2 at every angle and
the scattering patterns. Result.Field expands the near and far field at
arbitrary points outside the sphere.

Changing a Config always produces a new one (Config.With), so a Result can
never be read against settings it was not computed for. Engine wraps the
same pipeline with setters for callers which prefer that style.

Errors are ErrInvalidConfiguration, ErrState and ErrNumericDivergence,
checked with errors.Is. Divergences carry a *DivergenceError naming the
layer, order and size parameter involved.
*/
package nmie
