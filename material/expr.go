package material

import (
	"fmt"
	"math"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// WavelengthVar is the name under which expressions see the wavelength.
const WavelengthVar = "wl"

// Expr is a material whose real and imaginary index are expressions of the
// wavelength, e.g. a Sellmeier or Cauchy formula:
//
//	sqrt(1 + 1.03961212*wl^2/(wl^2 - 0.00600069867))
//
// Besides expr's builtins, sqrt, exp, log, pow, sin and cos are available.
type Expr struct {
	re, im       *vm.Program
	reSrc, imSrc string
}

// NewExpr compiles the two expressions. An empty imaginary expression means
// a lossless material.
func NewExpr(re, im string) (*Expr, error) {
	if re == "" {
		return nil, fmt.Errorf("%w: empty index expression", ErrMaterial)
	}
	if im == "" {
		im = "0"
	}

	e := &Expr{reSrc: re, imSrc: im}
	var err error
	if e.re, err = compile(re); err != nil {
		return nil, err
	}
	if e.im, err = compile(im); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Expr) Index(wavelength float64) (complex128, error) {
	env := map[string]any{WavelengthVar: wavelength}
	re, err := run(e.re, e.reSrc, env)
	if err != nil {
		return 0, err
	}
	im, err := run(e.im, e.imSrc, env)
	if err != nil {
		return 0, err
	}
	return complex(re, im), nil
}

func (e *Expr) String() string { return fmt.Sprintf("(%s) + i(%s)", e.reSrc, e.imSrc) }

func compile(src string) (*vm.Program, error) {
	options := []expr.Option{expr.Env(map[string]any{WavelengthVar: 0.0})}
	for name, fn := range functions {
		options = append(options, expr.Function(name, fn))
	}
	program, err := expr.Compile(src, options...)
	if err != nil {
		return nil, fmt.Errorf("%w: compiling %q: %w", ErrMaterial, src, err)
	}
	return program, nil
}

func run(program *vm.Program, src string, env map[string]any) (float64, error) {
	out, err := expr.Run(program, env)
	if err != nil {
		return 0, fmt.Errorf("%w: evaluating %q: %w", ErrMaterial, src, err)
	}

	v, err := toFloat(out)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", src, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf(
			"%w: %q is %g at %s = %g", ErrMaterial, src, v,
			WavelengthVar, env[WavelengthVar],
		)
	}
	return v, nil
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	}
	return 0, fmt.Errorf("%w: %v is %T, not a number", ErrMaterial, v, v)
}

func unary(f func(float64) float64) func(params ...any) (any, error) {
	return func(params ...any) (any, error) {
		if len(params) != 1 {
			return nil, fmt.Errorf("%w: want 1 argument, got %d", ErrMaterial, len(params))
		}
		x, err := toFloat(params[0])
		if err != nil {
			return nil, err
		}
		return f(x), nil
	}
}

func pow(params ...any) (any, error) {
	if len(params) != 2 {
		return nil, fmt.Errorf("%w: want 2 arguments, got %d", ErrMaterial, len(params))
	}
	x, err := toFloat(params[0])
	if err != nil {
		return nil, err
	}
	y, err := toFloat(params[1])
	if err != nil {
		return nil, err
	}
	return math.Pow(x, y), nil
}

var functions = map[string]func(params ...any) (any, error){
	"sqrt": unary(math.Sqrt),
	"exp":  unary(math.Exp),
	"log":  unary(math.Log),
	"sin":  unary(math.Sin),
	"cos":  unary(math.Cos),
	"pow":  pow,
}
