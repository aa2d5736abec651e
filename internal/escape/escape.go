// Package escape renders the Mandelbrot and Julia escape-time fractals into
// a plane buffer.
package escape

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"strings"

	"github.com/maax3v3/escapetime/internal/color"
	"github.com/maax3v3/escapetime/internal/coloring"
	"github.com/maax3v3/escapetime/internal/plane"
)

// ErrInvalidParameter reports a render request with unusable parameters.
var ErrInvalidParameter = errors.New("invalid parameter")

// Kind selects the fractal family.
type Kind int

const (
	KindMandelbrot Kind = iota
	KindJulia
)

func (k Kind) String() string {
	switch k {
	case KindMandelbrot:
		return "mandelbrot"
	case KindJulia:
		return "julia"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps "mandelbrot" or "julia" onto a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mandelbrot", "m":
		return KindMandelbrot, nil
	case "julia", "j":
		return KindJulia, nil
	}
	return 0, fmt.Errorf("%w: unknown fractal %q", ErrInvalidParameter, s)
}

// Default iteration parameters.
const (
	DefaultBailout = 2.0
	DefaultMaxIter = 256
)

// Built-in colorings used when Params.Coloring is left unset.
var (
	MandelbrotColoring = coloring.Modulo{
		Inside: color.Black,
		Bands:  []color.RGB{color.White, color.Black},
	}
	JuliaColoring = coloring.Modulo{
		Inside: color.Black,
		Bands:  []color.RGB{color.Red, color.Blue},
	}
)

// Params is an immutable render request. Start lands on pixel (0,0) and End
// on the far corner of the canvas.
type Params struct {
	Width, Height int
	Start, End    complex128

	// Coloring may be nil or coloring.Default{} to use the built-in
	// coloring of the fractal family.
	Coloring coloring.Strategy

	Bailout float64
	MaxIter int

	// C is the constant added at every Julia step. Mandelbrot renders
	// ignore it.
	C complex128
}

// Validate checks the iteration parameters and that the viewport corners
// are finite. Canvas size and span are checked when the plane mapping is
// built.
func (p Params) Validate() error {
	if !(p.Bailout > 0) || math.IsInf(p.Bailout, 0) {
		return fmt.Errorf("%w: bailout must be positive, got %v", ErrInvalidParameter, p.Bailout)
	}
	if p.MaxIter <= 0 {
		return fmt.Errorf("%w: max iterations must be positive, got %d", ErrInvalidParameter, p.MaxIter)
	}
	if cmplx.IsNaN(p.C) || cmplx.IsInf(p.C) {
		return fmt.Errorf("%w: julia parameter %v", ErrInvalidParameter, p.C)
	}
	for _, z := range []complex128{p.Start, p.End} {
		if cmplx.IsNaN(z) || cmplx.IsInf(z) {
			return fmt.Errorf("%w: non-finite corner %v", ErrInvalidParameter, z)
		}
	}
	return nil
}

// Mandelbrot iterates z = z*z + c for every pixel sample c. The first step
// from z = 0 is folded in, so iteration starts at z = c with a count of one.
func Mandelbrot(p Params) (*plane.Buffer, error) {
	return run(KindMandelbrot, p, func(c complex128) (complex128, int, complex128) {
		return c, 1, c
	})
}

// Julia iterates z = z*z + p.C starting from each pixel sample.
func Julia(p Params) (*plane.Buffer, error) {
	return run(KindJulia, p, func(z0 complex128) (complex128, int, complex128) {
		return z0, 0, p.C
	})
}

// Render dispatches on kind.
func Render(kind Kind, p Params) (*plane.Buffer, error) {
	switch kind {
	case KindMandelbrot:
		return Mandelbrot(p)
	case KindJulia:
		return Julia(p)
	}
	return nil, fmt.Errorf("%w: unknown fractal %v", ErrInvalidParameter, kind)
}

// seedFunc gives the initial iterate, initial count and additive constant
// for a pixel sample.
type seedFunc func(sample complex128) (z complex128, i int, c complex128)

// EffectiveColoring returns s, or the built-in coloring of kind when s asks
// for the default.
func EffectiveColoring(kind Kind, s coloring.Strategy) coloring.Strategy {
	if !coloring.IsDefault(s) {
		return s
	}
	if kind == KindJulia {
		return JuliaColoring
	}
	return MandelbrotColoring
}

func run(kind Kind, p Params, seed seedFunc) (*plane.Buffer, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	colorize, err := coloring.Compile(EffectiveColoring(kind, p.Coloring))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParameter, err)
	}
	m, err := plane.NewMapper(p.Width, p.Height, p.Start, p.End)
	if err != nil {
		return nil, err
	}

	buf := plane.NewBuffer(m)
	for sample, px := range buf.Pixels() {
		z, i, c := seed(sample)
		z, i = iterate(z, c, i, p.Bailout, p.MaxIter)
		col := colorize(coloring.Outcome{
			Sample:     sample,
			Final:      z,
			MaxIter:    p.MaxIter,
			Iterations: i,
		})
		if err := buf.SetPixel(px.X, px.Y, col); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// iterate applies z = z*z + c until |z| reaches bailout or the count reaches
// maxIter.
func iterate(z, c complex128, i int, bailout float64, maxIter int) (complex128, int) {
	for cmplx.Abs(z) < bailout && i < maxIter {
		z = z*z + c
		i++
	}
	return z, i
}
