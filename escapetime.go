// Package escapetime renders escape-time fractals (Mandelbrot and Julia
// sets) over a rectangle of the complex plane.
//
// Usage as a library:
//
//	opts := escapetime.DefaultOptions()
//	opts.Coloring = escapetime.Modulo{
//		Inside: escapetime.Black,
//		Bands:  []escapetime.RGB{{R: 255}, {B: 255}},
//	}
//	buf, _ := escapetime.Mandelbrot(opts)
//	escapetime.Save("mandelbrot.png", buf)
//
// Renders can also run in the background:
//
//	res := <-escapetime.RenderAsync(escapetime.KindJulia, opts)
package escapetime

import (
	"fmt"
	"image"
	"math"

	"github.com/maax3v3/escapetime/internal/color"
	"github.com/maax3v3/escapetime/internal/coloring"
	"github.com/maax3v3/escapetime/internal/escape"
	"github.com/maax3v3/escapetime/internal/imaging"
	"github.com/maax3v3/escapetime/internal/plane"
	"github.com/maax3v3/escapetime/internal/presets"
	"github.com/maax3v3/escapetime/internal/renderer"
	"github.com/maax3v3/escapetime/internal/viewport"
)

// Errors reported by the renderer. Test for them with errors.Is.
var (
	// ErrDomain reports a degenerate canvas or viewport.
	ErrDomain = plane.ErrDomain
	// ErrOutOfRange reports a pixel outside the buffer.
	ErrOutOfRange = plane.ErrOutOfRange
	// ErrInvalidParameter reports a bad bailout, iteration limit or coloring.
	ErrInvalidParameter = escape.ErrInvalidParameter
)

type (
	// RGB is an 8-bit color.
	RGB = color.RGB
	// Buffer is a rendered pixel grid together with its plane mapping.
	Buffer = plane.Buffer
	// Kind selects the fractal family.
	Kind = escape.Kind
	// Result is delivered by RenderAsync.
	Result = escape.Result

	// Coloring maps an iteration outcome to a color. It is implemented only
	// by the strategy types below.
	Coloring = coloring.Strategy
	// DefaultColoring asks for the built-in coloring of the fractal kind.
	DefaultColoring = coloring.Default
	// Modulo picks a band color by escape count modulo the number of bands.
	Modulo = coloring.Modulo
	// Shading interpolates linearly between two colors by escape count.
	Shading = coloring.Shading
	// Gradient blends through color stops by escape count.
	Gradient = coloring.Gradient
	// SmoothHue maps a continuous escape count onto the hue circle.
	SmoothHue = coloring.SmoothHue
)

// Fractal kinds.
const (
	KindMandelbrot = escape.KindMandelbrot
	KindJulia      = escape.KindJulia
)

// Basic colors.
var (
	Black = color.Black
	White = color.White
)

// Options configures a render.
type Options struct {
	// Width and Height are the canvas size in pixels.
	// Default: 320x240.
	Width, Height int

	// Start is the plane value at the top-left pixel; End lies one pixel
	// past the bottom-right corner.
	// Default: -2.5+1.5i .. 1.5-1.5i.
	Start, End complex128

	// C is the Julia set parameter. Ignored for the Mandelbrot set.
	// Default: -0.12+0.75i.
	C complex128

	// Bailout is the escape radius.
	// Default: 2.
	Bailout float64

	// MaxIter bounds the iterations per pixel.
	// Default: 256.
	MaxIter int

	// Coloring selects the coloring strategy. Nil or DefaultColoring uses
	// the built-in coloring of the fractal kind.
	Coloring Coloring
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	r, _ := presets.LookupRegion("mandelbrot")
	return Options{
		Width:    presets.DefaultWidth,
		Height:   presets.DefaultHeight,
		Start:    r.Start,
		End:      r.End,
		C:        presets.DefaultJuliaParameter,
		Bailout:  escape.DefaultBailout,
		MaxIter:  escape.DefaultMaxIter,
		Coloring: DefaultColoring{},
	}
}

func (o Options) params() escape.Params {
	s := o.Coloring
	if s == nil {
		s = DefaultColoring{}
	}
	return escape.Params{
		Width:    o.Width,
		Height:   o.Height,
		Start:    o.Start,
		End:      o.End,
		Coloring: s,
		Bailout:  o.Bailout,
		MaxIter:  o.MaxIter,
		C:        o.C,
	}
}

// ParseKind maps "mandelbrot" or "julia" onto a Kind.
func ParseKind(s string) (Kind, error) {
	return escape.ParseKind(s)
}

// ParseHexColor parses a hex color string like "#000", "#FF00FF".
func ParseHexColor(hex string) (RGB, error) {
	return color.ParseHex(hex)
}

// Mandelbrot renders the Mandelbrot set.
func Mandelbrot(opts Options) (*Buffer, error) {
	return escape.Mandelbrot(opts.params())
}

// Julia renders the Julia set for opts.C.
func Julia(opts Options) (*Buffer, error) {
	return escape.Julia(opts.params())
}

// Render renders the fractal of the given kind.
func Render(kind Kind, opts Options) (*Buffer, error) {
	return escape.Render(kind, opts.params())
}

// RenderAsync renders on a new goroutine and delivers the result on the
// returned channel.
func RenderAsync(kind Kind, opts Options) <-chan Result {
	return escape.Async(kind, opts.params())
}

// PixelToComplex returns the plane value at pixel (x, y) of the canvas
// described by opts.
func PixelToComplex(opts Options, x, y int) (complex128, error) {
	m, err := plane.NewMapper(opts.Width, opts.Height, opts.Start, opts.End)
	if err != nil {
		return 0, err
	}
	if !m.Contains(image.Pt(x, y)) {
		return 0, fmt.Errorf("%w: pixel (%d,%d) outside %dx%d", ErrOutOfRange, x, y, opts.Width, opts.Height)
	}
	return m.PixelToComplex(x, y), nil
}

// Normalize fits the selection spanned by c1 and c2 to a width x height
// canvas without distortion, growing whichever axis is too short. A
// selection with zero span on one axis first gets the span of one pixel of
// the other axis; a selection that is a single point is rejected.
func Normalize(c1, c2 complex128, width, height int) (complex128, complex128, error) {
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("%w: canvas %dx%d", ErrDomain, width, height)
	}
	pdx := math.Abs(real(c2)-real(c1)) / float64(width)
	pdy := math.Abs(imag(c2)-imag(c1)) / float64(height)
	if pdx == 0 && pdy == 0 {
		return 0, 0, fmt.Errorf("%w: selection %v is a single point", ErrDomain, c1)
	}
	c1, c2 = viewport.EnsureArea(c1, c2, max(pdx, pdy))
	return viewport.Normalize(c1, c2, width, height)
}

// Save writes the buffer to path in the format named by its extension
// (.png, .jpg, .bmp or .tif).
func Save(path string, buf *Buffer) error {
	return imaging.Save(path, buf.Image())
}

// SaveAnnotated writes the buffer with a legend of the coloring and a
// caption with the viewport corners appended below it.
func SaveAnnotated(path string, kind Kind, opts Options, buf *Buffer) error {
	p := opts.params()
	img := buf.Image()
	legend := renderer.Legend(escape.EffectiveColoring(kind, p.Coloring))
	annotated := renderer.Annotate(img, legend, renderer.Caption(p.Start, p.End),
		renderer.NewBasicFont(), renderer.ScaledConfig(img.Bounds().Dx()))
	return imaging.Save(path, annotated)
}
