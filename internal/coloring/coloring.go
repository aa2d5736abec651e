// Package coloring turns the outcome of an escape-time iteration into a
// pixel color.
//
// The set of strategies is closed: Default, Modulo, Shading, Gradient and
// SmoothHue. A strategy is compiled once per render with Compile and the
// resulting Func is called for every pixel.
package coloring

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/maax3v3/escapetime/internal/color"
)

// ErrInvalid reports a strategy whose parameters cannot produce colors.
var ErrInvalid = errors.New("invalid coloring")

// Outcome is what a strategy sees of one pixel's iteration.
type Outcome struct {
	Sample     complex128 // plane location of the pixel
	Final      complex128 // last iterate computed
	MaxIter    int
	Iterations int
}

// Escaped reports whether the iterate left the bailout radius before the
// iteration limit was reached.
func (o Outcome) Escaped() bool { return o.Iterations < o.MaxIter }

// Func maps an iteration outcome to a color.
type Func func(Outcome) color.RGB

// Strategy is one of the coloring policies defined in this package.
type Strategy interface {
	compile() (Func, error)
}

// Default asks the evaluator to use its built-in coloring.
type Default struct{}

// Modulo picks Bands[iterations mod len(Bands)] for escaped points and
// Inside for points that never escaped.
type Modulo struct {
	Inside color.RGB
	Bands  []color.RGB
}

// Shading interpolates linearly from Start to Stop as the iteration count
// grows towards MaxIter, truncating each channel. MaxIter of zero uses the
// limit of the render.
type Shading struct {
	Inside      color.RGB
	Start, Stop color.RGB
	MaxIter     int
}

// Gradient spreads Stops evenly over [0, 1] and blends neighbours in HCL
// space. The position of an escaped point is iterations/MaxIter, or
// (iterations mod Cycle)/Cycle when Cycle is positive.
type Gradient struct {
	Inside color.RGB
	Stops  []color.RGB
	Cycle  int
}

// SmoothHue derives a continuous escape count from the final iterate and
// walks the hue circle once every Period iterations.
type SmoothHue struct {
	Inside     color.RGB
	Period     float64
	Saturation float64
	Value      float64
}

// IsDefault reports whether s requests the evaluator's built-in coloring.
func IsDefault(s Strategy) bool {
	switch s.(type) {
	case nil, Default, *Default:
		return true
	}
	return false
}

// Compile validates s and returns its per-pixel function. Pointers to
// strategies are accepted; a nil pointer is invalid.
func Compile(s Strategy) (Func, error) {
	s = deref(s)
	if s == nil {
		return nil, fmt.Errorf("%w: no strategy", ErrInvalid)
	}
	return s.compile()
}

// deref returns the value behind a pointer strategy, or nil for a nil
// pointer.
func deref(s Strategy) Strategy {
	switch v := s.(type) {
	case *Default:
		if v != nil {
			return *v
		}
	case *Modulo:
		if v != nil {
			return *v
		}
	case *Shading:
		if v != nil {
			return *v
		}
	case *Gradient:
		if v != nil {
			return *v
		}
	case *SmoothHue:
		if v != nil {
			return *v
		}
	default:
		return s
	}
	return nil
}

func (Default) compile() (Func, error) {
	return nil, fmt.Errorf("%w: default coloring has no function of its own", ErrInvalid)
}

func (s Modulo) compile() (Func, error) {
	if len(s.Bands) == 0 {
		return nil, fmt.Errorf("%w: modulo coloring needs at least one band", ErrInvalid)
	}
	bands := append([]color.RGB(nil), s.Bands...)
	n := len(bands)
	inside := s.Inside
	return func(o Outcome) color.RGB {
		if !o.Escaped() {
			return inside
		}
		return bands[o.Iterations%n]
	}, nil
}

func (s Shading) compile() (Func, error) {
	if s.MaxIter < 0 {
		return nil, fmt.Errorf("%w: shading limit %d", ErrInvalid, s.MaxIter)
	}
	start := [3]float64{float64(s.Start.R), float64(s.Start.G), float64(s.Start.B)}
	stop := [3]float64{float64(s.Stop.R), float64(s.Stop.G), float64(s.Stop.B)}
	fixed := s.MaxIter
	inside := s.Inside
	return func(o Outcome) color.RGB {
		if !o.Escaped() {
			return inside
		}
		limit := fixed
		if limit == 0 {
			limit = o.MaxIter
		}
		var ch [3]uint8
		for i := range ch {
			delta := (stop[i] - start[i]) / float64(limit)
			ch[i] = clampChannel(start[i] + float64(o.Iterations)*delta)
		}
		return color.RGB{R: ch[0], G: ch[1], B: ch[2]}
	}, nil
}

func (s Gradient) compile() (Func, error) {
	if len(s.Stops) == 0 {
		return nil, fmt.Errorf("%w: gradient needs at least one stop", ErrInvalid)
	}
	if s.Cycle < 0 {
		return nil, fmt.Errorf("%w: gradient cycle %d", ErrInvalid, s.Cycle)
	}
	stops := make([]colorful.Color, len(s.Stops))
	for i, c := range s.Stops {
		stops[i] = c.Colorful()
	}
	inside := s.Inside
	cycle := s.Cycle
	return func(o Outcome) color.RGB {
		if !o.Escaped() {
			return inside
		}
		var t float64
		if cycle > 0 {
			t = float64(o.Iterations%cycle) / float64(cycle)
		} else {
			t = float64(o.Iterations) / float64(o.MaxIter)
		}
		return color.FromColorful(blendStops(stops, t))
	}, nil
}

func (s SmoothHue) compile() (Func, error) {
	if s.Period <= 0 {
		return nil, fmt.Errorf("%w: hue period %v", ErrInvalid, s.Period)
	}
	if s.Saturation < 0 || s.Saturation > 1 || s.Value < 0 || s.Value > 1 {
		return nil, fmt.Errorf("%w: saturation %v and value %v must be in [0,1]", ErrInvalid, s.Saturation, s.Value)
	}
	p := s
	return func(o Outcome) color.RGB {
		if !o.Escaped() {
			return p.Inside
		}
		mu := smoothCount(o)
		hue := math.Mod(mu/p.Period, 1)
		if hue < 0 {
			hue++
		}
		return color.FromColorful(colorful.Hsv(hue*360, p.Saturation, p.Value))
	}, nil
}

// smoothCount is the renormalized escape count i + 1 - log2(log|z|). It
// falls back to the integer count when |z| <= 1.
func smoothCount(o Outcome) float64 {
	mod := cmplx.Abs(o.Final)
	if mod <= 1 || math.IsInf(mod, 0) || math.IsNaN(mod) {
		return float64(o.Iterations)
	}
	return float64(o.Iterations) + 1 - math.Log2(math.Log(mod))
}

func blendStops(stops []colorful.Color, t float64) colorful.Color {
	if len(stops) == 1 || t <= 0 {
		return stops[0]
	}
	if t >= 1 {
		return stops[len(stops)-1]
	}
	pos := t * float64(len(stops)-1)
	i := int(pos)
	return stops[i].BlendHcl(stops[i+1], pos-float64(i))
}

// clampChannel truncates v towards zero into a color channel.
func clampChannel(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}
