package explorer

import (
	"github.com/maax3v3/escapetime/internal/escape"
	"github.com/maax3v3/escapetime/internal/presets"
	"github.com/maax3v3/escapetime/internal/viewport"
)

// View is everything that determines a frame apart from the canvas size.
type View struct {
	Kind     escape.Kind
	Start    complex128
	End      complex128
	C        complex128
	Coloring string
	Bailout  float64
	MaxIter  int
}

// DefaultView shows the whole set of the given kind.
func DefaultView(kind escape.Kind) View {
	v := View{
		Kind:     kind,
		C:        presets.DefaultJuliaParameter,
		Coloring: "default",
		Bailout:  escape.DefaultBailout,
		MaxIter:  escape.DefaultMaxIter,
	}
	return v.Home()
}

// Home returns v moved back to the whole-set region of its kind.
func (v View) Home() View {
	if r, err := presets.LookupRegion(v.Kind.String()); err == nil {
		v.Start, v.End = r.Start, r.End
	}
	return v
}

// Params builds the render parameters for a width x height canvas.
func (v View) Params(width, height int) (escape.Params, error) {
	s, err := presets.Coloring(v.Coloring, v.MaxIter)
	if err != nil {
		return escape.Params{}, err
	}
	return escape.Params{
		Width:    width,
		Height:   height,
		Start:    v.Start,
		End:      v.End,
		Coloring: s,
		Bailout:  v.Bailout,
		MaxIter:  v.MaxIter,
		C:        v.C,
	}, nil
}

// Panned moves the view by fractions of its own width and height. Positive
// fx moves right, positive fy moves down the screen.
func (v View) Panned(fx, fy float64) View {
	span := v.End - v.Start
	v.Start, v.End = viewport.Pan(v.Start, v.End, complex(fx*real(span), fy*imag(span)))
	return v
}

// Zoomed scales the view about center; factors above one zoom in.
func (v View) Zoomed(center complex128, factor float64) (View, error) {
	s, e, err := viewport.Zoom(v.Start, v.End, center, factor)
	if err != nil {
		return v, err
	}
	v.Start, v.End = s, e
	return v, nil
}

// NextColoring cycles through the coloring presets.
func (v View) NextColoring() View {
	names := presets.ColoringNames()
	next := 0
	for i, n := range names {
		if n == v.Coloring {
			next = (i + 1) % len(names)
			break
		}
	}
	v.Coloring = names[next]
	return v
}
