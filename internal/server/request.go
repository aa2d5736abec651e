package server

import (
	"fmt"
	"image"
	"net/url"
	"strconv"

	"github.com/maax3v3/escapetime/internal/cli"
	"github.com/maax3v3/escapetime/internal/escape"
	"github.com/maax3v3/escapetime/internal/imaging"
	"github.com/maax3v3/escapetime/internal/plane"
	"github.com/maax3v3/escapetime/internal/presets"
	"github.com/maax3v3/escapetime/internal/viewport"
)

// Complex is the JSON form of a complex number.
type Complex struct {
	Re float64 `json:"re"`
	Im float64 `json:"im"`
}

func toComplex(z complex128) Complex { return Complex{Re: real(z), Im: imag(z)} }
func (c Complex) value() complex128 { return complex(c.Re, c.Im) }

// RenderRequest describes one render over the websocket or as decoded from
// a query string. Zero fields take the preset defaults.
type RenderRequest struct {
	Fractal   string   `json:"fractal"`
	Width     int      `json:"width"`
	Height    int      `json:"height"`
	Region    string   `json:"region,omitempty"`
	Start     *Complex `json:"start,omitempty"`
	End       *Complex `json:"end,omitempty"`
	C         *Complex `json:"c,omitempty"`
	Bailout   float64  `json:"bailout,omitempty"`
	MaxIter   int      `json:"max_iter,omitempty"`
	Coloring  string   `json:"coloring,omitempty"`
	Format    string   `json:"format,omitempty"`
	LockRatio bool     `json:"lock_ratio,omitempty"`
	Annotate  bool     `json:"annotate,omitempty"`
}

// render is a fully resolved RenderRequest.
type render struct {
	kind     escape.Kind
	params   escape.Params
	format   imaging.Format
	annotate bool
}

func (req RenderRequest) resolve(maxPixels int) (render, error) {
	var out render

	fractal := req.Fractal
	if fractal == "" {
		fractal = "mandelbrot"
	}
	kind, err := escape.ParseKind(fractal)
	if err != nil {
		return out, err
	}

	p := escape.Params{
		Width:   req.Width,
		Height:  req.Height,
		Bailout: req.Bailout,
		MaxIter: req.MaxIter,
		C:       presets.DefaultJuliaParameter,
	}
	if p.Width == 0 {
		p.Width = presets.DefaultWidth
	}
	if p.Height == 0 {
		p.Height = presets.DefaultHeight
	}
	if p.Width < 0 || p.Height < 0 || p.Width > maxPixels/p.Height {
		return out, fmt.Errorf("%w: canvas %dx%d exceeds the %d pixel limit", plane.ErrDomain, p.Width, p.Height, maxPixels)
	}
	if p.Bailout == 0 {
		p.Bailout = escape.DefaultBailout
	}
	if p.MaxIter == 0 {
		p.MaxIter = escape.DefaultMaxIter
	}
	if req.C != nil {
		p.C = req.C.value()
	}

	regionName := req.Region
	if regionName == "" {
		regionName = kind.String()
	}
	region, err := presets.LookupRegion(regionName)
	if err != nil {
		return out, fmt.Errorf("%w: %w", escape.ErrInvalidParameter, err)
	}
	p.Start, p.End = region.Start, region.End
	if req.Start != nil {
		p.Start = req.Start.value()
	}
	if req.End != nil {
		p.End = req.End.value()
	}
	if req.LockRatio {
		if p.Start, p.End, err = viewport.Normalize(p.Start, p.End, p.Width, p.Height); err != nil {
			return out, err
		}
	}

	if p.Coloring, err = presets.Coloring(req.Coloring, p.MaxIter); err != nil {
		return out, fmt.Errorf("%w: %w", escape.ErrInvalidParameter, err)
	}

	out.format = imaging.FormatPNG
	if req.Format != "" {
		if out.format, err = imaging.ParseFormat(req.Format); err != nil {
			return out, fmt.Errorf("%w: %w", escape.ErrInvalidParameter, err)
		}
	}

	out.kind = kind
	out.params = p
	out.annotate = req.Annotate
	return out, nil
}

// renderRequestFromQuery decodes the query string form of a RenderRequest.
// Complex values use the CLI syntax, e.g. start=-2.5+1.5i.
func renderRequestFromQuery(q url.Values) (RenderRequest, error) {
	var req RenderRequest
	var err error

	req.Region = q.Get("region")
	req.Coloring = q.Get("coloring")
	req.Format = q.Get("format")
	if req.Width, err = intParam(q, "width"); err != nil {
		return req, err
	}
	if req.Height, err = intParam(q, "height"); err != nil {
		return req, err
	}
	if req.MaxIter, err = intParam(q, "max_iter"); err != nil {
		return req, err
	}
	if v := q.Get("bailout"); v != "" {
		if req.Bailout, err = strconv.ParseFloat(v, 64); err != nil {
			return req, fmt.Errorf("%w: bailout: %w", escape.ErrInvalidParameter, err)
		}
	}
	if req.Start, err = complexParam(q, "start"); err != nil {
		return req, err
	}
	if req.End, err = complexParam(q, "end"); err != nil {
		return req, err
	}
	if req.C, err = complexParam(q, "c"); err != nil {
		return req, err
	}
	if req.LockRatio, err = boolParam(q, "lock_ratio"); err != nil {
		return req, err
	}
	if req.Annotate, err = boolParam(q, "annotate"); err != nil {
		return req, err
	}
	return req, nil
}

func intParam(q url.Values, name string) (int, error) {
	v := q.Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", escape.ErrInvalidParameter, name, err)
	}
	return n, nil
}

func boolParam(q url.Values, name string) (bool, error) {
	v := q.Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %w", escape.ErrInvalidParameter, name, err)
	}
	return b, nil
}

func complexParam(q url.Values, name string) (*Complex, error) {
	v := q.Get(name)
	if v == "" {
		return nil, nil
	}
	z, err := cli.ParseComplex(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", escape.ErrInvalidParameter, name, err)
	}
	c := toComplex(z)
	return &c, nil
}

func selectViewport(req SelectRequest) (complex128, complex128, error) {
	m, err := plane.NewMapper(req.Width, req.Height, req.Start.value(), req.End.value())
	if err != nil {
		return 0, 0, err
	}
	return viewport.Select(m, image.Pt(req.From.X, req.From.Y), image.Pt(req.To.X, req.To.Y))
}
