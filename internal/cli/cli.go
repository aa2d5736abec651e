package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/maax3v3/escapetime/internal/color"
	"github.com/maax3v3/escapetime/internal/coloring"
	"github.com/maax3v3/escapetime/internal/escape"
	"github.com/maax3v3/escapetime/internal/imaging"
	"github.com/maax3v3/escapetime/internal/presets"
	"github.com/maax3v3/escapetime/internal/renderer"
)

// Config holds the parsed CLI arguments.
type Config struct {
	Kind          escape.Kind
	Width, Height int
	Start, End    complex128
	C             complex128
	Bailout       float64
	MaxIter       int
	Coloring      coloring.Strategy
	LockRatio     bool
	Annotate      bool
	Font          renderer.FontRenderer
	OutPath       string
}

// Params returns the render request described by the configuration.
func (c Config) Params() escape.Params {
	return escape.Params{
		Width:    c.Width,
		Height:   c.Height,
		Start:    c.Start,
		End:      c.End,
		Coloring: c.Coloring,
		Bailout:  c.Bailout,
		MaxIter:  c.MaxIter,
		C:        c.C,
	}
}

// Parse parses CLI arguments (without the program name) and returns a
// validated Config. Usage is written to stderr.
func Parse(args []string) (Config, error) {
	return parse(args, os.Stderr)
}

func parse(args []string, stderr io.Writer) (Config, error) {
	fs := flag.NewFlagSet("escapetime", flag.ContinueOnError)
	fs.SetOutput(stderr)

	kind := fs.String("fractal", "mandelbrot", "Fractal family: mandelbrot or julia")
	width := fs.Int("width", presets.DefaultWidth, "Image width in pixels")
	height := fs.Int("height", presets.DefaultHeight, "Image height in pixels")
	region := fs.String("region", "", "Named viewport ("+strings.Join(presets.RegionNames(), ", ")+")")
	start := fs.String("start", "", "Top-left corner as a complex number, e.g. -2.5+1.5i")
	end := fs.String("end", "", "Bottom-right corner as a complex number, e.g. 1.5-1.5i")
	c := fs.String("c", strconv.FormatComplex(presets.DefaultJuliaParameter, 'g', -1, 128), "Julia parameter")
	bailout := fs.Float64("bailout", escape.DefaultBailout, "Escape radius")
	maxIter := fs.Int("max-iter", escape.DefaultMaxIter, "Maximum iterations per pixel")
	coloringName := fs.String("coloring", "default", "Coloring preset ("+strings.Join(presets.ColoringNames(), ", ")+")")
	inside := fs.String("inside", "", "Hex color for points inside the set (with --bands or --palette)")
	bands := fs.String("bands", "", "Comma separated hex colors cycled by iteration count, e.g. #f00,#00f")
	palette := fs.String("palette", "", "Image whose center line is sampled into gradient stops (.png, .jpg, .webp, .bmp, .tif)")
	paletteStops := fs.Int("palette-stops", 8, "Number of colors sampled from --palette")
	lockRatio := fs.Bool("lock-ratio", true, "Widen the viewport so pixels are square")
	annotate := fs.Bool("annotate", false, "Append a legend and the viewport corners below the image")
	fontName := fs.String("font", "basic", "Annotation font ("+strings.Join(renderer.FontNames(), ", ")+")")
	outPath := fs.String("out", "", "Path to output image (required; .png, .jpg, .bmp, .tif)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: escapetime [options]\n\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExample:\n  escapetime --fractal=julia --c=-0.8+0.156i --width=800 --height=600 --coloring=gradient --out=julia.png\n")
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *outPath == "" {
		return Config{}, fmt.Errorf("--out is required")
	}
	if _, err := imaging.FormatFromPath(*outPath); err != nil {
		return Config{}, fmt.Errorf("--out: %w", err)
	}
	if *width <= 0 || *height <= 0 {
		return Config{}, fmt.Errorf("--width and --height must be positive, got %dx%d", *width, *height)
	}
	if *bailout <= 0 {
		return Config{}, fmt.Errorf("--bailout must be positive, got %f", *bailout)
	}
	if *maxIter <= 0 {
		return Config{}, fmt.Errorf("--max-iter must be positive, got %d", *maxIter)
	}

	k, err := escape.ParseKind(*kind)
	if err != nil {
		return Config{}, fmt.Errorf("--fractal: %w", err)
	}

	regionName := *region
	if regionName == "" {
		regionName = k.String()
	}
	r, err := presets.LookupRegion(regionName)
	if err != nil {
		return Config{}, fmt.Errorf("--region: %w", err)
	}
	s, e := r.Start, r.End
	if *start != "" || *end != "" {
		if *start == "" || *end == "" {
			return Config{}, fmt.Errorf("--start and --end must be given together")
		}
		if s, err = ParseComplex(*start); err != nil {
			return Config{}, fmt.Errorf("--start: %w", err)
		}
		if e, err = ParseComplex(*end); err != nil {
			return Config{}, fmt.Errorf("--end: %w", err)
		}
	}

	jc, err := ParseComplex(*c)
	if err != nil {
		return Config{}, fmt.Errorf("--c: %w", err)
	}

	strategy, err := presets.Coloring(*coloringName, *maxIter)
	if err != nil {
		return Config{}, fmt.Errorf("--coloring: %w", err)
	}
	switch {
	case *bands != "" && *palette != "":
		return Config{}, fmt.Errorf("--bands and --palette cannot be combined")
	case *bands != "":
		strategy, err = customModulo(*inside, *bands)
	case *palette != "":
		strategy, err = paletteGradient(*inside, *palette, *paletteStops)
	}
	if err != nil {
		return Config{}, err
	}

	font, err := renderer.ParseFont(*fontName)
	if err != nil {
		return Config{}, fmt.Errorf("--font: %w", err)
	}

	return Config{
		Kind:      k,
		Width:     *width,
		Height:    *height,
		Start:     s,
		End:       e,
		C:         jc,
		Bailout:   *bailout,
		MaxIter:   *maxIter,
		Coloring:  strategy,
		LockRatio: *lockRatio,
		Annotate:  *annotate,
		Font:      font,
		OutPath:   *outPath,
	}, nil
}

func insideColor(inside string) (color.RGB, error) {
	if inside == "" {
		return color.Black, nil
	}
	in, err := color.ParseHex(inside)
	if err != nil {
		return color.RGB{}, fmt.Errorf("--inside: %w", err)
	}
	return in, nil
}

func customModulo(inside, bands string) (coloring.Strategy, error) {
	in, err := insideColor(inside)
	if err != nil {
		return nil, err
	}
	list, err := color.ParseHexList(bands)
	if err != nil {
		return nil, fmt.Errorf("--bands: %w", err)
	}
	return coloring.Modulo{Inside: in, Bands: list}, nil
}

// paletteGradient builds a gradient from colors sampled across an image.
func paletteGradient(inside, path string, stops int) (coloring.Strategy, error) {
	if stops <= 0 {
		return nil, fmt.Errorf("--palette-stops must be positive, got %d", stops)
	}
	in, err := insideColor(inside)
	if err != nil {
		return nil, err
	}
	img, err := imaging.Load(path)
	if err != nil {
		return nil, fmt.Errorf("--palette: %w", err)
	}
	list := color.Sample(img, stops)
	if len(list) == 0 {
		return nil, fmt.Errorf("--palette: %s has no pixels", path)
	}
	return coloring.Gradient{Inside: in, Stops: list}, nil
}

// ParseComplex parses a complex number such as "-0.8+0.156i", "2" or
// "(1-1i)". A bare pair "re,im" is accepted too.
func ParseComplex(s string) (complex128, error) {
	s = strings.TrimSpace(s)
	if re, im, ok := strings.Cut(s, ","); ok {
		r, err := strconv.ParseFloat(strings.TrimSpace(re), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid complex number %q: %w", s, err)
		}
		i, err := strconv.ParseFloat(strings.TrimSpace(im), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid complex number %q: %w", s, err)
		}
		return complex(r, i), nil
	}
	z, err := strconv.ParseComplex(s, 128)
	if err != nil {
		return 0, fmt.Errorf("invalid complex number %q: %w", s, err)
	}
	return z, nil
}
