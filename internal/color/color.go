package color

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB represents an opaque color with 8-bit components.
type RGB struct {
	R, G, B uint8
}

// Common colors used by the built-in coloring presets.
var (
	Black = RGB{0, 0, 0}
	White = RGB{255, 255, 255}
	Red   = RGB{255, 0, 0}
	Green = RGB{0, 255, 0}
	Blue  = RGB{0, 0, 255}
)

// FromStdColor converts a standard library color to RGB, dropping alpha.
func FromStdColor(c color.Color) RGB {
	r, g, b, _ := c.RGBA()
	return RGB{
		R: uint8(r >> 8),
		G: uint8(g >> 8),
		B: uint8(b >> 8),
	}
}

// ToStdColor converts RGB to an opaque standard library color.
func (c RGB) ToStdColor() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// FromColorful converts a go-colorful color, clamping it into the RGB gamut first.
func FromColorful(c colorful.Color) RGB {
	r, g, b := c.Clamped().RGB255()
	return RGB{R: r, G: g, B: b}
}

// Colorful converts c into a go-colorful color for blending in other color spaces.
func (c RGB) Colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

// Sample picks n colors evenly spaced along the horizontal center line of
// img, left to right, so a strip of color swatches becomes a palette. n is
// capped at the image width. An empty image yields nil.
func Sample(img image.Image, n int) []RGB {
	b := img.Bounds()
	n = min(n, b.Dx())
	if n <= 0 || b.Empty() {
		return nil
	}
	y := b.Min.Y + b.Dy()/2
	if n == 1 {
		return []RGB{FromStdColor(img.At(b.Min.X+b.Dx()/2, y))}
	}
	out := make([]RGB, n)
	for i := range out {
		x := b.Min.X + i*(b.Dx()-1)/(n-1)
		out[i] = FromStdColor(img.At(x, y))
	}
	return out
}

// Hex returns the color formatted as "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseHex parses a hex color string like "#000", "#000000", "#FF00FF".
func ParseHex(s string) (RGB, error) {
	s = strings.TrimPrefix(s, "#")
	var r, g, b uint8
	switch len(s) {
	case 3:
		_, err := fmt.Sscanf(s, "%1x%1x%1x", &r, &g, &b)
		if err != nil {
			return RGB{}, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
		r = r*16 + r
		g = g*16 + g
		b = b*16 + b
	case 6:
		_, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b)
		if err != nil {
			return RGB{}, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
	default:
		return RGB{}, fmt.Errorf("invalid hex color %q: must be 3 or 6 hex digits", s)
	}
	return RGB{R: r, G: g, B: b}, nil
}

// ParseHexList parses a comma separated list of hex colors.
func ParseHexList(s string) ([]RGB, error) {
	var out []RGB
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		c, err := ParseHex(part)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty color list %q", s)
	}
	return out, nil
}

// IsLight returns true if the color is perceptually light (luminance > 0.5).
func (c RGB) IsLight() bool {
	// Relative luminance formula
	rLin := srgbToLinear(float64(c.R) / 255.0)
	gLin := srgbToLinear(float64(c.G) / 255.0)
	bLin := srgbToLinear(float64(c.B) / 255.0)
	luminance := 0.2126*rLin + 0.7152*gLin + 0.0722*bLin
	return luminance > 0.5
}

func srgbToLinear(v float64) float64 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}
