// Package presets maps user-facing names onto coloring strategies and
// viewports. It belongs to the front ends; the render core never looks
// anything up by name.
package presets

import (
	"fmt"
	"strings"

	"github.com/maax3v3/escapetime/internal/color"
	"github.com/maax3v3/escapetime/internal/coloring"
)

// Settings defaults shared by the front ends.
const (
	DefaultWidth  = 320
	DefaultHeight = 240
)

// DefaultJuliaParameter is the Julia constant used when none is given.
const DefaultJuliaParameter = -0.12 + 0.75i

var coloringNames = []string{"default", "modulo2", "modulo3", "shading", "gradient", "smooth"}

// ColoringNames lists the coloring presets in presentation order.
func ColoringNames() []string {
	return append([]string(nil), coloringNames...)
}

// Coloring returns the named coloring preset. maxIter bounds the shading
// preset.
func Coloring(name string, maxIter int) (coloring.Strategy, error) {
	switch normalize(name) {
	case "", "default":
		return coloring.Default{}, nil
	case "modulo2":
		return coloring.Modulo{
			Inside: color.Black,
			Bands:  []color.RGB{color.Red, color.Blue},
		}, nil
	case "modulo3":
		return coloring.Modulo{
			Inside: color.Black,
			Bands:  []color.RGB{color.Red, color.Green, color.Blue},
		}, nil
	case "shading", "simpleshading":
		return coloring.Shading{
			Inside:  color.White,
			Start:   color.White,
			Stop:    color.Black,
			MaxIter: maxIter,
		}, nil
	case "gradient":
		return coloring.Gradient{
			Inside: color.Black,
			Stops: []color.RGB{
				{0x00, 0x07, 0x64},
				{0x20, 0x6b, 0xcb},
				{0xed, 0xff, 0xff},
				{0xff, 0xaa, 0x00},
				{0x00, 0x02, 0x00},
			},
			Cycle: 64,
		}, nil
	case "smooth":
		return coloring.SmoothHue{
			Inside:     color.Black,
			Period:     48,
			Saturation: 0.85,
			Value:      1,
		}, nil
	}
	return nil, fmt.Errorf("unknown coloring %q (available: %s)", name, strings.Join(coloringNames, ", "))
}

// Region is a named viewport. Start is the top-left corner.
type Region struct {
	Name       string
	Start, End complex128
}

// rect builds a region with the imaginary axis pointing up the screen.
func rect(name string, xmin, xmax, ymin, ymax float64) Region {
	return Region{Name: name, Start: complex(xmin, ymax), End: complex(xmax, ymin)}
}

// Classic landmarks of the Mandelbrot set, plus whole-set views.
var regions = []Region{
	rect("mandelbrot", -2.5, 1.5, -1.5, 1.5),
	rect("julia", -2, 2, -1.5, 1.5),
	// Seahorse Valley – dense filaments and repeating seahorse curls
	rect("seahorse-valley", -0.8, -0.7, 0.05, 0.15),
	// Elephant Valley – large bulb with trunk-like tendrils
	rect("elephant-valley", 0.25, 0.35, -0.05, 0.05),
	rect("spiral-minibrot", -0.7435, -0.7420, 0.1310, 0.1325),
	rect("triple-spiral", -0.7480, -0.7450, 0.0950, 0.0980),
	rect("dragon-valley", -0.7400, -0.7350, 0.1800, 0.1850),
	// Minibrot on the antenna, near the tip of the real axis
	rect("antenna-minibrot", -1.7790, -1.7490, -0.0150, 0.0150),
}

// RegionNames lists the region presets in presentation order.
func RegionNames() []string {
	names := make([]string, len(regions))
	for i, r := range regions {
		names[i] = r.Name
	}
	return names
}

// LookupRegion returns the named region.
func LookupRegion(name string) (Region, error) {
	key := normalize(name)
	for _, r := range regions {
		if normalize(r.Name) == key {
			return r, nil
		}
	}
	return Region{}, fmt.Errorf("unknown region %q (available: %s)", name, strings.Join(RegionNames(), ", "))
}

func normalize(name string) string {
	r := strings.NewReplacer(" ", "", "-", "", "_", "")
	return r.Replace(strings.ToLower(strings.TrimSpace(name)))
}
