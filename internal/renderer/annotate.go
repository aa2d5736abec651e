// Package renderer lays out an exported fractal: the plane image on top, a
// legend of the coloring underneath and a caption with the viewport corners.
package renderer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strconv"

	mcol "github.com/maax3v3/escapetime/internal/color"
	"github.com/maax3v3/escapetime/internal/coloring"
)

// Config holds layout configuration for the annotation footer.
type Config struct {
	LegendPadding    int // vertical padding above and below the legend
	LegendCircleSize int // diameter of legend color circles
	LegendSpacing    int // horizontal spacing between legend items
	LegendMargin     int // left/right margin for the footer
	CaptionSize      int // approximate caption text height
}

// DefaultConfig returns sensible default layout configuration.
func DefaultConfig() Config {
	return Config{
		LegendPadding:    10,
		LegendCircleSize: 20,
		LegendSpacing:    10,
		LegendMargin:     10,
		CaptionSize:      7,
	}
}

// ScaledConfig returns a configuration sized for an image imgW pixels wide.
func ScaledConfig(imgW int) Config {
	cfg := DefaultConfig()
	if imgW > 1000 {
		cfg.LegendCircleSize = 50
		cfg.LegendSpacing = 25
		cfg.LegendPadding = 30
		cfg.LegendMargin = 30
		cfg.CaptionSize = 21
	} else if imgW > 500 {
		cfg.LegendCircleSize = 36
		cfg.LegendSpacing = 18
		cfg.LegendPadding = 24
		cfg.LegendMargin = 24
		cfg.CaptionSize = 14
	}
	return cfg
}

// LegendEntry is one swatch of the legend.
type LegendEntry struct {
	Label string
	Color mcol.RGB
}

// Legend describes the colors a strategy can produce. Strategies without a
// discrete palette return no entries.
func Legend(s coloring.Strategy) []LegendEntry {
	switch s := s.(type) {
	case coloring.Modulo:
		entries := make([]LegendEntry, 0, len(s.Bands)+1)
		for i, c := range s.Bands {
			entries = append(entries, LegendEntry{Label: strconv.Itoa(i), Color: c})
		}
		return append(entries, LegendEntry{Label: "in", Color: s.Inside})
	case coloring.Shading:
		return []LegendEntry{
			{Label: "0", Color: s.Start},
			{Label: "n", Color: s.Stop},
			{Label: "in", Color: s.Inside},
		}
	case coloring.Gradient:
		entries := make([]LegendEntry, 0, len(s.Stops)+1)
		for i, c := range s.Stops {
			entries = append(entries, LegendEntry{Label: strconv.Itoa(i), Color: c})
		}
		return append(entries, LegendEntry{Label: "in", Color: s.Inside})
	case coloring.SmoothHue:
		return []LegendEntry{{Label: "in", Color: s.Inside}}
	}
	return nil
}

// Caption formats a viewport as "re+imi .. re+imi".
func Caption(start, end complex128) string {
	return formatComplex(start) + " .. " + formatComplex(end)
}

func formatComplex(z complex128) string {
	return fmt.Sprintf("%.6g%+.6gi", real(z), imag(z))
}

// Annotate returns a copy of src with a footer holding the legend swatches
// and the caption. An empty legend and caption return a plain copy.
func Annotate(src image.Image, legend []LegendEntry, caption string, font FontRenderer, cfg Config) *image.RGBA {
	bounds := src.Bounds()
	srcW := bounds.Dx()
	srcH := bounds.Dy()

	legendH := calculateLegendHeight(len(legend), cfg, srcW)
	captionH := 0
	if caption != "" {
		_, th := font.MeasureString(caption, cfg.CaptionSize)
		captionH = th + cfg.LegendPadding
	}
	totalH := srcH + legendH + captionH

	out := image.NewRGBA(image.Rect(0, 0, srcW, totalH))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.RGBA{255, 255, 255, 255}), image.Point{}, draw.Src)
	draw.Draw(out, image.Rect(0, 0, srcW, srcH), src, bounds.Min, draw.Src)

	drawLegend(out, legend, font, cfg, srcW, srcH)

	if caption != "" {
		cy := srcH + legendH + captionH/2
		font.DrawString(out, caption, srcW/2, cy, color.Black, cfg.CaptionSize)
	}
	return out
}

func calculateLegendHeight(n int, cfg Config, imgW int) int {
	if n == 0 {
		return 0
	}
	itemsPerRow := legendItemsPerRow(cfg, imgW)
	numRows := (n + itemsPerRow - 1) / itemsPerRow
	rowHeight := cfg.LegendCircleSize + cfg.LegendSpacing
	return cfg.LegendPadding + numRows*rowHeight + cfg.LegendPadding
}

func legendItemsPerRow(cfg Config, imgW int) int {
	itemWidth := cfg.LegendCircleSize + cfg.LegendSpacing
	availableW := imgW - 2*cfg.LegendMargin
	itemsPerRow := availableW / itemWidth
	if itemsPerRow < 1 {
		itemsPerRow = 1
	}
	return itemsPerRow
}

func drawLegend(img *image.RGBA, legend []LegendEntry, font FontRenderer, cfg Config, imgW, drawingH int) {
	if len(legend) == 0 {
		return
	}

	separatorY := drawingH + cfg.LegendPadding/2
	for x := cfg.LegendMargin; x < imgW-cfg.LegendMargin; x++ {
		img.SetRGBA(x, separatorY, color.RGBA{200, 200, 200, 255})
	}

	itemWidth := cfg.LegendCircleSize + cfg.LegendSpacing
	availableW := imgW - 2*cfg.LegendMargin
	itemsPerRow := legendItemsPerRow(cfg, imgW)

	fontSize := cfg.LegendCircleSize * 2 / 3
	radius := cfg.LegendCircleSize / 2

	for i, entry := range legend {
		row := i / itemsPerRow
		col := i % itemsPerRow

		// Center items in each row
		rowItemCount := itemsPerRow
		remaining := len(legend) - row*itemsPerRow
		if remaining < itemsPerRow {
			rowItemCount = remaining
		}
		rowWidth := rowItemCount * itemWidth
		rowStartX := cfg.LegendMargin + (availableW-rowWidth)/2

		cx := rowStartX + col*itemWidth + radius
		cy := drawingH + cfg.LegendPadding + row*(cfg.LegendCircleSize+cfg.LegendSpacing) + radius

		drawFilledCircle(img, cx, cy, radius, entry.Color.ToStdColor())
		drawCircleBorder(img, cx, cy, radius, color.RGBA{100, 100, 100, 255})

		textColor := color.Color(color.Black)
		if !entry.Color.IsLight() {
			textColor = color.White
		}
		font.DrawString(img, entry.Label, cx, cy, textColor, fontSize)
	}
}

func drawFilledCircle(img *image.RGBA, cx, cy, radius int, col color.RGBA) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				px, py := cx+dx, cy+dy
				if image.Pt(px, py).In(img.Bounds()) {
					img.SetRGBA(px, py, col)
				}
			}
		}
	}
}

func drawCircleBorder(img *image.RGBA, cx, cy, radius int, col color.RGBA) {
	for angle := 0.0; angle < 2*math.Pi; angle += 0.01 {
		px := cx + int(math.Round(float64(radius)*math.Cos(angle)))
		py := cy + int(math.Round(float64(radius)*math.Sin(angle)))
		if image.Pt(px, py).In(img.Bounds()) {
			img.SetRGBA(px, py, col)
		}
	}
}
