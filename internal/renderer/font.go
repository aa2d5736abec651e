package renderer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"unicode/utf8"
)

// FontRenderer is the interface for drawing text onto images.
// Implementations can be swapped (e.g., bitmap font, TTF font).
type FontRenderer interface {
	// DrawString draws the given text centered at (cx, cy) on the image
	// with the specified color and font size (approximate height in pixels).
	DrawString(img *image.RGBA, text string, cx, cy int, col color.Color, size int)

	// MeasureString returns the approximate width and height of the text
	// at the given font size.
	MeasureString(text string, size int) (width, height int)
}

// BitmapFont draws a 5x7 pixel font scaled up by whole pixels, so unlike
// BasicFont it follows the requested size. It covers the digits and the
// characters of printed complex numbers; any other character leaves a
// blank cell.
type BitmapFont struct{}

// NewBitmapFont creates a new BitmapFont.
func NewBitmapFont() *BitmapFont {
	return &BitmapFont{}
}

// glyphs are 5x7 pixel bitmaps.
var glyphs = map[rune][7]uint8{
	'0': {0x0E, 0x11, 0x13, 0x15, 0x19, 0x11, 0x0E},
	'1': {0x04, 0x0C, 0x04, 0x04, 0x04, 0x04, 0x0E},
	'2': {0x0E, 0x11, 0x01, 0x06, 0x08, 0x10, 0x1F},
	'3': {0x0E, 0x11, 0x01, 0x06, 0x01, 0x11, 0x0E},
	'4': {0x02, 0x06, 0x0A, 0x12, 0x1F, 0x02, 0x02},
	'5': {0x1F, 0x10, 0x1E, 0x01, 0x01, 0x11, 0x0E},
	'6': {0x06, 0x08, 0x10, 0x1E, 0x11, 0x11, 0x0E},
	'7': {0x1F, 0x01, 0x02, 0x04, 0x08, 0x08, 0x08},
	'8': {0x0E, 0x11, 0x11, 0x0E, 0x11, 0x11, 0x0E},
	'9': {0x0E, 0x11, 0x11, 0x0F, 0x01, 0x02, 0x0C},
	'-': {0x00, 0x00, 0x00, 0x1F, 0x00, 0x00, 0x00},
	'+': {0x00, 0x04, 0x04, 0x1F, 0x04, 0x04, 0x00},
	'.': {0x00, 0x00, 0x00, 0x00, 0x00, 0x0C, 0x0C},
	',': {0x00, 0x00, 0x00, 0x00, 0x0C, 0x04, 0x08},
	'e': {0x00, 0x00, 0x0E, 0x11, 0x1F, 0x10, 0x0E},
	'i': {0x04, 0x00, 0x0C, 0x04, 0x04, 0x04, 0x0E},
	'n': {0x00, 0x00, 0x16, 0x19, 0x11, 0x11, 0x11},
	'x': {0x00, 0x00, 0x11, 0x0A, 0x04, 0x0A, 0x11},
}

const (
	glyphWidth  = 5
	glyphHeight = 7
)

// glyphScale is the size of one font pixel for a text height of size.
func glyphScale(size int) int {
	return max(size/glyphHeight, 1)
}

func (bf *BitmapFont) DrawString(img *image.RGBA, text string, cx, cy int, c color.Color, size int) {
	w, h := bf.MeasureString(text, size)
	if w == 0 {
		return
	}
	scale := glyphScale(size)
	src := image.NewUniform(c)
	dot := img.Bounds().Min.Add(image.Pt(cx-w/2, cy-h/2))
	block := image.Rect(0, 0, scale, scale)

	for _, ch := range text {
		for row, bits := range glyphs[ch] {
			for col := range glyphWidth {
				if bits&(1<<(glyphWidth-1-col)) == 0 {
					continue
				}
				r := block.Add(dot.Add(image.Pt(col*scale, row*scale)))
				draw.Draw(img, r.Intersect(img.Bounds()), src, image.Point{}, draw.Over)
			}
		}
		dot.X += (glyphWidth + 1) * scale
	}
}

func (bf *BitmapFont) MeasureString(text string, size int) (width, height int) {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0, 0
	}
	scale := glyphScale(size)
	return n*(glyphWidth+1)*scale - scale, glyphHeight * scale
}

var fontNames = []string{"basic", "bitmap"}

// FontNames lists the names accepted by ParseFont.
func FontNames() []string {
	return append([]string(nil), fontNames...)
}

// ParseFont returns the named font: "basic" for the x/image 7x13 face or
// "bitmap" for the scalable built-in font. An empty name selects basic.
func ParseFont(name string) (FontRenderer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "basic":
		return NewBasicFont(), nil
	case "bitmap":
		return NewBitmapFont(), nil
	}
	return nil, fmt.Errorf("unknown font %q (available: %s)", name, strings.Join(fontNames, ", "))
}
