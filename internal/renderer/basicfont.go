package renderer

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// BasicFont draws text with the fixed 7x13 face from x/image. It covers all
// of ASCII but does not scale: the size argument is ignored.
type BasicFont struct {
	face *basicfont.Face
}

// NewBasicFont creates a BasicFont.
func NewBasicFont() *BasicFont {
	return &BasicFont{face: basicfont.Face7x13}
}

func (bf *BasicFont) DrawString(img *image.RGBA, text string, cx, cy int, col color.Color, size int) {
	w, h := bf.MeasureString(text, size)
	if w == 0 {
		return
	}
	ascent := bf.face.Metrics().Ascent.Ceil()
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: bf.face,
		Dot: fixed.P(
			img.Bounds().Min.X+cx-w/2,
			img.Bounds().Min.Y+cy-h/2+ascent,
		),
	}
	d.DrawString(text)
}

func (bf *BasicFont) MeasureString(text string, size int) (width, height int) {
	if text == "" {
		return 0, 0
	}
	w := font.MeasureString(bf.face, text).Ceil()
	return w, bf.face.Metrics().Height.Ceil()
}
