package plane

import (
	"fmt"
	"image"
	"iter"

	"github.com/maax3v3/escapetime/internal/color"
)

// Buffer is a grid of pixel colors bound to a Mapper. Pixels that were never
// written read back as the zero color.
type Buffer struct {
	mapper Mapper
	img    *image.RGBA
}

// NewBuffer allocates a buffer covering every pixel of m.
func NewBuffer(m Mapper) *Buffer {
	return &Buffer{
		mapper: m,
		img:    image.NewRGBA(m.Bounds()),
	}
}

// Mapper returns the coordinate mapping of the buffer.
func (b *Buffer) Mapper() Mapper { return b.mapper }

// SetPixel stores c at pixel (x, y).
func (b *Buffer) SetPixel(x, y int, c color.RGB) error {
	if !b.mapper.Contains(image.Pt(x, y)) {
		w, h := b.mapper.Size()
		return fmt.Errorf("%w: (%d,%d) outside %dx%d", ErrOutOfRange, x, y, w, h)
	}
	b.img.SetRGBA(x, y, c.ToStdColor())
	return nil
}

// At returns the color stored at pixel (x, y).
func (b *Buffer) At(x, y int) (color.RGB, error) {
	if !b.mapper.Contains(image.Pt(x, y)) {
		w, h := b.mapper.Size()
		return color.RGB{}, fmt.Errorf("%w: (%d,%d) outside %dx%d", ErrOutOfRange, x, y, w, h)
	}
	return color.FromStdColor(b.img.RGBAAt(x, y)), nil
}

// Pixels yields every pixel of the buffer exactly once together with its
// plane location, column by column (x outer, y inner). The sequence can be
// ranged over any number of times.
func (b *Buffer) Pixels() iter.Seq2[complex128, image.Point] {
	return func(yield func(complex128, image.Point) bool) {
		w, h := b.mapper.Size()
		for x := 0; x < w; x++ {
			for y := 0; y < h; y++ {
				if !yield(b.mapper.PixelToComplex(x, y), image.Pt(x, y)) {
					return
				}
			}
		}
	}
}

// Image returns a copy of the pixels that later writes do not affect.
func (b *Buffer) Image() *image.RGBA {
	snap := image.NewRGBA(b.img.Rect)
	copy(snap.Pix, b.img.Pix)
	return snap
}

// Display returns a read-only view of the live pixels for drawing on screen.
func (b *Buffer) Display() image.Image { return b.img }
