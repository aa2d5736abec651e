// Package plane maps a rectangle of pixels onto a region of the complex
// plane and holds the colors computed for those pixels.
package plane

import (
	"errors"
	"fmt"
	"image"
	"math"
)

var (
	// ErrDomain reports a mapping that cannot be built: a zero pixel
	// dimension or a viewport with no extent along one axis.
	ErrDomain = errors.New("degenerate plane geometry")

	// ErrOutOfRange reports a pixel access outside the buffer.
	ErrOutOfRange = errors.New("pixel out of range")
)

// Mapper is an affine transform between pixel space and the complex plane.
// Start lands on pixel (0,0); End is the corner one pixel past (W-1, H-1).
// A Mapper is immutable once built.
type Mapper struct {
	width, height int
	start, end    complex128
	dx, dy        float64
}

// NewMapper builds the mapping of a width x height pixel rectangle onto the
// region spanned by start and end.
func NewMapper(width, height int, start, end complex128) (Mapper, error) {
	if width <= 0 || height <= 0 {
		return Mapper{}, fmt.Errorf("%w: pixel size %dx%d", ErrDomain, width, height)
	}
	// Four bytes per pixel must fit in an int.
	if width > math.MaxInt/4/height {
		return Mapper{}, fmt.Errorf("%w: pixel size %dx%d too large", ErrDomain, width, height)
	}
	for _, v := range []float64{real(start), imag(start), real(end), imag(end)} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Mapper{}, fmt.Errorf("%w: non-finite corner %v .. %v", ErrDomain, start, end)
		}
	}
	dx := (real(end) - real(start)) / float64(width)
	dy := (imag(end) - imag(start)) / float64(height)
	if dx == 0 || dy == 0 {
		return Mapper{}, fmt.Errorf("%w: zero span between %v and %v", ErrDomain, start, end)
	}
	if math.IsInf(dx, 0) || math.IsInf(dy, 0) {
		return Mapper{}, fmt.Errorf("%w: span between %v and %v overflows", ErrDomain, start, end)
	}
	return Mapper{
		width:  width,
		height: height,
		start:  start,
		end:    end,
		dx:     dx,
		dy:     dy,
	}, nil
}

// Size returns the pixel dimensions.
func (m Mapper) Size() (width, height int) { return m.width, m.height }

// Bounds returns the pixel rectangle covered by the mapper.
func (m Mapper) Bounds() image.Rectangle { return image.Rect(0, 0, m.width, m.height) }

// Corners returns the viewport corners the mapper was built from.
func (m Mapper) Corners() (start, end complex128) { return m.start, m.end }

// Step returns the plane distance covered by one pixel along each axis.
// Either component is negative when the axis runs backwards.
func (m Mapper) Step() complex128 { return complex(m.dx, m.dy) }

// PixelToComplex returns the plane location of pixel (x, y). Coordinates
// outside the pixel rectangle extrapolate linearly.
func (m Mapper) PixelToComplex(x, y int) complex128 {
	return m.start + complex(float64(x)*m.dx, float64(y)*m.dy)
}

// ComplexToPixel returns the pixel nearest to z, rounding half away from
// zero. The result may lie outside Bounds when z is outside the viewport.
func (m Mapper) ComplexToPixel(z complex128) image.Point {
	return image.Point{
		X: int(math.Round((real(z) - real(m.start)) / m.dx)),
		Y: int(math.Round((imag(z) - imag(m.start)) / m.dy)),
	}
}

// Contains reports whether p is a valid pixel of the mapping.
func (m Mapper) Contains(p image.Point) bool {
	return p.X >= 0 && p.X < m.width && p.Y >= 0 && p.Y < m.height
}
