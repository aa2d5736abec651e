// Package viewport derives new plane regions from user gestures: drawn
// selections, zooms and pans.
package viewport

import (
	"fmt"
	"image"
	"math"

	"github.com/maax3v3/escapetime/internal/plane"
)

// Normalize widens the selection spanned by c1 and c2 so that one pixel of a
// width x height canvas covers the same plane distance on both axes. The
// axis with the smaller per-pixel step grows around its midpoint; nothing
// ever shrinks. Each returned corner stays on the same side as the corner
// it came from, so the orientation of the selection is kept.
func Normalize(c1, c2 complex128, width, height int) (complex128, complex128, error) {
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("%w: canvas %dx%d", plane.ErrDomain, width, height)
	}
	re1, re2 := real(c1), real(c2)
	im1, im2 := imag(c1), imag(c2)

	pdx := math.Abs(re2-re1) / float64(width)
	pdy := math.Abs(im2-im1) / float64(height)
	switch {
	case pdx < pdy:
		re1, re2 = widen(re1, re2, float64(width)*pdy)
	case pdx > pdy:
		im1, im2 = widen(im1, im2, float64(height)*pdx)
	}
	return complex(re1, im1), complex(re2, im2), nil
}

// widen returns a and b moved apart to span, centered on their midpoint.
func widen(a, b, span float64) (float64, float64) {
	mid := (a + b) / 2
	half := span / 2
	if a <= b {
		return mid - half, mid + half
	}
	return mid + half, mid - half
}

// EnsureArea grows any axis of the selection narrower than minSpan to
// exactly minSpan around its midpoint. It turns a click without a drag into
// a usable region.
func EnsureArea(c1, c2 complex128, minSpan float64) (complex128, complex128) {
	re1, re2 := real(c1), real(c2)
	im1, im2 := imag(c1), imag(c2)
	if math.Abs(re2-re1) < minSpan {
		re1, re2 = widen(re1, re2, minSpan)
	}
	if math.Abs(im2-im1) < minSpan {
		im1, im2 = widen(im1, im2, minSpan)
	}
	return complex(re1, im1), complex(re2, im2)
}

// Zoom scales the viewport about center. A factor above one zooms in; the
// point at center keeps its place on screen.
func Zoom(start, end, center complex128, factor float64) (complex128, complex128, error) {
	if !(factor > 0) || math.IsInf(factor, 0) {
		return 0, 0, fmt.Errorf("%w: zoom factor %v", plane.ErrDomain, factor)
	}
	scale := complex(1/factor, 0)
	return center + (start-center)*scale, center + (end-center)*scale, nil
}

// Pan shifts the viewport by delta.
func Pan(start, end, delta complex128) (complex128, complex128) {
	return start + delta, end + delta
}

// Center returns the midpoint of the viewport.
func Center(start, end complex128) complex128 {
	return (start + end) / 2
}

// Select turns a rectangle dragged from one pixel to another on the canvas
// described by m into the next viewport. A drag narrower than a pixel on
// either axis is grown to one pixel step before the aspect ratio is fixed.
func Select(m plane.Mapper, from, to image.Point) (complex128, complex128, error) {
	for _, p := range []image.Point{from, to} {
		if !m.Contains(p) {
			w, h := m.Size()
			return 0, 0, fmt.Errorf("%w: pixel (%d,%d) outside %dx%d", plane.ErrOutOfRange, p.X, p.Y, w, h)
		}
	}
	c1 := m.PixelToComplex(from.X, from.Y)
	c2 := m.PixelToComplex(to.X, to.Y)
	c1, c2 = ensureStep(c1, c2, m.Step())
	w, h := m.Size()
	return Normalize(c1, c2, w, h)
}

// ensureStep grows an axis shorter than one step to exactly one step,
// oriented like the step itself.
func ensureStep(c1, c2, step complex128) (complex128, complex128) {
	re1, re2 := real(c1), real(c2)
	im1, im2 := imag(c1), imag(c2)
	if sx := real(step); math.Abs(re2-re1) < math.Abs(sx) {
		mid := (re1 + re2) / 2
		re1, re2 = mid-sx/2, mid+sx/2
	}
	if sy := imag(step); math.Abs(im2-im1) < math.Abs(sy) {
		mid := (im1 + im2) / 2
		im1, im2 = mid-sy/2, mid+sy/2
	}
	return complex(re1, im1), complex(re2, im2)
}
