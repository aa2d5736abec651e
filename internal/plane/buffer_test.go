package plane

import (
	"errors"
	"image"
	"testing"

	"github.com/maax3v3/escapetime/internal/color"
)

func newTestBuffer(t *testing.T, w, h int) *Buffer {
	t.Helper()
	m, err := NewMapper(w, h, -2-1i, 2+1i)
	if err != nil {
		t.Fatalf("NewMapper: %v", err)
	}
	return NewBuffer(m)
}

func TestBuffer_PixelsCoversEveryPixelOnce(t *testing.T) {
	b := newTestBuffer(t, 7, 5)
	seen := make(map[image.Point]int)
	for z, p := range b.Pixels() {
		seen[p]++
		if want := b.Mapper().PixelToComplex(p.X, p.Y); z != want {
			t.Errorf("pixel %v: sample %v, want %v", p, z, want)
		}
	}
	if len(seen) != 35 {
		t.Fatalf("got %d distinct pixels, want 35", len(seen))
	}
	for p, n := range seen {
		if n != 1 {
			t.Errorf("pixel %v yielded %d times", p, n)
		}
	}
}

func TestBuffer_PixelsOrderAndRestart(t *testing.T) {
	b := newTestBuffer(t, 2, 3)
	collect := func() []image.Point {
		var out []image.Point
		for _, p := range b.Pixels() {
			out = append(out, p)
		}
		return out
	}
	want := []image.Point{{0, 0}, {0, 1}, {0, 2}, {1, 0}, {1, 1}, {1, 2}}
	for pass := 0; pass < 2; pass++ {
		got := collect()
		if len(got) != len(want) {
			t.Fatalf("pass %d: got %d pixels, want %d", pass, len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("pass %d: index %d got %v, want %v", pass, i, got[i], want[i])
			}
		}
	}
}

func TestBuffer_PixelsEarlyBreak(t *testing.T) {
	b := newTestBuffer(t, 10, 10)
	n := 0
	for range b.Pixels() {
		n++
		if n == 3 {
			break
		}
	}
	if n != 3 {
		t.Errorf("got %d iterations, want 3", n)
	}
}

func TestBuffer_SetPixel(t *testing.T) {
	b := newTestBuffer(t, 4, 4)
	if err := b.SetPixel(1, 2, color.Red); err != nil {
		t.Fatalf("SetPixel: %v", err)
	}
	got, err := b.At(1, 2)
	if err != nil {
		t.Fatalf("At: %v", err)
	}
	if got != color.Red {
		t.Errorf("got %+v, want red", got)
	}

	unset, _ := b.At(0, 0)
	if unset != (color.RGB{}) {
		t.Errorf("unwritten pixel: got %+v, want zero", unset)
	}
}

func TestBuffer_SetPixelOutOfRange(t *testing.T) {
	b := newTestBuffer(t, 4, 4)
	for _, p := range []image.Point{{-1, 0}, {4, 0}, {0, 4}, {0, -1}} {
		if err := b.SetPixel(p.X, p.Y, color.White); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("SetPixel(%v): got %v, want ErrOutOfRange", p, err)
		}
		if _, err := b.At(p.X, p.Y); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("At(%v): got %v, want ErrOutOfRange", p, err)
		}
	}
}

func TestBuffer_ImageIsSnapshot(t *testing.T) {
	b := newTestBuffer(t, 3, 3)
	if err := b.SetPixel(0, 0, color.Blue); err != nil {
		t.Fatal(err)
	}
	snap := b.Image()
	if err := b.SetPixel(0, 0, color.Red); err != nil {
		t.Fatal(err)
	}

	if got := color.FromStdColor(snap.At(0, 0)); got != color.Blue {
		t.Errorf("snapshot changed after write: got %+v", got)
	}
	if got := color.FromStdColor(b.Display().At(0, 0)); got != color.Red {
		t.Errorf("display handle: got %+v, want red", got)
	}
	if snap.Bounds() != image.Rect(0, 0, 3, 3) {
		t.Errorf("snapshot bounds: got %v", snap.Bounds())
	}
}
