package color

import (
	"image"
	"image/color"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    RGB
		wantErr bool
	}{
		{
			name:  "6-digit black with hash",
			input: "#000000",
			want:  RGB{0, 0, 0},
		},
		{
			name:  "6-digit white with hash",
			input: "#FFFFFF",
			want:  RGB{255, 255, 255},
		},
		{
			name:  "6-digit lowercase",
			input: "#ff00ff",
			want:  RGB{255, 0, 255},
		},
		{
			name:  "6-digit without hash",
			input: "AB12CD",
			want:  RGB{0xAB, 0x12, 0xCD},
		},
		{
			name:  "3-digit color",
			input: "#F0A",
			want:  RGB{0xFF, 0x00, 0xAA},
		},
		{
			name:  "3-digit without hash",
			input: "abc",
			want:  RGB{0xAA, 0xBB, 0xCC},
		},
		{
			name:    "invalid length 4",
			input:   "#FFFF",
			wantErr: true,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
		},
		{
			name:    "non-hex characters 6-digit",
			input:   "#ZZZZZZ",
			wantErr: true,
		},
		{
			name:    "non-hex characters 3-digit",
			input:   "#GGG",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHex(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseHexList(t *testing.T) {
	got, err := ParseHexList("#f00, #0000ff")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != Red || got[1] != Blue {
		t.Errorf("got %+v, want [red blue]", got)
	}

	if _, err := ParseHexList(" , "); err == nil {
		t.Error("expected error for empty list")
	}
	if _, err := ParseHexList("#f00,#nothex"); err == nil {
		t.Error("expected error for invalid entry")
	}
}

func TestHex(t *testing.T) {
	if got := (RGB{0xAB, 0x01, 0xFF}).Hex(); got != "#ab01ff" {
		t.Errorf("got %q, want #ab01ff", got)
	}
}

func TestStdColorRoundTrip(t *testing.T) {
	original := RGB{42, 128, 200}
	std := original.ToStdColor()
	if std.A != 255 {
		t.Errorf("alpha: got %d, want 255", std.A)
	}
	if got := FromStdColor(std); got != original {
		t.Errorf("round-trip failed: got %+v, want %+v", got, original)
	}
	if got := FromStdColor(color.White); got != White {
		t.Errorf("white: got %+v", got)
	}
}

func TestColorfulConversion(t *testing.T) {
	tests := []struct {
		name string
		c    RGB
	}{
		{"black", Black},
		{"white", White},
		{"odd channels", RGB{17, 99, 201}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromColorful(tt.c.Colorful()); got != tt.c {
				t.Errorf("got %+v, want %+v", got, tt.c)
			}
		})
	}

	t.Run("out of gamut is clamped", func(t *testing.T) {
		got := FromColorful(colorful.Color{R: 1.5, G: -0.2, B: 0.5})
		if got.R != 255 || got.G != 0 {
			t.Errorf("got %+v, want R=255 G=0", got)
		}
	})
}

func TestIsLight(t *testing.T) {
	tests := []struct {
		name string
		c    RGB
		want bool
	}{
		{"white is light", White, true},
		{"black is not light", Black, false},
		{"bright yellow is light", RGB{255, 255, 0}, true},
		{"dark blue is not light", RGB{0, 0, 128}, false},
		{"light gray", RGB{200, 200, 200}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.IsLight(); got != tt.want {
				t.Errorf("RGB%+v.IsLight() = %v, want %v", tt.c, got, tt.want)
			}
		})
	}
}

func TestSample(t *testing.T) {
	// Three vertical stripes: red, green, blue, each 4 pixels wide.
	strip := image.NewRGBA(image.Rect(10, 10, 22, 13))
	stripes := []RGB{Red, Green, Blue}
	for y := 10; y < 13; y++ {
		for x := 10; x < 22; x++ {
			strip.Set(x, y, stripes[(x-10)/4].ToStdColor())
		}
	}

	tests := []struct {
		name string
		n    int
		want []RGB
	}{
		{"ends and middle", 3, []RGB{Red, Green, Blue}},
		{"ends only", 2, []RGB{Red, Blue}},
		{"single color is the center", 1, []RGB{Green}},
		{"none", 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sample(strip, tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("Sample(%d) = %v, want %v", tt.n, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("color %d: got %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}

	if got := Sample(strip, 100); len(got) != 12 {
		t.Errorf("n above the width: got %d colors, want 12", len(got))
	}
	if got := Sample(image.NewRGBA(image.Rect(0, 0, 0, 0)), 4); got != nil {
		t.Errorf("empty image: got %v", got)
	}
}
