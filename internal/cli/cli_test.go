package cli

import (
	"image"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/maax3v3/escapetime/internal/color"
	"github.com/maax3v3/escapetime/internal/coloring"
	"github.com/maax3v3/escapetime/internal/escape"
	"github.com/maax3v3/escapetime/internal/imaging"
	"github.com/maax3v3/escapetime/internal/renderer"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := parse([]string{"--out=m.png"}, io.Discard)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Kind != escape.KindMandelbrot || cfg.Width != 320 || cfg.Height != 240 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Start != -2.5+1.5i || cfg.End != 1.5-1.5i {
		t.Errorf("viewport: got %v .. %v", cfg.Start, cfg.End)
	}
	if cfg.Bailout != 2 || cfg.MaxIter != 256 || !cfg.LockRatio {
		t.Errorf("iteration defaults: %+v", cfg)
	}
	if !coloring.IsDefault(cfg.Coloring) {
		t.Errorf("coloring: got %T, want default", cfg.Coloring)
	}
	if cfg.C != -0.12+0.75i {
		t.Errorf("julia parameter: got %v", cfg.C)
	}
}

func TestParse_Julia(t *testing.T) {
	cfg, err := parse([]string{
		"--fractal=julia", "--c=-0.8+0.156i",
		"--start=-1.5,1", "--end=1.5-1i",
		"--coloring=Modulo 3", "--max-iter=512",
		"--out=j.tif",
	}, io.Discard)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	p := cfg.Params()
	if cfg.Kind != escape.KindJulia || p.C != -0.8+0.156i || p.MaxIter != 512 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if p.Start != -1.5+1i || p.End != 1.5-1i {
		t.Errorf("viewport: got %v .. %v", p.Start, p.End)
	}
	if m, ok := p.Coloring.(coloring.Modulo); !ok || len(m.Bands) != 3 {
		t.Errorf("coloring: got %#v", p.Coloring)
	}
}

func TestParse_CustomBands(t *testing.T) {
	cfg, err := parse([]string{"--bands=#fff,#000", "--inside=#f00", "--out=x.png"}, io.Discard)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	m, ok := cfg.Coloring.(coloring.Modulo)
	if !ok {
		t.Fatalf("coloring: got %T", cfg.Coloring)
	}
	if m.Inside != color.Red || len(m.Bands) != 2 || m.Bands[0] != color.White {
		t.Errorf("got %+v", m)
	}
}

func TestParse_Font(t *testing.T) {
	cfg, err := parse([]string{"--out=m.png"}, io.Discard)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, ok := cfg.Font.(*renderer.BasicFont); !ok {
		t.Errorf("default font: got %T", cfg.Font)
	}

	cfg, err = parse([]string{"--font=bitmap", "--out=m.png"}, io.Discard)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, ok := cfg.Font.(*renderer.BitmapFont); !ok {
		t.Errorf("--font=bitmap: got %T", cfg.Font)
	}
}

func TestParse_Palette(t *testing.T) {
	// A red to blue strip with a green middle.
	strip := image.NewRGBA(image.Rect(0, 0, 9, 2))
	for y := range 2 {
		for x := range 9 {
			c := color.Green
			switch {
			case x < 3:
				c = color.Red
			case x >= 6:
				c = color.Blue
			}
			strip.Set(x, y, c.ToStdColor())
		}
	}
	path := filepath.Join(t.TempDir(), "palette.png")
	if err := imaging.Save(path, strip); err != nil {
		t.Fatal(err)
	}

	cfg, err := parse([]string{"--palette=" + path, "--palette-stops=3", "--inside=#fff", "--out=x.png"}, io.Discard)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	g, ok := cfg.Coloring.(coloring.Gradient)
	if !ok {
		t.Fatalf("coloring: got %T", cfg.Coloring)
	}
	want := []color.RGB{color.Red, color.Green, color.Blue}
	if g.Inside != color.White || len(g.Stops) != len(want) {
		t.Fatalf("got %+v", g)
	}
	for i := range want {
		if g.Stops[i] != want[i] {
			t.Errorf("stop %d: got %v, want %v", i, g.Stops[i], want[i])
		}
	}
	if _, err := coloring.Compile(g); err != nil {
		t.Errorf("sampled gradient does not compile: %v", err)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing out", nil, "--out"},
		{"bad extension", []string{"--out=x.gif"}, "--out"},
		{"zero width", []string{"--out=x.png", "--width=0"}, "--width"},
		{"negative bailout", []string{"--out=x.png", "--bailout=-2"}, "--bailout"},
		{"zero iterations", []string{"--out=x.png", "--max-iter=0"}, "--max-iter"},
		{"unknown fractal", []string{"--out=x.png", "--fractal=newton"}, "--fractal"},
		{"unknown region", []string{"--out=x.png", "--region=atlantis"}, "--region"},
		{"start without end", []string{"--out=x.png", "--start=0"}, "together"},
		{"bad start", []string{"--out=x.png", "--start=abc", "--end=1"}, "--start"},
		{"bad julia parameter", []string{"--out=x.png", "--c=1+"}, "--c"},
		{"unknown coloring", []string{"--out=x.png", "--coloring=plasma"}, "--coloring"},
		{"bad bands", []string{"--out=x.png", "--bands=#ggg"}, "--bands"},
		{"bad inside", []string{"--out=x.png", "--bands=#fff", "--inside=red"}, "--inside"},
		{"unknown font", []string{"--out=x.png", "--font=serif"}, "--font"},
		{"bands and palette", []string{"--out=x.png", "--bands=#fff", "--palette=p.png"}, "cannot be combined"},
		{"missing palette", []string{"--out=x.png", "--palette=/does/not/exist.png"}, "--palette"},
		{"unsupported palette", []string{"--out=x.png", "--palette=p.gif"}, "--palette"},
		{"zero palette stops", []string{"--out=x.png", "--palette=p.png", "--palette-stops=0"}, "--palette-stops"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(tt.args, io.Discard)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestParseComplex(t *testing.T) {
	tests := []struct {
		in      string
		want    complex128
		wantErr bool
	}{
		{"-0.8+0.156i", -0.8 + 0.156i, false},
		{"(1-1i)", 1 - 1i, false},
		{"2", 2, false},
		{"0.5, -0.25", 0.5 - 0.25i, false},
		{"1,x", 0, true},
		{"x,1", 0, true},
		{"i am not a number", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseComplex(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("got (%v, %v), want %v", got, err, tt.want)
			}
		})
	}
}
