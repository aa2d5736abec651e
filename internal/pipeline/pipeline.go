package pipeline

import (
	"fmt"
	"time"

	"github.com/maax3v3/escapetime/internal/cli"
	"github.com/maax3v3/escapetime/internal/escape"
	"github.com/maax3v3/escapetime/internal/imaging"
	"github.com/maax3v3/escapetime/internal/renderer"
	"github.com/maax3v3/escapetime/internal/viewport"
)

// Run renders the configured fractal and writes it to cfg.OutPath.
func Run(cfg cli.Config, font renderer.FontRenderer) error {
	p := cfg.Params()

	// Step 1: Fit the viewport to the canvas
	if cfg.LockRatio {
		s, e, err := viewport.Normalize(p.Start, p.End, p.Width, p.Height)
		if err != nil {
			return fmt.Errorf("normalizing viewport: %w", err)
		}
		p.Start, p.End = s, e
	}
	fmt.Printf("Viewport: %s\n", renderer.Caption(p.Start, p.End))

	// Step 2: Iterate every pixel
	fmt.Printf("Rendering %s %dx%d (bailout=%g, max-iter=%d)...\n",
		cfg.Kind, p.Width, p.Height, p.Bailout, p.MaxIter)
	t0 := time.Now()
	buf, err := escape.Render(cfg.Kind, p)
	if err != nil {
		return fmt.Errorf("rendering: %w", err)
	}
	fmt.Printf("Rendered in %s\n", time.Since(t0).Round(time.Millisecond))

	// Step 3: Annotate
	img := buf.Image()
	if cfg.Annotate {
		fmt.Println("Annotating...")
		legend := renderer.Legend(escape.EffectiveColoring(cfg.Kind, p.Coloring))
		img = renderer.Annotate(img, legend, renderer.Caption(p.Start, p.End),
			font, renderer.ScaledConfig(p.Width))
	}

	// Step 4: Save output
	fmt.Printf("Saving output: %s\n", cfg.OutPath)
	if err := imaging.Save(cfg.OutPath, img); err != nil {
		return fmt.Errorf("saving output: %w", err)
	}

	fmt.Println("Done!")
	return nil
}
