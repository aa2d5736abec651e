package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/term"

	"github.com/maax3v3/escapetime/internal/cli"
	"github.com/maax3v3/escapetime/internal/escape"
	"github.com/maax3v3/escapetime/internal/explorer"
	"github.com/maax3v3/escapetime/internal/presets"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	fractal := flag.String("fractal", "mandelbrot", "Fractal family: mandelbrot or julia")
	region := flag.String("region", "", "Named starting viewport")
	c := flag.String("c", "", "Julia parameter, e.g. -0.8+0.156i")
	maxIter := flag.Int("max-iter", escape.DefaultMaxIter, "Maximum iterations per pixel")
	coloringName := flag.String("coloring", "default", "Coloring preset")
	saveDir := flag.String("save-dir", ".", "Directory for frames saved with 's'")
	logPath := flag.String("log", "", "Write a debug log to this file")
	flag.Parse()

	kind, err := escape.ParseKind(*fractal)
	if err != nil {
		return err
	}
	view := explorer.DefaultView(kind)
	view.MaxIter = *maxIter
	view.Coloring = *coloringName
	if _, err := view.Params(1, 1); err != nil {
		return err
	}
	if *region != "" {
		r, err := presets.LookupRegion(*region)
		if err != nil {
			return err
		}
		view.Start, view.End = r.Start, r.End
	}
	if *c != "" {
		if view.C, err = cli.ParseComplex(*c); err != nil {
			return fmt.Errorf("parsing -c: %w", err)
		}
	}

	opts := []explorer.Option{explorer.WithView(view), explorer.WithSaveDir(*saveDir)}
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log: %w", err)
		}
		defer f.Close()
		logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
		opts = append(opts, explorer.WithLogger(logger))
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("the explorer needs an interactive terminal; use escapetime for one-shot renders")
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("screen init: %w", err)
	}
	defer screen.Fini()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	err = explorer.New(screen, opts...).Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
