package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/maax3v3/escapetime/internal/server"
)

func main() {
	addr := flag.String("addr", ":8080", "Listen address")
	maxPixels := flag.Int("max-pixels", server.DefaultMaxPixels, "Largest canvas (width*height) served per request")
	timeout := flag.Duration("timeout", time.Minute, "Time limit for one HTTP render")
	origins := flag.String("origins", "", "Comma-separated cross-origin hosts allowed on /ws")
	verbose := flag.Bool("v", false, "Log debug messages")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	server.SetLogger(logger)

	opts := []server.Option{
		server.WithMaxPixels(*maxPixels),
		server.WithTimeout(*timeout),
	}
	if *origins != "" {
		opts = append(opts, server.WithOriginPatterns(strings.Split(*origins, ",")...))
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           server.New(opts...),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", *addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}
