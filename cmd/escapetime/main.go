package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/maax3v3/escapetime/internal/cli"
	"github.com/maax3v3/escapetime/internal/pipeline"
)

func main() {
	cfg, err := cli.Parse(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := pipeline.Run(cfg, cfg.Font); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
