package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/FormingWorlds/proteus-config/internal/app"
	"github.com/FormingWorlds/proteus-config/internal/cli"
	"github.com/FormingWorlds/proteus-config/internal/config"
	"github.com/FormingWorlds/proteus-config/internal/hcl_adapter"
	"github.com/FormingWorlds/proteus-config/internal/toml_adapter"
)

// main is the entrypoint for the proteus-config validator.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW io.Writer, args []string) error {
	result, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	var loader config.Loader
	if result.Format == "hcl" {
		loader = hcl_adapter.NewLoader()
	} else {
		loader = toml_adapter.NewLoader()
	}

	validator := app.New(outW, os.Stderr, result.Config, loader)
	return validator.Run(context.Background())
}
