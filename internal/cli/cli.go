package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/FormingWorlds/proteus-config/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Result carries the parsed application configuration plus the document
// format selected on the command line or inferred from the file extension.
type Result struct {
	Config *app.Config
	Format string // "toml" or "hcl"
}

// Parse processes command-line arguments. It returns a populated Result,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*Result, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("proteus-config", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
proteus-config - Validate and resolve coupled atmosphere-interior
simulation configurations.

Usage:
  proteus-config [options] CONFIG_PATH

Arguments:
  CONFIG_PATH
    Path to a configuration document (.toml or .hcl).

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to the configuration document.")
	cFlag := flagSet.String("c", "", "Path to the configuration document (shorthand).")
	formatFlag := flagSet.String("format", "", "Document format: 'toml' or 'hcl'. Default: inferred from the file extension.")
	resolvedFlag := flagSet.Bool("resolved", false, "Print the fully resolved, defaulted configuration as TOML.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *configFlag != "" {
		path = *configFlag
	} else if *cFlag != "" {
		path = *cFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Config path determined.", "path", path)

	if path == "" {
		slog.Debug("No config path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	format := strings.ToLower(*formatFlag)
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".hcl":
			format = "hcl"
		default:
			format = "toml"
		}
	}
	if format != "toml" && format != "hcl" {
		return nil, false, &ExitError{Code: 2, Message: "invalid format: must be 'toml' or 'hcl'"}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	appConfig, err := app.NewConfig(app.Config{
		ConfigPath:   path,
		ShowResolved: *resolvedFlag,
		LogFormat:    logFormat,
		LogLevel:     logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", appConfig, "format", format)
	return &Result{Config: appConfig, Format: format}, false, nil
}
