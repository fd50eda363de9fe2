package app

import (
	"errors"
	"io"
	"log/slog"

	"github.com/FormingWorlds/proteus-config/internal/config"
	"github.com/FormingWorlds/proteus-config/internal/registry"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPath string // the simulation configuration document

	ShowResolved bool // print the fully defaulted configuration as TOML
	LogFormat    string
	LogLevel     string
}

// NewConfig validates the application configuration.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ConfigPath == "" {
		return nil, errors.New("ConfigPath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *registry.Registry
	loader   config.Loader
}

// New is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger and the built-in
// schema registry. Diagnostics go to logW; the resolved document, when
// requested, goes to outW.
func New(outW, logW io.Writer, appConfig *Config, loader config.Loader) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:     outW,
		logger:   logger,
		config:   appConfig,
		registry: registry.Builtin(),
		loader:   loader,
	}
}

// Registry returns the application's schema registry. This is primarily
// for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}
