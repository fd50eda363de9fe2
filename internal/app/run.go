package app

import (
	"context"
	"fmt"

	"github.com/FormingWorlds/proteus-config/internal/config"
	"github.com/FormingWorlds/proteus-config/internal/consistency"
	"github.com/FormingWorlds/proteus-config/internal/ctxlog"
	"github.com/FormingWorlds/proteus-config/internal/resolver"
	"github.com/FormingWorlds/proteus-config/internal/toml_adapter"
)

// Resolve runs the pipeline up to and including the consistency checks and
// returns the immutable Configuration.
func (a *App) Resolve(ctx context.Context) (*config.Configuration, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	doc, err := a.loader.Load(ctx, a.config.ConfigPath)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("Document loaded.", "path", doc.Path)

	cfg, err := resolver.Resolve(ctx, doc, a.registry)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("Document resolved.", "sections", len(cfg.Sections()))

	if err := consistency.Check(ctx, cfg); err != nil {
		return nil, err
	}
	a.logger.Debug("Consistency checks passed.")

	return cfg, nil
}

// Run executes the main application logic: load, resolve, check, and
// optionally print the fully defaulted configuration.
func (a *App) Run(ctx context.Context) error {
	a.logger.Debug("App.Run method started.")

	cfg, err := a.Resolve(ctx)
	if err != nil {
		return err
	}

	moduled := 0
	for _, sec := range cfg.Sections() {
		if sec.Module != "" {
			moduled++
		}
	}
	a.logger.Info("Configuration is valid.",
		"path", a.config.ConfigPath, "version", cfg.Version, "sections", moduled)

	if a.config.ShowResolved {
		out, err := toml_adapter.Encode(cfg, a.registry)
		if err != nil {
			return fmt.Errorf("failed to encode resolved configuration: %w", err)
		}
		if _, err := a.outW.Write(out); err != nil {
			return err
		}
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}
