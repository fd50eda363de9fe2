package toml_adapter

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/FormingWorlds/proteus-config/internal/config"
	"github.com/FormingWorlds/proteus-config/internal/ctxlog"
)

// Loader is the TOML-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new TOML document loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads and parses a TOML document into the raw value tree.
func (l *Loader) Load(ctx context.Context, path string) (*config.Document, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("TOML loader started.", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &config.ParseError{Path: path, Err: err}
	}

	var raw map[string]any
	if _, err := toml.Decode(string(data), &raw); err != nil {
		var perr toml.ParseError
		if errors.As(err, &perr) {
			return nil, &config.ParseError{Path: path, Detail: perr.ErrorWithPosition(), Err: err}
		}
		return nil, &config.ParseError{Path: path, Err: err}
	}

	root, err := nativeToCty(raw)
	if err != nil {
		return nil, &config.ParseError{Path: path, Detail: fmt.Sprintf("unsupported value: %v", err), Err: err}
	}

	logger.Debug("TOML document parsed.", "top_level_keys", len(raw))
	return &config.Document{Path: path, Root: root}, nil
}
