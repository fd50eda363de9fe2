package config

import (
	"context"
)

// Loader is the interface for a format-specific document loader. A loader
// only parses syntax; it performs no schema validation. All loaders
// produce the same Document shape so the resolver stays format-agnostic.
type Loader interface {
	// Load reads the document at path and translates it into the raw
	// value tree. Syntax problems, including duplicate keys at the same
	// table level, are reported as a *ParseError.
	Load(ctx context.Context, path string) (*Document, error)
}
