// Package config defines the format-agnostic configuration model for the
// simulation framework: the raw document tree produced by a loader, the
// schema vocabulary (parameter and module specs), and the fully resolved,
// read-only Configuration consumed by the orchestration layer.
//
// Concrete document formats are handled by separate loader packages (TOML,
// HCL) that all produce the same Document, so the resolver and the
// consistency checks never depend on any one syntax.
package config
