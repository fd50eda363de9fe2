// Package app wires the configuration pipeline together: a format-specific
// loader, the built-in schema registry, the resolver, and the consistency
// checks, with an isolated slog logger configured from the CLI flags.
package app
