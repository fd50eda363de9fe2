// Package cli parses command-line arguments for the configuration
// validator and translates them into an app.Config.
package cli
