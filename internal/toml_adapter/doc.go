// Package toml_adapter is the TOML-specific implementation of the
// config.Loader interface, plus the encoder used to write a resolved
// configuration back out as TOML.
//
// The adapter only concerns itself with syntax and value translation;
// schema knowledge lives entirely in the registry and resolver. Duplicate
// keys at the same table level are rejected by the TOML language itself,
// which protects against typos like defining include_H2O twice.
package toml_adapter
