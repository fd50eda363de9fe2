// Package resolver turns a raw document tree into a validated, defaulted
// Configuration by cross-referencing the schema registry.
//
// Sections are processed in the registry's fixed declaration order and
// validation is fail-fast: the first missing, unrecognized, or mistyped
// key aborts resolution, so no partial Configuration ever escapes.
package resolver
