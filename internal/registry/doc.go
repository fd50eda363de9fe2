// Package registry holds the static schema registry: for every physical
// section of a simulation configuration, the set of valid module names and
// each module's parameter contract.
//
// The registry is populated once at startup and read-only afterward.
// Adding a new module implementation means adding one registration call in
// builtin.go; the resolver requires no change.
package registry
