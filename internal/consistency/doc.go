// Package consistency checks invariants that span sections or span keys
// within one section of a resolved Configuration.
//
// Unlike the resolver, the checks here are not fail-fast: every violated
// rule is collected and reported in a single ConsistencyError, sparing the
// user one round-trip per mistake. Each rule is a pure function over the
// Configuration, so rules are testable in isolation and adding one never
// touches section resolution.
package consistency
