package config

import (
	"github.com/zclconf/go-cty/cty"
)

// Document is the raw, untyped value tree produced by a format-specific
// loader. Root is always an object value whose attributes mirror the
// document's top-level keys and tables.
type Document struct {
	Path string
	Root cty.Value
}

// ParamSpec describes a single parameter within a section or module schema.
// A required parameter never carries a default; an optional parameter
// always does. The registry enforces this invariant at registration time.
type ParamSpec struct {
	Name        string
	Type        cty.Type
	Description string
	Default     *cty.Value // nil for required parameters
	Required    bool
}

// ModuleSpec is the parameter contract for the sub-table of one named
// module implementation within a physical section.
type ModuleSpec struct {
	Section string
	Module  string
	Params  []*ParamSpec
}

// Param returns the spec for the named parameter, or nil if the module
// does not declare it.
func (m *ModuleSpec) Param(name string) *ParamSpec {
	for _, p := range m.Params {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// ResolvedSection is one physical section after resolution: the chosen
// module and the final parameter map, in which every schema key is present
// exactly once with either the user-supplied value or the schema default.
//
// Inert holds sub-tables for registered modules that were present in the
// document but not selected. They are retained verbatim and never
// validated; selecting a different module in a later run picks them up.
type ResolvedSection struct {
	Name   string
	Module string
	Params map[string]cty.Value
	Inert  map[string]cty.Value
}

// Configuration is the fully resolved, defaulted configuration for a single
// simulation run. It is constructed once by the resolver and never mutated
// afterward, so it is safe for concurrent reads without locking.
type Configuration struct {
	Version string
	Author  string

	sections []*ResolvedSection
	byName   map[string]*ResolvedSection
}

// NewConfiguration assembles a Configuration from resolved sections. The
// slice order is preserved; it is the registry's fixed declaration order.
func NewConfiguration(version, author string, sections []*ResolvedSection) *Configuration {
	byName := make(map[string]*ResolvedSection, len(sections))
	for _, s := range sections {
		byName[s.Name] = s
	}
	return &Configuration{
		Version:  version,
		Author:   author,
		sections: sections,
		byName:   byName,
	}
}

// Sections returns all resolved sections in declaration order.
func (c *Configuration) Sections() []*ResolvedSection {
	return c.sections
}

// Section returns the resolved section with the given (possibly dotted)
// name, or nil if no such section was registered.
func (c *Configuration) Section(name string) *ResolvedSection {
	return c.byName[name]
}
