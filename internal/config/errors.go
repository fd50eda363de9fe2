package config

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// ParseError reports a malformed document. It aborts loading before any
// schema validation takes place.
type ParseError struct {
	Path   string
	Detail string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("parse %s: %s", e.Path, e.Detail)
	}
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// UnknownModuleError reports a section whose `module` value names an
// implementation that is not registered for that section.
type UnknownModuleError struct {
	Section string
	Module  string
	Known   []string
}

func (e *UnknownModuleError) Error() string {
	return fmt.Sprintf("section %q: unknown module %q (known: %s)",
		e.Section, e.Module, strings.Join(e.Known, ", "))
}

// ValidationError reports a missing required key, an unrecognized supplied
// key, or a value whose type disagrees with the schema. Resolution is
// fail-fast: the first violation in declaration order aborts the run.
type ValidationError struct {
	Section string
	Module  string
	Key     string
	Detail  string
}

func (e *ValidationError) Error() string {
	where := fmt.Sprintf("section %q", e.Section)
	if e.Module != "" {
		where = fmt.Sprintf("section %q, module %q", e.Section, e.Module)
	}
	if e.Key != "" {
		return fmt.Sprintf("%s: key %q: %s", where, e.Key, e.Detail)
	}
	return fmt.Sprintf("%s: %s", where, e.Detail)
}

// Violation is one failed cross-field consistency rule.
type Violation struct {
	Section string
	Key     string
	Value   cty.Value
	Rule    string
}

func (v Violation) String() string {
	val := "absent"
	if v.Value != cty.NilVal && !v.Value.IsNull() {
		val = v.Value.GoString()
	}
	return fmt.Sprintf("section %q, key %q (value %s): %s", v.Section, v.Key, val, v.Rule)
}

// ConsistencyError aggregates every cross-field violation found in one
// pass, so a malformed document is reported in a single round-trip rather
// than one rule at a time.
type ConsistencyError struct {
	Violations []Violation
}

func (e *ConsistencyError) Error() string {
	lines := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		lines[i] = v.String()
	}
	return fmt.Sprintf("configuration failed %d consistency check(s):\n- %s",
		len(e.Violations), strings.Join(lines, "\n- "))
}
