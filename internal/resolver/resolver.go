package resolver

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/FormingWorlds/proteus-config/internal/config"
	"github.com/FormingWorlds/proteus-config/internal/ctxlog"
	"github.com/FormingWorlds/proteus-config/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Resolve walks the raw document tree against the registry and produces
// the immutable Configuration. Every registered section appears in the
// result: sections absent from the document resolve from schema defaults,
// with required values left null for the consistency layer to judge.
func Resolve(ctx context.Context, doc *config.Document, reg *registry.Registry) (*config.Configuration, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Resolver started.", "path", doc.Path)

	if doc.Root == cty.NilVal || !doc.Root.Type().IsObjectType() {
		return nil, &config.ValidationError{Detail: "document root is not a table"}
	}
	root := attrs(doc.Root)

	version, err := metadataString(root, "version")
	if err != nil {
		return nil, err
	}
	author, err := metadataString(root, "author")
	if err != nil {
		return nil, err
	}

	if err := checkTopLevel(root, reg); err != nil {
		return nil, err
	}

	sections := make([]*config.ResolvedSection, 0, len(reg.Sections()))
	for _, sec := range reg.Sections() {
		tbl, present, err := sectionTable(doc.Root, sec.Name)
		if err != nil {
			return nil, err
		}
		resolved, err := resolveSection(reg, sec, tbl, present)
		if err != nil {
			return nil, err
		}
		logger.Debug("Section resolved.",
			"section", sec.Name, "module", resolved.Module,
			"params", len(resolved.Params), "inert", len(resolved.Inert))
		sections = append(sections, resolved)
	}

	logger.Debug("Resolver finished.", "sections", len(sections))
	return config.NewConfiguration(version, author, sections), nil
}

// attrs returns the attribute map of an object value, tolerating the
// empty object (whose AsValueMap is nil).
func attrs(v cty.Value) map[string]cty.Value {
	if v.Type().Equals(cty.EmptyObject) {
		return map[string]cty.Value{}
	}
	return v.AsValueMap()
}

// metadataString reads an optional top-level scalar such as `version`.
func metadataString(root map[string]cty.Value, key string) (string, error) {
	val, ok := root[key]
	if !ok {
		return "", nil
	}
	if !val.Type().Equals(cty.String) {
		return "", &config.ValidationError{Key: key,
			Detail: fmt.Sprintf("expected string, got %s", val.Type().FriendlyName())}
	}
	return val.AsString(), nil
}

// checkTopLevel rejects top-level keys that are neither metadata nor the
// first component of a registered section. Strictness here protects
// against misspelled table headers.
func checkTopLevel(root map[string]cty.Value, reg *registry.Registry) error {
	known := map[string]bool{"version": true, "author": true}
	for _, sec := range reg.Sections() {
		first, _, _ := strings.Cut(sec.Name, ".")
		known[first] = true
	}
	for _, key := range sortedKeys(root) {
		if !known[key] {
			return &config.ValidationError{Key: key, Detail: "unrecognized top-level key"}
		}
	}
	return nil
}

// sectionTable navigates the dotted section name through the tree and
// returns the section's table if the document provides one.
func sectionTable(root cty.Value, name string) (cty.Value, bool, error) {
	cur := root
	parts := strings.Split(name, ".")
	for i, part := range parts {
		m := attrs(cur)
		val, ok := m[part]
		if !ok {
			return cty.NilVal, false, nil
		}
		if !val.Type().IsObjectType() {
			return cty.NilVal, false, &config.ValidationError{
				Section: strings.Join(parts[:i+1], "."),
				Detail:  fmt.Sprintf("expected a table, got %s", val.Type().FriendlyName()),
			}
		}
		cur = val
	}
	return cur, true, nil
}

// childSections returns the last name component of every direct child
// section, e.g. {"out", "dt", "stop"} for "params". Child tables are
// resolved on their own and must not trip the parent's unknown-key check.
func childSections(reg *registry.Registry, name string) map[string]bool {
	children := make(map[string]bool)
	prefix := name + "."
	for _, sec := range reg.Sections() {
		if rest, ok := strings.CutPrefix(sec.Name, prefix); ok && !strings.Contains(rest, ".") {
			children[rest] = true
		}
	}
	return children
}

// resolveSection validates one section table and builds its final
// parameter map: schema defaults first, then user-supplied values on top.
func resolveSection(reg *registry.Registry, sec *registry.SectionSpec, tbl cty.Value, present bool) (*config.ResolvedSection, error) {
	module, err := selectModule(sec, tbl, present)
	if err != nil {
		return nil, err
	}

	var modSpec *config.ModuleSpec
	if module != "" {
		modSpec, err = reg.Lookup(sec.Name, module)
		if err != nil {
			return nil, err
		}
	}

	// Implicit sections have no module concept; naming the synthetic
	// placeholder in their diagnostics would only confuse.
	diagModule := module
	if sec.Implicit {
		diagModule = ""
	}

	params := make(map[string]cty.Value)
	for _, p := range sec.Common {
		params[p.Name] = defaultValue(p)
	}
	if modSpec != nil {
		for _, p := range modSpec.Params {
			params[p.Name] = defaultValue(p)
		}
	}

	resolved := &config.ResolvedSection{
		Name:   sec.Name,
		Module: module,
		Params: params,
		Inert:  map[string]cty.Value{},
	}
	if !present {
		return resolved, nil
	}

	children := childSections(reg, sec.Name)
	supplied := attrs(tbl)
	var moduleTable cty.Value

	for _, key := range sortedKeys(supplied) {
		val := supplied[key]
		switch {
		case key == "module" && !sec.Implicit:
			// Consumed by selectModule.
		case children[key]:
			// A nested registered section; resolved on its own.
		case !sec.Implicit && key == module:
			if !val.Type().IsObjectType() {
				return nil, &config.ValidationError{Section: sec.Name, Module: module, Key: key,
					Detail: fmt.Sprintf("expected a table, got %s", val.Type().FriendlyName())}
			}
			moduleTable = val
		case !sec.Implicit && sec.HasModule(key) && val.Type().IsObjectType():
			// A sub-table for a module that is not selected: keep it
			// verbatim but do not validate it.
			resolved.Inert[key] = val
		default:
			p := sec.CommonParam(key)
			if p == nil {
				return nil, &config.ValidationError{Section: sec.Name, Module: diagModule, Key: key,
					Detail: "unrecognized key"}
			}
			if err := typeCheck(sec.Name, diagModule, p, val); err != nil {
				return nil, err
			}
			params[p.Name] = val
		}
	}

	for _, p := range sec.Common {
		if p.Required && params[p.Name].IsNull() {
			return nil, missingKey(sec.Name, diagModule, p.Name)
		}
	}

	if modSpec != nil {
		if err := applyModuleTable(sec.Name, modSpec, moduleTable, params); err != nil {
			return nil, err
		}
	}

	return resolved, nil
}

// selectModule determines the active module for a section: the implicit
// placeholder, the user's `module` scalar, or the section's default.
func selectModule(sec *registry.SectionSpec, tbl cty.Value, present bool) (string, error) {
	if sec.Implicit {
		return registry.ImplicitModule, nil
	}
	if present {
		if val, ok := attrs(tbl)["module"]; ok {
			if !val.Type().Equals(cty.String) {
				return "", &config.ValidationError{Section: sec.Name, Key: "module",
					Detail: fmt.Sprintf("expected string, got %s", val.Type().FriendlyName())}
			}
			return val.AsString(), nil
		}
		if sec.Default == "" {
			return "", missingKey(sec.Name, "", "module")
		}
	}
	return sec.Default, nil
}

// applyModuleTable validates the selected module's sub-table and overlays
// its values onto the parameter map.
func applyModuleTable(section string, modSpec *config.ModuleSpec, tbl cty.Value, params map[string]cty.Value) error {
	if tbl != cty.NilVal {
		supplied := attrs(tbl)
		for _, key := range sortedKeys(supplied) {
			p := modSpec.Param(key)
			if p == nil {
				return &config.ValidationError{Section: section, Module: modSpec.Module, Key: key,
					Detail: "unrecognized key"}
			}
			if err := typeCheck(section, modSpec.Module, p, supplied[key]); err != nil {
				return err
			}
			params[p.Name] = supplied[key]
		}
	}
	for _, p := range modSpec.Params {
		if p.Required && params[p.Name].IsNull() {
			return missingKey(section, modSpec.Module, p.Name)
		}
	}
	return nil
}

// defaultValue returns the schema default, or a typed null for required
// parameters that the user has not supplied yet.
func defaultValue(p *config.ParamSpec) cty.Value {
	if p.Default != nil {
		return *p.Default
	}
	return cty.NullVal(p.Type)
}

// typeCheck enforces exact type agreement between a supplied value and
// its schema type. Exact equality, not convertibility: go-cty would
// happily stringify a boolean, which is precisely the class of typo this
// layer exists to reject.
func typeCheck(section, module string, p *config.ParamSpec, val cty.Value) error {
	if val.Type().Equals(p.Type) {
		return nil
	}
	return &config.ValidationError{Section: section, Module: module, Key: p.Name,
		Detail: fmt.Sprintf("expected %s, got %s", p.Type.FriendlyName(), val.Type().FriendlyName())}
}

func missingKey(section, module, key string) error {
	return &config.ValidationError{Section: section, Module: module, Key: key,
		Detail: "required key is missing"}
}

func sortedKeys(m map[string]cty.Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
