package toml_adapter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/FormingWorlds/proteus-config/internal/config"
	"github.com/FormingWorlds/proteus-config/internal/registry"
)

// Encode serializes a resolved Configuration back to TOML. The registry
// is consulted to put module-specific parameters back into their
// [section.<module>] sub-table, so re-parsing the output under the same
// schema resolves to an identical Configuration.
func Encode(cfg *config.Configuration, reg *registry.Registry) ([]byte, error) {
	root := make(map[string]any)
	if cfg.Version != "" {
		root["version"] = cfg.Version
	}
	if cfg.Author != "" {
		root["author"] = cfg.Author
	}

	for _, sec := range cfg.Sections() {
		spec, ok := reg.Section(sec.Name)
		if !ok {
			return nil, fmt.Errorf("encode: section %q is not registered", sec.Name)
		}
		if !encodable(sec, spec) {
			continue
		}
		tbl, err := encodeSection(sec, spec)
		if err != nil {
			return nil, fmt.Errorf("encode: section %q: %w", sec.Name, err)
		}
		placeTable(root, sec.Name, tbl)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(root); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}

// encodable reports whether a section can be written as a standalone
// table. A section the document never supplied may carry null required
// values, or no module at all; writing its defaults would produce a
// table that cannot resolve, so it is left out of the output instead.
func encodable(sec *config.ResolvedSection, spec *registry.SectionSpec) bool {
	if !spec.Implicit && sec.Module == "" {
		return false
	}
	for _, p := range spec.Common {
		if p.Required && sec.Params[p.Name].IsNull() {
			return false
		}
	}
	return true
}

// encodeSection rebuilds one section table: common parameters at section
// level, module parameters inside the module's sub-table, inert sub-tables
// carried through verbatim. Null values (required keys the document never
// supplied) are omitted rather than invented.
func encodeSection(sec *config.ResolvedSection, spec *registry.SectionSpec) (map[string]any, error) {
	tbl := make(map[string]any)

	var modTbl map[string]any
	if !spec.Implicit && sec.Module != "" {
		tbl["module"] = sec.Module
		modTbl = make(map[string]any)
	}

	for key, val := range sec.Params {
		if val.IsNull() {
			continue
		}
		nv, err := ctyToNative(val)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		if modTbl != nil && spec.CommonParam(key) == nil {
			modTbl[key] = nv
		} else {
			tbl[key] = nv
		}
	}
	if len(modTbl) > 0 {
		tbl[sec.Module] = modTbl
	}

	for name, val := range sec.Inert {
		nv, err := ctyToNative(val)
		if err != nil {
			return nil, fmt.Errorf("inert sub-table %q: %w", name, err)
		}
		tbl[name] = nv
	}
	return tbl, nil
}

// placeTable inserts a section table at its dotted path, creating any
// missing ancestor tables, and merges with tables already placed there by
// parent sections.
func placeTable(root map[string]any, name string, tbl map[string]any) {
	parts := strings.Split(name, ".")
	cur := root
	for _, part := range parts[:len(parts)-1] {
		next, ok := cur[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[part] = next
		}
		cur = next
	}
	last := parts[len(parts)-1]
	if existing, ok := cur[last].(map[string]any); ok {
		for k, v := range tbl {
			existing[k] = v
		}
		return
	}
	cur[last] = tbl
}
