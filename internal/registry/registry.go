package registry

import (
	"fmt"
	"sort"

	"github.com/FormingWorlds/proteus-config/internal/config"
)

// ImplicitModule is the module name recorded for sections that have no
// module concept, such as `struct` and the nested `params` tables.
const ImplicitModule = "none"

// SectionSpec declares one physical section: its common (section-level)
// parameters and, for moduled sections, the set of selectable modules.
type SectionSpec struct {
	// Name is the section's dotted path in the document, e.g. "star" or
	// "params.stop.escape".
	Name string

	// Implicit marks a section without a module concept. Such a section
	// has only common parameters and resolves with ImplicitModule.
	Implicit bool

	// Default is the module assumed when the document omits the `module`
	// key. Empty means the key is mandatory once the section is present.
	Default string

	// Common are the parameters that live directly in the section table,
	// validated regardless of the selected module.
	Common []*config.ParamSpec

	modules map[string]*config.ModuleSpec
	order   []string
}

// Modules returns the registered module names in registration order.
func (s *SectionSpec) Modules() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// HasModule reports whether name is a registered module of this section.
func (s *SectionSpec) HasModule(name string) bool {
	_, ok := s.modules[name]
	return ok
}

// CommonParam returns the section-level spec for the named parameter, or
// nil if the section does not declare it.
func (s *SectionSpec) CommonParam(name string) *config.ParamSpec {
	for _, p := range s.Common {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Registry is the process-wide schema table. It is populated at
// initialization and read-only afterward, so concurrent lookups need no
// locking.
type Registry struct {
	sections []*SectionSpec
	index    map[string]*SectionSpec
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{index: make(map[string]*SectionSpec)}
}

// RegisterSection adds a section in declaration order. Schema invariants
// are programmer errors, so violations panic at startup rather than
// surfacing as runtime diagnostics.
func (r *Registry) RegisterSection(spec *SectionSpec) *SectionSpec {
	if _, dup := r.index[spec.Name]; dup {
		panic(fmt.Sprintf("registry: section %q registered twice", spec.Name))
	}
	for _, p := range spec.Common {
		checkParam(spec.Name, "", p)
	}
	if spec.modules == nil {
		spec.modules = make(map[string]*config.ModuleSpec)
	}
	r.sections = append(r.sections, spec)
	r.index[spec.Name] = spec
	return spec
}

// RegisterModule adds one module's parameter contract to an already
// registered section.
func (r *Registry) RegisterModule(section string, mod *config.ModuleSpec) {
	sec, ok := r.index[section]
	if !ok {
		panic(fmt.Sprintf("registry: module %q registered for unknown section %q", mod.Module, section))
	}
	if sec.Implicit {
		panic(fmt.Sprintf("registry: section %q has no module concept", section))
	}
	if _, dup := sec.modules[mod.Module]; dup {
		panic(fmt.Sprintf("registry: module %q registered twice for section %q", mod.Module, section))
	}
	for _, p := range mod.Params {
		checkParam(section, mod.Module, p)
		if sec.CommonParam(p.Name) != nil {
			panic(fmt.Sprintf("registry: parameter %q of %s/%s shadows a section-level parameter",
				p.Name, section, mod.Module))
		}
	}
	mod.Section = section
	sec.modules[mod.Module] = mod
	sec.order = append(sec.order, mod.Module)
}

// checkParam enforces the schema invariant that required parameters carry
// no default and optional parameters always carry one.
func checkParam(section, module string, p *config.ParamSpec) {
	where := section
	if module != "" {
		where = section + "/" + module
	}
	if p.Required && p.Default != nil {
		panic(fmt.Sprintf("registry: required parameter %q of %s must not declare a default", p.Name, where))
	}
	if !p.Required && p.Default == nil {
		panic(fmt.Sprintf("registry: optional parameter %q of %s must declare a default", p.Name, where))
	}
}

// Sections returns every registered section in declaration order. The
// order mirrors the domain dependency chain (star before atmos_clim
// before interior), so diagnostics for a given document are reproducible.
func (r *Registry) Sections() []*SectionSpec {
	return r.sections
}

// Section returns the spec for the named section.
func (r *Registry) Section(name string) (*SectionSpec, bool) {
	sec, ok := r.index[name]
	return sec, ok
}

// Lookup returns the parameter contract for (section, module), failing
// with *config.UnknownModuleError when the module is not registered for
// that section.
func (r *Registry) Lookup(section, module string) (*config.ModuleSpec, error) {
	sec, ok := r.index[section]
	if !ok {
		return nil, &config.UnknownModuleError{Section: section, Module: module}
	}
	if sec.Implicit && module == ImplicitModule {
		return &config.ModuleSpec{Section: section, Module: ImplicitModule}, nil
	}
	mod, ok := sec.modules[module]
	if !ok {
		known := sec.Modules()
		sort.Strings(known)
		return nil, &config.UnknownModuleError{Section: section, Module: module, Known: known}
	}
	return mod, nil
}
