package resolver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/FormingWorlds/proteus-config/internal/config"
	"github.com/FormingWorlds/proteus-config/internal/registry"
	"github.com/FormingWorlds/proteus-config/internal/toml_adapter"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

// baselineTOML supplies every required key, so it must resolve cleanly.
const baselineTOML = `
version = "2.0"
author  = "Test Author"

[params.out]
path = "cases/default"

[star]
module = "dummy"
mass   = 1.0

[orbit]
module        = "dummy"
semimajoraxis = 1.0

[struct]
mass_tot = 1.0
corefrac = 0.55

[atmos_clim]
module = "dummy"

[escape]
module = "none"

[interior]
module = "dummy"

[outgas]
module = "calliope"

[delivery]
module = "elements"
`

// ctyEqual lets go-cmp compare cty values by their own equality rules.
var ctyEqual = cmp.Comparer(func(a, b cty.Value) bool { return a.RawEquals(b) })

func loadTOML(t *testing.T, src string) *config.Document {
	t.Helper()
	path := filepath.Join(t.TempDir(), "case.toml")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	doc, err := toml_adapter.NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	return doc
}

func resolveTOML(t *testing.T, src string) (*config.Configuration, error) {
	t.Helper()
	return Resolve(context.Background(), loadTOML(t, src), registry.Builtin())
}

func TestResolve_Baseline(t *testing.T) {
	t.Parallel()

	cfg, err := resolveTOML(t, baselineTOML)
	require.NoError(t, err)

	assert.Equal(t, "2.0", cfg.Version)
	assert.Equal(t, "Test Author", cfg.Author)

	star := cfg.Section("star")
	require.NotNil(t, star)
	assert.Equal(t, "dummy", star.Module)
	assert.True(t, star.Params["mass"].RawEquals(cty.NumberFloatVal(1.0)))
}

// TestResolve_KeySetMatchesSchema checks the central resolution invariant:
// the resolved parameter map holds exactly the schema's key set for the
// chosen module, no extra and no missing.
func TestResolve_KeySetMatchesSchema(t *testing.T) {
	t.Parallel()

	cfg, err := resolveTOML(t, baselineTOML)
	require.NoError(t, err)

	reg := registry.Builtin()
	for _, sec := range cfg.Sections() {
		spec, ok := reg.Section(sec.Name)
		require.True(t, ok)

		expected := map[string]bool{}
		for _, p := range spec.Common {
			expected[p.Name] = true
		}
		if sec.Module != "" && sec.Module != registry.ImplicitModule {
			mod, err := reg.Lookup(sec.Name, sec.Module)
			require.NoError(t, err)
			for _, p := range mod.Params {
				expected[p.Name] = true
			}
		}

		got := map[string]bool{}
		for key := range sec.Params {
			got[key] = true
		}
		assert.Equal(t, expected, got, "key set mismatch in section %q", sec.Name)
	}
}

func TestResolve_DefaultFallback(t *testing.T) {
	t.Parallel()

	// gamma omitted: the schema default applies.
	cfg, err := resolveTOML(t, baselineTOML)
	require.NoError(t, err)
	assert.True(t, cfg.Section("atmos_clim").Params["gamma"].RawEquals(cty.NumberFloatVal(0.01)))

	// gamma supplied: the user value wins.
	cfg, err = resolveTOML(t, baselineTOML+`
[atmos_clim.dummy]
gamma = 0.7
`)
	require.NoError(t, err)
	sec := cfg.Section("atmos_clim")
	assert.Equal(t, "dummy", sec.Module)
	assert.True(t, sec.Params["gamma"].RawEquals(cty.NumberFloatVal(0.7)))
}

// TestResolve_Idempotent resolves the same document twice and requires an
// identical Configuration, default application included.
func TestResolve_Idempotent(t *testing.T) {
	t.Parallel()

	doc := loadTOML(t, baselineTOML)
	reg := registry.Builtin()

	first, err := Resolve(context.Background(), doc, reg)
	require.NoError(t, err)
	second, err := Resolve(context.Background(), doc, reg)
	require.NoError(t, err)

	if diff := cmp.Diff(first.Sections(), second.Sections(), ctyEqual); diff != "" {
		t.Errorf("configuration mismatch (-first +second):\n%s", diff)
	}
}

func TestResolve_UnknownModule(t *testing.T) {
	t.Parallel()

	_, err := resolveTOML(t, `
[star]
module = "banana"
mass   = 1.0
`)
	require.Error(t, err)

	var unknownErr *config.UnknownModuleError
	require.True(t, errors.As(err, &unknownErr))
	assert.Equal(t, "star", unknownErr.Section)
	assert.Equal(t, "banana", unknownErr.Module)
}

func TestResolve_MissingRequiredKey(t *testing.T) {
	t.Parallel()

	// star/mors requires a spectrum file name in its sub-table.
	_, err := resolveTOML(t, `
[star]
module = "mors"
mass   = 1.0
`)
	require.Error(t, err)

	var valErr *config.ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "star", valErr.Section)
	assert.Equal(t, "mors", valErr.Module)
	assert.Equal(t, "spec", valErr.Key)
}

func TestResolve_MissingModuleKey(t *testing.T) {
	t.Parallel()

	_, err := resolveTOML(t, `
[star]
mass = 1.0
`)
	require.Error(t, err)

	var valErr *config.ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "star", valErr.Section)
	assert.Equal(t, "module", valErr.Key)
}

// TestResolve_UnknownKey verifies strictness: a supplied key outside the
// schema is an error, not a silently ignored typo.
func TestResolve_UnknownKey(t *testing.T) {
	t.Parallel()

	_, err := resolveTOML(t, `
[atmos_clim]
module = "dummy"

[atmos_clim.dummy]
gama = 0.7
`)
	require.Error(t, err)

	var valErr *config.ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "atmos_clim", valErr.Section)
	assert.Equal(t, "gama", valErr.Key)
}

func TestResolve_TypeMismatch(t *testing.T) {
	t.Parallel()

	_, err := resolveTOML(t, `
[star]
module = "dummy"
mass   = "heavy"
`)
	require.Error(t, err)

	var valErr *config.ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "star", valErr.Section)
	assert.Equal(t, "mass", valErr.Key)
	assert.Contains(t, valErr.Detail, "number")
}

// A boolean where a string is expected must fail even though go-cty could
// convert it; conversion would defeat the typo protection.
func TestResolve_BoolForStringRejected(t *testing.T) {
	t.Parallel()

	_, err := resolveTOML(t, `
[params.dt]
method = true
`)
	require.Error(t, err)

	var valErr *config.ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "params.dt", valErr.Section)
	assert.Equal(t, "method", valErr.Key)
}

// Diagnostics for sections without a module concept must not name the
// internal placeholder module.
func TestResolve_ImplicitSectionDiagnostics(t *testing.T) {
	t.Parallel()

	_, err := resolveTOML(t, `
[params.stop.escape]
enabled = true
`)
	require.Error(t, err)

	var valErr *config.ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "params.stop.escape", valErr.Section)
	assert.Equal(t, "p_stop", valErr.Key)
	assert.Empty(t, valErr.Module)
	assert.NotContains(t, valErr.Error(), "module")
}

// TestResolve_InertSubtable keeps sub-tables of non-selected modules
// verbatim without validating them. They must not leak into the resolved
// parameter map, and their content must not cause a spurious failure.
func TestResolve_InertSubtable(t *testing.T) {
	t.Parallel()

	cfg, err := resolveTOML(t, baselineTOML+`
[interior.spider]
num_levels = 220

[interior.aragog]
num_levels    = 80
made_up_knob  = "ignored"
`)
	require.NoError(t, err)

	// The baseline selects dummy, so both sub-tables are inert.
	sec := cfg.Section("interior")
	require.NotNil(t, sec)
	assert.Contains(t, sec.Inert, "spider")
	assert.Contains(t, sec.Inert, "aragog")
	assert.NotContains(t, sec.Params, "num_levels")
}

func TestResolve_SelectedModuleValidatedInertRetained(t *testing.T) {
	t.Parallel()

	src := `
[params.out]
path = "cases/spider"

[star]
module = "dummy"
mass   = 1.0

[orbit]
module        = "dummy"
semimajoraxis = 1.0

[struct]
mass_tot = 1.0
corefrac = 0.55

[atmos_clim]
module = "dummy"

[interior]
module = "spider"

[interior.spider]
num_levels = 220

[interior.aragog]
num_levels = 80

[outgas]
module = "calliope"
`
	cfg, err := resolveTOML(t, src)
	require.NoError(t, err)

	sec := cfg.Section("interior")
	assert.Equal(t, "spider", sec.Module)
	assert.True(t, sec.Params["num_levels"].RawEquals(cty.NumberIntVal(220)))
	// Defaults fill the rest of the spider schema.
	assert.True(t, sec.Params["tolerance"].RawEquals(cty.NumberFloatVal(1e-10)))
	// The aragog sub-table is retained but absent from the parameter map.
	assert.Contains(t, sec.Inert, "aragog")
	assert.NotContains(t, sec.Params, "conduction")
}

func TestResolve_UnrecognizedTopLevelKey(t *testing.T) {
	t.Parallel()

	_, err := resolveTOML(t, `
[stars]
mass = 1.0
`)
	require.Error(t, err)

	var valErr *config.ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "stars", valErr.Key)
}

// Absent sections resolve from defaults; required values they would have
// carried stay null for the consistency layer to flag.
func TestResolve_AbsentSectionDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := resolveTOML(t, baselineTOML)
	require.NoError(t, err)

	dt := cfg.Section("params.dt")
	require.NotNil(t, dt)
	assert.True(t, dt.Params["method"].RawEquals(cty.StringVal("adaptive")))
	assert.True(t, dt.Params["maximum"].RawEquals(cty.NumberFloatVal(1e7)))

	escape := cfg.Section("params.stop.escape")
	require.NotNil(t, escape)
	assert.True(t, escape.Params["enabled"].RawEquals(cty.BoolVal(false)))
	assert.True(t, escape.Params["p_stop"].IsNull())
}
