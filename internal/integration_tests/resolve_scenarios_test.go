package integration_tests

import (
	"errors"
	"testing"

	"github.com/FormingWorlds/proteus-config/internal/config"
	"github.com/FormingWorlds/proteus-config/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

// validTOML supplies every required key across the registry.
const validTOML = `
version = "2.0"
author  = "Integration Suite"

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
module = "zephyrus"

[interior]
module = "spider"

[outgas]
module = "calliope"

[delivery]
module = "elements"

[atmos_chem]
module = "vulcan"
`

// TestScenario_ValidDocument runs the full pipeline end to end: parse,
// resolve, consistency-check.
func TestScenario_ValidDocument(t *testing.T) {
	t.Parallel()

	result := testutil.ResolveDocument(t, "valid.toml", validTOML)
	require.NoError(t, result.Err)
	require.NotNil(t, result.Config)

	assert.Equal(t, "2.0", result.Config.Version)
	assert.Equal(t, "spider", result.Config.Section("interior").Module)
	assert.Equal(t, "zephyrus", result.Config.Section("escape").Module)
}

// TestScenario_DummyClimateDefault covers the gamma fallback: supplied
// value wins, omitted value resolves to the schema default.
func TestScenario_DummyClimateDefault(t *testing.T) {
	t.Parallel()

	result := testutil.ResolveDocument(t, "gamma.toml", validTOML+`
[atmos_clim.dummy]
gamma = 0.7
`)
	require.NoError(t, result.Err)

	sec := result.Config.Section("atmos_clim")
	assert.Equal(t, "dummy", sec.Module)
	assert.True(t, sec.Params["gamma"].RawEquals(cty.NumberFloatVal(0.7)))

	result = testutil.ResolveDocument(t, "no_gamma.toml", validTOML)
	require.NoError(t, result.Err)
	assert.True(t, result.Config.Section("atmos_clim").Params["gamma"].RawEquals(cty.NumberFloatVal(0.01)))
}

// TestScenario_EnabledEscapeStopWithoutPressure enables the escape stop
// condition but omits its threshold; resolution must name the exact key.
func TestScenario_EnabledEscapeStopWithoutPressure(t *testing.T) {
	t.Parallel()

	result := testutil.ResolveDocument(t, "escape_stop.toml", validTOML+`
[params.stop.escape]
enabled = true
`)
	require.Error(t, result.Err)

	var valErr *config.ValidationError
	require.True(t, errors.As(result.Err, &valErr))
	assert.Equal(t, "params.stop.escape", valErr.Section)
	assert.Equal(t, "p_stop", valErr.Key)
}

// TestScenario_InertInteriorSubtable selects spider while an aragog
// sub-table is present: the aragog table rides along unvalidated.
func TestScenario_InertInteriorSubtable(t *testing.T) {
	t.Parallel()

	result := testutil.ResolveDocument(t, "inert.toml", validTOML+`
[interior.spider]
num_levels = 220

[interior.aragog]
num_levels = 80
`)
	require.NoError(t, result.Err)

	sec := result.Config.Section("interior")
	assert.Equal(t, "spider", sec.Module)
	assert.True(t, sec.Params["num_levels"].RawEquals(cty.NumberIntVal(220)))
	assert.Contains(t, sec.Inert, "aragog")
}

func TestScenario_UnknownModuleFailsResolution(t *testing.T) {
	t.Parallel()

	result := testutil.ResolveDocument(t, "unknown.toml", `
[params.out]
path = "cases/default"

[atmos_clim]
module = "hurricane"
`)
	require.Error(t, result.Err)

	var unknownErr *config.UnknownModuleError
	require.True(t, errors.As(result.Err, &unknownErr))
	assert.Equal(t, "atmos_clim", unknownErr.Section)
	assert.Equal(t, "hurricane", unknownErr.Module)
}

// TestScenario_HCLDocument drives the pipeline through the HCL front end.
func TestScenario_HCLDocument(t *testing.T) {
	t.Parallel()

	result := testutil.ResolveDocument(t, "valid.hcl", `
version = "2.0"

params {
  out {
    path = "cases/hcl"
  }
}

star {
  module = "dummy"
  mass   = 1.0
}

orbit {
  module        = "dummy"
  semimajoraxis = 1.0
}

struct {
  mass_tot = 1.0
  corefrac = 0.5
}

atmos_clim {
  module = "dummy"
}

interior {
  module = "dummy"
}

outgas {
  module = "calliope"
}
`)
	require.NoError(t, result.Err)
	assert.Equal(t, "dummy", result.Config.Section("star").Module)
}

// TestScenario_ConsistencyViolationsAreBatched checks that the pipeline
// reports every cross-field problem at once.
func TestScenario_ConsistencyViolationsAreBatched(t *testing.T) {
	t.Parallel()

	result := testutil.ResolveDocument(t, "batched.toml", `
[params.out]
path = "cases/default"

[params.dt]
method = "quadratic"

[star]
module = "dummy"
mass   = -1.0

[orbit]
module        = "dummy"
semimajoraxis = 1.0

[struct]
mass_tot = 1.0
corefrac = 1.4

[atmos_clim]
module = "dummy"

[interior]
module = "dummy"

[outgas]
module = "calliope"
`)
	require.Error(t, result.Err)

	var consErr *config.ConsistencyError
	require.True(t, errors.As(result.Err, &consErr))
	assert.Len(t, consErr.Violations, 3)
}
