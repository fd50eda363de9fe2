package hcl_adapter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/FormingWorlds/proteus-config/internal/config"
	"github.com/FormingWorlds/proteus-config/internal/registry"
	"github.com/FormingWorlds/proteus-config/internal/resolver"
	"github.com/FormingWorlds/proteus-config/internal/toml_adapter"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func load(t *testing.T, src string) (*config.Document, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "case.hcl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return NewLoader().Load(context.Background(), path)
}

func TestLoad_BlocksBecomeTables(t *testing.T) {
	t.Parallel()

	doc, err := load(t, `
version = "2.0"

star {
  module = "dummy"
  mass   = 1.0
}
`)
	require.NoError(t, err)

	root := doc.Root.AsValueMap()
	assert.True(t, root["version"].RawEquals(cty.StringVal("2.0")))

	star := root["star"].AsValueMap()
	assert.True(t, star["module"].RawEquals(cty.StringVal("dummy")))
	assert.True(t, star["mass"].RawEquals(cty.NumberFloatVal(1.0)))
}

func TestLoad_DuplicateBlockRejected(t *testing.T) {
	t.Parallel()

	_, err := load(t, `
star {
  mass = 1.0
}
star {
  mass = 2.0
}
`)
	require.Error(t, err)

	var parseErr *config.ParseError
	require.True(t, errors.As(err, &parseErr))
}

func TestLoad_LabeledBlockRejected(t *testing.T) {
	t.Parallel()

	_, err := load(t, `
star "sun" {
  mass = 1.0
}
`)
	require.Error(t, err)

	var parseErr *config.ParseError
	require.True(t, errors.As(err, &parseErr))
}

func TestLoad_SyntaxError(t *testing.T) {
	t.Parallel()

	_, err := load(t, `star {`)
	require.Error(t, err)

	var parseErr *config.ParseError
	require.True(t, errors.As(err, &parseErr))
}

// TestLoad_FormatParity resolves the same logical document through both
// front ends; the resulting configurations must be identical.
func TestLoad_FormatParity(t *testing.T) {
	t.Parallel()

	hclSrc := `
params {
  out {
    path = "cases/default"
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
  dummy {
    gamma = 0.5
  }
}

interior {
  module = "dummy"
}

outgas {
  module = "calliope"
}
`
	tomlSrc := `
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
corefrac = 0.5

[atmos_clim]
module = "dummy"

[atmos_clim.dummy]
gamma = 0.5

[interior]
module = "dummy"

[outgas]
module = "calliope"
`
	ctx := context.Background()
	reg := registry.Builtin()

	hclPath := filepath.Join(t.TempDir(), "case.hcl")
	require.NoError(t, os.WriteFile(hclPath, []byte(hclSrc), 0o644))
	hclDoc, err := NewLoader().Load(ctx, hclPath)
	require.NoError(t, err)
	fromHCL, err := resolver.Resolve(ctx, hclDoc, reg)
	require.NoError(t, err)

	tomlPath := filepath.Join(t.TempDir(), "case.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte(tomlSrc), 0o644))
	tomlDoc, err := toml_adapter.NewLoader().Load(ctx, tomlPath)
	require.NoError(t, err)
	fromTOML, err := resolver.Resolve(ctx, tomlDoc, reg)
	require.NoError(t, err)

	ctyEqual := cmp.Comparer(func(a, b cty.Value) bool { return a.RawEquals(b) })
	if diff := cmp.Diff(fromTOML.Sections(), fromHCL.Sections(), ctyEqual); diff != "" {
		t.Errorf("format parity mismatch (-toml +hcl):\n%s", diff)
	}
}
