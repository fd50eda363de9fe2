package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/FormingWorlds/proteus-config/internal/config"
	"github.com/FormingWorlds/proteus-config/internal/ctxlog"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL document loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads and parses an HCL document into the raw value tree.
func (l *Loader) Load(ctx context.Context, path string) (*config.Document, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, &config.ParseError{Path: path, Detail: diags.Error(), Err: diags}
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, &config.ParseError{Path: path, Detail: "unexpected body implementation"}
	}

	root, err := bodyToCty(body)
	if err != nil {
		return nil, &config.ParseError{Path: path, Detail: err.Error(), Err: err}
	}

	logger.Debug("HCL document parsed.")
	return &config.Document{Path: path, Root: root}, nil
}

// bodyToCty converts an HCL body into an object value. Attributes must be
// literal expressions (no variables or functions are in scope), and a name
// may be used by at most one attribute or block per body, matching the
// duplicate-key rule of the TOML front end.
func bodyToCty(body *hclsyntax.Body) (cty.Value, error) {
	attrs := make(map[string]cty.Value)

	for name, attr := range body.Attributes {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return cty.NilVal, fmt.Errorf("in attribute %q at %s: %s", name, attr.SrcRange.String(), diags.Error())
		}
		attrs[name] = val
	}

	for _, block := range body.Blocks {
		if len(block.Labels) > 0 {
			return cty.NilVal, fmt.Errorf("block %q at %s: blocks take no labels", block.Type, block.DefRange().String())
		}
		if _, dup := attrs[block.Type]; dup {
			return cty.NilVal, fmt.Errorf("block %q at %s: name already defined in this body", block.Type, block.DefRange().String())
		}
		val, err := bodyToCty(block.Body)
		if err != nil {
			return cty.NilVal, fmt.Errorf("in block %q: %w", block.Type, err)
		}
		attrs[block.Type] = val
	}

	if len(attrs) == 0 {
		return cty.EmptyObjectVal, nil
	}
	return cty.ObjectVal(attrs), nil
}
