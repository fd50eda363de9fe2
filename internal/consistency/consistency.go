package consistency

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/FormingWorlds/proteus-config/internal/config"
	"github.com/FormingWorlds/proteus-config/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// rule is a pure predicate over the resolved configuration.
type rule func(cfg *config.Configuration) []config.Violation

var rules = []rule{
	checkModuleSelected,
	checkTimeStepping,
	checkStopConditions,
	checkRequiredValues,
	checkFractions,
	checkPositive,
}

// Check runs every cross-field rule and returns a *config.ConsistencyError
// aggregating all violations, or nil when the configuration is coherent.
func Check(ctx context.Context, cfg *config.Configuration) error {
	logger := ctxlog.FromContext(ctx)

	var violations []config.Violation
	for _, r := range rules {
		violations = append(violations, r(cfg)...)
	}
	logger.Debug("Consistency checks finished.", "rules", len(rules), "violations", len(violations))

	if len(violations) > 0 {
		return &config.ConsistencyError{Violations: violations}
	}
	return nil
}

// checkModuleSelected flags moduled sections that never got a module:
// the document omitted the table and the schema names no default. The
// resolver tolerates the absence so that partial documents resolve, but
// a simulation cannot start with no climate or interior implementation
// to dispatch to.
func checkModuleSelected(cfg *config.Configuration) []config.Violation {
	var out []config.Violation
	for _, sec := range cfg.Sections() {
		if sec.Module == "" {
			out = append(out, config.Violation{
				Section: sec.Name, Key: "module", Value: cty.NilVal,
				Rule: "no module selected and the section has no default",
			})
		}
	}
	return out
}

// validTimeSteppingMethods are the recognized values of params.dt.method.
// Each method name doubles as the name of its tuning sub-table.
var validTimeSteppingMethods = []string{"proportional", "adaptive", "maximum"}

// checkTimeStepping verifies that params.dt.method names a known method
// and that the correspondingly named params.dt.<method> section resolved.
func checkTimeStepping(cfg *config.Configuration) []config.Violation {
	dt := cfg.Section("params.dt")
	if dt == nil {
		return nil
	}
	method, ok := stringParam(dt, "method")
	if !ok {
		return nil
	}
	known := false
	for _, m := range validTimeSteppingMethods {
		if method == m {
			known = true
			break
		}
	}
	if !known {
		return []config.Violation{{
			Section: "params.dt", Key: "method", Value: dt.Params["method"],
			Rule: fmt.Sprintf("must be one of: %s", strings.Join(validTimeSteppingMethods, ", ")),
		}}
	}
	if cfg.Section("params.dt."+method) == nil {
		return []config.Violation{{
			Section: "params.dt", Key: "method", Value: dt.Params["method"],
			Rule: fmt.Sprintf("no resolved params.dt.%s sub-table for the selected method", method),
		}}
	}
	return nil
}

// checkStopConditions verifies that every enabled stop condition has all
// of its thresholds resolved to concrete values. A disabled condition may
// keep null thresholds: it is inert until re-enabled, and re-enabling it
// without thresholds must fail here rather than deep in the loop.
func checkStopConditions(cfg *config.Configuration) []config.Violation {
	var out []config.Violation
	for _, sec := range cfg.Sections() {
		if !strings.HasPrefix(sec.Name, "params.stop.") {
			continue
		}
		enabled, ok := boolParam(sec, "enabled")
		if !ok || !enabled {
			continue
		}
		for _, key := range sortedParamKeys(sec) {
			if key == "enabled" {
				continue
			}
			if sec.Params[key].IsNull() {
				out = append(out, config.Violation{
					Section: sec.Name, Key: key, Value: sec.Params[key],
					Rule: "stop condition is enabled but this threshold was never supplied",
				})
			}
		}
	}
	return out
}

// checkRequiredValues flags null values outside the stop conditions.
// These come from sections the document never declared; the resolver
// tolerates their absence so that partial documents resolve, but a
// simulation must not start with a hole where a required quantity goes.
func checkRequiredValues(cfg *config.Configuration) []config.Violation {
	var out []config.Violation
	for _, sec := range cfg.Sections() {
		if strings.HasPrefix(sec.Name, "params.stop.") {
			continue
		}
		for _, key := range sortedParamKeys(sec) {
			if sec.Params[key].IsNull() {
				out = append(out, config.Violation{
					Section: sec.Name, Key: key, Value: sec.Params[key],
					Rule: "required value was never supplied",
				})
			}
		}
	}
	return out
}

// fractionKeys are quantities that must lie within [0, 1].
var fractionKeys = []paramRef{
	{"struct", "corefrac"},
	{"params.stop.solid", "phi_crit"},
	{"orbit", "eccentricity"},
	{"orbit", "s0_factor"},
	{"atmos_clim", "albedo_pl"},
	{"atmos_clim", "albedo_s"},
	{"escape", "efficiency"},
}

// positiveKeys are physically meaningful quantities that must be > 0.
var positiveKeys = []paramRef{
	{"star", "mass"},
	{"star", "Teff"},
	{"star", "radius"},
	{"orbit", "semimajoraxis"},
	{"struct", "mass_tot"},
	{"struct", "core_density"},
	{"struct", "core_heatcap"},
	{"atmos_clim", "surface_d"},
	{"interior", "grain_size"},
	{"params.dt", "minimum"},
	{"params.dt", "maximum"},
	{"params.dt", "initial"},
	{"params.stop.escape", "p_stop"},
}

type paramRef struct {
	section string
	key     string
}

func checkFractions(cfg *config.Configuration) []config.Violation {
	var out []config.Violation
	for _, ref := range fractionKeys {
		val, f, ok := numberParam(cfg, ref)
		if !ok {
			continue
		}
		if f.Cmp(big.NewFloat(0)) < 0 || f.Cmp(big.NewFloat(1)) > 0 {
			out = append(out, config.Violation{
				Section: ref.section, Key: ref.key, Value: val,
				Rule: "fraction must lie in [0, 1]",
			})
		}
	}
	return out
}

func checkPositive(cfg *config.Configuration) []config.Violation {
	var out []config.Violation
	for _, ref := range positiveKeys {
		val, f, ok := numberParam(cfg, ref)
		if !ok {
			continue
		}
		if f.Cmp(big.NewFloat(0)) <= 0 {
			out = append(out, config.Violation{
				Section: ref.section, Key: ref.key, Value: val,
				Rule: "quantity must be strictly positive",
			})
		}
	}
	return out
}

// numberParam fetches a numeric parameter if its section resolved it to a
// known, non-null number. Range rules deliberately skip nulls; the
// required-value rule already covers those.
func numberParam(cfg *config.Configuration, ref paramRef) (cty.Value, *big.Float, bool) {
	sec := cfg.Section(ref.section)
	if sec == nil {
		return cty.NilVal, nil, false
	}
	val, ok := sec.Params[ref.key]
	if !ok || val.IsNull() || !val.Type().Equals(cty.Number) {
		return cty.NilVal, nil, false
	}
	return val, val.AsBigFloat(), true
}

func stringParam(sec *config.ResolvedSection, key string) (string, bool) {
	val, ok := sec.Params[key]
	if !ok || val.IsNull() || !val.Type().Equals(cty.String) {
		return "", false
	}
	return val.AsString(), true
}

func boolParam(sec *config.ResolvedSection, key string) (bool, bool) {
	val, ok := sec.Params[key]
	if !ok || val.IsNull() || !val.Type().Equals(cty.Bool) {
		return false, false
	}
	return val.True(), true
}

func sortedParamKeys(sec *config.ResolvedSection) []string {
	keys := make([]string, 0, len(sec.Params))
	for k := range sec.Params {
		keys = append(keys, k)
	}
	// Deterministic report order for a given document.
	sort.Strings(keys)
	return keys
}
