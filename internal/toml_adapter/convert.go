package toml_adapter

import (
	"fmt"
	"math/big"
	"time"

	"github.com/zclconf/go-cty/cty"
)

// nativeToCty translates the native Go values produced by the TOML decoder
// into the cty value model used by the resolver. TOML distinguishes
// integer and float literals; both land in cty.Number, whose arbitrary
// precision keeps literals like 4.567e+9 exact.
func nativeToCty(v any) (cty.Value, error) {
	switch t := v.(type) {
	case string:
		return cty.StringVal(t), nil
	case bool:
		return cty.BoolVal(t), nil
	case int64:
		return cty.NumberIntVal(t), nil
	case float64:
		return cty.NumberFloatVal(t), nil
	case time.Time:
		return cty.StringVal(t.Format(time.RFC3339)), nil
	case map[string]any:
		if len(t) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(t))
		for key, val := range t {
			cv, err := nativeToCty(val)
			if err != nil {
				return cty.NilVal, fmt.Errorf("in key %q: %w", key, err)
			}
			attrs[key] = cv
		}
		return cty.ObjectVal(attrs), nil
	case []map[string]any:
		// An array of tables.
		elems := make([]cty.Value, len(t))
		for i, val := range t {
			cv, err := nativeToCty(val)
			if err != nil {
				return cty.NilVal, fmt.Errorf("in element %d: %w", i, err)
			}
			elems[i] = cv
		}
		return tuple(elems), nil
	case []any:
		elems := make([]cty.Value, len(t))
		for i, val := range t {
			cv, err := nativeToCty(val)
			if err != nil {
				return cty.NilVal, fmt.Errorf("in element %d: %w", i, err)
			}
			elems[i] = cv
		}
		return tuple(elems), nil
	default:
		return cty.NilVal, fmt.Errorf("value of type %T has no cty equivalent", v)
	}
}

func tuple(elems []cty.Value) cty.Value {
	if len(elems) == 0 {
		return cty.EmptyTupleVal
	}
	return cty.TupleVal(elems)
}

// ctyToNative is the inverse translation, used by the encoder. Numbers
// that are exactly representable as integers come back as int64 so that
// the emitted TOML keeps the narrower literal form.
func ctyToNative(v cty.Value) (any, error) {
	ty := v.Type()
	switch {
	case v.IsNull():
		return nil, fmt.Errorf("null value cannot be encoded")
	case ty.Equals(cty.String):
		return v.AsString(), nil
	case ty.Equals(cty.Bool):
		return v.True(), nil
	case ty.Equals(cty.Number):
		bf := v.AsBigFloat()
		if i, acc := bf.Int64(); acc == big.Exact {
			return i, nil
		}
		f, _ := bf.Float64()
		return f, nil
	case ty.IsObjectType():
		out := make(map[string]any)
		if !ty.Equals(cty.EmptyObject) {
			for key, val := range v.AsValueMap() {
				nv, err := ctyToNative(val)
				if err != nil {
					return nil, fmt.Errorf("in key %q: %w", key, err)
				}
				out[key] = nv
			}
		}
		return out, nil
	case ty.IsTupleType() || ty.IsListType():
		var out []any
		for it := v.ElementIterator(); it.Next(); {
			_, val := it.Element()
			nv, err := ctyToNative(val)
			if err != nil {
				return nil, err
			}
			out = append(out, nv)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("value of type %s has no TOML equivalent", ty.FriendlyName())
	}
}
