package hcl

import (
	"fmt"
	"math"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/mapboot/internal/appstate"
)

// toCtyValue converts a native state value into its cty equivalent.
// NaN becomes null: cty numbers cannot represent it, and a NaN
// coordinate carries no information a template could use.
func toCtyValue(v any) (cty.Value, error) {
	switch val := v.(type) {
	case nil:
		return cty.NullVal(cty.String), nil
	case string:
		return cty.StringVal(val), nil
	case float64:
		if math.IsNaN(val) {
			return cty.NullVal(cty.Number), nil
		}
		return cty.NumberFloatVal(val), nil
	case int:
		return cty.NumberIntVal(int64(val)), nil
	case bool:
		return cty.BoolVal(val), nil
	default:
		return cty.NilVal, fmt.Errorf("unsupported state value type %T", v)
	}
}

// fromCtyValue converts a cty value back into a native state value.
// Only the scalar types a state may hold are accepted.
func fromCtyValue(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	switch v.Type() {
	case cty.String:
		return v.AsString(), nil
	case cty.Number:
		f, _ := v.AsBigFloat().Float64()
		return f, nil
	case cty.Bool:
		if v.True() {
			return "true", nil
		}
		return "false", nil
	default:
		return nil, fmt.Errorf("unsupported state value type %s", v.Type().FriendlyName())
	}
}

// objectToState converts a cty object/map value into a state mapping.
func objectToState(v cty.Value) (appstate.State, error) {
	if !v.Type().IsObjectType() && !v.Type().IsMapType() {
		return nil, fmt.Errorf("default state must be an object, got %s", v.Type().FriendlyName())
	}

	state := appstate.State{}
	for key, val := range v.AsValueMap() {
		native, err := fromCtyValue(val)
		if err != nil {
			return nil, fmt.Errorf("default state key '%s': %w", key, err)
		}
		state[key] = native
	}
	return state, nil
}

// stateVars converts a render context into cty variables.
func stateVars(context map[string]any) (map[string]cty.Value, error) {
	vars := make(map[string]cty.Value, len(context))
	for key, val := range context {
		cv, err := toCtyValue(val)
		if err != nil {
			return nil, fmt.Errorf("context key '%s': %w", key, err)
		}
		vars[key] = cv
	}
	return vars, nil
}
