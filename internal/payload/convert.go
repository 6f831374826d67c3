package payload

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// FromAny converts a decoded Go value (from encoding/json, yaml.v3 or a CUE
// Decode) into a Value. Integers and floats both become Number.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return CloneValue(val), nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", val.String(), err)
		}
		return Number(f), nil
	case int:
		return Number(val), nil
	case int32:
		return Number(val), nil
	case int64:
		return Number(val), nil
	case uint64:
		return Number(val), nil
	case float32:
		return Number(val), nil
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil, fmt.Errorf("non-finite number %v", val)
		}
		return Number(val), nil
	case []any:
		out := make(List, len(val))
		for i, elem := range val {
			conv, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = conv
		}
		return out, nil
	case map[string]any:
		out := make(Map, len(val))
		for k, elem := range val {
			conv, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			out[k] = conv
		}
		return out, nil
	case map[any]any:
		out := make(Map, len(val))
		for k, elem := range val {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("non-string map key %v (%T)", k, k)
			}
			conv, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", key, err)
			}
			out[key] = conv
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// MapFromAny converts a decoded mapping into a Map.
func MapFromAny(v map[string]any) (Map, error) {
	conv, err := FromAny(v)
	if err != nil {
		return nil, err
	}
	return conv.(Map), nil
}

// ToAny converts a Value back to plain Go values (bool, float64, string,
// []any, map[string]any, nil), suitable for generic encoders.
func ToAny(v Value) any {
	switch val := v.(type) {
	case Bool:
		return bool(val)
	case Number:
		return float64(val)
	case String:
		return string(val)
	case List:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = ToAny(elem)
		}
		return out
	case Map:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = ToAny(elem)
		}
		return out
	default:
		return nil
	}
}

// formatNumber renders a float without exponent for the magnitudes payloads
// actually carry, and with an exponent outside [1e-6, 1e21).
func formatNumber(f float64) string {
	if f == 0 {
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
