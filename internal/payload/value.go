package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"unicode/utf16"
)

// Value is a sealed interface representing one payload field value.
// Only Null, Bool, Number, String, List, and Map implement this.
type Value interface {
	payloadValue() // Sealed
}

// Null represents an explicit JSON null.
type Null struct{}

func (Null) payloadValue() {}

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// Bool is a boolean field value.
type Bool bool

func (Bool) payloadValue() {}

// Number is a numeric field value. Integers and decimals share one variant;
// sensor readings such as confidence (0.88) and durations (120000) both fit.
type Number float64

func (Number) payloadValue() {}

// String is a string field value.
type String string

func (String) payloadValue() {}

// List is an ordered sequence of values.
type List []Value

func (List) payloadValue() {}

// Map is a mapping of field names to values. Use SortedKeys() for
// deterministic iteration.
type Map map[string]Value

func (Map) payloadValue() {}

// Pair is a key-value pair for Map construction.
type Pair struct {
	Key   string
	Value Value
}

// F is shorthand for Pair.
// Example: Of(F("value", Bool(true)), F("confidence", Number(0.88)))
func F(key string, value Value) Pair {
	return Pair{Key: key, Value: value}
}

// Of builds a Map from pairs.
func Of(pairs ...Pair) Map {
	m := make(Map, len(pairs))
	for _, p := range pairs {
		m[p.Key] = p.Value
	}
	return m
}

// Clone returns a deep copy of m. A nil map clones to an empty map.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = CloneValue(v)
	}
	return out
}

// Merge returns a new map holding m's fields overwritten by patch's fields.
// Neither input is modified.
func (m Map) Merge(patch Map) Map {
	out := m.Clone()
	for k, v := range patch {
		out[k] = CloneValue(v)
	}
	return out
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
func (m Map) SortedKeys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// GetBool reads key as a boolean. Missing keys and non-boolean values yield def.
func (m Map) GetBool(key string, def bool) bool {
	if v, ok := m[key].(Bool); ok {
		return bool(v)
	}
	return def
}

// GetString reads key as a string. Missing keys and non-string values yield def.
func (m Map) GetString(key string, def string) string {
	if v, ok := m[key].(String); ok {
		return string(v)
	}
	return def
}

// GetNumber reads key as a number. Missing keys and non-numeric values yield def.
func (m Map) GetNumber(key string, def float64) float64 {
	if v, ok := m[key].(Number); ok {
		return float64(v)
	}
	return def
}

// CloneValue deep-copies container values. Scalars are returned as-is.
func CloneValue(v Value) Value {
	switch val := v.(type) {
	case List:
		out := make(List, len(val))
		for i, elem := range val {
			out[i] = CloneValue(elem)
		}
		return out
	case Map:
		return val.Clone()
	case nil:
		return Null{}
	default:
		return v
	}
}

// Equal reports whether a and b hold the same value. Maps compare by
// content regardless of iteration order.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Number:
		bv, ok := b.(Number)
		return ok && av == bv
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case List:
		bv, ok := b.(List)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Map:
		bv, ok := b.(Map)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			other, exists := bv[k]
			if !exists || !Equal(v, other) {
				return false
			}
		}
		return true
	default:
		return a == nil && b == nil
	}
}

// compareKeysRFC8785 compares strings using UTF-16 code unit ordering
// as required by RFC 8785 (Canonical JSON).
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := min(len(a16), len(b16))
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}

// MarshalJSON implements json.Marshaler for Map with sorted keys.
// This is NOT canonical marshaling (HTML is escaped, strings are not
// normalized). Use MarshalCanonical for digests.
func (m Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, k := range m.SortedKeys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := MarshalValue(m[k])
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON implements json.Marshaler for List.
func (l List) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')

	for i, elem := range l {
		if i > 0 {
			buf.WriteByte(',')
		}
		elemBytes, err := MarshalValue(elem)
		if err != nil {
			return nil, fmt.Errorf("list[%d]: %w", i, err)
		}
		buf.Write(elemBytes)
	}

	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// MarshalValue marshals a Value to JSON bytes.
func MarshalValue(v Value) ([]byte, error) {
	switch val := v.(type) {
	case nil, Null:
		return []byte("null"), nil
	case Bool:
		return json.Marshal(bool(val))
	case Number:
		return []byte(formatNumber(float64(val))), nil
	case String:
		return json.Marshal(string(val))
	case List:
		return val.MarshalJSON()
	case Map:
		return val.MarshalJSON()
	default:
		return nil, fmt.Errorf("unknown payload value type: %T", v)
	}
}

// UnmarshalJSON implements json.Unmarshaler for Map.
func (m *Map) UnmarshalJSON(data []byte) error {
	v, err := UnmarshalValue(data)
	if err != nil {
		return err
	}
	obj, ok := v.(Map)
	if !ok {
		return fmt.Errorf("expected JSON object, got %T", v)
	}
	*m = obj
	return nil
}

// UnmarshalJSON implements json.Unmarshaler for List.
func (l *List) UnmarshalJSON(data []byte) error {
	v, err := UnmarshalValue(data)
	if err != nil {
		return err
	}
	arr, ok := v.(List)
	if !ok {
		return fmt.Errorf("expected JSON array, got %T", v)
	}
	*l = arr
	return nil
}

// UnmarshalValue decodes JSON into a Value.
func UnmarshalValue(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return FromAny(raw)
}

// ParseMap decodes a JSON object into a Map.
func ParseMap(data []byte) (Map, error) {
	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
