package payload

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSealed(t *testing.T) {
	var _ Value = Null{}
	var _ Value = Bool(true)
	var _ Value = Number(0.5)
	var _ Value = String("x")
	var _ Value = List{String("a"), Number(1)}
	var _ Value = Map{"key": String("value")}
}

func TestMapSortedKeys(t *testing.T) {
	m := Map{
		"zebra":  String("z"),
		"apple":  String("a"),
		"banana": String("b"),
	}

	assert.Equal(t, []string{"apple", "banana", "zebra"}, m.SortedKeys())
}

func TestMapSortedKeysUTF16Order(t *testing.T) {
	m := Map{"a": Number(1), "A": Number(2), "aa": Number(3), "aA": Number(4), "Aa": Number(5), "AA": Number(6)}

	assert.Equal(t, []string{"A", "AA", "Aa", "a", "aA", "aa"}, m.SortedKeys())
}

func TestTypedAccessors(t *testing.T) {
	m := Of(
		F("value", Bool(true)),
		F("level", String("high")),
		F("distance", Number(120)),
	)

	t.Run("present and typed", func(t *testing.T) {
		assert.True(t, m.GetBool("value", false))
		assert.Equal(t, "high", m.GetString("level", "low"))
		assert.Equal(t, 120.0, m.GetNumber("distance", 0))
	})

	t.Run("missing falls back", func(t *testing.T) {
		assert.False(t, m.GetBool("absent", false))
		assert.Equal(t, "low", m.GetString("absent", "low"))
		assert.Equal(t, 7.5, m.GetNumber("absent", 7.5))
	})

	t.Run("mistyped falls back", func(t *testing.T) {
		assert.True(t, m.GetBool("level", true))
		assert.Equal(t, "unknown", m.GetString("distance", "unknown"))
		assert.Equal(t, 1.0, m.GetNumber("value", 1))
	})

	t.Run("nil map", func(t *testing.T) {
		var empty Map
		assert.Equal(t, "forward", empty.GetString("direction", "forward"))
	})
}

func TestMergeDoesNotAlias(t *testing.T) {
	base := Of(F("value", Bool(false)), F("confidence", Number(0)))
	patch := Of(F("value", Bool(true)))

	merged := base.Merge(patch)

	assert.Equal(t, Bool(true), merged["value"])
	assert.Equal(t, Number(0), merged["confidence"])
	assert.Equal(t, Bool(false), base["value"], "base must be untouched")

	patch["value"] = Bool(false)
	assert.Equal(t, Bool(true), merged["value"], "merged must not alias patch")
}

func TestCloneIsDeep(t *testing.T) {
	orig := Map{"seats": List{Map{"seat": String("driver")}}}

	clone := orig.Clone()
	clone["seats"].(List)[0].(Map)["seat"] = String("rear_left")

	assert.Equal(t, String("driver"), orig["seats"].(List)[0].(Map)["seat"])
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"same number", Number(1), Number(1), true},
		{"bool vs number", Bool(true), Number(1), false},
		{"maps any order", Map{"a": Number(1), "b": String("x")}, Map{"b": String("x"), "a": Number(1)}, true},
		{"map missing key", Map{"a": Number(1)}, Map{"b": Number(1)}, false},
		{"lists ordered", List{Number(1), Number(2)}, List{Number(2), Number(1)}, false},
		{"nulls", Null{}, Null{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
		})
	}
}

func TestJSONDecodeIntoMap(t *testing.T) {
	m, err := ParseMap([]byte(`{"value": true, "distance": 120.5, "direction": "rear", "tags": [1, "a"], "extra": null}`))
	require.NoError(t, err)

	want := Map{
		"value":     Bool(true),
		"distance":  Number(120.5),
		"direction": String("rear"),
		"tags":      List{Number(1), String("a")},
		"extra":     Null{},
	}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("ParseMap mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONDecodeRejectsNonObject(t *testing.T) {
	_, err := ParseMap([]byte(`[1,2]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected JSON object")
}

func TestMapMarshalJSONSortsKeys(t *testing.T) {
	data, err := json.Marshal(Map{"level": String("high"), "enabled": Bool(true), "duration_ms": Number(120000)})
	require.NoError(t, err)
	assert.Equal(t, `{"duration_ms":120000,"enabled":true,"level":"high"}`, string(data))
}

func TestFromAny(t *testing.T) {
	t.Run("yaml style mapping", func(t *testing.T) {
		v, err := FromAny(map[string]any{"value": 5400, "level": "high", "nested": map[any]any{"k": 0.5}})
		require.NoError(t, err)
		assert.Equal(t, Map{
			"value":  Number(5400),
			"level":  String("high"),
			"nested": Map{"k": Number(0.5)},
		}, v)
	})

	t.Run("unsupported type", func(t *testing.T) {
		_, err := FromAny(struct{}{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported type")
	})

	t.Run("non-string key", func(t *testing.T) {
		_, err := FromAny(map[any]any{1: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "non-string map key")
	})
}

func TestToAnyRoundTrip(t *testing.T) {
	m := Map{"a": List{Bool(true), Number(2)}, "b": Null{}}

	back, err := FromAny(ToAny(m))
	require.NoError(t, err)
	assert.True(t, Equal(m, back))
}
