package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mackim-3768/Aegis-AI-DAS/internal/payload"
)

func TestTableCoversEveryID(t *testing.T) {
	require.Len(t, table, int(endOfTools)-1)
	for i, e := range table {
		assert.Equal(t, ToolID(i+1), e.id, "table row %d out of declaration order", i)
		assert.NotEmpty(t, e.defaults, "%s has no default payload", e.name)
	}
}

func TestKindPartition(t *testing.T) {
	assert.Len(t, ContextTools(), 25)
	assert.Len(t, ActionTools(), 25)

	for _, id := range ContextTools() {
		assert.Equal(t, Context, KindOf(id), id.Name())
	}
	for _, id := range ActionTools() {
		assert.Equal(t, Action, KindOf(id), id.Name())
	}
}

func TestResolve(t *testing.T) {
	id, ok := Resolve("get_vehicle_speed")
	require.True(t, ok)
	assert.Equal(t, GetVehicleSpeed, id)

	id, ok = Resolve("log_safety_event")
	require.True(t, ok)
	assert.Equal(t, LogSafetyEvent, id)

	_, ok = Resolve("GET_VEHICLE_SPEED")
	assert.False(t, ok, "lookup is by exact external name")

	_, ok = Resolve("does_not_exist")
	assert.False(t, ok)
}

func TestNamesAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, name := range Names() {
		assert.False(t, seen[name], "duplicate name %s", name)
		seen[name] = true
		id, ok := Resolve(name)
		require.True(t, ok)
		assert.Equal(t, name, id.Name())
	}
}

func TestUndeclaredID(t *testing.T) {
	var bogus ToolID = 999

	assert.False(t, bogus.Valid())
	assert.Equal(t, Kind(0), KindOf(bogus))
	assert.Empty(t, DefaultPayload(bogus))
	assert.Empty(t, AllowedKeys(bogus))
	assert.Empty(t, Sanitize(bogus, payload.Map{"value": payload.Bool(true)}))
	assert.Equal(t, "tool(999)", bogus.Name())
}

func TestDefaultPayloadIsACopy(t *testing.T) {
	p := DefaultPayload(GetPassengerSeatOccupancy)
	seats := p["seats"].(payload.List)
	require.Len(t, seats, 5)

	seats[0].(payload.Map)["occupied"] = payload.Bool(false)
	p["confidence"] = payload.Number(0)

	fresh := DefaultPayload(GetPassengerSeatOccupancy)
	assert.Equal(t, payload.Bool(true), fresh["seats"].(payload.List)[0].(payload.Map)["occupied"])
	assert.Equal(t, payload.Number(1), fresh["confidence"])
}

func TestAllowedKeys(t *testing.T) {
	assert.Equal(t, []string{"confidence", "direction", "distance", "value"}, AllowedKeys(GetV2XEmergencyVehicleProximity))
	assert.Equal(t, []string{"level"}, AllowedKeys(EscalateWarningLevel))
}

func TestSanitize(t *testing.T) {
	in := payload.Map{
		"value":       payload.Bool(true),
		"bogus_field": payload.Number(1),
	}

	out := Sanitize(GetDriverDrowsinessStatus, in)

	assert.Equal(t, payload.Map{"value": payload.Bool(true)}, out)
	assert.Contains(t, in, "bogus_field", "input is not modified")
}

func TestSanitizeOnlyUnknownKeysIsEmpty(t *testing.T) {
	out := Sanitize(GetVehicleSpeed, payload.Map{"bogus_field": payload.Number(1)})
	assert.Empty(t, out)
	assert.NotNil(t, out)
}

// Sanitize is idempotent and closed over the allowed key set for every tool.
func TestSanitizeProperties(t *testing.T) {
	probe := payload.Map{
		"value":      payload.Bool(true),
		"level":      payload.String("high"),
		"message":    payload.String("x"),
		"enabled":    payload.Bool(true),
		"seats":      payload.List{},
		"not_a_key":  payload.Number(1),
		"confidence": payload.Number(0.5),
	}

	for _, id := range Tools() {
		t.Run(id.Name(), func(t *testing.T) {
			once := Sanitize(id, probe)
			twice := Sanitize(id, once)
			assert.True(t, payload.Equal(once, twice), "sanitize must be idempotent")

			for k := range once {
				assert.True(t, IsAllowed(id, k), "key %q not allowed for %s", k, id.Name())
			}
			assert.NotContains(t, once, "not_a_key")
		})
	}
}

func TestToolIDText(t *testing.T) {
	data, err := json.Marshal(map[ToolID]int{GetVehicleSpeed: 1})
	require.NoError(t, err)
	assert.Equal(t, `{"get_vehicle_speed":1}`, string(data))

	var back map[ToolID]int
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, 1, back[GetVehicleSpeed])

	var id ToolID
	assert.Error(t, id.UnmarshalText([]byte("nope")))
}

func TestParseKind(t *testing.T) {
	k, ok := ParseKind("context")
	require.True(t, ok)
	assert.Equal(t, Context, k)

	k, ok = ParseKind("ACTION")
	require.True(t, ok)
	assert.Equal(t, Action, k)

	_, ok = ParseKind("sensor")
	assert.False(t, ok)

	assert.Equal(t, "CONTEXT", Context.String())
}
