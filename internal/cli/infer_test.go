package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inferResponse struct {
	Status string `json:"status"`
	Data   struct {
		Severity   int    `json:"severity"`
		Escalation string `json:"escalation"`
		Summary    string `json:"summary"`
		Actions    []struct {
			Tool     string         `json:"tool"`
			Payload  map[string]any `json:"payload"`
			Priority int            `json:"priority"`
		} `json:"actions"`
		Version int64  `json:"version"`
		Session string `json:"session"`
	} `json:"data"`
}

func TestInferCommand_Defaults(t *testing.T) {
	isolate(t)
	out, _, err := execute(t, "infer")
	require.NoError(t, err)

	assert.Contains(t, out, "Severity: 0 (low)")
	assert.Contains(t, out, "Summary:  No critical events detected")
	assert.Contains(t, out, "Actions:  none")
}

func TestInferCommand_Scenario(t *testing.T) {
	isolate(t)
	out, _, err := execute(t, "infer", "--scenario", "driver-fatigue", "--format", "json")
	require.NoError(t, err)

	var resp inferResponse
	decode(t, out, &resp)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 3, resp.Data.Severity)
	assert.Equal(t, "critical", resp.Data.Escalation)
	assert.Equal(t, "Triggered: Driver fatigue detected", resp.Data.Summary)
	require.Len(t, resp.Data.Actions, 7)
	assert.Equal(t, "trigger_drowsiness_alert_sound", resp.Data.Actions[0].Tool)
	assert.Equal(t, 3, resp.Data.Actions[0].Priority)
	assert.Equal(t, "escalate_warning_level", resp.Data.Actions[6].Tool)
	assert.Equal(t, "critical", resp.Data.Actions[6].Payload["level"])
	// scenario overrides, the scenario's inference, the final inference
	assert.Equal(t, int64(3), resp.Data.Version)
	assert.Empty(t, resp.Data.Session)
}

func TestInferCommand_ContextEdit(t *testing.T) {
	isolate(t)
	out, _, err := execute(t, "infer", "--context", `get_forward_collision_risk={"level":"mid","noise":1}`)
	require.NoError(t, err)

	assert.Contains(t, out, "Severity: 2 (high)")
	assert.Contains(t, out, "Triggered: Forward collision risk")
	assert.Contains(t, out, "trigger_hud_warning")
	assert.NotContains(t, out, "execute_emergency_stop_pull_over")
}

func TestInferCommand_ActionEditSurvives(t *testing.T) {
	isolate(t)
	out, _, err := execute(t, "infer",
		"--scenario", "low-friction",
		"--action", `trigger_emergency_call={"enabled":true}`,
		"--format", "json")
	require.NoError(t, err)

	var resp inferResponse
	decode(t, out, &resp)
	assert.Equal(t, 2, resp.Data.Severity)
	assert.Equal(t, "Triggered: Low visibility, Low friction", resp.Data.Summary)
	for _, a := range resp.Data.Actions {
		assert.NotEqual(t, "trigger_emergency_call", a.Tool, "manual edits are not inferred actions")
	}
}

func TestInferCommand_ProcessorFromConfig(t *testing.T) {
	isolate(t)
	t.Setenv("AEGIS_PROCESSOR", "npu")
	t.Setenv("AEGIS_DEBUG", "true")

	_, _, err := execute(t, "infer")
	require.NoError(t, err)
}

func TestInferCommand_PresetFile(t *testing.T) {
	isolate(t)
	presets := filepath.Join("..", "scenario", "testdata", "presets.yaml")

	out, _, err := execute(t, "infer", "--preset-file", presets, "--scenario", "night-rain", "--format", "json")
	require.NoError(t, err)

	var resp inferResponse
	decode(t, out, &resp)
	assert.Equal(t, 1, resp.Data.Severity)
	assert.Equal(t, "Triggered: Low visibility", resp.Data.Summary)
}

func TestInferCommand_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "unknown scenario",
			args:    []string{"--scenario", "driver-fatigu"},
			wantErr: `unknown scenario "driver-fatigu" (did you mean "driver-fatigue"?)`,
		},
		{
			name:    "unknown tool",
			args:    []string{"--context", `get_forward_colision_risk={}`},
			wantErr: `did you mean "get_forward_collision_risk"?`,
		},
		{
			name:    "wrong kind",
			args:    []string{"--action", `get_vehicle_speed={"value":10}`},
			wantErr: "get_vehicle_speed is a CONTEXT tool",
		},
		{
			name:    "missing equals",
			args:    []string{"--context", "get_vehicle_speed"},
			wantErr: "want name=JSON",
		},
		{
			name:    "invalid JSON",
			args:    []string{"--context", `get_vehicle_speed={value:10}`},
			wantErr: "invalid JSON object",
		},
		{
			name:    "JSON array",
			args:    []string{"--context", `get_vehicle_speed=[1]`},
			wantErr: "invalid JSON object",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			_, _, err := execute(t, append([]string{"infer"}, tt.args...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}

func TestInferCommand_VerboseLogs(t *testing.T) {
	isolate(t)
	t.Setenv("AEGIS_LOG_FORMAT", "json")

	_, stderr, err := execute(t, "infer", "-v",
		"--scenario", "system-intrusion",
		"--context", `get_vehicle_speed={"bogus":1}`)
	require.NoError(t, err)
	assert.Contains(t, stderr, `"msg":"scenario applied"`)
	assert.Contains(t, stderr, `"msg":"inference run"`)
	assert.Contains(t, stderr, `"msg":"context edit ignored"`, "debug level is enabled by -v")
}

func TestInferCommand_QuietAtWarnLevel(t *testing.T) {
	isolate(t)
	t.Setenv("AEGIS_LOG_LEVEL", "warn")

	_, stderr, err := execute(t, "infer", "--scenario", "system-intrusion")
	require.NoError(t, err)
	assert.Empty(t, stderr)
}
