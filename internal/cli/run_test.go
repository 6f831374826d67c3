package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScript = `name: fog
description: "Poor visibility in fog"
steps:
  - scenario: low-visibility
expect:
  severity: 2
  summary: "Triggered: Low visibility"
  actions:
    control_window_and_sunroof: {target: all, action: close}
`

const failingScript = `name: wrong-severity
description: "Expects the wrong severity"
steps:
  - scenario: low-visibility
expect:
  severity: 1
`

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRunCommand_HarnessTestdata(t *testing.T) {
	isolate(t)
	out, _, err := execute(t, "run", filepath.Join("..", "harness", "testdata", "scripts"))
	require.NoError(t, err)

	assert.Contains(t, out, "✓ driver-fatigue")
	assert.Contains(t, out, "✓ low-friction")
	assert.Contains(t, out, "✓ All scripts passed")
}

func TestRunCommand_Failure(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeScript(t, dir, "fog.yaml", passingScript)
	writeScript(t, dir, "wrong.yaml", failingScript)

	out, _, err := execute(t, "run", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✓ fog")
	assert.Contains(t, out, "✗ wrong-severity")
	assert.Contains(t, out, "Assertion failed: severity")
	assert.Contains(t, out, "Summary: 1 passed, 1 failed, 2 total")
}

func TestRunCommand_FailureJSON(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := writeScript(t, dir, "wrong.yaml", failingScript)

	out, _, err := execute(t, "run", path, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string    `json:"status"`
		Data   RunResult `json:"data"`
		Error  *CLIError `json:"error"`
	}
	decode(t, out, &resp)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_SCRIPT_FAILED", resp.Error.Code)
	require.Len(t, resp.Data.Scripts, 1)
	assert.False(t, resp.Data.Scripts[0].Pass)
	assert.Equal(t, path, resp.Data.Scripts[0].File)
}

func TestRunCommand_Golden(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeScript(t, dir, "fog.yaml", passingScript)

	out, _, err := execute(t, "run", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ fog (golden updated)")

	golden := filepath.Join(dir, "golden", "fog.golden")
	data, err := os.ReadFile(golden)
	require.NoError(t, err)
	assert.Equal(t,
		`{"action_tool_names":["trigger_navigation_notification","trigger_voice_prompt","update_ambient_mood_lighting","control_window_and_sunroof","log_safety_event","escalate_warning_level"],"scenario":"fog","severity":2,"summary":"Triggered: Low visibility"}`,
		string(data))

	_, _, err = execute(t, "run", dir)
	require.NoError(t, err, "golden directory is not scanned for scripts")

	require.NoError(t, os.WriteFile(golden, []byte(`{}`), 0o644))
	out, _, err = execute(t, "run", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "snapshot does not match")
}

func TestRunCommand_Filter(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeScript(t, dir, "fog.yaml", passingScript)
	writeScript(t, dir, "wrong.yaml", failingScript)

	out, _, err := execute(t, "run", dir, "--filter", "fo*")
	require.NoError(t, err)
	assert.Contains(t, out, "1 total")
}

func TestRunCommand_Errors(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	badYAML := writeScript(t, dir, "bad.yaml", "name: x\nstep: []\n")
	badScenario := writeScript(t, t.TempDir(), "ghost.yaml", "name: ghost\nsteps:\n  - scenario: ghost-town\n")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no args", []string{"run"}, "requires at least 1 arg"},
		{"missing path", []string{"run", filepath.Join(dir, "none")}, "failed to find scripts"},
		{"invalid script", []string{"run", badYAML}, "failed to load"},
		{"unknown scenario", []string{"run", badScenario}, `unknown scenario "ghost-town"`},
		{"bad filter", []string{"run", dir, "--filter", "["}, "invalid filter pattern"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}
