package harness

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mackim-3768/Aegis-AI-DAS/internal/catalog"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/engine"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/payload"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/scenario"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/state"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/testutil"
)

func loadAll(t *testing.T) []*Script {
	t.Helper()
	paths, err := filepath.Glob(filepath.Join("testdata", "scripts", "*.yaml"))
	require.NoError(t, err)
	scripts := make([]*Script, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScript(path)
		require.NoError(t, err)
		scripts = append(scripts, s)
	}
	return scripts
}

func TestRun_Testdata(t *testing.T) {
	for _, s := range loadAll(t) {
		t.Run(s.Name, func(t *testing.T) {
			result, err := Run(s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
		})
	}
}

func TestRun_QuietDefaults(t *testing.T) {
	s, err := LoadScript(filepath.Join("testdata", "scripts", "quiet-defaults.yaml"))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	final := result.Final
	assert.True(t, final.Debug)
	assert.Equal(t, state.NPU, final.Processor)
	assert.Equal(t, int64(4), final.Version)

	kinds := make([]state.LogKind, 0, len(final.Log))
	for _, e := range final.Log {
		kinds = append(kinds, e.Kind)
	}
	assert.Equal(t, []state.LogKind{state.LogSystem, state.LogSystem, state.LogAction, state.LogThought}, kinds)

	hud := final.Payload(catalog.TriggerHUDWarning)
	assert.NotContains(t, hud, "blink")

	require.Len(t, result.Inferences, 1)
	assert.Equal(t, engine.NoEventsSummary, result.Inferences[0].Summary)
	assert.Empty(t, result.Inferences[0].ActionCalls)
}

func TestRun_Deterministic(t *testing.T) {
	s, err := LoadScript(filepath.Join("testdata", "scripts", "driver-fatigue.yaml"))
	require.NoError(t, err)

	first, err := Run(s)
	require.NoError(t, err)
	second, err := Run(s)
	require.NoError(t, err)

	if diff := cmp.Diff(first.Final.Log, second.Final.Log); diff != "" {
		t.Errorf("log differs between runs (-first +second):\n%s", diff)
	}
	d1, err := first.Final.Digest()
	require.NoError(t, err)
	d2, err := second.Final.Digest()
	require.NoError(t, err)
	assert.Equal(t, d1, d2)

	assert.Equal(t, testutil.Epoch.Add(time.Second), first.Final.Log[0].Timestamp)
}

func TestRun_ScenarioThenInferAgainIsStable(t *testing.T) {
	result, err := Run(&Script{
		Name: "repeat",
		Steps: []Step{
			{Scenario: "emergency-vehicle"},
			{Infer: true},
		},
	})
	require.NoError(t, err)
	require.Len(t, result.Inferences, 2)

	a, b := result.Inferences[0], result.Inferences[1]
	assert.Equal(t, a.Severity, b.Severity)
	assert.Equal(t, a.Summary, b.Summary)
	assert.Equal(t, a.ActionToolNames(), b.ActionToolNames())
}

func TestRun_UnknownScenario(t *testing.T) {
	_, err := Run(&Script{
		Name:  "bad",
		Steps: []Step{{Scenario: "alien-invasion"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `step 0 (scenario): unknown scenario "alien-invasion"`)
}

func TestRun_FailedExpectations(t *testing.T) {
	sev := 1
	result, err := Run(&Script{
		Name:  "wrong",
		Steps: []Step{{Scenario: "system-intrusion"}},
		Expect: Expect{
			Severity:      &sev,
			SummaryPrefix: "Nothing",
			Absent:        []string{"request_safe_mode"},
		},
	})
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "Assertion failed: severity")
	assert.Contains(t, result.Errors[0], "Expected: 1")
	assert.Contains(t, result.Errors[0], "Actual: 3")
	assert.Contains(t, result.Errors[1], "summary_prefix")
	assert.Contains(t, result.Errors[2], "absent (request_safe_mode)")
}

func TestHarness_WithPresets(t *testing.T) {
	set := scenario.NewSet(scenario.Preset{
		ID:    "gravel",
		Label: "Gravel",
		Overrides: []scenario.Override{{
			Tool:    catalog.GetRoadSurfaceFriction,
			Payload: payload.Of(payload.F("level", payload.String("mid"))),
		}},
	})
	h := New(WithPresets(set))

	sev := 1
	result, err := h.Run(&Script{
		Name:  "gravel",
		Steps: []Step{{Scenario: "gravel"}},
		Expect: Expect{
			Severity: &sev,
			Summary:  "Triggered: Low friction",
		},
	})
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	_, err = h.Run(&Script{Name: "builtin", Steps: []Step{{Scenario: "driver-fatigue"}}})
	require.Error(t, err, "built-in presets are not in a custom set")
}

type silentEngine struct{}

func (silentEngine) Infer(state.AppState) engine.Result {
	return engine.Result{Thought: "quiet", Summary: "quiet"}
}

func TestHarness_WithEngine(t *testing.T) {
	h := New(WithEngine(silentEngine{}))

	result, err := h.Run(&Script{
		Name:   "silent",
		Steps:  []Step{{Scenario: "forward-collision"}},
		Expect: Expect{Summary: "quiet", Absent: []string{"execute_emergency_stop_pull_over"}},
	})
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRunAll_MatchesSequential(t *testing.T) {
	scripts := loadAll(t)
	h := New()

	parallel, err := h.RunAll(context.Background(), scripts)
	require.NoError(t, err)
	require.Len(t, parallel, len(scripts))

	for i, s := range scripts {
		seq, err := h.Run(s)
		require.NoError(t, err)
		assert.Equal(t, s.Name, parallel[i].Name)
		assert.Equal(t, seq.Pass, parallel[i].Pass)
		assert.Equal(t, seq.Final.LastInference, parallel[i].Final.LastInference)
	}
}

func TestRunAll_Error(t *testing.T) {
	scripts := []*Script{
		{Name: "ok", Steps: []Step{{Infer: true}}},
		{Name: "broken", Steps: []Step{{Scenario: "nope"}}},
	}
	_, err := New().RunAll(context.Background(), scripts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestRunAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().RunAll(ctx, []*Script{{Name: "ok", Steps: []Step{{Infer: true}}}})
	require.ErrorIs(t, err, context.Canceled)
}
