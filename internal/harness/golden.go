package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/mackim-3768/Aegis-AI-DAS/internal/payload"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/state"
)

// Snapshot is the part of a run compared against golden files.
type Snapshot struct {
	Scenario        string   `json:"scenario"`
	Severity        int      `json:"severity"`
	Summary         string   `json:"summary"`
	ActionToolNames []string `json:"action_tool_names"`
}

// SnapshotOf reduces the last inference in s to a Snapshot labelled name.
func SnapshotOf(name string, s state.AppState) Snapshot {
	names := s.LastInference.ActionToolNames
	if names == nil {
		names = []string{}
	}
	return Snapshot{
		Scenario:        name,
		Severity:        s.LastInference.Severity,
		Summary:         s.LastInference.Summary,
		ActionToolNames: names,
	}
}

// MarshalCanonical renders s as canonical JSON, the golden file format.
func (s Snapshot) MarshalCanonical() ([]byte, error) {
	names := make(payload.List, len(s.ActionToolNames))
	for i, n := range s.ActionToolNames {
		names[i] = payload.String(n)
	}
	return payload.MarshalCanonical(payload.Map{
		"scenario":          payload.String(s.Scenario),
		"severity":          payload.Number(s.Severity),
		"summary":           payload.String(s.Summary),
		"action_tool_names": names,
	})
}

// RunWithGolden runs script and compares its snapshot against
// testdata/golden/{script.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, script *Script) (*Result, error) {
	t.Helper()

	result, err := Run(script)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, script.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result's snapshot against the golden
// file for name.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := SnapshotOf(name, result.Final).MarshalCanonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
