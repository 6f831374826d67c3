package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mackim-3768/Aegis-AI-DAS/internal/journal"
)

// recordSession runs infer with a journal at db and returns the session id.
func recordSession(t *testing.T, db string, args ...string) string {
	t.Helper()
	t.Setenv("AEGIS_JOURNAL_PATH", db)

	out, _, err := execute(t, append([]string{"infer", "--format", "json"}, args...)...)
	require.NoError(t, err)

	var resp inferResponse
	decode(t, out, &resp)
	require.NotEmpty(t, resp.Data.Session)
	t.Setenv("AEGIS_JOURNAL_PATH", "")
	return resp.Data.Session
}

func TestHistoryCommand_Sessions(t *testing.T) {
	isolate(t)
	db := filepath.Join(t.TempDir(), "aegis.db")
	id := recordSession(t, db, "--scenario", "driver-fatigue")

	out, _, err := execute(t, "history", "--db", db, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Data []journal.Session `json:"data"`
	}
	decode(t, out, &resp)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, id, resp.Data[0].ID)
	// initial snapshot plus three published transitions
	assert.Equal(t, 4, resp.Data[0].Transitions)

	text, _, err := execute(t, "history", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, text, "SESSION")
	assert.Contains(t, text, id)
}

func TestHistoryCommand_SessionDetail(t *testing.T) {
	isolate(t)
	db := filepath.Join(t.TempDir(), "aegis.db")
	id := recordSession(t, db, "--scenario", "forward-collision")

	out, _, err := execute(t, "history", "--db", db, "--session", id, "--log", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Data struct {
			Session     string `json:"session"`
			Transitions []struct {
				Version  int64  `json:"version"`
				Severity int    `json:"severity"`
				Summary  string `json:"summary"`
			} `json:"transitions"`
			Log []struct {
				ID      int    `json:"id"`
				Kind    string `json:"kind"`
				Message string `json:"message"`
			} `json:"log"`
		} `json:"data"`
	}
	decode(t, out, &resp)
	assert.Equal(t, id, resp.Data.Session)
	require.Len(t, resp.Data.Transitions, 4)
	assert.Equal(t, int64(0), resp.Data.Transitions[0].Version)
	assert.Equal(t, 0, resp.Data.Transitions[0].Severity)
	assert.Equal(t, 3, resp.Data.Transitions[3].Severity)
	assert.Equal(t, "Triggered: Forward collision risk", resp.Data.Transitions[3].Summary)

	require.NotEmpty(t, resp.Data.Log)
	assert.Equal(t, 1, resp.Data.Log[0].ID)
	assert.Equal(t, "SYSTEM", resp.Data.Log[0].Kind)
	assert.Equal(t, "scenario applied: Forward Collision", resp.Data.Log[0].Message)

	text, _, err := execute(t, "history", "--db", db, "--session", id, "--log")
	require.NoError(t, err)
	assert.Contains(t, text, "VERSION")
	assert.Contains(t, text, "THOUGHT")
}

func TestHistoryCommand_Errors(t *testing.T) {
	isolate(t)
	db := filepath.Join(t.TempDir(), "aegis.db")
	recordSession(t, db)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing db flag", []string{"history"}, `required flag(s) "db" not set`},
		{"missing db file", []string{"history", "--db", filepath.Join(t.TempDir(), "none.db")}, "database not found"},
		{"unknown session", []string{"history", "--db", db, "--session", "nope"}, `unknown session "nope"`},
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

func TestHistoryCommand_Empty(t *testing.T) {
	isolate(t)
	db := filepath.Join(t.TempDir(), "empty.db")
	j, err := journal.Open(db)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	out, _, err := execute(t, "history", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions recorded.")
}
