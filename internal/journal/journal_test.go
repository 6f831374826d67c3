package journal

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mackim-3768/Aegis-AI-DAS/internal/payload"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/state"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/testutil"
)

func openTemp(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := Open(path)
	require.NoError(t, err)
	defer j.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	j1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j1.StartSession(context.Background(), "s1", testutil.Epoch))
	require.NoError(t, j1.Close())

	j2, err := Open(path)
	require.NoError(t, err)
	defer j2.Close()

	sessions, err := j2.Sessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "s1", sessions[0].ID)
}

func TestOpen_Pragmas(t *testing.T) {
	j := openTemp(t)

	for name, want := range map[string]string{
		"journal_mode": "wal",
		"foreign_keys": "1",
		"user_version": "1",
	} {
		got, err := j.pragma(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
}

func TestOpen_Memory(t *testing.T) {
	j, err := Open(MemoryPath)
	require.NoError(t, err)
	defer j.Close()

	require.NoError(t, j.StartSession(context.Background(), "mem", testutil.Epoch))
	sessions, err := j.Sessions(context.Background())
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestOpen_BadPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "dir", "journal.db"))
	assert.Error(t, err)
}

func TestCloseNil(t *testing.T) {
	var j Journal
	assert.NoError(t, j.Close())
}

func TestTransitionsRoundTrip(t *testing.T) {
	ctx := context.Background()
	j := openTemp(t)
	require.NoError(t, j.StartSession(ctx, "s1", testutil.Epoch))

	tr := Transition{
		SessionID:  "s1",
		Version:    3,
		Digest:     "abc",
		Severity:   2,
		Summary:    "Triggered: Low friction",
		Debug:      true,
		Processor:  "GPU",
		RecordedAt: testutil.Epoch.Add(time.Minute),
	}
	require.NoError(t, j.WriteTransition(ctx, tr))

	dup := tr
	dup.Summary = "ignored"
	require.NoError(t, j.WriteTransition(ctx, dup), "duplicate writes are ignored")

	got, err := j.Transitions(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, tr, got[0])

	empty, err := j.Transitions(ctx, "nope")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestTransitionRequiresSession(t *testing.T) {
	j := openTemp(t)

	err := j.WriteTransition(context.Background(), Transition{SessionID: "ghost", RecordedAt: testutil.Epoch})
	assert.Error(t, err, "foreign keys are enforced")
}

func TestLogEntriesRoundTrip(t *testing.T) {
	ctx := context.Background()
	j := openTemp(t)
	require.NoError(t, j.StartSession(ctx, "s1", testutil.Epoch))

	entries := []state.LogEntry{
		{ID: 1, Kind: state.LogSystem, Timestamp: testutil.Epoch, Message: "scenario applied: Low Friction"},
		{ID: 2, Kind: state.LogThought, Timestamp: testutil.Epoch.Add(time.Second), Message: "전방 충돌 위험",
			Payload: payload.Map{"severity": payload.Number(3), "actions": payload.List{payload.String("log_safety_event")}}},
		{ID: 3, Kind: state.LogAction, Timestamp: testutil.Epoch.Add(2 * time.Second)},
	}
	for _, e := range entries {
		require.NoError(t, j.WriteLogEntry(ctx, "s1", e))
	}

	got, err := j.LogEntries(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}
