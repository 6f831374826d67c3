package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mackim-3768/Aegis-AI-DAS/internal/payload"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/state"
)

// Session is one recorded run.
type Session struct {
	ID          string    `json:"id"`
	StartedAt   time.Time `json:"started_at"`
	Transitions int       `json:"transitions"`
}

// Transition is the journal row for one published snapshot.
type Transition struct {
	SessionID  string    `json:"session_id"`
	Version    int64     `json:"version"`
	Digest     string    `json:"digest"`
	Severity   int       `json:"severity"`
	Summary    string    `json:"summary"`
	Debug      bool      `json:"debug"`
	Processor  string    `json:"processor"`
	RecordedAt time.Time `json:"recorded_at"`
}

// TransitionFor builds the row describing snapshot s.
func TransitionFor(sessionID string, s state.AppState, at time.Time) (Transition, error) {
	digest, err := s.Digest()
	if err != nil {
		return Transition{}, err
	}
	return Transition{
		SessionID:  sessionID,
		Version:    s.Version,
		Digest:     digest,
		Severity:   s.LastInference.Severity,
		Summary:    s.LastInference.Summary,
		Debug:      s.Debug,
		Processor:  s.Processor.String(),
		RecordedAt: at,
	}, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// StartSession inserts a session row. Duplicate ids are ignored.
func (j *Journal) StartSession(ctx context.Context, id string, startedAt time.Time) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO sessions (id, started_at)
		VALUES (?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, formatTime(startedAt))
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	return nil
}

// WriteTransition inserts a transition row. A second write for the same
// session and version is ignored.
func (j *Journal) WriteTransition(ctx context.Context, t Transition) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO transitions
		(session_id, version, digest, severity, summary, debug, processor, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, version) DO NOTHING
	`,
		t.SessionID,
		t.Version,
		t.Digest,
		t.Severity,
		t.Summary,
		t.Debug,
		t.Processor,
		formatTime(t.RecordedAt),
	)
	if err != nil {
		return fmt.Errorf("write transition: %w", err)
	}
	return nil
}

// WriteLogEntry inserts one log entry. The payload is stored as canonical
// JSON. A second write of the same entry id is ignored.
func (j *Journal) WriteLogEntry(ctx context.Context, sessionID string, e state.LogEntry) error {
	var message, body sql.NullString
	if e.Message != "" {
		message = sql.NullString{String: e.Message, Valid: true}
	}
	if e.Payload != nil {
		data, err := payload.MarshalCanonical(e.Payload)
		if err != nil {
			return fmt.Errorf("write log entry %d: %w", e.ID, err)
		}
		body = sql.NullString{String: string(data), Valid: true}
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO log_entries (session_id, entry_id, kind, ts, message, payload)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, entry_id) DO NOTHING
	`, sessionID, e.ID, e.Kind.String(), formatTime(e.Timestamp), message, body)
	if err != nil {
		return fmt.Errorf("write log entry %d: %w", e.ID, err)
	}
	return nil
}

// Sessions returns every session, oldest first.
func (j *Journal) Sessions(ctx context.Context) ([]Session, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT s.id, s.started_at, COUNT(t.version)
		FROM sessions s
		LEFT JOIN transitions t ON t.session_id = s.id
		GROUP BY s.id, s.started_at
		ORDER BY s.started_at ASC, s.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		var s Session
		var started string
		if err := rows.Scan(&s.ID, &started, &s.Transitions); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if s.StartedAt, err = parseTime(started); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// Transitions returns the transitions of a session ordered by version.
func (j *Journal) Transitions(ctx context.Context, sessionID string) ([]Transition, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT session_id, version, digest, severity, summary, debug, processor, recorded_at
		FROM transitions
		WHERE session_id = ?
		ORDER BY version ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	transitions := []Transition{}
	for rows.Next() {
		var t Transition
		var recorded string
		if err := rows.Scan(&t.SessionID, &t.Version, &t.Digest, &t.Severity, &t.Summary, &t.Debug, &t.Processor, &recorded); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		if t.RecordedAt, err = parseTime(recorded); err != nil {
			return nil, err
		}
		transitions = append(transitions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transitions: %w", err)
	}
	return transitions, nil
}

// LogEntries returns the log of a session ordered by entry id.
func (j *Journal) LogEntries(ctx context.Context, sessionID string) ([]state.LogEntry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT entry_id, kind, ts, message, payload
		FROM log_entries
		WHERE session_id = ?
		ORDER BY entry_id ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query log entries: %w", err)
	}
	defer rows.Close()

	entries := []state.LogEntry{}
	for rows.Next() {
		e, err := scanLogEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate log entries: %w", err)
	}
	return entries, nil
}

func scanLogEntry(rows *sql.Rows) (state.LogEntry, error) {
	var e state.LogEntry
	var kind, ts string
	var message, body sql.NullString
	if err := rows.Scan(&e.ID, &kind, &ts, &message, &body); err != nil {
		return state.LogEntry{}, fmt.Errorf("scan log entry: %w", err)
	}

	k, ok := state.ParseLogKind(kind)
	if !ok {
		return state.LogEntry{}, fmt.Errorf("log entry %d: unknown kind %q", e.ID, kind)
	}
	e.Kind = k

	var err error
	if e.Timestamp, err = parseTime(ts); err != nil {
		return state.LogEntry{}, err
	}
	e.Message = message.String
	if body.Valid {
		if e.Payload, err = payload.ParseMap([]byte(body.String)); err != nil {
			return state.LogEntry{}, fmt.Errorf("log entry %d payload: %w", e.ID, err)
		}
	}
	return e, nil
}
