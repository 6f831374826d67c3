package journal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mackim-3768/Aegis-AI-DAS/internal/state"
)

// IDGenerator produces session identifiers.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 session ids, so sessions
// sort by creation time.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7. It panics if the random source
// fails.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Recorder writes every snapshot published by a store into a Journal.
type Recorder struct {
	journal *Journal
	ids     IDGenerator
	now     func() time.Time
	logger  *zap.Logger

	mu        sync.Mutex
	sessionID string
	lastEntry int
	err       error
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithIDGenerator sets the session id source. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) RecorderOption {
	return func(r *Recorder) {
		r.ids = g
	}
}

// WithClock sets the clock stamping sessions and transitions.
func WithClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) {
		r.now = now
	}
}

// WithLogger sets the logger used to report write failures.
func WithLogger(l *zap.Logger) RecorderOption {
	return func(r *Recorder) {
		r.logger = l
	}
}

// NewRecorder creates a recorder writing to j.
func NewRecorder(j *Journal, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		journal: j,
		ids:     UUIDv7Generator{},
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Attach starts a new session, records the store's current snapshot and
// subscribes to every later one. The returned function stops recording.
func (r *Recorder) Attach(ctx context.Context, store *state.Store) (detach func(), err error) {
	r.mu.Lock()
	r.sessionID = r.ids.Generate()
	r.lastEntry = 0
	r.err = nil
	sessionID := r.sessionID
	r.mu.Unlock()

	if err := r.journal.StartSession(ctx, sessionID, r.now()); err != nil {
		return nil, err
	}
	if err := r.Record(ctx, store.Current()); err != nil {
		return nil, err
	}

	unsubscribe := store.Subscribe(func(s state.AppState) {
		// Failures are kept for Err and never reach the publisher.
		_ = r.Record(ctx, s)
	})
	r.logger.Debug("journal attached", zap.String("session", sessionID))
	return unsubscribe, nil
}

// SessionID returns the id of the current session, or "" before Attach.
func (r *Recorder) SessionID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessionID
}

// Err returns the first write failure since Attach, if any.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Record writes s as a transition plus any log entries not yet written.
func (r *Recorder) Record(ctx context.Context, s state.AppState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sessionID == "" {
		return fmt.Errorf("record v%d: recorder not attached", s.Version)
	}

	if err := r.record(ctx, s); err != nil {
		r.logger.Error("journal write failed",
			zap.String("session", r.sessionID),
			zap.Int64("version", s.Version),
			zap.Error(err))
		if r.err == nil {
			r.err = err
		}
		return err
	}
	return nil
}

func (r *Recorder) record(ctx context.Context, s state.AppState) error {
	t, err := TransitionFor(r.sessionID, s, r.now())
	if err != nil {
		return err
	}
	if err := r.journal.WriteTransition(ctx, t); err != nil {
		return err
	}
	for _, e := range s.Log {
		if e.ID <= r.lastEntry {
			continue
		}
		if err := r.journal.WriteLogEntry(ctx, r.sessionID, e); err != nil {
			return err
		}
		r.lastEntry = e.ID
	}
	return nil
}
