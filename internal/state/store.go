package state

import (
	"sync"
	"sync/atomic"
)

// Transform derives a new snapshot from the one it receives. It must be a
// pure function of its argument and must not modify it.
type Transform func(AppState) AppState

// Store owns the current snapshot.
//
// Reads are lock-free. Replace calls are serialized by a writer lock, so
// concurrent transforms never lose updates.
type Store struct {
	mu      sync.Mutex // serializes writers
	current atomic.Pointer[AppState]
	clock   *Clock

	notifyMu sync.Mutex // held while delivering, keeps notifications in version order

	subsMu  sync.Mutex
	subs    map[int]func(AppState)
	nextSub int
}

// NewStore creates a store publishing initial. The version clock resumes
// from initial.Version.
func NewStore(initial AppState) *Store {
	s := &Store{
		clock: NewClockAt(initial.Version),
		subs:  make(map[int]func(AppState)),
	}
	s.current.Store(&initial)
	return s
}

// Current returns the latest published snapshot.
func (s *Store) Current() AppState {
	return *s.current.Load()
}

// Replace applies fn to the current snapshot, stamps the result with the
// next version and publishes it. Subscribers are called after publication,
// outside the writer lock, in version order. A subscriber must not call
// Replace itself.
func (s *Store) Replace(fn Transform) AppState {
	s.mu.Lock()
	next := fn(*s.current.Load())
	next.Version = s.clock.Next()
	s.current.Store(&next)

	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	for _, sub := range s.subscribers() {
		sub(next)
	}
	return next
}

// Subscribe registers fn to be called once per Replace with the published
// snapshot. The returned function removes the subscription; calling it
// more than once is harmless.
func (s *Store) Subscribe(fn func(AppState)) (unsubscribe func()) {
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			s.subsMu.Unlock()
		})
	}
}

// subscribers returns the registered callbacks in registration order.
func (s *Store) subscribers() []func(AppState) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	out := make([]func(AppState), 0, len(s.subs))
	for id := 0; id < s.nextSub; id++ {
		if fn, ok := s.subs[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}
