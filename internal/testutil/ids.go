package testutil

import (
	"fmt"
	"sync"
)

// FixedIDGenerator returns the same identifier every time.
//
// Thread-safety: FixedIDGenerator is stateless and safe for concurrent use.
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator creates a generator for id. An empty id becomes
// "test-session-default".
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = "test-session-default"
	}
	return &FixedIDGenerator{id: id}
}

// Generate returns the fixed identifier.
func (g *FixedIDGenerator) Generate() string {
	return g.id
}

// SequenceIDGenerator returns prefix-1, prefix-2, ... in order.
type SequenceIDGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceIDGenerator creates a generator with the given prefix.
func NewSequenceIDGenerator(prefix string) *SequenceIDGenerator {
	return &SequenceIDGenerator{prefix: prefix}
}

// Generate returns the next identifier.
func (g *SequenceIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
