package testutil

import (
	"fmt"
	"sync"
)

// FixedIDs returns the same id every time.
//
// Useful where one import or one entity is created per test and the id
// appears in golden output.
//
// Thread-safety: FixedIDs is stateless and safe for concurrent use.
type FixedIDs struct {
	id string
}

// NewFixedIDs returns a generator for id. An empty id means "test-id".
func NewFixedIDs(id string) *FixedIDs {
	if id == "" {
		id = "test-id"
	}
	return &FixedIDs{id: id}
}

// Generate returns the fixed id.
//
// Implements store.IDGenerator.
func (g *FixedIDs) Generate() string {
	return g.id
}

// SequentialIDs returns prefix-1, prefix-2, ...
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequentialIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialIDs returns a generator numbering from 1. An empty prefix
// means "id".
func NewSequentialIDs(prefix string) *SequentialIDs {
	if prefix == "" {
		prefix = "id"
	}
	return &SequentialIDs{prefix: prefix}
}

// Generate returns the next id.
func (g *SequentialIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
