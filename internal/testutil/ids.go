// Package testutil provides shared helpers for deterministic tests.
package testutil

import (
	"fmt"
	"sync"
)

// SeqIDGenerator returns predictable record IDs ("ev-1", "ev-2", ...).
//
// The production log assigns random UUIDv7 IDs; tests that compare whole
// traces (golden files) swap this in so the output is stable.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SeqIDGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSeqIDGenerator creates a generator with the given prefix.
func NewSeqIDGenerator(prefix string) *SeqIDGenerator {
	return &SeqIDGenerator{prefix: prefix}
}

// Generate returns the next ID in the sequence.
func (g *SeqIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
