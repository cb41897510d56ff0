// Package testutil holds deterministic stand-ins for the nondeterministic
// inputs of vaultwrap: request IDs and signing keys.
package testutil

import (
	"fmt"
	"sync"
)

// SequentialRequestIDs generates "<prefix>-1", "<prefix>-2", ... so that a
// scenario run twice journals identical request IDs and receipts.
//
// Implements ledger.RequestIDGenerator and engine.RequestIDGenerator.
// Safe for concurrent use.
type SequentialRequestIDs struct {
	prefix string

	mu  sync.Mutex
	seq int64
}

// NewSequentialRequestIDs creates a generator. An empty prefix means "req".
func NewSequentialRequestIDs(prefix string) *SequentialRequestIDs {
	if prefix == "" {
		prefix = "req"
	}
	return &SequentialRequestIDs{prefix: prefix}
}

// Generate returns the next request ID.
func (g *SequentialRequestIDs) Generate() string {
	g.mu.Lock()
	g.seq++
	n := g.seq
	g.mu.Unlock()
	return fmt.Sprintf("%s-%d", g.prefix, n)
}

// Reset restarts the sequence at 1.
func (g *SequentialRequestIDs) Reset() {
	g.mu.Lock()
	g.seq = 0
	g.mu.Unlock()
}
