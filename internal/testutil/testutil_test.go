package testutil

import (
	"crypto/ed25519"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequentialRequestIDs(t *testing.T) {
	g := NewSequentialRequestIDs("")
	assert.Equal(t, "req-1", g.Generate())
	assert.Equal(t, "req-2", g.Generate())

	g.Reset()
	assert.Equal(t, "req-1", g.Generate())

	custom := NewSequentialRequestIDs("scenario")
	assert.Equal(t, "scenario-1", custom.Generate())
}

func TestSequentialRequestIDs_Concurrent(t *testing.T) {
	g := NewSequentialRequestIDs("")

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[string]bool)
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id := g.Generate()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 1000)
	assert.Equal(t, "req-1001", g.Generate())
}

func TestKeypairDeterministic(t *testing.T) {
	a1 := NewKeypair("alice")
	a2 := NewKeypair("alice")
	b := NewKeypair("bob")

	assert.Equal(t, a1.Address, a2.Address)
	assert.NotEqual(t, a1.Address, b.Address)

	msg := []byte("wrap 100")
	sig := a1.Sign(msg)
	assert.True(t, ed25519.Verify(ed25519.PublicKey(a1.Address[:]), msg, sig))
	assert.False(t, ed25519.Verify(ed25519.PublicKey(b.Address[:]), msg, sig))
}
