package engine

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(id string) pending {
	return pending{req: Request{ID: id}, reply: make(chan Result, 1)}
}

func TestRequestQueue_FIFO(t *testing.T) {
	q := newRequestQueue()

	for _, id := range []string{"A", "B", "C"} {
		require.True(t, q.Enqueue(item(id)))
	}

	for _, want := range []string{"A", "B", "C"} {
		got, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, want, got.req.ID)
	}

	_, ok := q.TryDequeue()
	assert.False(t, ok, "dequeue from empty queue should return false")
}

func TestRequestQueue_EnqueueAfterClose(t *testing.T) {
	q := newRequestQueue()
	q.Close()
	q.Close() // idempotent

	assert.False(t, q.Enqueue(item("late")), "enqueue after close should return false")
}

func TestRequestQueue_CloseWakesWaiter(t *testing.T) {
	q := newRequestQueue()
	done := make(chan struct{})

	go func() {
		<-q.Wait()
		close(done)
	}()
	q.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waiter did not wake after close")
	}
}

func TestRequestQueue_Drain(t *testing.T) {
	q := newRequestQueue()
	q.Enqueue(item("1"))
	q.Enqueue(item("2"))

	drained := q.Drain()
	assert.Len(t, drained, 2)
	assert.Equal(t, 0, q.Len())
	assert.False(t, q.Enqueue(item("3")))
}

func TestRequestQueue_ThreadSafe(t *testing.T) {
	q := newRequestQueue()

	const producers = 10
	const perProducer = 100

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(producerID int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Enqueue(item(fmt.Sprintf("%d-%d", producerID, i)))
			}
		}(p)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for {
		p, ok := q.TryDequeue()
		if !ok {
			break
		}
		seen[p.req.ID] = true
	}
	assert.Len(t, seen, producers*perProducer)
}
