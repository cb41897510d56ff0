package engine

import (
	"sync"

	"github.com/roach88/vaultwrap/internal/ledger"
)

// Result is the outcome of one request.
type Result struct {
	Receipt ledger.Receipt
	Err     error
}

// pending is a queued request with its reply channel.
// reply is buffered (size 1) so Run never blocks on a caller that gave up.
type pending struct {
	req   Request
	reply chan Result
}

// requestQueue is a thread-safe unbounded FIFO of pending requests.
//
// The queue uses a channel for signaling to enable context-aware waiting
// in the Run loop (prevents goroutine hangs on context cancellation).
type requestQueue struct {
	mu     sync.Mutex
	items  []pending
	closed bool
	signal chan struct{} // Signals availability (buffered, size 1)
}

func newRequestQueue() *requestQueue {
	return &requestQueue{
		items:  make([]pending, 0, 64),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds p to the back of the queue.
// Returns false if the queue is closed.
func (q *requestQueue) Enqueue(p pending) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.items = append(q.items, p)

	// Non-blocking: buffer of 1 coalesces multiple signals
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue removes the front item without blocking.
// Returns (pending{}, false) if the queue is empty.
func (q *requestQueue) TryDequeue() (pending, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return pending{}, false
	}

	p := q.items[0]

	// Clear the slot so the backing array does not retain the request.
	q.items[0] = pending{}

	if len(q.items) == 1 {
		q.items = q.items[:0]
	} else {
		q.items = q.items[1:]
	}

	return p, true
}

// Wait returns a channel that signals when items may be available.
// The channel is closed when the queue is closed.
func (q *requestQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *requestQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close stops further enqueues and wakes waiters.
// Items already queued remain and can still be dequeued.
func (q *requestQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}

// Drain closes the queue and removes every remaining item.
func (q *requestQueue) Drain() []pending {
	q.Close()

	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}
