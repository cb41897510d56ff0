package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/vaultwrap/internal/ir"
	"github.com/roach88/vaultwrap/internal/ledger"
)

// Ledger is the set of operations the engine hosts. *ledger.Ledger
// implements it.
type Ledger interface {
	Initialize(ctx context.Context, req ledger.InitializeRequest) (ledger.Receipt, error)
	Wrap(ctx context.Context, req ledger.WrapRequest) (ledger.Receipt, error)
	Unwrap(ctx context.Context, req ledger.UnwrapRequest) (ledger.Receipt, error)
}

// Engine is the single-writer request loop.
//
// Thread-safety model:
//   - Submit(): safe from any goroutine
//   - NewRequestID(): safe from any goroutine (delegates to thread-safe generator)
//   - Run(): must be called from exactly one goroutine
type Engine struct {
	ledger Ledger
	queue  *requestQueue
	ids    RequestIDGenerator
	logger *slog.Logger
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithRequestIDs sets the request ID generator. Default: UUIDv7Generator.
func WithRequestIDs(g RequestIDGenerator) EngineOption {
	return func(e *Engine) {
		e.ids = g
	}
}

// New creates an Engine hosting lg.
func New(lg Ledger, opts ...EngineOption) *Engine {
	e := &Engine{
		ledger: lg,
		queue:  newRequestQueue(),
		ids:    UUIDv7Generator{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewRequestID returns a fresh request ID. Callers set it on a Request
// before signing.
func (e *Engine) NewRequestID() string {
	return e.ids.Generate()
}

// Submit enqueues req and waits for its result.
//
// If ctx is cancelled while waiting, Submit returns ctx.Err(); the request
// still runs if it was already queued, and its result is discarded.
func (e *Engine) Submit(ctx context.Context, req Request) (ledger.Receipt, error) {
	if req.ID == "" {
		return ledger.Receipt{}, newMissingRequestIDError()
	}
	p := pending{req: req, reply: make(chan Result, 1)}
	if !e.queue.Enqueue(p) {
		return ledger.Receipt{}, ErrStopped
	}

	select {
	case <-ctx.Done():
		return ledger.Receipt{}, ctx.Err()
	case res := <-p.reply:
		return res.Receipt, res.Err
	}
}

// Run starts the single-writer loop.
// Blocks until ctx is cancelled or Stop() is called.
//
// CRITICAL: Must be called from exactly ONE goroutine.
//
// After Stop, requests already queued are still processed before Run
// returns. On ctx cancellation they are answered with ErrStopped.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("engine starting")

	for {
		p, ok := e.queue.TryDequeue()
		if ok {
			// Requests run to completion once started; ctx only stops
			// the loop between requests.
			res := e.process(context.WithoutCancel(ctx), p.req)
			p.reply <- res
			continue
		}

		select {
		case <-ctx.Done():
			e.logger.Info("engine stopping: context cancelled")
			for _, p := range e.queue.Drain() {
				p.reply <- Result{Err: ErrStopped}
			}
			return ctx.Err()

		case <-e.queue.Wait():
			// The signal channel closes when the queue is closed
			if e.queue.Len() == 0 && e.stopped() {
				e.logger.Info("engine stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop gracefully shuts down the engine.
// Closes the queue, which will cause Run() to return once it is empty.
func (e *Engine) Stop() {
	e.queue.Close()
}

func (e *Engine) stopped() bool {
	e.queue.mu.Lock()
	defer e.queue.mu.Unlock()
	return e.queue.closed
}

// process verifies and executes one request.
// CRITICAL: Called only from Run() goroutine - single-writer guarantee.
func (e *Engine) process(ctx context.Context, req Request) Result {
	signers, err := req.verify()
	if err != nil {
		e.logRejected(req, err)
		return Result{Err: err}
	}

	e.logger.Debug("processing request",
		"request_id", req.ID,
		"op", req.Op,
		"actor", req.Actor.Short(),
		"signers", len(signers))

	var rc ledger.Receipt
	switch req.Op {
	case ir.OpInitialize:
		rc, err = e.ledger.Initialize(ctx, req.initialize(signers))
	case ir.OpWrap:
		rc, err = e.ledger.Wrap(ctx, req.wrap(signers))
	case ir.OpUnwrap:
		rc, err = e.ledger.Unwrap(ctx, ledger.UnwrapRequest(req.wrap(signers)))
	default:
		err = newUnknownOpError(req.ID, string(req.Op))
	}
	if err != nil {
		e.logRejected(req, err)
		return Result{Err: fmt.Errorf("request %s: %w", req.ID, err)}
	}
	return Result{Receipt: rc}
}

// logRejected logs a failed request. Failures are returned to the caller
// and never retried.
func (e *Engine) logRejected(req Request, err error) {
	attrs := []any{
		"request_id", req.ID,
		"op", req.Op,
		"actor", req.Actor.String(),
		"error", err,
	}
	if code := ledger.CodeOf(err); code != "" {
		attrs = append(attrs, "code", code)
	}
	e.logger.Warn("request rejected", attrs...)
}
