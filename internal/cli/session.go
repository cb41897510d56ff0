package cli

import (
	"context"
	"fmt"

	"github.com/roach88/vaultwrap/internal/authority"
	"github.com/roach88/vaultwrap/internal/engine"
	"github.com/roach88/vaultwrap/internal/ledger"
	"github.com/roach88/vaultwrap/internal/store"
)

// session is an open database with the ledger wired over it.
type session struct {
	opts    *RootOptions
	store   *store.Store
	deriver *authority.Deriver
	ledger  *ledger.Ledger

	engine *engine.Engine
	done   chan error
}

func openSession(opts *RootOptions) (*session, error) {
	program, err := opts.Config.Program()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid program id", err)
	}
	opts.Logger.Debug("opening database", "path", opts.Config.Database)
	st, err := store.Open(opts.Config.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	d := authority.NewDeriver(program)
	return &session{
		opts:    opts,
		store:   st,
		deriver: d,
		ledger:  ledger.New(st, d, ledger.WithLogger(opts.Logger)),
	}, nil
}

// submit runs req through a single-writer engine started on first use.
func (s *session) submit(ctx context.Context, build func(id string) (engine.Request, error)) (ledger.Receipt, error) {
	if s.engine == nil {
		s.engine = engine.New(s.ledger, engine.WithLogger(s.opts.Logger))
		s.done = make(chan error, 1)
		go func() { s.done <- s.engine.Run(context.WithoutCancel(ctx)) }()
	}
	req, err := build(s.engine.NewRequestID())
	if err != nil {
		return ledger.Receipt{}, err
	}
	return s.engine.Submit(ctx, req)
}

func (s *session) Close() error {
	if s.engine != nil {
		s.engine.Stop()
		if err := <-s.done; err != nil {
			s.opts.Logger.Error("engine stopped with error", "error", err)
		}
	}
	if err := s.store.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
