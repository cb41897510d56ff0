package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/vaultwrap/internal/ledger"
)

var _ ledger.Runtime = (*Store)(nil)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Atomic runs fn in one SQLite transaction. The transaction commits only if
// fn returns nil; an error or panic rolls back every write fn made.
func (s *Store) Atomic(ctx context.Context, fn func(ledger.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := fn(&txState{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// view returns state reading straight from the database, outside any
// transaction.
func (s *Store) view() *txState {
	return &txState{q: s.db}
}
