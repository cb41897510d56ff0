package store

import (
	"context"
	"fmt"

	"github.com/roach88/vaultwrap/internal/ir"
)

// Mint reads a mint outside any transaction.
func (s *Store) Mint(ctx context.Context, id ir.Address) (ir.Mint, error) {
	return s.view().Mint(ctx, id)
}

// TokenAccount reads a token account outside any transaction.
func (s *Store) TokenAccount(ctx context.Context, id ir.Address) (ir.TokenAccount, error) {
	return s.view().TokenAccount(ctx, id)
}

// Mints returns every mint ordered by id.
//
// Returns an empty slice (not nil) if none exist.
func (s *Store) Mints(ctx context.Context) ([]ir.Mint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, mint_authority, supply, decimals FROM mints
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query mints: %w", err)
	}
	defer rows.Close()

	mints := []ir.Mint{}
	for rows.Next() {
		m, err := scanMint(rows)
		if err != nil {
			return nil, err
		}
		mints = append(mints, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mints: %w", err)
	}
	return mints, nil
}

// AccountsByOwner returns every token account owned by owner, ordered by id.
func (s *Store) AccountsByOwner(ctx context.Context, owner ir.Address) ([]ir.TokenAccount, error) {
	return s.view().queryAccounts(ctx, `
		SELECT id, mint, owner, amount FROM token_accounts
		WHERE owner = ?
		ORDER BY id ASC
	`, owner[:])
}

// AccountsByMint returns every token account of mint, ordered by id.
func (s *Store) AccountsByMint(ctx context.Context, mint ir.Address) ([]ir.TokenAccount, error) {
	return s.view().AccountsByMint(ctx, mint)
}

// Journal returns journal entries with seq > after, ascending, at most limit
// entries (limit <= 0 means no limit).
//
// Returns an empty slice (not nil) if no entries match.
func (s *Store) Journal(ctx context.Context, after int64, limit int) ([]ir.JournalEntry, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, request_id, op, user, amount, total_wrapped, receipt_id
		FROM journal
		WHERE seq > ?
		ORDER BY seq ASC
		LIMIT ?
	`, after, limit)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	entries := []ir.JournalEntry{}
	for rows.Next() {
		var (
			e             ir.JournalEntry
			op            string
			user          []byte
			amount, total int64
		)
		if err := rows.Scan(&e.Seq, &e.RequestID, &op, &user, &amount, &total, &e.ReceiptID); err != nil {
			return nil, fmt.Errorf("scan journal: %w", err)
		}
		if e.User, err = ir.AddressFromBytes(user); err != nil {
			return nil, fmt.Errorf("scan journal user: %w", err)
		}
		e.Op = ir.Op(op)
		e.Amount = fromDB(amount)
		e.TotalWrapped = fromDB(total)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal: %w", err)
	}
	return entries, nil
}

// VerifyJournal recomputes every receipt ID and returns the seq of the first
// entry whose stored receipt does not match, or 0 if all match.
func (s *Store) VerifyJournal(ctx context.Context) (int64, error) {
	entries, err := s.Journal(ctx, 0, 0)
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		want, err := ir.ReceiptID(e)
		if err != nil {
			return 0, fmt.Errorf("verify journal seq %d: %w", e.Seq, err)
		}
		if want != e.ReceiptID {
			return e.Seq, nil
		}
	}
	return 0, nil
}
