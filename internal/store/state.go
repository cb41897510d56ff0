package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/vaultwrap/internal/ir"
	"github.com/roach88/vaultwrap/internal/ledger"
	"github.com/roach88/vaultwrap/internal/token"
)

const kindConfig = "config"

// txState implements ledger.Tx over a querier.
type txState struct {
	q querier
}

var _ ledger.Tx = (*txState)(nil)

func (t *txState) Mint(ctx context.Context, id ir.Address) (ir.Mint, error) {
	row := t.q.QueryRowContext(ctx, `
		SELECT id, mint_authority, supply, decimals FROM mints WHERE id = ?
	`, id[:])
	m, err := scanMint(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Mint{}, fmt.Errorf("mint %s: %w", id.Short(), token.ErrAccountNotFound)
	}
	if err != nil {
		return ir.Mint{}, fmt.Errorf("read mint %s: %w", id.Short(), err)
	}
	return m, nil
}

func (t *txState) PutMint(ctx context.Context, mint ir.Mint) error {
	var auth []byte
	if mint.MintAuthority != nil {
		auth = mint.MintAuthority.Bytes()
	}
	_, err := t.q.ExecContext(ctx, `
		INSERT INTO mints (id, mint_authority, supply, decimals)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			mint_authority = excluded.mint_authority,
			supply = excluded.supply,
			decimals = excluded.decimals
	`, mint.ID[:], auth, toDB(mint.Supply), int64(mint.Decimals))
	if err != nil {
		return fmt.Errorf("write mint %s: %w", mint.ID.Short(), err)
	}
	return nil
}

func (t *txState) TokenAccount(ctx context.Context, id ir.Address) (ir.TokenAccount, error) {
	row := t.q.QueryRowContext(ctx, `
		SELECT id, mint, owner, amount FROM token_accounts WHERE id = ?
	`, id[:])
	a, err := scanTokenAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.TokenAccount{}, fmt.Errorf("token account %s: %w", id.Short(), token.ErrAccountNotFound)
	}
	if err != nil {
		return ir.TokenAccount{}, fmt.Errorf("read token account %s: %w", id.Short(), err)
	}
	return a, nil
}

func (t *txState) PutTokenAccount(ctx context.Context, account ir.TokenAccount) error {
	_, err := t.q.ExecContext(ctx, `
		INSERT INTO token_accounts (id, mint, owner, amount)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			mint = excluded.mint,
			owner = excluded.owner,
			amount = excluded.amount
	`, account.ID[:], account.Mint[:], account.Owner[:], toDB(account.Amount))
	if err != nil {
		return fmt.Errorf("write token account %s: %w", account.ID.Short(), err)
	}
	return nil
}

func (t *txState) InUse(ctx context.Context, id ir.Address) (bool, error) {
	var used bool
	err := t.q.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM mints WHERE id = ?1)
		    OR EXISTS (SELECT 1 FROM token_accounts WHERE id = ?1)
		    OR EXISTS (SELECT 1 FROM program_accounts WHERE id = ?1)
	`, id[:]).Scan(&used)
	if err != nil {
		return false, fmt.Errorf("check %s in use: %w", id.Short(), err)
	}
	return used, nil
}

func (t *txState) LoadConfig(ctx context.Context, id ir.Address) (ir.Config, error) {
	var data []byte
	err := t.q.QueryRowContext(ctx, `
		SELECT data FROM program_accounts WHERE id = ? AND kind = ?
	`, id[:], kindConfig).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Config{}, fmt.Errorf("config %s: %w", id.Short(), token.ErrAccountNotFound)
	}
	if err != nil {
		return ir.Config{}, fmt.Errorf("read config %s: %w", id.Short(), err)
	}

	var cfg ir.Config
	if err := cfg.UnmarshalBinary(data); err != nil {
		return ir.Config{}, fmt.Errorf("read config %s: %w", id.Short(), err)
	}
	return cfg, nil
}

func (t *txState) CreateConfig(ctx context.Context, id ir.Address, cfg ir.Config) error {
	used, err := t.InUse(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return token.ErrAccountInUse
	}
	data, err := cfg.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	_, err = t.q.ExecContext(ctx, `
		INSERT INTO program_accounts (id, kind, data) VALUES (?, ?, ?)
	`, id[:], kindConfig, data)
	if err != nil {
		return fmt.Errorf("create config %s: %w", id.Short(), err)
	}
	return nil
}

func (t *txState) SaveConfig(ctx context.Context, id ir.Address, cfg ir.Config) error {
	data, err := cfg.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	res, err := t.q.ExecContext(ctx, `
		UPDATE program_accounts SET data = ? WHERE id = ? AND kind = ?
	`, data, id[:], kindConfig)
	if err != nil {
		return fmt.Errorf("save config %s: %w", id.Short(), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save config %s: %w", id.Short(), err)
	}
	if n == 0 {
		return fmt.Errorf("save config %s: %w", id.Short(), token.ErrAccountNotFound)
	}
	return nil
}

func (t *txState) AccountsByMint(ctx context.Context, mint ir.Address) ([]ir.TokenAccount, error) {
	return t.queryAccounts(ctx, `
		SELECT id, mint, owner, amount FROM token_accounts
		WHERE mint = ?
		ORDER BY id ASC
	`, mint[:])
}

func (t *txState) LastSeq(ctx context.Context) (int64, error) {
	var seq int64
	if err := t.q.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM journal`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("read last seq: %w", err)
	}
	return seq, nil
}

func (t *txState) AppendJournal(ctx context.Context, e ir.JournalEntry) error {
	_, err := t.q.ExecContext(ctx, `
		INSERT INTO journal (seq, request_id, op, user, amount, total_wrapped, receipt_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.Seq, e.RequestID, string(e.Op), e.User[:], toDB(e.Amount), toDB(e.TotalWrapped), e.ReceiptID)
	if isUniqueViolation(err) {
		return fmt.Errorf("append journal: %w: %s", ErrDuplicateRequest, e.RequestID)
	}
	if err != nil {
		return fmt.Errorf("append journal: %w", err)
	}
	return nil
}

func (t *txState) queryAccounts(ctx context.Context, query string, args ...any) ([]ir.TokenAccount, error) {
	rows, err := t.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query token accounts: %w", err)
	}
	defer rows.Close()

	accounts := []ir.TokenAccount{}
	for rows.Next() {
		a, err := scanTokenAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate token accounts: %w", err)
	}
	return accounts, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanMint(row scanner) (ir.Mint, error) {
	var (
		id, auth []byte
		supply   int64
		decimals int64
	)
	if err := row.Scan(&id, &auth, &supply, &decimals); err != nil {
		return ir.Mint{}, err
	}
	m := ir.Mint{Supply: fromDB(supply), Decimals: uint8(decimals)}
	var err error
	if m.ID, err = ir.AddressFromBytes(id); err != nil {
		return ir.Mint{}, fmt.Errorf("scan mint: %w", err)
	}
	if auth != nil {
		a, err := ir.AddressFromBytes(auth)
		if err != nil {
			return ir.Mint{}, fmt.Errorf("scan mint authority: %w", err)
		}
		m.MintAuthority = &a
	}
	return m, nil
}

func scanTokenAccount(row scanner) (ir.TokenAccount, error) {
	var (
		id, mint, owner []byte
		amount          int64
	)
	if err := row.Scan(&id, &mint, &owner, &amount); err != nil {
		return ir.TokenAccount{}, err
	}
	var (
		a   = ir.TokenAccount{Amount: fromDB(amount)}
		err error
	)
	if a.ID, err = ir.AddressFromBytes(id); err != nil {
		return ir.TokenAccount{}, fmt.Errorf("scan token account: %w", err)
	}
	if a.Mint, err = ir.AddressFromBytes(mint); err != nil {
		return ir.TokenAccount{}, fmt.Errorf("scan token account mint: %w", err)
	}
	if a.Owner, err = ir.AddressFromBytes(owner); err != nil {
		return ir.TokenAccount{}, fmt.Errorf("scan token account owner: %w", err)
	}
	return a, nil
}

func toDB(v uint64) int64 {
	return int64(v)
}

func fromDB(v int64) uint64 {
	return uint64(v)
}
