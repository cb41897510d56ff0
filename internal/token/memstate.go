package token

import (
	"context"
	"fmt"

	"github.com/roach88/vaultwrap/internal/ir"
)

// MemState is a map-backed State. It has no transactions; callers that need
// all-or-nothing semantics use the SQLite store.
type MemState struct {
	Mints    map[ir.Address]ir.Mint
	Accounts map[ir.Address]ir.TokenAccount
	Claimed  map[ir.Address]struct{} // program accounts occupying an id
}

var _ State = (*MemState)(nil)

// NewMemState returns an empty in-memory state.
func NewMemState() *MemState {
	return &MemState{
		Mints:    make(map[ir.Address]ir.Mint),
		Accounts: make(map[ir.Address]ir.TokenAccount),
		Claimed:  make(map[ir.Address]struct{}),
	}
}

func (s *MemState) Mint(_ context.Context, id ir.Address) (ir.Mint, error) {
	m, ok := s.Mints[id]
	if !ok {
		return ir.Mint{}, fmt.Errorf("mint %s: %w", id.Short(), ErrAccountNotFound)
	}
	return m, nil
}

func (s *MemState) PutMint(_ context.Context, mint ir.Mint) error {
	s.Mints[mint.ID] = mint
	return nil
}

func (s *MemState) TokenAccount(_ context.Context, id ir.Address) (ir.TokenAccount, error) {
	a, ok := s.Accounts[id]
	if !ok {
		return ir.TokenAccount{}, fmt.Errorf("token account %s: %w", id.Short(), ErrAccountNotFound)
	}
	return a, nil
}

func (s *MemState) PutTokenAccount(_ context.Context, account ir.TokenAccount) error {
	s.Accounts[account.ID] = account
	return nil
}

func (s *MemState) InUse(_ context.Context, id ir.Address) (bool, error) {
	if _, ok := s.Mints[id]; ok {
		return true, nil
	}
	if _, ok := s.Accounts[id]; ok {
		return true, nil
	}
	_, ok := s.Claimed[id]
	return ok, nil
}
