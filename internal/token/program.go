package token

//go:generate mockgen -source=program.go -destination=ledger_mocks.go -package=token

import (
	"context"
	"fmt"

	"github.com/roach88/vaultwrap/internal/ir"
)

// State is the account storage a token primitive runs against.
// Lookups of absent records return ErrAccountNotFound.
type State interface {
	Mint(ctx context.Context, id ir.Address) (ir.Mint, error)
	PutMint(ctx context.Context, mint ir.Mint) error
	TokenAccount(ctx context.Context, id ir.Address) (ir.TokenAccount, error)
	PutTokenAccount(ctx context.Context, account ir.TokenAccount) error

	// InUse reports whether any record (mint, token account or program
	// account) already occupies id.
	InUse(ctx context.Context, id ir.Address) (bool, error)
}

// Ledger is the subset of the token program vaultwrap calls into.
type Ledger interface {
	InitializeAccount(ctx context.Context, st State, id, mint, owner ir.Address) error
	Transfer(ctx context.Context, st State, from, to, authority ir.Address, signers ir.SignerSet, amount uint64) error
	MintTo(ctx context.Context, st State, mint, to, authority ir.Address, signers ir.SignerSet, amount uint64) error
	Burn(ctx context.Context, st State, mint, from, authority ir.Address, signers ir.SignerSet, amount uint64) error
}

// Program is the token program. It holds no state of its own.
type Program struct{}

var _ Ledger = Program{}

// InitializeMint creates a mint with zero supply.
func (Program) InitializeMint(ctx context.Context, st State, id ir.Address, authority *ir.Address, decimals uint8) error {
	if err := claim(ctx, st, id); err != nil {
		return fmt.Errorf("initialize mint %s: %w", id.Short(), err)
	}
	m := ir.Mint{ID: id, Supply: 0, Decimals: decimals}
	if authority != nil {
		a := *authority
		m.MintAuthority = &a
	}
	if err := st.PutMint(ctx, m); err != nil {
		return fmt.Errorf("initialize mint %s: %w", id.Short(), err)
	}
	return nil
}

// InitializeAccount creates an empty token account of mint owned by owner.
func (Program) InitializeAccount(ctx context.Context, st State, id, mint, owner ir.Address) error {
	if _, err := st.Mint(ctx, mint); err != nil {
		return fmt.Errorf("initialize account %s: mint %s: %w", id.Short(), mint.Short(), err)
	}
	if err := claim(ctx, st, id); err != nil {
		return fmt.Errorf("initialize account %s: %w", id.Short(), err)
	}
	if err := st.PutTokenAccount(ctx, ir.TokenAccount{ID: id, Mint: mint, Owner: owner}); err != nil {
		return fmt.Errorf("initialize account %s: %w", id.Short(), err)
	}
	return nil
}

// Transfer moves amount from one account to another of the same mint.
// authority must own the source and be in signers.
func (Program) Transfer(ctx context.Context, st State, from, to, authority ir.Address, signers ir.SignerSet, amount uint64) error {
	if amount == 0 {
		return fmt.Errorf("transfer: %w", ErrZeroAmount)
	}
	src, err := st.TokenAccount(ctx, from)
	if err != nil {
		return fmt.Errorf("transfer: source %s: %w", from.Short(), err)
	}
	dst, err := st.TokenAccount(ctx, to)
	if err != nil {
		return fmt.Errorf("transfer: destination %s: %w", to.Short(), err)
	}
	if src.Mint != dst.Mint {
		return fmt.Errorf("transfer: %w: %s -> %s", ErrMintMismatch, src.Mint.Short(), dst.Mint.Short())
	}
	if err := authorize(src.Owner, authority, signers); err != nil {
		return fmt.Errorf("transfer: %w", err)
	}
	if src.Amount < amount {
		return fmt.Errorf("transfer: %w: balance %d, need %d", ErrInsufficientFunds, src.Amount, amount)
	}
	if from == to {
		return nil
	}
	if dst.Amount > ^uint64(0)-amount {
		return fmt.Errorf("transfer: destination %w", ErrOverflow)
	}

	src.Amount -= amount
	dst.Amount += amount
	if err := st.PutTokenAccount(ctx, src); err != nil {
		return fmt.Errorf("transfer: %w", err)
	}
	if err := st.PutTokenAccount(ctx, dst); err != nil {
		return fmt.Errorf("transfer: %w", err)
	}
	return nil
}

// MintTo issues amount new tokens of mint into account to.
// authority must be the mint's authority and be in signers.
func (Program) MintTo(ctx context.Context, st State, mint, to, authority ir.Address, signers ir.SignerSet, amount uint64) error {
	if amount == 0 {
		return fmt.Errorf("mint to: %w", ErrZeroAmount)
	}
	m, err := st.Mint(ctx, mint)
	if err != nil {
		return fmt.Errorf("mint to: mint %s: %w", mint.Short(), err)
	}
	if m.MintAuthority == nil {
		return fmt.Errorf("mint to: %w", ErrFixedSupply)
	}
	dst, err := st.TokenAccount(ctx, to)
	if err != nil {
		return fmt.Errorf("mint to: destination %s: %w", to.Short(), err)
	}
	if dst.Mint != mint {
		return fmt.Errorf("mint to: %w: account holds %s", ErrMintMismatch, dst.Mint.Short())
	}
	if err := authorize(*m.MintAuthority, authority, signers); err != nil {
		return fmt.Errorf("mint to: %w", err)
	}
	if m.Supply > ^uint64(0)-amount {
		return fmt.Errorf("mint to: supply %w", ErrOverflow)
	}
	if dst.Amount > ^uint64(0)-amount {
		return fmt.Errorf("mint to: destination %w", ErrOverflow)
	}

	m.Supply += amount
	dst.Amount += amount
	if err := st.PutMint(ctx, m); err != nil {
		return fmt.Errorf("mint to: %w", err)
	}
	if err := st.PutTokenAccount(ctx, dst); err != nil {
		return fmt.Errorf("mint to: %w", err)
	}
	return nil
}

// Burn retires amount tokens of mint from account from.
// authority must own the account and be in signers.
func (Program) Burn(ctx context.Context, st State, mint, from, authority ir.Address, signers ir.SignerSet, amount uint64) error {
	if amount == 0 {
		return fmt.Errorf("burn: %w", ErrZeroAmount)
	}
	src, err := st.TokenAccount(ctx, from)
	if err != nil {
		return fmt.Errorf("burn: source %s: %w", from.Short(), err)
	}
	if src.Mint != mint {
		return fmt.Errorf("burn: %w: account holds %s", ErrMintMismatch, src.Mint.Short())
	}
	if err := authorize(src.Owner, authority, signers); err != nil {
		return fmt.Errorf("burn: %w", err)
	}
	if src.Amount < amount {
		return fmt.Errorf("burn: %w: balance %d, need %d", ErrInsufficientFunds, src.Amount, amount)
	}
	m, err := st.Mint(ctx, mint)
	if err != nil {
		return fmt.Errorf("burn: mint %s: %w", mint.Short(), err)
	}
	if m.Supply < amount {
		// Supply below a single holder's balance means the state is corrupt.
		return fmt.Errorf("burn: supply %d below balance %d: %w", m.Supply, src.Amount, ErrInsufficientFunds)
	}

	src.Amount -= amount
	m.Supply -= amount
	if err := st.PutTokenAccount(ctx, src); err != nil {
		return fmt.Errorf("burn: %w", err)
	}
	if err := st.PutMint(ctx, m); err != nil {
		return fmt.Errorf("burn: %w", err)
	}
	return nil
}

// authorize checks that authority is the expected owner and has signed.
func authorize(owner, authority ir.Address, signers ir.SignerSet) error {
	if owner != authority {
		return fmt.Errorf("%w: owner %s, authority %s", ErrOwnerMismatch, owner.Short(), authority.Short())
	}
	if !signers.Contains(authority) {
		return fmt.Errorf("%w: %s", ErrMissingSignature, authority.Short())
	}
	return nil
}

// claim fails with ErrAccountInUse if id is occupied.
func claim(ctx context.Context, st State, id ir.Address) error {
	if id.IsZero() {
		return fmt.Errorf("%w: zero address", ir.ErrInvalidAddress)
	}
	used, err := st.InUse(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return ErrAccountInUse
	}
	return nil
}
