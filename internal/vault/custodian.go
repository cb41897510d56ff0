// Package vault holds the reserve asset in a token account owned by a
// program-derived authority. Deposits are authorized by the depositor;
// withdrawals are authorized only by the derived vault authority.
package vault

import (
	"context"
	"fmt"

	"github.com/roach88/vaultwrap/internal/authority"
	"github.com/roach88/vaultwrap/internal/ir"
	"github.com/roach88/vaultwrap/internal/token"
)

// Signer produces derived signer identities from a stored bump.
// *authority.Deriver implements it.
type Signer interface {
	Sign(label string, config ir.Address, bump uint8) (ir.Address, error)
}

// Custodian moves the reserve asset into and out of the vault.
type Custodian struct {
	tokens token.Ledger
	signer Signer
}

// NewCustodian returns a custodian calling tokens for every transfer.
func NewCustodian(tokens token.Ledger, signer Signer) *Custodian {
	return &Custodian{tokens: tokens, signer: signer}
}

// DepositToVault transfers amount from the user's reserve account into the
// vault. user must own from and be in signers.
func (c *Custodian) DepositToVault(ctx context.Context, st token.State, from, vault, user ir.Address, signers ir.SignerSet, amount uint64) error {
	if amount == 0 {
		return fmt.Errorf("deposit: %w", token.ErrZeroAmount)
	}
	if err := c.tokens.Transfer(ctx, st, from, vault, user, signers, amount); err != nil {
		return fmt.Errorf("deposit: %w", err)
	}
	return nil
}

// WithdrawFromVault transfers amount from the vault to the reserve account
// to, signed by the vault authority of config reproduced from bump.
func (c *Custodian) WithdrawFromVault(ctx context.Context, st token.State, vault, to, config ir.Address, bump uint8, amount uint64) error {
	if amount == 0 {
		return fmt.Errorf("withdraw: %w", token.ErrZeroAmount)
	}
	auth, err := c.signer.Sign(authority.VaultAuthorityLabel, config, bump)
	if err != nil {
		return fmt.Errorf("withdraw: %w", err)
	}
	if err := c.tokens.Transfer(ctx, st, vault, to, auth, ir.NewSignerSet(auth), amount); err != nil {
		return fmt.Errorf("withdraw: %w", err)
	}
	return nil
}
