// Package supply issues and retires the derivative token.
package supply

import (
	"context"
	"fmt"

	"github.com/roach88/vaultwrap/internal/authority"
	"github.com/roach88/vaultwrap/internal/ir"
	"github.com/roach88/vaultwrap/internal/token"
)

// Signer produces derived signer identities from a stored bump.
type Signer interface {
	Sign(label string, config ir.Address, bump uint8) (ir.Address, error)
}

// Controller changes derivative supply. Issue is signed by the derived mint
// authority; Retire is signed by the holder.
type Controller struct {
	tokens token.Ledger
	signer Signer
}

func NewController(tokens token.Ledger, signer Signer) *Controller {
	return &Controller{tokens: tokens, signer: signer}
}

// Issue mints amount of mint into to as the mint authority of config.
func (c *Controller) Issue(ctx context.Context, st token.State, mint, to, config ir.Address, bump uint8, amount uint64) error {
	if amount == 0 {
		return fmt.Errorf("issue: %w", token.ErrZeroAmount)
	}
	auth, err := c.signer.Sign(authority.MintAuthorityLabel, config, bump)
	if err != nil {
		return fmt.Errorf("issue: %w", err)
	}
	if err := c.tokens.MintTo(ctx, st, mint, to, auth, ir.NewSignerSet(auth), amount); err != nil {
		return fmt.Errorf("issue: %w", err)
	}
	return nil
}

// Retire burns amount from the holder's account. user must own from and be
// in signers.
func (c *Controller) Retire(ctx context.Context, st token.State, mint, from, user ir.Address, signers ir.SignerSet, amount uint64) error {
	if amount == 0 {
		return fmt.Errorf("retire: %w", token.ErrZeroAmount)
	}
	if err := c.tokens.Burn(ctx, st, mint, from, user, signers, amount); err != nil {
		return fmt.Errorf("retire: %w", err)
	}
	return nil
}
