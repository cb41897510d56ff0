package ledger

import (
	"context"
	"fmt"
	"strconv"

	"github.com/roach88/vaultwrap/internal/ir"
)

// checkMints validates the mints named by an Initialize request.
func checkMints(ctx context.Context, tx Tx, req InitializeRequest, mintAuthority ir.Address) error {
	if req.DerivativeMint == req.ReserveMint {
		return newError(CodeMintMismatch, "derivative and reserve mint must differ", map[string]string{
			"mint": req.DerivativeMint.String(),
		})
	}
	dm, err := tx.Mint(ctx, req.DerivativeMint)
	if err != nil {
		return fmt.Errorf("derivative mint: %w", err)
	}
	if dm.MintAuthority == nil || *dm.MintAuthority != mintAuthority {
		details := map[string]string{"expected": mintAuthority.String(), "actual": "none"}
		if dm.MintAuthority != nil {
			details["actual"] = dm.MintAuthority.String()
		}
		return newError(CodeInvalidMintAuthority, ErrInvalidMintAuthority.Message, details)
	}
	if _, err := tx.Mint(ctx, req.ReserveMint); err != nil {
		return fmt.Errorf("reserve mint: %w", err)
	}
	return nil
}

// validateMovement checks a Wrap or Unwrap request against config before
// any token moves. Counter arithmetic is checked by the caller.
func validateMovement(ctx context.Context, tx Tx, cfg ir.Config, req WrapRequest) error {
	if req.DerivativeMint != cfg.DerivativeMint {
		return mintMismatch("derivative mint", cfg.DerivativeMint, req.DerivativeMint)
	}
	reserve, err := tx.TokenAccount(ctx, req.ReserveAccount)
	if err != nil {
		return fmt.Errorf("reserve account: %w", err)
	}
	if reserve.Mint != cfg.ReserveMint {
		return mintMismatch("reserve account", cfg.ReserveMint, reserve.Mint)
	}
	derivative, err := tx.TokenAccount(ctx, req.DerivativeAccount)
	if err != nil {
		return fmt.Errorf("derivative account: %w", err)
	}
	if derivative.Mint != cfg.DerivativeMint {
		return mintMismatch("derivative account", cfg.DerivativeMint, derivative.Mint)
	}
	if req.Vault != cfg.Vault {
		return newError(CodeInvalidVault, ErrInvalidVault.Message, map[string]string{
			"expected": cfg.Vault.String(),
			"actual":   req.Vault.String(),
		})
	}
	// A user account aliasing the vault would turn the vault leg of the
	// movement into a self-transfer.
	if req.ReserveAccount == cfg.Vault || req.DerivativeAccount == cfg.Vault {
		return newError(CodeInvalidVault, "user account must not be the vault", map[string]string{
			"vault": cfg.Vault.String(),
		})
	}
	if req.Amount == 0 {
		return ErrZeroAmount
	}
	return nil
}

func mintMismatch(what string, expected, actual ir.Address) *Error {
	return newError(CodeMintMismatch, what+" mint does not match config", map[string]string{
		"expected": expected.String(),
		"actual":   actual.String(),
	})
}

func amountDetails(total, amount uint64) map[string]string {
	return map[string]string{
		"total_wrapped": strconv.FormatUint(total, 10),
		"amount":        strconv.FormatUint(amount, 10),
	}
}
