package token

import "errors"

// Errors reported by the token program. Each is distinct and none is retried.
var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrAccountInUse      = errors.New("account already in use")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrOwnerMismatch     = errors.New("authority does not own the source")
	ErrMissingSignature  = errors.New("missing required signature")
	ErrMintMismatch      = errors.New("account mint does not match")
	ErrFixedSupply       = errors.New("mint has no mint authority")
	ErrZeroAmount        = errors.New("amount must be positive")
	ErrOverflow          = errors.New("token amount overflow")
)
