package ledger

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes ledger errors.
type ErrorCode string

const (
	// CodeNotInitialized: Wrap/Unwrap/Config before Initialize.
	CodeNotInitialized ErrorCode = "NOT_INITIALIZED"

	// CodeInvalidMintAuthority: the derivative mint is not controlled by
	// the derived mint authority.
	CodeInvalidMintAuthority ErrorCode = "INVALID_MINT_AUTHORITY"

	// CodeMintMismatch: a supplied mint or account does not match config.
	CodeMintMismatch ErrorCode = "MINT_MISMATCH"

	// CodeInvalidVault: the supplied vault is not the configured vault.
	CodeInvalidVault ErrorCode = "INVALID_VAULT"

	// CodeZeroAmount: amount must be positive.
	CodeZeroAmount ErrorCode = "ZERO_AMOUNT"

	// CodeOverflow: total_wrapped + amount exceeds uint64.
	CodeOverflow ErrorCode = "OVERFLOW"

	// CodeUnderflow: total_wrapped - amount is negative.
	CodeUnderflow ErrorCode = "UNDERFLOW"
)

// Error is a validation failure detected by the ledger itself.
// Collaborator failures are not converted; they surface as the token
// program's own errors.
type Error struct {
	Code    ErrorCode
	Message string

	// Details contains additional context.
	Details map[string]string
}

// Sentinels for errors.Is. Any *Error with the same code matches.
var (
	ErrNotInitialized       = &Error{Code: CodeNotInitialized, Message: "config is not initialized"}
	ErrInvalidMintAuthority = &Error{Code: CodeInvalidMintAuthority, Message: "derivative mint authority is not the derived mint authority"}
	ErrMintMismatch         = &Error{Code: CodeMintMismatch, Message: "mint does not match config"}
	ErrInvalidVault         = &Error{Code: CodeInvalidVault, Message: "vault does not match config"}
	ErrZeroAmount           = &Error{Code: CodeZeroAmount, Message: "amount must be greater than zero"}
	ErrOverflow             = &Error{Code: CodeOverflow, Message: "total wrapped would overflow"}
	ErrUnderflow            = &Error{Code: CodeUnderflow, Message: "total wrapped would underflow"}
)

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// CodeOf returns the code of the first *Error in err's chain, or "" if none.
func CodeOf(err error) ErrorCode {
	var le *Error
	if errors.As(err, &le) {
		return le.Code
	}
	return ""
}

func newError(code ErrorCode, message string, details map[string]string) *Error {
	return &Error{Code: code, Message: message, Details: details}
}
