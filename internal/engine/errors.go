package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents a request the engine refused before it reached
// the ledger.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// RequestID identifies the affected request.
	RequestID string

	// Details contains additional context.
	Details map[string]string
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeBadSignature indicates a signature did not verify.
	ErrCodeBadSignature RuntimeErrorCode = "BAD_SIGNATURE"

	// ErrCodeMissingRequestID indicates a request was submitted without an ID.
	ErrCodeMissingRequestID RuntimeErrorCode = "MISSING_REQUEST_ID"

	// ErrCodeUnknownOp indicates the request names no ledger operation.
	ErrCodeUnknownOp RuntimeErrorCode = "UNKNOWN_OP"
)

// ErrStopped is returned by Submit once the engine has stopped.
var ErrStopped = errors.New("engine stopped")

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("%s: %s (request=%s)", e.Code, e.Message, e.RequestID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsSignatureError returns true if the error is a signature verification error.
// Uses errors.As to handle wrapped errors.
func IsSignatureError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeBadSignature
	}
	return false
}

// NewSignatureError creates a RuntimeError for a signature that failed to verify.
func NewSignatureError(requestID, signer string) *RuntimeError {
	return &RuntimeError{
		Code:      ErrCodeBadSignature,
		Message:   "signature does not verify",
		RequestID: requestID,
		Details: map[string]string{
			"signer": signer,
		},
	}
}

func newMissingRequestIDError() *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeMissingRequestID,
		Message: "request has no request ID",
	}
}

func newUnknownOpError(requestID, op string) *RuntimeError {
	return &RuntimeError{
		Code:      ErrCodeUnknownOp,
		Message:   fmt.Sprintf("unknown operation %q", op),
		RequestID: requestID,
	}
}
