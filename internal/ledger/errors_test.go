package ledger

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("wrap: %w", newError(CodeMintMismatch, "reserve account mint does not match config", nil))

	assert.ErrorIs(t, err, ErrMintMismatch)
	assert.NotErrorIs(t, err, ErrInvalidVault)
	assert.Equal(t, CodeMintMismatch, CodeOf(err))
}

func TestCodeOfNonLedgerError(t *testing.T) {
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("other")))
	assert.Equal(t, ErrorCode(""), CodeOf(nil))
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "ZERO_AMOUNT: amount must be greater than zero", ErrZeroAmount.Error())
}
