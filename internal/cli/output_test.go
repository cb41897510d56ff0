package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vaultwrap/internal/engine"
	"github.com/roach88/vaultwrap/internal/ledger"
	"github.com/roach88/vaultwrap/internal/token"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Success(AuditView{TotalWrapped: 7, HolderSum: "7", Balanced: true}))

	resp := decode[AuditView](t, buf.String())
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)
	assert.Equal(t, uint64(7), resp.Data.TotalWrapped)
	assert.True(t, resp.Data.Balanced)
}

func TestOutputFormatter_JSONErrorWithDetails(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Error("UNDERFLOW", "unwrap rejected", map[string]string{"amount": "5"}))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	assert.Equal(t, "error", raw["status"])
	assert.NotContains(t, raw, "data")
	errObj := raw["error"].(map[string]any)
	assert.Equal(t, "UNDERFLOW", errObj["code"])
	assert.Equal(t, map[string]any{"amount": "5"}, errObj["details"])
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Success(AuditView{TotalWrapped: 3, VaultBalance: 3, DerivativeSupply: 3, HolderSum: "3", Holders: 1, Balanced: true}))
	assert.Contains(t, buf.String(), "holder sum:        3 (1 accounts)")
	assert.Contains(t, buf.String(), "✓ balanced")
}

func TestOutputFormatter_TextError(t *testing.T) {
	tests := []struct {
		name        string
		verbose     bool
		wantDetails bool
	}{
		{"quiet", false, false},
		{"verbose", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "text", Writer: out, ErrWriter: errOut, Verbose: tt.verbose}

			require.NoError(t, formatter.Error("INVALID_VAULT", "wrap rejected", map[string]string{"vault": "x"}))
			assert.Equal(t, "Error [INVALID_VAULT]: wrap rejected\n", out.String())
			if tt.wantDetails {
				assert.Contains(t, errOut.String(), "Details:")
			} else {
				assert.Empty(t, errOut.String())
			}
		})
	}
}

func TestReject(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
		wantExit int
		details  bool
	}{
		{"ledger error", ledger.ErrZeroAmount, "ZERO_AMOUNT", ExitFailure, false},
		{"ledger error with details", fmt.Errorf("unwrap: %w", &ledger.Error{Code: ledger.CodeUnderflow, Message: "m", Details: map[string]string{"amount": "1"}}), "UNDERFLOW", ExitFailure, true},
		{"token error", fmt.Errorf("transfer: %w", token.ErrInsufficientFunds), "INSUFFICIENT_FUNDS", ExitFailure, false},
		{"runtime error", engine.NewSignatureError("req-1", "alice"), "BAD_SIGNATURE", ExitFailure, false},
		{"unjudged error", errors.New("disk full"), "ERROR", ExitCommandError, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "json", Writer: buf}

			err := formatter.Reject("wrap rejected", tt.err)
			require.Error(t, err)
			assert.Equal(t, tt.wantExit, GetExitCode(err))
			assert.ErrorIs(t, err, tt.err)

			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.True(t, exitErr.Reported)

			resp := decode[any](t, buf.String())
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Contains(t, resp.Error.Message, "wrap rejected: ")
			assert.Equal(t, tt.details, resp.Error.Details != nil)
		})
	}
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))
	assert.Equal(t, ExitFailure, GetExitCode(fmt.Errorf("wrapped: %w", NewExitError(ExitFailure, "rejected"))))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))

	err := WrapExitError(ExitCommandError, "failed to open database", errors.New("locked"))
	assert.Equal(t, "failed to open database: locked", err.Error())
}
