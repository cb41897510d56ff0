package supply

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/roach88/vaultwrap/internal/authority"
	"github.com/roach88/vaultwrap/internal/ir"
	"github.com/roach88/vaultwrap/internal/token"
)

var (
	program = ir.AddressFromSeed("program")
	dac     = ir.AddressFromSeed("dac")
	alice   = ir.AddressFromSeed("alice")
	holding = ir.AddressFromSeed("alice/dac")
)

func setup(t *testing.T) (*token.MemState, *authority.Deriver, ir.Address, authority.Authorities) {
	t.Helper()
	ctx := context.Background()
	d := authority.NewDeriver(program)
	config, _, err := d.ConfigAddress()
	require.NoError(t, err)
	auth, err := d.Authorities(config)
	require.NoError(t, err)

	st := token.NewMemState()
	require.NoError(t, token.Program{}.InitializeMint(ctx, st, dac, &auth.Mint, 6))
	require.NoError(t, token.Program{}.InitializeAccount(ctx, st, holding, dac, alice))
	return st, d, config, auth
}

func TestIssueAndRetire(t *testing.T) {
	st, d, config, auth := setup(t)
	ctx := context.Background()
	c := NewController(token.Program{}, d)

	require.NoError(t, c.Issue(ctx, st, dac, holding, config, auth.MintBump, 100))
	assert.Equal(t, uint64(100), st.Mints[dac].Supply)
	assert.Equal(t, uint64(100), st.Accounts[holding].Amount)

	require.NoError(t, c.Retire(ctx, st, dac, holding, alice, ir.NewSignerSet(alice), 40))
	assert.Equal(t, uint64(60), st.Mints[dac].Supply)
	assert.Equal(t, uint64(60), st.Accounts[holding].Amount)
}

func TestIssueWithWrongBumpFails(t *testing.T) {
	st, d, config, auth := setup(t)
	c := NewController(token.Program{}, d)

	err := c.Issue(context.Background(), st, dac, holding, config, auth.MintBump-1, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, token.ErrOwnerMismatch) || errors.Is(err, authority.ErrOnCurve), "got %v", err)
	assert.Zero(t, st.Mints[dac].Supply)
}

func TestIssueWithOtherLabelFails(t *testing.T) {
	st, _, _, auth := setup(t)

	// The vault authority of the same config is not the mint authority.
	err := token.Program{}.MintTo(context.Background(), st, dac, holding, auth.Vault, ir.NewSignerSet(auth.Vault), 1)
	require.ErrorIs(t, err, token.ErrOwnerMismatch)
}

func TestRetireRequiresHolder(t *testing.T) {
	st, d, config, auth := setup(t)
	ctx := context.Background()
	c := NewController(token.Program{}, d)
	require.NoError(t, c.Issue(ctx, st, dac, holding, config, auth.MintBump, 10))

	err := c.Retire(ctx, st, dac, holding, alice, ir.NewSignerSet(), 1)
	require.ErrorIs(t, err, token.ErrMissingSignature)

	mallory := ir.AddressFromSeed("mallory")
	err = c.Retire(ctx, st, dac, holding, mallory, ir.NewSignerSet(mallory), 1)
	require.ErrorIs(t, err, token.ErrOwnerMismatch)

	err = c.Retire(ctx, st, dac, holding, alice, ir.NewSignerSet(alice), 11)
	require.ErrorIs(t, err, token.ErrInsufficientFunds)
	assert.Equal(t, uint64(10), st.Mints[dac].Supply)
}

func TestIssueSignsAsMintAuthority(t *testing.T) {
	ctrl := gomock.NewController(t)
	tokens := token.NewMockLedger(ctrl)
	d := authority.NewDeriver(program)
	config, _, err := d.ConfigAddress()
	require.NoError(t, err)
	auth, err := d.Authorities(config)
	require.NoError(t, err)
	st := token.NewMemState()

	tokens.EXPECT().
		MintTo(gomock.Any(), st, dac, holding, auth.Mint, ir.NewSignerSet(auth.Mint), uint64(9)).
		Return(nil)

	c := NewController(tokens, d)
	require.NoError(t, c.Issue(context.Background(), st, dac, holding, config, auth.MintBump, 9))
}

func TestZeroAmountRejectedLocally(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := NewController(token.NewMockLedger(ctrl), authority.NewDeriver(program))
	st := token.NewMemState()

	require.ErrorIs(t, c.Issue(context.Background(), st, dac, holding, ir.AddressFromSeed("config"), 255, 0), token.ErrZeroAmount)
	require.ErrorIs(t, c.Retire(context.Background(), st, dac, holding, alice, ir.NewSignerSet(alice), 0), token.ErrZeroAmount)
}
