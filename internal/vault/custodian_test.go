package vault

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
	usdc    = ir.AddressFromSeed("usdc")
	alice   = ir.AddressFromSeed("alice")
	reserve = ir.AddressFromSeed("alice/usdc")
)

type fixture struct {
	st     *token.MemState
	d      *authority.Deriver
	config ir.Address
	vault  ir.Address
	auth   authority.Authorities
}

func newFixture(t *testing.T, vaultBalance uint64) fixture {
	t.Helper()
	ctx := context.Background()
	d := authority.NewDeriver(program)
	config, _, err := d.ConfigAddress()
	require.NoError(t, err)
	vault, _, err := d.VaultAddress(config)
	require.NoError(t, err)
	auth, err := d.Authorities(config)
	require.NoError(t, err)

	issuer := ir.AddressFromSeed("issuer")
	st := token.NewMemState()
	p := token.Program{}
	require.NoError(t, p.InitializeMint(ctx, st, usdc, &issuer, 6))
	require.NoError(t, p.InitializeAccount(ctx, st, reserve, usdc, alice))
	require.NoError(t, p.InitializeAccount(ctx, st, vault, usdc, auth.Vault))
	require.NoError(t, p.MintTo(ctx, st, usdc, reserve, issuer, ir.NewSignerSet(issuer), 100))
	if vaultBalance > 0 {
		require.NoError(t, p.MintTo(ctx, st, usdc, vault, issuer, ir.NewSignerSet(issuer), vaultBalance))
	}
	return fixture{st: st, d: d, config: config, vault: vault, auth: auth}
}

func TestDepositToVault(t *testing.T) {
	f := newFixture(t, 0)
	c := NewCustodian(token.Program{}, f.d)

	require.NoError(t, c.DepositToVault(context.Background(), f.st, reserve, f.vault, alice, ir.NewSignerSet(alice), 60))
	assert.Equal(t, uint64(40), f.st.Accounts[reserve].Amount)
	assert.Equal(t, uint64(60), f.st.Accounts[f.vault].Amount)
}

func TestDepositRequiresUserSignature(t *testing.T) {
	f := newFixture(t, 0)
	c := NewCustodian(token.Program{}, f.d)

	err := c.DepositToVault(context.Background(), f.st, reserve, f.vault, alice, ir.NewSignerSet(), 1)
	require.ErrorIs(t, err, token.ErrMissingSignature)

	err = c.DepositToVault(context.Background(), f.st, reserve, f.vault, alice, ir.NewSignerSet(alice), 101)
	require.ErrorIs(t, err, token.ErrInsufficientFunds)
	assert.Equal(t, uint64(100), f.st.Accounts[reserve].Amount)
}

func TestWithdrawFromVault(t *testing.T) {
	f := newFixture(t, 50)
	c := NewCustodian(token.Program{}, f.d)

	require.NoError(t, c.WithdrawFromVault(context.Background(), f.st, f.vault, reserve, f.config, f.auth.VaultBump, 20))
	assert.Equal(t, uint64(30), f.st.Accounts[f.vault].Amount)
	assert.Equal(t, uint64(120), f.st.Accounts[reserve].Amount)

	err := c.WithdrawFromVault(context.Background(), f.st, f.vault, reserve, f.config, f.auth.VaultBump, 31)
	require.ErrorIs(t, err, token.ErrInsufficientFunds)
}

func TestWithdrawWithWrongBumpFails(t *testing.T) {
	f := newFixture(t, 50)
	c := NewCustodian(token.Program{}, f.d)

	err := c.WithdrawFromVault(context.Background(), f.st, f.vault, reserve, f.config, f.auth.VaultBump-1, 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, token.ErrOwnerMismatch) || errors.Is(err, authority.ErrOnCurve), "got %v", err)
	assert.Equal(t, uint64(50), f.st.Accounts[f.vault].Amount)
}

func TestUserCannotWithdrawDirectly(t *testing.T) {
	f := newFixture(t, 50)

	err := token.Program{}.Transfer(context.Background(), f.st, f.vault, reserve, alice, ir.NewSignerSet(alice), 10)
	require.ErrorIs(t, err, token.ErrOwnerMismatch)
}

func TestWithdrawSignsAsVaultAuthority(t *testing.T) {
	ctrl := gomock.NewController(t)
	tokens := token.NewMockLedger(ctrl)
	d := authority.NewDeriver(program)
	config, _, err := d.ConfigAddress()
	require.NoError(t, err)
	auth, err := d.Authorities(config)
	require.NoError(t, err)
	st := token.NewMemState()
	vault := ir.AddressFromSeed("vault")

	tokens.EXPECT().
		Transfer(gomock.Any(), st, vault, reserve, auth.Vault, ir.NewSignerSet(auth.Vault), uint64(5)).
		Return(nil)

	c := NewCustodian(tokens, d)
	require.NoError(t, c.WithdrawFromVault(context.Background(), st, vault, reserve, config, auth.VaultBump, 5))
}

func TestZeroAmountNeverReachesTokenProgram(t *testing.T) {
	ctrl := gomock.NewController(t)
	tokens := token.NewMockLedger(ctrl)
	c := NewCustodian(tokens, authority.NewDeriver(program))
	st := token.NewMemState()

	err := c.DepositToVault(context.Background(), st, reserve, ir.AddressFromSeed("vault"), alice, ir.NewSignerSet(alice), 0)
	require.ErrorIs(t, err, token.ErrZeroAmount)

	err = c.WithdrawFromVault(context.Background(), st, ir.AddressFromSeed("vault"), reserve, ir.AddressFromSeed("config"), 255, 0)
	require.ErrorIs(t, err, token.ErrZeroAmount)
}

func TestTransferErrorsPropagate(t *testing.T) {
	ctrl := gomock.NewController(t)
	tokens := token.NewMockLedger(ctrl)
	st := token.NewMemState()
	vault := ir.AddressFromSeed("vault")

	tokens.EXPECT().
		Transfer(gomock.Any(), st, reserve, vault, alice, gomock.Any(), uint64(3)).
		Return(token.ErrMintMismatch)

	c := NewCustodian(tokens, authority.NewDeriver(program))
	err := c.DepositToVault(context.Background(), st, reserve, vault, alice, ir.NewSignerSet(alice), 3)
	require.ErrorIs(t, err, token.ErrMintMismatch)
}
