package token

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vaultwrap/internal/ir"
)

var (
	usdc     = ir.AddressFromSeed("usdc")
	other    = ir.AddressFromSeed("other-mint")
	admin    = ir.AddressFromSeed("admin")
	alice    = ir.AddressFromSeed("alice")
	bob      = ir.AddressFromSeed("bob")
	aliceATA = ir.AddressFromSeed("alice/usdc")
	bobATA   = ir.AddressFromSeed("bob/usdc")
)

// setup creates a usdc mint owned by admin with funded alice and empty bob accounts.
func setup(t *testing.T, aliceBalance uint64) (*MemState, Program) {
	t.Helper()
	ctx := context.Background()
	st := NewMemState()
	p := Program{}

	require.NoError(t, p.InitializeMint(ctx, st, usdc, &admin, 6))
	require.NoError(t, p.InitializeAccount(ctx, st, aliceATA, usdc, alice))
	require.NoError(t, p.InitializeAccount(ctx, st, bobATA, usdc, bob))
	if aliceBalance > 0 {
		require.NoError(t, p.MintTo(ctx, st, usdc, aliceATA, admin, ir.NewSignerSet(admin), aliceBalance))
	}
	return st, p
}

func TestInitializeMintRejectsReuse(t *testing.T) {
	st, p := setup(t, 0)
	ctx := context.Background()

	err := p.InitializeMint(ctx, st, usdc, &admin, 6)
	require.ErrorIs(t, err, ErrAccountInUse)

	err = p.InitializeMint(ctx, st, aliceATA, nil, 0)
	require.ErrorIs(t, err, ErrAccountInUse)

	err = p.InitializeMint(ctx, st, ir.Address{}, nil, 0)
	require.ErrorIs(t, err, ir.ErrInvalidAddress)
}

func TestInitializeMintCopiesAuthority(t *testing.T) {
	ctx := context.Background()
	st := NewMemState()
	auth := admin

	require.NoError(t, Program{}.InitializeMint(ctx, st, usdc, &auth, 6))
	auth = bob

	m, err := st.Mint(ctx, usdc)
	require.NoError(t, err)
	require.NotNil(t, m.MintAuthority)
	assert.Equal(t, admin, *m.MintAuthority)
	assert.Zero(t, m.Supply)
}

func TestInitializeAccountRequiresMint(t *testing.T) {
	ctx := context.Background()
	st := NewMemState()

	err := Program{}.InitializeAccount(ctx, st, aliceATA, usdc, alice)
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestTransfer(t *testing.T) {
	st, p := setup(t, 100)
	ctx := context.Background()

	require.NoError(t, p.Transfer(ctx, st, aliceATA, bobATA, alice, ir.NewSignerSet(alice), 40))
	assert.Equal(t, uint64(60), st.Accounts[aliceATA].Amount)
	assert.Equal(t, uint64(40), st.Accounts[bobATA].Amount)
	assert.Equal(t, uint64(100), st.Mints[usdc].Supply)
}

func TestTransferErrors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		from, to  ir.Address
		authority ir.Address
		signers   ir.SignerSet
		amount    uint64
		want      error
	}{
		{"zero", aliceATA, bobATA, alice, ir.NewSignerSet(alice), 0, ErrZeroAmount},
		{"insufficient", aliceATA, bobATA, alice, ir.NewSignerSet(alice), 101, ErrInsufficientFunds},
		{"wrong owner", aliceATA, bobATA, bob, ir.NewSignerSet(bob), 1, ErrOwnerMismatch},
		{"unsigned", aliceATA, bobATA, alice, ir.NewSignerSet(bob), 1, ErrMissingSignature},
		{"missing source", ir.AddressFromSeed("nobody"), bobATA, alice, ir.NewSignerSet(alice), 1, ErrAccountNotFound},
		{"missing destination", aliceATA, ir.AddressFromSeed("nobody"), alice, ir.NewSignerSet(alice), 1, ErrAccountNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, p := setup(t, 100)
			err := p.Transfer(ctx, st, tt.from, tt.to, tt.authority, tt.signers, tt.amount)
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, uint64(100), st.Accounts[aliceATA].Amount)
			assert.Equal(t, uint64(0), st.Accounts[bobATA].Amount)
		})
	}
}

func TestTransferMintMismatch(t *testing.T) {
	st, p := setup(t, 100)
	ctx := context.Background()
	foreign := ir.AddressFromSeed("bob/other")

	require.NoError(t, p.InitializeMint(ctx, st, other, &admin, 0))
	require.NoError(t, p.InitializeAccount(ctx, st, foreign, other, bob))

	err := p.Transfer(ctx, st, aliceATA, foreign, alice, ir.NewSignerSet(alice), 1)
	require.ErrorIs(t, err, ErrMintMismatch)
}

func TestTransferToSelfIsNoop(t *testing.T) {
	st, p := setup(t, 10)
	ctx := context.Background()

	require.NoError(t, p.Transfer(ctx, st, aliceATA, aliceATA, alice, ir.NewSignerSet(alice), 10))
	assert.Equal(t, uint64(10), st.Accounts[aliceATA].Amount)
}

func TestTransferDestinationOverflow(t *testing.T) {
	st, p := setup(t, 1)
	ctx := context.Background()
	st.Accounts[bobATA] = ir.TokenAccount{ID: bobATA, Mint: usdc, Owner: bob, Amount: ^uint64(0)}

	err := p.Transfer(ctx, st, aliceATA, bobATA, alice, ir.NewSignerSet(alice), 1)
	require.ErrorIs(t, err, ErrOverflow)
	assert.Equal(t, uint64(1), st.Accounts[aliceATA].Amount)
}

func TestMintTo(t *testing.T) {
	st, p := setup(t, 0)
	ctx := context.Background()

	require.NoError(t, p.MintTo(ctx, st, usdc, bobATA, admin, ir.NewSignerSet(admin), 7))
	assert.Equal(t, uint64(7), st.Accounts[bobATA].Amount)
	assert.Equal(t, uint64(7), st.Mints[usdc].Supply)

	err := p.MintTo(ctx, st, usdc, bobATA, bob, ir.NewSignerSet(bob), 1)
	require.ErrorIs(t, err, ErrOwnerMismatch)

	err = p.MintTo(ctx, st, usdc, bobATA, admin, ir.NewSignerSet(), 1)
	require.ErrorIs(t, err, ErrMissingSignature)

	err = p.MintTo(ctx, st, usdc, bobATA, admin, ir.NewSignerSet(admin), 0)
	require.ErrorIs(t, err, ErrZeroAmount)
	assert.Equal(t, uint64(7), st.Mints[usdc].Supply)
}

func TestMintToFixedSupply(t *testing.T) {
	ctx := context.Background()
	st := NewMemState()
	p := Program{}
	require.NoError(t, p.InitializeMint(ctx, st, other, nil, 0))
	require.NoError(t, p.InitializeAccount(ctx, st, bobATA, other, bob))

	err := p.MintTo(ctx, st, other, bobATA, admin, ir.NewSignerSet(admin), 1)
	require.ErrorIs(t, err, ErrFixedSupply)
}

func TestMintToSupplyOverflow(t *testing.T) {
	st, p := setup(t, 0)
	ctx := context.Background()
	m := st.Mints[usdc]
	m.Supply = ^uint64(0)
	st.Mints[usdc] = m

	err := p.MintTo(ctx, st, usdc, bobATA, admin, ir.NewSignerSet(admin), 1)
	require.ErrorIs(t, err, ErrOverflow)
	assert.Equal(t, uint64(0), st.Accounts[bobATA].Amount)
}

func TestBurn(t *testing.T) {
	st, p := setup(t, 50)
	ctx := context.Background()

	require.NoError(t, p.Burn(ctx, st, usdc, aliceATA, alice, ir.NewSignerSet(alice), 20))
	assert.Equal(t, uint64(30), st.Accounts[aliceATA].Amount)
	assert.Equal(t, uint64(30), st.Mints[usdc].Supply)

	err := p.Burn(ctx, st, usdc, aliceATA, alice, ir.NewSignerSet(alice), 31)
	require.ErrorIs(t, err, ErrInsufficientFunds)

	err = p.Burn(ctx, st, other, aliceATA, alice, ir.NewSignerSet(alice), 1)
	require.ErrorIs(t, err, ErrMintMismatch)

	err = p.Burn(ctx, st, usdc, aliceATA, admin, ir.NewSignerSet(admin), 1)
	require.ErrorIs(t, err, ErrOwnerMismatch)

	assert.Equal(t, uint64(30), st.Accounts[aliceATA].Amount)
	assert.Equal(t, uint64(30), st.Mints[usdc].Supply)
}

func TestMemStateInUse(t *testing.T) {
	st, _ := setup(t, 0)
	ctx := context.Background()
	cfg := ir.AddressFromSeed("config")

	for _, id := range []ir.Address{usdc, aliceATA} {
		used, err := st.InUse(ctx, id)
		require.NoError(t, err)
		assert.True(t, used)
	}

	used, err := st.InUse(ctx, cfg)
	require.NoError(t, err)
	assert.False(t, used)

	st.Claimed[cfg] = struct{}{}
	used, err = st.InUse(ctx, cfg)
	require.NoError(t, err)
	assert.True(t, used)
}
