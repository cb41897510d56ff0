package genesis

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vaultwrap/internal/authority"
	"github.com/roach88/vaultwrap/internal/ir"
	"github.com/roach88/vaultwrap/internal/store"
)

const sampleManifest = `
mint: usdc: { decimals: 6, authority: "issuer" }
mint: dac: { decimals: 6, authority: "@mint_authority" }
mint: relic: {}
wallet: issuer: {}
wallet: alice: balances: { usdc: 1000, dac: 0 }
wallet: bob: balances: { usdc: 25 }
`

func compile(t *testing.T, src string) (*Manifest, error) {
	t.Helper()
	return Compile(cuecontext.New().CompileString(src))
}

func TestCompileManifest(t *testing.T) {
	m, err := compile(t, sampleManifest)
	require.NoError(t, err)

	require.Len(t, m.Mints, 3)
	assert.Equal(t, []string{"dac", "relic", "usdc"}, []string{m.Mints[0].Name, m.Mints[1].Name, m.Mints[2].Name})

	usdc, ok := m.Mint("usdc")
	require.True(t, ok)
	assert.Equal(t, uint8(6), usdc.Decimals)
	assert.Equal(t, "issuer", usdc.Authority)
	assert.Equal(t, MintID("usdc"), usdc.ID)

	relic, _ := m.Mint("relic")
	assert.Equal(t, uint8(0), relic.Decimals)
	assert.Empty(t, relic.Authority)

	alice, ok := m.Wallet("alice")
	require.True(t, ok)
	assert.Equal(t, WalletAddress("alice"), alice.Address)
	require.Len(t, alice.Accounts, 2)
	assert.Equal(t, AccountSpec{Mint: "dac", ID: AccountID("alice", "dac"), Amount: 0}, alice.Accounts[0])
	assert.Equal(t, AccountSpec{Mint: "usdc", ID: AccountID("alice", "usdc"), Amount: 1000}, alice.Accounts[1])

	issuer, _ := m.Wallet("issuer")
	assert.Empty(t, issuer.Accounts)
}

func TestCompileExplicitAddresses(t *testing.T) {
	addr := ir.AddressFromSeed("explicit")
	m, err := compile(t, `
mint: usdc: id: "`+addr.String()+`"
wallet: alice: address: "`+addr.String()+`x"
`)
	require.Error(t, err)
	assert.Nil(t, m)
	assert.Contains(t, err.Error(), "invalid address")

	m, err = compile(t, `mint: usdc: id: "`+addr.String()+`"`)
	require.NoError(t, err)
	assert.Equal(t, addr, m.Mints[0].ID)
}

func TestCompileRejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unknown top-level", `mints: usdc: {}`, "unknown top-level field"},
		{"unknown mint field", `mint: usdc: { supply: 5 }`, ""},
		{"decimals range", `mint: usdc: { decimals: 300 }`, ""},
		{"negative balance", `mint: usdc: { authority: "a" }
wallet: a: balances: usdc: -1`, ""},
		{"unknown authority", `mint: usdc: { authority: "ghost" }`, `unknown wallet "ghost"`},
		{"unknown mint", `wallet: a: balances: usdc: 1`, `unknown mint "usdc"`},
		{"fixed supply funded", `mint: relic: {}
wallet: a: balances: relic: 1`, "no authority"},
		{"derivative funded", `mint: dac: { authority: "@mint_authority" }
wallet: a: balances: dac: 1`, "issued only by wrapping"},
		{"supply overflow", `mint: usdc: { authority: "a" }
wallet: a: balances: usdc: 18446744073709551615
wallet: b: balances: usdc: 1`, "overflow"},
		{"duplicate address", `mint: usdc: { id: "` + WalletAddress("x").String() + `" }
mint: usdt: { id: "` + WalletAddress("x").String() + `" }`, "already used"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compile(t, tt.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.cue")
	require.NoError(t, os.WriteFile(path, []byte(sampleManifest), 0o644))

	m, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, m.Wallets, 3)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.cue"))
	require.Error(t, err)
}

func TestLoadFileReportsPosition(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.cue")
	require.NoError(t, os.WriteFile(path, []byte("mint: usdc: {\n  authority: \"ghost\"\n}\n"), 0o644))

	_, err := LoadFile(path)
	require.Error(t, err)
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "mint.usdc.authority", ce.Field)
	assert.Contains(t, err.Error(), "ghost")
}

func TestProvision(t *testing.T) {
	m, err := compile(t, sampleManifest)
	require.NoError(t, err)

	st, err := store.Open(filepath.Join(t.TempDir(), "genesis.db"))
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	d := authority.NewDeriver(ir.AddressFromSeed("program"))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	out, err := Provision(ctx, st, d, m, logger)
	require.NoError(t, err)
	assert.Len(t, out.Mints, 3)
	assert.Len(t, out.Wallets, 3)
	assert.Len(t, out.Accounts, 3)

	usdc, err := st.Mint(ctx, MintID("usdc"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1025), usdc.Supply)
	require.NotNil(t, usdc.MintAuthority)
	assert.Equal(t, WalletAddress("issuer"), *usdc.MintAuthority)

	configID, _, err := d.ConfigAddress()
	require.NoError(t, err)
	auths, err := d.Authorities(configID)
	require.NoError(t, err)
	dac, err := st.Mint(ctx, MintID("dac"))
	require.NoError(t, err)
	require.NotNil(t, dac.MintAuthority)
	assert.Equal(t, auths.Mint, *dac.MintAuthority)

	relic, err := st.Mint(ctx, MintID("relic"))
	require.NoError(t, err)
	assert.Nil(t, relic.MintAuthority)

	acct, err := st.TokenAccount(ctx, out.Accounts["alice/usdc"])
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), acct.Amount)
	assert.Equal(t, WalletAddress("alice"), acct.Owner)

	// A second run collides with the first and changes nothing.
	_, err = Provision(ctx, st, d, m, logger)
	require.Error(t, err)
	usdc, err = st.Mint(ctx, MintID("usdc"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1025), usdc.Supply)
}

func TestProvisionRejectsDanglingReferences(t *testing.T) {
	tests := []struct {
		name     string
		manifest *Manifest
		want     string
	}{
		{
			"unknown authority wallet",
			&Manifest{Mints: []MintSpec{{Name: "usdc", ID: MintID("usdc"), Authority: "ghost"}}},
			`unknown authority wallet "ghost"`,
		},
		{
			"unknown account mint",
			&Manifest{Wallets: []WalletSpec{{
				Name:     "alice",
				Address:  WalletAddress("alice"),
				Accounts: []AccountSpec{{Mint: "usdc", ID: AccountID("alice", "usdc")}},
			}}},
			`unknown mint "usdc"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := store.Open(":memory:")
			require.NoError(t, err)
			defer st.Close()

			ctx := context.Background()
			d := authority.NewDeriver(ir.AddressFromSeed("program"))
			_, err = Provision(ctx, st, d, tt.manifest, slog.New(slog.NewTextHandler(io.Discard, nil)))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)

			mints, err := st.Mints(ctx)
			require.NoError(t, err)
			assert.Empty(t, mints)
		})
	}
}
