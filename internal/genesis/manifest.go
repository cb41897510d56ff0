// Package genesis compiles CUE deployment manifests and provisions the
// mints, wallets and token accounts they declare.
//
// A manifest looks like:
//
//	mint: usdc: { decimals: 6, authority: "issuer" }
//	mint: dac:  { decimals: 6, authority: "@mint_authority" }
//	wallet: issuer: {}
//	wallet: alice: balances: { usdc: 1000, dac: 0 }
//
// "@mint_authority" names the mint authority derived for the deployment's
// config record; such a mint can only be issued by the ledger, so it can
// never carry a starting balance.
package genesis

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/vaultwrap/internal/ir"
)

//go:embed schema.cue
var schemaCUE string

// DerivedMintAuthority is the authority value that binds a mint to the
// program's derived mint authority.
const DerivedMintAuthority = "@mint_authority"

// Manifest is a compiled deployment description. Slices are sorted by name.
type Manifest struct {
	Mints   []MintSpec
	Wallets []WalletSpec
}

// MintSpec declares one mint.
type MintSpec struct {
	Name     string
	ID       ir.Address
	Decimals uint8

	// Authority is a wallet name, DerivedMintAuthority, or "" for none.
	Authority string
}

// WalletSpec declares one identity and its token accounts.
type WalletSpec struct {
	Name     string
	Address  ir.Address
	Accounts []AccountSpec
}

// AccountSpec declares one token account and its starting balance.
type AccountSpec struct {
	Mint   string
	ID     ir.Address
	Amount uint64
}

// Mint returns the mint named name.
func (m *Manifest) Mint(name string) (MintSpec, bool) {
	for _, s := range m.Mints {
		if s.Name == name {
			return s, true
		}
	}
	return MintSpec{}, false
}

// Wallet returns the wallet named name.
func (m *Manifest) Wallet(name string) (WalletSpec, bool) {
	for _, w := range m.Wallets {
		if w.Name == name {
			return w, true
		}
	}
	return WalletSpec{}, false
}

// Account returns the token account of wallet for mint.
func (w WalletSpec) Account(mint string) (AccountSpec, bool) {
	for _, a := range w.Accounts {
		if a.Mint == mint {
			return a, true
		}
	}
	return AccountSpec{}, false
}

// MintID derives the default address of a mint name.
func MintID(name string) ir.Address {
	return ir.AddressFromSeed("mint/" + name)
}

// WalletAddress derives the default address of a wallet name.
func WalletAddress(name string) ir.Address {
	return ir.AddressFromSeed("wallet/" + name)
}

// AccountID derives the token account address of wallet for mint.
func AccountID(wallet, mint string) ir.Address {
	return ir.AddressFromSeed("account/" + wallet + "/" + mint)
}

// LoadFile reads and compiles a manifest file.
func LoadFile(path string) (*Manifest, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(path, src)
}

// Parse compiles manifest source; filename is used in error positions.
func Parse(filename string, src []byte) (*Manifest, error) {
	v := cuecontext.New().CompileBytes(src, cue.Filename(filename))
	return Compile(v)
}

// Compile validates v against the manifest schema and converts it.
// Uses CUE SDK's Go API directly (not CLI subprocess).
func Compile(v cue.Value) (*Manifest, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if err := checkTopLevel(v); err != nil {
		return nil, err
	}

	schema := v.Context().CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("genesis schema: %w", err)
	}
	unified := schema.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	m := &Manifest{}
	var err error
	if m.Mints, err = parseMints(unified); err != nil {
		return nil, err
	}
	if m.Wallets, err = parseWallets(unified); err != nil {
		return nil, err
	}
	if err := validate(m, unified); err != nil {
		return nil, err
	}
	return m, nil
}

func checkTopLevel(v cue.Value) error {
	iter, err := v.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		switch iter.Label() {
		case "mint", "wallet":
		default:
			return &CompileError{
				Field:   iter.Label(),
				Message: "unknown top-level field (want mint or wallet)",
				Pos:     iter.Value().Pos(),
			}
		}
	}
	return nil
}

func parseMints(v cue.Value) ([]MintSpec, error) {
	var mints []MintSpec

	mintsVal := v.LookupPath(cue.ParsePath("mint"))
	if !mintsVal.Exists() {
		return mints, nil
	}
	iter, err := mintsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		name := iter.Label()
		val := iter.Value()

		spec := MintSpec{Name: name, ID: MintID(name)}
		if spec.ID, err = optionalAddress(val, "id", spec.ID); err != nil {
			return nil, err
		}

		decimals, err := val.LookupPath(cue.ParsePath("decimals")).Uint64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		spec.Decimals = uint8(decimals)

		if a := val.LookupPath(cue.ParsePath("authority")); a.Exists() {
			if spec.Authority, err = a.String(); err != nil {
				return nil, formatCUEError(err)
			}
		}
		mints = append(mints, spec)
	}

	sort.Slice(mints, func(i, j int) bool { return mints[i].Name < mints[j].Name })
	return mints, nil
}

func parseWallets(v cue.Value) ([]WalletSpec, error) {
	var wallets []WalletSpec

	walletsVal := v.LookupPath(cue.ParsePath("wallet"))
	if !walletsVal.Exists() {
		return wallets, nil
	}
	iter, err := walletsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		name := iter.Label()
		val := iter.Value()

		w := WalletSpec{Name: name}
		if w.Address, err = optionalAddress(val, "address", WalletAddress(name)); err != nil {
			return nil, err
		}

		balIter, err := val.LookupPath(cue.ParsePath("balances")).Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for balIter.Next() {
			mint := balIter.Label()
			amount, err := balIter.Value().Uint64()
			if err != nil {
				return nil, formatCUEError(err)
			}
			w.Accounts = append(w.Accounts, AccountSpec{Mint: mint, ID: AccountID(name, mint), Amount: amount})
		}
		sort.Slice(w.Accounts, func(i, j int) bool { return w.Accounts[i].Mint < w.Accounts[j].Mint })
		wallets = append(wallets, w)
	}

	sort.Slice(wallets, func(i, j int) bool { return wallets[i].Name < wallets[j].Name })
	return wallets, nil
}

func optionalAddress(v cue.Value, field string, def ir.Address) (ir.Address, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return def, nil
	}
	s, err := f.String()
	if err != nil {
		return ir.Address{}, formatCUEError(err)
	}
	addr, err := ir.ParseAddress(s)
	if err != nil {
		return ir.Address{}, &CompileError{Field: field, Message: err.Error(), Pos: f.Pos()}
	}
	return addr, nil
}

// validate checks cross-references the schema cannot express.
func validate(m *Manifest, v cue.Value) error {
	seen := make(map[ir.Address]string)
	claim := func(addr ir.Address, what string, pos token.Pos) error {
		if prev, ok := seen[addr]; ok {
			return &CompileError{Field: what, Message: fmt.Sprintf("address %s already used by %s", addr, prev), Pos: pos}
		}
		seen[addr] = what
		return nil
	}

	for _, mint := range m.Mints {
		pos := v.LookupPath(cue.MakePath(cue.Str("mint"), cue.Str(mint.Name))).Pos()
		if err := claim(mint.ID, "mint "+mint.Name, pos); err != nil {
			return err
		}
		switch mint.Authority {
		case "", DerivedMintAuthority:
		default:
			if _, ok := m.Wallet(mint.Authority); !ok {
				return &CompileError{
					Field:   "mint." + mint.Name + ".authority",
					Message: fmt.Sprintf("unknown wallet %q", mint.Authority),
					Pos:     pos,
				}
			}
		}
	}

	for _, w := range m.Wallets {
		pos := v.LookupPath(cue.MakePath(cue.Str("wallet"), cue.Str(w.Name))).Pos()
		for _, a := range w.Accounts {
			field := "wallet." + w.Name + ".balances." + a.Mint
			mint, ok := m.Mint(a.Mint)
			if !ok {
				return &CompileError{Field: field, Message: fmt.Sprintf("unknown mint %q", a.Mint), Pos: pos}
			}
			if a.Amount > 0 && mint.Authority == "" {
				return &CompileError{Field: field, Message: "mint has no authority; starting balance must be 0", Pos: pos}
			}
			if a.Amount > 0 && mint.Authority == DerivedMintAuthority {
				return &CompileError{Field: field, Message: "derivative supply is issued only by wrapping; starting balance must be 0", Pos: pos}
			}
			if err := claim(a.ID, "account "+w.Name+"/"+a.Mint, pos); err != nil {
				return err
			}
		}
	}

	// Per-mint supply must fit in uint64.
	for _, mint := range m.Mints {
		var total uint64
		for _, w := range m.Wallets {
			if a, ok := w.Account(mint.Name); ok {
				if total > ^uint64(0)-a.Amount {
					return &CompileError{Field: "mint." + mint.Name, Message: "starting balances overflow supply"}
				}
				total += a.Amount
			}
		}
	}
	return nil
}

// CompileError represents a manifest error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
