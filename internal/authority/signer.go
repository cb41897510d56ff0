package authority

import (
	"fmt"

	"github.com/roach88/vaultwrap/internal/ir"
)

// Authorities are the two derived signers of one config record.
type Authorities struct {
	Mint      ir.Address
	MintBump  uint8
	Vault     ir.Address
	VaultBump uint8
}

// Deriver is the signing capability of a single program. It is the only
// source of signer identities for program-derived addresses.
//
// Thread-safety: Deriver is immutable and safe for concurrent use.
type Deriver struct {
	program ir.Address
}

// NewDeriver binds the capability to a program id.
func NewDeriver(program ir.Address) *Deriver {
	return &Deriver{program: program}
}

// Program returns the program id this capability acts for.
func (d *Deriver) Program() ir.Address {
	return d.program
}

// ConfigAddress derives the singleton config record address.
func (d *Deriver) ConfigAddress() (ir.Address, uint8, error) {
	return FindProgramAddress([][]byte{[]byte(ConfigLabel)}, d.program)
}

// VaultAddress derives the reserve custody account of a config.
func (d *Deriver) VaultAddress(config ir.Address) (ir.Address, uint8, error) {
	return FindProgramAddress([][]byte{[]byte(VaultLabel), config[:]}, d.program)
}

// Find derives the authority for label under config and returns its bump.
// Only used at initialization; later calls re-supply the stored bump to Sign.
func (d *Deriver) Find(label string, config ir.Address) (ir.Address, uint8, error) {
	return Derive(label, config, d.program)
}

// Authorities derives both the mint and the vault authority of config.
func (d *Deriver) Authorities(config ir.Address) (Authorities, error) {
	mint, mintBump, err := d.Find(MintAuthorityLabel, config)
	if err != nil {
		return Authorities{}, err
	}
	vault, vaultBump, err := d.Find(VaultAuthorityLabel, config)
	if err != nil {
		return Authorities{}, err
	}
	return Authorities{Mint: mint, MintBump: mintBump, Vault: vault, VaultBump: vaultBump}, nil
}

// Sign reproduces the authority for label under config from a stored bump
// and returns it as a signer identity. The bump is never re-searched, so a
// substituted or stale bump yields a different identity (or ErrOnCurve),
// which the token program then rejects.
func (d *Deriver) Sign(label string, config ir.Address, bump uint8) (ir.Address, error) {
	addr, err := CreateProgramAddress([][]byte{[]byte(label), config[:], {bump}}, d.program)
	if err != nil {
		return ir.Address{}, fmt.Errorf("sign as %s: %w", label, err)
	}
	return addr, nil
}
