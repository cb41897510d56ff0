// Package authority derives program-controlled signer identities.
//
// A derived address is the SHA-256 of its seeds, a bump byte, the owning
// program id and a fixed marker. Bumps are searched from 255 downward until
// the hash does not decode as an edwards25519 point: such an address has no
// private key, so the only way to act for it is through this package's
// signing capability, bound to the deriving program.
package authority

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"

	"github.com/roach88/vaultwrap/internal/ir"
)

// Fixed seed labels.
const (
	ConfigLabel         = "config"
	VaultLabel          = "reserve_vault"
	MintAuthorityLabel  = "mint_authority"
	VaultAuthorityLabel = "vault_authority"
)

// Seed limits per derivation.
const (
	MaxSeeds      = 16
	MaxSeedLength = 32
)

const pdaMarker = "ProgramDerivedAddress"

var (
	// ErrMaxSeedLength is returned when too many or too long seeds are supplied.
	ErrMaxSeedLength = errors.New("seed limits exceeded")

	// ErrOnCurve is returned when explicit seeds hash to a valid curve point.
	ErrOnCurve = errors.New("derived address lies on the ed25519 curve")

	// ErrNoViableBump is returned when no bump in [0, 255] yields an
	// off-curve address. Not expected in practice; callers treat it as fatal.
	ErrNoViableBump = errors.New("unable to find a viable program address bump")
)

// CreateProgramAddress hashes explicit seeds (bump included) into an address.
// No search is performed; an on-curve result is an error.
func CreateProgramAddress(seeds [][]byte, program ir.Address) (ir.Address, error) {
	if len(seeds) > MaxSeeds {
		return ir.Address{}, fmt.Errorf("%w: %d seeds, max %d", ErrMaxSeedLength, len(seeds), MaxSeeds)
	}

	h := sha256.New()
	for i, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return ir.Address{}, fmt.Errorf("%w: seed %d is %d bytes, max %d", ErrMaxSeedLength, i, len(seed), MaxSeedLength)
		}
		h.Write(seed)
	}
	h.Write(program[:])
	h.Write([]byte(pdaMarker))

	var addr ir.Address
	copy(addr[:], h.Sum(nil))
	if isOnTheCurve(addr[:]) {
		return ir.Address{}, ErrOnCurve
	}
	return addr, nil
}

// FindProgramAddress searches bumps 255..0 and returns the first off-curve
// address together with its bump.
func FindProgramAddress(seeds [][]byte, program ir.Address) (ir.Address, uint8, error) {
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	for bump := 255; bump >= 0; bump-- {
		withBump[len(seeds)] = []byte{byte(bump)}
		addr, err := CreateProgramAddress(withBump, program)
		switch {
		case err == nil:
			return addr, uint8(bump), nil
		case errors.Is(err, ErrOnCurve):
			continue
		default:
			return ir.Address{}, 0, err
		}
	}
	return ir.Address{}, 0, ErrNoViableBump
}

// Derive finds the authority for label under config, owned by program.
func Derive(label string, config, program ir.Address) (ir.Address, uint8, error) {
	addr, bump, err := FindProgramAddress([][]byte{[]byte(label), config[:]}, program)
	if err != nil {
		return ir.Address{}, 0, fmt.Errorf("derive %s: %w", label, err)
	}
	return addr, bump, nil
}

// isOnTheCurve returns true if the 32-byte value decodes to a valid
// edwards25519 point, i.e. could be an ed25519 public key.
func isOnTheCurve(address []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(address)
	return err == nil
}
