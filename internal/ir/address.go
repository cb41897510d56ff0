package ir

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"slices"

	"github.com/mr-tron/base58"
)

// AddressLength is the byte length of every identity in the system.
const AddressLength = 32

// ErrInvalidAddress is returned when text or bytes do not form a valid address.
var ErrInvalidAddress = errors.New("invalid address")

// Address identifies a mint, token account, program, signer or config record.
// The zero value is the all-zero address, which is never a valid account.
type Address [AddressLength]byte

// ParseAddress decodes a base58 address.
func ParseAddress(s string) (Address, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, s, err)
	}
	return AddressFromBytes(raw)
}

// MustParseAddress is like ParseAddress but panics on error.
// Use only in tests or for compile-time constants.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// AddressFromBytes copies a 32-byte slice into an Address.
func AddressFromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressLength {
		return a, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidAddress, len(b), AddressLength)
	}
	copy(a[:], b)
	return a, nil
}

// AddressFromSeed hashes a human-readable label into an address.
// Used for deterministic fixtures (test wallets, manifest names); the result
// is not guaranteed to be off-curve and must never be used as a derived authority.
func AddressFromSeed(label string) Address {
	return Address(sha256.Sum256([]byte("vaultwrap/fixture/v1\x00" + label)))
}

// String returns the base58 form.
func (a Address) String() string {
	return base58.Encode(a[:])
}

// Short returns an abbreviated "ABCD..WXYZ" form for logs.
func (a Address) Short() string {
	s := a.String()
	if len(s) <= 12 {
		return s
	}
	return s[:4] + ".." + s[len(s)-4:]
}

// Bytes returns a copy of the raw bytes.
func (a Address) Bytes() []byte {
	return slices.Clone(a[:])
}

// IsZero reports whether a is the all-zero address.
func (a Address) IsZero() bool {
	return a == Address{}
}

// MarshalText implements encoding.TextMarshaler (used by JSON and YAML).
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// SignerSet is the set of identities that authorized a single call.
// User identities enter it through verified signatures; derived authorities
// enter it only through the authority package's signing capability.
type SignerSet map[Address]struct{}

// NewSignerSet builds a set from the given addresses.
func NewSignerSet(signers ...Address) SignerSet {
	s := make(SignerSet, len(signers))
	for _, a := range signers {
		s[a] = struct{}{}
	}
	return s
}

// Contains reports whether a signed.
func (s SignerSet) Contains(a Address) bool {
	_, ok := s[a]
	return ok
}

// With returns a copy of s extended with extra signers. s is not modified.
func (s SignerSet) With(extra ...Address) SignerSet {
	out := make(SignerSet, len(s)+len(extra))
	for a := range s {
		out[a] = struct{}{}
	}
	for _, a := range extra {
		out[a] = struct{}{}
	}
	return out
}

// Sorted returns the members ordered by raw bytes, for deterministic output.
func (s SignerSet) Sorted() []Address {
	out := make([]Address, 0, len(s))
	for a := range s {
		out = append(out, a)
	}
	slices.SortFunc(out, func(x, y Address) int {
		for i := range x {
			if x[i] != y[i] {
				return int(x[i]) - int(y[i])
			}
		}
		return 0
	})
	return out
}
