package testutil

import (
	"crypto/ed25519"
	"crypto/sha256"

	"github.com/roach88/vaultwrap/internal/ir"
)

// Keypair is a deterministic ed25519 identity.
type Keypair struct {
	Label   string
	Address ir.Address
	Private ed25519.PrivateKey
}

// NewKeypair derives the keypair for label. The same label always yields
// the same key.
func NewKeypair(label string) Keypair {
	seed := sha256.Sum256([]byte("vaultwrap/test-key/v1\x00" + label))
	priv := ed25519.NewKeyFromSeed(seed[:])
	var addr ir.Address
	copy(addr[:], priv.Public().(ed25519.PublicKey))
	return Keypair{Label: label, Address: addr, Private: priv}
}

// Sign signs msg with the keypair's private key.
func (k Keypair) Sign(msg []byte) []byte {
	return ed25519.Sign(k.Private, msg)
}
