package engine

import (
	"crypto/ed25519"
	"fmt"

	"github.com/roach88/vaultwrap/internal/ir"
	"github.com/roach88/vaultwrap/internal/ledger"
)

// Request is a signed ledger operation.
//
// Actor is the Initialize authority or the Wrap/Unwrap user. ReserveMint is
// used only by Initialize; the account fields and Amount only by Wrap and
// Unwrap. Unused fields are zero and still covered by every signature.
type Request struct {
	ID                string      `json:"id"`
	Op                ir.Op       `json:"op"`
	Actor             ir.Address  `json:"actor"`
	DerivativeMint    ir.Address  `json:"derivative_mint"`
	ReserveMint       ir.Address  `json:"reserve_mint"`
	ReserveAccount    ir.Address  `json:"reserve_account"`
	DerivativeAccount ir.Address  `json:"derivative_account"`
	Vault             ir.Address  `json:"vault"`
	Amount            uint64      `json:"amount"`
	Signatures        []Signature `json:"signatures,omitempty"`
}

// Signature is one signer's ed25519 signature over Request.Message.
type Signature struct {
	Signer ir.Address `json:"signer"`
	Value  []byte     `json:"value"`
}

// Message returns the domain-separated digest every signature covers.
// Signatures themselves are excluded.
func (r Request) Message() ([]byte, error) {
	obj := ir.Object{
		"id":                 ir.String(r.ID),
		"op":                 ir.String(r.Op),
		"actor":              ir.String(r.Actor.String()),
		"derivative_mint":    ir.String(r.DerivativeMint.String()),
		"reserve_mint":       ir.String(r.ReserveMint.String()),
		"reserve_account":    ir.String(r.ReserveAccount.String()),
		"derivative_account": ir.String(r.DerivativeAccount.String()),
		"vault":              ir.String(r.Vault.String()),
		"amount":             ir.Uint(r.Amount),
		"version":            ir.String(ir.RecordVersion),
	}
	return ir.RequestMessage(obj)
}

// Sign appends key's signature over the request message.
// The request must not be modified afterwards.
func (r *Request) Sign(key ed25519.PrivateKey) error {
	msg, err := r.Message()
	if err != nil {
		return fmt.Errorf("sign request: %w", err)
	}
	signer, err := ir.AddressFromBytes(key.Public().(ed25519.PublicKey))
	if err != nil {
		return fmt.Errorf("sign request: %w", err)
	}
	r.Signatures = append(r.Signatures, Signature{Signer: signer, Value: ed25519.Sign(key, msg)})
	return nil
}

// verify checks every signature and returns the set of verified signers.
// A single bad signature rejects the whole request.
func (r Request) verify() (ir.SignerSet, error) {
	msg, err := r.Message()
	if err != nil {
		return nil, fmt.Errorf("verify request: %w", err)
	}
	signers := ir.NewSignerSet()
	for _, sig := range r.Signatures {
		if len(sig.Value) != ed25519.SignatureSize || !ed25519.Verify(ed25519.PublicKey(sig.Signer[:]), msg, sig.Value) {
			return nil, NewSignatureError(r.ID, sig.Signer.String())
		}
		signers[sig.Signer] = struct{}{}
	}
	return signers, nil
}

func (r Request) initialize(signers ir.SignerSet) ledger.InitializeRequest {
	return ledger.InitializeRequest{
		RequestID:      r.ID,
		Authority:      r.Actor,
		DerivativeMint: r.DerivativeMint,
		ReserveMint:    r.ReserveMint,
		Signers:        signers,
	}
}

func (r Request) wrap(signers ir.SignerSet) ledger.WrapRequest {
	return ledger.WrapRequest{
		RequestID:         r.ID,
		User:              r.Actor,
		ReserveAccount:    r.ReserveAccount,
		DerivativeAccount: r.DerivativeAccount,
		DerivativeMint:    r.DerivativeMint,
		Vault:             r.Vault,
		Amount:            r.Amount,
		Signers:           signers,
	}
}
