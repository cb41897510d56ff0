package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainReceipt = "vaultwrap/receipt/v1"
	DomainRequest = "vaultwrap/request/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) []byte {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return h.Sum(nil)
}

// ReceiptID computes the content-addressed ID of a journal entry.
// The ReceiptID field itself is excluded from the hashed object.
func ReceiptID(e JournalEntry) (string, error) {
	obj := Object{
		"seq":           Int(e.Seq),
		"request_id":    String(e.RequestID),
		"op":            String(e.Op),
		"user":          String(e.User.String()),
		"amount":        Uint(e.Amount),
		"total_wrapped": Uint(e.TotalWrapped),
		"version":       String(RecordVersion),
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("ReceiptID: failed to marshal: %w", err)
	}
	return hex.EncodeToString(hashWithDomain(DomainReceipt, canonical)), nil
}

// RequestMessage returns the bytes a caller signs to authorize a request.
// obj is the canonical form of the request without signatures.
func RequestMessage(obj Object) ([]byte, error) {
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return nil, fmt.Errorf("RequestMessage: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRequest, canonical), nil
}
