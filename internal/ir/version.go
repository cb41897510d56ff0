package ir

// Version constants for persisted records and the ledger runtime.
const (
	// RecordVersion is the journal/receipt schema version.
	RecordVersion = "1"

	// LedgerVersion is the vaultwrap ledger version.
	LedgerVersion = "0.1.0"
)
