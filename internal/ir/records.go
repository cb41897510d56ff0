package ir

// Mint is a token class record held by the token program.
type Mint struct {
	ID            Address  `json:"id"`
	MintAuthority *Address `json:"mint_authority,omitempty"` // nil: no further issuance possible
	Supply        uint64   `json:"supply"`
	Decimals      uint8    `json:"decimals"`
}

// TokenAccount is a balance of one mint owned by one identity.
type TokenAccount struct {
	ID     Address `json:"id"`
	Mint   Address `json:"mint"`
	Owner  Address `json:"owner"` // identity that must authorize debits
	Amount uint64  `json:"amount"`
}

// Config is the singleton record tying a derivative mint to its reserve vault.
type Config struct {
	// Authority may manage configuration. Not consulted by Wrap/Unwrap.
	Authority Address `json:"authority"`

	// DerivativeMint and ReserveMint are immutable after creation.
	DerivativeMint Address `json:"derivative_mint"`
	ReserveMint    Address `json:"reserve_mint"`

	// Vault is the custody token account for the reserve asset.
	Vault Address `json:"vault"`

	// TotalWrapped is the reserve amount held against outstanding derivative supply.
	TotalWrapped uint64 `json:"total_wrapped"`

	// Bumps recorded at creation; re-supplied on every signed call.
	MintAuthorityBump  uint8 `json:"mint_authority_bump"`
	VaultAuthorityBump uint8 `json:"vault_authority_bump"`

	IsInitialized bool `json:"is_initialized"`
}

// Op names a ledger operation in the journal.
type Op string

const (
	OpInitialize Op = "initialize"
	OpWrap       Op = "wrap"
	OpUnwrap     Op = "unwrap"
)

// JournalEntry records one committed ledger operation.
// Failed operations never produce an entry.
type JournalEntry struct {
	Seq          int64   `json:"seq"` // Logical clock
	RequestID    string  `json:"request_id"`
	Op           Op      `json:"op"`
	User         Address `json:"user"`
	Amount       uint64  `json:"amount"`
	TotalWrapped uint64  `json:"total_wrapped"` // After the operation
	ReceiptID    string  `json:"receipt_id"`    // See ReceiptID in hash.go
}
