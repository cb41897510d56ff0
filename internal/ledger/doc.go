// Package ledger is the conservation core of vaultwrap.
//
// A deployment has one config record tying a derivative mint to a reserve
// vault. Wrap deposits reserve into the vault and issues the same amount of
// derivative; Unwrap retires derivative and releases the same amount of
// reserve. After every committed operation
//
//	supply(derivative mint) == balance(vault) == config.total_wrapped
//
// Each operation runs inside one Runtime.Atomic unit of work. Validation
// happens before any collaborator call, in a fixed order:
//
//	NOT_INITIALIZED, MINT_MISMATCH, INVALID_VAULT, ZERO_AMOUNT,
//	OVERFLOW / UNDERFLOW
//
// after which the vault custodian and supply controller run, the counter is
// updated and a journal entry appended. An error at any step discards all
// staged effects.
//
// The ledger never holds a key. Vault withdrawals and derivative issuance
// are signed by addresses derived from the program id (see authority).
package ledger
