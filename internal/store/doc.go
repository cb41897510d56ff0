// Package store provides SQLite-backed durable state for vaultwrap.
//
// Tables:
//   - mints: token classes (id, optional mint authority, supply, decimals)
//   - token_accounts: balances of one mint owned by one identity
//   - program_accounts: program-owned records, keyed by derived address;
//     the config record is stored in its fixed binary layout
//   - journal: one row per committed ledger operation, ordered by seq
//
// Every ledger operation runs in Atomic, one SQLite transaction over a
// single connection, so operations are strictly serialized and a failed
// operation leaves no trace.
//
// Open applies WAL journaling, synchronous=NORMAL, a 5 second busy timeout
// and foreign keys, then runs any migrations newer than the database's
// user_version. A database from a newer build is refused.
//
// Addresses are stored as 32-byte BLOBs. uint64 amounts are stored as the
// int64 with the same bit pattern, since SQLite integers are signed; they
// are never compared or summed in SQL.
package store
