// Package ir provides the shared record types for vaultwrap.
//
// This package contains type definitions and their encodings only. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Amounts are uint64 everywhere; no floats, no signed balances
//   - Addresses are 32 raw bytes, rendered as base58 text
//   - The config record has a fixed binary layout (see config.go)
//   - Journal ordering uses the logical seq counter, never wall-clock time
package ir
