// Package token implements the token program that vaultwrap treats as an
// external collaborator: mints, token accounts, and the transfer, mint and
// burn primitives over them.
//
// Every primitive is atomic with respect to the State it runs on: it
// validates everything first and writes only when all checks pass. Atomicity
// across several primitives is the caller's unit of work (see store.Atomic).
//
// Authorization model: a debit, mint or burn names an authority, and the
// authority must be present in the call's signer set. The program never
// checks how a signer entered the set; verified user signatures and derived
// program authorities look the same here.
package token
