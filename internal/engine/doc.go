// Package engine hosts the ledger: it serializes requests from any number
// of goroutines through a single-writer loop and turns request signatures
// into the signer set the token program checks.
//
// ARCHITECTURE:
//
// Single-Writer Loop:
// Submit enqueues a request and waits for its result. Run dequeues requests
// one at a time in FIFO order and executes each as one ledger operation.
// This ensures:
// - Every operation is one serializable transition
// - Journal seq order equals submission order
// - No operation observes another's partial effects
//
// Request Flow:
//  1. Caller builds a Request with a request ID (NewRequestID) and signs its
//     canonical message with each required key
//  2. Submit enqueues it; the caller blocks on a reply channel or ctx
//  3. Run verifies every ed25519 signature; one bad signature rejects the request
//  4. The verified signers become the request's SignerSet
//  5. The ledger operation runs inside one store transaction and replies
//
// A caller whose ctx is cancelled stops waiting, but a request that has
// been dequeued always runs to commit or abort.
//
// Derived authorities have no private key and lie off the ed25519 curve, so
// no request signature can ever stand in for them.
package engine
