// Package harness provides conformance testing for vaultwrap deployments.
//
// A scenario provisions a genesis manifest into a fresh in-memory store,
// submits signed requests through the engine, and validates the resulting
// trace and final state.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	genesis: |
//	  mint: usdc: { decimals: 6, authority: "issuer" }
//	  mint: dac: { decimals: 6, authority: "@mint_authority" }
//	  wallet: issuer: {}
//	  wallet: alice: balances: { usdc: 1000, dac: 0 }
//	derivative_mint: dac
//	reserve_mint: usdc
//	flow:
//	  - op: initialize
//	    actor: issuer
//	  - op: wrap
//	    actor: alice
//	    amount: 100
//	  - op: unwrap
//	    actor: alice
//	    amount: 0
//	    expect: { outcome: ZERO_AMOUNT }
//	assertions:
//	  - type: balance
//	    wallet: alice
//	    mint: usdc
//	    expect: 900
//	  - type: conserved
//
// genesis_file may replace genesis with a path relative to the scenario.
// Steps default to the actor's own token accounts and the derived vault;
// signers, tamper and the account overrides build hostile requests.
//
// # Assertion Types
//
//   - balance: a wallet's token account holds an exact amount
//   - supply: a mint's supply is exact
//   - total_wrapped: the config counter is exact
//   - conserved: the audit reports a balanced ledger
//   - journal_count: the journal holds an exact number of entries
//   - trace_order: successful ops appear in order
//   - trace_count: an op succeeded an exact number of times
//
// # Deterministic Testing
//
// Wallet keys derive from wallet names (testutil.NewKeypair), request IDs
// are sequential, and the program address derives from the scenario's
// program seed, so traces are identical across runs and can be compared
// against golden snapshots.
package harness
