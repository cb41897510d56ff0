package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/vaultwrap/internal/genesis"
	"github.com/roach88/vaultwrap/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, ev := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s by %s amount=%d -> %s\n", ev.Seq, ev.Op, ev.Actor, ev.Amount, ev.Outcome)
		}
	}
	return buf.String()
}

// AssertionContext provides state access for state assertions.
type AssertionContext struct {
	Ctx      context.Context
	Store    *store.Store
	Manifest *genesis.Manifest
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(result, a, actx); err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d (%s): %v", i, a.Type, err))
		}
	}
	return errs
}

func evaluateAssertion(result *Result, a Assertion, actx *AssertionContext) error {
	switch a.Type {
	case AssertBalance:
		return assertBalance(actx, a)
	case AssertSupply:
		return assertSupply(actx, a)
	case AssertTotalWrapped:
		if result.Audit == nil {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("total_wrapped %d", *a.Expect), Actual: "ledger not initialized"}
		}
		if result.Audit.TotalWrapped != *a.Expect {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("total_wrapped %d", *a.Expect),
				Actual:   fmt.Sprintf("total_wrapped %d", result.Audit.TotalWrapped),
				Trace:    result.Trace,
			}
		}
		return nil
	case AssertConserved:
		return assertConserved(result)
	case AssertJournalCount:
		return assertJournalCount(actx, a)
	case AssertTraceOrder:
		return assertTraceOrder(result.Trace, a)
	case AssertTraceCount:
		return assertTraceCount(result.Trace, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertBalance(actx *AssertionContext, a Assertion) error {
	id := genesis.AccountID(a.Wallet, a.Mint)
	acct, err := actx.Store.TokenAccount(actx.Ctx, id)
	if err != nil {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("account %s/%s", a.Wallet, a.Mint),
			Actual:   err.Error(),
		}
	}
	if acct.Amount != *a.Expect {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s/%s = %d", a.Wallet, a.Mint, *a.Expect),
			Actual:   fmt.Sprintf("%s/%s = %d", a.Wallet, a.Mint, acct.Amount),
		}
	}
	return nil
}

func assertSupply(actx *AssertionContext, a Assertion) error {
	spec, ok := actx.Manifest.Mint(a.Mint)
	if !ok {
		return fmt.Errorf("unknown mint %q", a.Mint)
	}
	m, err := actx.Store.Mint(actx.Ctx, spec.ID)
	if err != nil {
		return &AssertionError{Type: a.Type, Expected: "mint " + a.Mint, Actual: err.Error()}
	}
	if m.Supply != *a.Expect {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("supply of %s = %d", a.Mint, *a.Expect),
			Actual:   fmt.Sprintf("supply of %s = %d", a.Mint, m.Supply),
		}
	}
	return nil
}

func assertConserved(result *Result) error {
	if result.Audit == nil {
		return &AssertionError{Type: AssertConserved, Expected: "balanced ledger", Actual: "ledger not initialized"}
	}
	rep := result.Audit
	if !rep.Balanced {
		return &AssertionError{
			Type:     AssertConserved,
			Expected: "total_wrapped = vault balance = derivative supply = holder sum",
			Actual: fmt.Sprintf("total_wrapped=%d vault=%d supply=%d holders=%s",
				rep.TotalWrapped, rep.VaultBalance, rep.DerivativeSupply, rep.HolderSum.Dec()),
			Trace: result.Trace,
		}
	}
	return nil
}

func assertJournalCount(actx *AssertionContext, a Assertion) error {
	entries, err := actx.Store.Journal(actx.Ctx, 0, 0)
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}
	if len(entries) != *a.Count {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%d journal entries", *a.Count),
			Actual:   fmt.Sprintf("%d journal entries", len(entries)),
		}
	}
	return nil
}

// assertTraceOrder checks that successful ops appear in the specified order.
// Ops don't need to be consecutive (intervening steps are allowed).
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	next := 0
	for _, ev := range trace {
		if next < len(a.Ops) && ev.Outcome == OutcomeOK && ev.Op == a.Ops[next] {
			next++
		}
	}
	if next < len(a.Ops) {
		return &AssertionError{
			Type:     AssertTraceOrder,
			Expected: fmt.Sprintf("successful ops in order: %v", a.Ops),
			Actual:   fmt.Sprintf("matched %d of %d, missing %s", next, len(a.Ops), a.Ops[next]),
			Trace:    trace,
		}
	}
	return nil
}

// assertTraceCount checks that op succeeded exactly Count times.
func assertTraceCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, ev := range trace {
		if ev.Outcome == OutcomeOK && ev.Op == a.Op {
			count++
		}
	}
	if count != *a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d successful %s", *a.Count, a.Op),
			Actual:   fmt.Sprintf("%d successful %s", count, a.Op),
			Trace:    trace,
		}
	}
	return nil
}
