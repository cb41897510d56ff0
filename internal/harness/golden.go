package harness

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/vaultwrap/internal/ir"
)

// Snapshot renders a result as canonical JSON lines: a header, one line per
// trace event, and the final audit when the ledger was initialized.
// Addresses and hashes are excluded so snapshots survive key changes.
func Snapshot(name string, result *Result) ([]byte, error) {
	var buf bytes.Buffer
	write := func(obj ir.Object) error {
		line, err := ir.MarshalCanonical(obj)
		if err != nil {
			return err
		}
		buf.Write(line)
		buf.WriteByte('\n')
		return nil
	}

	if err := write(ir.Object{
		"scenario": ir.String(name),
		"steps":    ir.Int(int64(len(result.Trace))),
	}); err != nil {
		return nil, err
	}
	for _, ev := range result.Trace {
		obj := ir.Object{
			"seq":     ir.Int(int64(ev.Seq)),
			"op":      ir.String(ev.Op),
			"actor":   ir.String(ev.Actor),
			"amount":  ir.Uint(ev.Amount),
			"outcome": ir.String(ev.Outcome),
		}
		if ev.Outcome == OutcomeOK {
			obj["journal_seq"] = ir.Int(ev.JournalSeq)
			obj["total_wrapped"] = ir.Uint(ev.TotalWrapped)
		}
		if err := write(obj); err != nil {
			return nil, err
		}
	}
	if a := result.Audit; a != nil {
		if err := write(ir.Object{
			"audit": ir.Object{
				"balanced":          ir.Bool(a.Balanced),
				"derivative_supply": ir.Uint(a.DerivativeSupply),
				"holder_sum":        ir.String(a.HolderSum.Dec()),
				"holders":           ir.Int(int64(a.Holders)),
				"total_wrapped":     ir.Uint(a.TotalWrapped),
				"vault_balance":     ir.Uint(a.VaultBalance),
			},
		}); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result's trace against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snap, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, snap)
	return nil
}
