package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/vaultwrap/internal/ir"
)

// Scenario defines a conformance test scenario.
// A scenario provisions a genesis manifest, drives signed requests through
// the engine, and asserts on the resulting trace and final balances.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Genesis is inline CUE manifest source.
	Genesis string `yaml:"genesis,omitempty"`

	// GenesisFile is a manifest path, relative to the scenario file.
	GenesisFile string `yaml:"genesis_file,omitempty"`

	// Program seeds the program address. Defaults to DefaultProgram.
	Program string `yaml:"program,omitempty"`

	// DerivativeMint and ReserveMint name manifest mints.
	DerivativeMint string `yaml:"derivative_mint"`
	ReserveMint    string `yaml:"reserve_mint"`

	// Flow contains the requests to submit, in order.
	Flow []Step `yaml:"flow"`

	// Assertions validate the final trace and state.
	Assertions []Assertion `yaml:"assertions"`
}

// DefaultProgram is the program seed used when a scenario names none.
const DefaultProgram = "vaultwrap"

// Step is one signed request.
type Step struct {
	// Op is initialize, wrap or unwrap.
	Op string `yaml:"op"`

	// Actor is the wallet submitting the request.
	Actor string `yaml:"actor"`

	Amount uint64 `yaml:"amount,omitempty"`

	// Signers lists the wallets that sign. Defaults to the actor alone;
	// an empty list submits the request unsigned.
	Signers *[]string `yaml:"signers,omitempty"`

	// Tamper alters the amount after signing.
	Tamper bool `yaml:"tamper,omitempty"`

	// Overrides, as mint names or "wallet/mint" account references.
	DerivativeMint    string `yaml:"derivative_mint,omitempty"`
	ReserveMint       string `yaml:"reserve_mint,omitempty"`
	ReserveAccount    string `yaml:"reserve_account,omitempty"`
	DerivativeAccount string `yaml:"derivative_account,omitempty"`
	Vault             string `yaml:"vault,omitempty"`

	// Expect specifies the expected outcome. If nil the step must succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies expected step behavior.
type Expect struct {
	// Outcome is "ok" or an error code such as ZERO_AMOUNT.
	Outcome string `yaml:"outcome"`

	// TotalWrapped, if set, is checked on success.
	TotalWrapped *uint64 `yaml:"total_wrapped,omitempty"`
}

// Assertion validates trace or final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "balance": token account of Wallet for Mint holds Expect
	// - "supply": Mint has supply Expect
	// - "total_wrapped": the config counter equals Expect
	// - "conserved": the audit reports a balanced ledger
	// - "journal_count": the journal holds Count entries
	// - "trace_order": successful Ops appear in order
	// - "trace_count": Op succeeded exactly Count times
	Type string `yaml:"type"`

	Wallet string   `yaml:"wallet,omitempty"`
	Mint   string   `yaml:"mint,omitempty"`
	Op     string   `yaml:"op,omitempty"`
	Ops    []string `yaml:"ops,omitempty"`
	Expect *uint64  `yaml:"expect,omitempty"`
	Count  *int     `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertBalance      = "balance"
	AssertSupply       = "supply"
	AssertTotalWrapped = "total_wrapped"
	AssertConserved    = "conserved"
	AssertJournalCount = "journal_count"
	AssertTraceOrder   = "trace_order"
	AssertTraceCount   = "trace_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A relative genesis_file is resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	if scenario.GenesisFile != "" && !filepath.IsAbs(scenario.GenesisFile) {
		scenario.GenesisFile = filepath.Join(filepath.Dir(path), scenario.GenesisFile)
	}
	if scenario.GenesisFile != "" {
		if _, err := os.Stat(scenario.GenesisFile); err != nil {
			return nil, fmt.Errorf("invalid scenario: genesis file: %w", err)
		}
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML with strict field validation.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if (s.Genesis == "") == (s.GenesisFile == "") {
		return fmt.Errorf("exactly one of genesis and genesis_file is required")
	}
	if s.DerivativeMint == "" || s.ReserveMint == "" {
		return fmt.Errorf("derivative_mint and reserve_mint are required")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Flow {
		switch ir.Op(step.Op) {
		case ir.OpInitialize, ir.OpWrap, ir.OpUnwrap:
		default:
			return fmt.Errorf("flow[%d]: unknown op %q", i, step.Op)
		}
		if step.Actor == "" {
			return fmt.Errorf("flow[%d]: actor is required", i)
		}
		for _, ref := range []string{step.ReserveAccount, step.DerivativeAccount, step.Vault} {
			if ref != "" && !strings.Contains(ref, "/") {
				return fmt.Errorf("flow[%d]: account reference %q must be wallet/mint", i, ref)
			}
		}
		if step.Expect != nil && step.Expect.Outcome == "" {
			return fmt.Errorf("flow[%d].expect: outcome is required", i)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertBalance:
		if a.Wallet == "" || a.Mint == "" {
			return fmt.Errorf("assertions[%d]: wallet and mint are required for balance", index)
		}
		if a.Expect == nil {
			return fmt.Errorf("assertions[%d]: expect is required for balance", index)
		}
	case AssertSupply:
		if a.Mint == "" || a.Expect == nil {
			return fmt.Errorf("assertions[%d]: mint and expect are required for supply", index)
		}
	case AssertTotalWrapped:
		if a.Expect == nil {
			return fmt.Errorf("assertions[%d]: expect is required for total_wrapped", index)
		}
	case AssertConserved:
	case AssertJournalCount:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for journal_count", index)
		}
	case AssertTraceOrder:
		if len(a.Ops) == 0 {
			return fmt.Errorf("assertions[%d]: ops list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_count", index)
		}
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
