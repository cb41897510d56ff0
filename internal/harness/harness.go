package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/vaultwrap/internal/authority"
	"github.com/roach88/vaultwrap/internal/engine"
	"github.com/roach88/vaultwrap/internal/genesis"
	"github.com/roach88/vaultwrap/internal/ir"
	"github.com/roach88/vaultwrap/internal/ledger"
	"github.com/roach88/vaultwrap/internal/store"
	"github.com/roach88/vaultwrap/internal/testutil"
	"github.com/roach88/vaultwrap/internal/token"
)

// Harness is the test execution engine.
// It runs scenarios against a real engine and ledger with deterministic
// keys and request IDs.
type Harness struct {
	scenario *Scenario
	store    *store.Store
	engine   *engine.Engine
	manifest *genesis.Manifest
	keys     map[string]testutil.Keypair
	vault    ir.Address
	logger   *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Compile the genesis manifest and bind every wallet to its test key
// 2. Provision mints, accounts and starting balances
// 3. Submit each flow step to the engine as a signed request
// 4. Audit the ledger and evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests

	m, err := loadManifest(scenario)
	if err != nil {
		return nil, err
	}
	for _, name := range []string{scenario.DerivativeMint, scenario.ReserveMint} {
		if _, ok := m.Mint(name); !ok {
			return nil, fmt.Errorf("scenario %s: unknown mint %q", scenario.Name, name)
		}
	}

	// Wallets sign with deterministic keys, so their addresses are the
	// public keys rather than the manifest defaults.
	keys := make(map[string]testutil.Keypair, len(m.Wallets))
	for i := range m.Wallets {
		kp := testutil.NewKeypair(m.Wallets[i].Name)
		m.Wallets[i].Address = kp.Address
		keys[kp.Label] = kp
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	program := scenario.Program
	if program == "" {
		program = DefaultProgram
	}
	deriver := authority.NewDeriver(ir.AddressFromSeed("program/" + program))
	configID, _, err := deriver.ConfigAddress()
	if err != nil {
		return nil, err
	}
	vault, _, err := deriver.VaultAddress(configID)
	if err != nil {
		return nil, err
	}

	if _, err := genesis.Provision(ctx, st, deriver, m, logger); err != nil {
		return nil, fmt.Errorf("failed to provision genesis: %w", err)
	}

	lg := ledger.New(st, deriver, ledger.WithLogger(logger))
	eng := engine.New(lg,
		engine.WithLogger(logger),
		engine.WithRequestIDs(testutil.NewSequentialRequestIDs("req")))
	done := make(chan error, 1)
	go func() { done <- eng.Run(ctx) }()

	h := &Harness{
		scenario: scenario,
		store:    st,
		engine:   eng,
		manifest: m,
		keys:     keys,
		vault:    vault,
		logger:   logger,
	}

	result := NewResult()
	flowErr := h.executeFlow(ctx, result)
	eng.Stop()
	if err := <-done; err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if flowErr != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", flowErr)
	}

	rep, err := lg.Audit(ctx)
	switch {
	case err == nil:
		result.Audit = &rep
	case !errors.Is(err, ledger.ErrNotInitialized):
		return nil, fmt.Errorf("failed to audit: %w", err)
	}

	actx := &AssertionContext{
		Ctx:      ctx,
		Store:    st,
		Manifest: m,
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}
	return result, nil
}

func loadManifest(s *Scenario) (*genesis.Manifest, error) {
	if s.GenesisFile != "" {
		return genesis.LoadFile(s.GenesisFile)
	}
	return genesis.Parse(s.Name+".cue", []byte(s.Genesis))
}

// executeFlow submits every step and checks its expect clause.
// A step that fails is recorded, never fatal; only malformed steps abort.
func (h *Harness) executeFlow(ctx context.Context, result *Result) error {
	for i, step := range h.scenario.Flow {
		req, err := h.request(step)
		if err != nil {
			return fmt.Errorf("flow step %d: %w", i, err)
		}

		rc, err := h.engine.Submit(ctx, req)
		ev := TraceEvent{
			Op:      step.Op,
			Actor:   step.Actor,
			Amount:  step.Amount,
			Outcome: Outcome(err),
		}
		if err == nil {
			ev.JournalSeq = rc.Entry.Seq
			ev.TotalWrapped = rc.Config.TotalWrapped
		}
		result.AddEvent(ev)

		want := OutcomeOK
		if step.Expect != nil {
			want = step.Expect.Outcome
		}
		if ev.Outcome != want {
			msg := fmt.Sprintf("flow[%d] %s by %s: expected %s, got %s", i, step.Op, step.Actor, want, ev.Outcome)
			if err != nil {
				msg += " (" + err.Error() + ")"
			}
			result.AddError(msg)
		} else if err == nil && step.Expect != nil && step.Expect.TotalWrapped != nil && *step.Expect.TotalWrapped != ev.TotalWrapped {
			result.AddError(fmt.Sprintf("flow[%d] %s by %s: expected total_wrapped %d, got %d",
				i, step.Op, step.Actor, *step.Expect.TotalWrapped, ev.TotalWrapped))
		}

		h.logger.Info("flow step completed",
			"step", i,
			"op", step.Op,
			"actor", step.Actor,
			"outcome", ev.Outcome)
	}
	return nil
}

// request builds and signs the engine request for step.
func (h *Harness) request(step Step) (engine.Request, error) {
	actor, ok := h.keys[step.Actor]
	if !ok {
		return engine.Request{}, fmt.Errorf("unknown wallet %q", step.Actor)
	}
	derivative, err := h.mint(step.DerivativeMint, h.scenario.DerivativeMint)
	if err != nil {
		return engine.Request{}, err
	}
	reserve, err := h.mint(step.ReserveMint, h.scenario.ReserveMint)
	if err != nil {
		return engine.Request{}, err
	}

	req := engine.Request{
		ID:             h.engine.NewRequestID(),
		Op:             ir.Op(step.Op),
		Actor:          actor.Address,
		DerivativeMint: derivative.ID,
	}
	if req.Op == ir.OpInitialize {
		req.ReserveMint = reserve.ID
	} else {
		req.ReserveAccount = h.account(step.ReserveAccount, step.Actor, reserve.Name)
		req.DerivativeAccount = h.account(step.DerivativeAccount, step.Actor, derivative.Name)
		req.Vault = h.vault
		if step.Vault != "" {
			req.Vault = h.account(step.Vault, "", "")
		}
		req.Amount = step.Amount
	}

	signers := []string{step.Actor}
	if step.Signers != nil {
		signers = *step.Signers
	}
	for _, name := range signers {
		kp, ok := h.keys[name]
		if !ok {
			return engine.Request{}, fmt.Errorf("unknown signer %q", name)
		}
		if err := req.Sign(kp.Private); err != nil {
			return engine.Request{}, err
		}
	}
	if step.Tamper {
		req.Amount++
	}
	return req, nil
}

func (h *Harness) mint(override, def string) (genesis.MintSpec, error) {
	name := def
	if override != "" {
		name = override
	}
	m, ok := h.manifest.Mint(name)
	if !ok {
		return genesis.MintSpec{}, fmt.Errorf("unknown mint %q", name)
	}
	return m, nil
}

// account resolves a "wallet/mint" reference, or the wallet's own account
// for mint when ref is empty.
func (h *Harness) account(ref, wallet, mint string) ir.Address {
	if ref != "" {
		wallet, mint, _ = strings.Cut(ref, "/")
	}
	return genesis.AccountID(wallet, mint)
}

// tokenErrors names collaborator failures in traces.
var tokenErrors = []struct {
	err  error
	name string
}{
	{token.ErrInsufficientFunds, "INSUFFICIENT_FUNDS"},
	{token.ErrOwnerMismatch, "OWNER_MISMATCH"},
	{token.ErrMissingSignature, "MISSING_SIGNATURE"},
	{token.ErrAccountInUse, "ACCOUNT_IN_USE"},
	{token.ErrAccountNotFound, "ACCOUNT_NOT_FOUND"},
	{token.ErrMintMismatch, "TOKEN_MINT_MISMATCH"},
	{token.ErrFixedSupply, "FIXED_SUPPLY"},
	{token.ErrZeroAmount, "TOKEN_ZERO_AMOUNT"},
	{token.ErrOverflow, "TOKEN_OVERFLOW"},
}

// Outcome names the result of a request: OutcomeOK, a ledger or engine
// error code, or a collaborator error name.
func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	if code := ledger.CodeOf(err); code != "" {
		return string(code)
	}
	var re *engine.RuntimeError
	if errors.As(err, &re) {
		return string(re.Code)
	}
	for _, te := range tokenErrors {
		if errors.Is(err, te.err) {
			return te.name
		}
	}
	if errors.Is(err, store.ErrDuplicateRequest) {
		return "DUPLICATE_REQUEST"
	}
	return "ERROR"
}
