package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/holiman/uint256"

	"github.com/roach88/vaultwrap/internal/authority"
	"github.com/roach88/vaultwrap/internal/ir"
	"github.com/roach88/vaultwrap/internal/supply"
	"github.com/roach88/vaultwrap/internal/token"
	"github.com/roach88/vaultwrap/internal/vault"
)

// Tx is the staged view one operation reads and writes. Nothing is visible
// to other operations until the enclosing Atomic call returns nil.
type Tx interface {
	token.State

	// LoadConfig returns token.ErrAccountNotFound if id holds no config.
	LoadConfig(ctx context.Context, id ir.Address) (ir.Config, error)

	// CreateConfig returns token.ErrAccountInUse if id is occupied.
	CreateConfig(ctx context.Context, id ir.Address, cfg ir.Config) error
	SaveConfig(ctx context.Context, id ir.Address, cfg ir.Config) error

	// AccountsByMint lists every token account of mint.
	AccountsByMint(ctx context.Context, mint ir.Address) ([]ir.TokenAccount, error)

	// LastSeq returns the seq of the newest journal entry, 0 when empty.
	LastSeq(ctx context.Context) (int64, error)
	AppendJournal(ctx context.Context, e ir.JournalEntry) error
}

// Runtime runs fn as one all-or-nothing unit of work. If fn returns an
// error every effect it staged is discarded.
type Runtime interface {
	Atomic(ctx context.Context, fn func(Tx) error) error
}

// RequestIDGenerator generates request IDs for operations submitted without one.
type RequestIDGenerator interface {
	Generate() string
}

type uuidV7 struct{}

func (uuidV7) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// InitializeRequest creates the config record and the reserve vault.
type InitializeRequest struct {
	RequestID      string
	Authority      ir.Address
	DerivativeMint ir.Address
	ReserveMint    ir.Address
	Signers        ir.SignerSet
}

// WrapRequest moves Amount of reserve from ReserveAccount into the vault and
// issues Amount of derivative into DerivativeAccount.
type WrapRequest struct {
	RequestID         string
	User              ir.Address
	ReserveAccount    ir.Address
	DerivativeAccount ir.Address
	DerivativeMint    ir.Address
	Vault             ir.Address
	Amount            uint64
	Signers           ir.SignerSet
}

// UnwrapRequest retires Amount of derivative from DerivativeAccount and
// releases Amount of reserve from the vault into ReserveAccount.
type UnwrapRequest WrapRequest

// Receipt describes a committed operation.
type Receipt struct {
	ConfigID ir.Address
	Config   ir.Config
	Entry    ir.JournalEntry
}

// AuditReport compares the conserved quantities of a deployment.
type AuditReport struct {
	ConfigID         ir.Address
	TotalWrapped     uint64
	VaultBalance     uint64
	DerivativeSupply uint64

	// HolderSum is the sum of every derivative account balance. It is
	// 256-bit so a corrupt store cannot wrap the sum back into agreement.
	HolderSum *uint256.Int
	Holders   int
	Balanced  bool
}

// Ledger is the conservation state machine.
//
// Thread-safety: Ledger has no mutable state of its own; serialization is
// provided by the Runtime.
type Ledger struct {
	rt        Runtime
	deriver   *authority.Deriver
	tokens    token.Ledger
	custodian *vault.Custodian
	supply    *supply.Controller
	ids       RequestIDGenerator
	logger    *slog.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(lg *Ledger) {
		lg.logger = l
	}
}

// WithRequestIDs sets the generator used when a request carries no ID.
// Default: UUIDv7.
func WithRequestIDs(g RequestIDGenerator) Option {
	return func(lg *Ledger) {
		lg.ids = g
	}
}

// WithTokenLedger replaces the token program. Tests use it to observe or
// refuse collaborator calls.
func WithTokenLedger(t token.Ledger) Option {
	return func(lg *Ledger) {
		lg.tokens = t
	}
}

// New creates a Ledger acting for deriver's program.
func New(rt Runtime, deriver *authority.Deriver, opts ...Option) *Ledger {
	lg := &Ledger{
		rt:      rt,
		deriver: deriver,
		tokens:  token.Program{},
		ids:     uuidV7{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(lg)
	}
	lg.custodian = vault.NewCustodian(lg.tokens, deriver)
	lg.supply = supply.NewController(lg.tokens, deriver)
	return lg
}

// Program returns the program id the ledger acts for.
func (lg *Ledger) Program() ir.Address {
	return lg.deriver.Program()
}

// Initialize creates the config record and the vault token account.
//
// The derivative mint must already exist with the derived mint authority as
// its authority; the reserve mint must exist; the authority must have
// signed. A second Initialize fails with token.ErrAccountInUse.
func (lg *Ledger) Initialize(ctx context.Context, req InitializeRequest) (Receipt, error) {
	configID, _, err := lg.deriver.ConfigAddress()
	if err != nil {
		return Receipt{}, fmt.Errorf("initialize: %w", err)
	}
	vaultID, _, err := lg.deriver.VaultAddress(configID)
	if err != nil {
		return Receipt{}, fmt.Errorf("initialize: %w", err)
	}
	auths, err := lg.deriver.Authorities(configID)
	if err != nil {
		return Receipt{}, fmt.Errorf("initialize: %w", err)
	}

	var rc Receipt
	err = lg.rt.Atomic(ctx, func(tx Tx) error {
		if !req.Signers.Contains(req.Authority) {
			return fmt.Errorf("%w: %s", token.ErrMissingSignature, req.Authority.Short())
		}
		if err := checkMints(ctx, tx, req, auths.Mint); err != nil {
			return err
		}

		cfg := ir.Config{
			Authority:          req.Authority,
			DerivativeMint:     req.DerivativeMint,
			ReserveMint:        req.ReserveMint,
			Vault:              vaultID,
			TotalWrapped:       0,
			MintAuthorityBump:  auths.MintBump,
			VaultAuthorityBump: auths.VaultBump,
			IsInitialized:      true,
		}
		if err := tx.CreateConfig(ctx, configID, cfg); err != nil {
			return fmt.Errorf("create config %s: %w", configID.Short(), err)
		}
		if err := lg.tokens.InitializeAccount(ctx, tx, vaultID, req.ReserveMint, auths.Vault); err != nil {
			return fmt.Errorf("create vault: %w", err)
		}

		entry, err := lg.journal(ctx, tx, req.RequestID, ir.OpInitialize, req.Authority, 0, 0)
		if err != nil {
			return err
		}
		rc = Receipt{ConfigID: configID, Config: cfg, Entry: entry}
		return nil
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("initialize: %w", err)
	}

	lg.logger.Info("config initialized",
		"config", configID.String(),
		"derivative_mint", req.DerivativeMint.String(),
		"reserve_mint", req.ReserveMint.String(),
		"vault", vaultID.String())
	return rc, nil
}

// Wrap deposits reserve into the vault, issues derivative to the user and
// raises total_wrapped, in that order.
func (lg *Ledger) Wrap(ctx context.Context, req WrapRequest) (Receipt, error) {
	var rc Receipt
	err := lg.atomicConfig(ctx, func(tx Tx, configID ir.Address, cfg ir.Config) error {
		if err := validateMovement(ctx, tx, cfg, req); err != nil {
			return err
		}
		if cfg.TotalWrapped > ^uint64(0)-req.Amount {
			return newError(CodeOverflow, ErrOverflow.Message, amountDetails(cfg.TotalWrapped, req.Amount))
		}

		if err := lg.custodian.DepositToVault(ctx, tx, req.ReserveAccount, cfg.Vault, req.User, req.Signers, req.Amount); err != nil {
			return err
		}
		if err := lg.supply.Issue(ctx, tx, cfg.DerivativeMint, req.DerivativeAccount, configID, cfg.MintAuthorityBump, req.Amount); err != nil {
			return err
		}
		cfg.TotalWrapped += req.Amount

		entry, err := lg.commit(ctx, tx, configID, cfg, req.RequestID, ir.OpWrap, req.User, req.Amount)
		if err != nil {
			return err
		}
		rc = Receipt{ConfigID: configID, Config: cfg, Entry: entry}
		return nil
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("wrap: %w", err)
	}

	lg.logger.Info("wrapped",
		"user", req.User.String(),
		"amount", req.Amount,
		"total_wrapped", rc.Config.TotalWrapped,
		"request_id", rc.Entry.RequestID)
	return rc, nil
}

// Unwrap retires derivative from the user, releases reserve from the vault
// and lowers total_wrapped, in that order.
func (lg *Ledger) Unwrap(ctx context.Context, req UnwrapRequest) (Receipt, error) {
	var rc Receipt
	err := lg.atomicConfig(ctx, func(tx Tx, configID ir.Address, cfg ir.Config) error {
		if err := validateMovement(ctx, tx, cfg, WrapRequest(req)); err != nil {
			return err
		}
		if cfg.TotalWrapped < req.Amount {
			return newError(CodeUnderflow, ErrUnderflow.Message, amountDetails(cfg.TotalWrapped, req.Amount))
		}

		if err := lg.supply.Retire(ctx, tx, cfg.DerivativeMint, req.DerivativeAccount, req.User, req.Signers, req.Amount); err != nil {
			return err
		}
		if err := lg.custodian.WithdrawFromVault(ctx, tx, cfg.Vault, req.ReserveAccount, configID, cfg.VaultAuthorityBump, req.Amount); err != nil {
			return err
		}
		cfg.TotalWrapped -= req.Amount

		entry, err := lg.commit(ctx, tx, configID, cfg, req.RequestID, ir.OpUnwrap, req.User, req.Amount)
		if err != nil {
			return err
		}
		rc = Receipt{ConfigID: configID, Config: cfg, Entry: entry}
		return nil
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("unwrap: %w", err)
	}

	lg.logger.Info("unwrapped",
		"user", req.User.String(),
		"amount", req.Amount,
		"total_wrapped", rc.Config.TotalWrapped,
		"request_id", rc.Entry.RequestID)
	return rc, nil
}

// Config returns the config record and its address.
func (lg *Ledger) Config(ctx context.Context) (ir.Address, ir.Config, error) {
	var (
		id  ir.Address
		out ir.Config
	)
	err := lg.atomicConfig(ctx, func(_ Tx, configID ir.Address, cfg ir.Config) error {
		id, out = configID, cfg
		return nil
	})
	if err != nil {
		return ir.Address{}, ir.Config{}, fmt.Errorf("config: %w", err)
	}
	return id, out, nil
}

// Audit reads the conserved quantities. It never writes.
func (lg *Ledger) Audit(ctx context.Context) (AuditReport, error) {
	var rep AuditReport
	err := lg.atomicConfig(ctx, func(tx Tx, configID ir.Address, cfg ir.Config) error {
		v, err := tx.TokenAccount(ctx, cfg.Vault)
		if err != nil {
			return fmt.Errorf("vault: %w", err)
		}
		m, err := tx.Mint(ctx, cfg.DerivativeMint)
		if err != nil {
			return fmt.Errorf("derivative mint: %w", err)
		}
		holders, err := tx.AccountsByMint(ctx, cfg.DerivativeMint)
		if err != nil {
			return fmt.Errorf("derivative holders: %w", err)
		}

		sum := new(uint256.Int)
		for _, h := range holders {
			sum.Add(sum, uint256.NewInt(h.Amount))
		}
		rep = AuditReport{
			ConfigID:         configID,
			TotalWrapped:     cfg.TotalWrapped,
			VaultBalance:     v.Amount,
			DerivativeSupply: m.Supply,
			HolderSum:        sum,
			Holders:          len(holders),
		}
		rep.Balanced = rep.TotalWrapped == rep.VaultBalance &&
			rep.VaultBalance == rep.DerivativeSupply &&
			sum.Eq(uint256.NewInt(rep.DerivativeSupply))
		return nil
	})
	if err != nil {
		return AuditReport{}, fmt.Errorf("audit: %w", err)
	}
	if !rep.Balanced {
		lg.logger.Warn("conservation violated",
			"total_wrapped", rep.TotalWrapped,
			"vault_balance", rep.VaultBalance,
			"derivative_supply", rep.DerivativeSupply,
			"holder_sum", rep.HolderSum.Dec())
	}
	return rep, nil
}

// atomicConfig runs fn in a unit of work with the initialized config loaded.
func (lg *Ledger) atomicConfig(ctx context.Context, fn func(tx Tx, configID ir.Address, cfg ir.Config) error) error {
	configID, _, err := lg.deriver.ConfigAddress()
	if err != nil {
		return err
	}
	return lg.rt.Atomic(ctx, func(tx Tx) error {
		cfg, err := tx.LoadConfig(ctx, configID)
		if errors.Is(err, token.ErrAccountNotFound) {
			return ErrNotInitialized
		}
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if !cfg.IsInitialized {
			return ErrNotInitialized
		}
		return fn(tx, configID, cfg)
	})
}

// commit stores the updated config and journals the operation.
func (lg *Ledger) commit(ctx context.Context, tx Tx, configID ir.Address, cfg ir.Config, requestID string, op ir.Op, user ir.Address, amount uint64) (ir.JournalEntry, error) {
	if err := tx.SaveConfig(ctx, configID, cfg); err != nil {
		return ir.JournalEntry{}, fmt.Errorf("save config: %w", err)
	}
	return lg.journal(ctx, tx, requestID, op, user, amount, cfg.TotalWrapped)
}

func (lg *Ledger) journal(ctx context.Context, tx Tx, requestID string, op ir.Op, user ir.Address, amount, total uint64) (ir.JournalEntry, error) {
	last, err := tx.LastSeq(ctx)
	if err != nil {
		return ir.JournalEntry{}, fmt.Errorf("journal: %w", err)
	}
	if requestID == "" {
		requestID = lg.ids.Generate()
	}
	e := ir.JournalEntry{
		Seq:          last + 1,
		RequestID:    requestID,
		Op:           op,
		User:         user,
		Amount:       amount,
		TotalWrapped: total,
	}
	if e.ReceiptID, err = ir.ReceiptID(e); err != nil {
		return ir.JournalEntry{}, fmt.Errorf("journal: %w", err)
	}
	if err := tx.AppendJournal(ctx, e); err != nil {
		return ir.JournalEntry{}, fmt.Errorf("journal: %w", err)
	}
	return e, nil
}
