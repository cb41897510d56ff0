package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/vaultwrap/internal/engine"
	"github.com/roach88/vaultwrap/internal/ir"
	"github.com/roach88/vaultwrap/internal/ledger"
)

// ReceiptView is the output of a committed ledger operation.
type ReceiptView struct {
	Op           string `json:"op"`
	RequestID    string `json:"request_id"`
	Seq          int64  `json:"seq"`
	ReceiptID    string `json:"receipt_id"`
	Config       string `json:"config"`
	Vault        string `json:"vault"`
	Amount       uint64 `json:"amount"`
	TotalWrapped uint64 `json:"total_wrapped"`
}

func newReceiptView(rc ledger.Receipt) ReceiptView {
	return ReceiptView{
		Op:           string(rc.Entry.Op),
		RequestID:    rc.Entry.RequestID,
		Seq:          rc.Entry.Seq,
		ReceiptID:    rc.Entry.ReceiptID,
		Config:       rc.ConfigID.String(),
		Vault:        rc.Config.Vault.String(),
		Amount:       rc.Entry.Amount,
		TotalWrapped: rc.Config.TotalWrapped,
	}
}

func (v ReceiptView) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "✓ %s committed (seq %d)\n", v.Op, v.Seq)
	fmt.Fprintf(&b, "  request:       %s\n", v.RequestID)
	fmt.Fprintf(&b, "  receipt:       %s\n", v.ReceiptID)
	fmt.Fprintf(&b, "  config:        %s\n", v.Config)
	fmt.Fprintf(&b, "  vault:         %s\n", v.Vault)
	if v.Op != string(ir.OpInitialize) {
		fmt.Fprintf(&b, "  amount:        %d\n", v.Amount)
	}
	fmt.Fprintf(&b, "  total_wrapped: %d", v.TotalWrapped)
	return b.String()
}

// InitOptions holds flags for the init command.
type InitOptions struct {
	*RootOptions
	Keypair        string
	DerivativeMint string
	ReserveMint    string
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the wrapping ledger",
		Long: `Create the config record and the reserve vault.

The derivative mint must already name the program's derived mint authority
(see "vaultwrap derive"). The keypair becomes the config authority.

Examples:
  vaultwrap init --keypair admin.key --derivative-mint <ADDR> --reserve-mint <ADDR>`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Keypair, "keypair", "", "authority key file (required)")
	cmd.Flags().StringVar(&opts.DerivativeMint, "derivative-mint", "", "derivative mint address (required)")
	cmd.Flags().StringVar(&opts.ReserveMint, "reserve-mint", "", "reserve mint address (required)")
	_ = cmd.MarkFlagRequired("keypair")
	_ = cmd.MarkFlagRequired("derivative-mint")
	_ = cmd.MarkFlagRequired("reserve-mint")

	return cmd
}

func runInit(opts *InitOptions, cmd *cobra.Command) error {
	key, actor, err := readKey(opts.Keypair)
	if err != nil {
		return err
	}
	derivative, err := parseAddressFlag("derivative-mint", opts.DerivativeMint)
	if err != nil {
		return err
	}
	reserve, err := parseAddressFlag("reserve-mint", opts.ReserveMint)
	if err != nil {
		return err
	}

	s, err := openSession(opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.Close()

	out := opts.formatter(cmd)
	rc, err := s.submit(cmd.Context(), func(id string) (engine.Request, error) {
		req := engine.Request{
			ID:             id,
			Op:             ir.OpInitialize,
			Actor:          actor,
			DerivativeMint: derivative,
			ReserveMint:    reserve,
		}
		err := req.Sign(key)
		return req, err
	})
	if err != nil {
		return out.Reject("initialize rejected", err)
	}
	return out.Success(newReceiptView(rc))
}

// MoveOptions holds flags for the wrap and unwrap commands.
type MoveOptions struct {
	*RootOptions
	Op                ir.Op
	Keypair           string
	ReserveAccount    string
	DerivativeAccount string
}

// NewWrapCommand creates the wrap command.
func NewWrapCommand(rootOpts *RootOptions) *cobra.Command {
	return newMoveCommand(rootOpts, ir.OpWrap, "Lock reserve and receive derivative",
		`Deposit AMOUNT of the reserve asset into the vault and receive the same
amount of the derivative asset.`)
}

// NewUnwrapCommand creates the unwrap command.
func NewUnwrapCommand(rootOpts *RootOptions) *cobra.Command {
	return newMoveCommand(rootOpts, ir.OpUnwrap, "Return derivative and release reserve",
		`Retire AMOUNT of the derivative asset and withdraw the same amount of the
reserve asset from the vault.`)
}

func newMoveCommand(rootOpts *RootOptions, op ir.Op, short, long string) *cobra.Command {
	opts := &MoveOptions{RootOptions: rootOpts, Op: op}

	cmd := &cobra.Command{
		Use:   string(op) + " <amount>",
		Short: short,
		Long: long + `

The signer's token accounts for the configured mints are used unless
--reserve-account or --derivative-account names one explicitly.

Examples:
  vaultwrap ` + string(op) + ` 100 --keypair alice.key
  vaultwrap ` + string(op) + ` 100 --keypair alice.key --reserve-account <ADDR>`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMove(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Keypair, "keypair", "", "user key file (required)")
	cmd.Flags().StringVar(&opts.ReserveAccount, "reserve-account", "", "reserve token account")
	cmd.Flags().StringVar(&opts.DerivativeAccount, "derivative-account", "", "derivative token account")
	_ = cmd.MarkFlagRequired("keypair")

	return cmd
}

func runMove(opts *MoveOptions, amountArg string, cmd *cobra.Command) error {
	amount, err := strconv.ParseUint(amountArg, 10, 64)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("invalid amount %q", amountArg), err)
	}
	key, user, err := readKey(opts.Keypair)
	if err != nil {
		return err
	}

	s, err := openSession(opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.Close()

	out := opts.formatter(cmd)
	ctx := cmd.Context()
	_, cfg, err := s.ledger.Config(ctx)
	if err != nil {
		return out.Reject(string(opts.Op)+" rejected", err)
	}

	reserve, err := s.resolveAccount(cmd, "reserve-account", opts.ReserveAccount, user, cfg.ReserveMint)
	if err != nil {
		return err
	}
	derivative, err := s.resolveAccount(cmd, "derivative-account", opts.DerivativeAccount, user, cfg.DerivativeMint)
	if err != nil {
		return err
	}

	rc, err := s.submit(ctx, func(id string) (engine.Request, error) {
		req := engine.Request{
			ID:                id,
			Op:                opts.Op,
			Actor:             user,
			DerivativeMint:    cfg.DerivativeMint,
			ReserveAccount:    reserve,
			DerivativeAccount: derivative,
			Vault:             cfg.Vault,
			Amount:            amount,
		}
		err := req.Sign(key)
		return req, err
	})
	if err != nil {
		return out.Reject(string(opts.Op)+" rejected", err)
	}
	return out.Success(newReceiptView(rc))
}

// resolveAccount returns the flag value, or owner's only account of mint.
func (s *session) resolveAccount(cmd *cobra.Command, flag, value string, owner, mint ir.Address) (ir.Address, error) {
	if value != "" {
		return parseAddressFlag(flag, value)
	}
	accounts, err := s.store.AccountsByOwner(cmd.Context(), owner)
	if err != nil {
		return ir.Address{}, WrapExitError(ExitCommandError, "failed to list accounts", err)
	}
	var found []ir.Address
	for _, a := range accounts {
		if a.Mint == mint {
			found = append(found, a.ID)
		}
	}
	switch len(found) {
	case 1:
		return found[0], nil
	case 0:
		return ir.Address{}, NewExitError(ExitCommandError, fmt.Sprintf("%s owns no account of mint %s (use --%s)", owner, mint, flag))
	default:
		return ir.Address{}, NewExitError(ExitCommandError, fmt.Sprintf("%s owns %d accounts of mint %s (use --%s)", owner, len(found), mint, flag))
	}
}

func parseAddressFlag(flag, value string) (ir.Address, error) {
	addr, err := ir.ParseAddress(value)
	if err != nil {
		return ir.Address{}, WrapExitError(ExitCommandError, "invalid --"+flag, err)
	}
	return addr, nil
}
