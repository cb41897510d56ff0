package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/vaultwrap/internal/authority"
	"github.com/roach88/vaultwrap/internal/ir"
)

// StatusView is the config record as printed by status.
type StatusView struct {
	Config             string `json:"config"`
	Authority          string `json:"authority"`
	DerivativeMint     string `json:"derivative_mint"`
	ReserveMint        string `json:"reserve_mint"`
	Vault              string `json:"vault"`
	TotalWrapped       uint64 `json:"total_wrapped"`
	MintAuthorityBump  uint8  `json:"mint_authority_bump"`
	VaultAuthorityBump uint8  `json:"vault_authority_bump"`
}

func (v StatusView) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "config:          %s\n", v.Config)
	fmt.Fprintf(&b, "authority:       %s\n", v.Authority)
	fmt.Fprintf(&b, "derivative mint: %s\n", v.DerivativeMint)
	fmt.Fprintf(&b, "reserve mint:    %s\n", v.ReserveMint)
	fmt.Fprintf(&b, "vault:           %s\n", v.Vault)
	fmt.Fprintf(&b, "total wrapped:   %d\n", v.TotalWrapped)
	fmt.Fprintf(&b, "bumps:           mint=%d vault=%d", v.MintAuthorityBump, v.VaultAuthorityBump)
	return b.String()
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the config record",
		Long: `Show the config record: mints, vault, total wrapped and recorded bumps.

Examples:
  vaultwrap status
  vaultwrap status --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			out := rootOpts.formatter(cmd)
			id, cfg, err := s.ledger.Config(cmd.Context())
			if err != nil {
				return out.Reject("status unavailable", err)
			}
			return out.Success(StatusView{
				Config:             id.String(),
				Authority:          cfg.Authority.String(),
				DerivativeMint:     cfg.DerivativeMint.String(),
				ReserveMint:        cfg.ReserveMint.String(),
				Vault:              cfg.Vault.String(),
				TotalWrapped:       cfg.TotalWrapped,
				MintAuthorityBump:  cfg.MintAuthorityBump,
				VaultAuthorityBump: cfg.VaultAuthorityBump,
			})
		},
	}
}

// AuditView is the conservation report.
type AuditView struct {
	TotalWrapped     uint64 `json:"total_wrapped"`
	VaultBalance     uint64 `json:"vault_balance"`
	DerivativeSupply uint64 `json:"derivative_supply"`
	HolderSum        string `json:"holder_sum"`
	Holders          int    `json:"holders"`
	Balanced         bool   `json:"balanced"`
}

func (v AuditView) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "total wrapped:     %d\n", v.TotalWrapped)
	fmt.Fprintf(&b, "vault balance:     %d\n", v.VaultBalance)
	fmt.Fprintf(&b, "derivative supply: %d\n", v.DerivativeSupply)
	fmt.Fprintf(&b, "holder sum:        %s (%d accounts)\n", v.HolderSum, v.Holders)
	if v.Balanced {
		b.WriteString("✓ balanced")
	} else {
		b.WriteString("✗ NOT balanced")
	}
	return b.String()
}

// NewAuditCommand creates the audit command.
func NewAuditCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Check that reserve and derivative balances agree",
		Long: `Compare total wrapped, the vault balance, the derivative supply and the
sum of all derivative holder balances.

Exit codes:
  0 - All four agree
  1 - Imbalance detected, or the ledger is not initialized
  2 - Command error`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			out := rootOpts.formatter(cmd)
			rep, err := s.ledger.Audit(cmd.Context())
			if err != nil {
				return out.Reject("audit failed", err)
			}
			view := AuditView{
				TotalWrapped:     rep.TotalWrapped,
				VaultBalance:     rep.VaultBalance,
				DerivativeSupply: rep.DerivativeSupply,
				HolderSum:        rep.HolderSum.Dec(),
				Holders:          rep.Holders,
				Balanced:         rep.Balanced,
			}
			if err := out.Success(view); err != nil {
				return err
			}
			if !rep.Balanced {
				return &ExitError{Code: ExitFailure, Message: "conservation violated", Reported: true}
			}
			return nil
		},
	}
}

// DerivedView lists the program's derived addresses.
type DerivedView struct {
	Program            string `json:"program"`
	Config             string `json:"config"`
	ConfigBump         uint8  `json:"config_bump"`
	Vault              string `json:"vault"`
	VaultBump          uint8  `json:"vault_bump"`
	MintAuthority      string `json:"mint_authority"`
	MintAuthorityBump  uint8  `json:"mint_authority_bump"`
	VaultAuthority     string `json:"vault_authority"`
	VaultAuthorityBump uint8  `json:"vault_authority_bump"`
}

func (v DerivedView) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "program:         %s\n", v.Program)
	fmt.Fprintf(&b, "config:          %s (bump %d)\n", v.Config, v.ConfigBump)
	fmt.Fprintf(&b, "vault:           %s (bump %d)\n", v.Vault, v.VaultBump)
	fmt.Fprintf(&b, "mint authority:  %s (bump %d)\n", v.MintAuthority, v.MintAuthorityBump)
	fmt.Fprintf(&b, "vault authority: %s (bump %d)", v.VaultAuthority, v.VaultAuthorityBump)
	return b.String()
}

// NewDeriveCommand creates the derive command.
func NewDeriveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "derive",
		Short: "Print the program's derived addresses",
		Long: `Print the config, vault and authority addresses derived from the
program address, with their bumps. Needs no database.

Examples:
  vaultwrap derive --program-id <ADDR>`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := rootOpts.Config.Program()
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid program id", err)
			}
			view, err := derive(authority.NewDeriver(program))
			if err != nil {
				return WrapExitError(ExitCommandError, "derivation failed", err)
			}
			return rootOpts.formatter(cmd).Success(view)
		},
	}
}

func derive(d *authority.Deriver) (DerivedView, error) {
	config, configBump, err := d.ConfigAddress()
	if err != nil {
		return DerivedView{}, err
	}
	vault, vaultBump, err := d.VaultAddress(config)
	if err != nil {
		return DerivedView{}, err
	}
	auths, err := d.Authorities(config)
	if err != nil {
		return DerivedView{}, err
	}
	return DerivedView{
		Program:            d.Program().String(),
		Config:             config.String(),
		ConfigBump:         configBump,
		Vault:              vault.String(),
		VaultBump:          vaultBump,
		MintAuthority:      auths.Mint.String(),
		MintAuthorityBump:  auths.MintBump,
		VaultAuthority:     auths.Vault.String(),
		VaultAuthorityBump: auths.VaultBump,
	}, nil
}

// JournalOptions holds flags for the journal command.
type JournalOptions struct {
	*RootOptions
	After  int64
	Limit  int
	Verify bool
}

// JournalView is the journal listing.
type JournalView struct {
	Entries  []ir.JournalEntry `json:"entries"`
	Verified *bool             `json:"verified,omitempty"`
}

func (v JournalView) String() string {
	var b strings.Builder
	if len(v.Entries) == 0 {
		b.WriteString("No journal entries.")
	}
	for i, e := range v.Entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%6d  %-10s  %-12s  %20d  total=%d  %s",
			e.Seq, e.Op, e.User.Short(), e.Amount, e.TotalWrapped, e.RequestID)
	}
	if v.Verified != nil {
		if *v.Verified {
			b.WriteString("\n✓ all receipts verified")
		} else {
			b.WriteString("\n✗ receipt mismatch")
		}
	}
	return b.String()
}

// NewJournalCommand creates the journal command.
func NewJournalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &JournalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "List committed operations",
		Long: `List journal entries in commit order.

With --verify every stored receipt is recomputed; a mismatch exits 1.

Examples:
  vaultwrap journal
  vaultwrap journal --after 10 --limit 5
  vaultwrap journal --verify`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJournal(opts, cmd)
		},
	}

	cmd.Flags().Int64Var(&opts.After, "after", 0, "only entries with seq greater than this")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum entries (0 = all)")
	cmd.Flags().BoolVar(&opts.Verify, "verify", false, "recompute and check every receipt")

	return cmd
}

func runJournal(opts *JournalOptions, cmd *cobra.Command) error {
	s, err := openSession(opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	entries, err := s.store.Journal(ctx, opts.After, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}
	view := JournalView{Entries: entries}

	var bad int64
	if opts.Verify {
		bad, err = s.store.VerifyJournal(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to verify journal", err)
		}
		ok := bad == 0
		view.Verified = &ok
	}
	if err := opts.formatter(cmd).Success(view); err != nil {
		return err
	}
	if bad != 0 {
		return &ExitError{Code: ExitFailure, Message: fmt.Sprintf("journal entry %d does not match its receipt", bad), Reported: true}
	}
	return nil
}
