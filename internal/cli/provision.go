package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/vaultwrap/internal/genesis"
	"github.com/roach88/vaultwrap/internal/ir"
)

// ProvisionView summarizes a provisioned manifest.
type ProvisionView struct {
	Mints    map[string]string `json:"mints"`
	Wallets  map[string]string `json:"wallets"`
	Accounts map[string]string `json:"accounts"`
}

func (v ProvisionView) String() string {
	var b strings.Builder
	writeSection := func(title string, m map[string]string) {
		fmt.Fprintf(&b, "%s:\n", title)
		for _, k := range sortedKeys(m) {
			fmt.Fprintf(&b, "  %-20s %s\n", k, m[k])
		}
	}
	writeSection("mints", v.Mints)
	writeSection("wallets", v.Wallets)
	writeSection("accounts", v.Accounts)
	return strings.TrimSuffix(b.String(), "\n")
}

// NewProvisionCommand creates the provision command.
func NewProvisionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "provision <manifest.cue>",
		Short: "Create mints, token accounts and balances from a CUE manifest",
		Long: `Compile a genesis manifest and create everything it declares in one
transaction. Nothing is written if any part fails.

A mint whose authority is "@mint_authority" is bound to the program's
derived mint authority and can then back "vaultwrap init".

Examples:
  vaultwrap provision genesis.cue
  vaultwrap provision genesis.cue --db ./ledger.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := genesis.LoadFile(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid manifest", err)
			}

			s, err := openSession(rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			p, err := genesis.Provision(cmd.Context(), s.store, s.deriver, m, rootOpts.Logger)
			if err != nil {
				return rootOpts.formatter(cmd).Reject("provision failed", err)
			}
			return rootOpts.formatter(cmd).Success(ProvisionView{
				Mints:    addressStrings(p.Mints),
				Wallets:  addressStrings(p.Wallets),
				Accounts: addressStrings(p.Accounts),
			})
		},
	}
}

func addressStrings(m map[string]ir.Address) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v.String()
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
