package genesis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/vaultwrap/internal/authority"
	"github.com/roach88/vaultwrap/internal/ir"
	"github.com/roach88/vaultwrap/internal/ledger"
	"github.com/roach88/vaultwrap/internal/token"
)

// Provisioned reports the addresses created by Provision.
type Provisioned struct {
	Mints    map[string]ir.Address
	Wallets  map[string]ir.Address
	Accounts map[string]ir.Address // "wallet/mint"
}

// Provision creates every mint and token account in m and mints the
// starting balances, all in one unit of work. Starting balances are signed
// by the mint's authority wallet; provisioning is an operator action.
func Provision(ctx context.Context, rt ledger.Runtime, deriver *authority.Deriver, m *Manifest, logger *slog.Logger) (*Provisioned, error) {
	if logger == nil {
		logger = slog.Default()
	}
	configID, _, err := deriver.ConfigAddress()
	if err != nil {
		return nil, fmt.Errorf("provision: %w", err)
	}
	derived, _, err := deriver.Find(authority.MintAuthorityLabel, configID)
	if err != nil {
		return nil, fmt.Errorf("provision: %w", err)
	}

	out := &Provisioned{
		Mints:    make(map[string]ir.Address),
		Wallets:  make(map[string]ir.Address),
		Accounts: make(map[string]ir.Address),
	}
	p := token.Program{}

	err = rt.Atomic(ctx, func(tx ledger.Tx) error {
		authorities := make(map[string]ir.Address)
		for _, mint := range m.Mints {
			var auth *ir.Address
			switch mint.Authority {
			case "":
			case DerivedMintAuthority:
				auth = &derived
			default:
				w, ok := m.Wallet(mint.Authority)
				if !ok {
					return fmt.Errorf("mint %s: unknown authority wallet %q", mint.Name, mint.Authority)
				}
				auth = &w.Address
			}
			if err := p.InitializeMint(ctx, tx, mint.ID, auth, mint.Decimals); err != nil {
				return fmt.Errorf("mint %s: %w", mint.Name, err)
			}
			if auth != nil {
				authorities[mint.Name] = *auth
			}
			out.Mints[mint.Name] = mint.ID
		}

		for _, w := range m.Wallets {
			out.Wallets[w.Name] = w.Address
			for _, a := range w.Accounts {
				mint, ok := m.Mint(a.Mint)
				if !ok {
					return fmt.Errorf("account %s/%s: unknown mint %q", w.Name, a.Mint, a.Mint)
				}
				if err := p.InitializeAccount(ctx, tx, a.ID, mint.ID, w.Address); err != nil {
					return fmt.Errorf("account %s/%s: %w", w.Name, a.Mint, err)
				}
				if a.Amount > 0 {
					auth := authorities[a.Mint]
					if err := p.MintTo(ctx, tx, mint.ID, a.ID, auth, ir.NewSignerSet(auth), a.Amount); err != nil {
						return fmt.Errorf("fund %s/%s: %w", w.Name, a.Mint, err)
					}
				}
				out.Accounts[w.Name+"/"+a.Mint] = a.ID
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("provision: %w", err)
	}

	logger.Info("provisioned",
		"mints", len(out.Mints),
		"wallets", len(out.Wallets),
		"accounts", len(out.Accounts))
	return out, nil
}
