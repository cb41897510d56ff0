package cli

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/spf13/cobra"

	"github.com/roach88/vaultwrap/internal/ir"
)

// KeygenOptions holds flags for the keygen command.
type KeygenOptions struct {
	*RootOptions
	Out   string
	Force bool
}

// KeyView is the keygen output.
type KeyView struct {
	Address string `json:"address"`
	Path    string `json:"path"`
}

func (v KeyView) String() string {
	return fmt.Sprintf("address: %s\nwritten: %s", v.Address, v.Path)
}

// NewKeygenCommand creates the keygen command.
func NewKeygenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &KeygenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an ed25519 keypair",
		Long: `Generate an ed25519 keypair and write the base58 private key to a file.

The printed address is the public key; use it as a wallet address in
genesis manifests and as the identity for init, wrap and unwrap.

Examples:
  vaultwrap keygen --out alice.key`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeygen(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Out, "out", "", "key file to write (required)")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite an existing key file")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func runKeygen(opts *KeygenOptions, cmd *cobra.Command) error {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to generate key", err)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if opts.Force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(opts.Out, flags, 0o600)
	if errors.Is(err, os.ErrExist) {
		return NewExitError(ExitCommandError, fmt.Sprintf("key file %s exists (use --force to overwrite)", opts.Out))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create key file", err)
	}
	if _, err := fmt.Fprintln(f, base58.Encode(priv)); err != nil {
		f.Close()
		return WrapExitError(ExitCommandError, "failed to write key file", err)
	}
	if err := f.Close(); err != nil {
		return WrapExitError(ExitCommandError, "failed to write key file", err)
	}

	addr, _ := ir.AddressFromBytes(priv.Public().(ed25519.PublicKey))
	opts.Logger.Info("key generated", "address", addr.String(), "path", opts.Out)
	return opts.formatter(cmd).Success(KeyView{Address: addr.String(), Path: opts.Out})
}

// readKey loads a key file written by keygen.
func readKey(path string) (ed25519.PrivateKey, ir.Address, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ir.Address{}, WrapExitError(ExitCommandError, "failed to read key file", err)
	}
	raw, err := base58.Decode(strings.TrimSpace(string(data)))
	if err != nil || len(raw) != ed25519.PrivateKeySize {
		return nil, ir.Address{}, NewExitError(ExitCommandError, fmt.Sprintf("key file %s is not a base58 ed25519 private key", path))
	}
	priv := ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize])
	if !bytes.Equal(priv, raw) {
		return nil, ir.Address{}, NewExitError(ExitCommandError, fmt.Sprintf("key file %s: public key does not match seed", path))
	}
	addr, err := ir.AddressFromBytes(priv.Public().(ed25519.PublicKey))
	if err != nil {
		return nil, ir.Address{}, WrapExitError(ExitCommandError, "invalid key", err)
	}
	return priv, addr, nil
}
