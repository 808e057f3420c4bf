package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/supi-pay/supi/crypto"
	"github.com/supi-pay/supi/errors"
	"golang.org/x/crypto/ed25519"
)

const (
	flagKey = "key"

	// bech32Prefix is the human readable part of bech32 encoded addresses.
	bech32Prefix = "supi"
)

func newKeygenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a new private key",
		Long: `Generate a new private key.

When successful a new file with binary content containing the private key is
created and the addresses of the key are printed. This command fails if the
private key file already exists.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := keyPath(cmd)
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); !os.IsNotExist(err) {
				// Do not allow to overwrite an existing private key. It
				// must be deleted manually first.
				return errors.Wrapf(errors.ErrDuplicate, "private key file %q already exists, delete this file and try again", path)
			}

			key := crypto.GenPrivKeyEd25519()
			if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
				return errors.Wrap(errors.ErrInvalidInput, err.Error())
			}
			if err := os.WriteFile(path, key.Ed25519, 0o600); err != nil {
				return errors.Wrapf(errors.ErrInvalidInput, "cannot write private key: %s", err)
			}
			return printKey(cmd.OutOrStdout(), key.PublicKey())
		},
	}
	cmd.Flags().String(flagKey, "", "private key file, defaults to priv.key in the home directory")
	return cmd
}

func keyPath(cmd *cobra.Command) (string, error) {
	path, err := cmd.Flags().GetString(flagKey)
	if err != nil {
		return "", errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	if path != "" {
		return path, nil
	}
	return filepath.Join(homeDir(cmd), "priv.key"), nil
}

func readKey(path string) (*crypto.PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "cannot read private key file: %s", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "invalid private key length: %d", len(raw))
	}
	return &crypto.PrivateKey{Ed25519: raw}, nil
}

func printKey(w io.Writer, pub *crypto.PublicKey) error {
	addr := pub.Address()
	b32, err := addr.Bech32(bech32Prefix)
	if err != nil {
		return errors.Wrap(err, "bech32")
	}
	stellar, err := pub.StellarAddress()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "address: %s\n", addr)
	fmt.Fprintf(w, "bech32:  %s\n", b32)
	fmt.Fprintf(w, "stellar: %s\n", stellar)
	return nil
}
