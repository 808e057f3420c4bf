package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/supi-pay/supi"
	"github.com/supi-pay/supi/app"
	"github.com/supi-pay/supi/coin"
	"github.com/supi-pay/supi/errors"
	"github.com/supi-pay/supi/x/cash"
	"github.com/supi-pay/supi/x/otpescrow"
)

func newInitCmd() *cobra.Command {
	var (
		chainID   string
		funds     []string
		retention time.Duration
		owner     string
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a genesis file for a new node",
		Long: `Write a genesis file for a new node.

The file is written to the GENESIS path of the configuration. The command
fails if the file already exists. Each --fund flag credits an address at
genesis, for example --fund "stellar:GB...=1000 XLM".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if chainID == "" {
				chainID = conf.ChainID
			}
			gen, err := buildGenesis(chainID, funds, retention, owner)
			if err != nil {
				return err
			}
			if err := writeGenesis(conf.Genesis, gen); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "genesis for chain %q written to %s\n", gen.ChainID, conf.Genesis)
			return nil
		},
	}
	cmd.Flags().StringVar(&chainID, "chain-id", "", "chain id, defaults to CHAIN_ID from the configuration")
	cmd.Flags().StringArrayVar(&funds, "fund", nil, `initial balance in the form <address>=<amount> <ticker>`)
	cmd.Flags().DurationVar(&retention, "retention", 0, "how long escrow records are retained, 0 keeps the default")
	cmd.Flags().StringVar(&owner, "owner", "", "address allowed to update the escrow configuration")
	return cmd
}

func buildGenesis(chainID string, funds []string, retention time.Duration, owner string) (*app.Genesis, error) {
	accounts := make([]cash.GenesisAccount, 0, len(funds))
	for _, f := range funds {
		acct, err := parseFund(f)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acct)
	}

	opts := supi.Options{}
	raw, err := json.Marshal(accounts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	opts["cash"] = raw

	if retention != 0 || owner != "" {
		conf := otpescrow.Configuration{
			RetentionPeriod: supi.Duration(retention),
		}
		if retention == 0 {
			conf.RetentionPeriod = supi.Duration(otpescrow.DefaultRetentionPeriod)
		}
		if owner != "" {
			addr, err := supi.ParseAddress(owner)
			if err != nil {
				return nil, errors.Wrap(err, "owner")
			}
			conf.Owner = addr
		}
		if err := conf.Validate(); err != nil {
			return nil, err
		}
		raw, err := json.Marshal(map[string]otpescrow.Configuration{"otpescrow": conf})
		if err != nil {
			return nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
		}
		opts["conf"] = raw
	}

	gen := &app.Genesis{ChainID: chainID, AppOptions: opts}
	if err := gen.Validate(); err != nil {
		return nil, err
	}
	return gen, nil
}

// parseFund decodes "<address>=<amount> <ticker>".
func parseFund(s string) (cash.GenesisAccount, error) {
	i := strings.LastIndex(s, "=")
	if i < 0 {
		return cash.GenesisAccount{}, errors.Wrapf(errors.ErrInvalidInput, "fund %q: missing =", s)
	}
	addr, err := supi.ParseAddress(strings.TrimSpace(s[:i]))
	if err != nil {
		return cash.GenesisAccount{}, errors.Wrapf(err, "fund %q", s)
	}
	if err := addr.Validate(); err != nil {
		return cash.GenesisAccount{}, errors.Wrapf(err, "fund %q", s)
	}
	c, err := coin.ParseHumanFormat(strings.TrimSpace(s[i+1:]))
	if err != nil {
		return cash.GenesisAccount{}, errors.Wrapf(err, "fund %q", s)
	}
	if !c.IsPositive() {
		return cash.GenesisAccount{}, errors.Wrapf(errors.ErrInvalidAmount, "fund %q", s)
	}
	return cash.GenesisAccount{Address: addr, Coins: []*coin.Coin{&c}}, nil
}

func writeGenesis(path string, gen *app.Genesis) error {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return errors.Wrapf(errors.ErrDuplicate, "genesis file %q already exists", path)
	}
	raw, err := json.MarshalIndent(gen, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	return nil
}
