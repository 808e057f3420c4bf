package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/supi-pay/supi/errors"
	"github.com/supi-pay/supi/store/sqlstore"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	flagHome  = "home"
	envPrefix = "SUPI"
)

// configuration of the node. Every field can be set with a SUPI_ prefixed
// environment variable or in config.yaml.
type configuration struct {
	Home     string `mapstructure:"-"`
	HTTP     string `mapstructure:"HTTP"`
	DBDriver string `mapstructure:"DB_DRIVER"`
	DBDSN    string `mapstructure:"DB_DSN"`
	Genesis  string `mapstructure:"GENESIS"`
	ChainID  string `mapstructure:"CHAIN_ID"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
}

func defaultHome() string {
	if h, ok := os.LookupEnv(envPrefix + "_HOME"); ok {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".supi"
	}
	return filepath.Join(home, ".supi")
}

// homeDir returns the value of the persistent home flag.
func homeDir(cmd *cobra.Command) string {
	if f := cmd.Flag(flagHome); f != nil && f.Value.String() != "" {
		return f.Value.String()
	}
	return defaultHome()
}

// loadConfig reads the configuration for the home directory given to the
// command.
func loadConfig(cmd *cobra.Command) (*configuration, error) {
	home := homeDir(cmd)

	v := viper.New()
	v.AddConfigPath(home)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("HTTP", ":8080")
	v.SetDefault("DB_DRIVER", sqlstore.DriverSQLite)
	v.SetDefault("DB_DSN", filepath.Join(home, "data", "supi.db"))
	v.SetDefault("GENESIS", filepath.Join(home, "genesis.json"))
	v.SetDefault("CHAIN_ID", "")
	v.SetDefault("LOG_LEVEL", "info")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "config file: %s", err)
		}
	}

	var conf configuration
	if err := v.Unmarshal(&conf); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "config: %s", err)
	}
	conf.Home = home
	return &conf, nil
}

// newLogger returns a logger writing to out that drops messages below the
// given level.
func newLogger(level string, out io.Writer) (log.Logger, error) {
	logger := log.NewTMLogger(log.NewSyncWriter(out))
	opt, err := log.AllowLevel(level)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "log level: %s", err)
	}
	return log.NewFilter(logger, opt), nil
}
