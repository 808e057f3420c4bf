package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/supi-pay/supi/app"
	"github.com/supi-pay/supi/cmd/supid/api"
	"github.com/supi-pay/supi/errors"
	"github.com/supi-pay/supi/store/sqlstore"
	"github.com/supi-pay/supi/x/cash"
)

func newStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Run the node and serve the HTTP API",
		Long: `Run the node and serve the HTTP API.

On the first start the store is initialized from the genesis file. Later
starts reuse the stored state and ignore the genesis file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, conf)
		},
	}
}

func run(ctx context.Context, conf *configuration) error {
	logger, err := newLogger(conf.LogLevel, os.Stdout)
	if err != nil {
		return err
	}

	db, err := sqlstore.Open(conf.DBDriver, conf.DBDSN)
	if err != nil {
		return errors.Wrap(err, "open store")
	}
	defer db.Close()

	bank := cash.NewController(cash.NewBucket())
	a, err := app.NewApplication(db, app.Stack(bank), nil, logger.With("module", "app"))
	if err != nil {
		return err
	}
	if a.ChainID() == "" {
		gen, err := app.LoadGenesis(conf.Genesis)
		if err != nil {
			return err
		}
		if conf.ChainID != "" && conf.ChainID != gen.ChainID {
			return errors.Wrapf(errors.ErrInvalidInput, "genesis chain id %q does not match configured %q", gen.ChainID, conf.ChainID)
		}
		if err := a.InitChain(gen, app.Initializers()); err != nil {
			return err
		}
	} else if conf.ChainID != "" && conf.ChainID != a.ChainID() {
		return errors.Wrapf(errors.ErrInvalidState, "store belongs to chain %q, configured %q", a.ChainID(), conf.ChainID)
	}

	srv := &http.Server{
		Addr:              conf.HTTP,
		Handler:           api.NewRouter(a, db, logger.With("module", "api")),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("serving HTTP", "addr", conf.HTTP, "chain_id", a.ChainID())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return errors.Wrap(err, "http server")
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return nil
}
