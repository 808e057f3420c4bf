/*
Package api exposes the escrow service over HTTP.

Create, cancel and payments take a signed transaction, either as the raw
binary body or as a JSON object {"tx": "<hex>"}. Release only needs the
passcode. Payment ids in paths must be URL escaped. All responses are JSON
encoded.
*/
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/supi-pay/supi/app"
	"github.com/supi-pay/supi/x/cash"
	"github.com/supi-pay/supi/x/otpescrow"
	"github.com/tendermint/tendermint/libs/log"
)

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping(context.Context) error
}

// NewRouter returns the HTTP handler serving all API endpoints.
func NewRouter(a *app.Application, db Pinger, logger log.Logger) http.Handler {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	bank := cash.NewController(cash.NewBucket())
	escrows := &EscrowHandler{
		App:    a,
		Escrow: otpescrow.NewController(bank),
		Logger: logger,
	}
	payments := &PaymentHandler{
		App:    a,
		Logger: logger,
	}
	accounts := &AccountHandler{
		App:    a,
		Bank:   bank,
		Logger: logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", (&HealthHandler{DB: db}).ServeHTTP)

	r.Route("/escrows", func(r chi.Router) {
		r.Post("/", escrows.Create)
		r.Get("/{id}", escrows.Inspect)
		r.Post("/{id}/release", escrows.Release)
		r.Post("/{id}/cancel", escrows.Cancel)
	})
	r.Post("/payments", payments.Pay)
	r.Get("/wallets/{address}", accounts.Wallet)
	r.Get("/accounts/{address}", accounts.Sequence)
	return r
}
