package api

import (
	"encoding/hex"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/supi-pay/supi"
	"github.com/supi-pay/supi/app"
	"github.com/supi-pay/supi/coin"
	"github.com/supi-pay/supi/errors"
	"github.com/supi-pay/supi/x/cash"
	"github.com/supi-pay/supi/x/otpescrow"
	"github.com/supi-pay/supi/x/sigs"
	"github.com/tendermint/tendermint/libs/log"
)

const maxBodySize = 1 << 16

// EscrowHandler serves create, release, cancel and inspect.
type EscrowHandler struct {
	App    *app.Application
	Escrow otpescrow.Controller
	Logger log.Logger
}

// EscrowResponse is returned by every state changing escrow endpoint.
type EscrowResponse struct {
	PaymentID string `json:"payment_id"`
	Status    string `json:"status"`
	DryRun    bool   `json:"dry_run,omitempty"`
}

// Create executes a signed transaction carrying an otpescrow/create message.
// With ?dry_run=true the transaction is only checked.
func (h *EscrowHandler) Create(w http.ResponseWriter, r *http.Request) {
	tx, err := readTx(w, r)
	if err != nil {
		h.fail(w, err)
		return
	}
	msg, err := tx.GetMsg()
	if err != nil {
		h.fail(w, err)
		return
	}
	create, ok := msg.(*otpescrow.CreateMsg)
	if !ok {
		JSONErr(w, http.StatusBadRequest, "transaction must contain an escrow create message")
		return
	}
	h.execute(w, r, tx, create.PaymentID, "active", http.StatusCreated)
}

// Release pays the escrow out when the passcode matches.
func (h *EscrowHandler) Release(w http.ResponseWriter, r *http.Request) {
	var input struct {
		OTP string `json:"otp"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&input); err != nil {
		JSONErr(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	id, err := paymentID(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	tx, err := app.NewTx(&otpescrow.ReleaseMsg{
		PaymentID: id,
		Otp:       input.OTP,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	h.execute(w, r, tx, id, "released", http.StatusOK)
}

// Cancel executes a signed transaction carrying an otpescrow/cancel message
// for the escrow in the URL.
func (h *EscrowHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	tx, err := readTx(w, r)
	if err != nil {
		h.fail(w, err)
		return
	}
	msg, err := tx.GetMsg()
	if err != nil {
		h.fail(w, err)
		return
	}
	cancel, ok := msg.(*otpescrow.CancelMsg)
	if !ok {
		JSONErr(w, http.StatusBadRequest, "transaction must contain an escrow cancel message")
		return
	}
	id, err := paymentID(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	if cancel.PaymentID != id {
		JSONErr(w, http.StatusBadRequest, "payment id does not match the URL")
		return
	}
	h.execute(w, r, tx, cancel.PaymentID, "cancelled", http.StatusOK)
}

func (h *EscrowHandler) execute(w http.ResponseWriter, r *http.Request, tx supi.Tx, paymentID, status string, code int) {
	if dryRun(r) {
		if _, err := h.App.Check(r.Context(), tx); err != nil {
			h.fail(w, err)
			return
		}
		JSONResp(w, http.StatusOK, EscrowResponse{PaymentID: paymentID, Status: status, DryRun: true})
		return
	}
	if _, err := h.App.Deliver(r.Context(), tx); err != nil {
		h.fail(w, err)
		return
	}
	JSONResp(w, code, EscrowResponse{PaymentID: paymentID, Status: status})
}

// Inspect returns the public state of an escrow.
func (h *EscrowHandler) Inspect(w http.ResponseWriter, r *http.Request) {
	id, err := paymentID(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	var details *otpescrow.Details
	err = h.App.View(func(db supi.ReadOnlyKVStore) error {
		var err error
		details, err = h.Escrow.Inspect(db, id)
		return err
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	JSONResp(w, http.StatusOK, details)
}

func (h *EscrowHandler) fail(w http.ResponseWriter, err error) {
	writeErr(w, h.Logger, err)
}

// paymentID returns the decoded payment id from the URL. Payment ids are
// opaque, a slash must be sent escaped as %2F.
func paymentID(r *http.Request) (string, error) {
	id := chi.URLParam(r, "id")
	if r.URL.RawPath == "" {
		return id, nil
	}
	// The router matched the escaped path.
	id, err := url.PathUnescape(id)
	if err != nil {
		return "", errors.Wrapf(errors.ErrInvalidInput, "payment id: %s", err)
	}
	return id, nil
}

// PaymentHandler serves direct payments without escrow.
type PaymentHandler struct {
	App    *app.Application
	Logger log.Logger
}

// PaymentResponse is returned by the payment endpoint.
type PaymentResponse struct {
	Source      supi.Address `json:"source,omitempty"`
	Destination supi.Address `json:"destination"`
	Amount      *coin.Coin   `json:"amount"`
	Status      string       `json:"status"`
	DryRun      bool         `json:"dry_run,omitempty"`
}

// Pay executes a signed transaction carrying a cash/send message. With
// ?dry_run=true the transaction is only checked.
func (h *PaymentHandler) Pay(w http.ResponseWriter, r *http.Request) {
	tx, err := readTx(w, r)
	if err != nil {
		writeErr(w, h.Logger, err)
		return
	}
	msg, err := tx.GetMsg()
	if err != nil {
		writeErr(w, h.Logger, err)
		return
	}
	send, ok := msg.(*cash.SendMsg)
	if !ok {
		JSONErr(w, http.StatusBadRequest, "transaction must contain a payment message")
		return
	}
	resp := PaymentResponse{
		Source:      send.Source,
		Destination: send.Destination,
		Amount:      send.Amount,
		Status:      "paid",
	}
	if dryRun(r) {
		if _, err := h.App.Check(r.Context(), tx); err != nil {
			writeErr(w, h.Logger, err)
			return
		}
		resp.DryRun = true
		JSONResp(w, http.StatusOK, resp)
		return
	}
	res, err := h.App.Deliver(r.Context(), tx)
	if err != nil {
		writeErr(w, h.Logger, err)
		return
	}
	// The source is resolved from the signer when the message has none.
	resp.Source = res.Data
	JSONResp(w, http.StatusOK, resp)
}

// AccountHandler serves wallet balances and signature sequences.
type AccountHandler struct {
	App    *app.Application
	Bank   cash.BaseController
	Logger log.Logger
}

// Wallet returns all coins owned by an address.
func (h *AccountHandler) Wallet(w http.ResponseWriter, r *http.Request) {
	addr, err := supi.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		writeErr(w, h.Logger, err)
		return
	}
	var coins coin.Coins
	err = h.App.View(func(db supi.ReadOnlyKVStore) error {
		var err error
		coins, err = h.Bank.Balance(db, addr)
		return err
	})
	if err != nil {
		writeErr(w, h.Logger, err)
		return
	}
	if coins == nil {
		coins = coin.Coins{}
	}
	JSONResp(w, http.StatusOK, struct {
		Address supi.Address `json:"address"`
		Coins   coin.Coins   `json:"coins"`
	}{
		Address: addr,
		Coins:   coins,
	})
}

// Sequence returns the sequence the next signature of the address must use.
func (h *AccountHandler) Sequence(w http.ResponseWriter, r *http.Request) {
	addr, err := supi.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		writeErr(w, h.Logger, err)
		return
	}
	var seq int64
	err = h.App.View(func(db supi.ReadOnlyKVStore) error {
		var err error
		seq, err = sigs.NextNonce(db, addr)
		return err
	})
	if err != nil {
		writeErr(w, h.Logger, err)
		return
	}
	JSONResp(w, http.StatusOK, struct {
		Address  supi.Address `json:"address"`
		Sequence int64        `json:"sequence"`
		ChainID  string       `json:"chain_id"`
	}{
		Address:  addr,
		Sequence: seq,
		ChainID:  h.App.ChainID(),
	})
}

// HealthHandler reports the database status.
type HealthHandler struct {
	DB Pinger
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.DB != nil {
		if err := h.DB.Ping(r.Context()); err != nil {
			JSONErr(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	JSONResp(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readTx decodes a signed transaction from the request body. JSON bodies
// carry the hex encoded transaction in the "tx" field.
func readTx(w http.ResponseWriter, r *http.Request) (supi.Tx, error) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "read body: %s", err)
	}
	if mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mediaType == "application/json" {
		var input struct {
			Tx string `json:"tx"`
		}
		if err := json.Unmarshal(raw, &input); err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "decode JSON: %s", err)
		}
		raw, err = hex.DecodeString(strings.TrimSpace(input.Tx))
		if err != nil {
			return nil, errors.Wrap(errors.ErrInvalidInput, "tx must be hex encoded")
		}
	}
	if len(raw) == 0 {
		return nil, errors.Wrap(errors.ErrEmpty, "transaction")
	}
	return app.TxDecoder(raw)
}

func dryRun(r *http.Request) bool {
	ok, _ := strconv.ParseBool(r.URL.Query().Get("dry_run"))
	return ok
}
