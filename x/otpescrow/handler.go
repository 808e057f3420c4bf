package otpescrow

import (
	"github.com/supi-pay/supi"
	"github.com/supi-pay/supi/errors"
	"github.com/supi-pay/supi/gconf"
	"github.com/supi-pay/supi/x"
	"github.com/supi-pay/supi/x/cash"
)

// RegisterRoutes will instantiate and register all handlers in this package.
func RegisterRoutes(r supi.Registry, auth x.Authenticator, bank cash.CoinMover) {
	ctrl := NewController(bank)
	r.Handle(&CreateMsg{}, CreateHandler{auth: auth, ctrl: ctrl})
	r.Handle(&ReleaseMsg{}, ReleaseHandler{ctrl: ctrl})
	r.Handle(&CancelMsg{}, CancelHandler{auth: auth, ctrl: ctrl})
	r.Handle(&UpdateConfigurationMsg{}, gconf.NewUpdateConfigurationHandler(confPkg, &Configuration{}, auth, nil))
}

// CreateHandler locks the sender funds in a new escrow.
type CreateHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ supi.Handler = CreateHandler{}

// Check runs every precondition of the escrow creation.
func (h CreateHandler) Check(ctx supi.Context, db supi.KVStore, tx supi.Tx) (*supi.CheckResult, error) {
	var msg CreateMsg
	if err := supi.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := h.ctrl.CheckCreate(ctx, db, h.auth, &msg); err != nil {
		return nil, err
	}
	return &supi.CheckResult{}, nil
}

// Deliver creates the escrow. The payment id is returned as the result data.
func (h CreateHandler) Deliver(ctx supi.Context, db supi.KVStore, tx supi.Tx) (*supi.DeliverResult, error) {
	var msg CreateMsg
	if err := supi.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if _, err := h.ctrl.Create(ctx, db, h.auth, &msg); err != nil {
		return nil, err
	}
	return &supi.DeliverResult{Data: []byte(msg.PaymentID), Log: "escrow created"}, nil
}

// ReleaseHandler pays an escrow out to its receiver.
type ReleaseHandler struct {
	ctrl Controller
}

var _ supi.Handler = ReleaseHandler{}

func (h ReleaseHandler) Check(ctx supi.Context, db supi.KVStore, tx supi.Tx) (*supi.CheckResult, error) {
	var msg ReleaseMsg
	if err := supi.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if _, err := h.ctrl.CheckRelease(db, &msg); err != nil {
		return nil, err
	}
	return &supi.CheckResult{}, nil
}

func (h ReleaseHandler) Deliver(ctx supi.Context, db supi.KVStore, tx supi.Tx) (*supi.DeliverResult, error) {
	var msg ReleaseMsg
	if err := supi.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if _, err := h.ctrl.Release(ctx, db, &msg); err != nil {
		return nil, err
	}
	return &supi.DeliverResult{Data: []byte(msg.PaymentID), Log: "escrow released"}, nil
}

// CancelHandler refunds an escrow to its sender.
type CancelHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ supi.Handler = CancelHandler{}

func (h CancelHandler) Check(ctx supi.Context, db supi.KVStore, tx supi.Tx) (*supi.CheckResult, error) {
	var msg CancelMsg
	if err := supi.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if _, err := h.ctrl.CheckCancel(ctx, db, h.auth, &msg); err != nil {
		return nil, err
	}
	return &supi.CheckResult{}, nil
}

func (h CancelHandler) Deliver(ctx supi.Context, db supi.KVStore, tx supi.Tx) (*supi.DeliverResult, error) {
	var msg CancelMsg
	if err := supi.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if _, err := h.ctrl.Cancel(ctx, db, h.auth, &msg); err != nil {
		return nil, err
	}
	return &supi.DeliverResult{Data: []byte(msg.PaymentID), Log: "escrow cancelled"}, nil
}
