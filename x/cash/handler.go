package cash

import (
	"github.com/supi-pay/supi"
	"github.com/supi-pay/supi/errors"
	"github.com/supi-pay/supi/x"
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r supi.Registry, auth x.Authenticator, control CoinMover) {
	r.Handle(&SendMsg{}, NewSendHandler(auth, control))
}

// SendHandler will handle sending coins
type SendHandler struct {
	auth    x.Authenticator
	control CoinMover
}

var _ supi.Handler = SendHandler{}

// NewSendHandler creates a handler for SendMsg
func NewSendHandler(auth x.Authenticator, control CoinMover) SendHandler {
	return SendHandler{
		auth:    auth,
		control: control,
	}
}

// Check verifies the message is well formed and signed by the source.
func (h SendHandler) Check(ctx supi.Context, store supi.KVStore, tx supi.Tx) (*supi.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &supi.CheckResult{}, nil
}

// Deliver moves the tokens from source to destination if
// all preconditions are met
func (h SendHandler) Deliver(ctx supi.Context, store supi.KVStore, tx supi.Tx) (*supi.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.control.MoveCoins(store, msg.Source, msg.Destination, *msg.Amount); err != nil {
		return nil, err
	}
	supi.GetLogger(ctx).Info("payment sent",
		"source", msg.Source,
		"destination", msg.Destination,
		"amount", msg.Amount)
	return &supi.DeliverResult{Data: msg.Source, Log: "payment sent"}, nil
}

func (h SendHandler) validate(ctx supi.Context, tx supi.Tx) (*SendMsg, error) {
	var msg SendMsg
	if err := supi.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if len(msg.Source) == 0 {
		signer := x.MainSigner(ctx, h.auth)
		if signer == nil {
			return nil, errors.Wrap(errors.ErrUnauthorized, "no source and no signer")
		}
		msg.Source = signer.Address()
	}
	// Make sure we have permission from the source.
	if !h.auth.HasAddress(ctx, msg.Source) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "account owner signature missing")
	}
	return &msg, nil
}
