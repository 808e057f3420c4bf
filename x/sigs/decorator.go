/*
Package sigs provides basic authentication
middleware to verify the signatures on the transaction,
and maintain nonces for replay protection.
*/
package sigs

import (
	"github.com/supi-pay/supi"
	"github.com/supi-pay/supi/errors"
)

//----------------- Decorator ----------------
//
// This is just a binding from the functionality into the
// Application stack, not much business logic here.

// Decorator verifies the signatures and adds them to the context
type Decorator struct {
	allowMissingSigs bool
}

var _ supi.Decorator = Decorator{}

// NewDecorator returns a default authentication decorator,
// which appends the chainID before checking the signature,
// and requires at least one signature to be present
func NewDecorator() Decorator {
	return Decorator{
		allowMissingSigs: false,
	}
}

// AllowMissingSigs allows us to pass along items with no signatures
func (d Decorator) AllowMissingSigs() Decorator {
	d.allowMissingSigs = true
	return d
}

// Check verifies signatures before calling down the stack.
func (d Decorator) Check(ctx supi.Context, store supi.KVStore, tx supi.Tx, next supi.Checker) (*supi.CheckResult, error) {
	ctx, err := d.verify(ctx, store, tx)
	if err != nil {
		return nil, err
	}
	return next.Check(ctx, store, tx)
}

// Deliver verifies signatures before calling down the stack.
func (d Decorator) Deliver(ctx supi.Context, store supi.KVStore, tx supi.Tx, next supi.Deliverer) (*supi.DeliverResult, error) {
	ctx, err := d.verify(ctx, store, tx)
	if err != nil {
		return nil, err
	}
	return next.Deliver(ctx, store, tx)
}

func (d Decorator) verify(ctx supi.Context, store supi.KVStore, tx supi.Tx) (supi.Context, error) {
	var signers []supi.Condition
	if stx, ok := tx.(SignedTx); ok {
		chainID := supi.GetChainID(ctx)
		var err error
		signers, err = VerifyTxSignatures(store, stx, chainID)
		if err != nil {
			return nil, errors.Wrap(err, "cannot verify signatures")
		}
	}
	if len(signers) == 0 && !d.allowMissingSigs {
		return nil, errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	return withSigners(ctx, signers), nil
}
