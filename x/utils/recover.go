package utils

import (
	"github.com/supi-pay/supi"
	"github.com/supi-pay/supi/errors"
)

// Recovery is a decorator to recover from panics in transactions,
// so we can log them as errors
type Recovery struct{}

var _ supi.Decorator = Recovery{}

// NewRecovery creates a Recovery decorator
func NewRecovery() Recovery {
	return Recovery{}
}

// Check turns panics into normal errors
func (r Recovery) Check(ctx supi.Context, store supi.KVStore, tx supi.Tx, next supi.Checker) (_ *supi.CheckResult, err error) {
	defer errors.Recover(&err)
	return next.Check(ctx, store, tx)
}

// Deliver turns panics into normal errors
func (r Recovery) Deliver(ctx supi.Context, store supi.KVStore, tx supi.Tx, next supi.Deliverer) (_ *supi.DeliverResult, err error) {
	defer errors.Recover(&err)
	return next.Deliver(ctx, store, tx)
}
