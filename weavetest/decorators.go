package weavetest

import "github.com/supi-pay/supi"

// Decorator is a mock implementation of the supi.Decorator interface.
//
// Set CheckErr or DeliverErr to force error response for corresponding method.
// If error attributes are not set then wrapped handler method is called and
// its result returned.
// Each method call is counted. Regardless of the method call result the
// counter is incremented.
type Decorator struct {
	checkCall int
	// CheckErr if set is returned by the Check method before calling
	// the wrapped handler.
	CheckErr error

	deliverCall int
	// DeliverErr if set is returned by the Deliver method before calling
	// the wrapped handler.
	DeliverErr error
}

var _ supi.Decorator = (*Decorator)(nil)

func (d *Decorator) Check(ctx supi.Context, db supi.KVStore, tx supi.Tx, next supi.Checker) (*supi.CheckResult, error) {
	d.checkCall++

	if d.CheckErr != nil {
		return &supi.CheckResult{}, d.CheckErr
	}
	return next.Check(ctx, db, tx)
}

func (d *Decorator) Deliver(ctx supi.Context, db supi.KVStore, tx supi.Tx, next supi.Deliverer) (*supi.DeliverResult, error) {
	d.deliverCall++

	if d.DeliverErr != nil {
		return &supi.DeliverResult{}, d.DeliverErr
	}
	return next.Deliver(ctx, db, tx)
}

func (d *Decorator) CheckCallCount() int {
	return d.checkCall
}

func (d *Decorator) DeliverCallCount() int {
	return d.deliverCall
}

func (d *Decorator) CallCount() int {
	return d.checkCall + d.deliverCall
}

func Decorate(h supi.Handler, d supi.Decorator) supi.Handler {
	return &decoratedHandler{hn: h, dc: d}
}

type decoratedHandler struct {
	hn supi.Handler
	dc supi.Decorator
}

var _ supi.Handler = (*decoratedHandler)(nil)

func (d *decoratedHandler) Check(ctx supi.Context, db supi.KVStore, tx supi.Tx) (*supi.CheckResult, error) {
	return d.dc.Check(ctx, db, tx, d.hn)
}

func (d *decoratedHandler) Deliver(ctx supi.Context, db supi.KVStore, tx supi.Tx) (*supi.DeliverResult, error) {
	return d.dc.Deliver(ctx, db, tx, d.hn)
}
