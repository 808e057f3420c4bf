package weavetest

import "github.com/supi-pay/supi"

// Handler is a mock implementation of the supi.Handler interface. It returns
// the configured results and counts its calls.
type Handler struct {
	checkCall   int
	CheckResult supi.CheckResult
	CheckErr    error

	deliverCall   int
	DeliverResult supi.DeliverResult
	DeliverErr    error
}

var _ supi.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx supi.Context, db supi.KVStore, tx supi.Tx) (*supi.CheckResult, error) {
	h.checkCall++
	res := h.CheckResult
	return &res, h.CheckErr
}

func (h *Handler) Deliver(ctx supi.Context, db supi.KVStore, tx supi.Tx) (*supi.DeliverResult, error) {
	h.deliverCall++
	res := h.DeliverResult
	return &res, h.DeliverErr
}

func (h *Handler) CheckCallCount() int {
	return h.checkCall
}

func (h *Handler) DeliverCallCount() int {
	return h.deliverCall
}

func (h *Handler) CallCount() int {
	return h.checkCall + h.deliverCall
}
