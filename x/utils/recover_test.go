package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/supi-pay/supi"
	"github.com/supi-pay/supi/errors"
	"github.com/supi-pay/supi/store"
	"github.com/supi-pay/supi/weavetest"
)

func TestRecovery(t *testing.T) {
	var h panicHandler
	r := NewRecovery()
	ctx := context.Background()
	db := store.MemStore()
	tx := &weavetest.Tx{}

	assert.Panics(t, func() { _, _ = h.Check(ctx, db, tx) })

	_, err := r.Check(ctx, db, tx, h)
	assert.True(t, errors.ErrPanic.Is(err), "want panic error, got %v", err)
	assert.Contains(t, err.Error(), "boom")

	_, err = r.Deliver(ctx, db, tx, h)
	assert.True(t, errors.ErrPanic.Is(err), "want panic error, got %v", err)

	// Without a panic the result is passed through.
	ok := &weavetest.Handler{DeliverResult: supi.DeliverResult{Log: "fine"}}
	res, err := r.Deliver(ctx, db, tx, ok)
	assert.NoError(t, err)
	assert.Equal(t, "fine", res.Log)
}

type panicHandler struct{}

var _ supi.Handler = panicHandler{}

func (panicHandler) Check(supi.Context, supi.KVStore, supi.Tx) (*supi.CheckResult, error) {
	panic("boom")
}

func (panicHandler) Deliver(supi.Context, supi.KVStore, supi.Tx) (*supi.DeliverResult, error) {
	panic("boom")
}
