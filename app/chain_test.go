package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/supi-pay/supi"
	"github.com/supi-pay/supi/errors"
	"github.com/supi-pay/supi/store"
	"github.com/supi-pay/supi/weavetest"
	"github.com/supi-pay/supi/x/utils"
)

func TestChain(t *testing.T) {
	c1 := &weavetest.Decorator{}
	c2 := &weavetest.Decorator{}
	c3 := &weavetest.Decorator{}
	var nilDecorator *weavetest.Decorator
	h := &weavetest.Handler{}

	stack := ChainDecorators(
		c1,
		utils.NewLogging(),
		utils.NewRecovery(),
		nilDecorator,
		c2,
		panicOnPath{path: "test/panic"},
		c3,
	).WithHandler(h)

	ctx := context.Background()
	db := store.MemStore()
	ok := &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "test/ok"}}

	_, err := stack.Check(ctx, db, ok)
	assert.NoError(t, err)
	_, err = stack.Deliver(ctx, db, ok)
	assert.NoError(t, err)

	assert.Equal(t, 2, c1.CallCount())
	assert.Equal(t, 2, c2.CallCount())
	assert.Equal(t, 2, c3.CallCount())
	assert.Equal(t, 2, h.CallCount())

	// now, let's trigger a panic
	boom := &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "test/panic"}}
	_, err = stack.Check(ctx, db, boom)
	assert.True(t, errors.ErrPanic.Is(err))
	_, err = stack.Deliver(ctx, db, boom)
	assert.True(t, errors.ErrPanic.Is(err))

	assert.Equal(t, 4, c1.CallCount())
	assert.Equal(t, 4, c2.CallCount())
	// the panic never reaches c3 nor the handler
	assert.Equal(t, 2, c3.CallCount())
	assert.Equal(t, 2, h.CallCount())
}

// panicOnPath panics for transactions with the given message path.
type panicOnPath struct {
	path string
}

func (p panicOnPath) Check(ctx supi.Context, db supi.KVStore, tx supi.Tx, next supi.Checker) (*supi.CheckResult, error) {
	if supi.GetPath(tx) == p.path {
		panic("too high")
	}
	return next.Check(ctx, db, tx)
}

func (p panicOnPath) Deliver(ctx supi.Context, db supi.KVStore, tx supi.Tx, next supi.Deliverer) (*supi.DeliverResult, error) {
	if supi.GetPath(tx) == p.path {
		panic("too high")
	}
	return next.Deliver(ctx, db, tx)
}
