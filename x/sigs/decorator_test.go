package sigs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supi-pay/supi"
	"github.com/supi-pay/supi/crypto"
	"github.com/supi-pay/supi/store"
	"github.com/supi-pay/supi/weavetest"
)

func TestDecorator(t *testing.T) {
	kv := store.MemStore()
	checkKv := kv.CacheWrap()
	signers := new(SigCheckHandler)
	d := NewDecorator()
	chainID := "deco-rate"
	ctx := supi.WithChainID(context.Background(), chainID)

	priv := crypto.GenPrivKeyEd25519()
	perms := []supi.Condition{priv.PublicKey().Condition()}

	bz := []byte("art")
	tx := NewStdTx(bz)
	sig, err := SignTx(priv, tx, chainID, 0)
	require.NoError(t, err)
	sig1, err := SignTx(priv, tx, chainID, 1)
	require.NoError(t, err)

	deliver := func(dec supi.Decorator, my supi.Tx) error {
		_, err := dec.Deliver(ctx, kv, my, signers)
		return err
	}
	check := func(dec supi.Decorator, my supi.Tx) error {
		_, err := dec.Check(ctx, checkKv, my, signers)
		return err
	}

	for i, fn := range []func(supi.Decorator, supi.Tx) error{check, deliver} {
		// test with no sigs
		tx.Signatures = nil
		err := fn(d, tx)
		assert.Error(t, err, "%d", i)

		// test with one
		tx.Signatures = []*StdSignature{sig}
		err = fn(d, tx)
		assert.NoError(t, err, "%d", i)
		assert.Equal(t, perms, signers.Signers)

		// test with replay
		err = fn(d, tx)
		assert.Error(t, err, "%d", i)

		// test allowing none
		ad := d.AllowMissingSigs()
		tx.Signatures = nil
		err = fn(ad, tx)
		assert.NoError(t, err, "%d", i)
		assert.Equal(t, []supi.Condition{}, signers.Signers)

		// test allowing, with next sequence
		tx.Signatures = []*StdSignature{sig1}
		err = fn(ad, tx)
		assert.NoError(t, err, "%d", i)
		assert.Equal(t, perms, signers.Signers)
	}
}

func TestDecoratorUnsignedTx(t *testing.T) {
	kv := store.MemStore()
	ctx := supi.WithChainID(context.Background(), "unsigned-chain")
	tx := &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "test/unsigned"}}
	h := new(SigCheckHandler)

	_, err := NewDecorator().Deliver(ctx, kv, tx, h)
	assert.Error(t, err)

	_, err = NewDecorator().AllowMissingSigs().Deliver(ctx, kv, tx, h)
	assert.NoError(t, err)
	assert.Empty(t, h.Signers)
	assert.False(t, Authenticate{}.HasAddress(ctx, weavetest.NewCondition().Address()))
}

//---------------- helpers --------

// SigCheckHandler stores the seen signers on each call
type SigCheckHandler struct {
	Signers []supi.Condition
}

var _ supi.Handler = (*SigCheckHandler)(nil)

func (s *SigCheckHandler) Check(ctx supi.Context, store supi.KVStore, tx supi.Tx) (*supi.CheckResult, error) {
	s.Signers = Authenticate{}.GetConditions(ctx)
	return &supi.CheckResult{}, nil
}

func (s *SigCheckHandler) Deliver(ctx supi.Context, store supi.KVStore, tx supi.Tx) (*supi.DeliverResult, error) {
	s.Signers = Authenticate{}.GetConditions(ctx)
	return &supi.DeliverResult{}, nil
}
