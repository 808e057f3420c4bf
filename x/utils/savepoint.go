package utils

import (
	"github.com/supi-pay/supi"
	"github.com/supi-pay/supi/errors"
)

// Savepoint will isolate all data inside of the call,
// and commit/rollback to savepoint based on if error
type Savepoint struct {
	onCheck   bool
	onDeliver bool
}

var _ supi.Decorator = Savepoint{}

// NewSavepoint creates a Savepoint decorator,
// but you must call OnCheck/OnDeliver so it will be triggered
func NewSavepoint() Savepoint {
	return Savepoint{}
}

// OnCheck returns a savepoint that will trigger on Check
func (s Savepoint) OnCheck() Savepoint {
	s.onCheck = true
	return s
}

// OnDeliver returns a savepoint that will trigger on Deliver
func (s Savepoint) OnDeliver() Savepoint {
	s.onDeliver = true
	return s
}

// Check will optionally set a checkpoint
func (s Savepoint) Check(ctx supi.Context, store supi.KVStore, tx supi.Tx, next supi.Checker) (*supi.CheckResult, error) {
	if !s.onCheck {
		return next.Check(ctx, store, tx)
	}
	var res *supi.CheckResult
	err := inSavepoint(store, func(db supi.KVStore) error {
		var err error
		res, err = next.Check(ctx, db, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Deliver will optionally set a checkpoint
func (s Savepoint) Deliver(ctx supi.Context, store supi.KVStore, tx supi.Tx, next supi.Deliverer) (*supi.DeliverResult, error) {
	if !s.onDeliver {
		return next.Deliver(ctx, store, tx)
	}
	var res *supi.DeliverResult
	err := inSavepoint(store, func(db supi.KVStore) error {
		var err error
		res, err = next.Deliver(ctx, db, tx)
		return err
	})
	if err != nil {
		supi.GetLogger(ctx).Debug("savepoint rolled back", "path", supi.GetPath(tx))
		return nil, err
	}
	return res, nil
}

// inSavepoint runs fn on a cache wrap of the store. All writes are flushed
// only if fn succeeds. A store that cannot be cache wrapped is used directly.
func inSavepoint(store supi.KVStore, fn func(supi.KVStore) error) error {
	cstore, ok := store.(supi.CacheableKVStore)
	if !ok {
		return fn(store)
	}
	cache := cstore.CacheWrap()
	if err := fn(cache); err != nil {
		cache.Discard()
		return err
	}
	if err := cache.Write(); err != nil {
		return errors.Wrap(err, "writing savepoint")
	}
	return nil
}
