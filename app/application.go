package app

import (
	"context"
	"sync"
	"time"

	"github.com/supi-pay/supi"
	"github.com/supi-pay/supi/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// Application executes transactions against a store, one at a time. Each
// transaction is stamped with the time returned by the clock and the chain
// id of the store.
type Application struct {
	mu      sync.Mutex
	db      supi.CacheableKVStore
	handler supi.Handler
	now     func() time.Time
	logger  log.Logger
	chainID string
}

// NewApplication returns an application using the given store. The chain id
// is read from the store, use InitChain for a fresh store.
func NewApplication(db supi.CacheableKVStore, handler supi.Handler, now func() time.Time, logger log.Logger) (*Application, error) {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	chainID, err := loadChainID(db)
	if err != nil {
		return nil, errors.Wrap(err, "load chain id")
	}
	return &Application{
		db:      db,
		handler: handler,
		now:     now,
		logger:  logger,
		chainID: chainID,
	}, nil
}

// ChainID returns the chain id or an empty string when the store was not
// initialized yet.
func (a *Application) ChainID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.chainID
}

// InitChain loads the genesis into the store. Either the whole genesis is
// stored or nothing is.
func (a *Application) InitChain(gen *Genesis, init supi.Initializer) error {
	if err := gen.Validate(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.chainID != "" {
		return errors.Wrapf(errors.ErrDuplicate, "chain %q already initialized", a.chainID)
	}
	cache := a.db.CacheWrap()
	if err := saveChainID(cache, gen.ChainID); err != nil {
		cache.Discard()
		return err
	}
	if err := init.FromGenesis(gen.AppOptions, cache); err != nil {
		cache.Discard()
		return errors.Wrap(err, "genesis")
	}
	if err := cache.Write(); err != nil {
		return errors.Wrap(err, "write genesis")
	}
	a.chainID = gen.ChainID
	a.logger.Info("chain initialized", "chain_id", gen.ChainID)
	return nil
}

func (a *Application) context(ctx context.Context, call string, tx supi.Tx) (supi.Context, error) {
	if a.chainID == "" {
		return nil, errors.Wrap(errors.ErrInvalidState, "chain not initialized")
	}
	ctx = supi.WithBlockTime(ctx, a.now())
	ctx = supi.WithChainID(ctx, a.chainID)
	ctx = supi.WithLogger(ctx, a.logger)
	return supi.WithLogInfo(ctx, "call", call, "path", supi.GetPath(tx)), nil
}

// Deliver executes the transaction and commits its effects.
func (a *Application) Deliver(ctx context.Context, tx supi.Tx) (*supi.DeliverResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	ctx, err := a.context(ctx, "deliver", tx)
	if err != nil {
		return nil, err
	}
	return a.handler.Deliver(ctx, a.db, tx)
}

// Check runs the transaction without persisting anything.
func (a *Application) Check(ctx context.Context, tx supi.Tx) (*supi.CheckResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	ctx, err := a.context(ctx, "check", tx)
	if err != nil {
		return nil, err
	}
	cache := a.db.CacheWrap()
	defer cache.Discard()
	return a.handler.Check(ctx, cache, tx)
}

// DeliverRaw decodes and executes a transaction.
func (a *Application) DeliverRaw(ctx context.Context, raw []byte) (*supi.DeliverResult, error) {
	tx, err := TxDecoder(raw)
	if err != nil {
		return nil, err
	}
	return a.Deliver(ctx, tx)
}

// View gives read access to the committed state. No transaction is executed
// while fn runs.
func (a *Application) View(fn func(db supi.ReadOnlyKVStore) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return fn(a.db)
}
