package cash

import (
	"github.com/supi-pay/supi"
	"github.com/supi-pay/supi/coin"
	"github.com/supi-pay/supi/errors"
)

// CoinMover is an interface for moving coins between accounts.
type CoinMover interface {
	// MoveCoins removes funds from the source account and adds them to the
	// destination account. This operation is atomic.
	MoveCoins(db supi.KVStore, src, dest supi.Address, amount coin.Coin) error
}

// Balancer is an interface to query the amount of coins.
type Balancer interface {
	// Balance returns the amount of funds stored under given account
	// address. If the account is not known ErrNotFound is returned.
	Balance(db supi.ReadOnlyKVStore, addr supi.Address) (coin.Coins, error)
}

// Controller is the functionality needed by cash.Handler and
// cash.Initializer. Extensions that need value transfers use CoinMover.
type Controller interface {
	CoinMover
	Balancer
	IssueCoins(db supi.KVStore, dest supi.Address, amount coin.Coin) error
}

// BaseController is a simple implementation of Controller.
type BaseController struct {
	bucket Bucket
}

var _ Controller = BaseController{}

// NewController returns base controller implementation.
func NewController(bucket Bucket) BaseController {
	return BaseController{bucket: bucket}
}

// Balance returns the wallet content of the given address.
func (c BaseController) Balance(db supi.ReadOnlyKVStore, addr supi.Address) (coin.Coins, error) {
	var s Set
	if err := c.bucket.One(db, addr, &s); err != nil {
		return nil, errors.Wrap(err, "wallet")
	}
	return s.Balance(), nil
}

// MoveCoins moves the given amount from src to dest.
// If src doesn't exist, or doesn't have sufficient
// coins, it fails.
func (c BaseController) MoveCoins(db supi.KVStore, src, dest supi.Address, amount coin.Coin) error {
	if err := amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}
	if !amount.IsPositive() {
		return errors.Wrapf(errors.ErrInvalidAmount, "non-positive transfer %s", &amount)
	}
	if err := src.Validate(); err != nil {
		return errors.Wrap(err, "source")
	}
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}

	var sender Set
	if err := c.bucket.One(db, src, &sender); err != nil {
		if errors.ErrNotFound.Is(err) {
			return errors.Wrapf(errors.ErrEmpty, "empty account %s", src)
		}
		return err
	}
	if !sender.Balance().Contains(amount) {
		return errors.Wrapf(errors.ErrInsufficientAmount, "%s holds less than %s", src, &amount)
	}

	left, err := sender.Balance().Subtract(amount)
	if err != nil {
		return err
	}
	if err := c.save(db, src, left); err != nil {
		return err
	}

	// Load the recipient after the sender was saved so that a transfer to
	// self is a no-op.
	recipient, err := c.bucket.GetOrEmpty(db, dest)
	if err != nil {
		return err
	}
	total, err := recipient.Balance().Add(amount)
	if err != nil {
		return err
	}
	return c.save(db, dest, total)
}

// IssueCoins attempts to add the given amount of coins to
// the destination address. Fails if it overflows the wallet.
//
// Note the amount may also be negative:
// "the lord giveth and the lord taketh away"
func (c BaseController) IssueCoins(db supi.KVStore, dest supi.Address, amount coin.Coin) error {
	if err := amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	w, err := c.bucket.GetOrEmpty(db, dest)
	if err != nil {
		return err
	}
	total, err := w.Balance().Add(amount)
	if err != nil {
		return err
	}
	return c.save(db, dest, total)
}

func (c BaseController) save(db supi.KVStore, addr supi.Address, coins coin.Coins) error {
	s := &Set{Coins: coins}
	if err := c.bucket.Put(db, addr, s); err != nil {
		return errors.Wrap(err, "cannot save wallet")
	}
	return nil
}
