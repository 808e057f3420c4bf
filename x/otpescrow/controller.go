package otpescrow

import (
	"crypto/subtle"

	"github.com/supi-pay/supi"
	"github.com/supi-pay/supi/errors"
	"github.com/supi-pay/supi/orm"
	"github.com/supi-pay/supi/x"
	"github.com/supi-pay/supi/x/cash"
)

// Controller implements the escrow state machine. Every operation reads at
// most one escrow, moves value at most once and writes the escrow at most
// once. Value is moved before the record is written, so a failed transfer
// never leaves a record behind. Callers must execute each operation on a
// store that is discarded when an error is returned (see utils.Savepoint).
type Controller struct {
	bucket    Bucket
	retention orm.Retention
	bank      cash.CoinMover
}

// NewController returns a controller moving funds with the given bank.
func NewController(bank cash.CoinMover) Controller {
	return Controller{
		bucket:    NewBucket(),
		retention: orm.NewRetention(BucketName),
		bank:      bank,
	}
}

// CheckCreate runs all guards of Create without changing the state. An empty
// sender is set to the main signer.
func (c Controller) CheckCreate(ctx supi.Context, db supi.ReadOnlyKVStore, auth x.Authenticator, msg *CreateMsg) error {
	if len(msg.Sender) == 0 {
		if signer := x.MainSigner(ctx, auth); signer != nil {
			msg.Sender = signer.Address()
		}
	}
	if err := msg.Validate(); err != nil {
		return errors.Wrap(err, "create")
	}
	if len(msg.Sender) == 0 {
		return errors.Wrap(errors.ErrUnauthorized, "no sender and no signer")
	}
	if !auth.HasAddress(ctx, msg.Sender) {
		return errors.Wrap(errors.ErrUnauthorized, "sender did not authorize the escrow")
	}
	switch err := c.bucket.Has(db, []byte(msg.PaymentID)); {
	case err == nil:
		return errors.Wrapf(ErrAlreadyExists, "payment %q", msg.PaymentID)
	case errors.ErrNotFound.Is(err):
		return nil
	default:
		return err
	}
}

// Create moves the funds from the sender to the holding address and stores
// a new active escrow.
func (c Controller) Create(ctx supi.Context, db supi.KVStore, auth x.Authenticator, msg *CreateMsg) (*Escrow, error) {
	if err := c.CheckCreate(ctx, db, auth, msg); err != nil {
		return nil, err
	}
	now, ok := supi.BlockTime(ctx)
	if !ok {
		return nil, errors.Wrap(errors.ErrHuman, "block time not present in context")
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}

	escrow := &Escrow{
		Sender:    msg.Sender,
		Receiver:  msg.Receiver,
		Amount:    msg.Amount,
		Token:     msg.Token,
		OtpHash:   msg.OtpHash,
		IsActive:  true,
		Timestamp: supi.AsUnixTime(now),
	}
	if err := c.transfer(db, msg.Sender, HoldingAddress(msg.PaymentID), escrow); err != nil {
		return nil, err
	}
	key := []byte(msg.PaymentID)
	if err := c.bucket.Put(db, key, escrow); err != nil {
		return nil, errors.Wrap(err, "cannot store escrow")
	}
	until := escrow.Timestamp.Add(conf.RetentionPeriod.Duration())
	if err := c.retention.Extend(db, key, until); err != nil {
		return nil, errors.Wrap(err, "cannot extend retention")
	}

	supi.GetLogger(ctx).Info("escrow created",
		"payment_id", msg.PaymentID,
		"sender", msg.Sender,
		"receiver", msg.Receiver,
		"amount", escrow.Amount,
		"token", escrow.Token)
	return escrow, nil
}

// CheckRelease runs all guards of Release without changing the state.
func (c Controller) CheckRelease(db supi.ReadOnlyKVStore, msg *ReleaseMsg) (*Escrow, error) {
	if err := msg.Validate(); err != nil {
		return nil, errors.Wrap(err, "release")
	}
	escrow, err := c.loadActive(db, msg.PaymentID)
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare(HashOTP(msg.Otp), escrow.OtpHash) != 1 {
		return nil, errors.Wrapf(ErrInvalidOTP, "payment %q", msg.PaymentID)
	}
	return escrow, nil
}

// Release pays the escrowed funds to the receiver if the passcode matches
// the commitment. A wrong passcode leaves the escrow active.
func (c Controller) Release(ctx supi.Context, db supi.KVStore, msg *ReleaseMsg) (*Escrow, error) {
	escrow, err := c.CheckRelease(db, msg)
	if err != nil {
		supi.GetLogger(ctx).Debug("escrow release rejected", "payment_id", msg.PaymentID, "err", err)
		return nil, err
	}
	if err := c.finalize(db, msg.PaymentID, escrow, escrow.Receiver); err != nil {
		return nil, err
	}
	supi.GetLogger(ctx).Info("escrow released", "payment_id", msg.PaymentID, "receiver", escrow.Receiver)
	return escrow, nil
}

// CheckCancel runs all guards of Cancel without changing the state.
func (c Controller) CheckCancel(ctx supi.Context, db supi.ReadOnlyKVStore, auth x.Authenticator, msg *CancelMsg) (*Escrow, error) {
	if err := msg.Validate(); err != nil {
		return nil, errors.Wrap(err, "cancel")
	}
	escrow, err := c.bucket.GetEscrow(db, msg.PaymentID)
	if err != nil {
		return nil, err
	}
	if !auth.HasAddress(ctx, escrow.Sender) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "only the sender can cancel")
	}
	if !escrow.IsActive {
		return nil, errors.Wrapf(ErrAlreadyFinalized, "payment %q", msg.PaymentID)
	}
	return escrow, nil
}

// Cancel refunds the escrowed funds to the sender.
func (c Controller) Cancel(ctx supi.Context, db supi.KVStore, auth x.Authenticator, msg *CancelMsg) (*Escrow, error) {
	escrow, err := c.CheckCancel(ctx, db, auth, msg)
	if err != nil {
		return nil, err
	}
	if err := c.finalize(db, msg.PaymentID, escrow, escrow.Sender); err != nil {
		return nil, err
	}
	supi.GetLogger(ctx).Info("escrow cancelled", "payment_id", msg.PaymentID, "sender", escrow.Sender)
	return escrow, nil
}

// Inspect returns the public view of an escrow.
func (c Controller) Inspect(db supi.ReadOnlyKVStore, paymentID string) (*Details, error) {
	escrow, err := c.bucket.GetEscrow(db, paymentID)
	if err != nil {
		return nil, err
	}
	return &Details{
		PaymentID: paymentID,
		Sender:    escrow.Sender,
		Receiver:  escrow.Receiver,
		Amount:    escrow.Amount,
		Token:     escrow.Token,
		IsActive:  escrow.IsActive,
		Timestamp: escrow.Timestamp,
	}, nil
}

// RetainedUntil returns the time until which the escrow record must be kept.
func (c Controller) RetainedUntil(db supi.ReadOnlyKVStore, paymentID string) (supi.UnixTime, error) {
	if _, err := c.bucket.GetEscrow(db, paymentID); err != nil {
		return 0, err
	}
	return c.retention.Until(db, []byte(paymentID))
}

func (c Controller) loadActive(db supi.ReadOnlyKVStore, paymentID string) (*Escrow, error) {
	escrow, err := c.bucket.GetEscrow(db, paymentID)
	if err != nil {
		return nil, err
	}
	if !escrow.IsActive {
		return nil, errors.Wrapf(ErrAlreadyFinalized, "payment %q", paymentID)
	}
	return escrow, nil
}

// finalize pays the held funds out to dest and marks the escrow inactive.
func (c Controller) finalize(db supi.KVStore, paymentID string, escrow *Escrow, dest supi.Address) error {
	if err := c.transfer(db, HoldingAddress(paymentID), dest, escrow); err != nil {
		return err
	}
	escrow.IsActive = false
	if err := c.bucket.Put(db, []byte(paymentID), escrow); err != nil {
		return errors.Wrap(err, "cannot store escrow")
	}
	return nil
}

func (c Controller) transfer(db supi.KVStore, src, dest supi.Address, escrow *Escrow) error {
	amount := escrow.Coin()
	if err := c.bank.MoveCoins(db, src, dest, amount); err != nil {
		return errors.Wrapf(ErrTransferFailed, "%s from %s to %s: %s", &amount, src, dest, err)
	}
	return nil
}
