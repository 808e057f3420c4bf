package otpescrow

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/supi-pay/supi"
	"github.com/supi-pay/supi/coin"
	"github.com/supi-pay/supi/errors"
	"github.com/supi-pay/supi/gconf"
	"github.com/supi-pay/supi/store"
	"github.com/supi-pay/supi/weavetest"
	"github.com/supi-pay/supi/weavetest/assert"
	"github.com/supi-pay/supi/x/cash"
)

var now = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	db     supi.CacheableKVStore
	ctx    supi.Context
	bank   cash.BaseController
	ctrl   Controller
	sender supi.Condition
	recv   supi.Condition
}

func newFixture(t testing.TB) *fixture {
	t.Helper()
	f := &fixture{
		db:     store.MemStore(),
		ctx:    supi.WithBlockTime(context.Background(), now),
		bank:   cash.NewController(cash.NewBucket()),
		sender: weavetest.NewCondition(),
		recv:   weavetest.NewCondition(),
	}
	f.ctrl = NewController(f.bank)
	assert.Nil(t, f.bank.IssueCoins(f.db, f.sender.Address(), coin.NewCoin(1000, "XLM")))
	return f
}

func (f *fixture) createMsg(id string, otp string) *CreateMsg {
	return &CreateMsg{
		PaymentID: id,
		Sender:    f.sender.Address(),
		Receiver:  f.recv.Address(),
		Amount:    100,
		Token:     "XLM",
		OtpHash:   HashOTP(otp),
	}
}

func (f *fixture) balance(t testing.TB, addr supi.Address) int64 {
	t.Helper()
	b, err := f.bank.Balance(f.db, addr)
	if errors.ErrNotFound.Is(err) {
		return 0
	}
	assert.Nil(t, err)
	return b.Amount("XLM")
}

func TestEscrowScenario(t *testing.T) {
	f := newFixture(t)
	senderAuth := &weavetest.Auth{Signer: f.sender}

	_, err := f.ctrl.Create(f.ctx, f.db, senderAuth, f.createMsg("p1", "correct"))
	assert.Nil(t, err)

	want := &Details{
		PaymentID: "p1",
		Sender:    f.sender.Address(),
		Receiver:  f.recv.Address(),
		Amount:    100,
		Token:     "XLM",
		IsActive:  true,
		Timestamp: supi.AsUnixTime(now),
	}
	got, err := f.ctrl.Inspect(f.db, "p1")
	assert.Nil(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, int64(900), f.balance(t, f.sender.Address()))
	assert.Equal(t, int64(100), f.balance(t, HoldingAddress("p1")))

	_, err = f.ctrl.Release(f.ctx, f.db, &ReleaseMsg{PaymentID: "p1", Otp: "wrong"})
	assert.IsErr(t, ErrInvalidOTP, err)
	got, err = f.ctrl.Inspect(f.db, "p1")
	assert.Nil(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, int64(0), f.balance(t, f.recv.Address()))

	_, err = f.ctrl.Release(f.ctx, f.db, &ReleaseMsg{PaymentID: "p1", Otp: "correct"})
	assert.Nil(t, err)
	assert.Equal(t, int64(100), f.balance(t, f.recv.Address()))
	assert.Equal(t, int64(0), f.balance(t, HoldingAddress("p1")))

	got, err = f.ctrl.Inspect(f.db, "p1")
	assert.Nil(t, err)
	want.IsActive = false
	assert.Equal(t, want, got)

	_, err = f.ctrl.Cancel(f.ctx, f.db, senderAuth, &CancelMsg{PaymentID: "p1"})
	assert.IsErr(t, ErrAlreadyFinalized, err)
	_, err = f.ctrl.Release(f.ctx, f.db, &ReleaseMsg{PaymentID: "p1", Otp: "correct"})
	assert.IsErr(t, ErrAlreadyFinalized, err)

	// No double payout.
	assert.Equal(t, int64(100), f.balance(t, f.recv.Address()))
	assert.Equal(t, int64(900), f.balance(t, f.sender.Address()))
}

func TestCreateEscrow(t *testing.T) {
	cases := map[string]struct {
		msg     func(f *fixture) *CreateMsg
		signer  func(f *fixture) supi.Condition
		before  func(t testing.TB, f *fixture)
		wantErr *errors.Error
	}{
		"success": {
			msg:    func(f *fixture) *CreateMsg { return f.createMsg("pay-1", "1234") },
			signer: func(f *fixture) supi.Condition { return f.sender },
		},
		"sender must authorize": {
			msg:     func(f *fixture) *CreateMsg { return f.createMsg("pay-1", "1234") },
			signer:  func(f *fixture) supi.Condition { return f.recv },
			wantErr: errors.ErrUnauthorized,
		},
		"payment id can be used once": {
			msg:    func(f *fixture) *CreateMsg { return f.createMsg("pay-1", "1234") },
			signer: func(f *fixture) supi.Condition { return f.sender },
			before: func(t testing.TB, f *fixture) {
				msg := f.createMsg("pay-1", "other")
				msg.Amount = 5
				_, err := f.ctrl.Create(f.ctx, f.db, &weavetest.Auth{Signer: f.sender}, msg)
				assert.Nil(t, err)
			},
			wantErr: ErrAlreadyExists,
		},
		"payment id cannot be reused after finalization": {
			msg:    func(f *fixture) *CreateMsg { return f.createMsg("pay-1", "1234") },
			signer: func(f *fixture) supi.Condition { return f.sender },
			before: func(t testing.TB, f *fixture) {
				auth := &weavetest.Auth{Signer: f.sender}
				_, err := f.ctrl.Create(f.ctx, f.db, auth, f.createMsg("pay-1", "1234"))
				assert.Nil(t, err)
				_, err = f.ctrl.Cancel(f.ctx, f.db, auth, &CancelMsg{PaymentID: "pay-1"})
				assert.Nil(t, err)
			},
			wantErr: ErrAlreadyExists,
		},
		"insufficient funds": {
			msg: func(f *fixture) *CreateMsg {
				msg := f.createMsg("pay-1", "1234")
				msg.Amount = 1001
				return msg
			},
			signer:  func(f *fixture) supi.Condition { return f.sender },
			wantErr: ErrTransferFailed,
		},
		"unknown token": {
			msg: func(f *fixture) *CreateMsg {
				msg := f.createMsg("pay-1", "1234")
				msg.Token = "BTC"
				return msg
			},
			signer:  func(f *fixture) supi.Condition { return f.sender },
			wantErr: ErrTransferFailed,
		},
		"zero amount": {
			msg: func(f *fixture) *CreateMsg {
				msg := f.createMsg("pay-1", "1234")
				msg.Amount = 0
				return msg
			},
			signer:  func(f *fixture) supi.Condition { return f.sender },
			wantErr: errors.ErrInvalidAmount,
		},
		"missing otp hash": {
			msg: func(f *fixture) *CreateMsg {
				msg := f.createMsg("pay-1", "1234")
				msg.OtpHash = nil
				return msg
			},
			signer:  func(f *fixture) supi.Condition { return f.sender },
			wantErr: errors.ErrInvalidInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t)
			if tc.before != nil {
				tc.before(t, f)
			}
			msg := tc.msg(f)
			auth := &weavetest.Auth{Signer: tc.signer(f)}

			cache := f.db.CacheWrap()
			err := f.ctrl.CheckCreate(f.ctx, cache, auth, msg)
			cache.Discard()
			// Transfer failures are only detected when the value is moved.
			if tc.wantErr != ErrTransferFailed {
				assert.IsErr(t, tc.wantErr, err)
			}

			escrow, err := f.ctrl.Create(f.ctx, f.db, auth, msg)
			assert.IsErr(t, tc.wantErr, err)
			if tc.wantErr != nil {
				return
			}
			assert.Equal(t, true, escrow.IsActive)
			assert.Equal(t, supi.AsUnixTime(now), escrow.Timestamp)

			until, err := f.ctrl.RetainedUntil(f.db, msg.PaymentID)
			assert.Nil(t, err)
			assert.Equal(t, supi.AsUnixTime(now.Add(DefaultRetentionPeriod)), until)
		})
	}
}

func TestFailedTransferWritesNothing(t *testing.T) {
	f := newFixture(t)
	msg := f.createMsg("p1", "correct")
	msg.Amount = 5000

	_, err := f.ctrl.Create(f.ctx, f.db, &weavetest.Auth{Signer: f.sender}, msg)
	assert.IsErr(t, ErrTransferFailed, err)

	_, err = f.ctrl.Inspect(f.db, "p1")
	assert.IsErr(t, errors.ErrNotFound, err)
	assert.Equal(t, int64(1000), f.balance(t, f.sender.Address()))
}

func TestReleaseFailedTransferKeepsEscrowActive(t *testing.T) {
	f := newFixture(t)
	_, err := f.ctrl.Create(f.ctx, f.db, &weavetest.Auth{Signer: f.sender}, f.createMsg("p1", "correct"))
	assert.Nil(t, err)

	broken := NewController(failingBank{})
	_, err = broken.Release(f.ctx, f.db, &ReleaseMsg{PaymentID: "p1", Otp: "correct"})
	assert.IsErr(t, ErrTransferFailed, err)

	got, err := f.ctrl.Inspect(f.db, "p1")
	assert.Nil(t, err)
	assert.Equal(t, true, got.IsActive)

	// Retry succeeds once the ledger works again.
	_, err = f.ctrl.Release(f.ctx, f.db, &ReleaseMsg{PaymentID: "p1", Otp: "correct"})
	assert.Nil(t, err)
}

type failingBank struct{}

func (failingBank) MoveCoins(supi.KVStore, supi.Address, supi.Address, coin.Coin) error {
	return errors.Wrap(errors.ErrDatabase, "ledger unavailable")
}

func TestCancelEscrow(t *testing.T) {
	cases := map[string]struct {
		signer     func(f *fixture) supi.Condition
		paymentID  string
		finalize   bool
		wantErr    *errors.Error
		wantSender int64
	}{
		"sender cancels": {
			signer:     func(f *fixture) supi.Condition { return f.sender },
			paymentID:  "p1",
			wantSender: 1000,
		},
		"receiver cannot cancel": {
			signer:     func(f *fixture) supi.Condition { return f.recv },
			paymentID:  "p1",
			wantErr:    errors.ErrUnauthorized,
			wantSender: 900,
		},
		"third party cannot cancel": {
			signer:     func(*fixture) supi.Condition { return weavetest.NewCondition() },
			paymentID:  "p1",
			wantErr:    errors.ErrUnauthorized,
			wantSender: 900,
		},
		"unknown payment": {
			signer:     func(f *fixture) supi.Condition { return f.sender },
			paymentID:  "p2",
			wantErr:    errors.ErrNotFound,
			wantSender: 900,
		},
		"already cancelled": {
			signer:     func(f *fixture) supi.Condition { return f.sender },
			paymentID:  "p1",
			finalize:   true,
			wantErr:    ErrAlreadyFinalized,
			wantSender: 1000,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t)
			senderAuth := &weavetest.Auth{Signer: f.sender}
			_, err := f.ctrl.Create(f.ctx, f.db, senderAuth, f.createMsg("p1", "correct"))
			assert.Nil(t, err)
			if tc.finalize {
				_, err := f.ctrl.Cancel(f.ctx, f.db, senderAuth, &CancelMsg{PaymentID: "p1"})
				assert.Nil(t, err)
			}

			auth := &weavetest.Auth{Signer: tc.signer(f)}
			_, err = f.ctrl.Cancel(f.ctx, f.db, auth, &CancelMsg{PaymentID: tc.paymentID})
			assert.IsErr(t, tc.wantErr, err)
			assert.Equal(t, tc.wantSender, f.balance(t, f.sender.Address()))
			assert.Equal(t, int64(0), f.balance(t, f.recv.Address()))
		})
	}
}

func TestUnknownPaymentID(t *testing.T) {
	ids := []string{"nope", "order 1", "pago-ñ", "a/b", "", strings.Repeat("x", 300)}
	for _, id := range ids {
		t.Run(id, func(t *testing.T) {
			f := newFixture(t)
			auth := &weavetest.Auth{Signer: f.sender}

			_, err := f.ctrl.Inspect(f.db, id)
			assert.IsErr(t, errors.ErrNotFound, err)
			_, err = f.ctrl.Release(f.ctx, f.db, &ReleaseMsg{PaymentID: id, Otp: "x"})
			assert.IsErr(t, errors.ErrNotFound, err)
			_, err = f.ctrl.Cancel(f.ctx, f.db, auth, &CancelMsg{PaymentID: id})
			assert.IsErr(t, errors.ErrNotFound, err)
		})
	}
}

func TestOpaquePaymentID(t *testing.T) {
	for _, id := range []string{"order 1", "pago-ñ", "shop/order/7"} {
		t.Run(id, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.ctrl.Create(f.ctx, f.db, &weavetest.Auth{Signer: f.sender}, f.createMsg(id, "1234"))
			assert.Nil(t, err)

			got, err := f.ctrl.Inspect(f.db, id)
			assert.Nil(t, err)
			assert.Equal(t, id, got.PaymentID)

			_, err = f.ctrl.Release(f.ctx, f.db, &ReleaseMsg{PaymentID: id, Otp: "1234"})
			assert.Nil(t, err)
			assert.Equal(t, int64(100), f.balance(t, f.recv.Address()))
		})
	}
}

func TestReleasePasscodes(t *testing.T) {
	long := strings.Repeat("9", 300)

	cases := map[string]struct {
		committed string
		otp       string
		finalize  bool
		wantErr   *errors.Error
	}{
		"long passcode": {
			committed: long,
			otp:       long,
		},
		"long passcode with one character missing": {
			committed: long,
			otp:       long[1:],
			wantErr:   ErrInvalidOTP,
		},
		"empty passcode": {
			committed: "1234",
			otp:       "",
			wantErr:   ErrInvalidOTP,
		},
		"empty passcode on finalized escrow": {
			committed: "1234",
			otp:       "",
			finalize:  true,
			wantErr:   ErrAlreadyFinalized,
		},
		"empty committed passcode": {
			committed: "",
			otp:       "",
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t)
			auth := &weavetest.Auth{Signer: f.sender}
			_, err := f.ctrl.Create(f.ctx, f.db, auth, f.createMsg("p1", tc.committed))
			assert.Nil(t, err)
			if tc.finalize {
				_, err := f.ctrl.Cancel(f.ctx, f.db, auth, &CancelMsg{PaymentID: "p1"})
				assert.Nil(t, err)
			}

			_, err = f.ctrl.Release(f.ctx, f.db, &ReleaseMsg{PaymentID: "p1", Otp: tc.otp})
			assert.IsErr(t, tc.wantErr, err)

			got, err := f.ctrl.Inspect(f.db, "p1")
			assert.Nil(t, err)
			assert.Equal(t, tc.wantErr == ErrInvalidOTP, got.IsActive)
			if tc.wantErr == ErrInvalidOTP {
				// A failed attempt does not prevent the correct passcode.
				_, err = f.ctrl.Release(f.ctx, f.db, &ReleaseMsg{PaymentID: "p1", Otp: tc.committed})
				assert.Nil(t, err)
			}
		})
	}
}

func TestCreateDefaultsSenderToMainSigner(t *testing.T) {
	f := newFixture(t)
	msg := f.createMsg("p1", "1234")
	msg.Sender = nil

	escrow, err := f.ctrl.Create(f.ctx, f.db, &weavetest.Auth{Signer: f.sender}, msg)
	assert.Nil(t, err)
	assert.Equal(t, f.sender.Address(), escrow.Sender)
	assert.Equal(t, int64(900), f.balance(t, f.sender.Address()))

	msg = f.createMsg("p2", "1234")
	msg.Sender = nil
	_, err = f.ctrl.Create(f.ctx, f.db, &weavetest.Auth{}, msg)
	assert.IsErr(t, errors.ErrUnauthorized, err)
}

func TestCreateRequiresBlockTime(t *testing.T) {
	f := newFixture(t)
	_, err := f.ctrl.Create(context.Background(), f.db, &weavetest.Auth{Signer: f.sender}, f.createMsg("p1", "x"))
	assert.IsErr(t, errors.ErrHuman, err)
}

func TestRetentionFromConfiguration(t *testing.T) {
	f := newFixture(t)
	conf := &Configuration{RetentionPeriod: supi.Duration(48 * time.Hour)}
	assert.Nil(t, gconf.Save(f.db, confPkg, conf))

	_, err := f.ctrl.Create(f.ctx, f.db, &weavetest.Auth{Signer: f.sender}, f.createMsg("p1", "x"))
	assert.Nil(t, err)
	until, err := f.ctrl.RetainedUntil(f.db, "p1")
	assert.Nil(t, err)
	assert.Equal(t, supi.AsUnixTime(now.Add(48*time.Hour)), until)
}
