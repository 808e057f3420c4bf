package otpescrow

import (
	"strings"
	"testing"

	"github.com/supi-pay/supi"
	"github.com/supi-pay/supi/errors"
	"github.com/supi-pay/supi/weavetest"
	"github.com/supi-pay/supi/weavetest/assert"
)

func TestValidatePaymentID(t *testing.T) {
	cases := map[string]struct {
		id      string
		wantErr *errors.Error
	}{
		"uuid":        {id: "3f1c2a9e-5c0b-4f6e-9a57-2b9d1c2e7f10"},
		"short":       {id: "p"},
		"longest":     {id: strings.Repeat("x", 128)},
		"slash":       {id: "shop/order/1"},
		"space":       {id: "order 1"},
		"non ascii":   {id: "pago-ñ"},
		"empty":       {id: "", wantErr: errors.ErrEmpty},
		"too long":    {id: strings.Repeat("x", 129), wantErr: errors.ErrInvalidInput},
		"invalid utf": {id: "a\xffb", wantErr: errors.ErrInvalidInput},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.IsErr(t, tc.wantErr, ValidatePaymentID(tc.id))
		})
	}
}

func TestHoldingAddress(t *testing.T) {
	a := HoldingAddress("p1")
	assert.Nil(t, a.Validate())
	assert.Equal(t, a, HoldingAddress("p1"))
	if a.Equals(HoldingAddress("p2")) {
		t.Fatal("holding addresses must differ between payments")
	}
}

func TestEscrowValidate(t *testing.T) {
	valid := func() *Escrow {
		return &Escrow{
			Sender:    weavetest.NewCondition().Address(),
			Receiver:  weavetest.NewCondition().Address(),
			Amount:    1,
			Token:     "USDC",
			OtpHash:   HashOTP("123456"),
			IsActive:  true,
			Timestamp: 1700000000,
		}
	}
	cases := map[string]struct {
		mutate  func(*Escrow)
		wantErr *errors.Error
	}{
		"valid":           {mutate: func(*Escrow) {}},
		"finalized":       {mutate: func(e *Escrow) { e.IsActive = false }},
		"missing sender":  {mutate: func(e *Escrow) { e.Sender = nil }, wantErr: errors.ErrInvalidInput},
		"bad receiver":    {mutate: func(e *Escrow) { e.Receiver = supi.Address("x") }, wantErr: errors.ErrInvalidInput},
		"negative amount": {mutate: func(e *Escrow) { e.Amount = -1 }, wantErr: errors.ErrInvalidAmount},
		"bad token":       {mutate: func(e *Escrow) { e.Token = "usdc" }, wantErr: errors.ErrCurrency},
		"short hash":      {mutate: func(e *Escrow) { e.OtpHash = e.OtpHash[:31] }, wantErr: errors.ErrInvalidInput},
		"negative time":   {mutate: func(e *Escrow) { e.Timestamp = -1 }, wantErr: errors.ErrInvalidState},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			e := valid()
			tc.mutate(e)
			assert.IsErr(t, tc.wantErr, e.Validate())
		})
	}
}

func TestReleaseMsgHidesPasscode(t *testing.T) {
	msg := &ReleaseMsg{PaymentID: "p1", Otp: "secret-code"}
	if strings.Contains(msg.String(), "secret-code") {
		t.Fatalf("passcode leaked: %s", msg)
	}
}
