package gconf

import (
	"context"
	"testing"

	"github.com/supi-pay/supi"
	"github.com/supi-pay/supi/coin"
	"github.com/supi-pay/supi/errors"
	"github.com/supi-pay/supi/store"
	"github.com/supi-pay/supi/weavetest"
	"github.com/supi-pay/supi/weavetest/assert"
)

func TestUpdateConfigurationHandler(t *testing.T) {
	cond := weavetest.NewCondition()
	admin := weavetest.NewCondition()

	cases := map[string]struct {
		// If Init is provided, initialize the database before running
		// handler code. Use nil to not provide initial state.
		Init           *myconfig
		InitAdmin      func(supi.ReadOnlyKVStore) (supi.Address, error)
		Msg            supi.Msg
		MsgConditions  []supi.Condition
		WantCheckErr   *errors.Error
		WantDeliverErr *errors.Error

		// When not nil database state will be tested to contain the
		// exact version of the configuration.
		WantConfig *myconfig
	}{
		"success": {
			Init: &myconfig{Owner: cond.Address(), Num: 5125, Str: "foobar", Cn: coin.NewCoinp(10, "XLM")},
			Msg: &myconfigMsg{
				Patch: &myconfig{Owner: cond.Address(), Num: 333, Str: "boing!", Cn: coin.NewCoinp(4, "XYZ")},
			},
			MsgConditions: []supi.Condition{cond},
			WantConfig:    &myconfig{Owner: cond.Address(), Num: 333, Str: "boing!", Cn: coin.NewCoinp(4, "XYZ")},
		},
		"message must be signed by the configuration owner": {
			Init: &myconfig{Owner: cond.Address(), Num: 5125},
			Msg: &myconfigMsg{
				Patch: &myconfig{Owner: cond.Address(), Num: 1},
			},
			MsgConditions:  []supi.Condition{weavetest.NewCondition()},
			WantCheckErr:   errors.ErrUnauthorized,
			WantDeliverErr: errors.ErrUnauthorized,
		},
		"zero values are not updating the configuration": {
			Init: &myconfig{Owner: cond.Address(), Num: 5125, Str: "foobar"},
			Msg: &myconfigMsg{
				Patch: &myconfig{Owner: cond.Address()},
			},
			MsgConditions: []supi.Condition{cond},
			WantConfig:    &myconfig{Owner: cond.Address(), Num: 5125, Str: "foobar"},
		},
		"invalid configuration is not accepted": {
			Init: &myconfig{Owner: cond.Address(), Num: 5125},
			Msg: &myconfigMsg{
				Patch: &myconfig{Owner: cond.Address(), Cn: &coin.Coin{Amount: 4}},
			},
			MsgConditions:  []supi.Condition{cond},
			WantCheckErr:   errors.ErrCurrency,
			WantDeliverErr: errors.ErrCurrency,
		},
		"missing configuration without an init admin": {
			Msg: &myconfigMsg{
				Patch: &myconfig{Owner: cond.Address(), Num: 1},
			},
			MsgConditions:  []supi.Condition{cond},
			WantCheckErr:   errors.ErrUnauthorized,
			WantDeliverErr: errors.ErrUnauthorized,
		},
		"missing configuration created by the init admin": {
			InitAdmin: func(supi.ReadOnlyKVStore) (supi.Address, error) { return admin.Address(), nil },
			Msg: &myconfigMsg{
				Patch: &myconfig{Owner: cond.Address(), Num: 1},
			},
			MsgConditions: []supi.Condition{admin},
			WantConfig:    &myconfig{Owner: cond.Address(), Num: 1},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()

			if tc.Init != nil {
				if err := Save(db, "mypkg", tc.Init); err != nil {
					t.Fatalf("cannot save initial configuration: %s", err)
				}
			}

			auth := &weavetest.CtxAuth{Key: "auth"}
			handler := NewUpdateConfigurationHandler("mypkg", &myconfig{}, auth, tc.InitAdmin)

			ctx := supi.WithChainID(context.Background(), "mychain-123")
			ctx = auth.SetConditions(ctx, tc.MsgConditions...)

			tx := &weavetest.Tx{Msg: tc.Msg}

			cache := db.CacheWrap()
			if _, err := handler.Check(ctx, cache, tx); !tc.WantCheckErr.Is(err) {
				t.Fatalf("unexpected check error: %v", err)
			}
			cache.Discard()

			if _, err := handler.Deliver(ctx, db, tx); !tc.WantDeliverErr.Is(err) {
				t.Fatalf("unexpected deliver error: %v", err)
			}

			if tc.WantConfig != nil {
				var got myconfig
				if err := Load(db, "mypkg", &got); err != nil {
					t.Fatalf("cannot load configuration from the database: %s", err)
				}
				assert.Equal(t, tc.WantConfig, &got)
			}
		})
	}
}
