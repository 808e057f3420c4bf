package cash

import (
	"encoding/json"
	"testing"

	"github.com/supi-pay/supi"
	"github.com/supi-pay/supi/errors"
	"github.com/supi-pay/supi/store"
	"github.com/supi-pay/supi/weavetest/assert"
)

func TestInitState(t *testing.T) {
	cases := map[string]struct {
		genesis string
		wantErr *errors.Error
		want    map[string]int64
	}{
		"no cash section": {
			genesis: `{}`,
		},
		"funded wallet": {
			genesis: `{"cash": [{"address": "E28AE9A6EB94FC88B73EB7CBD6B87BF93EB9BEF0", "coins": ["100 USDC", {"ticker": "XLM", "amount": 5}]}]}`,
			want:    map[string]int64{"USDC": 100, "XLM": 5},
		},
		"same ticker twice is summed": {
			genesis: `{"cash": [{"address": "E28AE9A6EB94FC88B73EB7CBD6B87BF93EB9BEF0", "coins": ["100 USDC", "1 USDC"]}]}`,
			want:    map[string]int64{"USDC": 101},
		},
		"invalid address": {
			genesis: `{"cash": [{"address": "E28AE9", "coins": ["100 USDC"]}]}`,
			wantErr: errors.ErrInvalidInput,
		},
		"negative coins": {
			genesis: `{"cash": [{"address": "E28AE9A6EB94FC88B73EB7CBD6B87BF93EB9BEF0", "coins": ["-1 USDC"]}]}`,
			wantErr: errors.ErrInvalidAmount,
		},
		"malformed": {
			genesis: `{"cash": {"address": 1}}`,
			wantErr: errors.ErrInvalidInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var opts supi.Options
			assert.Nil(t, json.Unmarshal([]byte(tc.genesis), &opts))

			db := store.MemStore()
			err := Initializer{}.FromGenesis(opts, db)
			assert.IsErr(t, tc.wantErr, err)
			if tc.want == nil {
				return
			}

			addr, err := supi.ParseAddress("E28AE9A6EB94FC88B73EB7CBD6B87BF93EB9BEF0")
			assert.Nil(t, err)
			balance, err := NewController(NewBucket()).Balance(db, addr)
			assert.Nil(t, err)
			for ticker, amount := range tc.want {
				assert.Equal(t, amount, balance.Amount(ticker))
			}
		})
	}
}
