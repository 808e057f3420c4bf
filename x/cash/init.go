package cash

import (
	"github.com/supi-pay/supi"
	"github.com/supi-pay/supi/coin"
	"github.com/supi-pay/supi/errors"
)

const optKey = "cash"

// GenesisAccount is used to parse the json from genesis file
// use supi.Address, so address in hex, not base64
type GenesisAccount struct {
	Address supi.Address `json:"address"`
	Coins   []*coin.Coin `json:"coins"`
}

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ supi.Initializer = Initializer{}

// FromGenesis will parse initial account info from genesis
// and save it to the database
func (Initializer) FromGenesis(opts supi.Options, kv supi.KVStore) error {
	accts := []GenesisAccount{}
	if err := opts.ReadOptions(optKey, &accts); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	ctrl := NewController(NewBucket())
	for i, acct := range accts {
		if err := acct.Address.Validate(); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
		for _, c := range acct.Coins {
			if c == nil || !c.IsPositive() {
				return errors.Wrapf(errors.ErrInvalidAmount, "account %d: genesis coins must be positive", i)
			}
			if err := ctrl.IssueCoins(kv, acct.Address, *c); err != nil {
				return errors.Wrapf(err, "account %d", i)
			}
		}
	}
	return nil
}
