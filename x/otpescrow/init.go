package otpescrow

import (
	"github.com/supi-pay/supi"
	"github.com/supi-pay/supi/errors"
	"github.com/supi-pay/supi/gconf"
)

// Initializer stores the extension configuration found in the genesis file
// under conf.otpescrow. Without it the defaults are used.
type Initializer struct{}

var _ supi.Initializer = Initializer{}

// FromGenesis will parse the configuration from genesis and save it to the
// database.
func (Initializer) FromGenesis(opts supi.Options, db supi.KVStore) error {
	var conf Configuration
	err := gconf.InitConfig(db, opts, confPkg, &conf)
	if errors.ErrNotFound.Is(err) {
		return nil
	}
	return err
}
