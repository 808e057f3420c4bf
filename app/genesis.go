package app

import (
	"encoding/json"
	"os"

	"github.com/supi-pay/supi"
	"github.com/supi-pay/supi/errors"
)

// Genesis file format
type Genesis struct {
	ChainID    string       `json:"chain_id"`
	AppOptions supi.Options `json:"app_options"`
}

// Validate checks the chain id. Options are validated by the initializers.
func (g Genesis) Validate() error {
	if !supi.IsValidChainID(g.ChainID) {
		return errors.Wrapf(errors.ErrInvalidInput, "chain id %q", g.ChainID)
	}
	return nil
}

// LoadGenesis tries to load a given file into a Genesis struct
func LoadGenesis(filePath string) (*Genesis, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "loading genesis file: %s", err)
	}
	var gen Genesis
	if err := json.Unmarshal(raw, &gen); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "unmarshaling genesis file: %s", err)
	}
	if err := gen.Validate(); err != nil {
		return nil, err
	}
	return &gen, nil
}

// ChainInitializers lets you initialize many extensions with one function
func ChainInitializers(inits ...supi.Initializer) supi.Initializer {
	return chainInitializer{inits}
}

type chainInitializer struct {
	inits []supi.Initializer
}

// FromGenesis will pass opts to all Initializers in the list,
// aborting at the first error.
func (c chainInitializer) FromGenesis(opts supi.Options, kv supi.KVStore) error {
	for _, i := range c.inits {
		if err := i.FromGenesis(opts, kv); err != nil {
			return err
		}
	}
	return nil
}

//------- storing chainID ---------

const chainIDKey = "_i.chain_id"

// loadChainID returns the chain id stored if any
func loadChainID(kv supi.ReadOnlyKVStore) (string, error) {
	v, err := kv.Get([]byte(chainIDKey))
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// saveChainID stores a chain id in the kv store.
// Returns error if already set, or invalid name
func saveChainID(kv supi.KVStore, chainID string) error {
	if !supi.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInvalidInput, "chain id %q", chainID)
	}
	k := []byte(chainIDKey)
	switch has, err := kv.Has(k); {
	case err != nil:
		return err
	case has:
		return errors.Wrap(errors.ErrDuplicate, "chain id already set")
	}
	return kv.Set(k, []byte(chainID))
}
