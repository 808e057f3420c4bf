package store

import "github.com/supi-pay/supi"

// Move references for all storage types into this package
// for shorter names everywhere

type ReadOnlyKVStore = supi.ReadOnlyKVStore
type SetDeleter = supi.SetDeleter
type KVStore = supi.KVStore
type Batch = supi.Batch
type Batcher = supi.Batcher
type CacheableKVStore = supi.CacheableKVStore
type KVCacheWrap = supi.KVCacheWrap

// Model groups together key and value to return
type Model struct {
	Key   []byte
	Value []byte
}

// Pair constructs a model from a key-value pair
func Pair(key, value []byte) Model {
	return Model{
		Key:   key,
		Value: value,
	}
}
