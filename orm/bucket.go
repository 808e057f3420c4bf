/*
Package orm provides an easy to use db wrapper

Break state space into prefixed sections called Buckets.
* Each bucket contains only one type of model.
* Models are serialized with protobuf.
* Records may carry a retention deadline that tells the external store how
long they must be kept.
*/
package orm

import (
	"fmt"
	"regexp"

	"github.com/supi-pay/supi"
	"github.com/supi-pay/supi/errors"
)

var (
	isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString
)

// Bucket is a prefixed subspace of the DB.
type Bucket struct {
	name   string
	prefix []byte
}

// NewBucket creates a bucket to store data
func NewBucket(name string) Bucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("Illegal bucket: %s", name))
	}
	return Bucket{
		name:   name,
		prefix: append([]byte(name), ':'),
	}
}

// Name returns the name of this bucket.
func (b Bucket) Name() string {
	return b.name
}

// DBKey is the full key we store in the db, including prefix
// We copy into a new array rather than use append, as we don't
// want consequetive calls to overwrite the same byte array.
func (b Bucket) DBKey(key []byte) []byte {
	l := len(b.prefix)
	out := make([]byte, l+len(key))
	copy(out, b.prefix)
	copy(out[l:], key)
	return out
}

// Has returns true if a value is stored under the key.
func (b Bucket) Has(db supi.ReadOnlyKVStore, key []byte) (bool, error) {
	if len(key) == 0 {
		return false, errors.Wrap(errors.ErrEmpty, "key")
	}
	ok, err := db.Has(b.DBKey(key))
	if err != nil {
		return false, errors.Wrap(err, b.name)
	}
	return ok, nil
}

// Get returns the raw value stored under the key or nil.
func (b Bucket) Get(db supi.ReadOnlyKVStore, key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, errors.Wrap(errors.ErrEmpty, "key")
	}
	raw, err := db.Get(b.DBKey(key))
	if err != nil {
		return nil, errors.Wrap(err, b.name)
	}
	return raw, nil
}

// Set writes the raw value under the key.
func (b Bucket) Set(db supi.KVStore, key, value []byte) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrEmpty, "key")
	}
	return db.Set(b.DBKey(key), value)
}

// Delete removes the value stored under the key.
func (b Bucket) Delete(db supi.KVStore, key []byte) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrEmpty, "key")
	}
	return db.Delete(b.DBKey(key))
}
