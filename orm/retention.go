package orm

import (
	"encoding/binary"

	"github.com/supi-pay/supi"
	"github.com/supi-pay/supi/errors"
)

// Retention keeps, for every record of a bucket, the time until which the
// record must be kept by the persistence layer. Deadlines are only ever moved
// forward.
//
// Deadlines are stored under
//    _ttl.<bucket>:<key>
type Retention struct {
	b Bucket
}

// NewRetention returns the retention index for the named bucket.
func NewRetention(bucket string) Retention {
	return Retention{
		b: Bucket{
			name:   bucket,
			prefix: []byte("_ttl." + bucket + ":"),
		},
	}
}

// Until returns the retention deadline of a record. Zero means no deadline was
// ever recorded.
func (r Retention) Until(db supi.ReadOnlyKVStore, key []byte) (supi.UnixTime, error) {
	raw, err := r.b.Get(db, key)
	if err != nil {
		return 0, err
	}
	if raw == nil {
		return 0, nil
	}
	if len(raw) != 8 {
		return 0, errors.Wrapf(errors.ErrInvalidState, "malformed retention of %d bytes", len(raw))
	}
	return supi.UnixTime(binary.BigEndian.Uint64(raw)), nil
}

// Extend ensures the record is kept at least until the given time. An earlier
// deadline than the one already stored is ignored.
func (r Retention) Extend(db supi.KVStore, key []byte, until supi.UnixTime) error {
	if until <= 0 {
		return errors.Wrap(errors.ErrInvalidInput, "retention must be in the future")
	}
	current, err := r.Until(db, key)
	if err != nil {
		return err
	}
	if current >= until {
		return nil
	}
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, uint64(until))
	return r.b.Set(db, key, raw)
}
