package cash

import (
	"github.com/gogo/protobuf/proto"
	"github.com/supi-pay/supi"
	"github.com/supi-pay/supi/coin"
	"github.com/supi-pay/supi/errors"
	"github.com/supi-pay/supi/orm"
)

// BucketName is where we store the balances
const BucketName = "cash"

// Set is the content of a wallet: a normalized set of coins.
type Set struct {
	Coins []*coin.Coin `protobuf:"bytes,1,rep,name=coins,proto3" json:"coins"`
}

func (m *Set) Reset()         { *m = Set{} }
func (m *Set) String() string { return proto.CompactTextString(m) }
func (*Set) ProtoMessage()    {}

var _ orm.Model = (*Set)(nil)

// Validate requires that all coins are in alphabetical order, non zero and
// non negative.
func (s *Set) Validate() error {
	cs := coin.Coins(s.Coins)
	if err := cs.Validate(); err != nil {
		return err
	}
	if !cs.IsNonNegative() {
		return errors.Wrap(errors.ErrInsufficientAmount, "negative balance")
	}
	return nil
}

// Balance returns the wallet content as coins.
func (s *Set) Balance() coin.Coins {
	return coin.Coins(s.Coins)
}

// Bucket is a type-safe wrapper around orm.ModelBucket
type Bucket struct {
	orm.ModelBucket
}

// NewBucket initializes a cash.Bucket with default name
func NewBucket() Bucket {
	return Bucket{
		ModelBucket: orm.NewModelBucket(BucketName, &Set{}),
	}
}

// GetOrEmpty returns the wallet stored under the address or an empty one.
func (b Bucket) GetOrEmpty(db supi.ReadOnlyKVStore, addr supi.Address) (*Set, error) {
	var s Set
	switch err := b.One(db, addr, &s); {
	case err == nil:
		return &s, nil
	case errors.ErrNotFound.Is(err):
		return &Set{}, nil
	default:
		return nil, err
	}
}
