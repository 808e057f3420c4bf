package sigs

import (
	"github.com/gogo/protobuf/proto"
	"github.com/supi-pay/supi"
	"github.com/supi-pay/supi/crypto"
	"github.com/supi-pay/supi/errors"
	"github.com/supi-pay/supi/orm"
)

// BucketName is where we store the accounts
const BucketName = "sigs"

// UserData is the signer account state: the public key and the sequence that
// the next signature must carry.
type UserData struct {
	Pubkey   *crypto.PublicKey `protobuf:"bytes,1,opt,name=pubkey,proto3" json:"pubkey"`
	Sequence int64             `protobuf:"varint,2,opt,name=sequence,proto3" json:"sequence"`
}

func (m *UserData) Reset()         { *m = UserData{} }
func (m *UserData) String() string { return proto.CompactTextString(m) }
func (*UserData) ProtoMessage()    {}

var _ orm.Model = (*UserData)(nil)

// Validate returns an error if the account state is inconsistent.
func (u *UserData) Validate() error {
	if u.Pubkey == nil {
		return errors.Wrap(errors.ErrEmpty, "pubkey")
	}
	if err := u.Pubkey.Validate(); err != nil {
		return errors.Wrap(err, "pubkey")
	}
	if u.Sequence < 0 {
		return errors.Wrap(ErrInvalidSequence, "negative")
	}
	return nil
}

// CheckAndIncrementSequence implements check and increment operation.
// If current sequence value is the same as given expected value then it is
// incremented. Otherwise an error is returned.
// Before incrementing the sequence, this function is testing for a value
// overflow.
func (u *UserData) CheckAndIncrementSequence(expected int64) error {
	if u.Sequence != expected {
		return errors.Wrapf(ErrInvalidSequence, "mismatch expected %d, got %d", u.Sequence, expected)
	}

	next := u.Sequence + 1

	// The greatest nonce value a JavaScript client can represent is
	//   Number.MAX_SAFE_INTEGER = 9007199254740991 = 2^53 - 1
	const maxSequenceValue = (1 << 53) - 1
	if next <= 0 || next > maxSequenceValue {
		return errors.Wrap(errors.ErrOverflow, "sequence out of range")
	}
	u.Sequence = next
	return nil
}

// Bucket stores UserData under the signer address.
type Bucket struct {
	orm.ModelBucket
}

// NewBucket creates the proper bucket for this extension
func NewBucket() Bucket {
	return Bucket{
		ModelBucket: orm.NewModelBucket(BucketName, &UserData{}),
	}
}

// GetOrCreate loads the account of the given key or initializes a new one.
func (b Bucket) GetOrCreate(db supi.ReadOnlyKVStore, pubkey *crypto.PublicKey) (*UserData, error) {
	var user UserData
	switch err := b.One(db, pubkey.Address(), &user); {
	case err == nil:
		return &user, nil
	case errors.ErrNotFound.Is(err):
		return &UserData{Pubkey: pubkey}, nil
	default:
		return nil, err
	}
}

// Save stores the account under the address of its public key.
func (b Bucket) Save(db supi.KVStore, user *UserData) error {
	return b.Put(db, user.Pubkey.Address(), user)
}
