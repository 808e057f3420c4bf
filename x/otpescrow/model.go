package otpescrow

import (
	"crypto/sha256"
	"unicode/utf8"

	"github.com/gogo/protobuf/proto"
	"github.com/supi-pay/supi"
	"github.com/supi-pay/supi/coin"
	"github.com/supi-pay/supi/errors"
	"github.com/supi-pay/supi/orm"
)

const (
	// BucketName is where escrows are stored, keyed by payment id.
	BucketName = "otpesc"

	maxPaymentIDLength = 128
)

// Escrow is the record of a single payment. Only IsActive ever changes once
// it was created.
type Escrow struct {
	Sender   supi.Address `protobuf:"bytes,1,opt,name=sender,proto3,casttype=github.com/supi-pay/supi.Address" json:"sender"`
	Receiver supi.Address `protobuf:"bytes,2,opt,name=receiver,proto3,casttype=github.com/supi-pay/supi.Address" json:"receiver"`
	Amount   int64        `protobuf:"varint,3,opt,name=amount,proto3" json:"amount"`
	Token    string       `protobuf:"bytes,4,opt,name=token,proto3" json:"token"`
	// OtpHash is the SHA-256 digest of the passcode.
	OtpHash   []byte        `protobuf:"bytes,5,opt,name=otp_hash,json=otpHash,proto3" json:"-"`
	IsActive  bool          `protobuf:"varint,6,opt,name=is_active,json=isActive,proto3" json:"is_active"`
	Timestamp supi.UnixTime `protobuf:"varint,7,opt,name=timestamp,proto3,casttype=github.com/supi-pay/supi.UnixTime" json:"timestamp"`
}

func (m *Escrow) Reset()         { *m = Escrow{} }
func (m *Escrow) String() string { return proto.CompactTextString(m) }
func (*Escrow) ProtoMessage()    {}

var _ orm.Model = (*Escrow)(nil)

// Validate ensures the escrow is well formed.
func (e *Escrow) Validate() error {
	if err := e.Sender.Validate(); err != nil {
		return errors.Wrap(err, "sender")
	}
	if err := e.Receiver.Validate(); err != nil {
		return errors.Wrap(err, "receiver")
	}
	if err := validateAmount(e.Amount, e.Token); err != nil {
		return err
	}
	if len(e.OtpHash) != sha256.Size {
		return errors.Wrapf(errors.ErrInvalidInput, "otp hash must be %d bytes", sha256.Size)
	}
	if err := e.Timestamp.Validate(); err != nil {
		return errors.Wrap(err, "timestamp")
	}
	return nil
}

// Coin returns the escrowed value.
func (e *Escrow) Coin() coin.Coin {
	return coin.NewCoin(e.Amount, e.Token)
}

func validateAmount(amount int64, token string) error {
	if amount <= 0 {
		return errors.Wrapf(errors.ErrInvalidAmount, "amount must be positive, got %d", amount)
	}
	if !coin.IsCC(token) {
		return errors.Wrapf(errors.ErrCurrency, "invalid token %q", token)
	}
	return nil
}

// ValidatePaymentID requires a new payment id to be a non empty UTF-8 string
// of at most 128 bytes. The id is opaque otherwise.
func ValidatePaymentID(id string) error {
	if len(id) == 0 {
		return errors.Wrap(errors.ErrEmpty, "payment id")
	}
	if len(id) > maxPaymentIDLength {
		return errors.Wrapf(errors.ErrInvalidInput, "payment id longer than %d bytes", maxPaymentIDLength)
	}
	if !utf8.ValidString(id) {
		return errors.Wrap(errors.ErrInvalidInput, "payment id is not valid UTF-8")
	}
	return nil
}

// HoldingAddress returns the address that keeps the funds of the escrow with
// the given payment id. Nobody holds a key to it, only this extension moves
// funds from it.
func HoldingAddress(paymentID string) supi.Address {
	return supi.NewCondition(BucketName, "hold", []byte(paymentID)).Address()
}

// HashOTP returns the commitment stored for the given passcode.
func HashOTP(otp string) []byte {
	h := sha256.Sum256([]byte(otp))
	return h[:]
}

// Details is the public view of an escrow. It never carries the passcode
// hash.
type Details struct {
	PaymentID string        `json:"payment_id"`
	Sender    supi.Address  `json:"sender"`
	Receiver  supi.Address  `json:"receiver"`
	Amount    int64         `json:"amount"`
	Token     string        `json:"token"`
	IsActive  bool          `json:"is_active"`
	Timestamp supi.UnixTime `json:"timestamp"`
}

// Bucket is a type-safe wrapper around orm.ModelBucket
type Bucket struct {
	orm.ModelBucket
}

// NewBucket returns a bucket for managing escrows.
func NewBucket() Bucket {
	return Bucket{
		ModelBucket: orm.NewModelBucket(BucketName, &Escrow{}),
	}
}

// GetEscrow loads the escrow stored under the payment id.
func (b Bucket) GetEscrow(db supi.ReadOnlyKVStore, paymentID string) (*Escrow, error) {
	if len(paymentID) == 0 {
		return nil, errors.Wrap(errors.ErrNotFound, "escrow without payment id")
	}
	var e Escrow
	if err := b.One(db, []byte(paymentID), &e); err != nil {
		return nil, errors.Wrapf(err, "escrow %q", paymentID)
	}
	return &e, nil
}
