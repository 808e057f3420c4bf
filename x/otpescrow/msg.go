package otpescrow

import (
	"crypto/sha256"

	"github.com/gogo/protobuf/proto"
	"github.com/supi-pay/supi"
	"github.com/supi-pay/supi/errors"
)

const (
	pathCreateMsg              = "otpescrow/create"
	pathReleaseMsg             = "otpescrow/release"
	pathCancelMsg              = "otpescrow/cancel"
	pathUpdateConfigurationMsg = "otpescrow/update_configuration"
)

// CreateMsg locks the amount of token owned by the sender until released with
// the passcode hashed into OtpHash, or cancelled by the sender. When Sender is
// empty the main signer of the transaction is used.
type CreateMsg struct {
	PaymentID string       `protobuf:"bytes,1,opt,name=payment_id,json=paymentId,proto3" json:"payment_id"`
	Sender    supi.Address `protobuf:"bytes,2,opt,name=sender,proto3,casttype=github.com/supi-pay/supi.Address" json:"sender"`
	Receiver  supi.Address `protobuf:"bytes,3,opt,name=receiver,proto3,casttype=github.com/supi-pay/supi.Address" json:"receiver"`
	Amount    int64        `protobuf:"varint,4,opt,name=amount,proto3" json:"amount"`
	Token     string       `protobuf:"bytes,5,opt,name=token,proto3" json:"token"`
	OtpHash   []byte       `protobuf:"bytes,6,opt,name=otp_hash,json=otpHash,proto3" json:"otp_hash"`
}

func (m *CreateMsg) Reset()         { *m = CreateMsg{} }
func (m *CreateMsg) String() string { return proto.CompactTextString(m) }
func (*CreateMsg) ProtoMessage()    {}

var _ supi.Msg = (*CreateMsg)(nil)

// Path returns the routing path for this message.
func (CreateMsg) Path() string {
	return pathCreateMsg
}

// Validate makes sure that this is sensible.
func (m *CreateMsg) Validate() error {
	if err := ValidatePaymentID(m.PaymentID); err != nil {
		return err
	}
	if len(m.Sender) != 0 {
		if err := m.Sender.Validate(); err != nil {
			return errors.Wrap(err, "sender")
		}
	}
	if err := m.Receiver.Validate(); err != nil {
		return errors.Wrap(err, "receiver")
	}
	if err := validateAmount(m.Amount, m.Token); err != nil {
		return err
	}
	if len(m.OtpHash) != sha256.Size {
		return errors.Wrapf(errors.ErrInvalidInput, "otp hash must be %d bytes", sha256.Size)
	}
	return nil
}

// ReleaseMsg pays the escrow out to its receiver. Knowing the passcode is the
// only authorization required.
type ReleaseMsg struct {
	PaymentID string `protobuf:"bytes,1,opt,name=payment_id,json=paymentId,proto3" json:"payment_id"`
	Otp       string `protobuf:"bytes,2,opt,name=otp,proto3" json:"otp"`
}

func (m *ReleaseMsg) Reset()         { *m = ReleaseMsg{} }
func (m *ReleaseMsg) String() string { return "ReleaseMsg{" + m.PaymentID + "}" }
func (*ReleaseMsg) ProtoMessage()    {}

var _ supi.Msg = (*ReleaseMsg)(nil)

func (ReleaseMsg) Path() string {
	return pathReleaseMsg
}

// Validate accepts any payment id and passcode. Unknown ids fail the lookup
// and every passcode is checked against the commitment, including an empty
// one.
func (m *ReleaseMsg) Validate() error {
	return nil
}

// CancelMsg returns the escrowed funds to the sender.
type CancelMsg struct {
	PaymentID string `protobuf:"bytes,1,opt,name=payment_id,json=paymentId,proto3" json:"payment_id"`
}

func (m *CancelMsg) Reset()         { *m = CancelMsg{} }
func (m *CancelMsg) String() string { return proto.CompactTextString(m) }
func (*CancelMsg) ProtoMessage()    {}

var _ supi.Msg = (*CancelMsg)(nil)

func (CancelMsg) Path() string {
	return pathCancelMsg
}

// Validate accepts any payment id, unknown ids fail the lookup.
func (m *CancelMsg) Validate() error {
	return nil
}

// UpdateConfigurationMsg patches the extension configuration. Zero value
// fields of the patch are ignored.
type UpdateConfigurationMsg struct {
	Patch *Configuration `protobuf:"bytes,1,opt,name=patch,proto3" json:"patch"`
}

func (m *UpdateConfigurationMsg) Reset()         { *m = UpdateConfigurationMsg{} }
func (m *UpdateConfigurationMsg) String() string { return proto.CompactTextString(m) }
func (*UpdateConfigurationMsg) ProtoMessage()    {}

var _ supi.Msg = (*UpdateConfigurationMsg)(nil)

func (UpdateConfigurationMsg) Path() string {
	return pathUpdateConfigurationMsg
}

func (m *UpdateConfigurationMsg) Validate() error {
	if m.Patch == nil {
		return errors.Wrap(errors.ErrEmpty, "patch")
	}
	if len(m.Patch.Owner) != 0 {
		if err := m.Patch.Owner.Validate(); err != nil {
			return errors.Wrap(err, "owner")
		}
	}
	if m.Patch.RetentionPeriod < 0 {
		return errors.Wrap(errors.ErrInvalidInput, "negative retention period")
	}
	return nil
}
