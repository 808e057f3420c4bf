package cash

import (
	"github.com/gogo/protobuf/proto"
	"github.com/supi-pay/supi"
	"github.com/supi-pay/supi/coin"
	"github.com/supi-pay/supi/errors"
)

const (
	pathSendMsg = "cash/send"

	maxMemoSize int = 128
	maxRefSize  int = 64
)

// SendMsg pays the amount from the source wallet to the destination without
// any condition. When Source is empty the main signer pays.
type SendMsg struct {
	Source      supi.Address `protobuf:"bytes,1,opt,name=source,proto3,casttype=github.com/supi-pay/supi.Address" json:"source"`
	Destination supi.Address `protobuf:"bytes,2,opt,name=destination,proto3,casttype=github.com/supi-pay/supi.Address" json:"destination"`
	Amount      *coin.Coin   `protobuf:"bytes,3,opt,name=amount,proto3" json:"amount"`
	Memo        string       `protobuf:"bytes,4,opt,name=memo,proto3" json:"memo,omitempty"`
	// Ref is an optional binary reference, for example an invoice id.
	Ref []byte `protobuf:"bytes,5,opt,name=ref,proto3" json:"ref,omitempty"`
}

func (m *SendMsg) Reset()         { *m = SendMsg{} }
func (m *SendMsg) String() string { return proto.CompactTextString(m) }
func (*SendMsg) ProtoMessage()    {}

// Ensure we implement the Msg interface
var _ supi.Msg = (*SendMsg)(nil)

// Path returns the routing path for this message
func (SendMsg) Path() string {
	return pathSendMsg
}

// Validate makes sure that this is sensible
func (m *SendMsg) Validate() error {
	if coin.IsEmpty(m.Amount) || !m.Amount.IsPositive() {
		return errors.Wrapf(errors.ErrInvalidAmount, "non-positive payment: %v", m.Amount)
	}
	if err := m.Amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}
	if len(m.Source) != 0 {
		if err := m.Source.Validate(); err != nil {
			return errors.Wrap(err, "source")
		}
	}
	if err := m.Destination.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	if len(m.Memo) > maxMemoSize {
		return errors.Wrap(errors.ErrInvalidInput, "memo too long")
	}
	if len(m.Ref) > maxRefSize {
		return errors.Wrap(errors.ErrInvalidInput, "ref too long")
	}
	return nil
}
