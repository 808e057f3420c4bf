package app

import (
	"github.com/gogo/protobuf/proto"
	"github.com/supi-pay/supi"
	"github.com/supi-pay/supi/crypto"
	"github.com/supi-pay/supi/errors"
	"github.com/supi-pay/supi/x/cash"
	"github.com/supi-pay/supi/x/otpescrow"
	"github.com/supi-pay/supi/x/sigs"
)

// Tx is the transaction format of the application. Exactly one message field
// must be set.
type Tx struct {
	Signatures                   []*sigs.StdSignature              `protobuf:"bytes,1,rep,name=signatures,proto3" json:"signatures,omitempty"`
	SendMsg                      *cash.SendMsg                     `protobuf:"bytes,2,opt,name=send_msg,json=sendMsg,proto3" json:"send_msg,omitempty"`
	CreateEscrowMsg              *otpescrow.CreateMsg              `protobuf:"bytes,10,opt,name=create_escrow_msg,json=createEscrowMsg,proto3" json:"create_escrow_msg,omitempty"`
	ReleaseEscrowMsg             *otpescrow.ReleaseMsg             `protobuf:"bytes,11,opt,name=release_escrow_msg,json=releaseEscrowMsg,proto3" json:"release_escrow_msg,omitempty"`
	CancelEscrowMsg              *otpescrow.CancelMsg              `protobuf:"bytes,12,opt,name=cancel_escrow_msg,json=cancelEscrowMsg,proto3" json:"cancel_escrow_msg,omitempty"`
	UpdateEscrowConfigurationMsg *otpescrow.UpdateConfigurationMsg `protobuf:"bytes,13,opt,name=update_escrow_configuration_msg,json=updateEscrowConfigurationMsg,proto3" json:"update_escrow_configuration_msg,omitempty"`
}

func (m *Tx) Reset()         { *m = Tx{} }
func (m *Tx) String() string { return proto.CompactTextString(m) }
func (*Tx) ProtoMessage()    {}

var _ supi.Tx = (*Tx)(nil)
var _ sigs.SignedTx = (*Tx)(nil)

// NewTx wraps the message into a transaction.
func NewTx(msg supi.Msg) (*Tx, error) {
	var tx Tx
	switch m := msg.(type) {
	case *cash.SendMsg:
		tx.SendMsg = m
	case *otpescrow.CreateMsg:
		tx.CreateEscrowMsg = m
	case *otpescrow.ReleaseMsg:
		tx.ReleaseEscrowMsg = m
	case *otpescrow.CancelMsg:
		tx.CancelEscrowMsg = m
	case *otpescrow.UpdateConfigurationMsg:
		tx.UpdateEscrowConfigurationMsg = m
	default:
		return nil, errors.Wrapf(errors.ErrInvalidType, "unsupported message %T", msg)
	}
	return &tx, nil
}

// GetMsg returns the single message carried by the transaction.
func (tx *Tx) GetMsg() (supi.Msg, error) {
	var msgs []supi.Msg
	if tx.SendMsg != nil {
		msgs = append(msgs, tx.SendMsg)
	}
	if tx.CreateEscrowMsg != nil {
		msgs = append(msgs, tx.CreateEscrowMsg)
	}
	if tx.ReleaseEscrowMsg != nil {
		msgs = append(msgs, tx.ReleaseEscrowMsg)
	}
	if tx.CancelEscrowMsg != nil {
		msgs = append(msgs, tx.CancelEscrowMsg)
	}
	if tx.UpdateEscrowConfigurationMsg != nil {
		msgs = append(msgs, tx.UpdateEscrowConfigurationMsg)
	}
	switch len(msgs) {
	case 0:
		return nil, errors.Wrap(errors.ErrInvalidMsg, "transaction carries no message")
	case 1:
		return msgs[0], nil
	default:
		return nil, errors.Wrapf(errors.ErrInvalidMsg, "transaction carries %d messages", len(msgs))
	}
}

// GetSignatures returns the signatures on the transaction.
func (tx *Tx) GetSignatures() []*sigs.StdSignature {
	return tx.Signatures
}

// GetSignBytes returns the canonical bytes to sign over: the transaction
// without its signatures.
func (tx *Tx) GetSignBytes() ([]byte, error) {
	unsigned := *tx
	unsigned.Signatures = nil
	raw, err := proto.Marshal(&unsigned)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidMsg, "marshal: %s", err)
	}
	return raw, nil
}

// Sign appends a signature of the given key bound to the sequence.
func (tx *Tx) Sign(key *crypto.PrivateKey, chainID string, seq int64) error {
	sig, err := sigs.SignTx(key, tx, chainID, seq)
	if err != nil {
		return errors.Wrap(err, "sign")
	}
	tx.Signatures = append(tx.Signatures, sig)
	return nil
}

// TxDecoder loads a transaction from its binary form.
func TxDecoder(raw []byte) (supi.Tx, error) {
	var tx Tx
	if err := proto.Unmarshal(raw, &tx); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "decode transaction: %s", err)
	}
	return &tx, nil
}
