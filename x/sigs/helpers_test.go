package sigs

import (
	"github.com/gogo/protobuf/proto"
	"github.com/supi-pay/supi"
	"github.com/supi-pay/supi/weavetest"
)

//----- mock objects for testing...

// StdTx is a signed transaction carrying an opaque payload.
type StdTx struct {
	Payload    []byte          `protobuf:"bytes,1,opt,name=payload,proto3" json:"payload"`
	Signatures []*StdSignature `protobuf:"bytes,2,rep,name=signatures,proto3" json:"signatures"`
}

func (m *StdTx) Reset()         { *m = StdTx{} }
func (m *StdTx) String() string { return proto.CompactTextString(m) }
func (*StdTx) ProtoMessage()    {}

var _ SignedTx = (*StdTx)(nil)
var _ supi.Tx = (*StdTx)(nil)

func NewStdTx(payload []byte) *StdTx {
	return &StdTx{Payload: payload}
}

func (tx *StdTx) GetMsg() (supi.Msg, error) {
	return &weavetest.Msg{RoutePath: "test/payload"}, nil
}

func (tx *StdTx) GetSignatures() []*StdSignature {
	return tx.Signatures
}

func (tx *StdTx) GetSignBytes() ([]byte, error) {
	return tx.Payload, nil
}
