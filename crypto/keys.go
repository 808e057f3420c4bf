package crypto

import (
	"github.com/gogo/protobuf/proto"
	"github.com/supi-pay/supi"
)

// ExtensionName is used for the Conditions we get from signatures
const ExtensionName = "sigs"

// PublicKey is the public part of an ed25519 key pair.
type PublicKey struct {
	Ed25519 []byte `protobuf:"bytes,1,opt,name=ed25519,proto3" json:"ed25519"`
}

func (m *PublicKey) Reset()         { *m = PublicKey{} }
func (m *PublicKey) String() string { return proto.CompactTextString(m) }
func (*PublicKey) ProtoMessage()    {}

// PrivateKey holds an ed25519 private key. It must never be persisted by
// the service; it only exists for clients and tests.
type PrivateKey struct {
	Ed25519 []byte `protobuf:"bytes,1,opt,name=ed25519,proto3" json:"ed25519"`
}

func (m *PrivateKey) Reset()         { *m = PrivateKey{} }
func (m *PrivateKey) String() string { return proto.CompactTextString(m) }
func (*PrivateKey) ProtoMessage()    {}

// Signature is an ed25519 signature.
type Signature struct {
	Ed25519 []byte `protobuf:"bytes,1,opt,name=ed25519,proto3" json:"ed25519"`
}

func (m *Signature) Reset()         { *m = Signature{} }
func (m *Signature) String() string { return proto.CompactTextString(m) }
func (*Signature) ProtoMessage()    {}

// Address returns the address authorized by signatures of this key.
func (p *PublicKey) Address() supi.Address {
	return p.Condition().Address()
}
