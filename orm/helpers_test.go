package orm

import (
	"github.com/gogo/protobuf/proto"
	"github.com/supi-pay/supi/errors"
)

// Counter is a simple model used in tests.
type Counter struct {
	Count int64 `protobuf:"varint,1,opt,name=count,proto3" json:"count,omitempty"`
}

func (m *Counter) Reset()         { *m = Counter{} }
func (m *Counter) String() string { return proto.CompactTextString(m) }
func (*Counter) ProtoMessage()    {}

func (m *Counter) Validate() error {
	if m.Count < 0 {
		return errors.Wrap(errors.ErrInvalidModel, "negative count")
	}
	return nil
}

// Label is a second model type used to test type checks.
type Label struct {
	Text string `protobuf:"bytes,1,opt,name=text,proto3" json:"text,omitempty"`
}

func (m *Label) Reset()         { *m = Label{} }
func (m *Label) String() string { return proto.CompactTextString(m) }
func (*Label) ProtoMessage()    {}

func (m *Label) Validate() error { return nil }
