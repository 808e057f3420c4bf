package weavetest

import (
	"github.com/gogo/protobuf/proto"
	"github.com/supi-pay/supi"
)

// Tx represents a transaction carrying a single message that is to be
// processed.
type Tx struct {
	// Msg is the message that is to be processed by this transaction.
	Msg supi.Msg
	// Err if set is returned by any method call.
	Err error
}

var _ supi.Tx = (*Tx)(nil)

func (tx *Tx) GetMsg() (supi.Msg, error) {
	return tx.Msg, tx.Err
}

func (tx *Tx) Reset()         { *tx = Tx{} }
func (tx *Tx) String() string { return "weavetest.Tx" }
func (*Tx) ProtoMessage()     {}

// Msg represents a message routed by its path.
type Msg struct {
	// RoutePath returned by the path method, consumed by the router.
	RoutePath string
	// Err if set is returned by the Validate method.
	Err error
}

var _ supi.Msg = (*Msg)(nil)

func (m *Msg) Path() string {
	return m.RoutePath
}

func (m *Msg) Validate() error {
	return m.Err
}

func (m *Msg) Reset()         { *m = Msg{} }
func (m *Msg) String() string { return m.RoutePath }
func (*Msg) ProtoMessage()    {}

var _ proto.Message = (*Msg)(nil)
