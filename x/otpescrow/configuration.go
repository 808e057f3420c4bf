package otpescrow

import (
	"time"

	"github.com/gogo/protobuf/proto"
	"github.com/supi-pay/supi"
	"github.com/supi-pay/supi/errors"
	"github.com/supi-pay/supi/gconf"
)

const confPkg = "otpescrow"

// DefaultRetentionPeriod is used when the genesis does not configure the
// extension.
const DefaultRetentionPeriod = 30 * 24 * time.Hour

// Configuration of the otpescrow extension.
type Configuration struct {
	// Owner is allowed to update the configuration.
	Owner supi.Address `protobuf:"bytes,1,opt,name=owner,proto3,casttype=github.com/supi-pay/supi.Address" json:"owner,omitempty"`
	// RetentionPeriod is how long after creation an escrow record must be
	// kept by the store.
	RetentionPeriod supi.Duration `protobuf:"varint,2,opt,name=retention_period,json=retentionPeriod,proto3,casttype=github.com/supi-pay/supi.Duration" json:"retention_period"`
}

func (m *Configuration) Reset()         { *m = Configuration{} }
func (m *Configuration) String() string { return proto.CompactTextString(m) }
func (*Configuration) ProtoMessage()    {}

var _ gconf.OwnedConfig = (*Configuration)(nil)

func (c *Configuration) GetOwner() supi.Address {
	return c.Owner
}

func (c *Configuration) Validate() error {
	if len(c.Owner) != 0 {
		if err := c.Owner.Validate(); err != nil {
			return errors.Wrap(err, "owner")
		}
	}
	if c.RetentionPeriod <= 0 {
		return errors.Wrap(errors.ErrInvalidInput, "retention period must be positive")
	}
	return nil
}

// loadConf returns the stored configuration or the defaults when the
// extension was never configured.
func loadConf(db supi.ReadOnlyKVStore) (*Configuration, error) {
	var conf Configuration
	switch err := gconf.Load(db, confPkg, &conf); {
	case err == nil:
		return &conf, nil
	case errors.ErrNotFound.Is(err):
		return &Configuration{RetentionPeriod: supi.Duration(DefaultRetentionPeriod)}, nil
	default:
		return nil, errors.Wrap(err, "load configuration")
	}
}
