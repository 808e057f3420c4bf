package orm

import (
	"reflect"

	"github.com/gogo/protobuf/proto"
	"github.com/supi-pay/supi"
	"github.com/supi-pay/supi/errors"
)

// Model is impelemented by any entity that can be stored using ModelBucket.
type Model interface {
	proto.Message
	Validate() error
}

// ModelBucket is implemented by buckets that operates on Models.
type ModelBucket interface {
	// One query the database for a single model instance. Lookup is done
	// by the primary index key. Result is loaded into given destination
	// model.
	// This method returns ErrNotFound if the entity does not exist in the
	// database.
	// If given model type cannot be used to contain stored entity, ErrInvalidType
	// is returned.
	One(db supi.ReadOnlyKVStore, key []byte, dest Model) error

	// Has returns nil if an entity with given key exists and ErrNotFound
	// otherwise.
	Has(db supi.ReadOnlyKVStore, key []byte) error

	// Put saves given model in the database.
	Put(db supi.KVStore, key []byte, m Model) error

	// Delete removes an entity with given primary key from the database.
	// It returns ErrNotFound if an entity with given key does not exist.
	Delete(db supi.KVStore, key []byte) error
}

// NewModelBucket returns a ModelBucket instance that stores models of the
// same type as the given example under given bucket name.
func NewModelBucket(name string, example Model) ModelBucket {
	return &modelBucket{
		b:     NewBucket(name),
		model: reflect.TypeOf(example),
	}
}

type modelBucket struct {
	b     Bucket
	model reflect.Type
}

func (mb *modelBucket) One(db supi.ReadOnlyKVStore, key []byte, dest Model) error {
	if reflect.TypeOf(dest) != mb.model {
		return errors.Wrapf(errors.ErrInvalidType, "%T cannot be represented as %s", dest, mb.model)
	}
	raw, err := mb.b.Get(db, key)
	if err != nil {
		return err
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%T not in the store", dest)
	}
	if err := proto.Unmarshal(raw, dest); err != nil {
		return errors.Wrapf(errors.ErrInvalidModel, "cannot unmarshal %T: %s", dest, err)
	}
	return nil
}

func (mb *modelBucket) Has(db supi.ReadOnlyKVStore, key []byte) error {
	ok, err := mb.b.Has(db, key)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "%s not in the store", mb.model)
	}
	return nil
}

func (mb *modelBucket) Put(db supi.KVStore, key []byte, m Model) error {
	if reflect.TypeOf(m) != mb.model {
		return errors.Wrapf(errors.ErrInvalidType, "cannot store %T in %s bucket", m, mb.b.Name())
	}
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	raw, err := proto.Marshal(m)
	if err != nil {
		return errors.Wrapf(errors.ErrInvalidModel, "cannot marshal %T: %s", m, err)
	}
	if raw == nil {
		// Zero value models encode to nothing but must still exist.
		raw = []byte{}
	}
	if err := mb.b.Set(db, key, raw); err != nil {
		return errors.Wrap(err, "cannot store in the database")
	}
	return nil
}

func (mb *modelBucket) Delete(db supi.KVStore, key []byte) error {
	if err := mb.Has(db, key); err != nil {
		return err
	}
	return mb.b.Delete(db, key)
}

var _ ModelBucket = (*modelBucket)(nil)
