package gconf

import (
	"reflect"

	"github.com/supi-pay/supi"
	"github.com/supi-pay/supi/errors"
	"github.com/supi-pay/supi/x"
)

// OwnedConfig must have an Owner field. A configuration update message must be
// signed by an owner in order to be authorized to apply the change.
type OwnedConfig interface {
	Configuration
	GetOwner() supi.Address
}

// UpdateConfigurationHandler applies a configuration patch carried by a
// message with a "Patch" field of the configuration type.
type UpdateConfigurationHandler struct {
	pkg       string
	config    OwnedConfig
	auth      x.Authenticator
	initAdmin func(supi.ReadOnlyKVStore) (supi.Address, error)
}

var _ supi.Handler = UpdateConfigurationHandler{}

// NewUpdateConfigurationHandler returns a message handler that process
// configuration patch message.
//
// To pass authentication step, each message must be signed by the current
// configuration owner.
//
// When the configuration does not exist yet (it was not created via genesis)
// there is no owner that could authorize its creation. An optional
// initConfAdmin function can be given to provide a creation only admin
// address. It is used only when no configuration exist.
func NewUpdateConfigurationHandler(
	pkg string,
	config OwnedConfig,
	auth x.Authenticator,
	initConfAdmin func(supi.ReadOnlyKVStore) (supi.Address, error),
) UpdateConfigurationHandler {
	return UpdateConfigurationHandler{
		pkg:       pkg,
		config:    config,
		auth:      auth,
		initAdmin: initConfAdmin,
	}
}

func (h UpdateConfigurationHandler) Check(ctx supi.Context, store supi.KVStore, tx supi.Tx) (*supi.CheckResult, error) {
	if err := h.applyTx(ctx, store, tx); err != nil {
		return nil, err
	}
	return &supi.CheckResult{}, nil
}

func (h UpdateConfigurationHandler) Deliver(ctx supi.Context, store supi.KVStore, tx supi.Tx) (*supi.DeliverResult, error) {
	if err := h.applyTx(ctx, store, tx); err != nil {
		return nil, err
	}
	supi.GetLogger(ctx).Info("configuration updated", "package", h.pkg)
	return &supi.DeliverResult{}, nil
}

func (h UpdateConfigurationHandler) applyTx(ctx supi.Context, store supi.KVStore, tx supi.Tx) error {
	// The handler can be shared, so always work on a fresh instance.
	config := reflect.New(reflect.TypeOf(h.config).Elem()).Interface().(OwnedConfig)

	switch err := Load(store, h.pkg, config); {
	case err == nil:
		owner := config.GetOwner()
		if owner == nil {
			return errors.Wrap(errors.ErrUnauthorized, "owner signature required")
		}
		if !h.auth.HasAddress(ctx, owner) {
			return errors.Wrap(errors.ErrUnauthorized, "owner did not sign transaction")
		}
	case errors.ErrNotFound.Is(err):
		if h.initAdmin == nil {
			return errors.Wrap(errors.ErrUnauthorized, "configuration does not exist and cannot be initialized")
		}
		admin, err := h.initAdmin(store)
		if err != nil {
			return errors.Wrap(err, "get init admin")
		}
		if !h.auth.HasAddress(ctx, admin) {
			return errors.Wrap(errors.ErrUnauthorized, "initialization admin signature required")
		}
	default:
		return errors.Wrap(err, "load current configuration")
	}

	payload, err := patchPayload(tx)
	if err != nil {
		return errors.Wrap(err, "cannot get message payload")
	}
	if err := patch(config, payload); err != nil {
		return errors.Wrap(err, "cannot patch config with message payload")
	}
	if err := Save(store, h.pkg, config); err != nil {
		return errors.Wrap(err, "cannot save updated config")
	}
	return nil
}

func patch(config OwnedConfig, payload OwnedConfig) error {
	pType := reflect.TypeOf(payload)
	cType := reflect.TypeOf(config)
	if pType != cType {
		return errors.Wrapf(errors.ErrInvalidMsg, "patch of type %s cannot update %s", pType, cType)
	}

	cval := reflect.ValueOf(config).Elem()
	pval := reflect.ValueOf(payload).Elem()
	for i := 0; i < cval.NumField(); i++ {
		got := pval.Field(i)
		// Zero values do not update the original configuration.
		if isZero(got) {
			continue
		}
		cval.Field(i).Set(got)
	}
	return nil
}

// isZero returns true if given value represents a zero value of a given type.
func isZero(val reflect.Value) bool {
	zero := reflect.Zero(val.Type()).Interface()
	return reflect.DeepEqual(val.Interface(), zero)
}

// patchPayload expects the transaction to have a message with "Patch" field of
// the same type as the configuration. Content of this field is extracted and
// returned.
func patchPayload(tx supi.Tx) (OwnedConfig, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, errors.Wrap(errors.ErrInvalidMsg, "no message")
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	pval := reflect.ValueOf(msg)
	if pval.Kind() != reflect.Ptr || pval.Elem().Kind() != reflect.Struct {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "invalid message container value: %T", msg)
	}
	field := pval.Elem().FieldByName("Patch")
	if !field.IsValid() || field.Kind() != reflect.Ptr {
		return nil, errors.Wrap(errors.ErrInvalidInput, `"Patch" field is missing`)
	}
	if field.IsNil() {
		return nil, errors.Wrap(errors.ErrInvalidState, `"Patch" field is required`)
	}
	payload, ok := field.Interface().(OwnedConfig)
	if !ok {
		return nil, errors.Wrap(errors.ErrInvalidInput, `"Patch" field is of a wrong type`)
	}
	return payload, nil
}
