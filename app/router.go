package app

import (
	"fmt"
	"regexp"

	"github.com/supi-pay/supi"
	"github.com/supi-pay/supi/errors"
)

// isPath is the RegExp to ensure the routes make sense
var isPath = regexp.MustCompile(`^[a-zA-Z0-9_/\-]+$`).MatchString

// Router allows us to register many handlers with different paths and then
// direct each message to the proper handler.
//
// Minimal interface modeled after net/http.ServeMux
type Router struct {
	routes map[string]supi.Handler
}

var _ supi.Registry = (*Router)(nil)
var _ supi.Handler = (*Router)(nil)

// NewRouter returns a new empty router instance.
func NewRouter() *Router {
	return &Router{
		routes: make(map[string]supi.Handler),
	}
}

// Handle adds a new Handler for the given message type. Registering a path
// twice or an invalid path is a programming error and panics.
func (r *Router) Handle(msg supi.Msg, h supi.Handler) {
	path := msg.Path()
	if !isPath(path) {
		panic(fmt.Sprintf("invalid path: %s", path))
	}
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("re-registering route: %s", path))
	}
	r.routes[path] = h
}

// handler returns the registered Handler for this path. If no path is found,
// returns a noSuchPath Handler. Always returns a non-nil Handler.
func (r *Router) handler(path string) supi.Handler {
	if h, ok := r.routes[path]; ok {
		return h
	}
	return noSuchPathHandler{path: path}
}

// Check dispatches to the proper handler based on path
func (r *Router) Check(ctx supi.Context, store supi.KVStore, tx supi.Tx) (*supi.CheckResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot load msg")
	}
	if msg == nil {
		return nil, errors.Wrap(errors.ErrInvalidMsg, "no message")
	}
	return r.handler(msg.Path()).Check(ctx, store, tx)
}

// Deliver dispatches to the proper handler based on path
func (r *Router) Deliver(ctx supi.Context, store supi.KVStore, tx supi.Tx) (*supi.DeliverResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot load msg")
	}
	if msg == nil {
		return nil, errors.Wrap(errors.ErrInvalidMsg, "no message")
	}
	return r.handler(msg.Path()).Deliver(ctx, store, tx)
}

type noSuchPathHandler struct {
	path string
}

var _ supi.Handler = noSuchPathHandler{}

func (h noSuchPathHandler) Check(supi.Context, supi.KVStore, supi.Tx) (*supi.CheckResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for message path %q", h.path)
}

func (h noSuchPathHandler) Deliver(supi.Context, supi.KVStore, supi.Tx) (*supi.DeliverResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for message path %q", h.path)
}
