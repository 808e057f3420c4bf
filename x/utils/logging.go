package utils

import (
	"time"

	"github.com/supi-pay/supi"
)

// Logging is a decorator to log messages as they pass through
type Logging struct{}

var _ supi.Decorator = Logging{}

// NewLogging creates a Logging decorator
func NewLogging() Logging {
	return Logging{}
}

// Check logs error -> info, success -> debug
func (r Logging) Check(ctx supi.Context, store supi.KVStore, tx supi.Tx, next supi.Checker) (*supi.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, store, tx)
	var resLog string
	if err == nil {
		resLog = res.Log
	}
	logDuration(ctx, tx, start, resLog, err, true)
	return res, err
}

// Deliver logs error -> error, success -> info
func (r Logging) Deliver(ctx supi.Context, store supi.KVStore, tx supi.Tx, next supi.Deliverer) (*supi.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, store, tx)
	var resLog string
	if err == nil {
		resLog = res.Log
	}
	logDuration(ctx, tx, start, resLog, err, false)
	return res, err
}

// logDuration writes information about the time and result to the logger
func logDuration(ctx supi.Context, tx supi.Tx, start time.Time, msg string, err error, lowPrio bool) {
	delta := time.Since(start)
	logger := supi.GetLogger(ctx).With(
		"path", supi.GetPath(tx),
		"duration", delta/time.Microsecond,
	)

	// Although message can be empty, we still want to emit a log entry
	// because it contains other relevant information beside the message.
	switch {
	case err != nil && lowPrio:
		logger.Info(msg, "err", err)
	case err != nil:
		logger.Error(msg, "err", err)
	case lowPrio:
		logger.Debug(msg)
	default:
		logger.Info(msg)
	}
}
