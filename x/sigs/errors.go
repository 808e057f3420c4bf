package sigs

import (
	"github.com/supi-pay/supi/errors"
)

// x/sigs reserves 120 ~ 129.
var (
	// ErrInvalidSequence is returned when a signature sequence does not
	// match the signer account state.
	ErrInvalidSequence = errors.Register(120, "invalid sequence number")
)
