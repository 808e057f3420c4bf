package otpescrow

import (
	"github.com/supi-pay/supi/errors"
)

// x/otpescrow reserves 1010 ~ 1019.
var (
	ErrAlreadyExists    = errors.Register(1010, "escrow already exists")
	ErrAlreadyFinalized = errors.Register(1011, "escrow already finalized")
	ErrInvalidOTP       = errors.Register(1012, "invalid one-time passcode")
	ErrTransferFailed   = errors.Register(1013, "transfer failed")
)
