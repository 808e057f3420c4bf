package weavetest

import (
	"github.com/supi-pay/supi"
	"github.com/supi-pay/supi/crypto"
)

// NewKey returns a new random private key.
func NewKey() *crypto.PrivateKey {
	return crypto.GenPrivKeyEd25519()
}

// NewCondition returns a condition of a random signature key.
func NewCondition() supi.Condition {
	return NewKey().PublicKey().Condition()
}
