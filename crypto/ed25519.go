package crypto

import (
	"github.com/stellar/go/strkey"
	"github.com/supi-pay/supi"
	"github.com/supi-pay/supi/errors"
	"golang.org/x/crypto/ed25519"
)

// Verify verifies the signature was created with this message and public key
func (p *PublicKey) Verify(message []byte, sig *Signature) bool {
	if sig == nil || len(sig.Ed25519) != ed25519.SignatureSize {
		return false
	}
	if len(p.Ed25519) != ed25519.PublicKeySize {
		return false
	}
	publicKey := ed25519.PublicKey(p.Ed25519)
	return ed25519.Verify(publicKey, message, sig.Ed25519)
}

// Condition encodes the public key into a permission
func (p *PublicKey) Condition() supi.Condition {
	if p == nil || len(p.Ed25519) == 0 {
		return nil
	}
	return supi.Ed25519Condition(p.Ed25519)
}

// Validate returns an error if this is not a well formed ed25519 key.
func (p *PublicKey) Validate() error {
	if p == nil {
		return errors.Wrap(errors.ErrEmpty, "public key")
	}
	if len(p.Ed25519) != ed25519.PublicKeySize {
		return errors.Wrapf(errors.ErrInvalidInput, "public key must be %d bytes", ed25519.PublicKeySize)
	}
	return nil
}

// StellarAddress returns the Stellar account id (G...) of this key.
func (p *PublicKey) StellarAddress() (string, error) {
	s, err := strkey.Encode(strkey.VersionByteAccountID, p.Ed25519)
	if err != nil {
		return "", errors.Wrapf(errors.ErrInvalidInput, "stellar encode: %s", err)
	}
	return s, nil
}

// PublicKeyFromStellar decodes a Stellar account id into its public key.
func PublicKeyFromStellar(accountID string) (*PublicKey, error) {
	raw, err := strkey.Decode(strkey.VersionByteAccountID, accountID)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "stellar account id: %s", err)
	}
	return &PublicKey{Ed25519: raw}, nil
}

// Sign returns a matching signature for this private key
func (p *PrivateKey) Sign(message []byte) (*Signature, error) {
	if len(p.Ed25519) != ed25519.PrivateKeySize {
		return nil, errors.Wrap(errors.ErrInvalidInput, "malformed private key")
	}
	privateKey := ed25519.PrivateKey(p.Ed25519)
	return &Signature{Ed25519: ed25519.Sign(privateKey, message)}, nil
}

// PublicKey returns the corresponding PublicKey
func (p *PrivateKey) PublicKey() *PublicKey {
	privateKey := ed25519.PrivateKey(p.Ed25519)
	pub := privateKey.Public().(ed25519.PublicKey)
	return &PublicKey{Ed25519: pub}
}

// GenPrivKeyEd25519 returns a random new private key
func GenPrivKeyEd25519() *PrivateKey {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		panic(err)
	}
	return &PrivateKey{Ed25519: priv}
}

// PrivKeyEd25519FromSeed will deterministically generate a private key from
// a given seed. Use if you have a strong source of external randomness,
// or for deterministic keys in test cases.
func PrivKeyEd25519FromSeed(seed []byte) *PrivateKey {
	return &PrivateKey{Ed25519: ed25519.NewKeyFromSeed(seed)}
}
