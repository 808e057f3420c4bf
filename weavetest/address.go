package weavetest

import (
	"crypto/rand"
	"testing"

	"github.com/supi-pay/supi"
)

// RandomAddr returns a valid random address generated on the fly.
func RandomAddr(t testing.TB) supi.Address {
	t.Helper()
	raw := make([]byte, supi.AddressLength)
	if _, err := rand.Read(raw); err != nil {
		t.Fatalf("cannot generate a random address: %s", err)
	}
	return supi.Address(raw)
}

// ParseAddress takes an address in a human readable format and returns its
// binary representation. Any format accepted by supi.ParseAddress is valid.
func ParseAddress(t testing.TB, encodedAddress string) supi.Address {
	t.Helper()

	addr, err := supi.ParseAddress(encodedAddress)
	if err != nil {
		t.Fatalf("cannot parse %q address: %s", encodedAddress, err)
	}
	return addr
}
