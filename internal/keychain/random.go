package keychain

import (
	"crypto/rand"
	"fmt"
	"io"
)

// CryptoRandom draws bytes from the operating system CSPRNG. It is the
// production randomness source for salts and initialization vectors.
type CryptoRandom struct{}

// NewCryptoRandom creates the production randomness source.
func NewCryptoRandom() *CryptoRandom {
	return &CryptoRandom{}
}

// Bytes returns n cryptographically secure random bytes.
func (r *CryptoRandom) Bytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return nil, fmt.Errorf("failed to read random bytes: %w", err)
	}
	return buf, nil
}
