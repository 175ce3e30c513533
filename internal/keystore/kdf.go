package keystore

import (
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"
)

// Key derivation parameters. These are part of the persisted record format:
// changing any of them breaks decryption of existing wallets.
const (
	// derivedKeyLen is the AES-256 key size.
	derivedKeyLen = 32

	// passwordIterations is the PBKDF2 cost for user-password keys and for
	// legacy fingerprint keys.
	passwordIterations = 10000

	// passwordlessIterations is the PBKDF2 cost for passwordless wallets.
	// Deliberately low: the passphrase below is public, so the encryption is
	// obfuscation, not confidentiality, and extra iterations buy nothing.
	passwordlessIterations = 1000

	// passwordlessPassphrase is the fixed, publicly known passphrase used for
	// passwordless wallets.
	passwordlessPassphrase = "spinvault-frictionless-wallet-v2"
)

// deriveKey derives a 256-bit AES key from secret material and a salt using
// PBKDF2-SHA256. Deterministic: the same (secret, salt, iterations) always
// yields the same key. Derived keys are never persisted.
func deriveKey(secret, salt []byte, iterations int) []byte {
	return pbkdf2.Key(secret, salt, iterations, derivedKeyLen, sha256.New)
}

// derivePasswordKey derives the key for a user-password wallet.
func derivePasswordKey(password string, salt []byte) []byte {
	return deriveKey([]byte(password), salt, passwordIterations)
}

// derivePasswordlessKey derives the key for a passwordless wallet from the
// fixed passphrase.
func derivePasswordlessKey(salt []byte) []byte {
	return deriveKey([]byte(passwordlessPassphrase), salt, passwordlessIterations)
}

// deriveLegacyKey derives the key for a format-version-1 record from a host
// environment fingerprint. Decrypt-only: new records never use this.
func deriveLegacyKey(fingerprint, salt []byte) []byte {
	return deriveKey(fingerprint, salt, passwordIterations)
}

// deriveUnlockKey picks the derivation procedure for a format-version-2
// record from the supplied password: empty selects the passwordless
// passphrase, anything else is treated as a user password. A mismatch with
// how the record was actually encrypted simply derives the wrong key and
// fails decryption downstream.
func deriveUnlockKey(password string, salt []byte) []byte {
	if password == "" {
		return derivePasswordlessKey(salt)
	}
	return derivePasswordKey(password, salt)
}
