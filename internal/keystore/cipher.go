package keystore

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"fmt"
	"unicode/utf8"

	vaulterrors "github.com/spinvault/spinvault/pkg/errors"
)

// Cipher parameters, fixed by the persisted record format.
const (
	saltLen = 16
	ivLen   = aes.BlockSize
)

// encryptField encrypts plaintext under key with AES-256-CBC and PKCS#7
// padding, returning base64. The same (key, iv) pair is used for both secret
// fields of one record write and never again.
func encryptField(plaintext string, key, iv []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}
	if len(iv) != aes.BlockSize {
		return "", fmt.Errorf("iv must be %d bytes, got %d", aes.BlockSize, len(iv))
	}

	padded := padPKCS7([]byte(plaintext), aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// decryptField reverses encryptField. Decryption under a wrong key is a hard
// failure: bad padding, an empty result, or invalid UTF-8 all surface as an
// invalid-credential error rather than returning garbage the caller might
// treat as secret material.
func decryptField(encoded string, key, iv []byte) (string, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", vaulterrors.CorruptedStore("ciphertext is not valid base64")
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", vaulterrors.CorruptedStore("ciphertext length is not a multiple of the block size")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}
	if len(iv) != aes.BlockSize {
		return "", vaulterrors.CorruptedStore("iv has wrong length")
	}

	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)

	plaintext, err := unpadPKCS7(padded, aes.BlockSize)
	if err != nil {
		return "", vaulterrors.InvalidCredential("decryption produced invalid padding")
	}
	if len(plaintext) == 0 {
		return "", vaulterrors.InvalidCredential("decryption produced empty plaintext")
	}
	if !utf8.Valid(plaintext) {
		return "", vaulterrors.InvalidCredential("decryption produced invalid plaintext")
	}

	return string(plaintext), nil
}

func padPKCS7(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(padLen)}, padLen)...)
}

func unpadPKCS7(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("invalid padded length %d", len(data))
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize {
		return nil, fmt.Errorf("invalid padding byte %d", padLen)
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, fmt.Errorf("inconsistent padding")
		}
	}
	return data[:len(data)-padLen], nil
}
