// Package errors defines the error taxonomy for the spinvault secret store.
package errors

import (
	"errors"
	"fmt"
)

// VaultError represents an application-level error with a machine-readable kind
type VaultError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func (e *VaultError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Error kinds
const (
	KindValidation        = "validation"
	KindDuplicateWallet   = "duplicate_wallet"
	KindNotFound          = "not_found"
	KindCorruptedStore    = "corrupted_store"
	KindInvalidCredential = "invalid_credential"
)

// New creates a new VaultError
func New(kind, message string) *VaultError {
	return &VaultError{
		Kind:    kind,
		Message: message,
	}
}

// NewWithDetail creates a new VaultError with additional detail
func NewWithDetail(kind, message, detail string) *VaultError {
	return &VaultError{
		Kind:    kind,
		Message: message,
		Detail:  detail,
	}
}

// Validation creates a validation error
func Validation(detail string) *VaultError {
	return &VaultError{
		Kind:    KindValidation,
		Message: "Invalid input",
		Detail:  detail,
	}
}

// DuplicateWallet creates a duplicate wallet error
func DuplicateWallet(address string) *VaultError {
	return &VaultError{
		Kind:    KindDuplicateWallet,
		Message: "Wallet already exists",
		Detail:  fmt.Sprintf("address: %s", address),
	}
}

// WalletNotFound creates a wallet not found error
func WalletNotFound(address string) *VaultError {
	return &VaultError{
		Kind:    KindNotFound,
		Message: "Wallet not found",
		Detail:  fmt.Sprintf("address: %s", address),
	}
}

// CorruptedStore creates a corrupted store error
func CorruptedStore(detail string) *VaultError {
	return &VaultError{
		Kind:    KindCorruptedStore,
		Message: "Persisted wallet data is corrupted",
		Detail:  detail,
	}
}

// InvalidCredential creates an invalid credential error
func InvalidCredential(detail string) *VaultError {
	return &VaultError{
		Kind:    KindInvalidCredential,
		Message: "Password or passphrase does not decrypt to valid plaintext",
		Detail:  detail,
	}
}

// IsVaultError checks if an error is a VaultError
func IsVaultError(err error) (*VaultError, bool) {
	var vaultErr *VaultError
	if errors.As(err, &vaultErr) {
		return vaultErr, true
	}
	return nil, false
}

// IsKind reports whether err is a VaultError of the given kind
func IsKind(err error, kind string) bool {
	vaultErr, ok := IsVaultError(err)
	return ok && vaultErr.Kind == kind
}
