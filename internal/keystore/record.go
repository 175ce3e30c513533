// Package keystore implements the client-local wallet secret store: password
// based key derivation, symmetric encryption of wallet material, the
// persisted record formats, legacy migration, and collection management.
package keystore

import (
	"encoding/hex"
	"encoding/json"

	vaulterrors "github.com/spinvault/spinvault/pkg/errors"
)

// Wallet origins.
const (
	OriginGenerated = "generated"
	OriginImported  = "imported"
	OriginLegacy    = "legacy"
	OriginExternal  = "external"
)

// Record format versions. The version pins the key-derivation procedure that
// decrypts the record; the mapping is fixed and never reinterpreted.
const (
	// FormatLegacyFingerprint marks records encrypted under a key derived
	// from a host environment fingerprint. Decrypt/migrate only.
	FormatLegacyFingerprint = 1

	// FormatPassword marks records encrypted under a key derived from a user
	// password, or from the fixed passphrase for passwordless wallets.
	FormatPassword = 2
)

// WalletSecrets is the ephemeral plaintext form of one wallet. It exists only
// for the duration of an add/unlock call, is never persisted, and must not be
// retained by callers beyond that scope.
type WalletSecrets struct {
	Address       string
	PrivateKeyHex string
	Mnemonic      string
	CreatedAt     int64 // epoch millis
	Origin        string
	Nickname      string
}

// PublicData is the plaintext metadata of a stored wallet, readable without a
// password.
type PublicData struct {
	Address   string `json:"address"`
	CreatedAt int64  `json:"createdAt"`
	LastUsed  int64  `json:"lastUsed"`
	Origin    string `json:"origin"`
	Nickname  string `json:"nickname,omitempty"`
}

// WalletRecord is the persisted representation of one wallet: two ciphertext
// blobs plus the parameters needed to re-derive their key.
type WalletRecord struct {
	EncryptedPrivateKey string     `json:"encryptedPrivateKey"`
	EncryptedMnemonic   string     `json:"encryptedMnemonic"`
	PublicData          PublicData `json:"publicData"`
	Salt                string     `json:"salt"` // hex
	IV                  string     `json:"iv"`   // hex
	FormatVersion       int        `json:"formatVersion"`
	IsPasswordless      bool       `json:"isPasswordless"`
}

// WalletCollection is the persisted aggregate of all stored wallets. Address
// is the unique key; ActiveAddress, when set, references a member.
type WalletCollection struct {
	Wallets           []WalletRecord `json:"wallets"`
	ActiveAddress     string         `json:"activeAddress,omitempty"`
	CollectionVersion int            `json:"collectionVersion"`
}

// validate checks the structural fields a record needs before any decryption
// can be attempted.
func (r *WalletRecord) validate() error {
	if r.PublicData.Address == "" {
		return vaulterrors.CorruptedStore("wallet record is missing its address")
	}
	if r.Salt == "" {
		return vaulterrors.CorruptedStore("wallet record is missing its salt")
	}
	if r.IV == "" {
		return vaulterrors.CorruptedStore("wallet record is missing its iv")
	}
	switch r.FormatVersion {
	case FormatLegacyFingerprint, FormatPassword:
	default:
		return vaulterrors.CorruptedStore("wallet record has an unknown format version")
	}
	return nil
}

// cryptoParams decodes the record's salt and iv.
func (r *WalletRecord) cryptoParams() (salt, iv []byte, err error) {
	salt, err = hex.DecodeString(r.Salt)
	if err != nil {
		return nil, nil, vaulterrors.CorruptedStore("wallet record salt is not valid hex")
	}
	iv, err = hex.DecodeString(r.IV)
	if err != nil {
		return nil, nil, vaulterrors.CorruptedStore("wallet record iv is not valid hex")
	}
	return salt, iv, nil
}

// find returns the index of the record with the given address, or -1.
func (c *WalletCollection) find(address string) int {
	for i := range c.Wallets {
		if c.Wallets[i].PublicData.Address == address {
			return i
		}
	}
	return -1
}

// decodeCollection parses a persisted collection blob.
func decodeCollection(data []byte) (*WalletCollection, error) {
	var collection WalletCollection
	if err := json.Unmarshal(data, &collection); err != nil {
		return nil, vaulterrors.CorruptedStore("wallet collection failed to parse: " + err.Error())
	}
	return &collection, nil
}

// decodeRecord parses a persisted single-wallet blob from the legacy slot.
func decodeRecord(data []byte) (*WalletRecord, error) {
	var record WalletRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, vaulterrors.CorruptedStore("legacy wallet record failed to parse: " + err.Error())
	}
	if err := record.validate(); err != nil {
		return nil, err
	}
	return &record, nil
}
