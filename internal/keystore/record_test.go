package keystore

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vaulterrors "github.com/spinvault/spinvault/pkg/errors"
)

func validRecord() WalletRecord {
	return WalletRecord{
		EncryptedPrivateKey: "Y2lwaGVydGV4dA==",
		EncryptedMnemonic:   "Y2lwaGVydGV4dA==",
		PublicData: PublicData{
			Address:   "0x52908400098527886E0F7030069857D2E4169EE7",
			CreatedAt: 1700000000000,
			LastUsed:  1700000000000,
			Origin:    OriginGenerated,
		},
		Salt:          "00112233445566778899aabbccddeeff",
		IV:            "ffeeddccbbaa99887766554433221100",
		FormatVersion: FormatPassword,
	}
}

func TestWalletRecord_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*WalletRecord)
		wantErr bool
	}{
		{"valid password record", func(r *WalletRecord) {}, false},
		{"valid legacy record", func(r *WalletRecord) { r.FormatVersion = FormatLegacyFingerprint }, false},
		{"missing address", func(r *WalletRecord) { r.PublicData.Address = "" }, true},
		{"missing salt", func(r *WalletRecord) { r.Salt = "" }, true},
		{"missing iv", func(r *WalletRecord) { r.IV = "" }, true},
		{"unknown format version", func(r *WalletRecord) { r.FormatVersion = 3 }, true},
		{"zero format version", func(r *WalletRecord) { r.FormatVersion = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := validRecord()
			tt.mutate(&record)
			err := record.validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, vaulterrors.IsKind(err, vaulterrors.KindCorruptedStore), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWalletRecord_CryptoParams(t *testing.T) {
	record := validRecord()

	salt, iv, err := record.cryptoParams()
	require.NoError(t, err)
	assert.Len(t, salt, saltLen)
	assert.Len(t, iv, ivLen)

	record.Salt = "zz not hex"
	_, _, err = record.cryptoParams()
	assert.True(t, vaulterrors.IsKind(err, vaulterrors.KindCorruptedStore))

	record = validRecord()
	record.IV = "zz not hex"
	_, _, err = record.cryptoParams()
	assert.True(t, vaulterrors.IsKind(err, vaulterrors.KindCorruptedStore))
}

func TestWalletCollection_Find(t *testing.T) {
	a := validRecord()
	b := validRecord()
	b.PublicData.Address = "0x8617E340B3D01FA5F11F306F4090FD50E238070D"

	collection := WalletCollection{Wallets: []WalletRecord{a, b}}

	assert.Equal(t, 0, collection.find(a.PublicData.Address))
	assert.Equal(t, 1, collection.find(b.PublicData.Address))
	assert.Equal(t, -1, collection.find("0xde709f2102306220921060314715629080e2fb77"))
}

func TestDecodeCollection(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		original := WalletCollection{
			Wallets:           []WalletRecord{validRecord()},
			ActiveAddress:     validRecord().PublicData.Address,
			CollectionVersion: 3,
		}
		data, err := json.Marshal(original)
		require.NoError(t, err)

		decoded, err := decodeCollection(data)
		require.NoError(t, err)
		assert.Equal(t, &original, decoded)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := decodeCollection([]byte("{nope"))
		assert.True(t, vaulterrors.IsKind(err, vaulterrors.KindCorruptedStore))
	})
}

func TestDecodeRecord(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		original := validRecord()
		data, err := json.Marshal(original)
		require.NoError(t, err)

		decoded, err := decodeRecord(data)
		require.NoError(t, err)
		assert.Equal(t, &original, decoded)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := decodeRecord([]byte("{nope"))
		assert.True(t, vaulterrors.IsKind(err, vaulterrors.KindCorruptedStore))
	})

	t.Run("missing cryptographic parameters", func(t *testing.T) {
		record := validRecord()
		record.Salt = ""
		data, err := json.Marshal(record)
		require.NoError(t, err)

		_, err = decodeRecord(data)
		assert.True(t, vaulterrors.IsKind(err, vaulterrors.KindCorruptedStore))
	})
}
