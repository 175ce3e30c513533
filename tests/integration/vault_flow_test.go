// Package integration contains end-to-end tests that exercise complete wallet
// flows: keypair generation through encryption, persistence, migration and
// retrieval, using the real storage backends.
package integration

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spinvault/spinvault/internal/app"
	"github.com/spinvault/spinvault/internal/audit"
	"github.com/spinvault/spinvault/internal/config"
	"github.com/spinvault/spinvault/internal/keychain"
	"github.com/spinvault/spinvault/internal/keystore"
	"github.com/spinvault/spinvault/internal/storage"
	vaulterrors "github.com/spinvault/spinvault/pkg/errors"
	"github.com/spinvault/spinvault/tests/fixtures"
	"github.com/spinvault/spinvault/tests/mocks"
)

func TestGeneratedWalletFullLifecycle(t *testing.T) {
	ctx := context.Background()
	provider := keychain.NewProvider()
	manager := keystore.NewManager(storage.NewMemoryStore(), keychain.NewCryptoRandom())

	// Generate a keypair and store it under a password.
	kp, err := provider.Generate()
	require.NoError(t, err)

	secrets := keystore.WalletSecrets{
		Address:       kp.Address,
		PrivateKeyHex: kp.PrivateKeyHex,
		Mnemonic:      kp.Mnemonic,
		Origin:        keystore.OriginGenerated,
	}
	require.NoError(t, manager.AddWallet(ctx, secrets, "correct horse battery", keystore.AddOptions{}))

	// The wallet lists and is active.
	wallets, err := manager.ListWallets(ctx)
	require.NoError(t, err)
	require.Len(t, wallets, 1)
	assert.Equal(t, kp.Address, wallets[0].Address)

	active, err := manager.ActiveAddress(ctx)
	require.NoError(t, err)
	assert.Equal(t, kp.Address, active)

	// Unlock round-trips the exact key material.
	unlocked, err := manager.RetrieveWallet(ctx, kp.Address, "correct horse battery")
	require.NoError(t, err)
	assert.Equal(t, kp.PrivateKeyHex, unlocked.PrivateKeyHex)
	assert.Equal(t, kp.Mnemonic, unlocked.Mnemonic)

	// The mnemonic alone recovers the same keypair.
	recovered, err := provider.FromMnemonic(unlocked.Mnemonic)
	require.NoError(t, err)
	assert.Equal(t, kp.Address, recovered.Address)
	assert.Equal(t, kp.PrivateKeyHex, recovered.PrivateKeyHex)
}

func TestImportedWalletAcrossFileStoreReopen(t *testing.T) {
	ctx := context.Background()
	provider := keychain.NewProvider()
	path := filepath.Join(t.TempDir(), "vault.json")

	store, err := storage.NewFileStore(path)
	require.NoError(t, err)
	manager := keystore.NewManager(store, keychain.NewCryptoRandom())

	kp, err := provider.Generate()
	require.NoError(t, err)
	imported, err := provider.FromMnemonic(kp.Mnemonic)
	require.NoError(t, err)

	secrets := keystore.WalletSecrets{
		Address:       imported.Address,
		PrivateKeyHex: imported.PrivateKeyHex,
		Mnemonic:      imported.Mnemonic,
		Origin:        keystore.OriginImported,
		Nickname:      "restored wheel",
	}
	require.NoError(t, manager.AddWallet(ctx, secrets, "pa55word", keystore.AddOptions{}))

	// A fresh manager over a reopened store sees and unlocks the wallet.
	reopened, err := storage.NewFileStore(path)
	require.NoError(t, err)
	fresh := keystore.NewManager(reopened, keychain.NewCryptoRandom())

	unlocked, err := fresh.RetrieveWallet(ctx, imported.Address, "pa55word")
	require.NoError(t, err)
	assert.Equal(t, imported.PrivateKeyHex, unlocked.PrivateKeyHex)
	assert.Equal(t, "restored wheel", unlocked.Nickname)
}

func TestPasswordRotationFlow(t *testing.T) {
	ctx := context.Background()
	manager := keystore.NewManager(storage.NewMemoryStore(), keychain.NewCryptoRandom())
	secrets := fixtures.WalletSecrets(fixtures.AddressA)

	require.NoError(t, manager.AddWallet(ctx, secrets, "old-password", keystore.AddOptions{}))

	unlocked, err := manager.RetrieveWallet(ctx, fixtures.AddressA, "old-password")
	require.NoError(t, err)
	require.NoError(t, manager.ChangePassword(ctx, *unlocked, "new-password"))

	_, err = manager.RetrieveWallet(ctx, fixtures.AddressA, "old-password")
	assert.True(t, vaulterrors.IsKind(err, vaulterrors.KindInvalidCredential))

	reunlocked, err := manager.RetrieveWallet(ctx, fixtures.AddressA, "new-password")
	require.NoError(t, err)
	assert.Equal(t, secrets.PrivateKeyHex, reunlocked.PrivateKeyHex)
}

func TestLegacyMirrorEnablesMigrationRoundTrip(t *testing.T) {
	// A single-wallet collection mirrors into the legacy slot. Wiping the
	// collection and pointer slots simulates an old client installation that
	// only ever had the legacy record; a fresh manager must migrate it back.
	ctx := context.Background()
	store := mocks.NewRecordingStore()
	manager := keystore.NewManager(store, mocks.NewSequenceRandom())
	secrets := fixtures.WalletSecrets(fixtures.AddressB)

	require.NoError(t, manager.AddWallet(ctx, secrets, "pw", keystore.AddOptions{}))
	require.NotNil(t, store.Value(storage.SlotLegacyWallet), "single wallet must mirror to legacy slot")

	require.NoError(t, store.Remove(ctx, storage.SlotWalletCollection))
	require.NoError(t, store.Remove(ctx, storage.SlotActivePointer))

	fresh := keystore.NewManager(store, mocks.NewSequenceRandom())
	wallets, err := fresh.ListWallets(ctx)
	require.NoError(t, err)
	require.Len(t, wallets, 1)
	assert.Equal(t, fixtures.AddressB, wallets[0].Address)

	unlocked, err := fresh.RetrieveWallet(ctx, fixtures.AddressB, "pw")
	require.NoError(t, err)
	assert.Equal(t, secrets.PrivateKeyHex, unlocked.PrivateKeyHex)
}

func TestMultiWalletManagementFlow(t *testing.T) {
	ctx := context.Background()
	recorder := mocks.NewCapturingRecorder()
	manager := keystore.NewManager(
		storage.NewMemoryStore(),
		keychain.NewCryptoRandom(),
		keystore.WithAuditRecorder(recorder),
	)

	for i := 0; i < 5; i++ {
		secrets := fixtures.WalletSecrets(fixtures.NumberedAddress(i))
		require.NoError(t, manager.AddWallet(ctx, secrets, "shared-pw", keystore.AddOptions{}))
	}

	wallets, err := manager.ListWallets(ctx)
	require.NoError(t, err)
	assert.Len(t, wallets, 5)

	ok, err := manager.UpdateNickname(ctx, fixtures.NumberedAddress(2), "third wheel")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = manager.SetActiveWallet(ctx, fixtures.NumberedAddress(3))
	require.NoError(t, err)
	assert.True(t, ok)

	removed, err := manager.RemoveWallet(ctx, fixtures.NumberedAddress(3))
	require.NoError(t, err)
	assert.True(t, removed)

	active, err := manager.ActiveAddress(ctx)
	require.NoError(t, err)
	assert.Equal(t, fixtures.NumberedAddress(0), active, "active falls back to first remaining")

	adds := recorder.ByOp("add_wallet")
	assert.Len(t, adds, 5)
	for _, event := range adds {
		assert.Equal(t, audit.OutcomeOK, event.Outcome)
	}
	assert.Len(t, recorder.ByOp("remove_wallet"), 1)
}

func TestDisabledStoreEndToEnd(t *testing.T) {
	ctx := context.Background()
	store := mocks.NewRecordingStore()
	store.Disable()
	manager := keystore.NewManager(store, keychain.NewCryptoRandom())

	require.NoError(t, manager.AddWallet(ctx, fixtures.WalletSecrets(fixtures.AddressA), "pw", keystore.AddOptions{}))

	wallets, err := manager.ListWallets(ctx)
	require.NoError(t, err)
	assert.Empty(t, wallets, "disabled storage degrades to empty results")
}

func TestConfiguredFileStoreComposition(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vault.json")

	cfg := &config.Config{
		StorageBackend: config.BackendFile,
		StorageFile:    path,
		Namespace:      "spinvault",
		LogFormat:      "text",
		LogLevel:       "INFO",
	}
	require.NoError(t, cfg.Validate())

	vault, err := app.NewWithConfig(cfg)
	require.NoError(t, err)
	defer vault.Close()
	require.IsType(t, &storage.FileStore{}, vault.Store)

	secrets := fixtures.WalletSecrets(fixtures.AddressA)
	require.NoError(t, vault.Manager.AddWallet(ctx, secrets, "composition pw", keystore.AddOptions{}))

	// A second instance wired from the same configuration sees the wallet.
	reopened, err := app.NewWithConfig(cfg)
	require.NoError(t, err)
	defer reopened.Close()

	unlocked, err := reopened.Manager.RetrieveWallet(ctx, fixtures.AddressA, "composition pw")
	require.NoError(t, err)
	assert.Equal(t, secrets.Mnemonic, unlocked.Mnemonic)
}

func TestCompositionFromEnvironment(t *testing.T) {
	ctx := context.Background()
	t.Setenv("STORAGE_BACKEND", config.BackendFile)
	t.Setenv("STORAGE_FILE_PATH", filepath.Join(t.TempDir(), "vault.json"))
	t.Setenv("STORAGE_NAMESPACE", "spinvault")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "DEBUG")

	vault, err := app.New()
	require.NoError(t, err)
	defer vault.Close()
	assert.Equal(t, config.BackendFile, vault.Config.StorageBackend)

	require.NoError(t, vault.Manager.AddWallet(ctx, fixtures.WalletSecrets(fixtures.AddressB), "", keystore.AddOptions{}))

	active, err := vault.Manager.ActiveAddress(ctx)
	require.NoError(t, err)
	assert.Equal(t, fixtures.AddressB, active)
}

func TestCompositionRejectsBadConfig(t *testing.T) {
	_, err := app.NewWithConfig(&config.Config{
		StorageBackend: config.BackendMemory,
		Namespace:      "spinvault",
		LogFormat:      "xml",
		LogLevel:       "INFO",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging configuration")
}
