package keystore

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/spinvault/spinvault/internal/audit"
	"github.com/spinvault/spinvault/internal/logger"
	"github.com/spinvault/spinvault/internal/storage"
	"github.com/spinvault/spinvault/internal/validation"
	vaulterrors "github.com/spinvault/spinvault/pkg/errors"
)

// RandomSource supplies cryptographically secure random bytes for salts and
// initialization vectors.
type RandomSource interface {
	Bytes(n int) ([]byte, error)
}

// FingerprintProvider supplies the deterministic host fingerprint used to
// decrypt legacy format-version-1 records. Optional: without one, legacy
// records cannot be unlocked (they still migrate and list).
type FingerprintProvider interface {
	Fingerprint() []byte
}

// Manager owns the wallet collection: add, remove, select, rename, unlock and
// re-encrypt. Every mutation is a full load, mutate in memory, full save
// cycle against the store, so the persisted collection stays structurally
// consistent. Within one Manager operations are serialized; across
// application instances sharing a store the last writer wins, which is an
// accepted limitation of the storage medium.
type Manager struct {
	mu          sync.Mutex
	store       storage.Store
	random      RandomSource
	fingerprint FingerprintProvider
	metrics     *Metrics
	recorder    audit.Recorder
}

// Option configures a Manager.
type Option func(*Manager)

// WithFingerprintProvider wires the legacy-record fingerprint provider.
func WithFingerprintProvider(fp FingerprintProvider) Option {
	return func(m *Manager) { m.fingerprint = fp }
}

// WithMetrics wires operational metrics.
func WithMetrics(metrics *Metrics) Option {
	return func(m *Manager) { m.metrics = metrics }
}

// WithAuditRecorder wires an audit event recorder.
func WithAuditRecorder(recorder audit.Recorder) Option {
	return func(m *Manager) { m.recorder = recorder }
}

// NewManager creates a collection manager over the given store and randomness
// source.
func NewManager(store storage.Store, random RandomSource, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		random: random,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddOptions controls AddWallet behavior.
type AddOptions struct {
	// SetActive forces the new wallet to become active even when the
	// collection already has members. The first wallet added to an empty
	// collection becomes active regardless.
	SetActive bool
}

// AddWallet encrypts secrets under password and appends the record to the
// collection. An empty password selects passwordless mode: the key derives
// from a fixed, publicly known passphrase, making the record obfuscated
// rather than confidential. Fails with a duplicate_wallet error when the
// address is already stored.
func (m *Manager) AddWallet(ctx context.Context, secrets WalletSecrets, password string, opts AddOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.addWallet(ctx, secrets, password, opts); err != nil {
		m.metrics.observeOperation("add_wallet", "error")
		m.record(ctx, "add_wallet", secrets.Address, audit.OutcomeError, err.Error())
		return err
	}
	m.metrics.observeOperation("add_wallet", "ok")
	m.record(ctx, "add_wallet", secrets.Address, audit.OutcomeOK, "")
	return nil
}

func (m *Manager) addWallet(ctx context.Context, secrets WalletSecrets, password string, opts AddOptions) error {
	if err := validateSecrets(&secrets); err != nil {
		return err
	}

	collection, err := m.loadCollection(ctx)
	if err != nil {
		return err
	}
	if collection.find(secrets.Address) >= 0 {
		return vaulterrors.DuplicateWallet(secrets.Address)
	}

	record, err := m.encryptSecrets(&secrets, password)
	if err != nil {
		return err
	}

	wasEmpty := len(collection.Wallets) == 0
	collection.Wallets = append(collection.Wallets, *record)
	if wasEmpty || opts.SetActive {
		collection.ActiveAddress = secrets.Address
	}

	if err := m.saveCollection(ctx, collection); err != nil {
		return err
	}

	logger.Info(ctx, "wallet added",
		"address", secrets.Address,
		"origin", record.PublicData.Origin,
		"passwordless", record.IsPasswordless,
		"active", collection.ActiveAddress == secrets.Address,
	)
	return nil
}

// RemoveWallet deletes the record for address. Returns false when the address
// is not in the collection. When the removed wallet was active, the first
// remaining record becomes active, or no wallet if the collection is now
// empty.
func (m *Manager) RemoveWallet(ctx context.Context, address string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	collection, err := m.loadCollection(ctx)
	if err != nil {
		m.metrics.observeOperation("remove_wallet", "error")
		return false, err
	}

	idx := collection.find(address)
	if idx < 0 {
		m.metrics.observeOperation("remove_wallet", "not_found")
		return false, nil
	}

	collection.Wallets = append(collection.Wallets[:idx], collection.Wallets[idx+1:]...)
	if collection.ActiveAddress == address {
		if len(collection.Wallets) > 0 {
			collection.ActiveAddress = collection.Wallets[0].PublicData.Address
		} else {
			collection.ActiveAddress = ""
		}
	}

	if err := m.saveCollection(ctx, collection); err != nil {
		m.metrics.observeOperation("remove_wallet", "error")
		return false, err
	}

	m.metrics.observeOperation("remove_wallet", "ok")
	m.record(ctx, "remove_wallet", address, audit.OutcomeOK, "")
	logger.Info(ctx, "wallet removed",
		"address", address,
		"remaining", len(collection.Wallets),
		"active", collection.ActiveAddress,
	)
	return true, nil
}

// SetActiveWallet selects the wallet the surrounding application should use.
// Returns false when the address is not in the collection. Updates the
// record's lastUsed timestamp.
func (m *Manager) SetActiveWallet(ctx context.Context, address string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	collection, err := m.loadCollection(ctx)
	if err != nil {
		return false, err
	}

	idx := collection.find(address)
	if idx < 0 {
		return false, nil
	}

	collection.ActiveAddress = address
	collection.Wallets[idx].PublicData.LastUsed = nowMillis()

	if err := m.saveCollection(ctx, collection); err != nil {
		return false, err
	}

	m.metrics.observeOperation("set_active", "ok")
	m.record(ctx, "set_active", address, audit.OutcomeOK, "")
	return true, nil
}

// RetrieveWallet decrypts and returns the secrets for address. The key
// derivation procedure is selected by the record's format version; for
// password-format records an empty password selects the passwordless
// passphrase. Decryption that does not produce valid plaintext fails with an
// invalid_credential error. The decrypted values are returned to the caller
// only; they are never logged or persisted.
func (m *Manager) RetrieveWallet(ctx context.Context, address, password string) (*WalletSecrets, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	collection, err := m.loadCollection(ctx)
	if err != nil {
		return nil, err
	}

	idx := collection.find(address)
	if idx < 0 {
		m.record(ctx, "retrieve_wallet", address, audit.OutcomeError, "not found")
		return nil, vaulterrors.WalletNotFound(address)
	}

	secrets, err := m.decryptRecord(&collection.Wallets[idx], password)
	if err != nil {
		if vaulterrors.IsKind(err, vaulterrors.KindInvalidCredential) {
			m.metrics.observeUnlockFailure()
		}
		m.metrics.observeOperation("retrieve_wallet", "error")
		m.record(ctx, "retrieve_wallet", address, audit.OutcomeError, "unlock failed")
		return nil, err
	}

	collection.Wallets[idx].PublicData.LastUsed = nowMillis()
	if err := m.saveCollection(ctx, collection); err != nil {
		return nil, err
	}

	m.metrics.observeOperation("retrieve_wallet", "ok")
	m.record(ctx, "retrieve_wallet", address, audit.OutcomeOK, "")
	return secrets, nil
}

// UpdateNickname changes the display label on a record. Metadata only, no
// re-encryption. Returns false when the address is not in the collection.
func (m *Manager) UpdateNickname(ctx context.Context, address, nickname string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := validation.ValidateNickname(nickname); err != nil {
		return false, vaulterrors.Validation(err.Error())
	}

	collection, err := m.loadCollection(ctx)
	if err != nil {
		return false, err
	}

	idx := collection.find(address)
	if idx < 0 {
		return false, nil
	}

	collection.Wallets[idx].PublicData.Nickname = nickname
	if err := m.saveCollection(ctx, collection); err != nil {
		return false, err
	}

	m.metrics.observeOperation("update_nickname", "ok")
	return true, nil
}

// ListWallets returns the public metadata of every stored wallet, in
// collection order. No ciphertext or cryptographic parameters are exposed.
// The first call after an upgrade triggers the legacy migration.
func (m *Manager) ListWallets(ctx context.Context) ([]PublicData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	collection, err := m.loadCollection(ctx)
	if err != nil {
		return nil, err
	}

	wallets := make([]PublicData, 0, len(collection.Wallets))
	for i := range collection.Wallets {
		wallets = append(wallets, collection.Wallets[i].PublicData)
	}
	return wallets, nil
}

// ActiveAddress returns the currently selected wallet address, or empty when
// none is selected.
func (m *Manager) ActiveAddress(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	collection, err := m.loadCollection(ctx)
	if err != nil {
		return "", err
	}
	return collection.ActiveAddress, nil
}

// ChangePassword re-encrypts the wallet for secrets.Address under
// newPassword with a fresh salt and iv, fully replacing the stored ciphertext
// and parameters. The caller must already hold the decrypted secrets (from a
// successful RetrieveWallet); the old password is not re-verified here. This
// is also the only path that moves a legacy format-version-1 record to the
// password format.
func (m *Manager) ChangePassword(ctx context.Context, secrets WalletSecrets, newPassword string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.changePassword(ctx, secrets, newPassword); err != nil {
		m.metrics.observeOperation("change_password", "error")
		m.record(ctx, "change_password", secrets.Address, audit.OutcomeError, err.Error())
		return err
	}
	m.metrics.observeOperation("change_password", "ok")
	m.record(ctx, "change_password", secrets.Address, audit.OutcomeOK, "")
	return nil
}

func (m *Manager) changePassword(ctx context.Context, secrets WalletSecrets, newPassword string) error {
	if err := validateSecrets(&secrets); err != nil {
		return err
	}

	collection, err := m.loadCollection(ctx)
	if err != nil {
		return err
	}

	idx := collection.find(secrets.Address)
	if idx < 0 {
		return vaulterrors.WalletNotFound(secrets.Address)
	}

	record, err := m.encryptSecrets(&secrets, newPassword)
	if err != nil {
		return err
	}

	// Keep the stored metadata; only the ciphertext and its parameters are
	// replaced.
	previous := collection.Wallets[idx].PublicData
	record.PublicData = previous
	record.PublicData.LastUsed = nowMillis()
	collection.Wallets[idx] = *record

	if err := m.saveCollection(ctx, collection); err != nil {
		return err
	}

	logger.Info(ctx, "wallet re-encrypted",
		"address", secrets.Address,
		"passwordless", record.IsPasswordless,
	)
	return nil
}

// MigrateIfNeeded runs the legacy single-wallet migration eagerly. Reads go
// through it implicitly; this is for applications that want to migrate at
// startup.
func (m *Manager) MigrateIfNeeded(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.migrateIfNeeded(ctx)
}

// loadCollection reads the collection from the store, running the legacy
// migration first. An empty or disabled store yields an empty collection.
func (m *Manager) loadCollection(ctx context.Context) (*WalletCollection, error) {
	if err := m.migrateIfNeeded(ctx); err != nil {
		return nil, err
	}

	data, err := m.store.Get(ctx, storage.SlotWalletCollection)
	if err != nil {
		return nil, fmt.Errorf("failed to read wallet collection: %w", err)
	}
	if data == nil {
		return &WalletCollection{}, nil
	}
	return decodeCollection(data)
}

// saveCollection persists the collection and keeps the dependent slots
// consistent: a single-wallet collection is mirrored into the legacy slot for
// old readers, an empty collection clears it, and the active pointer slot
// tracks activeAddress.
func (m *Manager) saveCollection(ctx context.Context, collection *WalletCollection) error {
	collection.CollectionVersion++

	data, err := json.Marshal(collection)
	if err != nil {
		return fmt.Errorf("failed to marshal wallet collection: %w", err)
	}
	if err := m.store.Set(ctx, storage.SlotWalletCollection, data); err != nil {
		return fmt.Errorf("failed to write wallet collection: %w", err)
	}

	switch len(collection.Wallets) {
	case 0:
		if err := m.store.Remove(ctx, storage.SlotLegacyWallet); err != nil {
			return fmt.Errorf("failed to clear legacy wallet slot: %w", err)
		}
	case 1:
		mirror, err := json.Marshal(collection.Wallets[0])
		if err != nil {
			return fmt.Errorf("failed to marshal legacy mirror: %w", err)
		}
		if err := m.store.Set(ctx, storage.SlotLegacyWallet, mirror); err != nil {
			return fmt.Errorf("failed to write legacy wallet slot: %w", err)
		}
	}

	if collection.ActiveAddress != "" {
		if err := m.store.Set(ctx, storage.SlotActivePointer, []byte(collection.ActiveAddress)); err != nil {
			return fmt.Errorf("failed to write active wallet pointer: %w", err)
		}
	} else {
		if err := m.store.Remove(ctx, storage.SlotActivePointer); err != nil {
			return fmt.Errorf("failed to clear active wallet pointer: %w", err)
		}
	}

	return nil
}

// encryptSecrets builds a fresh password-format record for secrets. A new
// (salt, iv) pair is generated per call; the pair is shared by the two
// ciphertexts of this record and never reused.
func (m *Manager) encryptSecrets(secrets *WalletSecrets, password string) (*WalletRecord, error) {
	salt, err := m.random.Bytes(saltLen)
	if err != nil {
		return nil, err
	}
	iv, err := m.random.Bytes(ivLen)
	if err != nil {
		return nil, err
	}

	key := deriveUnlockKey(password, salt)

	encryptedKey, err := encryptField(secrets.PrivateKeyHex, key, iv)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt private key: %w", err)
	}
	encryptedMnemonic, err := encryptField(secrets.Mnemonic, key, iv)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt mnemonic: %w", err)
	}

	createdAt := secrets.CreatedAt
	if createdAt == 0 {
		createdAt = nowMillis()
	}
	origin := secrets.Origin
	if origin == "" {
		origin = OriginGenerated
	}

	return &WalletRecord{
		EncryptedPrivateKey: encryptedKey,
		EncryptedMnemonic:   encryptedMnemonic,
		PublicData: PublicData{
			Address:   secrets.Address,
			CreatedAt: createdAt,
			LastUsed:  nowMillis(),
			Origin:    origin,
			Nickname:  secrets.Nickname,
		},
		Salt:           hex.EncodeToString(salt),
		IV:             hex.EncodeToString(iv),
		FormatVersion:  FormatPassword,
		IsPasswordless: password == "",
	}, nil
}

// decryptRecord unlocks a record. The derivation procedure is a total match
// over the record's format version; unknown versions were already rejected by
// validate.
func (m *Manager) decryptRecord(record *WalletRecord, password string) (*WalletSecrets, error) {
	if err := record.validate(); err != nil {
		return nil, err
	}
	salt, iv, err := record.cryptoParams()
	if err != nil {
		return nil, err
	}

	var key []byte
	switch record.FormatVersion {
	case FormatLegacyFingerprint:
		if m.fingerprint == nil {
			return nil, vaulterrors.Validation("legacy wallet record requires a fingerprint provider")
		}
		key = deriveLegacyKey(m.fingerprint.Fingerprint(), salt)
	case FormatPassword:
		key = deriveUnlockKey(password, salt)
	}

	privateKeyHex, err := decryptField(record.EncryptedPrivateKey, key, iv)
	if err != nil {
		return nil, err
	}
	mnemonic, err := decryptField(record.EncryptedMnemonic, key, iv)
	if err != nil {
		return nil, err
	}

	return &WalletSecrets{
		Address:       record.PublicData.Address,
		PrivateKeyHex: privateKeyHex,
		Mnemonic:      mnemonic,
		CreatedAt:     record.PublicData.CreatedAt,
		Origin:        record.PublicData.Origin,
		Nickname:      record.PublicData.Nickname,
	}, nil
}

// validateSecrets checks the fields required before a record can be written.
func validateSecrets(secrets *WalletSecrets) error {
	if err := validation.ValidateAddress(secrets.Address); err != nil {
		return vaulterrors.Validation(err.Error())
	}
	if secrets.PrivateKeyHex == "" {
		return vaulterrors.Validation("private key cannot be empty")
	}
	if secrets.Mnemonic == "" {
		return vaulterrors.Validation("mnemonic cannot be empty")
	}
	if err := validation.ValidateNickname(secrets.Nickname); err != nil {
		return vaulterrors.Validation(err.Error())
	}
	return nil
}

// record emits an audit event when a recorder is wired.
func (m *Manager) record(ctx context.Context, op, address, outcome, detail string) {
	if m.recorder == nil {
		return
	}
	m.recorder.Record(ctx, audit.NewEvent(op, address, outcome, detail))
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
