// Package keychain supplies the external collaborators the secret store
// depends on: keypair generation, host fingerprinting for legacy record
// decryption, and cryptographically secure randomness.
package keychain

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip39"

	"github.com/spinvault/spinvault/internal/validation"
	vaulterrors "github.com/spinvault/spinvault/pkg/errors"
)

// Keypair is an address / private key / mnemonic triple. The private key is
// hex-encoded without the 0x prefix, matching the persisted secret format.
type Keypair struct {
	Address       string
	PrivateKeyHex string
	Mnemonic      string
}

// Provider generates and recovers wallet keypairs.
type Provider struct{}

// NewProvider creates a keypair provider.
func NewProvider() *Provider {
	return &Provider{}
}

// Generate creates a fresh keypair with a 12-word recovery mnemonic. The
// private key is derived from the mnemonic so the phrase alone recovers the
// wallet.
func (p *Provider) Generate() (*Keypair, error) {
	entropy, err := bip39.NewEntropy(128)
	if err != nil {
		return nil, fmt.Errorf("failed to generate entropy: %w", err)
	}

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, fmt.Errorf("failed to generate mnemonic: %w", err)
	}

	return p.FromMnemonic(mnemonic)
}

// FromMnemonic recovers the keypair encoded by a BIP39 phrase. Malformed
// phrases fail with a validation error.
func (p *Provider) FromMnemonic(mnemonic string) (*Keypair, error) {
	if err := validation.ValidateMnemonic(mnemonic); err != nil {
		return nil, vaulterrors.Validation(err.Error())
	}

	// No BIP39 passphrase: the store's own password layer protects the
	// persisted material instead.
	seed := bip39.NewSeed(mnemonic, "")

	privateKey, err := crypto.ToECDSA(seed[:32])
	if err != nil {
		return nil, fmt.Errorf("failed to derive private key from seed: %w", err)
	}

	address := crypto.PubkeyToAddress(privateKey.PublicKey)

	return &Keypair{
		Address:       address.Hex(),
		PrivateKeyHex: hexutil.Encode(crypto.FromECDSA(privateKey))[2:],
		Mnemonic:      mnemonic,
	}, nil
}
