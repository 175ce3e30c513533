// Package fixtures provides factories for test data.
package fixtures

import (
	"fmt"
	"time"

	"github.com/spinvault/spinvault/internal/keystore"
)

// Well-known valid addresses for tests that don't care about key material.
var (
	AddressA = "0x52908400098527886E0F7030069857D2E4169EE7"
	AddressB = "0x8617E340B3D01FA5F11F306F4090FD50E238070D"
	AddressC = "0xde709f2102306220921060314715629080e2fb77"
)

// WalletSecrets builds plausible plaintext secrets for an address.
func WalletSecrets(address string) keystore.WalletSecrets {
	return keystore.WalletSecrets{
		Address:       address,
		PrivateKeyHex: "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318",
		Mnemonic:      "legal winner thank year wave sausage worth useful legal winner thank yellow",
		CreatedAt:     time.Now().UnixMilli(),
		Origin:        keystore.OriginGenerated,
	}
}

// ImportedWalletSecrets builds secrets with the imported origin and a label.
func ImportedWalletSecrets(address string, nickname string) keystore.WalletSecrets {
	secrets := WalletSecrets(address)
	secrets.Origin = keystore.OriginImported
	secrets.Nickname = nickname
	return secrets
}

// NumberedAddress derives a syntactically valid, distinct address from n.
// Useful for tests that need many wallets.
func NumberedAddress(n int) string {
	return fmt.Sprintf("0x%040x", n+1)
}
