package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common"
	"github.com/tyler-smith/go-bip39"
)

// EthereumAddressPattern is the regex pattern for Ethereum addresses
var EthereumAddressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// MaxNicknameLength bounds wallet display labels
const MaxNicknameLength = 64

// ValidateAddress validates a wallet address format
func ValidateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("address cannot be empty")
	}

	if !EthereumAddressPattern.MatchString(address) {
		return fmt.Errorf("invalid address format: must be 0x followed by 40 hex characters")
	}

	if !common.IsHexAddress(address) {
		return fmt.Errorf("invalid address")
	}

	// The zero address is never a real account
	if strings.ToLower(address) == "0x0000000000000000000000000000000000000000" {
		return fmt.Errorf("zero address is not a valid wallet address")
	}

	return nil
}

// ValidateNickname validates a wallet display label. Empty is allowed (no
// nickname); anything else must be printable UTF-8 within the length bound.
func ValidateNickname(nickname string) error {
	if nickname == "" {
		return nil
	}

	if !utf8.ValidString(nickname) {
		return fmt.Errorf("nickname must be valid UTF-8")
	}

	if utf8.RuneCountInString(nickname) > MaxNicknameLength {
		return fmt.Errorf("nickname too long: maximum %d characters", MaxNicknameLength)
	}

	if strings.TrimSpace(nickname) == "" {
		return fmt.Errorf("nickname cannot be only whitespace")
	}

	return nil
}

// ValidateMnemonic validates a BIP39 recovery phrase
func ValidateMnemonic(mnemonic string) error {
	if mnemonic == "" {
		return fmt.Errorf("mnemonic cannot be empty")
	}

	if !bip39.IsMnemonicValid(mnemonic) {
		return fmt.Errorf("invalid mnemonic: failed BIP39 wordlist or checksum validation")
	}

	return nil
}
