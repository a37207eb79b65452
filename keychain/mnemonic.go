// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package keychain implements the BIP-39 mnemonic and BIP-32 hierarchical
// deterministic key derivation a wallet's seed and its external/internal
// address chains are built from.
package keychain

import (
	"fmt"

	"github.com/tyler-smith/go-bip39"

	"github.com/corvidlabs/bitspv/crypto"
)

// MnemonicEntropyBits is the entropy size this package generates new
// mnemonics with: 128 bits yields the standard 12-word sentence.
const MnemonicEntropyBits = 128

// NewMnemonic generates a fresh random BIP-39 mnemonic sentence.
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(MnemonicEntropyBits)
	if err != nil {
		return "", fmt.Errorf("keychain: generate entropy: %w", err)
	}
	return bip39.NewMnemonic(entropy)
}

// ValidateMnemonic reports whether mnemonic is a well-formed BIP-39
// sentence: known words, correct length, and a matching checksum.
func ValidateMnemonic(mnemonic string) bool {
	return bip39.IsMnemonicValid(mnemonic)
}

// SeedFromMnemonic derives the 64-byte BIP-39 seed from mnemonic and an
// optional passphrase. It first validates the mnemonic's checksum, then
// stretches it via the project's own PBKDF2 implementation
// (crypto.MnemonicToSeed) rather than the wordlist library's — the two
// produce byte-identical output since both follow the same BIP-39 KDF, but
// keeping the stretch in the crypto package means every HMAC/PBKDF2 call
// in the module goes through one audited path.
func SeedFromMnemonic(mnemonic, passphrase string) ([]byte, error) {
	if !ValidateMnemonic(mnemonic) {
		return nil, ErrInvalidMnemonic
	}
	return crypto.MnemonicToSeed(mnemonic, passphrase), nil
}

// ErrInvalidMnemonic is returned when a mnemonic fails BIP-39 validation:
// an unrecognized word, wrong word count, or bad checksum.
var ErrInvalidMnemonic = fmt.Errorf("keychain: invalid mnemonic")
