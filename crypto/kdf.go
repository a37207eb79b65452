// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package crypto

import (
	"crypto/sha512"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
)

// Bip39Salt is the fixed salt prefix BIP-39 prepends to the passphrase
// before stretching a mnemonic into a seed.
const Bip39Salt = "mnemonic"

// Bip39Iterations is the PBKDF2 iteration count BIP-39 mandates.
const Bip39Iterations = 2048

// Bip39SeedLen is the output length in bytes of a BIP-39 seed.
const Bip39SeedLen = 64

// MnemonicToSeed derives the 64-byte BIP-39 seed from the normalized
// mnemonic sentence and an optional passphrase, via
// PBKDF2-HMAC-SHA-512(words, "mnemonic"||passphrase, 2048, 64).
func MnemonicToSeed(mnemonic, passphrase string) []byte {
	salt := Bip39Salt + passphrase
	return pbkdf2.Key([]byte(mnemonic), []byte(salt), Bip39Iterations, Bip39SeedLen, sha512.New)
}

// ScryptParams are the cost parameters for the wallet-encryption key
// derivation function.
type ScryptParams struct {
	N    uint64
	R    uint32
	P    uint32
	Salt []byte
}

// DefaultScryptParams returns the scrypt cost parameters used for newly
// created encrypted wallets.
func DefaultScryptParams(salt []byte) ScryptParams {
	return ScryptParams{N: 16384, R: 8, P: 1, Salt: salt}
}

// DeriveAESKey stretches passphrase with scrypt into a 32-byte AES-256 key
// suitable for encrypting private key material.
func DeriveAESKey(passphrase string, p ScryptParams) ([]byte, error) {
	return scrypt.Key([]byte(passphrase), p.Salt, int(p.N), int(p.R), int(p.P), 32)
}
