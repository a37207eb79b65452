// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package keychain

import (
	"crypto/rand"
	"errors"

	"github.com/corvidlabs/bitspv/crypto"
)

// ErrWrongPassphrase is returned by Unlock when the supplied passphrase
// fails to decrypt the stored mnemonic (detected via PKCS#7 padding
// failure, since there is no separate MAC over the plaintext).
var ErrWrongPassphrase = errors.New("keychain: wrong passphrase or corrupt encrypted seed")

// EncryptedMnemonic is a BIP-39 mnemonic sentence encrypted at rest under
// a passphrase-derived AES-256 key, the on-disk form the wallet store
// persists.
type EncryptedMnemonic struct {
	Salt       []byte
	IV         []byte
	Ciphertext []byte
}

// NewEncryptedMnemonic generates a fresh mnemonic and encrypts it under
// passphrase.
func NewEncryptedMnemonic(passphrase string) (*EncryptedMnemonic, string, error) {
	mnemonic, err := NewMnemonic()
	if err != nil {
		return nil, "", err
	}
	enc, err := EncryptMnemonic(mnemonic, passphrase)
	return enc, mnemonic, err
}

// EncryptMnemonic encrypts an existing mnemonic under passphrase, using a
// freshly generated scrypt salt.
func EncryptMnemonic(mnemonic, passphrase string) (*EncryptedMnemonic, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}

	key, err := crypto.DeriveAESKey(passphrase, crypto.DefaultScryptParams(salt))
	if err != nil {
		return nil, err
	}

	iv, ciphertext, err := crypto.EncryptAES(key, []byte(mnemonic))
	if err != nil {
		return nil, err
	}

	return &EncryptedMnemonic{Salt: salt, IV: iv, Ciphertext: ciphertext}, nil
}

// Unlock decrypts the mnemonic using passphrase, returning
// ErrWrongPassphrase if it doesn't match, and then derives the resulting
// seed's KeyChain.
func (e *EncryptedMnemonic) Unlock(passphrase string) (*KeyChain, error) {
	mnemonic, err := e.decrypt(passphrase)
	if err != nil {
		return nil, err
	}
	seed, err := SeedFromMnemonic(mnemonic, "")
	if err != nil {
		return nil, err
	}
	return NewKeyChain(seed)
}

func (e *EncryptedMnemonic) decrypt(passphrase string) (string, error) {
	return e.Decrypt(passphrase, crypto.DefaultScryptParams(e.Salt))
}

// Decrypt recovers the mnemonic sentence under passphrase with explicit
// scrypt cost parameters, for stored wallets whose parameters may predate
// the current defaults. It returns ErrWrongPassphrase when the passphrase
// doesn't match.
func (e *EncryptedMnemonic) Decrypt(passphrase string, p crypto.ScryptParams) (string, error) {
	key, err := crypto.DeriveAESKey(passphrase, p)
	if err != nil {
		return "", err
	}
	plain, err := crypto.DecryptAES(key, e.IV, e.Ciphertext)
	if err != nil {
		return "", ErrWrongPassphrase
	}
	mnemonic := string(plain)
	if !ValidateMnemonic(mnemonic) {
		return "", ErrWrongPassphrase
	}
	return mnemonic, nil
}
