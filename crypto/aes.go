// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
)

// ErrBadPadding is returned by DecryptAES when the decrypted plaintext's
// PKCS#7 padding is malformed, which for this use (a known-structure private
// key) almost always means the wrong key was used.
var ErrBadPadding = errors.New("crypto: invalid PKCS#7 padding")

// EncryptAES encrypts plaintext under key (must be 32 bytes, AES-256) using
// CBC mode with PKCS#7 padding and a freshly generated random IV. It returns
// the IV and ciphertext separately, matching the on-disk envelope layout in
// which the IV is stored beside, not inside, the ciphertext.
func EncryptAES(key, plaintext []byte) (iv, ciphertext []byte, err error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, err
	}

	padded := pkcs7Pad(plaintext, block.BlockSize())
	iv = make([]byte, block.BlockSize())
	if _, err := rand.Read(iv); err != nil {
		return nil, nil, err
	}

	ciphertext = make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)
	return iv, ciphertext, nil
}

// DecryptAES reverses EncryptAES.
func DecryptAES(key, iv, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) == 0 || len(ciphertext)%block.BlockSize() != 0 {
		return nil, fmt.Errorf("crypto: ciphertext is not a multiple of the block size")
	}

	plain := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ciphertext)
	return pkcs7Unpad(plain)
}

func pkcs7Pad(b []byte, blockSize int) []byte {
	padLen := blockSize - len(b)%blockSize
	padded := make([]byte, len(b)+padLen)
	copy(padded, b)
	for i := len(b); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

func pkcs7Unpad(b []byte) ([]byte, error) {
	if len(b) == 0 {
		return nil, ErrBadPadding
	}
	padLen := int(b[len(b)-1])
	if padLen == 0 || padLen > len(b) {
		return nil, ErrBadPadding
	}
	for _, v := range b[len(b)-padLen:] {
		if int(v) != padLen {
			return nil, ErrBadPadding
		}
	}
	return b[:len(b)-padLen], nil
}
