// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package crypto wraps the small set of cryptographic primitives this module
// needs: hashing, HMAC, secp256k1 ECDSA, and the two passphrase key
// derivation functions used by the wallet and key chain. The broad hash
// zoo (BLAKE, BMW, CubeHash, ...) and the Bouncy Castle-style ASN.1/PKCS
// machinery are deliberately absent.
package crypto

import (
	"crypto/sha256"

	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // required by the Hash160 construction

	"github.com/corvidlabs/bitspv/chainhash"
)

// Sha256 returns the single SHA-256 digest of b.
func Sha256(b []byte) [32]byte {
	return sha256.Sum256(b)
}

// DoubleSha256 returns SHA-256(SHA-256(b)) as a chainhash.Hash256.
func DoubleSha256(b []byte) chainhash.Hash256 {
	return chainhash.DoubleHashH(b)
}

// Ripemd160 returns RIPEMD-160(b).
func Ripemd160(b []byte) [20]byte {
	h := ripemd160.New()
	h.Write(b)
	var out [20]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Hash160 returns RIPEMD160(SHA256(b)), the construction used for public
// key and redeem script hashes throughout the script engine and address
// formats.
func Hash160(b []byte) chainhash.Hash160 {
	sum := sha256.Sum256(b)
	return chainhash.Hash160(Ripemd160(sum[:]))
}
