// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package crypto

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// PrivateKey is a secp256k1 scalar.
type PrivateKey = secp256k1.PrivateKey

// PublicKey is a secp256k1 curve point.
type PublicKey = secp256k1.PublicKey

// GeneratePrivateKey returns a new random secp256k1 private key.
func GeneratePrivateKey() (*PrivateKey, error) {
	return secp256k1.GeneratePrivateKey()
}

// PrivKeyFromBytes parses a 32-byte scalar into a private key, deriving its
// public key.
func PrivKeyFromBytes(b []byte) *PrivateKey {
	return secp256k1.PrivKeyFromBytes(b)
}

// ParsePubKey parses a compressed (33-byte) or uncompressed (65-byte) SEC1
// public key encoding.
func ParsePubKey(b []byte) (*PublicKey, error) {
	return secp256k1.ParsePubKey(b)
}

// Sign produces a deterministic (RFC 6979) ECDSA signature over msg32 with
// priv, serialized as low-S canonical DER. msg32 must be exactly 32 bytes
// (the sighash); any other length is rejected with an error.
func Sign(priv *PrivateKey, msg32 []byte) ([]byte, error) {
	if len(msg32) != 32 {
		return nil, fmt.Errorf("crypto: sign: message must be 32 bytes, got %d", len(msg32))
	}
	sig := ecdsa.Sign(priv, msg32)
	return sig.Serialize(), nil
}

// Verify checks a DER-encoded ECDSA signature over msg32 against pub,
// returning false for a signature that does not parse as DER. It does not
// itself reject a high-S value; the script engine's checkSignatureEncoding
// enforces strict DER and low-S before it calls Verify.
func Verify(pub *PublicKey, msg32, sigDER []byte) bool {
	if len(msg32) != 32 {
		return false
	}
	sig, err := ecdsa.ParseDERSignature(sigDER)
	if err != nil {
		return false
	}
	return sig.Verify(msg32, pub)
}
