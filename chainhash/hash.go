// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainhash extends the upstream btcsuite chainhash package with the
// second hash type this project's consensus data model needs: Hash160, the
// 20-byte RIPEMD160(SHA256(x)) value used for key and script hashes.
package chainhash

import (
	"encoding/hex"
	"fmt"

	upstream "github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Hash256 is the 32-byte double-SHA-256 identifier used for block and
// transaction ids. It is the upstream btcsuite type directly, which
// already implements the wire encoding, hashing, and historical
// reversed-hex display convention.
type Hash256 = upstream.Hash

// Hash256Size is the size in bytes of a Hash256.
const Hash256Size = upstream.HashSize

// DoubleHashH computes double-SHA-256(b) and returns it as a Hash256.
func DoubleHashH(b []byte) Hash256 {
	return upstream.DoubleHashH(b)
}

// NewHash256FromStr parses a reversed-hex string into a Hash256.
func NewHash256FromStr(s string) (Hash256, error) {
	h, err := upstream.NewHashFromStr(s)
	if err != nil {
		return Hash256{}, err
	}
	return *h, nil
}

// Hash160Size is the size in bytes of a Hash160.
const Hash160Size = 20

// Hash160 is a 20-byte RIPEMD160(SHA256(x)) value, used to identify public
// keys and redeem scripts. Unlike Hash256 it is displayed in natural
// (non-reversed) byte order, matching how Bitcoin address encodings consume
// it.
type Hash160 [Hash160Size]byte

// String returns the Hash160 as lowercase hex, most significant byte first.
func (h Hash160) String() string {
	return hex.EncodeToString(h[:])
}

// CloneBytes returns a newly allocated copy of the hash bytes.
func (h Hash160) CloneBytes() []byte {
	b := make([]byte, Hash160Size)
	copy(b, h[:])
	return b
}

// SetBytes sets the hash to the contents of b, which must be exactly
// Hash160Size bytes.
func (h *Hash160) SetBytes(b []byte) error {
	if len(b) != Hash160Size {
		return fmt.Errorf("chainhash: invalid hash160 length %d, want %d",
			len(b), Hash160Size)
	}
	copy(h[:], b)
	return nil
}

// NewHash160 returns a new Hash160 from a byte slice, copying it.
func NewHash160(b []byte) (*Hash160, error) {
	var h Hash160
	if err := h.SetBytes(b); err != nil {
		return nil, err
	}
	return &h, nil
}

// NewHash160FromStr parses plain (non-reversed) hex into a Hash160.
func NewHash160FromStr(s string) (*Hash160, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("chainhash: invalid hash160 hex: %w", err)
	}
	return NewHash160(b)
}

// IsEqual reports whether h and other represent the same hash.
func (h *Hash160) IsEqual(other *Hash160) bool {
	if h == nil && other == nil {
		return true
	}
	if h == nil || other == nil {
		return false
	}
	return *h == *other
}
