// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package keychain

import (
	"encoding/binary"
	"errors"

	"github.com/corvidlabs/bitspv/crypto"
)

// HardenedKeyStart is the first index in the hardened derivation range,
// per BIP-32.
const HardenedKeyStart = uint32(0x80000000)

// ErrDeriveHardenedFromPublic is returned when Derive is asked to walk
// into the hardened range from a public-only (watching) key.
var ErrDeriveHardenedFromPublic = errors.New("keychain: cannot derive a hardened child from a public key")

// ExtendedKey is a BIP-32 node: either a private extended key (able to
// derive both hardened and non-hardened children and to sign) or a
// public-only extended key (watching-wallet use), distinguished by whether priv is nil.
type ExtendedKey struct {
	priv      *crypto.PrivateKey
	pub       *crypto.PublicKey
	chainCode [32]byte
	depth     uint8
	childNum  uint32
	parentFP  [4]byte
}

// NewMasterKey derives the master extended private key from a BIP-39 seed,
// per BIP-32: HMAC-SHA512 keyed on "Bitcoin seed".
func NewMasterKey(seed []byte) (*ExtendedKey, error) {
	h := crypto.HmacSha512([]byte("Bitcoin seed"), seed)
	il, ir := h[:32], h[32:]

	priv := crypto.PrivKeyFromBytes(il)
	if priv == nil {
		return nil, errors.New("keychain: invalid master key material")
	}

	k := &ExtendedKey{priv: priv, pub: priv.PubKey()}
	copy(k.chainCode[:], ir)
	return k, nil
}

// Neuter returns a public-only copy of k, usable for watching-wallet
// derivation but never for signing.
func (k *ExtendedKey) Neuter() *ExtendedKey {
	return &ExtendedKey{
		pub:       k.pub,
		chainCode: k.chainCode,
		depth:     k.depth,
		childNum:  k.childNum,
		parentFP:  k.parentFP,
	}
}

// IsPrivate reports whether k can sign and derive hardened children.
func (k *ExtendedKey) IsPrivate() bool { return k.priv != nil }

// PrivKey returns the node's private key, or nil for a public-only key.
func (k *ExtendedKey) PrivKey() *crypto.PrivateKey { return k.priv }

// PubKey returns the node's public key.
func (k *ExtendedKey) PubKey() *crypto.PublicKey { return k.pub }

func fingerprint(pub *crypto.PublicKey) [4]byte {
	h := crypto.Hash160(pub.SerializeCompressed())
	var fp [4]byte
	copy(fp[:], h[:4])
	return fp
}

// Derive returns the childIdx'th child of k. An index >= HardenedKeyStart
// requests hardened derivation, which requires k to be a private key.
func (k *ExtendedKey) Derive(childIdx uint32) (*ExtendedKey, error) {
	hardened := childIdx >= HardenedKeyStart

	if hardened && k.priv == nil {
		return nil, ErrDeriveHardenedFromPublic
	}

	var data []byte
	if hardened {
		data = make([]byte, 0, 37)
		data = append(data, 0x00)
		data = append(data, k.priv.Serialize()...)
	} else {
		data = append([]byte(nil), k.pub.SerializeCompressed()...)
	}
	var idxBuf [4]byte
	binary.BigEndian.PutUint32(idxBuf[:], childIdx)
	data = append(data, idxBuf[:]...)

	h := crypto.HmacSha512(k.chainCode[:], data)
	il, ir := h[:32], h[32:]

	child := &ExtendedKey{
		depth:    k.depth + 1,
		childNum: childIdx,
		parentFP: fingerprint(k.pub),
	}
	copy(child.chainCode[:], ir)

	if k.priv != nil {
		childPriv, err := deriveChildPrivateKey(k.priv, il)
		if err != nil {
			return nil, err
		}
		child.priv = childPriv
		child.pub = childPriv.PubKey()
	} else {
		childPub, err := addPublicPoint(k.pub, il)
		if err != nil {
			return nil, err
		}
		child.pub = childPub
	}

	return child, nil
}
