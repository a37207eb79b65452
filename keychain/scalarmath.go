// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package keychain

import (
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/corvidlabs/bitspv/crypto"
)

// errInvalidChildKey is returned in the vanishingly unlikely case a BIP-32
// child derivation produces an invalid key (il >= curve order, or the
// resulting scalar/point is the identity); per BIP-32 the caller should
// retry with the next child index.
var errInvalidChildKey = errors.New("keychain: derived child key is invalid, try the next index")

// deriveChildPrivateKey computes (parent + il) mod n as a new private key.
func deriveChildPrivateKey(parent *crypto.PrivateKey, il []byte) (*crypto.PrivateKey, error) {
	var ilScalar secp256k1.ModNScalar
	overflow := ilScalar.SetByteSlice(il)
	if overflow {
		return nil, errInvalidChildKey
	}

	parentScalar := parent.Key
	childScalar := new(secp256k1.ModNScalar).Add2(&ilScalar, &parentScalar)
	if childScalar.IsZero() {
		return nil, errInvalidChildKey
	}

	childBytes := childScalar.Bytes()
	return secp256k1.PrivKeyFromBytes(childBytes[:]), nil
}

// addPublicPoint computes parentPub + il*G, the public-only counterpart of
// deriveChildPrivateKey, used for non-hardened derivation from a
// watching (public-only) extended key.
func addPublicPoint(parentPub *crypto.PublicKey, il []byte) (*crypto.PublicKey, error) {
	var ilScalar secp256k1.ModNScalar
	overflow := ilScalar.SetByteSlice(il)
	if overflow {
		return nil, errInvalidChildKey
	}

	var ilPoint secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(&ilScalar, &ilPoint)

	var parentPoint secp256k1.JacobianPoint
	parentPub.AsJacobian(&parentPoint)

	var sumPoint secp256k1.JacobianPoint
	secp256k1.AddNonConst(&ilPoint, &parentPoint, &sumPoint)
	if (sumPoint.X.IsZero() && sumPoint.Y.IsZero()) || sumPoint.Z.IsZero() {
		return nil, errInvalidChildKey
	}

	sumPoint.ToAffine()
	return secp256k1.NewPublicKey(&sumPoint.X, &sumPoint.Y), nil
}
