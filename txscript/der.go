// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import "math/big"

// secp256k1Order is the order of the secp256k1 group, used for the low-S
// canonicality check below.
var secp256k1Order = mustParseHex("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141")
var secp256k1HalfOrder = new(big.Int).Rsh(secp256k1Order, 1)

func mustParseHex(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("txscript: bad hex constant")
	}
	return n
}

// checkSignatureEncoding enforces strict DER encoding and low-S
// canonicality on sig, which must not include the trailing sighash-type
// byte. Every signature this engine verifies is required to be strict-DER
// and low-S, unconditionally.
func checkSignatureEncoding(sig []byte) error {
	if len(sig) < 8 {
		return scriptError(ErrSigTooShort, "signature too short")
	}
	if len(sig) > 72 {
		return scriptError(ErrSigTooLong, "signature too long")
	}
	if sig[0] != 0x30 {
		return scriptError(ErrSigNonCanonical, "signature does not start with 0x30")
	}
	if int(sig[1]) != len(sig)-2 {
		return scriptError(ErrSigNonCanonical, "signature length mismatch")
	}
	if sig[2] != 0x02 {
		return scriptError(ErrSigNonCanonical, "signature R marker malformed")
	}
	rLen := int(sig[3])
	if 4+rLen+2 > len(sig) {
		return scriptError(ErrSigNonCanonical, "signature R length out of range")
	}
	rBytes := sig[4 : 4+rLen]
	sMarkerIdx := 4 + rLen
	if sig[sMarkerIdx] != 0x02 {
		return scriptError(ErrSigNonCanonical, "signature S marker malformed")
	}
	sLen := int(sig[sMarkerIdx+1])
	if sMarkerIdx+2+sLen != len(sig) {
		return scriptError(ErrSigNonCanonical, "signature S length out of range")
	}
	sBytes := sig[sMarkerIdx+2 : sMarkerIdx+2+sLen]

	if err := checkDERInteger(rBytes); err != nil {
		return err
	}
	if err := checkDERInteger(sBytes); err != nil {
		return err
	}

	s := new(big.Int).SetBytes(sBytes)
	if s.Cmp(secp256k1HalfOrder) > 0 {
		return scriptError(ErrSigHighS, "signature S value is higher than the curve half order")
	}
	return nil
}

func checkDERInteger(b []byte) error {
	if len(b) == 0 {
		return scriptError(ErrSigNonCanonical, "zero-length DER integer")
	}
	if b[0]&0x80 != 0 {
		return scriptError(ErrSigNonCanonical, "DER integer is negative")
	}
	if len(b) > 1 && b[0] == 0 && b[1]&0x80 == 0 {
		return scriptError(ErrSigNonCanonical, "DER integer has excessive leading zero padding")
	}
	return nil
}

// sigHashType is the single byte appended to the 32-byte sighash digest
// before signing, and the final byte of every signature this engine
// checks.
type sigHashType byte

const (
	SigHashAll    sigHashType = 0x1
	SigHashNone   sigHashType = 0x2
	SigHashSingle sigHashType = 0x3

	SigHashAnyOneCanPay sigHashType = 0x80
)

func (t sigHashType) baseType() sigHashType {
	return t & (^SigHashAnyOneCanPay)
}

func (t sigHashType) isAnyOneCanPay() bool {
	return t&SigHashAnyOneCanPay != 0
}
