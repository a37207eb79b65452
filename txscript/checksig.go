// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"crypto/sha1" //nolint:gosec // OP_SHA1 is a legacy consensus opcode, not used for security

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/corvidlabs/bitspv/crypto"
)

func sha1Sum(b []byte) []byte {
	h := sha1.Sum(b) //nolint:gosec
	return h[:]
}

// verifySignature validates a single (sig, pubKey) pair against subscript,
// enforcing strict DER and low-S before ever reaching the elliptic-curve
// math.
func (e *Engine) verifySignature(rawSig, pubKeyBytes, subscript []byte) (bool, error) {
	if len(rawSig) == 0 {
		return false, nil
	}
	hashType := sigHashType(rawSig[len(rawSig)-1])
	der := rawSig[:len(rawSig)-1]

	if err := checkSignatureEncoding(der); err != nil {
		return false, err
	}

	pubKey, err := btcec.ParsePubKey(pubKeyBytes)
	if err != nil {
		return false, scriptError(ErrPubKeyFormat, "invalid public key encoding")
	}

	// Legacy FindAndDelete: a redeem script that happens to embed the
	// signature must be hashed without it.
	subscript = removeSignature(subscript, rawSig)

	sigHash, err := CalcSignatureHash(subscript, hashType, e.tx, e.txIdx)
	if err != nil {
		return false, err
	}

	return crypto.Verify(pubKey, sigHash[:], der), nil
}

func (e *Engine) execCheckSig(op byte) error {
	pubKeyBytes, err := e.stack.PopByteArray()
	if err != nil {
		return err
	}
	sig, err := e.stack.PopByteArray()
	if err != nil {
		return err
	}

	ok, err := e.verifySignature(sig, pubKeyBytes, e.subscript)
	if err != nil {
		return err
	}

	if op == OP_CHECKSIGVERIFY {
		if !ok {
			return scriptError(ErrVerify, "OP_CHECKSIGVERIFY failed")
		}
		return nil
	}
	e.stack.PushBool(ok)
	return nil
}

// execCheckMultiSig implements OP_CHECKMULTISIG/VERIFY: m-of-n verification
// against signatures supplied in order, each matched greedily against the
// remaining public keys (signatures need not match every key, but their
// relative order must follow the key order). It also consumes Bitcoin's
// well-known extra off-by-one stack item.
func (e *Engine) execCheckMultiSig(op byte) error {
	nKeys, err := e.stack.PopInt(e.minimalData())
	if err != nil {
		return err
	}
	if nKeys < 0 || nKeys > 20 {
		return scriptError(ErrNumberTooBig, "public key count out of range")
	}

	pubKeys := make([][]byte, nKeys)
	for i := int(nKeys) - 1; i >= 0; i-- {
		pubKeys[i], err = e.stack.PopByteArray()
		if err != nil {
			return err
		}
	}

	mSigs, err := e.stack.PopInt(e.minimalData())
	if err != nil {
		return err
	}
	if mSigs < 0 || mSigs > nKeys {
		return scriptError(ErrNumberTooBig, "signature count out of range")
	}

	sigs := make([][]byte, mSigs)
	for i := int(mSigs) - 1; i >= 0; i-- {
		sigs[i], err = e.stack.PopByteArray()
		if err != nil {
			return err
		}
	}

	// Historical off-by-one: CHECKMULTISIG pops one extra (unused) item.
	if _, err := e.stack.PopByteArray(); err != nil {
		return err
	}

	success := true
	sigIdx, keyIdx := 0, 0
	for sigIdx < len(sigs) {
		if keyIdx >= len(pubKeys) {
			success = false
			break
		}
		ok, err := e.verifySignature(sigs[sigIdx], pubKeys[keyIdx], e.subscript)
		if err != nil {
			// A malformed signature/key fails the whole multisig check
			// rather than aborting script execution, matching consensus
			// behavior for CHECKMULTISIG specifically.
			success = false
			break
		}
		if ok {
			sigIdx++
		}
		keyIdx++
		if len(sigs)-sigIdx > len(pubKeys)-keyIdx {
			success = false
			break
		}
	}

	if op == OP_CHECKMULTISIGVERIFY {
		if !success {
			return scriptError(ErrVerify, "OP_CHECKMULTISIGVERIFY failed")
		}
		return nil
	}
	e.stack.PushBool(success)
	return nil
}
