// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"

	"github.com/corvidlabs/bitspv/chainhash"
)

// ScriptClass identifies one of the standard script templates this package recognizes.
type ScriptClass int

const (
	NonStandardTy ScriptClass = iota
	PubKeyHashTy
	PubKeyTy
	ScriptHashTy
	MultiSigTy
	WitnessV0PubKeyHashTy
	WitnessV0ScriptHashTy
)

func (c ScriptClass) String() string {
	switch c {
	case PubKeyHashTy:
		return "pubkeyhash"
	case PubKeyTy:
		return "pubkey"
	case ScriptHashTy:
		return "scripthash"
	case MultiSigTy:
		return "multisig"
	case WitnessV0PubKeyHashTy:
		return "witness_v0_keyhash"
	case WitnessV0ScriptHashTy:
		return "witness_v0_scripthash"
	default:
		return "nonstandard"
	}
}

// isScriptHashTemplate reports whether script is exactly
// OP_HASH160 <20 bytes> OP_EQUAL.
func isScriptHashTemplate(script []byte) bool {
	ops, err := parseScript(script)
	if err != nil || len(ops) != 3 {
		return false
	}
	return ops[0].opcode == OP_HASH160 &&
		ops[1].opcode == OP_DATA_20 &&
		len(ops[1].data) == 20 &&
		ops[2].opcode == OP_EQUAL
}

// ClassifyScript identifies which standard template, if any, script
// matches.
func ClassifyScript(script []byte) ScriptClass {
	if isPubKeyHashScript(script) {
		return PubKeyHashTy
	}
	if isPubKeyScript(script) {
		return PubKeyTy
	}
	if isScriptHashTemplate(script) {
		return ScriptHashTy
	}
	if isMultiSigScript(script) {
		return MultiSigTy
	}
	if prog := witnessProgram(script); prog != nil {
		switch len(prog) {
		case 20:
			return WitnessV0PubKeyHashTy
		case 32:
			return WitnessV0ScriptHashTy
		}
	}
	return NonStandardTy
}

// witnessProgram returns the 2-to-40-byte program of a version-0 witness
// output (OP_0 followed by a single direct push), or nil when script is
// not one.
func witnessProgram(script []byte) []byte {
	if len(script) < 4 || script[0] != OP_0 {
		return nil
	}
	progLen := int(script[1])
	if progLen < 2 || progLen > 40 || len(script) != 2+progLen {
		return nil
	}
	return script[2:]
}

func isPubKeyHashScript(script []byte) bool {
	ops, err := parseScript(script)
	if err != nil || len(ops) != 5 {
		return false
	}
	return ops[0].opcode == OP_DUP &&
		ops[1].opcode == OP_HASH160 &&
		ops[2].opcode == OP_DATA_20 && len(ops[2].data) == 20 &&
		ops[3].opcode == OP_EQUALVERIFY &&
		ops[4].opcode == OP_CHECKSIG
}

func isPubKeyScript(script []byte) bool {
	ops, err := parseScript(script)
	if err != nil || len(ops) != 2 {
		return false
	}
	n := len(ops[0].data)
	return (n == 33 || n == 65) && ops[1].opcode == OP_CHECKSIG
}

func isMultiSigScript(script []byte) bool {
	ops, err := parseScript(script)
	if err != nil || len(ops) < 4 {
		return false
	}
	m, ok := smallIntValue(ops[0].opcode)
	if !ok {
		return false
	}
	last := ops[len(ops)-1]
	if last.opcode != OP_CHECKMULTISIG {
		return false
	}
	n, ok := smallIntValue(ops[len(ops)-2].opcode)
	if !ok {
		return false
	}
	numKeys := len(ops) - 3
	if numKeys != n || m > n {
		return false
	}
	for _, op := range ops[1 : 1+numKeys] {
		pl := len(op.data)
		if pl != 33 && pl != 65 {
			return false
		}
	}
	return true
}

func smallIntValue(op byte) (int, bool) {
	if op == OP_0 {
		return 0, true
	}
	if op >= OP_1 && op <= OP_16 {
		return int(op-OP_1) + 1, true
	}
	return 0, false
}

// PayToPubKeyHashScript synthesizes a P2PKH script_pubkey for the given
// 20-byte public key hash.
func PayToPubKeyHashScript(pkHash chainhash.Hash160) []byte {
	var buf bytes.Buffer
	buf.WriteByte(OP_DUP)
	buf.WriteByte(OP_HASH160)
	buf.WriteByte(OP_DATA_20)
	buf.Write(pkHash[:])
	buf.WriteByte(OP_EQUALVERIFY)
	buf.WriteByte(OP_CHECKSIG)
	return buf.Bytes()
}

// PayToScriptHashScript synthesizes a P2SH script_pubkey for the given
// 20-byte redeem script hash.
func PayToScriptHashScript(scriptHash chainhash.Hash160) []byte {
	var buf bytes.Buffer
	buf.WriteByte(OP_HASH160)
	buf.WriteByte(OP_DATA_20)
	buf.Write(scriptHash[:])
	buf.WriteByte(OP_EQUAL)
	return buf.Bytes()
}

// PayToPubKeyScript synthesizes a bare P2PK script_pubkey.
func PayToPubKeyScript(pubKey []byte) []byte {
	var buf bytes.Buffer
	buf.WriteByte(byte(len(pubKey)))
	buf.Write(pubKey)
	buf.WriteByte(OP_CHECKSIG)
	return buf.Bytes()
}

// MultiSigScript synthesizes an m-of-n bare multisig script_pubkey.
func MultiSigScript(m int, pubKeys [][]byte) ([]byte, error) {
	if m <= 0 || m > len(pubKeys) || len(pubKeys) > 16 {
		return nil, scriptError(ErrNumberTooBig, "invalid multisig threshold")
	}
	var buf bytes.Buffer
	buf.WriteByte(OP_1 + byte(m-1))
	for _, pk := range pubKeys {
		buf.WriteByte(byte(len(pk)))
		buf.Write(pk)
	}
	buf.WriteByte(OP_1 + byte(len(pubKeys)-1))
	buf.WriteByte(OP_CHECKMULTISIG)
	return buf.Bytes(), nil
}

// ExtractPubKeyHash returns the 20-byte hash embedded in a P2PKH script, or
// nil if script doesn't match that template.
func ExtractPubKeyHash(script []byte) *chainhash.Hash160 {
	if !isPubKeyHashScript(script) {
		return nil
	}
	ops, _ := parseScript(script)
	var h chainhash.Hash160
	copy(h[:], ops[2].data)
	return &h
}

// ExtractScriptHash returns the 20-byte hash embedded in a P2SH script, or
// nil if script doesn't match that template.
func ExtractScriptHash(script []byte) *chainhash.Hash160 {
	if !isScriptHashTemplate(script) {
		return nil
	}
	ops, _ := parseScript(script)
	var h chainhash.Hash160
	copy(h[:], ops[1].data)
	return &h
}
