// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"

	"github.com/corvidlabs/bitspv/chainhash"
	"github.com/corvidlabs/bitspv/codec"
	"github.com/corvidlabs/bitspv/crypto"
	"github.com/corvidlabs/bitspv/wire"
)

// removeOpcode returns script with every occurrence of the literal opcode
// op stripped, used to remove OP_CODESEPARATOR from a subscript before
// hashing.
func removeOpcode(script []byte, op byte) []byte {
	ops, err := parseScript(script)
	if err != nil {
		return script
	}
	var out []byte
	for _, o := range ops {
		if o.opcode == op && o.data == nil {
			continue
		}
		out = append(out, serializeOp(o)...)
	}
	return out
}

// removeSignature strips every literal occurrence of sig (as a pushed data
// element) from script, the legacy FindAndDelete step OP_CODESEPARATOR-free
// scripts still require for P2SH redeem scripts embedding the signature.
func removeSignature(script, sig []byte) []byte {
	ops, err := parseScript(script)
	if err != nil {
		return script
	}
	var out []byte
	for _, o := range ops {
		if o.data != nil && bytes.Equal(o.data, sig) {
			continue
		}
		out = append(out, serializeOp(o)...)
	}
	return out
}

func serializeOp(o parsedOpcode) []byte {
	if o.data == nil {
		return []byte{o.opcode}
	}
	var buf bytes.Buffer
	switch {
	case o.opcode <= OP_DATA_75:
		buf.WriteByte(byte(len(o.data)))
	case o.opcode == OP_PUSHDATA1:
		buf.WriteByte(OP_PUSHDATA1)
		buf.WriteByte(byte(len(o.data)))
	case o.opcode == OP_PUSHDATA2:
		buf.WriteByte(OP_PUSHDATA2)
		buf.WriteByte(byte(len(o.data)))
		buf.WriteByte(byte(len(o.data) >> 8))
	case o.opcode == OP_PUSHDATA4:
		buf.WriteByte(OP_PUSHDATA4)
		for i := 0; i < 4; i++ {
			buf.WriteByte(byte(len(o.data) >> uint(8*i)))
		}
	}
	buf.Write(o.data)
	return buf.Bytes()
}

// CalcSignatureHash computes the legacy sighash digest for input idx of tx,
// given the (CODESEPARATOR-trimmed) subscript of the output it spends:
// blank every other input's script, optionally drop/tweak outputs per
// hashType, append the hashType as a little-endian uint32, serialize, and
// double-SHA-256 the result.
func CalcSignatureHash(subscript []byte, hashType sigHashType, tx *wire.MsgTx, idx int) (chainhash.Hash256, error) {
	if idx >= len(tx.TxIn) {
		return chainhash.Hash256{}, scriptError(ErrInvalidIndex, "input index out of range for sighash")
	}

	subscript = removeOpcode(subscript, OP_CODESEPARATOR)

	txCopy := tx.Copy()

	if hashType.baseType() == SigHashNone {
		txCopy.TxOut = nil
		for i := range txCopy.TxIn {
			if i != idx {
				txCopy.TxIn[i].Sequence = 0
			}
		}
	} else if hashType.baseType() == SigHashSingle {
		if idx >= len(txCopy.TxOut) {
			// Historical bug-for-bug behavior: SIGHASH_SINGLE with no
			// corresponding output hashes the value 1 rather than
			// erroring. Out of scope for this wallet-facing engine; we
			// reject it explicitly instead of reproducing the bug.
			return chainhash.Hash256{}, scriptError(ErrInvalidIndex, "SIGHASH_SINGLE index out of range")
		}
		txCopy.TxOut = txCopy.TxOut[:idx+1]
		for i := 0; i < idx; i++ {
			txCopy.TxOut[i] = &wire.TxOut{Value: -1, PkScript: nil}
		}
		for i := range txCopy.TxIn {
			if i != idx {
				txCopy.TxIn[i].Sequence = 0
			}
		}
	}

	if hashType.isAnyOneCanPay() {
		txCopy.TxIn = []*wire.TxIn{txCopy.TxIn[idx]}
		idx = 0
	}

	for i := range txCopy.TxIn {
		if i == idx {
			txCopy.TxIn[i].SignatureScript = subscript
		} else {
			txCopy.TxIn[i].SignatureScript = nil
		}
	}

	var buf bytes.Buffer
	if err := txCopy.Serialize(&buf); err != nil {
		return chainhash.Hash256{}, err
	}
	if err := codec.WriteUint32LE(&buf, uint32(hashType)); err != nil {
		return chainhash.Hash256{}, err
	}

	return crypto.DoubleSha256(buf.Bytes()), nil
}
