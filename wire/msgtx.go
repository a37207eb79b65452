// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"io"

	"github.com/btcsuite/btcd/btcutil"

	"github.com/corvidlabs/bitspv/chainhash"
	"github.com/corvidlabs/bitspv/codec"
)

// MaxTxInSequenceNum is the maximum sequence number an input can have,
// meaning lock time (and opt-in RBF signaling) is disabled for it.
const MaxTxInSequenceNum uint32 = 0xffffffff

// MaxTxRelaySize is the maximum serialized (non-witness) size in bytes a
// transaction may have to be eligible for relay.
const MaxTxRelaySize = 100_000

// TxIn is a transaction input: the outpoint it spends, its unlocking
// script, and its sequence number.
type TxIn struct {
	PreviousOutPoint OutPoint
	SignatureScript  []byte
	Sequence         uint32
}

// TxOut is a transaction output: a value and the script that locks it.
type TxOut struct {
	Value    btcutil.Amount
	PkScript []byte
}

// MsgTx is a Bitcoin transaction exactly as serialized on the wire and
// hashed for its id. Segwit witness data (not modeled here; the wallet
// only issues legacy and P2SH scripts) is
// deliberately absent so that Serialize always produces the txid-defining
// encoding.
type MsgTx struct {
	Version  int32
	TxIn     []*TxIn
	TxOut    []*TxOut
	LockTime uint32
}

// NewMsgTx returns a new transaction with no inputs or outputs.
func NewMsgTx(version int32) *MsgTx {
	return &MsgTx{Version: version}
}

// AddTxIn appends an input.
func (m *MsgTx) AddTxIn(ti *TxIn) { m.TxIn = append(m.TxIn, ti) }

// AddTxOut appends an output.
func (m *MsgTx) AddTxOut(to *TxOut) { m.TxOut = append(m.TxOut, to) }

// Copy returns a deep copy of the transaction, safe to mutate
// independently (the script engine's sighash computation relies on it).
func (m *MsgTx) Copy() *MsgTx {
	out := &MsgTx{
		Version:  m.Version,
		LockTime: m.LockTime,
		TxIn:     make([]*TxIn, len(m.TxIn)),
		TxOut:    make([]*TxOut, len(m.TxOut)),
	}
	for i, in := range m.TxIn {
		script := make([]byte, len(in.SignatureScript))
		copy(script, in.SignatureScript)
		out.TxIn[i] = &TxIn{
			PreviousOutPoint: in.PreviousOutPoint,
			SignatureScript:  script,
			Sequence:         in.Sequence,
		}
	}
	for i, o := range m.TxOut {
		script := make([]byte, len(o.PkScript))
		copy(script, o.PkScript)
		out.TxOut[i] = &TxOut{Value: o.Value, PkScript: script}
	}
	return out
}

// Serialize writes the canonical non-witness encoding of the transaction,
// the encoding used both for the txid hash and for relay.
func (m *MsgTx) Serialize(w io.Writer) error {
	if err := codec.WriteInt32LE(w, m.Version); err != nil {
		return err
	}
	err := codec.WriteVarIntList(w, len(m.TxIn), func(w io.Writer, i int) error {
		in := m.TxIn[i]
		if err := writeOutPoint(w, &in.PreviousOutPoint); err != nil {
			return err
		}
		if err := codec.WriteVarBytes(w, in.SignatureScript); err != nil {
			return err
		}
		return codec.WriteUint32LE(w, in.Sequence)
	})
	if err != nil {
		return err
	}
	err = codec.WriteVarIntList(w, len(m.TxOut), func(w io.Writer, i int) error {
		out := m.TxOut[i]
		if err := codec.WriteInt64LE(w, int64(out.Value)); err != nil {
			return err
		}
		return codec.WriteVarBytes(w, out.PkScript)
	})
	if err != nil {
		return err
	}
	return codec.WriteUint32LE(w, m.LockTime)
}

// Deserialize parses a transaction written by Serialize.
func (m *MsgTx) Deserialize(r io.Reader) error {
	version, err := codec.ReadInt32LE(r)
	if err != nil {
		return err
	}
	m.Version = version

	_, err = codec.ReadVarIntList(r, 1<<24, func(r io.Reader, i int) error {
		in := &TxIn{}
		if err := readOutPoint(r, &in.PreviousOutPoint); err != nil {
			return err
		}
		script, err := codec.ReadVarBytes(r, MaxTxRelaySize)
		if err != nil {
			return err
		}
		in.SignatureScript = script
		seq, err := codec.ReadUint32LE(r)
		if err != nil {
			return err
		}
		in.Sequence = seq
		m.TxIn = append(m.TxIn, in)
		return nil
	})
	if err != nil {
		return err
	}

	_, err = codec.ReadVarIntList(r, 1<<24, func(r io.Reader, i int) error {
		out := &TxOut{}
		v, err := codec.ReadInt64LE(r)
		if err != nil {
			return err
		}
		out.Value = btcutil.Amount(v)
		script, err := codec.ReadVarBytes(r, MaxTxRelaySize)
		if err != nil {
			return err
		}
		out.PkScript = script
		m.TxOut = append(m.TxOut, out)
		return nil
	})
	if err != nil {
		return err
	}

	lockTime, err := codec.ReadUint32LE(r)
	if err != nil {
		return err
	}
	m.LockTime = lockTime
	return nil
}

// SerializeSize returns the number of bytes Serialize would write.
func (m *MsgTx) SerializeSize() int {
	var buf bytes.Buffer
	_ = m.Serialize(&buf)
	return buf.Len()
}

// TxHash computes the transaction id: double-SHA-256 of the canonical
// (non-witness) serialization.
func (m *MsgTx) TxHash() chainhash.Hash256 {
	var buf bytes.Buffer
	_ = m.Serialize(&buf)
	return chainhash.DoubleHashH(buf.Bytes())
}

// IsCoinBase reports whether the transaction is the genesis/coinbase form:
// exactly one input referencing the null outpoint.
func (m *MsgTx) IsCoinBase() bool {
	return len(m.TxIn) == 1 && m.TxIn[0].PreviousOutPoint.IsGenesisCoinbase()
}
