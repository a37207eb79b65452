// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"io"
	"time"

	"github.com/corvidlabs/bitspv/chainhash"
	"github.com/corvidlabs/bitspv/codec"
)

// BlockHeaderLen is the fixed serialized size of a BlockHeader in bytes.
const BlockHeaderLen = 80

// BlockHeader is the fixed 80-byte block header, always
// serialized and hashed field-by-field in this order.
type BlockHeader struct {
	Version    int32
	PrevBlock  chainhash.Hash256
	MerkleRoot chainhash.Hash256
	Timestamp  time.Time
	Bits       uint32
	Nonce      uint32
}

// Serialize writes the 80-byte canonical encoding.
func (h *BlockHeader) Serialize(w io.Writer) error {
	if err := codec.WriteInt32LE(w, h.Version); err != nil {
		return err
	}
	if err := codec.WriteFixedBytes(w, h.PrevBlock[:]); err != nil {
		return err
	}
	if err := codec.WriteFixedBytes(w, h.MerkleRoot[:]); err != nil {
		return err
	}
	if err := codec.WriteUint32LE(w, uint32(h.Timestamp.Unix())); err != nil {
		return err
	}
	if err := codec.WriteUint32LE(w, h.Bits); err != nil {
		return err
	}
	return codec.WriteUint32LE(w, h.Nonce)
}

// Deserialize parses an 80-byte header written by Serialize.
func (h *BlockHeader) Deserialize(r io.Reader) error {
	version, err := codec.ReadInt32LE(r)
	if err != nil {
		return err
	}
	h.Version = version

	if err := codec.ReadFixedBytes(r, h.PrevBlock[:]); err != nil {
		return err
	}
	if err := codec.ReadFixedBytes(r, h.MerkleRoot[:]); err != nil {
		return err
	}

	ts, err := codec.ReadUint32LE(r)
	if err != nil {
		return err
	}
	h.Timestamp = time.Unix(int64(ts), 0).UTC()

	bits, err := codec.ReadUint32LE(r)
	if err != nil {
		return err
	}
	h.Bits = bits

	nonce, err := codec.ReadUint32LE(r)
	if err != nil {
		return err
	}
	h.Nonce = nonce
	return nil
}

// Bytes returns the 80-byte serialized header.
func (h *BlockHeader) Bytes() []byte {
	var buf bytes.Buffer
	buf.Grow(BlockHeaderLen)
	_ = h.Serialize(&buf)
	return buf.Bytes()
}

// BlockHash computes the block identifier: double-SHA-256 of the 80-byte
// serialization.
func (h *BlockHeader) BlockHash() chainhash.Hash256 {
	return chainhash.DoubleHashH(h.Bytes())
}

// MsgBlock is a full block: header plus its transactions. This client never
// validates transaction bodies against the UTXO set;
// it uses MsgBlock only to recompute and check the Merkle root and to feed
// transactions to the wallet.
type MsgBlock struct {
	Header       BlockHeader
	Transactions []*MsgTx
}

// Serialize writes header || varint count || each transaction.
func (b *MsgBlock) Serialize(w io.Writer) error {
	if err := b.Header.Serialize(w); err != nil {
		return err
	}
	return codec.WriteVarIntList(w, len(b.Transactions), func(w io.Writer, i int) error {
		return b.Transactions[i].Serialize(w)
	})
}

// Deserialize parses a block written by Serialize.
func (b *MsgBlock) Deserialize(r io.Reader) error {
	if err := b.Header.Deserialize(r); err != nil {
		return err
	}
	_, err := codec.ReadVarIntList(r, 1<<24, func(r io.Reader, i int) error {
		tx := &MsgTx{}
		if err := tx.Deserialize(r); err != nil {
			return err
		}
		b.Transactions = append(b.Transactions, tx)
		return nil
	})
	return err
}
