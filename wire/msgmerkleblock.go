// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"

	"github.com/corvidlabs/bitspv/chainhash"
	"github.com/corvidlabs/bitspv/codec"
)

// MsgMerkleBlock carries a block header plus a partial Merkle tree proving
// which transactions matched a peer's bloom filter, per BIP-37. The
// bloom package builds and verifies the partial tree; this type only knows
// how to move the bytes.
type MsgMerkleBlock struct {
	Header       BlockHeader
	Transactions uint32
	Hashes       []*chainhash.Hash256
	Flags        []byte
}

func (m *MsgMerkleBlock) Command() string { return CmdMerkleBlock }

func (m *MsgMerkleBlock) MaxPayloadLength(pver uint32) uint32 {
	return MaxBlockPayload
}

func (m *MsgMerkleBlock) BtcEncode(w io.Writer, pver uint32) error {
	if err := m.Header.Serialize(w); err != nil {
		return err
	}
	if err := codec.WriteUint32LE(w, m.Transactions); err != nil {
		return err
	}
	if err := codec.WriteVarIntList(w, len(m.Hashes), func(w io.Writer, i int) error {
		return codec.WriteFixedBytes(w, m.Hashes[i][:])
	}); err != nil {
		return err
	}
	return codec.WriteVarBytes(w, m.Flags)
}

func (m *MsgMerkleBlock) BtcDecode(r io.Reader, pver uint32) error {
	if err := m.Header.Deserialize(r); err != nil {
		return err
	}
	txCount, err := codec.ReadUint32LE(r)
	if err != nil {
		return err
	}
	m.Transactions = txCount

	_, err = codec.ReadVarIntList(r, 1<<20, func(r io.Reader, i int) error {
		var h chainhash.Hash256
		if err := codec.ReadFixedBytes(r, h[:]); err != nil {
			return err
		}
		m.Hashes = append(m.Hashes, &h)
		return nil
	})
	if err != nil {
		return err
	}

	flags, err := codec.ReadVarBytes(r, 1<<20)
	if err != nil {
		return err
	}
	m.Flags = flags
	return nil
}
