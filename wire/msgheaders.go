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

// MaxBlockHeadersPerMsg is the maximum number of headers a single headers
// message may carry.
const MaxBlockHeadersPerMsg = 2000

// MsgHeaders carries block headers without their transactions, answering a
// getheaders request during chain sync.
type MsgHeaders struct {
	Headers []*BlockHeader
}

func NewMsgHeaders() *MsgHeaders { return &MsgHeaders{} }

func (m *MsgHeaders) AddBlockHeader(h *BlockHeader) error {
	if len(m.Headers)+1 > MaxBlockHeadersPerMsg {
		return &ProtocolError{Reason: "headers message exceeds MaxBlockHeadersPerMsg"}
	}
	m.Headers = append(m.Headers, h)
	return nil
}

func (m *MsgHeaders) Command() string { return CmdHeaders }

func (m *MsgHeaders) MaxPayloadLength(pver uint32) uint32 {
	return 9 + MaxBlockHeadersPerMsg*(BlockHeaderLen+1)
}

func (m *MsgHeaders) BtcEncode(w io.Writer, pver uint32) error {
	return codec.WriteVarIntList(w, len(m.Headers), func(w io.Writer, i int) error {
		if err := m.Headers[i].Serialize(w); err != nil {
			return err
		}
		// A zero tx-count trails every header, matching the upstream
		// wire quirk that headers messages share the block encoding.
		return codec.WriteVarInt(w, 0)
	})
}

func (m *MsgHeaders) BtcDecode(r io.Reader, pver uint32) error {
	_, err := codec.ReadVarIntList(r, MaxBlockHeadersPerMsg, func(r io.Reader, i int) error {
		h := &BlockHeader{}
		if err := h.Deserialize(r); err != nil {
			return err
		}
		txCount, err := codec.ReadVarInt(r)
		if err != nil {
			return err
		}
		if txCount != 0 {
			return &ProtocolError{Reason: "headers entry carries a non-zero tx count"}
		}
		m.Headers = append(m.Headers, h)
		return nil
	})
	return err
}

// MaxBlockLocatorsPerMsg bounds the hash list a getheaders/getblocks
// request may carry.
const MaxBlockLocatorsPerMsg = 500

// BlockLocator is a sparse list of block hashes, in decreasing height
// order with exponential back-off, describing where a peer's chain view
// currently is.
type BlockLocator []*chainhash.Hash256

// MsgGetHeaders requests headers from the peer's best chain starting
// after the first locator hash it recognizes.
type MsgGetHeaders struct {
	ProtocolVersion uint32
	BlockLocatorHashes BlockLocator
	HashStop           chainhash.Hash256
}

func (m *MsgGetHeaders) Command() string { return CmdGetHeaders }

func (m *MsgGetHeaders) MaxPayloadLength(pver uint32) uint32 {
	return 4 + 9 + MaxBlockLocatorsPerMsg*32 + 32
}

func (m *MsgGetHeaders) BtcEncode(w io.Writer, pver uint32) error {
	if err := codec.WriteUint32LE(w, m.ProtocolVersion); err != nil {
		return err
	}
	if err := codec.WriteVarIntList(w, len(m.BlockLocatorHashes), func(w io.Writer, i int) error {
		return codec.WriteFixedBytes(w, m.BlockLocatorHashes[i][:])
	}); err != nil {
		return err
	}
	return codec.WriteFixedBytes(w, m.HashStop[:])
}

func (m *MsgGetHeaders) BtcDecode(r io.Reader, pver uint32) error {
	protoVer, err := codec.ReadUint32LE(r)
	if err != nil {
		return err
	}
	m.ProtocolVersion = protoVer

	_, err = codec.ReadVarIntList(r, MaxBlockLocatorsPerMsg, func(r io.Reader, i int) error {
		var h chainhash.Hash256
		if err := codec.ReadFixedBytes(r, h[:]); err != nil {
			return err
		}
		m.BlockLocatorHashes = append(m.BlockLocatorHashes, &h)
		return nil
	})
	if err != nil {
		return err
	}

	return codec.ReadFixedBytes(r, m.HashStop[:])
}

// MsgGetBlocks requests inv announcements (not headers) for the peer's
// best chain. This client decodes it when received but syncs with
// getheaders and never sends it.
type MsgGetBlocks struct {
	ProtocolVersion    uint32
	BlockLocatorHashes BlockLocator
	HashStop           chainhash.Hash256
}

func (m *MsgGetBlocks) Command() string { return CmdGetBlocks }

func (m *MsgGetBlocks) MaxPayloadLength(pver uint32) uint32 {
	return 4 + 9 + MaxBlockLocatorsPerMsg*32 + 32
}

func (m *MsgGetBlocks) BtcEncode(w io.Writer, pver uint32) error {
	if err := codec.WriteUint32LE(w, m.ProtocolVersion); err != nil {
		return err
	}
	if err := codec.WriteVarIntList(w, len(m.BlockLocatorHashes), func(w io.Writer, i int) error {
		return codec.WriteFixedBytes(w, m.BlockLocatorHashes[i][:])
	}); err != nil {
		return err
	}
	return codec.WriteFixedBytes(w, m.HashStop[:])
}

func (m *MsgGetBlocks) BtcDecode(r io.Reader, pver uint32) error {
	protoVer, err := codec.ReadUint32LE(r)
	if err != nil {
		return err
	}
	m.ProtocolVersion = protoVer

	_, err = codec.ReadVarIntList(r, MaxBlockLocatorsPerMsg, func(r io.Reader, i int) error {
		var h chainhash.Hash256
		if err := codec.ReadFixedBytes(r, h[:]); err != nil {
			return err
		}
		m.BlockLocatorHashes = append(m.BlockLocatorHashes, &h)
		return nil
	})
	if err != nil {
		return err
	}

	return codec.ReadFixedBytes(r, m.HashStop[:])
}
