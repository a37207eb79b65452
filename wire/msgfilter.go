// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"

	"github.com/corvidlabs/bitspv/codec"
)

// BloomUpdateType controls how a matched output updates a peer's bloom
// filter, per BIP-37.
type BloomUpdateType uint8

const (
	BloomUpdateNone BloomUpdateType = iota
	BloomUpdateAll
	BloomUpdateP2PubkeyOnly
)

// MaxFilterLoadDataSize is the maximum size, in bytes, of a filterload
// message's filter bytes.
const MaxFilterLoadDataSize = 36000

// MaxFilterAddDataSize is the maximum size, in bytes, of a filteradd
// message's element.
const MaxFilterAddDataSize = 520

// MsgFilterLoad installs a bloom filter on a connection.
type MsgFilterLoad struct {
	Filter    []byte
	HashFuncs uint32
	Tweak     uint32
	Flags     BloomUpdateType
}

func (m *MsgFilterLoad) Command() string { return CmdFilterLoad }

func (m *MsgFilterLoad) MaxPayloadLength(pver uint32) uint32 {
	return uint32(9 + MaxFilterLoadDataSize + 9)
}

func (m *MsgFilterLoad) BtcEncode(w io.Writer, pver uint32) error {
	if err := codec.WriteVarBytes(w, m.Filter); err != nil {
		return err
	}
	if err := codec.WriteUint32LE(w, m.HashFuncs); err != nil {
		return err
	}
	if err := codec.WriteUint32LE(w, m.Tweak); err != nil {
		return err
	}
	return codec.WriteUint8(w, uint8(m.Flags))
}

func (m *MsgFilterLoad) BtcDecode(r io.Reader, pver uint32) error {
	filter, err := codec.ReadVarBytes(r, MaxFilterLoadDataSize)
	if err != nil {
		return err
	}
	m.Filter = filter

	hashFuncs, err := codec.ReadUint32LE(r)
	if err != nil {
		return err
	}
	m.HashFuncs = hashFuncs

	tweak, err := codec.ReadUint32LE(r)
	if err != nil {
		return err
	}
	m.Tweak = tweak

	flags, err := codec.ReadUint8(r)
	if err != nil {
		return err
	}
	m.Flags = BloomUpdateType(flags)
	return nil
}

// MsgFilterAdd adds a single element to an already-installed bloom filter.
type MsgFilterAdd struct {
	Data []byte
}

func (m *MsgFilterAdd) Command() string { return CmdFilterAdd }

func (m *MsgFilterAdd) MaxPayloadLength(pver uint32) uint32 {
	return 9 + MaxFilterAddDataSize
}

func (m *MsgFilterAdd) BtcEncode(w io.Writer, pver uint32) error {
	return codec.WriteVarBytes(w, m.Data)
}

func (m *MsgFilterAdd) BtcDecode(r io.Reader, pver uint32) error {
	data, err := codec.ReadVarBytes(r, MaxFilterAddDataSize)
	if err != nil {
		return err
	}
	m.Data = data
	return nil
}

// MsgFilterClear removes an installed bloom filter, reverting the
// connection to unfiltered relay.
type MsgFilterClear struct{}

func (m *MsgFilterClear) Command() string                   { return CmdFilterClear }
func (m *MsgFilterClear) MaxPayloadLength(pver uint32) uint32 { return 0 }
func (m *MsgFilterClear) BtcEncode(w io.Writer, pver uint32) error { return nil }
func (m *MsgFilterClear) BtcDecode(r io.Reader, pver uint32) error { return nil }

// MsgMemPool requests a peer's mempool transaction ids as an inv message.
type MsgMemPool struct{}

func (m *MsgMemPool) Command() string                   { return CmdMemPool }
func (m *MsgMemPool) MaxPayloadLength(pver uint32) uint32 { return 0 }
func (m *MsgMemPool) BtcEncode(w io.Writer, pver uint32) error { return nil }
func (m *MsgMemPool) BtcDecode(r io.Reader, pver uint32) error { return nil }
