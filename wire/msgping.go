// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"

	"github.com/corvidlabs/bitspv/codec"
)

// MsgPing is a keepalive probe. Since BIP0031Version it carries a nonce
// that the receiver must echo back in a pong.
type MsgPing struct {
	Nonce uint64
}

func (m *MsgPing) Command() string                    { return CmdPing }
func (m *MsgPing) MaxPayloadLength(pver uint32) uint32 { return 8 }

func (m *MsgPing) BtcEncode(w io.Writer, pver uint32) error {
	return codec.WriteUint64LE(w, m.Nonce)
}

func (m *MsgPing) BtcDecode(r io.Reader, pver uint32) error {
	nonce, err := codec.ReadUint64LE(r)
	if err != nil {
		return err
	}
	m.Nonce = nonce
	return nil
}

// MsgPong answers a MsgPing, echoing its nonce.
type MsgPong struct {
	Nonce uint64
}

func (m *MsgPong) Command() string                    { return CmdPong }
func (m *MsgPong) MaxPayloadLength(pver uint32) uint32 { return 8 }

func (m *MsgPong) BtcEncode(w io.Writer, pver uint32) error {
	return codec.WriteUint64LE(w, m.Nonce)
}

func (m *MsgPong) BtcDecode(r io.Reader, pver uint32) error {
	nonce, err := codec.ReadUint64LE(r)
	if err != nil {
		return err
	}
	m.Nonce = nonce
	return nil
}
