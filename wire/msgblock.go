// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// MsgBlockWire is the wire envelope wrapper for MsgBlock; the underlying
// type already knows its own serialization, so this just satisfies the
// Message interface and names the command.
type MsgBlockWire struct {
	MsgBlock
}

func (m *MsgBlockWire) Command() string { return CmdBlock }

func (m *MsgBlockWire) MaxPayloadLength(pver uint32) uint32 {
	return MaxBlockPayload
}

func (m *MsgBlockWire) BtcEncode(w io.Writer, pver uint32) error {
	return m.MsgBlock.Serialize(w)
}

func (m *MsgBlockWire) BtcDecode(r io.Reader, pver uint32) error {
	return m.MsgBlock.Deserialize(r)
}

// MaxBlockPayload is the maximum size, in bytes, a block message's payload
// may declare.
const MaxBlockPayload = 4 * 1024 * 1024

// MsgTxWire is the wire envelope wrapper for MsgTx.
type MsgTxWire struct {
	MsgTx
}

func (m *MsgTxWire) Command() string { return CmdTx }

func (m *MsgTxWire) MaxPayloadLength(pver uint32) uint32 {
	return MaxBlockPayload
}

func (m *MsgTxWire) BtcEncode(w io.Writer, pver uint32) error {
	return m.MsgTx.Serialize(w)
}

func (m *MsgTxWire) BtcDecode(r io.Reader, pver uint32) error {
	return m.MsgTx.Deserialize(r)
}
