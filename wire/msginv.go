// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// MsgInv announces objects a peer has available, by inventory vector.
type MsgInv struct {
	InvList []*InvVect
}

// NewMsgInv returns an empty inventory announcement.
func NewMsgInv() *MsgInv { return &MsgInv{} }

// AddInvVect appends an entry, enforcing the MaxInvPerMsg cap.
func (m *MsgInv) AddInvVect(iv *InvVect) error {
	if len(m.InvList)+1 > MaxInvPerMsg {
		return &ProtocolError{Reason: "inv message exceeds MaxInvPerMsg"}
	}
	m.InvList = append(m.InvList, iv)
	return nil
}

func (m *MsgInv) Command() string { return CmdInv }

func (m *MsgInv) MaxPayloadLength(pver uint32) uint32 {
	return 9 + MaxInvPerMsg*36
}

func (m *MsgInv) BtcEncode(w io.Writer, pver uint32) error {
	return writeInvVectList(w, m.InvList)
}

func (m *MsgInv) BtcDecode(r io.Reader, pver uint32) error {
	list, err := readInvVectList(r, MaxInvPerMsg)
	if err != nil {
		return err
	}
	m.InvList = list
	return nil
}

// MsgGetData requests the full objects named by its inventory vectors.
type MsgGetData struct {
	InvList []*InvVect
}

func NewMsgGetData() *MsgGetData { return &MsgGetData{} }

func (m *MsgGetData) AddInvVect(iv *InvVect) error {
	if len(m.InvList)+1 > MaxInvPerMsg {
		return &ProtocolError{Reason: "getdata message exceeds MaxInvPerMsg"}
	}
	m.InvList = append(m.InvList, iv)
	return nil
}

func (m *MsgGetData) Command() string { return CmdGetData }

func (m *MsgGetData) MaxPayloadLength(pver uint32) uint32 {
	return 9 + MaxInvPerMsg*36
}

func (m *MsgGetData) BtcEncode(w io.Writer, pver uint32) error {
	return writeInvVectList(w, m.InvList)
}

func (m *MsgGetData) BtcDecode(r io.Reader, pver uint32) error {
	list, err := readInvVectList(r, MaxInvPerMsg)
	if err != nil {
		return err
	}
	m.InvList = list
	return nil
}

// MsgNotFound answers a getdata for objects the peer doesn't have.
type MsgNotFound struct {
	InvList []*InvVect
}

func (m *MsgNotFound) Command() string { return CmdNotFound }

func (m *MsgNotFound) MaxPayloadLength(pver uint32) uint32 {
	return 9 + MaxInvPerMsg*36
}

func (m *MsgNotFound) BtcEncode(w io.Writer, pver uint32) error {
	return writeInvVectList(w, m.InvList)
}

func (m *MsgNotFound) BtcDecode(r io.Reader, pver uint32) error {
	list, err := readInvVectList(r, MaxInvPerMsg)
	if err != nil {
		return err
	}
	m.InvList = list
	return nil
}
