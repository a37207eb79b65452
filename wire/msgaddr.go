// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"

	"github.com/corvidlabs/bitspv/codec"
)

// MaxAddrPerMsg is the maximum number of addresses a single addr message
// may carry.
const MaxAddrPerMsg = 1000

// MsgAddr relays peer addresses, feeding PeerDiscovery's candidate pool.
type MsgAddr struct {
	AddrList []*NetAddress
}

func NewMsgAddr() *MsgAddr { return &MsgAddr{} }

func (m *MsgAddr) AddAddress(na *NetAddress) error {
	if len(m.AddrList)+1 > MaxAddrPerMsg {
		return &ProtocolError{Reason: "addr message exceeds MaxAddrPerMsg"}
	}
	m.AddrList = append(m.AddrList, na)
	return nil
}

func (m *MsgAddr) Command() string { return CmdAddr }

func (m *MsgAddr) MaxPayloadLength(pver uint32) uint32 {
	return 9 + MaxAddrPerMsg*30
}

func (m *MsgAddr) BtcEncode(w io.Writer, pver uint32) error {
	return codec.WriteVarIntList(w, len(m.AddrList), func(w io.Writer, i int) error {
		return writeNetAddress(w, m.AddrList[i], true)
	})
}

func (m *MsgAddr) BtcDecode(r io.Reader, pver uint32) error {
	_, err := codec.ReadVarIntList(r, MaxAddrPerMsg, func(r io.Reader, i int) error {
		na := &NetAddress{}
		if err := readNetAddress(r, na, true); err != nil {
			return err
		}
		m.AddrList = append(m.AddrList, na)
		return nil
	})
	return err
}
