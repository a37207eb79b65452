// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"
	"time"

	"github.com/corvidlabs/bitspv/codec"
)

// MaxUserAgentLen is the maximum length, in bytes, of a version message's
// user_agent string.
const MaxUserAgentLen = 256

// MsgVersion is the first message either side of a connection sends,
// establishing protocol version, services, and the rest of the
// handshake fields.
type MsgVersion struct {
	ProtocolVersion int32
	Services        ServiceFlag
	Timestamp       time.Time
	AddrRecv        NetAddress
	AddrFrom        NetAddress
	Nonce           uint64
	UserAgent       string
	StartHeight     int32
	Relay           bool
}

// NewMsgVersion returns a version message populated with the fields every
// handshake needs: the given addresses, nonce and start height, the
// current time and ProtocolVersion, and Relay set to true; callers set
// UserAgent.
func NewMsgVersion(addrRecv, addrFrom *NetAddress, nonce uint64, startHeight int32) *MsgVersion {
	return &MsgVersion{
		ProtocolVersion: int32(ProtocolVersion),
		Services:        0,
		Timestamp:       time.Now(),
		AddrRecv:        *addrRecv,
		AddrFrom:        *addrFrom,
		Nonce:           nonce,
		UserAgent:       "",
		StartHeight:     startHeight,
		Relay:           true,
	}
}

func (m *MsgVersion) Command() string { return CmdVersion }

func (m *MsgVersion) MaxPayloadLength(pver uint32) uint32 {
	return 33 + (MaxUserAgentLen + 3) + 2*26
}

func (m *MsgVersion) BtcEncode(w io.Writer, pver uint32) error {
	if err := codec.WriteInt32LE(w, m.ProtocolVersion); err != nil {
		return err
	}
	if err := codec.WriteUint64LE(w, uint64(m.Services)); err != nil {
		return err
	}
	if err := codec.WriteInt64LE(w, m.Timestamp.Unix()); err != nil {
		return err
	}
	if err := writeNetAddress(w, &m.AddrRecv, false); err != nil {
		return err
	}
	if err := writeNetAddress(w, &m.AddrFrom, false); err != nil {
		return err
	}
	if err := codec.WriteUint64LE(w, m.Nonce); err != nil {
		return err
	}
	if err := codec.WriteVarBytes(w, []byte(m.UserAgent)); err != nil {
		return err
	}
	if err := codec.WriteInt32LE(w, m.StartHeight); err != nil {
		return err
	}
	if m.ProtocolVersion >= int32(BIP0037Version) {
		relay := byte(0)
		if m.Relay {
			relay = 1
		}
		return codec.WriteUint8(w, relay)
	}
	return nil
}

func (m *MsgVersion) BtcDecode(r io.Reader, pver uint32) error {
	protoVer, err := codec.ReadInt32LE(r)
	if err != nil {
		return err
	}
	m.ProtocolVersion = protoVer

	services, err := codec.ReadUint64LE(r)
	if err != nil {
		return err
	}
	m.Services = ServiceFlag(services)

	ts, err := codec.ReadInt64LE(r)
	if err != nil {
		return err
	}
	m.Timestamp = time.Unix(ts, 0).UTC()

	if err := readNetAddress(r, &m.AddrRecv, false); err != nil {
		return err
	}
	if err := readNetAddress(r, &m.AddrFrom, false); err != nil {
		return err
	}

	nonce, err := codec.ReadUint64LE(r)
	if err != nil {
		return err
	}
	m.Nonce = nonce

	ua, err := codec.ReadVarBytes(r, MaxUserAgentLen)
	if err != nil {
		return err
	}
	m.UserAgent = string(ua)

	startHeight, err := codec.ReadInt32LE(r)
	if err != nil {
		return err
	}
	m.StartHeight = startHeight

	m.Relay = true
	if m.ProtocolVersion >= int32(BIP0037Version) {
		relay, err := codec.ReadUint8(r)
		if err != nil {
			// Some peers omit the trailing relay byte even at a
			// qualifying version; treat it as absent rather than fatal.
			return nil
		}
		m.Relay = relay != 0
	}
	return nil
}

// MsgVerAck completes the handshake after both sides have exchanged
// version. It carries no payload.
type MsgVerAck struct{}

func (m *MsgVerAck) Command() string                            { return CmdVerAck }
func (m *MsgVerAck) MaxPayloadLength(pver uint32) uint32         { return 0 }
func (m *MsgVerAck) BtcEncode(w io.Writer, pver uint32) error    { return nil }
func (m *MsgVerAck) BtcDecode(r io.Reader, pver uint32) error    { return nil }
