// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/corvidlabs/bitspv/chainhash"
)

func TestMessageRoundTrip(t *testing.T) {
	cases := []Message{
		&MsgVerAck{},
		&MsgPing{Nonce: 0xdeadbeefcafef00d},
		&MsgPong{Nonce: 42},
		&MsgMemPool{},
		&MsgFilterClear{},
	}
	for _, msg := range cases {
		var buf bytes.Buffer
		require.NoError(t, WriteMessage(&buf, msg, ProtocolVersion, MainNet))

		got, _, err := ReadMessage(&buf, ProtocolVersion, MainNet)
		require.NoError(t, err)
		require.Equal(t, msg.Command(), got.Command())
	}
}

func TestMsgVersionRoundTrip(t *testing.T) {
	recv := NetAddress{Services: SFNodeNetwork, IP: net.ParseIP("127.0.0.1"), Port: 8333}
	from := NetAddress{Services: SFNodeNetwork, IP: net.ParseIP("127.0.0.2"), Port: 8333}

	v := NewMsgVersion(&recv, &from, 12345, 500)
	v.UserAgent = "/bitspv:0.1.0/"
	v.Timestamp = time.Unix(1700000000, 0).UTC()

	var buf bytes.Buffer
	require.NoError(t, WriteMessage(&buf, v, ProtocolVersion, TestNet3))

	got, _, err := ReadMessage(&buf, ProtocolVersion, TestNet3)
	require.NoError(t, err)

	gv, ok := got.(*MsgVersion)
	require.True(t, ok)
	require.Equal(t, v.UserAgent, gv.UserAgent)
	require.Equal(t, v.Nonce, gv.Nonce)
	require.Equal(t, v.StartHeight, gv.StartHeight)
	require.True(t, gv.Relay)
	require.True(t, gv.AddrRecv.IP.Equal(recv.IP))
}

func TestReadMessageRejectsWrongMagic(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMessage(&buf, &MsgVerAck{}, ProtocolVersion, MainNet))

	_, _, err := ReadMessage(&buf, ProtocolVersion, TestNet3)
	require.Error(t, err)
	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
}

func TestMsgInvRoundTrip(t *testing.T) {
	inv := NewMsgInv()
	require.NoError(t, inv.AddInvVect(&InvVect{Type: InvTypeTx}))
	require.NoError(t, inv.AddInvVect(&InvVect{Type: InvTypeBlock}))

	var buf bytes.Buffer
	require.NoError(t, WriteMessage(&buf, inv, ProtocolVersion, MainNet))

	got, _, err := ReadMessage(&buf, ProtocolVersion, MainNet)
	require.NoError(t, err)

	gi, ok := got.(*MsgInv)
	require.True(t, ok)
	require.Len(t, gi.InvList, 2)
	require.Equal(t, InvTypeTx, gi.InvList[0].Type)
}

func TestMsgGetHeadersRoundTrip(t *testing.T) {
	gh := &MsgGetHeaders{ProtocolVersion: ProtocolVersion}
	var h1, h2 chainhash.Hash256
	h1[0] = 0x01
	h2[0] = 0x02
	gh.BlockLocatorHashes = BlockLocator{&h1, &h2}

	var buf bytes.Buffer
	require.NoError(t, WriteMessage(&buf, gh, ProtocolVersion, MainNet))

	got, _, err := ReadMessage(&buf, ProtocolVersion, MainNet)
	require.NoError(t, err)

	g, ok := got.(*MsgGetHeaders)
	require.True(t, ok)
	require.Len(t, g.BlockLocatorHashes, 2)
}
