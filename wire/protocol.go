// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"strconv"
	"strings"
)

// ProtocolVersion is the protocol version this package implements.
const ProtocolVersion uint32 = 70015

// MinAcceptableVersion is the lowest peer-advertised protocol version this
// session will complete a handshake with; anything older is closed.
const MinAcceptableVersion uint32 = 70001

// BIP0031Version is the protocol version after which ping carries a nonce
// and pong was introduced.
const BIP0031Version uint32 = 60000

// BIP0037Version is the protocol version which added bloom filtering and
// the version message's relay flag.
const BIP0037Version uint32 = 70001

// ServiceFlag identifies services supported by a peer.
type ServiceFlag uint64

const (
	// SFNodeNetwork indicates a full node serving the complete chain.
	SFNodeNetwork ServiceFlag = 1 << iota

	// SFNodeGetUTXO indicates support for the getutxos/utxos messages.
	SFNodeGetUTXO

	// SFNodeBloom indicates support for bloom-filtered connection (BIP-37).
	SFNodeBloom

	// SFNodeWitness indicates support for segwit blocks/transactions.
	SFNodeWitness

	// SFNodeNetworkLimited indicates the peer serves only the last 288
	// blocks from its tip.
	SFNodeNetworkLimited ServiceFlag = 1 << 10
)

func (f ServiceFlag) HasFlag(s ServiceFlag) bool { return f&s == s }

var sfStrings = map[ServiceFlag]string{
	SFNodeNetwork:        "SFNodeNetwork",
	SFNodeGetUTXO:        "SFNodeGetUTXO",
	SFNodeBloom:          "SFNodeBloom",
	SFNodeWitness:        "SFNodeWitness",
	SFNodeNetworkLimited: "SFNodeNetworkLimited",
}

func (f ServiceFlag) String() string {
	if f == 0 {
		return "0x0"
	}
	var parts []string
	for flag, name := range sfStrings {
		if f.HasFlag(flag) {
			parts = append(parts, name)
			f -= flag
		}
	}
	s := strings.Join(parts, "|")
	if f != 0 {
		if s != "" {
			s += "|"
		}
		s += "0x" + strconv.FormatUint(uint64(f), 16)
	}
	return s
}

// BitcoinNet identifies which network a message envelope belongs to, via
// its four-byte magic.
type BitcoinNet uint32

const (
	// MainNet is the production Bitcoin network.
	MainNet BitcoinNet = 0xd9b4bef9

	// TestNet3 is the public test network (version 3).
	TestNet3 BitcoinNet = 0x0709110b

	// RegTest is the local regression-test network.
	RegTest BitcoinNet = 0xfabfb5da
)

var bnStrings = map[BitcoinNet]string{
	MainNet:  "MainNet",
	TestNet3: "TestNet3",
	RegTest:  "RegTest",
}

func (n BitcoinNet) String() string {
	if s, ok := bnStrings[n]; ok {
		return s
	}
	return fmt.Sprintf("Unknown BitcoinNet (%d)", uint32(n))
}

// Commands: the 12-byte ASCII, zero-padded command names.
const (
	CmdVersion     = "version"
	CmdVerAck      = "verack"
	CmdPing        = "ping"
	CmdPong        = "pong"
	CmdInv         = "inv"
	CmdGetData     = "getdata"
	CmdNotFound    = "notfound"
	CmdGetHeaders  = "getheaders"
	CmdGetBlocks   = "getblocks"
	CmdHeaders     = "headers"
	CmdBlock       = "block"
	CmdTx          = "tx"
	CmdMerkleBlock = "merkleblock"
	CmdAddr        = "addr"
	CmdFilterLoad  = "filterload"
	CmdFilterAdd   = "filteradd"
	CmdFilterClear = "filterclear"
	CmdMemPool     = "mempool"
	CmdReject      = "reject"
)
