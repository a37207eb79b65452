// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peergroup

import (
	"net"
	"strconv"

	"github.com/corvidlabs/bitspv/peer"
	"github.com/corvidlabs/bitspv/wire"
)

// PeerGroup implements peer.Handler. Every method here runs on a
// session's own read goroutine, so none may touch group state directly;
// each posts a closure to the dispatcher instead, matching the
// obligation peer.Handler's doc comment describes.
var _ peer.Handler = (*PeerGroup)(nil)

func (g *PeerGroup) OnVersion(p *peer.Peer, msg *wire.MsgVersion) {
	log.Debugf("peergroup: unexpected post-handshake version from %s", p.Addr)
}

func (g *PeerGroup) OnVerAck(p *peer.Peer) {}

func (g *PeerGroup) OnInv(p *peer.Peer, msg *wire.MsgInv) {
	g.postEvent(func() { g.handleInv(p, msg) })
}

func (g *PeerGroup) OnGetData(p *peer.Peer, msg *wire.MsgGetData) {
	g.postEvent(func() { g.handleGetData(p, msg) })
}

func (g *PeerGroup) OnNotFound(p *peer.Peer, msg *wire.MsgNotFound) {
	g.postEvent(func() { g.handleNotFound(p, msg) })
}

func (g *PeerGroup) OnHeaders(p *peer.Peer, msg *wire.MsgHeaders) {
	g.postEvent(func() { g.handleHeaders(p, msg) })
}

func (g *PeerGroup) OnBlock(p *peer.Peer, msg *wire.MsgBlockWire) {
	g.postEvent(func() { g.handleBlock(p, msg) })
}

func (g *PeerGroup) OnMerkleBlock(p *peer.Peer, msg *wire.MsgMerkleBlock) {
	g.postEvent(func() { g.handleMerkleBlock(p, msg) })
}

func (g *PeerGroup) OnTx(p *peer.Peer, msg *wire.MsgTxWire) {
	g.postEvent(func() { g.handleTx(p, msg) })
}

func (g *PeerGroup) OnAddr(p *peer.Peer, msg *wire.MsgAddr) {
	g.postEvent(func() {
		for _, na := range msg.AddrList {
			addr := net.JoinHostPort(na.IP.String(), strconv.Itoa(int(na.Port)))
			g.cfg.Discovery.AddAddress(addr)
		}
	})
}

// OnFilterLoad, OnFilterAdd, OnFilterClear and OnMemPool are server-side
// BIP-37/getmempool requests; a plain SPV client has nothing useful to
// serve in response and ignores them.
func (g *PeerGroup) OnFilterLoad(p *peer.Peer, msg *wire.MsgFilterLoad) {}
func (g *PeerGroup) OnFilterAdd(p *peer.Peer, msg *wire.MsgFilterAdd)   {}
func (g *PeerGroup) OnFilterClear(p *peer.Peer)                        {}
func (g *PeerGroup) OnMemPool(p *peer.Peer)                            {}

func (g *PeerGroup) OnDisconnect(p *peer.Peer, err error) {
	g.postEvent(func() { g.handleDisconnect(p, err) })
}

// handleInv records newly-seen transaction inventory so a re-announce
// from a second peer doesn't trigger a redundant getdata, and feeds the
// seen hash to any matching outstanding broadcast's ack count. Block
// inventory is intentionally ignored here: the elected download peer's
// own getheaders loop is the group's single source of truth for the
// header chain, so a second peer's unsolicited block announcement is
// picked up the next time that download peer is asked for headers.
func (g *PeerGroup) handleInv(p *peer.Peer, msg *wire.MsgInv) {
	var toFetch []*wire.InvVect
	for _, iv := range msg.InvList {
		if iv.Type != wire.InvTypeTx {
			continue
		}
		g.markBroadcastSeen(p, iv.Hash)
		if g.seen.addIfNew(iv.Hash) {
			toFetch = append(toFetch, iv)
		}
	}
	if len(toFetch) == 0 {
		return
	}
	getdata := &wire.MsgGetData{InvList: toFetch}
	g.sendAsync(p, getdata)
}

// handleGetData answers a peer's request for a transaction we are
// currently broadcasting; everything else (blocks, filtered blocks) is
// never something an SPV client can serve and is ignored.
func (g *PeerGroup) handleGetData(p *peer.Peer, msg *wire.MsgGetData) {
	for _, iv := range msg.InvList {
		if iv.Type != wire.InvTypeTx {
			continue
		}
		g.mu.Lock()
		bs, ok := g.broadcasts[iv.Hash]
		g.mu.Unlock()
		if !ok {
			continue
		}
		g.sendAsync(p, &wire.MsgTxWire{MsgTx: *bs.tx})
	}
}

func (g *PeerGroup) handleNotFound(p *peer.Peer, msg *wire.MsgNotFound) {
	for _, iv := range msg.InvList {
		log.Debugf("peergroup: %s: notfound %s %s", p.Addr, iv.Type, iv.Hash)
	}
}

// handleDisconnect drops a session's bookkeeping and, if it was the
// download peer, elects a replacement from whoever else is ready.
func (g *PeerGroup) handleDisconnect(p *peer.Peer, err error) {
	g.mu.Lock()
	delete(g.peers, p)
	wasDownloadPeer := g.downloadPeer == p
	if wasDownloadPeer {
		g.downloadPeer = nil
	}
	g.mu.Unlock()

	if err != nil {
		log.Debugf("peergroup: %s disconnected: %v", p.Addr, err)
	}
	if wasDownloadPeer {
		g.electDownloadPeer()
	}
}
