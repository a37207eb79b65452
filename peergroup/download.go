// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peergroup

import (
	"time"

	"github.com/corvidlabs/bitspv/bloom"
	"github.com/corvidlabs/bitspv/chainhash"
	"github.com/corvidlabs/bitspv/chainstore"
	"github.com/corvidlabs/bitspv/peer"
	"github.com/corvidlabs/bitspv/wallet"
	"github.com/corvidlabs/bitspv/wire"
)

// pendingReorg tracks one accepted chainstore.ReorgResult from the time
// its headers are recorded until every connected block's filtered body
// has arrived. Disconnected blocks carry no body (the store only ever
// tracks headers), so only Connected needs a fetch. order preserves the
// oldest-first replay sequence ApplyReorg requires; remaining shrinks to
// empty as merkleblock/tx bodies complete each entry.
type pendingReorg struct {
	disconnected []wallet.DisconnectedBlock
	order        []chainhash.Hash256
	bodies       map[chainhash.Hash256]*wallet.ConnectedBlock
	remaining    map[chainhash.Hash256]struct{}
}

// electDownloadPeer picks the ready peer with the highest advertised
// start height as the download peer, if none is elected yet, and kicks
// off header sync against it. Runs on the dispatcher goroutine.
func (g *PeerGroup) electDownloadPeer() {
	g.mu.Lock()
	if g.downloadPeer != nil {
		g.mu.Unlock()
		return
	}
	var best *peer.Peer
	bestHeight := int32(-1)
	for p, ps := range g.peers {
		if !p.IsReady() {
			continue
		}
		if ps.startHeight > bestHeight {
			best = p
			bestHeight = ps.startHeight
		}
	}
	if best == nil {
		g.mu.Unlock()
		return
	}
	g.downloadPeer = best
	g.lastProgress = time.Now()
	g.mu.Unlock()

	log.Infof("peergroup: elected %s as download peer (height %d)", best.Addr, bestHeight)
	g.sendGetHeaders(best)
}

// sendGetHeaders requests the next batch of headers from p, built from
// the store's current best-chain locator.
func (g *PeerGroup) sendGetHeaders(p *peer.Peer) {
	msg := &wire.MsgGetHeaders{
		ProtocolVersion:    g.cfg.ProtocolVersion,
		BlockLocatorHashes: g.cfg.Store.Locator(),
	}
	g.sendAsync(p, msg)
}

// checkStall demotes the download peer if it has gone StallTimeout
// without delivering a header or a block body, per the group's
// liveness contract. Closing the session triggers OnDisconnect, whose
// handler re-elects a download peer from whoever is left.
func (g *PeerGroup) checkStall() {
	g.mu.Lock()
	dp := g.downloadPeer
	stalled := dp != nil && !g.lastProgress.IsZero() && time.Since(g.lastProgress) > g.cfg.StallTimeout
	g.mu.Unlock()
	if !stalled {
		return
	}
	log.Warnf("peergroup: download peer %s stalled, demoting", dp.Addr)
	dp.Close()
}

// handleHeaders processes a batch of headers from the elected download
// peer. Headers from any other session are ignored: trusting only one
// peer's header stream keeps the sync state machine simple and is safe
// because every header is still independently proof-of-work verified by
// the store.
func (g *PeerGroup) handleHeaders(p *peer.Peer, msg *wire.MsgHeaders) {
	g.mu.Lock()
	isDownloadPeer := g.downloadPeer == p
	g.mu.Unlock()
	if !isDownloadPeer || len(msg.Headers) == 0 {
		return
	}

	for _, h := range msg.Headers {
		_, result, err := g.cfg.Store.Put(h)
		if err != nil {
			if err == chainstore.ErrOrphan {
				log.Debugf("peergroup: orphan header from %s", p.Addr)
				continue
			}
			log.Warnf("peergroup: rejecting header from %s: %v", p.Addr, err)
			continue
		}
		if result == nil {
			// Accepted onto a side chain that isn't (yet) the best
			// chain; no body fetch until it overtakes the tip.
			continue
		}
		g.mu.Lock()
		g.lastProgress = time.Now()
		g.mu.Unlock()
		g.queueBodyFetch(p, result)
	}

	if len(msg.Headers) == wire.MaxBlockHeadersPerMsg {
		g.sendGetHeaders(p)
	}
}

// queueBodyFetch registers one accepted ReorgResult's connected blocks
// for filtered-block fetch and requests them from p.
func (g *PeerGroup) queueBodyFetch(p *peer.Peer, result *chainstore.ReorgResult) {
	// The store lists disconnected blocks oldest-first; the wallet
	// unwinds them newest-first.
	disconnected := make([]wallet.DisconnectedBlock, len(result.Disconnected))
	for i, d := range result.Disconnected {
		disconnected[len(result.Disconnected)-1-i] = wallet.DisconnectedBlock{Hash: d.Hash(), Height: d.Height}
	}

	pr := &pendingReorg{
		disconnected: disconnected,
		order:        make([]chainhash.Hash256, len(result.Connected)),
		bodies:       make(map[chainhash.Hash256]*wallet.ConnectedBlock, len(result.Connected)),
		remaining:    make(map[chainhash.Hash256]struct{}, len(result.Connected)),
	}

	g.mu.Lock()
	for i, c := range result.Connected {
		h := c.Hash()
		pr.order[i] = h
		pr.bodies[h] = &wallet.ConnectedBlock{Hash: h, Height: c.Height}
		pr.remaining[h] = struct{}{}
		g.blockOwner[h] = pr
	}
	g.reorgQueue = append(g.reorgQueue, pr)
	g.mu.Unlock()

	getdata := wire.NewMsgGetData()
	for _, c := range result.Connected {
		_ = getdata.AddInvVect(&wire.InvVect{Type: wire.InvTypeFilteredBlock, Hash: c.Hash()})
	}
	if len(getdata.InvList) > 0 {
		g.sendAsync(p, getdata)
	}
}

// handleMerkleBlock verifies a filtered block's partial Merkle proof and
// either closes out a body with no matches immediately or requests the
// matched transactions by hash.
func (g *PeerGroup) handleMerkleBlock(p *peer.Peer, msg *wire.MsgMerkleBlock) {
	matched, err := bloom.VerifyMerkleBlock(msg)
	if err != nil {
		log.Warnf("peergroup: invalid merkleblock from %s: %v", p.Addr, err)
		p.Close()
		return
	}
	hash := msg.Header.BlockHash()

	g.mu.Lock()
	pr, ok := g.blockOwner[hash]
	if !ok {
		g.mu.Unlock()
		return
	}
	g.lastProgress = time.Now()
	if len(matched) == 0 {
		delete(pr.remaining, hash)
		g.mu.Unlock()
		g.tryFlushReorgs()
		return
	}
	want := make(map[chainhash.Hash256]struct{}, len(matched))
	for _, h := range matched {
		want[*h] = struct{}{}
	}
	g.pendingMatches[hash] = want
	g.mu.Unlock()

	getdata := wire.NewMsgGetData()
	for _, h := range matched {
		_ = getdata.AddInvVect(&wire.InvVect{Type: wire.InvTypeTx, Hash: *h})
	}
	g.sendAsync(p, getdata)
}

// handleBlock handles a full (non-filtered) block, the fallback path for
// a peer that doesn't honor BIP-37. Every transaction in the block is
// treated as a body delivery for whichever pending reorg owns the
// block's hash; relevance filtering happens inside the wallet.
func (g *PeerGroup) handleBlock(p *peer.Peer, msg *wire.MsgBlockWire) {
	hash := msg.Header.BlockHash()

	g.mu.Lock()
	pr, ok := g.blockOwner[hash]
	if !ok {
		g.mu.Unlock()
		return
	}
	g.lastProgress = time.Now()
	cb := pr.bodies[hash]
	cb.Txs = append([]*wire.MsgTx(nil), msg.Transactions...)
	delete(pr.remaining, hash)
	delete(g.pendingMatches, hash)
	g.mu.Unlock()

	g.tryFlushReorgs()
}

// handleTx attaches an incoming transaction body to whichever pending
// block is waiting on it, or treats it as a loose relay/mempool
// transaction if nothing is.
func (g *PeerGroup) handleTx(p *peer.Peer, msg *wire.MsgTxWire) {
	tx := &msg.MsgTx
	hash := tx.TxHash()

	g.mu.Lock()
	var owningBlock chainhash.Hash256
	var owner *pendingReorg
	for bh, want := range g.pendingMatches {
		if _, ok := want[hash]; ok {
			owner = g.blockOwner[bh]
			owningBlock = bh
			delete(want, hash)
			break
		}
	}
	if owner != nil {
		owner.bodies[owningBlock].Txs = append(owner.bodies[owningBlock].Txs, tx)
		if len(g.pendingMatches[owningBlock]) == 0 {
			delete(owner.remaining, owningBlock)
			delete(g.pendingMatches, owningBlock)
		}
		g.lastProgress = time.Now()
	}
	g.mu.Unlock()

	g.markBroadcastSeen(p, hash)

	if owner != nil {
		g.tryFlushReorgs()
		return
	}

	g.deliverLooseTx(tx)
}

// deliverLooseTx hands a transaction that wasn't awaited by any pending
// block fetch to every registered wallet as a network-sourced pending
// receive, per the relay/mempool path.
func (g *PeerGroup) deliverLooseTx(tx *wire.MsgTx) {
	g.mu.Lock()
	wallets := append([]*wallet.Wallet(nil), g.wallets...)
	g.mu.Unlock()

	for _, w := range wallets {
		if _, err := w.ReceivePending(tx, wallet.SourceNetwork); err != nil && err != wallet.ErrNotRelevant {
			log.Debugf("peergroup: wallet receive_pending: %v", err)
		}
	}
}

// tryFlushReorgs applies every pending reorg at the head of the queue
// whose body fetch has fully completed, oldest first, so the wallet
// never sees a later block replayed before an earlier one.
func (g *PeerGroup) tryFlushReorgs() {
	for {
		g.mu.Lock()
		if len(g.reorgQueue) == 0 {
			g.mu.Unlock()
			return
		}
		front := g.reorgQueue[0]
		if len(front.remaining) > 0 {
			g.mu.Unlock()
			return
		}
		g.reorgQueue = g.reorgQueue[1:]
		for h := range front.bodies {
			delete(g.blockOwner, h)
		}
		connected := make([]wallet.ConnectedBlock, len(front.order))
		for i, h := range front.order {
			connected[i] = *front.bodies[h]
		}
		disconnected := front.disconnected
		wallets := append([]*wallet.Wallet(nil), g.wallets...)
		g.mu.Unlock()

		for _, w := range wallets {
			w.ApplyReorg(disconnected, connected)
		}
	}
}
