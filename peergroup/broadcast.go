// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peergroup

import (
	"sync"

	"github.com/corvidlabs/bitspv/chainhash"
	"github.com/corvidlabs/bitspv/peer"
	"github.com/corvidlabs/bitspv/wire"
)

// broadcastState tracks one outbound transaction's relay-back acks. A
// broadcast is considered seen once at least requiredAcks distinct peers
// (of those that were ready at broadcast time) have announced it back
// via inv.
type broadcastState struct {
	tx           *wire.MsgTx
	requiredAcks int
	seenBy       map[string]struct{}

	done chan struct{}
	once sync.Once
	err  error
}

func (bs *broadcastState) complete(err error) {
	bs.once.Do(func() {
		bs.err = err
		close(bs.done)
	})
}

func (bs *broadcastState) cancel() { bs.complete(ErrCancelled) }

// Broadcast is the handle BroadcastTransaction returns; Wait blocks until
// the relay threshold is met or the group stops.
type Broadcast struct {
	Hash chainhash.Hash256
	bs   *broadcastState
}

// Wait blocks until the broadcast has been seen by enough peers, or the
// group is stopped first (ErrCancelled).
func (b *Broadcast) Wait() error {
	<-b.bs.done
	return b.bs.err
}

// BroadcastTransaction announces tx's inventory to every currently ready
// peer and returns a Broadcast whose Wait resolves once enough of them
// have relayed it back.
func (g *PeerGroup) BroadcastTransaction(tx *wire.MsgTx) (*Broadcast, error) {
	hash := tx.TxHash()

	g.mu.Lock()
	peers := g.readyPeersLocked()
	if len(peers) == 0 {
		g.mu.Unlock()
		return nil, ErrNoPeers
	}
	required := len(peers)/2 + 1
	bs := &broadcastState{
		tx:           tx,
		requiredAcks: required,
		seenBy:       make(map[string]struct{}, required),
		done:         make(chan struct{}),
	}
	g.broadcasts[hash] = bs
	g.mu.Unlock()

	iv := &wire.InvVect{Type: wire.InvTypeTx, Hash: hash}
	msg := wire.NewMsgInv()
	_ = msg.AddInvVect(iv)
	for _, p := range peers {
		g.sendAsync(p, msg)
	}

	return &Broadcast{Hash: hash, bs: bs}, nil
}

// markBroadcastSeen records that p announced hash back to us, and
// completes the matching broadcast once enough distinct peers have.
func (g *PeerGroup) markBroadcastSeen(p *peer.Peer, hash chainhash.Hash256) {
	g.mu.Lock()
	defer g.mu.Unlock()
	bs, ok := g.broadcasts[hash]
	if !ok {
		return
	}
	bs.seenBy[p.Addr] = struct{}{}
	if len(bs.seenBy) >= bs.requiredAcks {
		bs.complete(nil)
		delete(g.broadcasts, hash)
	}
}
