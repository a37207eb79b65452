// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peergroup

import (
	"crypto/rand"
	"encoding/binary"

	"github.com/corvidlabs/bitspv/bloom"
	"github.com/corvidlabs/bitspv/peer"
	"github.com/corvidlabs/bitspv/wallet"
	"github.com/corvidlabs/bitspv/wire"
)

// DefaultFilterFPRate is the false-positive rate used for the union bloom
// filter pushed to every peer.
const DefaultFilterFPRate = 0.0001

// AddWallet registers w so its watched scripts and outpoints are
// included the next time the group recomputes its bloom filter. It does
// not itself trigger a recompute; call RecomputeFilter (or Start, which
// calls it once) afterward.
func (g *PeerGroup) AddWallet(w *wallet.Wallet) {
	g.mu.Lock()
	g.wallets = append(g.wallets, w)
	g.mu.Unlock()
}

// RecomputeFilter rebuilds the union bloom filter from every registered
// wallet's watched scripts and outpoints and pushes filterload to every
// ready peer.
func (g *PeerGroup) RecomputeFilter() {
	g.mu.Lock()
	wallets := append([]*wallet.Wallet(nil), g.wallets...)
	peers := g.readyPeersLocked()
	g.mu.Unlock()

	var elements [][]byte
	for _, w := range wallets {
		elements = append(elements, w.WatchedScripts()...)
		for _, op := range w.WatchedOutpoints() {
			var buf [36]byte
			copy(buf[:32], op.Hash[:])
			binary.LittleEndian.PutUint32(buf[32:], op.Index)
			elements = append(elements, buf[:])
		}
	}

	n := uint32(len(elements))
	if n == 0 {
		n = 1
	}
	f := bloom.NewFilter(n, randomTweak(), DefaultFilterFPRate, wire.BloomUpdateAll)
	for _, e := range elements {
		f.Add(e)
	}

	g.mu.Lock()
	g.filter = f
	g.mu.Unlock()

	msg := f.MsgFilterLoad()
	for _, p := range peers {
		g.sendAsync(p, msg)
	}
}

// pushFilterTo sends the group's current filter (if one has been
// computed yet) to a single newly-ready peer.
func (g *PeerGroup) pushFilterTo(p *peer.Peer) {
	g.mu.Lock()
	f := g.filter
	g.mu.Unlock()
	if f == nil {
		return
	}
	g.sendAsync(p, f.MsgFilterLoad())
}

func randomTweak() uint32 {
	var b [4]byte
	_, _ = rand.Read(b[:])
	return binary.LittleEndian.Uint32(b[:])
}
