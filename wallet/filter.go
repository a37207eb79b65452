// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"github.com/corvidlabs/bitspv/txscript"
	"github.com/corvidlabs/bitspv/wire"
)

// WatchedScripts returns the P2PKH scriptPubKeys of every key this
// wallet's key chain has derived (issued plus lookahead), the element set
// a bloom-filter multiplexer inserts on this wallet's behalf.
func (w *Wallet) WatchedScripts() [][]byte {
	w.mu.Lock()
	defer w.mu.Unlock()
	hashes := w.chain.AllHashes()
	out := make([][]byte, len(hashes))
	for i, h := range hashes {
		out[i] = txscript.PayToPubKeyHashScript(h)
	}
	return out
}

// WatchedOutpoints returns every outpoint this wallet still considers
// spendable (an unspent wallet-paying output of a PENDING or UNSPENT
// transaction), so the bloom-filter multiplexer can also match spends of
// our own coins per BIP-37's BloomUpdateAll semantics.
func (w *Wallet) WatchedOutpoints() []wire.OutPoint {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []wire.OutPoint
	for _, wt := range w.txs {
		if wt.Pool != PoolUnspent && wt.Pool != PoolPending {
			continue
		}
		for idx := range wt.ourOutputs {
			if _, spent := wt.spentBy[idx]; spent {
				continue
			}
			out = append(out, wire.OutPoint{Hash: wt.Hash, Index: idx})
		}
	}
	return out
}
