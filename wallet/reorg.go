// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"github.com/corvidlabs/bitspv/chainhash"
	"github.com/corvidlabs/bitspv/wire"
)

// DisconnectedBlock names a block the chain store dropped from the best
// chain, by hash only: the wallet already holds whatever transactions it
// recorded against that hash via blockTxs.
type DisconnectedBlock struct {
	Hash   chainhash.Hash256
	Height int32
}

// ConnectedBlock carries the transactions a newly-connected block
// contains, so the wallet can replay receive_from_block against each.
// The chain store itself only tracks headers; the peer/peergroup
// layer is responsible for supplying bodies here as merkleblock/tx
// messages arrive.
type ConnectedBlock struct {
	Hash   chainhash.Hash256
	Height int32
	Txs    []*wire.MsgTx
}

// ApplyReorg applies a best-chain switch: disconnected blocks (newest first) move
// their transactions back to PENDING, then connected blocks (oldest
// first) are replayed through ReceiveFromBlock, which resolves any
// double-spend against the new main chain as a side effect.
func (w *Wallet) ApplyReorg(disconnected []DisconnectedBlock, connected []ConnectedBlock) {
	w.mu.Lock()
	for _, d := range disconnected {
		w.disconnectBlockLocked(d.Hash)
	}
	w.mu.Unlock()

	for _, c := range connected {
		for _, tx := range c.Txs {
			if _, err := w.ReceiveFromBlock(tx, c.Hash, c.Height, BestChain); err != nil && err != ErrNotRelevant {
				log.Errorf("wallet: reorg replay of tx %v in block %v: %v", tx.TxHash(), c.Hash, err)
			}
		}
	}

	w.fireReorganize()
	w.fireWalletChanged()
}

func (w *Wallet) disconnectBlockLocked(blockHash chainhash.Hash256) {
	set, ok := w.blockTxs[blockHash]
	if !ok {
		return
	}
	delete(w.blockTxs, blockHash)
	for txHash := range set {
		wt, ok := w.txs[txHash]
		if !ok || wt.Pool == PoolDead {
			continue
		}
		wt.Pool = PoolPending
		wt.BlockHash = nil
		wt.BlockHeight = 0
		wt.Confidence.setPending()
		w.fireConfidenceChanged(wt, "disconnected")
	}
}
