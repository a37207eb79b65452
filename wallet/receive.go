// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"github.com/davecgh/go-spew/spew"

	"github.com/corvidlabs/bitspv/chainhash"
	"github.com/corvidlabs/bitspv/wire"
)

// BlockMode distinguishes a transaction observed in a block on the
// current best chain from one observed on a side chain.
type BlockMode int

const (
	BestChain BlockMode = iota
	SideChain
)

// isRelevant reports whether t matters to this wallet: t pays one of our
// scripts, spends one of our outputs, or connects (by outpoint) to a
// transaction we already know.
func (w *Wallet) isRelevant(tx *wire.MsgTx, credits map[uint32]struct{}) bool {
	if len(credits) > 0 {
		return true
	}
	for _, in := range tx.TxIn {
		if parent, ok := w.txs[in.PreviousOutPoint.Hash]; ok {
			if _, isOurs := parent.ourOutputs[in.PreviousOutPoint.Index]; isOurs {
				return true
			}
			// Connects to a transaction we already know, even if that
			// output isn't one of ours (e.g. chained double-spend
			// detection).
			return true
		}
	}
	return false
}

// ReceivePending records an unconfirmed transaction: t is rejected if
// not relevant; otherwise it is added to PENDING, its spends are
// recorded, and a conflicting spend routes through double-spend
// resolution.
func (w *Wallet) ReceivePending(tx *wire.MsgTx, source Source) (*WalletTx, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	hash := tx.TxHash()
	if existing, ok := w.txs[hash]; ok {
		return existing, nil
	}

	credits := w.matchOurScripts(tx)
	if !w.isRelevant(tx, credits) {
		return nil, ErrNotRelevant
	}

	prevBalance := w.balanceOfTypeLocked(BalanceEstimated)

	wt := newWalletTx(tx, source)
	wt.ourOutputs = credits
	wt.Confidence.setPending()
	w.txs[hash] = wt
	w.markUsedFromOutputs(tx, credits)

	w.recordSpendsLocked(wt)
	w.checkBalanceFuturesLocked()
	newBalance := w.balanceOfTypeLocked(BalanceEstimated)
	if newBalance >= prevBalance {
		w.fireCoinsReceived(wt, prevBalance, newBalance)
	} else {
		w.fireCoinsSent(wt, prevBalance, newBalance)
	}
	w.fireWalletChanged()

	log.Debugf("wallet: received pending tx %v (credits=%d)", hash, len(credits))
	log.Tracef("wallet: pending tx detail: %v", newLogClosure(func() string {
		return spew.Sdump(tx)
	}))
	return wt, nil
}

// recordSpendsLocked marks every input of wt that spends a known wallet
// output as spent by wt, resolving any conflict it creates via the
// double-spend path. Must be called with w.mu held.
func (w *Wallet) recordSpendsLocked(wt *WalletTx) {
	for _, in := range wt.Tx.TxIn {
		parent, ok := w.txs[in.PreviousOutPoint.Hash]
		if !ok {
			continue
		}
		idx := in.PreviousOutPoint.Index
		if _, isOurs := parent.ourOutputs[idx]; !isOurs {
			continue
		}
		if existingSpender, already := parent.spentBy[idx]; already && existingSpender != wt.Hash {
			other := w.txs[existingSpender]
			w.resolveConflictLocked(other, wt)
			if other.Pool == PoolDead {
				// wt won the conflict: it's now the recorded spender.
				parent.spentBy[idx] = wt.Hash
				w.maybeMoveToSpentLocked(parent)
			}
			continue
		}
		parent.spentBy[idx] = wt.Hash
		w.maybeMoveToSpentLocked(parent)
	}
}

// maybeMoveToSpentLocked re-evaluates a confirmed transaction's pool
// membership after one of its credits gets spent.
func (w *Wallet) maybeMoveToSpentLocked(wt *WalletTx) {
	if wt.Pool != PoolUnspent && wt.Pool != PoolSpent {
		return
	}
	if wt.HasUnspentCredit() {
		wt.Pool = PoolUnspent
	} else {
		wt.Pool = PoolSpent
	}
}

// ReceiveFromBlock records a transaction observed in a block.
func (w *Wallet) ReceiveFromBlock(tx *wire.MsgTx, blockHash chainhash.Hash256, height int32, mode BlockMode) (*WalletTx, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	hash := tx.TxHash()
	wt, known := w.txs[hash]
	credits := w.matchOurScripts(tx)

	if !known {
		if !w.isRelevant(tx, credits) {
			return nil, ErrNotRelevant
		}
		wt = newWalletTx(tx, SourceNetwork)
		wt.ourOutputs = credits
		wt.Confidence.setPending()
		w.txs[hash] = wt
		w.markUsedFromOutputs(tx, credits)
	} else if len(wt.ourOutputs) == 0 {
		wt.ourOutputs = credits
		w.markUsedFromOutputs(tx, credits)
	}

	if mode == SideChain {
		wt.sideChainHashes[blockHash] = height
		return wt, nil
	}

	prevBalance := w.balanceLocked(PoolUnspent)

	wt.BlockHash = &blockHash
	wt.BlockHeight = height
	if height > w.tipHeight {
		w.tipHeight = height
		w.tipHash = blockHash
	}
	wt.Confidence.setBuilding(height, w.tipHeight)
	w.recordBlockLocked(blockHash, hash)
	w.recordSpendsLocked(wt)
	if wt.HasUnspentCredit() {
		wt.Pool = PoolUnspent
	} else {
		wt.Pool = PoolSpent
	}

	w.recomputeDepthsLocked()
	w.checkBalanceFuturesLocked()
	w.fireConfidenceChanged(wt, "confirmed")
	newBalance := w.balanceLocked(PoolUnspent)
	if newBalance > prevBalance {
		w.fireCoinsReceived(wt, prevBalance, newBalance)
	} else if newBalance < prevBalance {
		w.fireCoinsSent(wt, prevBalance, newBalance)
	}
	w.fireWalletChanged()

	log.Debugf("wallet: confirmed tx %v in block %v at height %d", hash, blockHash, height)
	return wt, nil
}

func (w *Wallet) recordBlockLocked(blockHash, txHash chainhash.Hash256) {
	set, ok := w.blockTxs[blockHash]
	if !ok {
		set = make(map[chainhash.Hash256]struct{})
		w.blockTxs[blockHash] = set
	}
	set[txHash] = struct{}{}
}

// recomputeDepthsLocked refreshes Depth for every Building transaction
// against the current tip height.
func (w *Wallet) recomputeDepthsLocked() {
	for _, wt := range w.txs {
		if wt.Confidence.Kind == ConfBuilding {
			wt.Confidence.Depth = w.tipHeight - wt.Confidence.Height + 1
		}
	}
}
