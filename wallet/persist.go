// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"github.com/corvidlabs/bitspv/chainhash"
	"github.com/corvidlabs/bitspv/wire"
)

// TxSnapshot is the portable form of one transaction record, the shape
// package store persists to and restores from disk. It carries enough of
// WalletTx's state to rebuild pool membership and confidence without
// replaying the original receive_pending/receive_from_block call.
type TxSnapshot struct {
	Tx          *wire.MsgTx
	Pool        Pool
	ConfKind    ConfidenceKind
	Source      Source
	Height      int32
	Replacement *chainhash.Hash256
	BlockHash   *chainhash.Hash256
	BlockHeight int32
}

// Snapshot returns a point-in-time copy of every transaction this wallet
// knows about, in no particular order.
func (w *Wallet) Snapshot() []TxSnapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]TxSnapshot, 0, len(w.txs))
	for _, wt := range w.txs {
		out = append(out, TxSnapshot{
			Tx:          wt.Tx,
			Pool:        wt.Pool,
			ConfKind:    wt.Confidence.Kind,
			Source:      wt.Confidence.Source,
			Height:      wt.Confidence.Height,
			Replacement: wt.Confidence.Replacement,
			BlockHash:   wt.BlockHash,
			BlockHeight: wt.BlockHeight,
		})
	}
	return out
}

// TipHeight returns the wallet's last-known chain tip height, the value
// package store persists alongside the transaction snapshots.
func (w *Wallet) TipHeight() int32 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tipHeight
}

// LastBlockSeen returns the hash and height of the highest best-chain
// block the wallet has observed a confirmation in (a zero hash before
// any block has been seen).
func (w *Wallet) LastBlockSeen() (chainhash.Hash256, int32) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tipHash, w.tipHeight
}

// SetLastBlockSeen restores a previously persisted tip without requiring
// a ReceiveFromBlock call. Used only during load, before the wallet
// rejoins live chain sync.
func (w *Wallet) SetLastBlockSeen(hash chainhash.Hash256, height int32) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if height > w.tipHeight {
		w.tipHeight = height
		w.tipHash = hash
	}
}

// KeyChainCursor exposes the wallet's key chain issuance/used cursors,
// the four counters package store persists in place of per-key
// records: a BIP-32 chain re-derives every key deterministically
// from seed plus these counters, so there is nothing else to save.
func (w *Wallet) KeyChainCursor() (issuedExternal, issuedInternal, usedExternal, usedInternal uint32) {
	return w.chain.Cursor()
}

// RestoreKeyChainCursor fast-forwards the wallet's key chain to
// previously persisted cursor values.
func (w *Wallet) RestoreKeyChainCursor(issuedExternal, issuedInternal, usedExternal, usedInternal uint32) error {
	return w.chain.Restore(issuedExternal, issuedInternal, usedExternal, usedInternal)
}

// RestoreTx repopulates one transaction record from a previously
// persisted snapshot, bypassing the relevance test: anything that was
// ever written to disk was already found relevant when first received.
// Spend linkage (WalletTx.spentBy) is rebuilt by a second pass the
// caller drives by calling RestoreTx for every snapshot in the order
// they were persisted, then RelinkSpends once all of them are in.
func (w *Wallet) RestoreTx(s TxSnapshot) {
	w.mu.Lock()
	defer w.mu.Unlock()

	wt := newWalletTx(s.Tx, s.Source)
	wt.Pool = s.Pool
	wt.Confidence.Kind = s.ConfKind
	wt.Confidence.Height = s.Height
	wt.Confidence.Replacement = s.Replacement
	wt.BlockHash = s.BlockHash
	wt.BlockHeight = s.BlockHeight
	wt.ourOutputs = w.matchOurScripts(s.Tx)

	w.txs[wt.Hash] = wt
	if s.BlockHash != nil {
		w.recordBlockLocked(*s.BlockHash, wt.Hash)
	}
	w.markUsedFromOutputs(s.Tx, wt.ourOutputs)
}

// RelinkSpends re-derives every WalletTx's spentBy bookkeeping from the
// inputs of every other loaded transaction, and refreshes Building
// depths against the current tip. Call once after every RestoreTx call
// has completed.
func (w *Wallet) RelinkSpends() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, wt := range w.txs {
		if wt.Pool == PoolDead {
			// A dead transaction no longer spends anything.
			continue
		}
		for _, in := range wt.Tx.TxIn {
			parent, ok := w.txs[in.PreviousOutPoint.Hash]
			if !ok {
				continue
			}
			idx := in.PreviousOutPoint.Index
			if _, isOurs := parent.ourOutputs[idx]; !isOurs {
				continue
			}
			parent.spentBy[idx] = wt.Hash
		}
	}
	for _, wt := range w.txs {
		w.maybeMoveToSpentLocked(wt)
	}
	w.recomputeDepthsLocked()
}
