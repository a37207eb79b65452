// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import "github.com/corvidlabs/bitspv/chainhash"

// resolveConflictLocked arbitrates a double spend: a and b both reference the
// same outpoint. If exactly one is confirmed, the confirmed one wins and
// the other is marked Dead. If neither is confirmed, the first seen (a,
// since it's the one already recorded as the spender) stays Pending and
// b transitions to InConflict. Must be called with w.mu held.
//
// Confirmation is read off Confidence.Kind rather than Pool: callers in
// ReceiveFromBlock set Confidence to Building before resolving conflicts,
// but only assign Pool afterward once the resulting credit state is known.
func (w *Wallet) resolveConflictLocked(a, b *WalletTx) {
	aConfirmed := a.Confidence.Kind == ConfBuilding
	bConfirmed := b.Confidence.Kind == ConfBuilding

	switch {
	case aConfirmed && !bConfirmed:
		w.killLocked(b, a.Hash)
	case bConfirmed && !aConfirmed:
		w.killLocked(a, b.Hash)
	case aConfirmed && bConfirmed:
		// Both confirmed is a chain-validity violation that shouldn't
		// occur; keep the one already recorded as spender.
		log.Warnf("wallet: both conflicting txs %v and %v are confirmed", a.Hash, b.Hash)
	default:
		b.Pool = PoolPending
		b.Confidence.setInConflict()
		w.fireConfidenceChanged(b, "in-conflict")
	}
}

// killLocked transitions tx (and, recursively, every transaction that
// spends one of its outputs) to DEAD, recording replacement as the
// overriding transaction. Must be called with w.mu held.
func (w *Wallet) killLocked(tx *WalletTx, replacement chainhash.Hash256) {
	if tx.Pool == PoolDead {
		return
	}
	w.unlinkSpendsLocked(tx)
	tx.Pool = PoolDead
	tx.Confidence.setDead(replacement)
	w.fireConfidenceChanged(tx, "dead")

	for _, other := range w.txs {
		if other.Hash == tx.Hash {
			continue
		}
		spendsTx := false
		for _, in := range other.Tx.TxIn {
			if in.PreviousOutPoint.Hash == tx.Hash {
				spendsTx = true
				break
			}
		}
		if spendsTx {
			w.killLocked(other, replacement)
		}
	}
}

// unlinkSpendsLocked removes tx's spent-flags from whatever wallet
// outputs it consumed, since a dead transaction no longer spends
// anything.
func (w *Wallet) unlinkSpendsLocked(tx *WalletTx) {
	for _, in := range tx.Tx.TxIn {
		parent, ok := w.txs[in.PreviousOutPoint.Hash]
		if !ok {
			continue
		}
		if spender, ok := parent.spentBy[in.PreviousOutPoint.Index]; ok && spender == tx.Hash {
			delete(parent.spentBy, in.PreviousOutPoint.Index)
			w.maybeMoveToSpentLocked(parent)
		}
	}
}
