// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wallet implements the hardest subsystem of the client: the set
// of locally controlled keys, the transaction pools derived from them
// (UNSPENT, SPENT, PENDING, DEAD), and the operations that mutate that
// state — incoming-transaction classification, reorg handling,
// double-spend resolution, coin selection with the fee solver, and key
// rotation.
package wallet

import (
	"sync"
	"time"

	"github.com/btcsuite/btcd/btcutil"

	"github.com/corvidlabs/bitspv/chaincfg"
	"github.com/corvidlabs/bitspv/chainhash"
	"github.com/corvidlabs/bitspv/keychain"
	"github.com/corvidlabs/bitspv/txscript"
	"github.com/corvidlabs/bitspv/wire"
)

// Wallet owns its key chain and its transaction pool, and tracks its own
// chain tip height for depth bookkeeping (it holds no chain store).
// It is driven by a single logical executor: every exported
// method here takes the wallet lock itself, so callers never need to, but
// callers running on more than one goroutine must still serialize their
// own calls in commit order if they need listener ordering guarantees
// beyond what the lock alone provides.
type Wallet struct {
	mu sync.Mutex

	params *chaincfg.Params
	chain  *keychain.KeyChain

	// clock is swappable for deterministic tests.
	clock func() time.Time

	txs      map[chainhash.Hash256]*WalletTx
	blockTxs map[chainhash.Hash256]map[chainhash.Hash256]struct{}

	tipHeight int32
	tipHash   chainhash.Hash256

	keyRotationTime uint32

	listeners []Listener

	balanceFutures []*BalanceFuture

	readOnly bool
}

// New constructs an empty wallet for params, backed by chain. A
// watching-only wallet is produced by passing a KeyChain built with
// keychain.NewWatchingKeyChain.
func New(params *chaincfg.Params, chain *keychain.KeyChain) *Wallet {
	return &Wallet{
		params:   params,
		chain:    chain,
		clock:    time.Now,
		txs:      make(map[chainhash.Hash256]*WalletTx),
		blockTxs: make(map[chainhash.Hash256]map[chainhash.Hash256]struct{}),
	}
}

// SetClock overrides the wallet's time source, for deterministic tests of
// key-rotation eligibility.
func (w *Wallet) SetClock(clock func() time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.clock = clock
}

// IsWatchingOnly reports whether this wallet's key chain holds public keys
// only, in which case the wallet cannot sign transactions.
func (w *Wallet) IsWatchingOnly() bool {
	return w.chain.IsWatching()
}

// IsReadOnly reports whether the wallet has been placed into read-only
// mode after a persistent disk-IO failure.
func (w *Wallet) IsReadOnly() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.readOnly
}

// SetReadOnly is called by the store layer after a second consecutive
// save failure; it is irreversible for the process lifetime.
func (w *Wallet) SetReadOnly() {
	w.mu.Lock()
	w.readOnly = true
	w.mu.Unlock()
	w.fireWalletChanged()
}

// CurrentReceiveAddress returns the next unused external address,
// advancing the key chain's issuance cursor.
func (w *Wallet) CurrentReceiveAddress() (*keychain.ExtendedKey, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.chain.NextReceiveKey()
}

// CurrentChangeAddress returns the next unused internal (change) address.
func (w *Wallet) CurrentChangeAddress() (*keychain.ExtendedKey, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.chain.NextChangeKey()
}

// SetKeyRotationTime arms the key-rotation sweeper: any
// confirmed output paying a key created before t becomes eligible for
// sweeping.
func (w *Wallet) SetKeyRotationTime(t uint32) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.keyRotationTime = t
}

// Balance reports the wallet's confirmed spendable balance: the sum of
// unspent wallet-paying outputs of transactions in UNSPENT or SPENT
// (trivially zero there) with Building confidence. This is the
// "--available" balance of the CLI surface.
func (w *Wallet) Balance() btcutil.Amount {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balanceLocked(PoolUnspent)
}

// EstimatedBalance additionally counts PENDING transactions' unspent
// wallet-paying outputs, the "--estimated" balance of the CLI surface.
func (w *Wallet) EstimatedBalance() btcutil.Amount {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balanceLocked(PoolUnspent) + w.balanceLocked(PoolPending)
}

func (w *Wallet) balanceLocked(pool Pool) btcutil.Amount {
	var total int64
	for _, wt := range w.txs {
		if wt.Pool != pool {
			continue
		}
		total += wt.UnspentCreditValue()
	}
	return btcutil.Amount(total)
}

// Transaction looks up a known transaction by id.
func (w *Wallet) Transaction(hash chainhash.Hash256) (*WalletTx, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	wt, ok := w.txs[hash]
	return wt, ok
}

// TransactionsInPool returns every transaction currently in pool, in no
// particular order.
func (w *Wallet) TransactionsInPool(pool Pool) []*WalletTx {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []*WalletTx
	for _, wt := range w.txs {
		if wt.Pool == pool {
			out = append(out, wt)
		}
	}
	return out
}

// IsConsistent checks the pool invariant: the pools partition the
// full transaction set, and every recorded spent-flag names a
// transaction that is itself in PENDING, UNSPENT or SPENT.
func (w *Wallet) IsConsistent() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.isConsistentLocked()
}

func (w *Wallet) isConsistentLocked() bool {
	seen := 0
	for _, wt := range w.txs {
		seen++
		for idx, spender := range wt.spentBy {
			if _, ok := wt.ourOutputs[idx]; !ok {
				return false
			}
			spenderTx, ok := w.txs[spender]
			if !ok {
				return false
			}
			if spenderTx.Pool == PoolDead {
				return false
			}
		}
	}
	return seen == len(w.txs)
}

// matchOurScripts reports which output indices of tx pay one of the
// wallet's known key hashes (P2PKH, the only template
// the key chain issues directly).
func (w *Wallet) matchOurScripts(tx *wire.MsgTx) map[uint32]struct{} {
	matches := make(map[uint32]struct{})
	for i, out := range tx.TxOut {
		hash := txscript.ExtractPubKeyHash(out.PkScript)
		if hash == nil {
			continue
		}
		if _, ok := w.chain.LookupByHash(*hash); ok {
			matches[uint32(i)] = struct{}{}
		}
	}
	return matches
}

// markUsedFromOutputs marks every key hash matched in matches as used, so
// the key chain's lookahead window advances.
func (w *Wallet) markUsedFromOutputs(tx *wire.MsgTx, matches map[uint32]struct{}) {
	for idx := range matches {
		hash := txscript.ExtractPubKeyHash(tx.TxOut[idx].PkScript)
		if hash == nil {
			continue
		}
		w.chain.MarkKeyUsedByHash(*hash)
	}
}
