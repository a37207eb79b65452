// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"errors"
	"sync"

	"github.com/btcsuite/btcd/btcutil"
)

// ErrCancelled completes any balance future still outstanding when
// CancelBalanceFutures runs at shutdown.
var ErrCancelled = errors.New("wallet: balance future cancelled")

// BalanceType selects which balance a BalanceFuture watches.
type BalanceType int

const (
	// BalanceAvailable is the confirmed, spendable balance.
	BalanceAvailable BalanceType = iota

	// BalanceEstimated additionally counts pending incoming funds.
	BalanceEstimated
)

// BalanceFuture completes once the watched balance first reaches the
// requested amount. Futures are satisfied in commit order with the
// wallet's other observable events.
type BalanceFuture struct {
	amount btcutil.Amount
	typ    BalanceType

	done   chan struct{}
	once   sync.Once
	result btcutil.Amount
	err    error
}

// Wait blocks until the future completes, returning the balance that
// satisfied it or ErrCancelled.
func (f *BalanceFuture) Wait() (btcutil.Amount, error) {
	<-f.done
	return f.result, f.err
}

func (f *BalanceFuture) complete(v btcutil.Amount, err error) {
	f.once.Do(func() {
		f.result = v
		f.err = err
		close(f.done)
	})
}

// BalanceFuture returns a future that completes once the selected balance
// reaches at least amount. A balance already at or above amount completes
// the future immediately.
func (w *Wallet) BalanceFuture(amount btcutil.Amount, typ BalanceType) *BalanceFuture {
	w.mu.Lock()
	defer w.mu.Unlock()

	f := &BalanceFuture{amount: amount, typ: typ, done: make(chan struct{})}
	if current := w.balanceOfTypeLocked(typ); current >= amount {
		f.complete(current, nil)
		return f
	}
	w.balanceFutures = append(w.balanceFutures, f)
	return f
}

// CancelBalanceFutures completes every outstanding future with
// ErrCancelled, for shutdown paths that will never see the balance move
// again.
func (w *Wallet) CancelBalanceFutures() {
	w.mu.Lock()
	futures := w.balanceFutures
	w.balanceFutures = nil
	w.mu.Unlock()

	for _, f := range futures {
		f.complete(0, ErrCancelled)
	}
}

func (w *Wallet) balanceOfTypeLocked(typ BalanceType) btcutil.Amount {
	available := w.balanceLocked(PoolUnspent)
	if typ == BalanceEstimated {
		return available + w.balanceLocked(PoolPending)
	}
	return available
}

// checkBalanceFuturesLocked completes any future whose threshold the
// current balance now meets. Must be called with w.mu held, after every
// mutation that can raise a balance.
func (w *Wallet) checkBalanceFuturesLocked() {
	if len(w.balanceFutures) == 0 {
		return
	}
	kept := w.balanceFutures[:0]
	for _, f := range w.balanceFutures {
		if v := w.balanceOfTypeLocked(f.typ); v >= f.amount {
			f.complete(v, nil)
		} else {
			kept = append(kept, f)
		}
	}
	w.balanceFutures = kept
}
