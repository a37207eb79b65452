// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"github.com/btcsuite/btcd/btcutil"
)

// Listener receives wallet events in commit order, single-threaded.
// An implementation need not embed anything: NopListener supplies
// no-op defaults so callers can implement only the methods they care
// about by embedding it.
type Listener interface {
	OnCoinsReceived(tx *WalletTx, prevBalance, newBalance btcutil.Amount)
	OnCoinsSent(tx *WalletTx, prevBalance, newBalance btcutil.Amount)
	OnConfidenceChanged(tx *WalletTx, reason string)
	OnWalletChanged()
	OnReorganize()
}

// NopListener implements Listener with no-op methods, so callers can
// embed it and override only the events they want.
type NopListener struct{}

func (NopListener) OnCoinsReceived(*WalletTx, btcutil.Amount, btcutil.Amount) {}
func (NopListener) OnCoinsSent(*WalletTx, btcutil.Amount, btcutil.Amount)     {}
func (NopListener) OnConfidenceChanged(*WalletTx, string)                    {}
func (NopListener) OnWalletChanged()                                        {}
func (NopListener) OnReorganize()                                           {}

// AddListener registers a listener. Listeners are invoked in registration
// order.
func (w *Wallet) AddListener(l Listener) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, l)
}

// dispatch invokes fn for every registered listener, recovering and
// logging any panic so that one broken listener never prevents the rest
// from running.
func (w *Wallet) dispatch(fn func(Listener)) {
	for _, l := range w.listeners {
		w.safeInvoke(l, fn)
	}
}

func (w *Wallet) safeInvoke(l Listener, fn func(Listener)) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("wallet: listener panicked: %v", r)
		}
	}()
	fn(l)
}

func (w *Wallet) fireCoinsReceived(tx *WalletTx, prev, next btcutil.Amount) {
	w.dispatch(func(l Listener) { l.OnCoinsReceived(tx, prev, next) })
}

func (w *Wallet) fireCoinsSent(tx *WalletTx, prev, next btcutil.Amount) {
	w.dispatch(func(l Listener) { l.OnCoinsSent(tx, prev, next) })
}

func (w *Wallet) fireConfidenceChanged(tx *WalletTx, reason string) {
	w.dispatch(func(l Listener) { l.OnConfidenceChanged(tx, reason) })
}

func (w *Wallet) fireWalletChanged() {
	w.dispatch(func(l Listener) { l.OnWalletChanged() })
}

func (w *Wallet) fireReorganize() {
	w.dispatch(func(l Listener) { l.OnReorganize() })
}
