// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/corvidlabs/bitspv/chainhash"
	"github.com/corvidlabs/bitspv/txscript"
	"github.com/corvidlabs/bitspv/wire"
)

// confirmCredit pays value to the wallet and confirms it at height.
func confirmCredit(t *testing.T, w *Wallet, value btcutil.Amount, height int32, blockSalt byte) {
	t.Helper()
	tx, _ := payToWallet(t, w, value)
	_, err := w.ReceiveFromBlock(tx, chainhash.Hash256{blockSalt}, height, BestChain)
	require.NoError(t, err)
}

// externalScript builds a P2PKH script for a key no test wallet owns.
func externalScript(t *testing.T) []byte {
	t.Helper()
	w := newTestWallet(t)
	key, err := w.CurrentReceiveAddress()
	require.NoError(t, err)
	return txscript.PayToPubKeyHashScript(hashFromKey(key))
}

// A wallet holding many small outputs and one large one, asked to send
// just under the large output's value, should fund from the single large
// output and pay at least the reference minimum fee: even at a zero fee
// rate, the sub-cent change output the solver itself would emit trips
// the minimum-fee floor.
func TestCompleteTxPrefersSingleLargeInputAndPaysMinFee(t *testing.T) {
	w := newTestWallet(t)
	for i := 0; i < 100; i++ {
		confirmCredit(t, w, 100_000, 10, byte(i+1))
	}
	confirmCredit(t, w, 100_000_000, 10, 0xfe)

	req := &SendRequest{
		Outputs:              []*wire.TxOut{{Value: 99_999_000, PkScript: externalScript(t)}},
		FeePerKB:             0,
		EnsureMinRequiredFee: true,
	}
	tx, err := w.CompleteTx(req)
	require.NoError(t, err)

	require.Len(t, tx.TxIn, 1)
	var outTotal btcutil.Amount
	for _, out := range tx.TxOut {
		outTotal += out.Value
	}
	fee := btcutil.Amount(100_000_000) - outTotal
	require.GreaterOrEqual(t, fee, ReferenceDefaultMinTxFee)
}

// Change below the dust threshold and below the marginal cost of carrying
// a change output is folded into the fee rather than emitted.
func TestCompleteTxFoldsDustChangeIntoFee(t *testing.T) {
	w := newTestWallet(t)
	confirmCredit(t, w, 100_000, 10, 1)

	// Leaves 300 sat of change at a fee rate whose marginal change-output
	// cost (34 bytes at 10000 sat/kB = 340 sat) exceeds it.
	req := &SendRequest{
		Outputs:  []*wire.TxOut{{Value: 89_700, PkScript: externalScript(t)}},
		FeePerKB: 10_000,
	}
	tx, err := w.CompleteTx(req)
	require.NoError(t, err)

	require.Len(t, tx.TxOut, 1)
	var outTotal btcutil.Amount
	for _, out := range tx.TxOut {
		outTotal += out.Value
	}
	fee := btcutil.Amount(100_000) - outTotal
	require.Equal(t, btcutil.Amount(10_300), fee) // 10000 rate fee + 300 folded change
}

// If a request succeeds at some fee rate, it must also succeed at every
// lower fee rate, funds permitting.
func TestCompleteTxFeeRateMonotonicity(t *testing.T) {
	w := newTestWallet(t)
	for i := 0; i < 5; i++ {
		confirmCredit(t, w, 200_000, 10, byte(i+1))
	}
	dest := externalScript(t)

	rapid.Check(t, func(rt *rapid.T) {
		target := rapid.Int64Range(1_000, 900_000).Draw(rt, "target")
		hiRate := rapid.Int64Range(0, 50_000).Draw(rt, "hiRate")
		loRate := rapid.Int64Range(0, hiRate).Draw(rt, "loRate")

		build := func(rate int64) error {
			_, err := w.CompleteTx(&SendRequest{
				Outputs:  []*wire.TxOut{{Value: btcutil.Amount(target), PkScript: dest}},
				FeePerKB: btcutil.Amount(rate),
			})
			return err
		}

		if build(hiRate) == nil {
			if err := build(loRate); err != nil {
				rt.Fatalf("succeeded at %d sat/kB but failed at %d sat/kB: %v", hiRate, loRate, err)
			}
		}
	})
}
