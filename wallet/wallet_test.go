// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"crypto/rand"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/stretchr/testify/require"

	"github.com/corvidlabs/bitspv/chaincfg"
	"github.com/corvidlabs/bitspv/chainhash"
	"github.com/corvidlabs/bitspv/crypto"
	"github.com/corvidlabs/bitspv/keychain"
	"github.com/corvidlabs/bitspv/txscript"
	"github.com/corvidlabs/bitspv/wire"
)

func randomSeed(t *testing.T) []byte {
	t.Helper()
	seed := make([]byte, 32)
	_, err := rand.Read(seed)
	require.NoError(t, err)
	return seed
}

func newTestWallet(t *testing.T) *Wallet {
	t.Helper()
	chain, err := keychain.NewKeyChain(randomSeed(t))
	require.NoError(t, err)
	return New(&chaincfg.RegressionNetParams, chain)
}

// payToWallet builds a one-output transaction paying w's current
// receive address, with a single bogus input (its parent need not exist
// for relevance/credit tests).
func payToWallet(t *testing.T, w *Wallet, value btcutil.Amount) (*wire.MsgTx, chainhash.Hash160) {
	t.Helper()
	key, err := w.CurrentReceiveAddress()
	require.NoError(t, err)
	hash := hashFromKey(key)
	pkScript := txscript.PayToPubKeyHashScript(hash)

	tx := wire.NewMsgTx(1)
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Index: 0},
		Sequence:         wire.MaxTxInSequenceNum,
	})
	tx.AddTxOut(&wire.TxOut{Value: value, PkScript: pkScript})
	return tx, hash
}

func hashFromKey(key *keychain.ExtendedKey) chainhash.Hash160 {
	return crypto.Hash160(key.PubKey().SerializeCompressed())
}

func TestReceivePendingRejectsIrrelevantTx(t *testing.T) {
	w := newTestWallet(t)

	other, err := keychain.NewKeyChain(randomSeed(t))
	require.NoError(t, err)
	otherWallet := New(&chaincfg.RegressionNetParams, other)
	tx, _ := payToWallet(t, otherWallet, 10_000)

	_, err = w.ReceivePending(tx, SourceNetwork)
	require.ErrorIs(t, err, ErrNotRelevant)
}

func TestReceivePendingAddsCreditToPendingPool(t *testing.T) {
	w := newTestWallet(t)
	tx, _ := payToWallet(t, w, 50_000)

	wt, err := w.ReceivePending(tx, SourceNetwork)
	require.NoError(t, err)
	require.Equal(t, PoolPending, wt.Pool)
	require.Equal(t, ConfPending, wt.Confidence.Kind)
	require.Equal(t, btcutil.Amount(50_000), w.EstimatedBalance())
	require.Equal(t, btcutil.Amount(0), w.Balance())
	require.True(t, w.IsConsistent())
}

func TestReceiveFromBlockMovesToUnspentAndSetsDepth(t *testing.T) {
	w := newTestWallet(t)
	tx, _ := payToWallet(t, w, 50_000)

	blockHash := chainhash.Hash256{1}
	wt, err := w.ReceiveFromBlock(tx, blockHash, 100, BestChain)
	require.NoError(t, err)
	require.Equal(t, PoolUnspent, wt.Pool)
	require.Equal(t, ConfBuilding, wt.Confidence.Kind)
	require.Equal(t, int32(1), wt.Confidence.Depth)
	require.Equal(t, btcutil.Amount(50_000), w.Balance())

	// A later block raises the tip and existing confirmations deepen.
	tx2, _ := payToWallet(t, w, 1_000)
	_, err = w.ReceiveFromBlock(tx2, chainhash.Hash256{2}, 105, BestChain)
	require.NoError(t, err)
	require.Equal(t, int32(6), wt.Confidence.Depth)
}

func TestSpendMovesParentToSpentPool(t *testing.T) {
	w := newTestWallet(t)
	credit, hash := payToWallet(t, w, 50_000)
	parent, err := w.ReceiveFromBlock(credit, chainhash.Hash256{1}, 10, BestChain)
	require.NoError(t, err)
	require.Equal(t, PoolUnspent, parent.Pool)

	spend := wire.NewMsgTx(1)
	spend.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Hash: parent.Hash, Index: 0},
		Sequence:         wire.MaxTxInSequenceNum,
	})
	destScript := txscript.PayToPubKeyHashScript(hash)
	spend.AddTxOut(&wire.TxOut{Value: 40_000, PkScript: destScript})

	_, err = w.ReceivePending(spend, SourceSelf)
	require.NoError(t, err)

	require.Equal(t, PoolSpent, parent.Pool)
	require.False(t, parent.HasUnspentCredit())
	require.True(t, w.IsConsistent())
}

func TestDoubleSpendMovesLoserToDead(t *testing.T) {
	w := newTestWallet(t)
	credit, _ := payToWallet(t, w, 50_000)
	parent, err := w.ReceiveFromBlock(credit, chainhash.Hash256{1}, 10, BestChain)
	require.NoError(t, err)

	mkSpend := func(value btcutil.Amount, lockTime uint32) *wire.MsgTx {
		tx := wire.NewMsgTx(1)
		tx.LockTime = lockTime
		tx.AddTxIn(&wire.TxIn{
			PreviousOutPoint: wire.OutPoint{Hash: parent.Hash, Index: 0},
			Sequence:         wire.MaxTxInSequenceNum,
		})
		tx.AddTxOut(&wire.TxOut{Value: value, PkScript: []byte{0x6a}})
		return tx
	}

	spendA := mkSpend(40_000, 1)
	spendB := mkSpend(41_000, 2)

	wtA, err := w.ReceivePending(spendA, SourceSelf)
	require.NoError(t, err)
	wtB, err := w.ReceivePending(spendB, SourceNetwork)
	require.NoError(t, err)

	require.Equal(t, ConfPending, wtA.Confidence.Kind)
	require.Equal(t, ConfInConflict, wtB.Confidence.Kind)

	// Now spendB confirms: it should win, spendA should die.
	_, err = w.ReceiveFromBlock(spendB, chainhash.Hash256{2}, 11, BestChain)
	require.NoError(t, err)

	require.Equal(t, PoolDead, wtA.Pool)
	require.Equal(t, ConfDead, wtA.Confidence.Kind)
	require.NotNil(t, wtA.Confidence.Replacement)
	require.Equal(t, wtB.Hash, *wtA.Confidence.Replacement)
	require.True(t, w.IsConsistent())
}

func TestApplyReorgReturnsDisconnectedTxToPending(t *testing.T) {
	w := newTestWallet(t)
	credit, _ := payToWallet(t, w, 50_000)
	wt, err := w.ReceiveFromBlock(credit, chainhash.Hash256{9}, 50, BestChain)
	require.NoError(t, err)
	require.Equal(t, PoolUnspent, wt.Pool)

	w.ApplyReorg([]DisconnectedBlock{{Hash: chainhash.Hash256{9}, Height: 50}}, nil)

	require.Equal(t, PoolPending, wt.Pool)
	require.Equal(t, ConfPending, wt.Confidence.Kind)
}

func TestCompleteTxExactMatchNoChange(t *testing.T) {
	w := newTestWallet(t)
	credit, _ := payToWallet(t, w, 100_000)
	_, err := w.ReceiveFromBlock(credit, chainhash.Hash256{1}, 10, BestChain)
	require.NoError(t, err)

	destKey, err := keychain.NewKeyChain(randomSeed(t))
	require.NoError(t, err)
	destHash := hashFromKey(neuteredReceiveKey(t, destKey))
	destScript := txscript.PayToPubKeyHashScript(destHash)

	req := &SendRequest{
		Outputs: []*wire.TxOut{{Value: 100_000, PkScript: destScript}},
	}
	tx, err := w.CompleteTx(req)
	require.NoError(t, err)
	require.Len(t, tx.TxOut, 1)
	require.Len(t, tx.TxIn, 1)
	require.NotEmpty(t, tx.TxIn[0].SignatureScript)
}

func TestCompleteTxWithChange(t *testing.T) {
	w := newTestWallet(t)
	credit, _ := payToWallet(t, w, 100_000)
	_, err := w.ReceiveFromBlock(credit, chainhash.Hash256{1}, 10, BestChain)
	require.NoError(t, err)

	destKey, err := keychain.NewKeyChain(randomSeed(t))
	require.NoError(t, err)
	destScript := txscript.PayToPubKeyHashScript(hashFromKey(neuteredReceiveKey(t, destKey)))

	req := &SendRequest{
		Outputs:  []*wire.TxOut{{Value: 30_000, PkScript: destScript}},
		FeePerKB: 10_000,
	}
	tx, err := w.CompleteTx(req)
	require.NoError(t, err)
	require.Len(t, tx.TxOut, 2) // payment + change
	require.Len(t, tx.TxIn, 1)
}

func TestCompleteTxInsufficientFunds(t *testing.T) {
	w := newTestWallet(t)
	credit, _ := payToWallet(t, w, 1_000)
	_, err := w.ReceiveFromBlock(credit, chainhash.Hash256{1}, 10, BestChain)
	require.NoError(t, err)

	req := &SendRequest{
		Outputs: []*wire.TxOut{{Value: 100_000, PkScript: []byte{0x6a}}},
	}
	_, err = w.CompleteTx(req)
	var insufficient *InsufficientFundsError
	require.ErrorAs(t, err, &insufficient)
}

func TestWatchingWalletCannotCompleteTx(t *testing.T) {
	chain, err := keychain.NewKeyChain(randomSeed(t))
	require.NoError(t, err)
	watching, err := keychain.NewWatchingKeyChain(chain.ExternalNeutered(), chain.InternalNeutered())
	require.NoError(t, err)
	w := New(&chaincfg.RegressionNetParams, watching)

	_, err = w.CompleteTx(&SendRequest{Outputs: []*wire.TxOut{{Value: 1, PkScript: []byte{0x6a}}}})
	require.ErrorIs(t, err, ErrWatchingOnly)
}

func TestListenerPanicIsIsolated(t *testing.T) {
	w := newTestWallet(t)
	panicky := &panickyListener{}
	w.AddListener(panicky)

	tx, _ := payToWallet(t, w, 10_000)
	_, err := w.ReceivePending(tx, SourceNetwork)
	require.NoError(t, err)
	require.True(t, panicky.called)
}

type panickyListener struct {
	NopListener
	called bool
}

func (p *panickyListener) OnCoinsReceived(*WalletTx, btcutil.Amount, btcutil.Amount) {
	p.called = true
	panic("listener exploded")
}

func neuteredReceiveKey(t *testing.T, chain *keychain.KeyChain) *keychain.ExtendedKey {
	t.Helper()
	key, err := chain.NextReceiveKey()
	require.NoError(t, err)
	return key
}

func TestBalanceFutureCompletesOnConfirmation(t *testing.T) {
	w := newTestWallet(t)

	f := w.BalanceFuture(50_000, BalanceAvailable)
	select {
	case <-f.done:
		t.Fatal("future completed before any funds arrived")
	default:
	}

	credit, _ := payToWallet(t, w, 50_000)
	_, err := w.ReceiveFromBlock(credit, chainhash.Hash256{1}, 10, BestChain)
	require.NoError(t, err)

	got, err := f.Wait()
	require.NoError(t, err)
	require.Equal(t, btcutil.Amount(50_000), got)
}

func TestBalanceFutureAlreadySatisfied(t *testing.T) {
	w := newTestWallet(t)
	credit, _ := payToWallet(t, w, 10_000)
	_, err := w.ReceivePending(credit, SourceNetwork)
	require.NoError(t, err)

	f := w.BalanceFuture(10_000, BalanceEstimated)
	got, err := f.Wait()
	require.NoError(t, err)
	require.Equal(t, btcutil.Amount(10_000), got)
}

func TestCancelBalanceFutures(t *testing.T) {
	w := newTestWallet(t)
	f := w.BalanceFuture(1_000_000, BalanceAvailable)
	w.CancelBalanceFutures()

	_, err := f.Wait()
	require.ErrorIs(t, err, ErrCancelled)
}
