// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"github.com/btcsuite/btcd/btcutil"

	"github.com/corvidlabs/bitspv/crypto"
	"github.com/corvidlabs/bitspv/txscript"
	"github.com/corvidlabs/bitspv/wire"
)

// MaxRotationInputsPerSweep bounds a single rotation transaction's input
// count, keeping its signed size comfortably under the 100 kB relay
// limit even for a wallet with many small eligible outputs.
const MaxRotationInputsPerSweep = 600

// eligibleForRotationLocked reports whether tx's credited output at idx
// was created under a key the rotation policy considers compromised:
// confirmed, unspent, and paid to a key whose creation time predates
// w.keyRotationTime.
func (w *Wallet) eligibleForRotationLocked(wt *WalletTx, idx uint32) bool {
	if w.keyRotationTime == 0 {
		return false
	}
	if wt.Pool != PoolUnspent {
		return false
	}
	if _, spent := wt.spentBy[idx]; spent {
		return false
	}
	hash := txscript.ExtractPubKeyHash(wt.Tx.TxOut[idx].PkScript)
	if hash == nil {
		return false
	}
	createdAt, ok := w.chain.CreationTimeOf(*hash)
	if !ok {
		return false
	}
	return createdAt < w.keyRotationTime
}

// BuildRotationSweeps constructs the transactions needed to move every
// eligible output to a freshly derived post-rotation address, batched at
// MaxRotationInputsPerSweep inputs each. It does not broadcast
// or record them; the caller is expected to hand each to the peer group
// once it has reviewed them.
func (w *Wallet) BuildRotationSweeps(feePerKB btcutil.Amount) ([]*wire.MsgTx, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.IsWatchingOnly() {
		return nil, ErrWatchingOnly
	}
	if w.keyRotationTime == 0 {
		return nil, nil
	}

	var eligible []candidate
	for _, wt := range w.txs {
		for idx := range wt.ourOutputs {
			if w.eligibleForRotationLocked(wt, idx) {
				eligible = append(eligible, candidate{
					tx:    wt,
					index: idx,
					value: btcutil.Amount(wt.Tx.TxOut[idx].Value),
					depth: wt.Confidence.Depth,
				})
			}
		}
	}
	if len(eligible) == 0 {
		return nil, nil
	}

	numEligible := len(eligible)
	var sweeps []*wire.MsgTx
	for len(eligible) > 0 {
		batch := eligible
		if len(batch) > MaxRotationInputsPerSweep {
			batch = batch[:MaxRotationInputsPerSweep]
		}
		eligible = eligible[len(batch):]

		var total btcutil.Amount
		for _, c := range batch {
			total += c.value
		}

		destKey, err := w.chain.NextChangeKey()
		if err != nil {
			return nil, err
		}
		destScript := txscript.PayToPubKeyHashScript(crypto.Hash160(destKey.PubKey().SerializeCompressed()))

		size := estimateSize(len(batch), 1)
		sizeKB := (size + 999) / 1000
		if sizeKB < 1 {
			sizeKB = 1
		}
		fee := btcutil.Amount(sizeKB) * feePerKB
		if fee > total {
			fee = total
		}

		tx := w.buildTx(batch, nil, &wire.TxOut{Value: total - fee, PkScript: destScript})
		if err := w.signTx(tx, batch); err != nil {
			return nil, err
		}
		sweeps = append(sweeps, tx)
	}

	log.Infof("wallet: built %d key-rotation sweep(s) covering %d outputs", len(sweeps), numEligible)
	return sweeps, nil
}

// RecordSweep registers a freshly built rotation sweep as one of the
// wallet's own pending transactions, tagged with PurposeKeyRotation so it
// is distinguishable from user payments.
func (w *Wallet) RecordSweep(tx *wire.MsgTx) (*WalletTx, error) {
	wt, err := w.ReceivePending(tx, SourceSelf)
	if err != nil {
		return nil, err
	}
	w.mu.Lock()
	wt.Purpose = PurposeKeyRotation
	w.mu.Unlock()
	return wt, nil
}
