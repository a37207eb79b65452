// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"bytes"
	"sort"

	"github.com/btcsuite/btcd/btcutil"

	"github.com/corvidlabs/bitspv/crypto"
	"github.com/corvidlabs/bitspv/txscript"
	"github.com/corvidlabs/bitspv/wire"
)

// MinNonDustOutput is the dust threshold for a standard P2PKH output,
// below which change is folded into the fee instead.
const MinNonDustOutput = btcutil.Amount(546)

// ReferenceDefaultMinTxFee is the constant minimum relay fee category 3
// enforces when the caller sets EnsureMinRequiredFee.
const ReferenceDefaultMinTxFee = btcutil.Amount(1000)

// Cent is one hundredth of a bitcoin, the threshold below which an output
// triggers the minimum-fee floor in category 3.
const Cent = btcutil.Amount(1_000_000)

// txPriorityThreshold is the value*depth sum an input set must clear for
// category 1 (no fee, no change) to be considered, mirroring the legacy
// free-transaction priority policy this spec's category hierarchy is
// drawn from.
const txPriorityThreshold = 57_600_000

const (
	txOverheadBytes  = 10
	p2pkhInputBytes  = 148
	p2pkhOutputBytes = 34
)

func estimateSize(numInputs, numOutputs int) int {
	return txOverheadBytes + p2pkhInputBytes*numInputs + p2pkhOutputBytes*numOutputs
}

// SendRequest describes a payment to build with CompleteTx.
type SendRequest struct {
	Outputs []*wire.TxOut

	// ChangeAddress, if set, receives any change instead of a freshly
	// derived wallet address.
	ChangeAddress ChangeScript

	// Fee, if non-nil, is an explicit fee floor (category 3 may raise
	// it, never lower it).
	Fee *btcutil.Amount

	// FeePerKB is the per-kilobyte rate category 3 uses to size the fee
	// when no sufficient explicit Fee is supplied.
	FeePerKB btcutil.Amount

	// EnsureMinRequiredFee, when set, lets category 3 raise the fee to
	// ReferenceDefaultMinTxFee when any output is below one cent; when
	// clear, the solver never adds that floor on its own.
	EnsureMinRequiredFee bool

	// AllowUnconfirmed permits spending PENDING outputs in addition to
	// UNSPENT ones.
	AllowUnconfirmed bool
}

// ChangeScript is a pay-to script to send change to, decoupled from the
// addresses package so this file doesn't need to import it.
type ChangeScript []byte

type candidate struct {
	tx    *WalletTx
	index uint32
	value btcutil.Amount
	depth int32
}

func (w *Wallet) gatherCandidatesLocked(allowUnconfirmed bool) []candidate {
	var cands []candidate
	for _, wt := range w.txs {
		if wt.Pool != PoolUnspent && !(allowUnconfirmed && wt.Pool == PoolPending) {
			continue
		}
		depth := wt.Confidence.Depth
		if depth <= 0 {
			depth = 0
		}
		for idx := range wt.ourOutputs {
			if _, spent := wt.spentBy[idx]; spent {
				continue
			}
			cands = append(cands, candidate{
				tx:    wt,
				index: idx,
				value: btcutil.Amount(wt.Tx.TxOut[idx].Value),
				depth: depth,
			})
		}
	}
	sort.Slice(cands, func(i, j int) bool {
		pi := int64(cands[i].value) * int64(cands[i].depth)
		pj := int64(cands[j].value) * int64(cands[j].depth)
		if pi != pj {
			return pi > pj
		}
		return cands[i].value > cands[j].value
	})
	return cands
}

// CompleteTx funds req's outputs, chooses a fee per the three-category
// hierarchy, signs, and returns the resulting transaction.
func (w *Wallet) CompleteTx(req *SendRequest) (*wire.MsgTx, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.IsWatchingOnly() {
		return nil, ErrWatchingOnly
	}

	var totalOut int64
	for _, out := range req.Outputs {
		totalOut += int64(out.Value)
	}
	if totalOut <= 0 {
		return nil, ErrNotRelevant
	}

	cands := w.gatherCandidatesLocked(req.AllowUnconfirmed)

	if selected, ok := tryExactNoChange(cands, btcutil.Amount(totalOut)); ok {
		tx := w.buildTx(selected, req.Outputs, nil)
		if err := w.signTx(tx, selected); err != nil {
			return nil, err
		}
		return tx, nil
	}

	return w.selectWithFee(cands, req, btcutil.Amount(totalOut))
}

// tryExactNoChange looks for a prefix of the priority-sorted candidate
// list whose sum exactly equals target, clearing the free-transaction
// priority threshold (the no-fee, no-change category). This is a
// greedy accumulation rather than an exhaustive subset-sum search: with
// candidates already sorted by priority, the common single-UTXO and
// whole-balance cases it's meant to catch are found on the first or
// full prefix.
func tryExactNoChange(cands []candidate, target btcutil.Amount) ([]candidate, bool) {
	var sum btcutil.Amount
	var priority int64
	for i, c := range cands {
		sum += c.value
		priority += int64(c.value) * int64(c.depth)
		if sum == target {
			if priority >= txPriorityThreshold {
				return cands[:i+1], true
			}
			return nil, false
		}
		if sum > target {
			return nil, false
		}
	}
	return nil, false
}

// selectWithFee runs categories 2 and 3: accumulate inputs to cover
// target plus a fee that grows with transaction size, folding dust
// change into the fee (category 2) or emitting a change output
// (category 3), iterating to a fixed point bounded by the number of
// available candidates.
func (w *Wallet) selectWithFee(cands []candidate, req *SendRequest, target btcutil.Amount) (*wire.MsgTx, error) {
	var explicitFee btcutil.Amount
	if req.Fee != nil {
		explicitFee = *req.Fee
	}

	destBelowCent := false
	for _, out := range req.Outputs {
		if btcutil.Amount(out.Value) < Cent {
			destBelowCent = true
			break
		}
	}

	numOutputs := len(req.Outputs)
	fee := explicitFee

	var selected []candidate
	var accumulated btcutil.Amount

	for attempt := 0; attempt <= len(cands); attempt++ {
		needed := target + fee
		for accumulated < needed && len(selected) < len(cands) {
			c := cands[len(selected)]
			selected = append(selected, c)
			accumulated += c.value
		}
		if accumulated < needed {
			shortfall := needed - accumulated
			return nil, &InsufficientFundsError{
				Shortfall:     shortfall,
				MissingMinFee: req.EnsureMinRequiredFee && explicitFee == 0 && fee > explicitFee,
			}
		}

		change := accumulated - target - fee
		withChangeOutputs := numOutputs + 1
		marginalFee := btcutil.Amount(p2pkhOutputBytes) * req.FeePerKB / 1000

		// Category 2: dust change that costs more to carry than it is
		// worth gets forfeited to the fee instead of becoming an output.
		// The fold itself happens at emission so the rate-derived fee
		// below still reaches its fixed point.
		foldChange := change > 0 && change < MinNonDustOutput && change < marginalFee
		if foldChange {
			withChangeOutputs = numOutputs
		}

		// The min-fee floor keys off every output the transaction will
		// actually carry, so the provisional change output counts too.
		belowCent := destBelowCent
		if change > 0 && !foldChange && change < Cent {
			belowCent = true
		}

		size := estimateSize(len(selected), withChangeOutputs)
		sizeKB := (size + 999) / 1000
		if sizeKB < 1 {
			sizeKB = 1
		}
		newFee := explicitFee
		if byRate := btcutil.Amount(sizeKB) * req.FeePerKB; byRate > newFee {
			newFee = byRate
		}
		if req.EnsureMinRequiredFee && belowCent && ReferenceDefaultMinTxFee > newFee {
			newFee = ReferenceDefaultMinTxFee
		}
		if newFee < fee {
			// A change output that shrank (or vanished) under a raised
			// fee must not let the fee drop again, or the loop would
			// oscillate between the two fee values instead of settling.
			newFee = fee
		}

		if newFee == fee {
			// Fixed point reached: emit.
			if foldChange {
				fee += change
				change = 0
			}
			var changeOut *wire.TxOut
			if change > 0 {
				script, err := w.changeScriptLocked(req.ChangeAddress)
				if err != nil {
					return nil, err
				}
				changeOut = &wire.TxOut{Value: btcutil.Amount(change), PkScript: script}
			}
			tx := w.buildTx(selected, req.Outputs, changeOut)
			if tx.SerializeSize() > wire.MaxTxRelaySize {
				return nil, ErrTxTooLarge
			}
			if err := w.signTx(tx, selected); err != nil {
				return nil, err
			}
			return tx, nil
		}
		fee = newFee
	}

	return nil, ErrTxTooLarge
}

func (w *Wallet) changeScriptLocked(explicit ChangeScript) ([]byte, error) {
	if len(explicit) > 0 {
		return explicit, nil
	}
	key, err := w.chain.NextChangeKey()
	if err != nil {
		return nil, err
	}
	hash := crypto.Hash160(key.PubKey().SerializeCompressed())
	return txscript.PayToPubKeyHashScript(hash), nil
}

func (w *Wallet) buildTx(selected []candidate, outputs []*wire.TxOut, change *wire.TxOut) *wire.MsgTx {
	tx := wire.NewMsgTx(1)
	for _, c := range selected {
		tx.AddTxIn(&wire.TxIn{
			PreviousOutPoint: wire.OutPoint{Hash: c.tx.Hash, Index: c.index},
			Sequence:         wire.MaxTxInSequenceNum,
		})
	}
	for _, out := range outputs {
		tx.AddTxOut(out)
	}
	if change != nil {
		tx.AddTxOut(change)
	}
	return tx
}

// signTx signs every input of tx with the private key owning the output
// it spends, standard P2PKH sigScript construction.
func (w *Wallet) signTx(tx *wire.MsgTx, selected []candidate) error {
	for i, c := range selected {
		prevScript := c.tx.Tx.TxOut[c.index].PkScript
		hash := txscript.ExtractPubKeyHash(prevScript)
		if hash == nil {
			return ErrNotRelevant
		}
		key, ok := w.chain.LookupByHash(*hash)
		if !ok || !key.IsPrivate() {
			return ErrWatchingOnly
		}

		sigHash, err := txscript.CalcSignatureHash(prevScript, txscript.SigHashAll, tx, i)
		if err != nil {
			return err
		}
		der, err := crypto.Sign(key.PrivKey(), sigHash[:])
		if err != nil {
			return err
		}
		sig := append(der, byte(txscript.SigHashAll))
		pub := key.PubKey().SerializeCompressed()

		var buf bytes.Buffer
		buf.WriteByte(byte(len(sig)))
		buf.Write(sig)
		buf.WriteByte(byte(len(pub)))
		buf.Write(pub)
		tx.TxIn[i].SignatureScript = buf.Bytes()
	}
	return nil
}
