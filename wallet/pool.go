// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"github.com/corvidlabs/bitspv/chainhash"
	"github.com/corvidlabs/bitspv/wire"
)

// Pool identifies which of the four disjoint wallet pools a transaction
// sits in.
type Pool int

const (
	PoolUnspent Pool = iota
	PoolSpent
	PoolPending
	PoolDead
)

// Purpose records why the wallet itself created a transaction. It is
// advisory metadata for listeners and tooling, not consensus state.
type Purpose int

const (
	PurposeUnknown Purpose = iota
	PurposeUserPayment
	PurposeKeyRotation
)

func (p Pool) String() string {
	switch p {
	case PoolUnspent:
		return "unspent"
	case PoolSpent:
		return "spent"
	case PoolPending:
		return "pending"
	case PoolDead:
		return "dead"
	default:
		return "unknown"
	}
}

// WalletTx is one transaction known to the wallet together with its pool
// membership, confidence, and the block it last appeared in (if
// confirmed). Transactions hold their id, never a back-pointer to the
// wallet or to other WalletTx values: the pool is an indexed arena keyed
// by transaction id and Confidence records only the id of a replacement.
type WalletTx struct {
	Hash chainhash.Hash256
	Tx   *wire.MsgTx

	Pool       Pool
	Confidence *Confidence
	Purpose    Purpose

	// BlockHash/BlockHeight are set while the transaction is confirmed
	// on the best chain; nil hash means never-confirmed or disconnected
	// back to pending. Side-chain appearances are kept only in
	// sideChainHashes.
	BlockHash   *chainhash.Hash256
	BlockHeight int32

	// sideChainHashes records every side-chain block (hash to height)
	// this transaction was seen appearing in. Nothing reads it back: a
	// reorg that promotes that branch replays the block's transactions
	// through ReceiveFromBlock.
	sideChainHashes map[chainhash.Hash256]int32

	// ourOutputs is the set of output indices that pay one of the
	// wallet's own scripts.
	ourOutputs map[uint32]struct{}

	// spentBy maps each of ourOutputs' indices to the hash of the
	// wallet transaction that spends it, once spent.
	spentBy map[uint32]chainhash.Hash256
}

func newWalletTx(tx *wire.MsgTx, source Source) *WalletTx {
	return &WalletTx{
		Hash:            tx.TxHash(),
		Tx:              tx,
		Pool:            PoolPending,
		Confidence:      newConfidence(source),
		sideChainHashes: make(map[chainhash.Hash256]int32),
		ourOutputs:      make(map[uint32]struct{}),
		spentBy:         make(map[uint32]chainhash.Hash256),
	}
}

// CreditValue returns the sum of this transaction's outputs that pay the
// wallet.
func (wt *WalletTx) CreditValue() int64 {
	var total int64
	for idx := range wt.ourOutputs {
		total += int64(wt.Tx.TxOut[idx].Value)
	}
	return total
}

// UnspentCreditValue returns the sum of this transaction's wallet-paying
// outputs that are not yet spent by another known wallet transaction.
func (wt *WalletTx) UnspentCreditValue() int64 {
	var total int64
	for idx := range wt.ourOutputs {
		if _, spent := wt.spentBy[idx]; !spent {
			total += int64(wt.Tx.TxOut[idx].Value)
		}
	}
	return total
}

// HasUnspentCredit reports whether any wallet-paying output is unspent.
func (wt *WalletTx) HasUnspentCredit() bool {
	for idx := range wt.ourOutputs {
		if _, spent := wt.spentBy[idx]; !spent {
			return true
		}
	}
	return false
}

// IsCredit reports whether this transaction pays the wallet at all.
func (wt *WalletTx) IsCredit() bool {
	return len(wt.ourOutputs) > 0
}
