// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainstore persists the block header chain an SPV client has
// verified, tracks cumulative proof-of-work so the chain with the most
// work is always known, and resolves reorgs when a competing branch
// overtakes the current tip.
package chainstore

import (
	"errors"
	"math/big"

	"github.com/corvidlabs/bitspv/chainhash"
	"github.com/corvidlabs/bitspv/wire"
)

// ErrNotFound is returned when a hash or height has no corresponding
// stored block.
var ErrNotFound = errors.New("chainstore: block not found")

// ErrOrphan is returned by Put when a header's parent is not already
// known.
var ErrOrphan = errors.New("chainstore: header's parent is unknown")

// StoredBlock is a verified header together with the bookkeeping the
// store needs: its height and the cumulative proof-of-work of the chain
// ending at it.
type StoredBlock struct {
	Header    wire.BlockHeader
	Height    int32
	ChainWork *big.Int
}

// Hash returns the block identifier of the stored header.
func (s *StoredBlock) Hash() chainhash.Hash256 {
	return s.Header.BlockHash()
}

// blockWork returns the work represented by a single block at the given
// difficulty bits: (2^256 / (target+1)).
func blockWork(bits uint32) *big.Int {
	target := CompactToBig(bits)
	if target.Sign() <= 0 {
		return big.NewInt(0)
	}
	// 2^256 / (target + 1)
	denom := new(big.Int).Add(target, bigOne)
	numerator := new(big.Int).Lsh(bigOne, 256)
	return new(big.Int).Div(numerator, denom)
}

var bigOne = big.NewInt(1)

// DefaultUndoDepth is how many of the most recent main-chain heights
// retain an UndoRecord; older records are pruned as the tip advances.
const DefaultUndoDepth = 288

// UndoRecord remembers what occupied one main-chain height before the
// most recent tip change touched it, enough to roll that height
// assignment back if the change is itself undone by a later reorg.
type UndoRecord struct {
	Height int32

	// Block is the occupant after the change.
	Block chainhash.Hash256

	// Previous is the occupant before the change, nil when the height
	// was newly reached.
	Previous *chainhash.Hash256
}

// Store is the persistence and lookup interface the chain-sync coordinator
// and the wallet's confidence machinery depend on. It is always
// accessed from the single chain-store dispatcher goroutine; none of
// its methods are independently safe for concurrent use.
type Store interface {
	// Genesis returns the store's configured genesis block.
	Genesis() *StoredBlock

	// Tip returns the current best (most cumulative work) chain tip.
	Tip() *StoredBlock

	// GetHeader looks up a stored block by its hash.
	GetHeader(hash chainhash.Hash256) (*StoredBlock, error)

	// GetHeaderByHeight looks up the block at height on the current
	// best chain.
	GetHeaderByHeight(height int32) (*StoredBlock, error)

	// Put verifies and stores a new header building on an already-known
	// parent. It returns the resulting StoredBlock and a ReorgResult
	// describing any chain-tip change caused by accepting it.
	Put(header *wire.BlockHeader) (*StoredBlock, *ReorgResult, error)

	// GetUndoable returns the undo record for height, or ErrNotFound
	// when height is outside the retained window of DefaultUndoDepth
	// most recent heights.
	GetUndoable(height int32) (*UndoRecord, error)

	// Locator returns a block locator describing the current best
	// chain, for use in a getheaders/getblocks request.
	Locator() wire.BlockLocator
}
