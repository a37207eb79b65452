// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainstore

import (
	"math/big"

	"github.com/corvidlabs/bitspv/chainhash"
	"github.com/corvidlabs/bitspv/chaincfg"
	"github.com/corvidlabs/bitspv/wire"
)

// MemStore is an in-memory Store, used by tests and by short-lived
// processes (e.g. a one-shot CLI balance check) that don't need a
// persistent header chain across runs.
type MemStore struct {
	params *chaincfg.Params

	byHash   map[chainhash.Hash256]*StoredBlock
	byHeight map[int32]chainhash.Hash256
	undo     map[int32]*UndoRecord
	tip      *StoredBlock
	genesis  *StoredBlock
}

// NewMemStore returns a MemStore seeded with params' genesis block.
func NewMemStore(params *chaincfg.Params) *MemStore {
	genesis := &StoredBlock{
		Header:    *params.GenesisBlock,
		Height:    0,
		ChainWork: blockWork(params.GenesisBlock.Bits),
	}
	s := &MemStore{
		params:   params,
		byHash:   make(map[chainhash.Hash256]*StoredBlock),
		byHeight: make(map[int32]chainhash.Hash256),
		undo:     make(map[int32]*UndoRecord),
	}
	hash := genesis.Hash()
	s.byHash[hash] = genesis
	s.byHeight[0] = hash
	s.tip = genesis
	s.genesis = genesis
	return s
}

func (s *MemStore) Genesis() *StoredBlock { return s.genesis }
func (s *MemStore) Tip() *StoredBlock     { return s.tip }

func (s *MemStore) GetHeader(hash chainhash.Hash256) (*StoredBlock, error) {
	sb, ok := s.byHash[hash]
	if !ok {
		return nil, ErrNotFound
	}
	return sb, nil
}

func (s *MemStore) GetHeaderByHeight(height int32) (*StoredBlock, error) {
	hash, ok := s.byHeight[height]
	if !ok {
		return nil, ErrNotFound
	}
	return s.GetHeader(hash)
}

// Put accepts header as a child of an already-stored parent, computes its
// cumulative work, and switches the best-chain tip (triggering a reorg if
// the new branch overtakes the current one) when its work exceeds the
// current tip's.
func (s *MemStore) Put(header *wire.BlockHeader) (*StoredBlock, *ReorgResult, error) {
	parent, ok := s.byHash[header.PrevBlock]
	if !ok {
		return nil, nil, ErrOrphan
	}

	hash := header.BlockHash()
	if existing, ok := s.byHash[hash]; ok {
		return existing, nil, nil
	}

	if err := checkHeaderContext(header, parent, s.params, s.GetHeader); err != nil {
		return nil, nil, err
	}

	work := new(big.Int).Add(parent.ChainWork, blockWork(header.Bits))
	sb := &StoredBlock{
		Header:    *header,
		Height:    parent.Height + 1,
		ChainWork: work,
	}
	s.byHash[hash] = sb

	if work.Cmp(s.tip.ChainWork) <= 0 {
		// Accepted as a known but non-best branch; no tip change.
		return sb, nil, nil
	}

	oldTip := s.tip
	forkPoint, disconnected, connected, err := findFork(oldTip, sb, s.GetHeader)
	if err != nil {
		return nil, nil, err
	}

	for _, d := range disconnected {
		delete(s.byHeight, d.Height)
	}
	for _, c := range connected {
		rec := &UndoRecord{Height: c.Height, Block: c.Hash()}
		for _, d := range disconnected {
			if d.Height == c.Height {
				prev := d.Hash()
				rec.Previous = &prev
				break
			}
		}
		s.undo[c.Height] = rec
		s.byHeight[c.Height] = c.Hash()
	}
	s.tip = sb

	for h := range s.undo {
		if h <= sb.Height-DefaultUndoDepth {
			delete(s.undo, h)
		}
	}

	result := &ReorgResult{ForkPoint: forkPoint, Disconnected: disconnected, Connected: connected}
	if result.IsReorg() {
		log.Infof("chain reorganize: disconnected %d blocks, connected %d, new tip %v at height %d",
			len(disconnected), len(connected), sb.Hash(), sb.Height)
	}
	return sb, result, nil
}

func (s *MemStore) GetUndoable(height int32) (*UndoRecord, error) {
	rec, ok := s.undo[height]
	if !ok {
		return nil, ErrNotFound
	}
	return rec, nil
}

// Locator builds a sparse block locator from the current tip:
// the most recent 10 heights, then exponential back-off, always
// including genesis.
func (s *MemStore) Locator() wire.BlockLocator {
	var locator wire.BlockLocator
	step := int32(1)
	height := s.tip.Height

	for {
		sb, err := s.GetHeaderByHeight(height)
		if err == nil {
			h := sb.Hash()
			locator = append(locator, &h)
		}
		if height == 0 {
			break
		}
		if len(locator) >= 10 {
			step *= 2
		}
		height -= step
		if height < 0 {
			height = 0
		}
	}
	return locator
}
