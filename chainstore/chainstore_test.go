// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainstore

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/corvidlabs/bitspv/chaincfg"
	"github.com/corvidlabs/bitspv/wire"
)

// nextHeader builds a valid child header on top of parent. salt varies the
// merkle root so sibling test blocks hash differently; the nonce is then
// ground until the header clears regtest's wide proof-of-work target,
// which takes an expected two attempts.
func nextHeader(t *testing.T, parent *StoredBlock, salt byte) *wire.BlockHeader {
	t.Helper()
	h := &wire.BlockHeader{
		Version:    1,
		PrevBlock:  parent.Hash(),
		MerkleRoot: parent.Hash(),
		Timestamp:  parent.Header.Timestamp.Add(time.Minute * 10),
		Bits:       parent.Header.Bits,
	}
	h.MerkleRoot[0] ^= salt
	for CheckProofOfWork(h, chaincfg.RegressionNetParams.PowLimit) != nil {
		h.Nonce++
	}
	return h
}

func TestCompactToBigRoundTrip(t *testing.T) {
	for _, bits := range []uint32{0x1d00ffff, 0x1b0404cb, 0x207fffff} {
		n := CompactToBig(bits)
		got := BigToCompact(n)
		require.Equal(t, bits, got)
	}
}

func TestMemStoreAcceptsLinearChain(t *testing.T) {
	store := NewMemStore(&chaincfg.RegressionNetParams)
	require.Equal(t, int32(0), store.Tip().Height)

	parent := store.Genesis()
	for i := 0; i < 5; i++ {
		sb, reorg, err := store.Put(nextHeader(t, parent, byte(i)))
		require.NoError(t, err)
		require.False(t, reorg.IsReorg())
		parent = sb
	}
	require.Equal(t, int32(5), store.Tip().Height)
}

func TestMemStoreDetectsReorg(t *testing.T) {
	store := NewMemStore(&chaincfg.RegressionNetParams)
	genesis := store.Genesis()

	sbA1, _, err := store.Put(nextHeader(t, genesis, 0x01))
	require.NoError(t, err)
	_, _, err = store.Put(nextHeader(t, sbA1, 0x02))
	require.NoError(t, err)

	// An equal-length, equal-work competing branch must stay a side
	// chain.
	sbB1, reorg, err := store.Put(nextHeader(t, genesis, 0x03))
	require.NoError(t, err)
	require.False(t, reorg.IsReorg())
	sbB2, reorg, err := store.Put(nextHeader(t, sbB1, 0x04))
	require.NoError(t, err)
	require.False(t, reorg.IsReorg())
	require.Equal(t, int32(2), store.Tip().Height)

	// One more block tips the work balance and forces the switch.
	_, reorg, err = store.Put(nextHeader(t, sbB2, 0x05))
	require.NoError(t, err)
	require.True(t, reorg.IsReorg())
	require.Equal(t, genesis.Hash(), reorg.ForkPoint.Hash())
	require.Len(t, reorg.Disconnected, 2)
	require.Len(t, reorg.Connected, 3)
	require.Equal(t, int32(3), store.Tip().Height)
}

func TestMemStoreRejectsOrphan(t *testing.T) {
	store := NewMemStore(&chaincfg.RegressionNetParams)
	orphanHeader := nextHeader(t, store.Genesis(), 0x07)
	orphanHeader.PrevBlock[0] ^= 0xff

	_, _, err := store.Put(orphanHeader)
	require.ErrorIs(t, err, ErrOrphan)
}

func TestMemStoreRejectsBadProofOfWork(t *testing.T) {
	params := chaincfg.MainNetParams
	store := NewMemStore(&params)

	// An unmined header at mainnet difficulty has essentially no chance
	// of meeting the target.
	h := &wire.BlockHeader{
		Version:    1,
		PrevBlock:  store.Genesis().Hash(),
		MerkleRoot: store.Genesis().Hash(),
		Timestamp:  store.Genesis().Header.Timestamp.Add(time.Minute * 10),
		Bits:       params.PowLimitBits,
	}
	_, _, err := store.Put(h)

	var rerr RuleError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, ErrHighHash, rerr.Code)
}

func TestMemStoreRejectsStaleTimestamp(t *testing.T) {
	store := NewMemStore(&chaincfg.RegressionNetParams)

	h := nextHeader(t, store.Genesis(), 0x01)
	h.Timestamp = store.Genesis().Header.Timestamp
	for CheckProofOfWork(h, chaincfg.RegressionNetParams.PowLimit) != nil {
		h.Nonce++
	}

	_, _, err := store.Put(h)
	var rerr RuleError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, ErrTimeTooOld, rerr.Code)
}

func TestMemStoreRejectsUnexpectedDifficulty(t *testing.T) {
	params := chaincfg.RegressionNetParams
	store := NewMemStore(&params)

	h := nextHeader(t, store.Genesis(), 0x01)
	h.Bits = 0x207ffffe
	for CheckProofOfWork(h, params.PowLimit) != nil {
		h.Nonce++
	}

	_, _, err := store.Put(h)
	var rerr RuleError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, ErrUnexpectedDifficulty, rerr.Code)
}

func TestMemStoreRecordsUndoHistory(t *testing.T) {
	store := NewMemStore(&chaincfg.RegressionNetParams)
	genesis := store.Genesis()

	sbA1, _, err := store.Put(nextHeader(t, genesis, 0x01))
	require.NoError(t, err)

	rec, err := store.GetUndoable(1)
	require.NoError(t, err)
	require.Equal(t, sbA1.Hash(), rec.Block)
	require.Nil(t, rec.Previous)

	// A two-block competing branch replaces height 1; the undo record
	// must remember the old occupant.
	sbB1, _, err := store.Put(nextHeader(t, genesis, 0x02))
	require.NoError(t, err)
	_, reorg, err := store.Put(nextHeader(t, sbB1, 0x03))
	require.NoError(t, err)
	require.True(t, reorg.IsReorg())

	rec, err = store.GetUndoable(1)
	require.NoError(t, err)
	require.Equal(t, sbB1.Hash(), rec.Block)
	require.NotNil(t, rec.Previous)
	require.Equal(t, sbA1.Hash(), *rec.Previous)

	_, err = store.GetUndoable(99)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocatorIncludesGenesis(t *testing.T) {
	store := NewMemStore(&chaincfg.RegressionNetParams)
	parent := store.Genesis()
	for i := 0; i < 15; i++ {
		sb, _, err := store.Put(nextHeader(t, parent, byte(i)))
		require.NoError(t, err)
		parent = sb
	}

	locator := store.Locator()
	require.NotEmpty(t, locator)
	genesisHash := store.Genesis().Hash()
	require.Equal(t, genesisHash, *locator[len(locator)-1])
}

func TestLevelStoreRoundTripsUndoRecord(t *testing.T) {
	rec := &UndoRecord{Height: 7}
	rec.Block[0] = 0xaa
	prev := rec.Block
	prev[1] = 0xbb
	rec.Previous = &prev

	got, err := decodeUndoRecord(encodeUndoRecord(rec))
	require.NoError(t, err)
	require.Equal(t, rec, got)
}

func TestCalcNextRequiredDifficultyClampsAdjustment(t *testing.T) {
	lastBits := uint32(0x1d00ffff)
	targetTimespan := int64((time.Hour * 24 * 14).Seconds())

	got := CalcNextRequiredDifficulty(lastBits, targetTimespan*100, targetTimespan, 4, CompactToBig(0x207fffff))
	clampedTarget := CompactToBig(got)

	fourXTarget := new(big.Int).Mul(CompactToBig(lastBits), big.NewInt(4))
	require.Equal(t, 0, clampedTarget.Cmp(fourXTarget))
}
