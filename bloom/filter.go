// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package bloom implements the BIP-37 filter a wallet pushes to its peers
// so that it receives only blocks and transactions it cares about, and the
// partial Merkle tree (merkleblock) a peer returns in response.
package bloom

import (
	"math"

	"github.com/spaolacci/murmur3"

	"github.com/corvidlabs/bitspv/chainhash"
	"github.com/corvidlabs/bitspv/txscript"
	"github.com/corvidlabs/bitspv/wire"
)

const (
	// ln2Squared is used by the optimal-parameter formulas below.
	ln2Squared = math.Ln2 * math.Ln2

	// maxFilterBits caps the filter at wire.MaxFilterLoadDataSize bytes.
	maxFilterBits = wire.MaxFilterLoadDataSize * 8

	// maxHashFuncs is BIP-37's cap on the number of hash rounds.
	maxHashFuncs = 50

	// murmurSeedScale is BIP-37's constant for deriving the per-round
	// murmur3 seed from the round index and the filter's tweak.
	murmurSeedScale = 0xfba4c795
)

// Filter is a peer-side or wallet-side bloom filter: a bit array tested and
// set via several independent murmur3 hashes of each candidate element.
type Filter struct {
	bits      []byte
	hashFuncs uint32
	tweak     uint32
	updateTy  wire.BloomUpdateType
}

// NewFilter returns a filter sized for n elements at the given false
// positive rate fpRate, seeded with tweak, per BIP-37's optimal m/k
// formulas. updateTy controls how a matched output feeds back into the
// filter (see wire.BloomUpdateType).
func NewFilter(n, tweak uint32, fpRate float64, updateTy wire.BloomUpdateType) *Filter {
	bitsPerElement := -1 * math.Log(fpRate) / ln2Squared
	numBits := uint32(float64(n) * bitsPerElement)
	if numBits > maxFilterBits {
		numBits = maxFilterBits
	}
	if numBits == 0 {
		numBits = 8
	}
	// Round up to a byte boundary.
	dataLen := (numBits + 7) / 8

	numFuncs := uint32(float64(dataLen*8) / float64(n) * math.Ln2)
	if numFuncs > maxHashFuncs {
		numFuncs = maxHashFuncs
	}
	if numFuncs == 0 {
		numFuncs = 1
	}

	return &Filter{
		bits:      make([]byte, dataLen),
		hashFuncs: numFuncs,
		tweak:     tweak,
		updateTy:  updateTy,
	}
}

// LoadFilter reconstructs a Filter from an installed filterload message,
// the shape a peer session receives over the wire.
func LoadFilter(msg *wire.MsgFilterLoad) *Filter {
	return &Filter{
		bits:      append([]byte(nil), msg.Filter...),
		hashFuncs: msg.HashFuncs,
		tweak:     msg.Tweak,
		updateTy:  msg.Flags,
	}
}

func (f *Filter) hash(hashNum uint32, data []byte) uint32 {
	seed := hashNum*murmurSeedScale + f.tweak
	return murmur3.Sum32WithSeed(data, seed) % uint32(len(f.bits)*8)
}

func (f *Filter) setBit(idx uint32) {
	f.bits[idx>>3] |= 1 << (idx & 7)
}

func (f *Filter) isBitSet(idx uint32) bool {
	return f.bits[idx>>3]&(1<<(idx&7)) != 0
}

// Add inserts data into the filter.
func (f *Filter) Add(data []byte) {
	if len(f.bits) == 0 {
		return
	}
	for i := uint32(0); i < f.hashFuncs; i++ {
		f.setBit(f.hash(i, data))
	}
}

// AddHash inserts a Hash256's bytes into the filter.
func (f *Filter) AddHash(h *chainhash.Hash256) {
	f.Add(h[:])
}

// Matches reports whether data may be in the filter (false positives are
// expected; false negatives never happen).
func (f *Filter) Matches(data []byte) bool {
	if len(f.bits) == 0 {
		return false
	}
	for i := uint32(0); i < f.hashFuncs; i++ {
		if !f.isBitSet(f.hash(i, data)) {
			return false
		}
	}
	return true
}

// MatchesHash reports whether a Hash256's bytes may be in the filter.
func (f *Filter) MatchesHash(h *chainhash.Hash256) bool {
	return f.Matches(h[:])
}

// MsgFilterLoad renders the filter into a wire message a peer session can
// send to install it on a connection.
func (f *Filter) MsgFilterLoad() *wire.MsgFilterLoad {
	return &wire.MsgFilterLoad{
		Filter:    append([]byte(nil), f.bits...),
		HashFuncs: f.hashFuncs,
		Tweak:     f.tweak,
		Flags:     f.updateTy,
	}
}

// UpdateType reports the BloomUpdateType this filter was configured with.
func (f *Filter) UpdateType() wire.BloomUpdateType { return f.updateTy }

// serializeOutPoint renders op in the 36-byte form BIP-37 inserts and
// matches outpoints as: the txid followed by the little-endian output
// index.
func serializeOutPoint(op *wire.OutPoint) []byte {
	var buf [36]byte
	copy(buf[:32], op.Hash[:])
	buf[32] = byte(op.Index)
	buf[33] = byte(op.Index >> 8)
	buf[34] = byte(op.Index >> 16)
	buf[35] = byte(op.Index >> 24)
	return buf[:]
}

// matchesScript reports whether script itself, or any data element it
// pushes, is in the filter. BIP-37 matching is element-wise; the
// whole-script test additionally covers filters whose wallet inserted
// full scriptPubKeys as its watch set.
func (f *Filter) matchesScript(script []byte) bool {
	if f.Matches(script) {
		return true
	}
	elements, err := txscript.PushedData(script)
	if err != nil {
		return false
	}
	for _, e := range elements {
		if len(e) == 0 {
			continue
		}
		if f.Matches(e) {
			return true
		}
	}
	return false
}

// MatchTxAndUpdate reports whether tx matches the filter — the txid
// itself, any data element pushed by an output script, any input's
// previous outpoint or txid, or any data element pushed by an input's
// signature script — and adds the outpoint of every matched output back
// into the filter so that its later spends are also matched.
// BloomUpdateNone adds nothing; BloomUpdateAll and BloomUpdateP2PubkeyOnly
// both add every matched output's outpoint, whatever its script template.
func (f *Filter) MatchTxAndUpdate(tx *wire.MsgTx) bool {
	matched := false
	txHash := tx.TxHash()
	if f.MatchesHash(&txHash) {
		matched = true
	}

	for i, out := range tx.TxOut {
		if !f.matchesScript(out.PkScript) {
			continue
		}
		matched = true
		if f.updateTy == wire.BloomUpdateNone {
			continue
		}
		op := wire.NewOutPoint(&txHash, uint32(i))
		f.Add(serializeOutPoint(&op))
	}

	for _, in := range tx.TxIn {
		if f.Matches(serializeOutPoint(&in.PreviousOutPoint)) {
			matched = true
			continue
		}
		prevHash := in.PreviousOutPoint.Hash
		if f.MatchesHash(&prevHash) {
			matched = true
			continue
		}
		if f.matchesScript(in.SignatureScript) {
			matched = true
		}
	}

	return matched
}
