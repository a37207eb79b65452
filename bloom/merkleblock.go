// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package bloom

import (
	"github.com/corvidlabs/bitspv/chainhash"
	"github.com/corvidlabs/bitspv/wire"
)

// partialMerkleBuilder accumulates the flag bits and hash list of a BIP-37
// partial Merkle tree while walking a full tree top-down.
type partialMerkleBuilder struct {
	numTx  uint32
	allBits []bool
	matched []bool
	hashes  []*chainhash.Hash256
}

func calcTreeWidth(numTx uint32, height int) uint32 {
	return (numTx + (1 << uint(height)) - 1) >> uint(height)
}

func calcTreeHeight(numTx uint32) int {
	height := 0
	for calcTreeWidth(numTx, height) > 1 {
		height++
	}
	return height
}

func merkleHashPair(left, right *chainhash.Hash256) chainhash.Hash256 {
	var buf [64]byte
	copy(buf[:32], left[:])
	if right != nil {
		copy(buf[32:], right[:])
	} else {
		copy(buf[32:], left[:])
	}
	return chainhash.DoubleHashH(buf[:])
}

func calcHash(height int, pos uint32, leaves []*chainhash.Hash256, numTx uint32) *chainhash.Hash256 {
	if height == 0 {
		h := leaves[pos]
		return h
	}
	left := calcHash(height-1, pos*2, leaves, numTx)
	width := calcTreeWidth(numTx, height-1)
	var right *chainhash.Hash256
	if pos*2+1 < width {
		right = calcHash(height-1, pos*2+1, leaves, numTx)
	}
	h := merkleHashPair(left, right)
	return &h
}

func (b *partialMerkleBuilder) traverse(height int, pos uint32, leaves []*chainhash.Hash256, txMatches []bool) {
	var parentMatch bool
	from := pos << uint(height)
	to := (pos + 1) << uint(height)
	if to > b.numTx {
		to = b.numTx
	}
	for i := from; i < to; i++ {
		if txMatches[i] {
			parentMatch = true
			break
		}
	}
	b.allBits = append(b.allBits, parentMatch)

	if height == 0 || !parentMatch {
		h := calcHash(height, pos, leaves, b.numTx)
		b.hashes = append(b.hashes, h)
		return
	}

	b.traverse(height-1, pos*2, leaves, txMatches)
	if pos*2+1 < calcTreeWidth(b.numTx, height-1) {
		b.traverse(height-1, pos*2+1, leaves, txMatches)
	}
}

// NewMerkleBlock builds a MsgMerkleBlock for block, including only the
// hashes/flags needed to prove the transactions that match filter, plus
// the matched transactions themselves (returned separately, since the
// wire type carries only header and proof).
func NewMerkleBlock(block *wire.MsgBlock, filter *Filter) (*wire.MsgMerkleBlock, []*chainhash.Hash256) {
	numTx := uint32(len(block.Transactions))

	leaves := make([]*chainhash.Hash256, numTx)
	txMatches := make([]bool, numTx)
	var matchedHashes []*chainhash.Hash256
	for i, tx := range block.Transactions {
		h := tx.TxHash()
		leaves[i] = &h
		if filter == nil || filter.MatchTxAndUpdate(tx) {
			txMatches[i] = true
			matchedHashes = append(matchedHashes, &h)
		}
	}

	b := &partialMerkleBuilder{numTx: numTx}
	if numTx > 0 {
		b.traverse(calcTreeHeight(numTx), 0, leaves, txMatches)
	}

	flags := packBits(b.allBits)

	mb := &wire.MsgMerkleBlock{
		Header:       block.Header,
		Transactions: numTx,
		Hashes:       b.hashes,
		Flags:        flags,
	}
	return mb, matchedHashes
}

func packBits(bits []bool) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, bit := range bits {
		if bit {
			out[i/8] |= 1 << uint(i%8)
		}
	}
	return out
}

func unpackBits(flags []byte, n int) []bool {
	if max := len(flags) * 8; n > max {
		n = max
	}
	out := make([]bool, n)
	for i := 0; i < n; i++ {
		out[i] = flags[i/8]&(1<<uint(i%8)) != 0
	}
	return out
}

// merkleTreeVerifier replays the flag/hash stream produced by
// NewMerkleBlock to recompute the implied Merkle root and collect the
// matched leaf hashes, mirroring the wallet side of BIP-37.
type merkleTreeVerifier struct {
	bits      []bool
	hashes    []*chainhash.Hash256
	bitsUsed  int
	hashesUsed int
	matched   []*chainhash.Hash256
}

func (v *merkleTreeVerifier) recurse(height int, pos uint32, numTx uint32) (*chainhash.Hash256, error) {
	if v.bitsUsed >= len(v.bits) {
		return nil, errMerkleTreeTruncated
	}
	bit := v.bits[v.bitsUsed]
	v.bitsUsed++

	if height == 0 || !bit {
		if v.hashesUsed >= len(v.hashes) {
			return nil, errMerkleTreeTruncated
		}
		h := v.hashes[v.hashesUsed]
		v.hashesUsed++
		if height == 0 && bit {
			v.matched = append(v.matched, h)
		}
		return h, nil
	}

	left, err := v.recurse(height-1, pos*2, numTx)
	if err != nil {
		return nil, err
	}
	var right *chainhash.Hash256
	if pos*2+1 < calcTreeWidth(numTx, height-1) {
		right, err = v.recurse(height-1, pos*2+1, numTx)
		if err != nil {
			return nil, err
		}
	}
	h := merkleHashPair(left, right)
	return &h, nil
}

// VerifyMerkleBlock recomputes the Merkle root implied by mb's proof and
// checks it against the block header's declared root, returning the
// matched leaf transaction hashes on success.
func VerifyMerkleBlock(mb *wire.MsgMerkleBlock) ([]*chainhash.Hash256, error) {
	if mb.Transactions == 0 {
		return nil, nil
	}
	height := calcTreeHeight(mb.Transactions)
	// The exact number of proof bits isn't known until replay; unpack
	// every bit the flag bytes carry and let recurse stop itself.
	bits := unpackBits(mb.Flags, len(mb.Flags)*8)

	v := &merkleTreeVerifier{bits: bits, hashes: mb.Hashes}
	root, err := v.recurse(height, 0, mb.Transactions)
	if err != nil {
		return nil, err
	}
	if *root != mb.Header.MerkleRoot {
		return nil, errMerkleRootMismatch
	}
	return v.matched, nil
}
