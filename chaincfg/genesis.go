// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"time"

	"github.com/corvidlabs/bitspv/chainhash"
	"github.com/corvidlabs/bitspv/wire"
)

func mustHash(s string) chainhash.Hash256 {
	h, err := chainhash.NewHash256FromStr(s)
	if err != nil {
		panic("chaincfg: invalid hard-coded hash: " + err.Error())
	}
	return h
}

// BlockHeaderTemplate builds a genesis-style header: every network's
// genesis block has an all-zero PrevBlock, since it has no parent.
func BlockHeaderTemplate(version int32, merkleRoot chainhash.Hash256, timestamp time.Time, bits, nonce uint32) wire.BlockHeader {
	return wire.BlockHeader{
		Version:    version,
		PrevBlock:  chainhash.Hash256{},
		MerkleRoot: merkleRoot,
		Timestamp:  timestamp,
		Bits:       bits,
		Nonce:      nonce,
	}
}

// genesisMerkleRoot is the Merkle root of the single coinbase transaction
// every network's genesis block shares.
var genesisMerkleRoot = mustHash("4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b")

var mainNetGenesisHeader = BlockHeaderTemplate(
	1,
	genesisMerkleRoot,
	time.Date(2009, time.January, 3, 18, 15, 5, 0, time.UTC),
	0x1d00ffff,
	2083236893,
)

var mainNetGenesisHash = mustHash("000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f")

var testNet3GenesisHeader = BlockHeaderTemplate(
	1,
	genesisMerkleRoot,
	time.Date(2011, time.February, 2, 23, 16, 42, 0, time.UTC),
	0x1d00ffff,
	414098458,
)

var testNet3GenesisHash = mustHash("000000000933ea01ad0ee984209779baaec3ced90fa3f408719526f8d77f4943")

var regTestGenesisHeader = BlockHeaderTemplate(
	1,
	genesisMerkleRoot,
	time.Date(2011, time.February, 2, 23, 16, 42, 0, time.UTC),
	0x207fffff,
	2,
)

var regTestGenesisHash = mustHash("0f9188f13cb7b2c71f2a335e3a4fc328bf5beb436012afca590b1a11466e2206")
