// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peergroup

import (
	"github.com/decred/dcrd/lru"

	"github.com/corvidlabs/bitspv/chainhash"
)

// defaultSeenCacheSize bounds how many recently-announced inventory
// hashes the group remembers, so a hash re-announced by a second peer
// after we've already requested (or received) it doesn't trigger a
// redundant getdata round-trip.
const defaultSeenCacheSize = 50000

// seenCache is a bounded set of recently-seen inventory hashes, backed by
// decred's generic LRU, so the download pipeline avoids re-requesting
// inventory it has already fetched.
type seenCache struct {
	cache lru.Cache[chainhash.Hash256]
}

func newSeenCache(size int) *seenCache {
	if size <= 0 {
		size = defaultSeenCacheSize
	}
	return &seenCache{cache: lru.NewCache[chainhash.Hash256](uint32(size))}
}

// addIfNew records hash as seen and reports whether it was new.
func (c *seenCache) addIfNew(hash chainhash.Hash256) bool {
	if c.cache.Contains(hash) {
		return false
	}
	c.cache.Add(hash)
	return true
}
