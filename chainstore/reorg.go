// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainstore

import "github.com/corvidlabs/bitspv/chainhash"

// ReorgResult describes how accepting a new header changed the best
// chain. Disconnected and Connected are
// listed oldest-first; when the new header simply extends the existing
// tip, Disconnected is empty and Connected holds just the new block.
type ReorgResult struct {
	ForkPoint    *StoredBlock
	Disconnected []*StoredBlock
	Connected    []*StoredBlock
}

// IsReorg reports whether r represents an actual branch switch rather
// than a simple tip extension.
func (r *ReorgResult) IsReorg() bool {
	return r != nil && len(r.Disconnected) > 0
}

// findFork walks both chains back from their tips to the common
// ancestor, using parent lookups supplied by the caller so this logic
// stays independent of the storage backend.
func findFork(oldTip, newTip *StoredBlock, byHash func(chainhash.Hash256) (*StoredBlock, error)) (*StoredBlock, []*StoredBlock, []*StoredBlock, error) {
	var disconnected, connected []*StoredBlock

	a, b := oldTip, newTip
	for a.Height > b.Height {
		disconnected = append(disconnected, a)
		parent, err := byHash(a.Header.PrevBlock)
		if err != nil {
			return nil, nil, nil, err
		}
		a = parent
	}
	for b.Height > a.Height {
		connected = append(connected, b)
		parent, err := byHash(b.Header.PrevBlock)
		if err != nil {
			return nil, nil, nil, err
		}
		b = parent
	}

	for a.Hash() != b.Hash() {
		disconnected = append(disconnected, a)
		connected = append(connected, b)

		parentA, err := byHash(a.Header.PrevBlock)
		if err != nil {
			return nil, nil, nil, err
		}
		parentB, err := byHash(b.Header.PrevBlock)
		if err != nil {
			return nil, nil, nil, err
		}
		a, b = parentA, parentB
	}

	reverse(disconnected)
	reverse(connected)
	return a, disconnected, connected, nil
}

func reverse(s []*StoredBlock) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
