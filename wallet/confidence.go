// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import "github.com/corvidlabs/bitspv/chainhash"

// ConfidenceKind is the kind a transaction's Confidence currently holds.
type ConfidenceKind int

const (
	// ConfUnknown is the zero value: a transaction the wallet has never
	// classified.
	ConfUnknown ConfidenceKind = iota

	// ConfBuilding means the transaction is part of the current best
	// chain at a known depth.
	ConfBuilding

	// ConfPending means the transaction is unconfirmed but known and
	// not conflicting with anything on the best chain.
	ConfPending

	// ConfDead means a conflicting transaction overrode this one on the
	// best chain.
	ConfDead

	// ConfInConflict means two or more unconfirmed transactions spend
	// the same output and none of them is yet confirmed.
	ConfInConflict
)

func (k ConfidenceKind) String() string {
	switch k {
	case ConfBuilding:
		return "building"
	case ConfPending:
		return "pending"
	case ConfDead:
		return "dead"
	case ConfInConflict:
		return "in-conflict"
	default:
		return "unknown"
	}
}

// Source identifies how a transaction first reached the wallet.
type Source int

const (
	SourceUnknown Source = iota
	SourceSelf
	SourceNetwork
)

// Confidence is the mutable classification attached to every transaction
// the wallet knows about.
type Confidence struct {
	Kind   ConfidenceKind
	Source Source

	// Height/Depth are meaningful only when Kind == ConfBuilding: Height
	// is the block height it confirmed at, Depth is tip-height minus
	// Height plus one, recomputed whenever the tip moves.
	Height int32
	Depth  int32

	// Replacement names the overriding transaction when Kind ==
	// ConfDead.
	Replacement *chainhash.Hash256

	// SeenByPeers is the set of peer endpoints that have announced
	// (inv'd) this transaction back to us, as recorded by MarkSeenBy.
	SeenByPeers map[string]struct{}
}

func newConfidence(source Source) *Confidence {
	return &Confidence{Kind: ConfUnknown, Source: source, SeenByPeers: make(map[string]struct{})}
}

// MarkSeenBy records that peer announced this transaction back to us.
func (c *Confidence) MarkSeenBy(peer string) {
	if c.SeenByPeers == nil {
		c.SeenByPeers = make(map[string]struct{})
	}
	c.SeenByPeers[peer] = struct{}{}
}

// NumSeenBy reports how many distinct peers have announced this
// transaction back to us.
func (c *Confidence) NumSeenBy() int {
	return len(c.SeenByPeers)
}

// setBuilding transitions the confidence to Building at the given height,
// with depth computed against the supplied tip height.
func (c *Confidence) setBuilding(height, tipHeight int32) {
	c.Kind = ConfBuilding
	c.Height = height
	c.Depth = tipHeight - height + 1
	c.Replacement = nil
}

// setPending transitions the confidence back to Pending, clearing any
// height/depth/replacement state it carried as a Building or Dead tx.
func (c *Confidence) setPending() {
	c.Kind = ConfPending
	c.Height = 0
	c.Depth = 0
	c.Replacement = nil
}

// setDead transitions the confidence to Dead, recording the transaction
// that overrode it.
func (c *Confidence) setDead(replacement chainhash.Hash256) {
	c.Kind = ConfDead
	c.Replacement = &replacement
}

// setInConflict transitions the confidence to InConflict.
func (c *Confidence) setInConflict() {
	c.Kind = ConfInConflict
}
