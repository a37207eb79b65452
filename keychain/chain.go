// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package keychain

import (
	"sync"

	"github.com/corvidlabs/bitspv/chainhash"
	"github.com/corvidlabs/bitspv/crypto"
)

// DefaultLookaheadSize is the number of unused keys the chain keeps
// derived ahead of the last one seen used on-chain, mirroring the BIP-44
// gap limit of 20.
const DefaultLookaheadSize = 20

// chainBranch is the BIP-44 change constant distinguishing the external
// (receive) branch from the internal (change) branch.
type chainBranch uint32

const (
	ExternalChain chainBranch = 0
	InternalChain chainBranch = 1
)

// KeyChain is a DeterministicKeyChain: a master extended key plus two
// derived branches (external/receive and internal/change), each
// maintained with a lookahead window so the wallet always has unused
// addresses ready to hand out.
type KeyChain struct {
	mu sync.Mutex

	master   *ExtendedKey
	external *ExtendedKey
	internal *ExtendedKey

	lookahead int

	// creationTime is the Unix-seconds timestamp this chain's keys were
	// derived at, used by the wallet's key-rotation sweep to
	// decide whether an output's key predates a rotation cutoff.
	creationTime uint32

	issuedExternal uint32 // next index to hand out
	issuedInternal uint32

	usedExternal uint32 // highest index seen used on-chain, +1
	usedInternal uint32

	derivedExternal uint32 // count of indices already in keysByHash
	derivedInternal uint32

	keysByHash map[chainhash.Hash160]*ExtendedKey
	locOfHash  map[chainhash.Hash160]keyLocation
}

// keyLocation identifies where in the two derivation branches a
// particular key hash lives, so a caller that only has the hash (e.g. the
// wallet matching a script) can report it used on the correct branch.
type keyLocation struct {
	branch chainBranch
	index  uint32
}

// NewKeyChain derives a fresh BIP-32 account (m/0 for external, m/1 for
// internal, simpler than full BIP-44's five-level path since it manages
// exactly one account) from seed, and pre-derives DefaultLookaheadSize
// keys on each branch. The chain's creation time (used by the wallet's
// key-rotation sweep) is left at zero; use NewKeyChainWithCreationTime
// to set it.
func NewKeyChain(seed []byte) (*KeyChain, error) {
	return NewKeyChainWithCreationTime(seed, 0)
}

// NewKeyChainWithCreationTime is NewKeyChain but stamps every key this
// chain ever derives with creationTime, a single Unix-seconds value for
// the whole chain. A BIP-32 chain's keys are all derived deterministically
// from the moment the seed was created, so one chain-wide timestamp is
// enough; the rotation sweep only needs to compare it against a single
// rotation cutoff.
func NewKeyChainWithCreationTime(seed []byte, creationTime uint32) (*KeyChain, error) {
	master, err := NewMasterKey(seed)
	if err != nil {
		return nil, err
	}

	external, err := master.Derive(uint32(ExternalChain))
	if err != nil {
		return nil, err
	}
	internal, err := master.Derive(uint32(InternalChain))
	if err != nil {
		return nil, err
	}

	kc := &KeyChain{
		master:       master,
		external:     external,
		internal:     internal,
		lookahead:    DefaultLookaheadSize,
		creationTime: creationTime,
		keysByHash:   make(map[chainhash.Hash160]*ExtendedKey),
		locOfHash:    make(map[chainhash.Hash160]keyLocation),
	}
	if err := kc.fillLookahead(); err != nil {
		return nil, err
	}
	return kc, nil
}

// NewWatchingKeyChain builds a public-only KeyChain from an already
// neutered external/internal pair, for the watching-wallet feature: it
// can generate receive addresses and recognize spends but never sign.
func NewWatchingKeyChain(external, internal *ExtendedKey) (*KeyChain, error) {
	kc := &KeyChain{
		external:   external.Neuter(),
		internal:   internal.Neuter(),
		lookahead:  DefaultLookaheadSize,
		keysByHash: make(map[chainhash.Hash160]*ExtendedKey),
		locOfHash:  make(map[chainhash.Hash160]keyLocation),
	}
	if err := kc.fillLookahead(); err != nil {
		return nil, err
	}
	return kc, nil
}

// IsWatching reports whether this chain can sign.
func (kc *KeyChain) IsWatching() bool { return kc.master == nil }

func (kc *KeyChain) branch(b chainBranch) *ExtendedKey {
	if b == ExternalChain {
		return kc.external
	}
	return kc.internal
}

func (kc *KeyChain) issued(b chainBranch) *uint32 {
	if b == ExternalChain {
		return &kc.issuedExternal
	}
	return &kc.issuedInternal
}

func (kc *KeyChain) used(b chainBranch) *uint32 {
	if b == ExternalChain {
		return &kc.usedExternal
	}
	return &kc.usedInternal
}

func (kc *KeyChain) derived(b chainBranch) *uint32 {
	if b == ExternalChain {
		return &kc.derivedExternal
	}
	return &kc.derivedInternal
}

// fillLookahead derives keys up to max(issued, used+lookahead) on both
// branches and indexes them by pubkey hash.
func (kc *KeyChain) fillLookahead() error {
	for _, b := range []chainBranch{ExternalChain, InternalChain} {
		target := *kc.used(b) + uint32(kc.lookahead)
		if *kc.issued(b) > target {
			target = *kc.issued(b)
		}
		branch := kc.branch(b)
		derived := kc.derived(b)
		for i := *derived; i < target; i++ {
			child, err := branch.Derive(i)
			if err != nil {
				continue // BIP-32 says skip invalid indices
			}
			hash := crypto.Hash160(child.PubKey().SerializeCompressed())
			kc.keysByHash[hash] = child
			kc.locOfHash[hash] = keyLocation{branch: b, index: i}
		}
		if target > *derived {
			*derived = target
		}
	}
	return nil
}

// NextReceiveKey returns the next unused external-chain key and advances
// the issuance cursor, topping up the lookahead window.
func (kc *KeyChain) NextReceiveKey() (*ExtendedKey, error) {
	return kc.nextKey(ExternalChain)
}

// NextChangeKey returns the next unused internal-chain key.
func (kc *KeyChain) NextChangeKey() (*ExtendedKey, error) {
	return kc.nextKey(InternalChain)
}

func (kc *KeyChain) nextKey(b chainBranch) (*ExtendedKey, error) {
	kc.mu.Lock()
	defer kc.mu.Unlock()

	idx := *kc.issued(b)
	*kc.issued(b) = idx + 1
	if err := kc.fillLookahead(); err != nil {
		return nil, err
	}
	return kc.branch(b).Derive(idx)
}

// MarkKeyUsed records that the key with this pubkey hash has been seen
// spent or received to on-chain, advancing the used watermark and topping
// up the lookahead window so the gap limit is maintained.
func (kc *KeyChain) MarkKeyUsed(hash chainhash.Hash160, branch chainBranch, index uint32) {
	kc.mu.Lock()
	defer kc.mu.Unlock()

	if index+1 > *kc.used(branch) {
		*kc.used(branch) = index + 1
	}
	_ = kc.fillLookahead()
}

// MarkKeyUsedByHash records that the key with this pubkey hash has been
// seen spent or received to on-chain, resolving which branch and index it
// belongs to from the lookahead index built by fillLookahead. It reports
// false if hash isn't one of this chain's keys.
func (kc *KeyChain) MarkKeyUsedByHash(hash chainhash.Hash160) bool {
	kc.mu.Lock()
	loc, ok := kc.locOfHash[hash]
	kc.mu.Unlock()
	if !ok {
		return false
	}
	kc.MarkKeyUsed(hash, loc.branch, loc.index)
	return true
}

// LookupByHash returns the extended key whose public key hashes to hash,
// if it falls within an already-derived lookahead window.
func (kc *KeyChain) LookupByHash(hash chainhash.Hash160) (*ExtendedKey, bool) {
	kc.mu.Lock()
	defer kc.mu.Unlock()
	k, ok := kc.keysByHash[hash]
	return k, ok
}

// CreationTimeOf returns the chain-wide creation timestamp if hash belongs
// to one of this chain's derived keys, and false otherwise.
func (kc *KeyChain) CreationTimeOf(hash chainhash.Hash160) (uint32, bool) {
	kc.mu.Lock()
	defer kc.mu.Unlock()
	if _, ok := kc.keysByHash[hash]; !ok {
		return 0, false
	}
	return kc.creationTime, true
}

// AllHashes returns the pubkey hash of every key this chain has derived so
// far (issued plus lookahead, on both branches), for the bloom-filter
// multiplexer to build its per-wallet watch set from.
func (kc *KeyChain) AllHashes() []chainhash.Hash160 {
	kc.mu.Lock()
	defer kc.mu.Unlock()
	out := make([]chainhash.Hash160, 0, len(kc.keysByHash))
	for h := range kc.keysByHash {
		out = append(out, h)
	}
	return out
}

// Restore fast-forwards a freshly constructed chain's issuance and
// used-key cursors to previously persisted values, then tops up the
// lookahead window from them. A reloaded wallet never needs its
// individual derived keys written to disk: the seed plus these four
// counters reproduce them deterministically.
func (kc *KeyChain) Restore(issuedExternal, issuedInternal, usedExternal, usedInternal uint32) error {
	kc.mu.Lock()
	defer kc.mu.Unlock()
	kc.issuedExternal = issuedExternal
	kc.issuedInternal = issuedInternal
	kc.usedExternal = usedExternal
	kc.usedInternal = usedInternal
	return kc.fillLookahead()
}

// Cursor returns the chain's current issuance and used-key counters, the
// values Restore needs to reproduce this chain's derived-key set later.
func (kc *KeyChain) Cursor() (issuedExternal, issuedInternal, usedExternal, usedInternal uint32) {
	kc.mu.Lock()
	defer kc.mu.Unlock()
	return kc.issuedExternal, kc.issuedInternal, kc.usedExternal, kc.usedInternal
}

// ExternalNeutered returns the public-only external chain key, the form
// exported to create a watching wallet.
func (kc *KeyChain) ExternalNeutered() *ExtendedKey { return kc.external.Neuter() }

// InternalNeutered returns the public-only internal chain key.
func (kc *KeyChain) InternalNeutered() *ExtendedKey { return kc.internal.Neuter() }
