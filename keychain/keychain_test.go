// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package keychain

import (
	"bytes"
	"crypto/rand"
	"strings"
	"testing"

	"github.com/corvidlabs/bitspv/chainhash"
	"github.com/corvidlabs/bitspv/crypto"
)

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

func TestNewMnemonicIsValid(t *testing.T) {
	m, err := NewMnemonic()
	if err != nil {
		t.Fatalf("NewMnemonic: %v", err)
	}
	if len(strings.Fields(m)) != 12 {
		t.Fatalf("expected 12 words, got %d: %q", len(strings.Fields(m)), m)
	}
	if !ValidateMnemonic(m) {
		t.Fatalf("generated mnemonic failed validation: %q", m)
	}
}

func TestValidateMnemonicRejectsGarbage(t *testing.T) {
	if ValidateMnemonic("not a real mnemonic at all here") {
		t.Fatal("expected garbage mnemonic to fail validation")
	}
}

func TestSeedFromMnemonicKnownVector(t *testing.T) {
	// Standard BIP-39 test vector input: 12-word "abandon...about" with the
	// passphrase "TREZOR". Checks the seed length and that derivation is
	// deterministic.
	const mnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	seed, err := SeedFromMnemonic(mnemonic, "TREZOR")
	if err != nil {
		t.Fatalf("SeedFromMnemonic: %v", err)
	}
	if len(seed) != 64 {
		t.Fatalf("expected 64-byte seed, got %d", len(seed))
	}

	seed2, err := SeedFromMnemonic(mnemonic, "TREZOR")
	if err != nil {
		t.Fatalf("SeedFromMnemonic (second call): %v", err)
	}
	if !bytes.Equal(seed, seed2) {
		t.Fatal("SeedFromMnemonic is not deterministic")
	}
}

func TestSeedFromMnemonicRejectsInvalid(t *testing.T) {
	if _, err := SeedFromMnemonic("totally bogus sentence", ""); err != ErrInvalidMnemonic {
		t.Fatalf("expected ErrInvalidMnemonic, got %v", err)
	}
}

func TestMasterKeyDerivationDeterministic(t *testing.T) {
	seed, err := randomBytes(32)
	if err != nil {
		t.Fatalf("randomBytes: %v", err)
	}

	m1, err := NewMasterKey(seed)
	if err != nil {
		t.Fatalf("NewMasterKey: %v", err)
	}
	m2, err := NewMasterKey(seed)
	if err != nil {
		t.Fatalf("NewMasterKey: %v", err)
	}
	if !bytes.Equal(m1.PubKey().SerializeCompressed(), m2.PubKey().SerializeCompressed()) {
		t.Fatal("NewMasterKey is not deterministic for the same seed")
	}
}

func TestDeriveNonHardenedMatchesPublicDerivation(t *testing.T) {
	seed, err := randomBytes(32)
	if err != nil {
		t.Fatalf("randomBytes: %v", err)
	}
	master, err := NewMasterKey(seed)
	if err != nil {
		t.Fatalf("NewMasterKey: %v", err)
	}

	child, err := master.Derive(5)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}

	neutered := master.Neuter()
	publicChild, err := neutered.Derive(5)
	if err != nil {
		t.Fatalf("Derive on neutered key: %v", err)
	}

	if !bytes.Equal(child.PubKey().SerializeCompressed(), publicChild.PubKey().SerializeCompressed()) {
		t.Fatal("private-derived and public-derived child keys diverge")
	}
	if publicChild.IsPrivate() {
		t.Fatal("child derived from a neutered key must not carry a private key")
	}
}

func TestDeriveHardenedRequiresPrivateKey(t *testing.T) {
	seed, err := randomBytes(32)
	if err != nil {
		t.Fatalf("randomBytes: %v", err)
	}
	master, err := NewMasterKey(seed)
	if err != nil {
		t.Fatalf("NewMasterKey: %v", err)
	}
	neutered := master.Neuter()
	if _, err := neutered.Derive(HardenedKeyStart); err != ErrDeriveHardenedFromPublic {
		t.Fatalf("expected ErrDeriveHardenedFromPublic, got %v", err)
	}
}

func newTestKeyChain(t *testing.T) *KeyChain {
	t.Helper()
	seed, err := randomBytes(32)
	if err != nil {
		t.Fatalf("randomBytes: %v", err)
	}
	kc, err := NewKeyChain(seed)
	if err != nil {
		t.Fatalf("NewKeyChain: %v", err)
	}
	return kc
}

func TestKeyChainFillsLookaheadWindow(t *testing.T) {
	kc := newTestKeyChain(t)
	if got := len(kc.keysByHash); got != 2*DefaultLookaheadSize {
		t.Fatalf("expected %d pre-derived keys, got %d", 2*DefaultLookaheadSize, got)
	}
}

func TestKeyChainNextReceiveKeyAdvancesIssuedCursor(t *testing.T) {
	kc := newTestKeyChain(t)

	k1, err := kc.NextReceiveKey()
	if err != nil {
		t.Fatalf("NextReceiveKey: %v", err)
	}
	k2, err := kc.NextReceiveKey()
	if err != nil {
		t.Fatalf("NextReceiveKey: %v", err)
	}
	if bytes.Equal(k1.PubKey().SerializeCompressed(), k2.PubKey().SerializeCompressed()) {
		t.Fatal("successive NextReceiveKey calls returned the same key")
	}
	if kc.issuedExternal != 2 {
		t.Fatalf("expected issuedExternal == 2, got %d", kc.issuedExternal)
	}
}

func TestKeyChainMarkKeyUsedExpandsLookahead(t *testing.T) {
	kc := newTestKeyChain(t)

	usedIdx := uint32(DefaultLookaheadSize - 1)
	branchKey, err := kc.external.Derive(usedIdx)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	hash := kc.keysByHash[hashOf(branchKey)]
	if hash == nil {
		t.Fatal("expected derived key to already be indexed")
	}

	kc.MarkKeyUsed(hashOf(branchKey), ExternalChain, usedIdx)

	if kc.usedExternal != usedIdx+1 {
		t.Fatalf("expected usedExternal == %d, got %d", usedIdx+1, kc.usedExternal)
	}
	// The lookahead window should now extend past the old boundary.
	newBoundaryIdx := usedIdx + uint32(DefaultLookaheadSize)
	if _, ok := kc.keysByHash[hashOf(mustDerive(t, kc.external, newBoundaryIdx-1))]; !ok {
		t.Fatal("lookahead window did not expand after MarkKeyUsed")
	}
}

func TestKeyChainLookupByHash(t *testing.T) {
	kc := newTestKeyChain(t)
	receive, err := kc.NextReceiveKey()
	if err != nil {
		t.Fatalf("NextReceiveKey: %v", err)
	}
	found, ok := kc.LookupByHash(hashOf(receive))
	if !ok {
		t.Fatal("expected to find issued key in lookup index")
	}
	if !bytes.Equal(found.PubKey().SerializeCompressed(), receive.PubKey().SerializeCompressed()) {
		t.Fatal("LookupByHash returned a different key")
	}
}

func TestWatchingKeyChainCannotSign(t *testing.T) {
	kc := newTestKeyChain(t)
	watching, err := NewWatchingKeyChain(kc.external, kc.internal)
	if err != nil {
		t.Fatalf("NewWatchingKeyChain: %v", err)
	}
	if !watching.IsWatching() {
		t.Fatal("expected watching key chain to report IsWatching() == true")
	}
	receive, err := watching.NextReceiveKey()
	if err != nil {
		t.Fatalf("NextReceiveKey on watching chain: %v", err)
	}
	if receive.IsPrivate() {
		t.Fatal("watching key chain handed out a private key")
	}
}

func TestEncryptedMnemonicRoundTrip(t *testing.T) {
	enc, mnemonic, err := NewEncryptedMnemonic("correct horse battery staple")
	if err != nil {
		t.Fatalf("NewEncryptedMnemonic: %v", err)
	}

	kc, err := enc.Unlock("correct horse battery staple")
	if err != nil {
		t.Fatalf("Unlock with correct passphrase: %v", err)
	}
	seed, err := SeedFromMnemonic(mnemonic, "")
	if err != nil {
		t.Fatalf("SeedFromMnemonic: %v", err)
	}
	want, err := NewKeyChain(seed)
	if err != nil {
		t.Fatalf("NewKeyChain: %v", err)
	}
	if !bytes.Equal(kc.external.PubKey().SerializeCompressed(), want.external.PubKey().SerializeCompressed()) {
		t.Fatal("unlocked key chain does not match the original mnemonic's key chain")
	}
}

func TestEncryptedMnemonicWrongPassphrase(t *testing.T) {
	enc, _, err := NewEncryptedMnemonic("correct horse battery staple")
	if err != nil {
		t.Fatalf("NewEncryptedMnemonic: %v", err)
	}
	if _, err := enc.Unlock("wrong passphrase"); err == nil {
		t.Fatal("expected wrong passphrase to fail Unlock")
	}
}

func hashOf(k *ExtendedKey) chainhash.Hash160 {
	return crypto.Hash160(k.PubKey().SerializeCompressed())
}

func mustDerive(t *testing.T, k *ExtendedKey, idx uint32) *ExtendedKey {
	t.Helper()
	child, err := k.Derive(idx)
	if err != nil {
		t.Fatalf("Derive(%d): %v", idx, err)
	}
	return child
}
