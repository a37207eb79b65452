// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/stretchr/testify/require"

	"github.com/corvidlabs/bitspv/chaincfg"
	"github.com/corvidlabs/bitspv/crypto"
	"github.com/corvidlabs/bitspv/keychain"
	"github.com/corvidlabs/bitspv/txscript"
	"github.com/corvidlabs/bitspv/wallet"
	"github.com/corvidlabs/bitspv/wire"
)

func randomSeed(t *testing.T) []byte {
	t.Helper()
	seed := make([]byte, 32)
	_, err := rand.Read(seed)
	require.NoError(t, err)
	return seed
}

func TestSaveLoadRoundTrip(t *testing.T) {
	seed := randomSeed(t)
	chain, err := keychain.NewKeyChain(seed)
	require.NoError(t, err)
	w := wallet.New(&chaincfg.RegressionNetParams, chain)

	key, err := w.CurrentReceiveAddress()
	require.NoError(t, err)
	hash := crypto.Hash160(key.PubKey().SerializeCompressed())
	pkScript := txscript.PayToPubKeyHashScript(hash)

	tx := wire.NewMsgTx(1)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 0xffffffff}, Sequence: wire.MaxTxInSequenceNum})
	tx.AddTxOut(&wire.TxOut{Value: btcutil.Amount(50_000), PkScript: pkScript})

	_, err = w.ReceivePending(tx, wallet.SourceNetwork)
	require.NoError(t, err)

	encrypted, err := keychain.EncryptMnemonic("abandon abandon abandon", "hunter2")
	require.NoError(t, err)

	seedRecord := &Seed{
		Encrypted:    encrypted,
		ScryptParams: crypto.DefaultScryptParams(encrypted.Salt),
		CreationTime: 1700000000,
	}

	snap := BuildSnapshot(w, seedRecord)
	path := filepath.Join(t.TempDir(), "wallet.dat")
	require.NoError(t, Save(path, snap))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Len(t, loaded.Txs, 1)
	require.Equal(t, tx.TxHash(), loaded.Txs[0].Tx.TxHash())
	require.Equal(t, wallet.PoolPending, loaded.Txs[0].Pool)
	require.NotNil(t, loaded.Seed)
	require.Equal(t, uint32(1700000000), loaded.Seed.CreationTime)

	other, err := keychain.NewKeyChain(seed)
	require.NoError(t, err)
	w2 := wallet.New(&chaincfg.RegressionNetParams, other)
	require.NoError(t, RestoreWallet(w2, loaded))

	_, ok := w2.Transaction(tx.TxHash())
	require.True(t, ok)
	require.True(t, w2.IsConsistent())
}

func TestCreateOpenWalletRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.dat")

	w, _, mnemonic, err := CreateWallet(path, "hunter2", &chaincfg.RegressionNetParams, 1700000000)
	require.NoError(t, err)
	require.True(t, keychain.ValidateMnemonic(mnemonic))

	firstKey, err := w.CurrentReceiveAddress()
	require.NoError(t, err)

	reopened, seed, err := OpenWallet(path, "hunter2", &chaincfg.RegressionNetParams)
	require.NoError(t, err)
	require.Equal(t, uint32(1700000000), seed.CreationTime)

	// The snapshot was written before the first address was issued, so
	// the reopened chain re-derives that same address at cursor zero.
	key, err := reopened.CurrentReceiveAddress()
	require.NoError(t, err)
	require.Equal(t,
		firstKey.PubKey().SerializeCompressed(),
		key.PubKey().SerializeCompressed())
}

func TestOpenWalletWrongPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.dat")
	_, _, _, err := CreateWallet(path, "correct", &chaincfg.RegressionNetParams, 1700000000)
	require.NoError(t, err)

	_, _, err = OpenWallet(path, "wrong", &chaincfg.RegressionNetParams)
	require.ErrorIs(t, err, keychain.ErrWrongPassphrase)
}

func TestLoadRejectsCorruptTrailer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.dat")
	require.NoError(t, Save(path, Snapshot{}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xFF
	require.NoError(t, writeFileAtomic(path, raw))

	_, err = Load(path)
	require.ErrorIs(t, err, ErrCorrupt)
}
