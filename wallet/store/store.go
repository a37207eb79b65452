// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"bytes"
	"errors"
	"hash/crc32"
	"os"
	"time"

	"github.com/corvidlabs/bitspv/chaincfg"
	"github.com/corvidlabs/bitspv/chainhash"
	"github.com/corvidlabs/bitspv/codec"
	"github.com/corvidlabs/bitspv/crypto"
	"github.com/corvidlabs/bitspv/keychain"
	"github.com/corvidlabs/bitspv/wallet"
	"github.com/corvidlabs/bitspv/wire"
)

// ErrCorrupt is returned by Load when the trailing CRC32 doesn't match
// the record stream that precedes it.
var ErrCorrupt = errors.New("store: wallet file fails its CRC32 check")

// Seed carries a wallet's encrypted BIP-39 mnemonic and the parameters
// needed to decrypt it, the persisted form of keychain.EncryptedMnemonic
// plus its scrypt cost parameters.
type Seed struct {
	Encrypted    *keychain.EncryptedMnemonic
	ScryptParams crypto.ScryptParams
	CreationTime uint32
}

// Snapshot is everything Save persists about one wallet: its seed (if
// any — a watching-only wallet has none), the key chain's derivation
// cursor, the chain tip it last saw, and every known transaction.
type Snapshot struct {
	Seed          *Seed
	CursorExtIss  uint32
	CursorIntIss  uint32
	CursorExtUsed uint32
	CursorIntUsed uint32
	TipHash       chainhash.Hash256
	TipHeight     int32
	Txs           []wallet.TxSnapshot
}

// BuildSnapshot reads every record Save needs out of a live wallet.
func BuildSnapshot(w *wallet.Wallet, seed *Seed) Snapshot {
	issExt, issInt, usedExt, usedInt := w.KeyChainCursor()
	tipHash, tipHeight := w.LastBlockSeen()
	return Snapshot{
		Seed:          seed,
		CursorExtIss:  issExt,
		CursorIntIss:  issInt,
		CursorExtUsed: usedExt,
		CursorIntUsed: usedInt,
		TipHash:       tipHash,
		TipHeight:     tipHeight,
		Txs:           w.Snapshot(),
	}
}

// Save writes snap to path as the record-stream envelope: a scrypt-params
// record and a seed record (both only when snap carries a seed), a
// key-chain-cursor record, a chain-tip record, one transaction record per
// known transaction, and a trailing CRC32 of everything written.
func Save(path string, snap Snapshot) error {
	var buf bytes.Buffer

	if snap.Seed != nil {
		if err := writeRecord(&buf, RecordScryptParams, encodeScryptParams(snap.Seed.ScryptParams)); err != nil {
			return err
		}
		if err := writeRecord(&buf, RecordSeed, encodeSeed(snap.Seed)); err != nil {
			return err
		}
	}

	if err := writeRecord(&buf, RecordKeyChainCursor, encodeCursor(snap)); err != nil {
		return err
	}

	if err := writeRecord(&buf, RecordChainTip, encodeTip(snap.TipHash, snap.TipHeight)); err != nil {
		return err
	}

	for _, tx := range snap.Txs {
		body, err := encodeTxSnapshot(tx)
		if err != nil {
			return err
		}
		if err := writeRecord(&buf, RecordTransaction, body); err != nil {
			return err
		}
	}

	if err := writeTrailer(&buf, buf.Bytes()); err != nil {
		return err
	}

	return writeFileAtomic(path, buf.Bytes())
}

// SaveRetrying writes snap via Save, retrying once after backoff when the
// first attempt fails. The second failure is returned to the caller,
// which is expected to place the wallet into read-only mode.
func SaveRetrying(path string, snap Snapshot, backoff time.Duration) error {
	err := Save(path, snap)
	if err == nil {
		return nil
	}
	time.Sleep(backoff)
	return Save(path, snap)
}

// Load reads path back into a Snapshot, verifying its CRC32 trailer.
// Unknown record types (a forward-compatible envelope extension) are
// skipped rather than rejected.
func Load(path string) (Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, err
	}
	if len(raw) < 4 {
		return Snapshot{}, ErrCorrupt
	}

	body, trailer := raw[:len(raw)-4], raw[len(raw)-4:]
	if crc32.ChecksumIEEE(body) != leUint32(trailer) {
		return Snapshot{}, ErrCorrupt
	}

	var snap Snapshot
	var scryptParams *crypto.ScryptParams

	rr := newRecordReader(body)
	for {
		typ, rec, err := rr.next()
		if err != nil {
			break
		}
		switch typ {
		case RecordScryptParams:
			p, err := decodeScryptParams(rec)
			if err != nil {
				return Snapshot{}, err
			}
			scryptParams = &p
		case RecordSeed:
			s, err := decodeSeed(rec)
			if err != nil {
				return Snapshot{}, err
			}
			if snap.Seed == nil {
				snap.Seed = &Seed{}
			}
			snap.Seed.Encrypted = s.Encrypted
			snap.Seed.CreationTime = s.CreationTime
		case RecordKeyChainCursor:
			if err := decodeCursor(rec, &snap); err != nil {
				return Snapshot{}, err
			}
		case RecordChainTip:
			hash, height, err := decodeTip(rec)
			if err != nil {
				return Snapshot{}, err
			}
			snap.TipHash = hash
			snap.TipHeight = height
		case RecordTransaction:
			tx, err := decodeTxSnapshot(rec)
			if err != nil {
				return Snapshot{}, err
			}
			snap.Txs = append(snap.Txs, tx)
		case RecordUnencryptedKey, RecordEncryptedKey:
			// Loose-key import is not implemented; these records are
			// accepted on read for compatibility and discarded.
		}
	}

	if snap.Seed != nil && scryptParams != nil {
		snap.Seed.ScryptParams = *scryptParams
	}
	return snap, nil
}

// ErrNoSeed is returned by OpenWallet for a wallet file that carries no
// seed record and therefore cannot derive spending keys.
var ErrNoSeed = errors.New("store: wallet file has no seed record")

// CreateWallet generates a fresh mnemonic, encrypts it under passphrase,
// builds a wallet around its key chain, and writes the initial snapshot
// to path. The cleartext mnemonic is returned exactly once so the caller
// can show it to the user for backup.
func CreateWallet(path, passphrase string, params *chaincfg.Params, creationTime uint32) (*wallet.Wallet, *Seed, string, error) {
	enc, mnemonic, err := keychain.NewEncryptedMnemonic(passphrase)
	if err != nil {
		return nil, nil, "", err
	}
	seedBytes, err := keychain.SeedFromMnemonic(mnemonic, "")
	if err != nil {
		return nil, nil, "", err
	}
	chain, err := keychain.NewKeyChainWithCreationTime(seedBytes, creationTime)
	if err != nil {
		return nil, nil, "", err
	}

	w := wallet.New(params, chain)
	seed := &Seed{
		Encrypted:    enc,
		ScryptParams: crypto.DefaultScryptParams(enc.Salt),
		CreationTime: creationTime,
	}
	if err := Save(path, BuildSnapshot(w, seed)); err != nil {
		return nil, nil, "", err
	}
	return w, seed, mnemonic, nil
}

// OpenWallet loads path, decrypts its seed with passphrase (using the
// scrypt parameters stored alongside it), and replays the snapshot into a
// live wallet. A wrong passphrase surfaces as keychain.ErrWrongPassphrase.
func OpenWallet(path, passphrase string, params *chaincfg.Params) (*wallet.Wallet, *Seed, error) {
	snap, err := Load(path)
	if err != nil {
		return nil, nil, err
	}
	if snap.Seed == nil {
		return nil, nil, ErrNoSeed
	}

	mnemonic, err := snap.Seed.Encrypted.Decrypt(passphrase, snap.Seed.ScryptParams)
	if err != nil {
		return nil, nil, err
	}
	seedBytes, err := keychain.SeedFromMnemonic(mnemonic, "")
	if err != nil {
		return nil, nil, err
	}
	chain, err := keychain.NewKeyChainWithCreationTime(seedBytes, snap.Seed.CreationTime)
	if err != nil {
		return nil, nil, err
	}

	w := wallet.New(params, chain)
	if err := RestoreWallet(w, snap); err != nil {
		return nil, nil, err
	}
	return w, snap.Seed, nil
}

// SaveWallet snapshots w and writes it to path, retrying once after a
// short backoff. A second failure places the wallet into read-only mode
// before the error is returned.
func SaveWallet(path string, w *wallet.Wallet, seed *Seed) error {
	err := SaveRetrying(path, BuildSnapshot(w, seed), time.Second)
	if err != nil {
		w.SetReadOnly()
	}
	return err
}

// RestoreWallet replays a loaded Snapshot into a freshly constructed
// wallet, driving persist.go's RestoreTx/RelinkSpends contract.
func RestoreWallet(w *wallet.Wallet, snap Snapshot) error {
	if err := w.RestoreKeyChainCursor(snap.CursorExtIss, snap.CursorIntIss, snap.CursorExtUsed, snap.CursorIntUsed); err != nil {
		return err
	}
	w.SetLastBlockSeen(snap.TipHash, snap.TipHeight)
	for _, tx := range snap.Txs {
		w.RestoreTx(tx)
	}
	w.RelinkSpends()
	return nil
}

func leUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func encodeScryptParams(p crypto.ScryptParams) []byte {
	var buf bytes.Buffer
	_ = codec.WriteUint64LE(&buf, p.N)
	_ = codec.WriteUint32LE(&buf, p.R)
	_ = codec.WriteUint32LE(&buf, p.P)
	_ = codec.WriteVarBytes(&buf, p.Salt)
	return buf.Bytes()
}

func decodeScryptParams(b []byte) (crypto.ScryptParams, error) {
	r := bytes.NewReader(b)
	n, err := codec.ReadUint64LE(r)
	if err != nil {
		return crypto.ScryptParams{}, err
	}
	rr, err := codec.ReadUint32LE(r)
	if err != nil {
		return crypto.ScryptParams{}, err
	}
	p, err := codec.ReadUint32LE(r)
	if err != nil {
		return crypto.ScryptParams{}, err
	}
	salt, err := codec.ReadVarBytes(r, 256)
	if err != nil {
		return crypto.ScryptParams{}, err
	}
	return crypto.ScryptParams{N: n, R: rr, P: p, Salt: salt}, nil
}

func encodeSeed(s *Seed) []byte {
	var buf bytes.Buffer
	_ = codec.WriteVarBytes(&buf, s.Encrypted.Ciphertext)
	_ = codec.WriteFixedBytes(&buf, s.Encrypted.IV)
	_ = codec.WriteUint32LE(&buf, s.CreationTime)
	_ = codec.WriteVarBytes(&buf, s.Encrypted.Salt)
	return buf.Bytes()
}

func decodeSeed(b []byte) (Seed, error) {
	r := bytes.NewReader(b)
	ciphertext, err := codec.ReadVarBytes(r, 1<<20)
	if err != nil {
		return Seed{}, err
	}
	iv := make([]byte, 16)
	if err := codec.ReadFixedBytes(r, iv); err != nil {
		return Seed{}, err
	}
	creationTime, err := codec.ReadUint32LE(r)
	if err != nil {
		return Seed{}, err
	}
	salt, err := codec.ReadVarBytes(r, 256)
	if err != nil {
		return Seed{}, err
	}
	return Seed{
		Encrypted: &keychain.EncryptedMnemonic{
			Salt:       salt,
			IV:         iv,
			Ciphertext: ciphertext,
		},
		CreationTime: creationTime,
	}, nil
}

func encodeCursor(snap Snapshot) []byte {
	var buf bytes.Buffer
	_ = codec.WriteUint32LE(&buf, snap.CursorExtIss)
	_ = codec.WriteUint32LE(&buf, snap.CursorIntIss)
	_ = codec.WriteUint32LE(&buf, snap.CursorExtUsed)
	_ = codec.WriteUint32LE(&buf, snap.CursorIntUsed)
	return buf.Bytes()
}

func decodeCursor(b []byte, snap *Snapshot) error {
	r := bytes.NewReader(b)
	var err error
	if snap.CursorExtIss, err = codec.ReadUint32LE(r); err != nil {
		return err
	}
	if snap.CursorIntIss, err = codec.ReadUint32LE(r); err != nil {
		return err
	}
	if snap.CursorExtUsed, err = codec.ReadUint32LE(r); err != nil {
		return err
	}
	if snap.CursorIntUsed, err = codec.ReadUint32LE(r); err != nil {
		return err
	}
	return nil
}

func encodeTip(hash chainhash.Hash256, height int32) []byte {
	var buf bytes.Buffer
	_ = codec.WriteFixedBytes(&buf, hash[:])
	_ = codec.WriteUint32LE(&buf, uint32(height))
	return buf.Bytes()
}

func decodeTip(b []byte) (chainhash.Hash256, int32, error) {
	r := bytes.NewReader(b)
	var hash chainhash.Hash256
	if err := codec.ReadFixedBytes(r, hash[:]); err != nil {
		return chainhash.Hash256{}, 0, err
	}
	height, err := codec.ReadUint32LE(r)
	if err != nil {
		return chainhash.Hash256{}, 0, err
	}
	return hash, int32(height), nil
}

func encodeTxSnapshot(tx wallet.TxSnapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := tx.Tx.Serialize(&buf); err != nil {
		return nil, err
	}

	var body bytes.Buffer
	_ = codec.WriteVarBytes(&body, buf.Bytes())
	_ = codec.WriteUint8(&body, byte(poolTagFromPool(tx.Pool)))
	_ = codec.WriteUint8(&body, byte(tx.ConfKind))
	_ = codec.WriteUint8(&body, byte(tx.Source))
	_ = codec.WriteInt32LE(&body, tx.Height)
	_ = codec.WriteInt32LE(&body, tx.BlockHeight)

	writeOptionalHash(&body, tx.Replacement)
	writeOptionalHash(&body, tx.BlockHash)

	return body.Bytes(), nil
}

func decodeTxSnapshot(b []byte) (wallet.TxSnapshot, error) {
	r := bytes.NewReader(b)

	txBytes, err := codec.ReadVarBytes(r, 100000)
	if err != nil {
		return wallet.TxSnapshot{}, err
	}
	tx := new(wire.MsgTx)
	if err := tx.Deserialize(bytes.NewReader(txBytes)); err != nil {
		return wallet.TxSnapshot{}, err
	}

	poolTag, err := codec.ReadUint8(r)
	if err != nil {
		return wallet.TxSnapshot{}, err
	}
	confKind, err := codec.ReadUint8(r)
	if err != nil {
		return wallet.TxSnapshot{}, err
	}
	source, err := codec.ReadUint8(r)
	if err != nil {
		return wallet.TxSnapshot{}, err
	}
	height, err := codec.ReadInt32LE(r)
	if err != nil {
		return wallet.TxSnapshot{}, err
	}
	blockHeight, err := codec.ReadInt32LE(r)
	if err != nil {
		return wallet.TxSnapshot{}, err
	}

	replacement, err := readOptionalHash(r)
	if err != nil {
		return wallet.TxSnapshot{}, err
	}
	blockHash, err := readOptionalHash(r)
	if err != nil {
		return wallet.TxSnapshot{}, err
	}

	return wallet.TxSnapshot{
		Tx:          tx,
		Pool:        poolFromPoolTag(PoolTag(poolTag)),
		ConfKind:    wallet.ConfidenceKind(confKind),
		Source:      wallet.Source(source),
		Height:      height,
		Replacement: replacement,
		BlockHash:   blockHash,
		BlockHeight: blockHeight,
	}, nil
}

func writeOptionalHash(w *bytes.Buffer, h *chainhash.Hash256) {
	if h == nil {
		_ = codec.WriteUint8(w, 0)
		return
	}
	_ = codec.WriteUint8(w, 1)
	b := h.CloneBytes()
	_ = codec.WriteFixedBytes(w, b)
}

func readOptionalHash(r *bytes.Reader) (*chainhash.Hash256, error) {
	present, err := codec.ReadUint8(r)
	if err != nil {
		return nil, err
	}
	if present == 0 {
		return nil, nil
	}
	b := make([]byte, 32)
	if err := codec.ReadFixedBytes(r, b); err != nil {
		return nil, err
	}
	var h chainhash.Hash256
	if err := h.SetBytes(b); err != nil {
		return nil, err
	}
	return &h, nil
}

func poolTagFromPool(p wallet.Pool) PoolTag {
	switch p {
	case wallet.PoolUnspent:
		return PoolTagUnspent
	case wallet.PoolSpent:
		return PoolTagSpent
	case wallet.PoolPending:
		return PoolTagPending
	default:
		return PoolTagDead
	}
}

func poolFromPoolTag(t PoolTag) wallet.Pool {
	switch t {
	case PoolTagUnspent:
		return wallet.PoolUnspent
	case PoolTagSpent:
		return wallet.PoolSpent
	case PoolTagPending:
		return wallet.PoolPending
	default:
		return wallet.PoolDead
	}
}
