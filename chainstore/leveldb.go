// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainstore

import (
	"bytes"
	"encoding/binary"
	"math/big"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/corvidlabs/bitspv/chainhash"
	"github.com/corvidlabs/bitspv/chaincfg"
	"github.com/corvidlabs/bitspv/wire"
)

// Key prefixes for the flat goleveldb keyspace this store owns.
var (
	prefixHeaderByHash  = []byte("h")
	prefixHashByHeight  = []byte("g")
	prefixUndoByHeight  = []byte("u")
	keyTip              = []byte("t")
)

// LevelStore is a goleveldb-backed Store, the default persistence backend
// for a long-running daemon.
type LevelStore struct {
	db     *leveldb.DB
	params *chaincfg.Params
}

// OpenLevelStore opens (creating if absent) a LevelStore at dir, seeding
// it with params' genesis block on first use.
func OpenLevelStore(dir string, params *chaincfg.Params) (*LevelStore, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, err
	}
	s := &LevelStore{db: db, params: params}

	if _, err := s.db.Get(keyTip, nil); err == leveldb.ErrNotFound {
		genesis := &StoredBlock{
			Header:    *params.GenesisBlock,
			Height:    0,
			ChainWork: blockWork(params.GenesisBlock.Bits),
		}
		if err := s.putRaw(genesis); err != nil {
			db.Close()
			return nil, err
		}
		hash := genesis.Hash()
		if err := s.setTip(hash); err != nil {
			db.Close()
			return nil, err
		}
		if err := s.setHeight(0, hash); err != nil {
			db.Close()
			return nil, err
		}
	} else if err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close releases the underlying database handle.
func (s *LevelStore) Close() error { return s.db.Close() }

func heightKey(height int32) []byte {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(height))
	return append(append([]byte{}, prefixHashByHeight...), buf[:]...)
}

func hashKey(hash chainhash.Hash256) []byte {
	return append(append([]byte{}, prefixHeaderByHash...), hash[:]...)
}

func undoKey(height int32) []byte {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(height))
	return append(append([]byte{}, prefixUndoByHeight...), buf[:]...)
}

func encodeUndoRecord(rec *UndoRecord) []byte {
	buf := make([]byte, 0, 4+32+1+32)
	var heightBuf [4]byte
	binary.BigEndian.PutUint32(heightBuf[:], uint32(rec.Height))
	buf = append(buf, heightBuf[:]...)
	buf = append(buf, rec.Block[:]...)
	if rec.Previous != nil {
		buf = append(buf, 1)
		buf = append(buf, rec.Previous[:]...)
	} else {
		buf = append(buf, 0)
	}
	return buf
}

func decodeUndoRecord(b []byte) (*UndoRecord, error) {
	if len(b) < 4+32+1 {
		return nil, ErrNotFound
	}
	rec := &UndoRecord{Height: int32(binary.BigEndian.Uint32(b[:4]))}
	copy(rec.Block[:], b[4:36])
	if b[36] == 1 {
		if len(b) < 4+32+1+32 {
			return nil, ErrNotFound
		}
		var prev chainhash.Hash256
		copy(prev[:], b[37:69])
		rec.Previous = &prev
	}
	return rec, nil
}

func encodeStoredBlock(sb *StoredBlock) []byte {
	var buf bytes.Buffer
	_ = sb.Header.Serialize(&buf)
	var heightBuf [4]byte
	binary.BigEndian.PutUint32(heightBuf[:], uint32(sb.Height))
	buf.Write(heightBuf[:])
	workBytes := sb.ChainWork.Bytes()
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(workBytes)))
	buf.Write(lenBuf[:])
	buf.Write(workBytes)
	return buf.Bytes()
}

func decodeStoredBlock(b []byte) (*StoredBlock, error) {
	r := bytes.NewReader(b)
	var header wire.BlockHeader
	if err := header.Deserialize(r); err != nil {
		return nil, err
	}
	var heightBuf [4]byte
	if _, err := r.Read(heightBuf[:]); err != nil {
		return nil, err
	}
	height := int32(binary.BigEndian.Uint32(heightBuf[:]))

	var lenBuf [2]byte
	if _, err := r.Read(lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint16(lenBuf[:])
	workBytes := make([]byte, n)
	if _, err := r.Read(workBytes); err != nil {
		return nil, err
	}

	return &StoredBlock{
		Header:    header,
		Height:    height,
		ChainWork: new(big.Int).SetBytes(workBytes),
	}, nil
}

func (s *LevelStore) putRaw(sb *StoredBlock) error {
	hash := sb.Hash()
	return s.db.Put(hashKey(hash), encodeStoredBlock(sb), nil)
}

func (s *LevelStore) setTip(hash chainhash.Hash256) error {
	return s.db.Put(keyTip, hash[:], nil)
}

func (s *LevelStore) setHeight(height int32, hash chainhash.Hash256) error {
	return s.db.Put(heightKey(height), hash[:], nil)
}

func (s *LevelStore) Genesis() *StoredBlock {
	sb, _ := s.GetHeaderByHeight(0)
	return sb
}

func (s *LevelStore) Tip() *StoredBlock {
	b, err := s.db.Get(keyTip, nil)
	if err != nil {
		return nil
	}
	var hash chainhash.Hash256
	copy(hash[:], b)
	sb, _ := s.GetHeader(hash)
	return sb
}

func (s *LevelStore) GetHeader(hash chainhash.Hash256) (*StoredBlock, error) {
	b, err := s.db.Get(hashKey(hash), nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeStoredBlock(b)
}

func (s *LevelStore) GetHeaderByHeight(height int32) (*StoredBlock, error) {
	b, err := s.db.Get(heightKey(height), nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var hash chainhash.Hash256
	copy(hash[:], b)
	return s.GetHeader(hash)
}

func (s *LevelStore) Put(header *wire.BlockHeader) (*StoredBlock, *ReorgResult, error) {
	parent, err := s.GetHeader(header.PrevBlock)
	if err != nil {
		return nil, nil, ErrOrphan
	}

	hash := header.BlockHash()
	if existing, err := s.GetHeader(hash); err == nil {
		return existing, nil, nil
	}

	if err := checkHeaderContext(header, parent, s.params, s.GetHeader); err != nil {
		return nil, nil, err
	}

	work := new(big.Int).Add(parent.ChainWork, blockWork(header.Bits))
	sb := &StoredBlock{Header: *header, Height: parent.Height + 1, ChainWork: work}
	if err := s.putRaw(sb); err != nil {
		return nil, nil, err
	}

	oldTip := s.Tip()
	if work.Cmp(oldTip.ChainWork) <= 0 {
		return sb, nil, nil
	}

	forkPoint, disconnected, connected, err := findFork(oldTip, sb, s.GetHeader)
	if err != nil {
		return nil, nil, err
	}

	batch := new(leveldb.Batch)
	for _, d := range disconnected {
		batch.Delete(heightKey(d.Height))
	}
	for _, c := range connected {
		ch := c.Hash()
		rec := &UndoRecord{Height: c.Height, Block: ch}
		for _, d := range disconnected {
			if d.Height == c.Height {
				prev := d.Hash()
				rec.Previous = &prev
				break
			}
		}
		batch.Put(heightKey(c.Height), ch[:])
		batch.Put(undoKey(c.Height), encodeUndoRecord(rec))
		if pruned := c.Height - DefaultUndoDepth; pruned >= 0 {
			batch.Delete(undoKey(pruned))
		}
	}
	batch.Put(keyTip, hash[:])
	if err := s.db.Write(batch, nil); err != nil {
		return nil, nil, err
	}

	if len(disconnected) > 0 {
		log.Infof("chain reorganize: disconnected %d blocks, connected %d, new tip %v at height %d",
			len(disconnected), len(connected), hash, sb.Height)
	}
	return sb, &ReorgResult{ForkPoint: forkPoint, Disconnected: disconnected, Connected: connected}, nil
}

func (s *LevelStore) GetUndoable(height int32) (*UndoRecord, error) {
	tip := s.Tip()
	if tip == nil || height <= tip.Height-DefaultUndoDepth {
		return nil, ErrNotFound
	}
	b, err := s.db.Get(undoKey(height), nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeUndoRecord(b)
}

func (s *LevelStore) Locator() wire.BlockLocator {
	var locator wire.BlockLocator
	tip := s.Tip()
	if tip == nil {
		return nil
	}
	step := int32(1)
	height := tip.Height

	for {
		sb, err := s.GetHeaderByHeight(height)
		if err == nil {
			h := sb.Hash()
			locator = append(locator, &h)
		}
		if height == 0 {
			break
		}
		if len(locator) >= 10 {
			step *= 2
		}
		height -= step
		if height < 0 {
			height = 0
		}
	}
	return locator
}
