// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package store implements the on-disk wallet envelope: a
// length-prefixed record stream (varint length || type byte || body)
// terminated by a 4-byte CRC32 of everything before it. Records of a
// type a reader doesn't recognize are skipped, so the stream can grow
// new record types without breaking older files.
package store

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"io"

	"github.com/corvidlabs/bitspv/codec"
)

// RecordType tags the body that follows a record's length prefix.
type RecordType uint8

const (
	// RecordUnencryptedKey is an ECKey with its private scalar in clear.
	RecordUnencryptedKey RecordType = 1

	// RecordEncryptedKey is an ECKey whose private scalar is AES-256-CBC
	// encrypted under the wallet's scrypt-derived key.
	RecordEncryptedKey RecordType = 2

	// RecordTransaction is a wallet-known transaction with its pool tag
	// and confidence record.
	RecordTransaction RecordType = 3

	// RecordChainTip is the last block hash/height the wallet observed,
	// restored as the starting point for resumed chain sync.
	RecordChainTip RecordType = 4

	// RecordScryptParams carries the cost parameters used to derive the
	// wallet's AES key from a passphrase.
	RecordScryptParams RecordType = 5

	// RecordSeed is an encrypted BIP-39 mnemonic plus its creation time.
	RecordSeed RecordType = 6

	// RecordKeyChainCursor holds the key chain's derivation cursors:
	// a BIP-32 chain is fully restorable from its four
	// issuance/used counters alone (wallet/persist.go's KeyChainCursor),
	// so there is nothing else to replay per derived key. Additive, not
	// a substitute for types 1/2, which remain for imported loose keys.
	RecordKeyChainCursor RecordType = 7
)

// PoolTag encodes a transaction record's pool membership as a bit flag.
type PoolTag uint8

const (
	PoolTagUnspent PoolTag = 1
	PoolTagSpent   PoolTag = 2
	PoolTagPending PoolTag = 4
	PoolTagDead    PoolTag = 8
)

const maxRecordLen = 16 * 1024 * 1024

// writeRecord frames body under typ as varint(1+len(body)) || typ || body
// and writes it to w.
func writeRecord(w io.Writer, typ RecordType, body []byte) error {
	if err := codec.WriteVarInt(w, uint64(1+len(body))); err != nil {
		return err
	}
	if _, err := w.Write([]byte{byte(typ)}); err != nil {
		return err
	}
	_, err := w.Write(body)
	return err
}

// recordReader walks the record stream that precedes a file's 4-byte
// CRC32 trailer, exposing the byte offset consumed so far so the caller
// can independently verify the trailer against bytes[:offset].
type recordReader struct {
	bytes  []byte
	offset int
}

func newRecordReader(body []byte) *recordReader {
	return &recordReader{bytes: body}
}

// next reads one record, returning io.EOF once every byte has been
// consumed.
func (rr *recordReader) next() (RecordType, []byte, error) {
	if rr.offset >= len(rr.bytes) {
		return 0, nil, io.EOF
	}

	r := bytes.NewReader(rr.bytes[rr.offset:])
	payloadLen, err := codec.ReadVarInt(r)
	if err != nil {
		return 0, nil, err
	}
	if payloadLen == 0 || payloadLen > maxRecordLen {
		return 0, nil, codec.ErrTooLong
	}

	headerLen := len(rr.bytes[rr.offset:]) - r.Len()
	start := rr.offset + headerLen
	end := start + int(payloadLen)
	if end > len(rr.bytes) {
		return 0, nil, codec.ErrTruncated
	}

	payload := rr.bytes[start:end]
	rr.offset = end
	return RecordType(payload[0]), payload[1:], nil
}

// writeTrailer appends the CRC32 of prefix.
func writeTrailer(w io.Writer, prefix []byte) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], crc32.ChecksumIEEE(prefix))
	_, err := w.Write(b[:])
	return err
}
