// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package codec

import (
	"encoding/binary"
	"io"
)

// MaxVarBytesLen is the default cap applied by ReadVarBytes when the caller
// does not supply a tighter maximum.
const MaxVarBytesLen = 32 * 1024 * 1024

// WriteUint8 writes a single byte.
func WriteUint8(w io.Writer, v uint8) error {
	_, err := w.Write([]byte{v})
	return err
}

// ReadUint8 reads a single byte.
func ReadUint8(r io.Reader) (uint8, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, wrapShort(err)
	}
	return buf[0], nil
}

// WriteUint16LE writes a little-endian uint16.
func WriteUint16LE(w io.Writer, v uint16) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// ReadUint16LE reads a little-endian uint16.
func ReadUint16LE(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, wrapShort(err)
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

// WriteUint16BE writes a big-endian uint16. The only wire field that uses
// network byte order is NetAddress.Port.
func WriteUint16BE(w io.Writer, v uint16) error {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// ReadUint16BE reads a big-endian uint16.
func ReadUint16BE(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, wrapShort(err)
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

// WriteUint32LE writes a little-endian uint32.
func WriteUint32LE(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// ReadUint32LE reads a little-endian uint32.
func ReadUint32LE(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, wrapShort(err)
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// WriteUint64LE writes a little-endian uint64.
func WriteUint64LE(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// ReadUint64LE reads a little-endian uint64.
func ReadUint64LE(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, wrapShort(err)
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// WriteInt32LE writes a little-endian int32.
func WriteInt32LE(w io.Writer, v int32) error {
	return WriteUint32LE(w, uint32(v))
}

// ReadInt32LE reads a little-endian int32.
func ReadInt32LE(r io.Reader) (int32, error) {
	v, err := ReadUint32LE(r)
	return int32(v), err
}

// WriteInt64LE writes a little-endian int64.
func WriteInt64LE(w io.Writer, v int64) error {
	return WriteUint64LE(w, uint64(v))
}

// ReadInt64LE reads a little-endian int64.
func ReadInt64LE(r io.Reader) (int64, error) {
	v, err := ReadUint64LE(r)
	return int64(v), err
}

// WriteFixedBytes writes b verbatim, with no length prefix. Callers use this
// for fixed-size fields such as 32-byte hashes.
func WriteFixedBytes(w io.Writer, b []byte) error {
	_, err := w.Write(b)
	return err
}

// ReadFixedBytes reads exactly len(b) bytes into b.
func ReadFixedBytes(r io.Reader, b []byte) error {
	if _, err := io.ReadFull(r, b); err != nil {
		return wrapShort(err)
	}
	return nil
}

func wrapShort(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return ErrTruncated
	}
	return err
}
