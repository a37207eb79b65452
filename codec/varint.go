// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package codec

import "io"

// The four canonical varint ranges, per Bitcoin's CompactSize encoding.
const (
	varIntTag16 = 0xfd
	varIntTag32 = 0xfe
	varIntTag64 = 0xff
)

// VarIntSerializeSize returns the number of bytes WriteVarInt would write
// for v.
func VarIntSerializeSize(v uint64) int {
	switch {
	case v < varIntTag16:
		return 1
	case v <= 0xffff:
		return 3
	case v <= 0xffffffff:
		return 5
	default:
		return 9
	}
}

// WriteVarInt writes v using the minimal canonical encoding: values below
// 0xfd are written inline as a single byte; otherwise a one-byte tag
// (0xfd/0xfe/0xff) is followed by the value in 2/4/8 little-endian bytes.
func WriteVarInt(w io.Writer, v uint64) error {
	switch {
	case v < varIntTag16:
		return WriteUint8(w, uint8(v))
	case v <= 0xffff:
		if err := WriteUint8(w, varIntTag16); err != nil {
			return err
		}
		return WriteUint16LE(w, uint16(v))
	case v <= 0xffffffff:
		if err := WriteUint8(w, varIntTag32); err != nil {
			return err
		}
		return WriteUint32LE(w, uint32(v))
	default:
		if err := WriteUint8(w, varIntTag64); err != nil {
			return err
		}
		return WriteUint64LE(w, v)
	}
}

// ReadVarInt reads a varint, rejecting any of the three non-minimal
// encodings (e.g. a 0xfd tag whose payload is < 0xfd) with
// ErrNonCanonicalVarInt.
func ReadVarInt(r io.Reader) (uint64, error) {
	tag, err := ReadUint8(r)
	if err != nil {
		return 0, err
	}

	switch tag {
	case varIntTag16:
		v, err := ReadUint16LE(r)
		if err != nil {
			return 0, err
		}
		if uint64(v) < varIntTag16 {
			return 0, ErrNonCanonicalVarInt
		}
		return uint64(v), nil

	case varIntTag32:
		v, err := ReadUint32LE(r)
		if err != nil {
			return 0, err
		}
		if uint64(v) <= 0xffff {
			return 0, ErrNonCanonicalVarInt
		}
		return uint64(v), nil

	case varIntTag64:
		v, err := ReadUint64LE(r)
		if err != nil {
			return 0, err
		}
		if v <= 0xffffffff {
			return 0, ErrNonCanonicalVarInt
		}
		return v, nil

	default:
		return uint64(tag), nil
	}
}

// WriteVarBytes writes b as a varint length prefix followed by the bytes
// themselves.
func WriteVarBytes(w io.Writer, b []byte) error {
	if err := WriteVarInt(w, uint64(len(b))); err != nil {
		return err
	}
	return WriteFixedBytes(w, b)
}

// ReadVarBytes reads a varint-prefixed byte string, rejecting a declared
// length greater than maxLen with ErrTooLong. A maxLen of 0 uses
// MaxVarBytesLen.
func ReadVarBytes(r io.Reader, maxLen uint64) ([]byte, error) {
	if maxLen == 0 {
		maxLen = MaxVarBytesLen
	}
	n, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if n > maxLen {
		return nil, ErrTooLong
	}
	b := make([]byte, n)
	if err := ReadFixedBytes(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

// WriteVarIntList writes a varint count followed by calling encode(w, i)
// for i in [0, n).
func WriteVarIntList(w io.Writer, n int, encode func(w io.Writer, i int) error) error {
	if err := WriteVarInt(w, uint64(n)); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := encode(w, i); err != nil {
			return err
		}
	}
	return nil
}

// ReadVarIntList reads a varint count (rejecting counts above maxCount with
// ErrTooLong) and calls decode(r, i) that many times.
func ReadVarIntList(r io.Reader, maxCount uint64, decode func(r io.Reader, i int) error) (int, error) {
	n, err := ReadVarInt(r)
	if err != nil {
		return 0, err
	}
	if maxCount != 0 && n > maxCount {
		return 0, ErrTooLong
	}
	for i := uint64(0); i < n; i++ {
		if err := decode(r, int(i)); err != nil {
			return 0, err
		}
	}
	return int(n), nil
}
