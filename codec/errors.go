// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package codec implements the deterministic little-endian binary encoding
// shared by wire messages, block/transaction serialization and the wallet
// on-disk envelope.
package codec

import "errors"

// ErrTruncated is returned when a decode operation ran out of input before
// a value could be fully read.
var ErrTruncated = errors.New("codec: truncated input")

// ErrTooLong is returned when a length-prefixed value declares a length
// larger than the configured maximum for its context.
var ErrTooLong = errors.New("codec: value exceeds maximum allowed length")

// ErrNonCanonicalVarInt is returned when a varint uses a wider encoding than
// its value requires (e.g. a 3-byte tag encoding a value that fits in the
// single inline byte range).
var ErrNonCanonicalVarInt = errors.New("codec: non-canonical varint encoding")
