// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"io"

	"github.com/corvidlabs/bitspv/chainhash"
	"github.com/corvidlabs/bitspv/codec"
)

// OutPoint identifies a specific output of a specific transaction by the
// pair (transaction id, output index).
type OutPoint struct {
	Hash  chainhash.Hash256
	Index uint32
}

// NewOutPoint returns a new outpoint for the given hash/index pair.
func NewOutPoint(hash *chainhash.Hash256, index uint32) OutPoint {
	return OutPoint{Hash: *hash, Index: index}
}

// String returns the outpoint in "hash:index" form.
func (o OutPoint) String() string {
	return fmt.Sprintf("%s:%d", o.Hash.String(), o.Index)
}

// IsGenesisCoinbase reports whether o is the null outpoint every coinbase
// input references: an all-zero hash with index 0xffffffff.
func (o OutPoint) IsGenesisCoinbase() bool {
	return o.Hash == chainhash.Hash256{} && o.Index == 0xffffffff
}

func writeOutPoint(w io.Writer, o *OutPoint) error {
	if err := codec.WriteFixedBytes(w, o.Hash[:]); err != nil {
		return err
	}
	return codec.WriteUint32LE(w, o.Index)
}

func readOutPoint(r io.Reader, o *OutPoint) error {
	if err := codec.ReadFixedBytes(r, o.Hash[:]); err != nil {
		return err
	}
	idx, err := codec.ReadUint32LE(r)
	if err != nil {
		return err
	}
	o.Index = idx
	return nil
}
