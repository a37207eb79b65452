// Copyright (c) 2013-2016 The btcsuite developers
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

// InvType identifies what kind of object an inventory vector refers to.
type InvType uint32

const (
	InvTypeError InvType = iota
	InvTypeTx
	InvTypeBlock
	InvTypeFilteredBlock
)

func (t InvType) String() string {
	switch t {
	case InvTypeTx:
		return "MSG_TX"
	case InvTypeBlock:
		return "MSG_BLOCK"
	case InvTypeFilteredBlock:
		return "MSG_FILTERED_BLOCK"
	default:
		return fmt.Sprintf("Unknown InvType (%d)", uint32(t))
	}
}

// InvVect is a single inventory vector: a type tag plus the hash it names.
type InvVect struct {
	Type InvType
	Hash chainhash.Hash256
}

// MaxInvPerMsg is the maximum number of entries an inv/getdata/notfound
// message may carry in a single envelope.
const MaxInvPerMsg = 50000

func writeInvVect(w io.Writer, iv *InvVect) error {
	if err := codec.WriteUint32LE(w, uint32(iv.Type)); err != nil {
		return err
	}
	return codec.WriteFixedBytes(w, iv.Hash[:])
}

func readInvVect(r io.Reader, iv *InvVect) error {
	t, err := codec.ReadUint32LE(r)
	if err != nil {
		return err
	}
	iv.Type = InvType(t)
	return codec.ReadFixedBytes(r, iv.Hash[:])
}

func writeInvVectList(w io.Writer, list []*InvVect) error {
	return codec.WriteVarIntList(w, len(list), func(w io.Writer, i int) error {
		return writeInvVect(w, list[i])
	})
}

func readInvVectList(r io.Reader, maxCount uint64) ([]*InvVect, error) {
	var list []*InvVect
	_, err := codec.ReadVarIntList(r, maxCount, func(r io.Reader, i int) error {
		iv := &InvVect{}
		if err := readInvVect(r, iv); err != nil {
			return err
		}
		list = append(list, iv)
		return nil
	})
	return list, err
}
