// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"
	"net"
	"time"

	"github.com/corvidlabs/bitspv/codec"
)

// NetAddress describes a peer address as carried in version and addr
// messages.
type NetAddress struct {
	Timestamp time.Time
	Services  ServiceFlag
	IP        net.IP
	Port      uint16
}

// writeNetAddress serializes a NetAddress. hasTimestamp is false only for
// the two embedded addresses inside a version message, which omit the
// timestamp field.
func writeNetAddress(w io.Writer, na *NetAddress, hasTimestamp bool) error {
	if hasTimestamp {
		if err := codec.WriteUint32LE(w, uint32(na.Timestamp.Unix())); err != nil {
			return err
		}
	}
	if err := codec.WriteUint64LE(w, uint64(na.Services)); err != nil {
		return err
	}

	var ipBytes [16]byte
	if ip4 := na.IP.To4(); ip4 != nil {
		copy(ipBytes[10:], []byte{0xff, 0xff})
		copy(ipBytes[12:], ip4)
	} else if ip16 := na.IP.To16(); ip16 != nil {
		copy(ipBytes[:], ip16)
	}
	if err := codec.WriteFixedBytes(w, ipBytes[:]); err != nil {
		return err
	}

	return codec.WriteUint16BE(w, na.Port)
}

func readNetAddress(r io.Reader, na *NetAddress, hasTimestamp bool) error {
	if hasTimestamp {
		ts, err := codec.ReadUint32LE(r)
		if err != nil {
			return err
		}
		na.Timestamp = time.Unix(int64(ts), 0).UTC()
	}

	services, err := codec.ReadUint64LE(r)
	if err != nil {
		return err
	}
	na.Services = ServiceFlag(services)

	var ipBytes [16]byte
	if err := codec.ReadFixedBytes(r, ipBytes[:]); err != nil {
		return err
	}
	na.IP = net.IP(append([]byte(nil), ipBytes[:]...))

	port, err := codec.ReadUint16BE(r)
	if err != nil {
		return err
	}
	na.Port = port
	return nil
}
