// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"fmt"
	"io"

	"github.com/corvidlabs/bitspv/codec"
	"github.com/corvidlabs/bitspv/crypto"
)

// MaxMessagePayload is the maximum payload size in bytes a single envelope
// may declare; larger values are a protocol violation.
const MaxMessagePayload = 32 * 1024 * 1024

// MessageHeaderSize is the size in bytes of the fixed envelope header:
// 4-byte magic, 12-byte command, 4-byte length, 4-byte checksum.
const MessageHeaderSize = 24

// commandSize is the fixed width of the zero-padded ASCII command field.
const commandSize = 12

// Message is implemented by every wire payload type.
type Message interface {
	Command() string
	BtcEncode(w io.Writer, pver uint32) error
	BtcDecode(r io.Reader, pver uint32) error
	MaxPayloadLength(pver uint32) uint32
}

// messageHeader is the envelope preceding every payload.
type messageHeader struct {
	magic    BitcoinNet
	command  string
	length   uint32
	checksum [4]byte
}

func writeMessageHeader(w io.Writer, hdr *messageHeader) error {
	if err := codec.WriteUint32LE(w, uint32(hdr.magic)); err != nil {
		return err
	}
	var cmdBuf [commandSize]byte
	copy(cmdBuf[:], hdr.command)
	if err := codec.WriteFixedBytes(w, cmdBuf[:]); err != nil {
		return err
	}
	if err := codec.WriteUint32LE(w, hdr.length); err != nil {
		return err
	}
	return codec.WriteFixedBytes(w, hdr.checksum[:])
}

func readMessageHeader(r io.Reader) (*messageHeader, error) {
	magic, err := codec.ReadUint32LE(r)
	if err != nil {
		return nil, err
	}
	var cmdBuf [commandSize]byte
	if err := codec.ReadFixedBytes(r, cmdBuf[:]); err != nil {
		return nil, err
	}
	length, err := codec.ReadUint32LE(r)
	if err != nil {
		return nil, err
	}
	var checksum [4]byte
	if err := codec.ReadFixedBytes(r, checksum[:]); err != nil {
		return nil, err
	}

	end := bytes.IndexByte(cmdBuf[:], 0)
	if end == -1 {
		end = len(cmdBuf)
	}
	return &messageHeader{
		magic:    BitcoinNet(magic),
		command:  string(cmdBuf[:end]),
		length:   length,
		checksum: checksum,
	}, nil
}

// WriteMessage serializes msg into its full wire envelope (header + payload)
// for the given network and protocol version.
func WriteMessage(w io.Writer, msg Message, pver uint32, net BitcoinNet) error {
	var payload bytes.Buffer
	if err := msg.BtcEncode(&payload, pver); err != nil {
		return err
	}
	if uint32(payload.Len()) > msg.MaxPayloadLength(pver) {
		return fmt.Errorf("wire: %s payload exceeds max length", msg.Command())
	}

	sum := crypto.DoubleSha256(payload.Bytes())
	hdr := &messageHeader{
		magic:   net,
		command: msg.Command(),
		length:  uint32(payload.Len()),
	}
	copy(hdr.checksum[:], sum[:4])

	if err := writeMessageHeader(w, hdr); err != nil {
		return err
	}
	_, err := w.Write(payload.Bytes())
	return err
}

// ReadMessage parses a full wire envelope, dispatching to a freshly
// constructed Message of the right type via makeEmptyMessage. It enforces
// the magic, max-payload and checksum rules;
// any violation is a ProtocolError, which package peer reports as a
// MisbehaviorError.
func ReadMessage(r io.Reader, pver uint32, net BitcoinNet) (Message, []byte, error) {
	hdr, err := readMessageHeader(r)
	if err != nil {
		return nil, nil, err
	}
	if hdr.magic != net {
		return nil, nil, &ProtocolError{Reason: fmt.Sprintf("unexpected network magic 0x%08x", uint32(hdr.magic))}
	}
	if hdr.length > MaxMessagePayload {
		return nil, nil, &ProtocolError{Reason: "payload exceeds maximum allowed size"}
	}

	payload := make([]byte, hdr.length)
	if err := codec.ReadFixedBytes(r, payload); err != nil {
		return nil, nil, err
	}

	sum := crypto.DoubleSha256(payload)
	if !bytes.Equal(sum[:4], hdr.checksum[:]) {
		return nil, nil, &ProtocolError{Reason: "checksum mismatch"}
	}

	msg, err := makeEmptyMessage(hdr.command)
	if err != nil {
		return nil, payload, err
	}
	if hdr.length > msg.MaxPayloadLength(pver) {
		return nil, nil, &ProtocolError{Reason: fmt.Sprintf("%s payload exceeds max length", hdr.command)}
	}

	if err := msg.BtcDecode(bytes.NewReader(payload), pver); err != nil {
		return nil, payload, err
	}
	return msg, payload, nil
}

// ProtocolError represents a protocol violation: bad magic, bad
// checksum, oversize payload, or a message body that breaks a
// per-message rule. It always warrants closing the session and reporting
// misbehavior, never a crash. An unknown command in strict mode is
// reported by package peer directly, not as a ProtocolError.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string { return "wire: protocol violation: " + e.Reason }

// UnknownCommandError is returned by makeEmptyMessage for a command this
// package doesn't implement. It is not itself a ProtocolError:
// unknown non-critical commands are ignored rather than closing the
// session, unless the peer session is running in strict mode.
type UnknownCommandError struct {
	Command string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("wire: unknown command %q", e.Command)
}

func makeEmptyMessage(command string) (Message, error) {
	switch command {
	case CmdVersion:
		return &MsgVersion{}, nil
	case CmdVerAck:
		return &MsgVerAck{}, nil
	case CmdPing:
		return &MsgPing{}, nil
	case CmdPong:
		return &MsgPong{}, nil
	case CmdInv:
		return &MsgInv{}, nil
	case CmdGetData:
		return &MsgGetData{}, nil
	case CmdNotFound:
		return &MsgNotFound{}, nil
	case CmdGetHeaders:
		return &MsgGetHeaders{}, nil
	case CmdGetBlocks:
		return &MsgGetBlocks{}, nil
	case CmdHeaders:
		return &MsgHeaders{}, nil
	case CmdBlock:
		return &MsgBlockWire{}, nil
	case CmdTx:
		return &MsgTxWire{}, nil
	case CmdMerkleBlock:
		return &MsgMerkleBlock{}, nil
	case CmdAddr:
		return &MsgAddr{}, nil
	case CmdFilterLoad:
		return &MsgFilterLoad{}, nil
	case CmdFilterAdd:
		return &MsgFilterAdd{}, nil
	case CmdFilterClear:
		return &MsgFilterClear{}, nil
	case CmdMemPool:
		return &MsgMemPool{}, nil
	default:
		return nil, &UnknownCommandError{Command: command}
	}
}
