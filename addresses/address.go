// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package addresses implements Bitcoin address encoding and parsing: legacy
// base58check P2PKH/P2SH and bech32 segwit v0 P2WPKH. A segwit v0 address
// with a 32-byte (P2WSH) program is rejected by Decode with
// ErrUnsupportedWitnessVersion.
package addresses

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/btcutil/bech32"

	"github.com/corvidlabs/bitspv/chaincfg"
	"github.com/corvidlabs/bitspv/chainhash"
	"github.com/corvidlabs/bitspv/crypto"
	"github.com/corvidlabs/bitspv/txscript"
)

// Kind identifies which address template an Address uses.
type Kind int

const (
	P2PKH Kind = iota
	P2SH
	P2WPKH
	P2WSH
)

func (k Kind) String() string {
	switch k {
	case P2PKH:
		return "p2pkh"
	case P2SH:
		return "p2sh"
	case P2WPKH:
		return "p2wpkh"
	case P2WSH:
		return "p2wsh"
	default:
		return "unknown"
	}
}

var (
	// ErrInvalidAddress is returned when an address string doesn't decode
	// to any recognized template.
	ErrInvalidAddress = errors.New("addresses: invalid address")

	// ErrWrongNetwork is returned when an address decodes but carries a
	// version byte or HRP belonging to a different network.
	ErrWrongNetwork = errors.New("addresses: address is for a different network")

	// ErrUnsupportedWitnessVersion is returned for a segwit address this
	// package doesn't decode: any witness version other than 0, and a v0
	// address with a 32-byte (P2WSH) program.
	ErrUnsupportedWitnessVersion = errors.New("addresses: unsupported witness version")
)

// Address is a parsed, network-bound Bitcoin address: something a wallet
// can both render as a string and turn into an output script to pay.
type Address interface {
	// String returns the standard human-readable encoding.
	String() string

	// Hash returns the 20-byte key or script hash this address commits
	// to (the witness program for P2WPKH).
	Hash() chainhash.Hash160

	// Kind reports which address template this is.
	Kind() Kind

	// PayToScript synthesizes the scriptPubKey that pays this address.
	PayToScript() []byte
}

type baseAddress struct {
	kind   Kind
	hash   chainhash.Hash160
	params *chaincfg.Params
}

func (a *baseAddress) Hash() chainhash.Hash160 { return a.hash }
func (a *baseAddress) Kind() Kind              { return a.kind }

func (a *baseAddress) PayToScript() []byte {
	switch a.kind {
	case P2PKH:
		return txscript.PayToPubKeyHashScript(a.hash)
	case P2SH:
		return txscript.PayToScriptHashScript(a.hash)
	case P2WPKH, P2WSH:
		return payToWitnessScript(a.hash[:])
	default:
		return nil
	}
}

func (a *baseAddress) String() string {
	switch a.kind {
	case P2PKH:
		return encodeBase58Check(a.params.PubKeyHashAddrID, a.hash[:])
	case P2SH:
		return encodeBase58Check(a.params.ScriptHashAddrID, a.hash[:])
	case P2WPKH, P2WSH:
		return encodeSegwit(a.params.Bech32HRPSegwit, 0, a.hash[:])
	default:
		return ""
	}
}

// NewP2PKH builds a pay-to-pubkey-hash address from a 20-byte hash.
func NewP2PKH(hash chainhash.Hash160, params *chaincfg.Params) Address {
	return &baseAddress{kind: P2PKH, hash: hash, params: params}
}

// NewP2SH builds a pay-to-script-hash address from a 20-byte redeem script
// hash.
func NewP2SH(hash chainhash.Hash160, params *chaincfg.Params) Address {
	return &baseAddress{kind: P2SH, hash: hash, params: params}
}

// NewP2WPKH builds a native segwit v0 pay-to-witness-pubkey-hash address.
func NewP2WPKH(hash chainhash.Hash160, params *chaincfg.Params) Address {
	return &baseAddress{kind: P2WPKH, hash: hash, params: params}
}

// FromPubKey derives the legacy P2PKH address for a serialized public key,
// the default address type a fresh KeyChain key renders as.
func FromPubKey(pubKeyCompressed []byte, params *chaincfg.Params) Address {
	return NewP2PKH(crypto.Hash160(pubKeyCompressed), params)
}

func encodeBase58Check(version byte, hash []byte) string {
	payload := make([]byte, 0, 1+len(hash)+4)
	payload = append(payload, version)
	payload = append(payload, hash...)
	checksum := crypto.DoubleSha256(payload)
	payload = append(payload, checksum[:4]...)
	return base58.Encode(payload)
}

func decodeBase58Check(s string) (version byte, payload []byte, err error) {
	decoded := base58.Decode(s)
	if len(decoded) < 5 {
		return 0, nil, ErrInvalidAddress
	}
	body, checksum := decoded[:len(decoded)-4], decoded[len(decoded)-4:]
	want := crypto.DoubleSha256(body)
	for i := 0; i < 4; i++ {
		if checksum[i] != want[i] {
			return 0, nil, ErrInvalidAddress
		}
	}
	return body[0], body[1:], nil
}

func encodeSegwit(hrp string, witnessVersion byte, program []byte) string {
	conv, err := bech32.ConvertBits(program, 8, 5, true)
	if err != nil {
		return ""
	}
	data := append([]byte{witnessVersion}, conv...)
	encoded, err := bech32.Encode(hrp, data)
	if err != nil {
		return ""
	}
	return encoded
}

func payToWitnessScript(program []byte) []byte {
	script := make([]byte, 0, 2+len(program))
	script = append(script, txscript.OP_0, byte(len(program)))
	return append(script, program...)
}

// Decode parses address against params, returning the matching Address or
// an error identifying why it was rejected.
func Decode(address string, params *chaincfg.Params) (Address, error) {
	if hrp, data, err := bech32.Decode(address); err == nil {
		if hrp != params.Bech32HRPSegwit {
			return nil, ErrWrongNetwork
		}
		return decodeSegwit(data, params)
	}

	version, payload, err := decodeBase58Check(address)
	if err != nil {
		return nil, err
	}
	if len(payload) != 20 {
		return nil, ErrInvalidAddress
	}
	var hash chainhash.Hash160
	copy(hash[:], payload)

	switch version {
	case params.PubKeyHashAddrID:
		return NewP2PKH(hash, params), nil
	case params.ScriptHashAddrID:
		return NewP2SH(hash, params), nil
	default:
		return nil, ErrWrongNetwork
	}
}

func decodeSegwit(data []byte, params *chaincfg.Params) (Address, error) {
	if len(data) < 1 {
		return nil, ErrInvalidAddress
	}
	witnessVersion := data[0]
	if witnessVersion != 0 {
		return nil, ErrUnsupportedWitnessVersion
	}
	program, err := bech32.ConvertBits(data[1:], 5, 8, false)
	if err != nil {
		return nil, ErrInvalidAddress
	}
	switch len(program) {
	case 20:
		var hash chainhash.Hash160
		copy(hash[:], program)
		return NewP2WPKH(hash, params), nil
	case 32:
		return nil, fmt.Errorf("addresses: p2wsh (32-byte program) %w", ErrUnsupportedWitnessVersion)
	default:
		return nil, ErrInvalidAddress
	}
}
