// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaincfg defines the per-network parameters the rest of the
// module needs to tell mainnet, testnet3 and regtest apart: wire magic,
// genesis block, proof-of-work limits, retarget constants, and address
// encoding prefixes.
package chaincfg

import (
	"errors"
	"math/big"
	"time"

	"github.com/corvidlabs/bitspv/chainhash"
	"github.com/corvidlabs/bitspv/wire"
)

var bigOne = big.NewInt(1)

// mainPowLimit is the highest proof-of-work value (lowest difficulty) a
// mainnet block may have: 2^224-1.
var mainPowLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 224), bigOne)

// regressionPowLimit is the highest proof-of-work value a regtest block
// may have: 2^255-1, i.e. almost no work required.
var regressionPowLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 255), bigOne)

// DNSSeed identifies a DNS seed used for peer discovery.
type DNSSeed struct {
	Host         string
	HasFiltering bool
}

// Params defines one Bitcoin network's parameters.
type Params struct {
	Name        string
	Net         wire.BitcoinNet
	DefaultPort string
	DNSSeeds    []DNSSeed

	GenesisBlock *wire.BlockHeader
	GenesisHash  chainhash.Hash256

	PowLimit         *big.Int
	PowLimitBits     uint32
	PoWNoRetargeting bool

	CoinbaseMaturity int32

	TargetTimespan           time.Duration
	TargetTimePerBlock       time.Duration
	RetargetAdjustmentFactor int64
	BlocksPerRetarget        int32

	Bech32HRPSegwit string

	PubKeyHashAddrID byte
	ScriptHashAddrID byte
	PrivateKeyID     byte

	HDPrivateKeyID [4]byte
	HDPublicKeyID  [4]byte
	HDCoinType     uint32
}

// MainNetParams are the production Bitcoin network's parameters.
var MainNetParams = Params{
	Name:        "mainnet",
	Net:         wire.MainNet,
	DefaultPort: "8333",
	DNSSeeds: []DNSSeed{
		{Host: "seed.bitcoin.sipa.be", HasFiltering: true},
		{Host: "dnsseed.bluematt.me", HasFiltering: true},
		{Host: "dnsseed.bitcoin.dashjr.org", HasFiltering: false},
		{Host: "seed.bitcoinstats.com", HasFiltering: true},
	},

	GenesisBlock: &mainNetGenesisHeader,
	GenesisHash:  mainNetGenesisHash,

	PowLimit:         mainPowLimit,
	PowLimitBits:     0x1d00ffff,
	PoWNoRetargeting: false,

	CoinbaseMaturity: 100,

	TargetTimespan:           time.Hour * 24 * 14,
	TargetTimePerBlock:       time.Minute * 10,
	RetargetAdjustmentFactor: 4,
	BlocksPerRetarget:        2016,

	Bech32HRPSegwit: "bc",

	PubKeyHashAddrID: 0x00,
	ScriptHashAddrID: 0x05,
	PrivateKeyID:     0x80,

	HDPrivateKeyID: [4]byte{0x04, 0x88, 0xad, 0xe4},
	HDPublicKeyID:  [4]byte{0x04, 0x88, 0xb2, 0x1e},
	HDCoinType:     0,
}

// TestNet3Params are the public test network's parameters.
var TestNet3Params = Params{
	Name:        "testnet3",
	Net:         wire.TestNet3,
	DefaultPort: "18333",
	DNSSeeds: []DNSSeed{
		{Host: "testnet-seed.bitcoin.jonasschnelli.ch", HasFiltering: true},
		{Host: "seed.tbtc.petertodd.org", HasFiltering: false},
	},

	GenesisBlock: &testNet3GenesisHeader,
	GenesisHash:  testNet3GenesisHash,

	PowLimit:         mainPowLimit,
	PowLimitBits:     0x1d00ffff,
	PoWNoRetargeting: false,

	CoinbaseMaturity: 100,

	TargetTimespan:           time.Hour * 24 * 14,
	TargetTimePerBlock:       time.Minute * 10,
	RetargetAdjustmentFactor: 4,
	BlocksPerRetarget:        2016,

	Bech32HRPSegwit: "tb",

	PubKeyHashAddrID: 0x6f,
	ScriptHashAddrID: 0xc4,
	PrivateKeyID:     0xef,

	HDPrivateKeyID: [4]byte{0x04, 0x35, 0x83, 0x94},
	HDPublicKeyID:  [4]byte{0x04, 0x35, 0x87, 0xcf},
	HDCoinType:     1,
}

// RegressionNetParams are the local regression-test network's
// parameters: effectively no proof-of-work and no retargeting.
var RegressionNetParams = Params{
	Name:        "regtest",
	Net:         wire.RegTest,
	DefaultPort: "18444",

	GenesisBlock: &regTestGenesisHeader,
	GenesisHash:  regTestGenesisHash,

	PowLimit:         regressionPowLimit,
	PowLimitBits:     0x207fffff,
	PoWNoRetargeting: true,

	CoinbaseMaturity: 100,

	TargetTimespan:           time.Hour * 24 * 14,
	TargetTimePerBlock:       time.Minute * 10,
	RetargetAdjustmentFactor: 4,
	BlocksPerRetarget:        2016,

	Bech32HRPSegwit: "bcrt",

	PubKeyHashAddrID: 0x6f,
	ScriptHashAddrID: 0xc4,
	PrivateKeyID:     0xef,

	HDPrivateKeyID: [4]byte{0x04, 0x35, 0x83, 0x94},
	HDPublicKeyID:  [4]byte{0x04, 0x35, 0x87, 0xcf},
	HDCoinType:     1,
}

// ErrUnknownNet is returned by ParamsForNet for a magic this package does
// not recognize.
var ErrUnknownNet = errors.New("chaincfg: unrecognized network magic")

// ParamsForNet returns the registered Params for net, if any.
func ParamsForNet(net wire.BitcoinNet) (*Params, error) {
	switch net {
	case wire.MainNet:
		return &MainNetParams, nil
	case wire.TestNet3:
		return &TestNet3Params, nil
	case wire.RegTest:
		return &RegressionNetParams, nil
	default:
		return nil, ErrUnknownNet
	}
}

// ParamsForName returns the Params matching a human-facing network name
// as accepted by the CLI and the BITCOINJ_NETWORK environment variable.
func ParamsForName(name string) (*Params, error) {
	switch name {
	case "main", "mainnet":
		return &MainNetParams, nil
	case "test", "testnet", "testnet3":
		return &TestNet3Params, nil
	case "regtest":
		return &RegressionNetParams, nil
	default:
		return nil, ErrUnknownNet
	}
}
