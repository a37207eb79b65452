// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"

	"github.com/btcsuite/btcd/btcutil"
	flags "github.com/jessevdk/go-flags"

	"github.com/corvidlabs/bitspv/chaincfg"
)

// Exit codes shared by the bitspv command-line tools.
const (
	exitSuccess           = 0
	exitBadArgs           = 2
	exitInsufficientFunds = 3
	exitBadPassword       = 4
	exitChainNotSynced    = 5
	exitUnexpected        = 10
)

var defaultDataDir = btcutil.AppDataDir("bitspv", false)

// config holds the daemon's command-line options. Defaults for the
// network, data directory, and log level come from the BITCOINJ_NETWORK,
// BITCOINJ_DATA_DIR, and BITCOINJ_LOG_LEVEL environment variables when
// set.
type config struct {
	DataDir  string `short:"d" long:"data-dir" description:"Directory to store chain and wallet data"`
	Network  string `long:"network" description:"Bitcoin network to connect to" choice:"main" choice:"test" choice:"regtest"`
	Peers    string `long:"peers" description:"Comma-separated ip:port list to connect to instead of DNS seeds"`
	Password string `long:"password" description:"Wallet passphrase, if an existing wallet file should track the sync"`
	LogLevel string `long:"log-level" description:"Logging level {trace, debug, info, warn, error, critical}"`
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadConfig parses flags over environment-variable defaults and resolves
// the selected network's parameters.
func loadConfig(args []string) (*config, *chaincfg.Params, error) {
	cfg := &config{
		DataDir:  envOr("BITCOINJ_DATA_DIR", defaultDataDir),
		Network:  envOr("BITCOINJ_NETWORK", "main"),
		LogLevel: envOr("BITCOINJ_LOG_LEVEL", "info"),
	}

	parser := flags.NewParser(cfg, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, nil, err
	}

	params, err := chaincfg.ParamsForName(cfg.Network)
	if err != nil {
		return nil, nil, err
	}
	return cfg, params, nil
}

// netDir is where one network's chain database, wallet file, and logs
// live: <data-dir>/<network name>.
func netDir(cfg *config, params *chaincfg.Params) string {
	return filepath.Join(cfg.DataDir, params.Name)
}
