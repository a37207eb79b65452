// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// bitspvd is the chain-sync daemon: it maintains the verified header
// chain for the selected network, and, when a wallet file is present in
// the data directory, keeps that wallet's transaction state current
// while it syncs.
package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	flags "github.com/jessevdk/go-flags"

	"github.com/corvidlabs/bitspv/chainstore"
	"github.com/corvidlabs/bitspv/keychain"
	"github.com/corvidlabs/bitspv/peergroup"
	"github.com/corvidlabs/bitspv/wallet"
	"github.com/corvidlabs/bitspv/wallet/store"
)

func main() {
	os.Exit(spvdMain(os.Args[1:]))
}

func spvdMain(args []string) int {
	cfg, params, err := loadConfig(args)
	if err != nil {
		var flagErr *flags.Error
		if errors.As(err, &flagErr) && flagErr.Type == flags.ErrHelp {
			return exitSuccess
		}
		fmt.Fprintln(os.Stderr, err)
		return exitBadArgs
	}

	dir := netDir(cfg, params)
	if err := initLogRotator(filepath.Join(dir, "logs", "bitspvd.log")); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize log rotation: %v\n", err)
		return exitUnexpected
	}
	defer logRotator.Close()
	if !setLogLevels(cfg.LogLevel) {
		fmt.Fprintf(os.Stderr, "invalid log level %q\n", cfg.LogLevel)
		return exitBadArgs
	}

	chain, err := chainstore.OpenLevelStore(filepath.Join(dir, "chain"), params)
	if err != nil {
		log.Errorf("Failed to open chain store: %v", err)
		return exitUnexpected
	}
	defer chain.Close()

	var (
		w          *wallet.Wallet
		seed       *store.Seed
		walletPath = filepath.Join(dir, "wallet.dat")
	)
	if _, err := os.Stat(walletPath); err == nil {
		w, seed, err = store.OpenWallet(walletPath, cfg.Password, params)
		if errors.Is(err, keychain.ErrWrongPassphrase) {
			log.Errorf("Wallet passphrase does not match %s", walletPath)
			return exitBadPassword
		}
		if err != nil {
			log.Errorf("Failed to open wallet: %v", err)
			return exitUnexpected
		}
		log.Infof("Tracking wallet %s (last seen height %d)", walletPath, w.TipHeight())
	}

	groupCfg := &peergroup.Config{
		Params: params,
		Store:  chain,
	}
	if cfg.Peers != "" {
		groupCfg.Discovery = peergroup.NewStaticDiscovery(strings.Split(cfg.Peers, ","))
	}
	group, err := peergroup.New(groupCfg)
	if err != nil {
		log.Errorf("Failed to create peer group: %v", err)
		return exitUnexpected
	}
	if w != nil {
		group.AddWallet(w)
	}
	if err := group.Start(); err != nil {
		log.Errorf("Failed to start peer group: %v", err)
		return exitUnexpected
	}

	log.Infof("Chain sync started on %s from height %d", params.Name, chain.Tip().Height)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	<-interrupt

	log.Infof("Shutting down")
	group.Stop()

	if w != nil {
		w.CancelBalanceFutures()
		if err := store.SaveWallet(walletPath, w, seed); err != nil {
			log.Errorf("Failed to save wallet on shutdown: %v", err)
			return exitUnexpected
		}
	}
	log.Infof("Shutdown complete at height %d", chain.Tip().Height)
	return exitSuccess
}
