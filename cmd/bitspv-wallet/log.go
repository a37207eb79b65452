// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"

	"github.com/btcsuite/btclog"

	"github.com/corvidlabs/bitspv/chainstore"
	"github.com/corvidlabs/bitspv/peer"
	"github.com/corvidlabs/bitspv/peergroup"
	"github.com/corvidlabs/bitspv/wallet"
)

// The wallet tool is short-lived, so its log output goes to stderr only,
// leaving stdout for the command results scripts consume.
var (
	backendLog = btclog.NewBackend(os.Stderr)

	chnsLog = backendLog.Logger("CHNS")
	peerLog = backendLog.Logger("PEER")
	pgrpLog = backendLog.Logger("PGRP")
	wlltLog = backendLog.Logger("WLLT")

	subsystemLoggers = []btclog.Logger{chnsLog, peerLog, pgrpLog, wlltLog}
)

func init() {
	chainstore.UseLogger(chnsLog)
	peer.UseLogger(peerLog)
	peergroup.UseLogger(pgrpLog)
	wallet.UseLogger(wlltLog)
}

// setLogLevels applies a single level string to every subsystem logger,
// reporting whether the string named a valid level.
func setLogLevels(levelStr string) bool {
	level, ok := btclog.LevelFromString(levelStr)
	if !ok {
		return false
	}
	for _, l := range subsystemLoggers {
		l.SetLevel(level)
	}
	return true
}
