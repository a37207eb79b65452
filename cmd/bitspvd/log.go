// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"

	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"

	"github.com/corvidlabs/bitspv/chainstore"
	"github.com/corvidlabs/bitspv/peer"
	"github.com/corvidlabs/bitspv/peergroup"
	"github.com/corvidlabs/bitspv/wallet"
)

// logWriter duplicates log output to stdout and, once initLogRotator has
// run, the rotating log file.
type logWriter struct{}

func (logWriter) Write(p []byte) (n int, err error) {
	os.Stdout.Write(p)
	if logRotator != nil {
		logRotator.Write(p)
	}
	return len(p), nil
}

var (
	logRotator *rotator.Rotator

	backendLog = btclog.NewBackend(logWriter{})

	log      = backendLog.Logger("MAIN")
	chnsLog  = backendLog.Logger("CHNS")
	peerLog  = backendLog.Logger("PEER")
	pgrpLog  = backendLog.Logger("PGRP")
	wlltLog  = backendLog.Logger("WLLT")

	subsystemLoggers = []btclog.Logger{log, chnsLog, peerLog, pgrpLog, wlltLog}
)

func init() {
	chainstore.UseLogger(chnsLog)
	peer.UseLogger(peerLog)
	peergroup.UseLogger(pgrpLog)
	wallet.UseLogger(wlltLog)
}

// initLogRotator starts the rotating file logger at logFile, creating its
// directory if needed.
func initLogRotator(logFile string) error {
	if err := os.MkdirAll(filepath.Dir(logFile), 0700); err != nil {
		return err
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		return err
	}
	logRotator = r
	return nil
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
