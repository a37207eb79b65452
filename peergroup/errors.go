// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peergroup

import "errors"

// ErrCancelled is returned by a broadcast's Wait (and any other pending
// future) once the group is Stopped with the operation still outstanding.
var ErrCancelled = errors.New("peergroup: operation cancelled")

// ErrNoPeers is returned by BroadcastTransaction when the group has no
// ready peer to use.
var ErrNoPeers = errors.New("peergroup: no ready peers")

// ErrAlreadyStarted / ErrNotStarted guard the group's lifecycle.
var (
	ErrAlreadyStarted = errors.New("peergroup: already started")
	ErrNotStarted     = errors.New("peergroup: not started")
)
