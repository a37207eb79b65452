// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer

import "fmt"

// MisbehaviorError is returned (and reported to the Handler's OnDisconnect)
// when a peer violates the wire protocol in a way that warrants closing the
// session without treating it as a transient failure: bad
// magic, bad checksum, an oversize payload, an unexpected message for the
// session's current state, or a handshake that advertises a too-low
// protocol version. A handshake that times out is reported as the plain
// I/O timeout error instead.
type MisbehaviorError struct {
	Reason string
}

func (e *MisbehaviorError) Error() string {
	return fmt.Sprintf("peer: misbehavior: %s", e.Reason)
}

// ErrStalled is reported when a peer fails to answer a ping within the
// session's configured timeout.
var ErrStalled = &MisbehaviorError{Reason: "ping timeout"}

// ErrClosed is returned by Send when the session closes while a getdata is
// waiting for an in-flight slot.
type ErrClosed struct{}

func (ErrClosed) Error() string { return "peer: session is closed" }
