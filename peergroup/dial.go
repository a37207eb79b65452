// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peergroup

import (
	"net"
	"time"

	"github.com/btcsuite/go-socks/socks"
)

// Dialer opens outbound connections for the group. The default is a plain
// net.Dialer; SOCKSDialer swaps in a proxied one for operators who want
// their peer connections to egress through a SOCKS5 proxy.
type Dialer func(network, addr string) (net.Conn, error)

// defaultDialer dials directly with a bounded timeout.
func defaultDialer(timeout time.Duration) Dialer {
	d := &net.Dialer{Timeout: timeout}
	return d.Dial
}

// SOCKSDialer returns a Dialer that proxies every connection through the
// SOCKS5 server at proxyAddr.
func SOCKSDialer(proxyAddr, username, password string) Dialer {
	proxy := &socks.Proxy{
		Addr:     proxyAddr,
		Username: username,
		Password: password,
	}
	return proxy.Dial
}
