// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peergroup

import (
	"time"

	"github.com/corvidlabs/bitspv/peer"
)

// maintainPeerCount keeps the pool topped up to Config.TargetOutbound,
// dialing new addresses as earlier attempts finish or sessions drop.
func (g *PeerGroup) maintainPeerCount() {
	defer g.wg.Done()

	g.fillPeers()

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			g.fillPeers()
		case <-g.stopCh:
			return
		}
	}
}

// retryState tracks consecutive dial failures for one address so the
// pool backs off instead of hammering a dead peer every fill tick.
type retryState struct {
	failures int
	nextTry  time.Time
}

// hasPeerAddrLocked reports whether addr already has a connected or
// in-flight session, or is still inside its retry backoff window.
// Callers must already hold g.mu.
func (g *PeerGroup) hasPeerAddrLocked(addr string) bool {
	if _, ok := g.connecting[addr]; ok {
		return true
	}
	if rs, ok := g.retry[addr]; ok && time.Now().Before(rs.nextTry) {
		return true
	}
	for _, ps := range g.peers {
		if ps.addr == addr {
			return true
		}
	}
	return false
}

// fillPeers dials enough new addresses to reach TargetOutbound, marking
// each as connecting before its dial goroutine starts so a second tick
// doesn't double-dial the same address.
func (g *PeerGroup) fillPeers() {
	g.mu.Lock()
	need := g.cfg.TargetOutbound - len(g.peers) - len(g.connecting)
	g.mu.Unlock()
	if need <= 0 {
		return
	}

	candidates := g.cfg.Discovery.GetAddresses(need * 2)

	g.mu.Lock()
	var picked []string
	for _, addr := range candidates {
		if len(picked) >= need {
			break
		}
		if g.hasPeerAddrLocked(addr) {
			continue
		}
		g.connecting[addr] = struct{}{}
		picked = append(picked, addr)
	}
	g.mu.Unlock()

	for _, addr := range picked {
		g.wg.Add(1)
		go func(addr string) {
			defer g.wg.Done()
			g.connectOne(addr)
		}(addr)
	}
}

// peerConfig builds the per-session Config advertised to a new outbound
// connection, stamping in the store's current tip as our start height.
func (g *PeerGroup) peerConfig() *peer.Config {
	var height int32
	if tip := g.cfg.Store.Tip(); tip != nil {
		height = tip.Height
	}
	return &peer.Config{
		Net:             g.cfg.Params.Net,
		ProtocolVersion: g.cfg.ProtocolVersion,
		UserAgent:       g.cfg.UserAgent,
		StartHeight:     height,
	}
}

// connectOne dials addr, runs the handshake synchronously on this
// dedicated goroutine (never the dispatcher), and hands the now-ready
// session to the dispatcher as an event.
func (g *PeerGroup) connectOne(addr string) {
	conn, err := g.cfg.Dial("tcp", addr)
	if err != nil {
		log.Debugf("peergroup: dial %s: %v", addr, err)
		g.recordDialFailure(addr)
		return
	}

	p := peer.NewPeer(conn, g.peerConfig(), g, false)
	p.Addr = addr
	if err := p.Start(); err != nil {
		log.Debugf("peergroup: handshake with %s: %v", addr, err)
		g.recordDialFailure(addr)
		return
	}

	g.mu.Lock()
	delete(g.retry, addr)
	g.mu.Unlock()
	g.cfg.Discovery.AddAddress(addr)
	g.postEvent(func() { g.handlePeerReady(addr, p) })
}

// recordDialFailure clears addr's connecting mark and pushes its next
// eligible attempt out by the exponential retryDelay.
func (g *PeerGroup) recordDialFailure(addr string) {
	g.mu.Lock()
	delete(g.connecting, addr)
	rs, ok := g.retry[addr]
	if !ok {
		rs = &retryState{}
		g.retry[addr] = rs
	}
	rs.nextTry = time.Now().Add(retryDelay(rs.failures))
	rs.failures++
	g.mu.Unlock()
}

// handlePeerReady registers a freshly-handshaked session, runs the
// opening moves (recompute/push the filter, consider it for chain
// download), and transitions it out of the "connecting" bookkeeping.
// Runs on the dispatcher goroutine.
func (g *PeerGroup) handlePeerReady(addr string, p *peer.Peer) {
	g.mu.Lock()
	delete(g.connecting, addr)
	g.peers[p] = &peerState{peer: p, addr: addr, startHeight: p.VersionRecv.StartHeight}
	g.mu.Unlock()

	log.Infof("peergroup: connected to %s, start height %d", addr, p.VersionRecv.StartHeight)

	g.electDownloadPeer()
	g.pushFilterTo(p)
}
