// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package peergroup maintains a pool of outbound peer sessions, elects one
// as the chain-download peer, reassembles block bodies behind the header
// chain a chainstore.Store accepts, multiplexes a union bloom filter
// across every registered wallet, and announces outbound transactions to
// every ready peer, tracking them until enough peers have relayed them
// back. Shared state (the peer set, the download peer, in-flight reorgs,
// outstanding broadcasts) is guarded by the group's mutex; messages
// arriving from peer sessions are handled on the group's single
// dispatcher goroutine.
package peergroup

import (
	"errors"
	"sync"
	"time"

	"github.com/corvidlabs/bitspv/bloom"
	"github.com/corvidlabs/bitspv/chaincfg"
	"github.com/corvidlabs/bitspv/chainhash"
	"github.com/corvidlabs/bitspv/chainstore"
	"github.com/corvidlabs/bitspv/peer"
	"github.com/corvidlabs/bitspv/wallet"
	"github.com/corvidlabs/bitspv/wire"
)

// DefaultTargetOutbound is how many simultaneous outbound sessions the
// group maintains absent an explicit Config.TargetOutbound.
const DefaultTargetOutbound = 4

// DefaultStallTimeout bounds how long the elected download peer may go
// without delivering a new header or block body before it is demoted.
const DefaultStallTimeout = 60 * time.Second

// defaultDialTimeout bounds a single outbound connection attempt.
const defaultDialTimeout = 10 * time.Second

// defaultEventQueueDepth sizes the dispatcher's event channel.
const defaultEventQueueDepth = 256

// Config configures a PeerGroup.
type Config struct {
	// Params selects the network (genesis, DNS seeds, magic) the group
	// dials into and validates headers against.
	Params *chaincfg.Params

	// Store is the header chain every download peer's headers are
	// verified and recorded against.
	Store chainstore.Store

	// Discovery supplies candidate addresses for the connection pool.
	// Defaults to a DNSDiscovery over Params' seeds.
	Discovery Discovery

	// Dial opens outbound connections. Defaults to a plain net.Dialer;
	// pass a SOCKSDialer to proxy.
	Dial Dialer

	// TargetOutbound is how many peer sessions the pool keeps open.
	TargetOutbound int

	// StallTimeout is how long the download peer may go without
	// progress before being demoted and replaced.
	StallTimeout time.Duration

	// ProtocolVersion and UserAgent are advertised in every outbound
	// version message.
	ProtocolVersion uint32
	UserAgent       string
}

func (c *Config) withDefaults() *Config {
	cfg := *c
	if cfg.TargetOutbound <= 0 {
		cfg.TargetOutbound = DefaultTargetOutbound
	}
	if cfg.StallTimeout <= 0 {
		cfg.StallTimeout = DefaultStallTimeout
	}
	if cfg.ProtocolVersion == 0 {
		cfg.ProtocolVersion = wire.ProtocolVersion
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "/bitspv:0.1.0/"
	}
	if cfg.Dial == nil {
		cfg.Dial = defaultDialer(defaultDialTimeout)
	}
	if cfg.Discovery == nil {
		cfg.Discovery = NewDNSDiscovery(cfg.Params)
	}
	return &cfg
}

// peerState is the pool's bookkeeping for one session.
type peerState struct {
	peer        *peer.Peer
	addr        string
	startHeight int32
}

// PeerGroup owns the connection pool, the elected download peer, the
// wallets it is filtering on behalf of, and every outstanding broadcast.
type PeerGroup struct {
	cfg *Config

	mu             sync.Mutex
	peers          map[*peer.Peer]*peerState
	connecting     map[string]struct{}
	retry          map[string]*retryState
	downloadPeer   *peer.Peer
	lastProgress   time.Time
	wallets        []*wallet.Wallet
	filter         *bloom.Filter
	broadcasts     map[chainhash.Hash256]*broadcastState
	blockOwner     map[chainhash.Hash256]*pendingReorg
	pendingMatches map[chainhash.Hash256]map[chainhash.Hash256]struct{}
	reorgQueue     []*pendingReorg
	seen           *seenCache
	started        bool

	events   chan func()
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New constructs a PeerGroup from cfg. The group does not dial or start
// its dispatcher until Start is called.
func New(cfg *Config) (*PeerGroup, error) {
	if cfg == nil {
		return nil, errors.New("peergroup: nil Config")
	}
	if cfg.Params == nil {
		return nil, errors.New("peergroup: Config.Params is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("peergroup: Config.Store is required")
	}

	g := &PeerGroup{
		cfg:            cfg.withDefaults(),
		peers:          make(map[*peer.Peer]*peerState),
		connecting:     make(map[string]struct{}),
		retry:          make(map[string]*retryState),
		broadcasts:     make(map[chainhash.Hash256]*broadcastState),
		blockOwner:     make(map[chainhash.Hash256]*pendingReorg),
		pendingMatches: make(map[chainhash.Hash256]map[chainhash.Hash256]struct{}),
		seen:           newSeenCache(defaultSeenCacheSize),
		events:         make(chan func(), defaultEventQueueDepth),
		stopCh:         make(chan struct{}),
	}
	return g, nil
}

// Start launches the dispatcher and connection-pool maintenance loop.
func (g *PeerGroup) Start() error {
	g.mu.Lock()
	if g.started {
		g.mu.Unlock()
		return ErrAlreadyStarted
	}
	g.started = true
	g.mu.Unlock()

	// Compute the initial union filter before any session can complete
	// its handshake, so the first pushFilterTo has something to push.
	g.RecomputeFilter()

	g.wg.Add(2)
	go g.run()
	go g.maintainPeerCount()
	return nil
}

// Stop closes every session, cancels outstanding broadcasts, and waits
// for the dispatcher and pool-maintenance goroutines to exit.
func (g *PeerGroup) Stop() {
	g.stopOnce.Do(func() {
		close(g.stopCh)

		g.mu.Lock()
		peers := make([]*peer.Peer, 0, len(g.peers))
		for _, ps := range g.peers {
			peers = append(peers, ps.peer)
		}
		for _, bs := range g.broadcasts {
			bs.cancel()
		}
		g.mu.Unlock()

		for _, p := range peers {
			p.Close()
		}
	})
	g.wg.Wait()
}

// Peers returns the addresses of every currently connected session.
func (g *PeerGroup) Peers() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, 0, len(g.peers))
	for _, ps := range g.peers {
		out = append(out, ps.addr)
	}
	return out
}

// readyPeersLocked returns the sessions that have completed their
// handshake. Callers must already hold g.mu.
func (g *PeerGroup) readyPeersLocked() []*peer.Peer {
	out := make([]*peer.Peer, 0, len(g.peers))
	for _, ps := range g.peers {
		if ps.peer.IsReady() {
			out = append(out, ps.peer)
		}
	}
	return out
}

// run is the group's single dispatcher: it drains g.events in arrival
// order and periodically checks the download peer for stalls. Every
// peer.Handler callback posts its work here rather than running it on the
// session's read goroutine.
func (g *PeerGroup) run() {
	defer g.wg.Done()

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case fn := <-g.events:
			fn()
		case <-ticker.C:
			g.checkStall()
		case <-g.stopCh:
			g.drainEvents()
			return
		}
	}
}

// drainEvents runs any events still queued at shutdown so a Stop doesn't
// leave a caller blocked on postEvent forever; the closures themselves
// are responsible for noticing a stopped group where that matters.
func (g *PeerGroup) drainEvents() {
	for {
		select {
		case fn := <-g.events:
			fn()
		default:
			return
		}
	}
}

// postEvent queues fn for the dispatcher goroutine. It never blocks the
// caller on dispatcher progress beyond the event channel's buffer.
func (g *PeerGroup) postEvent(fn func()) {
	select {
	case g.events <- fn:
	case <-g.stopCh:
	}
}

// sendAsync issues msg to p from a dedicated goroutine instead of the
// dispatcher. peer.Peer.Send can block for the duration of a getdata
// request's cooperative in-flight window (and, in principle, any write
// can block on a slow socket); doing that synchronously inside a
// dispatcher closure would stall every other event the group needs to
// process, including the very tx/block replies that would free the
// window back up. Every outbound message the dispatcher originates goes
// through here instead of a direct p.Send.
func (g *PeerGroup) sendAsync(p *peer.Peer, msg wire.Message) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		if err := p.Send(msg); err != nil {
			log.Debugf("peergroup: send %s to %s: %v", msg.Command(), p.Addr, err)
		}
	}()
}
