// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peergroup

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/corvidlabs/bitspv/chaincfg"
	"github.com/corvidlabs/bitspv/chainstore"
	"github.com/corvidlabs/bitspv/keychain"
	"github.com/corvidlabs/bitspv/peer"
	"github.com/corvidlabs/bitspv/wallet"
	"github.com/corvidlabs/bitspv/wire"
)

// handshakeOverPipe runs a full version/verack exchange between two
// in-memory Peer sessions connected by net.Pipe, so protocol behavior is
// testable without a real socket. outbound gets start height 0 and inbound gets startHeight, mirroring a newly
// dialed SPV client talking to a peer that is startHeight blocks ahead.
func handshakeOverPipe(t *testing.T, handler peer.Handler, startHeight int32) (*peer.Peer, *peer.Peer) {
	t.Helper()
	a, b := net.Pipe()

	cfg := &peer.Config{Net: wire.RegTest, HandshakeTimeout: 5 * time.Second}
	outboundCfg := *cfg
	outboundCfg.StartHeight = 0
	inboundCfg := *cfg
	inboundCfg.StartHeight = startHeight

	outbound := peer.NewPeer(a, &outboundCfg, handler, false)
	inbound := peer.NewPeer(b, &inboundCfg, peer.NopHandler{}, true)

	errCh := make(chan error, 2)
	go func() { errCh <- outbound.Start() }()
	go func() { errCh <- inbound.Start() }()
	require.NoError(t, <-errCh)
	require.NoError(t, <-errCh)

	outbound.Addr = "remote:8333"
	inbound.Addr = "local:0"
	return outbound, inbound
}

func newTestGroup(t *testing.T) *PeerGroup {
	t.Helper()
	g, err := New(&Config{
		Params:     &chaincfg.RegressionNetParams,
		Store:      chainstore.NewMemStore(&chaincfg.RegressionNetParams),
		Discovery:  NewStaticDiscovery(nil),
		TargetOutbound: 1,
	})
	require.NoError(t, err)
	return g
}

func TestRecomputeFilterCoversWalletScripts(t *testing.T) {
	g := newTestGroup(t)

	seed := make([]byte, 32)
	chain, err := keychain.NewKeyChain(seed)
	require.NoError(t, err)
	w := wallet.New(&chaincfg.RegressionNetParams, chain)
	g.AddWallet(w)

	g.RecomputeFilter()

	g.mu.Lock()
	f := g.filter
	g.mu.Unlock()
	require.NotNil(t, f)

	scripts := w.WatchedScripts()
	require.NotEmpty(t, scripts)
	for _, s := range scripts {
		require.True(t, f.Matches(s))
	}
}

func TestElectDownloadPeerPicksHighestStartHeight(t *testing.T) {
	g := newTestGroup(t)

	lowPeer, lowRemote := handshakeOverPipe(t, g, 10)
	highPeer, highRemote := handshakeOverPipe(t, g, 50)
	defer lowPeer.Close()
	defer lowRemote.Close()
	defer highPeer.Close()
	defer highRemote.Close()

	g.mu.Lock()
	g.peers[lowPeer] = &peerState{peer: lowPeer, addr: lowPeer.Addr, startHeight: 10}
	g.peers[highPeer] = &peerState{peer: highPeer, addr: highPeer.Addr, startHeight: 50}
	g.mu.Unlock()

	g.electDownloadPeer()

	g.mu.Lock()
	dp := g.downloadPeer
	g.mu.Unlock()
	require.Equal(t, highPeer, dp)
}

func TestHandleHeadersQueuesBodyFetchOnExtension(t *testing.T) {
	g := newTestGroup(t)
	store := g.cfg.Store.(*chainstore.MemStore)

	seed := make([]byte, 32)
	chain, err := keychain.NewKeyChain(seed)
	require.NoError(t, err)
	w := wallet.New(&chaincfg.RegressionNetParams, chain)
	g.AddWallet(w)

	dp, remote := handshakeOverPipe(t, g, 1)
	defer dp.Close()
	defer remote.Close()

	g.mu.Lock()
	g.peers[dp] = &peerState{peer: dp, addr: dp.Addr, startHeight: 1}
	g.downloadPeer = dp
	g.mu.Unlock()

	genesis := store.Genesis()
	header := &wire.BlockHeader{
		Version:    1,
		PrevBlock:  genesis.Hash(),
		MerkleRoot: genesis.Hash(),
		Timestamp:  genesis.Header.Timestamp.Add(10 * time.Minute),
		Bits:       genesis.Header.Bits,
	}
	for chainstore.CheckProofOfWork(header, chaincfg.RegressionNetParams.PowLimit) != nil {
		header.Nonce++
	}

	g.handleHeaders(dp, &wire.MsgHeaders{Headers: []*wire.BlockHeader{header}})

	g.mu.Lock()
	_, owned := g.blockOwner[header.BlockHash()]
	queued := len(g.reorgQueue)
	g.mu.Unlock()
	require.True(t, owned)
	require.Equal(t, 1, queued)

	require.Equal(t, int32(1), store.Tip().Height)
}

func TestSeenCacheDedupesAcrossAnnouncements(t *testing.T) {
	c := newSeenCache(16)
	var h [32]byte
	h[0] = 1

	require.True(t, c.addIfNew(h))
	require.False(t, c.addIfNew(h))
}

func TestBroadcastTransactionRequiresReadyPeers(t *testing.T) {
	g := newTestGroup(t)
	tx := wire.NewMsgTx(1)
	_, err := g.BroadcastTransaction(tx)
	require.ErrorIs(t, err, ErrNoPeers)
}

func TestBroadcastCompletesOnMajorityAck(t *testing.T) {
	g := newTestGroup(t)

	p1, r1 := handshakeOverPipe(t, g, 1)
	p2, r2 := handshakeOverPipe(t, g, 1)
	defer p1.Close()
	defer r1.Close()
	defer p2.Close()
	defer r2.Close()

	g.mu.Lock()
	g.peers[p1] = &peerState{peer: p1, addr: p1.Addr}
	g.peers[p2] = &peerState{peer: p2, addr: p2.Addr}
	g.mu.Unlock()

	tx := wire.NewMsgTx(1)
	b, err := g.BroadcastTransaction(tx)
	require.NoError(t, err)

	// With two ready peers the majority threshold is 2, so a single ack
	// must not yet complete the broadcast.
	g.markBroadcastSeen(p1, b.Hash)
	select {
	case <-b.bs.done:
		t.Fatal("broadcast completed after only one of two required acks")
	default:
	}

	g.markBroadcastSeen(p2, b.Hash)
	select {
	case <-b.bs.done:
	case <-time.After(time.Second):
		t.Fatal("broadcast never completed after required acks")
	}
	require.NoError(t, b.Wait())
}

func TestStopCancelsOutstandingBroadcast(t *testing.T) {
	g := newTestGroup(t)
	require.NoError(t, g.Start())

	p1, r1 := handshakeOverPipe(t, g, 1)
	defer r1.Close()
	g.mu.Lock()
	g.peers[p1] = &peerState{peer: p1, addr: p1.Addr}
	g.mu.Unlock()

	tx := wire.NewMsgTx(1)
	b, err := g.BroadcastTransaction(tx)
	require.NoError(t, err)

	g.Stop()
	require.ErrorIs(t, b.Wait(), ErrCancelled)
}
