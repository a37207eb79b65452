// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package peer implements a single TCP session speaking the Bitcoin wire
// protocol: the version/verack handshake, a ping/pong liveness
// timer, inbound command dispatch to a Handler, and a bounded outbound
// getdata window with coalescing.
package peer

import (
	"bufio"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/corvidlabs/bitspv/chainhash"
	"github.com/corvidlabs/bitspv/wire"
)

// DefaultPingTimeout is how long a peer has to answer a ping before the
// session is closed as stalled.
const DefaultPingTimeout = 20 * time.Second

// DefaultPingInterval is how often this session pings an idle peer.
const DefaultPingInterval = 2 * time.Minute

// DefaultHandshakeTimeout bounds how long the version/verack exchange may
// take before the session gives up.
const DefaultHandshakeTimeout = 15 * time.Second

// DefaultInFlightWindow bounds the number of outstanding getdata requests
// a session will track before Send blocks its caller.
const DefaultInFlightWindow = 128

// Config configures a Peer session.
type Config struct {
	Net             wire.BitcoinNet
	ProtocolVersion uint32
	UserAgent       string
	StartHeight     int32
	Services        wire.ServiceFlag

	PingInterval      time.Duration
	PingTimeout       time.Duration
	HandshakeTimeout  time.Duration
	InFlightWindow    int

	// StrictMode closes the session on any unrecognized command instead
	// of ignoring it.
	StrictMode bool
}

func (c *Config) withDefaults() *Config {
	cfg := *c
	if cfg.ProtocolVersion == 0 {
		cfg.ProtocolVersion = wire.ProtocolVersion
	}
	if cfg.PingInterval == 0 {
		cfg.PingInterval = DefaultPingInterval
	}
	if cfg.PingTimeout == 0 {
		cfg.PingTimeout = DefaultPingTimeout
	}
	if cfg.HandshakeTimeout == 0 {
		cfg.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if cfg.InFlightWindow == 0 {
		cfg.InFlightWindow = DefaultInFlightWindow
	}
	return &cfg
}

// Peer is one TCP session with a remote Bitcoin node.
type Peer struct {
	cfg  *Config
	conn net.Conn
	rd   *bufio.Reader
	wr   *bufio.Writer

	handler Handler

	state atomic.Int32

	Inbound bool
	Addr    string

	writeMu sync.Mutex

	inFlightMu sync.Mutex
	inFlight   map[chainhash.Hash256]struct{}
	sendSlots  chan struct{}

	pingMu      sync.Mutex
	pingNonce   uint64
	pingSent    time.Time
	pongTimer   *time.Timer

	// VersionRecv carries the version payload the remote side reported,
	// read after the handshake completes (e.g. to pick a download-peer by
	// StartHeight).
	VersionRecv *wire.MsgVersion

	closeOnce sync.Once
	closed    chan struct{}
	wg        sync.WaitGroup
}

// NewPeer wraps an already-dialed or accepted connection in a session.
// Inbound is true for a connection this process accepted rather than
// initiated, which only changes who speaks version first.
func NewPeer(conn net.Conn, cfg *Config, handler Handler, inbound bool) *Peer {
	p := &Peer{
		cfg:      cfg.withDefaults(),
		conn:     conn,
		rd:       bufio.NewReaderSize(conn, 64*1024),
		wr:       bufio.NewWriterSize(conn, 64*1024),
		handler:  handler,
		Inbound:  inbound,
		Addr:     conn.RemoteAddr().String(),
		inFlight: make(map[chainhash.Hash256]struct{}),
		closed:   make(chan struct{}),
	}
	p.sendSlots = make(chan struct{}, p.cfg.InFlightWindow)
	for i := 0; i < p.cfg.InFlightWindow; i++ {
		p.sendSlots <- struct{}{}
	}
	p.state.Store(int32(Dialed))
	return p
}

// State returns the session's current handshake/lifetime state.
func (p *Peer) State() State { return State(p.state.Load()) }

// IsReady reports whether the handshake has completed.
func (p *Peer) IsReady() bool { return p.State() == Ready }

// Start launches the session: it performs the handshake and, on success,
// begins the read loop and ping timer. The handshake runs synchronously so
// the caller learns immediately whether the peer is usable.
func (p *Peer) Start() error {
	if err := p.handshake(); err != nil {
		p.closeWithErr(err)
		return err
	}
	p.wg.Add(2)
	go p.readLoop()
	go p.pingLoop()
	return nil
}

func (p *Peer) handshake() error {
	deadline := time.Now().Add(p.cfg.HandshakeTimeout)
	p.conn.SetDeadline(deadline)
	defer p.conn.SetDeadline(time.Time{})

	nonce, err := randomNonce()
	if err != nil {
		return err
	}
	local := &wire.NetAddress{IP: tcpIP(p.conn.LocalAddr()), Port: tcpPort(p.conn.LocalAddr())}
	remote := &wire.NetAddress{IP: tcpIP(p.conn.RemoteAddr()), Port: tcpPort(p.conn.RemoteAddr())}
	ours := wire.NewMsgVersion(remote, local, nonce, p.cfg.StartHeight)
	ours.ProtocolVersion = int32(p.cfg.ProtocolVersion)
	ours.UserAgent = p.cfg.UserAgent
	ours.Services = p.cfg.Services

	sendVersion := func() error {
		if err := wire.WriteMessage(p.wr, ours, p.cfg.ProtocolVersion, p.cfg.Net); err != nil {
			return err
		}
		return p.wr.Flush()
	}
	sendVerAck := func() error {
		if err := wire.WriteMessage(p.wr, &wire.MsgVerAck{}, p.cfg.ProtocolVersion, p.cfg.Net); err != nil {
			return err
		}
		return p.wr.Flush()
	}

	if !p.Inbound {
		if err := sendVersion(); err != nil {
			return err
		}
	}
	p.state.Store(int32(HandshakeSent))

	var gotVersion, gotVerAck bool
	for !gotVersion || !gotVerAck {
		msg, _, err := wire.ReadMessage(p.rd, p.cfg.ProtocolVersion, p.cfg.Net)
		if err != nil {
			var unk *wire.UnknownCommandError
			if errors.As(err, &unk) {
				return &MisbehaviorError{Reason: fmt.Sprintf("unexpected command %q during handshake", unk.Command)}
			}
			return classifyReadErr(err)
		}
		switch m := msg.(type) {
		case *wire.MsgVersion:
			if gotVersion {
				return &MisbehaviorError{Reason: "duplicate version message"}
			}
			if uint32(m.ProtocolVersion) < wire.MinAcceptableVersion {
				return &MisbehaviorError{Reason: fmt.Sprintf("protocol version %d below minimum", m.ProtocolVersion)}
			}
			p.VersionRecv = m
			gotVersion = true
			if p.Inbound {
				if err := sendVersion(); err != nil {
					return err
				}
			}
			if err := sendVerAck(); err != nil {
				return err
			}
		case *wire.MsgVerAck:
			gotVerAck = true
		default:
			return &MisbehaviorError{Reason: fmt.Sprintf("unexpected message %q during handshake", msg.Command())}
		}
	}

	p.state.Store(int32(Ready))
	log.Debugf("peer %s: handshake complete (protocol version %d, user agent %q)",
		p.Addr, p.VersionRecv.ProtocolVersion, p.VersionRecv.UserAgent)
	return nil
}

func (p *Peer) readLoop() {
	defer p.wg.Done()
	for {
		msg, _, err := wire.ReadMessage(p.rd, p.cfg.ProtocolVersion, p.cfg.Net)
		if err != nil {
			// ReadMessage consumes the whole envelope before reporting an
			// unknown command, so the stream is still in sync and the
			// message can simply be skipped outside strict mode.
			var unk *wire.UnknownCommandError
			if errors.As(err, &unk) {
				if p.cfg.StrictMode {
					p.closeWithErr(&MisbehaviorError{Reason: fmt.Sprintf("unknown command %q in strict mode", unk.Command)})
					return
				}
				log.Debugf("peer %s: ignoring unknown command %q", p.Addr, unk.Command)
				continue
			}
			p.closeWithErr(classifyReadErr(err))
			return
		}
		if err := p.dispatch(msg); err != nil {
			p.closeWithErr(err)
			return
		}
	}
}

func (p *Peer) dispatch(msg wire.Message) error {
	switch m := msg.(type) {
	case *wire.MsgVersion:
		return &MisbehaviorError{Reason: "version message after handshake"}
	case *wire.MsgVerAck:
		p.handler.OnVerAck(p)
	case *wire.MsgPing:
		return p.sendLocked(&wire.MsgPong{Nonce: m.Nonce})
	case *wire.MsgPong:
		p.handlePong(m.Nonce)
	case *wire.MsgInv:
		p.handler.OnInv(p, m)
	case *wire.MsgGetData:
		p.handler.OnGetData(p, m)
	case *wire.MsgNotFound:
		for _, iv := range m.InvList {
			p.clearInFlight(iv.Hash)
		}
		p.handler.OnNotFound(p, m)
	case *wire.MsgHeaders:
		p.handler.OnHeaders(p, m)
	case *wire.MsgBlockWire:
		p.clearInFlight(m.MsgBlock.Header.BlockHash())
		p.handler.OnBlock(p, m)
	case *wire.MsgMerkleBlock:
		p.clearInFlight(m.Header.BlockHash())
		p.handler.OnMerkleBlock(p, m)
	case *wire.MsgTxWire:
		p.clearInFlight(m.MsgTx.TxHash())
		p.handler.OnTx(p, m)
	case *wire.MsgAddr:
		p.handler.OnAddr(p, m)
	case *wire.MsgFilterLoad:
		p.handler.OnFilterLoad(p, m)
	case *wire.MsgFilterAdd:
		p.handler.OnFilterAdd(p, m)
	case *wire.MsgFilterClear:
		p.handler.OnFilterClear(p)
	case *wire.MsgMemPool:
		p.handler.OnMemPool(p)
	default:
		if p.cfg.StrictMode {
			return &MisbehaviorError{Reason: fmt.Sprintf("unknown command %q in strict mode", msg.Command())}
		}
	}
	return nil
}

// Send transmits msg, blocking if msg is a getdata whose inventory would
// overflow the in-flight window.
func (p *Peer) Send(msg wire.Message) error {
	if getData, ok := msg.(*wire.MsgGetData); ok {
		return p.sendGetData(getData)
	}
	return p.sendLocked(msg)
}

// sendGetData coalesces any inventory already in flight out of req, then
// reserves a send slot per remaining entry before transmitting.
func (p *Peer) sendGetData(req *wire.MsgGetData) error {
	p.inFlightMu.Lock()
	var fresh []*wire.InvVect
	for _, iv := range req.InvList {
		if _, already := p.inFlight[iv.Hash]; already {
			continue
		}
		fresh = append(fresh, iv)
	}
	p.inFlightMu.Unlock()
	if len(fresh) == 0 {
		return nil
	}

	for range fresh {
		select {
		case <-p.sendSlots:
		case <-p.closed:
			return ErrClosed{}
		}
	}

	p.inFlightMu.Lock()
	for _, iv := range fresh {
		p.inFlight[iv.Hash] = struct{}{}
	}
	p.inFlightMu.Unlock()

	return p.sendLocked(&wire.MsgGetData{InvList: fresh})
}

func (p *Peer) clearInFlight(hash chainhash.Hash256) {
	p.inFlightMu.Lock()
	if _, ok := p.inFlight[hash]; ok {
		delete(p.inFlight, hash)
		p.inFlightMu.Unlock()
		select {
		case p.sendSlots <- struct{}{}:
		default:
		}
		return
	}
	p.inFlightMu.Unlock()
}

func (p *Peer) sendLocked(msg wire.Message) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	if err := wire.WriteMessage(p.wr, msg, p.cfg.ProtocolVersion, p.cfg.Net); err != nil {
		return err
	}
	return p.wr.Flush()
}

func (p *Peer) pingLoop() {
	defer p.wg.Done()
	ticker := time.NewTicker(p.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.sendPing()
		case <-p.closed:
			return
		}
	}
}

func (p *Peer) sendPing() {
	nonce, err := randomNonce()
	if err != nil {
		return
	}
	p.pingMu.Lock()
	p.pingNonce = nonce
	p.pingSent = time.Now()
	if p.pongTimer != nil {
		p.pongTimer.Stop()
	}
	p.pongTimer = time.AfterFunc(p.cfg.PingTimeout, func() {
		p.closeWithErr(ErrStalled)
	})
	p.pingMu.Unlock()

	if err := p.sendLocked(&wire.MsgPing{Nonce: nonce}); err != nil {
		p.closeWithErr(err)
	}
}

func (p *Peer) handlePong(nonce uint64) {
	p.pingMu.Lock()
	defer p.pingMu.Unlock()
	if nonce != p.pingNonce {
		return
	}
	if p.pongTimer != nil {
		p.pongTimer.Stop()
		p.pongTimer = nil
	}
}

// Close ends the session locally with no error (a clean shutdown).
func (p *Peer) Close() { p.closeWithErr(nil) }

func (p *Peer) closeWithErr(err error) {
	p.closeOnce.Do(func() {
		p.state.Store(int32(Closed))
		close(p.closed)
		p.conn.Close()
		p.pingMu.Lock()
		if p.pongTimer != nil {
			p.pongTimer.Stop()
		}
		p.pingMu.Unlock()
		if err != nil {
			var mis *MisbehaviorError
			if errors.As(err, &mis) {
				log.Warnf("peer %s: misbehavior: %v", p.Addr, err)
			} else {
				log.Debugf("peer %s: closed: %v", p.Addr, err)
			}
		}
		p.handler.OnDisconnect(p, err)
	})
}

// Wait blocks until the session's goroutines have exited.
func (p *Peer) Wait() { p.wg.Wait() }

func classifyReadErr(err error) error {
	if err == io.EOF || errors.Is(err, io.ErrUnexpectedEOF) {
		return err
	}
	var perr *wire.ProtocolError
	if errors.As(err, &perr) {
		return &MisbehaviorError{Reason: perr.Reason}
	}
	return err
}

func randomNonce() (uint64, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func tcpIP(addr net.Addr) net.IP {
	if a, ok := addr.(*net.TCPAddr); ok {
		return a.IP
	}
	return net.IPv4zero
}

func tcpPort(addr net.Addr) uint16 {
	if a, ok := addr.(*net.TCPAddr); ok {
		return uint16(a.Port)
	}
	return 0
}
