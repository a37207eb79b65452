// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer

import "github.com/corvidlabs/bitspv/wire"

// Handler receives a session's inbound messages and lifecycle events,
// dispatched from the session's single read goroutine in arrival order.
// Implementations must not block for long: the PeerGroup
// implementation posts everything it receives here onward as an event to
// the wallet/chain-store executor rather than touching shared state
// directly.
type Handler interface {
	OnVersion(p *Peer, msg *wire.MsgVersion)
	OnVerAck(p *Peer)
	OnInv(p *Peer, msg *wire.MsgInv)
	OnGetData(p *Peer, msg *wire.MsgGetData)
	OnNotFound(p *Peer, msg *wire.MsgNotFound)
	OnHeaders(p *Peer, msg *wire.MsgHeaders)
	OnBlock(p *Peer, msg *wire.MsgBlockWire)
	OnMerkleBlock(p *Peer, msg *wire.MsgMerkleBlock)
	OnTx(p *Peer, msg *wire.MsgTxWire)
	OnAddr(p *Peer, msg *wire.MsgAddr)
	OnFilterLoad(p *Peer, msg *wire.MsgFilterLoad)
	OnFilterAdd(p *Peer, msg *wire.MsgFilterAdd)
	OnFilterClear(p *Peer)
	OnMemPool(p *Peer)

	// OnDisconnect fires exactly once, when the session closes, on the
	// goroutine that closed it (the read loop, the ping timer, or the
	// caller of Start or Close); use Peer.Wait to wait for the session's
	// goroutines to exit. err is a *MisbehaviorError for a protocol
	// violation, ErrStalled for a ping timeout, or a plain I/O error for
	// a transient failure; nil means a clean local Close.
	OnDisconnect(p *Peer, err error)
}

// NopHandler implements Handler with no-op methods, so embedders can
// override only the messages they care about.
type NopHandler struct{}

func (NopHandler) OnVersion(*Peer, *wire.MsgVersion)       {}
func (NopHandler) OnVerAck(*Peer)                          {}
func (NopHandler) OnInv(*Peer, *wire.MsgInv)                {}
func (NopHandler) OnGetData(*Peer, *wire.MsgGetData)        {}
func (NopHandler) OnNotFound(*Peer, *wire.MsgNotFound)      {}
func (NopHandler) OnHeaders(*Peer, *wire.MsgHeaders)        {}
func (NopHandler) OnBlock(*Peer, *wire.MsgBlockWire)        {}
func (NopHandler) OnMerkleBlock(*Peer, *wire.MsgMerkleBlock) {}
func (NopHandler) OnTx(*Peer, *wire.MsgTxWire)              {}
func (NopHandler) OnAddr(*Peer, *wire.MsgAddr)              {}
func (NopHandler) OnFilterLoad(*Peer, *wire.MsgFilterLoad)  {}
func (NopHandler) OnFilterAdd(*Peer, *wire.MsgFilterAdd)    {}
func (NopHandler) OnFilterClear(*Peer)                      {}
func (NopHandler) OnMemPool(*Peer)                          {}
func (NopHandler) OnDisconnect(*Peer, error)                 {}
