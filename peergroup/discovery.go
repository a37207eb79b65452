// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peergroup

import (
	"fmt"
	"math/rand"
	"net"
	"sync"
	"time"

	"github.com/corvidlabs/bitspv/chaincfg"
)

// Discovery supplies candidate peer addresses to a PeerGroup's connection
// pool.
// Implementations need not deduplicate: the group tracks which addresses
// it is already connected or connecting to.
type Discovery interface {
	// GetAddresses returns up to n candidate "host:port" addresses.
	GetAddresses(n int) []string

	// AddAddress records an address learned from an addr message or a
	// successful connection, for future GetAddresses calls.
	AddAddress(addr string)
}

// StaticDiscovery is a fixed address list, useful for tests and for the
// --peers CLI flag where the operator names specific peers directly.
type StaticDiscovery struct {
	mu    sync.Mutex
	addrs []string
}

// NewStaticDiscovery returns a Discovery that only ever offers addrs (plus
// whatever is later learned via AddAddress).
func NewStaticDiscovery(addrs []string) *StaticDiscovery {
	sd := &StaticDiscovery{addrs: append([]string(nil), addrs...)}
	return sd
}

func (s *StaticDiscovery) GetAddresses(n int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= 0 || n >= len(s.addrs) {
		return append([]string(nil), s.addrs...)
	}
	shuffled := append([]string(nil), s.addrs...)
	rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	return shuffled[:n]
}

func (s *StaticDiscovery) AddAddress(addr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.addrs {
		if a == addr {
			return
		}
	}
	s.addrs = append(s.addrs, addr)
}

// DNSDiscovery offers the addresses it has already learned (from addr
// messages, successful connections and earlier seed lookups) and resolves
// the network's configured DNS seeds (chaincfg.Params) only while it has
// none.
type DNSDiscovery struct {
	params *chaincfg.Params
	static *StaticDiscovery
	lookup func(host string) ([]net.IP, error)
}

// NewDNSDiscovery returns a Discovery backed by params' DNS seeds.
func NewDNSDiscovery(params *chaincfg.Params) *DNSDiscovery {
	return &DNSDiscovery{
		params: params,
		static: NewStaticDiscovery(nil),
		lookup: net.LookupIP,
	}
}

func (d *DNSDiscovery) GetAddresses(n int) []string {
	if addrs := d.static.GetAddresses(n); len(addrs) > 0 {
		return addrs
	}
	var out []string
	for _, seed := range d.params.DNSSeeds {
		ips, err := d.lookup(seed.Host)
		if err != nil {
			log.Debugf("peergroup: dns seed %s: %v", seed.Host, err)
			continue
		}
		for _, ip := range ips {
			addr := fmt.Sprintf("%s:%s", ip.String(), d.params.DefaultPort)
			out = append(out, addr)
			d.static.AddAddress(addr)
			if len(out) >= n && n > 0 {
				return out
			}
		}
	}
	return out
}

func (d *DNSDiscovery) AddAddress(addr string) { d.static.AddAddress(addr) }

// retryDelay backs off reconnection attempts to a single address
// exponentially, capped at a minute.
func retryDelay(attempt int) time.Duration {
	if attempt >= 6 {
		return time.Minute
	}
	d := time.Second * time.Duration(1<<uint(attempt))
	if d > time.Minute {
		d = time.Minute
	}
	return d
}
