package net

import (
	"encoding/binary"
	"sync"

	"github.com/libp2p/go-libp2p/core/peer"
	"golang.org/x/crypto/sha3"

	"forkgraph/core/config"
)

// Address is an IPv4-only peer endpoint, matching the original
// implementation's Address and §9's explicit note that IPv6 is unsupported.
type Address struct {
	IP   [4]byte
	Port uint16
}

// Peer tracks the last time a given Address was observed, for expiry, plus
// the libp2p identity that Address was last seen arriving from, so a sampled
// Address can be turned back into something the transport can dial directly.
type Peer struct {
	Address  Address
	ID       peer.ID
	LastSeen int64 // milliseconds
}

// Registry is the node task's peer table: observe on every inbound message,
// expire entries unseen for longer than PEER_TIMEOUT, and sample a subset
// for periodic tip gossip. The mutex guards it because several goroutines
// use it: the NoticeThisBlock dispatch goroutine and direct-stream handlers
// call Observe, and the scheduler calls Sample, PeerID, Len and ExpireStale.
type Registry struct {
	mu    sync.Mutex
	peers map[Address]*Peer
}

// NewRegistry returns an empty peer registry.
func NewRegistry() *Registry {
	return &Registry{peers: make(map[Address]*Peer)}
}

// Observe refreshes addr's last-seen time and libp2p identity, adding it if
// new.
func (r *Registry) Observe(addr Address, id peer.ID, nowMillis int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.peers[addr]; ok {
		p.ID = id
		p.LastSeen = nowMillis
		return
	}
	r.peers[addr] = &Peer{Address: addr, ID: id, LastSeen: nowMillis}
}

// PeerID looks up the libp2p identity last associated with addr, so a
// sampled Address can be dialed directly.
func (r *Registry) PeerID(addr Address) (peer.ID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.peers[addr]
	if !ok {
		return "", false
	}
	return p.ID, true
}

// ExpireStale drops every peer not observed within PEER_TIMEOUT of
// nowMillis.
func (r *Registry) ExpireStale(nowMillis int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for addr, p := range r.peers {
		if nowMillis-p.LastSeen > config.PeerTimeout {
			delete(r.peers, addr)
		}
	}
}

// Len returns the number of tracked peers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.peers)
}

// Sample returns up to n peers, ordered by a keyed hash of address and the
// current gossip epoch so repeated calls within the same epoch are stable
// but the selection still rotates over time. Grounded on
// keyschedule.EpochKey's use of golang.org/x/crypto/sha3 for a keyed digest,
// here repurposed from an AES key derivation into a peer-sampling score.
func (r *Registry) Sample(n int, epoch uint64) []Address {
	r.mu.Lock()
	defer r.mu.Unlock()

	type scored struct {
		addr  Address
		score uint64
	}
	scoredPeers := make([]scored, 0, len(r.peers))
	for addr := range r.peers {
		scoredPeers = append(scoredPeers, scored{addr: addr, score: peerScore(addr, epoch)})
	}
	// Simple selection sort over a typically-small peer set; n is bounded
	// by GossipPeerSample (8).
	for i := 0; i < len(scoredPeers) && i < n; i++ {
		min := i
		for j := i + 1; j < len(scoredPeers); j++ {
			if scoredPeers[j].score < scoredPeers[min].score {
				min = j
			}
		}
		scoredPeers[i], scoredPeers[min] = scoredPeers[min], scoredPeers[i]
	}
	if n > len(scoredPeers) {
		n = len(scoredPeers)
	}
	out := make([]Address, n)
	for i := 0; i < n; i++ {
		out[i] = scoredPeers[i].addr
	}
	return out
}

// peerScore derives a keyed 64-bit score for addr under the given gossip
// epoch, so the sample rotates deterministically as the epoch advances.
func peerScore(addr Address, epoch uint64) uint64 {
	var buf [14]byte
	copy(buf[0:4], addr.IP[:])
	binary.LittleEndian.PutUint16(buf[4:6], addr.Port)
	binary.LittleEndian.PutUint64(buf[6:14], epoch)

	h := sha3.New256()
	h.Write(buf[:])
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum[:8])
}

// GossipEpoch derives the current gossip epoch from a tick counter, one
// epoch per 10 ticks (i.e. once per "gossip every 10 ticks" period from
// §4.5's periodic driver).
func GossipEpoch(tick uint64) uint64 {
	return tick / 10
}
