package net

import "testing"

func TestRegistryObserveAndExpire(t *testing.T) {
	r := NewRegistry()
	addr := Address{IP: [4]byte{127, 0, 0, 1}, Port: 4001}
	r.Observe(addr, "peer1", 1000)
	if r.Len() != 1 {
		t.Fatalf("registry should have one peer after Observe")
	}

	r.Observe(addr, "peer1", 2000) // refresh, not a new entry
	if r.Len() != 1 {
		t.Fatalf("re-observing the same address should not grow the registry")
	}
	if id, ok := r.PeerID(addr); !ok || id != "peer1" {
		t.Fatalf("PeerID should resolve the last-observed identity for addr")
	}

	r.ExpireStale(2000 + 10_000 + 1) // just past PEER_TIMEOUT (10_000ms)
	if r.Len() != 0 {
		t.Fatalf("stale peer should have been expired")
	}
}

func TestRegistrySampleBoundedByN(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < 20; i++ {
		r.Observe(Address{IP: [4]byte{10, 0, 0, byte(i)}, Port: uint16(4000 + i)}, "", 0)
	}
	sample := r.Sample(8, 1)
	if len(sample) != 8 {
		t.Fatalf("Sample(8, ...) returned %d addresses, want 8", len(sample))
	}
}

func TestRegistrySampleCapsAtAvailablePeers(t *testing.T) {
	r := NewRegistry()
	r.Observe(Address{IP: [4]byte{1, 2, 3, 4}, Port: 1}, "", 0)
	sample := r.Sample(8, 1)
	if len(sample) != 1 {
		t.Fatalf("Sample should cap at the number of known peers, got %d", len(sample))
	}
}

func TestPeerScoreDeterministic(t *testing.T) {
	addr := Address{IP: [4]byte{1, 2, 3, 4}, Port: 9}
	if peerScore(addr, 5) != peerScore(addr, 5) {
		t.Fatalf("peerScore should be deterministic for the same address and epoch")
	}
	if peerScore(addr, 5) == peerScore(addr, 6) {
		t.Fatalf("peerScore should (almost certainly) vary across epochs")
	}
}
