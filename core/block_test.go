package core

import "testing"

// TestGenesisIdentity reproduces the S6 boundary scenario: genesis hashes to
// hash_bytes(empty), not to ZeroHash (hash_bytes of 32 zero bytes) — yet the
// two are expected to be used together (block[ZeroHash] = genesis) by the
// store bootstrap.
func TestGenesisIdentity(t *testing.T) {
	g := GenesisBlock()
	if len(g.Bytes()) != 0 {
		t.Fatalf("genesis's canonical encoding must be the empty byte string, got %d bytes", len(g.Bytes()))
	}

	want := HashBytes([]byte{})
	if g.Hash() != want {
		t.Errorf("hash(GENESIS_BLOCK) = %s, want hash_bytes(empty) = %s", g.Hash(), want)
	}

	if g.Hash() == ZeroHash {
		t.Fatalf("hash(GENESIS_BLOCK) must NOT equal ZeroHash — they are deliberately distinct sentinels")
	}
}

func TestNonGenesisBlockHashesNonEmptyEncoding(t *testing.T) {
	b := &Block{
		Prev: ZeroHash,
		Time: Uint128FromUint64(1000),
		Rand: Uint128FromUint64(7),
	}
	if len(b.Bytes()) == 0 {
		t.Fatalf("a block with nonzero time must not hash the empty byte string")
	}
	wantLen := 32 + 16 + 16 + config_bodySizeForTest()
	if len(b.Bytes()) != wantLen {
		t.Errorf("canonical encoding length = %d, want %d", len(b.Bytes()), wantLen)
	}
}

func TestBlockEncodeDecodeRoundTrip(t *testing.T) {
	b := &Block{
		Prev: HashBytes([]byte("parent")),
		Time: Uint128FromUint64(123456),
		Rand: Uint128FromUint64(42),
	}
	b.Body[0] = 1
	b.Body[1] = 0
	copy(b.Body[2:7], []byte{1, 2, 3, 4, 5})

	data, err := b.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := DecodeBlock(data)
	if err != nil {
		t.Fatalf("DecodeBlock: %v", err)
	}
	if got.Hash() != b.Hash() {
		t.Fatalf("round-tripped block hash mismatch: got %s, want %s", got.Hash(), b.Hash())
	}
	if got.Prev != b.Prev || got.Time != b.Time || got.Rand != b.Rand {
		t.Fatalf("round-tripped block fields mismatch")
	}
}

func config_bodySizeForTest() int { return len(Body{}) }
