package core

import "testing"

func TestServeGetTick(t *testing.T) {
	s := newTestStore()
	req := Request{Kind: GetTick, Reply: make(chan RequestAnswer, 1)}
	s.Serve(req, func() uint64 { return 42 })
	ans := <-req.Reply
	if ans.Tick != 42 {
		t.Fatalf("GetTick answer = %d, want 42", ans.Tick)
	}
}

func TestServeGetBlockFound(t *testing.T) {
	s := newTestStore()
	b1 := mineBlock(t, s, ZeroHash, 1000, Body{})
	s.AddBlock(b1, 1_000_000)

	req := Request{Kind: GetBlock, Hash: b1.Hash(), Reply: make(chan RequestAnswer, 1)}
	s.Serve(req, func() uint64 { return 0 })
	ans := <-req.Reply
	if !ans.Found || ans.Block == nil || ans.Block.Hash() != b1.Hash() {
		t.Fatalf("GetBlock should find the included block, got %+v", ans)
	}
}

func TestServeGetBlockMissing(t *testing.T) {
	s := newTestStore()
	req := Request{Kind: GetBlock, Hash: HashBytes([]byte("nope")), Reply: make(chan RequestAnswer, 1)}
	s.Serve(req, func() uint64 { return 0 })
	ans := <-req.Reply
	if ans.Found {
		t.Fatalf("GetBlock should report not-found for an unknown hash")
	}
}

func TestServeGetBlocksWalksAncestors(t *testing.T) {
	s := newTestStore()
	b1 := mineBlock(t, s, ZeroHash, 1000, Body{})
	s.AddBlock(b1, 1_000_000)
	b2 := mineBlock(t, s, b1.Hash(), 2000, Body{})
	s.AddBlock(b2, 1_000_000)

	req := Request{Kind: GetBlocks, Hash: b2.Hash(), Limit: 10, Reply: make(chan RequestAnswer, 1)}
	s.Serve(req, func() uint64 { return 0 })
	ans := <-req.Reply
	if len(ans.Blocks) != 3 { // b2, b1, genesis
		t.Fatalf("GetBlocks returned %d blocks, want 3", len(ans.Blocks))
	}
}
