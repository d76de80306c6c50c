package core

import (
	"bytes"
	"testing"

	"forkgraph/core/config"
)

func TestBuildAndExtractRoundTrip(t *testing.T) {
	txs := []*Transaction{
		NewTransaction([]byte("alpha")),
		NewTransaction([]byte("beta!!")),
		NewTransaction([]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}),
	}
	body := BuildBody(txs)
	if body[0] != byte(len(txs)) {
		t.Fatalf("body count byte = %d, want %d", body[0], len(txs))
	}

	got := ExtractTransactions(body)
	if len(got) != len(txs) {
		t.Fatalf("extracted %d transactions, want %d", len(got), len(txs))
	}
	for i := range txs {
		if !bytes.Equal(got[i].Data, txs[i].Data) {
			t.Errorf("transaction %d data mismatch: got %x, want %x", i, got[i].Data, txs[i].Data)
		}
		if got[i].Hash != txs[i].Hash {
			t.Errorf("transaction %d hash mismatch", i)
		}
	}
}

func TestBuildBodySkipsEmptyTransactions(t *testing.T) {
	empty := &Transaction{Data: nil, Hash: ZeroHash}
	real := NewTransaction([]byte("hello"))
	body := BuildBody([]*Transaction{empty, real})
	if body[0] != 1 {
		t.Fatalf("expected the empty transaction to be skipped, count byte = %d", body[0])
	}
	got := ExtractTransactions(body)
	if len(got) != 1 || !bytes.Equal(got[0].Data, real.Data) {
		t.Fatalf("expected only the real transaction to survive, got %v", got)
	}
}

func TestBuildBodyStopsAtOverflow(t *testing.T) {
	// Each tx below occupies 1 + 5*50 = 251 bytes; after the leading count
	// byte five of them fit (1256 bytes) and a sixth would overflow the
	// 1280-byte frame.
	big := make([]byte, 250)
	for i := range big {
		big[i] = byte(i)
	}
	var txs []*Transaction
	for i := 0; i < 10; i++ {
		txs = append(txs, NewTransaction(big))
	}
	body := BuildBody(txs)
	if int(body[0]) >= len(txs) {
		t.Fatalf("expected BuildBody to stop before packing all %d oversized transactions, got count %d", len(txs), body[0])
	}

	used := 1
	for i := 0; i < int(body[0]); i++ {
		l := body[used]
		used += 1 + 5*(int(l)+1)
	}
	if used > config.BodySize {
		t.Fatalf("packed body overflows frame: used %d bytes of %d", used, config.BodySize)
	}
}

func TestExtractTransactionsEmptyBody(t *testing.T) {
	var body Body
	if got := ExtractTransactions(body); len(got) != 0 {
		t.Fatalf("empty body should extract to zero transactions, got %d", len(got))
	}
}
