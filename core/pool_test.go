package core

import "testing"

func TestPoolPushAndPriorityOrder(t *testing.T) {
	p := NewPool()
	txs := []*Transaction{
		NewTransaction([]byte("one")),
		NewTransaction([]byte("two")),
		NewTransaction([]byte("three")),
	}
	for _, tx := range txs {
		p.Push(tx)
	}
	if p.Len() != len(txs) {
		t.Fatalf("pool length = %d, want %d", p.Len(), len(txs))
	}

	ordered := p.InPriorityOrder()
	if len(ordered) != len(txs) {
		t.Fatalf("InPriorityOrder returned %d items, want %d", len(ordered), len(txs))
	}
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1].priorityScore() < ordered[i].priorityScore() {
			t.Errorf("pool not in descending priority order at index %d", i)
		}
	}
}

func TestPoolPushDuplicateIgnored(t *testing.T) {
	p := NewPool()
	tx := NewTransaction([]byte("dup"))
	p.Push(tx)
	p.Push(tx)
	if p.Len() != 1 {
		t.Fatalf("duplicate push should be a no-op, pool length = %d", p.Len())
	}
}

func TestPoolRemoveByHash(t *testing.T) {
	p := NewPool()
	a := NewTransaction([]byte("a"))
	b := NewTransaction([]byte("b"))
	p.Push(a)
	p.Push(b)

	p.Remove(a.Hash)
	if p.Has(a.Hash) {
		t.Fatalf("removed transaction still present")
	}
	if !p.Has(b.Hash) {
		t.Fatalf("unrelated transaction removed")
	}
	if p.Len() != 1 {
		t.Fatalf("pool length after remove = %d, want 1", p.Len())
	}
}

func TestPoolRemoveAll(t *testing.T) {
	p := NewPool()
	txs := []*Transaction{
		NewTransaction([]byte("x")),
		NewTransaction([]byte("y")),
	}
	for _, tx := range txs {
		p.Push(tx)
	}
	p.RemoveAll(txs)
	if p.Len() != 0 {
		t.Fatalf("pool should be empty after RemoveAll, length = %d", p.Len())
	}
}

func TestPoolRemoveMissingIsNoop(t *testing.T) {
	p := NewPool()
	p.Remove(ZeroHash)
	if p.Len() != 0 {
		t.Fatalf("removing an absent hash should be a no-op")
	}
}
