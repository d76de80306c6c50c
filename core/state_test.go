package core

import (
	"math/big"
	"testing"

	"github.com/dgraph-io/badger/v4"
)

func newTestState(t *testing.T) *State {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		t.Fatalf("failed to open in-memory badger: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewState(db)
}

func transferStatement(from, to byte, amount uint64) []byte {
	stmt := make([]byte, statementOpLen)
	for i := range stmt[0:20] {
		stmt[i] = from
	}
	for i := 20; i < 40; i++ {
		stmt[i] = to
	}
	amt := new(big.Int).SetUint64(amount).Bytes()
	copy(stmt[48-len(amt):48], amt)
	return stmt
}

func TestStateRunStatementsAdvancesTick(t *testing.T) {
	s := newTestState(t)
	if s.Tick() != 0 {
		t.Fatalf("fresh state should start at tick 0, got %d", s.Tick())
	}
	s.RunStatements(nil)
	if s.Tick() != 1 {
		t.Fatalf("Tick after one RunStatements call = %d, want 1", s.Tick())
	}
}

func TestStateInsufficientBalanceRejected(t *testing.T) {
	s := newTestState(t)
	results := s.RunStatements([][]byte{transferStatement(1, 2, 100)})
	if len(results) != 1 || results[0].Ok {
		t.Fatalf("transfer from a zero-balance account should fail, got %+v", results)
	}
}

func TestStateRollbackToSnapshot(t *testing.T) {
	s := newTestState(t)
	// Fund account 1 directly, then drive enough ticks to cross a snapshot
	// boundary twice.
	if err := s.setBalance([]byte{1}, big.NewInt(1000)); err != nil {
		t.Fatalf("setBalance: %v", err)
	}
	for i := 0; i < snapshotInterval*2; i++ {
		s.RunStatements(nil)
	}
	if s.Tick() != snapshotInterval*2 {
		t.Fatalf("tick = %d, want %d", s.Tick(), snapshotInterval*2)
	}

	got := s.Rollback(snapshotInterval*2 - 1)
	if got != snapshotInterval {
		t.Fatalf("Rollback(%d) landed on tick %d, want %d", snapshotInterval*2-1, got, snapshotInterval)
	}
	if s.Tick() != snapshotInterval {
		t.Fatalf("State.tick after rollback = %d, want %d", s.Tick(), snapshotInterval)
	}
}

func TestStateRollbackBelowFirstSnapshotGoesToZero(t *testing.T) {
	s := newTestState(t)
	got := s.Rollback(5)
	if got != 0 {
		t.Fatalf("Rollback below the first snapshot should land on tick 0, got %d", got)
	}
}

func TestStateRollbackBelowFirstSnapshotClearsLedger(t *testing.T) {
	s := newTestState(t)
	if err := s.setBalance([]byte{1}, big.NewInt(100)); err != nil {
		t.Fatalf("setBalance: %v", err)
	}
	results := s.RunStatements([][]byte{transferStatement(1, 2, 100)})
	if !results[0].Ok {
		t.Fatalf("expected the transfer to succeed, got %+v", results[0])
	}
	if got := s.getBalance([]byte{2}); got.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("account 2 should hold 100 before rollback, got %s", got)
	}

	s.Rollback(1) // below the first snapshot (tick 16): should land on the empty tick-0 image
	if got := s.getBalance([]byte{2}); got.Sign() != 0 {
		t.Fatalf("balances left over from ticks 1..N must not survive a rollback to tick 0, got %s", got)
	}
}
