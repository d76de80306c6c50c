package core

// StatementResult is one statement's outcome from a call to
// Runtime.RunStatements, stored under the owning block's hash in the
// store's results index.
type StatementResult struct {
	StatementHash Hash
	Ok            bool
	Err           string
}

// Runtime is the external state-machine collaborator the block store drives
// during ingestion and reorg (§4.3, §6). It is deliberately narrow: the
// store never inspects the runtime's internal state, only its tick and its
// result vectors. Production use is the badger-backed implementation in
// state.go; tests use an in-memory mock.
type Runtime interface {
	// Tick reports the runtime's current logical tick, i.e. the height of
	// the last block whose statements have been applied.
	Tick() uint64

	// RunStatements applies stmts, in order, as the next tick's block
	// content. It returns one result per statement and advances Tick by
	// exactly one.
	RunStatements(stmts [][]byte) []StatementResult

	// Rollback restores the runtime to its latest durable snapshot at a
	// tick less than or equal to height, and returns that snapshot's tick.
	// The returned tick may be lower than requested; callers must re-derive
	// the gap by replay (§4.3 step 6).
	Rollback(height uint64) uint64
}

// DecodeStatements extracts one statement per transaction from a set of
// already-unpacked transactions, skipping any whose data fails to decode.
// The statement wire format here is an opaque byte string: it is up to the
// Runtime implementation to interpret it, matching §6's "these serve API
// reads only and do not influence the core" boundary between the graph and
// the runtime.
func DecodeStatements(txs []*Transaction) [][]byte {
	stmts := make([][]byte, 0, len(txs))
	for _, tx := range txs {
		if len(tx.Data) == 0 {
			continue
		}
		stmts = append(stmts, tx.Data)
	}
	return stmts
}
