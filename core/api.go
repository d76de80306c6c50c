package core

// RequestKind enumerates the read-only API surface a client task may ask of
// the node task. These never mutate the graph or the runtime; they only
// serve data back out (§6 "These serve API reads only and do not influence
// the core").
type RequestKind int

const (
	GetTick RequestKind = iota
	GetBlock
	GetBlocks
	GetState
)

// Request is one API call, submitted through a bounded, single-slot queue
// and answered on Reply. Hash/Limit are populated depending on Kind.
type Request struct {
	Kind  RequestKind
	Hash  Hash
	Limit int
	Reply chan RequestAnswer
}

// RequestAnswer is the result of a Request: the field matching the
// originating Kind is populated (Tick, Block, Blocks or State), and for
// every Kind except GetTick, Found reports whether anything was found.
type RequestAnswer struct {
	Tick   uint64
	Block  *Block
	Blocks []*Block
	State  []StatementResult
	Found  bool
}

// Serve answers req against the store and runtime, matching one request at
// a time — it is meant to be called from the node task's own tick loop, not
// from arbitrary goroutines, so it never takes the store's lock for longer
// than the read accessors already do individually.
func (s *Store) Serve(req Request, runtimeTick func() uint64) {
	var ans RequestAnswer
	switch req.Kind {
	case GetTick:
		ans.Tick = runtimeTick()
	case GetBlock:
		if b := s.Block(req.Hash); b != nil {
			ans.Block = b
			ans.Found = true
		}
	case GetBlocks:
		limit := req.Limit
		if limit <= 0 {
			limit = 1
		}
		ans.Blocks = s.Ancestors(req.Hash, limit)
		ans.Found = len(ans.Blocks) > 0
	case GetState:
		ans.State = s.Results(req.Hash)
		ans.Found = ans.State != nil
	}
	req.Reply <- ans
}
