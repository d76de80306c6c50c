// Package miner implements the mining worker: a nonce-grinding proof-of-work
// search that communicates with the node task over a single-slot mailbox
// instead of a channel, since only the latest job or answer ever matters.
package miner

import (
	"sync"

	"forkgraph/core"
)

type mailboxState int

const (
	stateIdle mailboxState = iota
	stateRequest
	stateAnswer
	stateStop
)

// Mailbox is the sole piece of state shared between the node task and the
// miner task. The producer (node task) always overwrites whatever was
// there; the consumer (miner task) only ever acts on the latest value.
// Mutual exclusion over this mailbox is load-bearing: a poisoned lock is a
// fatal condition for the process, not a recoverable one.
type Mailbox struct {
	mu sync.Mutex

	state mailboxState

	prev   core.Hash
	body   core.Body
	target core.Hash

	answer *core.Block
}

// NewMailbox returns a mailbox in the Idle state.
func NewMailbox() *Mailbox {
	return &Mailbox{state: stateIdle}
}

// PostRequest overwrites the mailbox with a fresh mining job, implicitly
// cancelling whatever job was previously posted.
func (m *Mailbox) PostRequest(prev core.Hash, body core.Body, target core.Hash) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = stateRequest
	m.prev = prev
	m.body = body
	m.target = target
}

// PostStop tells the worker to exit at its next mailbox read.
func (m *Mailbox) PostStop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = stateStop
}

// read snapshots the current job, for the worker's use.
func (m *Mailbox) read() (mailboxState, core.Hash, core.Body, core.Hash) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, m.prev, m.body, m.target
}

// postAnswer unconditionally overwrites the mailbox with a found block. A
// stale answer (found against a prev the node has since moved past) still
// gets written here — the node task decides what to do with it when it
// feeds the block through AddBlock.
func (m *Mailbox) postAnswer(b *core.Block) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = stateAnswer
	m.answer = b
}

// TakeAnswer consumes a posted Answer, returning (block, true) if one is
// waiting, or (nil, false) if the mailbox holds anything else.
func (m *Mailbox) TakeAnswer() (*core.Block, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != stateAnswer {
		return nil, false
	}
	b := m.answer
	m.state = stateIdle
	m.answer = nil
	return b, true
}
