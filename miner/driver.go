package miner

import (
	"log"
	"time"

	"forkgraph/core"
)

// store is the narrow slice of *core.Store the driver needs, kept as an
// interface so the driver can be exercised against a test double without
// pulling in the rest of the block-graph machinery.
type store interface {
	Tip() core.Hash
	TargetOf(core.Hash) (core.Hash, bool)
	BuildBody() core.Body
	AddBlock(b *core.Block, nowMillis int64)
}

// Driver owns the node-task side of the mailbox protocol: once per logical
// second it posts a fresh Request against the current tip, and drains any
// Answer by feeding it through AddBlock. It runs on the node task's own
// goroutine, never the miner's.
type Driver struct {
	mb    *Mailbox
	store store
}

// NewDriver wires a mailbox to a store.
func NewDriver(mb *Mailbox, s store) *Driver {
	return &Driver{mb: mb, store: s}
}

// Run posts a fresh mining job once per logical second and drains answers,
// until stop is closed. Standalone use only — the node task's own §4.5
// Scheduler instead calls Tick directly at the "post a mine request every
// 100 ticks" point in its single tick loop.
func (d *Driver) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			d.mb.PostStop()
			return
		case <-ticker.C:
			d.Tick()
		}
	}
}

// Tick posts a fresh Request against the current tip and drains any
// pending Answer, in that order.
func (d *Driver) Tick() {
	d.postFreshRequest()
	d.drainAnswer()
}

func (d *Driver) postFreshRequest() {
	tip := d.store.Tip()
	target, ok := d.store.TargetOf(tip)
	if !ok {
		return
	}
	body := d.store.BuildBody()
	d.mb.PostRequest(tip, body, target)
}

func (d *Driver) drainAnswer() {
	b, ok := d.mb.TakeAnswer()
	if !ok {
		return
	}
	log.Printf("⛏️  miner answered with a candidate block, handing to add_block")
	d.store.AddBlock(b, time.Now().UnixMilli())
}
