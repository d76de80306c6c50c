package miner

import (
	"math/rand"
	"time"

	"forkgraph/core"
	"forkgraph/core/config"
)

// WorkLoop runs the miner task: busy-poll the mailbox, and on seeing a
// Request, grind nonces against it. It never touches the block graph
// directly — its only output is writing Answer back to the mailbox.
func WorkLoop(mb *Mailbox) {
	for {
		state, prev, body, target := mb.read()
		switch state {
		case stateStop:
			return
		case stateRequest:
			if b := mine(prev, body, target); b != nil {
				mb.postAnswer(b)
			}
			// Exhausted MINE_ATTEMPTS without success: loop back around and
			// re-read the mailbox, picking up any updated prev/body/target.
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

// mine performs up to MineAttempts hash trials against a single job,
// incrementing the nonce with wrapping addition between trials. It returns
// the first block whose hash satisfies the target, or nil on exhaustion.
func mine(prev core.Hash, body core.Body, target core.Hash) *core.Block {
	now := core.Uint128FromUint64(uint64(time.Now().UnixMilli()))
	nonce := core.Uint128FromUint64(rand.Uint64())

	for i := 0; i < config.MineAttempts; i++ {
		b := &core.Block{Prev: prev, Time: now, Rand: nonce, Body: body}
		if b.Hash().GTE(target) {
			return b
		}
		nonce = nonce.AddWrapping1()
	}
	return nil
}
