package miner

import (
	"math/big"
	"testing"
	"time"

	"forkgraph/core"
)

// lowTarget is a target near zero: almost every hash trial satisfies
// hash >= target, so mine finds a block on its first nonce or two.
func lowTarget() core.Hash {
	return core.BigToHash(big.NewInt(1))
}

// maxTarget is the highest possible target (2^256 - 1): essentially no
// hash can ever satisfy it, so mine is guaranteed to exhaust its attempts.
func maxTarget() core.Hash {
	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	return core.BigToHash(max)
}

func TestMineFindsBlockSatisfyingTarget(t *testing.T) {
	// A near-zero target is satisfied by virtually every hash, well within
	// MineAttempts (1024).
	easyTarget := lowTarget()
	b := mine(core.ZeroHash, core.Body{}, easyTarget)
	if b == nil {
		t.Fatalf("mine should find a block against a trivially easy target")
	}
	if !b.Hash().GTE(easyTarget) {
		t.Fatalf("mined block's hash does not satisfy its own target")
	}
	if b.Prev != core.ZeroHash {
		t.Fatalf("mined block has the wrong prev")
	}
}

func TestMineGivesUpAfterMineAttempts(t *testing.T) {
	// An effectively unreachable target (the maximum possible hash value)
	// should exhaust MineAttempts and return nil rather than loop forever.
	impossible := maxTarget()
	b := mine(core.ZeroHash, core.Body{}, impossible)
	if b != nil {
		t.Fatalf("mine should not find a block against an unreachable target")
	}
}

func TestMailboxRequestAnswerRoundTrip(t *testing.T) {
	mb := NewMailbox()
	target := lowTarget()
	mb.PostRequest(core.ZeroHash, core.Body{}, target)

	if _, ok := mb.TakeAnswer(); ok {
		t.Fatalf("no answer should be available before the worker runs")
	}

	go WorkLoop(mb)
	defer mb.PostStop()

	deadline := time.After(2 * time.Second)
	for {
		if b, ok := mb.TakeAnswer(); ok {
			if b.Prev != core.ZeroHash {
				t.Fatalf("answer has the wrong prev")
			}
			return
		}
		select {
		case <-deadline:
			t.Fatalf("worker did not produce an answer in time")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestMailboxPostRequestCancelsPriorJob(t *testing.T) {
	mb := NewMailbox()
	easy := lowTarget()
	mb.PostRequest(core.ZeroHash, core.Body{}, easy)
	// Overwrite before any worker runs; the mailbox should reflect only the
	// newest job.
	other := core.HashBytes([]byte("some other prev"))
	mb.PostRequest(other, core.Body{}, easy)

	state, prev, _, _ := mb.read()
	if state != stateRequest || prev != other {
		t.Fatalf("mailbox should hold only the latest posted request")
	}
}
