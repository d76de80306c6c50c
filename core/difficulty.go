// Package core implements the block graph, fork-choice, and consensus
// arithmetic for the node.
package core

import (
	"math/big"

	"forkgraph/core/config"
)

// twoTo256 is 2^256, the width of the target/hash space.
var twoTo256 = new(big.Int).Lsh(big.NewInt(1), 256)

// twoTo32 is 2^32, the fixed-point scale used by the retarget formula.
var twoTo32 = new(big.Int).Lsh(big.NewInt(1), 32)

// InitialTarget is the target in force at genesis: T(INITIAL_DIFFICULTY).
var InitialTarget = TargetFromDifficulty(big.NewInt(config.InitialDifficulty))

// CheckpointSteps is how many parent-hops back from a new block's parent
// the retarget checkpoint ancestor sits.
const CheckpointSteps = config.BlocksPerPeriod - 1

// Difficulty computes D(T) = 2^256 / (2^256 - T) for a target T.
//
// Always use new(big.Int) or big.NewInt(0) for any *big.Int you intend to
// mutate. Never declare var x *big.Int and then call x.Set(...) on it —
// that panics on a nil receiver.
func Difficulty(target Hash) *big.Int {
	denom := new(big.Int).Sub(twoTo256, target.Big())
	if denom.Sign() <= 0 {
		// Any 256-bit target leaves denom >= 1, so this guard is not reached
		// in practice; a non-positive denom is treated as maximal difficulty.
		return new(big.Int).Set(twoTo256)
	}
	return new(big.Int).Div(twoTo256, denom)
}

// TargetFromDifficulty computes T(D) = 2^256 - 2^256/D for difficulty D.
func TargetFromDifficulty(d *big.Int) Hash {
	if d.Sign() <= 0 {
		return BigToHash(new(big.Int).Set(twoTo256))
	}
	quotient := new(big.Int).Div(twoTo256, d)
	t := new(big.Int).Sub(twoTo256, quotient)
	if t.Sign() < 0 {
		t = big.NewInt(0)
	}
	return BigToHash(t)
}

// Hashwork returns the chainwork contributed by a block whose hash is h:
// D(h) treating h as a target, or zero for the sentinel zero hash.
func Hashwork(h Hash) *big.Int {
	if h == ZeroHash || h.IsZero() {
		return big.NewInt(0)
	}
	return Difficulty(h)
}

// Retarget computes the next target given the target in force at the
// parent (lastTarget) and the elapsed wall-clock time, in milliseconds,
// between the checkpoint ancestor (CheckpointSteps steps before the new
// block's parent) and the new block itself.
//
//	next_target = T(1 + floor((D(last)*scale - 1) / 2^32))
//	scale        = floor(2^32 * TIME_PER_PERIOD / elapsed)
func Retarget(lastTarget Hash, elapsedMillis int64) Hash {
	if elapsedMillis <= 0 {
		elapsedMillis = 1
	}
	scale := new(big.Int).Mul(twoTo32, big.NewInt(config.TimePerPeriod))
	scale.Div(scale, big.NewInt(elapsedMillis))

	lastDifficulty := Difficulty(lastTarget)
	val := new(big.Int).Mul(lastDifficulty, scale)
	val.Sub(val, big.NewInt(1))
	val.Div(val, twoTo32)
	val.Add(val, big.NewInt(1))

	return TargetFromDifficulty(val)
}

// ShouldRetarget reports whether the block being added at height triggers
// a retarget: height > BLOCKS_PER_PERIOD and height mod BLOCKS_PER_PERIOD == 1.
func ShouldRetarget(height uint64) bool {
	return height > config.BlocksPerPeriod && height%config.BlocksPerPeriod == 1
}
