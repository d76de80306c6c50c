// Package config holds the node's tunable constants and flag-populated
// settings. Constants are the normative values from the consensus rules;
// the vars are injected at program startup from CLI flags, the same
// pattern the daemon used for EpochBlocks/BatchSize before this rewrite.
package config

const (
	// BodySize is the fixed size, in bytes, of a block's transaction frame.
	BodySize = 1280

	// HashSize is the width, in bytes, of a block hash / target / work value.
	HashSize = 32

	// TimePerBlock is the target spacing between blocks, in milliseconds.
	TimePerBlock = 3000

	// BlocksPerPeriod is the number of blocks between difficulty retargets.
	BlocksPerPeriod = 20

	// TimePerPeriod is the target wall-clock duration of one retarget
	// period, in milliseconds.
	TimePerPeriod = 60000

	// DelayTolerance is how far into the future (in milliseconds) a block's
	// timestamp may sit before it is dropped outright.
	DelayTolerance = 3_600_000

	// InitialDifficulty seeds the genesis target.
	InitialDifficulty = 256

	// MineAttempts bounds how many nonces the miner worker tries per
	// mailbox read before re-checking for a fresh job.
	MineAttempts = 1024

	// SendBlockAncestors caps how many ancestors GiveMeThatBlock walks and
	// returns in one reply.
	SendBlockAncestors = 64

	// PeerTimeout is how long (in milliseconds) a peer may go unseen
	// before it is expired from the registry.
	PeerTimeout = 10_000

	// TicksPerSec drives the periodic network/mining/gossip scheduler.
	TicksPerSec = 100

	// MaxTxPerBody is the largest number of transactions a body frame can
	// describe (the count byte is a single byte).
	MaxTxPerBody = 255

	// MaxWireMessage bounds a single inbound datagram/gossip payload.
	MaxWireMessage = 65536

	// GossipPeerSample is the number of peers a tip announcement is
	// gossiped to. The source hard-codes 8 while a GOSSIP_FACTOR constant
	// elsewhere says 16; 8 is normative (see design notes).
	GossipPeerSample = 8
)

// PruneDepth controls how many heights the badger block index keeps
// (0 = keep all). The file block log is not pruned. Populated from a CLI
// flag at startup.
var PruneDepth uint64 = 0

// BlockLogDir is the directory the on-disk block log is written under.
// Populated from a CLI flag at startup.
var BlockLogDir = "data/blocks"
