package net

import "forkgraph/core"

// Gossipsub topic names, one per §4.5 wire message kind. These replace the
// teacher's ad-hoc NewHead/BlockReq/BlockResp topic set with the spec's
// exact three-message dispatcher surface.
const (
	TopicNoticeThisBlock           = "forkgraph-notice-this-block"
	TopicGiveMeThatBlock           = "forkgraph-give-me-that-block"
	TopicPleaseMineThisTransaction = "forkgraph-please-mine-this-transaction"
)

// noticeThisBlockMsg carries a freshly observed block, whether the sender
// believes it to be their current tip, and the sender's address (so
// recipients can refresh their peer registry).
type noticeThisBlockMsg struct {
	Block  []byte  `json:"block"` // core.Block.Encode() output
	IsTip  bool    `json:"is_tip"`
	Sender Address `json:"sender"`
}

// giveMeThatBlockMsg asks the recipient for the ancestor chain starting at
// Hash, up to SEND_BLOCK_ANCESTORS blocks.
type giveMeThatBlockMsg struct {
	Hash   core.Hash `json:"hash"`
	Sender Address   `json:"sender"`
}

// pleaseMineThisTransactionMsg asks the recipient to pool a transaction.
type pleaseMineThisTransactionMsg struct {
	Data []byte `json:"data"`
}
