package core

import (
	"encoding/json"

	"forkgraph/core/config"
)

// Block is an immutable record: a parent hash, a timestamp, a mining nonce,
// and a fixed-size transaction body. Once included in the graph a block is
// never mutated.
type Block struct {
	Prev Hash
	Time Uint128
	Rand Uint128
	Body Body
}

// GenesisBlock is the fixed, unmined first block. Its Prev points at
// ZeroHash (hash of the all-zero 256-bit word) and its Time of zero
// triggers the empty-byte-string hashing special case below, which is
// genesis's identity.
func GenesisBlock() *Block {
	return &Block{
		Prev: ZeroHash,
		Time: Uint128{},
		Rand: Uint128{},
		Body: Body{},
	}
}

// Bytes renders the block's canonical encoding: prev(32) || time(16) ||
// rand(16) || body(1280), little-endian for the numeric fields — except
// when Time is zero, in which case the canonical encoding is the empty byte
// string. This is what gives genesis its fixed, content-independent
// identity (S6): hash(GENESIS_BLOCK) == hash_bytes(empty), which is NOT the
// same value as ZeroHash == hash_bytes(32 zero bytes). The graph is still
// bootstrapped with block[ZeroHash] = genesis (see store.go), and that
// asymmetry must be preserved for on-disk log compatibility.
func (b *Block) Bytes() []byte {
	if b.Time.IsZero() {
		return []byte{}
	}
	out := make([]byte, 0, 32+16+16+config.BodySize)
	out = append(out, b.Prev[:]...)
	timeBytes := b.Time.Bytes()
	out = append(out, timeBytes[:]...)
	randBytes := b.Rand.Bytes()
	out = append(out, randBytes[:]...)
	out = append(out, b.Body[:]...)
	return out
}

// Hash returns the block's canonical hash, per Bytes's special-cased
// encoding.
func (b *Block) Hash() Hash {
	return HashBytes(b.Bytes())
}

// wireBlock is the JSON-friendly shape used for the on-disk block log and
// for NoticeThisBlock wire payloads.
type wireBlock struct {
	Prev string `json:"prev"`
	Time string `json:"time"`
	Rand string `json:"rand"`
	Body string `json:"body"`
}

// Encode serialises the block to JSON, matching the teacher's
// Encode/DecodeBlock convention for on-disk and wire persistence.
func (b *Block) Encode() ([]byte, error) {
	w := wireBlock{
		Prev: b.Prev.String(),
		Time: uint128Hex(b.Time),
		Rand: uint128Hex(b.Rand),
		Body: hexEncode(b.Body[:]),
	}
	return json.Marshal(w)
}

// DecodeBlock deserialises a block from the JSON form written by Encode.
func DecodeBlock(data []byte) (*Block, error) {
	var w wireBlock
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	prev, err := hashFromHex(w.Prev)
	if err != nil {
		return nil, err
	}
	t, err := uint128FromHex(w.Time)
	if err != nil {
		return nil, err
	}
	r, err := uint128FromHex(w.Rand)
	if err != nil {
		return nil, err
	}
	bodyBytes, err := hexDecode(w.Body)
	if err != nil {
		return nil, err
	}
	var body Body
	copy(body[:], bodyBytes)
	return &Block{Prev: prev, Time: t, Rand: r, Body: body}, nil
}
