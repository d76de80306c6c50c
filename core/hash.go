package core

import (
	"crypto/sha3"
	"encoding/hex"
	"math/big"
)

// Hash is a 256-bit digest, used both as block identity and as a numeric
// proof-of-work comparison target. It is always big-endian: Hash[0] is the
// most significant byte.
type Hash [32]byte

// ZeroHash is the sentinel hash of the all-zero 256-bit word, i.e.
// HashBytes(32 zero bytes). It is NOT the genesis block's hash (see
// Block.Bytes in block.go) but the graph is seeded with
// block[ZeroHash] = genesis, matching the on-disk format of existing logs.
var ZeroHash = HashBytes(make([]byte, 32))

// HashBytes computes the canonical 256-bit hash of an arbitrary byte
// string.
func HashBytes(data []byte) Hash {
	return Hash(sha3.Sum256(data))
}

// Big returns the hash's big-endian value as a big.Int.
func (h Hash) Big() *big.Int {
	return new(big.Int).SetBytes(h[:])
}

// BigToHash renders a big.Int as a 32-byte big-endian Hash, truncating any
// bits beyond the low 256.
func BigToHash(v *big.Int) Hash {
	var out Hash
	b := v.Bytes()
	if len(b) > 32 {
		b = b[len(b)-32:]
	}
	copy(out[32-len(b):], b)
	return out
}

// GTE reports whether h, read as a 256-bit unsigned integer, is greater
// than or equal to other. Used for the proof-of-work check (hash >= target).
func (h Hash) GTE(other Hash) bool {
	return h.Big().Cmp(other.Big()) >= 0
}

// Cmp compares h and other as 256-bit unsigned integers.
func (h Hash) Cmp(other Hash) int {
	return h.Big().Cmp(other.Big())
}

// IsZero reports whether h is the all-zero hash value: the literal 32 zero
// bytes, not ZeroHash (which is the hash of those bytes).
func (h Hash) IsZero() bool {
	return h == Hash{}
}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// hashFromHex parses a hex-encoded 32-byte hash, as written by Hash.String.
func hashFromHex(s string) (Hash, error) {
	var h Hash
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, err
	}
	copy(h[32-len(b):], b)
	return h, nil
}

// uint128Hex renders a Uint128 as a hex string of its 16 little-endian
// bytes, for JSON wire/log encoding.
func uint128Hex(u Uint128) string {
	b := u.Bytes()
	return hex.EncodeToString(b[:])
}

// uint128FromHex parses the encoding produced by uint128Hex.
func uint128FromHex(s string) (Uint128, error) {
	var out Uint128
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, err
	}
	var arr [16]byte
	copy(arr[:], b)
	return Uint128FromBytes(arr), nil
}

// hexEncode and hexDecode wrap encoding/hex for the block body codec.
func hexEncode(b []byte) string {
	return hex.EncodeToString(b)
}

func hexDecode(s string) ([]byte, error) {
	return hex.DecodeString(s)
}
