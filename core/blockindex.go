package core

import (
	"path/filepath"
	"strconv"

	"github.com/dgraph-io/badger/v4"
)

// BlockIndex is a badger-backed, height-keyed index of canonical blocks,
// written alongside the file-per-height block log (reorg.go's blockLog) and
// answering "give me block at height N" through Get. Startup replay still
// reads the file log. The index is pruned down to PruneDepth heights once
// that is configured; the file log is never pruned.
type BlockIndex struct {
	db *badger.DB
}

// OpenBlockIndex opens (or creates) the badger database under
// <dataDir>/blockindex.
func OpenBlockIndex(dataDir string) (*BlockIndex, error) {
	dbPath := filepath.Join(dataDir, "blockindex")
	db, err := badger.Open(badger.DefaultOptions(dbPath).WithLogger(nil))
	if err != nil {
		return nil, err
	}
	return &BlockIndex{db: db}, nil
}

func blockIndexKey(height uint64) []byte {
	return []byte("block:" + strconv.FormatUint(height, 10))
}

// Put durably records b as the canonical block at height.
func (idx *BlockIndex) Put(height uint64, b *Block) error {
	val, err := b.Encode()
	if err != nil {
		return err
	}
	return idx.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(blockIndexKey(height), val); err != nil {
			return err
		}
		return txn.Set([]byte("tip:height"), []byte(strconv.FormatUint(height, 10)))
	})
}

// Get returns the block recorded at height, or nil if none is indexed.
func (idx *BlockIndex) Get(height uint64) (*Block, error) {
	var block *Block
	err := idx.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(blockIndexKey(height))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			b, err := DecodeBlock(val)
			if err != nil {
				return err
			}
			block = b
			return nil
		})
	})
	return block, err
}

// Prune deletes every indexed height below tip-keepN+1, leaving the most
// recent keepN heights. keepN == 0 means "keep everything" and is a no-op,
// matching config.PruneDepth's documented zero-value meaning.
func (idx *BlockIndex) Prune(tip uint64, keepN uint64) error {
	if keepN == 0 || tip < keepN {
		return nil
	}
	cutoff := tip - keepN + 1
	return idx.db.Update(func(txn *badger.Txn) error {
		for h := uint64(0); h < cutoff; h++ {
			if err := txn.Delete(blockIndexKey(h)); err != nil && err != badger.ErrKeyNotFound {
				return err
			}
		}
		return nil
	})
}

// Close closes the underlying database.
func (idx *BlockIndex) Close() error {
	return idx.db.Close()
}
