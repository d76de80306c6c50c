package core

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"forkgraph/core/config"
)

// blockLog is the on-disk log of canonical blocks, one file per block named
// by its height (a reorg overwrites the files at the heights it replaces),
// matching the teacher's
// LocalBroadcaster.BroadcastBlock file-per-block convention
// (core/broadcast.go) repurposed here as a durable reorg journal rather
// than a peer-to-peer transport.
type blockLog struct {
	dir string
}

func newBlockLog(dir string) *blockLog {
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Printf("🗄️  failed to create block log dir %s: %v", dir, err)
		}
	}
	return &blockLog{dir: dir}
}

func (bl *blockLog) write(height uint64, b *Block) {
	if bl.dir == "" {
		return
	}
	data, err := b.Encode()
	if err != nil {
		log.Fatalf("🗄️  failed to encode block at height %d for the block log: %v", height, err)
	}
	path := filepath.Join(bl.dir, blockLogFileName(height))
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Fatalf("🗄️  failed to persist block at height %d to the block log: %v", height, err)
	}
}

// blockLogFileName zero-pads the height so a lexicographic directory
// listing is also a height-ascending listing, independent of however many
// digits the height eventually grows to.
func blockLogFileName(height uint64) string {
	return fmt.Sprintf("%020d.block.json", height)
}

// ReplayBlockLog reads every block file under dir in filename (height)
// order and feeds each through AddBlock, as §6 requires at startup.
func (s *Store) ReplayBlockLog(dir string, nowMillis int64) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("reading block log file %s: %w", name, err)
		}
		b, err := DecodeBlock(data)
		if err != nil {
			return fmt.Errorf("decoding block log file %s: %w", name, err)
		}
		s.AddBlock(b, nowMillis)
	}
	return nil
}

// reorgAndReplay implements §4.3: two-cursor LCA descent to find the
// replay suffix, on-disk persistence of the new canonical blocks, and
// runtime rollback/replay across the snapshot-to-LCA gap. Called with the
// store's mutex already held.
func (s *Store) reorgAndReplay(old, newTip Hash) {
	var toApply []Hash

	oldCursor, newCursor := old, newTip

	// 1 & 2: bring both cursors to equal height.
	for s.height[newCursor] > s.height[oldCursor] {
		toApply = append(toApply, newCursor)
		newCursor = s.block[newCursor].Prev
	}
	for s.height[oldCursor] > s.height[newCursor] {
		oldCursor = s.block[oldCursor].Prev
	}

	// 3: descend in lockstep to the lowest common ancestor.
	for oldCursor != newCursor {
		toApply = append(toApply, newCursor)
		oldCursor = s.block[oldCursor].Prev
		newCursor = s.block[newCursor].Prev
	}
	lca := oldCursor
	lcaHeight := s.height[lca]

	// 4: persist the new canonical suffix, lowest height first.
	for i := len(toApply) - 1; i >= 0; i-- {
		h := toApply[i]
		height := s.height[h]
		s.log.write(height, s.block[h])
		if s.index != nil {
			if err := s.index.Put(height, s.block[h]); err != nil {
				log.Printf("🗄️  failed to index block at height %d: %v", height, err)
			}
		}
	}
	if s.index != nil && config.PruneDepth > 0 {
		if err := s.index.Prune(s.height[newTip], config.PruneDepth); err != nil {
			log.Printf("🗄️  failed to prune block index: %v", err)
		}
	}

	// 5: ask the runtime to roll back to the latest snapshot <= lcaHeight.
	snapshotTick := s.runtime.Rollback(lcaHeight)

	// 6: if the runtime landed below the LCA, extend the replay set with
	// the (chain-shared) ancestors between the snapshot and the LCA.
	if snapshotTick < lcaHeight {
		cursor := lca
		for s.height[cursor] > snapshotTick {
			toApply = append(toApply, cursor)
			cursor = s.block[cursor].Prev
		}
	}

	// 7: replay toApply in ascending height order.
	for i := len(toApply) - 1; i >= 0; i-- {
		h := toApply[i]
		b := s.block[h]
		stmts := DecodeStatements(ExtractTransactions(b.Body))
		results := s.runtime.RunStatements(stmts)
		s.results[h] = results
	}

	log.Printf("🔀 reorg replayed %d block(s) from LCA height %d (tip now %s)", len(toApply), lcaHeight, newTip)
}
