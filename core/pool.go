package core

import (
	"container/heap"
	"sync"
)

// txPoolItem houses one pooled transaction along with its heap index, so a
// transaction can be removed by hash in O(log n) without a linear scan.
type txPoolItem struct {
	tx    *Transaction
	score uint64
	index int
}

// txPriorityQueue is a max-heap over txPoolItem.score, implementing
// heap.Interface.
type txPriorityQueue struct {
	items []*txPoolItem
}

func (pq *txPriorityQueue) Len() int { return len(pq.items) }

func (pq *txPriorityQueue) Less(i, j int) bool {
	return pq.items[i].score > pq.items[j].score
}

func (pq *txPriorityQueue) Swap(i, j int) {
	pq.items[i], pq.items[j] = pq.items[j], pq.items[i]
	pq.items[i].index = i
	pq.items[j].index = j
}

func (pq *txPriorityQueue) Push(x interface{}) {
	item := x.(*txPoolItem)
	item.index = len(pq.items)
	pq.items = append(pq.items, item)
}

func (pq *txPriorityQueue) Pop() interface{} {
	n := len(pq.items)
	item := pq.items[n-1]
	pq.items[n-1] = nil
	pq.items = pq.items[:n-1]
	item.index = -1
	return item
}

// Pool is the mempool of transactions awaiting inclusion in a mined block.
// It is a priority queue keyed by the low 64 bits of each transaction's
// hash, supporting push, remove-by-hash, and iteration in priority order.
// Guarded by an internal mutex since the block store and the network
// dispatch goroutines both touch it.
type Pool struct {
	mu    sync.Mutex
	pq    txPriorityQueue
	index map[Hash]*txPoolItem
}

// NewPool returns an empty transaction pool.
func NewPool() *Pool {
	return &Pool{index: make(map[Hash]*txPoolItem)}
}

// Push inserts tx into the pool. A transaction already present by hash is
// left untouched.
func (p *Pool) Push(tx *Transaction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.index[tx.Hash]; exists {
		return
	}
	item := &txPoolItem{tx: tx, score: tx.priorityScore()}
	heap.Push(&p.pq, item)
	p.index[tx.Hash] = item
}

// Remove drops the transaction with the given hash, if present.
func (p *Pool) Remove(hash Hash) {
	p.mu.Lock()
	defer p.mu.Unlock()
	item, ok := p.index[hash]
	if !ok {
		return
	}
	heap.Remove(&p.pq, item.index)
	delete(p.index, hash)
}

// Has reports whether a transaction with the given hash is pooled.
func (p *Pool) Has(hash Hash) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.index[hash]
	return ok
}

// Len returns the number of pooled transactions.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.index)
}

// InPriorityOrder returns the pooled transactions sorted by descending
// priority score, without mutating the pool.
func (p *Pool) InPriorityOrder() []*Transaction {
	p.mu.Lock()
	defer p.mu.Unlock()

	items := make([]*txPoolItem, len(p.pq.items))
	copy(items, p.pq.items)
	tmp := txPriorityQueue{items: items}
	heap.Init(&tmp)

	out := make([]*Transaction, 0, len(items))
	for tmp.Len() > 0 {
		item := heap.Pop(&tmp).(*txPoolItem)
		out = append(out, item.tx)
	}
	return out
}

// RemoveAll drops every transaction in txs from the pool, used to sweep a
// mined block's contents out of the local mempool.
func (p *Pool) RemoveAll(txs []*Transaction) {
	for _, tx := range txs {
		p.Remove(tx.Hash)
	}
}
