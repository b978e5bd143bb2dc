package bptree

import (
	"cmp"
	"sync"
)

// DefaultFreeListSize is the capacity used by NewFreeList when trees
// allocate their own list.
const DefaultFreeListSize = 32

// FreeList recycles tree nodes to take allocation pressure off the
// garbage collector under churn-heavy workloads. A single FreeList may
// be shared by several trees of the same key/value types; the list
// itself is safe for concurrent use even though the trees are not.
type FreeList[K cmp.Ordered, V any] struct {
	mu   sync.Mutex
	list []*node[K, V]
}

// NewFreeList returns a free list holding at most size recycled nodes.
func NewFreeList[K cmp.Ordered, V any](size int) *FreeList[K, V] {
	return &FreeList[K, V]{list: make([]*node[K, V], 0, size)}
}

func (f *FreeList[K, V]) get() *node[K, V] {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.list)
	if n == 0 {
		return nil
	}
	out := f.list[n-1]
	f.list[n-1] = nil
	f.list = f.list[:n-1]
	return out
}

// put stores n for reuse unless the list is full. Nodes are scrubbed by
// the tree before arriving here.
func (f *FreeList[K, V]) put(n *node[K, V]) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.list) < cap(f.list) {
		f.list = append(f.list, n)
	}
}
