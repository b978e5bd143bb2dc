// Package bptree implements an in-memory, ordered key-value index on a
// B+ tree: a balanced multi-way search tree whose data lives only in
// leaves, with the leaves doubly linked for ordered traversal. It is
// the embeddable indexing core of gojotree, offering logarithmic
// search/insert/delete, range scans, cursors, O(n) bulk construction
// from sorted input, and a compact binary snapshot format.
//
// A tree is generic over any ordered key type and any value type. It is
// single-threaded by design: no operation may run concurrently with
// another on the same tree, including read-only searches racing a
// mutation. Callers sharing a tree must serialize access externally.
package bptree

import (
	"cmp"
	"slices"

	"go.uber.org/zap"
)

const (
	// DefaultOrder balances node fan-out against memory per node.
	DefaultOrder = 4

	// MinOrder is the smallest structurally useful order. Construction
	// silently clamps anything below it up to this value.
	MinOrder = 3
)

// BPlusTree is an ordered key-value index of fixed order. The zero
// value is not usable; construct with New, NewWithOrder-style options,
// or the FromSnapshot factory. A BPlusTree must not be copied; use Move
// to transfer ownership.
type BPlusTree[K cmp.Ordered, V any] struct {
	root    *node[K, V]
	order   int // maximum children per internal node, fixed at construction
	maxKeys int // order - 1
	minKeys int // ceil(order/2) - 1
	size    int

	hooks    Hooks
	freelist *FreeList[K, V]
	logger   *zap.Logger
}

// Option configures a tree at construction time.
type Option[K cmp.Ordered, V any] func(*BPlusTree[K, V])

// WithHooks installs a structural event receiver. Hooks fire on every
// node allocation/release, split, merge and redistribution.
func WithHooks[K cmp.Ordered, V any](h Hooks) Option[K, V] {
	return func(t *BPlusTree[K, V]) {
		if h != nil {
			t.hooks = h
		}
	}
}

// WithLogger installs a zap logger used for snapshot and bulk-load
// diagnostics. The default is a no-op logger.
func WithLogger[K cmp.Ordered, V any](logger *zap.Logger) Option[K, V] {
	return func(t *BPlusTree[K, V]) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithFreeList makes the tree recycle nodes through f. Multiple trees
// of the same key/value types may share one free list.
func WithFreeList[K cmp.Ordered, V any](f *FreeList[K, V]) Option[K, V] {
	return func(t *BPlusTree[K, V]) {
		t.freelist = f
	}
}

// New constructs an empty tree of the given order. Orders below
// MinOrder are clamped up, not rejected; this is a documented coercion,
// not an error.
func New[K cmp.Ordered, V any](order int, opts ...Option[K, V]) *BPlusTree[K, V] {
	if order < MinOrder {
		order = MinOrder
	}
	t := &BPlusTree[K, V]{
		order:   order,
		maxKeys: order - 1,
		minKeys: (order+1)/2 - 1,
		hooks:   NopHooks{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Order returns the order fixed at construction.
func (t *BPlusTree[K, V]) Order() int { return t.order }

// Len returns the number of key-value pairs in the tree.
func (t *BPlusTree[K, V]) Len() int { return t.size }

// IsEmpty reports whether the tree holds no pairs.
func (t *BPlusTree[K, V]) IsEmpty() bool { return t.root == nil }

// Height returns the number of levels, leaves included. An empty tree
// has height 0, a single-leaf tree height 1.
func (t *BPlusTree[K, V]) Height() int {
	if t.root == nil {
		return 0
	}
	h := 1
	for n := t.root; !n.leaf; n = n.children[0] {
		h++
	}
	return h
}

// Search returns the value bound to key. A miss is a normal outcome
// signaled through found, never an error. Read-only.
func (t *BPlusTree[K, V]) Search(key K) (value V, found bool) {
	leaf := t.findLeaf(key)
	if leaf == nil {
		return value, false
	}
	pos, ok := leaf.findKey(key)
	if !ok {
		return value, false
	}
	return leaf.values[pos], true
}

// Insert binds value to key, overwriting in place if the key already
// exists (upsert). An overwrite changes no node or key counts.
func (t *BPlusTree[K, V]) Insert(key K, value V) {
	if t.root == nil {
		leaf := t.newNode(true)
		leaf.insertAt(0, key, value)
		t.root = leaf
		t.size = 1
		return
	}

	leaf := t.findLeaf(key)
	pos, found := leaf.findKey(key)
	if found {
		leaf.values[pos] = value
		return
	}

	leaf.insertAt(pos, key, value)
	t.size++
	if len(leaf.keys) > t.maxKeys {
		t.splitLeaf(leaf)
	}
}

// Remove deletes key and reports whether it was present. A miss leaves
// the tree completely untouched.
func (t *BPlusTree[K, V]) Remove(key K) bool {
	leaf := t.findLeaf(key)
	if leaf == nil {
		return false
	}
	pos, found := leaf.findKey(key)
	if !found {
		return false
	}

	leaf.removeAt(pos)
	t.size--

	if leaf == t.root {
		// Root leaves never rebalance; an emptied root is the empty tree.
		if len(leaf.keys) == 0 {
			t.root = nil
			t.freeNode(leaf)
		}
		return true
	}

	// Deleting a leaf's first key retires the separator that named it.
	if pos == 0 && len(leaf.keys) > 0 {
		t.refreshSeparator(leaf)
	}
	if len(leaf.keys) < t.minKeys {
		t.rebalance(leaf)
	}
	return true
}

// Clear releases every node through the allocation seam and resets the
// tree to the empty state.
func (t *BPlusTree[K, V]) Clear() {
	t.releaseSubtree(t.root)
	t.root = nil
	t.size = 0
}

// Move transfers the tree's contents to a newly returned tree in O(1),
// leaving the receiver in the valid empty state with its order and
// collaborators intact.
func (t *BPlusTree[K, V]) Move() *BPlusTree[K, V] {
	moved := &BPlusTree[K, V]{
		root:     t.root,
		order:    t.order,
		maxKeys:  t.maxKeys,
		minKeys:  t.minKeys,
		size:     t.size,
		hooks:    t.hooks,
		freelist: t.freelist,
		logger:   t.logger,
	}
	t.root = nil
	t.size = 0
	return moved
}

// findLeaf descends to the leaf that does or would hold key. Returns
// nil only for an empty tree.
func (t *BPlusTree[K, V]) findLeaf(key K) *node[K, V] {
	n := t.root
	for n != nil && !n.leaf {
		n = n.children[n.childIndex(key)]
	}
	return n
}

// firstLeaf returns the leftmost leaf, nil for an empty tree.
func (t *BPlusTree[K, V]) firstLeaf() *node[K, V] {
	n := t.root
	for n != nil && !n.leaf {
		n = n.children[0]
	}
	return n
}

// lastLeaf returns the rightmost leaf, nil for an empty tree.
func (t *BPlusTree[K, V]) lastLeaf() *node[K, V] {
	n := t.root
	for n != nil && !n.leaf {
		n = n.children[len(n.children)-1]
	}
	return n
}

// newNode allocates a node through the free list if one is attached and
// reports the allocation to the hooks.
func (t *BPlusTree[K, V]) newNode(leaf bool) *node[K, V] {
	var n *node[K, V]
	if t.freelist != nil {
		n = t.freelist.get()
	}
	if n == nil {
		n = &node[K, V]{}
	}
	n.leaf = leaf
	t.hooks.NodeAllocated(leaf)
	return n
}

// freeNode reports the release to the hooks, scrubs the node and hands
// it to the free list when one is attached.
func (t *BPlusTree[K, V]) freeNode(n *node[K, V]) {
	t.hooks.NodeFreed(n.leaf)
	n.reset()
	if t.freelist != nil {
		t.freelist.put(n)
	}
}

// releaseSubtree frees every node reachable from n, children first.
// Recursion depth is bounded by tree height.
func (t *BPlusTree[K, V]) releaseSubtree(n *node[K, V]) {
	if n == nil {
		return
	}
	if !n.leaf {
		for _, c := range n.children {
			t.releaseSubtree(c)
		}
	}
	t.freeNode(n)
}

// splitLeaf divides an overflowing leaf, splices the new right sibling
// into the chain, and promotes its first key to the parent.
func (t *BPlusTree[K, V]) splitLeaf(leaf *node[K, V]) {
	split := (t.maxKeys + 1) / 2

	right := t.newNode(true)
	right.keys = append(right.keys, leaf.keys[split:]...)
	right.values = append(right.values, leaf.values[split:]...)
	leaf.keys = slices.Delete(leaf.keys, split, len(leaf.keys))
	leaf.values = slices.Delete(leaf.values, split, len(leaf.values))

	right.next = leaf.next
	right.prev = leaf
	if leaf.next != nil {
		leaf.next.prev = right
	}
	leaf.next = right

	t.hooks.SplitOccurred(true)
	t.insertIntoParent(leaf, right.keys[0], right)
}

// splitInternal divides an overflowing internal node. Unlike a leaf
// split, the middle key moves up rather than being copied.
func (t *BPlusTree[K, V]) splitInternal(n *node[K, V]) {
	split := (t.maxKeys + 1) / 2
	promote := n.keys[split]

	right := t.newNode(false)
	right.keys = append(right.keys, n.keys[split+1:]...)
	right.children = append(right.children, n.children[split+1:]...)
	for _, c := range right.children {
		c.parent = right
	}
	n.keys = slices.Delete(n.keys, split, len(n.keys))
	n.children = slices.Delete(n.children, split+1, len(n.children))

	t.hooks.SplitOccurred(false)
	t.insertIntoParent(n, promote, right)
}

// insertIntoParent records the separator between a freshly split pair.
// Splitting the root is the only way height grows.
func (t *BPlusTree[K, V]) insertIntoParent(left *node[K, V], key K, right *node[K, V]) {
	parent := left.parent
	if parent == nil {
		root := t.newNode(false)
		root.keys = append(root.keys, key)
		root.children = append(root.children, left, right)
		left.parent = root
		right.parent = root
		t.root = root
		return
	}

	pos, _ := parent.findKey(key)
	parent.keys = slices.Insert(parent.keys, pos, key)
	parent.children = slices.Insert(parent.children, pos+1, right)
	right.parent = parent

	if len(parent.keys) > t.maxKeys {
		t.splitInternal(parent)
	}
}

// refreshSeparator rewrites the lowest ancestor separator naming n's
// subtree minimum. Only the first ancestor reached through a non-first
// child edge holds such a separator.
func (t *BPlusTree[K, V]) refreshSeparator(n *node[K, V]) {
	min := n.subtreeMin()
	for cur := n; cur.parent != nil; cur = cur.parent {
		idx := cur.parent.indexOfChild(cur)
		if idx > 0 {
			cur.parent.keys[idx-1] = min
			return
		}
	}
}

// rebalance restores the minimum-occupancy invariant on an underflowed
// node: borrow from a richer sibling first (left preferred, a policy
// tie-break), merge otherwise. Merging may cascade upward; collapsing
// the root is the only way height shrinks.
func (t *BPlusTree[K, V]) rebalance(n *node[K, V]) {
	if n == t.root {
		if len(n.keys) == 0 {
			if n.leaf {
				t.root = nil
			} else {
				t.root = n.children[0]
				t.root.parent = nil
			}
			t.freeNode(n)
		}
		return
	}

	parent := n.parent
	idx := parent.indexOfChild(n)

	if idx > 0 {
		if left := parent.children[idx-1]; len(left.keys) > t.minKeys {
			t.redistribute(n, left, idx-1, true)
			return
		}
	}
	if idx < len(parent.keys) {
		if right := parent.children[idx+1]; len(right.keys) > t.minKeys {
			t.redistribute(n, right, idx, false)
			return
		}
	}

	if idx > 0 {
		t.merge(parent.children[idx-1], n, idx-1)
	} else {
		t.merge(n, parent.children[idx+1], idx)
	}
}

// redistribute moves one entry from sibling into the underflowed node
// and rewrites the parent separator at sepIdx. For internal nodes the
// separator rotates through the parent instead of being copied.
func (t *BPlusTree[K, V]) redistribute(n, sibling *node[K, V], sepIdx int, fromLeft bool) {
	parent := n.parent

	if n.leaf {
		wasEmpty := len(n.keys) == 0
		if fromLeft {
			last := len(sibling.keys) - 1
			n.insertAt(0, sibling.keys[last], sibling.values[last])
			sibling.removeAt(last)
			parent.keys[sepIdx] = n.keys[0]
		} else {
			n.insertAt(len(n.keys), sibling.keys[0], sibling.values[0])
			sibling.removeAt(0)
			parent.keys[sepIdx] = sibling.keys[0]
			if wasEmpty {
				// The node's minimum changed; fix whichever ancestor named it.
				t.refreshSeparator(n)
			}
		}
	} else {
		if fromLeft {
			// Rotate: separator comes down in front, sibling's last key goes up.
			n.keys = slices.Insert(n.keys, 0, parent.keys[sepIdx])
			moved := sibling.children[len(sibling.children)-1]
			n.children = slices.Insert(n.children, 0, moved)
			moved.parent = n
			parent.keys[sepIdx] = sibling.keys[len(sibling.keys)-1]
			sibling.keys = slices.Delete(sibling.keys, len(sibling.keys)-1, len(sibling.keys))
			sibling.children = slices.Delete(sibling.children, len(sibling.children)-1, len(sibling.children))
		} else {
			// Rotate the other way: separator comes down at the back.
			n.keys = append(n.keys, parent.keys[sepIdx])
			moved := sibling.children[0]
			n.children = append(n.children, moved)
			moved.parent = n
			parent.keys[sepIdx] = sibling.keys[0]
			sibling.keys = slices.Delete(sibling.keys, 0, 1)
			sibling.children = slices.Delete(sibling.children, 0, 1)
		}
	}

	t.hooks.RedistributeOccurred()
}

// merge folds right into left, removes the separator at sepIdx from the
// shared parent, and recurses if the parent underflows in turn.
func (t *BPlusTree[K, V]) merge(left, right *node[K, V], sepIdx int) {
	parent := left.parent
	leftWasEmpty := len(left.keys) == 0

	if left.leaf {
		left.keys = append(left.keys, right.keys...)
		left.values = append(left.values, right.values...)
		left.next = right.next
		if right.next != nil {
			right.next.prev = left
		}
		t.hooks.MergeOccurred(true)
		if leftWasEmpty {
			t.refreshSeparator(left)
		}
	} else {
		// The separator comes down between the two halves.
		left.keys = append(left.keys, parent.keys[sepIdx])
		left.keys = append(left.keys, right.keys...)
		for _, c := range right.children {
			c.parent = left
		}
		left.children = append(left.children, right.children...)
		t.hooks.MergeOccurred(false)
	}

	t.freeNode(right)

	parent.children = slices.Delete(parent.children, sepIdx+1, sepIdx+2)
	parent.keys = slices.Delete(parent.keys, sepIdx, sepIdx+1)

	if len(parent.keys) < t.minKeys || (parent == t.root && len(parent.keys) == 0) {
		t.rebalance(parent)
	}
}
