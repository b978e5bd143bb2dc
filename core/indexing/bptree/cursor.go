package bptree

import (
	"cmp"
	"iter"
)

// Cursor is a stateful position over the leaf chain. A cursor is
// invalidated by any mutation of its tree; advancing one afterwards is
// undefined behavior, matching the tree's single-threaded contract.
type Cursor[K cmp.Ordered, V any] struct {
	leaf *node[K, V]
	idx  int
}

// First returns a cursor on the smallest key, invalid for an empty
// tree.
func (t *BPlusTree[K, V]) First() *Cursor[K, V] {
	return &Cursor[K, V]{leaf: t.firstLeaf()}
}

// Last returns a cursor on the largest key, invalid for an empty tree.
func (t *BPlusTree[K, V]) Last() *Cursor[K, V] {
	leaf := t.lastLeaf()
	c := &Cursor[K, V]{leaf: leaf}
	if leaf != nil {
		c.idx = len(leaf.keys) - 1
	}
	return c
}

// Seek returns a cursor on the first key >= target. If every key is
// smaller the cursor is invalid.
func (t *BPlusTree[K, V]) Seek(target K) *Cursor[K, V] {
	leaf := t.findLeaf(target)
	if leaf == nil {
		return &Cursor[K, V]{}
	}
	pos, _ := leaf.findKey(target)
	c := &Cursor[K, V]{leaf: leaf, idx: pos}
	if pos == len(leaf.keys) {
		// target is above this leaf's range; the successor starts the next leaf.
		c.leaf = leaf.next
		c.idx = 0
	}
	return c
}

// Valid reports whether the cursor addresses a live pair.
func (c *Cursor[K, V]) Valid() bool {
	return c.leaf != nil && c.idx >= 0 && c.idx < len(c.leaf.keys)
}

// Next advances to the successor key, walking the leaf chain when the
// current leaf is exhausted. Advancing an invalid cursor is a no-op.
func (c *Cursor[K, V]) Next() {
	if !c.Valid() {
		return
	}
	c.idx++
	if c.idx == len(c.leaf.keys) {
		c.leaf = c.leaf.next
		c.idx = 0
	}
}

// Prev steps to the predecessor key through the chain's back links.
func (c *Cursor[K, V]) Prev() {
	if !c.Valid() {
		return
	}
	c.idx--
	if c.idx < 0 {
		c.leaf = c.leaf.prev
		if c.leaf != nil {
			c.idx = len(c.leaf.keys) - 1
		}
	}
}

// Key returns the key under the cursor. The cursor must be valid.
func (c *Cursor[K, V]) Key() K { return c.leaf.keys[c.idx] }

// Value returns the value under the cursor. The cursor must be valid.
func (c *Cursor[K, V]) Value() V { return c.leaf.values[c.idx] }

// Pair is one key-value binding, used by range queries and bulk loads.
type Pair[K cmp.Ordered, V any] struct {
	Key   K
	Value V
}

// RangeQuery returns every pair with start <= key <= end in ascending
// order. An inverted range returns nil. The result is a copy; mutating
// it cannot corrupt the tree.
func (t *BPlusTree[K, V]) RangeQuery(start, end K) []Pair[K, V] {
	if start > end || t.root == nil {
		return nil
	}
	var out []Pair[K, V]
	leaf := t.findLeaf(start)
	pos, _ := leaf.findKey(start)
	for leaf != nil {
		for ; pos < len(leaf.keys); pos++ {
			if leaf.keys[pos] > end {
				return out
			}
			out = append(out, Pair[K, V]{leaf.keys[pos], leaf.values[pos]})
		}
		leaf = leaf.next
		pos = 0
	}
	return out
}

// All iterates every pair in ascending key order. The tree must not be
// mutated during iteration.
func (t *BPlusTree[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for leaf := t.firstLeaf(); leaf != nil; leaf = leaf.next {
			for i, k := range leaf.keys {
				if !yield(k, leaf.values[i]) {
					return
				}
			}
		}
	}
}

// Backward iterates every pair in descending key order.
func (t *BPlusTree[K, V]) Backward() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for leaf := t.lastLeaf(); leaf != nil; leaf = leaf.prev {
			for i := len(leaf.keys) - 1; i >= 0; i-- {
				if !yield(leaf.keys[i], leaf.values[i]) {
					return
				}
			}
		}
	}
}
