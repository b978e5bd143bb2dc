package bptree

import (
	"cmp"
	"slices"
	"sort"
)

// node is the single in-memory node representation. A leaf carries a
// values slice parallel to keys plus the sibling chain links; an
// internal node carries len(keys)+1 children. Keys are kept strictly
// increasing. During an insert a node may transiently hold maxKeys+1
// keys until the pending split commits.
type node[K cmp.Ordered, V any] struct {
	leaf   bool
	keys   []K
	values []V // leaves only, index-aligned with keys

	children []*node[K, V] // internal nodes only
	parent   *node[K, V]   // nil for the root

	// Sibling chain, leaves only. Non-owning: lifetime is governed by
	// the parent/child graph, never by these links.
	next *node[K, V]
	prev *node[K, V]
}

// findKey binary-searches the sorted key slice. It returns either the
// index of an exact match (found=true) or the index at which key would
// be inserted to keep the slice sorted.
func (n *node[K, V]) findKey(key K) (int, bool) {
	return slices.BinarySearch(n.keys, key)
}

// childIndex returns the child to descend into for key: the slot left
// of the first key strictly greater than it. keys[i] is the minimum of
// the subtree at children[i+1], so equal keys route right.
func (n *node[K, V]) childIndex(key K) int {
	return sort.Search(len(n.keys), func(i int) bool {
		return key < n.keys[i]
	})
}

// indexOfChild locates child among n's children. The caller guarantees
// child is actually parented by n.
func (n *node[K, V]) indexOfChild(child *node[K, V]) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

// insertAt places a pair at pos in a leaf, shifting the tail right.
// The caller has already checked pos; capacity is not validated here.
func (n *node[K, V]) insertAt(pos int, key K, value V) {
	n.keys = slices.Insert(n.keys, pos, key)
	n.values = slices.Insert(n.values, pos, value)
}

// removeAt deletes the pair at pos from a leaf, shifting the tail left.
func (n *node[K, V]) removeAt(pos int) {
	n.keys = slices.Delete(n.keys, pos, pos+1)
	n.values = slices.Delete(n.values, pos, pos+1)
}

// subtreeMin descends first children down to the smallest key reachable
// under n.
func (n *node[K, V]) subtreeMin() K {
	for !n.leaf {
		n = n.children[0]
	}
	return n.keys[0]
}

// subtreeMax descends last children down to the largest key reachable
// under n.
func (n *node[K, V]) subtreeMax() K {
	for !n.leaf {
		n = n.children[len(n.children)-1]
	}
	return n.keys[len(n.keys)-1]
}

// reset scrubs the node for reuse through a FreeList. Reference-typed
// payloads are cleared so a recycled node does not pin old values.
func (n *node[K, V]) reset() {
	clear(n.values)
	clear(n.children)
	n.keys = n.keys[:0]
	n.values = n.values[:0]
	n.children = n.children[:0]
	n.parent = nil
	n.next = nil
	n.prev = nil
}
