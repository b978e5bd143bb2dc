package bptree

import (
	"fmt"

	"go.uber.org/zap"
)

// BulkLoad replaces the tree's contents with the given pairs in O(n),
// skipping per-key descent entirely: leaves are packed left to right
// and internal levels built bottom-up. Input must be sorted ascending
// by key; consecutive duplicates collapse to the last occurrence.
// Descending adjacent keys fail with ErrUnsortedInput and leave the
// tree untouched.
func (t *BPlusTree[K, V]) BulkLoad(pairs []Pair[K, V]) error {
	// Validate and dedupe before touching the existing contents.
	deduped := make([]Pair[K, V], 0, len(pairs))
	for i, p := range pairs {
		if i > 0 {
			prev := deduped[len(deduped)-1].Key
			if p.Key < prev {
				return fmt.Errorf("%w: key at index %d sorts before its predecessor", ErrUnsortedInput, i)
			}
			if p.Key == prev {
				deduped[len(deduped)-1] = p
				continue
			}
		}
		deduped = append(deduped, p)
	}

	t.Clear()
	if len(deduped) == 0 {
		return nil
	}

	leaves := t.packLeaves(deduped)
	t.root = t.buildInternalLevels(leaves)
	t.size = len(deduped)

	t.logger.Debug("bulk load complete",
		zap.Int("pairs", len(deduped)),
		zap.Int("leaves", len(leaves)),
		zap.Int("height", t.Height()),
	)
	return nil
}

// packLeaves distributes the pairs over ceil(n/maxKeys) chained leaves,
// spreading entries evenly so no leaf lands under minimum occupancy.
func (t *BPlusTree[K, V]) packLeaves(pairs []Pair[K, V]) []*node[K, V] {
	total := len(pairs)
	numLeaves := (total + t.maxKeys - 1) / t.maxKeys

	leaves := make([]*node[K, V], 0, numLeaves)
	var prev *node[K, V]
	for i, off := 0, 0; i < numLeaves; i++ {
		remaining := total - off
		take := (remaining + numLeaves - i - 1) / (numLeaves - i)
		leaf := t.newNode(true)
		for _, p := range pairs[off : off+take] {
			leaf.keys = append(leaf.keys, p.Key)
			leaf.values = append(leaf.values, p.Value)
		}
		off += take

		leaf.prev = prev
		if prev != nil {
			prev.next = leaf
		}
		prev = leaf
		leaves = append(leaves, leaf)
	}
	return leaves
}

// buildInternalLevels stacks internal levels on top of the given level
// until one node remains. Groups get between minKeys+1 and maxKeys+1
// children, spread evenly per level.
func (t *BPlusTree[K, V]) buildInternalLevels(level []*node[K, V]) *node[K, V] {
	for len(level) > 1 {
		total := len(level)
		maxFan := t.maxKeys + 1
		numParents := (total + maxFan - 1) / maxFan

		parents := make([]*node[K, V], 0, numParents)
		for i, off := 0, 0; i < numParents; i++ {
			remaining := total - off
			take := (remaining + numParents - i - 1) / (numParents - i)
			parent := t.newNode(false)
			for j, child := range level[off : off+take] {
				if j > 0 {
					parent.keys = append(parent.keys, child.subtreeMin())
				}
				parent.children = append(parent.children, child)
				child.parent = parent
			}
			off += take
			parents = append(parents, parent)
		}
		level = parents
	}
	level[0].parent = nil
	return level[0]
}
