package bptree

import "fmt"

// Validate checks every structural invariant and returns a descriptive
// error for the first violation found, nil if the tree is sound. It is
// meant for tests and debugging; production paths never need it.
//
// Checked: per-node key bounds (root exempt), sorted keys within each
// node, children outnumbering keys by one in internal nodes, parent
// back-links, every leaf at the same depth, separators equal to the
// minimum key of the subtree to their right, leaf-chain continuity and
// ordering in both directions, and the pair count matching Len.
func (t *BPlusTree[K, V]) Validate() error {
	if t.root == nil {
		if t.size != 0 {
			return fmt.Errorf("empty tree reports size %d", t.size)
		}
		return nil
	}
	if t.root.parent != nil {
		return fmt.Errorf("root has a parent")
	}

	leafDepth := -1
	if err := t.validateNode(t.root, 0, &leafDepth); err != nil {
		return err
	}
	return t.validateChain()
}

func (t *BPlusTree[K, V]) validateNode(n *node[K, V], depth int, leafDepth *int) error {
	if n != t.root {
		if len(n.keys) < t.minKeys {
			return fmt.Errorf("node at depth %d has %d keys, minimum is %d", depth, len(n.keys), t.minKeys)
		}
	} else if !n.leaf && len(n.keys) < 1 {
		return fmt.Errorf("internal root has no keys")
	}
	if len(n.keys) > t.maxKeys {
		return fmt.Errorf("node at depth %d has %d keys, maximum is %d", depth, len(n.keys), t.maxKeys)
	}
	for i := 1; i < len(n.keys); i++ {
		if n.keys[i-1] >= n.keys[i] {
			return fmt.Errorf("keys out of order at depth %d index %d", depth, i)
		}
	}

	if n.leaf {
		if len(n.values) != len(n.keys) {
			return fmt.Errorf("leaf at depth %d has %d keys but %d values", depth, len(n.keys), len(n.values))
		}
		if *leafDepth == -1 {
			*leafDepth = depth
		} else if depth != *leafDepth {
			return fmt.Errorf("leaf at depth %d, expected %d", depth, *leafDepth)
		}
		return nil
	}

	if len(n.children) != len(n.keys)+1 {
		return fmt.Errorf("internal node at depth %d has %d keys but %d children", depth, len(n.keys), len(n.children))
	}
	for i, c := range n.children {
		if c.parent != n {
			return fmt.Errorf("child %d at depth %d has a stale parent link", i, depth)
		}
		if i > 0 {
			if min := c.subtreeMin(); n.keys[i-1] != min {
				return fmt.Errorf("separator %d at depth %d does not equal its subtree minimum", i-1, depth)
			}
		}
		if err := t.validateNode(c, depth+1, leafDepth); err != nil {
			return err
		}
	}
	return nil
}

func (t *BPlusTree[K, V]) validateChain() error {
	first := t.firstLeaf()
	if first.prev != nil {
		return fmt.Errorf("first leaf has a prev link")
	}

	count := 0
	var prev *node[K, V]
	for leaf := first; leaf != nil; leaf = leaf.next {
		if leaf.prev != prev {
			return fmt.Errorf("broken prev link in leaf chain")
		}
		if prev != nil && len(prev.keys) > 0 && len(leaf.keys) > 0 &&
			prev.keys[len(prev.keys)-1] >= leaf.keys[0] {
			return fmt.Errorf("leaf chain out of order")
		}
		count += len(leaf.keys)
		prev = leaf
	}
	if prev != t.lastLeaf() {
		return fmt.Errorf("leaf chain does not end at the rightmost leaf")
	}
	if count != t.size {
		return fmt.Errorf("leaf chain holds %d pairs, tree reports %d", count, t.size)
	}
	return nil
}
