package bptree

import (
	"fmt"
	"io"
)

// Dump writes a level-by-level rendering of the tree to w, one line per
// level, each node's keys bracketed. Debug aid only; the format is not
// stable.
func (t *BPlusTree[K, V]) Dump(w io.Writer) error {
	if t.root == nil {
		_, err := fmt.Fprintln(w, "(empty)")
		return err
	}

	level := []*node[K, V]{t.root}
	for len(level) > 0 {
		var next []*node[K, V]
		for i, n := range level {
			if i > 0 {
				if _, err := fmt.Fprint(w, " "); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(w, "%v", n.keys); err != nil {
				return err
			}
			if !n.leaf {
				next = append(next, n.children...)
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		level = next
	}
	return nil
}
