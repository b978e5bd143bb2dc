package bptree

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rangeKeys[K interface{ ~int }, V any](pairs []Pair[K, V]) []K {
	keys := make([]K, 0, len(pairs))
	for _, p := range pairs {
		keys = append(keys, p.Key)
	}
	return keys
}

// TestRangeQuery covers inclusive bounds, bounds falling between keys,
// single-key ranges, inverted ranges, and ranges spanning several
// leaves.
func TestRangeQuery(t *testing.T) {
	tree := New[int, int](3)
	for i := 10; i <= 100; i += 10 {
		tree.Insert(i, i)
	}

	assert.Equal(t, []int{30, 40, 50}, rangeKeys(tree.RangeQuery(30, 50)))
	assert.Equal(t, []int{30, 40, 50}, rangeKeys(tree.RangeQuery(25, 55)), "bounds between keys")
	assert.Equal(t, []int{40}, rangeKeys(tree.RangeQuery(40, 40)))
	assert.Nil(t, tree.RangeQuery(50, 30), "inverted range")
	assert.Nil(t, tree.RangeQuery(101, 200), "range above all keys")
	assert.Nil(t, tree.RangeQuery(1, 9), "range below all keys")
	assert.Equal(t, 10, len(tree.RangeQuery(0, 1000)), "full span")
	assert.Nil(t, New[int, int](3).RangeQuery(1, 10))
}

// TestRangeQueryCopies verifies the result is detached from the tree.
func TestRangeQueryCopies(t *testing.T) {
	tree := New[int, int](4)
	tree.Insert(1, 100)
	out := tree.RangeQuery(1, 1)
	require.Len(t, out, 1)
	out[0].Value = -1

	v, _ := tree.Search(1)
	assert.Equal(t, 100, v)
}

// TestIterators checks All and Backward order, and that breaking out of
// the loop early stops the walk cleanly.
func TestIterators(t *testing.T) {
	tree := New[int, int](3)
	for i := 1; i <= 20; i++ {
		tree.Insert(i, i*2)
	}

	var asc []int
	for k, v := range tree.All() {
		assert.Equal(t, k*2, v)
		asc = append(asc, k)
	}
	require.Len(t, asc, 20)
	for i := 1; i < len(asc); i++ {
		assert.Greater(t, asc[i], asc[i-1])
	}

	var desc []int
	for k := range tree.Backward() {
		desc = append(desc, k)
		if len(desc) == 5 {
			break
		}
	}
	assert.Equal(t, []int{20, 19, 18, 17, 16}, desc)
}

// TestDump sanity-checks the debug rendering without pinning its exact
// format.
func TestDump(t *testing.T) {
	tree := New[int, int](3)
	var buf bytes.Buffer
	require.NoError(t, tree.Dump(&buf))
	assert.Contains(t, buf.String(), "empty")

	for i := 1; i <= 10; i++ {
		tree.Insert(i, i)
	}
	buf.Reset()
	require.NoError(t, tree.Dump(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, tree.Height(), len(lines), "one line per level")
}
