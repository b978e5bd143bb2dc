package bptree

import (
	"cmp"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requireValid fails the test with the first invariant violation found.
func requireValid[K cmp.Ordered, V any](t *testing.T, tree *BPlusTree[K, V]) {
	t.Helper()
	require.NoError(t, tree.Validate())
}

// TestNewClampsOrder verifies that degenerate orders are coerced up to
// the minimum instead of producing an unusable tree.
func TestNewClampsOrder(t *testing.T) {
	for _, order := range []int{-5, 0, 1, 2} {
		tree := New[int, string](order)
		assert.Equal(t, MinOrder, tree.Order(), "order %d should clamp", order)
	}
	assert.Equal(t, 7, New[int, string](7).Order())
}

// TestInsertAndSearch covers the basic upsert contract: new keys land,
// existing keys are overwritten in place, and misses report not-found
// without error.
func TestInsertAndSearch(t *testing.T) {
	tree := New[int, string](4)

	assert.True(t, tree.IsEmpty())
	_, found := tree.Search(1)
	assert.False(t, found)

	tree.Insert(10, "ten")
	tree.Insert(20, "twenty")
	tree.Insert(5, "five")
	require.Equal(t, 3, tree.Len())

	v, found := tree.Search(10)
	require.True(t, found)
	assert.Equal(t, "ten", v)

	tree.Insert(10, "TEN")
	assert.Equal(t, 3, tree.Len(), "overwrite must not grow the tree")
	v, _ = tree.Search(10)
	assert.Equal(t, "TEN", v)

	_, found = tree.Search(15)
	assert.False(t, found)
	requireValid(t, tree)
}

// TestSplitGrowsHeight inserts enough ascending keys to force leaf and
// internal splits and checks the shape stays sound throughout.
func TestSplitGrowsHeight(t *testing.T) {
	tree := New[int, int](3)
	assert.Equal(t, 0, tree.Height())

	for i := 1; i <= 100; i++ {
		tree.Insert(i, i*10)
		requireValid(t, tree)
	}
	require.Equal(t, 100, tree.Len())
	assert.Greater(t, tree.Height(), 3)

	for i := 1; i <= 100; i++ {
		v, found := tree.Search(i)
		require.True(t, found, "key %d", i)
		assert.Equal(t, i*10, v)
	}
}

// TestRandomInsertOrder checks that insertion order does not affect the
// resulting contents or validity.
func TestRandomInsertOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	keys := rng.Perm(500)

	tree := New[int, int](5)
	for _, k := range keys {
		tree.Insert(k, k)
	}
	requireValid(t, tree)
	require.Equal(t, 500, tree.Len())

	prev := -1
	for k := range tree.All() {
		assert.Greater(t, k, prev)
		prev = k
	}
}

// TestCursor walks the tree both ways and seeks into gaps.
func TestCursor(t *testing.T) {
	tree := New[int, string](3)
	for _, k := range []int{10, 20, 30, 40, 50} {
		tree.Insert(k, "v")
	}

	c := tree.First()
	var fwd []int
	for ; c.Valid(); c.Next() {
		fwd = append(fwd, c.Key())
	}
	assert.Equal(t, []int{10, 20, 30, 40, 50}, fwd)

	c = tree.Last()
	var back []int
	for ; c.Valid(); c.Prev() {
		back = append(back, c.Key())
	}
	assert.Equal(t, []int{50, 40, 30, 20, 10}, back)

	c = tree.Seek(25)
	require.True(t, c.Valid())
	assert.Equal(t, 30, c.Key(), "seek lands on first key >= target")

	c = tree.Seek(50)
	require.True(t, c.Valid())
	assert.Equal(t, 50, c.Key())

	assert.False(t, tree.Seek(51).Valid())
	assert.False(t, New[int, string](3).First().Valid())
}

// TestMove transfers contents in O(1) and leaves a reusable empty tree
// behind.
func TestMove(t *testing.T) {
	tree := New[int, int](4)
	for i := 0; i < 50; i++ {
		tree.Insert(i, i)
	}

	moved := tree.Move()
	assert.True(t, tree.IsEmpty())
	assert.Equal(t, 0, tree.Len())
	require.Equal(t, 50, moved.Len())
	requireValid(t, moved)
	requireValid(t, tree)

	tree.Insert(7, 700)
	v, found := tree.Search(7)
	require.True(t, found)
	assert.Equal(t, 700, v)
	v, _ = moved.Search(7)
	assert.Equal(t, 7, v, "source reuse must not leak into the moved tree")
}

// TestClear empties the tree and keeps it usable afterwards.
func TestClear(t *testing.T) {
	tree := New[int, int](4)
	for i := 0; i < 30; i++ {
		tree.Insert(i, i)
	}
	tree.Clear()
	assert.True(t, tree.IsEmpty())
	assert.Equal(t, 0, tree.Height())
	requireValid(t, tree)

	tree.Insert(1, 1)
	assert.Equal(t, 1, tree.Len())
}

// TestMinimumOrderFirstSplit pins the exact shape of the first split at
// the smallest order: three keys overflow the root leaf, one split,
// height two.
func TestMinimumOrderFirstSplit(t *testing.T) {
	stats := &Stats{}
	tree := New(3, WithHooks[int, string](stats))
	tree.Insert(10, "a")
	tree.Insert(20, "b")
	assert.Equal(t, 1, tree.Height())

	tree.Insert(30, "c")
	assert.Equal(t, 2, tree.Height())
	assert.Equal(t, int64(1), stats.LeafSplits)
	assert.Equal(t, int64(0), stats.InternalSplits)
	requireValid(t, tree)
}

// TestShrinkAfterDeletes inserts 1..20 then removes 1..15; the
// remainder must stay findable and the tree must not be taller than it
// was at its peak.
func TestShrinkAfterDeletes(t *testing.T) {
	tree := New[int, int](4)
	for i := 1; i <= 20; i++ {
		tree.Insert(i, i)
	}
	assert.Greater(t, tree.Height(), 1)
	peak := tree.Height()

	for i := 1; i <= 15; i++ {
		require.True(t, tree.Remove(i))
	}
	requireValid(t, tree)
	assert.LessOrEqual(t, tree.Height(), peak)
	for i := 16; i <= 20; i++ {
		v, found := tree.Search(i)
		require.True(t, found, "key %d", i)
		assert.Equal(t, i, v)
	}
}

// TestStringKeys exercises a non-numeric key type end to end.
func TestStringKeys(t *testing.T) {
	tree := New[string, int](3)
	words := []string{"pear", "apple", "fig", "date", "cherry", "banana"}
	for i, w := range words {
		tree.Insert(w, i)
	}
	requireValid(t, tree)

	var got []string
	for k := range tree.All() {
		got = append(got, k)
	}
	assert.Equal(t, []string{"apple", "banana", "cherry", "date", "fig", "pear"}, got)
}
