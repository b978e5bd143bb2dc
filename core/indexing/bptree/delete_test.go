package bptree

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRemoveBasics covers the miss, the hit, and draining a root leaf
// back to the empty state.
func TestRemoveBasics(t *testing.T) {
	tree := New[int, string](4)
	tree.Insert(1, "a")
	tree.Insert(2, "b")

	assert.False(t, tree.Remove(99), "missing key must report false")
	assert.Equal(t, 2, tree.Len())

	assert.True(t, tree.Remove(1))
	assert.Equal(t, 1, tree.Len())
	_, found := tree.Search(1)
	assert.False(t, found)

	assert.True(t, tree.Remove(2))
	assert.True(t, tree.IsEmpty())
	assert.Equal(t, 0, tree.Height())
	requireValid(t, tree)
}

// TestRemoveTriggersRebalance builds a multi-level tree at the smallest
// order, where every underflow path (borrow left, borrow right, merge,
// cascading merge, root collapse) gets hit, and validates after every
// single removal.
func TestRemoveTriggersRebalance(t *testing.T) {
	tree := New[int, int](3)
	const n = 200
	for i := 0; i < n; i++ {
		tree.Insert(i, i)
	}
	heightBefore := tree.Height()

	for i := 0; i < n; i++ {
		require.True(t, tree.Remove(i), "key %d", i)
		requireValid(t, tree)
	}
	assert.True(t, tree.IsEmpty())
	assert.Less(t, tree.Height(), heightBefore)
}

// TestRemoveFirstKeyRefreshesSeparator deletes leading keys so the
// separator naming each leaf must be rewritten; Validate checks the
// strict separator-equals-subtree-min property.
func TestRemoveFirstKeyRefreshesSeparator(t *testing.T) {
	tree := New[int, int](3)
	for i := 0; i < 40; i++ {
		tree.Insert(i, i)
	}

	// Walk leaf minimums and remove each; every removal retires a
	// separator somewhere up the tree.
	for tree.Len() > 0 {
		c := tree.First()
		require.True(t, c.Valid())
		k := c.Key()
		require.True(t, tree.Remove(k))
		requireValid(t, tree)
	}
}

// TestRemoveRandomized interleaves inserts and deletes under a fixed
// seed and cross-checks the tree against a plain map the whole way.
func TestRemoveRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	tree := New[int, int](4)
	model := make(map[int]int)

	for step := 0; step < 5000; step++ {
		k := rng.Intn(400)
		if rng.Intn(3) == 0 {
			delete(model, k)
			tree.Remove(k)
		} else {
			model[k] = step
			tree.Insert(k, step)
		}
	}
	requireValid(t, tree)
	require.Equal(t, len(model), tree.Len())

	for k, want := range model {
		got, found := tree.Search(k)
		require.True(t, found, "key %d", k)
		assert.Equal(t, want, got)
	}
}

// TestRemoveDescending drains the tree from the top so merges prefer
// the left-sibling path.
func TestRemoveDescending(t *testing.T) {
	tree := New[int, int](3)
	for i := 0; i < 100; i++ {
		tree.Insert(i, i)
	}
	for i := 99; i >= 0; i-- {
		require.True(t, tree.Remove(i))
		requireValid(t, tree)
	}
	assert.True(t, tree.IsEmpty())
}
