package bptree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ascendingPairs(n int) []Pair[int, int] {
	pairs := make([]Pair[int, int], n)
	for i := range pairs {
		pairs[i] = Pair[int, int]{Key: i, Value: i * 100}
	}
	return pairs
}

// TestBulkLoad builds trees of assorted sizes at assorted orders and
// checks each result is valid and complete.
func TestBulkLoad(t *testing.T) {
	for _, order := range []int{3, 4, 5, 8} {
		for _, n := range []int{0, 1, 2, 7, 50, 1000} {
			tree := New[int, int](order)
			require.NoError(t, tree.BulkLoad(ascendingPairs(n)), "order=%d n=%d", order, n)
			require.Equal(t, n, tree.Len(), "order=%d n=%d", order, n)
			requireValid(t, tree)

			if n > 0 {
				v, found := tree.Search(n - 1)
				require.True(t, found)
				assert.Equal(t, (n-1)*100, v)
			}
		}
	}
}

// TestBulkLoadReplacesContents verifies old contents are fully released
// before the new ones land.
func TestBulkLoadReplacesContents(t *testing.T) {
	tree := New[int, int](4)
	for i := 1000; i < 1050; i++ {
		tree.Insert(i, i)
	}

	require.NoError(t, tree.BulkLoad(ascendingPairs(10)))
	assert.Equal(t, 10, tree.Len())
	_, found := tree.Search(1000)
	assert.False(t, found)
	requireValid(t, tree)
}

// TestBulkLoadDedupes collapses runs of equal keys to the last value.
func TestBulkLoadDedupes(t *testing.T) {
	tree := New[int, string](4)
	err := tree.BulkLoad([]Pair[int, string]{
		{1, "a"}, {2, "first"}, {2, "second"}, {2, "last"}, {3, "c"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, tree.Len())

	v, found := tree.Search(2)
	require.True(t, found)
	assert.Equal(t, "last", v)
	requireValid(t, tree)
}

// TestBulkLoadRejectsUnsorted leaves the tree untouched on bad input.
func TestBulkLoadRejectsUnsorted(t *testing.T) {
	tree := New[int, int](4)
	tree.Insert(42, 42)

	err := tree.BulkLoad([]Pair[int, int]{{1, 1}, {3, 3}, {2, 2}})
	require.ErrorIs(t, err, ErrUnsortedInput)

	v, found := tree.Search(42)
	require.True(t, found, "failed load must not disturb the tree")
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, tree.Len())
}

// TestBulkLoadThenMutate makes sure a bulk-built tree rebalances
// normally under later inserts and deletes.
func TestBulkLoadThenMutate(t *testing.T) {
	tree := New[int, int](3)
	require.NoError(t, tree.BulkLoad(ascendingPairs(100)))

	for i := 0; i < 100; i += 2 {
		require.True(t, tree.Remove(i))
		requireValid(t, tree)
	}
	for i := 200; i < 250; i++ {
		tree.Insert(i, i)
		requireValid(t, tree)
	}
	assert.Equal(t, 100, tree.Len())
}
