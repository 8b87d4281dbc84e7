package ista

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// findPrefixSupp walks items (already dense, descending) from the root
// and returns the node's support if the exact path exists.
func findPrefixSupp(t *testing.T, pt *PrefixTree, items ...Item) (int64, bool) {
	t.Helper()
	children := pt.children
	var n *prefixNode
	for _, it := range items {
		pos, found := findItem(children, it)
		if !found {
			return 0, false
		}
		n = children[pos]
		children = n.children
	}
	if n == nil {
		return 0, false
	}
	return n.supp, true
}

// TestPrefixTreeNewNodeInheritsSourceSupport is the minimal regression
// case for the sourceSupp fix: a candidate that reduces from an existing,
// already-accumulated node must inherit that node's accumulated history,
// not just the current transaction's weight.
func TestPrefixTreeNewNodeInheritsSourceSupport(t *testing.T) {
	pt := NewPrefixTree(0)
	rf := newResidualFrequencies(3, []int64{10, 10, 10})

	// {2,1,0} x2 builds a chain where every node starts at supp 2.
	assert.NoError(t, pt.intersect(Transaction{Items: []Item{2, 1, 0}, Weight: 2}, rf, 1))
	rf.consume(Transaction{Items: []Item{2, 1, 0}, Weight: 2}, 1)

	// {2,0} overlaps the existing chain down to exactly {2,0}, which has
	// no node of its own yet: it must be created at 2 (inherited) + 1
	// (this transaction), not just 1.
	assert.NoError(t, pt.intersect(Transaction{Items: []Item{2, 0}, Weight: 1}, rf, 1))

	supp, ok := findPrefixSupp(t, pt, 2, 0)
	assert.True(t, ok)
	assert.Equal(t, int64(3), supp)
}

func TestPrefixTreeTouchedPreventsDoubleCount(t *testing.T) {
	pt := NewPrefixTree(0)
	rf := newResidualFrequencies(3, []int64{10, 10, 10})

	// Build {2,1,0} then {2,0} so node 2 (the shared ancestor of both the
	// {2,0} and the eventual {2,1,0}-overlap candidates) exists.
	assert.NoError(t, pt.intersect(Transaction{Items: []Item{2, 1, 0}, Weight: 1}, rf, 1))
	assert.NoError(t, pt.intersect(Transaction{Items: []Item{2, 0}, Weight: 1}, rf, 1))

	// A transaction containing all three items overlaps both the {2,1,0}
	// path and the {2,0} path; node 2 must only be bumped once.
	assert.NoError(t, pt.intersect(Transaction{Items: []Item{2, 1, 0}, Weight: 1}, rf, 1))

	supp, ok := findPrefixSupp(t, pt, 2)
	assert.True(t, ok)
	assert.Equal(t, int64(3), supp)
}

func TestPrefixTreePruneBySupportRemovesBelowFloor(t *testing.T) {
	pt := NewPrefixTree(0)
	rf := newResidualFrequencies(2, []int64{10, 10})
	assert.NoError(t, pt.intersect(Transaction{Items: []Item{1, 0}, Weight: 1}, rf, 1))

	removed := pt.pruneBySupport(5)
	assert.Equal(t, 2, removed)
	assert.Empty(t, pt.children)
}

func TestPrefixTreeEmitClosed(t *testing.T) {
	pt := NewPrefixTree(0)
	rf := newResidualFrequencies(2, []int64{10, 10})
	assert.NoError(t, pt.intersect(Transaction{Items: []Item{1, 0}, Weight: 3}, rf, 1))
	assert.NoError(t, pt.intersect(Transaction{Items: []Item{1}, Weight: 1}, rf, 1))

	var got []struct {
		items []Item
		supp  int64
	}
	pt.emit(emitOptions{target: Closed, sMin: 1, zMax: 0}, func(items []Item, supp int64) {
		cp := append([]Item{}, items...)
		got = append(got, struct {
			items []Item
			supp  int64
		}{cp, supp})
	})

	// {1} has supp 4 but its child {1,0} also has supp ... wait {1,0} only
	// accumulated the first transaction (supp 3); {1} alone accumulates
	// both (supp 4), so {1} is closed (4 != 3) and {1,0} is closed (no
	// children). Both must be emitted.
	assert.Len(t, got, 2)
}
