package ista

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func findPatriciaSupp(t *testing.T, pt *PatriciaTree, path ...Item) (int64, bool) {
	t.Helper()
	children := pt.children
	var n *patriciaNode
	var matched []Item
	for len(matched) < len(path) {
		found := false
		for _, c := range children {
			if len(matched)+len(c.label) <= len(path) {
				want := path[len(matched) : len(matched)+len(c.label)]
				ok := true
				for i, it := range c.label {
					if it != want[i] {
						ok = false
						break
					}
				}
				if ok {
					matched = append(matched, c.label...)
					n = c
					children = c.children
					found = true
					break
				}
			}
		}
		if !found {
			return 0, false
		}
	}
	return n.supp, true
}

func TestPatriciaTreeNewEdgeInheritsSourceSupport(t *testing.T) {
	pt := NewPatriciaTree(0)
	rf := newResidualFrequencies(3, []int64{10, 10, 10})

	assert.NoError(t, pt.intersect(Transaction{Items: []Item{2, 1, 0}, Weight: 2}, rf, 1))
	assert.NoError(t, pt.intersect(Transaction{Items: []Item{2, 0}, Weight: 1}, rf, 1))

	supp, ok := findPatriciaSupp(t, pt, 2, 0)
	assert.True(t, ok)
	assert.Equal(t, int64(3), supp)
}

func TestPatriciaTreeSplitInheritsChildSupport(t *testing.T) {
	pt := NewPatriciaTree(0)
	rf := newResidualFrequencies(3, []int64{10, 10, 10})

	// A single compressed edge [2,1,0] at supp 2.
	assert.NoError(t, pt.intersect(Transaction{Items: []Item{2, 1, 0}, Weight: 2}, rf, 1))
	// {2,1} forces a split of that edge at the common run [2,1]; the
	// split node must inherit the original edge's supp (2) plus this
	// transaction's weight (1) = 3.
	assert.NoError(t, pt.intersect(Transaction{Items: []Item{2, 1}, Weight: 1}, rf, 1))

	supp, ok := findPatriciaSupp(t, pt, 2, 1)
	assert.True(t, ok)
	assert.Equal(t, int64(3), supp)
}

func TestPatriciaTreeMatchesPrefixTreeOnSmallDB(t *testing.T) {
	db := []Transaction{
		{Items: []Item{3, 2, 1, 0}, Weight: 2},
		{Items: []Item{3, 2}, Weight: 1},
		{Items: []Item{3, 1, 0}, Weight: 1},
		{Items: []Item{2, 1}, Weight: 1},
		{Items: []Item{3}, Weight: 1},
	}

	collect := func(repo repository) map[string]int64 {
		rf := newResidualFrequencies(4, []int64{10, 10, 10, 10})
		for _, tr := range db {
			assert.NoError(t, repo.intersect(tr, rf, 1))
		}
		got := map[string]int64{}
		repo.emit(emitOptions{target: Closed, sMin: 1}, func(items []Item, supp int64) {
			key := ""
			for _, it := range items {
				key += string(rune('a' + int(it)))
			}
			got[key] = supp
		})
		return got
	}

	prefixSupports := collect(NewPrefixTree(0))
	patriciaSupports := collect(NewPatriciaTree(0))
	assert.Equal(t, prefixSupports, patriciaSupports)
}
