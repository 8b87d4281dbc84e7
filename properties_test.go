package ista

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

// genTransactions draws a small random transaction database over a fixed
// universe of items, used to exercise properties 5 (variant equivalence),
// 6 (pruning doesn't change the final result) and 7 (order independence)
// against randomized input instead of just the worked spec.md examples.
func genTransactions(t *rapid.T, universe, maxTxns int) []Transaction {
	n := rapid.IntRange(1, maxTxns).Draw(t, "n")
	out := make([]Transaction, 0, n)
	for i := 0; i < n; i++ {
		size := rapid.IntRange(1, universe).Draw(t, "size")
		seen := map[int]bool{}
		items := make([]Item, 0, size)
		for len(items) < size {
			v := rapid.IntRange(0, universe-1).Draw(t, "item")
			if seen[v] {
				continue
			}
			seen[v] = true
			items = append(items, Item(v))
		}
		sort.Slice(items, func(i, j int) bool { return items[i] > items[j] })
		w := int64(rapid.IntRange(1, 3).Draw(t, "weight"))
		out = append(out, Transaction{Items: items, Weight: w})
	}
	return out
}

func mineRaw(t *testing.T, repo repository, db []Transaction, universe int, sMin int64) map[string]int64 {
	t.Helper()
	support := make([]int64, universe)
	for _, tr := range db {
		for _, it := range tr.Items {
			support[it] += tr.Weight
		}
	}
	rf := newResidualFrequencies(universe, support)
	for _, tr := range db {
		assert.NoError(t, repo.intersect(tr, rf, sMin))
		rf.consume(tr, sMin)
	}
	got := map[string]int64{}
	repo.emit(emitOptions{target: Closed, sMin: sMin}, func(items []Item, supp int64) {
		key := ""
		for _, it := range items {
			key += string(rune('a' + int(it)))
		}
		got[key] = supp
	})
	return got
}

// TestPropertyOrderIndependence is property 7: shuffling the transaction
// processing order must not change the final closed supports.
func TestPropertyOrderIndependence(t *testing.T) {
	if testing.Short() {
		t.Skip("property check skipped in -short mode")
	}
	rapid.Check(t, func(rt *rapid.T) {
		const universe = 5
		db := genTransactions(rt, universe, 8)

		original := mineRaw(t, NewPrefixTree(0), db, universe, 1)

		shuffled := rapid.Permutation(db).Draw(rt, "perm")
		reordered := mineRaw(t, NewPrefixTree(0), shuffled, universe, 1)

		assert.Equal(rt, original, reordered)
	})
}

// TestPropertyVariantEquivalence is property 5: PrefixTree and
// PatriciaTree must emit the same closed sets and supports for the same
// input, regardless of their different internal node layouts.
func TestPropertyVariantEquivalence(t *testing.T) {
	if testing.Short() {
		t.Skip("property check skipped in -short mode")
	}
	rapid.Check(t, func(rt *rapid.T) {
		const universe = 5
		db := genTransactions(rt, universe, 8)

		prefixSupports := mineRaw(t, NewPrefixTree(0), db, universe, 1)
		patriciaSupports := mineRaw(t, NewPatriciaTree(0), db, universe, 1)

		assert.Equal(rt, prefixSupports, patriciaSupports)
	})
}

// TestPropertyPruneByResidualPreservesResult is property 6: eager
// residual-based pruning is an optimization, not a semantic change — a
// PrefixTree swept with pruneByResidual after every third transaction must
// emit the same closed sets as one that is never swept, for s_min from 1
// to 4.
func TestPropertyPruneByResidualPreservesResult(t *testing.T) {
	if testing.Short() {
		t.Skip("property check skipped in -short mode")
	}
	rapid.Check(t, func(rt *rapid.T) {
		const universe = 5
		db := genTransactions(rt, universe, 8)
		sMin := int64(rapid.IntRange(1, 4).Draw(rt, "sMin"))

		unpruned := NewPrefixTree(0)
		pruned := NewPrefixTree(0)

		support := make([]int64, universe)
		for _, tr := range db {
			for _, it := range tr.Items {
				support[it] += tr.Weight
			}
		}
		rfA := newResidualFrequencies(universe, support)
		rfB := newResidualFrequencies(universe, support)

		for i, tr := range db {
			assert.NoError(rt, unpruned.intersect(tr, rfA, sMin))
			rfA.consume(tr, sMin)

			assert.NoError(rt, pruned.intersect(tr, rfB, sMin))
			rfB.consume(tr, sMin)
			if i%3 == 0 {
				pruned.pruneByResidual(rfB, sMin)
			}
		}

		collect := func(repo *PrefixTree) map[string]int64 {
			got := map[string]int64{}
			repo.emit(emitOptions{target: Closed, sMin: sMin}, func(items []Item, supp int64) {
				key := ""
				for _, it := range items {
					key += string(rune('a' + int(it)))
				}
				got[key] = supp
			})
			return got
		}

		assert.Equal(rt, collect(unpruned), collect(pruned))
	})
}
