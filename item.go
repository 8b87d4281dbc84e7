package ista

import (
	"sort"
	"strconv"
)

// Item is a dense, non-negative item code assigned during recoding.
// Items are compared as plain integers; the canonical order (descending
// residual frequency, ties by original identifier) is established once by
// PrepareData and never revisited afterwards.
type Item int32

// Transaction is a multiset-weighted set of items. Items must be held in
// strictly descending canonical order; PrepareData is responsible for
// establishing this invariant, every other function in the package assumes
// it.
type Transaction struct {
	Items  []Item
	Weight int64
}

// longestCommonRun returns the length of the shared leading run of a and b.
func longestCommonRun(a, b []Item) int {
	n := len(a)
	if l := len(b); l < n {
		n = l
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

// itemsKey renders items as a comparable map key, used to deduplicate
// item sequences produced by independent intersections that happen to
// reduce to the same result.
func itemsKey(items []Item) string {
	b := make([]byte, 0, len(items)*5)
	for _, it := range items {
		b = strconv.AppendInt(b, int64(it), 10)
		b = append(b, ',')
	}
	return string(b)
}

// SortMode selects how prepared transactions are ordered before the
// intersection loop reads them end-to-start (spec.md §4.1, §6).
type SortMode int

const (
	SortNone SortMode = iota
	SortAscending
	SortDescending
	SortAscendingBySizeSum
	SortDescendingBySizeSum
)

// itemRank maps an original item identifier to its canonical rank; lower
// rank sorts first (descending frequency, ties by identifier).
type itemRank struct {
	support int64
	id      int
	rank    int
}

// buildCanonicalOrder computes the dense recoding for items whose support
// meets sMin, ordered by descending support (ties by ascending identifier).
// It returns, for each surviving original identifier, its new dense Item
// code, and the total number of dense items m.
func buildCanonicalOrder(support map[int]int64, sMin int64) (map[int]Item, int) {
	kept := make([]itemRank, 0, len(support))
	for id, s := range support {
		if s >= sMin {
			kept = append(kept, itemRank{support: s, id: id})
		}
	}
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].support != kept[j].support {
			return kept[i].support > kept[j].support
		}
		return kept[i].id < kept[j].id
	})
	// The most frequent surviving item gets the largest dense code, so that
	// sorting a transaction's items in plain descending numeric order also
	// sorts them by descending frequency: frequent items end up shared near
	// the repository root, rare ones form the distinguishing tail of each
	// path (spec.md §4.1's canonical order rationale).
	recode := make(map[int]Item, len(kept))
	for i, k := range kept {
		recode[k.id] = Item(len(kept) - 1 - i)
	}
	return recode, len(kept)
}

// transactionSortKey compares two transactions by the lexicographic
// canonical-rank vector (spec.md §4.1's reference iteration order).
func transactionSortKey(a, b Transaction) int {
	n := len(a.Items)
	if l := len(b.Items); l < n {
		n = l
	}
	for i := 0; i < n; i++ {
		if a.Items[i] != b.Items[i] {
			if a.Items[i] < b.Items[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a.Items) < len(b.Items):
		return -1
	case len(a.Items) > len(b.Items):
		return 1
	default:
		return 0
	}
}

func sizeSum(t Transaction) int {
	return len(t.Items)
}
