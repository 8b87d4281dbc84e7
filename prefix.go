package ista

import "sort"

// prefixNode is one item per node, spec.md §4.2/§4.3's "RepositoryNode
// (prefix tree)". children are kept sorted descending by item (canonical
// order), mirroring the teacher's edge[K,T] ordering in node.go but with a
// mutable, support-accumulating payload instead of an immutable leaf value.
//
// Skip pointers (spec.md §4.2.1) are intentionally not materialised as a
// persistent field: since children are already a sorted slice, a
// sort.Search binary lookup gives the same asymptotic behaviour a skip
// chain would, without the bookkeeping of keeping it transaction-local.
type prefixNode struct {
	item     Item
	supp     int64
	children []*prefixNode
	parent   *prefixNode
}

// PrefixTree is the one-node-per-item intersection repository of spec.md
// §4.2.
type PrefixTree struct {
	arena    arena[prefixNode]
	children []*prefixNode
}

// NewPrefixTree constructs an empty prefix-tree repository. maxNodes <= 0
// means unbounded (the common case); a positive value makes OutOfMemory
// deterministically reachable, which spec.md §4.2.1's "Failure mode"
// clause requires be testable.
func NewPrefixTree(maxNodes int) *PrefixTree {
	t := &PrefixTree{}
	t.arena.maxNodes = maxNodes
	return t
}

func (pt *PrefixTree) nodeCount() int {
	return pt.arena.count()
}

// pathAppend appends item to a fresh copy of prefix so callers can recurse
// without aliasing a shared backing array across siblings.
func pathAppend(prefix []Item, item Item) []Item {
	p := make([]Item, len(prefix)+1)
	copy(p, prefix)
	p[len(prefix)] = item
	return p
}

// intersectCandidate is one deduplicated P∩t result together with the
// richest witness support among every existing path that produced it.
type intersectCandidate struct {
	items      []Item
	sourceSupp int64
}

// intersect implements spec.md §4.2.1 by decomposing the contract into two
// simpler, independently-correct phases instead of a single fused
// depth-first merge: (1) snapshot every existing path P (and its current
// support), computed once before any mutation so freshly-inserted nodes
// are never reprocessed; (2) compute P∩t for every snapshotted P, add t
// itself to that candidate set, dedupe by keeping the highest-support
// witness per distinct result, then insert every surviving candidate
// through the same prefix-sharing insert the teacher's iradix.go uses for
// Txn.insert, generalized to accumulate support on shared prefixes
// instead of overwriting a leaf value.
//
// Two hazards make this trickier than "insert every overlap with weight
// w": first, two different candidates from the same transaction can
// share a common ancestor node without either being a prefix of the
// other (e.g. {a,c} and {a,b,c} both overlapping a transaction that
// contains all three — neither is a literal prefix of the other, yet
// both walks pass through node a); insertAccumulate must add w to a
// given node at most once per transaction regardless of how many
// candidates' walks reach it, which touched (shared across every
// insertAccumulate call this intersect makes) guards against. Second,
// when P∩t is a proper subset of an existing P and needs a brand new
// node, that node is not merely "w" (spec.md §4.2.1's literal phrasing):
// every transaction already folded into P.supp is also a superset of
// P∩t, so the new node must start at sourceSupp + w or it permanently
// undercounts every transaction that contributed to P before t arrived.
// Only a candidate with no existing witness at all (t.Items reaching a
// portion of the tree no existing path ever touched) seeds at plain w.
func (pt *PrefixTree) intersect(t Transaction, rf *residualFrequencies, sMin int64) error {
	var snapshot []struct {
		path []Item
		supp int64
	}
	var walk func(prefix []Item, children []*prefixNode)
	walk = func(prefix []Item, children []*prefixNode) {
		for _, n := range children {
			p := pathAppend(prefix, n.item)
			snapshot = append(snapshot, struct {
				path []Item
				supp int64
			}{p, n.supp})
			walk(p, n.children)
		}
	}
	walk(nil, pt.children)

	byKey := make(map[string]*intersectCandidate, len(snapshot)+1)
	var order []string
	add := func(items []Item, sourceSupp int64) {
		k := itemsKey(items)
		if c, ok := byKey[k]; ok {
			if sourceSupp > c.sourceSupp {
				c.sourceSupp = sourceSupp
			}
			return
		}
		byKey[k] = &intersectCandidate{items: items, sourceSupp: sourceSupp}
		order = append(order, k)
	}
	for _, entry := range snapshot {
		overlap := intersectItemsDesc(entry.path, t.Items)
		if len(overlap) > 0 {
			add(overlap, entry.supp)
		}
	}
	add(t.Items, 0)

	touched := make(map[*prefixNode]bool, len(order))
	for _, k := range order {
		c := byKey[k]
		if err := pt.insertAccumulate(c.items, t.Weight, c.sourceSupp, rf, sMin, touched); err != nil {
			return err
		}
	}
	return nil
}

// intersectItemsDesc computes the set intersection of two strictly
// descending item slices via a linear merge.
func intersectItemsDesc(a, b []Item) []Item {
	var out []Item
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] > b[j]:
			i++
		default:
			j++
		}
	}
	return out
}

// insertAccumulate walks down the tree matching items against the current
// children list, incrementing supp by w along any shared prefix and
// creating new nodes for the remaining suffix (spec.md §4.2.1
// "Insertion"). It is the generalisation of the teacher's Txn.insert: the
// same find-or-create-and-descend shape, support accumulation in place of
// leaf overwrite.
//
// touched records every node already bumped by this transaction's other
// candidates; a node in touched is still walked through (its descendants
// may not be touched yet) but is not incremented again.
//
// sourceSupp is the best existing witness support for this whole
// candidate (0 if it has none), computed once by intersect and carried
// through unchanged: it only matters at the point a brand-new chain is
// built, never while matching against already-existing nodes (those
// accumulate their own real supp, not a witness estimate of it).
func (pt *PrefixTree) insertAccumulate(items []Item, w, sourceSupp int64, rf *residualFrequencies, sMin int64, touched map[*prefixNode]bool) error {
	if len(items) == 0 {
		return nil
	}
	childrenPtr := &pt.children
	var parent *prefixNode
	remaining := items
	for {
		children := *childrenPtr
		pos, found := findItem(children, remaining[0])
		if found {
			n := children[pos]
			if !touched[n] {
				n.supp += w
				touched[n] = true
			}
			if len(remaining) == 1 {
				return nil
			}
			remaining = remaining[1:]
			childrenPtr = &n.children
			parent = n
			continue
		}
		chain, err := pt.buildChain(parent, remaining, w, sourceSupp, rf, sMin, touched)
		if err != nil {
			return err
		}
		if chain == nil {
			// Every extension from here is provably incapable of reaching
			// sMin even with every future transaction (spec.md §4.2.2's cap,
			// applied eagerly at insert time). Nothing to insert.
			return nil
		}
		newChildren := make([]*prefixNode, 0, len(children)+1)
		newChildren = append(newChildren, children[:pos]...)
		newChildren = append(newChildren, chain)
		newChildren = append(newChildren, children[pos:]...)
		*childrenPtr = newChildren
		return nil
	}
}

// findItem returns the index of item within a descending-sorted children
// slice, and whether it was found; if not found, the index is the correct
// insertion position to keep the slice sorted.
func findItem(children []*prefixNode, item Item) (int, bool) {
	pos := sort.Search(len(children), func(i int) bool { return children[i].item <= item })
	if pos < len(children) && children[pos].item == item {
		return pos, true
	}
	return pos, false
}

// buildChain allocates a new linear chain of nodes for items (the first
// item at the top, each subsequent item one level deeper). Every node in
// the chain starts at sourceSupp + w, not just w: every transaction
// already counted in sourceSupp (the best existing witness path this
// candidate was reduced from) is, by construction, also a superset of
// every node on this new chain, so it must be credited here too or a
// node created late is permanently under-counted relative to one created
// early from the same history. Returns a nil chain (not an error) when
// the eager residual-capacity check rules the entire chain out.
func (pt *PrefixTree) buildChain(parent *prefixNode, items []Item, w, sourceSupp int64, rf *residualFrequencies, sMin int64, touched map[*prefixNode]bool) (*prefixNode, error) {
	if rf != nil && sMin > 0 {
		if sourceSupp+w+rf.min(items) < sMin {
			return nil, nil
		}
	}
	n, err := pt.arena.alloc()
	if err != nil {
		return nil, err
	}
	n.item = items[0]
	n.supp = sourceSupp + w
	n.parent = parent
	touched[n] = true
	if len(items) > 1 {
		child, err := pt.buildChain(n, items[1:], w, sourceSupp, rf, sMin, touched)
		if err != nil {
			return nil, err
		}
		if child != nil {
			n.children = []*prefixNode{child}
		}
	}
	return n, nil
}

// pruneByResidual deletes every subtree whose cap (supp + min residual
// over its own item set) can no longer reach sMin (spec.md §4.2.2). cap is
// monotone non-increasing from parent to child, so a single cutoff check
// per node is sufficient; no descendant of a cut node needs visiting.
func (pt *PrefixTree) pruneByResidual(rf *residualFrequencies, sMin int64) int {
	removed := 0
	var walk func(prefix []Item, listPtr *[]*prefixNode)
	walk = func(prefix []Item, listPtr *[]*prefixNode) {
		list := *listPtr
		kept := list[:0]
		for _, n := range list {
			p := pathAppend(prefix, n.item)
			cap := n.supp + rf.min(p)
			if cap < sMin {
				removed += pt.releaseSubtree(n)
				continue
			}
			walk(p, &n.children)
			kept = append(kept, n)
		}
		*listPtr = kept
	}
	walk(nil, &pt.children)
	return removed
}

// pruneBySupport deletes every node with supp < sMin (spec.md §4.2.3).
// Because supp is monotone non-increasing from parent to child, cutting a
// failing node's whole subtree in one step is equivalent to the
// bottom-up formulation spec.md describes: a descendant can never have
// higher support than a failing ancestor.
func (pt *PrefixTree) pruneBySupport(sMin int64) int {
	removed := 0
	var walk func(listPtr *[]*prefixNode)
	walk = func(listPtr *[]*prefixNode) {
		list := *listPtr
		kept := list[:0]
		for _, n := range list {
			if n.supp < sMin {
				removed += pt.releaseSubtree(n)
				continue
			}
			walk(&n.children)
			kept = append(kept, n)
		}
		*listPtr = kept
	}
	walk(&pt.children)
	return removed
}

// releaseSubtree returns every node in n's subtree (including n) to the
// arena free list and reports how many were released.
func (pt *PrefixTree) releaseSubtree(n *prefixNode) int {
	count := 1
	for _, c := range n.children {
		count += pt.releaseSubtree(c)
	}
	n.children = nil
	n.parent = nil
	pt.arena.release(n)
	return count
}

// emit performs the closed/maximal extraction walk of spec.md §4.2.4.
func (pt *PrefixTree) emit(opts emitOptions, visit func(items []Item, supp int64)) {
	var walk func(prefix []Item, children []*prefixNode)
	walk = func(prefix []Item, children []*prefixNode) {
		for _, n := range children {
			p := pathAppend(prefix, n.item)
			floor := opts.floorFor(len(p))
			if n.supp >= floor && opts.inSizeRange(len(p)) {
				switch opts.target {
				case Closed:
					closed := true
					for _, c := range n.children {
						if c.supp == n.supp {
							closed = false
							break
						}
					}
					if closed {
						visit(p, n.supp)
					}
				case Maximal:
					if opts.filterMode {
						visit(p, n.supp)
					} else {
						maximal := true
						for _, c := range n.children {
							if c.supp >= opts.floorFor(len(p)+1) {
								maximal = false
								break
							}
						}
						if maximal {
							visit(p, n.supp)
						}
					}
				}
			}
			walk(p, n.children)
		}
	}
	walk(nil, pt.children)
}
