package ista

import "sort"

// patriciaNode is the path-compressed variant of spec.md §4.3: an edge can
// carry more than one item as long as every item on it has always
// co-occurred with the same support. label is stored root-to-node order
// (descending canonical order, like prefixNode's single item).
type patriciaNode struct {
	label    []Item
	supp     int64
	children []*patriciaNode
	parent   *patriciaNode
}

// PatriciaTree is the edge-compressed intersection repository. It is
// interchangeable with PrefixTree (property 5, variant equivalence): same
// repository interface, same emitted sets and supports, fewer, fatter
// nodes.
type PatriciaTree struct {
	arena    arena[patriciaNode]
	children []*patriciaNode
}

func NewPatriciaTree(maxNodes int) *PatriciaTree {
	t := &PatriciaTree{}
	t.arena.maxNodes = maxNodes
	return t
}

func (pt *PatriciaTree) nodeCount() int {
	return pt.arena.count()
}

func patriciaPathAppend(prefix, label []Item) []Item {
	p := make([]Item, 0, len(prefix)+len(label))
	p = append(p, prefix...)
	p = append(p, label...)
	return p
}

// intersect follows the same two-phase shape as PrefixTree.intersect:
// snapshot every existing path (and its support) before mutating, compute
// P∩t for each plus t itself, dedupe by keeping the highest-support
// witness per distinct result, then insert every surviving candidate
// while sharing a single touched-node set across the whole batch (see
// PrefixTree.insertAccumulate's doc comment: two candidates can share a
// common ancestor edge without either being a prefix of the other, and
// touched is what keeps that shared edge from being bumped twice). The
// witness support recorded per candidate (sourceSupp) is what lets a
// brand-new edge start from the right baseline instead of just w — see
// PrefixTree.buildChain's doc comment for why that matters.
func (pt *PatriciaTree) intersect(t Transaction, rf *residualFrequencies, sMin int64) error {
	var snapshot []struct {
		path []Item
		supp int64
	}
	var walk func(prefix []Item, children []*patriciaNode)
	walk = func(prefix []Item, children []*patriciaNode) {
		for _, n := range children {
			p := patriciaPathAppend(prefix, n.label)
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

	touched := make(map[*patriciaNode]bool, len(order))
	for _, k := range order {
		c := byKey[k]
		if err := pt.insertAccumulate(c.items, t.Weight, c.sourceSupp, rf, sMin, touched); err != nil {
			return err
		}
	}
	return nil
}

// insertAccumulate is the generalisation of the teacher's iradix.go
// Txn.insert: find the child edge sharing a first item with remaining,
// split it at the longest common run (longestCommonRun, key.go's
// longestPrefix generalized to []Item), and descend. Support is
// accumulated in place of the teacher's leaf overwrite; a split node's
// support becomes the old child's support plus w, per spec.md §4.3's
// "the parent node's support is set to w + old parent's supp".
//
// touched guards against double counting when two candidates from the
// same transaction reach the same edge without one being a prefix of the
// other (see PrefixTree.insertAccumulate). For a full-label match that
// means skipping the += w if the child was already bumped this
// transaction; for a split it means the new split node's support only
// gains w once — if the edge was already touched, the weight it
// represents is already folded into child.supp and must not be added a
// second time onto the common prefix.
//
// sourceSupp is the best existing witness support for the whole
// candidate (see PrefixTree.insertAccumulate); it is only consulted when
// a brand-new edge has to be built for the candidate's remaining suffix,
// never while matching or splitting an existing edge — a split's own
// baseline is the edge being split (child.supp), a strictly tighter and
// more accurate witness than the candidate-wide sourceSupp.
func (pt *PatriciaTree) insertAccumulate(items []Item, w, sourceSupp int64, rf *residualFrequencies, sMin int64, touched map[*patriciaNode]bool) error {
	if len(items) == 0 {
		return nil
	}
	childrenPtr := &pt.children
	var parent *patriciaNode
	remaining := items
	for {
		children := *childrenPtr
		pos := sort.Search(len(children), func(i int) bool { return children[i].label[0] <= remaining[0] })
		if pos == len(children) || children[pos].label[0] != remaining[0] {
			n, ok, err := pt.buildChain(parent, remaining, w, sourceSupp, rf, sMin, touched)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			newChildren := make([]*patriciaNode, 0, len(children)+1)
			newChildren = append(newChildren, children[:pos]...)
			newChildren = append(newChildren, n)
			newChildren = append(newChildren, children[pos:]...)
			*childrenPtr = newChildren
			return nil
		}

		child := children[pos]
		commonLen := longestCommonRun(remaining, child.label)
		if commonLen == len(child.label) {
			if !touched[child] {
				child.supp += w
				touched[child] = true
			}
			if commonLen == len(remaining) {
				return nil
			}
			remaining = remaining[commonLen:]
			childrenPtr = &child.children
			parent = child
			continue
		}

		// Partial match: split child's edge at commonLen. If child was
		// already bumped by an earlier candidate this transaction, w is
		// already folded into child.supp and must not be added again here.
		alreadyTouched := touched[child]
		split, err := pt.arena.alloc()
		if err != nil {
			return err
		}
		split.label = append([]Item{}, child.label[:commonLen]...)
		if alreadyTouched {
			split.supp = child.supp
		} else {
			split.supp = child.supp + w
		}
		split.parent = parent
		touched[split] = true

		child.label = append([]Item{}, child.label[commonLen:]...)
		child.parent = split

		if commonLen < len(remaining) {
			rest, ok, err := pt.buildChain(split, remaining[commonLen:], w, sourceSupp, rf, sMin, touched)
			if err != nil {
				return err
			}
			if ok && rest.label[0] > child.label[0] {
				split.children = []*patriciaNode{rest, child}
			} else if ok {
				split.children = []*patriciaNode{child, rest}
			} else {
				split.children = []*patriciaNode{child}
			}
		} else {
			split.children = []*patriciaNode{child}
		}

		children[pos] = split
		return nil
	}
}

// buildChain allocates a single new edge node carrying the whole of items
// as its label (patricia tree edges compress a full run in one go, unlike
// the prefix tree's one-node-per-item chain), starting at sourceSupp + w
// for the same reason PrefixTree.buildChain does (every transaction
// already folded into sourceSupp is a superset of this new edge's
// itemset too). ok is false when the eager residual-capacity check
// (spec.md §4.2.2's cap, applied at insert time) rules the node out
// entirely.
func (pt *PatriciaTree) buildChain(parent *patriciaNode, items []Item, w, sourceSupp int64, rf *residualFrequencies, sMin int64, touched map[*patriciaNode]bool) (*patriciaNode, bool, error) {
	if rf != nil && sMin > 0 && sourceSupp+w+rf.min(items) < sMin {
		return nil, false, nil
	}
	n, err := pt.arena.alloc()
	if err != nil {
		return nil, false, err
	}
	n.label = append([]Item{}, items...)
	n.supp = sourceSupp + w
	n.parent = parent
	touched[n] = true
	return n, true, nil
}

func (pt *PatriciaTree) pruneByResidual(rf *residualFrequencies, sMin int64) int {
	removed := 0
	var walk func(prefix []Item, listPtr *[]*patriciaNode)
	walk = func(prefix []Item, listPtr *[]*patriciaNode) {
		list := *listPtr
		kept := list[:0]
		for _, n := range list {
			p := patriciaPathAppend(prefix, n.label)
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

func (pt *PatriciaTree) pruneBySupport(sMin int64) int {
	removed := 0
	var walk func(listPtr *[]*patriciaNode)
	walk = func(listPtr *[]*patriciaNode) {
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

func (pt *PatriciaTree) releaseSubtree(n *patriciaNode) int {
	count := 1
	for _, c := range n.children {
		count += pt.releaseSubtree(c)
	}
	n.children = nil
	n.parent = nil
	pt.arena.release(n)
	return count
}

func (pt *PatriciaTree) emit(opts emitOptions, visit func(items []Item, supp int64)) {
	var walk func(prefix []Item, children []*patriciaNode)
	walk = func(prefix []Item, children []*patriciaNode) {
		for _, n := range children {
			p := patriciaPathAppend(prefix, n.label)
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
