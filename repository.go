package ista

// repository is the capability set shared by PrefixTree and PatriciaTree
// (spec.md "Design Notes": "Model them as a polymorphic repository ...
// rather than a deep type hierarchy"). MiningDriver talks to this
// interface exclusively so the two variants are interchangeable, matching
// property 5 (variant equivalence).
type repository interface {
	// intersect merges transaction t (weight w) into every stored path,
	// per spec.md §4.2.1 / §4.3.
	intersect(t Transaction, rf *residualFrequencies, sMin int64) error

	// pruneByResidual deletes any subtree whose cap() can no longer reach
	// sMin (spec.md §4.2.2).
	pruneByResidual(rf *residualFrequencies, sMin int64) int

	// pruneBySupport deletes every node with supp < sMin (spec.md §4.2.3).
	pruneBySupport(sMin int64) int

	// emit performs the closed/maximal extraction walk (spec.md §4.2.4)
	// and calls visit once per emitted set.
	emit(opts emitOptions, visit func(items []Item, supp int64))

	// nodeCount reports the number of live nodes, for diagnostics and
	// benchmarking.
	nodeCount() int
}

// emitOptions bundles everything emit needs, including the size-range
// filter (spec.md §4.1's z_min/z_max) and the optional per-size support
// border table (spec.md §3 "Supplemented", the original's -F flag): when
// borders is non-nil and size-1 is within range, the effective support
// floor for a set of that size is max(sMin, borders[size-1]).
type emitOptions struct {
	target     Target
	sMin       int64
	zMin, zMax int
	filterMode bool
	borders    []int64
}

// floorFor returns the effective support threshold for an item set of the
// given size.
func (o emitOptions) floorFor(size int) int64 {
	if o.borders != nil && size >= 1 && size-1 < len(o.borders) {
		if b := o.borders[size-1]; b > o.sMin {
			return b
		}
	}
	return o.sMin
}

// inSizeRange reports whether size satisfies z_min/z_max (zMax <= 0 means
// unbounded).
func (o emitOptions) inSizeRange(size int) bool {
	if size < o.zMin {
		return false
	}
	if o.zMax > 0 && size > o.zMax {
		return false
	}
	return true
}

// Target selects what the repository emits at the end of a mining run.
type Target int

const (
	Closed Target = iota
	Maximal
)

func (t Target) String() string {
	if t == Maximal {
		return "maximal"
	}
	return "closed"
}

// Variant selects which repository implementation backs a MiningDriver.
type Variant int

const (
	VariantAuto Variant = iota
	VariantPrefix
	VariantPatricia
)

// resolve implements spec.md §9's "Auto currently resolves to Prefix" open
// question decision: no heuristic, by design (see SPEC_FULL.md §10).
func (v Variant) resolve() Variant {
	if v == VariantAuto {
		return VariantPrefix
	}
	return v
}
