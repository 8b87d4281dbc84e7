package ista

// residualFrequencies is the dense r[i] array of spec.md §4.4: the maximum
// additional support any unprocessed transaction can still contribute for
// item i. It is owned by the driver and mutated only as transactions are
// consumed; the driver keeps its reference after the intersection loop.
type residualFrequencies struct {
	r []int64
}

func newResidualFrequencies(m int, totalSupport []int64) *residualFrequencies {
	r := make([]int64, m)
	copy(r, totalSupport)
	return &residualFrequencies{r: r}
}

func (rf *residualFrequencies) get(i Item) int64 {
	return rf.r[i]
}

// consume subtracts w from every item in t, returning how many items just
// crossed below sMin for the first time (spec.md §4.1 step 2's "prunable
// counter" contribution of this transaction).
func (rf *residualFrequencies) consume(t Transaction, sMin int64) int {
	crossed := 0
	for _, it := range t.Items {
		before := rf.r[it]
		rf.r[it] -= t.Weight
		if before >= sMin && rf.r[it] < sMin {
			crossed++
		}
	}
	return crossed
}

// min returns the minimum residual among the given items, used by
// cap(n) = supp(n) + min_{i in S(n)} r[i] (spec.md §4.2.2).
func (rf *residualFrequencies) min(items []Item) int64 {
	if len(items) == 0 {
		return 0
	}
	m := rf.r[items[0]]
	for _, it := range items[1:] {
		if rf.r[it] < m {
			m = rf.r[it]
		}
	}
	return m
}
