package report

import (
	"fmt"
	"io"
	"sort"
)

// SpectrumCollector accumulates a (size, support) -> count histogram
// during emit, mirroring the original pyfim -P/psp flag that spec.md's
// distillation dropped (spec.md §3 "Supplemented").
type SpectrumCollector struct {
	counts map[spectrumKey]int64
}

type spectrumKey struct {
	size int
	supp int64
}

// NewSpectrumCollector returns an empty collector.
func NewSpectrumCollector() *SpectrumCollector {
	return &SpectrumCollector{counts: make(map[spectrumKey]int64)}
}

// Add records one more emitted set of the given size and support.
func (s *SpectrumCollector) Add(size int, supp int64) {
	s.counts[spectrumKey{size: size, supp: supp}]++
}

// WriteTo writes the histogram as "size support count" lines, ordered by
// size then support.
func (s *SpectrumCollector) WriteTo(w io.Writer) error {
	keys := make([]spectrumKey, 0, len(s.counts))
	for k := range s.counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].size != keys[j].size {
			return keys[i].size < keys[j].size
		}
		return keys[i].supp < keys[j].supp
	})
	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%d %d %d\n", k.size, k.supp, s.counts[k]); err != nil {
			return err
		}
	}
	return nil
}
