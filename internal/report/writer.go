// Package report holds the default ista.Reporter implementation: a
// line-oriented writer with optional preformatted support rendering,
// pattern-spectrum collection, and reporter-side maximality re-filtering
// (spec.md §4.5, plus the supplemented -P spectrum flag).
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ista-miner/ista"
)

// Writer formats one item set per line as "item item ... (support)",
// mirroring the original's default output format.
type Writer struct {
	out        io.Writer
	sep        string
	sMin, sMax int64
	zMin, zMax int
	target     ista.Target
	preformat  *ista.PreformatCache
	spectrum   *SpectrumCollector
	filterMode bool

	buffered []ista.ReportedSet
}

// Option configures a Writer at construction time.
type Option func(*Writer)

// WithPreformat installs a support-rendering cache (ModeFlags.Preformat).
func WithPreformat(c *ista.PreformatCache) Option {
	return func(w *Writer) { w.preformat = c }
}

// WithSpectrum enables pattern-spectrum collection (ModeFlags.Spectrum);
// the histogram is written after the last item set on Close.
func WithSpectrum() Option {
	return func(w *Writer) { w.spectrum = NewSpectrumCollector() }
}

// WithFilterMode defers every Report call for a Maximal target to an
// in-memory buffer, re-filtered for maximality on Close
// (ModeFlags.Filter).
func WithFilterMode() Option {
	return func(w *Writer) { w.filterMode = true }
}

// NewWriter returns a Writer emitting to out, items separated by sep.
func NewWriter(out io.Writer, sep string, opts ...Option) *Writer {
	w := &Writer{out: out, sep: sep}
	for _, o := range opts {
		o(w)
	}
	return w
}

func (w *Writer) SetSupportRange(sMin, sMax int64) { w.sMin, w.sMax = sMin, sMax }
func (w *Writer) SetSizeRange(zMin, zMax int)       { w.zMin, w.zMax = zMin, zMax }
func (w *Writer) SetTarget(t ista.Target)           { w.target = t }

func (w *Writer) Open() error { return nil }

// Report is called once per candidate emitted by the repository. The
// repository's emitOptions already applied sMin, zMin and zMax; Writer
// re-checks the size range here and drops sets above sMax when
// SetSupportRange gave a positive sMax. mine always calls SetSupportRange
// with sMax=-1, so sets coming from a Miner get no upper support bound.
func (w *Writer) Report(items []ista.Item, supp int64) error {
	if w.sMax > 0 && supp > w.sMax {
		return nil
	}
	if len(items) < w.zMin {
		return nil
	}
	if w.zMax > 0 && len(items) > w.zMax {
		return nil
	}

	if w.spectrum != nil {
		w.spectrum.Add(len(items), supp)
	}

	if w.filterMode && w.target == ista.Maximal {
		cp := make([]ista.Item, len(items))
		copy(cp, items)
		w.buffered = append(w.buffered, ista.ReportedSet{Items: cp, Supp: supp})
		return nil
	}
	return w.writeLine(items, supp)
}

func (w *Writer) writeLine(items []ista.Item, supp int64) error {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = strconv.Itoa(int(it))
	}
	_, err := fmt.Fprintf(w.out, "%s %s\n", strings.Join(parts, w.sep), w.formatSupport(supp))
	return err
}

func (w *Writer) formatSupport(supp int64) string {
	render := func(s int64) string { return "(" + strconv.FormatInt(s, 10) + ")" }
	if w.preformat != nil {
		return w.preformat.Format(supp, render)
	}
	return render(supp)
}

// Close flushes any buffered filter-mode sets (after a final maximality
// re-check) and the spectrum histogram, in that order.
func (w *Writer) Close() error {
	if w.filterMode && w.target == ista.Maximal {
		if err := w.flushFiltered(); err != nil {
			return err
		}
	}
	if w.spectrum != nil {
		return w.spectrum.WriteTo(w.out)
	}
	return nil
}

// flushFiltered re-derives maximality across everything buffered during
// Report: a buffered set survives unless some other buffered set is a
// proper superset of it. Every buffered set already met its support floor,
// so any buffered superset is frequent. In filter mode the repository
// emits every node that meets the floor without a child check, so this is
// the only maximality check, and it compares against the full emitted
// collection, not just same-branch descendants (spec.md §4.5,
// ModeFlags.Filter).
func (w *Writer) flushFiltered() error {
	keep := make([]bool, len(w.buffered))
	for i := range keep {
		keep[i] = true
	}
	for i, a := range w.buffered {
		if !keep[i] {
			continue
		}
		for j, b := range w.buffered {
			if i == j {
				continue
			}
			if len(b.Items) > len(a.Items) && isSubset(a.Items, b.Items) {
				keep[i] = false
				break
			}
		}
	}
	for i, s := range w.buffered {
		if keep[i] {
			if err := w.writeLine(s.Items, s.Supp); err != nil {
				return err
			}
		}
	}
	return nil
}

// isSubset reports whether every item of a appears in b. Both slices are
// held in strictly descending canonical order, so a single linear merge
// suffices.
func isSubset(a, b []ista.Item) bool {
	i, j := 0, 0
	for i < len(a) {
		for j < len(b) && b[j] > a[i] {
			j++
		}
		if j >= len(b) || b[j] != a[i] {
			return false
		}
		i++
		j++
	}
	return true
}
