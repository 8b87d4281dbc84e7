package ista

// Reporter is the external collaborator spec.md §4.5 describes: mine()
// calls Open once, Report once per emitted set, and Close once at the end.
// The default implementation lives in internal/report; PrepareReporter
// lets a caller swap in anything satisfying this interface (e.g. a test
// double that just accumulates sets in memory).
type Reporter interface {
	SetSupportRange(sMin, sMax int64)
	SetSizeRange(zMin, zMax int)
	SetTarget(t Target)
	Open() error
	Report(items []Item, supp int64) error
	Close() error
}

// sliceReporter is the trivial in-memory Reporter used when a caller never
// calls PrepareReporter; Mine always has somewhere to send its output.
type sliceReporter struct {
	sets []ReportedSet
}

// ReportedSet is one (item set, support) pair collected by sliceReporter.
type ReportedSet struct {
	Items []Item
	Supp  int64
}

func newSliceReporter() *sliceReporter { return &sliceReporter{} }

func (s *sliceReporter) SetSupportRange(int64, int64) {}
func (s *sliceReporter) SetSizeRange(int, int)        {}
func (s *sliceReporter) SetTarget(Target)             {}
func (s *sliceReporter) Open() error                  { return nil }

func (s *sliceReporter) Report(items []Item, supp int64) error {
	cp := make([]Item, len(items))
	copy(cp, items)
	s.sets = append(s.sets, ReportedSet{Items: cp, Supp: supp})
	return nil
}

func (s *sliceReporter) Close() error { return nil }
