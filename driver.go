package ista

import (
	"sort"

	uuid "github.com/hashicorp/go-uuid"
	"github.com/rs/zerolog"
)

// pruneSweepEvery is the transaction cadence at which a Prune-enabled
// driver sweeps the repository (spec.md §4.1 step 3's "every 16
// transactions").
const pruneSweepEvery = 16

// pruneSweepMinSupport is the s_min floor below which periodic sweeps are
// skipped entirely: at very low support thresholds almost nothing is
// prunable yet, so the sweep would just walk the whole tree for free
// (spec.md §4.1 step 3's "gated on s_min >= 4").
const pruneSweepMinSupport = 4

// MiningDriver orchestrates prepare/mine over a single repository
// (spec.md §4.1). It owns the residual-frequency array and the
// cancellation channel; the repository itself is variant-agnostic (see
// repository.go).
type MiningDriver struct {
	repo     repository
	order    map[int]Item
	m        int
	residual *residualFrequencies
	sMin     int64
	zMin     int
	zMax     int
	eval     string
	thresh   float64
	flags    ModeFlags
	logger   zerolog.Logger
	runID    string
	cancel   <-chan struct{}

	itemSupport  []int64
	transactions []Transaction
}

func newMiningDriver(v Variant, maxNodes int, sMin int64, zMin, zMax int, eval string, thresh float64, flags ModeFlags, logger zerolog.Logger) *MiningDriver {
	var repo repository
	switch v.resolve() {
	case VariantPatricia:
		repo = NewPatriciaTree(maxNodes)
	default:
		repo = NewPrefixTree(maxNodes)
	}
	runID, err := uuid.GenerateUUID()
	if err != nil {
		runID = "unknown"
	}
	if flags.has(Verbose) {
		logger = logger.Level(zerolog.DebugLevel)
	}
	return &MiningDriver{
		repo:   repo,
		sMin:   sMin,
		zMin:   zMin,
		zMax:   zMax,
		eval:   eval,
		thresh: thresh,
		flags:  flags,
		logger: logger.With().Str("run_id", runID).Logger(),
		runID:  runID,
	}
}

// prepare recodes db into dense Items, drops items below sMin, sorts each
// transaction's items into canonical descending order, deduplicates
// identical item sets by summing weight, and orders the resulting slice
// per sortMode (spec.md §4.1's prepare_data).
func (d *MiningDriver) prepare(db []Transaction, sortMode SortMode) error {
	if len(db) == 0 {
		return newError(ErrNoItems, nil)
	}

	support := make(map[int]int64)
	for _, t := range db {
		for _, id := range t.Items {
			support[int(id)] += t.Weight
		}
	}

	recode, m := buildCanonicalOrder(support, d.sMin)
	if m == 0 {
		return newError(ErrNoItems, nil)
	}
	d.order = recode
	d.m = m

	totalSupport := make([]int64, m)
	for id, s := range support {
		if it, ok := recode[id]; ok {
			totalSupport[it] = s
		}
	}
	d.itemSupport = totalSupport
	d.residual = newResidualFrequencies(m, totalSupport)

	fp, err := NewFingerprintCache(defaultCacheCapacity)
	if err != nil {
		return err
	}
	var prepared []Transaction
	for _, raw := range db {
		items := make([]Item, 0, len(raw.Items))
		for _, id := range raw.Items {
			if it, ok := recode[int(id)]; ok {
				items = append(items, it)
			}
		}
		if len(items) == 0 {
			continue
		}
		sort.Slice(items, func(i, j int) bool { return items[i] > items[j] })

		fingerprint := fingerprintItems(items)
		if idx, ok := fp.Lookup(fingerprint); ok && itemsEqual(prepared[idx].Items, items) {
			prepared[idx].Weight += raw.Weight
			continue
		}
		prepared = append(prepared, Transaction{Items: items, Weight: raw.Weight})
		fp.Remember(fingerprint, len(prepared)-1)
	}
	if len(prepared) == 0 {
		return newError(ErrNoItems, nil)
	}

	sortTransactions(prepared, sortMode)
	d.transactions = prepared

	d.logger.Info().
		Int("items", m).
		Int("transactions", len(prepared)).
		Msg("prepare complete")
	return nil
}

// fingerprintItems hashes a (already sorted) item slice with a simple
// FNV-1a-style fold; only used to shortlist dedup candidates, an exact
// itemsEqual check still guards against collisions.
func fingerprintItems(items []Item) uint64 {
	var h uint64 = 1469598103934665603
	for _, it := range items {
		h ^= uint64(uint32(it))
		h *= 1099511628211
	}
	return h
}

func itemsEqual(a, b []Item) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sortTransactions(ts []Transaction, mode SortMode) {
	switch mode {
	case SortAscending:
		sort.SliceStable(ts, func(i, j int) bool { return transactionSortKey(ts[i], ts[j]) < 0 })
	case SortDescending:
		sort.SliceStable(ts, func(i, j int) bool { return transactionSortKey(ts[i], ts[j]) > 0 })
	case SortAscendingBySizeSum:
		sort.SliceStable(ts, func(i, j int) bool { return sizeSum(ts[i]) < sizeSum(ts[j]) })
	case SortDescendingBySizeSum:
		sort.SliceStable(ts, func(i, j int) bool { return sizeSum(ts[i]) > sizeSum(ts[j]) })
	case SortNone:
		// keep input order
	}
}

// mine runs the intersection loop (spec.md §4.1 step 2/3) and feeds the
// closed/maximal extraction (step 4) to reporter.
func (d *MiningDriver) mine(target Target, reporter Reporter, borders []int64) error {
	prunable := 0
	n := len(d.transactions)
	for idx := n - 1; idx >= 0; idx-- {
		if d.cancelled() {
			return newError(ErrAborted, nil)
		}
		t := d.transactions[idx]
		if err := d.repo.intersect(t, d.residual, d.sMin); err != nil {
			return err
		}
		prunable += d.residual.consume(t, d.sMin)

		pos := n - idx
		if d.flags.has(Prune) && d.sMin >= pruneSweepMinSupport && prunable > 0 && pos%pruneSweepEvery == 0 {
			if d.cancelled() {
				return newError(ErrAborted, nil)
			}
			removed := d.repo.pruneByResidual(d.residual, d.sMin)
			d.logger.Debug().Int("removed", removed).Int64("s_min", d.sMin).Msg("residual sweep")
			prunable = 0
		}
	}

	if d.flags.has(Filter) {
		removed := d.repo.pruneBySupport(d.sMin)
		d.logger.Debug().Int("removed", removed).Msg("support sweep before filtered emit")
	}

	opts := emitOptions{
		target:     target,
		sMin:       d.sMin,
		zMin:       d.zMin,
		zMax:       d.zMax,
		filterMode: d.flags.has(Filter),
		borders:    borders,
	}

	if err := reporter.Open(); err != nil {
		return err
	}
	reporter.SetSupportRange(d.sMin, -1)
	reporter.SetSizeRange(d.zMin, d.zMax)
	reporter.SetTarget(target)

	emitted := 0
	var reportErr error
	d.repo.emit(opts, func(items []Item, supp int64) {
		if reportErr != nil {
			return
		}
		if !d.passesEval(items, supp) {
			return
		}
		reportErr = reporter.Report(items, supp)
		emitted++
	})
	if reportErr != nil {
		return reportErr
	}

	d.logger.Info().Int("emitted", emitted).Str("target", target.String()).Msg("mine complete")
	return reporter.Close()
}

// passesEval applies the secondary evaluation measure selected by -e/-d
// (spec.md §6); eval == "" or "x" means no secondary filtering at all.
func (d *MiningDriver) passesEval(items []Item, supp int64) bool {
	if d.eval != "b" {
		return true
	}
	return d.bond(items, supp) >= d.thresh
}

// bond is the support-ratio reading of the -e b flag (flags.go's "bond/
// support ratio" usage text): supp(X) divided by the support of X's most
// frequent member. Computing the textbook bond (supp(X) over the size of the union of
// transactions touching any item in X) would need pairwise item-overlap
// statistics the driver never tracks; this ratio only needs the per-item
// totals already kept in itemSupport and is the same denominator
// all-confidence uses, so it is reported as an approximation rather than
// invented from nothing.
func (d *MiningDriver) bond(items []Item, supp int64) float64 {
	var maxSupp int64
	for _, it := range items {
		if s := d.itemSupport[it]; s > maxSupp {
			maxSupp = s
		}
	}
	if maxSupp == 0 {
		return 0
	}
	return float64(supp) / float64(maxSupp)
}

func (d *MiningDriver) cancelled() bool {
	if d.cancel == nil {
		return false
	}
	select {
	case <-d.cancel:
		return true
	default:
		return false
	}
}

func (d *MiningDriver) nodeCount() int {
	return d.repo.nodeCount()
}

// Miner is the programmatic façade of spec.md §6: Create, PrepareData,
// PrepareReporter, Mine, Destroy.
type Miner struct {
	cfg      createConfig
	driver   *MiningDriver
	reporter Reporter
	borders  []int64
	cancel   chan struct{}
}

// Create validates opts and returns a ready-to-prepare Miner.
func Create(opts ...CreateOption) (*Miner, error) {
	cfg := defaultCreateConfig()
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.sMin <= 0 {
		return nil, newError(ErrInvalidSupport, nil)
	}
	if cfg.sMax > 0 && cfg.sMax < cfg.sMin {
		return nil, newError(ErrInvalidSupport, nil)
	}
	if cfg.zMin <= 0 || (cfg.zMax > 0 && cfg.zMax < cfg.zMin) {
		return nil, newError(ErrInvalidSize, nil)
	}
	if cfg.target != Closed && cfg.target != Maximal {
		return nil, newError(ErrInvalidTarget, nil)
	}
	v := cfg.variant.resolve()
	if v != VariantPrefix && v != VariantPatricia {
		return nil, newError(ErrInvalidVariant, nil)
	}
	switch cfg.eval {
	case "", "x", "b":
	default:
		return nil, newError(ErrInvalidMeasure, nil)
	}

	cancel := make(chan struct{})
	driver := newMiningDriver(v, cfg.maxNodes, cfg.sMin, cfg.zMin, cfg.zMax, cfg.eval, cfg.thresh, cfg.flags, cfg.logger)
	driver.cancel = cancel

	return &Miner{
		cfg:      cfg,
		driver:   driver,
		reporter: newSliceReporter(),
		cancel:   cancel,
	}, nil
}

// WithSizeSupportBorders installs a per-size support floor table used
// during emit (spec.md §3 "Supplemented", the original's -F flag).
func (m *Miner) WithSizeSupportBorders(borders []int64) {
	m.borders = borders
}

// PrepareData recodes and sorts the input database (spec.md §6's
// prepare_data operation). Items in db are raw, pre-recoding identifiers;
// PrepareData establishes the dense, canonically-ordered, deduplicated
// Transaction invariant that every other operation assumes.
func (m *Miner) PrepareData(db []Transaction, sortMode SortMode) error {
	return m.driver.prepare(db, sortMode)
}

// PrepareReporter swaps in a caller-supplied Reporter; if never called,
// Mine accumulates results in an in-memory sliceReporter retrievable via
// Results.
func (m *Miner) PrepareReporter(r Reporter) error {
	m.reporter = r
	return nil
}

// Mine runs the intersection loop and closed/maximal extraction.
func (m *Miner) Mine() error {
	if m.driver.transactions == nil {
		return newError(ErrNoItems, nil)
	}
	return m.driver.mine(m.cfg.target, m.reporter, m.borders)
}

// Results returns whatever the default in-memory reporter collected; it is
// empty if PrepareReporter installed a different Reporter.
func (m *Miner) Results() []ReportedSet {
	if sr, ok := m.reporter.(*sliceReporter); ok {
		return sr.sets
	}
	return nil
}

// Cancel requests cooperative abort; Mine returns ErrAborted the next time
// it polls (transaction boundaries, before sweeps).
func (m *Miner) Cancel() {
	select {
	case <-m.cancel:
	default:
		close(m.cancel)
	}
}

// Destroy releases the repository arena (unless NoClean is set) so a
// subsequent Create/PrepareData/Mine cycle starts clean. alsoDestroyInputs
// additionally drops the prepared transaction slice.
func (m *Miner) Destroy(alsoDestroyInputs bool) {
	if !m.cfg.flags.has(NoClean) {
		switch repo := m.driver.repo.(type) {
		case *PrefixTree:
			repo.arena.reset()
			repo.children = nil
		case *PatriciaTree:
			repo.arena.reset()
			repo.children = nil
		}
	}
	if alsoDestroyInputs {
		m.driver.transactions = nil
	}
}
