package ista

import "github.com/rs/zerolog"

// ModeFlags is the bitset selecting mining behaviour variants (spec.md
// §4.1, §6). Each bit is independent; the reference implementation's
// "filter mode" sign trick on a shared integer (spec.md §9 Open Questions)
// is deliberately not reproduced here — Filter is its own explicit bit,
// checked with a plain branch in emit, never a sign flip.
type ModeFlags uint16

const (
	// Prune enables the periodic prune_by_residual sweep during mine()
	// (spec.md §4.1 step 3). Off by default: mining is still correct
	// without it (property 6), just slower and more memory-hungry.
	Prune ModeFlags = 1 << iota
	// Filter selects reporter-side maximality filtering over the
	// tree-local child-support criterion (spec.md §4.2.4 / §9).
	Filter
	// MaxOnly mirrors the reference CLI's separate target/size flags; it
	// carries no behaviour distinct from Target == Maximal and exists so
	// callers can set it without tripping ErrInvalidTarget.
	MaxOnly
	// Preformat marks that supports are pre-rendered as ASCII through an
	// LRU cache. The Miner does not read it and does not pass it to the
	// Reporter; the cache is installed on the Writer with
	// report.WithPreformat.
	Preformat
	// Verbose raises the driver's logger to Debug level.
	Verbose
	// NoClean skips arena teardown on Destroy, leaving nodes for a
	// caller-managed profiler/inspector to walk after Mine returns.
	NoClean
	// CompressOutput is accepted for compatibility with the reference flag
	// set; no code reads it and output is never compressed.
	CompressOutput
	// Spectrum names pattern-spectrum collection (the original's -P flag,
	// spec.md §3 "Supplemented" features). The Miner does not read it;
	// collection is switched on by report.WithSpectrum on the Writer.
	Spectrum
)

func (f ModeFlags) has(bit ModeFlags) bool { return f&bit != 0 }

// createConfig collects everything a CreateOption can set; Create applies
// defaults then validates the merged result.
type createConfig struct {
	target   Target
	variant  Variant
	sMin     int64
	sMax     int64
	zMin     int
	zMax     int
	eval     string
	thresh   float64
	flags    ModeFlags
	maxNodes int
	logger   zerolog.Logger
}

func defaultCreateConfig() createConfig {
	return createConfig{
		target:  Closed,
		variant: VariantAuto,
		sMin:    1,
		sMax:    -1,
		zMin:    1,
		zMax:    -1,
		logger:  zerolog.Nop(),
	}
}

// CreateOption configures a Miner, mirroring the teacher's
// Option/WithCacheProvider functional-options shape in options.go.
type CreateOption func(*createConfig)

// WithTarget selects closed or maximal item set extraction.
func WithTarget(t Target) CreateOption {
	return func(c *createConfig) { c.target = t }
}

// WithVariant selects the repository implementation.
func WithVariant(v Variant) CreateOption {
	return func(c *createConfig) { c.variant = v }
}

// WithSupport sets the absolute support bounds (sMax <= 0 means unbounded).
// Create rejects a positive sMax below sMin, but sMax is not applied to the
// emitted sets: mine hands the Reporter no upper support bound.
func WithSupport(sMin, sMax int64) CreateOption {
	return func(c *createConfig) { c.sMin = sMin; c.sMax = sMax }
}

// WithSizeRange sets the item set size bounds (zMax <= 0 means unbounded).
func WithSizeRange(zMin, zMax int) CreateOption {
	return func(c *createConfig) { c.zMin = zMin; c.zMax = zMax }
}

// WithEval sets the evaluation measure and threshold used to additionally
// filter emitted sets (spec.md §6's -e/-d flags).
func WithEval(measure string, thresh float64) CreateOption {
	return func(c *createConfig) { c.eval = measure; c.thresh = thresh }
}

// WithModeFlags sets the full mode-flag bitset at once.
func WithModeFlags(f ModeFlags) CreateOption {
	return func(c *createConfig) { c.flags = f }
}

// WithMaxNodes bounds the repository arena, making ErrOutOfMemory
// deterministically reachable (spec.md §4.2.1's Failure mode).
func WithMaxNodes(n int) CreateOption {
	return func(c *createConfig) { c.maxNodes = n }
}

// WithLogger overrides the default no-op logger.
func WithLogger(l zerolog.Logger) CreateOption {
	return func(c *createConfig) { c.logger = l }
}
