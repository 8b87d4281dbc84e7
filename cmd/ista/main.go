// Command ista is the CLI entry point for the item set miner (spec.md §6).
// It reads a transaction file, mines closed or maximal frequent item
// sets, and writes one set per line to stdout or an output file.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/ista-miner/ista"
	"github.com/ista-miner/ista/internal/report"
	"github.com/ista-miner/ista/internal/txfile"
)

func main() {
	app := &cli.App{
		Name:      "ista",
		Usage:     "mine closed or maximal frequent item sets by transaction intersection",
		ArgsUsage: "<input-file> [output-file]",
		Flags:     flags,
		Action:    run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "ista:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps a returned error to the reference implementation's
// negated-Code convention (spec.md §6); an error that isn't one of ours
// still exits nonzero.
func exitCode(err error) int {
	if ec, ok := err.(cli.ExitCoder); ok {
		return ec.ExitCode()
	}
	var istaErr *ista.Error
	if asIstaError(err, &istaErr) {
		return negate(istaErr.Code)
	}
	return 1
}

func negate(c ista.Code) int {
	v := c.NegativeValue()
	if v == 0 {
		return 1
	}
	if v < 0 {
		return -v
	}
	return v
}

func asIstaError(err error, target **ista.Error) bool {
	for err != nil {
		if e, ok := err.(*ista.Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

func run(c *cli.Context) error {
	if c.Args().Len() < 1 {
		return cli.Exit("missing input file", negate(ista.ErrNoItems))
	}

	in, err := os.Open(c.Args().Get(0))
	if err != nil {
		return err
	}
	defer in.Close()

	db, err := txfile.Read(in, c.Bool("R"))
	if err != nil {
		return err
	}

	var totalWeight int64
	for _, t := range db {
		totalWeight += t.Weight
	}

	sMin, err := resolveSupport(c.Float64("s"), totalWeight)
	if err != nil {
		return err
	}
	sMax, err := resolveSupport(c.Float64("S"), totalWeight)
	if err != nil {
		return err
	}

	target := ista.Closed
	if strings.EqualFold(c.String("t"), "m") {
		target = ista.Maximal
	}

	variant := ista.VariantAuto
	if c.Bool("i") {
		variant = ista.VariantPatricia
	}

	var flagBits ista.ModeFlags
	if !c.Bool("p") {
		flagBits |= ista.Prune
	}
	if c.Bool("j") {
		flagBits |= ista.Filter
	}
	if c.Bool("Z") {
		flagBits |= ista.Preformat
	}
	if c.Bool("z") {
		flagBits |= ista.Verbose
	}
	if target == ista.Maximal {
		flagBits |= ista.MaxOnly
	}

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if !c.Bool("z") {
		logger = logger.Level(zerolog.WarnLevel)
	}

	borders, err := parseBorders(c.String("F"))
	if err != nil {
		return err
	}

	zMax := c.Int("n")
	miner, err := ista.Create(
		ista.WithTarget(target),
		ista.WithVariant(variant),
		ista.WithSupport(sMin, sMax),
		ista.WithSizeRange(c.Int("m"), zMax),
		ista.WithEval(c.String("e"), c.Float64("d")),
		ista.WithModeFlags(flagBits),
		ista.WithMaxNodes(c.Int("N")),
		ista.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	defer miner.Destroy(true)

	if len(borders) > 0 {
		miner.WithSizeSupportBorders(borders)
	}

	sortMode, err := resolveSortMode(c.String("q"))
	if err != nil {
		return err
	}
	if err := miner.PrepareData(db, sortMode); err != nil {
		return err
	}

	out := os.Stdout
	if c.Args().Len() >= 2 {
		f, err := os.Create(c.Args().Get(1))
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	var writerOpts []report.Option
	if c.Bool("Z") {
		cache, err := ista.NewPreformatCache(0)
		if err != nil {
			return err
		}
		writerOpts = append(writerOpts, report.WithPreformat(cache))
	}
	if c.Bool("P") {
		writerOpts = append(writerOpts, report.WithSpectrum())
	}
	if c.Bool("j") {
		writerOpts = append(writerOpts, report.WithFilterMode())
	}
	writer := report.NewWriter(out, c.String("g"), writerOpts...)
	if err := miner.PrepareReporter(writer); err != nil {
		return err
	}

	if err := miner.Mine(); err != nil {
		return err
	}
	return nil
}

// resolveSupport implements spec.md §6's sign-encoded support convention:
// positive values are a percentage of total transaction weight, negative
// values an absolute count. 0 means "unbounded" for sMax only.
func resolveSupport(v float64, totalWeight int64) (int64, error) {
	if v == 0 {
		return -1, nil
	}
	if v < 0 {
		return int64(-v), nil
	}
	return int64(v / 100 * float64(totalWeight)), nil
}

func resolveSortMode(q string) (ista.SortMode, error) {
	switch q {
	case "a":
		return ista.SortAscending, nil
	case "d":
		return ista.SortDescending, nil
	case "as":
		return ista.SortAscendingBySizeSum, nil
	case "ds", "":
		return ista.SortDescendingBySizeSum, nil
	case "n":
		return ista.SortNone, nil
	default:
		return ista.SortNone, fmt.Errorf("ista: invalid sort mode %q", q)
	}
}

// parseBorders parses "-F2:10:3:5" into a dense per-size table where
// borders[size-1] is the support floor for item sets of that size
// (spec.md §3 "Supplemented").
func parseBorders(spec string) ([]int64, error) {
	if spec == "" {
		return nil, nil
	}
	fields := strings.Split(spec, ":")
	if len(fields)%2 != 0 {
		return nil, fmt.Errorf("ista: -F expects size:support pairs, got %q", spec)
	}
	var maxSize int
	pairs := make(map[int]int64, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		size, err := strconv.Atoi(fields[i])
		if err != nil {
			return nil, fmt.Errorf("ista: invalid -F size %q: %w", fields[i], err)
		}
		supp, err := strconv.ParseInt(fields[i+1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ista: invalid -F support %q: %w", fields[i+1], err)
		}
		pairs[size] = supp
		if size > maxSize {
			maxSize = size
		}
	}
	borders := make([]int64, maxSize)
	for size, supp := range pairs {
		borders[size-1] = supp
	}
	return borders, nil
}
