package main

import "github.com/urfave/cli/v2"

// flags mirrors spec.md §6's CLI surface letter-for-letter. Several of
// these (-q, -g, -Z, -N) carry meaning the distilled spec only gestures
// at ("plus output formatting flags"); the mapping below follows the
// closest real-world analogue in the pack (Borgelt-style frequent item
// set miners: fpgrowth/apriori), documented per-flag rather than guessed
// silently.
var flags = []cli.Flag{
	&cli.StringFlag{
		Name:  "t",
		Usage: "target type: c (closed) or m (maximal)",
		Value: "c",
	},
	&cli.IntFlag{
		Name:  "m",
		Usage: "minimum item set size (z_min)",
		Value: 1,
	},
	&cli.IntFlag{
		Name:  "n",
		Usage: "maximum item set size (z_max, 0 = unbounded)",
		Value: 0,
	},
	&cli.Float64Flag{
		Name:  "s",
		Usage: "minimum support: positive = percentage of total weight, negative = absolute count",
		Value: -1,
	},
	&cli.Float64Flag{
		Name:  "S",
		Usage: "maximum support, same encoding as -s (0 = unbounded); checked against -s but not applied to the output",
		Value: 0,
	},
	&cli.StringFlag{
		Name:  "e",
		Usage: "evaluation measure: x (none) or b (bond/support ratio)",
		Value: "x",
	},
	&cli.Float64Flag{
		Name:  "d",
		Usage: "evaluation measure threshold",
		Value: 0,
	},
	&cli.StringFlag{
		Name:  "q",
		Usage: "input transaction sort mode: a, d, as, ds, or n (none)",
		Value: "ds",
	},
	&cli.BoolFlag{
		Name:  "i",
		Usage: "use the edge-compressed Patricia repository variant",
	},
	&cli.BoolFlag{
		Name:  "p",
		Usage: "disable residual-driven pruning during the intersection loop",
	},
	&cli.BoolFlag{
		Name:  "j",
		Usage: "filter maximal sets via the reporter instead of tree-local child-support checks",
	},
	&cli.StringFlag{
		Name:  "F",
		Usage: "per-size support border table, e.g. -F2:10:3:5 (size 2 needs >=10, size 3 needs >=5)",
	},
	&cli.BoolFlag{
		Name:  "R",
		Usage: "treat a trailing /weight column on each transaction line as present",
	},
	&cli.BoolFlag{
		Name:  "P",
		Usage: "collect and append a pattern-spectrum histogram",
	},
	&cli.BoolFlag{
		Name:  "Z",
		Usage: "preformat supports through an LRU cache before writing",
	},
	&cli.IntFlag{
		Name:  "N",
		Usage: "bound the repository to at most this many nodes (0 = unbounded)",
	},
	&cli.StringFlag{
		Name:  "g",
		Usage: "output item separator",
		Value: " ",
	},
	&cli.BoolFlag{
		Name:  "z",
		Usage: "enable verbose (debug-level) logging",
	},
}
