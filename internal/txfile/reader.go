// Package txfile reads the transaction database file format spec.md §6
// describes: one transaction per line, items separated by whitespace or
// commas, with an optional trailing "/weight" column.
package txfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/ista-miner/ista"
)

// Read parses every line of r into a Transaction. Blank lines and lines
// starting with '#' are skipped. Lines that are an exact duplicate of an
// earlier line (same raw item multiset) are collapsed by summing their
// weights rather than appended twice, using the LRU-backed fingerprint
// cache (ista.NewFingerprintCache) — a cheap win before the more expensive,
// canonical-order dedup prepare_data performs after recoding.
//
// weighted selects whether a trailing "/weight" column is recognised
// (spec.md §6's -R flag); when false, a line's items are parsed as-is and
// every transaction carries weight 1, so an item list that happens to
// contain a slash-separated trailing field is never misread as a weight:
// a token such as "3/5" is not a valid item and Read returns an error.
func Read(r io.Reader, weighted bool) ([]ista.Transaction, error) {
	fp, err := ista.NewFingerprintCache(0)
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var out []ista.Transaction
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		t, err := parseLine(line, weighted)
		if err != nil {
			return nil, fmt.Errorf("txfile: line %d: %w", lineNo, err)
		}

		sorted := make([]ista.Item, len(t.Items))
		copy(sorted, t.Items)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		fingerprint := fingerprintRaw(sorted)

		if idx, ok := fp.Lookup(fingerprint); ok && itemsMatch(out[idx].Items, sorted) {
			out[idx].Weight += t.Weight
			continue
		}
		out = append(out, ista.Transaction{Items: sorted, Weight: t.Weight})
		fp.Remember(fingerprint, len(out)-1)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func parseLine(line string, weighted bool) (ista.Transaction, error) {
	weight := int64(1)
	if weighted {
		if idx := strings.LastIndex(line, "/"); idx >= 0 {
			if w, err := strconv.ParseInt(strings.TrimSpace(line[idx+1:]), 10, 64); err == nil {
				weight = w
				line = line[:idx]
			}
		}
	}

	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	items := make([]ista.Item, 0, len(fields))
	for _, f := range fields {
		if f == "" {
			continue
		}
		v, err := strconv.Atoi(f)
		if err != nil {
			return ista.Transaction{}, fmt.Errorf("invalid item %q: %w", f, err)
		}
		items = append(items, ista.Item(v))
	}
	if len(items) == 0 {
		return ista.Transaction{}, errors.New("empty transaction")
	}
	return ista.Transaction{Items: items, Weight: weight}, nil
}

func fingerprintRaw(items []ista.Item) uint64 {
	var h uint64 = 1469598103934665603
	for _, it := range items {
		h ^= uint64(uint32(it))
		h *= 1099511628211
	}
	return h
}

func itemsMatch(a, b []ista.Item) bool {
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
