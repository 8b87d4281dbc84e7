package ista

import lru "github.com/hashicorp/golang-lru/v2"

// FingerprintCache is the bounded cache internal/txfile uses to detect
// duplicate transactions cheaply during dedup-with-weight-summation
// (spec.md §3: "duplicate transactions may be collapsed by summing
// weights"). Generalizes the teacher's cache.go CacheProvider/Cache
// (node-pointer membership during a write txn) into a genuine LRU, using
// the teacher's own previously-unused golang-lru/v2 dependency.
type FingerprintCache struct {
	lru *lru.Cache[uint64, int]
}

// NewFingerprintCache builds a fingerprint cache holding up to size
// distinct transaction hashes before evicting the least recently used.
func NewFingerprintCache(size int) (*FingerprintCache, error) {
	if size <= 0 {
		size = defaultCacheCapacity
	}
	c, err := lru.New[uint64, int](size)
	if err != nil {
		return nil, err
	}
	return &FingerprintCache{lru: c}, nil
}

// Lookup returns the index of a previously-seen transaction with the same
// fingerprint, if any.
func (c *FingerprintCache) Lookup(fingerprint uint64) (int, bool) {
	return c.lru.Get(fingerprint)
}

// Remember records that fingerprint maps to the transaction at index.
func (c *FingerprintCache) Remember(fingerprint uint64, index int) {
	c.lru.Add(fingerprint, index)
}

const defaultCacheCapacity = 4096

// PreformatCache pre-renders supp as ASCII once per distinct value instead
// of formatting it fresh per emitted set (ModeFlags.Preformat, spec.md
// §4.5). Same LRU-backed shape as FingerprintCache, different payload.
type PreformatCache struct {
	lru *lru.Cache[int64, string]
}

func NewPreformatCache(size int) (*PreformatCache, error) {
	if size <= 0 {
		size = defaultCacheCapacity
	}
	c, err := lru.New[int64, string](size)
	if err != nil {
		return nil, err
	}
	return &PreformatCache{lru: c}, nil
}

// Format returns render(supp), reusing a cached string for a repeated supp
// value instead of calling render again.
func (c *PreformatCache) Format(supp int64, render func(int64) string) string {
	if s, ok := c.lru.Get(supp); ok {
		return s
	}
	s := render(supp)
	c.lru.Add(supp, s)
	return s
}
