package ruleset

import (
	"fmt"
)

const (
	fnvOffsetBasis uint64 = 14695981039346656037
	fnvPrime       uint64 = 1099511628211
)

// fnv1a64 hashes s with the standard FNV-1a offset basis and prime
// (the stdlib hash/fnv package would give the same numbers, but the
// canonical key construction below is domain-specific enough — and the
// index needs the raw uint64 for direct bucket arithmetic — that hashing
// inline avoids an allocation-per-Write hash.Hash round trip).
func fnv1a64(s string) uint64 {
	h := fnvOffsetBasis
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= fnvPrime
	}
	return h
}

// canonicalKey builds the "<plugin>.<interface>.<param>" textual key
// the index hashes over.
func canonicalKey(plugin, iface string, param int) string {
	return fmt.Sprintf("%s.%s.%d", plugin, iface, param)
}

// KeyHash returns the FNV-1a hash of the canonical key for (plugin,
// iface, param), exported so callers and tests can recompute it
// independently of index internals.
func KeyHash(plugin, iface string, param int) uint64 {
	return fnv1a64(canonicalKey(plugin, iface, param))
}

// HashString returns the raw FNV-1a hash of s, exported for other
// components that hash a bare plugin name
// rather than a canonical (plugin, iface, param) key.
func HashString(s string) uint64 {
	return fnv1a64(s)
}

// bucketEntry is one chain node: the full hash plus the rule's position in the ordered sequence.
type bucketEntry struct {
	hash uint64
	pos  int
}

// index is the open-hashed map from FNV-1a(key) to an insertion-ordered
// list of rule positions. It is rebuilt wholesale
// after every append rather than incrementally maintained,
// since load_rules is rare.
type index struct {
	buckets    [][]bucketEntry
	numEntries int
}

const maxLoadFactor = 0.75

func newIndex(capacityHint int) *index {
	n := nextPow2(bucketCountFor(capacityHint))
	return &index{buckets: make([][]bucketEntry, n)}
}

func bucketCountFor(n int) int {
	if n < 8 {
		return 8
	}
	return n
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// rebuildIndex constructs an index from scratch over the given rules,
// growing the bucket array as needed to keep the load factor at or
// below 0.75.
func rebuildIndex(rules []Rule) *index {
	idx := newIndex(len(rules))
	for pos := range rules {
		idx.insertCheckGrow(rules, pos)
	}
	return idx
}

func (idx *index) insertCheckGrow(rules []Rule, pos int) {
	if float64(idx.numEntries+1) > maxLoadFactor*float64(len(idx.buckets)) {
		idx.grow(rules)
	}
	idx.insert(rules[pos].Source, pos)
}

func (idx *index) insert(src Source, pos int) {
	h := fnv1a64(canonicalKey(src.Plugin, src.Interface, src.Param))
	b := h & uint64(len(idx.buckets)-1)
	idx.buckets[b] = append(idx.buckets[b], bucketEntry{hash: h, pos: pos})
	idx.numEntries++
}

func (idx *index) grow(rules []Rule) {
	newBuckets := make([][]bucketEntry, len(idx.buckets)*2)
	old := idx.buckets
	idx.buckets = newBuckets
	idx.numEntries = 0
	for _, chain := range old {
		for _, e := range chain {
			idx.insert(rules[e.pos].Source, e.pos)
		}
	}
	_ = rules
}

// lookup returns, in insertion order, the positions of rules whose
// canonical key matches (plugin, iface, param), verified with an exact
// string/int comparison against rules to defend against hash collisions.
func (idx *index) lookup(rules []Rule, plugin, iface string, param int) []int {
	if idx == nil || len(idx.buckets) == 0 {
		return linearScan(rules, plugin, iface, param)
	}
	h := fnv1a64(canonicalKey(plugin, iface, param))
	b := h & uint64(len(idx.buckets)-1)
	var out []int
	for _, e := range idx.buckets[b] {
		if e.hash != h {
			continue
		}
		if e.pos >= len(rules) {
			continue
		}
		src := rules[e.pos].Source
		if src.Plugin == plugin && src.Interface == iface && src.Param == param {
			out = append(out, e.pos)
		}
	}
	return out
}

// linearScan is the fallback path for a missing index.
func linearScan(rules []Rule, plugin, iface string, param int) []int {
	var out []int
	for pos := range rules {
		if rules[pos].Source.Plugin == plugin &&
			rules[pos].Source.Interface == iface &&
			rules[pos].Source.Param == param {
			out = append(out, pos)
		}
	}
	return out
}
