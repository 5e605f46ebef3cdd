// Package packed implements the persistent packed subset trie of spec.md
// §4.E: a read-only, build-once binary trie over a fixed batch of subsets,
// used where the implicit trie's per-call recursion cost (package
// trie/implicit) is repaid many times over by a structure that survives
// across many queries — principally Exact's growing "visited" frontier
// (spec.md §4.H).
//
// Unlike the implicit trie, which recomputes its bit-split on every call,
// a packed Trie picks its division bit once per node — the bit position
// that most evenly balances the node's subset range, not simply the next
// sequential bit — and caches the minimum cardinality under every subtree
// so a query can prune whole branches that are provably too small (or, for
// the proper variant, too small to be a strict subset) to match.
package packed

import "github.com/katalvlaran/synchro/bitset"

// node is one trie node. A leaf has divisionBit < 0 and its members occupy
// elems[begin:end]; an internal node has dispatched its range across zero
// and one by the value of divisionBit.
type node struct {
	zero, one   *node
	divisionBit int
	begin, end  int
	minPop      int
}

// Trie is an immutable snapshot built from a fixed subset batch. Build it
// once per batch; querying never mutates it.
type Trie struct {
	elems []bitset.Subset
	root  *node
	n     int
}

// Build constructs a Trie over elems. elems is copied; the original slice
// is left untouched. An empty elems yields a Trie that never matches.
func Build(elems []bitset.Subset) *Trie {
	t := &Trie{elems: append([]bitset.Subset(nil), elems...)}
	if len(t.elems) == 0 {
		return t
	}
	t.n = t.elems[0].N()
	bits := sequence(t.n)
	t.root = t.build(0, len(t.elems), bits)

	return t
}

func sequence(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}

	return out
}

// build recursively partitions elems[begin:end] in place, choosing at each
// step the bit (from the remaining candidate list) that splits the range
// as evenly as possible, mirroring get_division_bit's balanced-split
// strategy rather than descending bit positions in a fixed sequential
// order.
func (t *Trie) build(begin, end int, remaining []int) *node {
	nd := &node{divisionBit: -1, begin: begin, end: end, minPop: t.minPopCountIn(begin, end)}
	if end-begin <= 1 || len(remaining) == 0 {
		return nd
	}

	bit, bitIdx := t.chooseDivisionBit(begin, end, remaining)
	if bit < 0 {
		return nd
	}
	nd.divisionBit = bit

	mid := partitionByBit(t.elems, begin, end, bit)
	if mid == begin || mid == end {
		// every element in range agrees on this bit; it carries no
		// information here, drop it and keep looking among the rest.
		rest := without(remaining, bitIdx)
		return t.build(begin, end, rest)
	}

	rest := without(remaining, bitIdx)
	nd.zero = t.build(begin, mid, rest)
	nd.one = t.build(mid, end, rest)
	nd.minPop = min(nd.zero.minPop, nd.one.minPop)
	nd.divisionBit = bit

	return nd
}

func (t *Trie) minPopCountIn(begin, end int) int {
	if begin >= end {
		return t.n + 1
	}
	m := t.elems[begin].PopCount()
	for i := begin + 1; i < end; i++ {
		if c := t.elems[i].PopCount(); c < m {
			m = c
		}
	}

	return m
}

// chooseDivisionBit scans every bit still in remaining and picks the one
// whose set-count within elems[begin:end] is closest to half the range —
// the balanced-split heuristic of the original build_impl_swap, in place
// of committing to a fixed bit order.
func (t *Trie) chooseDivisionBit(begin, end int, remaining []int) (bit, idx int) {
	target := (end - begin) / 2
	bestIdx, bestBit, bestDelta := -1, -1, -1
	for i, b := range remaining {
		count := 0
		for j := begin; j < end; j++ {
			if t.elems[j].Bit(b) == 1 {
				count++
			}
		}
		delta := count - target
		if delta < 0 {
			delta = -delta
		}
		if bestIdx == -1 || delta < bestDelta {
			bestIdx, bestBit, bestDelta = i, b, delta
		}
	}

	return bestBit, bestIdx
}

func without(xs []int, idx int) []int {
	out := make([]int, 0, len(xs)-1)
	out = append(out, xs[:idx]...)
	out = append(out, xs[idx+1:]...)

	return out
}

// partitionByBit reorders elems[begin:end] in place so that every element
// with bit clear precedes every element with bit set, and returns the
// index of the first element with the bit set.
func partitionByBit(elems []bitset.Subset, begin, end, bit int) int {
	lo, hi := begin, end
	for lo < hi {
		for lo < hi && elems[lo].Bit(bit) == 0 {
			lo++
		}
		for lo < hi && elems[hi-1].Bit(bit) == 1 {
			hi--
		}
		if lo < hi {
			elems[lo], elems[hi-1] = elems[hi-1], elems[lo]
			lo++
			hi--
		}
	}

	return lo
}

func min(a, b int) int {
	if a < b {
		return a
	}

	return b
}

// ContainsSubsetOf reports whether the trie holds an element r with
// r ⊆ query (r ⊊ query if proper is true). Subtree-min-cardinality
// pruning skips any branch whose smallest member is already too large
// (or, for the proper case, too large to be a strict subset) to qualify.
func (t *Trie) ContainsSubsetOf(query bitset.Subset, proper bool) bool {
	if t.root == nil {
		return false
	}

	return t.contains(t.root, query, proper)
}

func (t *Trie) contains(nd *node, query bitset.Subset, proper bool) bool {
	size := query.PopCount()
	if proper {
		if nd.minPop >= size {
			return false
		}
	} else if nd.minPop > size {
		return false
	}

	if nd.divisionBit < 0 {
		for i := nd.begin; i < nd.end; i++ {
			if proper {
				if t.elems[i].IsProperSubsetOf(query) {
					return true
				}
			} else if t.elems[i].IsSubsetOf(query) {
				return true
			}
		}

		return false
	}

	if query.Bit(nd.divisionBit) == 0 {
		// every element in the one-child has this bit set and so cannot
		// be a subset of a query with it clear.
		return t.contains(nd.zero, query, proper)
	}

	return t.contains(nd.zero, query, proper) || t.contains(nd.one, query, proper)
}

// ReduceAgainst removes every element of candidate that is a (proper, if
// proper is true) superset of some element of reference, building a fresh
// Trie over reference to answer the membership queries, and returns the
// surviving count after compacting candidate in place. This is the
// batch-oriented counterpart to trie/implicit.Reduce: pay an O(|reference|
// log |reference|) build cost once, then answer each candidate query in
// roughly O(n) rather than recursing over both lists together — a better
// trade when reference is reused across many candidate batches (Exact's
// growing visited frontier, spec.md §4.H).
func ReduceAgainst(reference, candidate []bitset.Subset, proper bool) int {
	if len(candidate) == 0 || len(reference) == 0 {
		return len(candidate)
	}
	trie := Build(reference)
	n := 0
	for _, c := range candidate {
		if !trie.ContainsSubsetOf(c, proper) {
			candidate[n] = c
			n++
		}
	}

	return n
}

// ReduceSelf keeps only the minimal elements of list: an element survives
// iff no other element of list is a proper subset of it. list is sorted
// ascending by cardinality first so that, scanning left to right, every
// candidate's potential dominators have already been considered for
// inclusion in the trie being built up — this lets the trie be rebuilt in
// O(log(len(list))) amortized batches (doubling the kept set before each
// rebuild) rather than once per insertion, which the swap-partition build
// above does not support incrementally. Returns the surviving count after
// compacting list in place.
func ReduceSelf(list []bitset.Subset) int {
	if len(list) <= 1 {
		return len(list)
	}
	insertionSortByCardinality(list)

	kept := make([]bitset.Subset, 0, len(list))
	var trie *Trie
	lastBuildSize := 0
	for _, x := range list {
		dominated := trie != nil && trie.ContainsSubsetOf(x, true)
		if !dominated {
			// the trie may lag behind kept by up to one doubling batch;
			// check the not-yet-indexed tail by direct comparison.
			for i := lastBuildSize; i < len(kept) && !dominated; i++ {
				dominated = kept[i].IsProperSubsetOf(x)
			}
		}
		if dominated {
			continue
		}
		kept = append(kept, x)
		if trie == nil || len(kept) >= 2*lastBuildSize {
			trie = Build(kept)
			lastBuildSize = len(kept)
		}
	}

	copy(list, kept)

	return len(kept)
}

func insertionSortByCardinality(list []bitset.Subset) {
	for i := 1; i < len(list); i++ {
		for j := i; j > 0 && list[j].PopCount() < list[j-1].PopCount(); j-- {
			list[j], list[j-1] = list[j-1], list[j]
		}
	}
}
