// Package implicit implements the implicit subset trie of spec.md §4.C: an
// in-place (here: mark-and-compact) partitioning of a candidate subset list
// against a reference subset list, removing every candidate that is a
// (proper) superset of some reference element, used to reduce one BFS
// frontier against another (or against itself) without ever materializing
// a persistent tree.
//
// Unlike the packed trie (package trie/packed), nothing here is retained
// between calls — Reduce recurses by binary-splitting the reference list on
// successive bit positions, descending only as deep as the reference size
// still warrants it (naiveThreshold), and falls back to a direct pairwise
// test once the reference side is small.
package implicit

import "github.com/katalvlaran/synchro/bitset"

// naiveThreshold (M in spec.md §4.C) is the reference-list size at or below
// which the direct O(|Ref|·|Cand|) pairwise test runs instead of recursing
// further.
const naiveThreshold = 10

// Reduce marks every element of candidate that is a (proper, if proper is
// true) superset of some element of reference — i.e. removes candidate
// elements that are already dominated by a smaller reference element — then
// compacts candidate in place so that survivors occupy candidate[:n] in
// their original relative order; n is returned. reference and candidate
// need not be sorted (Reduce operates by bit value, not position).
//
// This is the "keep minimal elements" direction spec.md §4.F and §4.H both
// rely on: removing a candidate X for which some reference r has r ⊆ X
// means X carries no information a smaller, already-known r didn't already
// carry, since r's forward image is a subset of X's at every future step.
//
// The recursion splits the reference list by bit d ("reference-driven"):
// a reference element with bit d = 1 can only be a subset of a candidate
// whose own bit d is also 1 — refHigh is therefore recursed only against
// the candidate sub-range with bit d = 1. A reference element with bit
// d = 0 places no constraint on the candidate's bit d (a superset may
// freely have 0 or 1 there), so refLow must still be tested against the
// *entire* remaining candidate range.
func Reduce(reference, candidate []bitset.Subset, proper bool) int {
	if len(candidate) == 0 || len(reference) == 0 {
		return len(candidate)
	}
	n := candidate[0].N()
	removed := make([]bool, len(candidate))
	refIdx := sequence(len(reference))
	candIdx := sequence(len(candidate))
	reduceRec(reference, candidate, refIdx, candIdx, removed, n-1, proper)

	return compact(candidate, removed)
}

// Eliminate removes every proper superset of another element within list
// itself, used as the "proper-subset eliminator" (spec.md §4.B): once some
// element r is present, any other element that is a proper superset of r
// carries no new information and is dropped, leaving only the minimal
// elements of list.
func Eliminate(list []bitset.Subset) int {
	return Reduce(list, list, true)
}

func sequence(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}

	return out
}

func reduceRec(reference, candidate []bitset.Subset, refIdx, candIdx []int, removed []bool, bit int, proper bool) {
	if len(refIdx) == 0 || len(candIdx) == 0 {
		return
	}
	if len(refIdx) <= naiveThreshold || bit < 0 {
		naiveMark(reference, candidate, refIdx, candIdx, removed, proper)
		return
	}

	var refLow, refHigh []int
	for _, ri := range refIdx {
		if reference[ri].Bit(bit) == 0 {
			refLow = append(refLow, ri)
		} else {
			refHigh = append(refHigh, ri)
		}
	}

	var candLow, candHigh []int
	for _, ci := range candIdx {
		if removed[ci] {
			continue
		}
		if candidate[ci].Bit(bit) == 0 {
			candLow = append(candLow, ci)
		} else {
			candHigh = append(candHigh, ci)
		}
	}

	if len(refHigh) > 0 && len(candHigh) > 0 {
		reduceRec(reference, candidate, refHigh, candHigh, removed, bit-1, proper)
	}
	if len(refLow) > 0 {
		full := make([]int, 0, len(candLow)+len(candHigh))
		full = append(full, candLow...)
		full = append(full, candHigh...)
		reduceRec(reference, candidate, refLow, full, removed, bit-1, proper)
	}
}

func naiveMark(reference, candidate []bitset.Subset, refIdx, candIdx []int, removed []bool, proper bool) {
	for _, ci := range candIdx {
		if removed[ci] {
			continue
		}
		for _, ri := range refIdx {
			var hit bool
			if proper {
				hit = reference[ri].IsProperSubsetOf(candidate[ci])
			} else {
				hit = reference[ri].IsSubsetOf(candidate[ci])
			}
			if hit {
				removed[ci] = true
				break
			}
		}
	}
}

func compact(s []bitset.Subset, removed []bool) int {
	n := 0
	for i, r := range removed {
		if !r {
			s[n] = s[i]
			n++
		}
	}

	return n
}
