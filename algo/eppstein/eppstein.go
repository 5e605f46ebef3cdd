// Package eppstein implements the classical pair-collapsing upper bound
// (spec.md §4.D, component H): repeatedly merge the closest still-alive
// pair of states according to the pairs-distance tree, until one state
// remains.
package eppstein

import "github.com/katalvlaran/synchro/pairs"

// Result is the outcome of one Run: either an upper bound on the
// synchronizing word length, or a proof the automaton never synchronizes.
type Result struct {
	Upper      int
	NonSynchro bool
	Abandoned  bool
}

// Delta abstracts the single piece of automaton state eppstein needs:
// applying one letter to one state. Passing only this (rather than the
// full automaton type) keeps the package decoupled from automaton's
// representation choices.
type Delta func(state, letter int) int

// Run walks the pairs-distance tree: starting from the full state set,
// repeatedly finds the alive pair with minimum distance, replays its
// collapsing word letter-by-letter against every currently alive state
// (shrinking the alive set as coincidental merges happen along the way),
// and accumulates the letters spent. incumbent caps the search: if the
// accumulated length would reach or exceed it, Run abandons and returns
// Abandoned=true without a usable bound (spec.md §4.D: "If the
// accumulated length exceeds the incumbent upper bound at any point,
// abandon and leave the bound unchanged").
func Run(n int, delta Delta, tree *pairs.Tree, incumbent int) Result {
	if tree.IsNonSynchronizing() {
		return Result{NonSynchro: true}
	}

	alive := make(map[int]bool, n)
	for s := 0; s < n; s++ {
		alive[s] = true
	}

	total := 0
	for len(alive) > 1 {
		u, v, length, ok := closestPair(alive, tree)
		if !ok {
			// every remaining pair is unreachable — should not happen
			// once IsNonSynchronizing() is false, but guards against a
			// partially-alive residual set with no internal bridge.
			return Result{NonSynchro: true}
		}
		if incumbent > 0 && total+length >= incumbent {
			return Result{Abandoned: true}
		}

		cu, cv := u, v
		for step := 0; step < length; step++ {
			letter := tree.NextLetter(cu, cv)
			cu, cv = delta(cu, letter), delta(cv, letter)
			alive = applyLetter(alive, delta, letter)
		}
		total += length
	}

	return Result{Upper: total}
}

func closestPair(alive map[int]bool, tree *pairs.Tree) (u, v, length int, ok bool) {
	best := -1
	for s := range alive {
		for t := range alive {
			if s >= t {
				continue
			}
			d, reachable := tree.Distance(s, t)
			if !reachable {
				continue
			}
			if best == -1 || d < best || (d == best && (s < u || (s == u && t < v))) {
				best, u, v, ok = d, s, t, true
			}
		}
	}
	length = best

	return u, v, length, ok
}

func applyLetter(alive map[int]bool, delta Delta, letter int) map[int]bool {
	next := make(map[int]bool, len(alive))
	for s := range alive {
		next[delta(s, letter)] = true
	}

	return next
}
