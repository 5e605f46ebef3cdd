// Package beam implements the bounded-width truncated inverse-BFS of
// spec.md §4.E, component G: search the inverse-BFS tree rooted at
// singletons of reachable sink-component states, keeping only the widest
// BeamSize elements of each new frontier (by cardinality, descending)
// until a preimage equals the full state set.
package beam

import (
	"sort"

	"github.com/katalvlaran/synchro/automaton"
	"github.com/katalvlaran/synchro/bitset"
	"github.com/katalvlaran/synchro/concurrency"
	"github.com/katalvlaran/synchro/config"
	"github.com/katalvlaran/synchro/graphutil"
	"github.com/katalvlaran/synchro/transition"
)

// Result is the outcome of one Run.
type Result struct {
	// Upper is the best upper bound found; equal to the incumbent passed
	// in when Beam could not improve on it.
	Upper int
	Found bool
}

// Run walks the inverse-BFS tree. invTables must be built over a's
// inverse automaton (transition.BuildInverse); incumbent is the current
// upper bound U, used as the iteration ceiling (spec.md §4.E: "return U
// if d reaches U-1 ... before finding a full-cover preimage"). pool
// shards the per-letter frontier expansion (spec.md §5); a nil pool runs
// single-threaded.
func Run(a *automaton.Automaton, inv *automaton.Inverse, invTables *transition.Tables, cfg config.BeamConfig, incumbent int, pool *concurrency.Pool) Result {
	if pool == nil {
		pool = concurrency.New(1)
	}
	seeds := graphutil.InverseSeedStates(a, inv)
	if len(seeds) == 0 {
		return Result{Upper: incumbent}
	}

	frontier := make([]bitset.Subset, 0, len(seeds))
	seen := make(map[string]bool, len(seeds))
	for _, s := range seeds {
		sub := bitset.Singleton(a.N(), s)
		key := sub.String()
		if !seen[key] {
			seen[key] = true
			frontier = append(frontier, sub)
		}
	}

	maxDepth := incumbent
	if maxDepth <= 0 {
		maxDepth = a.N()*a.N()*a.N()/6 + 1
	}

	for d := 1; ; d++ {
		if cfg.MaxIter > 0 && d > cfg.MaxIter {
			return Result{Upper: incumbent}
		}
		if d >= maxDepth {
			return Result{Upper: incumbent}
		}

		next := make([]bitset.Subset, 0, len(frontier)*a.K())
		for letter := 0; letter < a.K(); letter++ {
			batch := invTables.ApplyBatchParallel(pool, letter, frontier, nil)
			for _, pre := range batch {
				if pre.IsComplete() {
					return Result{Upper: d, Found: true}
				}
				next = append(next, pre)
			}
		}

		next = sortDedup(next)
		width := effectiveWidth(cfg, len(next))
		if len(next) > width {
			next = next[:width]
		}
		frontier = next
	}
}

// sortDedup orders subsets by cardinality descending (ties broken by the
// bitset total order) and removes adjacent duplicates, matching spec.md
// §4.E's "sort by cardinality descending ... then lexicographic order;
// deduplicate" step — bitset.Subset.CompareCardinality already implements
// exactly that combined ordering.
func sortDedup(list []bitset.Subset) []bitset.Subset {
	sort.Slice(list, func(i, j int) bool {
		return list[i].CompareCardinality(list[j]) < 0
	})
	n := 0
	for i, s := range list {
		if i == 0 || !s.Equal(list[n-1]) {
			list[n] = s
			n++
		}
	}

	return list[:n]
}

// effectiveWidth returns the beam width to keep this iteration. A
// non-dynamic configuration always returns cfg.BeamSize; a dynamic one
// scales with the current frontier size (clamped to [Min,Max]) by
// BeamExactRatio — this scaling formula is not specified exactly by
// spec.md (flagged as a tunable, not a fixed constant), so it is
// deliberately simple and documented as such rather than over-fit.
func effectiveWidth(cfg config.BeamConfig, frontierSize int) int {
	if !cfg.Dynamic {
		return cfg.BeamSize
	}
	w := cfg.BeamSize + int(float64(frontierSize)*cfg.BeamExactRatio)
	if w < cfg.MinBeamSize {
		w = cfg.MinBeamSize
	}
	if cfg.MaxBeamSize > 0 && w > cfg.MaxBeamSize {
		w = cfg.MaxBeamSize
	}

	return w
}
