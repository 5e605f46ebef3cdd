// Package reduce implements the forward-BFS automaton-restriction
// algorithm of spec.md §4.F, component J: a short prefix of forward BFS
// on the complete subset, reduced each step against the implicit trie,
// either finds a singleton (yielding the exact MLSW) or, once the
// frontier outgrows a threshold, restricts the automaton to its currently
// reachable states and hands the residual back to the driver for Exact.
package reduce

import (
	"sort"

	"github.com/katalvlaran/synchro/automaton"
	"github.com/katalvlaran/synchro/bitset"
	"github.com/katalvlaran/synchro/config"
	"github.com/katalvlaran/synchro/graphutil"
	"github.com/katalvlaran/synchro/result"
	"github.com/katalvlaran/synchro/trie/implicit"
)

// Outcome is the tri-state result of one Run.
type Outcome struct {
	// Exact is true when a singleton appeared in the BFS frontier; MLSW
	// holds the exact answer (the step count at which it appeared).
	Exact bool
	MLSW  int
	// Reduced is true when a residual automaton was emitted.
	Reduced bool
	Data    *result.ReduceData
}

// maxStepsFactor bounds the BFS prefix length as a multiple of MinN, as a
// safety valve against a frontier that neither hits a singleton nor ever
// crosses the size threshold (a case spec.md does not call out, since in
// practice the threshold is sized to trigger quickly — see DESIGN.md).
const maxStepsFactor = 4

// Run executes the BFS-and-restrict algorithm. tables must be built over
// a (transition.Build). Returns an Outcome with none of Exact/Reduced set
// when n < cfg.MinN or the reachable union never shrinks (the reduction
// is declared inapplicable).
func Run(a *automaton.Automaton, apply func(letter int, s bitset.Subset) bitset.Subset, cfg config.ReduceConfig) Outcome {
	n := a.N()
	if n < cfg.MinN {
		return Outcome{}
	}
	threshold := cfg.ListSizeThreshold(n)
	maxSteps := maxStepsFactor * cfg.MinN

	listBFS := []bitset.Subset{bitset.Complete(n)}
	var visited []bitset.Subset

	for step := 1; step <= maxSteps; step++ {
		next := make([]bitset.Subset, 0, len(listBFS)*a.K())
		for _, s := range listBFS {
			for letter := 0; letter < a.K(); letter++ {
				next = append(next, apply(letter, s))
			}
		}
		next = sortDedup(next)

		if len(visited) > 0 {
			nSurv := implicit.Reduce(visited, next, false)
			next = next[:nSurv]
		}
		nSurv := implicit.Eliminate(next)
		next = next[:nSurv]

		for _, s := range next {
			if s.PopCount() == 1 {
				return Outcome{Exact: true, MLSW: step}
			}
		}

		if len(next) == 0 {
			// every candidate was subsumed; nothing left to explore.
			return Outcome{}
		}

		visited = mergeMinimal(visited, next)
		listBFS = next

		if len(listBFS) > threshold {
			return tryRestrict(a, listBFS, step)
		}
	}

	return Outcome{}
}

// tryRestrict computes the transitive closure of every support bit set
// across listBFS and, if strictly smaller than the full state set,
// restricts a to it and remaps listBFS into the residual's index space
// (spec.md §8 invariant 4: "the union of supports ... transitively closed
// under δ").
func tryRestrict(a *automaton.Automaton, listBFS []bitset.Subset, step int) Outcome {
	n := a.N()
	var starts []int
	for _, s := range listBFS {
		starts = append(starts, s.Members()...)
	}
	reachable := graphutil.ReachableSet(a, starts)
	if reachable.PopCount() >= n {
		return Outcome{}
	}

	states := reachable.Members()
	residual, remap := a.Restrict(states)

	frontier := make([]bitset.Subset, len(listBFS))
	for i, s := range listBFS {
		r := bitset.Empty(len(states))
		for _, old := range s.Members() {
			if ni := remap[old]; ni >= 0 {
				r.Set(ni)
			}
		}
		frontier[i] = r
	}

	return Outcome{
		Reduced: true,
		Data: &result.ReduceData{
			Residual:       residual,
			OriginalStates: states,
			Frontier:       frontier,
			BFSSteps:       step,
		},
	}
}

// mergeMinimal appends fresh into visited, then drops any visited element
// that is now a proper superset of something in fresh — keeping the
// accumulated visited list itself minimal, the same invariant Eliminate
// maintains for a single list.
func mergeMinimal(visited, fresh []bitset.Subset) []bitset.Subset {
	combined := append(append([]bitset.Subset(nil), visited...), fresh...)
	n := implicit.Eliminate(combined)

	return combined[:n]
}

func sortDedup(list []bitset.Subset) []bitset.Subset {
	sort.Slice(list, func(i, j int) bool { return list[i].Less(list[j]) })
	n := 0
	for i, s := range list {
		if i == 0 || !s.Equal(list[n-1]) {
			list[n] = s
			n++
		}
	}

	return list[:n]
}
