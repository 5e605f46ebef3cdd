// Package graphutil provides the strongly-connected-component, sink
// component, reachability, and stationary-distribution analyses spec.md
// §3/§4.C needs on top of automaton.Automaton: seeding Exact's and Beam's
// inverse frontier from reachable sink-component states, and computing the
// reachable-closure check Reduce needs after restricting to a residual
// automaton.
package graphutil

import (
	"github.com/katalvlaran/synchro/automaton"
	"github.com/katalvlaran/synchro/bitset"
)

// Reachable returns the set of states reachable from start by any sequence
// of letters, computed by a plain forward BFS over the functional graphs of
// all K letters combined.
func Reachable(a *automaton.Automaton, start int) bitset.Subset {
	return ReachableSet(a, []int{start})
}

// ReachableSet returns the set of states reachable from any state in
// starts, transitively closed under δ — the "union of supports... closed
// under δ" Reduce needs to validate its residual automaton (spec.md §8
// invariant 4).
func ReachableSet(a *automaton.Automaton, starts []int) bitset.Subset {
	n := a.N()
	visited := bitset.Empty(n)
	queue := make([]int, 0, len(starts))
	for _, s := range starts {
		if !visited.Has(s) {
			visited = visited.Set(s)
			queue = append(queue, s)
		}
	}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for letter := 0; letter < a.K(); letter++ {
			next := a.Delta(s, letter)
			if !visited.Has(next) {
				visited = visited.Set(next)
				queue = append(queue, next)
			}
		}
	}

	return visited
}

// tarjan holds the mutable state of one Tarjan SCC pass. Recursion depth is
// bounded by N (automata are never larger than a few hundred states in
// practice once Reduce/bucketing have run), so we use native recursion
// rather than the explicit-stack rewrite spec.md §9 calls for only where
// unbounded input depth would make native recursion a liability.
type tarjan struct {
	a        *automaton.Automaton
	index    []int
	low      []int
	onStack  []bool
	stack    []int
	counter  int
	comps    [][]int
	compOf   []int
}

// SCC computes the strongly-connected components of a, treating every
// letter's edges as part of one combined directed graph. Returns the list
// of components (each a sorted list of states) and, for each state, the
// index of its component in that list.
func SCC(a *automaton.Automaton) (components [][]int, compOf []int) {
	n := a.N()
	tj := &tarjan{
		a:       a,
		index:   make([]int, n),
		low:     make([]int, n),
		onStack: make([]bool, n),
		stack:   make([]int, 0, n),
		compOf:  make([]int, n),
	}
	for i := range tj.index {
		tj.index[i] = -1
	}
	for s := 0; s < n; s++ {
		if tj.index[s] == -1 {
			tj.strongConnect(s)
		}
	}

	return tj.comps, tj.compOf
}

func (tj *tarjan) strongConnect(v int) {
	tj.index[v] = tj.counter
	tj.low[v] = tj.counter
	tj.counter++
	tj.stack = append(tj.stack, v)
	tj.onStack[v] = true

	for letter := 0; letter < tj.a.K(); letter++ {
		w := tj.a.Delta(v, letter)
		if tj.index[w] == -1 {
			tj.strongConnect(w)
			if tj.low[w] < tj.low[v] {
				tj.low[v] = tj.low[w]
			}
		} else if tj.onStack[w] {
			if tj.index[w] < tj.low[v] {
				tj.low[v] = tj.index[w]
			}
		}
	}

	if tj.low[v] == tj.index[v] {
		var comp []int
		for {
			w := tj.stack[len(tj.stack)-1]
			tj.stack = tj.stack[:len(tj.stack)-1]
			tj.onStack[w] = false
			tj.compOf[w] = len(tj.comps)
			comp = append(comp, w)
			if w == v {
				break
			}
		}
		tj.comps = append(tj.comps, comp)
	}
}

// SinkComponentStates returns every state belonging to a sink component: a
// strongly-connected component with no outgoing edge (under any letter) to
// a different component. Every automaton has at least one, since the
// component DAG is finite and acyclic.
func SinkComponentStates(a *automaton.Automaton) []int {
	comps, compOf := SCC(a)
	isSink := make([]bool, len(comps))
	for i := range isSink {
		isSink[i] = true
	}
	for s := 0; s < a.N(); s++ {
		for letter := 0; letter < a.K(); letter++ {
			next := a.Delta(s, letter)
			if compOf[next] != compOf[s] {
				isSink[compOf[s]] = false
			}
		}
	}

	var out []int
	for ci, comp := range comps {
		if isSink[ci] {
			out = append(out, comp...)
		}
	}

	return out
}

// HasMultiplePreimages reports whether state has at least 2 preimages
// under some letter — the seed condition for Exact/Beam's inverse
// frontier (spec.md §4.E, §4.H): states that merge another state into
// themselves are useful inverse-BFS roots; states that don't can never be
// the result of a collapsing step and are excluded as trivial.
func HasMultiplePreimages(inv *automaton.Inverse, state, k int) bool {
	for letter := 0; letter < k; letter++ {
		if len(inv.Preimages(state, letter)) >= 2 {
			return true
		}
	}

	return false
}

// InverseSeedStates returns the sink-component states with at least one
// letter having >=2 preimages: the seed set for Exact's inverse frontier
// and Beam's inverse-BFS root set (spec.md §4.E, §4.H).
func InverseSeedStates(a *automaton.Automaton, inv *automaton.Inverse) []int {
	var out []int
	for _, s := range SinkComponentStates(a) {
		if HasMultiplePreimages(inv, s, a.K()) {
			out = append(out, s)
		}
	}

	return out
}
