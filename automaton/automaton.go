// Package automaton defines the deterministic complete automaton and its
// inverse that the rest of this module searches over: a dense transition
// table δ: [0,N)×[0,K) → [0,N), immutable after construction, plus the
// precomputed preimage lists δ⁻¹ used by every inverse-BFS / inverse-DFS
// pass.
package automaton

import (
	"errors"
	"fmt"
)

// Sentinel errors for automaton construction, mirroring the teacher's
// pattern of package-scoped sentinel errors wrapped with context.
var (
	// ErrZeroStates indicates N == 0.
	ErrZeroStates = errors.New("automaton: N must be >= 1")

	// ErrZeroLetters indicates K == 0.
	ErrZeroLetters = errors.New("automaton: K must be >= 1")

	// ErrBadDelta indicates a transition table entry outside [0,N).
	ErrBadDelta = errors.New("automaton: delta entry out of range [0,N)")

	// ErrTableShape indicates the delta slice is not exactly N*K long.
	ErrTableShape = errors.New("automaton: delta has wrong shape, want N*K entries")
)

// Automaton is a dense, immutable deterministic complete automaton.
// Delta is stored row-major: Delta[state*K+letter] = next state.
type Automaton struct {
	n, k  int
	delta []int32
}

// New validates and builds an Automaton from N, K and a row-major delta
// table of N*K entries, each in [0,N). Returns ErrZeroStates, ErrZeroLetters,
// ErrTableShape, or ErrBadDelta on invalid input (§7 Invalid input).
func New(n, k int, delta []int) (*Automaton, error) {
	if n <= 0 {
		return nil, ErrZeroStates
	}
	if k <= 0 {
		return nil, ErrZeroLetters
	}
	if len(delta) != n*k {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrTableShape, len(delta), n*k)
	}
	packed := make([]int32, n*k)
	for i, v := range delta {
		if v < 0 || v >= n {
			return nil, fmt.Errorf("%w: index %d value %d", ErrBadDelta, i, v)
		}
		packed[i] = int32(v)
	}

	return &Automaton{n: n, k: k, delta: packed}, nil
}

// N returns the number of states.
func (a *Automaton) N() int { return a.n }

// K returns the number of letters.
func (a *Automaton) K() int { return a.k }

// Delta returns δ(state, letter).
func (a *Automaton) Delta(state, letter int) int {
	return int(a.delta[state*a.k+letter])
}

// Permuted returns a new Automaton with states relabeled by perm
// (perm[oldState] = newState); used by Exact to concentrate mass on one
// side of the bitset representation (§4.H).
func (a *Automaton) Permuted(perm []int) *Automaton {
	inv := make([]int, a.n)
	for old, nw := range perm {
		inv[nw] = old
	}
	out := make([]int32, a.n*a.k)
	for newState := 0; newState < a.n; newState++ {
		old := inv[newState]
		for letter := 0; letter < a.k; letter++ {
			out[newState*a.k+letter] = int32(perm[a.Delta(old, letter)])
		}
	}

	return &Automaton{n: a.n, k: a.k, delta: out}
}

// Restrict builds the residual automaton over the given subset of states
// (Reduce, §4.F). states must be given in ascending order and non-empty;
// the returned automaton is over len(states) states, and the returned map
// gives, for each old state index, its new index (or -1 if dropped).
//
// It panics if any state in states transitions (under any letter) to a
// state not in states — callers must only restrict to a δ-closed set, which
// Reduce guarantees by construction (invariant 4 in spec.md §8).
func (a *Automaton) Restrict(states []int) (*Automaton, []int) {
	remap := make([]int, a.n)
	for i := range remap {
		remap[i] = -1
	}
	for newIdx, old := range states {
		remap[old] = newIdx
	}
	out := make([]int32, len(states)*a.k)
	for newIdx, old := range states {
		for letter := 0; letter < a.k; letter++ {
			next := a.Delta(old, letter)
			ni := remap[next]
			if ni < 0 {
				panic(fmt.Sprintf("automaton: Restrict given a non-closed state set: state %d escapes via letter %d to %d", old, letter, next))
			}
			out[newIdx*a.k+letter] = int32(ni)
		}
	}

	return &Automaton{n: len(states), k: a.k, delta: out}, remap
}

// Inverse is the precomputed preimage structure δ⁻¹: for each letter k and
// target n, the list of states mapping to n under k. Stored as three
// parallel dense arrays indexed by (k,n) per spec.md §3.
type Inverse struct {
	n, k  int
	edges []int32 // concatenated preimage lists
	begin []int32 // begin[k*n+n'] = start index into edges
	end   []int32 // end[k*n+n'] = end index into edges (exclusive)
}

// BuildInverse constructs the inverse automaton from a.
func BuildInverse(a *Automaton) *Inverse {
	n, k := a.n, a.k
	counts := make([]int32, k*n)
	for state := 0; state < n; state++ {
		for letter := 0; letter < k; letter++ {
			counts[letter*n+a.Delta(state, letter)]++
		}
	}
	begin := make([]int32, k*n)
	end := make([]int32, k*n)
	var cursor int32
	for i := 0; i < k*n; i++ {
		begin[i] = cursor
		cursor += counts[i]
		end[i] = cursor
	}
	edges := make([]int32, cursor)
	fill := make([]int32, k*n)
	copy(fill, begin)
	for state := 0; state < n; state++ {
		for letter := 0; letter < k; letter++ {
			target := letter*n + a.Delta(state, letter)
			edges[fill[target]] = int32(state)
			fill[target]++
		}
	}

	return &Inverse{n: n, k: k, edges: edges, begin: begin, end: end}
}

// Preimages returns δ⁻¹(target, letter) as a slice view (not to be mutated).
func (inv *Inverse) Preimages(target, letter int) []int32 {
	idx := letter*inv.n + target
	return inv.edges[inv.begin[idx]:inv.end[idx]]
}
