package graphutil

import (
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/synchro/automaton"
)

// smoothing is the amount of uniform probability mass mixed into the
// transition matrix before solving for its stationary distribution, which
// guarantees the smoothed chain is irreducible and aperiodic regardless of
// the automaton's own connectivity (spec.md §4.H: "a stationary
// distribution of a slightly smoothed transition matrix").
const smoothing = 0.05

// StationaryDistribution computes a stationary distribution over the full
// state set of a: the fixed point π of π·P = π, where P is a's
// letter-averaged row-stochastic transition matrix smoothed with a small
// uniform component. Solved by power iteration against a gonum dense
// matrix — the Jacobi/LU/QR solvers the teacher's own matrix/ops package
// offers all assume a well-conditioned square system, whereas a transition
// matrix here need not even be irreducible before smoothing, so the
// generalization is an iterative fixed-point rather than a direct solve.
func StationaryDistribution(a *automaton.Automaton) []float64 {
	n := a.N()
	p := mat.NewDense(n, n, nil)
	invK := 1.0 / float64(a.K())
	uniform := smoothing / float64(n)
	for s := 0; s < n; s++ {
		for letter := 0; letter < a.K(); letter++ {
			t := a.Delta(s, letter)
			p.Set(s, t, p.At(s, t)+(1-smoothing)*invK)
		}
		for t := 0; t < n; t++ {
			p.Set(s, t, p.At(s, t)+uniform)
		}
	}

	pi := make([]float64, n)
	for i := range pi {
		pi[i] = 1.0 / float64(n)
	}
	cur := mat.NewVecDense(n, pi)
	next := mat.NewVecDense(n, nil)

	const maxIter = 500
	const tol = 1e-10
	for iter := 0; iter < maxIter; iter++ {
		next.MulVec(p.T(), cur)
		// renormalize to guard against floating drift
		sum := mat.Sum(next)
		if sum == 0 {
			break
		}
		next.ScaleVec(1/sum, next)

		diff := 0.0
		for i := 0; i < n; i++ {
			d := next.AtVec(i) - cur.AtVec(i)
			if d < 0 {
				d = -d
			}
			diff += d
		}
		cur, next = next, cur
		if diff < tol {
			break
		}
	}

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = cur.AtVec(i)
	}

	return out
}

// PreimageDegree returns, for each state, the total number of preimages
// across all letters — the "preimage degree" term in Exact's permutation
// heuristic (spec.md §4.H).
func PreimageDegree(inv *automaton.Inverse, n, k int) []int {
	deg := make([]int, n)
	for s := 0; s < n; s++ {
		total := 0
		for letter := 0; letter < k; letter++ {
			total += len(inv.Preimages(s, letter))
		}
		deg[s] = total
	}

	return deg
}

// ConcentratingPermutation returns a permutation of [0,n) that places
// states with the highest combined stationary-weight + preimage-degree
// score at the low end of the bit-index range, so that bitset buckets
// concentrate mass on one side (spec.md §4.H: "Permute states so that the
// resulting bitset buckets concentrate mass on one side").
func ConcentratingPermutation(a *automaton.Automaton, inv *automaton.Inverse) []int {
	n := a.N()
	stationary := StationaryDistribution(a)
	degree := PreimageDegree(inv, n, a.K())

	maxDeg := 1
	for _, d := range degree {
		if d > maxDeg {
			maxDeg = d
		}
	}

	type scored struct {
		state int
		score float64
	}
	scores := make([]scored, n)
	for s := 0; s < n; s++ {
		scores[s] = scored{state: s, score: stationary[s] + float64(degree[s])/float64(maxDeg)}
	}
	// stable sort descending by score, ties broken by state index for determinism
	for i := 1; i < n; i++ {
		for j := i; j > 0 && (scores[j].score > scores[j-1].score ||
			(scores[j].score == scores[j-1].score && scores[j].state < scores[j-1].state)); j-- {
			scores[j], scores[j-1] = scores[j-1], scores[j]
		}
	}

	perm := make([]int, n)
	for newIdx, sc := range scores {
		perm[sc.state] = newIdx
	}

	return perm
}

// FrequencyPermutation returns a permutation ordering states ascending by
// how often they appear set across frontier, used by the inverse-DFS
// fallback to make rarely-set bits the earliest (and thus first-chosen)
// trie division bits (spec.md §4.I step 2).
func FrequencyPermutation(n int, countBit func(state int) int) []int {
	type scored struct {
		state int
		count int
	}
	scores := make([]scored, n)
	for s := 0; s < n; s++ {
		scores[s] = scored{state: s, count: countBit(s)}
	}
	for i := 1; i < n; i++ {
		for j := i; j > 0 && (scores[j].count < scores[j-1].count ||
			(scores[j].count == scores[j-1].count && scores[j].state < scores[j-1].state)); j-- {
			scores[j], scores[j-1] = scores[j-1], scores[j]
		}
	}
	perm := make([]int, n)
	for newIdx, sc := range scores {
		perm[sc.state] = newIdx
	}

	return perm
}
