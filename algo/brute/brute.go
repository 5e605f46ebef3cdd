// Package brute implements the exact power-set BFS of spec.md §4.G,
// component I: for automata with at most a configured number of states,
// a plain breadth-first search over the entire 2^N mask space from the
// full set down to the first singleton reached gives the exact MLSW.
package brute

import "github.com/katalvlaran/synchro/automaton"

// MaxSupportedN is the largest N this implementation can ever run: masks
// are packed into a uint64, and size := 1<<n must itself remain a
// positive, in-range int (the slice-length type) — n is capped well
// below uint64's width so 1<<n never approaches int's own sign bit.
const MaxSupportedN = 62

// Result is the outcome of one Run.
type Result struct {
	MLSW       int
	NonSynchro bool
	// TooLarge is true when a.N() exceeds maxN (clamped to MaxSupportedN)
	// and Brute declined to run; callers should skip this algorithm
	// rather than treat it as a result.
	TooLarge bool
}

// Run performs the full power-set BFS. maxN is the compile-time-style cap
// (spec.md §6 default 20), clamped to MaxSupportedN regardless of what a
// caller configured — a configured maxN above that would overflow the
// uint64 mask silently rather than producing the fatal/skip behavior
// spec.md §7 requires for out-of-range configuration. Automata larger
// than the clamped cap are rejected cheaply rather than allocating a
// 2^N-sized visited table.
func Run(a *automaton.Automaton, maxN int) Result {
	if maxN > MaxSupportedN {
		maxN = MaxSupportedN
	}
	n := a.N()
	if n > maxN {
		return Result{TooLarge: true}
	}
	if n == 1 {
		return Result{MLSW: 0}
	}

	size := 1 << uint(n)
	full := uint64(size - 1)
	visited := make([]bool, size)
	depth := make([]int32, size)

	queue := make([]uint64, 0, size)
	queue = append(queue, full)
	visited[full] = true

	k := a.K()
	for head := 0; head < len(queue); head++ {
		mask := queue[head]
		if isSingleton(mask) {
			return Result{MLSW: int(depth[mask])}
		}
		d := depth[mask] + 1
		for letter := 0; letter < k; letter++ {
			var next uint64
			for s := 0; s < n; s++ {
				if mask&(1<<uint(s)) != 0 {
					next |= 1 << uint(a.Delta(s, letter))
				}
			}
			if !visited[next] {
				visited[next] = true
				depth[next] = d
				queue = append(queue, next)
			}
		}
	}

	return Result{NonSynchro: true}
}

func isSingleton(mask uint64) bool {
	return mask != 0 && mask&(mask-1) == 0
}
