// Package concurrency provides the synchronous fan-out/join primitives
// described in spec.md §5: a fixed-size worker pool that shards a
// contiguous range of work across goroutines and joins before returning
// (no suspension points mid-step; a step is the scheduling atom), plus a
// worker-farm parallel sort/merge for ordering subset lists. Beam and Exact
// sort their lists with sort.Slice and do not call it.
package concurrency

import (
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/cpu"

	"github.com/katalvlaran/synchro/bitset"
)

// Pool is a fixed-width worker pool. It owns no goroutines between calls;
// each call spins up at most Workers goroutines and joins them before
// returning, matching the teacher's preference for explicit, inspectable
// concurrency over a persistent background scheduler.
type Pool struct {
	Workers int
}

// New returns a Pool with the given worker count, clamped to at least 1.
func New(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}

	return &Pool{Workers: workers}
}

// DefaultWorkers picks a worker count from runtime.NumCPU(), halved on
// machines without wide SIMD word-popcount (AVX2 on amd64, ASIMD on
// arm64): bitset.Subset.PopCount is memory-bandwidth bound on those, so
// oversubscribing workers past NumCPU/2 adds contention without adding
// throughput (spec.md §5 leaves the exact worker count to the caller).
func DefaultWorkers() int {
	n := runtime.NumCPU()
	wide := cpu.X86.HasAVX2 || cpu.ARM64.HasASIMD
	if !wide {
		n /= 2
	}
	if n < 1 {
		n = 1
	}

	return n
}

// shards splits [0,n) into up to p.Workers contiguous, non-overlapping
// ranges; ranges never overlap so sharded readers/writers in the caller
// require no locking (§5).
func (p *Pool) shards(n int) [][2]int {
	if n == 0 {
		return nil
	}
	workers := p.Workers
	if workers > n {
		workers = n
	}
	base := n / workers
	rem := n % workers
	out := make([][2]int, 0, workers)
	start := 0
	for i := 0; i < workers; i++ {
		size := base
		if i < rem {
			size++
		}
		if size == 0 {
			continue
		}
		out = append(out, [2]int{start, start + size})
		start += size
	}

	return out
}

// Range runs fn(start,end) over disjoint shards of [0,n) and joins on
// every shard before returning, stopping (and returning) the first error
// any shard reports.
func (p *Pool) Range(n int, fn func(start, end int) error) error {
	shards := p.shards(n)
	if len(shards) <= 1 {
		if len(shards) == 0 {
			return nil
		}
		return fn(shards[0][0], shards[0][1])
	}

	var g errgroup.Group
	for _, sh := range shards {
		sh := sh
		g.Go(func() error {
			return fn(sh[0], sh[1])
		})
	}

	return g.Wait()
}

// ApplyLetter applies apply(letter, s) to every element of in and writes
// results to out, sharded across the pool. out may be a distinct slice
// from in; both must have len(in) entries. Preserves input order within
// (and across, since shards are contiguous and disjoint) the result, so
// concatenation equals the sequential result bit-for-bit (§5 ordering
// guarantee).
func (p *Pool) ApplyLetter(in []bitset.Subset, out []bitset.Subset, apply func(s bitset.Subset) bitset.Subset) error {
	return p.Range(len(in), func(start, end int) error {
		for i := start; i < end; i++ {
			out[i] = apply(in[i])
		}
		return nil
	})
}

// AnyMatch runs test over every element of in, sharded, and returns true
// if any shard reports a match: each shard stops at its own first match,
// and the call returns only after every shard has joined, aggregating a
// logical OR across workers under a single join (§4.I). The inverse-DFS
// shortcut in algo/exact probes its trie sequentially and does not use it.
func (p *Pool) AnyMatch(in []bitset.Subset, test func(s bitset.Subset) bool) bool {
	shards := p.shards(len(in))
	if len(shards) == 0 {
		return false
	}
	results := make([]bool, len(shards))
	var g errgroup.Group
	for idx, sh := range shards {
		idx, sh := idx, sh
		g.Go(func() error {
			for i := sh[0]; i < sh[1]; i++ {
				if test(in[i]) {
					results[idx] = true
					return nil
				}
			}
			return nil
		})
	}
	_ = g.Wait()
	for _, r := range results {
		if r {
			return true
		}
	}

	return false
}

// ParallelSort sorts s in place by less, using a worker-farm merge: each
// shard is sorted independently in parallel, then the sorted shards are
// merged sequentially. Stable with respect to shard-local order; overall
// result is the same total order a single sort.Slice would produce.
func (p *Pool) ParallelSort(s []bitset.Subset, less func(a, b bitset.Subset) bool) {
	shards := p.shards(len(s))
	if len(shards) <= 1 {
		sort.Slice(s, func(i, j int) bool { return less(s[i], s[j]) })
		return
	}

	var g errgroup.Group
	for _, sh := range shards {
		sh := sh
		g.Go(func() error {
			sub := s[sh[0]:sh[1]]
			sort.Slice(sub, func(i, j int) bool { return less(sub[i], sub[j]) })
			return nil
		})
	}
	_ = g.Wait()

	merged := make([]bitset.Subset, 0, len(s))
	cursors := make([]int, len(shards))
	for {
		best := -1
		for si, sh := range shards {
			ci := cursors[si]
			if sh[0]+ci >= sh[1] {
				continue
			}
			if best == -1 || less(s[sh[0]+ci], s[shards[best][0]+cursors[best]]) {
				best = si
			}
		}
		if best == -1 {
			break
		}
		merged = append(merged, s[shards[best][0]+cursors[best]])
		cursors[best]++
	}
	copy(s, merged)
}
