// Package transition implements the preprocessed transition tables of
// spec.md §3/§4.A/§4.B: applying a letter to a Subset in O(N/8) via
// slice-indexed lookup tables, built once per automaton (or per residual
// automaton after Reduce) and then reused for every BFS/inverse-BFS step.
package transition

import (
	"github.com/katalvlaran/synchro/automaton"
	"github.com/katalvlaran/synchro/bitset"
	"github.com/katalvlaran/synchro/concurrency"
)

const sliceBits = 8
const sliceValues = 1 << sliceBits

// Tables holds, for every letter and every 8-bit slice of the bitset, the
// union of δ (or δ⁻¹) images over every possible slice value. Applying a
// letter to a Subset is then a slice-wise OR of the matching lookup entries.
type Tables struct {
	n, k      int
	numSlices int
	// lookup[letter][slice][value] = union of images for that value's set bits
	lookup [][][]bitset.Subset
}

// Build constructs the forward preprocessed transition tables from a.
func Build(a *automaton.Automaton) *Tables {
	return build(a.N(), a.K(), func(letter, state int) int { return a.Delta(state, letter) })
}

// BuildInverse constructs the preprocessed transition tables for δ⁻¹ from
// inv, used by inverse-BFS / inverse-DFS to compute preimages.
//
// δ⁻¹ is not a function (a state may have many or no preimages under a
// given letter), so "image" here means: the union, over every state s in
// the input subset, of δ⁻¹(s, letter).
func BuildInverse(inv *automaton.Inverse, n, k int) *Tables {
	t := &Tables{n: n, k: k, numSlices: bitset.NumSlices8(n)}
	t.lookup = make([][][]bitset.Subset, k)
	for letter := 0; letter < k; letter++ {
		t.lookup[letter] = make([][]bitset.Subset, t.numSlices)
		for slice := 0; slice < t.numSlices; slice++ {
			entries := make([]bitset.Subset, sliceValues)
			for v := 0; v < sliceValues; v++ {
				acc := bitset.Empty(n)
				for b := 0; b < sliceBits; b++ {
					if v&(1<<uint(b)) == 0 {
						continue
					}
					state := slice*sliceBits + b
					if state >= n {
						continue
					}
					for _, pre := range inv.Preimages(state, letter) {
						acc.Set(int(pre))
					}
				}
				entries[v] = acc
			}
			t.lookup[letter][slice] = entries
		}
	}

	return t
}

func build(n, k int, delta func(letter, state int) int) *Tables {
	t := &Tables{n: n, k: k, numSlices: bitset.NumSlices8(n)}
	t.lookup = make([][][]bitset.Subset, k)
	for letter := 0; letter < k; letter++ {
		t.lookup[letter] = make([][]bitset.Subset, t.numSlices)
		for slice := 0; slice < t.numSlices; slice++ {
			entries := make([]bitset.Subset, sliceValues)
			for v := 0; v < sliceValues; v++ {
				acc := bitset.Empty(n)
				for b := 0; b < sliceBits; b++ {
					if v&(1<<uint(b)) == 0 {
						continue
					}
					state := slice*sliceBits + b
					if state >= n {
						continue
					}
					acc.Set(delta(letter, state))
				}
				entries[v] = acc
			}
			t.lookup[letter][slice] = entries
		}
	}

	return t
}

// Apply returns the image of s under letter: ⋃{T[letter][slice][v]} over
// every slice, where v is s's bit pattern restricted to that slice. Bit for
// bit, this equals applying δ (or δ⁻¹, if t was built via BuildInverse) to
// every member of s and taking the union.
func (t *Tables) Apply(letter int, s bitset.Subset) bitset.Subset {
	r := bitset.Empty(t.n)
	letterTable := t.lookup[letter]
	for slice := 0; slice < t.numSlices; slice++ {
		v := s.Slice8(slice)
		if v == 0 {
			continue
		}
		r.UnionInto(letterTable[slice][v])
	}

	return r
}

// ApplyBatch applies letter to every element of in, writing results into
// out (which must have the same length as in; in and out may alias the
// same backing array, since each element is read before its own slot is
// written). Sequential application preserves input order, matching the ordering
// guarantee of §5 so that sharded workers produce a result identical to a
// single-threaded pass.
func (t *Tables) ApplyBatch(letter int, in []bitset.Subset, out []bitset.Subset) {
	for i, s := range in {
		out[i] = t.Apply(letter, s)
	}
}

// GPUOffloader is the split point for the out-of-scope GPU kernel path
// (spec.md §1, §4.A): a collaborator capable of applying a letter to a
// batch of subsets off-CPU. MaxChunk bounds how many subsets may be
// offloaded in one call, derived externally from a configured GPU-memory
// budget (gpu_max_memory_mb). This module ships no implementation of the
// interface; ApplyBatchParallel works identically with or without one.
type GPUOffloader interface {
	ApplyBatch(letter int, in []bitset.Subset) []bitset.Subset
	MaxChunk() int
}

// ApplyBatchParallel applies letter to every element of in, returning a
// new slice of the same length and order. When gpu is non-nil and
// len(in) exceeds gpu.MaxChunk(), the batch is split into MaxChunk()-sized
// chunks and offloaded sequentially (each chunk capacity-bounded per
// gpu_max_memory_mb); otherwise the work is sharded across pool. Both
// paths produce bit-for-bit identical output — the choice is invisible to
// callers (§4.A).
func (t *Tables) ApplyBatchParallel(pool *concurrency.Pool, letter int, in []bitset.Subset, gpu GPUOffloader) []bitset.Subset {
	out := make([]bitset.Subset, len(in))
	if gpu != nil && len(in) > gpu.MaxChunk() {
		chunk := gpu.MaxChunk()
		if chunk <= 0 {
			chunk = len(in)
		}
		for start := 0; start < len(in); start += chunk {
			end := start + chunk
			if end > len(in) {
				end = len(in)
			}
			copy(out[start:end], gpu.ApplyBatch(letter, in[start:end]))
		}

		return out
	}

	_ = pool.ApplyLetter(in, out, func(s bitset.Subset) bitset.Subset { return t.Apply(letter, s) })

	return out
}

// N returns the automaton width these tables were built for.
func (t *Tables) N() int { return t.n }

// K returns the letter count.
func (t *Tables) K() int { return t.k }
