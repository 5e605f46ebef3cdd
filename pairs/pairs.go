// Package pairs implements the pairs-distance tree of spec.md §4.D,
// component F: for every unordered pair of distinct states, the length of
// the shortest word merging them and the first letter of such a word,
// built by a single inverse-BFS seeded from every "same-target" pair.
package pairs

import "github.com/katalvlaran/synchro/automaton"

// Tree holds, for every unordered pair {u,v} with u != v, the length of
// the shortest collapsing word (0 meaning unreachable — the pair never
// merges under any word, which witnesses a non-synchronizing automaton)
// and the first letter of that word.
type Tree struct {
	n      int
	length []int32
	letter []int8
}

// pairIndex maps an unordered pair u != v (n possible states) onto a
// triangular array index; the pair is normalized to u < v here, so callers
// may pass it in either order.
func pairIndex(n, u, v int) int {
	if u > v {
		u, v = v, u
	}

	// number of pairs with first component < u is u*n - u*(u+1)/2;
	// within that, v is the (v-u-1)-th pair after u.
	return u*n - u*(u+1)/2 + (v - u - 1)
}

func numPairs(n int) int {
	if n < 2 {
		return 0
	}

	return n * (n - 1) / 2
}

// Build runs the inverse-BFS over a's pairs, seeded by every same-target
// pair (u,v,k) with delta(u,k)=delta(v,k), and returns the completed tree.
func Build(a *automaton.Automaton, inv *automaton.Inverse) *Tree {
	n, k := a.N(), a.K()
	t := &Tree{
		n:      n,
		length: make([]int32, numPairs(n)),
		letter: make([]int8, numPairs(n)),
	}

	type queued struct{ u, v int }
	queue := make([]queued, 0, numPairs(n))

	seen := make([]bool, numPairs(n))
	enqueue := func(u, v int, length int32, letter int) {
		if u == v {
			return
		}
		idx := pairIndex(n, u, v)
		if seen[idx] {
			return
		}
		seen[idx] = true
		t.length[idx] = length
		t.letter[idx] = int8(letter)
		queue = append(queue, queued{u, v})
	}

	for letter := 0; letter < k; letter++ {
		// group states by their image under letter; any two states
		// sharing an image collapse in exactly one step.
		byImage := make(map[int][]int)
		for s := 0; s < n; s++ {
			img := a.Delta(s, letter)
			byImage[img] = append(byImage[img], s)
		}
		for _, group := range byImage {
			for i := 0; i < len(group); i++ {
				for j := i + 1; j < len(group); j++ {
					enqueue(group[i], group[j], 1, letter)
				}
			}
		}
	}

	for head := 0; head < len(queue); head++ {
		p := queue[head]
		idx := pairIndex(n, p.u, p.v)
		d := t.length[idx]

		for letter := 0; letter < k; letter++ {
			preU := inv.Preimages(p.u, letter)
			preV := inv.Preimages(p.v, letter)
			for _, pu32 := range preU {
				pu := int(pu32)
				for _, pv32 := range preV {
					pv := int(pv32)
					if pu == pv {
						continue
					}
					enqueue(pu, pv, d+1, letter)
				}
			}
		}
	}

	return t
}

// Distance returns the length of the shortest word merging u and v, and
// whether the pair is reachable at all; a false ok means the automaton is
// non-synchronizing (spec.md §4.D: "a pair with length zero is
// unreachable").
func (t *Tree) Distance(u, v int) (length int, ok bool) {
	if u == v {
		return 0, true
	}
	idx := pairIndex(t.n, u, v)

	return int(t.length[idx]), t.length[idx] > 0
}

// NextLetter returns the first letter of the shortest word merging u and
// v. Calling it on an unreachable pair is a programming error (check
// Distance's ok result first).
func (t *Tree) NextLetter(u, v int) int {
	return int(t.letter[pairIndex(t.n, u, v)])
}

// IsNonSynchronizing reports whether any pair of distinct states is
// unreachable in the tree, which proves no word ever synchronizes the
// automaton (spec.md §4.D, §7 invariant 3).
func (t *Tree) IsNonSynchronizing() bool {
	for u := 0; u < t.n; u++ {
		for v := u + 1; v < t.n; v++ {
			if _, ok := t.Distance(u, v); !ok {
				return true
			}
		}
	}

	return false
}
