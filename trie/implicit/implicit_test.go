package implicit_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/synchro/bitset"
	"github.com/katalvlaran/synchro/trie/implicit"
)

const n = 8

func s(bits ...int) bitset.Subset {
	sub := bitset.Empty(n)
	for _, b := range bits {
		sub = sub.Set(b)
	}

	return sub
}

func TestReduceRemovesSupersetsOfReference(t *testing.T) {
	reference := []bitset.Subset{s(0, 1)} // {0,1}
	candidate := []bitset.Subset{
		s(0),       // subset of {0,1}, not a superset: keep
		s(1),       // subset of {0,1}, not a superset: keep
		s(0, 1),    // equal: superset (non-proper), remove
		s(0, 1, 2), // proper superset of {0,1}: remove
		s(2, 3),    // disjoint: keep
	}
	nSurv := implicit.Reduce(reference, candidate, false)
	kept := candidate[:nSurv]
	require.Len(t, kept, 3)
	require.True(t, kept[0].Equal(s(0)))
	require.True(t, kept[1].Equal(s(1)))
	require.True(t, kept[2].Equal(s(2, 3)))
}

func TestReduceProperExcludesEquality(t *testing.T) {
	reference := []bitset.Subset{s(0, 1)}
	candidate := []bitset.Subset{s(0, 1)}
	nSurv := implicit.Reduce(reference, candidate, true)
	require.Equal(t, 1, nSurv) // equal is not a *proper* superset, so it survives
}

func TestEliminateKeepsMinimalElements(t *testing.T) {
	list := []bitset.Subset{
		s(0),
		s(0, 1),
		s(2),
		s(0, 1, 2),
	}
	nSurv := implicit.Eliminate(list)
	kept := list[:nSurv]
	// {0} and {2} are minimal; {0,1} and {0,1,2} are each a proper
	// superset of some other element in the list, so they are dropped.
	require.Len(t, kept, 2)
}

func TestReduceWithLargeReferenceUsesRecursion(t *testing.T) {
	// build a reference list big enough to exceed naiveThreshold and force
	// the bit-split recursion path.
	const big = 16
	reference := make([]bitset.Subset, 0, big)
	for i := 0; i < big; i++ {
		reference = append(reference, s(i%n))
	}
	candidate := []bitset.Subset{s(0), s(0, 1, 2, 3, 4, 5, 6, 7)}
	nSurv := implicit.Reduce(reference, candidate, false)
	kept := candidate[:nSurv]
	// reference contains the singleton {0}, so the full set (a superset of
	// it) is removed; the candidate {0} is equal to that reference element,
	// and with proper=false equality counts as a superset, so it is removed
	// too.
	require.Len(t, kept, 0)
}
