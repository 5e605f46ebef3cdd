package packed_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/synchro/bitset"
	"github.com/katalvlaran/synchro/trie/packed"
)

const n = 8

func s(bits ...int) bitset.Subset {
	sub := bitset.Empty(n)
	for _, b := range bits {
		sub = sub.Set(b)
	}

	return sub
}

func TestContainsSubsetOfFindsProperSubset(t *testing.T) {
	trie := packed.Build([]bitset.Subset{s(0), s(2, 3), s(0, 1)})
	require.True(t, trie.ContainsSubsetOf(s(0, 1, 2), false))
	require.True(t, trie.ContainsSubsetOf(s(0, 1), true)) // {0} proper subset of {0,1}
	require.False(t, trie.ContainsSubsetOf(s(4, 5), false))
}

func TestContainsSubsetOfEqualityNonProper(t *testing.T) {
	trie := packed.Build([]bitset.Subset{s(0, 1)})
	require.True(t, trie.ContainsSubsetOf(s(0, 1), false))
	require.False(t, trie.ContainsSubsetOf(s(0, 1), true))
}

func TestReduceAgainstRemovesSupersets(t *testing.T) {
	reference := []bitset.Subset{s(0, 1)}
	candidate := []bitset.Subset{s(0), s(0, 1), s(0, 1, 2), s(5, 6)}
	nSurv := packed.ReduceAgainst(reference, candidate, false)
	kept := candidate[:nSurv]
	require.Len(t, kept, 2)
	require.True(t, kept[0].Equal(s(0)))
	require.True(t, kept[1].Equal(s(5, 6)))
}

func TestReduceSelfKeepsMinimalElements(t *testing.T) {
	list := []bitset.Subset{s(0, 1, 2), s(0), s(2), s(0, 1)}
	nSurv := packed.ReduceSelf(list)
	kept := list[:nSurv]
	require.Len(t, kept, 2)
	seen := make(map[string]bool)
	for _, k := range kept {
		seen[k.String()] = true
	}
	require.True(t, seen[s(0).String()])
	require.True(t, seen[s(2).String()])
}

func TestReduceSelfOnDisjointSetsKeepsAll(t *testing.T) {
	list := []bitset.Subset{s(0), s(1), s(2), s(3)}
	nSurv := packed.ReduceSelf(list)
	require.Equal(t, 4, nSurv)
}

func TestBuildEmptyNeverMatches(t *testing.T) {
	trie := packed.Build(nil)
	require.False(t, trie.ContainsSubsetOf(s(0), false))
}
