package bitset_test

import (
	"testing"

	"github.com/katalvlaran/synchro/bitset"
	"github.com/stretchr/testify/require"
)

func TestEmptyCompleteSingleton(t *testing.T) {
	e := bitset.Empty(5)
	require.True(t, e.IsEmpty())
	require.Equal(t, 0, e.PopCount())

	c := bitset.Complete(5)
	require.True(t, c.IsComplete())
	require.Equal(t, 5, c.PopCount())

	s := bitset.Singleton(5, 3)
	require.Equal(t, 1, s.PopCount())
	require.True(t, s.Has(3))
	require.False(t, s.Has(0))
}

func TestTailBitsStayZero(t *testing.T) {
	// n=5 does not fill a 64-bit word; complement must not set bits 5..63.
	c := bitset.Complete(5)
	comp := c.Complement()
	require.True(t, comp.IsEmpty())

	s := bitset.Singleton(5, 0)
	comp2 := s.Complement()
	require.Equal(t, 4, comp2.PopCount())
}

func TestUnionIntersectSubset(t *testing.T) {
	a := bitset.Singleton(8, 1).Union(bitset.Singleton(8, 2))
	b := bitset.Singleton(8, 2).Union(bitset.Singleton(8, 3))

	u := a.Union(b)
	require.Equal(t, 3, u.PopCount())

	i := a.Intersect(b)
	require.Equal(t, 1, i.PopCount())
	require.True(t, i.Has(2))

	require.True(t, i.IsSubsetOf(a))
	require.True(t, i.IsProperSubsetOf(a))
	require.False(t, a.IsProperSubsetOf(a))
	require.True(t, a.IsSubsetOf(a))
}

func TestOrderingIsTotalAndDeterministic(t *testing.T) {
	a := bitset.Singleton(8, 1)
	b := bitset.Singleton(8, 2)
	require.True(t, a.Less(b) != b.Less(a))
}

func TestCompareCardinalityOrdersDescending(t *testing.T) {
	small := bitset.Singleton(8, 0)
	big := bitset.Complete(8)
	require.Equal(t, -1, big.CompareCardinality(small))
	require.Equal(t, 1, small.CompareCardinality(big))
	require.Equal(t, 0, small.CompareCardinality(small.Clone()))
}

func TestPermute(t *testing.T) {
	s := bitset.Singleton(4, 0).Union(bitset.Singleton(4, 1))
	perm := []int{3, 2, 1, 0}
	p := s.Permute(perm)
	require.True(t, p.Has(3))
	require.True(t, p.Has(2))
	require.Equal(t, 2, p.PopCount())
}

func TestForEachMembers(t *testing.T) {
	s := bitset.Singleton(10, 0).Union(bitset.Singleton(10, 9))
	require.Equal(t, []int{0, 9}, s.Members())
}
