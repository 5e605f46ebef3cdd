package graphutil_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/synchro/automaton"
	"github.com/katalvlaran/synchro/graphutil"
)

func cerny4(t *testing.T) *automaton.Automaton {
	t.Helper()
	a, err := automaton.New(4, 2, []int{
		1, 0,
		2, 1,
		3, 2,
		0, 0,
	})
	require.NoError(t, err)

	return a
}

func TestReachableSetIsClosedUnderDelta(t *testing.T) {
	a := cerny4(t)
	r := graphutil.Reachable(a, 0)
	for _, s := range r.Members() {
		for letter := 0; letter < a.K(); letter++ {
			require.True(t, r.Has(a.Delta(s, letter)))
		}
	}
}

func TestSCCOfCernyIsSingleComponent(t *testing.T) {
	a := cerny4(t)
	comps, compOf := graphutil.SCC(a)
	// every state reaches every other via letter 0's cycle, so there is
	// exactly one SCC containing all states.
	require.Len(t, comps, 1)
	for _, c := range compOf {
		require.Equal(t, 0, c)
	}
}

func TestNonSynchronizingTwoCycleIsOneSinkComponent(t *testing.T) {
	a, err := automaton.New(2, 1, []int{1, 0})
	require.NoError(t, err)
	comps, _ := graphutil.SCC(a)
	require.Len(t, comps, 1) // the 2-cycle is one SCC and also the unique sink
}

func TestStationaryDistributionSumsToOne(t *testing.T) {
	a := cerny4(t)
	pi := graphutil.StationaryDistribution(a)
	require.Len(t, pi, 4)
	sum := 0.0
	for _, p := range pi {
		require.GreaterOrEqual(t, p, 0.0)
		sum += p
	}
	require.InDelta(t, 1.0, sum, 1e-6)
}

func TestConcentratingPermutationIsAPermutation(t *testing.T) {
	a := cerny4(t)
	inv := automaton.BuildInverse(a)
	perm := graphutil.ConcentratingPermutation(a, inv)
	seen := make(map[int]bool)
	for _, p := range perm {
		require.False(t, seen[p])
		seen[p] = true
	}
	require.Len(t, seen, a.N())
}

func TestInverseSeedStatesHaveMultiplePreimages(t *testing.T) {
	a := cerny4(t)
	inv := automaton.BuildInverse(a)
	seeds := graphutil.InverseSeedStates(a, inv)
	require.NotEmpty(t, seeds)
	for _, s := range seeds {
		require.True(t, graphutil.HasMultiplePreimages(inv, s, a.K()))
	}
}
