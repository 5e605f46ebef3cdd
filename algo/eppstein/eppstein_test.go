package eppstein_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/synchro/algo/eppstein"
	"github.com/katalvlaran/synchro/automaton"
	"github.com/katalvlaran/synchro/pairs"
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

// TestEppsteinUpperBoundAtLeastExact checks the S1 scenario from spec.md:
// Exact reports MLSW=9 on this automaton, so Eppstein's upper bound must
// be >= 9.
func TestEppsteinUpperBoundAtLeastExact(t *testing.T) {
	a := cerny4(t)
	inv := automaton.BuildInverse(a)
	tree := pairs.Build(a, inv)

	result := eppstein.Run(a.N(), a.Delta, tree, 0)
	require.False(t, result.NonSynchro)
	require.False(t, result.Abandoned)
	require.GreaterOrEqual(t, result.Upper, 9)
}

func TestEppsteinFlagsNonSynchronizing(t *testing.T) {
	a, err := automaton.New(2, 1, []int{1, 0})
	require.NoError(t, err)
	inv := automaton.BuildInverse(a)
	tree := pairs.Build(a, inv)

	result := eppstein.Run(a.N(), a.Delta, tree, 0)
	require.True(t, result.NonSynchro)
}

func TestEppsteinAbandonsWhenOverIncumbent(t *testing.T) {
	a := cerny4(t)
	inv := automaton.BuildInverse(a)
	tree := pairs.Build(a, inv)

	result := eppstein.Run(a.N(), a.Delta, tree, 1)
	require.True(t, result.Abandoned)
}
