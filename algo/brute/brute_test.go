package brute_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/synchro/algo/brute"
	"github.com/katalvlaran/synchro/automaton"
)

func TestCerny4MLSWIsNine(t *testing.T) {
	a, err := automaton.New(4, 2, []int{
		1, 0,
		2, 1,
		3, 2,
		0, 0,
	})
	require.NoError(t, err)

	res := brute.Run(a, 20)
	require.False(t, res.NonSynchro)
	require.False(t, res.TooLarge)
	require.Equal(t, 9, res.MLSW)
}

func TestTrivialSingleState(t *testing.T) {
	a, err := automaton.New(1, 1, []int{0})
	require.NoError(t, err)

	res := brute.Run(a, 20)
	require.Equal(t, 0, res.MLSW)
}

func TestNonSynchronizingReported(t *testing.T) {
	a, err := automaton.New(2, 1, []int{1, 0})
	require.NoError(t, err)

	res := brute.Run(a, 20)
	require.True(t, res.NonSynchro)
}

func TestTooLargeDeclinesToRun(t *testing.T) {
	delta := make([]int, 25*1)
	a, err := automaton.New(25, 1, delta)
	require.NoError(t, err)

	res := brute.Run(a, 20)
	require.True(t, res.TooLarge)
}

func TestMaxNBeyondMaskWidthIsClamped(t *testing.T) {
	delta := make([]int, 70*1)
	a, err := automaton.New(70, 1, delta)
	require.NoError(t, err)

	// maxN far exceeds brute.MaxSupportedN; Run must clamp rather than
	// silently overflow its uint64 mask for this N.
	res := brute.Run(a, 1000)
	require.True(t, res.TooLarge)
}
