package reduce_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/synchro/algo/reduce"
	"github.com/katalvlaran/synchro/automaton"
	"github.com/katalvlaran/synchro/config"
	"github.com/katalvlaran/synchro/transition"
)

// bipartiteFunnel builds an N-state automaton over two letters where
// letter 0 is the identity and letter 1 merges the top half of states
// into the bottom half, so that after one BFS step the reachable union
// has shrunk to the bottom half: with a zero list-size threshold the
// first frontier already triggers the restrict path, without requiring a
// full N=100 fixture.
func bipartiteFunnel(t *testing.T, n int) *automaton.Automaton {
	t.Helper()
	delta := make([]int, n*2)
	for s := 0; s < n; s++ {
		delta[s*2+0] = s
		if s >= n/2 {
			delta[s*2+1] = s - n/2
		} else {
			delta[s*2+1] = s
		}
	}
	a, err := automaton.New(n, 2, delta)
	require.NoError(t, err)

	return a
}

func TestRunBelowMinNIsInapplicable(t *testing.T) {
	a := bipartiteFunnel(t, 10)
	tbl := transition.Build(a)
	cfg := config.NewReduceConfig(config.WithMinN(80))

	out := reduce.Run(a, tbl.Apply, cfg)
	require.False(t, out.Exact)
	require.False(t, out.Reduced)
}

func TestRunOnLargeFunnelReducesOrSolves(t *testing.T) {
	a := bipartiteFunnel(t, 90)
	tbl := transition.Build(a)
	cfg := config.NewReduceConfig(config.WithMinN(80), config.WithListSizeThreshold(func(n int) int { return 0 }))

	out := reduce.Run(a, tbl.Apply, cfg)
	require.True(t, out.Exact || out.Reduced)
	if out.Reduced {
		require.NotNil(t, out.Data)
		require.Less(t, out.Data.Residual.N(), a.N())
		require.NotEmpty(t, out.Data.Frontier)
		for _, f := range out.Data.Frontier {
			require.Equal(t, out.Data.Residual.N(), f.N())
		}
	}
}

func TestRunOnCernyFindsExactQuickly(t *testing.T) {
	a, err := automaton.New(4, 2, []int{
		1, 0,
		2, 1,
		3, 2,
		0, 0,
	})
	require.NoError(t, err)
	tbl := transition.Build(a)
	cfg := config.NewReduceConfig(config.WithMinN(4), config.WithListSizeThreshold(func(n int) int { return 1 << 20 }))

	out := reduce.Run(a, tbl.Apply, cfg)
	require.True(t, out.Exact)
	require.Equal(t, 9, out.MLSW)
}
