package runner_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/synchro/automaton"
	"github.com/katalvlaran/synchro/config"
	"github.com/katalvlaran/synchro/result"
	"github.com/katalvlaran/synchro/runner"
)

func cerny(t *testing.T, n int) *automaton.Automaton {
	t.Helper()
	delta := make([]int, n*2)
	for s := 0; s < n; s++ {
		delta[s*2+0] = (s + 1) % n // rotation
		if s == n-1 {
			delta[s*2+1] = 0 // merges the last state into the first
		} else {
			delta[s*2+1] = s
		}
	}
	a, err := automaton.New(n, 2, delta)
	require.NoError(t, err)

	return a
}

func TestRunExactAloneFindsCerny4(t *testing.T) {
	a := cerny(t, 4)
	cfg := config.New(a.N(), config.WithUpperBound(20))
	res, err := runner.Run(a, []runner.Name{runner.Exact}, cfg, nil, nil)
	require.NoError(t, err)
	require.True(t, res.Converged())
	require.Equal(t, 9, res.Lower)
	require.Equal(t, 9, res.Upper)
}

func TestRunUnknownAlgorithmReturnsError(t *testing.T) {
	a := cerny(t, 4)
	cfg := config.New(a.N())
	_, err := runner.Run(a, []runner.Name{"bogus"}, cfg, nil, nil)
	require.ErrorIs(t, err, runner.ErrUnknownAlgorithm)
}

func TestRunSingleStateShortCircuits(t *testing.T) {
	a, err := automaton.New(1, 1, []int{0})
	require.NoError(t, err)
	cfg := config.New(a.N())

	res, err := runner.Run(a, []runner.Name{runner.Exact}, cfg, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 0, res.Lower)
	require.Equal(t, 0, res.Upper)
}

func TestRunStopsOnceConverged(t *testing.T) {
	a := cerny(t, 4)
	cfg := config.New(a.N(), config.WithUpperBound(20))
	res := result.New(a.N(), 20)
	res.TightenLower(9)
	res.TightenUpper(9)

	// beam should never even be invoked since res is already converged.
	got, err := runner.Run(a, []runner.Name{runner.Beam, runner.Exact}, cfg, res, nil)
	require.NoError(t, err)
	require.Empty(t, got.Stages)
}
