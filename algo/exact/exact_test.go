package exact_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/synchro/algo/brute"
	"github.com/katalvlaran/synchro/algo/exact"
	"github.com/katalvlaran/synchro/automaton"
	"github.com/katalvlaran/synchro/bitset"
	"github.com/katalvlaran/synchro/config"
	"github.com/katalvlaran/synchro/graphutil"
	"github.com/katalvlaran/synchro/memalloc"
	"github.com/katalvlaran/synchro/transition"
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

// cernyN builds the N-state generalization of the Černý family: letter 0
// rotates (s -> s+1 mod n), letter 1 is the identity except it merges
// state n-1 into state 0. Its MLSW is the well-known (n-1)^2.
func cernyN(t *testing.T, n int) *automaton.Automaton {
	t.Helper()
	delta := make([]int, n*2)
	for s := 0; s < n; s++ {
		delta[s*2+0] = (s + 1) % n
		if s == n-1 {
			delta[s*2+1] = 0
		} else {
			delta[s*2+1] = s
		}
	}
	a, err := automaton.New(n, 2, delta)
	require.NoError(t, err)

	return a
}

// runExact runs the meet-in-the-middle search over a with the given
// config, wiring up the forward/inverse tables and seed states the same
// way runner.Run does.
func runExact(a *automaton.Automaton, cfg config.ExactConfig, upper int) exact.Result {
	inv := automaton.BuildInverse(a)
	fwd := transition.Build(a)
	ivt := transition.BuildInverse(inv, a.N(), a.K())

	seeds := graphutil.InverseSeedStates(a, inv)
	initI := make([]bitset.Subset, 0, len(seeds))
	for _, s := range seeds {
		initI = append(initI, bitset.Singleton(a.N(), s))
	}

	return exact.Run(exact.Params{
		N:          a.N(),
		K:          a.K(),
		Forward:    fwd.Apply,
		Inverse:    ivt.Apply,
		InitialF:   []bitset.Subset{bitset.Complete(a.N())},
		InitialI:   initI,
		Budget:     memalloc.NewBudget(0),
		Cfg:        cfg,
		UpperBound: upper,
	})
}

// TestRunAgreesWithBruteOnModerateAutomata exercises N in the 10-15 range,
// large enough that implicit.Eliminate/packed.ReduceAgainst actually prune
// something on the inverse side over the course of the search (unlike the
// N=4 fixture, whose frontiers stay too small for self/visited reduction
// to matter) — exactly the regime where the inverse-side complement step
// in engine.step matters, per spec.md §8's law "Brute ... agrees with
// Exact". DFSShortcut is disabled so the search is forced through BFS/IBFS
// rounds (with or without visited) rather than surrendering to the
// inverse-DFS fallback.
func TestRunAgreesWithBruteOnModerateAutomata(t *testing.T) {
	for _, n := range []int{10, 11, 13, 15} {
		a := cernyN(t, n)
		want := brute.Run(a, 20)
		require.False(t, want.NonSynchro)
		require.False(t, want.TooLarge)

		cfg := config.DefaultExactConfig()
		cfg.DFSShortcut = false

		got := runExact(a, cfg, want.MLSW+5)
		require.True(t, got.Found, "n=%d: exact did not converge", n)
		require.Equal(t, want.MLSW, got.MLSW, "n=%d: exact/brute disagree", n)
	}
}

func TestRunFindsExactMLSWOnCerny(t *testing.T) {
	a := cerny4(t)
	inv := automaton.BuildInverse(a)
	fwd := transition.Build(a)
	ivt := transition.BuildInverse(inv, a.N(), a.K())

	seeds := graphutil.InverseSeedStates(a, inv)
	initI := make([]bitset.Subset, 0, len(seeds))
	for _, s := range seeds {
		initI = append(initI, bitset.Singleton(a.N(), s))
	}

	res := exact.Run(exact.Params{
		N:          a.N(),
		K:          a.K(),
		Forward:    fwd.Apply,
		Inverse:    ivt.Apply,
		InitialF:   []bitset.Subset{bitset.Complete(a.N())},
		InitialI:   initI,
		Budget:     memalloc.NewBudget(0),
		Cfg:        config.DefaultExactConfig(),
		UpperBound: 20,
	})

	require.True(t, res.Found)
	require.Equal(t, 9, res.MLSW)
}

func TestRunAbandonsUnderTinyBudget(t *testing.T) {
	a := cerny4(t)
	inv := automaton.BuildInverse(a)
	fwd := transition.Build(a)
	ivt := transition.BuildInverse(inv, a.N(), a.K())

	seeds := graphutil.InverseSeedStates(a, inv)
	initI := make([]bitset.Subset, 0, len(seeds))
	for _, s := range seeds {
		initI = append(initI, bitset.Singleton(a.N(), s))
	}

	cfg := config.DefaultExactConfig()
	cfg.StrictMemoryLimit = true
	cfg.DFS = false

	res := exact.Run(exact.Params{
		N:          a.N(),
		K:          a.K(),
		Forward:    fwd.Apply,
		Inverse:    ivt.Apply,
		InitialF:   []bitset.Subset{bitset.Complete(a.N())},
		InitialI:   initI,
		Budget:     memalloc.NewBudget(1),
		Cfg:        cfg,
		UpperBound: 20,
	})

	require.False(t, res.Found)
}
