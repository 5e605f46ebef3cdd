// Package runner implements the algorithm orchestrator of spec.md §4.J:
// it runs a configured, ordered list of algorithms against a shared
// AlgoResult, short-circuiting once the bounds converge or the automaton
// is known non-synchronizing, and transparently re-enters the remaining
// pipeline on a Reduce-emitted residual automaton.
package runner

import (
	"errors"
	"fmt"
	"time"

	"github.com/katalvlaran/synchro/algo/beam"
	"github.com/katalvlaran/synchro/algo/brute"
	"github.com/katalvlaran/synchro/algo/eppstein"
	"github.com/katalvlaran/synchro/algo/exact"
	"github.com/katalvlaran/synchro/algo/reduce"
	"github.com/katalvlaran/synchro/automaton"
	"github.com/katalvlaran/synchro/bitset"
	"github.com/katalvlaran/synchro/concurrency"
	"github.com/katalvlaran/synchro/config"
	"github.com/katalvlaran/synchro/graphutil"
	"github.com/katalvlaran/synchro/internal/xlog"
	"github.com/katalvlaran/synchro/memalloc"
	"github.com/katalvlaran/synchro/pairs"
	"github.com/katalvlaran/synchro/result"
	"github.com/katalvlaran/synchro/transition"
)

// Name identifies one of the five core algorithms (spec.md §6).
type Name string

const (
	Beam     Name = "beam"
	Eppstein Name = "eppstein"
	Exact    Name = "exact"
	Brute    Name = "brute"
	Reduce   Name = "reduce"
)

// ErrUnknownAlgorithm is returned when the pipeline names an algorithm
// outside the five known to this core (spec.md §7 "Invalid configuration").
var ErrUnknownAlgorithm = errors.New("runner: unknown algorithm name")

// Run executes algos in order against res (spec.md §6: a ResultState,
// here result.AlgoResult), returning the mutated result and an error only
// for configuration-time problems (unknown algorithm names); runtime
// conditions — non-synchronizing automata, memory exhaustion, algorithm
// incompatibility after a reduction — are recorded on res and logged, not
// returned as errors (spec.md §7: "No partial tightening under error").
func Run(a *automaton.Automaton, algos []Name, cfg config.Config, res *result.AlgoResult, log *xlog.Logger) (*result.AlgoResult, error) {
	if log == nil {
		log = xlog.Noop()
	}
	if res == nil {
		res = result.New(a.N(), cfg.UpperBound)
	}
	if a.N() == 1 {
		res.TightenLower(0)
		res.TightenUpper(0)

		return res, nil
	}

	cur := a
	offset := 0 // BFS-prefix length absorbed by a prior Reduce emission

	for _, name := range algos {
		if res.Converged() {
			break
		}

		start := time.Now()
		var err error
		switch name {
		case Reduce:
			offset, cur, err = runReduce(cur, offset, cfg, res, log)
		case Beam:
			err = runBeam(cur, offset, cfg, res, log)
		case Brute:
			err = runBrute(cur, offset, cfg, res, log)
		case Eppstein:
			err = runEppstein(cur, offset, cfg, res, log)
		case Exact:
			err = runExact(cur, offset, cfg, res, log)
		default:
			return res, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
		}
		res.RecordStage(string(name), time.Since(start))
		if err != nil {
			return res, err
		}
	}

	return res, nil
}

// postReduceIncompatible reports whether name is one of Beam/Brute/
// Eppstein, which spec.md §7 declares undefined against a residual
// automaton once a Reduce emission has happened.
func postReduceIncompatible(name Name, offset int) bool {
	return offset > 0 && (name == Beam || name == Brute || name == Eppstein)
}

func runReduce(cur *automaton.Automaton, offset int, cfg config.Config, res *result.AlgoResult, log *xlog.Logger) (int, *automaton.Automaton, error) {
	if offset > 0 {
		log.Warn("reduce: skipped, automaton already reduced")
		return offset, cur, nil
	}

	tbl := transition.Build(cur)
	out := reduce.Run(cur, tbl.Apply, cfg.Reduce)
	switch {
	case out.Exact:
		res.TightenLower(out.MLSW)
		res.TightenUpper(out.MLSW)
		return offset, cur, nil
	case out.Reduced:
		out.Data.Done = true
		res.Reduce = out.Data
		log.Info("reduce: emitted residual automaton", "originalN", cur.N(), "residualN", out.Data.Residual.N(), "steps", out.Data.BFSSteps)
		return out.Data.BFSSteps, out.Data.Residual, nil
	default:
		log.Info("reduce: inapplicable")
		return offset, cur, nil
	}
}

func runBeam(cur *automaton.Automaton, offset int, cfg config.Config, res *result.AlgoResult, log *xlog.Logger) error {
	if postReduceIncompatible(Beam, offset) {
		log.Warn("beam: skipped, not defined against a reduced automaton")
		return nil
	}

	inv := automaton.BuildInverse(cur)
	invTables := transition.BuildInverse(inv, cur.N(), cur.K())
	beamCfg := config.NewBeamConfig(cur.N())
	if cfg.Beam.BeamSize > 0 {
		beamCfg = cfg.Beam
	}

	pool := concurrency.New(cfg.Threads)
	r := beam.Run(cur, inv, invTables, beamCfg, res.Upper, pool)
	if r.Found {
		res.TightenUpper(r.Upper)
	}

	return nil
}

func runBrute(cur *automaton.Automaton, offset int, cfg config.Config, res *result.AlgoResult, log *xlog.Logger) error {
	if postReduceIncompatible(Brute, offset) {
		log.Warn("brute: skipped, not defined against a reduced automaton")
		return nil
	}

	r := brute.Run(cur, cfg.Brute.MaxN)
	if r.TooLarge {
		log.Info("brute: skipped, automaton exceeds max_n", "maxN", cfg.Brute.MaxN)
		return nil
	}
	if r.NonSynchro {
		res.NonSynchro = true
		return nil
	}
	res.TightenLower(r.MLSW)
	res.TightenUpper(r.MLSW)

	return nil
}

func runEppstein(cur *automaton.Automaton, offset int, cfg config.Config, res *result.AlgoResult, log *xlog.Logger) error {
	if postReduceIncompatible(Eppstein, offset) {
		log.Warn("eppstein: skipped, not defined against a reduced automaton")
		return nil
	}

	inv := automaton.BuildInverse(cur)
	tree := pairs.Build(cur, inv)
	if tree.IsNonSynchronizing() {
		res.NonSynchro = true
		return nil
	}

	r := eppstein.Run(cur.N(), cur.Delta, tree, res.Upper)
	if r.NonSynchro {
		res.NonSynchro = true
		return nil
	}
	if !r.Abandoned {
		res.TightenUpper(r.Upper)
	}

	return nil
}

func runExact(cur *automaton.Automaton, offset int, cfg config.Config, res *result.AlgoResult, log *xlog.Logger) error {
	inv := automaton.BuildInverse(cur)
	seeds := graphutil.InverseSeedStates(cur, inv)
	if len(seeds) == 0 {
		log.Info("exact: no inverse seed states, cannot search")
		return nil
	}

	perm := graphutil.ConcentratingPermutation(cur, inv)
	permuted := cur.Permuted(perm)
	permutedInv := automaton.BuildInverse(permuted)

	fwdTables := transition.Build(permuted)
	invTables := transition.BuildInverse(permutedInv, permuted.N(), permuted.K())

	var initF []bitset.Subset
	if offset > 0 && res.Reduce != nil && len(res.Reduce.Frontier) > 0 {
		// a prior Reduce emission already advanced the forward frontier
		// by offset steps; seed Exact with it (remapped through perm)
		// instead of restarting from the complete set.
		initF = make([]bitset.Subset, len(res.Reduce.Frontier))
		for i, s := range res.Reduce.Frontier {
			initF[i] = s.Permute(perm)
		}
	} else {
		initF = []bitset.Subset{bitset.Complete(permuted.N())}
	}

	initI := make([]bitset.Subset, 0, len(seeds))
	for _, s := range seeds {
		initI = append(initI, bitset.Singleton(permuted.N(), perm[s]))
	}

	residualUpper := res.Upper - offset - 1
	if residualUpper < 0 {
		return nil
	}

	budget := memalloc.NewBudget(int64(cfg.Exact.MaxMemoryMB) * 1024 * 1024)
	r := exact.Run(exact.Params{
		N:          permuted.N(),
		K:          permuted.K(),
		Forward:    fwdTables.Apply,
		Inverse:    invTables.Apply,
		InitialF:   initF,
		InitialI:   initI,
		Budget:     budget,
		Cfg:        cfg.Exact,
		UpperBound: residualUpper,
	})

	switch {
	case r.Found:
		res.TightenLower(offset + r.MLSW)
		res.TightenUpper(offset + r.MLSW)
	case r.Abandoned:
		log.Warn("exact: memory budget exhausted", "ruledOut", offset+r.RuledOut)
		res.TightenLower(offset + r.RuledOut)
	default:
		res.TightenLower(offset + r.RuledOut)
	}

	return nil
}
