// Package result defines the shared, mutated-in-place result record that
// every algorithm in the pipeline reads and tightens (spec.md §3, §4.J):
// AlgoResult carries the running bounds, an optional witness word, the
// non-synchronizing flag, and the per-stage run log; ReduceData carries
// the residual automaton state handed back to the driver after a Reduce
// emission.
package result

import (
	"time"

	"github.com/katalvlaran/synchro/automaton"
	"github.com/katalvlaran/synchro/bitset"
)

// Stage records one algorithm's contribution to a pipeline run.
type Stage struct {
	Name    string
	Elapsed time.Duration
}

// AlgoResult is the shared transaction object threaded through the
// algorithm pipeline. Every algorithm either tightens Lower/Upper
// monotonically or leaves them untouched (spec.md §7: "No partial
// tightening under error").
type AlgoResult struct {
	NonSynchro bool
	Lower      int
	Upper      int
	Witness    []int
	Stages     []Stage
	Reduce     *ReduceData
}

// DefaultUpperBound returns the initial upper bound ⌊N³/6⌋ spec.md §3/§6
// specifies absent an explicit override.
func DefaultUpperBound(n int) int {
	return (n * n * n) / 6
}

// New initializes a fresh AlgoResult with bounds [0, upper]; upper <= 0
// selects the spec default for n.
func New(n, upper int) *AlgoResult {
	if upper <= 0 {
		upper = DefaultUpperBound(n)
	}

	return &AlgoResult{Lower: 0, Upper: upper}
}

// Converged reports whether the bounds have met, meaning no further
// algorithm can usefully run.
func (r *AlgoResult) Converged() bool {
	return r.NonSynchro || r.Lower >= r.Upper
}

// TightenLower raises Lower to max(Lower, candidate), never lowering it
// and never crossing Upper.
func (r *AlgoResult) TightenLower(candidate int) {
	if candidate > r.Lower {
		r.Lower = candidate
	}
	if r.Lower > r.Upper {
		r.Lower = r.Upper
	}
}

// TightenUpper lowers Upper to min(Upper, candidate), never raising it
// and never crossing Lower.
func (r *AlgoResult) TightenUpper(candidate int) {
	if candidate < r.Upper {
		r.Upper = candidate
	}
	if r.Upper < r.Lower {
		r.Upper = r.Lower
	}
}

// RecordStage appends one stage entry to the run log.
func (r *AlgoResult) RecordStage(name string, elapsed time.Duration) {
	r.Stages = append(r.Stages, Stage{Name: name, Elapsed: elapsed})
}

// ReduceData is the residual state Reduce hands back to the driver
// (spec.md §3, §4.F): the smaller automaton restricted to the reachable
// union of a short forward-BFS, the frontier that was live when the
// restriction happened, how many BFS steps were already spent, and
// whether Exact has already been re-entered on it.
type ReduceData struct {
	Residual *automaton.Automaton
	// OriginalStates maps each residual state index back to its index in
	// the pre-reduction automaton, for witness-word translation.
	OriginalStates []int
	// Frontier is the BFS frontier live at the moment of restriction,
	// already remapped into the residual automaton's state indices, so
	// Exact can seed its forward side with it directly.
	Frontier []bitset.Subset
	BFSSteps int
	Done     bool
}
