// Package exact implements the bidirectional, memory-aware
// meet-in-the-middle search of spec.md §4.H/§4.I, components K and L: a
// forward frontier and an inverse frontier advance one step at a time,
// each step chosen among BFS, inverse-BFS (with or without consulting a
// "visited" packed trie), or an inverse-DFS shortcut, by a cost model
// that estimates trie-probe cost via the EVN formula spec.md §4.H names
// explicitly.
package exact

import (
	"math"
	"sort"

	"github.com/katalvlaran/synchro/bitset"
	"github.com/katalvlaran/synchro/config"
	"github.com/katalvlaran/synchro/graphutil"
	"github.com/katalvlaran/synchro/memalloc"
	"github.com/katalvlaran/synchro/trie/implicit"
	"github.com/katalvlaran/synchro/trie/packed"
)

// dfsWeight is the "DFS cost weight" constant spec.md §9's Open Questions
// flags as empirically calibrated; kept as a named package constant rather
// than a literal inside the cost formula. It is not configurable at run
// time.
const dfsWeight = 0.25

// Delta abstracts one letter's forward or inverse application to a
// bitset, so this package stays decoupled from transition.Tables'
// concrete slice layout.
type Delta func(letter int, s bitset.Subset) bitset.Subset

// Params bundles everything Run needs about the (already permuted, per
// spec.md §4.H) automaton and its preprocessed tables.
type Params struct {
	N, K       int
	Forward    Delta
	Inverse    Delta
	InitialF   []bitset.Subset
	InitialI   []bitset.Subset
	Budget     *memalloc.Budget
	Cfg        config.ExactConfig
	UpperBound int // U in spec.md §4.H: AlgoResult.mlsw_upper - 1
}

// Result is the outcome of a Run.
type Result struct {
	// Found and MLSW are set when the search closed the gap exactly.
	Found bool
	MLSW  int
	// RuledOut is the largest r such that no word of length <= r
	// synchronizes — usable as a new AlgoResult.mlsw_lower even when
	// Found is false.
	RuledOut int
	// Abandoned is true when the memory budget was exhausted before the
	// gap closed.
	Abandoned bool
}

type phase int

const (
	phaseBFSVisited phase = iota
	phaseBFSNoVisited
	phaseIBFSVisited
	phaseIBFSNoVisited
	phaseIDFSShortcut
)

type side struct {
	frontier    []bitset.Subset
	visited     []bitset.Subset // nil once discarded
	fracDup     float64
	fracVisited float64
	fracSelf    float64
}

// engine holds the mutable search state across steps.
type engine struct {
	p       Params
	f, inv  side
	r       int
	budget  *memalloc.Budget
	// exhausted is set when the inverse-DFS shortcut stops on a failed
	// reservation under a strict memory limit.
	exhausted bool
}

// Run drives the meet-in-the-middle loop described in spec.md §4.H steps
// 1-4, returning once the gap closes, the budget is exhausted, or the
// upper bound is reached without a match.
func Run(p Params) Result {
	e := &engine{
		p:      p,
		f:      side{frontier: p.InitialF, visited: append([]bitset.Subset(nil), p.InitialF...)},
		inv:    side{frontier: p.InitialI, visited: append([]bitset.Subset(nil), p.InitialI...)},
		budget: p.Budget,
	}

	for e.r < p.UpperBound {
		if goal(e.f.frontier, e.inv.frontier) {
			return Result{Found: true, MLSW: e.r + 1}
		}

		ph := e.decidePhase()
		if ph == phaseIDFSShortcut {
			depth, ok := e.runIDFSShortcut()
			if ok {
				return Result{Found: true, MLSW: e.r + depth}
			}

			return Result{RuledOut: e.r, Abandoned: e.exhausted}
		}

		if err := e.executeStep(ph); err != nil {
			return Result{RuledOut: e.r, Abandoned: true}
		}

		if goal(e.f.frontier, e.inv.frontier) {
			return Result{Found: true, MLSW: e.r + 1}
		}
		e.r++
	}

	return Result{RuledOut: e.r}
}

// goal reports whether some forward-frontier element (the image of the
// full state set under some candidate length-a prefix) is itself a
// subset of some inverse-frontier element (the preimage of a target
// singleton under some candidate length-b suffix): if so, that prefix
// followed by that suffix synchronizes in a+b steps (spec.md §4.H step
// 3). implicit.Reduce(reference=f, candidate=inv, false) drops every
// inv element that is a superset of some f element — exactly the
// f ⊆ inv relation we are testing for.
func goal(f, inv []bitset.Subset) bool {
	if len(f) == 0 || len(inv) == 0 {
		return false
	}
	candidates := append([]bitset.Subset(nil), inv...)
	survivors := implicit.Reduce(f, candidates, false)

	return survivors < len(candidates)
}

// decidePhase estimates the cost of every option via evnCost and picks
// the cheapest feasible one, preferring a visited-consulting phase when
// its cost does not exceed the no-visited alternative's (spec.md §4.H
// step 1).
func (e *engine) decidePhase() phase {
	remaining := e.p.UpperBound - e.r
	if remaining <= 0 {
		return phaseIDFSShortcut
	}

	costBFSVisited := e.stepCost(e.f, e.inv, true)
	costBFSNoVisited := e.stepCost(e.f, e.inv, false)
	costIBFSVisited := e.stepCost(e.inv, e.f, true)
	costIBFSNoVisited := e.stepCost(e.inv, e.f, false)
	costIDFS := e.idfsCost(remaining)

	if !e.feasible(e.f, costBFSVisited) {
		costBFSVisited = math.Inf(1)
	}
	if !e.feasible(e.f, costBFSNoVisited) {
		costBFSNoVisited = math.Inf(1)
	}
	if !e.feasible(e.inv, costIBFSVisited) {
		costIBFSVisited = math.Inf(1)
	}
	if !e.feasible(e.inv, costIBFSNoVisited) {
		costIBFSNoVisited = math.Inf(1)
	}

	if !e.p.Cfg.DFS {
		costIDFS = math.Inf(1)
	}
	if math.IsInf(costBFSVisited, 1) && math.IsInf(costBFSNoVisited, 1) &&
		math.IsInf(costIBFSVisited, 1) && math.IsInf(costIBFSNoVisited, 1) {
		return phaseIDFSShortcut
	}

	visitedBest := math.Min(costBFSVisited, costIBFSVisited)
	noVisitedBest := math.Min(costBFSNoVisited, costIBFSNoVisited)
	globalBest := math.Min(math.Min(visitedBest, noVisitedBest), costIDFS)

	switch {
	case globalBest == costIDFS && e.p.Cfg.DFSShortcut:
		return phaseIDFSShortcut
	case visitedBest <= noVisitedBest:
		if costBFSVisited <= costIBFSVisited {
			return phaseBFSVisited
		}

		return phaseIBFSVisited
	default:
		e.f.visited = nil
		e.inv.visited = nil
		if costBFSNoVisited <= costIBFSNoVisited {
			return phaseBFSNoVisited
		}

		return phaseIBFSNoVisited
	}
}

// stepCost estimates the cost of one BFS/IBFS step on side s against the
// opposing side other, using a visited reduction when withVisited is
// true: the effective branching K*(1 - reducedDup) applied to s's size,
// times the EVN probe cost against other's size/density, plus the EVN
// cost of reducing against s's own visited list (spec.md §4.H step 1).
func (e *engine) stepCost(s, other side, withVisited bool) float64 {
	branching := float64(e.p.K) * (1 - s.fracDup)
	m := float64(len(s.frontier)) * branching
	otherDensity := density(other.frontier, e.p.N)
	selfDensity := density(s.frontier, e.p.N)

	cost := m * evnCost(float64(len(other.frontier)), selfDensity, otherDensity, e.p.N)
	if withVisited && s.visited != nil {
		cost += m * evnCost(float64(len(s.visited)), selfDensity, density(s.visited, e.p.N), e.p.N)
	}

	return cost
}

// idfsCost projects the inverse-DFS shortcut's cost over the remaining
// depth budget: the sub-cost is scaled once by dfsWeight and multiplied by
// the geometric series (b^d - 1)/(b - 1) of the branching factor b = K over
// the remaining depth d (spec.md §4.H step 1 "Remaining-depth projection").
func (e *engine) idfsCost(remaining int) float64 {
	b := float64(e.p.K)
	base := float64(len(e.inv.frontier)) * b
	if b <= 1 {
		return base * float64(remaining) * dfsWeight
	}
	geometric := (math.Pow(b, float64(remaining)) - 1) / (b - 1)

	return base * dfsWeight * geometric
}

// feasible reports whether the projected next-frontier allocation for
// side s fits the remaining budget.
func (e *engine) feasible(s side, cost float64) bool {
	if math.IsInf(cost, 1) {
		return false
	}
	projected := int64(len(s.frontier)) * int64(e.p.K) * int64(bitset.NumSlices8(e.p.N)) * 8

	return e.budget.Remaining() >= projected
}

// executeStep runs one BFS or inverse-BFS step, mutating the chosen
// side's frontier (and visited list, if the phase consults/updates one).
func (e *engine) executeStep(ph phase) error {
	switch ph {
	case phaseBFSVisited:
		return e.step(&e.f, true)
	case phaseBFSNoVisited:
		return e.step(&e.f, false)
	case phaseIBFSVisited:
		return e.step(&e.inv, true)
	case phaseIBFSNoVisited:
		return e.step(&e.inv, false)
	}

	return nil
}

// step advances side s by one BFS/IBFS round. Minimal-element reduction
// (Eliminate/ReduceAgainst, which both discard proper supersets and keep
// minimal elements) is correct as-is for the forward side, since forward
// application is ⊆-monotonic and the goal test f ⊆ inv is won by a
// *smaller* forward element. The inverse side needs the opposite: since
// inverse application is also ⊆-monotonic and the same goal test is won
// by a *larger* inverse element (anything a smaller one could ever match,
// a bigger one matches too, plus more), the inverse side must discard
// proper subsets and keep maximal elements instead. spec.md §4.H step 2
// gets this by "treating inverses as their complements": complementing
// every inverse-side subset turns "keep maximal" into "keep minimal" (the
// same relation Eliminate/ReduceAgainst already implement), so the
// inverse side runs both calls over complemented subsets, then
// complements the survivors back.
func (e *engine) step(s *side, withVisited bool) error {
	delta := e.p.Forward
	inverseSide := s == &e.inv
	if inverseSide {
		delta = e.p.Inverse
	}

	next := make([]bitset.Subset, 0, len(s.frontier)*e.p.K)
	for _, set := range s.frontier {
		for letter := 0; letter < e.p.K; letter++ {
			next = append(next, delta(letter, set))
		}
	}

	size := int64(len(next)) * int64(bitset.NumSlices8(e.p.N)) * 8
	if err := e.budget.Reserve(size); err != nil {
		return err
	}

	before := len(next)
	next = sortDedup(next)
	s.fracDup = fraction(before, len(next))

	work := next
	if inverseSide {
		work = complemented(next)
	}

	beforeSelf := len(work)
	nSelf := implicit.Eliminate(work)
	work = work[:nSelf]
	s.fracSelf = fraction(beforeSelf, len(work))

	if withVisited && s.visited != nil {
		visited := s.visited
		if inverseSide {
			visited = complemented(s.visited)
		}
		beforeVis := len(work)
		nVis := packed.ReduceAgainst(visited, work, false)
		work = work[:nVis]
		s.fracVisited = fraction(beforeVis, len(work))

		if inverseSide {
			s.visited = complemented(mergeVisited(visited, work))
		} else {
			s.visited = mergeVisited(s.visited, work)
		}
	}

	if inverseSide {
		work = complemented(work)
	}
	s.frontier = work

	return nil
}

// complemented returns a fresh slice holding the complement of every
// element of list, preserving order.
func complemented(list []bitset.Subset) []bitset.Subset {
	out := make([]bitset.Subset, len(list))
	for i, set := range list {
		out[i] = set.Complement()
	}

	return out
}

func mergeVisited(visited, fresh []bitset.Subset) []bitset.Subset {
	combined := append(append([]bitset.Subset(nil), visited...), fresh...)
	n := implicit.Eliminate(combined)

	return combined[:n]
}

func fraction(before, after int) float64 {
	if before == 0 {
		return 0
	}

	return float64(before-after) / float64(before)
}

func sortDedup(list []bitset.Subset) []bitset.Subset {
	sort.Slice(list, func(i, j int) bool { return list[i].Less(list[j]) })
	n := 0
	for i, s := range list {
		if i == 0 || !s.Equal(list[n-1]) {
			list[n] = s
			n++
		}
	}

	return list[:n]
}

// density approximates a subset list's "fill" q/p term in the EVN formula
// as the mean fraction of set bits across the list, relative to n.
func density(list []bitset.Subset, n int) float64 {
	if len(list) == 0 || n == 0 {
		return 0
	}
	total := 0
	for _, s := range list {
		total += s.PopCount()
	}
	d := float64(total) / (float64(len(list)) * float64(n))
	if d <= 0 {
		d = 1.0 / float64(n)
	}
	if d >= 1 {
		d = 1 - 1.0/float64(n)
	}

	return d
}

// evnCost implements the trie-probe cost model of spec.md §4.H:
// ((1+p)/p + 1/(q-p*q)) * m^(log(1+p)/log((1+p)/(1+p*q-q))), clamped to
// m*n whenever the analytic estimate is negative, NaN, or exceeds that
// trivial upper bound (spec.md §9 Open Questions: "preserve this clamp").
func evnCost(m, p, q float64, n int) float64 {
	clamp := m * float64(n)
	if m <= 0 {
		return 0
	}
	if p <= 0 || q <= 0 || q >= 1 || p >= 1 {
		return clamp
	}

	denomInner := q - p*q
	if denomInner <= 0 {
		return clamp
	}
	coeff := (1+p)/p + 1/denomInner

	logNum := math.Log(1 + p)
	logDenBase := (1 + p) / (1 + p*q - q)
	if logDenBase <= 0 || logDenBase == 1 {
		return clamp
	}
	logDen := math.Log(logDenBase)
	if logDen == 0 {
		return clamp
	}
	exponent := logNum / logDen

	est := coeff * math.Pow(m, exponent)
	if math.IsNaN(est) || math.IsInf(est, 0) || est < 0 || est > clamp {
		return clamp
	}

	return est
}

// runIDFSShortcut runs the bounded-depth inverse-DFS fallback of spec.md
// §4.I against the current forward frontier, returning the depth at
// which a match was found.
func (e *engine) runIDFSShortcut() (depth int, ok bool) {
	remaining := e.p.UpperBound - e.r
	if remaining <= 0 {
		return 0, false
	}
	trie := packed.Build(e.f.frontier)
	perm := graphutil.FrequencyPermutation(e.p.N, func(state int) int {
		count := 0
		for _, s := range e.f.frontier {
			if s.Bit(state) == 1 {
				count++
			}
		}

		return count
	})
	_ = perm // state relabeling is an orthogonal optimization; the DFS
	// below probes the trie directly and does not require relabeled
	// bitsets to stay correct, only to be faster.

	minList := e.p.Cfg.DFSMinListSize
	frontier := e.inv.frontier
	for d := 1; d <= remaining; d++ {
		next := make([]bitset.Subset, 0, len(frontier)*e.p.K)
		for _, set := range frontier {
			for letter := 0; letter < e.p.K; letter++ {
				next = append(next, e.p.Inverse(letter, set))
			}
		}
		next = sortDedup(next)
		if d%2 == 0 || d <= 3 {
			next = dedupOnly(next)
		}

		for _, cand := range next {
			if trie.ContainsSubsetOf(cand, false) {
				return d, true
			}
		}

		if len(next) > minList*2 {
			size := e.estimateListBudget(remaining - d)
			if size > 0 && len(next) > size {
				next = next[:size]
			}
		}

		size := int64(len(next)) * int64(bitset.NumSlices8(e.p.N)) * 8
		if err := e.budget.Reserve(size); err != nil {
			if e.p.Cfg.StrictMemoryLimit {
				e.exhausted = true
				return 0, false
			}
			if len(next) > minList {
				next = next[:minList]
			}
		}

		frontier = next
		if len(frontier) == 0 {
			return 0, false
		}
	}

	return 0, false
}

func dedupOnly(list []bitset.Subset) []bitset.Subset {
	return sortDedup(list)
}

// estimateListBudget computes the permitted in-memory list size
// L = (M - fixed)/((K+1)*(U-r)*sizeof(Subset)) spec.md §4.I names; fixed
// overhead is approximated as zero since the allocator tracks live bytes
// directly rather than a separate fixed reservation.
func (e *engine) estimateListBudget(remainingDepth int) int {
	if remainingDepth <= 0 {
		return 0
	}
	perElem := int64(bitset.NumSlices8(e.p.N)) * 8
	denom := int64(e.p.K+1) * int64(remainingDepth) * perElem
	if denom <= 0 {
		return 0
	}

	return int(e.budget.Remaining() / denom)
}
