package csp

import (
	"context"
	"io"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// Stats counts the work performed by a solve. After SolveParallel they
// aggregate the work of every subtree worker.
type Stats struct {
	Decisions int // candidate values tentatively assigned
	Conflicts int // propagations that emptied some candidate set
	Removals  int // individual candidates pruned by propagation
}

func (s *Stats) merge(other Stats) {
	s.Decisions += other.Decisions
	s.Conflicts += other.Conflicts
	s.Removals += other.Removals
}

// removal records one pruned candidate so backtracking can restore it.
type removal struct {
	v   Var
	val Value
}

// Solver owns the mutable search state for one problem. It is good for a
// single Solve or SolveParallel call, since the search mutates the candidate
// sets in place and does not reset them.
type Solver struct {
	// Logger, when set, receives debug traces of the search.
	Logger logrus.FieldLogger
	// Stats is filled in as the search runs.
	Stats Stats

	prob       *Problem
	domains    []*domain
	assignment []Value
	unassigned int

	// bands[slot] masks every (room, slot') value with |slot' - slot| <= 1,
	// the candidates a conflicting exam loses in one propagation step.
	bands [][]uint64
}

// NewSolver prepares the search state for one problem. Room capacity is a
// static constraint, so rooms too small for an exam are filtered out of its
// candidate set up front rather than re-checked during the search.
func NewSolver(problem *Problem) (*Solver, error) {
	if err := problem.Validate(); err != nil {
		return nil, err
	}

	solver := &Solver{
		prob:       problem,
		assignment: make([]Value, problem.Vars),
		domains:    make([]*domain, problem.Vars),
		unassigned: problem.Vars,
	}
	for v := range solver.assignment {
		solver.assignment[v] = None
	}

	//** Initial candidate sets: every (room, slot) pair whose room is large enough
	for v := range solver.domains {
		d := newDomain(problem.NumValues())
		for room := 0; room < problem.Rooms; room++ {
			if problem.Capacities[room] < problem.Need[v] {
				continue
			}
			for slot := 0; slot < problem.Slots; slot++ {
				d.add(problem.Value(room, slot))
			}
		}
		solver.domains[v] = d
	}

	solver.buildSlotBands()
	return solver, nil
}

// buildSlotBands precomputes, per slot, the bitmask of every value in the
// adjacent slot band, so propagation clears a conflicting exam's candidates
// with a few word operations.
func (solver *Solver) buildSlotBands() {
	words := (solver.prob.NumValues() + wordBits - 1) / wordBits

	slotMasks := make([][]uint64, solver.prob.Slots)
	for slot := range slotMasks {
		mask := make([]uint64, words)
		for room := 0; room < solver.prob.Rooms; room++ {
			value := solver.prob.Value(room, slot)
			mask[int(value)/wordBits] |= 1 << (uint(value) % wordBits)
		}
		slotMasks[slot] = mask
	}

	solver.bands = make([][]uint64, solver.prob.Slots)
	for slot := range solver.bands {
		band := make([]uint64, words)
		for adjacent := slot - 1; adjacent <= slot+1; adjacent++ {
			if adjacent < 0 || adjacent >= solver.prob.Slots {
				continue
			}
			for i, word := range slotMasks[adjacent] {
				band[i] |= word
			}
		}
		solver.bands[slot] = band
	}
}

// Candidates returns how many (room, slot) pairs remain across all candidate
// sets. Right after NewSolver it measures the search space left by the
// capacity filter.
func (solver *Solver) Candidates() int {
	return lo.SumBy(solver.domains, func(d *domain) int { return d.size })
}

// Solve runs the sequential backtracking search. The solution is non-nil only
// when the status is Solved. Sequential search is deterministic: the same
// problem always produces the same solution.
func (solver *Solver) Solve(ctx context.Context) (Solution, Status) {
	solver.log().WithFields(logrus.Fields{
		"variables":  solver.prob.Vars,
		"values":     solver.prob.NumValues(),
		"candidates": solver.Candidates(),
	}).Debug("starting search")

	if solver.prob.Vars > 0 && !solver.matchable() {
		solver.log().Debug("no complete variable-value matching exists")
		return nil, Infeasible
	}

	status := solver.search(ctx)
	solver.log().WithFields(logrus.Fields{
		"status":    status.String(),
		"decisions": solver.Stats.Decisions,
		"conflicts": solver.Stats.Conflicts,
		"removals":  solver.Stats.Removals,
	}).Debug("search finished")

	if status != Solved {
		return nil, status
	}
	solution := make(Solution, len(solver.assignment))
	copy(solution, solver.assignment)
	return solution, Solved
}

// search explores the subtree under the current partial assignment. It
// returns Solved as soon as every variable is assigned, Infeasible once every
// candidate of the selected variable has been tried and refuted, or Unknown
// when the context expires. On Infeasible the state is restored exactly as it
// was on entry; on Solved the assignment is left complete for extraction.
func (solver *Solver) search(ctx context.Context) Status {
	// Cancellation is polled once per variable selection.
	if ctx.Err() != nil {
		return Unknown
	}
	if solver.unassigned == 0 {
		return Solved
	}

	v := solver.selectVar()
	for _, val := range solver.domains[v].values() {
		solver.assign(v, val)
		removals, emptied := solver.propagate(v, val)

		if len(emptied) == 0 {
			if status := solver.search(ctx); status != Infeasible {
				return status
			}
		} else {
			solver.Stats.Conflicts++
		}

		solver.undo(removals)
		solver.unassign(v)
	}
	return Infeasible
}

// selectVar picks the unassigned variable with the fewest remaining
// candidates; ties go to the lowest index. At least one variable must be
// unassigned.
func (solver *Solver) selectVar() Var {
	best, bestSize := Var(-1), int(^uint(0)>>1)
	for v := 0; v < solver.prob.Vars; v++ {
		if solver.assignment[v] != None {
			continue
		}
		if size := solver.domains[v].size; size < bestSize {
			best, bestSize = Var(v), size
		}
	}
	return best
}

func (solver *Solver) assign(v Var, val Value) {
	if solver.assignment[v] != None {
		panic("csp: assigning an already assigned variable")
	}
	solver.assignment[v] = val
	solver.unassigned--
	solver.Stats.Decisions++
}

func (solver *Solver) unassign(v Var) {
	if solver.assignment[v] == None {
		panic("csp: unassigning an unassigned variable")
	}
	solver.assignment[v] = None
	solver.unassigned++
}

// propagate applies forward checking for the tentative assignment v=val.
// Variables in conflict with v lose every candidate in the adjacent slot
// band; every other unassigned variable loses val itself, since two exams can
// never share a (room, slot) pair. It returns the removals performed, for
// undo, and the variables left without candidates, a failure signal.
func (solver *Solver) propagate(v Var, val Value) (removals []removal, emptied []Var) {
	_, slot := solver.prob.RoomSlot(val)
	band := solver.bands[slot]
	conflicting := solver.prob.Conflicts[v]

	for u := range solver.domains {
		if Var(u) == v || solver.assignment[u] != None {
			continue
		}
		d := solver.domains[u]
		if conflicting[u] {
			d.removeMasked(band, func(pruned Value) {
				removals = append(removals, removal{Var(u), pruned})
			})
		} else if d.remove(val) {
			removals = append(removals, removal{Var(u), val})
		}
		if d.empty() {
			emptied = append(emptied, Var(u))
		}
	}

	solver.Stats.Removals += len(removals)
	return removals, emptied
}

// undo restores one propagation's removals in reverse order.
func (solver *Solver) undo(removals []removal) {
	for i := len(removals) - 1; i >= 0; i-- {
		solver.domains[removals[i].v].restore(removals[i].val)
	}
}

// clone copies the solver's mutable state. The problem and slot bands are
// shared read-only.
func (solver *Solver) clone() *Solver {
	worker := &Solver{
		Logger:     solver.Logger,
		prob:       solver.prob,
		bands:      solver.bands,
		unassigned: solver.unassigned,
		assignment: make([]Value, len(solver.assignment)),
		domains:    make([]*domain, len(solver.domains)),
	}
	copy(worker.assignment, solver.assignment)
	for i, d := range solver.domains {
		worker.domains[i] = d.clone()
	}
	return worker
}

var noopLogger = func() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}()

func (solver *Solver) log() logrus.FieldLogger {
	if solver.Logger != nil {
		return solver.Logger
	}
	return noopLogger
}
