package csp

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// errSolutionFound cancels the sibling subtrees once a worker has won.
var errSolutionFound = errors.New("solution found")

// SolveParallel splits the search at the root choice point: the first
// variable's candidates are dealt to up to workers goroutines, each exploring
// its subtree on a private copy of the state. The first solution found wins
// and cancels the rest, so the returned solution may differ from run to run;
// the status never does. Use Solve when reproducible output matters.
func (solver *Solver) SolveParallel(ctx context.Context, workers int) (Solution, Status) {
	if workers <= 1 {
		return solver.Solve(ctx)
	}
	if solver.prob.Vars == 0 {
		return Solution{}, Solved
	}
	if !solver.matchable() {
		solver.log().Debug("no complete variable-value matching exists")
		return nil, Infeasible
	}

	v := solver.selectVar()
	candidates := solver.domains[v].values()
	solver.log().WithFields(logrus.Fields{
		"variable": v,
		"subtrees": len(candidates),
		"workers":  workers,
	}).Debug("starting parallel search")

	var (
		found    atomic.Bool
		unknown  atomic.Bool
		mu       sync.Mutex
		solution Solution
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for _, val := range candidates {
		val := val // capture per iteration for the goroutine below
		group.Go(func() error {
			switch {
			case found.Load():
				return nil
			case groupCtx.Err() != nil:
				unknown.Store(true) // Subtree never explored before cancellation
				return nil
			}

			worker := solver.clone()
			worker.assign(v, val)
			_, emptied := worker.propagate(v, val)

			status := Infeasible
			if len(emptied) == 0 {
				status = worker.search(groupCtx)
			} else {
				worker.Stats.Conflicts++
			}

			mu.Lock()
			defer mu.Unlock()
			solver.Stats.merge(worker.Stats)
			if status == Unknown {
				unknown.Store(true)
			}
			if status == Solved && !found.Load() {
				found.Store(true)
				solution = make(Solution, len(worker.assignment))
				copy(solution, worker.assignment)
				return errSolutionFound // Cancel the remaining subtrees
			}
			return nil
		})
	}
	_ = group.Wait()

	solver.log().WithFields(logrus.Fields{
		"decisions": solver.Stats.Decisions,
		"conflicts": solver.Stats.Conflicts,
		"removals":  solver.Stats.Removals,
	}).Debug("parallel search finished")

	// A subtree cut short by cancellation downgrades an exhausted search to
	// Unknown; Infeasible needs every subtree refuted.
	switch {
	case found.Load():
		return solution, Solved
	case unknown.Load():
		return nil, Unknown
	default:
		return nil, Infeasible
	}
}
