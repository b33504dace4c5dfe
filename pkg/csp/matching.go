package csp

import (
	"fmt"

	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/samber/lo"
)

// matchable checks a necessary feasibility condition before the search
// starts: since two exams can never share a (room, slot) pair, a satisfying
// assignment matches every variable to a distinct value. When no complete
// matching exists over the initial candidate sets the instance is infeasible
// and the search can be skipped entirely.
func (solver *Solver) matchable() bool {
	// Build neighbors predicate based on the initial candidate sets
	neighbors := func(variableAny any, valueAny any) (bool, error) {
		variable := variableAny.(Var)
		value := valueAny.(Value)
		return solver.domains[variable].has(value), nil
	}

	// Transform variables and values to slices of any
	variablesAny := lo.Map(lo.Range(solver.prob.Vars), func(v int, _ int) any { return Var(v) })
	valuesAny := lo.Map(lo.Range(solver.prob.NumValues()), func(val int, _ int) any { return Value(val) })

	graph, err := bipartitegraph.NewBipartiteGraph(variablesAny, valuesAny, neighbors)
	if err != nil {
		panic(fmt.Sprintf("csp: cannot build matching graph: %v", err))
	}

	matching := graph.LargestMatching()
	return len(matching) == solver.prob.Vars
}
