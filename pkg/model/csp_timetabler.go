package model

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/uniexams/examtimetabling/pkg/csp"
)

type cspTimetabler struct {
	logger  logrus.FieldLogger
	workers int
}

func (timetabler *cspTimetabler) Build(ctx context.Context, instance *Instance) (*Result, error) {
	//** Translate the instance into solver terms
	need := make([]int, instance.Exams)
	for exam := range need {
		need[exam] = instance.StudentCount(exam)
	}
	problem := &csp.Problem{
		Vars:       instance.Exams,
		Rooms:      instance.Rooms,
		Slots:      instance.Slots,
		Need:       need,
		Capacities: instance.Capacities,
		Conflicts:  instance.Conflicts,
	}

	solver, err := csp.NewSolver(problem)
	if err != nil {
		return nil, fmt.Errorf("cannot initialize solver: %w", err)
	}
	solver.Logger = timetabler.logger

	result := &Result{
		Candidates:    solver.Candidates(),
		ConflictEdges: conflictEdges(instance.Conflicts),
	}

	//** Solve
	var solution csp.Solution
	if timetabler.workers > 1 {
		solution, result.Status = solver.SolveParallel(ctx, timetabler.workers)
	} else {
		solution, result.Status = solver.Solve(ctx)
	}
	result.Stats = solver.Stats
	if result.Status != csp.Solved {
		return result, nil
	}

	//** Decode the assignment into timetable entries
	timetable := make(Timetable, 0, len(solution))
	for exam, value := range solution {
		room, slot := problem.RoomSlot(value)
		timetable = append(timetable, Entry{
			Exam:     exam,
			Room:     room,
			Slot:     slot,
			Students: instance.StudentCount(exam),
		})
	}
	result.Timetable = timetable
	return result, nil
}

func (timetabler *cspTimetabler) Verify(timetable Timetable, instance *Instance) bool {
	return verify(timetable, instance)
}
