package model

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/uniexams/examtimetabling/pkg/csp"
)

// Entry is one scheduled exam.
type Entry struct {
	Exam     int
	Room     int
	Slot     int
	Students int
}

// Timetable lists every exam's assignment in ascending exam order.
type Timetable []Entry

// Result is the outcome of one Build.
type Result struct {
	Status csp.Status
	// Timetable is nil unless Status is csp.Solved.
	Timetable Timetable
	// Candidates counts the (room, slot) pairs left across all candidate sets
	// after the capacity filter, the size of the initial search space.
	Candidates int
	// ConflictEdges counts the exam pairs sharing at least one student.
	ConflictEdges int
	Stats         csp.Stats
}

// Timetabler builds exam timetables and verifies their consistency.
type Timetabler interface {
	// Build solves the instance. A non-Solved status with a nil error is a
	// legitimate outcome, not a failure; errors report instances the solver
	// cannot even start on.
	Build(ctx context.Context, instance *Instance) (*Result, error)
	// Verify re-checks a finished timetable against the instance's
	// constraints, independently of how it was produced.
	Verify(timetable Timetable, instance *Instance) bool
}

// NewTimetabler returns the sequential timetabler, whose builds are
// deterministic. A nil logger disables tracing.
func NewTimetabler(logger logrus.FieldLogger) Timetabler {
	return &cspTimetabler{logger: logger, workers: 1}
}

// NewParallelTimetabler spreads the search over up to workers goroutines. The
// produced timetable may vary between runs; the status never does.
func NewParallelTimetabler(logger logrus.FieldLogger, workers int) Timetabler {
	return &cspTimetabler{logger: logger, workers: workers}
}
