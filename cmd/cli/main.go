package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/uniexams/examtimetabling/pkg/csp"
	"github.com/uniexams/examtimetabling/pkg/model"
)

// examWarningThreshold is the number of exams per student above which the
// report warns the examination office.
const examWarningThreshold = 3

// Exit codes for single-instance runs, following solver conventions.
const (
	exitSolved       = 10
	exitVerifyFailed = 15
	exitInfeasible   = 20
	exitUnknown      = 30
)

var (
	workers int
	timeout time.Duration
	outFile string
	debug   bool
)

func main() {
	command := &cobra.Command{
		Use:   "examtime <path>...",
		Short: "Assign exams to rooms and timeslots",
		Long: `examtime reads exam-timetabling instances and assigns every exam a room and
a timeslot so that rooms are never overfilled or double-booked and no student
sits exams in the same or adjacent timeslots.

Paths may be instance files (".txt" attribute format or ".json") or
directories, which expand to the instance files they contain. When a single
instance is given the process exits with 10 (satisfied), 20 (unsatisfiable),
30 (time budget exhausted) or 15 (verification failed).`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		PreRun: func(cmd *cobra.Command, args []string) {
			if debug {
				log.SetLevel(log.DebugLevel)
			}
		},
		RunE: run,
	}
	command.Flags().IntVar(&workers, "workers", 1, "parallel search workers; 1 keeps the deterministic sequential search")
	command.Flags().DurationVar(&timeout, "timeout", 0, "time budget per instance; 0 disables it")
	command.Flags().StringVar(&outFile, "out", "", "write the report to this file instead of the standard output")
	command.Flags().BoolVar(&debug, "debug", false, "enable debug logging")

	if err := command.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if workers < 1 {
		return errors.Errorf("workers must be at least 1: %d", workers)
	}

	files, err := collectInstanceFiles(args)
	if err != nil {
		return err
	}

	var report strings.Builder
	start := time.Now()
	lastCode := 0
	for _, file := range files {
		code, err := solveInstance(&report, file)
		if err != nil {
			return err
		}
		lastCode = code
	}
	fmt.Fprintf(&report, "Elapsed time: %d milliseconds\n", time.Since(start).Milliseconds())

	if outFile == "" {
		fmt.Print(report.String())
	} else if err := os.WriteFile(outFile, []byte(report.String()), 0666); err != nil {
		return errors.Wrap(err, "cannot write the output file")
	}

	// Exit codes only distinguish outcomes for a single instance
	if len(files) == 1 {
		os.Exit(lastCode)
	}
	return nil
}

func collectInstanceFiles(paths []string) ([]string, error) {
	files := make([]string, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, errors.Wrap(err, "cannot read instance path")
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, errors.Wrap(err, "cannot read instance directory")
		}
		expanded := lo.FilterMap(entries, func(entry os.DirEntry, _ int) (string, bool) {
			if entry.IsDir() || !instanceFile(entry.Name()) {
				return "", false
			}
			return filepath.Join(path, entry.Name()), true
		})
		slices.Sort(expanded)
		files = append(files, expanded...)
	}
	if len(files) == 0 {
		return nil, errors.New("no instance files found")
	}
	return files, nil
}

func instanceFile(name string) bool {
	return strings.HasSuffix(name, ".txt") || strings.HasSuffix(name, ".json")
}

func solveInstance(report *strings.Builder, file string) (int, error) {
	//** Load
	var (
		instance *model.Instance
		err      error
	)
	if strings.HasSuffix(file, ".json") {
		instance, err = model.InstanceFromJson(file)
	} else {
		instance, err = model.InstanceFromFile(file)
	}
	if err != nil {
		return 0, errors.Wrapf(err, "cannot load instance %q", file)
	}

	//** Solve
	timetabler := model.NewTimetabler(log.StandardLogger())
	if workers > 1 {
		timetabler = model.NewParallelTimetabler(log.StandardLogger(), workers)
	}
	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := timetabler.Build(ctx, instance)
	if err != nil {
		return 0, errors.Wrapf(err, "cannot solve instance %q", file)
	}
	elapsed := time.Since(start)

	//** Report
	fmt.Fprintf(report, "%v: ", file)
	code := renderResult(report, result, instance, timetabler)
	fmt.Fprintf(report, "Candidates: %d\n", result.Candidates)
	fmt.Fprintf(report, "Conflict edges: %d\n", result.ConflictEdges)
	fmt.Fprintf(report, "Time taken to solve the instance: %d ms\n\n", elapsed.Milliseconds())
	return code, nil
}

func renderResult(report *strings.Builder, result *model.Result, instance *model.Instance, timetabler model.Timetabler) int {
	switch result.Status {
	case csp.Infeasible:
		report.WriteString("Unsatisfied\n")
		return exitInfeasible
	case csp.Unknown:
		report.WriteString("Unknown: time budget exhausted before a verdict\n")
		return exitUnknown
	}

	report.WriteString("Satisfied\n")
	if !timetabler.Verify(result.Timetable, instance) {
		report.WriteString("Verification failed: the timetable violates the instance constraints\n")
		return exitVerifyFailed
	}

	report.WriteString("――――――――――――Exam Timetable――――――――――――--\n")
	for _, entry := range result.Timetable {
		fmt.Fprintf(report, "Exam: %d | Room: %d | Slot: %d | Students: %d\n", entry.Exam, entry.Room, entry.Slot, entry.Students)
	}
	report.WriteString("――――――――――――――――――――――――----------------\n")

	report.WriteString("―――――――――――Individual Timetables (Exam, Slot, Room)―――――――――――\n")
	for _, schedule := range model.StudentSchedules(result.Timetable, instance) {
		if len(schedule.Entries) == 0 {
			fmt.Fprintf(report, "Student %d: Student is not scheduled for any exam, please check with the student office.\n", schedule.Student)
			continue
		}
		formatted := lo.Map(schedule.Entries, func(entry model.Entry, _ int) string {
			return fmt.Sprintf("(%d, %d, %d)", entry.Exam, entry.Slot, entry.Room)
		})
		fmt.Fprintf(report, "Student %d: %v\n", schedule.Student, strings.Join(formatted, " | "))
	}

	if overloaded := model.OverloadedStudents(instance, examWarningThreshold); len(overloaded) > 0 {
		formatted := lo.Map(overloaded, func(student int, _ int) string { return strconv.Itoa(student) })
		fmt.Fprintf(report, "Warning: Student(s) %v are scheduled for more than %d exams!\n", strings.Join(formatted, ", "), examWarningThreshold)
	}
	report.WriteString("――――――――――――――――――――――――--------------------------------------\n")
	return exitSolved
}
