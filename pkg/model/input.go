package model

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strconv"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// ErrInvalidInstance reports malformed input: negative dimensions or
// capacities, tables inconsistent with the declared counts, or registrations
// referencing unknown exams or students.
var ErrInvalidInstance = errors.New("invalid instance")

// RawInstance is the unvalidated shape read by the loaders. Registrations
// holds (exam, student) pairs; duplicates are tolerated and collapse into one.
type RawInstance struct {
	Students      int
	Exams         int
	Slots         int
	Rooms         int
	Capacities    []int
	Registrations [][2]int
}

// Instance is a validated exam-timetabling instance. NewInstance and the
// loaders are the only constructors; the derived tables must not be modified
// afterwards.
type Instance struct {
	Students int
	Exams    int
	Slots    int
	Rooms    int

	Capacities []int
	Conflicts  [][]bool // Conflicts' coordinate (i, j) = true if and only if exam_i and exam_j have at least one student in common (i.e. it represents an undirected graph where an edge indicates that two exams share a student). For completeness we assume that Conflicts[i][i] = true for all i

	studentsOf [][]int
	examsOf    [][]int
}

// NewInstance validates a raw instance and derives the registration indexes
// and the conflict graph.
func NewInstance(raw RawInstance) (*Instance, error) {
	//** Validate dimensions
	if raw.Students < 0 || raw.Exams < 0 || raw.Slots < 0 || raw.Rooms < 0 {
		return nil, errors.Wrapf(ErrInvalidInstance, "negative dimensions: %d students, %d exams, %d slots, %d rooms", raw.Students, raw.Exams, raw.Slots, raw.Rooms)
	}
	if len(raw.Capacities) != raw.Rooms {
		return nil, errors.Wrapf(ErrInvalidInstance, "capacity table has %d entries for %d rooms", len(raw.Capacities), raw.Rooms)
	}
	for room, capacity := range raw.Capacities {
		if capacity < 0 {
			return nil, errors.Wrapf(ErrInvalidInstance, "room %d has negative capacity %d", room, capacity)
		}
	}

	//** Validate and index registrations
	studentsOf := make([][]int, raw.Exams)
	examsOf := make([][]int, raw.Students)
	seen := make(map[[2]int]bool, len(raw.Registrations))
	for _, registration := range raw.Registrations {
		exam, student := registration[0], registration[1]
		if exam < 0 || exam >= raw.Exams {
			return nil, errors.Wrapf(ErrInvalidInstance, "registration references exam %d out of %d", exam, raw.Exams)
		}
		if student < 0 || student >= raw.Students {
			return nil, errors.Wrapf(ErrInvalidInstance, "registration references student %d out of %d", student, raw.Students)
		}
		// Registering twice for the same exam is idempotent
		if seen[registration] {
			continue
		}
		seen[registration] = true
		studentsOf[exam] = append(studentsOf[exam], student)
		examsOf[student] = append(examsOf[student], exam)
	}
	for _, students := range studentsOf {
		slices.Sort(students)
	}
	for _, exams := range examsOf {
		slices.Sort(exams)
	}

	return &Instance{
		Students:   raw.Students,
		Exams:      raw.Exams,
		Slots:      raw.Slots,
		Rooms:      raw.Rooms,
		Capacities: raw.Capacities,
		Conflicts:  buildConflictsGraph(raw.Exams, studentsOf),
		studentsOf: studentsOf,
		examsOf:    examsOf,
	}, nil
}

func buildConflictsGraph(exams int, studentsOf [][]int) [][]bool {
	conflicts := make([][]bool, exams)
	for i := 0; i < exams; i++ {
		conflicts[i] = make([]bool, exams)
	}

	for i := 0; i < exams; i++ {
		conflicts[i][i] = true // For completeness we assume that conflicts[i][i] = true for all i
		for j := i + 1; j < exams; j++ {
			// Verify exam_i and exam_j have a student in common
			if lo.SomeBy(studentsOf[i], func(student int) bool {
				return slices.Contains(studentsOf[j], student)
			}) {
				conflicts[i][j] = true
				conflicts[j][i] = true
			}
		}
	}

	return conflicts
}

// Capacity returns the number of seats in a room.
func (instance *Instance) Capacity(room int) int {
	return instance.Capacities[room]
}

// StudentsOf returns the students sitting an exam, ascending.
func (instance *Instance) StudentsOf(exam int) []int {
	return instance.studentsOf[exam]
}

// ExamsOf returns the exams a student is registered for, ascending.
func (instance *Instance) ExamsOf(student int) []int {
	return instance.examsOf[student]
}

// StudentCount is the seat demand of an exam, the number of students sitting
// it.
func (instance *Instance) StudentCount(exam int) int {
	return len(instance.studentsOf[exam])
}

// Registrations counts the distinct (exam, student) pairs.
func (instance *Instance) Registrations() int {
	return lo.SumBy(instance.studentsOf, func(students []int) int { return len(students) })
}

var registrationPattern = regexp.MustCompile(`^\s*(\d+)\s+(\d+)\s*$`)

// InstanceFromFile reads the plain-text instance format: the four dimension
// attributes, one capacity attribute per room, then one "exam student"
// registration pair per line.
func InstanceFromFile(file string) (*Instance, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, errors.Wrap(err, "cannot open instance file")
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	readAttribute := func(name string) (int, error) {
		if !scanner.Scan() {
			return 0, errors.Wrapf(ErrInvalidInstance, "missing the %q attribute", name)
		}
		line := scanner.Text()
		pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(name) + `:\s*(\d+)\s*$`)
		match := pattern.FindStringSubmatch(line)
		if match == nil {
			return 0, errors.Wrapf(ErrInvalidInstance, "cannot parse line %q: expected the %q attribute", line, name)
		}
		value, err := strconv.Atoi(match[1])
		if err != nil {
			return 0, errors.Wrapf(ErrInvalidInstance, "attribute %q value %q is out of range", name, match[1])
		}
		return value, nil
	}

	raw := RawInstance{}
	if raw.Students, err = readAttribute("Number of students"); err != nil {
		return nil, err
	}
	if raw.Exams, err = readAttribute("Number of exams"); err != nil {
		return nil, err
	}
	if raw.Slots, err = readAttribute("Number of slots"); err != nil {
		return nil, err
	}
	if raw.Rooms, err = readAttribute("Number of rooms"); err != nil {
		return nil, err
	}
	for room := 0; room < raw.Rooms; room++ {
		capacity, err := readAttribute(fmt.Sprintf("Room %d capacity", room))
		if err != nil {
			return nil, err
		}
		raw.Capacities = append(raw.Capacities, capacity)
	}

	//** Registration pairs until the end of the file
	for scanner.Scan() {
		line := scanner.Text()
		match := registrationPattern.FindStringSubmatch(line)
		if match == nil {
			return nil, errors.Wrapf(ErrInvalidInstance, "cannot parse registration line %q", line)
		}
		exam, err := strconv.Atoi(match[1])
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidInstance, "registration line %q is out of range", line)
		}
		student, err := strconv.Atoi(match[2])
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidInstance, "registration line %q is out of range", line)
		}
		raw.Registrations = append(raw.Registrations, [2]int{exam, student})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "cannot read instance file")
	}

	return NewInstance(raw)
}

// InstanceFromJson reads a JSON instance carrying the RawInstance fields.
func InstanceFromJson(file string) (*Instance, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read instance file")
	}
	var inputJson map[string]any
	if err := json.Unmarshal(bytes, &inputJson); err != nil {
		return nil, errors.Wrap(err, "cannot parse instance json")
	}

	var raw RawInstance
	if err := mapstructure.Decode(inputJson, &raw); err != nil {
		return nil, errors.Wrap(err, "cannot decode instance json")
	}
	return NewInstance(raw)
}
