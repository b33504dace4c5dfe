package model

import (
	"github.com/samber/lo"
)

// verify re-checks the four constraint families on a finished timetable:
// every exam scheduled exactly once, room capacity, no shared (room, slot)
// pair, and at least one free slot between exams sharing a student.
func verify(timetable Timetable, instance *Instance) bool {
	if len(timetable) != instance.Exams {
		return false
	}

	assigned := make([]bool, instance.Exams)
	occupied := make(map[[2]int]bool)
	slots := make([]int, instance.Exams)
	for _, entry := range timetable {
		// Check that:
		// - Exam, room and slot identifiers are in range
		// - No exam is scheduled twice
		// - The entry reports the exam's true seat demand
		// - The students sitting the exam fit in the room
		// - No other exam occupies the room in the same slot
		if entry.Exam < 0 || entry.Exam >= instance.Exams ||
			entry.Room < 0 || entry.Room >= instance.Rooms ||
			entry.Slot < 0 || entry.Slot >= instance.Slots ||
			assigned[entry.Exam] ||
			entry.Students != instance.StudentCount(entry.Exam) ||
			entry.Students > instance.Capacity(entry.Room) ||
			occupied[[2]int{entry.Room, entry.Slot}] {
			return false
		}

		assigned[entry.Exam] = true                     // Store exam assignment
		occupied[[2]int{entry.Room, entry.Slot}] = true // Store room occupancy
		slots[entry.Exam] = entry.Slot
	}

	//** Student separation over conflicting exam pairs
	for i := 0; i < instance.Exams; i++ {
		for j := i + 1; j < instance.Exams; j++ {
			if !instance.Conflicts[i][j] {
				continue
			}
			gap := slots[i] - slots[j]
			if gap < 0 {
				gap = -gap
			}
			if gap <= 1 {
				return false
			}
		}
	}
	return true
}

// conflictEdges counts the exam pairs sharing at least one student.
func conflictEdges(conflicts [][]bool) int {
	edges := 0
	for i := range conflicts {
		for j := i + 1; j < len(conflicts); j++ {
			if conflicts[i][j] {
				edges++
			}
		}
	}
	return edges
}

// StudentSchedule lists one student's scheduled exams, in ascending exam
// order.
type StudentSchedule struct {
	Student int
	Entries []Entry
}

// StudentSchedules expands a complete timetable into per-student views. Every
// student of the instance gets a schedule, including those registered for no
// exam at all.
func StudentSchedules(timetable Timetable, instance *Instance) []StudentSchedule {
	byExam := make(map[int]Entry, len(timetable))
	for _, entry := range timetable {
		byExam[entry.Exam] = entry
	}

	schedules := make([]StudentSchedule, 0, instance.Students)
	for student := 0; student < instance.Students; student++ {
		entries := lo.Map(instance.ExamsOf(student), func(exam int, _ int) Entry {
			return byExam[exam]
		})
		schedules = append(schedules, StudentSchedule{Student: student, Entries: entries})
	}
	return schedules
}

// OverloadedStudents returns the students registered for more than threshold
// exams, ascending.
func OverloadedStudents(instance *Instance, threshold int) []int {
	return lo.Filter(lo.Range(instance.Students), func(student int, _ int) bool {
		return len(instance.ExamsOf(student)) > threshold
	})
}
