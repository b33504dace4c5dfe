// Package instancegen produces random exam-timetabling instances for
// benchmarks and soundness tests.
package instancegen

import (
	"math/rand"

	"github.com/uniexams/examtimetabling/pkg/model"
)

// Params controls the shape of generated instances.
type Params struct {
	Students        int
	Exams           int
	Slots           int
	Rooms           int
	MinCapacity     int
	MaxCapacity     int
	ExamsPerStudent int // upper bound on how many exams one student registers for
}

// DefaultParams produces mid-sized instances that typically solve within
// milliseconds yet still exercise backtracking.
var DefaultParams = Params{
	Students:        40,
	Exams:           12,
	Slots:           8,
	Rooms:           4,
	MinCapacity:     10,
	MaxCapacity:     40,
	ExamsPerStudent: 3,
}

// Generate builds a random raw instance. The same source state and params
// always produce the same instance.
func Generate(r *rand.Rand, params Params) model.RawInstance {
	capacities := make([]int, params.Rooms)
	for room := range capacities {
		capacities[room] = params.MinCapacity + r.Intn(params.MaxCapacity-params.MinCapacity+1)
	}

	perStudent := min(params.ExamsPerStudent, params.Exams)
	registrations := make([][2]int, 0, params.Students*params.ExamsPerStudent)
	if perStudent > 0 {
		for student := 0; student < params.Students; student++ {
			count := 1 + r.Intn(perStudent)
			for _, exam := range r.Perm(params.Exams)[:count] {
				registrations = append(registrations, [2]int{exam, student})
			}
		}
	}

	return model.RawInstance{
		Students:      params.Students,
		Exams:         params.Exams,
		Slots:         params.Slots,
		Rooms:         params.Rooms,
		Capacities:    capacities,
		Registrations: registrations,
	}
}
