package csp

import "fmt"

// Problem is the read-only description of an instance as the solver sees it:
// one variable per exam, with values ranging over every (room, slot) pair.
// Solvers share a Problem and never mutate it.
type Problem struct {
	Vars  int
	Rooms int
	Slots int

	// Need[v] is the number of students sitting exam v.
	Need []int
	// Capacities[r] is the number of seats in room r.
	Capacities []int
	// Conflicts' coordinate (i, j) = true if and only if exam_i and exam_j have
	// at least one student in common (i.e. it represents an undirected graph
	// where an edge indicates that two exams share a student). For completeness
	// we assume that Conflicts[i][i] = true for all i.
	Conflicts [][]bool
}

// NumValues is the size of the full value range, Rooms*Slots.
func (p *Problem) NumValues() int {
	return p.Rooms * p.Slots
}

// Value encodes a (room, slot) pair.
func (p *Problem) Value(room, slot int) Value {
	return Value(room*p.Slots + slot)
}

// RoomSlot decodes a value back into its (room, slot) pair.
func (p *Problem) RoomSlot(v Value) (room, slot int) {
	return int(v) / p.Slots, int(v) % p.Slots
}

// Validate checks the problem's shape: non-negative dimensions and counts,
// and tables sized consistently with them.
func (p *Problem) Validate() error {
	if p.Vars < 0 || p.Rooms < 0 || p.Slots < 0 {
		return fmt.Errorf("negative dimensions: %d variables, %d rooms, %d slots", p.Vars, p.Rooms, p.Slots)
	}
	if len(p.Need) != p.Vars {
		return fmt.Errorf("need table has %d entries for %d variables", len(p.Need), p.Vars)
	}
	if len(p.Capacities) != p.Rooms {
		return fmt.Errorf("capacity table has %d entries for %d rooms", len(p.Capacities), p.Rooms)
	}
	for v, need := range p.Need {
		if need < 0 {
			return fmt.Errorf("variable %d has negative need %d", v, need)
		}
	}
	for room, capacity := range p.Capacities {
		if capacity < 0 {
			return fmt.Errorf("room %d has negative capacity %d", room, capacity)
		}
	}
	if len(p.Conflicts) != p.Vars {
		return fmt.Errorf("conflict matrix has %d rows for %d variables", len(p.Conflicts), p.Vars)
	}
	for v, row := range p.Conflicts {
		if len(row) != p.Vars {
			return fmt.Errorf("conflict matrix row %d has %d entries for %d variables", v, len(row), p.Vars)
		}
	}
	return nil
}
