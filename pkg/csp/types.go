package csp

import "fmt"

// Var identifies a decision variable. It is the index of the corresponding
// exam in the originating instance.
type Var int32

// Value encodes a (room, slot) candidate pair as room*slots + slot, so that
// ascending Value order is room-major, slot-minor. Problem.Value and
// Problem.RoomSlot convert between the two representations.
type Value int32

// None marks an unassigned variable.
const None Value = -1

// Solution is a complete assignment: Solution[v] is the value given to
// variable v, and every constraint holds.
type Solution []Value

// Status is the outcome of a solve.
type Status byte

const (
	// Unknown means the search was cut short by a deadline or cancellation
	// before satisfiability could be decided.
	Unknown Status = iota
	// Solved means a complete satisfying assignment was found.
	Solved
	// Infeasible means the search space was exhausted without finding a
	// satisfying assignment.
	Infeasible
)

func (s Status) String() string {
	switch s {
	case Unknown:
		return "UNKNOWN"
	case Solved:
		return "SOLVED"
	case Infeasible:
		return "INFEASIBLE"
	default:
		panic(fmt.Sprintf("invalid status: %d", s))
	}
}
