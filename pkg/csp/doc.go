// Package csp implements the finite-domain constraint solver behind the exam
// timetabler: one variable per exam, (room, slot) pairs as values, forward
// checking with exact undo and chronological backtracking on top.
package csp
