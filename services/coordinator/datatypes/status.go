// Copyright (C) 2025 SwarmCraft contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

// Status is the session lifecycle state.
//
// Transitions are monotonic except for the active/paused pair:
//
//	waiting → active ⇄ paused
//	waiting | active | paused → completed
//
// completed is terminal. An expired session reads as not-found, which
// callers treat the same as completed-and-purged.
type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

// Op names a session-scoped operation for legality checks.
type Op string

const (
	OpJoin   Op = "join"
	OpSubmit Op = "submit_position"
	OpStart  Op = "start"
	OpPause  Op = "pause"
	OpResume Op = "resume"
	OpStep   Op = "step"
	OpClose  Op = "close"
)

// transitions lists the legal status edges.
var transitions = map[Status][]Status{
	StatusWaiting: {StatusActive, StatusCompleted},
	StatusActive:  {StatusPaused, StatusCompleted},
	StatusPaused:  {StatusActive, StatusCompleted},
	// completed is terminal
}

// allowedOps lists which operations each status accepts. Submissions in
// paused are accepted but recorded only (not consumed for stepping).
var allowedOps = map[Status][]Op{
	StatusWaiting: {OpJoin, OpStart, OpClose},
	StatusActive:  {OpSubmit, OpStep, OpPause, OpClose},
	StatusPaused:  {OpSubmit, OpResume, OpClose},
}

// CanTransition reports whether the edge s → to is legal.
func (s Status) CanTransition(to Status) bool {
	for _, t := range transitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

// Allows reports whether op is legal while the session is in s.
func (s Status) Allows(op Op) bool {
	for _, o := range allowedOps[s] {
		if o == op {
			return true
		}
	}
	return false
}

// Terminal reports whether s admits no further mutation.
func (s Status) Terminal() bool { return s == StatusCompleted }

// CheckOp returns an IllegalTransition error if op is not legal in s.
// Illegal operations fail loudly so client and server state never
// silently diverge.
func (s Status) CheckOp(op Op) error {
	if s.Allows(op) {
		return nil
	}
	if s.Terminal() {
		return E(KindIllegalTransition, "session is completed; %s is not allowed", op)
	}
	return E(KindIllegalTransition, "%s is not allowed while session is %s", op, s)
}
