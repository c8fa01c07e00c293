// Package curveball is the mastery-gate scheduler. An idea that reaches
// full facet coverage gets one delayed, harder validation question; only
// answering it correctly makes mastery durable.
package curveball

import (
	"time"

	"github.com/abhisek/bookwise/internal/store"
)

// State is the position of an idea in the mastery-gate lifecycle.
type State int

const (
	// StateNotEligible: the idea is not fully covered yet.
	StateNotEligible State = iota

	// StateScheduled: a due date is set but has not elapsed.
	StateScheduled

	// StateDue: the due date has elapsed and no curveball queue item is
	// pending yet.
	StateDue

	// StateQueued: a pending curveball queue item exists.
	StateQueued

	// StatePassed: the curveball was answered correctly. Terminal.
	StatePassed
)

var stateNames = map[State]string{
	StateNotEligible: "not_eligible",
	StateScheduled:   "scheduled",
	StateDue:         "due",
	StateQueued:      "queued",
	StatePassed:      "passed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// StateOf derives the lifecycle state from a coverage record.
// queuedPending reports whether a pending curveball queue item exists
// for the idea; the caller looks that up because the coverage record
// does not reference the queue.
func StateOf(cov *store.IdeaCoverage, queuedPending bool, now time.Time) State {
	if cov == nil || !cov.IsFullyCovered {
		return StateNotEligible
	}
	if cov.CurveballPassed {
		return StatePassed
	}
	if queuedPending {
		return StateQueued
	}
	if cov.CurveballDueAt == nil {
		return StateNotEligible
	}
	if !now.Before(*cov.CurveballDueAt) {
		return StateDue
	}
	return StateScheduled
}
