// Package session implements the live-workout state machine: exercise and
// set progression, rest scheduling, pause accounting, and finalization of
// an in-progress session into a permanent training record.
//
// The state machine itself is pure — transitions are methods on Session that
// take an explicit "now" — while Controller owns the durable snapshot store,
// the two display timers, and the collaborator calls.
package session

import "time"

// SetsExhausted marks an ExerciseProgress whose sets are all completed.
const SetsExhausted = -1

// Labels for the two kinds of rest window. Warm-up is the fixed countdown
// started right after session creation; the session-start ritual uses the
// same RestWindow mechanism as inter-set recovery.
const (
	RestLabel   = "Rest"
	WarmupLabel = "Warm-up"
)

// WarmupSeconds is the duration of the automatic warm-up window.
const WarmupSeconds = 300

// RestExtendIncrement is the fixed amount added per "add rest time" action.
const RestExtendIncrement = 30 * time.Second

// SetRecord is one pending or completed set. Once Completed it is immutable
// except through session reset or discard. ActualReps is only meaningful
// when Partial is true.
type SetRecord struct {
	SetNumber   int        `json:"setNumber"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Weight      *float64   `json:"weight,omitempty"`
	Partial     bool       `json:"partial,omitempty"`
	ActualReps  *int       `json:"actualReps,omitempty"`
}

// ExerciseProgress tracks completion state for one exercise of the session.
// Sets has exactly the template's target set count and never changes length.
// CurrentSet is the minimal incomplete index, or SetsExhausted.
type ExerciseProgress struct {
	ExerciseID string      `json:"exerciseId"`
	Sets       []SetRecord `json:"sets"`
	CurrentSet int         `json:"currentSet"`
}

// Completed reports whether every set of the exercise is done.
func (e *ExerciseProgress) Completed() bool {
	return e.CurrentSet == SetsExhausted
}

// CompletedSets counts the completed sets of the exercise.
func (e *ExerciseProgress) CompletedSets() int {
	n := 0
	for _, s := range e.Sets {
		if s.Completed {
			n++
		}
	}
	return n
}

// RestWindow is an active rest countdown: the interval
// [StartedAt, StartedAt+DurationMs). Remaining time is always recomputed
// from the wall clock, never decremented, so display ticks cannot drift.
type RestWindow struct {
	StartedAt  time.Time `json:"startedAt"`
	DurationMs int64     `json:"durationMs"`
	Label      string    `json:"label"`
}

// Remaining returns the countdown time left as of now, clamped at zero.
func (r *RestWindow) Remaining(now time.Time) time.Duration {
	end := r.StartedAt.Add(time.Duration(r.DurationMs) * time.Millisecond)
	if remaining := end.Sub(now); remaining > 0 {
		return remaining
	}
	return 0
}

// Session is the single in-progress training run bound to a program
// template. Exercises is index-aligned 1:1 with the template's exercise
// list. At most one Session exists in the store at a time.
type Session struct {
	ProgramID       string             `json:"programId"`
	ProgramName     string             `json:"programName"`
	StartedAt       time.Time          `json:"startedAt"`
	Exercises       []ExerciseProgress `json:"exercises"`
	CurrentExercise int                `json:"currentExerciseIndex"`
	Rest            *RestWindow        `json:"rest,omitempty"`
	Paused          bool               `json:"paused"`
	PauseStartedAt  *time.Time         `json:"pauseStartedAt,omitempty"`
	TotalPausedMs   int64              `json:"totalPausedMs"`
}

// AllComplete reports whether every set of every exercise is done.
func (s *Session) AllComplete() bool {
	for i := range s.Exercises {
		if !s.Exercises[i].Completed() {
			return false
		}
	}
	return true
}

// CompletedSets counts completed sets across all exercises.
func (s *Session) CompletedSets() int {
	n := 0
	for i := range s.Exercises {
		n += s.Exercises[i].CompletedSets()
	}
	return n
}

// TotalSets counts all sets across all exercises.
func (s *Session) TotalSets() int {
	n := 0
	for i := range s.Exercises {
		n += len(s.Exercises[i].Sets)
	}
	return n
}

// TotalDuration is wall-clock time since the session started, pauses
// included. Clock anomalies clamp to zero rather than going negative.
func (s *Session) TotalDuration(now time.Time) time.Duration {
	if d := now.Sub(s.StartedAt); d > 0 {
		return d
	}
	return 0
}

// ActiveDuration is TotalDuration minus all completed pause intervals and
// the in-flight pause interval, if any. Never negative.
func (s *Session) ActiveDuration(now time.Time) time.Duration {
	d := s.TotalDuration(now) - time.Duration(s.TotalPausedMs)*time.Millisecond
	if s.Paused && s.PauseStartedAt != nil {
		if inFlight := now.Sub(*s.PauseStartedAt); inFlight > 0 {
			d -= inFlight
		}
	}
	if d > 0 {
		return d
	}
	return 0
}

// RestRemaining returns the active rest countdown's remaining time, or
// false when no rest window is active.
func (s *Session) RestRemaining(now time.Time) (time.Duration, bool) {
	if s.Rest == nil {
		return 0, false
	}
	return s.Rest.Remaining(now), true
}

func firstIncomplete(sets []SetRecord) int {
	for i := range sets {
		if !sets[i].Completed {
			return i
		}
	}
	return SetsExhausted
}
