package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/claude/liftlog/internal/models"
)

var (
	// ErrNoActiveSession is returned when an operation needs a live session
	// and the store holds none.
	ErrNoActiveSession = errors.New("no active session")

	// ErrNotCurrentSet rejects a completion aimed at anything other than the
	// current exercise's current set. The session is left untouched.
	ErrNotCurrentSet = errors.New("set is not the current actionable set")

	// ErrProgramNotFound is returned when a session's bound program is no
	// longer in the catalog.
	ErrProgramNotFound = errors.New("program not found")
)

// New creates a fresh session from a program template: one ExerciseProgress
// per template exercise, every set pending, pointers at zero, and the
// automatic warm-up rest window already running.
func New(program *models.ProgramTemplate, now time.Time) *Session {
	exercises := make([]ExerciseProgress, len(program.Exercises))
	for i, ex := range program.Exercises {
		sets := make([]SetRecord, ex.Sets)
		for j := range sets {
			sets[j] = SetRecord{SetNumber: j + 1}
		}
		exercises[i] = ExerciseProgress{ExerciseID: ex.ID, Sets: sets}
	}
	s := &Session{
		ProgramID:   program.ID,
		ProgramName: program.DisplayName,
		StartedAt:   now,
		Exercises:   exercises,
	}
	s.StartRest(WarmupSeconds, WarmupLabel, now)
	return s
}

// Normalize repairs timing fields after re-hydrating a persisted snapshot.
// A paused session missing its pause start gets stamped now, so the
// in-flight pause interval is measured from resume instead of blowing up.
// An already-elapsed rest window is cleared. Returns true when anything
// changed and the snapshot should be re-persisted.
func (s *Session) Normalize(now time.Time) bool {
	changed := false
	if s.Paused && s.PauseStartedAt == nil {
		t := now
		s.PauseStartedAt = &t
		changed = true
	}
	if !s.Paused && s.PauseStartedAt != nil {
		s.PauseStartedAt = nil
		changed = true
	}
	if s.Rest != nil && s.Rest.Remaining(now) <= 0 {
		s.Rest = nil
		changed = true
	}
	return changed
}

// CompleteSetInput identifies the targeted set and carries its result.
// ActualReps only applies when Partial is set.
type CompleteSetInput struct {
	Exercise   int      `json:"exerciseIndex"`
	Set        int      `json:"setIndex"`
	Weight     *float64 `json:"weight,omitempty"`
	Partial    bool     `json:"partial,omitempty"`
	ActualReps *int     `json:"actualReps,omitempty"`
}

// CompleteSetOutcome describes what a successful completion triggered.
type CompleteSetOutcome struct {
	RestStarted bool
	RestSeconds int
	RestLabel   string
	AllComplete bool
}

// CompleteSet applies the set-completion protocol. Only the current
// exercise's current set is actionable; anything else returns
// ErrNotCurrentSet with no mutation. On acceptance the set is stamped,
// pointers are recomputed, and a rest window is started per the rest
// policy: rest only when work remains and the exercise's template rest is
// positive, labeled "Next: <name>" when crossing into a new exercise.
func (s *Session) CompleteSet(program *models.ProgramTemplate, in CompleteSetInput, now time.Time) (CompleteSetOutcome, error) {
	if in.Exercise < 0 || in.Exercise >= len(s.Exercises) || in.Exercise >= len(program.Exercises) {
		return CompleteSetOutcome{}, ErrNotCurrentSet
	}
	if in.Exercise != s.CurrentExercise {
		return CompleteSetOutcome{}, ErrNotCurrentSet
	}
	progress := &s.Exercises[in.Exercise]
	if in.Set != progress.CurrentSet || in.Set < 0 || in.Set >= len(progress.Sets) {
		return CompleteSetOutcome{}, ErrNotCurrentSet
	}
	if progress.Sets[in.Set].Completed {
		return CompleteSetOutcome{}, ErrNotCurrentSet
	}

	completedAt := now
	set := &progress.Sets[in.Set]
	set.Completed = true
	set.CompletedAt = &completedAt
	set.Weight = in.Weight
	set.Partial = in.Partial
	if in.Partial {
		set.ActualReps = in.ActualReps
	}

	progress.CurrentSet = firstIncomplete(progress.Sets)

	moreInExercise := progress.CurrentSet != SetsExhausted
	nextExercise := SetsExhausted
	if !moreInExercise {
		for i := in.Exercise + 1; i < len(s.Exercises); i++ {
			if !s.Exercises[i].Completed() {
				nextExercise = i
				break
			}
		}
		if nextExercise != SetsExhausted {
			s.CurrentExercise = nextExercise
		}
	}

	var outcome CompleteSetOutcome
	outcome.AllComplete = s.AllComplete()

	restSeconds := program.Exercises[in.Exercise].RestSeconds
	if restSeconds > 0 && (moreInExercise || nextExercise != SetsExhausted) {
		label := RestLabel
		if !moreInExercise && nextExercise != SetsExhausted {
			label = fmt.Sprintf("Next: %s", program.Exercises[nextExercise].Name)
		}
		s.StartRest(restSeconds, label, now)
		outcome.RestStarted = true
		outcome.RestSeconds = restSeconds
		outcome.RestLabel = label
	}

	return outcome, nil
}

// StartRest begins a rest countdown, replacing any active window.
func (s *Session) StartRest(seconds int, label string, now time.Time) {
	s.Rest = &RestWindow{
		StartedAt:  now,
		DurationMs: int64(seconds) * 1000,
		Label:      label,
	}
}

// ClearRest drops the active rest window, if any.
func (s *Session) ClearRest() {
	s.Rest = nil
}

// ExtendRest pushes the active rest window's end out by d, persisting the
// larger duration so a reload recomputes the same end time. Reports whether
// a window was active.
func (s *Session) ExtendRest(d time.Duration) bool {
	if s.Rest == nil {
		return false
	}
	s.Rest.DurationMs += d.Milliseconds()
	return true
}

// TogglePause flips pause state. Pausing stamps the pause start; resuming
// folds the elapsed pause interval into TotalPausedMs. The rest window is
// deliberately retained across a pause so its countdown can resume from
// the remaining time.
func (s *Session) TogglePause(now time.Time) {
	if s.Paused {
		if s.PauseStartedAt != nil {
			if elapsed := now.Sub(*s.PauseStartedAt); elapsed > 0 {
				s.TotalPausedMs += elapsed.Milliseconds()
			}
		}
		s.PauseStartedAt = nil
		s.Paused = false
		return
	}
	t := now
	s.Paused = true
	s.PauseStartedAt = &t
}
