package session

import (
	"fmt"
	"time"

	"github.com/claude/liftlog/internal/models"
)

// View is everything a renderer needs for the live-session screen: the
// exercise/set grid, the rest countdown, the duration displays, and the
// pause-button label. It is derived state; nothing here feeds back into
// the session.
type View struct {
	ProgramID       string         `json:"programId"`
	ProgramName     string         `json:"programName"`
	StartedAt       time.Time      `json:"startedAt"`
	Paused          bool           `json:"paused"`
	PauseLabel      string         `json:"pauseLabel"`
	DurationDisplay string         `json:"durationDisplay"`
	ActiveDisplay   string         `json:"activeDisplay"`
	CompletedSets   int            `json:"completedSets"`
	TotalSets       int            `json:"totalSets"`
	AllComplete     bool           `json:"allComplete"`
	Rest            *RestView      `json:"rest,omitempty"`
	Exercises       []ExerciseView `json:"exercises"`
}

// RestView is the rest-countdown display state.
type RestView struct {
	Label       string `json:"label"`
	RemainingMs int64  `json:"remainingMs"`
	Display     string `json:"display"`
}

// ExerciseView is one card of the exercise grid.
type ExerciseView struct {
	ExerciseID    string    `json:"exerciseId"`
	Name          string    `json:"name"`
	Info          string    `json:"info"`
	Notes         string    `json:"notes,omitempty"`
	Active        bool      `json:"active"`
	Completed     bool      `json:"completed"`
	CompletedSets int       `json:"completedSets"`
	TotalSets     int       `json:"totalSets"`
	Sets          []SetView `json:"sets"`
}

// SetView is one cell of the set grid. SuggestedWeight is the weight-memory
// default for a pending set: the last weight used this session when present,
// otherwise the all-time last weight for the exercise.
type SetView struct {
	SetNumber       int      `json:"setNumber"`
	TargetReps      string   `json:"targetReps"`
	Active          bool     `json:"active"`
	Completed       bool     `json:"completed"`
	Weight          *float64 `json:"weight,omitempty"`
	Partial         bool     `json:"partial,omitempty"`
	ActualReps      *int     `json:"actualReps,omitempty"`
	SuggestedWeight *float64 `json:"suggestedWeight,omitempty"`
}

// BuildView derives the full render state for a session as of now.
// weights may be nil, in which case no suggestions are filled in.
func BuildView(s *Session, program *models.ProgramTemplate, weights WeightMemory, now time.Time) *View {
	v := &View{
		ProgramID:       s.ProgramID,
		ProgramName:     s.ProgramName,
		StartedAt:       s.StartedAt,
		Paused:          s.Paused,
		PauseLabel:      "Pause",
		DurationDisplay: formatClock(s.TotalDuration(now)),
		ActiveDisplay:   formatClock(s.ActiveDuration(now)),
		CompletedSets:   s.CompletedSets(),
		TotalSets:       s.TotalSets(),
		AllComplete:     s.AllComplete(),
	}
	if s.Paused {
		v.PauseLabel = "Resume"
	}
	if s.Rest != nil {
		remaining := s.Rest.Remaining(now)
		v.Rest = &RestView{
			Label:       s.Rest.Label,
			RemainingMs: remaining.Milliseconds(),
			Display:     formatClock(remaining),
		}
	}

	v.Exercises = make([]ExerciseView, len(s.Exercises))
	for i := range s.Exercises {
		progress := &s.Exercises[i]
		var tmpl models.ExerciseTemplate
		if i < len(program.Exercises) {
			tmpl = program.Exercises[i]
		}

		ev := ExerciseView{
			ExerciseID:    progress.ExerciseID,
			Name:          tmpl.Name,
			Info:          fmt.Sprintf("%d sets × %s reps • %ds rest", tmpl.Sets, tmpl.Reps, tmpl.RestSeconds),
			Notes:         tmpl.Notes,
			Active:        i == s.CurrentExercise,
			Completed:     progress.Completed(),
			CompletedSets: progress.CompletedSets(),
			TotalSets:     len(progress.Sets),
		}

		suggested := suggestWeight(weights, progress.ExerciseID)
		ev.Sets = make([]SetView, len(progress.Sets))
		for j, set := range progress.Sets {
			sv := SetView{
				SetNumber:  set.SetNumber,
				TargetReps: tmpl.Reps,
				Active:     ev.Active && j == progress.CurrentSet && !set.Completed,
				Completed:  set.Completed,
				Weight:     set.Weight,
				Partial:    set.Partial,
				ActualReps: set.ActualReps,
			}
			if !set.Completed {
				sv.SuggestedWeight = suggested
			}
			ev.Sets[j] = sv
		}
		v.Exercises[i] = ev
	}
	return v
}

// suggestWeight consults the last-session cache first, then the all-time
// per-exercise weight. Lookup errors degrade to no suggestion.
func suggestWeight(weights WeightMemory, exerciseID string) *float64 {
	if weights == nil {
		return nil
	}
	if w, ok, err := weights.LastSessionWeight(exerciseID); err == nil && ok {
		return &w
	}
	if w, ok, err := weights.LastWeight(exerciseID); err == nil && ok {
		return &w
	}
	return nil
}

// formatClock renders a duration as mm:ss, minutes unbounded.
func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
