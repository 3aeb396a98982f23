package session

import (
	"fmt"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// Finalize converts the session into a permanent training record. Durations
// are rounded down to whole minutes and clamped non-negative; per-exercise
// elapsed time spans the first to last completed set and is absent when the
// exercise has no completed sets. Target reps always come from the template,
// with partial/actual reps carried separately.
func Finalize(s *Session, program *models.ProgramTemplate, now time.Time) *models.TrainingRecord {
	durationMin := int(s.TotalDuration(now) / time.Minute)
	activeMin := int(s.ActiveDuration(now) / time.Minute)
	completed := s.CompletedSets()
	total := s.TotalSets()

	exercises := make([]models.TrainingExercise, len(s.Exercises))
	for i := range s.Exercises {
		progress := &s.Exercises[i]
		name := fmt.Sprintf("Exercise %d", i+1)
		notes := ""
		reps := ""
		if i < len(program.Exercises) {
			name = program.Exercises[i].Name
			notes = program.Exercises[i].Notes
			reps = program.Exercises[i].Reps
		}

		sets := make([]models.TrainingSet, len(progress.Sets))
		for j, set := range progress.Sets {
			sets[j] = models.TrainingSet{
				SetNumber:   set.SetNumber,
				Weight:      set.Weight,
				TargetReps:  reps,
				Completed:   set.Completed,
				CompletedAt: set.CompletedAt,
				Partial:     set.Partial,
				ActualReps:  set.ActualReps,
			}
		}

		exercises[i] = models.TrainingExercise{
			ExerciseID: progress.ExerciseID,
			Name:       name,
			Notes:      notes,
			ElapsedMs:  exerciseElapsedMs(progress.Sets),
			Sets:       sets,
		}
	}

	notes := fmt.Sprintf("Live training - %s | %s | Duration: %d min (%d min active) | Sets: %d/%d",
		s.StartedAt.Format("15:04:05"), s.ProgramName, durationMin, activeMin, completed, total)

	return &models.TrainingRecord{
		ID:              uuid.New(),
		Date:            s.StartedAt,
		ProgramName:     s.ProgramName,
		DurationMinutes: durationMin,
		ActiveMinutes:   activeMin,
		CompletedSets:   completed,
		TotalSets:       total,
		Notes:           notes,
		Exercises:       exercises,
	}
}

// exerciseElapsedMs returns max-min of the completed sets' timestamps, or
// nil when the exercise has no completed set.
func exerciseElapsedMs(sets []SetRecord) *int64 {
	var earliest, latest time.Time
	found := false
	for _, s := range sets {
		if !s.Completed || s.CompletedAt == nil {
			continue
		}
		t := *s.CompletedAt
		if !found {
			earliest, latest = t, t
			found = true
			continue
		}
		if t.Before(earliest) {
			earliest = t
		}
		if t.After(latest) {
			latest = t
		}
	}
	if !found {
		return nil
	}
	ms := latest.Sub(earliest).Milliseconds()
	if ms < 0 {
		ms = 0
	}
	return &ms
}
