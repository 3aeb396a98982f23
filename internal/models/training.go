package models

import (
	"time"

	"github.com/google/uuid"
)

// TrainingRecord is a finalized live session, ready for permanent storage.
type TrainingRecord struct {
	ID              uuid.UUID          `json:"id"`
	Date            time.Time          `json:"date"`
	ProgramName     string             `json:"programName"`
	DurationMinutes int                `json:"durationMinutes"`
	ActiveMinutes   int                `json:"activeMinutes"`
	CompletedSets   int                `json:"completedSets"`
	TotalSets       int                `json:"totalSets"`
	Notes           string             `json:"notes"`
	Exercises       []TrainingExercise `json:"exercises"`
}

// TrainingExercise is the per-exercise detail of a finalized session.
// ElapsedMs spans the first to last completed set; nil when no set of the
// exercise was completed (not zero — an untouched exercise has no elapsed time).
type TrainingExercise struct {
	ExerciseID string        `json:"exerciseId"`
	Name       string        `json:"name"`
	Notes      string        `json:"notes,omitempty"`
	ElapsedMs  *int64        `json:"elapsedMs,omitempty"`
	Sets       []TrainingSet `json:"sets"`
}

// TrainingSet is one set in a finalized record. TargetReps always reflects
// the program template; partial completions carry their actual rep count
// separately so summaries can show both.
type TrainingSet struct {
	SetNumber   int        `json:"setNumber"`
	Weight      *float64   `json:"weight,omitempty"`
	TargetReps  string     `json:"reps"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Partial     bool       `json:"partial,omitempty"`
	ActualReps  *int       `json:"actualReps,omitempty"`
}

// TrainingRow is a trainings-table row.
type TrainingRow struct {
	ID              uuid.UUID `json:"id"`
	UserID          int       `json:"userId"`
	Date            time.Time `json:"date"`
	ProgramName     string    `json:"programName"`
	DurationMinutes int       `json:"durationMinutes"`
	ActiveMinutes   int       `json:"activeMinutes"`
	CompletedSets   int       `json:"completedSets"`
	TotalSets       int       `json:"totalSets"`
	Notes           string    `json:"notes"`
}

// TrainingSetRow is a training_sets-table row, one per set of the session.
type TrainingSetRow struct {
	TrainingID     uuid.UUID  `json:"trainingId"`
	UserID         int        `json:"userId"`
	ExerciseNumber int        `json:"exerciseNumber"`
	ExerciseID     string     `json:"exerciseId"`
	ExerciseName   string     `json:"exerciseName"`
	ElapsedMs      *int64     `json:"elapsedMs,omitempty"`
	SetNumber      int        `json:"setNumber"`
	Weight         *float64   `json:"weight,omitempty"`
	TargetReps     string     `json:"targetReps"`
	Completed      bool       `json:"completed"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	Partial        bool       `json:"partial"`
	ActualReps     *int       `json:"actualReps,omitempty"`
}
