package models

import "time"

// ExerciseType classifies an exercise for program-focus summaries.
type ExerciseType string

const (
	TypePower       ExerciseType = "power"
	TypeHypertrophy ExerciseType = "hypertrophy"
	TypeCompound    ExerciseType = "compound"
	TypeFlexibility ExerciseType = "flexibility"
	TypeCardio      ExerciseType = "cardio"
)

// ExerciseTemplate is one exercise slot in a program: how many sets to do,
// the rep target (a count or a range like "8-10"), and the rest between sets.
type ExerciseTemplate struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Sets        int          `json:"sets"`
	Reps        string       `json:"reps"`
	RestSeconds int          `json:"restSeconds"`
	Notes       string       `json:"notes,omitempty"`
	Type        ExerciseType `json:"exerciseType,omitempty"`
}

// ProgramTemplate is a named, ordered list of exercise templates. Immutable
// while a live session is bound to it.
type ProgramTemplate struct {
	ID          string             `json:"id"`
	Category    string             `json:"category"`
	DisplayName string             `json:"displayName"`
	Exercises   []ExerciseTemplate `json:"exercises"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// TotalSets is the number of sets across all exercises in the program.
func (p *ProgramTemplate) TotalSets() int {
	total := 0
	for _, ex := range p.Exercises {
		total += ex.Sets
	}
	return total
}
