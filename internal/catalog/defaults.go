// Package catalog provides the built-in training programs and
// program-level summaries over the stored catalog.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
)

// DefaultPrograms returns the three built-in push/pull/legs programs seeded
// on first run.
func DefaultPrograms() []models.ProgramTemplate {
	now := time.Now()
	return []models.ProgramTemplate{
		{
			ID:          "program-default-push",
			Category:    "push",
			DisplayName: "Push: Power + Shoulder Care",
			CreatedAt:   now,
			Exercises: []models.ExerciseTemplate{
				{ID: "push-warmup-external-rotations", Name: "Dumbbell External Rotations", Sets: 2, Reps: "15 each arm", RestSeconds: 45, Notes: "Rotator cuff rehab; control, not strength.", Type: models.TypeFlexibility},
				{ID: "push-a-bench-press", Name: "Bench Press", Sets: 4, Reps: "5", RestSeconds: 150, Notes: "Power/Strength; heavy focus.", Type: models.TypePower},
				{ID: "push-b-incline-dumbbell-press", Name: "Incline Dumbbell Press", Sets: 3, Reps: "8-10", RestSeconds: 90, Notes: "Hypertrophy; shoulder-friendly ROM.", Type: models.TypeHypertrophy},
				{ID: "push-c-stand-ohp", Name: "Dumbbell Overhead Press (Standing)", Sets: 3, Reps: "8-10", RestSeconds: 90, Notes: "Shoulders; controlled tempo.", Type: models.TypeCompound},
				{ID: "push-d1-reverse-fly", Name: "Incline Dumbbell Reverse Fly", Sets: 3, Reps: "12-15", RestSeconds: 60, Notes: "Rear delt/cuff health; squeeze shoulder blades.", Type: models.TypeHypertrophy},
				{ID: "push-d2-weighted-dips", Name: "Weighted Dips", Sets: 3, Reps: "8-12", RestSeconds: 90, Notes: "Compound triceps/chest; control depth to avoid shoulder pain.", Type: models.TypeCompound},
			},
		},
		{
			ID:          "program-default-pull",
			Category:    "pull",
			DisplayName: "Pull: Strength + Grip",
			CreatedAt:   now,
			Exercises: []models.ExerciseTemplate{
				{ID: "pull-warmup-scapular-pullups", Name: "Scapular Pull-ups (or Hangs)", Sets: 2, Reps: "10", RestSeconds: 45, Notes: "Shoulder blade control; depress shoulders fully.", Type: models.TypeFlexibility},
				{ID: "pull-a-deadlift", Name: "Deadlift (Conventional or Sumo)", Sets: 4, Reps: "3-5", RestSeconds: 180, Notes: "Power/full-body strength; prioritize form.", Type: models.TypePower},
				{ID: "pull-b-weighted-pullups", Name: "Weighted Pull-ups (or Band-Assisted)", Sets: 4, Reps: "5-8", RestSeconds: 120, Notes: "Strength/back width; progress weight or assistance.", Type: models.TypePower},
				{ID: "pull-c-single-arm-rows", Name: "Single-Arm Dumbbell Rows", Sets: 3, Reps: "10-12 each arm", RestSeconds: 90, Notes: "Unilateral back; stability.", Type: models.TypeCompound},
				{ID: "pull-d1-bicep-curl", Name: "Dumbbell Bicep Curl", Sets: 3, Reps: "10-12", RestSeconds: 60, Notes: "Biceps focus.", Type: models.TypeHypertrophy},
				{ID: "pull-d2-farmers-carries", Name: "Dumbbell Farmer's Carries", Sets: 3, Reps: "40-60 sec", RestSeconds: 75, Notes: "Grip/core/traps; walk for time or distance.", Type: models.TypeCompound},
			},
		},
		{
			ID:          "program-default-legs",
			Category:    "legs",
			DisplayName: "Legs: Mobility + Strength",
			CreatedAt:   now,
			Exercises: []models.ExerciseTemplate{
				{ID: "legs-warmup-straight-leg-raise", Name: "Active Straight Leg Raise & 90/90 Hip Rotations", Sets: 1, Reps: "5 mins", RestSeconds: 30, Notes: "Leg mobility; gentle ROM increase.", Type: models.TypeFlexibility},
				{ID: "legs-a-goblet-squat", Name: "Goblet Squat (or Box Squat)", Sets: 4, Reps: "8-12", RestSeconds: 120, Notes: "Mobility-friendly; box limits depth safely.", Type: models.TypeCompound},
				{ID: "legs-b-reverse-lunge", Name: "Reverse Lunges (or Split Squats)", Sets: 3, Reps: "10-12 each leg", RestSeconds: 90, Notes: "Unilateral/stability; knee/hip friendly.", Type: models.TypeCompound},
				{ID: "legs-c1-dumbbell-rdl", Name: "Dumbbell RDL (Romanian Deadlift)", Sets: 3, Reps: "10-12", RestSeconds: 90, Notes: "Hamstrings/hips; slow, controlled hinge.", Type: models.TypeHypertrophy},
				{ID: "legs-c2-low-box-jumps", Name: "Low Box Jumps/Step-ups", Sets: 3, Reps: "8-10", RestSeconds: 75, Notes: "Plyometric/quads; soft landings or quick step-ups.", Type: models.TypePower},
				{ID: "legs-d-calves-core", Name: "Calves/Core Circuit", Sets: 3, Reps: "Calf raises + plank 30-60s", RestSeconds: 45, Notes: "Standing calf raises (with DBs) plus plank (30-60 sec).", Type: models.TypeCompound},
			},
		},
	}
}

// EnsureDefaults seeds the built-in programs when the catalog is empty.
func EnsureDefaults(ctx context.Context, db *storage.DB, log *slog.Logger) error {
	count, err := db.CountPrograms(ctx)
	if err != nil {
		return fmt.Errorf("checking program catalog: %w", err)
	}
	if count > 0 {
		return nil
	}

	log.Info("seeding default workout programs")
	for _, p := range DefaultPrograms() {
		if _, err := db.InsertProgram(ctx, p); err != nil {
			return fmt.Errorf("seeding program %s: %w", p.ID, err)
		}
	}
	return nil
}
