package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/session"
	"github.com/google/uuid"
)

// Compile-time check: *DB is the engine's record sink and program catalog.
var (
	_ session.RecordSink = (*DB)(nil)
	_ session.Catalog    = (*DB)(nil)
)

// CreateTraining persists a finalized training record: one trainings row
// plus a batch-inserted training_sets row per set, in a single transaction
// so a partial write cannot leave a record without its detail.
func (db *DB) CreateTraining(ctx context.Context, rec *models.TrainingRecord) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO trainings (id, user_id, date, program_name, duration_minutes, active_minutes,
		 completed_sets, total_sets, notes)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		rec.ID, 1, rec.Date, rec.ProgramName, rec.DurationMinutes, rec.ActiveMinutes,
		rec.CompletedSets, rec.TotalSets, rec.Notes)
	if err != nil {
		return fmt.Errorf("inserting training: %w", err)
	}

	setRows := flattenSets(rec)
	if len(setRows) > 0 {
		query := `INSERT INTO training_sets (training_id, user_id, exercise_number, exercise_id,
			exercise_name, elapsed_ms, set_number, weight, target_reps, completed, completed_at,
			partial, actual_reps) VALUES `
		args := make([]any, 0, len(setRows)*13)
		valueStrings := make([]string, 0, len(setRows))

		for i, r := range setRows {
			base := i * 13
			valueStrings = append(valueStrings, fmt.Sprintf(
				"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7,
				base+8, base+9, base+10, base+11, base+12, base+13,
			))
			args = append(args, r.TrainingID, r.UserID, r.ExerciseNumber, r.ExerciseID,
				r.ExerciseName, r.ElapsedMs, r.SetNumber, r.Weight, r.TargetReps,
				r.Completed, r.CompletedAt, r.Partial, r.ActualReps)
		}

		query += strings.Join(valueStrings, ",")
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("inserting training sets: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// QueryTrainings retrieves training summaries in a date range.
func (db *DB) QueryTrainings(ctx context.Context, start, end time.Time, userID int) ([]models.TrainingRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, date, program_name, duration_minutes, active_minutes,
		 completed_sets, total_sets, notes
		 FROM trainings
		 WHERE date >= $1 AND date < $2 AND user_id = $3
		 ORDER BY date DESC`,
		start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying trainings: %w", err)
	}
	defer rows.Close()

	var result []models.TrainingRow
	for rows.Next() {
		var t models.TrainingRow
		if err := rows.Scan(&t.ID, &t.UserID, &t.Date, &t.ProgramName, &t.DurationMinutes,
			&t.ActiveMinutes, &t.CompletedSets, &t.TotalSets, &t.Notes); err != nil {
			return nil, fmt.Errorf("scanning training: %w", err)
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// TrainingDetail is a training with its per-set detail rows.
type TrainingDetail struct {
	models.TrainingRow
	Sets []models.TrainingSetRow
}

// GetTraining retrieves a single training by ID with all set detail.
func (db *DB) GetTraining(ctx context.Context, trainingID uuid.UUID, userID int) (*TrainingDetail, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, date, program_name, duration_minutes, active_minutes,
		 completed_sets, total_sets, notes
		 FROM trainings
		 WHERE id = $1 AND user_id = $2`,
		trainingID, userID)

	var t models.TrainingRow
	err := row.Scan(&t.ID, &t.UserID, &t.Date, &t.ProgramName, &t.DurationMinutes,
		&t.ActiveMinutes, &t.CompletedSets, &t.TotalSets, &t.Notes)
	if err != nil {
		return nil, fmt.Errorf("querying training: %w", err)
	}

	detail := &TrainingDetail{TrainingRow: t}

	setRows, err := db.Pool.Query(ctx,
		`SELECT training_id, user_id, exercise_number, exercise_id, exercise_name, elapsed_ms,
		 set_number, weight, target_reps, completed, completed_at, partial, actual_reps
		 FROM training_sets
		 WHERE training_id = $1 AND user_id = $2
		 ORDER BY exercise_number ASC, set_number ASC`,
		trainingID, userID)
	if err != nil {
		return nil, fmt.Errorf("querying training sets: %w", err)
	}
	defer setRows.Close()

	for setRows.Next() {
		var r models.TrainingSetRow
		if err := setRows.Scan(&r.TrainingID, &r.UserID, &r.ExerciseNumber, &r.ExerciseID,
			&r.ExerciseName, &r.ElapsedMs, &r.SetNumber, &r.Weight, &r.TargetReps,
			&r.Completed, &r.CompletedAt, &r.Partial, &r.ActualReps); err != nil {
			return nil, fmt.Errorf("scanning training set: %w", err)
		}
		detail.Sets = append(detail.Sets, r)
	}

	return detail, setRows.Err()
}

func flattenSets(rec *models.TrainingRecord) []models.TrainingSetRow {
	var rows []models.TrainingSetRow
	for i, ex := range rec.Exercises {
		for _, set := range ex.Sets {
			rows = append(rows, models.TrainingSetRow{
				TrainingID:     rec.ID,
				UserID:         1,
				ExerciseNumber: i + 1,
				ExerciseID:     ex.ExerciseID,
				ExerciseName:   ex.Name,
				ElapsedMs:      ex.ElapsedMs,
				SetNumber:      set.SetNumber,
				Weight:         set.Weight,
				TargetReps:     set.TargetReps,
				Completed:      set.Completed,
				CompletedAt:    set.CompletedAt,
				Partial:        set.Partial,
				ActualReps:     set.ActualReps,
			})
		}
	}
	return rows
}
