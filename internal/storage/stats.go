package storage

import (
	"context"
	"fmt"
	"time"
)

// TrainingPeriodStats holds aggregated training totals for one time bucket.
type TrainingPeriodStats struct {
	Period        string  `json:"period"`
	Sessions      int     `json:"sessions"`
	TotalMinutes  int     `json:"totalMinutes"`
	ActiveMinutes int     `json:"activeMinutes"`
	CompletedSets int     `json:"completedSets"`
	TotalSets     int     `json:"totalSets"`
	AvgCompletion float64 `json:"avgCompletion"`
}

// ExerciseVolumeStat holds per-exercise set volume for a date range.
type ExerciseVolumeStat struct {
	ExerciseID    string   `json:"exerciseId"`
	ExerciseName  string   `json:"exerciseName"`
	CompletedSets int      `json:"completedSets"`
	MaxWeight     *float64 `json:"maxWeight,omitempty"`
	LastWeight    *float64 `json:"lastWeight,omitempty"`
}

// GetTrainingStats returns per-period training totals, newest period first.
// bucket is "1 week" or "1 month".
func (db *DB) GetTrainingStats(ctx context.Context, start, end time.Time, bucket string, userID int) ([]TrainingPeriodStats, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT date_trunc($1, date)::date AS period,
		        COUNT(*)::int,
		        COALESCE(SUM(duration_minutes), 0)::int,
		        COALESCE(SUM(active_minutes), 0)::int,
		        COALESCE(SUM(completed_sets), 0)::int,
		        COALESCE(SUM(total_sets), 0)::int
		 FROM trainings
		 WHERE date >= $2 AND date < $3 AND user_id = $4
		 GROUP BY period
		 ORDER BY period DESC`,
		truncInterval(bucket), start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying training stats: %w", err)
	}
	defer rows.Close()

	var result []TrainingPeriodStats
	for rows.Next() {
		var periodTime time.Time
		var s TrainingPeriodStats
		if err := rows.Scan(&periodTime, &s.Sessions, &s.TotalMinutes, &s.ActiveMinutes,
			&s.CompletedSets, &s.TotalSets); err != nil {
			return nil, fmt.Errorf("scanning training stats: %w", err)
		}
		s.Period = periodTime.Format("2006-01-02")
		if s.TotalSets > 0 {
			s.AvgCompletion = float64(s.CompletedSets) / float64(s.TotalSets)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// GetExerciseVolume returns per-exercise completed-set volume in a date
// range, busiest exercises first. LastWeight is the weight of the most
// recently completed set of that exercise.
func (db *DB) GetExerciseVolume(ctx context.Context, start, end time.Time, userID int) ([]ExerciseVolumeStat, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT s.exercise_id,
		        MAX(s.exercise_name),
		        COUNT(*)::int,
		        MAX(s.weight),
		        (ARRAY_AGG(s.weight ORDER BY s.completed_at DESC))[1]
		 FROM training_sets s
		 JOIN trainings t ON t.id = s.training_id
		 WHERE t.date >= $1 AND t.date < $2 AND s.user_id = $3 AND s.completed
		 GROUP BY s.exercise_id
		 ORDER BY COUNT(*) DESC`,
		start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying exercise volume: %w", err)
	}
	defer rows.Close()

	var result []ExerciseVolumeStat
	for rows.Next() {
		var s ExerciseVolumeStat
		if err := rows.Scan(&s.ExerciseID, &s.ExerciseName, &s.CompletedSets,
			&s.MaxWeight, &s.LastWeight); err != nil {
			return nil, fmt.Errorf("scanning exercise volume: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// truncInterval converts bucket strings like "1 month" to the interval name
// that date_trunc expects (e.g. "month", "week").
func truncInterval(bucket string) string {
	switch bucket {
	case "1 week":
		return "week"
	case "1 month":
		return "month"
	default:
		return "month"
	}
}
