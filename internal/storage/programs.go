package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/session"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InsertProgram inserts a program. An empty ID gets a generated one.
// Returns the stored program.
func (db *DB) InsertProgram(ctx context.Context, p models.ProgramTemplate) (*models.ProgramTemplate, error) {
	if p.ID == "" {
		p.ID = "program-" + uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	exercises, err := json.Marshal(p.Exercises)
	if err != nil {
		return nil, fmt.Errorf("encoding exercises: %w", err)
	}

	_, err = db.Pool.Exec(ctx,
		`INSERT INTO programs (id, category, display_name, exercises, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT DO NOTHING`,
		p.ID, p.Category, p.DisplayName, exercises, p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting program: %w", err)
	}
	return &p, nil
}

// GetProgram retrieves a program by ID. Unknown ids map to
// session.ErrProgramNotFound so the engine can detect orphaned sessions.
func (db *DB) GetProgram(ctx context.Context, id string) (*models.ProgramTemplate, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, category, display_name, exercises, created_at FROM programs WHERE id = $1`, id)

	p, err := scanProgram(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("program %s: %w", id, session.ErrProgramNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying program: %w", err)
	}
	return p, nil
}

// ListPrograms retrieves all programs ordered by category, then creation time.
func (db *DB) ListPrograms(ctx context.Context) ([]models.ProgramTemplate, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, category, display_name, exercises, created_at
		 FROM programs
		 ORDER BY category ASC, created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying programs: %w", err)
	}
	defer rows.Close()

	var result []models.ProgramTemplate
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning program: %w", err)
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

// UpdateProgram replaces a program's category, name, and exercise list.
func (db *DB) UpdateProgram(ctx context.Context, p models.ProgramTemplate) (*models.ProgramTemplate, error) {
	exercises, err := json.Marshal(p.Exercises)
	if err != nil {
		return nil, fmt.Errorf("encoding exercises: %w", err)
	}

	tag, err := db.Pool.Exec(ctx,
		`UPDATE programs SET category = $2, display_name = $3, exercises = $4 WHERE id = $1`,
		p.ID, p.Category, p.DisplayName, exercises)
	if err != nil {
		return nil, fmt.Errorf("updating program: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("program %s: %w", p.ID, session.ErrProgramNotFound)
	}
	return db.GetProgram(ctx, p.ID)
}

// CloneProgram copies a program under a fresh ID with a "(copy)" suffix.
func (db *DB) CloneProgram(ctx context.Context, id string) (*models.ProgramTemplate, error) {
	p, err := db.GetProgram(ctx, id)
	if err != nil {
		return nil, err
	}
	clone := *p
	clone.ID = ""
	clone.DisplayName = p.DisplayName + " (copy)"
	clone.CreatedAt = time.Now()
	return db.InsertProgram(ctx, clone)
}

// DeleteProgram removes a program. Reports whether a row was deleted.
func (db *DB) DeleteProgram(ctx context.Context, id string) (bool, error) {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM programs WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("deleting program: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// CountPrograms returns the number of stored programs.
func (db *DB) CountPrograms(ctx context.Context) (int, error) {
	var count int
	if err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM programs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting programs: %w", err)
	}
	return count, nil
}

func scanProgram(row pgx.Row) (*models.ProgramTemplate, error) {
	var p models.ProgramTemplate
	var exercises []byte
	if err := row.Scan(&p.ID, &p.Category, &p.DisplayName, &exercises, &p.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(exercises, &p.Exercises); err != nil {
		return nil, fmt.Errorf("decoding exercises: %w", err)
	}
	return &p, nil
}
