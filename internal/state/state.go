// Package state holds the durable local stores that must survive a restart
// without a database server: the single active-session snapshot and the
// per-exercise weight memory. Both live in one SQLite file.
package state

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/claude/liftlog/internal/session"
	_ "modernc.org/sqlite"
)

// DB is the local state database.
type DB struct {
	db *sql.DB
}

// Compile-time checks: the stores satisfy the engine's collaborator contracts.
var (
	_ session.Store        = (*SessionStore)(nil)
	_ session.WeightMemory = (*WeightStore)(nil)
)

// Open opens (or creates) the SQLite state database at dir/state.db.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "state.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS active_session (
			id         INTEGER PRIMARY KEY CHECK (id = 1),
			snapshot   TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS exercise_weights (
			exercise_id TEXT PRIMARY KEY,
			weight      REAL NOT NULL,
			updated_at  TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS session_weights (
			exercise_id TEXT PRIMARY KEY,
			weight      REAL NOT NULL
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating state tables: %w", err)
		}
	}

	return &DB{db: db}, nil
}

// Close closes the state database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Sessions returns the active-session store.
func (d *DB) Sessions() *SessionStore {
	return &SessionStore{db: d.db}
}

// Weights returns the weight-memory store.
func (d *DB) Weights() *WeightStore {
	return &WeightStore{db: d.db}
}

// SessionStore persists the single active session as a JSON snapshot in a
// one-row table. Saving replaces whatever was there; at most one session
// exists at a time.
type SessionStore struct {
	db *sql.DB
}

// Load returns the persisted session, or (nil, nil) when none exists.
func (s *SessionStore) Load() (*session.Session, error) {
	var snapshot string
	err := s.db.QueryRow(`SELECT snapshot FROM active_session WHERE id = 1`).Scan(&snapshot)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading session snapshot: %w", err)
	}

	var sess session.Session
	if err := json.Unmarshal([]byte(snapshot), &sess); err != nil {
		return nil, fmt.Errorf("decoding session snapshot: %w", err)
	}
	return &sess, nil
}

// Save persists the full session snapshot.
func (s *SessionStore) Save(sess *session.Session) error {
	snapshot, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encoding session snapshot: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO active_session (id, snapshot, updated_at) VALUES (1, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(id) DO UPDATE SET snapshot = excluded.snapshot, updated_at = CURRENT_TIMESTAMP`,
		string(snapshot),
	)
	if err != nil {
		return fmt.Errorf("saving session snapshot: %w", err)
	}
	return nil
}

// Clear removes the persisted session.
func (s *SessionStore) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM active_session WHERE id = 1`); err != nil {
		return fmt.Errorf("clearing session snapshot: %w", err)
	}
	return nil
}

// WeightStore keeps two caches of last-used loads: exercise_weights is the
// durable all-time record, session_weights only holds weights used since
// the current session started.
type WeightStore struct {
	db *sql.DB
}

// LastWeight returns the all-time last weight used for an exercise.
func (w *WeightStore) LastWeight(exerciseID string) (float64, bool, error) {
	return w.lookup(`SELECT weight FROM exercise_weights WHERE exercise_id = ?`, exerciseID)
}

// LastSessionWeight returns the weight last used for an exercise within the
// current session.
func (w *WeightStore) LastSessionWeight(exerciseID string) (float64, bool, error) {
	return w.lookup(`SELECT weight FROM session_weights WHERE exercise_id = ?`, exerciseID)
}

func (w *WeightStore) lookup(query, exerciseID string) (float64, bool, error) {
	var weight float64
	err := w.db.QueryRow(query, exerciseID).Scan(&weight)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("looking up exercise weight: %w", err)
	}
	return weight, true, nil
}

// SetLastWeight records a used weight in both caches.
func (w *WeightStore) SetLastWeight(exerciseID string, weight float64) error {
	_, err := w.db.Exec(
		`INSERT INTO exercise_weights (exercise_id, weight, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(exercise_id) DO UPDATE SET weight = excluded.weight, updated_at = CURRENT_TIMESTAMP`,
		exerciseID, weight,
	)
	if err != nil {
		return fmt.Errorf("saving exercise weight: %w", err)
	}
	_, err = w.db.Exec(
		`INSERT INTO session_weights (exercise_id, weight) VALUES (?, ?)
		 ON CONFLICT(exercise_id) DO UPDATE SET weight = excluded.weight`,
		exerciseID, weight,
	)
	if err != nil {
		return fmt.Errorf("saving session weight: %w", err)
	}
	return nil
}

// ClearSessionWeights empties the per-session cache. Called at session start.
func (w *WeightStore) ClearSessionWeights() error {
	if _, err := w.db.Exec(`DELETE FROM session_weights`); err != nil {
		return fmt.Errorf("clearing session weights: %w", err)
	}
	return nil
}
