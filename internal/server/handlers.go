package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// programResponse is a program with its computed focus summary.
type programResponse struct {
	models.ProgramTemplate
	Focus catalog.Focus `json:"focus"`
}

func (s *Server) handleListPrograms(w http.ResponseWriter, r *http.Request) {
	programs, err := s.db.ListPrograms(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	resp := make([]programResponse, len(programs))
	for i := range programs {
		resp[i] = programResponse{ProgramTemplate: programs[i], Focus: catalog.ComputeFocus(&programs[i])}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetProgram(w http.ResponseWriter, r *http.Request) {
	p, err := s.db.GetProgram(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, session.ErrProgramNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "program not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, programResponse{ProgramTemplate: *p, Focus: catalog.ComputeFocus(p)})
}

func (s *Server) handleCreateProgram(w http.ResponseWriter, r *http.Request) {
	var p models.ProgramTemplate
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if err := validateProgram(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	stored, err := s.db.InsertProgram(r.Context(), p)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

func (s *Server) handleUpdateProgram(w http.ResponseWriter, r *http.Request) {
	var p models.ProgramTemplate
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	p.ID = chi.URLParam(r, "id")
	if err := validateProgram(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	updated, err := s.db.UpdateProgram(r.Context(), p)
	if err != nil {
		if errors.Is(err, session.ErrProgramNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "program not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleCloneProgram(w http.ResponseWriter, r *http.Request) {
	clone, err := s.db.CloneProgram(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, session.ErrProgramNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "program not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, clone)
}

func (s *Server) handleDeleteProgram(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	deleted, err := s.db.DeleteProgram(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "program not found"})
		return
	}

	// An active session bound to the deleted program can no longer be
	// resumed or finished; drop it.
	discarded, err := s.ctrl.DiscardIfProgram(r.Context(), id)
	if err != nil {
		s.log.Warn("discarding session for deleted program", "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true, "sessionDiscarded": discarded})
}

func (s *Server) handleQueryTrainings(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	trainings, err := s.db.QueryTrainings(r.Context(), start, end, 1)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, trainings)
}

func (s *Server) handleGetTraining(w http.ResponseWriter, r *http.Request) {
	trainingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid training ID"})
		return
	}

	detail, err := s.db.GetTraining(r.Context(), trainingID, 1)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "training not found"})
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// validateProgram rejects templates the session engine cannot run: every
// exercise needs a name and a positive set count, or the set pointers would
// start on an already-exhausted exercise.
func validateProgram(p *models.ProgramTemplate) error {
	if len(p.Exercises) == 0 {
		return errors.New("program needs at least one exercise")
	}
	for i, ex := range p.Exercises {
		if ex.Name == "" {
			return fmt.Errorf("exercise %d: name is required", i+1)
		}
		if ex.Sets <= 0 {
			return fmt.Errorf("exercise %d: sets must be positive", i+1)
		}
		if ex.RestSeconds < 0 {
			return fmt.Errorf("exercise %d: rest seconds cannot be negative", i+1)
		}
	}
	return nil
}

func (s *Server) handleTrainingStats(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	bucket := r.URL.Query().Get("bucket")
	if bucket == "" {
		bucket = "1 week"
	}

	stats, err := s.db.GetTrainingStats(r.Context(), start, end, bucket, 1)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleExerciseVolume(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	volume, err := s.db.GetExerciseVolume(r.Context(), start, end, 1)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, volume)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		// Default: last 30 days
		end = time.Now()
		start = end.AddDate(0, 0, -30)
		return
	}

	start, err = parseFlexTime(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	if endStr == "" {
		end = time.Now()
	} else {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if len(endStr) == len("2006-01-02") {
			// End of day for date-only
			end = end.Add(24 * time.Hour)
		}
	}
	return
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
