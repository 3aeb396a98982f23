package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/claude/liftlog/internal/session"
)

func (s *Server) handleLiveView(w http.ResponseWriter, r *http.Request) {
	v, err := s.ctrl.CurrentView(r.Context())
	if err != nil {
		writeLiveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleLiveStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProgramID string `json:"programId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.ProgramID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "programId required"})
		return
	}

	v, err := s.ctrl.Start(r.Context(), req.ProgramID)
	if err != nil {
		writeLiveError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (s *Server) handleLiveCompleteSet(w http.ResponseWriter, r *http.Request) {
	var in session.CompleteSetInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	v, err := s.ctrl.CompleteSet(r.Context(), in)
	if err != nil {
		writeLiveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleLivePause(w http.ResponseWriter, r *http.Request) {
	v, err := s.ctrl.TogglePause(r.Context())
	if err != nil {
		writeLiveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleLiveSkipRest(w http.ResponseWriter, r *http.Request) {
	v, err := s.ctrl.SkipRest(r.Context())
	if err != nil {
		writeLiveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleLiveExtendRest(w http.ResponseWriter, r *http.Request) {
	v, err := s.ctrl.ExtendRest(r.Context())
	if err != nil {
		writeLiveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleLiveFinish(w http.ResponseWriter, r *http.Request) {
	rec, err := s.ctrl.Finish(r.Context())
	if err != nil {
		if errors.Is(err, session.ErrNoActiveSession) || errors.Is(err, session.ErrProgramNotFound) {
			writeLiveError(w, err)
			return
		}
		// Sink failure: the session is preserved so the user can retry.
		s.log.Error("finishing session", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleLiveReset(w http.ResponseWriter, r *http.Request) {
	v, err := s.ctrl.Reset(r.Context())
	if err != nil {
		writeLiveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleLiveDiscard(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.Discard(r.Context()); err != nil {
		writeLiveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"discarded": true})
}

// writeLiveError maps engine errors onto HTTP statuses.
func writeLiveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNoActiveSession):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no active session"})
	case errors.Is(err, session.ErrProgramNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "program not found"})
	case errors.Is(err, session.ErrNotCurrentSet):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "set is not the current actionable set"})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
