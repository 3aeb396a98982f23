package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/liftlog/internal/session"
	"github.com/claude/liftlog/internal/storage"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db     *storage.DB
	ctrl   *session.Controller
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(db *storage.DB, ctrl *session.Controller, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:     db,
		ctrl:   ctrl,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Program catalog (mutations require the API key)
	s.router.Route("/api/v1/programs", func(r chi.Router) {
		r.Get("/", s.handleListPrograms)
		r.Get("/{id}", s.handleGetProgram)

		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))
			r.Post("/", s.handleCreateProgram)
			r.Put("/{id}", s.handleUpdateProgram)
			r.Post("/{id}/clone", s.handleCloneProgram)
			r.Delete("/{id}", s.handleDeleteProgram)
		})
	})

	// Live session
	s.router.Route("/api/v1/live", func(r chi.Router) {
		r.Get("/", s.handleLiveView)

		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))
			r.Post("/start", s.handleLiveStart)
			r.Post("/sets", s.handleLiveCompleteSet)
			r.Post("/pause", s.handleLivePause)
			r.Post("/rest/skip", s.handleLiveSkipRest)
			r.Post("/rest/extend", s.handleLiveExtendRest)
			r.Post("/finish", s.handleLiveFinish)
			r.Post("/reset", s.handleLiveReset)
			r.Delete("/", s.handleLiveDiscard)
		})
	})

	// Training history
	s.router.Get("/api/v1/trainings", s.handleQueryTrainings)
	s.router.Get("/api/v1/trainings/stats", s.handleTrainingStats)
	s.router.Get("/api/v1/trainings/volume", s.handleExerciseVolume)
	s.router.Get("/api/v1/trainings/{id}", s.handleGetTraining)
}
