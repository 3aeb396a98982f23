// Package mcp exposes the training data and the live session over the
// Model Context Protocol, for use from LLM clients via stdio.
package mcp

import (
	"context"
	"log/slog"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/session"
	"github.com/claude/liftlog/internal/storage"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/server"
)

// DataSource abstracts the permanent-record layer for MCP tools.
// *storage.DB satisfies it.
type DataSource interface {
	ListPrograms(ctx context.Context) ([]models.ProgramTemplate, error)
	GetProgram(ctx context.Context, id string) (*models.ProgramTemplate, error)
	QueryTrainings(ctx context.Context, start, end time.Time, userID int) ([]models.TrainingRow, error)
	GetTraining(ctx context.Context, trainingID uuid.UUID, userID int) (*storage.TrainingDetail, error)
	GetTrainingStats(ctx context.Context, start, end time.Time, bucket string, userID int) ([]storage.TrainingPeriodStats, error)
	GetExerciseVolume(ctx context.Context, start, end time.Time, userID int) ([]storage.ExerciseVolumeStat, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)

// New creates an MCP server with all tools and resources registered.
// sessions and weights read the local state database; both may be nil when
// only the permanent records are served.
func New(ds DataSource, sessions session.Store, weights session.WeightMemory, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("LiftLog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("LiftLog training data server. Query workout programs, finished training sessions with per-set detail, the live in-progress session, and remembered exercise weights."),
	)

	h := &handlers{ds: ds, sessions: sessions, weights: weights, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolGetPrograms, Handler: h.getPrograms},
		server.ServerTool{Tool: toolGetTrainings, Handler: h.getTrainings},
		server.ServerTool{Tool: toolGetTrainingDetail, Handler: h.getTrainingDetail},
		server.ServerTool{Tool: toolGetTrainingStats, Handler: h.getTrainingStats},
		server.ServerTool{Tool: toolGetLiveSession, Handler: h.getLiveSession},
		server.ServerTool{Tool: toolGetExerciseWeight, Handler: h.getExerciseWeight},
	)

	s.AddResources(
		server.ServerResource{Resource: resRecentTrainings, Handler: h.recentTrainings},
		server.ServerResource{Resource: resProgramCatalog, Handler: h.programCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds       DataSource
	sessions session.Store
	weights  session.WeightMemory
	log      *slog.Logger
}
