package mcp

import (
	"context"
	"time"

	"github.com/claude/liftlog/internal/session"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// defaultTimeRange returns start/end defaulting to the last 30 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -30)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// --- Tool definitions ---

var toolGetPrograms = mcp.NewTool("get_programs",
	mcp.WithDescription("List all workout programs with their ordered exercise templates (sets, rep targets, rest times, notes)."),
)

var toolGetTrainings = mcp.NewTool("get_trainings",
	mcp.WithDescription("Query finished training sessions. Returns per-session summaries: program, duration, active duration (pauses excluded), and completed/total set counts."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
)

var toolGetTrainingDetail = mcp.NewTool("get_training_detail",
	mcp.WithDescription("Get one finished training with full per-set detail: weight, target reps, partial/actual reps, and completion timestamps."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Training record UUID")),
)

var toolGetTrainingStats = mcp.NewTool("get_training_stats",
	mcp.WithDescription("Get per-week or per-month training totals (sessions, minutes, set completion) plus per-exercise set volume for a date range."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
	mcp.WithString("bucket", mcp.Description("Aggregation bucket: '1 week' (default) or '1 month'.")),
)

var toolGetLiveSession = mcp.NewTool("get_live_session",
	mcp.WithDescription("Get the in-progress workout session, if any: exercise/set grid, current exercise, rest countdown, pause state, and durations."),
)

var toolGetExerciseWeight = mcp.NewTool("get_exercise_weight",
	mcp.WithDescription("Look up the remembered last-used weight for an exercise (current-session cache first, then the all-time record)."),
	mcp.WithString("exercise_id", mcp.Required(), mcp.Description("Exercise template ID, e.g. push-a-bench-press")),
)

// --- Tool handlers ---

func (h *handlers) getPrograms(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	programs, err := h.ds.ListPrograms(ctx)
	if err != nil {
		h.log.Error("mcp get_programs", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(programs)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getTrainings(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	trainings, err := h.ds.QueryTrainings(ctx, start, end, 1)
	if err != nil {
		h.log.Error("mcp get_trainings", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(trainings)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getTrainingDetail(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idStr, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	trainingID, err := uuid.Parse(idStr)
	if err != nil {
		return mcp.NewToolResultError("invalid training id"), nil
	}

	detail, err := h.ds.GetTraining(ctx, trainingID, 1)
	if err != nil {
		h.log.Error("mcp get_training_detail", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(detail)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getTrainingStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}
	bucket := req.GetString("bucket", "1 week")

	periods, err := h.ds.GetTrainingStats(ctx, start, end, bucket, 1)
	if err != nil {
		h.log.Error("mcp get_training_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	volume, err := h.ds.GetExerciseVolume(ctx, start, end, 1)
	if err != nil {
		h.log.Error("mcp get_training_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"periods":        periods,
		"exerciseVolume": volume,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getLiveSession(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.sessions == nil {
		return mcp.NewToolResultError("live session state is not available"), nil
	}

	s, err := h.sessions.Load()
	if err != nil {
		h.log.Error("mcp get_live_session", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if s == nil {
		return mcp.NewToolResultText("no active session"), nil
	}

	program, err := h.ds.GetProgram(ctx, s.ProgramID)
	if err != nil {
		return mcp.NewToolResultError("program lookup failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(session.BuildView(s, program, h.weights, time.Now()))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getExerciseWeight(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exerciseID, err := req.RequireString("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}
	if h.weights == nil {
		return mcp.NewToolResultError("weight memory is not available"), nil
	}

	resp := map[string]any{"exerciseId": exerciseID}
	if w, ok, err := h.weights.LastSessionWeight(exerciseID); err == nil && ok {
		resp["lastSessionWeight"] = w
	}
	if w, ok, err := h.weights.LastWeight(exerciseID); err == nil && ok {
		resp["lastWeight"] = w
	}

	result, err := mcp.NewToolResultJSON(resp)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
