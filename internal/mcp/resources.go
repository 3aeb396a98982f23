package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

var resRecentTrainings = mcp.NewResource(
	"liftlog://trainings/recent",
	"Recent trainings",
	mcp.WithResourceDescription("Finished training sessions from the last 14 days."),
	mcp.WithMIMEType("application/json"),
)

var resProgramCatalog = mcp.NewResource(
	"liftlog://programs",
	"Program catalog",
	mcp.WithResourceDescription("All workout programs with their exercise templates."),
	mcp.WithMIMEType("application/json"),
)

func (h *handlers) recentTrainings(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -14)

	trainings, err := h.ds.QueryTrainings(ctx, start, end, 1)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(trainings)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) programCatalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	programs, err := h.ds.ListPrograms(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(programs)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
