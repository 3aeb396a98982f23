package session

import (
	"log/slog"
	"time"
)

// LogHooks logs state changes and the rest-completion cue. Per-tick events
// are dropped; logging ten lines a second would drown the request log.
type LogHooks struct {
	Log *slog.Logger
}

func (h LogHooks) SessionChanged(v *View) {
	h.Log.Debug("session changed",
		"program", v.ProgramName,
		"sets", v.CompletedSets,
		"total", v.TotalSets,
		"paused", v.Paused)
}

func (h LogHooks) DurationTick(string, string) {}

func (h LogHooks) RestTick(string, time.Duration) {}

func (h LogHooks) RestCompleted(label string) {
	h.Log.Info("rest complete", "label", label)
}
