package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/liftlog/internal/models"
)

// Store is the durable snapshot store for the single active session.
// Load returns (nil, nil) when no session exists.
type Store interface {
	Load() (*Session, error)
	Save(s *Session) error
	Clear() error
}

// WeightMemory caches previously used training loads per exercise: a
// durable all-time last weight plus a per-session cache that is cleared at
// session start and consulted first when suggesting defaults.
type WeightMemory interface {
	LastWeight(exerciseID string) (float64, bool, error)
	LastSessionWeight(exerciseID string) (float64, bool, error)
	SetLastWeight(exerciseID string, weight float64) error
	ClearSessionWeights() error
}

// Catalog resolves program templates. GetProgram returns ErrProgramNotFound
// (possibly wrapped) for unknown ids.
type Catalog interface {
	GetProgram(ctx context.Context, id string) (*models.ProgramTemplate, error)
}

// RecordSink accepts finalized training records for permanent storage.
type RecordSink interface {
	CreateTraining(ctx context.Context, rec *models.TrainingRecord) error
}

// Hooks receives render events from the controller. Implementations must
// not call back into the controller; they run on its timer goroutines and
// inside its mutation path.
type Hooks interface {
	SessionChanged(v *View)
	DurationTick(activeDisplay, totalDisplay string)
	RestTick(label string, remaining time.Duration)
	RestCompleted(label string)
}

// NopHooks discards all render events.
type NopHooks struct{}

func (NopHooks) SessionChanged(*View)           {}
func (NopHooks) DurationTick(string, string)    {}
func (NopHooks) RestTick(string, time.Duration) {}
func (NopHooks) RestCompleted(string)           {}

// Controller owns the live session: it serializes every mutation behind a
// mutex, re-reading the snapshot from the store, mutating, and re-persisting
// it, and it owns the two display timers (a 1 s duration tick and a 100 ms
// rest tick). Timer ticks are read-only against the persisted snapshot —
// with the single specified exception of clearing an expired rest window.
// Construct once per active view and tear down with Dispose.
type Controller struct {
	store   Store
	weights WeightMemory
	catalog Catalog
	sink    RecordSink
	hooks   Hooks
	log     *slog.Logger
	now     func() time.Time

	durationTickEvery time.Duration
	restTickEvery     time.Duration

	mu           sync.Mutex
	durationStop chan struct{}
	restStop     chan struct{}
}

// NewController wires the engine to its collaborators. A nil hooks is
// replaced with NopHooks.
func NewController(store Store, weights WeightMemory, catalog Catalog, sink RecordSink, hooks Hooks, log *slog.Logger) *Controller {
	if hooks == nil {
		hooks = NopHooks{}
	}
	return &Controller{
		store:             store,
		weights:           weights,
		catalog:           catalog,
		sink:              sink,
		hooks:             hooks,
		log:               log,
		now:               time.Now,
		durationTickEvery: time.Second,
		restTickEvery:     100 * time.Millisecond,
	}
}

// Start creates a fresh session from the given program, discarding any
// prior snapshot, and begins the warm-up countdown.
func (c *Controller) Start(ctx context.Context, programID string) (*View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	program, err := c.catalog.GetProgram(ctx, programID)
	if err != nil {
		return nil, fmt.Errorf("loading program %s: %w", programID, err)
	}

	if err := c.weights.ClearSessionWeights(); err != nil {
		c.log.Warn("clearing session weights", "error", err)
	}

	s := New(program, c.now())
	if err := c.store.Save(s); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	c.stopTimersLocked()
	c.startTimersLocked(s)

	v := BuildView(s, program, c.weights, c.now())
	c.hooks.SessionChanged(v)
	c.log.Info("session started", "program", program.DisplayName, "exercises", len(program.Exercises))
	return v, nil
}

// Resume re-hydrates a persisted session, repairing malformed timing fields
// and clearing an already-elapsed rest window. A session bound to a program
// no longer in the catalog is discarded rather than resumed.
func (c *Controller) Resume(ctx context.Context) (*View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if s == nil {
		return nil, ErrNoActiveSession
	}

	program, err := c.catalog.GetProgram(ctx, s.ProgramID)
	if err != nil {
		// Orphaned session: the bound program was deleted. Discard instead
		// of resuming into a state nothing can render.
		if clearErr := c.store.Clear(); clearErr != nil {
			c.log.Warn("clearing orphaned session", "error", clearErr)
		}
		c.log.Info("discarded orphaned session", "programId", s.ProgramID)
		return nil, fmt.Errorf("resuming session: %w", err)
	}

	if s.Normalize(c.now()) {
		if err := c.store.Save(s); err != nil {
			return nil, fmt.Errorf("saving normalized session: %w", err)
		}
	}

	c.stopTimersLocked()
	c.startTimersLocked(s)

	v := BuildView(s, program, c.weights, c.now())
	c.hooks.SessionChanged(v)
	c.log.Info("session resumed", "program", s.ProgramName, "paused", s.Paused)
	return v, nil
}

// CompleteSet applies a set-completion event. Rejections leave both the
// snapshot and weight memory untouched.
func (c *Controller) CompleteSet(ctx context.Context, in CompleteSetInput) (*View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, program, err := c.loadBound(ctx)
	if err != nil {
		return nil, err
	}

	outcome, err := s.CompleteSet(program, in, c.now())
	if err != nil {
		return nil, err
	}

	if in.Weight != nil {
		if err := c.weights.SetLastWeight(s.Exercises[in.Exercise].ExerciseID, *in.Weight); err != nil {
			c.log.Warn("saving exercise weight", "error", err)
		}
	}

	if err := c.store.Save(s); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	if outcome.RestStarted {
		c.stopRestLocked()
		c.startRestLocked()
	}

	v := BuildView(s, program, c.weights, c.now())
	c.hooks.SessionChanged(v)
	return v, nil
}

// TogglePause flips pause state. Pausing cancels both timers but retains
// the rest window; resuming restarts them, clearing the rest window if it
// elapsed while paused.
func (c *Controller) TogglePause(ctx context.Context) (*View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, program, err := c.loadBound(ctx)
	if err != nil {
		return nil, err
	}

	s.TogglePause(c.now())
	if !s.Paused && s.Rest != nil && s.Rest.Remaining(c.now()) <= 0 {
		s.ClearRest()
	}
	if err := c.store.Save(s); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	if s.Paused {
		c.stopTimersLocked()
	} else {
		c.startTimersLocked(s)
	}

	v := BuildView(s, program, c.weights, c.now())
	c.hooks.SessionChanged(v)
	return v, nil
}

// SkipRest clears the active rest window immediately, with no completion cue.
func (c *Controller) SkipRest(ctx context.Context) (*View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, program, err := c.loadBound(ctx)
	if err != nil {
		return nil, err
	}

	c.stopRestLocked()
	s.ClearRest()
	if err := c.store.Save(s); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	v := BuildView(s, program, c.weights, c.now())
	c.hooks.SessionChanged(v)
	return v, nil
}

// ExtendRest adds the fixed increment to the active rest window. A no-op
// when no rest is running.
func (c *Controller) ExtendRest(ctx context.Context) (*View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, program, err := c.loadBound(ctx)
	if err != nil {
		return nil, err
	}

	if s.ExtendRest(RestExtendIncrement) {
		if err := c.store.Save(s); err != nil {
			return nil, fmt.Errorf("saving session: %w", err)
		}
	}

	v := BuildView(s, program, c.weights, c.now())
	c.hooks.SessionChanged(v)
	return v, nil
}

// Finish finalizes the session into a training record and hands it to the
// sink. The snapshot is discarded only after the sink confirms persistence;
// a sink failure leaves the session intact so the user can retry.
func (c *Controller) Finish(ctx context.Context) (*models.TrainingRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, program, err := c.loadBound(ctx)
	if err != nil {
		return nil, err
	}

	rec := Finalize(s, program, c.now())
	if err := c.sink.CreateTraining(ctx, rec); err != nil {
		return nil, fmt.Errorf("saving training record: %w", err)
	}

	c.stopTimersLocked()
	if err := c.store.Clear(); err != nil {
		c.log.Warn("clearing session after finish", "error", err)
	}
	c.log.Info("session finished",
		"program", rec.ProgramName,
		"duration_min", rec.DurationMinutes,
		"active_min", rec.ActiveMinutes,
		"sets", fmt.Sprintf("%d/%d", rec.CompletedSets, rec.TotalSets))
	return rec, nil
}

// Reset discards all progress and recreates the session from the same
// template. Destructive; callers confirm with the user first.
func (c *Controller) Reset(ctx context.Context) (*View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if s == nil {
		return nil, ErrNoActiveSession
	}
	program, err := c.catalog.GetProgram(ctx, s.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("loading program %s: %w", s.ProgramID, err)
	}

	if err := c.weights.ClearSessionWeights(); err != nil {
		c.log.Warn("clearing session weights", "error", err)
	}

	fresh := New(program, c.now())
	if err := c.store.Save(fresh); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	c.stopTimersLocked()
	c.startTimersLocked(fresh)

	v := BuildView(fresh, program, c.weights, c.now())
	c.hooks.SessionChanged(v)
	c.log.Info("session reset", "program", program.DisplayName)
	return v, nil
}

// Discard drops the session without producing a record. Used when the
// bound program has been deleted.
func (c *Controller) Discard(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopTimersLocked()
	if err := c.store.Clear(); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	c.log.Info("session discarded")
	return nil
}

// DiscardIfProgram discards the active session when it is bound to the
// given program. Reports whether a session was discarded.
func (c *Controller) DiscardIfProgram(ctx context.Context, programID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.store.Load()
	if err != nil {
		return false, fmt.Errorf("loading session: %w", err)
	}
	if s == nil || s.ProgramID != programID {
		return false, nil
	}
	c.stopTimersLocked()
	if err := c.store.Clear(); err != nil {
		return false, fmt.Errorf("clearing session: %w", err)
	}
	c.log.Info("session discarded with program", "programId", programID)
	return true, nil
}

// CurrentView returns the render state of the active session.
func (c *Controller) CurrentView(ctx context.Context) (*View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, program, err := c.loadBound(ctx)
	if err != nil {
		return nil, err
	}
	return BuildView(s, program, c.weights, c.now()), nil
}

// Dispose cancels both timers. The snapshot stays in the store so the
// session can be resumed later.
func (c *Controller) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTimersLocked()
}

// loadBound loads the active session and its program template.
// Callers hold the mutex.
func (c *Controller) loadBound(ctx context.Context) (*Session, *models.ProgramTemplate, error) {
	s, err := c.store.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading session: %w", err)
	}
	if s == nil {
		return nil, nil, ErrNoActiveSession
	}
	program, err := c.catalog.GetProgram(ctx, s.ProgramID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading program %s: %w", s.ProgramID, err)
	}
	return s, program, nil
}

// --- timers ---

// startTimersLocked starts the duration ticker and, when a rest window with
// time left is active, the rest ticker. No-op for a paused session.
func (c *Controller) startTimersLocked(s *Session) {
	if s.Paused {
		return
	}
	c.startDurationLocked()
	if s.Rest != nil && s.Rest.Remaining(c.now()) > 0 {
		c.startRestLocked()
	}
}

func (c *Controller) stopTimersLocked() {
	c.stopDurationLocked()
	c.stopRestLocked()
}

func (c *Controller) startDurationLocked() {
	if c.durationStop != nil {
		return
	}
	stop := make(chan struct{})
	c.durationStop = stop
	go func() {
		t := time.NewTicker(c.durationTickEvery)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				c.onDurationTick()
			}
		}
	}()
}

func (c *Controller) stopDurationLocked() {
	if c.durationStop != nil {
		close(c.durationStop)
		c.durationStop = nil
	}
}

func (c *Controller) startRestLocked() {
	if c.restStop != nil {
		return
	}
	stop := make(chan struct{})
	c.restStop = stop
	go func() {
		t := time.NewTicker(c.restTickEvery)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				c.onRestTick()
			}
		}
	}()
}

func (c *Controller) stopRestLocked() {
	if c.restStop != nil {
		close(c.restStop)
		c.restStop = nil
	}
}

// onDurationTick re-derives the duration displays from the persisted
// snapshot. Read-only.
func (c *Controller) onDurationTick() {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.store.Load()
	if err != nil || s == nil || s.Paused {
		return
	}
	now := c.now()
	c.hooks.DurationTick(formatClock(s.ActiveDuration(now)), formatClock(s.TotalDuration(now)))
}

// onRestTick recomputes the countdown from the wall clock. When it reaches
// zero the completion cue fires exactly once: the window is cleared in the
// persisted snapshot before the cue, so a straggling tick finds no rest
// window and does nothing.
func (c *Controller) onRestTick() {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.store.Load()
	if err != nil {
		return
	}
	if s == nil || s.Rest == nil || s.Paused {
		c.stopRestLocked()
		return
	}

	remaining := s.Rest.Remaining(c.now())
	if remaining > 0 {
		c.hooks.RestTick(s.Rest.Label, remaining)
		return
	}

	label := s.Rest.Label
	s.ClearRest()
	if err := c.store.Save(s); err != nil {
		c.log.Warn("saving session after rest expiry", "error", err)
	}
	c.stopRestLocked()
	c.hooks.RestCompleted(label)
}
