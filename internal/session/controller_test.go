package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/models"
)

// memStore is a Store that round-trips snapshots through JSON, so tests
// catch anything that would not survive real persistence.
type memStore struct {
	data    []byte
	loadErr error
	saveErr error
}

func (m *memStore) Load() (*Session, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.data == nil {
		return nil, nil
	}
	var s Session
	if err := json.Unmarshal(m.data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (m *memStore) Save(s *Session) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.data = data
	return nil
}

func (m *memStore) Clear() error {
	m.data = nil
	return nil
}

type memWeights struct {
	all     map[string]float64
	session map[string]float64
}

func newMemWeights() *memWeights {
	return &memWeights{all: map[string]float64{}, session: map[string]float64{}}
}

func (m *memWeights) LastWeight(id string) (float64, bool, error) {
	w, ok := m.all[id]
	return w, ok, nil
}

func (m *memWeights) LastSessionWeight(id string) (float64, bool, error) {
	w, ok := m.session[id]
	return w, ok, nil
}

func (m *memWeights) SetLastWeight(id string, w float64) error {
	m.all[id] = w
	m.session[id] = w
	return nil
}

func (m *memWeights) ClearSessionWeights() error {
	m.session = map[string]float64{}
	return nil
}

type memCatalog struct {
	programs map[string]*models.ProgramTemplate
}

func (m *memCatalog) GetProgram(_ context.Context, id string) (*models.ProgramTemplate, error) {
	p, ok := m.programs[id]
	if !ok {
		return nil, fmt.Errorf("program %s: %w", id, ErrProgramNotFound)
	}
	return p, nil
}

type memSink struct {
	records []*models.TrainingRecord
	err     error
}

func (m *memSink) CreateTraining(_ context.Context, rec *models.TrainingRecord) error {
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, rec)
	return nil
}

// fakeClock provides a controllable now function.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	ctrl    *Controller
	store   *memStore
	weights *memWeights
	sink    *memSink
	clock   *fakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := &memStore{}
	weights := newMemWeights()
	sink := &memSink{}
	catalog := &memCatalog{programs: map[string]*models.ProgramTemplate{"push-a": testProgram()}}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctrl := NewController(store, weights, catalog, sink, nil, log)
	clock := &fakeClock{t: time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)}
	ctrl.now = clock.now
	// Park the real tickers; tests drive ticks explicitly against the fake clock.
	ctrl.durationTickEvery = time.Hour
	ctrl.restTickEvery = time.Hour
	t.Cleanup(ctrl.Dispose)

	return &fixture{ctrl: ctrl, store: store, weights: weights, sink: sink, clock: clock}
}

// TestController_StartAndView verifies Start persists a fresh snapshot,
// clears the per-session weight cache, and returns a view with the warm-up
// countdown running.
func TestController_StartAndView(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.weights.session["bench"] = 95 // stale cache from a previous session

	v, err := f.ctrl.Start(ctx, "push-a")
	if err != nil {
		t.Fatal(err)
	}
	if v.ProgramName != "Push Day A" || v.TotalSets != 8 {
		t.Errorf("view = %q / %d sets", v.ProgramName, v.TotalSets)
	}
	if v.Rest == nil || v.Rest.Label != WarmupLabel {
		t.Errorf("rest = %+v, want warm-up", v.Rest)
	}
	if v.Rest.Display != "05:00" {
		t.Errorf("warm-up display = %q, want 05:00", v.Rest.Display)
	}
	if len(f.weights.session) != 0 {
		t.Error("session weight cache not cleared at start")
	}
	if f.store.data == nil {
		t.Error("snapshot not persisted")
	}

	// The view must be re-derivable from the store alone.
	v2, err := f.ctrl.CurrentView(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if v2.ProgramID != v.ProgramID || v2.TotalSets != v.TotalSets {
		t.Error("CurrentView diverges from Start view")
	}
}

func TestController_StartUnknownProgram(t *testing.T) {
	f := newFixture(t)
	_, err := f.ctrl.Start(context.Background(), "nope")
	if !errors.Is(err, ErrProgramNotFound) {
		t.Errorf("err = %v, want ErrProgramNotFound", err)
	}
}

// TestController_CompleteSetPersistsWeight verifies a completion with a
// weight feeds both weight caches, and the next pending set's suggestion
// picks up the session value.
func TestController_CompleteSetPersistsWeight(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.weights.all["bench"] = 95 // all-time record from past sessions

	if _, err := f.ctrl.Start(ctx, "push-a"); err != nil {
		t.Fatal(err)
	}

	f.clock.advance(time.Minute)
	v, err := f.ctrl.CompleteSet(ctx, CompleteSetInput{Exercise: 0, Set: 0, Weight: fptr(100)})
	if err != nil {
		t.Fatal(err)
	}

	if f.weights.all["bench"] != 100 || f.weights.session["bench"] != 100 {
		t.Errorf("weight caches = %v / %v, want 100 in both", f.weights.all["bench"], f.weights.session["bench"])
	}
	next := v.Exercises[0].Sets[1]
	if next.SuggestedWeight == nil || *next.SuggestedWeight != 100 {
		t.Errorf("suggestion = %v, want 100 from session cache", next.SuggestedWeight)
	}
}

// TestController_CompleteSetRejectionKeepsWeights verifies a rejected
// completion touches neither the snapshot nor the weight caches.
func TestController_CompleteSetRejectionKeepsWeights(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.ctrl.Start(ctx, "push-a"); err != nil {
		t.Fatal(err)
	}
	before := string(f.store.data)

	_, err := f.ctrl.CompleteSet(ctx, CompleteSetInput{Exercise: 1, Set: 0, Weight: fptr(60)})
	if !errors.Is(err, ErrNotCurrentSet) {
		t.Fatalf("err = %v, want ErrNotCurrentSet", err)
	}
	if len(f.weights.all) != 0 {
		t.Error("rejected completion recorded a weight")
	}
	if string(f.store.data) != before {
		t.Error("rejected completion changed the snapshot")
	}
}

// TestController_FinishPersistsRecord verifies the happy path: the record
// reaches the sink and the snapshot is cleared.
func TestController_FinishPersistsRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.ctrl.Start(ctx, "push-a"); err != nil {
		t.Fatal(err)
	}
	f.clock.advance(time.Minute)
	if _, err := f.ctrl.CompleteSet(ctx, CompleteSetInput{Exercise: 0, Set: 0, Weight: fptr(100)}); err != nil {
		t.Fatal(err)
	}
	f.clock.advance(24 * time.Minute)

	rec, err := f.ctrl.Finish(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(f.sink.records) != 1 {
		t.Fatalf("sink records = %d, want 1", len(f.sink.records))
	}
	if rec.DurationMinutes != 25 || rec.CompletedSets != 1 {
		t.Errorf("record = %d min, %d sets", rec.DurationMinutes, rec.CompletedSets)
	}
	if f.store.data != nil {
		t.Error("snapshot not cleared after finish")
	}
	if _, err := f.ctrl.CurrentView(ctx); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("view after finish: err = %v, want ErrNoActiveSession", err)
	}
}

// TestController_FinishSinkFailureKeepsSession verifies the ordering
// invariant: when the sink rejects the record the snapshot survives, so the
// user can retry instead of losing the workout.
func TestController_FinishSinkFailureKeepsSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.ctrl.Start(ctx, "push-a"); err != nil {
		t.Fatal(err)
	}
	f.sink.err = errors.New("database unreachable")

	if _, err := f.ctrl.Finish(ctx); err == nil {
		t.Fatal("expected sink error")
	}
	if f.store.data == nil {
		t.Fatal("snapshot discarded despite sink failure")
	}

	// Retry succeeds once the sink recovers.
	f.sink.err = nil
	if _, err := f.ctrl.Finish(ctx); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if len(f.sink.records) != 1 || f.store.data != nil {
		t.Error("retry did not persist exactly one record and clear the snapshot")
	}
}

// TestController_ResumeNormalizes verifies Resume repairs a snapshot whose
// rest window elapsed while the process was down.
func TestController_ResumeNormalizes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.ctrl.Start(ctx, "push-a"); err != nil {
		t.Fatal(err)
	}
	f.ctrl.Dispose()

	// 20 minutes pass while the process is down; the warm-up has elapsed.
	f.clock.advance(20 * time.Minute)

	v, err := f.ctrl.Resume(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if v.Rest != nil {
		t.Error("elapsed rest window survived resume")
	}
	if v.DurationDisplay != "20:00" {
		t.Errorf("duration display = %q, want 20:00", v.DurationDisplay)
	}
}

// TestController_ResumeOrphanedSession verifies a session bound to a program
// deleted from the catalog is discarded on resume rather than left wedged.
func TestController_ResumeOrphanedSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.ctrl.Start(ctx, "push-a"); err != nil {
		t.Fatal(err)
	}
	catalog := f.ctrl.catalog.(*memCatalog)
	delete(catalog.programs, "push-a")

	_, err := f.ctrl.Resume(ctx)
	if !errors.Is(err, ErrProgramNotFound) {
		t.Fatalf("err = %v, want ErrProgramNotFound", err)
	}
	if f.store.data != nil {
		t.Error("orphaned snapshot not discarded")
	}
}

func TestController_ResumeEmpty(t *testing.T) {
	f := newFixture(t)
	_, err := f.ctrl.Resume(context.Background())
	if !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("err = %v, want ErrNoActiveSession", err)
	}
}

// TestController_PauseRoundTrip verifies pause freezes active time and flips
// the button label, and that a rest window elapsing entirely within the
// pause is cleared on resume.
func TestController_PauseRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.ctrl.Start(ctx, "push-a"); err != nil {
		t.Fatal(err)
	}

	f.clock.advance(10 * time.Minute) // warm-up has elapsed but nothing cleared it yet
	v, err := f.ctrl.TogglePause(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !v.Paused || v.PauseLabel != "Resume" {
		t.Errorf("paused view = %v / %q", v.Paused, v.PauseLabel)
	}

	f.clock.advance(5 * time.Minute)
	v, err = f.ctrl.TogglePause(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if v.Paused || v.PauseLabel != "Pause" {
		t.Errorf("resumed view = %v / %q", v.Paused, v.PauseLabel)
	}
	if v.ActiveDisplay != "10:00" {
		t.Errorf("active display = %q, want 10:00", v.ActiveDisplay)
	}
	if v.DurationDisplay != "15:00" {
		t.Errorf("duration display = %q, want 15:00", v.DurationDisplay)
	}
	if v.Rest != nil {
		t.Error("rest window that elapsed during pause was not cleared")
	}
}

// TestController_SkipAndExtendRest covers the two manual rest controls.
func TestController_SkipAndExtendRest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.ctrl.Start(ctx, "push-a"); err != nil {
		t.Fatal(err)
	}

	v, err := f.ctrl.ExtendRest(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if v.Rest == nil || v.Rest.Display != "05:30" {
		t.Fatalf("extended rest = %+v, want 05:30", v.Rest)
	}

	v, err = f.ctrl.SkipRest(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if v.Rest != nil {
		t.Error("rest window survived skip")
	}

	// Extending with no active window is a no-op, not an error.
	if _, err := f.ctrl.ExtendRest(ctx); err != nil {
		t.Fatal(err)
	}
}

// TestController_RestTickFiresCueOnce verifies the expiry protocol: the
// first tick past the deadline clears the window and fires RestCompleted;
// subsequent ticks find no window and stay silent.
func TestController_RestTickFiresCueOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ticks, cues int
	f.ctrl.hooks = &countingHooks{onTick: func() { ticks++ }, onCompleted: func() { cues++ }}

	if _, err := f.ctrl.Start(ctx, "push-a"); err != nil {
		t.Fatal(err)
	}

	f.clock.advance(time.Minute)
	f.ctrl.onRestTick()
	if ticks != 1 || cues != 0 {
		t.Fatalf("mid-countdown: ticks=%d cues=%d", ticks, cues)
	}

	f.clock.advance(5 * time.Minute)
	f.ctrl.onRestTick()
	f.ctrl.onRestTick()
	f.ctrl.onRestTick()
	if cues != 1 {
		t.Errorf("cues = %d, want exactly 1", cues)
	}

	s, err := f.store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if s.Rest != nil {
		t.Error("expired rest window still persisted")
	}
}

// TestController_Reset verifies Reset rebuilds the session from the same
// template with all progress dropped and the session weight cache cleared.
func TestController_Reset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.ctrl.Start(ctx, "push-a"); err != nil {
		t.Fatal(err)
	}
	f.clock.advance(time.Minute)
	if _, err := f.ctrl.CompleteSet(ctx, CompleteSetInput{Exercise: 0, Set: 0, Weight: fptr(100)}); err != nil {
		t.Fatal(err)
	}

	f.clock.advance(time.Minute)
	v, err := f.ctrl.Reset(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if v.CompletedSets != 0 {
		t.Errorf("CompletedSets = %d, want 0", v.CompletedSets)
	}
	if v.Rest == nil || v.Rest.Label != WarmupLabel {
		t.Error("reset session missing its warm-up window")
	}
	if len(f.weights.session) != 0 {
		t.Error("session weight cache not cleared on reset")
	}
	// The all-time record survives a reset.
	if f.weights.all["bench"] != 100 {
		t.Error("all-time weight lost on reset")
	}
}

// TestController_DiscardIfProgram verifies targeted discard only fires for
// the bound program.
func TestController_DiscardIfProgram(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.ctrl.Start(ctx, "push-a"); err != nil {
		t.Fatal(err)
	}

	discarded, err := f.ctrl.DiscardIfProgram(ctx, "other")
	if err != nil || discarded {
		t.Fatalf("unrelated program: discarded=%v err=%v", discarded, err)
	}
	if f.store.data == nil {
		t.Fatal("unrelated discard dropped the session")
	}

	discarded, err = f.ctrl.DiscardIfProgram(ctx, "push-a")
	if err != nil || !discarded {
		t.Fatalf("bound program: discarded=%v err=%v", discarded, err)
	}
	if f.store.data != nil {
		t.Error("snapshot survived discard")
	}
}

// countingHooks counts rest events for the expiry tests.
type countingHooks struct {
	onTick      func()
	onCompleted func()
}

func (h *countingHooks) SessionChanged(*View)        {}
func (h *countingHooks) DurationTick(string, string) {}
func (h *countingHooks) RestTick(string, time.Duration) {
	if h.onTick != nil {
		h.onTick()
	}
}
func (h *countingHooks) RestCompleted(string) {
	if h.onCompleted != nil {
		h.onCompleted()
	}
}
