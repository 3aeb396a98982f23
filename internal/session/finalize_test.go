package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

// TestFinalize_Durations verifies whole-minute rounding of both durations
// and that active time excludes the paused interval: a session with 25:30 on
// the wall clock and 5:10 paused yields 25 total / 20 active minutes.
func TestFinalize_Durations(t *testing.T) {
	program := testProgram()
	start := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	s := New(program, start)

	s.TogglePause(start.Add(10 * time.Minute))
	s.TogglePause(start.Add(15*time.Minute + 10*time.Second))
	now := start.Add(25*time.Minute + 30*time.Second)

	rec := Finalize(s, program, now)
	if rec.DurationMinutes != 25 {
		t.Errorf("DurationMinutes = %d, want 25", rec.DurationMinutes)
	}
	if rec.ActiveMinutes != 20 {
		t.Errorf("ActiveMinutes = %d, want 20", rec.ActiveMinutes)
	}
	if rec.Date != start {
		t.Errorf("Date = %v, want session start %v", rec.Date, start)
	}
	if rec.ID == uuid.Nil {
		t.Error("record ID not assigned")
	}
}

// TestFinalize_Summary verifies the notes line carries the start time,
// program name, both durations, and the set tally in its fixed format.
func TestFinalize_Summary(t *testing.T) {
	program := testProgram()
	start := time.Date(2026, 3, 1, 18, 30, 45, 0, time.UTC)
	s := New(program, start)

	now := start.Add(10 * time.Minute)
	if _, err := s.CompleteSet(program, CompleteSetInput{Exercise: 0, Set: 0}, now); err != nil {
		t.Fatal(err)
	}

	rec := Finalize(s, program, now)
	want := "Live training - 18:30:45 | Push Day A | Duration: 10 min (10 min active) | Sets: 1/8"
	if rec.Notes != want {
		t.Errorf("Notes = %q\nwant      %q", rec.Notes, want)
	}
	if rec.CompletedSets != 1 || rec.TotalSets != 8 {
		t.Errorf("sets = %d/%d, want 1/8", rec.CompletedSets, rec.TotalSets)
	}
}

// TestFinalize_ExerciseElapsed verifies per-exercise elapsed time spans the
// first to last completed set and is absent for untouched exercises.
func TestFinalize_ExerciseElapsed(t *testing.T) {
	program := testProgram()
	start := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	s := New(program, start)

	times := []time.Duration{2 * time.Minute, 5 * time.Minute, 9 * time.Minute}
	for i, offset := range times {
		if _, err := s.CompleteSet(program, CompleteSetInput{Exercise: 0, Set: i}, start.Add(offset)); err != nil {
			t.Fatal(err)
		}
	}

	rec := Finalize(s, program, start.Add(10*time.Minute))
	if len(rec.Exercises) != 3 {
		t.Fatalf("exercises = %d, want 3", len(rec.Exercises))
	}

	bench := rec.Exercises[0]
	if bench.ElapsedMs == nil {
		t.Fatal("bench ElapsedMs = nil")
	}
	if want := (7 * time.Minute).Milliseconds(); *bench.ElapsedMs != want {
		t.Errorf("bench ElapsedMs = %d, want %d", *bench.ElapsedMs, want)
	}

	// Untouched exercises carry no elapsed time.
	for _, ex := range rec.Exercises[1:] {
		if ex.ElapsedMs != nil {
			t.Errorf("%s ElapsedMs = %d, want nil", ex.Name, *ex.ElapsedMs)
		}
	}
}

// TestFinalize_SingleCompletedSet verifies one completed set yields a zero
// (not nil) elapsed time, since first and last timestamp coincide.
func TestFinalize_SingleCompletedSet(t *testing.T) {
	program := testProgram()
	start := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	s := New(program, start)

	if _, err := s.CompleteSet(program, CompleteSetInput{Exercise: 0, Set: 0}, start.Add(time.Minute)); err != nil {
		t.Fatal(err)
	}

	rec := Finalize(s, program, start.Add(2*time.Minute))
	if rec.Exercises[0].ElapsedMs == nil || *rec.Exercises[0].ElapsedMs != 0 {
		t.Errorf("ElapsedMs = %v, want 0", rec.Exercises[0].ElapsedMs)
	}
}

// TestFinalize_SetDetail verifies every set row carries the template rep
// target plus the recorded weight and partial/actual-rep data, including
// pending sets of a half-finished session.
func TestFinalize_SetDetail(t *testing.T) {
	program := testProgram()
	start := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	s := New(program, start)

	if _, err := s.CompleteSet(program, CompleteSetInput{
		Exercise: 0, Set: 0, Weight: fptr(100), Partial: true, ActualReps: iptr(4),
	}, start.Add(time.Minute)); err != nil {
		t.Fatal(err)
	}

	rec := Finalize(s, program, start.Add(5*time.Minute))
	bench := rec.Exercises[0]
	if bench.Name != "Bench Press" || bench.ExerciseID != "bench" {
		t.Errorf("exercise identity = %q/%q", bench.Name, bench.ExerciseID)
	}
	if len(bench.Sets) != 3 {
		t.Fatalf("bench sets = %d, want 3", len(bench.Sets))
	}

	first := bench.Sets[0]
	if !first.Completed || first.Weight == nil || *first.Weight != 100 {
		t.Errorf("first set = %+v", first)
	}
	if !first.Partial || first.ActualReps == nil || *first.ActualReps != 4 {
		t.Errorf("partial detail = %+v", first)
	}
	if first.TargetReps != "5" {
		t.Errorf("TargetReps = %q, want template value", first.TargetReps)
	}

	second := bench.Sets[1]
	if second.Completed || second.CompletedAt != nil || second.Weight != nil {
		t.Errorf("pending set = %+v", second)
	}
	if second.SetNumber != 2 {
		t.Errorf("SetNumber = %d, want 2", second.SetNumber)
	}
}

// TestFinalize_EmptySession verifies finalizing with zero completed sets
// still produces a coherent record.
func TestFinalize_EmptySession(t *testing.T) {
	program := testProgram()
	start := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	s := New(program, start)

	rec := Finalize(s, program, start.Add(90*time.Second))
	if rec.CompletedSets != 0 || rec.TotalSets != 8 {
		t.Errorf("sets = %d/%d, want 0/8", rec.CompletedSets, rec.TotalSets)
	}
	if rec.DurationMinutes != 1 {
		t.Errorf("DurationMinutes = %d, want 1", rec.DurationMinutes)
	}
	want := "Live training - 18:00:00 | Push Day A | Duration: 1 min (1 min active) | Sets: 0/8"
	if rec.Notes != want {
		t.Errorf("Notes = %q", rec.Notes)
	}
}
