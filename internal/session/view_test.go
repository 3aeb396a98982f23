package session

import (
	"testing"
	"time"
)

// TestBuildView_ActiveFlags verifies exactly one exercise and one set are
// marked active: the current exercise's current pending set.
func TestBuildView_ActiveFlags(t *testing.T) {
	program := testProgram()
	start := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	s := New(program, start)

	if _, err := s.CompleteSet(program, CompleteSetInput{Exercise: 0, Set: 0}, start.Add(time.Minute)); err != nil {
		t.Fatal(err)
	}

	v := BuildView(s, program, nil, start.Add(2*time.Minute))

	activeExercises, activeSets := 0, 0
	for i, ev := range v.Exercises {
		if ev.Active {
			activeExercises++
			if i != 0 {
				t.Errorf("exercise %d active, want 0", i)
			}
		}
		for j, sv := range ev.Sets {
			if sv.Active {
				activeSets++
				if i != 0 || j != 1 {
					t.Errorf("set %d/%d active, want 0/1", i, j)
				}
			}
		}
	}
	if activeExercises != 1 || activeSets != 1 {
		t.Errorf("active exercises=%d sets=%d, want 1/1", activeExercises, activeSets)
	}
}

// TestBuildView_SuggestionPreference verifies the weight default prefers the
// current session's cache over the all-time record, and that completed sets
// never carry a suggestion.
func TestBuildView_SuggestionPreference(t *testing.T) {
	program := testProgram()
	start := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	s := New(program, start)

	weights := newMemWeights()
	weights.all["bench"] = 95
	weights.all["ohp"] = 50
	weights.session["bench"] = 100

	if _, err := s.CompleteSet(program, CompleteSetInput{Exercise: 0, Set: 0, Weight: fptr(100)}, start.Add(time.Minute)); err != nil {
		t.Fatal(err)
	}

	v := BuildView(s, program, weights, start.Add(2*time.Minute))

	if got := v.Exercises[0].Sets[0].SuggestedWeight; got != nil {
		t.Errorf("completed set suggestion = %v, want nil", *got)
	}
	if got := v.Exercises[0].Sets[1].SuggestedWeight; got == nil || *got != 100 {
		t.Errorf("bench suggestion = %v, want 100 from session cache", got)
	}
	if got := v.Exercises[1].Sets[0].SuggestedWeight; got == nil || *got != 50 {
		t.Errorf("ohp suggestion = %v, want 50 from all-time record", got)
	}
	if got := v.Exercises[2].Sets[0].SuggestedWeight; got != nil {
		t.Errorf("dips suggestion = %v, want nil (no memory)", *got)
	}
}

// TestBuildView_ExerciseInfo verifies the card subtitle format.
func TestBuildView_ExerciseInfo(t *testing.T) {
	program := testProgram()
	start := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	s := New(program, start)

	v := BuildView(s, program, nil, start)
	want := "3 sets × 5 reps • 180s rest"
	if got := v.Exercises[0].Info; got != want {
		t.Errorf("Info = %q, want %q", got, want)
	}
}

// TestFormatClock verifies mm:ss rendering, including minutes past the hour
// and negative clamping.
func TestFormatClock(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00"},
		{9 * time.Second, "00:09"},
		{90 * time.Second, "01:30"},
		{75 * time.Minute, "75:00"},
		{-time.Second, "00:00"},
	}
	for _, tc := range cases {
		if got := formatClock(tc.d); got != tc.want {
			t.Errorf("formatClock(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}
