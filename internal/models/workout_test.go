// ABOUTME: Tests for Workout, Exercise and Profile models.
// ABOUTME: Validates constructors, builder methods and date/weight helpers.
package models

import (
	"testing"
	"time"
)

func TestNewWorkout(t *testing.T) {
	w := NewWorkout("user-1", "Push day")

	if w.ID.String() == "" {
		t.Error("expected UUID to be set")
	}
	if w.Owner != "user-1" {
		t.Errorf("Owner = %s, want user-1", w.Owner)
	}
	if w.Name != "Push day" {
		t.Errorf("Name = %s, want Push day", w.Name)
	}
	if w.Date.IsZero() {
		t.Error("expected Date to be set")
	}
	if w.Date.Hour() != 0 || w.Date.Location() != time.UTC {
		t.Errorf("expected Date to be midnight UTC, got %v", w.Date)
	}
	if !w.CreatedAt.Equal(w.UpdatedAt) {
		t.Error("expected CreatedAt and UpdatedAt to match on creation")
	}
}

func TestWorkoutWithDate(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	w := NewWorkout("user-1", "Legs").WithDate(time.Date(2025, 1, 31, 23, 30, 0, 0, loc))

	want := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	if !w.Date.Equal(want) {
		t.Errorf("Date = %v, want %v", w.Date, want)
	}
}

func TestWorkoutWithNotes(t *testing.T) {
	w := NewWorkout("user-1", "Legs").WithNotes("felt strong")

	if w.Notes == nil || *w.Notes != "felt strong" {
		t.Error("expected Notes to be 'felt strong'")
	}
}

func TestNewExercise(t *testing.T) {
	w := NewWorkout("user-1", "Push day")
	e := NewExercise(w.ID, "Bench press", 3, 10, 60.456)

	if e.WorkoutID != w.ID {
		t.Error("expected WorkoutID to match")
	}
	if e.Name != "Bench press" {
		t.Errorf("Name = %s, want Bench press", e.Name)
	}
	if e.Sets != 3 || e.Reps != 10 {
		t.Errorf("Sets/Reps = %d/%d, want 3/10", e.Sets, e.Reps)
	}
	if e.Weight != 60.46 {
		t.Errorf("Weight = %f, want 60.46", e.Weight)
	}
}

func TestRoundWeight(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{20, 20},
		{22.5, 22.5},
		{22.499, 22.5},
		{100.004, 100},
	}

	for _, tt := range tests {
		if got := RoundWeight(tt.in); got != tt.want {
			t.Errorf("RoundWeight(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestProfileDisplayName(t *testing.T) {
	p := NewProfile("user-1")
	if p.DisplayName() != "user-1" {
		t.Errorf("DisplayName = %s, want user-1", p.DisplayName())
	}

	p.WithUsername("lifter")
	if p.DisplayName() != "lifter" {
		t.Errorf("DisplayName = %s, want lifter", p.DisplayName())
	}
}
