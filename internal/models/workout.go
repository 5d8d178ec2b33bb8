// ABOUTME: Workout and Exercise models for strength-training logs.
// ABOUTME: Workouts are dated sessions owned by one user; exercises hang off them.
package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar-date format used for workout dates.
const DateLayout = "2006-01-02"

// Workout represents a dated training session.
type Workout struct {
	ID        uuid.UUID  `json:"id"`
	Owner     string     `json:"owner"`
	Name      string     `json:"name"`
	Date      time.Time  `json:"date"`
	Notes     *string    `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Exercises []Exercise `json:"exercises,omitempty"` // Populated when fetching full workout
}

// NewWorkout creates a new Workout dated today with generated UUID and timestamps.
func NewWorkout(owner, name string) *Workout {
	now := time.Now().UTC()
	return &Workout{
		ID:        uuid.New(),
		Owner:     owner,
		Name:      name,
		Date:      DateOf(now),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// WithDate sets the calendar date of the workout.
func (w *Workout) WithDate(t time.Time) *Workout {
	w.Date = DateOf(t)
	return w
}

// WithNotes sets notes on the workout.
func (w *Workout) WithNotes(notes string) *Workout {
	w.Notes = &notes
	return w
}

// WithCreatedAt sets both timestamps, used when the caller owns the clock.
func (w *Workout) WithCreatedAt(t time.Time) *Workout {
	w.CreatedAt = t.UTC()
	w.UpdatedAt = t.UTC()
	return w
}

// Exercise represents one movement logged within a workout.
type Exercise struct {
	ID        uuid.UUID `json:"id"`
	WorkoutID uuid.UUID `json:"workout_id"`
	Name      string    `json:"name"`
	Sets      int       `json:"sets"`
	Reps      int       `json:"reps"`
	Weight    float64   `json:"weight"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewExercise creates a new Exercise for the given workout.
// Weight is kept at two-decimal precision.
func NewExercise(workoutID uuid.UUID, name string, sets, reps int, weight float64) *Exercise {
	return &Exercise{
		ID:        uuid.New(),
		WorkoutID: workoutID,
		Name:      name,
		Sets:      sets,
		Reps:      reps,
		Weight:    RoundWeight(weight),
		CreatedAt: time.Now().UTC(),
	}
}

// WithNotes sets notes on the exercise.
func (e *Exercise) WithNotes(notes string) *Exercise {
	e.Notes = &notes
	return e
}

// DateOf truncates t to its calendar date, expressed as midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// RoundWeight rounds a weight to two decimal places.
func RoundWeight(w float64) float64 {
	return math.Round(w*100) / 100
}
