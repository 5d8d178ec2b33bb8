// ABOUTME: JSON views of workouts and exercises returned by tools and resources.
// ABOUTME: Flattens IDs and dates to strings for schema-friendly output.
package mcp

import (
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/workouts"
)

type exerciseView struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Sets   int     `json:"sets"`
	Reps   int     `json:"reps"`
	Weight float64 `json:"weight"`
	Notes  string  `json:"notes,omitempty"`
}

type workoutView struct {
	ID        string         `json:"id"`
	ShortID   string         `json:"short_id"`
	Name      string         `json:"name"`
	Date      string         `json:"date"`
	Notes     string         `json:"notes,omitempty"`
	CreatedAt string         `json:"created_at"`
	UpdatedAt string         `json:"updated_at"`
	Exercises []exerciseView `json:"exercises,omitempty"`
}

func newExerciseView(e *models.Exercise) exerciseView {
	v := exerciseView{
		ID:     e.ID.String(),
		Name:   e.Name,
		Sets:   e.Sets,
		Reps:   e.Reps,
		Weight: e.Weight,
	}
	if e.Notes != nil {
		v.Notes = *e.Notes
	}
	return v
}

func newWorkoutView(w *models.Workout, exercises []*models.Exercise) workoutView {
	v := workoutView{
		ID:        w.ID.String(),
		ShortID:   w.ID.String()[:8],
		Name:      w.Name,
		Date:      w.Date.Format(models.DateLayout),
		CreatedAt: w.CreatedAt.Format(time.RFC3339),
		UpdatedAt: w.UpdatedAt.Format(time.RFC3339),
	}
	if w.Notes != nil {
		v.Notes = *w.Notes
	}
	for _, e := range exercises {
		v.Exercises = append(v.Exercises, newExerciseView(e))
	}
	return v
}

type exerciseInput struct {
	Name   string  `json:"name" jsonschema:"Exercise name, e.g. Bench press"`
	Sets   int     `json:"sets,omitempty" jsonschema:"Number of sets (default 0)"`
	Reps   int     `json:"reps,omitempty" jsonschema:"Reps per set (default 0)"`
	Weight float64 `json:"weight,omitempty" jsonschema:"Weight per rep (default 0)"`
	Notes  string  `json:"notes,omitempty" jsonschema:"Optional notes"`
}

func toNewExercises(in []exerciseInput) []workouts.NewExercise {
	out := make([]workouts.NewExercise, 0, len(in))
	for _, e := range in {
		ne := workouts.NewExercise{Name: e.Name, Sets: e.Sets, Reps: e.Reps, Weight: e.Weight}
		if e.Notes != "" {
			notes := e.Notes
			ne.Notes = &notes
		}
		out = append(out, ne)
	}
	return out
}

// parseDate accepts YYYY-MM-DD or an RFC 3339 timestamp. An empty string
// yields nil.
func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(models.DateLayout, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, &workouts.ValidationError{Field: "date", Reason: fmt.Sprintf("must be YYYY-MM-DD, got %q", s)}
	}
	return &t, nil
}

func newWorkoutInput(name string, date *time.Time, notes string) workouts.NewWorkout {
	in := workouts.NewWorkout{Name: name, Date: date}
	if notes != "" {
		in.Notes = &notes
	}
	return in
}

func newProfileOutput(p *models.Profile) profileOutput {
	out := profileOutput{
		ID:          p.ID.String(),
		DisplayName: p.DisplayName(),
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339),
	}
	if p.Username != nil {
		out.Username = *p.Username
	}
	return out
}
