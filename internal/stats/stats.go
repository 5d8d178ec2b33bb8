// ABOUTME: Summary counters over a window of recent workouts.
// ABOUTME: ComputeStats is pure; Summarize reads the window through a Source.
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/gymlog/internal/models"
)

// DefaultWindow is how many recent workouts the summary looks at.
const DefaultWindow = 5

const (
	weekDays  = 7
	monthDays = 30
)

// Stats holds counters derived from a window of workouts. TotalWorkouts
// counts the window only, not the owner's lifetime total.
type Stats struct {
	TotalWorkouts int `json:"total_workouts"`
	ThisWeek      int `json:"this_week"`
	ThisMonth     int `json:"this_month"`
}

// ComputeStats counts workouts dated within the last 7 and 30 days of now,
// inclusive. Dates are compared as calendar days in now's location.
func ComputeStats(workouts []*models.Workout, now time.Time) Stats {
	today := calendarDay(now)
	weekStart := today.AddDate(0, 0, -weekDays)
	monthStart := today.AddDate(0, 0, -monthDays)

	s := Stats{TotalWorkouts: len(workouts)}
	for _, w := range workouts {
		if w == nil {
			continue
		}
		d := calendarDay(w.Date)
		if !d.Before(weekStart) {
			s.ThisWeek++
		}
		if !d.Before(monthStart) {
			s.ThisMonth++
		}
	}
	return s
}

// calendarDay maps t to midnight UTC of its calendar date, discarding the
// time of day and the zone.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Source is the read surface Summarize needs.
type Source interface {
	ListWorkouts(ctx context.Context, owner string, limit int) ([]*models.Workout, error)
	CountWorkouts(ctx context.Context, owner string) (int, error)
}

// Summary pairs the windowed counters with the lifetime count and the
// window itself.
type Summary struct {
	Stats
	Lifetime int               `json:"lifetime"`
	Recent   []*models.Workout `json:"recent"`
}

// Summarize fetches owner's most recent workouts and computes their stats.
// A window of zero or less uses DefaultWindow.
func Summarize(ctx context.Context, src Source, owner string, window int, now time.Time) (Summary, error) {
	if window <= 0 {
		window = DefaultWindow
	}

	recent, err := src.ListWorkouts(ctx, owner, window)
	if err != nil {
		return Summary{}, fmt.Errorf("list recent workouts: %w", err)
	}

	lifetime, err := src.CountWorkouts(ctx, owner)
	if err != nil {
		return Summary{}, fmt.Errorf("count workouts: %w", err)
	}

	return Summary{
		Stats:    ComputeStats(recent, now),
		Lifetime: lifetime,
		Recent:   recent,
	}, nil
}
