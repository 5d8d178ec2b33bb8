// ABOUTME: Tests for workout summary counters.
// ABOUTME: Fixed clocks keep every case deterministic.
package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/harperreed/gymlog/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func workoutsOn(dates ...string) []*models.Workout {
	list := make([]*models.Workout, 0, len(dates))
	for _, d := range dates {
		t, err := time.Parse(models.DateLayout, d)
		if err != nil {
			panic(err)
		}
		list = append(list, models.NewWorkout("alice", "w").WithDate(t))
	}
	return list
}

func TestComputeStatsScenario(t *testing.T) {
	now := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	list := workoutsOn("2025-01-30", "2025-01-25", "2025-01-01", "2024-12-01")

	got := ComputeStats(list, now)

	assert.Equal(t, Stats{TotalWorkouts: 4, ThisWeek: 2, ThisMonth: 3}, got)
}

func TestComputeStatsIsDeterministic(t *testing.T) {
	now := time.Date(2025, 1, 31, 18, 30, 0, 0, time.UTC)
	list := workoutsOn("2025-01-31", "2025-01-24", "2025-01-10", "2024-11-02", "2025-01-01")

	first := ComputeStats(list, now)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ComputeStats(list, now))
	}
}

func TestComputeStatsBoundaries(t *testing.T) {
	now := time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC)

	tests := []struct {
		name  string
		date  string
		week  int
		month int
	}{
		{"today", "2025-01-31", 1, 1},
		{"exactly seven days", "2025-01-24", 1, 1},
		{"eight days", "2025-01-23", 0, 1},
		{"exactly thirty days", "2025-01-01", 0, 1},
		{"thirty one days", "2024-12-31", 0, 0},
		{"future date", "2025-02-03", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeStats(workoutsOn(tt.date), now)
			assert.Equal(t, 1, got.TotalWorkouts)
			assert.Equal(t, tt.week, got.ThisWeek)
			assert.Equal(t, tt.month, got.ThisMonth)
		})
	}
}

func TestComputeStatsUsesCallerCalendarDay(t *testing.T) {
	// 2025-02-01 03:00 in UTC is still 2025-01-31 in New York.
	ny := time.FixedZone("EST", -5*60*60)
	now := time.Date(2025, 2, 1, 3, 0, 0, 0, time.UTC).In(ny)

	got := ComputeStats(workoutsOn("2025-01-24"), now)
	assert.Equal(t, 1, got.ThisWeek, "seven days back from Jan 31 includes Jan 24")
}

func TestComputeStatsEmpty(t *testing.T) {
	assert.Equal(t, Stats{}, ComputeStats(nil, time.Now()))
}

type fakeSource struct {
	workouts []*models.Workout
	count    int
	err      error
	limit    int
}

func (f *fakeSource) ListWorkouts(_ context.Context, _ string, limit int) ([]*models.Workout, error) {
	f.limit = limit
	if f.err != nil {
		return nil, f.err
	}
	if limit > 0 && limit < len(f.workouts) {
		return f.workouts[:limit], nil
	}
	return f.workouts, nil
}

func (f *fakeSource) CountWorkouts(context.Context, string) (int, error) {
	return f.count, f.err
}

func TestSummarize(t *testing.T) {
	now := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	src := &fakeSource{
		workouts: workoutsOn("2025-01-30", "2025-01-29", "2025-01-25", "2025-01-10", "2025-01-01", "2024-12-01", "2024-11-01"),
		count:    7,
	}

	summary, err := Summarize(context.Background(), src, "alice", 0, now)
	require.NoError(t, err)

	assert.Equal(t, DefaultWindow, src.limit)
	assert.Len(t, summary.Recent, DefaultWindow)
	assert.Equal(t, Stats{TotalWorkouts: 5, ThisWeek: 3, ThisMonth: 5}, summary.Stats)
	assert.Equal(t, 7, summary.Lifetime)

	summary, err = Summarize(context.Background(), src, "alice", 2, now)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalWorkouts)
}

func TestSummarizePropagatesErrors(t *testing.T) {
	src := &fakeSource{err: errors.New("store unavailable")}

	_, err := Summarize(context.Background(), src, "alice", 5, time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, src.err)
}
