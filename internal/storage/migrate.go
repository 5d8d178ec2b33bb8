// ABOUTME: Data migration between gymlog storage backends.
// ABOUTME: Copies one owner's workouts, exercises, and profile from source to destination.

package storage

import (
	"context"
	"errors"
	"fmt"
)

// MigrateSummary holds counts of migrated entities.
type MigrateSummary struct {
	Workouts  int
	Exercises int
	Profiles  int
}

// MigrateOwner copies all of owner's data from src to dst. Workouts keep
// their IDs and timestamps. The destination should not already contain
// the owner's records.
func MigrateOwner(ctx context.Context, src, dst Store, owner string) (*MigrateSummary, error) {
	summary := &MigrateSummary{}

	workouts, err := src.ListWorkouts(ctx, owner, 0)
	if err != nil {
		return nil, fmt.Errorf("list source workouts: %w", err)
	}

	// Oldest first so storage order on the destination matches the source.
	for i := len(workouts) - 1; i >= 0; i-- {
		w := workouts[i]

		exercises, err := src.ListExercises(ctx, owner, w.ID)
		if err != nil {
			return nil, fmt.Errorf("list exercises for %s: %w", w.ID, err)
		}

		if err := dst.CreateWorkout(ctx, w); err != nil {
			return nil, fmt.Errorf("create workout %s: %w", w.ID, err)
		}
		summary.Workouts++

		if len(exercises) == 0 {
			continue
		}
		if err := dst.AddExercises(ctx, owner, w.ID, exercises, w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("add exercises for %s: %w", w.ID, err)
		}
		summary.Exercises += len(exercises)
	}

	p, err := src.GetProfile(ctx, owner)
	switch {
	case errors.Is(err, ErrNotFound):
		// Profiles are created lazily; nothing to copy.
	case err != nil:
		return nil, fmt.Errorf("get source profile: %w", err)
	default:
		if err := dst.CreateProfile(ctx, p); err != nil {
			return nil, fmt.Errorf("create profile: %w", err)
		}
		summary.Profiles++
	}

	return summary, nil
}
