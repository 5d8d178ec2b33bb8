// ABOUTME: Store interface for the workout record store.
// ABOUTME: Every method is scoped to an explicit owner; implementations re-check it.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/gymlog/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist or is not visible to the owner.
	ErrNotFound = errors.New("not found")
	// ErrAmbiguousID is returned when an ID prefix matches more than one record.
	ErrAmbiguousID = errors.New("ambiguous id prefix")
	// ErrConflict is returned when a uniqueness constraint rejects a write.
	ErrConflict = errors.New("conflict")
)

// Store defines the record store contract for workouts, exercises and profiles.
// Implementations must scope every read and write to the owner they are given,
// independently of any check the caller already made.
type Store interface {
	// Workout operations
	CreateWorkout(ctx context.Context, w *models.Workout) error
	GetWorkout(ctx context.Context, owner string, id uuid.UUID) (*models.Workout, error)
	ListWorkouts(ctx context.Context, owner string, limit int) ([]*models.Workout, error)
	CountWorkouts(ctx context.Context, owner string) (int, error)
	UpdateWorkout(ctx context.Context, w *models.Workout) error
	DeleteWorkout(ctx context.Context, owner string, id uuid.UUID) error
	ResolveWorkoutID(ctx context.Context, owner, idOrPrefix string) (uuid.UUID, error)

	// WorkoutOwner reports who owns a workout regardless of the caller, so the
	// application guard can tell a missing record from a foreign one.
	WorkoutOwner(ctx context.Context, id uuid.UUID) (string, error)

	// Exercise operations. AddExercises writes the batch and sets the parent
	// workout's updated_at in one unit.
	AddExercises(ctx context.Context, owner string, workoutID uuid.UUID, exercises []*models.Exercise, updatedAt time.Time) error
	ListExercises(ctx context.Context, owner string, workoutID uuid.UUID) ([]*models.Exercise, error)

	// Profile operations
	GetProfile(ctx context.Context, owner string) (*models.Profile, error)
	CreateProfile(ctx context.Context, p *models.Profile) error
	UpdateProfile(ctx context.Context, p *models.Profile) error

	// Lifecycle
	Close() error
}
