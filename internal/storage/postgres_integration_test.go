//go:build integration

// ABOUTME: Integration tests for the Postgres store against a real container.
// ABOUTME: Checks row-level security keeps owners apart under an unprivileged role.
package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/gymlog/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
)

const testRole = "gymlog_app"

func setupPGStore(t *testing.T) *PGStore {
	t.Helper()
	ctx := context.Background()

	pg, err := postgrescontainer.Run(ctx, "postgres:16-alpine",
		postgrescontainer.WithDatabase("gymlog"),
		postgrescontainer.WithUsername("gymlog"),
		postgrescontainer.WithPassword("gymlog"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, waitForDatabase(ctx, connStr))

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, "CREATE ROLE "+testRole+" NOLOGIN")
	require.NoError(t, err)
	pool.Close()

	store, err := OpenPostgres(ctx, PGOptions{URL: connStr, Role: testRole})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestPGStoreRespectsOwnerIsolation(t *testing.T) {
	ctx := context.Background()
	store := setupPGStore(t)

	w := models.NewWorkout("alice", "Push day")
	require.NoError(t, store.CreateWorkout(ctx, w))

	e := models.NewExercise(w.ID, "Bench press", 3, 10, 62.5)
	require.NoError(t, store.AddExercises(ctx, "alice", w.ID, []*models.Exercise{e}, time.Now().UTC()))

	stored, err := store.GetWorkout(ctx, "alice", w.ID)
	require.NoError(t, err)
	require.Equal(t, w.ID, stored.ID)

	_, err = store.GetWorkout(ctx, "mallory", w.ID)
	require.True(t, errors.Is(err, ErrNotFound), "RLS should hide foreign workouts")

	foreign, err := store.ListExercises(ctx, "mallory", w.ID)
	require.NoError(t, err)
	require.Empty(t, foreign)

	owner, err := store.WorkoutOwner(ctx, w.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", owner)

	require.Error(t, store.DeleteWorkout(ctx, "mallory", w.ID))

	// Writing another owner's row is rejected by the policy's WITH CHECK.
	spoofed := models.NewWorkout("alice", "spoofed")
	err = store.inTx(ctx, "mallory", func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO workouts (id, owner_id, name) VALUES ($1, $2, $3)`,
			spoofed.ID, spoofed.Owner, spoofed.Name)
		return err
	})
	require.Error(t, err)
}

func TestPGStoreOrderingAndExercises(t *testing.T) {
	ctx := context.Background()
	store := setupPGStore(t)

	day := time.Date(2025, 1, 25, 0, 0, 0, 0, time.UTC)
	first := models.NewWorkout("alice", "first").WithDate(day)
	second := models.NewWorkout("alice", "second").WithDate(day)
	older := models.NewWorkout("alice", "older").WithDate(day.AddDate(0, 0, -3))
	for _, w := range []*models.Workout{first, second, older} {
		require.NoError(t, store.CreateWorkout(ctx, w))
	}

	got, err := store.ListWorkouts(ctx, "alice", 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, []string{"second", "first", "older"}, []string{got[0].Name, got[1].Name, got[2].Name})

	count, err := store.CountWorkouts(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, 3, count)

	id, err := store.ResolveWorkoutID(ctx, "alice", first.ID.String()[:8])
	require.NoError(t, err)
	require.Equal(t, first.ID, id)

	exercises := []*models.Exercise{
		models.NewExercise(first.ID, "Squat", 5, 5, 100.25),
		models.NewExercise(first.ID, "Lunge", 3, 12, 20),
	}
	require.NoError(t, store.AddExercises(ctx, "alice", first.ID, exercises, time.Now().UTC()))

	listed, err := store.ListExercises(ctx, "alice", first.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	require.Equal(t, "Squat", listed[0].Name)
	require.InDelta(t, 100.25, listed[0].Weight, 0.001)

	require.NoError(t, store.DeleteWorkout(ctx, "alice", first.ID))
	listed, err = store.ListExercises(ctx, "alice", first.ID)
	require.NoError(t, err)
	require.Empty(t, listed)

	_, err = store.WorkoutOwner(ctx, uuid.New())
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestPGStoreProfiles(t *testing.T) {
	ctx := context.Background()
	store := setupPGStore(t)

	_, err := store.GetProfile(ctx, "alice")
	require.True(t, errors.Is(err, ErrNotFound))

	p := models.NewProfile("alice")
	require.NoError(t, store.CreateProfile(ctx, p))
	require.True(t, errors.Is(store.CreateProfile(ctx, models.NewProfile("alice")), ErrConflict))

	p.WithUsername("al")
	require.NoError(t, store.UpdateProfile(ctx, p))

	got, err := store.GetProfile(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "al", got.DisplayName())
}

func TestPGStoreOwnerFunctionPinsSearchPath(t *testing.T) {
	ctx := context.Background()
	store := setupPGStore(t)

	var config []string
	err := store.pool.QueryRow(ctx,
		`SELECT proconfig FROM pg_proc WHERE proname = 'gymlog_workout_owner'`).Scan(&config)
	require.NoError(t, err)
	require.Contains(t, config, "search_path=pg_catalog, public")
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(time.Second)
	}
}
