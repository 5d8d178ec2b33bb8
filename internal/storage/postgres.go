// ABOUTME: Postgres implementation of Store backed by pgx connection pools.
// ABOUTME: Each operation runs in a transaction bound to the owner for RLS.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/gymlog/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// PGStore is the Postgres implementation of Store. Row-level security
// policies re-check ownership on every statement.
type PGStore struct {
	pool *pgxpool.Pool
	role string
}

var _ Store = (*PGStore)(nil)

// PGOptions configures a PGStore.
type PGOptions struct {
	// URL is a libpq-style connection string.
	URL string
	// Role, when set, is assumed with SET LOCAL ROLE inside every
	// transaction so the policies apply even if the login role owns the tables.
	Role string
}

// OpenPostgres connects to Postgres and ensures the schema exists.
func OpenPostgres(ctx context.Context, opts PGOptions) (*PGStore, error) {
	poolConfig, err := pgxpool.ParseConfig(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	s := NewPGStore(pool, opts.Role)
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	warnWithoutRole(opts.Role)
	return s, nil
}

// warnWithoutRole flags a store whose login role owns the tables. Table
// owners bypass row-level security, so only the owner_id filters apply.
func warnWithoutRole(role string) bool {
	if role != "" {
		return false
	}
	logrus.WithField("backend", "postgres").
		Warn("postgres_role is not set: row-level security policies are not enforced for the table owner")
	return true
}

// NewPGStore wraps an existing pool.
func NewPGStore(pool *pgxpool.Pool, role string) *PGStore {
	return &PGStore{pool: pool, role: role}
}

// Close releases the connection pool.
func (s *PGStore) Close() error {
	s.pool.Close()
	return nil
}

// inTx runs fn in a transaction with app.user_id set to owner.
func (s *PGStore) inTx(ctx context.Context, owner string, fn func(tx pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if s.role != "" {
		if _, err = tx.Exec(ctx, "SET LOCAL ROLE "+pgx.Identifier{s.role}.Sanitize()); err != nil {
			return err
		}
	}
	if _, err = tx.Exec(ctx, "SELECT set_config('app.user_id', $1, true)", owner); err != nil {
		return err
	}

	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// CreateWorkout stores a new workout.
func (s *PGStore) CreateWorkout(ctx context.Context, w *models.Workout) error {
	err := s.inTx(ctx, w.Owner, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO workouts (id, owner_id, name, date, notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			w.ID, w.Owner, w.Name, w.Date, w.Notes, w.CreatedAt, w.UpdatedAt)
		return err
	})
	if err != nil {
		return fmt.Errorf("create workout: %w", err)
	}
	return nil
}

// GetWorkout retrieves one of owner's workouts (without exercises).
func (s *PGStore) GetWorkout(ctx context.Context, owner string, id uuid.UUID) (*models.Workout, error) {
	var w *models.Workout
	err := s.inTx(ctx, owner, func(tx pgx.Tx) error {
		var err error
		w, err = scanPGWorkout(tx.QueryRow(ctx, `
			SELECT id, owner_id, name, date, notes, created_at, updated_at
			FROM workouts WHERE id = $1 AND owner_id = $2`, id, owner))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: workout %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get workout: %w", err)
	}
	return w, nil
}

// ListWorkouts retrieves owner's workouts sorted by date, then storage order, descending.
func (s *PGStore) ListWorkouts(ctx context.Context, owner string, limit int) ([]*models.Workout, error) {
	query := `
		SELECT id, owner_id, name, date, notes, created_at, updated_at
		FROM workouts WHERE owner_id = $1
		ORDER BY date DESC, seq DESC`
	args := []interface{}{owner}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	workouts := []*models.Workout{}
	err := s.inTx(ctx, owner, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			w, err := scanPGWorkout(rows)
			if err != nil {
				return err
			}
			workouts = append(workouts, w)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	return workouts, nil
}

// CountWorkouts returns how many workouts owner has recorded.
func (s *PGStore) CountWorkouts(ctx context.Context, owner string) (int, error) {
	var count int
	err := s.inTx(ctx, owner, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, `SELECT COUNT(*) FROM workouts WHERE owner_id = $1`, owner).Scan(&count)
	})
	if err != nil {
		return 0, fmt.Errorf("count workouts: %w", err)
	}
	return count, nil
}

// UpdateWorkout rewrites the mutable fields of a workout in place.
func (s *PGStore) UpdateWorkout(ctx context.Context, w *models.Workout) error {
	err := s.inTx(ctx, w.Owner, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE workouts SET name = $1, date = $2, notes = $3, updated_at = $4
			WHERE id = $5 AND owner_id = $6`,
			w.Name, w.Date, w.Notes, w.UpdatedAt, w.ID, w.Owner)
		if err != nil {
			return err
		}
		return expectTag(tag, w.ID.String())
	})
	if err != nil {
		return fmt.Errorf("update workout: %w", err)
	}
	return nil
}

// DeleteWorkout removes a workout; the foreign key cascades to its exercises.
func (s *PGStore) DeleteWorkout(ctx context.Context, owner string, id uuid.UUID) error {
	err := s.inTx(ctx, owner, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM workouts WHERE id = $1 AND owner_id = $2`, id, owner)
		if err != nil {
			return err
		}
		return expectTag(tag, id.String())
	})
	if err != nil {
		return fmt.Errorf("delete workout: %w", err)
	}
	return nil
}

// WorkoutOwner looks up a workout's owner through the SECURITY DEFINER function.
func (s *PGStore) WorkoutOwner(ctx context.Context, id uuid.UUID) (string, error) {
	var owner *string
	err := s.inTx(ctx, "", func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, `SELECT gymlog_workout_owner($1)`, id).Scan(&owner)
	})
	if err != nil {
		return "", fmt.Errorf("workout owner: %w", err)
	}
	if owner == nil {
		return "", fmt.Errorf("%w: workout %s", ErrNotFound, id)
	}
	return *owner, nil
}

// ResolveWorkoutID finds the full ID of one of owner's workouts from a prefix.
func (s *PGStore) ResolveWorkoutID(ctx context.Context, owner, idOrPrefix string) (uuid.UUID, error) {
	if id, ok := parseFullID(idOrPrefix); ok {
		return id, nil
	}
	if !IsIDPrefix(idOrPrefix) {
		return uuid.Nil, fmt.Errorf("%w: %q is not an id prefix", ErrNotFound, idOrPrefix)
	}

	var matches []string
	err := s.inTx(ctx, owner, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx,
			`SELECT id::text FROM workouts WHERE owner_id = $1 AND id::text LIKE $2 || '%'`,
			owner, strings.ToLower(idOrPrefix))
		if err != nil {
			return err
		}
		matches, err = pgx.CollectRows(rows, pgx.RowTo[string])
		return err
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolve workout ID: %w", err)
	}
	return pickMatch(matches, idOrPrefix)
}

// AddExercises stores a batch of exercises and refreshes the workout's
// updated_at in one transaction.
func (s *PGStore) AddExercises(ctx context.Context, owner string, workoutID uuid.UUID, exercises []*models.Exercise, updatedAt time.Time) error {
	err := s.inTx(ctx, owner, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE workouts SET updated_at = $1 WHERE id = $2 AND owner_id = $3`,
			updatedAt, workoutID, owner)
		if err != nil {
			return err
		}
		if err := expectTag(tag, workoutID.String()); err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for _, e := range exercises {
			batch.Queue(`
				INSERT INTO exercises (id, workout_id, name, sets, reps, weight, notes, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				e.ID, workoutID, e.Name, e.Sets, e.Reps, e.Weight, e.Notes, e.CreatedAt)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("add exercises: %w", err)
	}
	return nil
}

// ListExercises retrieves the exercises of one of owner's workouts in storage order.
func (s *PGStore) ListExercises(ctx context.Context, owner string, workoutID uuid.UUID) ([]*models.Exercise, error) {
	exercises := []*models.Exercise{}
	err := s.inTx(ctx, owner, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT e.id, e.workout_id, e.name, e.sets, e.reps, e.weight::float8, e.notes, e.created_at
			FROM exercises e
			JOIN workouts w ON w.id = e.workout_id
			WHERE e.workout_id = $1 AND w.owner_id = $2
			ORDER BY e.seq ASC`, workoutID, owner)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var e models.Exercise
			if err := rows.Scan(&e.ID, &e.WorkoutID, &e.Name, &e.Sets, &e.Reps, &e.Weight, &e.Notes, &e.CreatedAt); err != nil {
				return err
			}
			exercises = append(exercises, &e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	return exercises, nil
}

// GetProfile retrieves owner's profile.
func (s *PGStore) GetProfile(ctx context.Context, owner string) (*models.Profile, error) {
	var p models.Profile
	err := s.inTx(ctx, owner, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, `
			SELECT id, owner_id, username, created_at, updated_at
			FROM profiles WHERE owner_id = $1`, owner,
		).Scan(&p.ID, &p.Owner, &p.Username, &p.CreatedAt, &p.UpdatedAt)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: profile for %s", ErrNotFound, owner)
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

// CreateProfile stores a profile. It returns ErrConflict if owner already has one.
func (s *PGStore) CreateProfile(ctx context.Context, p *models.Profile) error {
	err := s.inTx(ctx, p.Owner, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			INSERT INTO profiles (id, owner_id, username, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (owner_id) DO NOTHING`,
			p.ID, p.Owner, p.Username, p.CreatedAt, p.UpdatedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: %s already has a profile", ErrConflict, p.Owner)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

// UpdateProfile rewrites owner's profile in place.
func (s *PGStore) UpdateProfile(ctx context.Context, p *models.Profile) error {
	err := s.inTx(ctx, p.Owner, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE profiles SET username = $1, updated_at = $2 WHERE owner_id = $3`,
			p.Username, p.UpdatedAt, p.Owner)
		if err != nil {
			return err
		}
		return expectTag(tag, p.Owner)
	})
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

func scanPGWorkout(row pgx.Row) (*models.Workout, error) {
	var w models.Workout
	if err := row.Scan(&w.ID, &w.Owner, &w.Name, &w.Date, &w.Notes, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	w.Date = models.DateOf(w.Date)
	w.CreatedAt = w.CreatedAt.UTC()
	w.UpdatedAt = w.UpdatedAt.UTC()
	return &w, nil
}

func expectTag(tag pgconn.CommandTag, id string) error {
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
