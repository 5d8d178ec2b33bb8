// ABOUTME: Exercise operations for SQLite storage.
// ABOUTME: Exercises are only reachable through a workout owned by the caller.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/gymlog/internal/models"
)

// AddExercises stores a batch of exercises for one of owner's workouts and
// refreshes the workout's updated_at. The batch is applied in a single
// transaction.
func (d *DB) AddExercises(ctx context.Context, owner string, workoutID uuid.UUID, exercises []*models.Exercise, updatedAt time.Time) (err error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("add exercises: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	result, err := tx.ExecContext(ctx,
		`UPDATE workouts SET updated_at = ? WHERE id = ? AND owner_id = ?`,
		formatTime(updatedAt), workoutID.String(), owner)
	if err != nil {
		return fmt.Errorf("add exercises: %w", err)
	}
	if err = expectAffected(result, "add exercises", workoutID.String()); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO exercises (id, workout_id, name, sets, reps, weight, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("add exercises: %w", err)
	}
	defer stmt.Close()

	for _, e := range exercises {
		if _, err = stmt.ExecContext(ctx,
			e.ID.String(),
			workoutID.String(),
			e.Name,
			e.Sets,
			e.Reps,
			e.Weight,
			e.Notes,
			formatTime(e.CreatedAt),
		); err != nil {
			return fmt.Errorf("add exercise %s: %w", e.Name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("add exercises: %w", err)
	}
	return nil
}

// ListExercises retrieves the exercises of one of owner's workouts in the
// order they were stored. A workout with no visible exercises yields an
// empty slice.
func (d *DB) ListExercises(ctx context.Context, owner string, workoutID uuid.UUID) ([]*models.Exercise, error) {
	query := `
		SELECT e.id, e.workout_id, e.name, e.sets, e.reps, e.weight, e.notes, e.created_at
		FROM exercises e
		JOIN workouts w ON w.id = e.workout_id
		WHERE e.workout_id = ? AND w.owner_id = ?
		ORDER BY e.rowid ASC
	`
	rows, err := d.db.QueryContext(ctx, query, workoutID.String(), owner)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	defer rows.Close()

	exercises := []*models.Exercise{}
	for rows.Next() {
		e, err := scanExercise(rows)
		if err != nil {
			return nil, err
		}
		exercises = append(exercises, e)
	}

	return exercises, rows.Err()
}

// scanExercise scans a single row into an Exercise struct.
func scanExercise(row rowScanner) (*models.Exercise, error) {
	var e models.Exercise
	var idStr, workoutIDStr, createdAt string
	var notes sql.NullString

	err := row.Scan(&idStr, &workoutIDStr, &e.Name, &e.Sets, &e.Reps, &e.Weight, &notes, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("scan exercise: %w", err)
	}

	if e.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("invalid exercise ID in database: %w", err)
	}
	if e.WorkoutID, err = uuid.Parse(workoutIDStr); err != nil {
		return nil, fmt.Errorf("invalid workout_id in database: %w", err)
	}
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("invalid created_at timestamp: %w", err)
	}
	if notes.Valid {
		e.Notes = &notes.String
	}

	return &e, nil
}
