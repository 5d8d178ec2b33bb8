// ABOUTME: Workout CRUD operations for SQLite storage.
// ABOUTME: Every statement is filtered by owner; deletes cascade to exercises.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/gymlog/internal/models"
)

const workoutColumns = `id, owner_id, name, date, notes, created_at, updated_at`

// CreateWorkout stores a new workout in the database.
func (d *DB) CreateWorkout(ctx context.Context, w *models.Workout) error {
	query := `
		INSERT INTO workouts (id, owner_id, name, date, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := d.db.ExecContext(ctx, query,
		w.ID.String(),
		w.Owner,
		w.Name,
		w.Date.Format(models.DateLayout),
		w.Notes,
		formatTime(w.CreatedAt),
		formatTime(w.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create workout: %w", err)
	}
	return nil
}

// GetWorkout retrieves one of owner's workouts (without exercises).
func (d *DB) GetWorkout(ctx context.Context, owner string, id uuid.UUID) (*models.Workout, error) {
	query := `SELECT ` + workoutColumns + ` FROM workouts WHERE id = ? AND owner_id = ?`
	w, err := scanWorkout(d.db.QueryRowContext(ctx, query, id.String(), owner))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: workout %s", ErrNotFound, id)
		}
		return nil, err
	}
	return w, nil
}

// ListWorkouts retrieves owner's workouts sorted by date descending.
// Workouts on the same date are returned most recently stored first.
// A limit of zero or less returns every workout.
func (d *DB) ListWorkouts(ctx context.Context, owner string, limit int) ([]*models.Workout, error) {
	query := `SELECT ` + workoutColumns + ` FROM workouts WHERE owner_id = ? ORDER BY date DESC, rowid DESC`
	args := []interface{}{owner}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	defer rows.Close()

	workouts := []*models.Workout{}
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, err
		}
		workouts = append(workouts, w)
	}

	return workouts, rows.Err()
}

// CountWorkouts returns how many workouts owner has recorded.
func (d *DB) CountWorkouts(ctx context.Context, owner string) (int, error) {
	var count int
	err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM workouts WHERE owner_id = ?`, owner).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count workouts: %w", err)
	}
	return count, nil
}

// UpdateWorkout rewrites the mutable fields of a workout in place.
func (d *DB) UpdateWorkout(ctx context.Context, w *models.Workout) error {
	result, err := d.db.ExecContext(ctx, `
		UPDATE workouts SET name = ?, date = ?, notes = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?`,
		w.Name,
		w.Date.Format(models.DateLayout),
		w.Notes,
		formatTime(w.UpdatedAt),
		w.ID.String(),
		w.Owner,
	)
	if err != nil {
		return fmt.Errorf("update workout: %w", err)
	}
	return expectAffected(result, "update workout", w.ID.String())
}

// DeleteWorkout removes a workout and all its exercises (cascade delete).
func (d *DB) DeleteWorkout(ctx context.Context, owner string, id uuid.UUID) error {
	// CASCADE is enabled, so deleting the workout deletes its exercises
	result, err := d.db.ExecContext(ctx, "DELETE FROM workouts WHERE id = ? AND owner_id = ?", id.String(), owner)
	if err != nil {
		return fmt.Errorf("delete workout: %w", err)
	}
	return expectAffected(result, "delete workout", id.String())
}

// WorkoutOwner returns the owner of a workout without applying owner scope.
func (d *DB) WorkoutOwner(ctx context.Context, id uuid.UUID) (string, error) {
	var owner string
	err := d.db.QueryRowContext(ctx, `SELECT owner_id FROM workouts WHERE id = ?`, id.String()).Scan(&owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: workout %s", ErrNotFound, id)
		}
		return "", fmt.Errorf("workout owner: %w", err)
	}
	return owner, nil
}

// ResolveWorkoutID finds the full ID of one of owner's workouts from a prefix.
func (d *DB) ResolveWorkoutID(ctx context.Context, owner, idOrPrefix string) (uuid.UUID, error) {
	if id, ok := parseFullID(idOrPrefix); ok {
		return id, nil
	}
	if !IsIDPrefix(idOrPrefix) {
		return uuid.Nil, fmt.Errorf("%w: %q is not an id prefix", ErrNotFound, idOrPrefix)
	}

	query := `SELECT id FROM workouts WHERE owner_id = ? AND id LIKE ? || '%'`
	rows, err := d.db.QueryContext(ctx, query, owner, strings.ToLower(idOrPrefix))
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolve workout ID: %w", err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return uuid.Nil, fmt.Errorf("scan workout ID: %w", err)
		}
		matches = append(matches, id)
	}
	if err := rows.Err(); err != nil {
		return uuid.Nil, fmt.Errorf("resolve workout ID: %w", err)
	}

	return pickMatch(matches, idOrPrefix)
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanWorkout scans a single row into a Workout struct.
func scanWorkout(row rowScanner) (*models.Workout, error) {
	var w models.Workout
	var idStr, date, createdAt, updatedAt string
	var notes sql.NullString

	err := row.Scan(&idStr, &w.Owner, &w.Name, &date, &notes, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan workout: %w", err)
	}

	if w.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("invalid workout ID in database: %w", err)
	}
	if w.Date, err = time.Parse(models.DateLayout, date); err != nil {
		return nil, fmt.Errorf("invalid workout date: %w", err)
	}
	if w.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("invalid created_at timestamp: %w", err)
	}
	if w.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("invalid updated_at timestamp: %w", err)
	}
	if notes.Valid {
		w.Notes = &notes.String
	}

	return &w, nil
}

func expectAffected(result sql.Result, op, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w: %s", op, ErrNotFound, id)
	}
	return nil
}

// parseFullID accepts a complete UUID.
func parseFullID(s string) (uuid.UUID, bool) {
	if len(s) != 36 || strings.Count(s, "-") != 4 {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// IsIDPrefix reports whether s could be the start of a workout ID: hex
// digits and hyphens only, at most 36 characters. LIKE wildcards never pass.
func IsIDPrefix(s string) bool {
	if s == "" || len(s) > 36 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F', r == '-':
		default:
			return false
		}
	}
	return true
}

func pickMatch(matches []string, idOrPrefix string) (uuid.UUID, error) {
	if len(matches) == 0 {
		return uuid.Nil, fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	}
	if len(matches) > 1 {
		return uuid.Nil, fmt.Errorf("%w %s: matches %d records", ErrAmbiguousID, idOrPrefix, len(matches))
	}
	return uuid.Parse(matches[0])
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
