// ABOUTME: Profile operations for SQLite storage.
// ABOUTME: One row per owner, enforced by a unique constraint.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/harperreed/gymlog/internal/models"
)

// GetProfile retrieves owner's profile.
func (d *DB) GetProfile(ctx context.Context, owner string) (*models.Profile, error) {
	var p models.Profile
	var idStr, createdAt, updatedAt string
	var username sql.NullString

	err := d.db.QueryRowContext(ctx, `
		SELECT id, owner_id, username, created_at, updated_at
		FROM profiles WHERE owner_id = ?`, owner,
	).Scan(&idStr, &p.Owner, &username, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: profile for %s", ErrNotFound, owner)
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	if p.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("invalid profile ID in database: %w", err)
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("invalid created_at timestamp: %w", err)
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("invalid updated_at timestamp: %w", err)
	}
	if username.Valid {
		p.Username = &username.String
	}

	return &p, nil
}

// CreateProfile stores a profile. It returns ErrConflict if owner already has one.
func (d *DB) CreateProfile(ctx context.Context, p *models.Profile) error {
	result, err := d.db.ExecContext(ctx, `
		INSERT INTO profiles (id, owner_id, username, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(owner_id) DO NOTHING`,
		p.ID.String(), p.Owner, p.Username, formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("create profile: %w: %s already has a profile", ErrConflict, p.Owner)
	}
	return nil
}

// UpdateProfile rewrites owner's profile in place.
func (d *DB) UpdateProfile(ctx context.Context, p *models.Profile) error {
	result, err := d.db.ExecContext(ctx, `
		UPDATE profiles SET username = ?, updated_at = ? WHERE owner_id = ?`,
		p.Username, formatTime(p.UpdatedAt), p.Owner)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return expectAffected(result, "update profile", p.Owner)
}
