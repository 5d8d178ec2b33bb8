// ABOUTME: Profile model holding per-user display settings.
// ABOUTME: Exactly one profile exists per owner, created on first access.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile represents a user's profile.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Owner     string    `json:"owner"`
	Username  *string   `json:"username,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewProfile creates an empty profile for owner.
func NewProfile(owner string) *Profile {
	now := time.Now().UTC()
	return &Profile{
		ID:        uuid.New(),
		Owner:     owner,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// WithUsername sets the display name.
func (p *Profile) WithUsername(username string) *Profile {
	p.Username = &username
	return p
}

// DisplayName returns the username, or the owner ID when none is set.
func (p *Profile) DisplayName() string {
	if p.Username != nil && *p.Username != "" {
		return *p.Username
	}
	return p.Owner
}
