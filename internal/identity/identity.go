// ABOUTME: Authenticated identity carried explicitly on a context.Context.
// ABOUTME: Every repository call reads the caller from here, never from globals.
package identity

import (
	"context"
	"strings"
)

// Identity is the authenticated caller as supplied by the identity provider.
type Identity struct {
	UserID string
}

// IsZero reports whether the identity carries no user.
func (i Identity) IsZero() bool {
	return strings.TrimSpace(i.UserID) == ""
}

// Owns reports whether owner refers to this identity.
func (i Identity) Owns(owner string) bool {
	return !i.IsZero() && i.UserID == owner
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying id.
func NewContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity stored in ctx, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	if !ok || id.IsZero() {
		return Identity{}, false
	}
	return id, true
}
