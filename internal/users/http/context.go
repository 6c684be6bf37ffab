// Package http provides HTTP handlers and middleware for user accounts and
// session authentication.
package http

import (
	"context"

	"github.com/google/uuid"
)

// userIDKey is a context key type for storing the authenticated user ID.
type userIDKey struct{}

// WithUserID stores the authenticated user ID in the context.
// Called by the session middleware after successful token validation.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// GetUserID retrieves the authenticated user ID from the context.
// Returns (uuid.Nil, false) if no user was set.
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDKey{}).(uuid.UUID)
	return userID, ok
}
