package domain

import (
	"github.com/familyvault/vault/internal/errors"
)

// User-specific error definitions.
var (
	// ErrUserNotFound indicates the user does not exist.
	ErrUserNotFound = errors.Wrap(errors.ErrNotFound, "user not found")
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.Wrap(errors.ErrConflict, "email already registered")
	// ErrInvalidCredentials indicates a failed login attempt. Deliberately
	// identical for unknown emails and wrong passwords.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")
	// ErrSessionNotFound indicates the session token is unknown or revoked.
	ErrSessionNotFound = errors.Wrap(errors.ErrUnauthorized, "session not found")
	// ErrSessionExpired indicates the session is past its expiry.
	ErrSessionExpired = errors.Wrap(errors.ErrUnauthorized, "session expired")
	// ErrIncompleteKeyMaterial indicates a public key was supplied without
	// its encrypted private key or vice versa.
	ErrIncompleteKeyMaterial = errors.Wrap(errors.ErrInvalidInput, "public key and encrypted private key must be set together")
)
