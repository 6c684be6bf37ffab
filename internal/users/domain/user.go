// Package domain defines the core domain models for user accounts and
// sessions. Users may publish client-side key material (a public key plus an
// encrypted private key) to participate in the member key exchange ceremony.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultKDFIterations is the PBKDF2 iteration count reported to clients
// that have no stored value, including unknown emails on prelogin.
const DefaultKDFIterations = 600000

// User represents a registered account.
type User struct {
	ID    uuid.UUID
	Email string
	Name  string
	// PasswordHash is the Argon2id hash of the login credential. For
	// client-side-encryption accounts the credential is itself a client-derived
	// master password hash, so the server never sees the real password.
	PasswordHash string
	// KDFIterations is the PBKDF2 iteration count the client used to derive
	// its keys; echoed on prelogin so the client can re-derive them.
	KDFIterations int
	// PublicKey is the client-published wrapping key, empty until the user
	// opts into client-side encryption. Set together with EncryptedPrivateKey.
	PublicKey string
	// EncryptedPrivateKey is the user's private key encrypted client-side
	// with a key derived from the master password. Opaque to the server.
	EncryptedPrivateKey string
	// RecoveryEncryptedPrivateKey is the same private key encrypted under a
	// recovery code, for master password loss.
	RecoveryEncryptedPrivateKey string
	CreatedAt                   time.Time
	UpdatedAt                   time.Time
}

// HasKeyMaterial reports whether the user published client-side key material.
func (u *User) HasKeyMaterial() bool {
	return u.PublicKey != "" && u.EncryptedPrivateKey != ""
}

// Session represents an authenticated session backed by a database row.
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
