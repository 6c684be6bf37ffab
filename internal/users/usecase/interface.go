// Package usecase defines the interfaces and implementations for user
// account and session management use cases.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	usersDomain "github.com/familyvault/vault/internal/users/domain"
)

// UserRepository defines the interface for User persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *usersDomain.User) error
	Get(ctx context.Context, userID uuid.UUID) (*usersDomain.User, error)
	GetByEmail(ctx context.Context, email string) (*usersDomain.User, error)
	GetIDByEmail(ctx context.Context, email string) (uuid.UUID, error)
	UpdateCredentials(ctx context.Context, user *usersDomain.User) error
}

// SessionRepository defines the interface for Session persistence operations.
type SessionRepository interface {
	Create(ctx context.Context, session *usersDomain.Session) error
	GetByToken(ctx context.Context, token string) (*usersDomain.Session, error)
	DeleteByToken(ctx context.Context, token string) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context, now time.Time) error
}

// RegisterInput carries the parameters for account registration. For
// client-side-encryption accounts Password holds the client-derived master
// password hash and the key material fields are set.
type RegisterInput struct {
	Email    string
	Name     string
	Password string
	// KDFIterations is the client's PBKDF2 iteration count; zero means the
	// account uses server-side encryption only and gets the default.
	KDFIterations               int
	PublicKey                   string
	EncryptedPrivateKey         string
	RecoveryEncryptedPrivateKey string
}

// OrgKeySource supplies a user's wrapped organization key at login.
// Implemented by the orgs use case.
type OrgKeySource interface {
	GetPrimaryMemberKey(ctx context.Context, userID uuid.UUID) (string, error)
}

// LoginResult carries the session token and the key material a client needs
// after authenticating.
type LoginResult struct {
	User      *usersDomain.User
	Token     string
	ExpiresAt time.Time
	// EncryptedOrgKey is the caller's wrapped key for their primary
	// organization, empty when none is stored yet.
	EncryptedOrgKey string
}

// ChangePasswordInput carries the parameters for a password change. Clients
// with key material must re-wrap their private key under the new master
// password and send the fresh blobs along.
type ChangePasswordInput struct {
	CurrentPassword             string
	NewPassword                 string
	KDFIterations               int
	PublicKey                   string
	EncryptedPrivateKey         string
	RecoveryEncryptedPrivateKey string
}

// UserUseCase defines the interface for user account business logic.
type UserUseCase interface {
	Register(ctx context.Context, input RegisterInput) (*usersDomain.User, error)
	// Prelogin returns the KDF iteration count for an email. Unknown emails
	// get the default count so the endpoint cannot be used for account
	// enumeration.
	Prelogin(ctx context.Context, email string) (int, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	// Authenticate resolves a session token to a user ID, rejecting unknown
	// and expired sessions.
	Authenticate(ctx context.Context, token string) (uuid.UUID, error)
	Me(ctx context.Context, userID uuid.UUID) (*usersDomain.User, error)
	// GetPublicKey returns a user's published public key for the member key
	// exchange ceremony. ErrNotFound if the user has not published one.
	GetPublicKey(ctx context.Context, userID uuid.UUID) (string, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, input ChangePasswordInput) error
}
