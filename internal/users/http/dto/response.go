// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	usersDomain "github.com/familyvault/vault/internal/users/domain"
	usersUseCase "github.com/familyvault/vault/internal/users/usecase"
)

// UserResponse represents a user in API responses. The password hash never
// appears here; key material blobs are client-encrypted and safe to return
// to their owner.
type UserResponse struct {
	ID                          string    `json:"id"`
	Email                       string    `json:"email"`
	Name                        string    `json:"name"`
	KDFIterations               int       `json:"kdf_iterations"`
	PublicKey                   string    `json:"public_key,omitempty"`
	EncryptedPrivateKey         string    `json:"encrypted_private_key,omitempty"`
	RecoveryEncryptedPrivateKey string    `json:"recovery_encrypted_private_key,omitempty"`
	CreatedAt                   time.Time `json:"created_at"`
}

// PreloginResponse carries the KDF parameters a client needs before login.
type PreloginResponse struct {
	KDFIterations int `json:"kdf_iterations"`
}

// LoginResponse carries the session token and the key material a client
// needs after authenticating. EncryptedOrgKey is the caller's wrapped key
// for their primary organization, omitted when none is stored yet.
type LoginResponse struct {
	Token           string       `json:"token"`
	ExpiresAt       time.Time    `json:"expires_at"`
	EncryptedOrgKey string       `json:"encrypted_org_key,omitempty"`
	User            UserResponse `json:"user"`
}

// PublicKeyResponse carries a user's published public key.
type PublicKeyResponse struct {
	UserID    string `json:"user_id"`
	PublicKey string `json:"public_key"`
}

// MapUserToResponse converts a domain user to an API response.
func MapUserToResponse(user *usersDomain.User) UserResponse {
	return UserResponse{
		ID:                          user.ID.String(),
		Email:                       user.Email,
		Name:                        user.Name,
		KDFIterations:               user.KDFIterations,
		PublicKey:                   user.PublicKey,
		EncryptedPrivateKey:         user.EncryptedPrivateKey,
		RecoveryEncryptedPrivateKey: user.RecoveryEncryptedPrivateKey,
		CreatedAt:                   user.CreatedAt,
	}
}

// MapLoginResultToResponse converts a login result to an API response.
func MapLoginResultToResponse(result *usersUseCase.LoginResult) LoginResponse {
	return LoginResponse{
		Token:           result.Token,
		ExpiresAt:       result.ExpiresAt,
		EncryptedOrgKey: result.EncryptedOrgKey,
		User:            MapUserToResponse(result.User),
	}
}
