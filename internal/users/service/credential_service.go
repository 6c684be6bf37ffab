// Package service provides credential handling for user accounts: Argon2id
// password hashing and secure session token generation.
package service

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/allisson/go-pwdhash"

	apperrors "github.com/familyvault/vault/internal/errors"
)

// CredentialService hashes and verifies login credentials and mints session tokens.
type CredentialService interface {
	HashPassword(password string) (string, error)
	// ComparePassword performs a constant-time comparison between a password
	// and its hash.
	ComparePassword(password, hash string) bool
	// GenerateSessionToken returns a 64-character hex token from 32 random bytes.
	GenerateSessionToken() (string, error)
}

// credentialService implements CredentialService using Argon2id.
type credentialService struct {
	hasher *pwdhash.PasswordHasher
}

// HashPassword hashes a credential using Argon2id. For client-side-encryption
// accounts the input is already a client-derived master password hash; it is
// hashed again so a database leak never exposes a login credential.
func (s *credentialService) HashPassword(password string) (string, error) {
	hash, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash password")
	}
	return hash, nil
}

// ComparePassword performs a constant-time comparison between a password and its hash.
func (s *credentialService) ComparePassword(password, hash string) bool {
	ok, err := s.hasher.Verify([]byte(password), hash)
	if err != nil {
		return false
	}
	return ok
}

// GenerateSessionToken returns a 64-character hex token from 32 random bytes.
func (s *credentialService) GenerateSessionToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", apperrors.Wrap(err, "failed to generate session token")
	}
	return hex.EncodeToString(raw), nil
}

// NewCredentialService creates a CredentialService using the Moderate Argon2id
// policy, balancing security and login latency.
func NewCredentialService() CredentialService {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		// This should never happen with valid policy
		panic(err)
	}

	return &credentialService{
		hasher: hasher,
	}
}
