package service

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	cryptoDomain "github.com/familyvault/vault/internal/crypto/domain"
	apperrors "github.com/familyvault/vault/internal/errors"
)

// OrgKeyService generates organization content keys and wraps them under the
// derived master key.
//
// Wire format of a wrapped key: base64(nonce(12) ‖ ciphertext-with-tag).
// This matches every encryption_key_enc value already in the database, so it
// must not change.
//
// The service holds the master key for its lifetime; callers zero unwrapped
// organization keys as soon as a request-scoped operation finishes. Unwrapped
// keys are never cached process-wide — that would defeat the wrapped-key
// design.
type OrgKeyService struct {
	masterKey *cryptoDomain.MasterKey
}

// NewOrgKeyService creates an OrgKeyService using the provided master key.
func NewOrgKeyService(masterKey *cryptoDomain.MasterKey) *OrgKeyService {
	return &OrgKeyService{masterKey: masterKey}
}

// GenerateOrgKey returns a fresh random 256-bit organization content key.
// The key comes from crypto/rand; no other source is acceptable.
func (s *OrgKeyService) GenerateOrgKey() ([]byte, error) {
	key := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate org key: %w", err)
	}
	return key, nil
}

// WrapOrgKey encrypts an organization content key under the master key and
// returns the base64 wire form for persistence.
func (s *OrgKeyService) WrapOrgKey(orgKey []byte) (string, error) {
	if len(orgKey) != cryptoDomain.KeySize {
		return "", cryptoDomain.ErrInvalidKeySize
	}

	cipher, err := NewAESGCM(s.masterKey.Key)
	if err != nil {
		return "", err
	}

	ciphertext, nonce, err := cipher.Encrypt(orgKey, nil)
	if err != nil {
		return "", fmt.Errorf("failed to wrap org key: %w", err)
	}

	return base64.StdEncoding.EncodeToString(append(nonce, ciphertext...)), nil
}

// UnwrapOrgKey decrypts a wrapped organization key.
//
// Returns ErrKeyUnwrap when the blob is corrupt or was wrapped under a
// different master secret. This is fatal for the organization: every value
// encrypted in server-side mode stays unrecoverable until the original
// master secret is restored.
func (s *OrgKeyService) UnwrapOrgKey(wrapped string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(wrapped)
	if err != nil {
		return nil, apperrors.Wrap(cryptoDomain.ErrKeyUnwrap, "invalid base64")
	}
	if len(raw) < cryptoDomain.NonceSize+cryptoDomain.TagSize {
		return nil, apperrors.Wrap(cryptoDomain.ErrKeyUnwrap, "wrapped key too short")
	}

	nonce := raw[:cryptoDomain.NonceSize]
	ciphertext := raw[cryptoDomain.NonceSize:]

	cipher, err := NewAESGCM(s.masterKey.Key)
	if err != nil {
		return nil, err
	}

	orgKey, err := cipher.Decrypt(ciphertext, nonce, nil)
	if err != nil {
		return nil, cryptoDomain.ErrKeyUnwrap
	}

	return orgKey, nil
}
