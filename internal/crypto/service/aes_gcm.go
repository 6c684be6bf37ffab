package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	cryptoDomain "github.com/familyvault/vault/internal/crypto/domain"
	apperrors "github.com/familyvault/vault/internal/errors"
)

// AESGCMCipher implements authenticated encryption using AES-256-GCM.
//
// AES-GCM provides authenticated encryption with associated data (AEAD),
// combining confidentiality with tamper detection in one primitive. This
// implementation uses a 256-bit key, a 12-byte nonce generated fresh from
// crypto/rand on every encryption, and a 16-byte authentication tag appended
// to the ciphertext.
//
// Nonce reuse under the same key is the single catastrophic failure mode of
// GCM; the cipher never accepts caller-supplied nonces for encryption.
//
// Thread safety:
//
//	The cipher instance is stateless and safe for concurrent use from
//	multiple goroutines. Each encryption generates its nonce independently.
type AESGCMCipher struct {
	aead cipher.AEAD
}

// NewAESGCM creates a new AES-256-GCM cipher instance.
//
// The key must be exactly 32 bytes (256 bits). Keys should come from
// crypto/rand or the HKDF master-key derivation; never from a non-CSPRNG
// source, including in tests (tests may inject a fixed key instead).
func NewAESGCM(key []byte) (*AESGCMCipher, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AESGCMCipher{aead: aead}, nil
}

// Encrypt encrypts plaintext with optional additional authenticated data.
//
// The AAD is authenticated but not encrypted, allowing ciphertext to be bound
// to context (e.g., a record ID). The current wire formats pass nil AAD to
// stay compatible with existing ciphertexts.
//
// Returns the ciphertext with the 16-byte tag appended, and the randomly
// generated 12-byte nonce that must be stored alongside it.
func (a *AESGCMCipher) Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error) {
	nonce = make([]byte, a.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext = a.aead.Seal(nil, nonce, plaintext, aad)
	return ciphertext, nonce, nil
}

// Decrypt decrypts ciphertext using the provided nonce and AAD.
//
// The authentication tag is verified before any plaintext is returned; a
// mismatch yields ErrAuthenticationFailed and no partial output. Decryption
// fails closed: tampered input is an error, never "data is plaintext".
func (a *AESGCMCipher) Decrypt(ciphertext, nonce, aad []byte) ([]byte, error) {
	if len(nonce) != a.aead.NonceSize() {
		return nil, apperrors.Wrap(cryptoDomain.ErrAuthenticationFailed, "invalid nonce size")
	}

	plaintext, err := a.aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, cryptoDomain.ErrAuthenticationFailed
	}
	return plaintext, nil
}
