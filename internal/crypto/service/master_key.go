package service

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	cryptoDomain "github.com/familyvault/vault/internal/crypto/domain"
)

// Fixed HKDF parameters. These are hard-coded on purpose: the same long-term
// secret must derive the same master key on every process restart, without
// persisting the key anywhere. Changing either constant orphans every wrapped
// organization key in the database.
var (
	masterKeySalt = []byte("familyvault-master-key-salt")
	masterKeyInfo = []byte("master-encryption-key")
)

// DeriveMasterKey derives the 256-bit master key from the long-term secret
// using HKDF with SHA-256 and fixed salt/info constants.
//
// Derivation is pure and deterministic: the same secret always yields the
// same key, and it never fails for any non-empty or empty input. Whether the
// secret is actually secret and high-entropy is an operational invariant
// enforced outside this function (config warns on the shipped default).
func DeriveMasterKey(secret string) *cryptoDomain.MasterKey {
	r := hkdf.New(sha256.New, []byte(secret), masterKeySalt, masterKeyInfo)

	key := make([]byte, cryptoDomain.KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		// HKDF-SHA256 can produce up to 255*32 bytes; requesting 32 cannot fail.
		panic(fmt.Sprintf("hkdf read failed: %v", err))
	}

	return &cryptoDomain.MasterKey{Key: key}
}
