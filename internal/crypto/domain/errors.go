package domain

import (
	"github.com/familyvault/vault/internal/errors"
)

// Cryptographic operation error definitions.
//
// These errors are deliberately sparse on detail: decryption failures never
// disclose whether the key, nonce, or ciphertext was at fault, to avoid
// leaking information that could aid an attacker.
var (
	// ErrInvalidKeySize indicates a key is not exactly 32 bytes.
	//
	// All keys in the hierarchy (master key, organization content keys) are
	// 256 bits. HTTP Status: 422 Unprocessable Entity.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrAuthenticationFailed indicates an AEAD open failed: the ciphertext
	// was tampered with, the wrong key was used, or the input is malformed.
	//
	// Fatal for file decryption and key unwrapping. The legacy field-decrypt
	// wrapper is the single place this error is swallowed (values written
	// before encryption was introduced are returned unchanged).
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrKeyUnwrap indicates an organization key could not be unwrapped with
	// the master key: either the master secret changed or the stored blob is
	// corrupt. There is no retry that can succeed without restoring the
	// previous master secret; all server-side data of that organization is
	// unrecoverable until then.
	ErrKeyUnwrap = errors.New("key unwrap failed")
)
