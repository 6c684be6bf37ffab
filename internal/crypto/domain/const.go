// Package domain defines the core cryptographic domain models for the vault's
// envelope encryption scheme.
//
// Every organization owns a random 256-bit content key. That key is wrapped
// twice: once under a master key derived from the server's long-term secret
// (server-side mode, encryption version 1), and once per member under the
// member's client-held public key (zero-knowledge mode, encryption version 2).
// All sensitive field values and file bodies are encrypted with the unwrapped
// organization key using AES-256-GCM.
//
// Note that the master-wrapped copy always exists, even for organizations
// operating in zero-knowledge mode: the server keeps the ability to unwrap
// organization keys for v1 operations and migration tooling. This is a
// deliberate recoverability trade-off, not a bug, and it means the scheme is
// not zero-knowledge in the strict sense.
package domain

// KeySize is the size in bytes of all symmetric keys (256-bit).
const KeySize = 32

// NonceSize is the size in bytes of the AES-GCM nonce (96-bit).
const NonceSize = 12

// TagSize is the size in bytes of the GCM authentication tag (128-bit).
const TagSize = 16

// EncryptionVersion tags a record with the key-resolution path that applies
// to its sensitive data. It is set at creation and may be explicitly
// upgraded; there is no downgrade or re-encryption path, so mixed versions
// coexist indefinitely on one record set.
type EncryptionVersion int

const (
	// VersionServerSide means the server encrypts and decrypts with the
	// master-unwrapped organization key.
	VersionServerSide EncryptionVersion = 1

	// VersionClientSide means payloads arrive already encrypted by the
	// client; the server stores and serves opaque bytes only.
	VersionClientSide EncryptionVersion = 2
)

// Valid reports whether v is a known encryption version.
func (v EncryptionVersion) Valid() bool {
	return v == VersionServerSide || v == VersionClientSide
}
