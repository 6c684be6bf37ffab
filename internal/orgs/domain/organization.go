// Package domain defines the core domain models for organizations.
// Every organization owns a single 256-bit content key; the key is stored
// wrapped under the server master key and, optionally, wrapped per member
// under each member's client-held public key.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Organization represents a vault shared by a group of members.
type Organization struct {
	// ID is the unique identifier for the organization.
	ID uuid.UUID
	// Name is the display name chosen by the creator.
	Name string
	// EncryptionKeyEnc is the organization content key wrapped under the
	// server master key, encoded as base64(nonce ‖ ciphertext+tag). The
	// plaintext key is never persisted.
	EncryptionKeyEnc string
	// CreatedBy references the user who created the organization.
	CreatedBy uuid.UUID
	// CreatedAt is the UTC timestamp when the organization was created.
	CreatedAt time.Time
}

// Membership links a user to an organization with a role.
type Membership struct {
	ID        uuid.UUID
	OrgID     uuid.UUID
	UserID    uuid.UUID
	Role      Role
	CreatedAt time.Time
}

// Member is a membership joined with user profile data for listings.
type Member struct {
	UserID    uuid.UUID
	Email     string
	Name      string
	Role      Role
	CreatedAt time.Time
}

// MemberKey is the organization content key wrapped under one member's
// public key. The blob is produced client-side and is opaque to the server;
// it is stored and returned verbatim.
type MemberKey struct {
	ID    uuid.UUID
	OrgID uuid.UUID
	// UserID identifies the member the wrap belongs to; unique per (org, user).
	UserID uuid.UUID
	// EncryptedOrgKey is the client-produced wrap, never inspected server-side.
	EncryptedOrgKey string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PendingMember is a member who has published a public key but has no
// member-key wrap for the organization yet. An admin's client uses this
// listing to run the key exchange ceremony.
type PendingMember struct {
	UserID    uuid.UUID
	Email     string
	Name      string
	PublicKey string
}
