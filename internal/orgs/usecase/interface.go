// Package usecase defines the interfaces and implementations for
// organization management use cases: organization lifecycle, memberships and
// the member key exchange ceremony.
package usecase

import (
	"context"

	"github.com/google/uuid"

	orgsDomain "github.com/familyvault/vault/internal/orgs/domain"
)

// OrgRepository defines the interface for Organization persistence operations.
type OrgRepository interface {
	Create(ctx context.Context, org *orgsDomain.Organization) error
	Get(ctx context.Context, orgID uuid.UUID) (*orgsDomain.Organization, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*orgsDomain.Organization, error)
}

// MembershipRepository defines the interface for Membership persistence operations.
type MembershipRepository interface {
	Create(ctx context.Context, membership *orgsDomain.Membership) error
	Get(ctx context.Context, orgID, userID uuid.UUID) (*orgsDomain.Membership, error)
	ListMembers(ctx context.Context, orgID uuid.UUID) ([]*orgsDomain.Member, error)
	UpdateRole(ctx context.Context, orgID, userID uuid.UUID, role orgsDomain.Role) error
	Delete(ctx context.Context, orgID, userID uuid.UUID) error
	CountByRole(ctx context.Context, orgID uuid.UUID, role orgsDomain.Role) (int, error)
}

// MemberKeyRepository defines the interface for MemberKey persistence operations.
type MemberKeyRepository interface {
	Upsert(ctx context.Context, memberKey *orgsDomain.MemberKey) error
	Get(ctx context.Context, orgID, userID uuid.UUID) (*orgsDomain.MemberKey, error)
	ListPendingMembers(ctx context.Context, orgID uuid.UUID) ([]*orgsDomain.PendingMember, error)
}

// UserDirectory resolves user identities for membership operations.
// Implemented by the users repository; only the lookups the orgs context
// needs are exposed here.
type UserDirectory interface {
	GetIDByEmail(ctx context.Context, email string) (uuid.UUID, error)
}

// OrgUseCase defines the interface for organization management business logic.
type OrgUseCase interface {
	// Create generates a fresh content key, wraps it under the server master
	// key and atomically persists the organization with its creator as owner.
	// The plaintext key never leaves this call. A zero-knowledge client sends
	// its own wrap of the key along as creatorWrappedKey, stored in the same
	// transaction so the creator never appears in the pending-keys list; empty
	// means the creator completes the ceremony later.
	Create(ctx context.Context, name string, createdBy uuid.UUID, creatorWrappedKey string) (*orgsDomain.Organization, error)
	// Get retrieves an organization with its member list. The caller must be a member.
	Get(ctx context.Context, orgID, callerID uuid.UUID) (*orgsDomain.Organization, []*orgsDomain.Member, error)
	List(ctx context.Context, userID uuid.UUID) ([]*orgsDomain.Organization, error)
	InviteMember(ctx context.Context, orgID, callerID uuid.UUID, email string, role orgsDomain.Role) (*orgsDomain.Membership, error)
	UpdateMemberRole(ctx context.Context, orgID, callerID, userID uuid.UUID, role orgsDomain.Role) error
	RemoveMember(ctx context.Context, orgID, callerID, userID uuid.UUID) error

	// GetOrgEncryptionKey unwraps the organization content key from the
	// master-wrapped copy. Used by the items and files contexts for
	// server-side encryption; the returned key is request-scoped and the
	// caller must zero it after use.
	GetOrgEncryptionKey(ctx context.Context, orgID uuid.UUID) ([]byte, error)

	// StoreMemberKey stores a client-produced wrap of the organization key
	// for a member. Idempotent upsert; the caller must be a member.
	StoreMemberKey(ctx context.Context, orgID, callerID, userID uuid.UUID, encryptedOrgKey string) (*orgsDomain.MemberKey, error)
	// GetMemberKey retrieves the caller's own wrapped key.
	GetMemberKey(ctx context.Context, orgID, callerID uuid.UUID) (*orgsDomain.MemberKey, error)
	// GetPrimaryMemberKey returns the user's wrapped key for their first
	// organization, or "" when the user has no organization or no wrap yet.
	// Handed to clients at login so they can decrypt without an extra round
	// trip.
	GetPrimaryMemberKey(ctx context.Context, userID uuid.UUID) (string, error)
	// ListPendingKeyMembers lists members who published a public key but have
	// no wrap yet. The caller must be a member.
	ListPendingKeyMembers(ctx context.Context, orgID, callerID uuid.UUID) ([]*orgsDomain.PendingMember, error)
}
