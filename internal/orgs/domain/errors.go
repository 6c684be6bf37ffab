package domain

import (
	"github.com/familyvault/vault/internal/errors"
)

// Organization-specific error definitions.
var (
	// ErrOrganizationNotFound indicates the organization does not exist.
	ErrOrganizationNotFound = errors.Wrap(errors.ErrNotFound, "organization not found")
	// ErrMembershipNotFound indicates the user is not a member of the organization.
	ErrMembershipNotFound = errors.Wrap(errors.ErrForbidden, "not a member of this organization")
	// ErrMemberKeyNotFound indicates no wrapped key exists for the member yet.
	ErrMemberKeyNotFound = errors.Wrap(errors.ErrNotFound, "member key not found")
	// ErrInvalidRole indicates an unknown membership role value.
	ErrInvalidRole = errors.Wrap(errors.ErrInvalidInput, "invalid role")
	// ErrInsufficientRole indicates the caller's role does not permit the operation.
	ErrInsufficientRole = errors.Wrap(errors.ErrForbidden, "insufficient role")
	// ErrAlreadyMember indicates the user already belongs to the organization.
	ErrAlreadyMember = errors.Wrap(errors.ErrConflict, "user is already a member")
	// ErrOwnerRemoval indicates an attempt to remove or demote the last owner.
	ErrOwnerRemoval = errors.Wrap(errors.ErrInvalidInput, "organization must keep an owner")
)
