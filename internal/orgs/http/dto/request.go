// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/familyvault/vault/internal/validation"
)

// CreateOrgRequest contains the parameters for creating an organization.
// Zero-knowledge clients send their own wrap of the organization key so the
// creator starts out with ceremony access already in place.
type CreateOrgRequest struct {
	Name            string `json:"name" binding:"required"`
	EncryptedOrgKey string `json:"encrypted_org_key"`
}

// Validate checks if the create organization request is valid.
func (r *CreateOrgRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.EncryptedOrgKey,
			customValidation.NoWhitespace,
		),
	)
}

// InviteMemberRequest contains the parameters for inviting a member.
type InviteMemberRequest struct {
	Email string `json:"email" binding:"required"`
	Role  string `json:"role" binding:"required"`
}

// Validate checks if the invite member request is valid.
func (r *InviteMemberRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email,
			validation.Required,
			customValidation.Email,
		),
		validation.Field(&r.Role,
			validation.Required,
			validation.In("viewer", "member", "admin"),
		),
	)
}

// UpdateMemberRoleRequest contains the parameters for changing a member's role.
type UpdateMemberRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// Validate checks if the update member role request is valid.
func (r *UpdateMemberRoleRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Role,
			validation.Required,
			validation.In("viewer", "member", "admin", "owner"),
		),
	)
}

// StoreMemberKeyRequest contains a client-produced wrap of the organization
// key for one member. The blob is opaque to the server.
type StoreMemberKeyRequest struct {
	UserID          string `json:"user_id" binding:"required"`
	EncryptedOrgKey string `json:"encrypted_org_key" binding:"required"`
}

// Validate checks if the store member key request is valid.
func (r *StoreMemberKeyRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserID,
			validation.Required,
			customValidation.UUID,
		),
		validation.Field(&r.EncryptedOrgKey,
			validation.Required,
			customValidation.NoWhitespace,
		),
	)
}
