// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	orgsDomain "github.com/familyvault/vault/internal/orgs/domain"
)

// OrgResponse represents an organization in API responses.
// The wrapped encryption key is never exposed through this response; member
// wraps are served by the dedicated key exchange endpoints.
type OrgResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// MemberResponse represents an organization member in API responses.
type MemberResponse struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// OrgWithMembersResponse represents an organization with its member list.
type OrgWithMembersResponse struct {
	OrgResponse
	Members []MemberResponse `json:"members"`
}

// MembershipResponse represents a membership in API responses.
type MembershipResponse struct {
	OrgID     string    `json:"org_id"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// MemberKeyResponse represents a member's wrapped organization key.
type MemberKeyResponse struct {
	OrgID           string    `json:"org_id"`
	UserID          string    `json:"user_id"`
	EncryptedOrgKey string    `json:"encrypted_org_key"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// PendingMemberResponse represents a member awaiting a wrapped key.
type PendingMemberResponse struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	PublicKey string `json:"public_key"`
}

// MapOrgToResponse converts a domain organization to an API response.
func MapOrgToResponse(org *orgsDomain.Organization) OrgResponse {
	return OrgResponse{
		ID:        org.ID.String(),
		Name:      org.Name,
		CreatedBy: org.CreatedBy.String(),
		CreatedAt: org.CreatedAt,
	}
}

// MapOrgWithMembersToResponse converts an organization and its members to an API response.
func MapOrgWithMembersToResponse(
	org *orgsDomain.Organization,
	members []*orgsDomain.Member,
) OrgWithMembersResponse {
	response := OrgWithMembersResponse{
		OrgResponse: MapOrgToResponse(org),
		Members:     make([]MemberResponse, 0, len(members)),
	}
	for _, member := range members {
		response.Members = append(response.Members, MemberResponse{
			UserID:    member.UserID.String(),
			Email:     member.Email,
			Name:      member.Name,
			Role:      string(member.Role),
			CreatedAt: member.CreatedAt,
		})
	}
	return response
}

// MapMembershipToResponse converts a domain membership to an API response.
func MapMembershipToResponse(membership *orgsDomain.Membership) MembershipResponse {
	return MembershipResponse{
		OrgID:     membership.OrgID.String(),
		UserID:    membership.UserID.String(),
		Role:      string(membership.Role),
		CreatedAt: membership.CreatedAt,
	}
}

// MapMemberKeyToResponse converts a domain member key to an API response.
func MapMemberKeyToResponse(memberKey *orgsDomain.MemberKey) MemberKeyResponse {
	return MemberKeyResponse{
		OrgID:           memberKey.OrgID.String(),
		UserID:          memberKey.UserID.String(),
		EncryptedOrgKey: memberKey.EncryptedOrgKey,
		UpdatedAt:       memberKey.UpdatedAt,
	}
}

// MapPendingMembersToResponse converts pending members to an API response list.
func MapPendingMembersToResponse(pending []*orgsDomain.PendingMember) []PendingMemberResponse {
	responses := make([]PendingMemberResponse, 0, len(pending))
	for _, member := range pending {
		responses = append(responses, PendingMemberResponse{
			UserID:    member.UserID.String(),
			Email:     member.Email,
			Name:      member.Name,
			PublicKey: member.PublicKey,
		})
	}
	return responses
}
