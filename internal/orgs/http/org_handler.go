// Package http provides HTTP handlers for organization management and the
// member key exchange ceremony.
package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/familyvault/vault/internal/errors"
	"github.com/familyvault/vault/internal/httputil"
	orgsDomain "github.com/familyvault/vault/internal/orgs/domain"
	"github.com/familyvault/vault/internal/orgs/http/dto"
	orgsUseCase "github.com/familyvault/vault/internal/orgs/usecase"
	usersHTTP "github.com/familyvault/vault/internal/users/http"
	customValidation "github.com/familyvault/vault/internal/validation"
)

// OrgHandler handles HTTP requests for organization management operations.
type OrgHandler struct {
	orgUseCase orgsUseCase.OrgUseCase
	logger     *slog.Logger
}

// NewOrgHandler creates a new organization handler with required dependencies.
func NewOrgHandler(orgUseCase orgsUseCase.OrgUseCase, logger *slog.Logger) *OrgHandler {
	return &OrgHandler{
		orgUseCase: orgUseCase,
		logger:     logger,
	}
}

// callerID extracts the authenticated user ID set by the session middleware.
func callerID(c *gin.Context) (uuid.UUID, bool) {
	return usersHTTP.GetUserID(c.Request.Context())
}

// orgIDParam parses the organization ID URL parameter.
func orgIDParam(c *gin.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Param("id"))
}

// CreateHandler creates a new organization owned by the caller.
// POST /v1/orgs
func (h *OrgHandler) CreateHandler(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.CreateOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	org, err := h.orgUseCase.Create(c.Request.Context(), req.Name, caller, req.EncryptedOrgKey)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapOrgToResponse(org))
}

// ListHandler lists the organizations the caller belongs to.
// GET /v1/orgs
func (h *OrgHandler) ListHandler(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	orgs, err := h.orgUseCase.List(c.Request.Context(), caller)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	responses := make([]dto.OrgResponse, 0, len(orgs))
	for _, org := range orgs {
		responses = append(responses, dto.MapOrgToResponse(org))
	}

	c.JSON(http.StatusOK, gin.H{"organizations": responses})
}

// GetHandler retrieves an organization with its member list.
// GET /v1/orgs/:id
func (h *OrgHandler) GetHandler(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	orgID, err := orgIDParam(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, errors.New("invalid organization id"), h.logger)
		return
	}

	org, members, err := h.orgUseCase.Get(c.Request.Context(), orgID, caller)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapOrgWithMembersToResponse(org, members))
}

// InviteMemberHandler adds a user to the organization by email.
// POST /v1/orgs/:id/members
func (h *OrgHandler) InviteMemberHandler(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	orgID, err := orgIDParam(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, errors.New("invalid organization id"), h.logger)
		return
	}

	var req dto.InviteMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	membership, err := h.orgUseCase.InviteMember(
		c.Request.Context(),
		orgID,
		caller,
		req.Email,
		orgsDomain.Role(req.Role),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapMembershipToResponse(membership))
}

// UpdateMemberRoleHandler changes a member's role.
// PATCH /v1/orgs/:id/members/:user_id
func (h *OrgHandler) UpdateMemberRoleHandler(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	orgID, err := orgIDParam(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, errors.New("invalid organization id"), h.logger)
		return
	}

	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, errors.New("invalid user id"), h.logger)
		return
	}

	var req dto.UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	err = h.orgUseCase.UpdateMemberRole(c.Request.Context(), orgID, caller, userID, orgsDomain.Role(req.Role))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// RemoveMemberHandler removes a member from the organization.
// DELETE /v1/orgs/:id/members/:user_id
func (h *OrgHandler) RemoveMemberHandler(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	orgID, err := orgIDParam(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, errors.New("invalid organization id"), h.logger)
		return
	}

	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, errors.New("invalid user id"), h.logger)
		return
	}

	if err := h.orgUseCase.RemoveMember(c.Request.Context(), orgID, caller, userID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// StoreMemberKeyHandler stores a client-produced wrap of the organization key.
// POST /v1/orgs/:id/keys
func (h *OrgHandler) StoreMemberKeyHandler(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	orgID, err := orgIDParam(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, errors.New("invalid organization id"), h.logger)
		return
	}

	var req dto.StoreMemberKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		httputil.HandleBadRequestGin(c, errors.New("invalid user id"), h.logger)
		return
	}

	memberKey, err := h.orgUseCase.StoreMemberKey(c.Request.Context(), orgID, caller, userID, req.EncryptedOrgKey)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapMemberKeyToResponse(memberKey))
}

// GetMyKeyHandler retrieves the caller's wrapped organization key.
// GET /v1/orgs/:id/my-key
func (h *OrgHandler) GetMyKeyHandler(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	orgID, err := orgIDParam(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, errors.New("invalid organization id"), h.logger)
		return
	}

	memberKey, err := h.orgUseCase.GetMemberKey(c.Request.Context(), orgID, caller)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapMemberKeyToResponse(memberKey))
}

// ListPendingKeysHandler lists members awaiting a wrapped key.
// GET /v1/orgs/:id/pending-keys
func (h *OrgHandler) ListPendingKeysHandler(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	orgID, err := orgIDParam(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, errors.New("invalid organization id"), h.logger)
		return
	}

	pending, err := h.orgUseCase.ListPendingKeyMembers(c.Request.Context(), orgID, caller)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, gin.H{"pending_members": dto.MapPendingMembersToResponse(pending)})
}
