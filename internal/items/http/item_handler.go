// Package http provides HTTP handlers for vault item management.
package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	cryptoDomain "github.com/familyvault/vault/internal/crypto/domain"
	apperrors "github.com/familyvault/vault/internal/errors"
	"github.com/familyvault/vault/internal/httputil"
	"github.com/familyvault/vault/internal/items/http/dto"
	itemsUseCase "github.com/familyvault/vault/internal/items/usecase"
	usersHTTP "github.com/familyvault/vault/internal/users/http"
	customValidation "github.com/familyvault/vault/internal/validation"
)

// ItemHandler handles HTTP requests for vault item operations.
type ItemHandler struct {
	itemUseCase itemsUseCase.ItemUseCase
	logger      *slog.Logger
}

// NewItemHandler creates a new item handler with required dependencies.
func NewItemHandler(itemUseCase itemsUseCase.ItemUseCase, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{
		itemUseCase: itemUseCase,
		logger:      logger,
	}
}

func callerID(c *gin.Context) (uuid.UUID, bool) {
	return usersHTTP.GetUserID(c.Request.Context())
}

func orgIDParam(c *gin.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Param("id"))
}

func itemIDParam(c *gin.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Param("item_id"))
}

// CreateHandler creates a new item in the organization.
// POST /v1/orgs/:id/items
func (h *ItemHandler) CreateHandler(c *gin.Context) {
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

	var req dto.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	item, err := h.itemUseCase.Create(c.Request.Context(), itemsUseCase.CreateItemInput{
		OrgID:             orgID,
		CallerID:          caller,
		Category:          req.Category,
		Subcategory:       req.Subcategory,
		Title:             req.Title,
		EncryptionVersion: cryptoDomain.EncryptionVersion(req.EncryptionVersion),
		Fields:            req.Fields,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapItemToResponse(item))
}

// ListHandler lists the organization's items, optionally filtered by category.
// GET /v1/orgs/:id/items?category=ids
func (h *ItemHandler) ListHandler(c *gin.Context) {
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

	items, err := h.itemUseCase.List(c.Request.Context(), orgID, caller, c.Query("category"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": dto.MapItemsToResponse(items)})
}

// GetHandler retrieves an item with its field values.
// GET /v1/orgs/:id/items/:item_id
func (h *ItemHandler) GetHandler(c *gin.Context) {
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

	itemID, err := itemIDParam(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, errors.New("invalid item id"), h.logger)
		return
	}

	item, err := h.itemUseCase.Get(c.Request.Context(), orgID, caller, itemID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapItemToResponse(item))
}

// UpdateHandler updates an item's title and replaces its field values.
// PUT /v1/orgs/:id/items/:item_id
func (h *ItemHandler) UpdateHandler(c *gin.Context) {
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

	itemID, err := itemIDParam(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, errors.New("invalid item id"), h.logger)
		return
	}

	var req dto.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	item, err := h.itemUseCase.Update(c.Request.Context(), itemsUseCase.UpdateItemInput{
		OrgID:             orgID,
		CallerID:          caller,
		ItemID:            itemID,
		Title:             req.Title,
		EncryptionVersion: cryptoDomain.EncryptionVersion(req.EncryptionVersion),
		Fields:            req.Fields,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapItemToResponse(item))
}

// DeleteHandler removes an item.
// DELETE /v1/orgs/:id/items/:item_id
func (h *ItemHandler) DeleteHandler(c *gin.Context) {
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

	itemID, err := itemIDParam(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, errors.New("invalid item id"), h.logger)
		return
	}

	if err := h.itemUseCase.Delete(c.Request.Context(), orgID, caller, itemID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
