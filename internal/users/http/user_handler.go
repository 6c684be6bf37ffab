package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/familyvault/vault/internal/errors"
	"github.com/familyvault/vault/internal/httputil"
	"github.com/familyvault/vault/internal/users/http/dto"
	usersUseCase "github.com/familyvault/vault/internal/users/usecase"
	customValidation "github.com/familyvault/vault/internal/validation"
)

// UserHandler handles HTTP requests for account and session operations.
type UserHandler struct {
	userUseCase usersUseCase.UserUseCase
	logger      *slog.Logger
}

// NewUserHandler creates a new user handler with required dependencies.
func NewUserHandler(userUseCase usersUseCase.UserUseCase, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
		logger:      logger,
	}
}

// RegisterHandler creates a new account.
// POST /v1/auth/register
func (h *UserHandler) RegisterHandler(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	user, err := h.userUseCase.Register(c.Request.Context(), usersUseCase.RegisterInput{
		Email:                       strings.ToLower(req.Email),
		Name:                        req.Name,
		Password:                    req.Password,
		KDFIterations:               req.KDFIterations,
		PublicKey:                   req.PublicKey,
		EncryptedPrivateKey:         req.EncryptedPrivateKey,
		RecoveryEncryptedPrivateKey: req.RecoveryEncryptedPrivateKey,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapUserToResponse(user))
}

// PreloginHandler returns the KDF parameters for an email. Always succeeds
// with plausible values so it cannot be used to probe for accounts.
// POST /v1/auth/prelogin
func (h *UserHandler) PreloginHandler(c *gin.Context) {
	var req dto.PreloginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	iterations, err := h.userUseCase.Prelogin(c.Request.Context(), strings.ToLower(req.Email))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.PreloginResponse{KDFIterations: iterations})
}

// LoginHandler authenticates and returns a session token with the caller's
// key material.
// POST /v1/auth/login
func (h *UserHandler) LoginHandler(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	result, err := h.userUseCase.Login(c.Request.Context(), strings.ToLower(req.Email), req.Password)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapLoginResultToResponse(result))
}

// LogoutHandler revokes the caller's session.
// POST /v1/auth/logout
func (h *UserHandler) LogoutHandler(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	const bearerPrefix = "bearer "
	if len(authHeader) < len(bearerPrefix) ||
		!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	if err := h.userUseCase.Logout(c.Request.Context(), authHeader[len(bearerPrefix):]); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// MeHandler returns the authenticated user's profile.
// GET /v1/auth/me
func (h *UserHandler) MeHandler(c *gin.Context) {
	userID, ok := GetUserID(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	user, err := h.userUseCase.Me(c.Request.Context(), userID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapUserToResponse(user))
}

// ChangePasswordHandler changes the caller's password and key material.
// POST /v1/auth/change-password
func (h *UserHandler) ChangePasswordHandler(c *gin.Context) {
	userID, ok := GetUserID(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	err := h.userUseCase.ChangePassword(c.Request.Context(), userID, usersUseCase.ChangePasswordInput{
		CurrentPassword:             req.CurrentPassword,
		NewPassword:                 req.NewPassword,
		KDFIterations:               req.KDFIterations,
		PublicKey:                   req.PublicKey,
		EncryptedPrivateKey:         req.EncryptedPrivateKey,
		RecoveryEncryptedPrivateKey: req.RecoveryEncryptedPrivateKey,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetPublicKeyHandler returns a user's published public key so an admin's
// client can wrap the organization key for them.
// GET /v1/users/:id/public-key
func (h *UserHandler) GetPublicKeyHandler(c *gin.Context) {
	if _, ok := GetUserID(c.Request.Context()); !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, errors.New("invalid user id"), h.logger)
		return
	}

	publicKey, err := h.userUseCase.GetPublicKey(c.Request.Context(), userID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.PublicKeyResponse{
		UserID:    userID.String(),
		PublicKey: publicKey,
	})
}
