// Package http provides HTTP handlers for encrypted file attachments.
package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	cryptoDomain "github.com/familyvault/vault/internal/crypto/domain"
	apperrors "github.com/familyvault/vault/internal/errors"
	filesDomain "github.com/familyvault/vault/internal/files/domain"
	"github.com/familyvault/vault/internal/files/http/dto"
	filesUseCase "github.com/familyvault/vault/internal/files/usecase"
	"github.com/familyvault/vault/internal/httputil"
	usersHTTP "github.com/familyvault/vault/internal/users/http"
)

// FileHandler handles HTTP requests for attachment operations.
type FileHandler struct {
	fileUseCase filesUseCase.FileUseCase
	maxFileSize int64
	logger      *slog.Logger
}

// NewFileHandler creates a new file handler with required dependencies.
// A non-positive maxFileSize falls back to the built-in cap.
func NewFileHandler(fileUseCase filesUseCase.FileUseCase, maxFileSize int64, logger *slog.Logger) *FileHandler {
	if maxFileSize <= 0 {
		maxFileSize = filesDomain.MaxFileSize
	}
	return &FileHandler{
		fileUseCase: fileUseCase,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

func callerID(c *gin.Context) (uuid.UUID, bool) {
	return usersHTTP.GetUserID(c.Request.Context())
}

func orgIDParam(c *gin.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Param("id"))
}

// UploadHandler stores a new attachment from a multipart form. Form fields:
// file (required), item_id (required), purpose, encryption_version.
// POST /v1/orgs/:id/files
func (h *FileHandler) UploadHandler(c *gin.Context) {
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

	itemID, err := uuid.Parse(c.PostForm("item_id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, errors.New("invalid item id"), h.logger)
		return
	}

	version := cryptoDomain.VersionServerSide
	if raw := c.PostForm("encryption_version"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			httputil.HandleBadRequestGin(c, errors.New("invalid encryption version"), h.logger)
			return
		}
		version = cryptoDomain.EncryptionVersion(parsed)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		httputil.HandleBadRequestGin(c, errors.New("missing file"), h.logger)
		return
	}
	if fileHeader.Size > h.maxFileSize {
		httputil.HandleErrorGin(c, filesDomain.ErrFileTooLarge, h.logger)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		httputil.HandleErrorGin(c, apperrors.Wrap(err, "failed to open upload"), h.logger)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		httputil.HandleErrorGin(c, apperrors.Wrap(err, "failed to read upload"), h.logger)
		return
	}

	attachment, err := h.fileUseCase.Upload(c.Request.Context(), filesUseCase.UploadInput{
		OrgID:             orgID,
		CallerID:          caller,
		ItemID:            itemID,
		FileName:          fileHeader.Filename,
		MimeType:          fileHeader.Header.Get("Content-Type"),
		Purpose:           c.PostForm("purpose"),
		EncryptionVersion: version,
		Data:              data,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapAttachmentToResponse(attachment))
}

// DownloadHandler streams the attachment back. Server-side records are
// decrypted and served with their original content type; client-side records
// go out still encrypted with X-Encryption-Version: 2 so the client decrypts.
// GET /v1/orgs/:id/files/:file_id
func (h *FileHandler) DownloadHandler(c *gin.Context) {
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

	fileID, err := uuid.Parse(c.Param("file_id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, errors.New("invalid file id"), h.logger)
		return
	}

	result, err := h.fileUseCase.Download(c.Request.Context(), orgID, caller, fileID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	if result.EncryptionVersion == cryptoDomain.VersionClientSide {
		c.Header("X-Encryption-Version", "2")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
		c.Data(http.StatusOK, "application/octet-stream", result.Data)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", result.FileName))
	c.Data(http.StatusOK, result.MimeType, result.Data)
}

// ListHandler lists an item's attachments.
// GET /v1/orgs/:id/items/:item_id/files
func (h *FileHandler) ListHandler(c *gin.Context) {
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

	itemID, err := uuid.Parse(c.Param("item_id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, errors.New("invalid item id"), h.logger)
		return
	}

	attachments, err := h.fileUseCase.ListByItem(c.Request.Context(), orgID, caller, itemID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, gin.H{"files": dto.MapAttachmentsToResponse(attachments)})
}

// DeleteHandler removes an attachment and its stored bytes.
// DELETE /v1/orgs/:id/files/:file_id
func (h *FileHandler) DeleteHandler(c *gin.Context) {
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

	fileID, err := uuid.Parse(c.Param("file_id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, errors.New("invalid file id"), h.logger)
		return
	}

	if err := h.fileUseCase.Delete(c.Request.Context(), orgID, caller, fileID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
