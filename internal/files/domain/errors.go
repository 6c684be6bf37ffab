package domain

import (
	"github.com/familyvault/vault/internal/errors"
)

// Attachment-specific error definitions.
var (
	// ErrAttachmentNotFound indicates the attachment does not exist in the
	// organization.
	ErrAttachmentNotFound = errors.Wrap(errors.ErrNotFound, "attachment not found")
	// ErrFileTooLarge indicates the upload exceeds the size cap.
	ErrFileTooLarge = errors.Wrap(errors.ErrInvalidInput, "file too large")
	// ErrMimeTypeNotAllowed indicates a content type outside the allow-list.
	ErrMimeTypeNotAllowed = errors.Wrap(errors.ErrInvalidInput, "file type not allowed")
	// ErrInvalidEncryptionVersion indicates an unsupported encryption version.
	ErrInvalidEncryptionVersion = errors.Wrap(errors.ErrInvalidInput, "invalid encryption version")
)
