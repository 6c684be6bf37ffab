// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	filesDomain "github.com/familyvault/vault/internal/files/domain"
)

// AttachmentResponse represents an attachment in API responses. Storage keys,
// nonces and tags never leave the server.
type AttachmentResponse struct {
	ID                string    `json:"id"`
	ItemID            string    `json:"item_id"`
	FileName          string    `json:"file_name"`
	FileSize          int64     `json:"file_size"`
	MimeType          string    `json:"mime_type"`
	Purpose           string    `json:"purpose,omitempty"`
	EncryptionVersion int       `json:"encryption_version"`
	CreatedAt         time.Time `json:"created_at"`
}

// MapAttachmentToResponse converts a domain attachment to an API response.
func MapAttachmentToResponse(attachment *filesDomain.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:                attachment.ID.String(),
		ItemID:            attachment.ItemID.String(),
		FileName:          attachment.FileName,
		FileSize:          attachment.FileSize,
		MimeType:          attachment.MimeType,
		Purpose:           attachment.Purpose,
		EncryptionVersion: int(attachment.EncryptionVersion),
		CreatedAt:         attachment.CreatedAt,
	}
}

// MapAttachmentsToResponse converts domain attachments to an API response list.
func MapAttachmentsToResponse(attachments []*filesDomain.Attachment) []AttachmentResponse {
	responses := make([]AttachmentResponse, 0, len(attachments))
	for _, attachment := range attachments {
		responses = append(responses, MapAttachmentToResponse(attachment))
	}
	return responses
}
