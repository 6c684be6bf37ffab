// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	itemsDomain "github.com/familyvault/vault/internal/items/domain"
)

// ItemResponse represents a vault item in API responses. Field values carry
// plaintext for server-side records and client-encrypted blobs for
// client-side ones; list responses omit them entirely.
type ItemResponse struct {
	ID                string            `json:"id"`
	OrgID             string            `json:"org_id"`
	Category          string            `json:"category"`
	Subcategory       string            `json:"subcategory"`
	Title             string            `json:"title"`
	EncryptionVersion int               `json:"encryption_version"`
	CreatedBy         string            `json:"created_by"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
	Fields            map[string]string `json:"fields,omitempty"`
}

// MapItemToResponse converts a domain item to an API response.
func MapItemToResponse(item *itemsDomain.Item) ItemResponse {
	response := ItemResponse{
		ID:                item.ID.String(),
		OrgID:             item.OrgID.String(),
		Category:          item.Category,
		Subcategory:       item.Subcategory,
		Title:             item.Title,
		EncryptionVersion: int(item.EncryptionVersion),
		CreatedBy:         item.CreatedBy.String(),
		CreatedAt:         item.CreatedAt,
		UpdatedAt:         item.UpdatedAt,
	}
	if len(item.Fields) > 0 {
		response.Fields = make(map[string]string, len(item.Fields))
		for _, field := range item.Fields {
			response.Fields[field.FieldKey] = field.Value
		}
	}
	return response
}

// MapItemsToResponse converts domain items to an API response list.
func MapItemsToResponse(items []*itemsDomain.Item) []ItemResponse {
	responses := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, MapItemToResponse(item))
	}
	return responses
}
