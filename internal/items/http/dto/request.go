// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/familyvault/vault/internal/validation"
)

// CreateItemRequest contains the parameters for creating a vault item.
type CreateItemRequest struct {
	Category    string `json:"category" binding:"required"`
	Subcategory string `json:"subcategory" binding:"required"`
	Title       string `json:"title" binding:"required"`
	// EncryptionVersion selects server-side (1) or client-side (2)
	// protection; omitted means server-side.
	EncryptionVersion int               `json:"encryption_version"`
	Fields            map[string]string `json:"fields"`
}

// Validate checks if the create item request is valid.
func (r *CreateItemRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Category,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 100),
		),
		validation.Field(&r.Subcategory,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 100),
		),
		validation.Field(&r.Title,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.EncryptionVersion,
			validation.In(0, 1, 2),
		),
	)
}

// UpdateItemRequest contains the parameters for updating a vault item.
// Fields replace the item's current field values entirely.
type UpdateItemRequest struct {
	Title string `json:"title" binding:"required"`
	// EncryptionVersion optionally upgrades the record to client-side (2)
	// protection; omitted keeps the current version.
	EncryptionVersion int               `json:"encryption_version"`
	Fields            map[string]string `json:"fields"`
}

// Validate checks if the update item request is valid.
func (r *UpdateItemRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Title,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.EncryptionVersion,
			validation.In(0, 1, 2),
		),
	)
}
