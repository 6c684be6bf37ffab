package domain

import (
	"github.com/familyvault/vault/internal/errors"
)

// Item-specific error definitions.
var (
	// ErrItemNotFound indicates the item does not exist in the organization.
	ErrItemNotFound = errors.Wrap(errors.ErrNotFound, "item not found")
	// ErrUnknownCategory indicates a category/subcategory pair the registry
	// does not define.
	ErrUnknownCategory = errors.Wrap(errors.ErrInvalidInput, "unknown category or subcategory")
	// ErrUnknownField indicates a field key the category does not define.
	ErrUnknownField = errors.Wrap(errors.ErrInvalidInput, "unknown field for category")
	// ErrInvalidEncryptionVersion indicates an unsupported encryption version.
	ErrInvalidEncryptionVersion = errors.Wrap(errors.ErrInvalidInput, "invalid encryption version")
)
