package validation

import (
	"github.com/google/uuid"
	validation "github.com/jellydator/validation"
)

// UUID validates that a string is a well-formed UUID.
var UUID = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok || s == "" {
		return nil // Use Required rule for presence checks
	}
	if _, err := uuid.Parse(s); err != nil {
		return validation.NewError("validation_is_uuid", "must be a valid UUID")
	}
	return nil
})
