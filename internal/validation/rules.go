// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/familyvault/vault/internal/errors"
)

var (
	// emailRegex is a basic email validation pattern
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// Email validates email format using regex
var Email = validation.NewStringRuleWithError(
	func(s string) bool {
		return emailRegex.MatchString(s)
	},
	validation.NewError("validation_email_format", "must be a valid email address"),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// PasswordStrength validates that a password is at least 8 characters and
// mixes at least two character classes (lower, upper, digit, symbol).
// Client-side-encryption accounts send a derived master password hash here,
// which always satisfies the rule.
var PasswordStrength = validation.NewStringRuleWithError(
	func(s string) bool {
		if len(s) < 8 {
			return false
		}
		classes := make(map[string]struct{}, 4)
		for _, r := range s {
			switch {
			case r >= 'a' && r <= 'z':
				classes["lower"] = struct{}{}
			case r >= 'A' && r <= 'Z':
				classes["upper"] = struct{}{}
			case r >= '0' && r <= '9':
				classes["digit"] = struct{}{}
			default:
				classes["symbol"] = struct{}{}
			}
		}
		return len(classes) >= 2
	},
	validation.NewError(
		"validation_password_strength",
		"must be at least 8 characters and mix letter cases, digits or symbols",
	),
)
