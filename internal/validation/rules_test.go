package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPasswordStrength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{"mixed case", "CorrectHorse", true},
		{"letters and digits", "horse1234", true},
		{"letters and symbols", "owner-password", true},
		{"derived master password hash", "aGFzaGVkLW1hc3Rlci1wYXNzd29yZA==", true},
		{"too short", "Ab1!", false},
		{"single class lowercase", "passwordpassword", false},
		{"single class digits", "1234567890", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := PasswordStrength.Validate(tt.password)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestEmail(t *testing.T) {
	assert.NoError(t, Email.Validate("alice@example.com"))
	assert.Error(t, Email.Validate("not-an-email"))
}

func TestNotBlank(t *testing.T) {
	assert.NoError(t, NotBlank.Validate("vault"))
	assert.Error(t, NotBlank.Validate("   "))
}
