package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	itemsDomain "github.com/familyvault/vault/internal/items/domain"
)

func TestRegistry_Lookup(t *testing.T) {
	registry := NewRegistry()

	t.Run("known pair", func(t *testing.T) {
		sub, err := registry.Lookup("ids", "passport")
		require.NoError(t, err)
		assert.Equal(t, "passport", sub.Key)
	})

	t.Run("unknown category", func(t *testing.T) {
		_, err := registry.Lookup("vehicles", "car")
		assert.ErrorIs(t, err, itemsDomain.ErrUnknownCategory)
	})

	t.Run("unknown subcategory", func(t *testing.T) {
		_, err := registry.Lookup("ids", "library_card")
		assert.ErrorIs(t, err, itemsDomain.ErrUnknownCategory)
	})
}

func TestRegistry_SensitiveFields(t *testing.T) {
	registry := NewRegistry()

	tests := []struct {
		category    string
		subcategory string
		want        []string
	}{
		{"ids", "drivers_license", []string{"license_number"}},
		{"ids", "passport", []string{"passport_number"}},
		{"ids", "social_security_card", []string{"ssn"}},
		{"ids", "birth_certificate", []string{"certificate_number"}},
		{"ids", "custom_id", []string{"id_number"}},
		{"ids", "visa", []string{"visa_number"}},
		{"insurance", "auto_insurance", []string{"policy_number"}},
		{"insurance", "health_insurance", []string{"policy_number", "group_number", "member_id"}},
		{"insurance", "home_insurance", []string{"policy_number"}},
		{"insurance", "life_insurance", []string{"policy_number"}},
		{"insurance", "other_insurance", []string{"policy_number"}},
		{"business", "llc", []string{"ein"}},
		{"business", "corporation", []string{"ein"}},
		{"business", "partnership", []string{"ein"}},
		{"business", "sole_proprietorship", []string{"ein"}},
		{"business", "business_license", []string{"license_number"}},
		{"business", "business_insurance", []string{"policy_number"}},
		{"business", "tax_document", nil},
	}

	for _, tt := range tests {
		t.Run(tt.category+"/"+tt.subcategory, func(t *testing.T) {
			sensitive := registry.SensitiveFields(tt.category, tt.subcategory)
			assert.Len(t, sensitive, len(tt.want))
			for _, key := range tt.want {
				assert.Contains(t, sensitive, key)
			}
		})
	}

	t.Run("unknown pair yields empty set", func(t *testing.T) {
		assert.Empty(t, registry.SensitiveFields("vehicles", "car"))
	})
}

func TestRegistry_ValidateFields(t *testing.T) {
	registry := NewRegistry()

	t.Run("flat fields", func(t *testing.T) {
		err := registry.ValidateFields("ids", "passport", []string{"passport_number", "country"})
		assert.NoError(t, err)
	})

	t.Run("grouped fields are flattened", func(t *testing.T) {
		err := registry.ValidateFields("insurance", "health_insurance",
			[]string{"policy_number", "group_number", "member_id", "provider"})
		assert.NoError(t, err)
	})

	t.Run("unknown field", func(t *testing.T) {
		err := registry.ValidateFields("ids", "passport", []string{"favorite_color"})
		assert.ErrorIs(t, err, itemsDomain.ErrUnknownField)
	})
}
