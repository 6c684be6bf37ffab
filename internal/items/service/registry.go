// Package service provides the category registry for vault items. The
// registry defines which categories and subcategories exist, the fields each
// record type carries, and which of those fields hold sensitive values that
// must be encrypted at rest.
package service

import (
	itemsDomain "github.com/familyvault/vault/internal/items/domain"
)

// FieldDefinition describes one field of a record type.
type FieldDefinition struct {
	Key      string
	Label    string
	Type     string
	Required bool
}

// FieldGroup bundles related fields for display purposes.
type FieldGroup struct {
	Label  string
	Fields []FieldDefinition
}

// SubcategoryDefinition describes a record type. Either Fields or FieldGroups
// is populated; AllFields flattens both shapes.
type SubcategoryDefinition struct {
	Key         string
	Label       string
	Fields      []FieldDefinition
	FieldGroups []FieldGroup
	// Sensitive lists the field keys whose values are encrypted at rest.
	Sensitive []string
}

// CategoryDefinition groups record types under a category slug.
type CategoryDefinition struct {
	Slug          string
	Label         string
	Subcategories map[string]SubcategoryDefinition
}

// AllFields returns the subcategory's fields, flattening field groups when present.
func (s SubcategoryDefinition) AllFields() []FieldDefinition {
	if len(s.FieldGroups) == 0 {
		return s.Fields
	}
	var all []FieldDefinition
	for _, group := range s.FieldGroups {
		all = append(all, group.Fields...)
	}
	return all
}

// categories is the registry of record types. The Sensitive sets mirror the
// data already encrypted in production databases, so changing an entry here
// changes which stored values are expected to be ciphertext.
var categories = map[string]CategoryDefinition{
	"ids": {
		Slug:  "ids",
		Label: "IDs & Personal Documents",
		Subcategories: map[string]SubcategoryDefinition{
			"drivers_license": {
				Key:   "drivers_license",
				Label: "Driver's License",
				Fields: []FieldDefinition{
					{Key: "license_number", Label: "License Number", Type: "text", Required: true},
					{Key: "state", Label: "Issuing State", Type: "text"},
					{Key: "expiration_date", Label: "Expiration Date", Type: "date"},
				},
				Sensitive: []string{"license_number"},
			},
			"passport": {
				Key:   "passport",
				Label: "Passport",
				Fields: []FieldDefinition{
					{Key: "passport_number", Label: "Passport Number", Type: "text", Required: true},
					{Key: "country", Label: "Issuing Country", Type: "text"},
					{Key: "issue_date", Label: "Issue Date", Type: "date"},
					{Key: "expiration_date", Label: "Expiration Date", Type: "date"},
				},
				Sensitive: []string{"passport_number"},
			},
			"social_security_card": {
				Key:   "social_security_card",
				Label: "Social Security Card",
				Fields: []FieldDefinition{
					{Key: "ssn", Label: "Social Security Number", Type: "text", Required: true},
				},
				Sensitive: []string{"ssn"},
			},
			"birth_certificate": {
				Key:   "birth_certificate",
				Label: "Birth Certificate",
				Fields: []FieldDefinition{
					{Key: "certificate_number", Label: "Certificate Number", Type: "text"},
					{Key: "place_of_birth", Label: "Place of Birth", Type: "text"},
					{Key: "date_of_birth", Label: "Date of Birth", Type: "date"},
				},
				Sensitive: []string{"certificate_number"},
			},
			"custom_id": {
				Key:   "custom_id",
				Label: "Other ID",
				Fields: []FieldDefinition{
					{Key: "id_number", Label: "ID Number", Type: "text", Required: true},
					{Key: "id_type", Label: "ID Type", Type: "text"},
					{Key: "expiration_date", Label: "Expiration Date", Type: "date"},
				},
				Sensitive: []string{"id_number"},
			},
			"visa": {
				Key:   "visa",
				Label: "Visa",
				Fields: []FieldDefinition{
					{Key: "visa_number", Label: "Visa Number", Type: "text", Required: true},
					{Key: "country", Label: "Country", Type: "text"},
					{Key: "visa_type", Label: "Visa Type", Type: "text"},
					{Key: "expiration_date", Label: "Expiration Date", Type: "date"},
				},
				Sensitive: []string{"visa_number"},
			},
		},
	},
	"insurance": {
		Slug:  "insurance",
		Label: "Insurance",
		Subcategories: map[string]SubcategoryDefinition{
			"auto_insurance": {
				Key:   "auto_insurance",
				Label: "Auto Insurance",
				Fields: []FieldDefinition{
					{Key: "policy_number", Label: "Policy Number", Type: "text", Required: true},
					{Key: "provider", Label: "Provider", Type: "text"},
					{Key: "renewal_date", Label: "Renewal Date", Type: "date"},
				},
				Sensitive: []string{"policy_number"},
			},
			"health_insurance": {
				Key:   "health_insurance",
				Label: "Health Insurance",
				FieldGroups: []FieldGroup{
					{
						Label: "Policy",
						Fields: []FieldDefinition{
							{Key: "policy_number", Label: "Policy Number", Type: "text", Required: true},
							{Key: "provider", Label: "Provider", Type: "text"},
						},
					},
					{
						Label: "Member",
						Fields: []FieldDefinition{
							{Key: "group_number", Label: "Group Number", Type: "text"},
							{Key: "member_id", Label: "Member ID", Type: "text"},
						},
					},
				},
				Sensitive: []string{"policy_number", "group_number", "member_id"},
			},
			"home_insurance": {
				Key:   "home_insurance",
				Label: "Home Insurance",
				Fields: []FieldDefinition{
					{Key: "policy_number", Label: "Policy Number", Type: "text", Required: true},
					{Key: "provider", Label: "Provider", Type: "text"},
					{Key: "renewal_date", Label: "Renewal Date", Type: "date"},
				},
				Sensitive: []string{"policy_number"},
			},
			"life_insurance": {
				Key:   "life_insurance",
				Label: "Life Insurance",
				Fields: []FieldDefinition{
					{Key: "policy_number", Label: "Policy Number", Type: "text", Required: true},
					{Key: "provider", Label: "Provider", Type: "text"},
					{Key: "beneficiary", Label: "Beneficiary", Type: "text"},
				},
				Sensitive: []string{"policy_number"},
			},
			"other_insurance": {
				Key:   "other_insurance",
				Label: "Other Insurance",
				Fields: []FieldDefinition{
					{Key: "policy_number", Label: "Policy Number", Type: "text", Required: true},
					{Key: "provider", Label: "Provider", Type: "text"},
					{Key: "coverage_type", Label: "Coverage Type", Type: "text"},
				},
				Sensitive: []string{"policy_number"},
			},
		},
	},
	"business": {
		Slug:  "business",
		Label: "Business",
		Subcategories: map[string]SubcategoryDefinition{
			"llc": {
				Key:   "llc",
				Label: "LLC",
				Fields: []FieldDefinition{
					{Key: "ein", Label: "EIN", Type: "text", Required: true},
					{Key: "state", Label: "State of Formation", Type: "text"},
					{Key: "formation_date", Label: "Formation Date", Type: "date"},
				},
				Sensitive: []string{"ein"},
			},
			"corporation": {
				Key:   "corporation",
				Label: "Corporation",
				Fields: []FieldDefinition{
					{Key: "ein", Label: "EIN", Type: "text", Required: true},
					{Key: "state", Label: "State of Incorporation", Type: "text"},
					{Key: "formation_date", Label: "Formation Date", Type: "date"},
				},
				Sensitive: []string{"ein"},
			},
			"partnership": {
				Key:   "partnership",
				Label: "Partnership",
				Fields: []FieldDefinition{
					{Key: "ein", Label: "EIN", Type: "text", Required: true},
					{Key: "partners", Label: "Partners", Type: "text"},
				},
				Sensitive: []string{"ein"},
			},
			"sole_proprietorship": {
				Key:   "sole_proprietorship",
				Label: "Sole Proprietorship",
				Fields: []FieldDefinition{
					{Key: "ein", Label: "EIN", Type: "text"},
					{Key: "dba", Label: "Doing Business As", Type: "text"},
				},
				Sensitive: []string{"ein"},
			},
			"business_license": {
				Key:   "business_license",
				Label: "Business License",
				Fields: []FieldDefinition{
					{Key: "license_number", Label: "License Number", Type: "text", Required: true},
					{Key: "issuing_authority", Label: "Issuing Authority", Type: "text"},
					{Key: "expiration_date", Label: "Expiration Date", Type: "date"},
				},
				Sensitive: []string{"license_number"},
			},
			"business_insurance": {
				Key:   "business_insurance",
				Label: "Business Insurance",
				Fields: []FieldDefinition{
					{Key: "policy_number", Label: "Policy Number", Type: "text", Required: true},
					{Key: "provider", Label: "Provider", Type: "text"},
				},
				Sensitive: []string{"policy_number"},
			},
			"tax_document": {
				Key:   "tax_document",
				Label: "Tax Document",
				Fields: []FieldDefinition{
					{Key: "tax_year", Label: "Tax Year", Type: "text"},
					{Key: "document_type", Label: "Document Type", Type: "text"},
				},
				// Tax documents carry no field-level secrets; attachments are
				// still encrypted like every file.
				Sensitive: nil,
			},
		},
	},
}

// Registry answers category and sensitivity questions for the item façade.
type Registry struct{}

// NewRegistry creates a Registry over the built-in category definitions.
func NewRegistry() *Registry {
	return &Registry{}
}

// Categories returns all category definitions.
func (r *Registry) Categories() map[string]CategoryDefinition {
	return categories
}

// Lookup returns the subcategory definition for a (category, subcategory) pair.
func (r *Registry) Lookup(category, subcategory string) (SubcategoryDefinition, error) {
	cat, ok := categories[category]
	if !ok {
		return SubcategoryDefinition{}, itemsDomain.ErrUnknownCategory
	}
	sub, ok := cat.Subcategories[subcategory]
	if !ok {
		return SubcategoryDefinition{}, itemsDomain.ErrUnknownCategory
	}
	return sub, nil
}

// SensitiveFields returns the set of field keys encrypted at rest for a
// record type. Unknown pairs yield an empty set rather than an error so the
// migration runner can walk legacy rows without failing.
func (r *Registry) SensitiveFields(category, subcategory string) map[string]struct{} {
	sub, err := r.Lookup(category, subcategory)
	if err != nil {
		return nil
	}
	sensitive := make(map[string]struct{}, len(sub.Sensitive))
	for _, key := range sub.Sensitive {
		sensitive[key] = struct{}{}
	}
	return sensitive
}

// ValidateFields verifies every field key belongs to the record type.
func (r *Registry) ValidateFields(category, subcategory string, fieldKeys []string) error {
	sub, err := r.Lookup(category, subcategory)
	if err != nil {
		return err
	}

	known := make(map[string]struct{})
	for _, field := range sub.AllFields() {
		known[field.Key] = struct{}{}
	}

	for _, key := range fieldKeys {
		if _, ok := known[key]; !ok {
			return itemsDomain.ErrUnknownField
		}
	}
	return nil
}
