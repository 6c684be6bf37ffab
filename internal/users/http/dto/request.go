// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/familyvault/vault/internal/validation"
)

// RegisterRequest contains the parameters for account registration. Accounts
// using client-side encryption send a master password hash instead of the
// real password, plus their wrapped key material.
type RegisterRequest struct {
	Email                       string `json:"email" binding:"required"`
	Name                        string `json:"name" binding:"required"`
	Password                    string `json:"password" binding:"required"`
	KDFIterations               int    `json:"kdf_iterations"`
	PublicKey                   string `json:"public_key"`
	EncryptedPrivateKey         string `json:"encrypted_private_key"`
	RecoveryEncryptedPrivateKey string `json:"recovery_encrypted_private_key"`
}

// Validate checks if the register request is valid.
func (r *RegisterRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email,
			validation.Required,
			customValidation.Email,
		),
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.Password,
			validation.Required,
			customValidation.PasswordStrength,
		),
		validation.Field(&r.KDFIterations,
			validation.Min(0),
		),
	)
}

// PreloginRequest contains the email for KDF parameter discovery.
type PreloginRequest struct {
	Email string `json:"email" binding:"required"`
}

// Validate checks if the prelogin request is valid.
func (r *PreloginRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email,
			validation.Required,
			customValidation.Email,
		),
	)
}

// LoginRequest contains login credentials.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Validate checks if the login request is valid.
func (r *LoginRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email,
			validation.Required,
			customValidation.Email,
		),
		validation.Field(&r.Password,
			validation.Required,
		),
	)
}

// ChangePasswordRequest contains the parameters for a password change.
// Clients with key material re-wrap their private key under the new master
// password and send the fresh blobs along.
type ChangePasswordRequest struct {
	CurrentPassword             string `json:"current_password" binding:"required"`
	NewPassword                 string `json:"new_password" binding:"required"`
	KDFIterations               int    `json:"kdf_iterations"`
	PublicKey                   string `json:"public_key"`
	EncryptedPrivateKey         string `json:"encrypted_private_key"`
	RecoveryEncryptedPrivateKey string `json:"recovery_encrypted_private_key"`
}

// Validate checks if the change password request is valid.
func (r *ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.CurrentPassword,
			validation.Required,
		),
		validation.Field(&r.NewPassword,
			validation.Required,
			customValidation.PasswordStrength,
		),
		validation.Field(&r.KDFIterations,
			validation.Min(0),
		),
	)
}
