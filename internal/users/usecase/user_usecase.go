package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/familyvault/vault/internal/database"
	apperrors "github.com/familyvault/vault/internal/errors"
	usersDomain "github.com/familyvault/vault/internal/users/domain"
	usersService "github.com/familyvault/vault/internal/users/service"
)

// userUseCase implements the UserUseCase interface.
type userUseCase struct {
	txManager         database.TxManager
	userRepo          UserRepository
	sessionRepo       SessionRepository
	credentialService usersService.CredentialService
	orgKeySource      OrgKeySource
	sessionExpiry     time.Duration
}

// Register creates a new account. Accounts with client-side key material
// must supply the public key and encrypted private key together.
func (u *userUseCase) Register(ctx context.Context, input RegisterInput) (*usersDomain.User, error) {
	if (input.PublicKey == "") != (input.EncryptedPrivateKey == "") {
		return nil, usersDomain.ErrIncompleteKeyMaterial
	}

	if _, err := u.userRepo.GetIDByEmail(ctx, input.Email); err == nil {
		return nil, usersDomain.ErrEmailTaken
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	passwordHash, err := u.credentialService.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	iterations := input.KDFIterations
	if iterations == 0 {
		iterations = usersDomain.DefaultKDFIterations
	}

	now := time.Now().UTC()
	user := &usersDomain.User{
		ID:                          uuid.Must(uuid.NewV7()),
		Email:                       input.Email,
		Name:                        input.Name,
		PasswordHash:                passwordHash,
		KDFIterations:               iterations,
		PublicKey:                   input.PublicKey,
		EncryptedPrivateKey:         input.EncryptedPrivateKey,
		RecoveryEncryptedPrivateKey: input.RecoveryEncryptedPrivateKey,
		CreatedAt:                   now,
		UpdatedAt:                   now,
	}

	if err := u.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Prelogin returns the KDF iteration count for an email. Unknown emails get
// the default so the response is indistinguishable from a fresh account.
func (u *userUseCase) Prelogin(ctx context.Context, email string) (int, error) {
	user, err := u.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return usersDomain.DefaultKDFIterations, nil
		}
		return 0, err
	}

	return user.KDFIterations, nil
}

// Login verifies the credential, creates a database-backed session and hands
// back the caller's wrapped organization key when one is stored.
func (u *userUseCase) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := u.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, usersDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !u.credentialService.ComparePassword(password, user.PasswordHash) {
		return nil, usersDomain.ErrInvalidCredentials
	}

	token, err := u.credentialService.GenerateSessionToken()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	session := &usersDomain.Session{
		ID:        uuid.Must(uuid.NewV7()),
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: now.Add(u.sessionExpiry),
		CreatedAt: now,
	}
	if err := u.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	encryptedOrgKey, err := u.orgKeySource.GetPrimaryMemberKey(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		User:            user,
		Token:           token,
		ExpiresAt:       session.ExpiresAt,
		EncryptedOrgKey: encryptedOrgKey,
	}, nil
}

// Logout revokes a session. Revoking an already-revoked token is a no-op.
func (u *userUseCase) Logout(ctx context.Context, token string) error {
	return u.sessionRepo.DeleteByToken(ctx, token)
}

// Authenticate resolves a session token to a user ID. Expired sessions are
// deleted on sight.
func (u *userUseCase) Authenticate(ctx context.Context, token string) (uuid.UUID, error) {
	session, err := u.sessionRepo.GetByToken(ctx, token)
	if err != nil {
		return uuid.Nil, err
	}

	if session.Expired(time.Now().UTC()) {
		_ = u.sessionRepo.DeleteByToken(ctx, token)
		return uuid.Nil, usersDomain.ErrSessionExpired
	}

	return session.UserID, nil
}

// Me retrieves the authenticated user's profile.
func (u *userUseCase) Me(ctx context.Context, userID uuid.UUID) (*usersDomain.User, error) {
	return u.userRepo.Get(ctx, userID)
}

// GetPublicKey returns a user's published public key.
func (u *userUseCase) GetPublicKey(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := u.userRepo.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.PublicKey == "" {
		return "", apperrors.Wrap(apperrors.ErrNotFound, "user has no public key")
	}

	return user.PublicKey, nil
}

// ChangePassword verifies the current credential, stores the new hash and
// re-wrapped key material atomically, and revokes every existing session.
func (u *userUseCase) ChangePassword(ctx context.Context, userID uuid.UUID, input ChangePasswordInput) error {
	if (input.PublicKey == "") != (input.EncryptedPrivateKey == "") {
		return usersDomain.ErrIncompleteKeyMaterial
	}

	user, err := u.userRepo.Get(ctx, userID)
	if err != nil {
		return err
	}

	if !u.credentialService.ComparePassword(input.CurrentPassword, user.PasswordHash) {
		return usersDomain.ErrInvalidCredentials
	}

	// An account that already published key material must re-wrap it; a
	// password change that silently dropped the wrap would lock the user out
	// of every client-side-encrypted organization.
	if user.HasKeyMaterial() && input.PublicKey == "" {
		return usersDomain.ErrIncompleteKeyMaterial
	}

	newHash, err := u.credentialService.HashPassword(input.NewPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = newHash
	if input.KDFIterations != 0 {
		user.KDFIterations = input.KDFIterations
	}
	if input.PublicKey != "" {
		user.PublicKey = input.PublicKey
		user.EncryptedPrivateKey = input.EncryptedPrivateKey
		user.RecoveryEncryptedPrivateKey = input.RecoveryEncryptedPrivateKey
	}
	user.UpdatedAt = time.Now().UTC()

	return u.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := u.userRepo.UpdateCredentials(txCtx, user); err != nil {
			return err
		}
		return u.sessionRepo.DeleteByUser(txCtx, userID)
	})
}

// NewUserUseCase creates a new user use case instance with the provided dependencies.
func NewUserUseCase(
	txManager database.TxManager,
	userRepo UserRepository,
	sessionRepo SessionRepository,
	credentialService usersService.CredentialService,
	orgKeySource OrgKeySource,
	sessionExpiry time.Duration,
) UserUseCase {
	return &userUseCase{
		txManager:         txManager,
		userRepo:          userRepo,
		sessionRepo:       sessionRepo,
		credentialService: credentialService,
		orgKeySource:      orgKeySource,
		sessionExpiry:     sessionExpiry,
	}
}
