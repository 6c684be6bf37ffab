package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/familyvault/vault/internal/errors"
	usersDomain "github.com/familyvault/vault/internal/users/domain"
	usersService "github.com/familyvault/vault/internal/users/service"
)

type fakeTxManager struct{}

func (f *fakeTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeUserRepo struct {
	byID    map[uuid.UUID]*usersDomain.User
	byEmail map[string]*usersDomain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[uuid.UUID]*usersDomain.User),
		byEmail: make(map[string]*usersDomain.User),
	}
}

func (f *fakeUserRepo) Create(_ context.Context, user *usersDomain.User) error {
	f.byID[user.ID] = user
	f.byEmail[user.Email] = user
	return nil
}

func (f *fakeUserRepo) Get(_ context.Context, userID uuid.UUID) (*usersDomain.User, error) {
	user, ok := f.byID[userID]
	if !ok {
		return nil, usersDomain.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*usersDomain.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, usersDomain.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetIDByEmail(_ context.Context, email string) (uuid.UUID, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return uuid.Nil, usersDomain.ErrUserNotFound
	}
	return user.ID, nil
}

func (f *fakeUserRepo) UpdateCredentials(_ context.Context, user *usersDomain.User) error {
	if _, ok := f.byID[user.ID]; !ok {
		return usersDomain.ErrUserNotFound
	}
	f.byID[user.ID] = user
	f.byEmail[user.Email] = user
	return nil
}

type fakeSessionRepo struct {
	byToken map[string]*usersDomain.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{byToken: make(map[string]*usersDomain.Session)}
}

func (f *fakeSessionRepo) Create(_ context.Context, session *usersDomain.Session) error {
	f.byToken[session.Token] = session
	return nil
}

func (f *fakeSessionRepo) GetByToken(_ context.Context, token string) (*usersDomain.Session, error) {
	session, ok := f.byToken[token]
	if !ok {
		return nil, usersDomain.ErrSessionNotFound
	}
	return session, nil
}

func (f *fakeSessionRepo) DeleteByToken(_ context.Context, token string) error {
	delete(f.byToken, token)
	return nil
}

func (f *fakeSessionRepo) DeleteByUser(_ context.Context, userID uuid.UUID) error {
	for token, session := range f.byToken {
		if session.UserID == userID {
			delete(f.byToken, token)
		}
	}
	return nil
}

func (f *fakeSessionRepo) DeleteExpired(_ context.Context, now time.Time) error {
	for token, session := range f.byToken {
		if session.Expired(now) {
			delete(f.byToken, token)
		}
	}
	return nil
}

// fakeOrgKeySource hands out per-user wrapped org keys like the orgs use
// case does for a user's primary organization.
type fakeOrgKeySource struct {
	wraps map[uuid.UUID]string
}

func (f *fakeOrgKeySource) GetPrimaryMemberKey(_ context.Context, userID uuid.UUID) (string, error) {
	return f.wraps[userID], nil
}

type userTestEnv struct {
	useCase      UserUseCase
	userRepo     *fakeUserRepo
	sessionRepo  *fakeSessionRepo
	orgKeySource *fakeOrgKeySource
}

func newUserTestEnv() *userTestEnv {
	userRepo := newFakeUserRepo()
	sessionRepo := newFakeSessionRepo()
	orgKeySource := &fakeOrgKeySource{wraps: make(map[uuid.UUID]string)}

	return &userTestEnv{
		useCase: NewUserUseCase(
			&fakeTxManager{},
			userRepo,
			sessionRepo,
			usersService.NewCredentialService(),
			orgKeySource,
			time.Hour,
		),
		userRepo:     userRepo,
		sessionRepo:  sessionRepo,
		orgKeySource: orgKeySource,
	}
}

func registerTestUser(t *testing.T, env *userTestEnv, email string) *usersDomain.User {
	t.Helper()
	user, err := env.useCase.Register(context.Background(), RegisterInput{
		Email:    email,
		Name:     "Alice",
		Password: "correct horse battery staple",
	})
	require.NoError(t, err)
	return user
}

func TestUserUseCase_Register(t *testing.T) {
	env := newUserTestEnv()
	ctx := context.Background()

	t.Run("basic account", func(t *testing.T) {
		user := registerTestUser(t, env, "alice@example.com")
		assert.Equal(t, "alice@example.com", user.Email)
		assert.NotEqual(t, "correct horse battery staple", user.PasswordHash)
		assert.Equal(t, usersDomain.DefaultKDFIterations, user.KDFIterations)
		assert.False(t, user.HasKeyMaterial())
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		_, err := env.useCase.Register(ctx, RegisterInput{
			Email:    "alice@example.com",
			Name:     "Alice Again",
			Password: "another password",
		})
		assert.ErrorIs(t, err, usersDomain.ErrEmailTaken)
	})

	t.Run("client-side encryption account", func(t *testing.T) {
		user, err := env.useCase.Register(ctx, RegisterInput{
			Email:                       "bob@example.com",
			Name:                        "Bob",
			Password:                    "client-master-password-hash",
			KDFIterations:               750000,
			PublicKey:                   "bob-public-key",
			EncryptedPrivateKey:         "bob-encrypted-private-key",
			RecoveryEncryptedPrivateKey: "bob-recovery-blob",
		})
		require.NoError(t, err)
		assert.True(t, user.HasKeyMaterial())
		assert.Equal(t, 750000, user.KDFIterations)
	})

	t.Run("public key without private key is rejected", func(t *testing.T) {
		_, err := env.useCase.Register(ctx, RegisterInput{
			Email:     "carol@example.com",
			Name:      "Carol",
			Password:  "password",
			PublicKey: "carol-public-key",
		})
		assert.ErrorIs(t, err, usersDomain.ErrIncompleteKeyMaterial)
	})
}

func TestUserUseCase_Prelogin(t *testing.T) {
	env := newUserTestEnv()
	ctx := context.Background()

	_, err := env.useCase.Register(ctx, RegisterInput{
		Email:         "alice@example.com",
		Name:          "Alice",
		Password:      "password",
		KDFIterations: 900000,
	})
	require.NoError(t, err)

	t.Run("known email returns the stored count", func(t *testing.T) {
		iterations, err := env.useCase.Prelogin(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, 900000, iterations)
	})

	t.Run("unknown email returns the default, not an error", func(t *testing.T) {
		iterations, err := env.useCase.Prelogin(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.Equal(t, usersDomain.DefaultKDFIterations, iterations)
	})
}

func TestUserUseCase_Login(t *testing.T) {
	env := newUserTestEnv()
	ctx := context.Background()
	registerTestUser(t, env, "alice@example.com")

	t.Run("valid credentials create a session", func(t *testing.T) {
		result, err := env.useCase.Login(ctx, "alice@example.com", "correct horse battery staple")
		require.NoError(t, err)
		assert.Len(t, result.Token, 64)
		assert.True(t, result.ExpiresAt.After(time.Now()))

		userID, err := env.useCase.Authenticate(ctx, result.Token)
		require.NoError(t, err)
		assert.Equal(t, result.User.ID, userID)
	})

	t.Run("stored org key wrap rides along", func(t *testing.T) {
		user, err := env.userRepo.GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		env.orgKeySource.wraps[user.ID] = "alice-org-key-wrap"

		result, err := env.useCase.Login(ctx, "alice@example.com", "correct horse battery staple")
		require.NoError(t, err)
		assert.Equal(t, "alice-org-key-wrap", result.EncryptedOrgKey)
	})

	t.Run("no wrap stored means no key in the result", func(t *testing.T) {
		_, err := env.useCase.Register(ctx, RegisterInput{
			Email:    "dave@example.com",
			Name:     "Dave",
			Password: "another password",
		})
		require.NoError(t, err)

		result, err := env.useCase.Login(ctx, "dave@example.com", "another password")
		require.NoError(t, err)
		assert.Empty(t, result.EncryptedOrgKey)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := env.useCase.Login(ctx, "alice@example.com", "wrong")
		assert.ErrorIs(t, err, usersDomain.ErrInvalidCredentials)
	})

	t.Run("unknown email gets the same error as a wrong password", func(t *testing.T) {
		_, err := env.useCase.Login(ctx, "nobody@example.com", "whatever")
		assert.ErrorIs(t, err, usersDomain.ErrInvalidCredentials)
	})
}

func TestUserUseCase_Authenticate(t *testing.T) {
	env := newUserTestEnv()
	ctx := context.Background()
	user := registerTestUser(t, env, "alice@example.com")

	t.Run("unknown token", func(t *testing.T) {
		_, err := env.useCase.Authenticate(ctx, "bogus-token")
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("expired session is rejected and removed", func(t *testing.T) {
		expired := &usersDomain.Session{
			ID:        uuid.Must(uuid.NewV7()),
			UserID:    user.ID,
			Token:     "expired-token",
			ExpiresAt: time.Now().UTC().Add(-time.Minute),
			CreatedAt: time.Now().UTC().Add(-2 * time.Hour),
		}
		require.NoError(t, env.sessionRepo.Create(ctx, expired))

		_, err := env.useCase.Authenticate(ctx, "expired-token")
		assert.ErrorIs(t, err, usersDomain.ErrSessionExpired)

		_, err = env.sessionRepo.GetByToken(ctx, "expired-token")
		assert.ErrorIs(t, err, usersDomain.ErrSessionNotFound)
	})
}

func TestUserUseCase_Logout(t *testing.T) {
	env := newUserTestEnv()
	ctx := context.Background()
	registerTestUser(t, env, "alice@example.com")

	result, err := env.useCase.Login(ctx, "alice@example.com", "correct horse battery staple")
	require.NoError(t, err)

	require.NoError(t, env.useCase.Logout(ctx, result.Token))

	_, err = env.useCase.Authenticate(ctx, result.Token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	t.Run("logout is idempotent", func(t *testing.T) {
		assert.NoError(t, env.useCase.Logout(ctx, result.Token))
	})
}

func TestUserUseCase_GetPublicKey(t *testing.T) {
	env := newUserTestEnv()
	ctx := context.Background()

	withKey, err := env.useCase.Register(ctx, RegisterInput{
		Email:               "bob@example.com",
		Name:                "Bob",
		Password:            "password",
		PublicKey:           "bob-public-key",
		EncryptedPrivateKey: "bob-encrypted-private-key",
	})
	require.NoError(t, err)

	withoutKey := registerTestUser(t, env, "alice@example.com")

	t.Run("published key is returned", func(t *testing.T) {
		publicKey, err := env.useCase.GetPublicKey(ctx, withKey.ID)
		require.NoError(t, err)
		assert.Equal(t, "bob-public-key", publicKey)
	})

	t.Run("no key published", func(t *testing.T) {
		_, err := env.useCase.GetPublicKey(ctx, withoutKey.ID)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestUserUseCase_ChangePassword(t *testing.T) {
	env := newUserTestEnv()
	ctx := context.Background()
	user := registerTestUser(t, env, "alice@example.com")

	t.Run("wrong current password", func(t *testing.T) {
		err := env.useCase.ChangePassword(ctx, user.ID, ChangePasswordInput{
			CurrentPassword: "wrong",
			NewPassword:     "new password",
		})
		assert.ErrorIs(t, err, usersDomain.ErrInvalidCredentials)
	})

	t.Run("valid change revokes sessions", func(t *testing.T) {
		result, err := env.useCase.Login(ctx, "alice@example.com", "correct horse battery staple")
		require.NoError(t, err)

		err = env.useCase.ChangePassword(ctx, user.ID, ChangePasswordInput{
			CurrentPassword: "correct horse battery staple",
			NewPassword:     "new password",
		})
		require.NoError(t, err)

		_, err = env.useCase.Authenticate(ctx, result.Token)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

		_, err = env.useCase.Login(ctx, "alice@example.com", "new password")
		assert.NoError(t, err)
	})

	t.Run("account with key material must re-wrap it", func(t *testing.T) {
		bob, err := env.useCase.Register(ctx, RegisterInput{
			Email:               "bob@example.com",
			Name:                "Bob",
			Password:            "master-hash",
			PublicKey:           "bob-public-key",
			EncryptedPrivateKey: "bob-encrypted-private-key",
		})
		require.NoError(t, err)

		err = env.useCase.ChangePassword(ctx, bob.ID, ChangePasswordInput{
			CurrentPassword: "master-hash",
			NewPassword:     "new-master-hash",
		})
		assert.ErrorIs(t, err, usersDomain.ErrIncompleteKeyMaterial)

		err = env.useCase.ChangePassword(ctx, bob.ID, ChangePasswordInput{
			CurrentPassword:     "master-hash",
			NewPassword:         "new-master-hash",
			PublicKey:           "bob-public-key",
			EncryptedPrivateKey: "bob-rewrapped-private-key",
		})
		require.NoError(t, err)

		updated, err := env.useCase.Me(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, "bob-rewrapped-private-key", updated.EncryptedPrivateKey)
	})
}
