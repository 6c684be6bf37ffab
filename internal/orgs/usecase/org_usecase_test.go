package usecase

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/familyvault/vault/internal/crypto/domain"
	cryptoService "github.com/familyvault/vault/internal/crypto/service"
	apperrors "github.com/familyvault/vault/internal/errors"
	orgsDomain "github.com/familyvault/vault/internal/orgs/domain"
)

// fakeTxManager runs the function directly without a real transaction.
type fakeTxManager struct{}

func (f *fakeTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeOrgRepo struct {
	orgs map[uuid.UUID]*orgsDomain.Organization
}

func newFakeOrgRepo() *fakeOrgRepo {
	return &fakeOrgRepo{orgs: make(map[uuid.UUID]*orgsDomain.Organization)}
}

func (f *fakeOrgRepo) Create(_ context.Context, org *orgsDomain.Organization) error {
	f.orgs[org.ID] = org
	return nil
}

func (f *fakeOrgRepo) Get(_ context.Context, orgID uuid.UUID) (*orgsDomain.Organization, error) {
	org, ok := f.orgs[orgID]
	if !ok {
		return nil, orgsDomain.ErrOrganizationNotFound
	}
	return org, nil
}

func (f *fakeOrgRepo) ListByUser(_ context.Context, _ uuid.UUID) ([]*orgsDomain.Organization, error) {
	var orgs []*orgsDomain.Organization
	for _, org := range f.orgs {
		orgs = append(orgs, org)
	}
	return orgs, nil
}

type membershipKey struct {
	orgID  uuid.UUID
	userID uuid.UUID
}

type fakeMembershipRepo struct {
	memberships map[membershipKey]*orgsDomain.Membership
}

func newFakeMembershipRepo() *fakeMembershipRepo {
	return &fakeMembershipRepo{memberships: make(map[membershipKey]*orgsDomain.Membership)}
}

func (f *fakeMembershipRepo) Create(_ context.Context, m *orgsDomain.Membership) error {
	f.memberships[membershipKey{m.OrgID, m.UserID}] = m
	return nil
}

func (f *fakeMembershipRepo) Get(_ context.Context, orgID, userID uuid.UUID) (*orgsDomain.Membership, error) {
	m, ok := f.memberships[membershipKey{orgID, userID}]
	if !ok {
		return nil, orgsDomain.ErrMembershipNotFound
	}
	return m, nil
}

func (f *fakeMembershipRepo) ListMembers(_ context.Context, orgID uuid.UUID) ([]*orgsDomain.Member, error) {
	var members []*orgsDomain.Member
	for _, m := range f.memberships {
		if m.OrgID == orgID {
			members = append(members, &orgsDomain.Member{UserID: m.UserID, Role: m.Role})
		}
	}
	return members, nil
}

func (f *fakeMembershipRepo) UpdateRole(_ context.Context, orgID, userID uuid.UUID, role orgsDomain.Role) error {
	m, ok := f.memberships[membershipKey{orgID, userID}]
	if !ok {
		return orgsDomain.ErrMembershipNotFound
	}
	m.Role = role
	return nil
}

func (f *fakeMembershipRepo) Delete(_ context.Context, orgID, userID uuid.UUID) error {
	key := membershipKey{orgID, userID}
	if _, ok := f.memberships[key]; !ok {
		return orgsDomain.ErrMembershipNotFound
	}
	delete(f.memberships, key)
	return nil
}

func (f *fakeMembershipRepo) CountByRole(_ context.Context, orgID uuid.UUID, role orgsDomain.Role) (int, error) {
	count := 0
	for _, m := range f.memberships {
		if m.OrgID == orgID && m.Role == role {
			count++
		}
	}
	return count, nil
}

type fakeMemberKeyRepo struct {
	keys map[membershipKey]*orgsDomain.MemberKey
	// publicKeys mirrors the users table column the pending query joins on.
	publicKeys map[uuid.UUID]string
}

func newFakeMemberKeyRepo() *fakeMemberKeyRepo {
	return &fakeMemberKeyRepo{
		keys:       make(map[membershipKey]*orgsDomain.MemberKey),
		publicKeys: make(map[uuid.UUID]string),
	}
}

func (f *fakeMemberKeyRepo) Upsert(_ context.Context, mk *orgsDomain.MemberKey) error {
	key := membershipKey{mk.OrgID, mk.UserID}
	if existing, ok := f.keys[key]; ok {
		existing.EncryptedOrgKey = mk.EncryptedOrgKey
		existing.UpdatedAt = mk.UpdatedAt
		return nil
	}
	f.keys[key] = mk
	return nil
}

func (f *fakeMemberKeyRepo) Get(_ context.Context, orgID, userID uuid.UUID) (*orgsDomain.MemberKey, error) {
	mk, ok := f.keys[membershipKey{orgID, userID}]
	if !ok {
		return nil, orgsDomain.ErrMemberKeyNotFound
	}
	return mk, nil
}

func (f *fakeMemberKeyRepo) ListPendingMembers(_ context.Context, orgID uuid.UUID) ([]*orgsDomain.PendingMember, error) {
	var pending []*orgsDomain.PendingMember
	for userID, publicKey := range f.publicKeys {
		if publicKey == "" {
			continue
		}
		if _, ok := f.keys[membershipKey{orgID, userID}]; ok {
			continue
		}
		pending = append(pending, &orgsDomain.PendingMember{UserID: userID, PublicKey: publicKey})
	}
	return pending, nil
}

type fakeUserDirectory struct {
	byEmail map[string]uuid.UUID
}

func (f *fakeUserDirectory) GetIDByEmail(_ context.Context, email string) (uuid.UUID, error) {
	id, ok := f.byEmail[email]
	if !ok {
		return uuid.Nil, apperrors.ErrNotFound
	}
	return id, nil
}

type orgTestEnv struct {
	useCase        OrgUseCase
	orgRepo        *fakeOrgRepo
	membershipRepo *fakeMembershipRepo
	memberKeyRepo  *fakeMemberKeyRepo
	userDirectory  *fakeUserDirectory
	orgKeyService  *cryptoService.OrgKeyService
}

func newOrgTestEnv() *orgTestEnv {
	orgRepo := newFakeOrgRepo()
	membershipRepo := newFakeMembershipRepo()
	memberKeyRepo := newFakeMemberKeyRepo()
	userDirectory := &fakeUserDirectory{byEmail: make(map[string]uuid.UUID)}
	orgKeyService := cryptoService.NewOrgKeyService(cryptoService.DeriveMasterKey("test-secret"))

	return &orgTestEnv{
		useCase: NewOrgUseCase(
			&fakeTxManager{},
			orgRepo,
			membershipRepo,
			memberKeyRepo,
			userDirectory,
			orgKeyService,
		),
		orgRepo:        orgRepo,
		membershipRepo: membershipRepo,
		memberKeyRepo:  memberKeyRepo,
		userDirectory:  userDirectory,
		orgKeyService:  orgKeyService,
	}
}

func (e *orgTestEnv) addMember(t *testing.T, orgID uuid.UUID, role orgsDomain.Role) uuid.UUID {
	t.Helper()
	userID := uuid.Must(uuid.NewV7())
	require.NoError(t, e.membershipRepo.Create(context.Background(), &orgsDomain.Membership{
		ID:     uuid.Must(uuid.NewV7()),
		OrgID:  orgID,
		UserID: userID,
		Role:   role,
	}))
	return userID
}

func TestOrgUseCase_Create(t *testing.T) {
	env := newOrgTestEnv()
	ctx := context.Background()
	creator := uuid.Must(uuid.NewV7())

	org, err := env.useCase.Create(ctx, "family vault", creator, "")
	require.NoError(t, err)
	assert.Equal(t, "family vault", org.Name)
	assert.Equal(t, creator, org.CreatedBy)
	assert.NotEmpty(t, org.EncryptionKeyEnc)

	t.Run("creator becomes owner", func(t *testing.T) {
		membership, err := env.membershipRepo.Get(ctx, org.ID, creator)
		require.NoError(t, err)
		assert.Equal(t, orgsDomain.RoleOwner, membership.Role)
	})

	t.Run("stored wrap unwraps to a 32-byte key", func(t *testing.T) {
		key, err := env.orgKeyService.UnwrapOrgKey(org.EncryptionKeyEnc)
		require.NoError(t, err)
		assert.Len(t, key, cryptoDomain.KeySize)
	})

	t.Run("each organization gets a distinct key", func(t *testing.T) {
		other, err := env.useCase.Create(ctx, "second vault", creator, "")
		require.NoError(t, err)
		assert.NotEqual(t, org.EncryptionKeyEnc, other.EncryptionKeyEnc)
	})

	t.Run("no member key without a creator wrap", func(t *testing.T) {
		_, err := env.useCase.GetMemberKey(ctx, org.ID, creator)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("creator wrap is stored at creation", func(t *testing.T) {
		zkCreator := uuid.Must(uuid.NewV7())
		zkOrg, err := env.useCase.Create(ctx, "zero knowledge vault", zkCreator, "creator-wrap")
		require.NoError(t, err)

		memberKey, err := env.useCase.GetMemberKey(ctx, zkOrg.ID, zkCreator)
		require.NoError(t, err)
		assert.Equal(t, "creator-wrap", memberKey.EncryptedOrgKey)
	})
}

func TestOrgUseCase_GetPrimaryMemberKey(t *testing.T) {
	ctx := context.Background()

	t.Run("no organizations yields empty", func(t *testing.T) {
		env := newOrgTestEnv()
		wrap, err := env.useCase.GetPrimaryMemberKey(ctx, uuid.Must(uuid.NewV7()))
		require.NoError(t, err)
		assert.Empty(t, wrap)
	})

	t.Run("organization without a wrap yields empty", func(t *testing.T) {
		env := newOrgTestEnv()
		creator := uuid.Must(uuid.NewV7())
		_, err := env.useCase.Create(ctx, "family vault", creator, "")
		require.NoError(t, err)

		wrap, err := env.useCase.GetPrimaryMemberKey(ctx, creator)
		require.NoError(t, err)
		assert.Empty(t, wrap)
	})

	t.Run("stored wrap is returned", func(t *testing.T) {
		env := newOrgTestEnv()
		creator := uuid.Must(uuid.NewV7())
		_, err := env.useCase.Create(ctx, "family vault", creator, "creator-wrap")
		require.NoError(t, err)

		wrap, err := env.useCase.GetPrimaryMemberKey(ctx, creator)
		require.NoError(t, err)
		assert.Equal(t, "creator-wrap", wrap)
	})
}

func TestOrgUseCase_GetOrgEncryptionKey_FieldRoundTrip(t *testing.T) {
	env := newOrgTestEnv()
	ctx := context.Background()

	org, err := env.useCase.Create(ctx, "family vault", uuid.Must(uuid.NewV7()), "")
	require.NoError(t, err)

	key, err := env.useCase.GetOrgEncryptionKey(ctx, org.ID)
	require.NoError(t, err)
	defer cryptoDomain.Zero(key)

	codec := cryptoService.NewFieldCodec(slog.Default())
	encrypted, err := codec.EncryptField("123-45-6789", key)
	require.NoError(t, err)

	decrypted, err := codec.DecryptField(encrypted, key)
	require.NoError(t, err)
	assert.Equal(t, "123-45-6789", decrypted)
}

func TestOrgUseCase_Get(t *testing.T) {
	env := newOrgTestEnv()
	ctx := context.Background()
	creator := uuid.Must(uuid.NewV7())

	org, err := env.useCase.Create(ctx, "family vault", creator, "")
	require.NoError(t, err)

	t.Run("member sees org and members", func(t *testing.T) {
		got, members, err := env.useCase.Get(ctx, org.ID, creator)
		require.NoError(t, err)
		assert.Equal(t, org.ID, got.ID)
		assert.Len(t, members, 1)
	})

	t.Run("non-member is rejected", func(t *testing.T) {
		_, _, err := env.useCase.Get(ctx, org.ID, uuid.Must(uuid.NewV7()))
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}

func TestOrgUseCase_InviteMember(t *testing.T) {
	env := newOrgTestEnv()
	ctx := context.Background()
	creator := uuid.Must(uuid.NewV7())

	org, err := env.useCase.Create(ctx, "family vault", creator, "")
	require.NoError(t, err)

	invitee := uuid.Must(uuid.NewV7())
	env.userDirectory.byEmail["bob@example.com"] = invitee

	t.Run("admin invites by email", func(t *testing.T) {
		membership, err := env.useCase.InviteMember(ctx, org.ID, creator, "bob@example.com", orgsDomain.RoleMember)
		require.NoError(t, err)
		assert.Equal(t, invitee, membership.UserID)
		assert.Equal(t, orgsDomain.RoleMember, membership.Role)
	})

	t.Run("duplicate invite conflicts", func(t *testing.T) {
		_, err := env.useCase.InviteMember(ctx, org.ID, creator, "bob@example.com", orgsDomain.RoleMember)
		assert.ErrorIs(t, err, orgsDomain.ErrAlreadyMember)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := env.useCase.InviteMember(ctx, org.ID, creator, "nobody@example.com", orgsDomain.RoleMember)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("owner role cannot be granted on invite", func(t *testing.T) {
		_, err := env.useCase.InviteMember(ctx, org.ID, creator, "bob@example.com", orgsDomain.RoleOwner)
		assert.ErrorIs(t, err, orgsDomain.ErrInvalidRole)
	})

	t.Run("plain member cannot invite", func(t *testing.T) {
		member := env.addMember(t, org.ID, orgsDomain.RoleMember)
		env.userDirectory.byEmail["carol@example.com"] = uuid.Must(uuid.NewV7())

		_, err := env.useCase.InviteMember(ctx, org.ID, member, "carol@example.com", orgsDomain.RoleViewer)
		assert.ErrorIs(t, err, orgsDomain.ErrInsufficientRole)
	})
}

func TestOrgUseCase_RemoveMember(t *testing.T) {
	env := newOrgTestEnv()
	ctx := context.Background()
	creator := uuid.Must(uuid.NewV7())

	org, err := env.useCase.Create(ctx, "family vault", creator, "")
	require.NoError(t, err)

	t.Run("last owner cannot be removed", func(t *testing.T) {
		err := env.useCase.RemoveMember(ctx, org.ID, creator, creator)
		assert.ErrorIs(t, err, orgsDomain.ErrOwnerRemoval)
	})

	t.Run("member can leave", func(t *testing.T) {
		member := env.addMember(t, org.ID, orgsDomain.RoleMember)
		require.NoError(t, env.useCase.RemoveMember(ctx, org.ID, member, member))

		_, err := env.membershipRepo.Get(ctx, org.ID, member)
		assert.ErrorIs(t, err, orgsDomain.ErrMembershipNotFound)
	})

	t.Run("viewer cannot remove others", func(t *testing.T) {
		viewer := env.addMember(t, org.ID, orgsDomain.RoleViewer)
		member := env.addMember(t, org.ID, orgsDomain.RoleMember)

		err := env.useCase.RemoveMember(ctx, org.ID, viewer, member)
		assert.ErrorIs(t, err, orgsDomain.ErrInsufficientRole)
	})
}

func TestOrgUseCase_UpdateMemberRole(t *testing.T) {
	env := newOrgTestEnv()
	ctx := context.Background()
	creator := uuid.Must(uuid.NewV7())

	org, err := env.useCase.Create(ctx, "family vault", creator, "")
	require.NoError(t, err)

	member := env.addMember(t, org.ID, orgsDomain.RoleMember)

	t.Run("admin promotes member", func(t *testing.T) {
		require.NoError(t, env.useCase.UpdateMemberRole(ctx, org.ID, creator, member, orgsDomain.RoleAdmin))

		membership, err := env.membershipRepo.Get(ctx, org.ID, member)
		require.NoError(t, err)
		assert.Equal(t, orgsDomain.RoleAdmin, membership.Role)
	})

	t.Run("last owner cannot be demoted", func(t *testing.T) {
		err := env.useCase.UpdateMemberRole(ctx, org.ID, creator, creator, orgsDomain.RoleMember)
		assert.ErrorIs(t, err, orgsDomain.ErrOwnerRemoval)
	})

	t.Run("invalid role is rejected", func(t *testing.T) {
		err := env.useCase.UpdateMemberRole(ctx, org.ID, creator, member, orgsDomain.Role("superuser"))
		assert.ErrorIs(t, err, orgsDomain.ErrInvalidRole)
	})
}

func TestOrgUseCase_StoreMemberKey(t *testing.T) {
	env := newOrgTestEnv()
	ctx := context.Background()
	creator := uuid.Must(uuid.NewV7())

	org, err := env.useCase.Create(ctx, "family vault", creator, "")
	require.NoError(t, err)

	member := env.addMember(t, org.ID, orgsDomain.RoleMember)

	t.Run("stores an opaque wrap", func(t *testing.T) {
		stored, err := env.useCase.StoreMemberKey(ctx, org.ID, creator, member, "wrap-v1")
		require.NoError(t, err)
		assert.Equal(t, "wrap-v1", stored.EncryptedOrgKey)
	})

	t.Run("upsert is idempotent, last write wins", func(t *testing.T) {
		_, err := env.useCase.StoreMemberKey(ctx, org.ID, creator, member, "wrap-v2")
		require.NoError(t, err)
		_, err = env.useCase.StoreMemberKey(ctx, org.ID, creator, member, "wrap-v3")
		require.NoError(t, err)

		got, err := env.useCase.GetMemberKey(ctx, org.ID, member)
		require.NoError(t, err)
		assert.Equal(t, "wrap-v3", got.EncryptedOrgKey)
	})

	t.Run("non-member caller is rejected", func(t *testing.T) {
		_, err := env.useCase.StoreMemberKey(ctx, org.ID, uuid.Must(uuid.NewV7()), member, "wrap")
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("wrap for a non-member target is rejected", func(t *testing.T) {
		_, err := env.useCase.StoreMemberKey(ctx, org.ID, creator, uuid.Must(uuid.NewV7()), "wrap")
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}

func TestOrgUseCase_GetMemberKey(t *testing.T) {
	env := newOrgTestEnv()
	ctx := context.Background()
	creator := uuid.Must(uuid.NewV7())

	org, err := env.useCase.Create(ctx, "family vault", creator, "")
	require.NoError(t, err)

	t.Run("missing wrap returns not found", func(t *testing.T) {
		_, err := env.useCase.GetMemberKey(ctx, org.ID, creator)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestOrgUseCase_ListPendingKeyMembers(t *testing.T) {
	env := newOrgTestEnv()
	ctx := context.Background()
	creator := uuid.Must(uuid.NewV7())

	org, err := env.useCase.Create(ctx, "family vault", creator, "")
	require.NoError(t, err)

	withKey := env.addMember(t, org.ID, orgsDomain.RoleMember)
	withoutKey := env.addMember(t, org.ID, orgsDomain.RoleMember)
	env.addMember(t, org.ID, orgsDomain.RoleMember) // never published a public key

	env.memberKeyRepo.publicKeys[withKey] = "pk-with"
	env.memberKeyRepo.publicKeys[withoutKey] = "pk-without"

	_, err = env.useCase.StoreMemberKey(ctx, org.ID, creator, withKey, "wrap")
	require.NoError(t, err)

	t.Run("exactly the keyless members with a public key", func(t *testing.T) {
		pending, err := env.useCase.ListPendingKeyMembers(ctx, org.ID, creator)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, withoutKey, pending[0].UserID)
		assert.Equal(t, "pk-without", pending[0].PublicKey)
	})

	t.Run("once the wrap is stored the member is no longer pending", func(t *testing.T) {
		_, err := env.useCase.StoreMemberKey(ctx, org.ID, creator, withoutKey, "wrap")
		require.NoError(t, err)

		pending, err := env.useCase.ListPendingKeyMembers(ctx, org.ID, creator)
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("non-member caller is rejected", func(t *testing.T) {
		_, err := env.useCase.ListPendingKeyMembers(ctx, org.ID, uuid.Must(uuid.NewV7()))
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}
