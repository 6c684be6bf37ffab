package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	cryptoDomain "github.com/familyvault/vault/internal/crypto/domain"
	cryptoService "github.com/familyvault/vault/internal/crypto/service"
	"github.com/familyvault/vault/internal/database"
	apperrors "github.com/familyvault/vault/internal/errors"
	orgsDomain "github.com/familyvault/vault/internal/orgs/domain"
)

// orgUseCase implements the OrgUseCase interface.
type orgUseCase struct {
	txManager      database.TxManager
	orgRepo        OrgRepository
	membershipRepo MembershipRepository
	memberKeyRepo  MemberKeyRepository
	userDirectory  UserDirectory
	orgKeyService  *cryptoService.OrgKeyService
}

// Create generates and wraps a fresh organization content key and persists
// the organization with its creator as owner in a single transaction. When
// the creator supplies a client-produced wrap of the key it is stored in the
// same transaction, so a zero-knowledge creator never shows up pending.
func (o *orgUseCase) Create(
	ctx context.Context,
	name string,
	createdBy uuid.UUID,
	creatorWrappedKey string,
) (*orgsDomain.Organization, error) {
	orgKey, err := o.orgKeyService.GenerateOrgKey()
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(orgKey)

	wrapped, err := o.orgKeyService.WrapOrgKey(orgKey)
	if err != nil {
		return nil, err
	}

	org := &orgsDomain.Organization{
		ID:               uuid.Must(uuid.NewV7()),
		Name:             name,
		EncryptionKeyEnc: wrapped,
		CreatedBy:        createdBy,
		CreatedAt:        time.Now().UTC(),
	}

	err = o.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := o.orgRepo.Create(txCtx, org); err != nil {
			return err
		}

		membership := &orgsDomain.Membership{
			ID:        uuid.Must(uuid.NewV7()),
			OrgID:     org.ID,
			UserID:    createdBy,
			Role:      orgsDomain.RoleOwner,
			CreatedAt: time.Now().UTC(),
		}
		if err := o.membershipRepo.Create(txCtx, membership); err != nil {
			return err
		}

		if creatorWrappedKey == "" {
			return nil
		}
		now := time.Now().UTC()
		return o.memberKeyRepo.Upsert(txCtx, &orgsDomain.MemberKey{
			ID:              uuid.Must(uuid.NewV7()),
			OrgID:           org.ID,
			UserID:          createdBy,
			EncryptedOrgKey: creatorWrappedKey,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	})
	if err != nil {
		return nil, err
	}

	return org, nil
}

// Get retrieves an organization with its member list.
func (o *orgUseCase) Get(
	ctx context.Context,
	orgID, callerID uuid.UUID,
) (*orgsDomain.Organization, []*orgsDomain.Member, error) {
	if _, err := o.membershipRepo.Get(ctx, orgID, callerID); err != nil {
		return nil, nil, err
	}

	// The org row and member list are independent reads.
	var (
		org     *orgsDomain.Organization
		members []*orgsDomain.Member
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		org, err = o.orgRepo.Get(gctx, orgID)
		return err
	})
	g.Go(func() error {
		var err error
		members, err = o.membershipRepo.ListMembers(gctx, orgID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return org, members, nil
}

// List retrieves the organizations the user belongs to.
func (o *orgUseCase) List(ctx context.Context, userID uuid.UUID) ([]*orgsDomain.Organization, error) {
	return o.orgRepo.ListByUser(ctx, userID)
}

// InviteMember adds a user to the organization by email. Requires admin role.
func (o *orgUseCase) InviteMember(
	ctx context.Context,
	orgID, callerID uuid.UUID,
	email string,
	role orgsDomain.Role,
) (*orgsDomain.Membership, error) {
	if !role.Valid() {
		return nil, orgsDomain.ErrInvalidRole
	}
	// Ownership is only granted at creation time or by promoting an
	// existing member, never on invite.
	if role == orgsDomain.RoleOwner {
		return nil, orgsDomain.ErrInvalidRole
	}

	if err := o.requireRole(ctx, orgID, callerID, orgsDomain.RoleAdmin); err != nil {
		return nil, err
	}

	userID, err := o.userDirectory.GetIDByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if _, err := o.membershipRepo.Get(ctx, orgID, userID); err == nil {
		return nil, orgsDomain.ErrAlreadyMember
	} else if !errors.Is(err, apperrors.ErrForbidden) {
		return nil, err
	}

	membership := &orgsDomain.Membership{
		ID:        uuid.Must(uuid.NewV7()),
		OrgID:     orgID,
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if err := o.membershipRepo.Create(ctx, membership); err != nil {
		return nil, err
	}

	return membership, nil
}

// UpdateMemberRole changes a member's role. Requires admin role; the last
// owner cannot be demoted.
func (o *orgUseCase) UpdateMemberRole(
	ctx context.Context,
	orgID, callerID, userID uuid.UUID,
	role orgsDomain.Role,
) error {
	if !role.Valid() {
		return orgsDomain.ErrInvalidRole
	}

	if err := o.requireRole(ctx, orgID, callerID, orgsDomain.RoleAdmin); err != nil {
		return err
	}

	current, err := o.membershipRepo.Get(ctx, orgID, userID)
	if err != nil {
		return err
	}

	if current.Role == orgsDomain.RoleOwner && role != orgsDomain.RoleOwner {
		if err := o.requireAnotherOwner(ctx, orgID); err != nil {
			return err
		}
	}

	return o.membershipRepo.UpdateRole(ctx, orgID, userID, role)
}

// RemoveMember removes a member from the organization. Members may remove
// themselves; removing others requires admin role. The last owner cannot be
// removed.
func (o *orgUseCase) RemoveMember(ctx context.Context, orgID, callerID, userID uuid.UUID) error {
	if callerID != userID {
		if err := o.requireRole(ctx, orgID, callerID, orgsDomain.RoleAdmin); err != nil {
			return err
		}
	}

	membership, err := o.membershipRepo.Get(ctx, orgID, userID)
	if err != nil {
		return err
	}

	if membership.Role == orgsDomain.RoleOwner {
		if err := o.requireAnotherOwner(ctx, orgID); err != nil {
			return err
		}
	}

	return o.membershipRepo.Delete(ctx, orgID, userID)
}

// GetOrgEncryptionKey unwraps the organization content key from the
// master-wrapped copy stored on the organization row. The master-wrapped
// copy always exists, so server-side decryption works even for
// client-side-encrypted organizations.
func (o *orgUseCase) GetOrgEncryptionKey(ctx context.Context, orgID uuid.UUID) ([]byte, error) {
	org, err := o.orgRepo.Get(ctx, orgID)
	if err != nil {
		return nil, err
	}

	return o.orgKeyService.UnwrapOrgKey(org.EncryptionKeyEnc)
}

// StoreMemberKey stores a client-produced wrap of the organization key for a
// member. The blob is opaque to the server and re-running the ceremony for
// the same member replaces the previous wrap.
func (o *orgUseCase) StoreMemberKey(
	ctx context.Context,
	orgID, callerID, userID uuid.UUID,
	encryptedOrgKey string,
) (*orgsDomain.MemberKey, error) {
	if _, err := o.membershipRepo.Get(ctx, orgID, callerID); err != nil {
		return nil, err
	}
	// The target must be a member too; wraps for outsiders make no sense.
	if _, err := o.membershipRepo.Get(ctx, orgID, userID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	memberKey := &orgsDomain.MemberKey{
		ID:              uuid.Must(uuid.NewV7()),
		OrgID:           orgID,
		UserID:          userID,
		EncryptedOrgKey: encryptedOrgKey,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := o.memberKeyRepo.Upsert(ctx, memberKey); err != nil {
		return nil, err
	}

	return memberKey, nil
}

// GetMemberKey retrieves the caller's own wrapped key for the organization.
func (o *orgUseCase) GetMemberKey(ctx context.Context, orgID, callerID uuid.UUID) (*orgsDomain.MemberKey, error) {
	if _, err := o.membershipRepo.Get(ctx, orgID, callerID); err != nil {
		return nil, err
	}

	return o.memberKeyRepo.Get(ctx, orgID, callerID)
}

// GetPrimaryMemberKey returns the user's wrapped key for their first
// organization. Missing organization or wrap is not an error; the login
// response simply omits the key and the client fetches it per org.
func (o *orgUseCase) GetPrimaryMemberKey(ctx context.Context, userID uuid.UUID) (string, error) {
	orgs, err := o.orgRepo.ListByUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if len(orgs) == 0 {
		return "", nil
	}

	memberKey, err := o.memberKeyRepo.Get(ctx, orgs[0].ID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", nil
		}
		return "", err
	}

	return memberKey.EncryptedOrgKey, nil
}

// ListPendingKeyMembers lists members awaiting a wrapped key.
func (o *orgUseCase) ListPendingKeyMembers(
	ctx context.Context,
	orgID, callerID uuid.UUID,
) ([]*orgsDomain.PendingMember, error) {
	if _, err := o.membershipRepo.Get(ctx, orgID, callerID); err != nil {
		return nil, err
	}

	return o.memberKeyRepo.ListPendingMembers(ctx, orgID)
}

// requireRole verifies the caller holds at least the given role in the organization.
func (o *orgUseCase) requireRole(
	ctx context.Context,
	orgID, callerID uuid.UUID,
	role orgsDomain.Role,
) error {
	membership, err := o.membershipRepo.Get(ctx, orgID, callerID)
	if err != nil {
		return err
	}
	if !membership.Role.AtLeast(role) {
		return orgsDomain.ErrInsufficientRole
	}
	return nil
}

// requireAnotherOwner verifies the organization has more than one owner.
func (o *orgUseCase) requireAnotherOwner(ctx context.Context, orgID uuid.UUID) error {
	owners, err := o.membershipRepo.CountByRole(ctx, orgID, orgsDomain.RoleOwner)
	if err != nil {
		return err
	}
	if owners <= 1 {
		return orgsDomain.ErrOwnerRemoval
	}
	return nil
}

// NewOrgUseCase creates a new organization use case instance with the provided dependencies.
func NewOrgUseCase(
	txManager database.TxManager,
	orgRepo OrgRepository,
	membershipRepo MembershipRepository,
	memberKeyRepo MemberKeyRepository,
	userDirectory UserDirectory,
	orgKeyService *cryptoService.OrgKeyService,
) OrgUseCase {
	return &orgUseCase{
		txManager:      txManager,
		orgRepo:        orgRepo,
		membershipRepo: membershipRepo,
		memberKeyRepo:  memberKeyRepo,
		userDirectory:  userDirectory,
		orgKeyService:  orgKeyService,
	}
}
