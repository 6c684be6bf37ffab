package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/familyvault/vault/internal/metrics"
	orgsDomain "github.com/familyvault/vault/internal/orgs/domain"
)

// orgUseCaseWithMetrics decorates OrgUseCase with metrics instrumentation.
type orgUseCaseWithMetrics struct {
	next    OrgUseCase
	metrics metrics.BusinessMetrics
}

// NewOrgUseCaseWithMetrics wraps an OrgUseCase with metrics recording.
func NewOrgUseCaseWithMetrics(useCase OrgUseCase, m metrics.BusinessMetrics) OrgUseCase {
	return &orgUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (o *orgUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	o.metrics.RecordOperation(ctx, "orgs", operation, status)
	o.metrics.RecordDuration(ctx, "orgs", operation, time.Since(start), status)
}

func (o *orgUseCaseWithMetrics) Create(
	ctx context.Context,
	name string,
	createdBy uuid.UUID,
	creatorWrappedKey string,
) (*orgsDomain.Organization, error) {
	start := time.Now()
	org, err := o.next.Create(ctx, name, createdBy, creatorWrappedKey)
	o.record(ctx, "org_create", start, err)
	return org, err
}

func (o *orgUseCaseWithMetrics) Get(
	ctx context.Context,
	orgID, callerID uuid.UUID,
) (*orgsDomain.Organization, []*orgsDomain.Member, error) {
	start := time.Now()
	org, members, err := o.next.Get(ctx, orgID, callerID)
	o.record(ctx, "org_get", start, err)
	return org, members, err
}

func (o *orgUseCaseWithMetrics) List(ctx context.Context, userID uuid.UUID) ([]*orgsDomain.Organization, error) {
	start := time.Now()
	orgs, err := o.next.List(ctx, userID)
	o.record(ctx, "org_list", start, err)
	return orgs, err
}

func (o *orgUseCaseWithMetrics) InviteMember(
	ctx context.Context,
	orgID, callerID uuid.UUID,
	email string,
	role orgsDomain.Role,
) (*orgsDomain.Membership, error) {
	start := time.Now()
	membership, err := o.next.InviteMember(ctx, orgID, callerID, email, role)
	o.record(ctx, "member_invite", start, err)
	return membership, err
}

func (o *orgUseCaseWithMetrics) UpdateMemberRole(
	ctx context.Context,
	orgID, callerID, userID uuid.UUID,
	role orgsDomain.Role,
) error {
	start := time.Now()
	err := o.next.UpdateMemberRole(ctx, orgID, callerID, userID, role)
	o.record(ctx, "member_update_role", start, err)
	return err
}

func (o *orgUseCaseWithMetrics) RemoveMember(ctx context.Context, orgID, callerID, userID uuid.UUID) error {
	start := time.Now()
	err := o.next.RemoveMember(ctx, orgID, callerID, userID)
	o.record(ctx, "member_remove", start, err)
	return err
}

func (o *orgUseCaseWithMetrics) GetOrgEncryptionKey(ctx context.Context, orgID uuid.UUID) ([]byte, error) {
	start := time.Now()
	key, err := o.next.GetOrgEncryptionKey(ctx, orgID)
	o.record(ctx, "org_key_unwrap", start, err)
	return key, err
}

func (o *orgUseCaseWithMetrics) StoreMemberKey(
	ctx context.Context,
	orgID, callerID, userID uuid.UUID,
	encryptedOrgKey string,
) (*orgsDomain.MemberKey, error) {
	start := time.Now()
	memberKey, err := o.next.StoreMemberKey(ctx, orgID, callerID, userID, encryptedOrgKey)
	o.record(ctx, "member_key_store", start, err)
	return memberKey, err
}

func (o *orgUseCaseWithMetrics) GetMemberKey(
	ctx context.Context,
	orgID, callerID uuid.UUID,
) (*orgsDomain.MemberKey, error) {
	start := time.Now()
	memberKey, err := o.next.GetMemberKey(ctx, orgID, callerID)
	o.record(ctx, "member_key_get", start, err)
	return memberKey, err
}

func (o *orgUseCaseWithMetrics) GetPrimaryMemberKey(ctx context.Context, userID uuid.UUID) (string, error) {
	start := time.Now()
	wrap, err := o.next.GetPrimaryMemberKey(ctx, userID)
	o.record(ctx, "member_key_primary", start, err)
	return wrap, err
}

func (o *orgUseCaseWithMetrics) ListPendingKeyMembers(
	ctx context.Context,
	orgID, callerID uuid.UUID,
) ([]*orgsDomain.PendingMember, error) {
	start := time.Now()
	pending, err := o.next.ListPendingKeyMembers(ctx, orgID, callerID)
	o.record(ctx, "member_key_pending", start, err)
	return pending, err
}
