package commands

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	orgsDomain "github.com/familyvault/vault/internal/orgs/domain"
	orgsUsecase "github.com/familyvault/vault/internal/orgs/usecase"
)

// fakeOrgUseCase embeds the interface and overrides only Create; the other
// methods panic if called.
type fakeOrgUseCase struct {
	orgsUsecase.OrgUseCase
	created *orgsDomain.Organization
	err     error
	gotName string
	gotUser uuid.UUID
}

func (f *fakeOrgUseCase) Create(ctx context.Context, name string, createdBy uuid.UUID, creatorWrappedKey string) (*orgsDomain.Organization, error) {
	f.gotName = name
	f.gotUser = createdBy
	return f.created, f.err
}

type fakeUserDirectory struct {
	ids map[string]uuid.UUID
}

func (f *fakeUserDirectory) GetIDByEmail(ctx context.Context, email string) (uuid.UUID, error) {
	id, ok := f.ids[email]
	if !ok {
		return uuid.Nil, usersNotFoundErr{}
	}
	return id, nil
}

type usersNotFoundErr struct{}

func (usersNotFoundErr) Error() string { return "user not found" }

func TestRunCreateOrg(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	ownerID := uuid.Must(uuid.NewV7())

	t.Run("success", func(t *testing.T) {
		fake := &fakeOrgUseCase{
			created: &orgsDomain.Organization{
				ID:   uuid.Must(uuid.NewV7()),
				Name: "Smith Family",
			},
		}
		directory := &fakeUserDirectory{ids: map[string]uuid.UUID{"owner@example.com": ownerID}}

		err := RunCreateOrg(ctx, fake, directory, logger, "owner@example.com", "Smith Family")
		require.NoError(t, err)
		require.Equal(t, "Smith Family", fake.gotName)
		require.Equal(t, ownerID, fake.gotUser)
	})

	t.Run("missing-email", func(t *testing.T) {
		err := RunCreateOrg(ctx, &fakeOrgUseCase{}, &fakeUserDirectory{}, logger, "", "Smith Family")
		require.Error(t, err)
		require.Contains(t, err.Error(), "owner email is required")
	})

	t.Run("missing-name", func(t *testing.T) {
		err := RunCreateOrg(ctx, &fakeOrgUseCase{}, &fakeUserDirectory{}, logger, "owner@example.com", "")
		require.Error(t, err)
		require.Contains(t, err.Error(), "organization name is required")
	})

	t.Run("unknown-owner", func(t *testing.T) {
		directory := &fakeUserDirectory{ids: map[string]uuid.UUID{}}

		err := RunCreateOrg(ctx, &fakeOrgUseCase{}, directory, logger, "ghost@example.com", "Smith Family")
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to resolve owner")
	})
}
