package service

import (
	"context"
	"testing"
	"time"

	"member_console/internal/common"
	"member_console/internal/domain/model"
	"member_console/internal/domain/repository"

	"github.com/stretchr/testify/require"
)

func seedAccount(t *testing.T, repo *repository.MemoryAccountRepository, email, status string) *model.Account {
	t.Helper()
	account := &model.Account{
		ID:             email, // readable ids keep assertions simple
		Email:          email,
		HashedPassword: "hashed-secret",
		Name:           "Seeded",
		Role:           model.RoleUser,
		Status:         status,
	}
	require.NoError(t, repo.Create(context.Background(), account))
	return account
}

func TestChangeStatusStampsEveryTransition(t *testing.T) {
	repo := repository.NewMemoryAccountRepository()
	svc := NewAccountService(repo, nil, 0)
	seedAccount(t, repo, "alice@example.com", model.StatusPending)

	clock := time.Date(2025, 8, 7, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }

	first, err := svc.ChangeStatus(context.Background(), "alice@example.com", model.StatusApproved)
	require.NoError(t, err)
	require.Equal(t, model.StatusApproved, first.Status)
	require.NotNil(t, first.StatusChangedAt)
	require.Equal(t, clock, *first.StatusChangedAt)

	// A no-op transition still advances the stamp.
	clock = clock.Add(time.Minute)
	second, err := svc.ChangeStatus(context.Background(), "alice@example.com", model.StatusApproved)
	require.NoError(t, err)
	require.Equal(t, model.StatusApproved, second.Status)
	require.True(t, second.StatusChangedAt.After(*first.StatusChangedAt))
}

func TestChangeStatusValidatesBeforeStorage(t *testing.T) {
	repo := repository.NewMemoryAccountRepository()
	svc := NewAccountService(repo, nil, 0)
	seedAccount(t, repo, "alice@example.com", model.StatusPending)

	_, err := svc.ChangeStatus(context.Background(), "alice@example.com", "banned")
	require.ErrorIs(t, err, common.ErrInvalidStatus)

	stored, err := repo.FindByID(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, model.StatusPending, stored.Status)
	require.Nil(t, stored.StatusChangedAt, "rejected input must not touch the row")
}

func TestChangeStatusUnknownAccount(t *testing.T) {
	svc := NewAccountService(repository.NewMemoryAccountRepository(), nil, 0)

	_, err := svc.ChangeStatus(context.Background(), "missing", model.StatusApproved)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestListFilters(t *testing.T) {
	repo := repository.NewMemoryAccountRepository()
	svc := NewAccountService(repo, nil, 0)
	seedAccount(t, repo, "alice@example.com", model.StatusPending)
	seedAccount(t, repo, "bob@example.com", model.StatusApproved)
	seedAccount(t, repo, "carol@example.com", model.StatusRejected)

	all, err := svc.List(context.Background(), "all")
	require.NoError(t, err)
	require.Len(t, all, 3)

	pending, err := svc.List(context.Background(), model.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "alice@example.com", pending[0].Email)

	_, err = svc.List(context.Background(), "archived")
	require.ErrorIs(t, err, common.ErrInvalidStatus)
}

func TestListNeverExposesPasswordHash(t *testing.T) {
	repo := repository.NewMemoryAccountRepository()
	svc := NewAccountService(repo, nil, 0)
	seedAccount(t, repo, "alice@example.com", model.StatusApproved)

	accounts, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	for _, account := range accounts {
		require.Empty(t, account.HashedPassword)
	}
}

func TestStatsCountsMatchList(t *testing.T) {
	repo := repository.NewMemoryAccountRepository()
	svc := NewAccountService(repo, nil, 0)
	seedAccount(t, repo, "a@example.com", model.StatusPending)
	seedAccount(t, repo, "b@example.com", model.StatusPending)
	seedAccount(t, repo, "c@example.com", model.StatusApproved)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, &StatusStats{Total: 3, Pending: 2, Approved: 1, Rejected: 0}, stats)

	_, err = svc.ChangeStatus(context.Background(), "a@example.com", model.StatusRejected)
	require.NoError(t, err)

	stats, err = svc.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, &StatusStats{Total: 3, Pending: 1, Approved: 1, Rejected: 1}, stats)
}

func TestEnsureAdmin(t *testing.T) {
	repo := repository.NewMemoryAccountRepository()

	// Without credentials the seed is skipped.
	require.NoError(t, EnsureAdmin(context.Background(), repo, "", "", "admin"))
	accounts, err := repo.List(context.Background(), "")
	require.NoError(t, err)
	require.Empty(t, accounts)

	require.NoError(t, EnsureAdmin(context.Background(), repo, "root@example.com", "root-pass", "Root"))
	admin, err := repo.FindByEmail(context.Background(), "root@example.com")
	require.NoError(t, err)
	require.Equal(t, model.RoleAdmin, admin.Role)
	require.Equal(t, model.StatusApproved, admin.Status)

	// Re-running refreshes the same account instead of duplicating it.
	require.NoError(t, EnsureAdmin(context.Background(), repo, "root@example.com", "new-pass", "Root"))
	accounts, err = repo.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, accounts, 1)
}
