package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"member_console/internal/common"
	"member_console/internal/common/security"
	"member_console/internal/domain/model"
	"member_console/internal/domain/repository"
	"member_console/internal/platform/config"

	"github.com/stretchr/testify/require"
)

func initTestJWT(t *testing.T) {
	t.Helper()
	config.AppConfig = &config.Config{
		JWTKey: []byte("auth-service-test-secret"),
		JWTExp: time.Hour,
	}
	security.InitJWT()
}

func registerAccount(t *testing.T, svc *AuthService, email string) *model.Account {
	t.Helper()
	account, err := svc.Register(context.Background(), RegisterRequest{
		Email:    email,
		Password: "pass1234",
		Name:     "Test Account",
	})
	require.NoError(t, err)
	return account
}

func TestRegisterCreatesPendingAccount(t *testing.T) {
	initTestJWT(t)
	repo := repository.NewMemoryAccountRepository()
	svc := NewAuthService(repo)

	account := registerAccount(t, svc, "alice@example.com")

	require.Equal(t, model.StatusPending, account.Status)
	require.Equal(t, model.RoleUser, account.Role)
	require.NotEmpty(t, account.ID)
	require.Empty(t, account.HashedPassword)

	stored, err := repo.FindByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, stored.HashedPassword)
	require.NotEqual(t, "pass1234", stored.HashedPassword, "password must be stored hashed")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	initTestJWT(t)
	svc := NewAuthService(repository.NewMemoryAccountRepository())

	registerAccount(t, svc, "alice@example.com")

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "alice@example.com",
		Password: "other-pass",
		Name:     "Alice Again",
	})
	require.ErrorIs(t, err, common.ErrEmailTaken)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	initTestJWT(t)
	svc := NewAuthService(repository.NewMemoryAccountRepository())

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "bob@example.com",
		Password: "pass1234",
		Name:     "Bob",
		Role:     "superuser",
	})
	require.ErrorIs(t, err, common.ErrBadRequest)
}

func TestLoginPendingAccountNeverIssuesToken(t *testing.T) {
	initTestJWT(t)
	repo := repository.NewMemoryAccountRepository()
	svc := NewAuthService(repo)
	account := registerAccount(t, svc, "alice@example.com")

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "alice@example.com", Password: "pass1234"})
	require.Nil(t, resp)

	var notApproved *common.NotApprovedError
	require.ErrorAs(t, err, &notApproved)
	require.Equal(t, account.ID, notApproved.AccountID)
	require.Equal(t, "alice@example.com", notApproved.Email)
	require.Equal(t, model.StatusPending, notApproved.Status)
}

func TestLoginUniformInvalidCredentials(t *testing.T) {
	initTestJWT(t)
	repo := repository.NewMemoryAccountRepository()
	svc := NewAuthService(repo)
	account := registerAccount(t, svc, "alice@example.com")
	_, err := repo.UpdateStatus(context.Background(), account.ID, model.StatusApproved, time.Now().UTC())
	require.NoError(t, err)

	_, wrongPassErr := svc.Login(context.Background(), LoginRequest{Email: "alice@example.com", Password: "wrong"})
	_, noSuchEmailErr := svc.Login(context.Background(), LoginRequest{Email: "nobody@example.com", Password: "pass1234"})

	require.ErrorIs(t, wrongPassErr, common.ErrInvalidCredentials)
	require.ErrorIs(t, noSuchEmailErr, common.ErrInvalidCredentials)
	// Outward error must not reveal which part failed.
	require.Equal(t, wrongPassErr.Error(), noSuchEmailErr.Error())
}

func TestLoginApprovedAccountIssuesVerifiableToken(t *testing.T) {
	initTestJWT(t)
	repo := repository.NewMemoryAccountRepository()
	svc := NewAuthService(repo)
	account := registerAccount(t, svc, "alice@example.com")
	_, err := repo.UpdateStatus(context.Background(), account.ID, model.StatusApproved, time.Now().UTC())
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "alice@example.com", Password: "pass1234"})
	require.NoError(t, err)
	require.Equal(t, model.StatusApproved, resp.User.Status)
	require.Empty(t, resp.User.HashedPassword)

	accountID, role, err := security.ParseToken(resp.Token)
	require.NoError(t, err)
	require.Equal(t, account.ID, accountID)
	require.Equal(t, model.RoleUser, role)
}

func TestGetSelf(t *testing.T) {
	initTestJWT(t)
	repo := repository.NewMemoryAccountRepository()
	svc := NewAuthService(repo)
	account := registerAccount(t, svc, "alice@example.com")

	self, err := svc.GetSelf(context.Background(), account.ID)
	require.NoError(t, err)
	require.Equal(t, account.ID, self.ID)
	require.Empty(t, self.HashedPassword)

	_, err = svc.GetSelf(context.Background(), "missing-id")
	require.True(t, errors.Is(err, common.ErrNotFound))
}
