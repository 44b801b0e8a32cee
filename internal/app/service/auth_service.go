package service

import (
	"context"
	"errors"
	"fmt"

	"member_console/internal/common"
	"member_console/internal/common/security"
	"member_console/internal/domain/model"
	"member_console/internal/domain/repository"

	"github.com/google/uuid"
)

type AuthService struct {
	accounts repository.AccountRepository
}

func NewAuthService(accounts repository.AccountRepository) *AuthService {
	return &AuthService{accounts: accounts}
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string         `json:"token"`
	User  *model.Account `json:"user"`
}

// Register creates a new account. New accounts always start pending;
// approval is an admin action. Privileged seeding goes through EnsureAdmin.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*model.Account, error) {
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return nil, fmt.Errorf("email, password and name are required: %w", common.ErrBadRequest)
	}
	role := req.Role
	if role == "" {
		role = model.RoleUser
	}
	if !model.ValidRole(role) {
		return nil, fmt.Errorf("unknown role %q: %w", req.Role, common.ErrBadRequest)
	}

	if _, err := s.accounts.FindByEmail(ctx, req.Email); err == nil {
		return nil, common.ErrEmailTaken
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &model.Account{
		ID:             uuid.NewString(),
		Email:          req.Email,
		HashedPassword: hashedPassword,
		Name:           req.Name,
		Role:           role,
		Status:         model.StatusPending,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		// Repo maps unique violations to common.ErrEmailTaken
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	account.HashedPassword = "" // Clear before returning
	return account, nil
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password produce the identical error; a correct password on a
// non-approved account returns NotApprovedError carrying the identity.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("email and password are required: %w", common.ErrBadRequest)
	}

	account, err := s.accounts.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, account.HashedPassword) {
		return nil, common.ErrInvalidCredentials
	}

	if account.Status != model.StatusApproved {
		return nil, &common.NotApprovedError{
			AccountID: account.ID,
			Email:     account.Email,
			Status:    account.Status,
		}
	}

	token, err := security.GenerateToken(account.ID, account.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	account.HashedPassword = ""
	return &AuthResponse{Token: token, User: account}, nil
}

// GetSelf returns the caller's own summary. Weak gate is enough: a pending
// account may still see its own state.
func (s *AuthService) GetSelf(ctx context.Context, accountID string) (*model.Account, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	account.HashedPassword = ""
	return account, nil
}
