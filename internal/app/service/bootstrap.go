package service

import (
	"context"
	"fmt"
	"log"

	"member_console/internal/common/security"
	"member_console/internal/domain/model"
	"member_console/internal/domain/repository"

	"github.com/google/uuid"
)

// EnsureAdmin upserts the bootstrap administrator at process start when
// ADMIN_EMAIL and ADMIN_PASSWORD are configured. The account is forced to
// role=admin, status=approved. With no credentials configured it is a no-op.
func EnsureAdmin(ctx context.Context, accounts repository.AccountRepository, email, password, name string) error {
	if email == "" || password == "" {
		log.Println("bootstrap: ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	hashedPassword, err := security.HashPassword(password)
	if err != nil {
		return fmt.Errorf("bootstrap: failed to hash admin password: %w", err)
	}

	account := &model.Account{
		ID:             uuid.NewString(),
		Email:          email,
		HashedPassword: hashedPassword,
		Name:           name,
		Role:           model.RoleAdmin,
		Status:         model.StatusApproved,
	}
	if err := accounts.UpsertAdmin(ctx, account); err != nil {
		return fmt.Errorf("bootstrap: failed to upsert admin: %w", err)
	}

	log.Printf("bootstrap: admin account ensured for %s", email)
	return nil
}
