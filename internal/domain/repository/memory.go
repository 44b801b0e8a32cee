package repository

import (
	"context"
	"sync"
	"time"

	"member_console/internal/common"
	"member_console/internal/domain/model"
)

// MemoryAccountRepository is an in-memory AccountRepository used in tests
// and local development. Accounts keep insertion order.
type MemoryAccountRepository struct {
	mu       sync.RWMutex
	accounts []model.Account
}

func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{}
}

func (r *MemoryAccountRepository) Create(ctx context.Context, account *model.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == account.Email {
			return common.ErrEmailTaken
		}
	}
	stored := *account
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	r.accounts = append(r.accounts, stored)
	return nil
}

func (r *MemoryAccountRepository) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.accounts {
		if r.accounts[i].Email == email {
			account := r.accounts[i]
			return &account, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *MemoryAccountRepository) FindByID(ctx context.Context, id string) (*model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.accounts {
		if r.accounts[i].ID == id {
			account := r.accounts[i]
			return &account, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *MemoryAccountRepository) List(ctx context.Context, status string) ([]model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	accounts := []model.Account{}
	for _, a := range r.accounts {
		if status == "" || a.Status == status {
			accounts = append(accounts, a)
		}
	}
	return accounts, nil
}

func (r *MemoryAccountRepository) UpdateStatus(ctx context.Context, id, status string, changedAt time.Time) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.accounts {
		if r.accounts[i].ID == id {
			stamp := changedAt
			r.accounts[i].Status = status
			r.accounts[i].StatusChangedAt = &stamp
			account := r.accounts[i]
			return &account, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *MemoryAccountRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := map[string]int{}
	for _, a := range r.accounts {
		counts[a.Status]++
	}
	return counts, nil
}

func (r *MemoryAccountRepository) UpsertAdmin(ctx context.Context, account *model.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	for i := range r.accounts {
		if r.accounts[i].Email == account.Email {
			r.accounts[i].HashedPassword = account.HashedPassword
			r.accounts[i].Name = account.Name
			r.accounts[i].Role = model.RoleAdmin
			r.accounts[i].Status = model.StatusApproved
			r.accounts[i].StatusChangedAt = &now
			return nil
		}
	}
	stored := *account
	stored.Role = model.RoleAdmin
	stored.Status = model.StatusApproved
	stored.StatusChangedAt = &now
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	r.accounts = append(r.accounts, stored)
	return nil
}
