package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"member_console/internal/common"
	"member_console/internal/domain/model"
	"member_console/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

const statsCacheKey = "accounts:status_stats"

type AccountService struct {
	accounts repository.AccountRepository
	cache    *redis.Client // optional; nil disables stats caching
	statsTTL time.Duration
	now      func() time.Time
}

func NewAccountService(accounts repository.AccountRepository, cache *redis.Client, statsTTL time.Duration) *AccountService {
	return &AccountService{
		accounts: accounts,
		cache:    cache,
		statsTTL: statsTTL,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type StatusStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

// List returns account summaries, optionally narrowed to one exact status.
// "" and "all" return everything.
func (s *AccountService) List(ctx context.Context, filter string) ([]model.Account, error) {
	switch filter {
	case "", "all":
		filter = ""
	case model.StatusPending, model.StatusApproved, model.StatusRejected:
	default:
		return nil, fmt.Errorf("unknown status filter %q: %w", filter, common.ErrInvalidStatus)
	}

	accounts, err := s.accounts.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	for i := range accounts {
		accounts[i].HashedPassword = ""
	}
	return accounts, nil
}

// ChangeStatus moves an account to the given status and stamps
// status_changed_at, also for no-op transitions. Role is never touched.
func (s *AccountService) ChangeStatus(ctx context.Context, accountID, status string) (*model.Account, error) {
	if !model.ValidStatus(status) {
		return nil, fmt.Errorf("unknown status %q: %w", status, common.ErrInvalidStatus)
	}

	account, err := s.accounts.UpdateStatus(ctx, accountID, status, s.now())
	if err != nil {
		return nil, err
	}

	s.invalidateStats(ctx)

	account.HashedPassword = ""
	return account, nil
}

// Stats returns per-status account counts, cached in Redis for a short TTL.
func (s *AccountService) Stats(ctx context.Context) (*StatusStats, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, statsCacheKey).Result()
		if err == nil {
			stats := &StatusStats{}
			if err := json.Unmarshal([]byte(cached), stats); err == nil {
				return stats, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Printf("account stats: cache read failed: %v", err)
		}
	}

	counts, err := s.accounts.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count accounts: %w", err)
	}
	stats := &StatusStats{
		Pending:  counts[model.StatusPending],
		Approved: counts[model.StatusApproved],
		Rejected: counts[model.StatusRejected],
	}
	stats.Total = stats.Pending + stats.Approved + stats.Rejected

	if s.cache != nil {
		payload, _ := json.Marshal(stats)
		if err := s.cache.Set(ctx, statsCacheKey, payload, s.statsTTL).Err(); err != nil {
			log.Printf("account stats: cache write failed: %v", err)
		}
	}
	return stats, nil
}

// Registration changes counts too, but only status changes invalidate
// eagerly; registrations ride out the TTL.
func (s *AccountService) invalidateStats(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, statsCacheKey).Err(); err != nil {
		log.Printf("account stats: cache invalidation failed: %v", err)
	}
}
